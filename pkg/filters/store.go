package filters

import (
	"sync"

	"github.com/matst80/slask-homes/pkg/types"
)

type Observer func(model types.FilterModel)

type subscription struct {
	id uint64
	fn Observer
}

// Store owns the live FilterModel of a page view. All mutation goes through
// Update, Reset and Replace, each of which leaves a normalized model behind
// and notifies every observer once, in subscription order.
type Store struct {
	mu        sync.Mutex
	model     types.FilterModel
	observers []subscription
	nextId    uint64
}

func NewStore(initial types.FilterModel) *Store {
	return &Store{
		model: initial.Normalize(),
	}
}

// Model returns a copy of the current model.
func (s *Store) Model() types.FilterModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Clone()
}

// Update merges the partial update, repairs invariants and resets the page
// when any facet other than page or sort changed.
func (s *Store) Update(update types.FilterUpdate) types.FilterModel {
	s.mu.Lock()
	previous := s.model
	next := update.Apply(previous).Normalize()
	if !next.FacetsEqual(previous) {
		next.Page = types.DefaultPage
	}
	return s.store(next)
}

func (s *Store) Reset() types.FilterModel {
	s.mu.Lock()
	return s.store(types.DefaultFilterModel())
}

// Replace installs an externally decoded model as is, without the page reset.
func (s *Store) Replace(model types.FilterModel) types.FilterModel {
	s.mu.Lock()
	return s.store(model.Normalize())
}

// store expects s.mu to be held and releases it before notifying.
func (s *Store) store(model types.FilterModel) types.FilterModel {
	s.model = model
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(model.Clone())
	}
	return model.Clone()
}

// Subscribe registers an observer, the returned function removes it again.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	id := s.nextId
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}
