package filters

import (
	"sync"

	"github.com/matst80/slask-homes/pkg/types"
)

// Draft holds free-text location input and a price band while the user is
// still editing them. Nothing reaches the store, and so nothing is fetched,
// until Commit.
type Draft struct {
	store *Store

	mu       sync.Mutex
	location *string
	priceMin *int64
	priceMax *int64
}

func NewDraft(store *Store) *Draft {
	return &Draft{store: store}
}

func (d *Draft) SetLocation(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.location = &text
}

func (d *Draft) SetPriceBand(min, max int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.priceMin = &min
	d.priceMax = &max
}

// Pending returns the uncommitted edits as an update.
func (d *Draft) Pending() types.FilterUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return types.FilterUpdate{
		Location: d.location,
		PriceMin: d.priceMin,
		PriceMax: d.priceMax,
	}
}

func (d *Draft) Dirty() bool {
	return !d.Pending().IsEmpty()
}

// Commit applies the pending edits in a single store update. Without pending
// edits the store is left alone and its model returned.
func (d *Draft) Commit() types.FilterModel {
	d.mu.Lock()
	update := types.FilterUpdate{
		Location: d.location,
		PriceMin: d.priceMin,
		PriceMax: d.priceMax,
	}
	d.location, d.priceMin, d.priceMax = nil, nil, nil
	d.mu.Unlock()

	if update.IsEmpty() {
		return d.store.Model()
	}
	return d.store.Update(update)
}

func (d *Draft) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.location, d.priceMin, d.priceMax = nil, nil, nil
}
