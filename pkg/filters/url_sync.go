package filters

import (
	"slices"
	"sync"

	"github.com/matst80/slask-homes/pkg/types"
	"go.uber.org/zap"
)

// UrlSync mirrors the store into a Location and installs externally
// navigated locations back into the store. It never feeds its own writes
// back through the decode path.
type UrlSync struct {
	store    *Store
	location Location
	logger   *zap.Logger

	mu          sync.Mutex
	started     bool
	pushed      bool
	applying    bool
	pending     []string
	stops       []func()
}

// own writes remembered until the location reports them back
const maxPendingWrites = 32

func NewUrlSync(store *Store, location Location, logger *zap.Logger) *UrlSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UrlSync{
		store:    store,
		location: location,
		logger:   logger,
	}
}

// Start loads the current location into the store and starts mirroring.
// The first write after Start adds a history entry, later ones replace it.
func (u *UrlSync) Start() {
	u.mu.Lock()
	if u.started {
		u.mu.Unlock()
		return
	}
	u.started = true
	u.mu.Unlock()

	u.OnLocationChange(u.location.Query())

	stopStore := u.store.Subscribe(u.onStoreChange)
	stopLocation := u.location.Listen(u.OnLocationChange)

	u.mu.Lock()
	u.stops = append(u.stops, stopStore, stopLocation)
	u.mu.Unlock()
}

func (u *UrlSync) Stop() {
	u.mu.Lock()
	stops := u.stops
	u.stops = nil
	u.started = false
	u.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

func (u *UrlSync) onStoreChange(model types.FilterModel) {
	query := types.Encode(model)

	u.mu.Lock()
	if u.applying || query == u.location.Query() {
		u.mu.Unlock()
		return
	}
	first := !u.pushed
	u.pushed = true
	u.pending = append(u.pending, query)
	if len(u.pending) > maxPendingWrites {
		u.pending = u.pending[len(u.pending)-maxPendingWrites:]
	}
	u.mu.Unlock()

	if first {
		u.location.Push(query)
	} else {
		u.location.Replace(query)
	}
	u.logger.Debug("location updated", zap.String("query", query), zap.Bool("push", first))
}

// OnLocationChange handles back/forward and deep links. A query this sync
// wrote itself that the location has already moved past is a late echo and
// is dropped. Anything else is only installed when its canonical form
// differs from the store's.
func (u *UrlSync) OnLocationChange(query string) {
	decoded := types.Decode(query)
	canonical := types.Encode(decoded)
	current := types.Canonical(u.location.Query())

	u.mu.Lock()
	if u.applying {
		u.mu.Unlock()
		return
	}
	own := u.takePending(canonical)
	if own && canonical != current {
		u.mu.Unlock()
		u.logger.Debug("ignoring late echo of own write", zap.String("query", canonical))
		return
	}
	if canonical == types.Encode(u.store.Model()) {
		u.mu.Unlock()
		if own {
			u.logger.Debug("ignoring own location write", zap.String("query", canonical))
		}
		return
	}
	u.applying = true
	u.mu.Unlock()

	u.store.Replace(decoded)
	u.logger.Debug("location installed", zap.String("query", canonical))

	u.mu.Lock()
	u.applying = false
	u.mu.Unlock()
}

// takePending removes query from the pending writes. Called with mu held.
func (u *UrlSync) takePending(query string) bool {
	i := slices.Index(u.pending, query)
	if i < 0 {
		return false
	}
	u.pending = slices.Delete(u.pending, i, i+1)
	return true
}
