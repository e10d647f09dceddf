// Package view wires the filter store, location sync and fetcher of one
// search page together for as long as the page is open.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/matst80/slask-homes/pkg/filters"
	"github.com/matst80/slask-homes/pkg/search"
	"github.com/matst80/slask-homes/pkg/sorting"
	"github.com/matst80/slask-homes/pkg/tracking"
	"github.com/matst80/slask-homes/pkg/types"
	"go.uber.org/zap"
)

type options struct {
	logger   *zap.Logger
	tracking tracking.Tracking
	fetch    []search.Option
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithTracking(trk tracking.Tracking) Option {
	return func(o *options) {
		o.tracking = trk
	}
}

// WithFetchOptions passes options on to the fetcher, a key source given here
// is replaced by the store encoding.
func WithFetchOptions(opts ...search.Option) Option {
	return func(o *options) {
		o.fetch = append(o.fetch, opts...)
	}
}

// View is one open search page.
type View struct {
	SessionId string
	Store     *filters.Store
	Sync      *filters.UrlSync
	Draft     *filters.Draft
	Fetcher   *search.Fetcher

	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	closed      bool
	wg          sync.WaitGroup
	unsubscribe func()
}

// Open seeds the store from location, starts mirroring it and issues the
// first fetch. Every later store change fetches again.
func Open(ctx context.Context, location filters.Location, client search.Client, opts ...Option) *View {
	o := options{logger: zap.NewNop(), tracking: tracking.NoTracking{}}
	for _, opt := range opts {
		opt(&o)
	}

	v := &View{
		SessionId: uuid.NewString(),
		Store:     filters.NewStore(types.DefaultFilterModel()),
	}
	v.logger = o.logger.With(zap.String("session", v.SessionId))
	v.ctx, v.cancel = context.WithCancel(ctx)
	v.Draft = filters.NewDraft(v.Store)
	v.Sync = filters.NewUrlSync(v.Store, location, v.logger)

	fetchOpts := append([]search.Option{
		search.WithLogger(v.logger),
		search.WithTracking(o.tracking, v.SessionId),
	}, o.fetch...)
	fetchOpts = append(fetchOpts, search.WithKeySource(func() string {
		return types.Encode(v.Store.Model())
	}))
	v.Fetcher = search.NewFetcher(client, fetchOpts...)

	v.Sync.Start()
	v.unsubscribe = v.Store.Subscribe(v.refresh)
	v.refresh(v.Store.Model())
	return v
}

func (v *View) refresh(model types.FilterModel) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.wg.Add(1)
	v.mu.Unlock()
	go func() {
		defer v.wg.Done()
		results, err := v.Fetcher.Fetch(v.ctx, model)
		if err != nil && !errors.Is(err, context.Canceled) {
			v.logger.Warn("fetch failed", zap.String("key", types.Encode(model)), zap.Error(err))
			return
		}
		if results != nil && !results.Stale {
			v.logger.Debug("results visible", zap.String("key", results.Key), zap.Int("total", results.Page.Total))
		}
	}()
}

// Results returns the visible results, nil until the first fetch lands.
func (v *View) Results() *search.Results {
	return v.Fetcher.Visible()
}

// Items returns the visible page ordered by the current sort key, so a sort
// change shows immediately while the new page is on its way.
func (v *View) Items() []types.Property {
	results := v.Fetcher.Visible()
	if results == nil {
		return []types.Property{}
	}
	return sorting.Refine(results.Page, v.Store.Model())
}

// Wait blocks until every fetch issued so far has returned.
func (v *View) Wait() {
	v.wg.Wait()
}

// Close detaches from the store and location, abandons outstanding waits
// and returns once they are gone.
func (v *View) Close() {
	v.mu.Lock()
	first := !v.closed
	v.closed = true
	v.mu.Unlock()
	if first {
		v.unsubscribe()
		v.Sync.Stop()
		v.cancel()
	}
	v.wg.Wait()
}
