package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matst80/slask-homes/pkg/tracking"
	"github.com/matst80/slask-homes/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client is the remote search endpoint. Search takes a canonical query
// string, Featured is the parameterless fallback listing.
type Client interface {
	Search(ctx context.Context, query string) (*types.ResultsPage, error)
	Featured(ctx context.Context) ([]types.Property, error)
}

// Results is the outcome of one fetch. Results are shared between coalesced
// callers and must not be modified.
type Results struct {
	Key      string            `json:"key"`
	Page     types.ResultsPage `json:"page"`
	Fallback bool              `json:"fallback,omitempty"`
	Cause    error             `json:"-"`
	Stale    bool              `json:"-"`
}

const DefaultTimeout = 10 * time.Second

type Option func(*Fetcher)

// WithTimeout bounds each network call, a timeout is an ordinary failure.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithKeySource sets what the current key is when a response arrives,
// usually the encoding of the live store model.
func WithKeySource(fn func() string) Option {
	return func(f *Fetcher) {
		f.currentKey = fn
	}
}

// WithFeaturedFallback toggles the featured request after a failed search.
func WithFeaturedFallback(enabled bool) Option {
	return func(f *Fetcher) {
		f.fallbackOnFailure = enabled
	}
}

// WithEmptyFallback toggles the featured request after an empty search.
func WithEmptyFallback(enabled bool) Option {
	return func(f *Fetcher) {
		f.fallbackOnEmpty = enabled
	}
}

func WithTracking(trk tracking.Tracking, sessionId string) Option {
	return func(f *Fetcher) {
		if trk != nil {
			f.tracking = trk
		}
		f.sessionId = sessionId
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Fetcher issues searches keyed by the canonical query. Identical keys in
// flight share one request, and a response whose key is no longer current
// when it arrives is returned as stale and never becomes visible.
type Fetcher struct {
	client            Client
	group             singleflight.Group
	timeout           time.Duration
	currentKey        func() string
	fallbackOnFailure bool
	fallbackOnEmpty   bool
	tracking          tracking.Tracking
	sessionId         string
	logger            *zap.Logger

	mu        sync.Mutex
	issued    string
	inFlight  map[string]int
	visible   *Results
	listeners []func(*Results)
}

func NewFetcher(client Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:            client,
		timeout:           DefaultTimeout,
		fallbackOnFailure: true,
		fallbackOnEmpty:   true,
		tracking:          tracking.NoTracking{},
		logger:            zap.NewNop(),
		inFlight:          make(map[string]int),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.currentKey == nil {
		f.currentKey = f.lastIssued
	}
	return f
}

func (f *Fetcher) lastIssued() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issued
}

// InFlight returns the number of callers waiting on key.
func (f *Fetcher) InFlight(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight[key]
}

// Visible returns the results currently shown, nil before the first one.
func (f *Fetcher) Visible() *Results {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

// OnResults registers a listener called whenever new results become visible.
func (f *Fetcher) OnResults(fn func(*Results)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// join registers the caller and its singleflight call under one lock, so a
// caller counted by InFlight is already attached to the shared request.
func (f *Fetcher) join(ctx context.Context, key string, hasFilters bool) <-chan singleflight.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = key
	if f.inFlight[key] > 0 {
		noCoalesced.Inc()
	}
	f.inFlight[key]++
	return f.group.DoChan(key, func() (any, error) {
		return f.load(context.WithoutCancel(ctx), key, hasFilters)
	})
}

func (f *Fetcher) leave(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight[key]--
	if f.inFlight[key] <= 0 {
		delete(f.inFlight, key)
	}
}

// Fetch searches for model. Failures are returned as *types.SearchFailure or
// *types.FallbackExhausted together with the results to render, if any.
// Cancelling ctx stops the wait but not the shared request.
func (f *Fetcher) Fetch(ctx context.Context, model types.FilterModel) (*Results, error) {
	model = model.Normalize()
	key := types.Encode(model)
	ch := f.join(ctx, key, model.HasFilters())
	defer f.leave(key)

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	results, _ := res.Val.(*Results)
	if key != f.currentKey() {
		noStale.Inc()
		f.logger.Debug("dropping stale results", zap.String("key", key))
		if results == nil {
			return nil, res.Err
		}
		stale := *results
		stale.Stale = true
		return &stale, res.Err
	}
	if results != nil {
		f.install(results)
	}
	return results, res.Err
}

func (f *Fetcher) install(results *Results) {
	f.mu.Lock()
	if f.visible == results {
		f.mu.Unlock()
		return
	}
	f.visible = results
	listeners := make([]func(*Results), len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(results)
	}
}

func (f *Fetcher) load(ctx context.Context, key string, hasFilters bool) (*Results, error) {
	noSearches.Inc()
	page, err := f.search(ctx, key)
	if err != nil {
		noFailures.Inc()
		failure := types.AsSearchFailure(key, err)
		f.logger.Warn("search failed", zap.String("key", key), zap.Error(failure))
		if !hasFilters || !f.fallbackOnFailure {
			f.track(key, 0, false, failure)
			return &Results{Key: key, Page: types.FeaturedPage(nil), Cause: failure}, failure
		}
		featured, ferr := f.featured(ctx)
		if ferr != nil {
			exhausted := &types.FallbackExhausted{Search: failure, Fallback: ferr}
			f.logger.Error("featured fallback failed", zap.String("key", key), zap.Error(ferr))
			f.track(key, 0, true, exhausted)
			return &Results{Key: key, Page: types.FeaturedPage(nil), Fallback: true, Cause: exhausted}, exhausted
		}
		f.track(key, featured.Total, true, failure)
		return &Results{Key: key, Page: *featured, Fallback: true, Cause: failure}, nil
	}

	if len(page.Items) == 0 && hasFilters && f.fallbackOnEmpty {
		featured, ferr := f.featured(ctx)
		if ferr == nil && len(featured.Items) > 0 {
			f.track(key, featured.Total, true, nil)
			return &Results{Key: key, Page: *featured, Fallback: true}, nil
		}
		if ferr != nil {
			f.logger.Warn("featured listing failed", zap.Error(ferr))
		}
	}
	f.track(key, page.Total, false, nil)
	return &Results{Key: key, Page: *page}, nil
}

func (f *Fetcher) search(ctx context.Context, key string) (*types.ResultsPage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page, err := f.client.Search(ctx, key)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, errors.New("empty response")
	}
	if page.Items == nil {
		page.Items = []types.Property{}
	}
	return page, nil
}

func (f *Fetcher) featured(ctx context.Context) (*types.ResultsPage, error) {
	noFallbacks.Inc()
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	items, err := f.client.Featured(ctx)
	if err != nil {
		return nil, err
	}
	page := types.FeaturedPage(items)
	return &page, nil
}

func (f *Fetcher) track(key string, total int, fallback bool, err error) {
	event := tracking.SearchEvent{
		SessionId: f.sessionId,
		Query:     key,
		Total:     total,
		Fallback:  fallback,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if terr := f.tracking.TrackSearch(event); terr != nil {
		f.logger.Warn("could not track search", zap.Error(terr))
	}
}
