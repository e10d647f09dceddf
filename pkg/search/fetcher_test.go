package search

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/matst80/slask-homes/pkg/tracking"
	"github.com/matst80/slask-homes/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type stubClient struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	pages    map[string]*types.ResultsPage
	errs     map[string]error
	featured []types.Property
	featErr  error
	searches map[string]int
	featCnt  int
}

func newStubClient() *stubClient {
	return &stubClient{
		gates:    map[string]chan struct{}{},
		pages:    map[string]*types.ResultsPage{},
		errs:     map[string]error{},
		searches: map[string]int{},
	}
}

func (c *stubClient) block(key string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	gate := make(chan struct{})
	c.gates[key] = gate
	return gate
}

func (c *stubClient) Search(ctx context.Context, query string) (*types.ResultsPage, error) {
	c.mu.Lock()
	c.searches[query]++
	gate := c.gates[query]
	page, err := c.pages[query], c.errs[query]
	c.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		return &types.ResultsPage{Items: []types.Property{{Id: query}}, Total: 1}, nil
	}
	return page, nil
}

func (c *stubClient) Featured(ctx context.Context) ([]types.Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.featCnt++
	return c.featured, c.featErr
}

func (c *stubClient) counts(key string) (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searches[key], c.featCnt
}

type recordingTracker struct {
	mu     sync.Mutex
	events []tracking.SearchEvent
}

func (r *recordingTracker) TrackSearch(event tracking.SearchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func villas() types.FilterModel {
	m := types.DefaultFilterModel()
	m.PropertyType = types.Villa
	return m
}

func TestFetchInstallsResults(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	f := NewFetcher(client)

	var seen []*Results
	f.OnResults(func(r *Results) { seen = append(seen, r) })

	res, err := f.Fetch(context.Background(), villas())
	require.NoError(t, err)
	assert.Equal(t, "propertyType=villa", res.Key)
	assert.False(t, res.Fallback)
	assert.False(t, res.Stale)
	assert.Same(t, res, f.Visible())
	assert.Equal(t, []*Results{res}, seen)
}

func TestIdenticalFetchesCoalesce(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	gate := client.block("propertyType=villa")
	f := NewFetcher(client)

	var wg sync.WaitGroup
	results := make([]*Results, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.Fetch(context.Background(), villas())
			assert.NoError(t, err)
			results[i] = res
		}()
	}

	assert.Eventually(t, func() bool { return f.InFlight("propertyType=villa") == 2 }, time.Second, time.Millisecond)
	close(gate)
	wg.Wait()

	searches, _ := client.counts("propertyType=villa")
	assert.Equal(t, 1, searches)
	assert.Same(t, results[0], results[1])
	assert.Equal(t, 0, f.InFlight("propertyType=villa"))
}

func TestStaleResultsAreDropped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	gate := client.block("propertyType=villa")
	f := NewFetcher(client)

	done := make(chan *Results)
	go func() {
		res, err := f.Fetch(context.Background(), villas())
		assert.NoError(t, err)
		done <- res
	}()
	assert.Eventually(t, func() bool { return f.InFlight("propertyType=villa") == 1 }, time.Second, time.Millisecond)

	rent := types.DefaultFilterModel()
	rent.SaleOrRent = types.ForRent
	current, err := f.Fetch(context.Background(), rent)
	require.NoError(t, err)

	close(gate)
	stale := <-done

	assert.True(t, stale.Stale)
	assert.Equal(t, "propertyType=villa", stale.Key)
	assert.Same(t, current, f.Visible())
}

func TestKeySourceDecidesStaleness(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	f := NewFetcher(client, WithKeySource(func() string { return "saleOrRent=sale" }))

	res, err := f.Fetch(context.Background(), villas())
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Nil(t, f.Visible())
}

func TestFailureFallsBackToFeaturedOnce(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	client.errs["propertyType=villa"] = &types.SearchFailure{Query: "propertyType=villa", StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}
	client.featured = []types.Property{{Id: "f1"}, {Id: "f2"}}
	trk := &recordingTracker{}
	f := NewFetcher(client, WithTracking(trk, "s1"))

	res, err := f.Fetch(context.Background(), villas())
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 2, res.Page.Total)
	var failure *types.SearchFailure
	require.ErrorAs(t, res.Cause, &failure)
	assert.Equal(t, http.StatusBadGateway, failure.StatusCode)

	searches, featured := client.counts("propertyType=villa")
	assert.Equal(t, 1, searches)
	assert.Equal(t, 1, featured)

	require.Len(t, trk.events, 1)
	assert.Equal(t, "s1", trk.events[0].SessionId)
	assert.True(t, trk.events[0].Fallback)
}

func TestFallbackExhausted(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	client.errs["propertyType=villa"] = errors.New("connection refused")
	client.featErr = errors.New("connection refused")
	f := NewFetcher(client)

	res, err := f.Fetch(context.Background(), villas())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFallbackExhausted)
	var failure *types.SearchFailure
	assert.ErrorAs(t, err, &failure)
	assert.Equal(t, "propertyType=villa", failure.Query)

	require.NotNil(t, res)
	assert.Empty(t, res.Page.Items)
	_, featured := client.counts("propertyType=villa")
	assert.Equal(t, 1, featured)
}

func TestDefaultQueryFailureHasNoFallback(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	client.errs[""] = errors.New("boom")
	f := NewFetcher(client)

	_, err := f.Fetch(context.Background(), types.DefaultFilterModel())
	var failure *types.SearchFailure
	require.ErrorAs(t, err, &failure)
	assert.NotErrorIs(t, err, types.ErrFallbackExhausted)
	_, featured := client.counts("")
	assert.Equal(t, 0, featured)
}

func TestFallbackDisabled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	client.errs["propertyType=villa"] = errors.New("boom")
	f := NewFetcher(client, WithFeaturedFallback(false))

	_, err := f.Fetch(context.Background(), villas())
	var failure *types.SearchFailure
	require.ErrorAs(t, err, &failure)
	_, featured := client.counts("propertyType=villa")
	assert.Equal(t, 0, featured)
}

func TestEmptyPageFallsBackToFeatured(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	client.pages["propertyType=villa"] = &types.ResultsPage{Total: 0}
	client.featured = []types.Property{{Id: "f1"}}

	res, err := NewFetcher(client).Fetch(context.Background(), villas())
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Nil(t, res.Cause)
	assert.Equal(t, "f1", res.Page.Items[0].Id)

	res, err = NewFetcher(client, WithEmptyFallback(false)).Fetch(context.Background(), villas())
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.Page.Items)
}

func TestTimeoutIsAFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	gate := client.block("")
	defer close(gate)
	f := NewFetcher(client, WithTimeout(20*time.Millisecond))

	_, err := f.Fetch(context.Background(), types.DefaultFilterModel())
	var failure *types.SearchFailure
	require.ErrorAs(t, err, &failure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCancelledCallerDoesNotCancelSharedRequest(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := newStubClient()
	gate := client.block("propertyType=villa")
	f := NewFetcher(client)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error)
	go func() {
		_, err := f.Fetch(ctx, villas())
		first <- err
	}()
	second := make(chan *Results)
	go func() {
		res, _ := f.Fetch(context.Background(), villas())
		second <- res
	}()
	assert.Eventually(t, func() bool { return f.InFlight("propertyType=villa") == 2 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)
	close(gate)

	res := <-second
	require.NotNil(t, res)
	assert.Equal(t, "propertyType=villa", res.Key)
	searches, _ := client.counts("propertyType=villa")
	assert.Equal(t, 1, searches)
}
