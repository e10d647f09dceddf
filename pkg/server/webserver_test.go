package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-homes/pkg/search"
	"github.com/matst80/slask-homes/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClient struct {
	page     *types.ResultsPage
	err      error
	featured []types.Property
	featErr  error
	queries  []string
}

func (c *fixedClient) Search(ctx context.Context, query string) (*types.ResultsPage, error) {
	c.queries = append(c.queries, query)
	return c.page, c.err
}

func (c *fixedClient) Featured(ctx context.Context) ([]types.Property, error) {
	return c.featured, c.featErr
}

func newTestServer(t *testing.T, client *fixedClient) *httptest.Server {
	t.Helper()
	ws := NewWebServer(search.NewFetcher(client), nil, 0)
	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, sonic.Unmarshal(body, out))
	}
	return res
}

func TestSearchEndpoint(t *testing.T) {
	client := &fixedClient{page: &types.ResultsPage{
		Items: []types.Property{{Id: "a", Price: 300}, {Id: "b", Price: 100}},
		Total: 42,
	}}
	srv := newTestServer(t, client)

	var data SearchResponse
	res := get(t, srv.URL+"/api/search?sortBy=price_low&propertyType=Villa&utm=x", &data)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "propertyType=villa&sortBy=price_low", data.Query)
	assert.Equal(t, []string{"propertyType=villa&sortBy=price_low"}, client.queries)
	assert.Equal(t, 42, data.Total)
	assert.Equal(t, types.PageSize, data.PageSize)
	assert.Equal(t, 1, data.Page)
	require.Len(t, data.Items, 2)
	assert.Equal(t, "b", data.Items[0].Id)
}

func TestSearchEndpointFallback(t *testing.T) {
	client := &fixedClient{
		err:      errors.New("down"),
		featured: []types.Property{{Id: "f1", Featured: true}},
	}
	srv := newTestServer(t, client)

	var data SearchResponse
	res := get(t, srv.URL+"/api/search?saleOrRent=rent", &data)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, data.Fallback)
	assert.Equal(t, 1, data.Total)
	assert.Empty(t, data.Error)
}

func TestSearchEndpointExhausted(t *testing.T) {
	client := &fixedClient{err: errors.New("down"), featErr: errors.New("down")}
	srv := newTestServer(t, client)

	var data SearchResponse
	res := get(t, srv.URL+"/api/search?saleOrRent=rent", &data)

	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Contains(t, data.Error, types.ErrFallbackExhausted.Error())
	assert.Empty(t, data.Items)
}

func TestFiltersEndpoint(t *testing.T) {
	srv := newTestServer(t, &fixedClient{})

	var data FiltersResponse
	res := get(t, srv.URL+"/api/filters?maxPrice=100&minPrice=500&amenities=pool,garden,pool", &data)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "minPrice=100&maxPrice=500&amenities=garden,pool", data.Query)
	assert.Equal(t, int64(100), data.Filters.PriceMin)
	assert.Equal(t, []string{"garden", "pool"}, data.Filters.Amenities)
}

func TestOptionsPreflight(t *testing.T) {
	srv := newTestServer(t, &fixedClient{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/search", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://homes.example")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "https://homes.example", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fixedClient{page: &types.ResultsPage{Total: 0}})
	get(t, srv.URL+"/api/search", nil)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), "slaskhomes_http_requests_total")
}

func TestRateLimit(t *testing.T) {
	ws := NewWebServer(search.NewFetcher(&fixedClient{}), nil, 1)
	srv := httptest.NewServer(ws.Handler())
	defer srv.Close()

	first := get(t, srv.URL+"/api/filters", nil)
	second := get(t, srv.URL+"/api/filters", nil)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
