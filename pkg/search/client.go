package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-homes/pkg/types"
)

// HttpClient talks to the marketplace API:
//
//	GET {BaseUrl}/search?<canonical query>&limit=12 -> {"properties": [...], "total": n}
//	GET {BaseUrl}/featured                          -> [...]
type HttpClient struct {
	BaseUrl string
	Client  *http.Client
	Limit   int
}

func NewHttpClient(baseUrl string, client *http.Client) *HttpClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HttpClient{
		BaseUrl: strings.TrimSuffix(baseUrl, "/"),
		Client:  client,
		Limit:   types.PageSize,
	}
}

type searchPayload struct {
	Properties []types.Property `json:"properties"`
	Total      *int             `json:"total"`
}

func (c *HttpClient) searchUrl(query string) string {
	limit := "limit=" + strconv.Itoa(c.Limit)
	if query == "" {
		return c.BaseUrl + "/search?" + limit
	}
	return c.BaseUrl + "/search?" + query + "&" + limit
}

func (c *HttpClient) get(ctx context.Context, query, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.SearchFailure{Query: query, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.Client.Do(req)
	if err != nil {
		return nil, &types.SearchFailure{Query: query, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, &types.SearchFailure{Query: query, StatusCode: res.StatusCode, Err: fmt.Errorf("unexpected status %s", res.Status)}
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &types.SearchFailure{Query: query, StatusCode: res.StatusCode, Err: err}
	}
	return body, nil
}

func (c *HttpClient) Search(ctx context.Context, query string) (*types.ResultsPage, error) {
	body, err := c.get(ctx, query, c.searchUrl(query))
	if err != nil {
		return nil, err
	}
	var payload searchPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, &types.SearchFailure{Query: query, Err: fmt.Errorf("malformed payload: %w", err)}
	}
	if payload.Total == nil || *payload.Total < 0 {
		return nil, &types.SearchFailure{Query: query, Err: fmt.Errorf("malformed payload: missing total")}
	}
	if payload.Properties == nil {
		payload.Properties = []types.Property{}
	}
	return &types.ResultsPage{Items: payload.Properties, Total: *payload.Total}, nil
}

func (c *HttpClient) Featured(ctx context.Context) ([]types.Property, error) {
	body, err := c.get(ctx, "", c.BaseUrl+"/featured")
	if err != nil {
		return nil, err
	}
	var items []types.Property
	if err := sonic.Unmarshal(body, &items); err != nil {
		return nil, &types.SearchFailure{Err: fmt.Errorf("malformed featured payload: %w", err)}
	}
	return items, nil
}
