package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/matst80/slask-homes/pkg/common"
	"github.com/matst80/slask-homes/pkg/search"
	"github.com/matst80/slask-homes/pkg/sorting"
	"github.com/matst80/slask-homes/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// WebServer exposes the filter engine over http. One Fetcher is shared by all
// requests, so identical queries from different visitors share a request.
type WebServer struct {
	Fetcher   *search.Fetcher
	Logger    *zap.Logger
	RateLimit int
}

func NewWebServer(fetcher *search.Fetcher, logger *zap.Logger, rateLimit int) *WebServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebServer{
		Fetcher:   fetcher,
		Logger:    logger,
		RateLimit: rateLimit,
	}
}

// Search decodes the query, fetches and answers with the refined page. A
// response that is stale for the shared fetcher is still this request's answer.
func (ws *WebServer) Search(w http.ResponseWriter, r *http.Request) (any, error) {
	noRequests.WithLabelValues("search").Inc()
	model := types.DecodeValues(r.URL.Query())
	res, err := ws.Fetcher.Fetch(r.Context(), model)
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil, err
	}

	data := SearchResponse{
		Query:    types.Encode(model),
		Page:     model.Page,
		PageSize: types.PageSize,
		Items:    []types.Property{},
	}
	if res != nil {
		data.Items = sorting.Refine(res.Page, model)
		data.Total = res.Page.Total
		data.Fallback = res.Fallback
	}
	if err != nil {
		noFailedRequests.Inc()
		data.Error = err.Error()
		genericHeaders(w, r)
		w.WriteHeader(http.StatusBadGateway)
		return data, err
	}
	defaultHeaders(w, r, "120")
	return data, nil
}

// Filters answers with the normalized model and canonical query of the request.
func (ws *WebServer) Filters(w http.ResponseWriter, r *http.Request) (any, error) {
	noRequests.WithLabelValues("filters").Inc()
	model := types.DecodeValues(r.URL.Query())
	publicHeaders(w, r, "3600")
	return FiltersResponse{
		Query:   types.Encode(model),
		Filters: model,
	}, nil
}

func (ws *WebServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		if ws.RateLimit > 0 {
			r.Use(httprate.LimitByIP(ws.RateLimit, time.Minute))
		}
		r.Options("/*", common.RespondToOptions)
		r.Get("/search", common.JsonHandler(ws.Logger, ws.Search))
		r.Get("/filters", common.JsonHandler(ws.Logger, ws.Filters))
	})
	return r
}
