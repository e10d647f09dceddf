package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskhomes_searches_total",
		Help: "The total number of search requests sent to the endpoint",
	})
	noCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskhomes_searches_coalesced_total",
		Help: "The total number of fetches that joined a request already in flight",
	})
	noStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskhomes_searches_stale_total",
		Help: "The total number of responses dropped because a newer query was current",
	})
	noFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskhomes_search_failures_total",
		Help: "The total number of failed search requests",
	})
	noFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskhomes_featured_requests_total",
		Help: "The total number of featured fallback requests",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskhomes_cache_hits_total",
		Help: "The total number of searches served from the cache",
	})
)
