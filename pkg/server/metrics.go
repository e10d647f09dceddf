package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskhomes_http_requests_total",
		Help: "The total number of api requests by route",
	}, []string{"route"})
	noFailedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskhomes_http_failed_searches_total",
		Help: "The total number of api searches answered without results",
	})
)
