package main

import (
	"context"
	"net/http"

	"github.com/matst80/slask-homes/pkg/common"
	"github.com/matst80/slask-homes/pkg/search"
	"github.com/matst80/slask-homes/pkg/server"
	"github.com/matst80/slask-homes/pkg/tracking"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search api",
	Long: `Serves /api/search, /api/filters and /metrics. Configuration is read from
the environment (LISTEN_ADDRESS, API_URL, REDIS_URL, RABBIT_URL, ...).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func loadConfig() (*common.Config, error) {
	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, err
	}
	if apiUrl != "" {
		cfg.ApiUrl = apiUrl
	}
	return cfg, nil
}

func buildClient(cfg *common.Config) (search.Client, []common.ShutdownHook) {
	var client search.Client = search.NewHttpClient(cfg.ApiUrl, &http.Client{Timeout: cfg.SearchTimeout})
	var hooks []common.ShutdownHook
	if cfg.CacheEnabled() {
		cached := search.NewCachedClient(client, search.NewRedisClient(cfg.RedisUrl, cfg.RedisPassword, cfg.RedisDb), cfg.CacheTtl, logger)
		hooks = append(hooks, func(ctx context.Context) error {
			return cached.Close()
		})
		client = cached
		logger.Info("result cache enabled", zap.String("redis", cfg.RedisUrl), zap.Duration("ttl", cfg.CacheTtl))
	}
	return client, hooks
}

func buildTracking(cfg *common.Config) (tracking.Tracking, common.ShutdownHook) {
	if !cfg.TrackingEnabled() {
		return tracking.NoTracking{}, nil
	}
	trk, err := tracking.NewRabbitTracking(cfg.RabbitUrl, logger)
	if err != nil {
		logger.Warn("search tracking disabled", zap.Error(err))
		return tracking.NoTracking{}, nil
	}
	return trk, func(ctx context.Context) error {
		return trk.Close()
	}
}

func fetchOptions(cfg *common.Config, trk tracking.Tracking) []search.Option {
	return []search.Option{
		search.WithTimeout(cfg.SearchTimeout),
		search.WithFeaturedFallback(cfg.FeaturedFallback),
		search.WithEmptyFallback(cfg.EmptyFallback),
		search.WithTracking(trk, ""),
		search.WithLogger(logger),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, hooks := buildClient(cfg)
	trk, trackingHook := buildTracking(cfg)
	hooks = append(hooks, trackingHook)

	fetcher := search.NewFetcher(client, fetchOptions(cfg, trk)...)
	ws := server.NewWebServer(fetcher, logger, cfg.RateLimit)
	srv := common.NewServerWithTimeouts(&http.Server{
		Addr:    cfg.ListenAddress,
		Handler: ws.Handler(),
	}, cfg.Timeouts)

	return common.RunServerWithShutdown(cmd.Context(), srv, logger, "finder", cfg.Timeouts, hooks...)
}
