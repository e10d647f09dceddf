package common

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook is a function executed after a termination signal is received
// but before the HTTP server begins its graceful shutdown. If a hook returns
// an error it will be logged; shutdown continues regardless.
type ShutdownHook func(ctx context.Context) error

// RunServerWithShutdown starts the provided *http.Server and blocks until a termination
// signal (SIGINT or SIGTERM) is received or ctx is cancelled. It then runs any provided
// hooks (in order) with a context that shares the overall shutdown deadline, and finally
// gracefully shuts down the server. A listen error other than http.ErrServerClosed is
// returned without running the hooks.
//
// Typical usage:
//
//	server := common.NewServerWithTimeouts(&http.Server{Addr: ":8080", Handler: mux}, cfg.Timeouts)
//	common.RunServerWithShutdown(ctx, server, logger, "search", cfg.Timeouts, closeCache)
func RunServerWithShutdown(ctx context.Context, server *http.Server, logger *zap.Logger, name string, cfg TimeoutConfig, hooks ...ShutdownHook) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	hookTimeout := cfg.Hook
	if hookTimeout <= 0 {
		hookTimeout = 5 * time.Second
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("name", name), zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err, ok := <-listenErr:
		if ok {
			logger.Error("listen error", zap.String("name", name), zap.Error(err))
			return err
		}
		return nil
	case <-signalCtx.Done():
	}
	logger.Info("shutdown signal received", zap.String("name", name))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()

	for i, h := range hooks {
		if h == nil {
			continue
		}
		hCtx, hCancel := context.WithTimeout(shutdownCtx, hookTimeout)
		if err := h(hCtx); err != nil {
			logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
		}
		if errors.Is(hCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("shutdown hook timed out", zap.Int("hook", i))
		}
		hCancel()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete", zap.String("name", name))
	return nil
}

// TimeoutConfig holds server and shutdown related timeouts.
type TimeoutConfig struct {
	ReadHeader time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	Read       time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	Write      time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	Idle       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	Shutdown   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	Hook       time.Duration `envconfig:"HOOK_TIMEOUT" default:"5s"`
}

// NewServerWithTimeouts attaches timeout settings to an existing *http.Server or creates a new one if nil.
func NewServerWithTimeouts(base *http.Server, cfg TimeoutConfig) *http.Server {
	if base == nil {
		base = &http.Server{}
	}
	base.ReadHeaderTimeout = cfg.ReadHeader
	base.ReadTimeout = cfg.Read
	base.WriteTimeout = cfg.Write
	base.IdleTimeout = cfg.Idle
	return base
}
