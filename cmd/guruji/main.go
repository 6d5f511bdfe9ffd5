package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guruji-labs/guruji/internal/config"
	"github.com/guruji-labs/guruji/internal/content"
	"github.com/guruji-labs/guruji/internal/httpapi"
	"github.com/guruji-labs/guruji/internal/observability"
	"github.com/guruji-labs/guruji/internal/profile"
	"github.com/guruji-labs/guruji/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("config error: %v", err)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogPretty)
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := profile.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("profile store init failed")
	}
	defer store.Close()

	provider, err := content.NewProvider(content.Config{
		Mode:    cfg.ContentMode,
		HTTPURL: cfg.ContentHTTPURL,
		Timeout: cfg.ContentTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("content provider init failed")
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	api := httpapi.New(cfg, sessions, store, provider, metrics, log)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Info().Str("addr", cfg.BindAddr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = httpServer.Close()
	}

	log.Info().Msg("shutdown complete")
}
