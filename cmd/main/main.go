package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"match-service/internal/config"
	"match-service/internal/middleware"
	"match-service/internal/store"
	serverhttp "match-service/server/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	logger.Info().Msg("bye")
}

// run владеет всеми ресурсами процесса; defer'ы отрабатывают и при ошибке listen.
func run(cfg config.Config, logger zerolog.Logger) error {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn().Err(err).Msg("store close")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rl *middleware.IPRateLimiter
	if cfg.RateLimitPerMin > 0 {
		rl = middleware.NewIPRateLimiter(cfg.RateLimitPerMin, max(cfg.RateLimitPerMin/6, 1))
		rl.StartCleanup(ctx)
	}

	// старые отчёты чистим раз в час
	if ttl := cfg.ReportTTL.Duration; ttl > 0 {
		go pruneLoop(ctx, st, ttl, logger)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           serverhttp.NewRouter(cfg, logger, st, rl),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")
	return serve(ctx, srv, logger)
}

// serve слушает до отмены ctx и затем мягко гасит сервер; ошибка listen
// возвращается вызывающему.
func serve(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("server shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func pruneLoop(ctx context.Context, st *store.Store, ttl time.Duration, logger zerolog.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		if n, err := st.Prune(ttl); err != nil {
			logger.Warn().Err(err).Msg("prune reports")
		} else if n > 0 {
			logger.Info().Int("removed", n).Msg("pruned reports")
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}
