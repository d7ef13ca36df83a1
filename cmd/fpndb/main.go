package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fpndb/internal/config"
	"fpndb/internal/httpapi"
	"fpndb/internal/notify"
	"fpndb/internal/store"
	"fpndb/internal/store/memory"
	"fpndb/internal/store/postgres"
)

func main() {
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "fpndb").
		Logger()

	cfg, err := config.Load(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	var st store.Store
	var closer func()

	if cfg.DatabaseURL != "" {
		pg, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init postgres store")
		}
		st = pg
		closer = pg.Close
		logger.Info().Msg("using postgres store")
	} else {
		st = memory.NewStore()
		logger.Info().Msg("using memory store; contents are lost on restart")
	}

	if closer != nil {
		defer closer()
	}

	gateway := notify.New(logger, cfg)
	srv := httpapi.NewServer(logger, cfg, st, gateway)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr()).Msg("fpndb listening")
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutdown requested")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
}
