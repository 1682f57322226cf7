package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dubplan/backend/internal/config"
	"github.com/dubplan/backend/internal/convert"
	"github.com/dubplan/backend/internal/db"
	"github.com/dubplan/backend/internal/events"
	httpapi "github.com/dubplan/backend/internal/http"
	"github.com/dubplan/backend/internal/metrics"
	"github.com/dubplan/backend/internal/parser"
	"github.com/dubplan/backend/internal/scheduler"
	"github.com/dubplan/backend/internal/service"
)

// @title Dubbing Planner API
// @version 1.0
// @description Dubbing script classification and recording schedule planning.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "dubplan-backend").Logger()

	ctx := context.Background()

	var store *db.Store
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL empty, running in memory-only mode")
	} else {
		store, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisURL != "" {
		redisPub, err := events.NewRedisPublisherFromURL(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, events disabled")
		} else {
			defer redisPub.Close()
			publisher = redisPub
		}
	}

	converter := convert.Dispatcher{Text: convert.PlainTextConverter{}}
	if cfg.ConverterURL != "" {
		converter.Remote = convert.HTTPConverter{BaseURL: cfg.ConverterURL}
	} else {
		logger.Info().Msg("no CONVERTER_URL, only plain text uploads accepted")
	}

	svc := &service.ProcessingService{
		Publisher: publisher,
		Metrics:   metrics.Default(),
		Logger:    logger,
		Options: service.Options{
			Roster:          parser.RosterOptions{Header: cfg.RosterHeader, MaxLines: cfg.RosterMaxLines},
			Durations:       cfg.NominalDurations(),
			RecordingDays:   cfg.RecordingDays,
			RecordingWindow: cfg.RecordingWindow,
			Calendar: scheduler.CalendarOptions{
				Days:        cfg.CalendarDays,
				StartHour:   cfg.CalendarStartHour,
				EndHour:     cfg.CalendarEndHour,
				Granularity: time.Duration(cfg.CalendarGranularityMin) * time.Minute,
			},
		},
	}
	if store != nil {
		svc.Store = store
	}

	router := httpapi.Router(cfg, store, svc, converter, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
