package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/planar-app/planar/internal/config"
	"github.com/planar-app/planar/internal/notify"
	slacknotify "github.com/planar-app/planar/internal/notify/slack"
	"github.com/planar-app/planar/internal/plansvc"
	"github.com/planar-app/planar/internal/schedule"
	"github.com/planar-app/planar/internal/server"
	"github.com/planar-app/planar/internal/store/postgres"
	redisstore "github.com/planar-app/planar/internal/store/redis"
	"github.com/planar-app/planar/internal/tracker"
	"github.com/planar-app/planar/internal/tracker/clickup"
	"github.com/planar-app/planar/internal/tracker/github"
	"github.com/planar-app/planar/internal/tracker/jira"
	"github.com/planar-app/planar/internal/tracker/todoist"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("PLANAR_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("PLANAR_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis for invalidation events and view settings.
	events, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer events.Close()

	// Scheduling core: mutator applies drops, planner fills empty days.
	mutator := schedule.NewBulkMutator(store.Tasks(), events, loc)
	planClient := plansvc.New(cfg.Planner.URL, cfg.Planner.Token)
	planner := schedule.NewPlanner(store.Tasks(), planClient, mutator, cfg.Planner.DayCapacity, loc)

	// Tracker providers are registered only when a token is configured;
	// tasks imported from an unconfigured tracker stay local-only.
	registry := tracker.NewRegistry()
	if cfg.Trackers.GitHubToken != "" {
		registry.Register(github.New(cfg.Trackers.GitHubToken))
	}
	if cfg.Trackers.TodoistToken != "" {
		registry.Register(todoist.New(cfg.Trackers.TodoistToken))
	}
	if cfg.Trackers.ClickUpToken != "" {
		registry.Register(clickup.New(cfg.Trackers.ClickUpToken))
	}
	if cfg.Trackers.JiraToken != "" {
		registry.Register(jira.New(cfg.Trackers.JiraToken))
	}

	var sinks []notify.Sink
	if cfg.Slack.BotToken != "" && cfg.Slack.ChannelID != "" {
		sinks = append(sinks, slacknotify.NewFromToken(cfg.Slack.BotToken, cfg.Slack.ChannelID))
		log.Info().Str("channel", cfg.Slack.ChannelID).Msg("Slack notifications enabled")
	}
	notifier := notify.New(sinks...)

	syncer := tracker.NewSyncer(store.Tasks(), store.Integrations(), registry, mutator, notifier)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, events, mutator, planner, syncer, loc)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
