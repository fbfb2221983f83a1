package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/tsethwilliams/isitsafetovisit/internal/adapter/filestore"
	"github.com/tsethwilliams/isitsafetovisit/internal/adapter/gemini"
	httpadapter "github.com/tsethwilliams/isitsafetovisit/internal/adapter/http"
	kafkaadapter "github.com/tsethwilliams/isitsafetovisit/internal/adapter/kafka"
	"github.com/tsethwilliams/isitsafetovisit/internal/adapter/queuewatch"
	"github.com/tsethwilliams/isitsafetovisit/internal/config"
	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
	"github.com/tsethwilliams/isitsafetovisit/internal/pipeline"
	"github.com/tsethwilliams/isitsafetovisit/internal/report"
	"github.com/tsethwilliams/isitsafetovisit/internal/scheduler"
)

const (
	modeFull    = "full"
	modeRefresh = "refresh"
	modeAdd     = "add"
	modeRank    = "rank"
	modeAlert   = "alert"
	modeSingle  = "single"
	modeSeed    = "seed"
	modeServe   = "serve"
)

// needsLLM lists the modes that call the model.
var needsLLM = map[string]bool{
	modeFull:    true,
	modeRefresh: true,
	modeAdd:     true,
	modeRank:    false,
	modeAlert:   true,
	modeSingle:  true,
	modeSeed:    false,
	modeServe:   true,
}

func main() {
	os.Exit(run())
}

func run() int {
	mode := flag.String("mode", modeFull, "full|refresh|add|rank|alert|single|seed|serve")
	city := flag.String("city", "", `city for single mode, as "Name, Country"`)
	flag.Parse()

	if _, ok := needsLLM[*mode]; !ok {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		flag.Usage()
		return 1
	}
	if *mode == modeSingle {
		if _, _, err := domain.ParseCityInput(*city); err != nil {
			fmt.Fprintf(os.Stderr, "--city: %v\n", err)
			return 1
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if needsLLM[*mode] {
		if err := cfg.RequireLLM(); err != nil {
			slog.Error("model not configured", "error", err)
			return 1
		}
	}

	logger, logCloser, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		return 1
	}
	defer logCloser.Close() //nolint:errcheck // best effort on exit

	metrics := observability.NewMetrics()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("create data dir", "error", err)
		return 1
	}
	store, err := filestore.New(filestore.Paths{
		DataDir:       cfg.DataDir,
		QueueFile:     cfg.QueueFile,
		ChangelogFile: cfg.ChangelogFile,
		RankingsFile:  cfg.RankingsFile,
	}, cfg.RecordCacheSize, logger, metrics)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := pipeline.Deps{
		Records:   store.Records,
		Queue:     store.Queue,
		Changelog: store.Changelog,
		Rankings:  store.Rankings,
	}

	if needsLLM[*mode] {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.LLMModel,
			MaxTokens:  cfg.LLMMaxTokens,
			WebSearch:  cfg.LLMWebSearch,
			Timeout:    cfg.LLMTimeout,
			RPS:        cfg.LLMRPS,
			MaxRetries: cfg.LLMMaxRetries,
		}, logger, metrics)
		if err != nil {
			logger.Error("failed to create model client", "error", err)
			return 1
		}
		deps.Researcher = client
	}

	if cfg.EventsEnabled {
		publisher := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic, logger, metrics)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		deps.Events = publisher
		logger.Info("event publishing enabled", "topic", cfg.KafkaEventsTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(deps, pipeline.Settings{
		AddBatchSize:     cfg.AddBatchSize,
		RefreshBatchSize: cfg.RefreshBatchSize,
		AlertCityLimit:   cfg.AlertCityLimit,
		Scoring:          domain.DefaultScoring(),
		Staleness: domain.StalenessPolicy{
			ThresholdDays: cfg.StalenessThresholdDays,
			Fallback:      domain.DefaultStalenessPolicy().Fallback,
		},
	}, clockwork.NewRealClock(), logger, metrics)

	if *mode == modeServe {
		return serve(ctx, cfg, p, store, logger)
	}

	runID := observability.NewRunID()
	ctx = observability.WithRunID(ctx, runID)
	logger.Info("agent run", "mode", *mode, "run_id", runID)

	switch *mode {
	case modeFull:
		_, err = p.RunFull(ctx)
	case modeRefresh:
		_, err = p.RunRefresh(ctx)
	case modeAdd:
		_, err = p.RunAdd(ctx)
	case modeRank:
		if _, err = p.RunRankings(ctx); err == nil {
			err = printLeaderboard(ctx, store.Rankings, cfg.ReportLimit)
		}
	case modeAlert:
		_, err = p.RunAlerts(ctx)
	case modeSingle:
		_, err = p.RunSingle(ctx, *city)
	case modeSeed:
		_, err = p.Seed(ctx)
	}
	if err != nil {
		logger.Error("agent run failed", "mode", *mode, "run_id", runID, "error", err)
		return 1
	}
	logger.Info("agent run complete", "mode", *mode, "run_id", runID)
	return 0
}

func printLeaderboard(ctx context.Context, rankings *filestore.RankingsStore, limit int) error {
	entries, err := rankings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rankings: %w", err)
	}
	return report.WriteLeaderboard(os.Stdout, entries, domain.DefaultScoring(), limit)
}

// serve runs scheduled stages, the queue watcher and the HTTP server until ctx
// is cancelled.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, store *filestore.Store, logger *slog.Logger) int {
	sched := scheduler.New(clockwork.NewRealClock(), logger)
	jobs := []struct {
		name string
		spec string
		fn   scheduler.JobFunc
	}{
		{"full", cfg.ScheduleFull, func(ctx context.Context) error {
			_, err := p.RunFull(ctx)
			return err
		}},
		{"refresh", cfg.ScheduleRefresh, func(ctx context.Context) error {
			_, err := p.RunRefresh(ctx)
			return err
		}},
		{"alert", cfg.ScheduleAlert, func(ctx context.Context) error {
			_, err := p.RunAlerts(ctx)
			return err
		}},
	}
	for _, j := range jobs {
		if _, err := sched.Add(j.name, j.spec, j.fn); err != nil {
			logger.Error("failed to schedule job", "error", err)
			return 1
		}
	}
	sched.Start(ctx)

	watchDone := make(chan struct{})
	if cfg.QueueWatch {
		if err := os.MkdirAll(filepath.Dir(cfg.QueueFile), 0o755); err != nil {
			logger.Error("create queue dir", "error", err)
			return 1
		}
		w := queuewatch.New(cfg.QueueFile, queuewatch.DefaultDebounce, func(ctx context.Context) {
			id := observability.NewRunID()
			_, ran, err := p.RunAddOnGrowth(observability.WithRunID(ctx, id))
			if err != nil {
				logger.Error("queue-triggered add failed", "run_id", id, "error", err)
				return
			}
			if ran {
				logger.Info("queue-triggered add complete", "run_id", id)
			}
		}, clockwork.NewRealClock(), logger)
		go func() {
			defer close(watchDone)
			if err := w.Run(ctx); err != nil {
				logger.Error("queue watcher error", "error", err)
			}
		}()
	} else {
		close(watchDone)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, store.Rankings, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("serving", "addr", cfg.HTTPAddr, "jobs", sched.Len(), "queue_watch", cfg.QueueWatch)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}
	select {
	case <-watchDone:
	case <-shutdownCtx.Done():
		logger.Error("queue watcher did not stop in time")
	}

	logger.Info("shutdown complete")
	return 0
}
