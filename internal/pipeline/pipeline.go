package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
)

// Stage names.
const (
	StageRefresh  = "refresh"
	StageAdd      = "add"
	StageRankings = "rankings"
	StageAlerts   = "alerts"
	StageSingle   = "single"
	StageSeed     = "seed"
)

// ErrInvalidCityInput is returned by RunSingle for input that is not "Name, Country".
var ErrInvalidCityInput = domain.ErrInvalidCityInput

// RecordStore loads and saves city records.
type RecordStore interface {
	Load(ctx context.Context, cityID string) (domain.CityRecord, bool, error)
	List(ctx context.Context) ([]domain.CityRecord, error)
	Save(ctx context.Context, rec domain.CityRecord) error
}

// QueueStore holds cities waiting to be generated.
type QueueStore interface {
	Load(ctx context.Context) ([]domain.QueueEntry, error)
	Consume(ctx context.Context, batch []domain.QueueEntry) (int, error)
	Replace(ctx context.Context, entries []domain.QueueEntry) error
}

// Changelog records every mutation.
type Changelog interface {
	Append(ctx context.Context, entry domain.ChangelogEntry) error
}

// RankingsWriter stores the leaderboard summary.
type RankingsWriter interface {
	Write(ctx context.Context, entries []domain.RankingEntry) error
}

// EventPublisher forwards changelog entries to an external stream.
type EventPublisher interface {
	Publish(ctx context.Context, entry domain.ChangelogEntry) error
}

// Deps are the collaborators a Pipeline works with. Events may be nil.
type Deps struct {
	Researcher domain.Researcher
	Records    RecordStore
	Queue      QueueStore
	Changelog  Changelog
	Rankings   RankingsWriter
	Events     EventPublisher
}

// Settings are the batch limits and scoring tables.
type Settings struct {
	AddBatchSize     int
	RefreshBatchSize int
	AlertCityLimit   int
	Scoring          domain.Scoring
	Staleness        domain.StalenessPolicy
}

// DefaultSettings returns the production batch limits and tables.
func DefaultSettings() Settings {
	return Settings{
		AddBatchSize:     5,
		RefreshBatchSize: 10,
		AlertCityLimit:   50,
		Scoring:          domain.DefaultScoring(),
		Staleness:        domain.DefaultStalenessPolicy(),
	}
}

// StageResult summarizes one stage run. Failed items were logged and left
// the store unchanged; Skipped items were never attempted.
type StageResult struct {
	Stage     string
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int
}

// Pipeline orchestrates the refresh, add, rankings and alerts stages.
// Stages are serialized: at most one runs at a time per Pipeline.
type Pipeline struct {
	Deps
	settings Settings
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu sync.Mutex
	// queueLeft is the queue length after the last add run or seed, -1 before either.
	queueLeft int
}

// New creates a Pipeline.
func New(deps Deps, settings Settings, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		Deps:      deps,
		settings:  settings,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		queueLeft: -1,
	}
}

type stageFunc func(ctx context.Context, log *slog.Logger) (StageResult, error)

// exec runs one stage with metrics and a summary log line. Callers hold p.mu.
func (p *Pipeline) exec(ctx context.Context, stage string, fn stageFunc) (StageResult, error) {
	log := p.logger.With("stage", stage)
	if id := observability.RunID(ctx); id != "" {
		log = log.With("run_id", id)
	}

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := p.clock.Now()
	log.Info("stage started")

	res, err := fn(ctx, log)
	res.Stage = stage

	p.metrics.StageDuration.WithLabelValues(stage).Observe(p.clock.Since(start).Seconds())
	p.metrics.StageItems.WithLabelValues(stage, "success").Add(float64(res.Succeeded))
	p.metrics.StageItems.WithLabelValues(stage, "failure").Add(float64(res.Failed))

	if err != nil {
		p.metrics.StageRuns.WithLabelValues(stage, "error").Inc()
		log.Error("stage failed", "error", err,
			"attempted", res.Attempted, "succeeded", res.Succeeded, "failed", res.Failed)
		return res, fmt.Errorf("%s stage: %w", stage, err)
	}
	p.metrics.StageRuns.WithLabelValues(stage, "ok").Inc()
	log.Info("stage complete",
		"attempted", res.Attempted,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"duration", p.clock.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, stage string, fn stageFunc) (StageResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exec(ctx, stage, fn)
}

// RunRefresh refreshes the stalest records, up to the refresh batch size.
func (p *Pipeline) RunRefresh(ctx context.Context) (StageResult, error) {
	return p.run(ctx, StageRefresh, p.refresh)
}

// RunAdd generates records for the head of the queue, up to the add batch size.
func (p *Pipeline) RunAdd(ctx context.Context) (StageResult, error) {
	return p.run(ctx, StageAdd, p.add)
}

// RunRankings re-derives scores for every record and rewrites the leaderboard.
func (p *Pipeline) RunRankings(ctx context.Context) (StageResult, error) {
	return p.run(ctx, StageRankings, p.rank)
}

// RunAlerts asks the researcher for breaking events and records each alert.
func (p *Pipeline) RunAlerts(ctx context.Context) (StageResult, error) {
	return p.run(ctx, StageAlerts, p.alerts)
}

// RunFull runs refresh, add, rankings and alerts in order. A failing stage is
// logged and the remaining stages still run; the returned error joins every
// stage failure.
func (p *Pipeline) RunFull(ctx context.Context) ([]StageResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info("full pipeline start", "run_id", observability.RunID(ctx))

	stages := []struct {
		name string
		fn   stageFunc
	}{
		{StageRefresh, p.refresh},
		{StageAdd, p.add},
		{StageRankings, p.rank},
		{StageAlerts, p.alerts},
	}

	results := make([]StageResult, 0, len(stages))
	var errs []error
	for _, s := range stages {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := p.exec(ctx, s.name, s.fn)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
		}
	}

	p.logger.Info("full pipeline complete", "run_id", observability.RunID(ctx), "failed_stages", len(errs))
	return results, errors.Join(errs...)
}

// RunAddOnGrowth runs an add stage only when the queue holds more entries than
// the last add run or seed left behind. It lets a file watcher react to queue
// edits without re-triggering on the pipeline's own queue writes.
func (p *Pipeline) RunAddOnGrowth(ctx context.Context) (StageResult, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	queue, err := p.Queue.Load(ctx)
	if err != nil {
		return StageResult{Stage: StageAdd}, false, fmt.Errorf("load queue: %w", err)
	}
	if len(queue) == 0 || (p.queueLeft >= 0 && len(queue) <= p.queueLeft) {
		return StageResult{Stage: StageAdd}, false, nil
	}
	res, err := p.exec(ctx, StageAdd, p.add)
	return res, true, err
}

// RunSingle refreshes the named city when it exists, otherwise generates it.
// The input must be "Name, Country".
func (p *Pipeline) RunSingle(ctx context.Context, input string) (StageResult, error) {
	name, country, err := domain.ParseCityInput(input)
	if err != nil {
		return StageResult{Stage: StageSingle}, err
	}
	return p.run(ctx, StageSingle, func(ctx context.Context, log *slog.Logger) (StageResult, error) {
		return p.single(ctx, log, name, country)
	})
}

// Seed replaces the queue with the built-in seed list.
func (p *Pipeline) Seed(ctx context.Context) (StageResult, error) {
	return p.run(ctx, StageSeed, func(ctx context.Context, log *slog.Logger) (StageResult, error) {
		seed := domain.SeedQueue()
		res := StageResult{Attempted: len(seed)}
		if err := p.Queue.Replace(ctx, seed); err != nil {
			return res, fmt.Errorf("write seed queue: %w", err)
		}
		res.Succeeded = len(seed)
		p.queueLeft = len(seed)
		p.metrics.QueueLength.Set(float64(len(seed)))
		log.Info("generated seed queue", "cities", len(seed))
		return res, nil
	})
}

// record appends a changelog entry and forwards it to the event stream.
// Failures are logged; the mutation they describe has already happened.
func (p *Pipeline) record(ctx context.Context, log *slog.Logger, action, cityID, details string) {
	entry := domain.ChangelogEntry{
		Timestamp: domain.FormatTimestamp(p.clock.Now()),
		Action:    action,
		CityID:    cityID,
		Details:   details,
	}
	if err := p.Changelog.Append(ctx, entry); err != nil {
		log.Error("changelog append failed", "action", action, "city_id", cityID, "error", err)
		return
	}
	if p.Events == nil {
		return
	}
	if err := p.Events.Publish(ctx, entry); err != nil {
		log.Warn("event publish failed", "action", action, "city_id", cityID, "error", err)
	}
}

// formatScore renders a score for changelog details; "?" when unscored.
func formatScore(score *float64) string {
	if score == nil {
		return "?"
	}
	return strconv.FormatFloat(*score, 'f', 1, 64)
}
