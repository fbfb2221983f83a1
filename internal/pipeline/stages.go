package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

func (p *Pipeline) refresh(ctx context.Context, log *slog.Logger) (StageResult, error) {
	records, err := p.Records.List(ctx)
	if err != nil {
		return StageResult{}, fmt.Errorf("list records: %w", err)
	}

	stale := p.settings.Staleness.Stale(records, p.clock.Now())
	p.metrics.StaleCities.Set(float64(len(stale)))
	log.Info("stale cities found", "stale", len(stale), "total", len(records))

	batch := stale
	if len(batch) > p.settings.RefreshBatchSize {
		batch = batch[:p.settings.RefreshBatchSize]
	}

	var res StageResult
	res.Skipped = len(stale) - len(batch)
	for _, rec := range batch {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempted++
		if _, err := p.refreshOne(ctx, log, rec, ""); err != nil {
			res.Failed++
			log.Warn("refresh failed, record left unchanged", "city_id", rec.CityID, "error", err)
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

// refreshOne asks for an update of prev, saves it and records a refresh entry.
// prefix, when set, leads the changelog details.
func (p *Pipeline) refreshOne(ctx context.Context, log *slog.Logger, prev domain.CityRecord, prefix string) (domain.CityRecord, error) {
	log.Info("refreshing city", "city_id", prev.CityID)

	reply, err := p.Researcher.Refresh(ctx, prev)
	if err != nil {
		return domain.CityRecord{}, fmt.Errorf("research: %w", err)
	}
	updated, err := domain.RefreshRecordFromReply(prev, reply, p.settings.Scoring, p.clock.Now())
	if err != nil {
		return domain.CityRecord{}, err
	}
	if err := p.Records.Save(ctx, updated); err != nil {
		return domain.CityRecord{}, fmt.Errorf("save record: %w", err)
	}

	details := fmt.Sprintf("Score: %s → %s", formatScore(prev.OverallSafetyScore), formatScore(updated.OverallSafetyScore))
	if prefix != "" {
		details = prefix + ". " + details
	}
	p.record(ctx, log, domain.ActionRefresh, updated.CityID, details)
	log.Info("city refreshed", "city_id", updated.CityID, "score", updated.Score(), "trending", updated.Trending)
	return updated, nil
}

func (p *Pipeline) add(ctx context.Context, log *slog.Logger) (StageResult, error) {
	queue, err := p.Queue.Load(ctx)
	if err != nil {
		return StageResult{}, fmt.Errorf("load queue: %w", err)
	}
	if len(queue) == 0 {
		p.queueLeft = 0
		p.metrics.QueueLength.Set(0)
		log.Info("queue empty")
		return StageResult{}, nil
	}

	batch := queue
	if len(batch) > p.settings.AddBatchSize {
		batch = batch[:p.settings.AddBatchSize]
	}

	var res StageResult
	visited := 0
	for _, entry := range batch {
		if ctx.Err() != nil {
			break
		}
		visited++
		if entry.Name == "" || entry.Country == "" {
			res.Skipped++
			log.Warn("queue entry missing name or country", "name", entry.Name, "country", entry.Country)
			continue
		}

		id := domain.CityID(entry.Name, entry.Country)
		_, ok, err := p.Records.Load(ctx, id)
		if err != nil && ctx.Err() != nil {
			visited--
			break
		}
		if err != nil {
			res.Skipped++
			log.Warn("existing record unreadable, skipping", "city_id", id, "error", err)
			continue
		}
		if ok {
			res.Skipped++
			log.Info("city already tracked, skipping", "city_id", id)
			continue
		}

		res.Attempted++
		if _, err := p.addOne(ctx, log, entry, ""); err != nil {
			res.Failed++
			log.Warn("add failed, entry dropped", "city_id", id, "error", err)
			continue
		}
		res.Succeeded++
	}

	// Entries the loop reached leave the queue even when the add was
	// interrupted; anything after them waits for the next run.
	left, err := p.Queue.Consume(context.WithoutCancel(ctx), batch[:visited])
	if err != nil {
		return res, fmt.Errorf("consume queue: %w", err)
	}
	p.queueLeft = left
	p.metrics.QueueLength.Set(float64(left))
	log.Info("queue consumed", "consumed", visited, "remaining", left)
	return res, ctx.Err()
}

func (p *Pipeline) addOne(ctx context.Context, log *slog.Logger, entry domain.QueueEntry, details string) (domain.CityRecord, error) {
	log.Info("generating city", "name", entry.Name, "country", entry.Country)

	reply, err := p.Researcher.Generate(ctx, entry.Name, entry.Country)
	if err != nil {
		return domain.CityRecord{}, fmt.Errorf("research: %w", err)
	}
	rec, err := domain.NewRecordFromReply(reply, entry.Name, entry.Country, entry.Region, p.settings.Scoring, p.clock.Now())
	if err != nil {
		return domain.CityRecord{}, err
	}
	if err := p.Records.Save(ctx, rec); err != nil {
		return domain.CityRecord{}, fmt.Errorf("save record: %w", err)
	}

	if details == "" {
		details = "New city added with score " + formatScore(rec.OverallSafetyScore)
	}
	p.record(ctx, log, domain.ActionAdd, rec.CityID, details)
	log.Info("city added", "city_id", rec.CityID, "score", rec.Score(), "tier", rec.SafetyTier)
	return rec, nil
}

func (p *Pipeline) rank(ctx context.Context, log *slog.Logger) (StageResult, error) {
	records, err := p.Records.List(ctx)
	if err != nil {
		return StageResult{}, fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		log.Info("no cities to rank")
		return StageResult{}, nil
	}

	ranked := p.settings.Scoring.Rank(records)
	res := StageResult{Attempted: len(ranked)}
	for _, rec := range ranked {
		if err := p.Records.Save(ctx, rec); err != nil {
			res.Failed++
			log.Warn("save ranked record failed", "city_id", rec.CityID, "error", err)
			continue
		}
		res.Succeeded++
	}

	if err := p.Rankings.Write(ctx, domain.RankingSummary(ranked)); err != nil {
		return res, fmt.Errorf("write rankings: %w", err)
	}
	p.metrics.RankedCities.Set(float64(len(ranked)))
	p.record(ctx, log, domain.ActionRankings, "all", fmt.Sprintf("Recalculated rankings for %d cities", len(ranked)))
	return res, nil
}

func (p *Pipeline) alerts(ctx context.Context, log *slog.Logger) (StageResult, error) {
	records, err := p.Records.List(ctx)
	if err != nil {
		return StageResult{}, fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		log.Info("no cities to check")
		return StageResult{}, nil
	}

	checked := records
	if len(checked) > p.settings.AlertCityLimit {
		checked = checked[:p.settings.AlertCityLimit]
	}

	reply, err := p.Researcher.CheckAlerts(ctx, checked)
	if err != nil {
		log.Warn("alert check failed", "cities", len(checked), "error", err)
		return StageResult{Attempted: 1, Failed: 1}, nil
	}

	alerts := domain.DecodeAlerts(reply)
	log.Info("alert check complete", "cities", len(checked), "alerts", len(alerts))

	var res StageResult
	for _, alert := range alerts {
		res.Attempted++
		cityID := alert.CityID
		if cityID == "" {
			cityID = "unknown"
		}
		log.Warn("safety alert",
			"city_id", cityID,
			"alert_type", alert.AlertType,
			"severity", alert.Severity,
			"summary", alert.Summary,
		)
		p.metrics.Alerts.WithLabelValues(severityLabel(alert.Severity)).Inc()

		details, err := json.Marshal(alert)
		if err != nil {
			res.Failed++
			log.Warn("encode alert failed", "city_id", cityID, "error", err)
			continue
		}
		p.record(ctx, log, domain.ActionAlert, cityID, string(details))
		res.Succeeded++

		if alert.Severity == domain.SeverityCritical && alert.CityID != "" {
			p.refreshCritical(ctx, log, alert.CityID)
		}
	}
	return res, nil
}

// refreshCritical refreshes a city named by a critical alert, when it is tracked.
func (p *Pipeline) refreshCritical(ctx context.Context, log *slog.Logger, cityID string) {
	prev, ok, err := p.Records.Load(ctx, cityID)
	if err != nil {
		log.Warn("load city for critical alert failed", "city_id", cityID, "error", err)
		return
	}
	if !ok {
		log.Info("critical alert for untracked city", "city_id", cityID)
		return
	}
	if _, err := p.refreshOne(ctx, log, prev, "Critical alert refresh"); err != nil {
		log.Warn("critical alert refresh failed", "city_id", cityID, "error", err)
	}
}

func severityLabel(s string) string {
	switch s {
	case domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow:
		return s
	default:
		return "other"
	}
}

func (p *Pipeline) single(ctx context.Context, log *slog.Logger, name, country string) (StageResult, error) {
	id := domain.CityID(name, country)
	res := StageResult{Attempted: 1}

	prev, ok, err := p.Records.Load(ctx, id)
	if err != nil {
		res.Failed = 1
		return res, fmt.Errorf("load %s: %w", id, err)
	}

	if ok {
		_, err = p.refreshOne(ctx, log, prev, "Manual single-city refresh")
	} else {
		_, err = p.addOne(ctx, log, domain.QueueEntry{Name: name, Country: country}, "Manual single-city addition")
	}
	if err != nil {
		res.Failed = 1
		return res, fmt.Errorf("process %s: %w", id, err)
	}
	res.Succeeded = 1
	return res, nil
}
