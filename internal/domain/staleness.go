package domain

import (
	"sort"
	"strings"
	"time"
)

// StalenessPolicy decides which records are due for a refresh.
type StalenessPolicy struct {
	ThresholdDays int
	// Fallback stands in for missing or malformed last_updated values when
	// ordering. Such records are stale whatever the threshold.
	Fallback time.Time
}

// DefaultStalenessPolicy returns the 30-day policy.
func DefaultStalenessPolicy() StalenessPolicy {
	return StalenessPolicy{
		ThresholdDays: 30,
		Fallback:      time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// timestampLayouts are tried in order; zone-less layouts are parsed as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are
// interpreted as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Cutoff returns the instant before which a record counts as stale.
func (p StalenessPolicy) Cutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -p.ThresholdDays)
}

// Stale returns the records last updated strictly before now minus the
// threshold, plus every record without a usable timestamp, oldest first. Records with equal timestamps keep their input order.
func (p StalenessPolicy) Stale(records []CityRecord, now time.Time) []CityRecord {
	cutoff := p.Cutoff(now)

	type candidate struct {
		rec CityRecord
		at  time.Time
	}
	var stale []candidate
	for _, rec := range records {
		at, ok := ParseTimestamp(rec.LastUpdated)
		if !ok {
			at = p.Fallback
		}
		if !ok || at.Before(cutoff) {
			stale = append(stale, candidate{rec: rec, at: at})
		}
	}

	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].at.Before(stale[j].at)
	})

	out := make([]CityRecord, len(stale))
	for i, c := range stale {
		out[i] = c.rec
	}
	return out
}
