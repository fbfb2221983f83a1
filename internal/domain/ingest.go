package domain

import (
	"fmt"
	"time"
)

// FormatTimestamp renders t the way records store last_updated.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewRecordFromReply builds a fresh city record from a generation reply.
// The id is always derived from name and country, whatever the model wrote.
func NewRecordFromReply(reply, name, country, region string, scoring Scoring, now time.Time) (CityRecord, error) {
	rec, err := DecodeRecord(reply)
	if err != nil {
		return CityRecord{}, fmt.Errorf("decode generated record: %w", err)
	}

	rec.CityID = CityID(name, country)
	if rec.Name == "" {
		rec.Name = name
	}
	if rec.Country == "" {
		rec.Country = country
	}
	if rec.Region == "" {
		rec.Region = region
	}

	score := scoring.Aggregate(rec.Scores)
	rec.OverallSafetyScore = &score
	rec.SafetyTier = scoring.Classify(score).ID
	rec.Trending = TrendStable
	rec.GlobalRank = 0
	rec.AutoGenerated = true
	rec.HumanReviewed = false

	if _, ok := ParseTimestamp(rec.LastUpdated); !ok {
		rec.LastUpdated = FormatTimestamp(now)
	}
	if rec.RevisionCount < 1 {
		rec.RevisionCount = 1
	}
	return rec, nil
}

// RefreshRecordFromReply merges a refresh reply over prev. The city id and
// global rank come from prev; score, tier and trend are recomputed. The
// result always has a later last_updated and a higher revision count than prev.
func RefreshRecordFromReply(prev CityRecord, reply string, scoring Scoring, now time.Time) (CityRecord, error) {
	rec, err := DecodeRecord(reply)
	if err != nil {
		return CityRecord{}, fmt.Errorf("decode refreshed record %s: %w", prev.CityID, err)
	}

	rec.CityID = prev.CityID
	if rec.Name == "" {
		rec.Name = prev.Name
	}
	if rec.Country == "" {
		rec.Country = prev.Country
	}
	if rec.Region == "" {
		rec.Region = prev.Region
	}

	score := scoring.Aggregate(rec.Scores)
	rec.Trending = scoring.Trend(prev.OverallSafetyScore, score)
	rec.OverallSafetyScore = &score
	rec.SafetyTier = scoring.Classify(score).ID
	rec.GlobalRank = prev.GlobalRank

	updated, ok := ParseTimestamp(rec.LastUpdated)
	previous, prevOK := ParseTimestamp(prev.LastUpdated)
	if !ok || (prevOK && !updated.After(previous)) {
		rec.LastUpdated = FormatTimestamp(now)
	}
	if rec.RevisionCount < prev.RevisionCount+1 {
		rec.RevisionCount = prev.RevisionCount + 1
	}
	return rec, nil
}
