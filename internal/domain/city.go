package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CategoryScore is one entry of a city's scores mapping. Only Score takes part
// in aggregation; everything else the model wrote (sub-scores, notes, sources)
// is kept in Extra and written back untouched.
type CategoryScore struct {
	Score float64
	Extra map[string]json.RawMessage
}

// rawCategoryKey holds a category value that was neither an object nor a number.
const rawCategoryKey = "value"

// UnmarshalJSON accepts the score as a number or a numeric string. A missing
// or non-numeric score decodes as zero so the category contributes nothing.
// Any other shape (a bare string, an array) also scores zero and is kept under
// Extra["value"] so one odd category never costs the whole record.
func (c *CategoryScore) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		// A bare number is tolerated as shorthand for {"score": n}.
		if v, ok := parseScoreValue(data); ok {
			c.Score = v
			c.Extra = nil
			return nil
		}
		c.Score = 0
		c.Extra = nil
		if !isNull(data) {
			c.Extra = map[string]json.RawMessage{rawCategoryKey: append(json.RawMessage(nil), data...)}
		}
		return nil
	}
	c.Score = 0
	if raw, ok := fields["score"]; ok {
		if v, ok := parseScoreValue(raw); ok {
			c.Score = v
		}
		delete(fields, "score")
	}
	if len(fields) == 0 {
		fields = nil
	}
	c.Extra = fields
	return nil
}

// MarshalJSON writes the score alongside the preserved extra fields.
func (c CategoryScore) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["score"] = c.Score
	return json.Marshal(out)
}

func parseScoreValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// CityRecord is the persisted safety profile for one city.
//
// Derived fields (OverallSafetyScore, SafetyTier, Trending, GlobalRank) are
// owned by the scoring functions. Fields the agent does not interpret are
// kept in Extra so a load/save round trip never drops model-written content.
type CityRecord struct {
	CityID             string
	Name               string
	Country            string
	Region             string
	Scores             map[string]CategoryScore
	OverallSafetyScore *float64
	SafetyTier         string
	Trending           string
	GlobalRank         int
	LastUpdated        string
	RecentIncidents    json.RawMessage
	RevisionCount      int
	AutoGenerated      bool
	HumanReviewed      bool

	Extra map[string]json.RawMessage
}

// Score returns the overall safety score, or 0 when the record was never scored.
func (c CityRecord) Score() float64 {
	if c.OverallSafetyScore == nil {
		return 0
	}
	return *c.OverallSafetyScore
}

// HasScores reports whether the record carries a scores mapping.
func (c CityRecord) HasScores() bool {
	return c.Scores != nil
}

// Clone returns a copy that shares no mutable state with c.
func (c CityRecord) Clone() CityRecord {
	out := c
	if c.Scores != nil {
		out.Scores = make(map[string]CategoryScore, len(c.Scores))
		for k, v := range c.Scores {
			out.Scores[k] = v
		}
	}
	if c.OverallSafetyScore != nil {
		v := *c.OverallSafetyScore
		out.OverallSafetyScore = &v
	}
	if c.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// cityRecordFields mirrors the known JSON keys of a CityRecord.
type cityRecordFields struct {
	CityID             string                   `json:"city_id"`
	Name               string                   `json:"name"`
	Country            string                   `json:"country"`
	Region             string                   `json:"region,omitempty"`
	Scores             map[string]CategoryScore `json:"scores,omitempty"`
	OverallSafetyScore *float64                 `json:"overall_safety_score,omitempty"`
	SafetyTier         string                   `json:"safety_tier,omitempty"`
	Trending           string                   `json:"trending,omitempty"`
	GlobalRank         int                      `json:"global_rank,omitempty"`
	LastUpdated        string                   `json:"last_updated,omitempty"`
	RecentIncidents    json.RawMessage          `json:"recent_incidents,omitempty"`
	RevisionCount      int                      `json:"revision_count,omitempty"`
	AutoGenerated      bool                     `json:"auto_generated"`
	HumanReviewed      bool                     `json:"human_reviewed"`
}

var knownRecordKeys = []string{
	"city_id", "name", "country", "region", "scores", "overall_safety_score",
	"safety_tier", "trending", "global_rank", "last_updated", "recent_incidents",
	"revision_count", "auto_generated", "human_reviewed",
}

// UnmarshalJSON decodes the known fields leniently and keeps the rest in Extra.
func (c *CityRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode city record: %w", err)
	}

	var rec CityRecord
	rec.CityID = decodeString(fields["city_id"])
	rec.Name = decodeString(fields["name"])
	rec.Country = decodeString(fields["country"])
	rec.Region = decodeString(fields["region"])
	rec.SafetyTier = decodeString(fields["safety_tier"])
	rec.Trending = decodeString(fields["trending"])
	rec.LastUpdated = decodeString(fields["last_updated"])
	rec.AutoGenerated = decodeBool(fields["auto_generated"])
	rec.HumanReviewed = decodeBool(fields["human_reviewed"])

	if raw, ok := fields["scores"]; ok && isNull(raw) {
		delete(fields, "scores")
	} else if ok {
		var scores map[string]CategoryScore
		if err := json.Unmarshal(raw, &scores); err == nil {
			if scores == nil {
				scores = map[string]CategoryScore{}
			}
			rec.Scores = scores
			delete(fields, "scores")
		}
		// A scores value that is not a mapping stays in Extra untouched and
		// the record reads as unscored.
	}
	if v, ok := parseScoreValue(fields["overall_safety_score"]); ok {
		rec.OverallSafetyScore = &v
	}
	if v, ok := parseScoreValue(fields["global_rank"]); ok {
		rec.GlobalRank = int(v)
	}
	if v, ok := parseScoreValue(fields["revision_count"]); ok {
		rec.RevisionCount = int(v)
	}
	if raw, ok := fields["recent_incidents"]; ok && !isNull(raw) {
		rec.RecentIncidents = append(json.RawMessage(nil), raw...)
	}

	for _, k := range knownRecordKeys {
		if k == "scores" {
			continue
		}
		delete(fields, k)
	}
	if len(fields) > 0 {
		rec.Extra = fields
	}

	*c = rec
	return nil
}

// MarshalJSON merges the known fields over Extra. Keys come out sorted.
func (c CityRecord) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(cityRecordFields{
		CityID:             c.CityID,
		Name:               c.Name,
		Country:            c.Country,
		Region:             c.Region,
		Scores:             c.Scores,
		OverallSafetyScore: c.OverallSafetyScore,
		SafetyTier:         c.SafetyTier,
		Trending:           c.Trending,
		GlobalRank:         c.GlobalRank,
		LastUpdated:        c.LastUpdated,
		RecentIncidents:    c.RecentIncidents,
		RevisionCount:      c.RevisionCount,
		AutoGenerated:      c.AutoGenerated,
		HumanReviewed:      c.HumanReviewed,
	})
	if err != nil {
		return nil, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	// An empty-but-present scores mapping survives the round trip.
	if c.Scores != nil && len(c.Scores) == 0 {
		merged["scores"] = json.RawMessage(`{}`)
	}
	for k, v := range c.Extra {
		if _, ok := merged[k]; ok {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func decodeBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// QueueEntry is one city waiting to be generated.
type QueueEntry struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
}

// UnmarshalJSON accepts the legacy "city" key as an alias for "name".
func (q *QueueEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		Country string `json:"country"`
		Region  string `json:"region"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode queue entry: %w", err)
	}
	q.Name = raw.Name
	if q.Name == "" {
		q.Name = raw.City
	}
	q.Country = raw.Country
	q.Region = raw.Region
	return nil
}

// Changelog actions.
const (
	ActionAdd      = "add"
	ActionRefresh  = "refresh"
	ActionRankings = "rankings"
	ActionAlert    = "alert"
)

// ChangelogEntry is one append-only audit record.
type ChangelogEntry struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	CityID    string `json:"city_id"`
	Details   string `json:"details"`
}

// RankingEntry is one row of the rankings summary document.
type RankingEntry struct {
	Rank     int     `json:"rank"`
	CityID   string  `json:"city_id"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Score    float64 `json:"score"`
	Tier     string  `json:"tier"`
	Trending string  `json:"trending"`
}
