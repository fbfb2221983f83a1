package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotObject is returned when a reply parses as JSON but is not an object.
var ErrNotObject = errors.New("reply is not a JSON object")

// excerptLen bounds how much of a bad reply is kept on a ParseError.
const excerptLen = 500

// ParseError reports a model reply that could not be parsed as JSON.
type ParseError struct {
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractJSON pulls the JSON value out of a model reply. A reply wrapped in a
// markdown code fence (with or without a language tag) has the opening line
// and, when present, the closing fence line removed before parsing.
func ExtractJSON(text string) (json.RawMessage, error) {
	cleaned := stripFence(strings.TrimSpace(text))

	if !json.Valid([]byte(cleaned)) {
		var v any
		err := json.Unmarshal([]byte(cleaned), &v)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, &ParseError{Excerpt: truncate(text, excerptLen), Err: err}
	}
	return json.RawMessage(cleaned), nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// DecodeRecord extracts a city record from a model reply. The reply must be
// a JSON object.
func DecodeRecord(text string) (CityRecord, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return CityRecord{}, err
	}
	if !isObject(raw) {
		return CityRecord{}, ErrNotObject
	}
	var rec CityRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return CityRecord{}, &ParseError{Excerpt: truncate(text, excerptLen), Err: err}
	}
	return rec, nil
}

// Alert severities.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Alert is one breaking safety event reported by the model.
type Alert struct {
	CityID    string `json:"city_id"`
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	Summary   string `json:"summary"`
	Action    string `json:"action"`
}

// DecodeAlerts extracts the alert list from a model reply. Anything other than
// a JSON array, including an unparseable reply, yields no alerts. Array
// elements that are not alert objects are dropped.
func DecodeAlerts(text string) []Alert {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	alerts := make([]Alert, 0, len(items))
	for _, item := range items {
		var a Alert
		if err := json.Unmarshal(item, &a); err != nil {
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
