package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	const payload = `{"name":"Tokyo","scores":{"crime":{"score":92}}}`

	tests := []struct {
		name string
		in   string
	}{
		{"bare", payload},
		{"surrounding whitespace", "\n\t " + payload + "  \n"},
		{"fence with tag", "```json\n" + payload + "\n```"},
		{"fence without tag", "```\n" + payload + "\n```"},
		{"fence without closing line", "```json\n" + payload},
		{"closing fence with trailing spaces", "```json\n" + payload + "\n```   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ExtractJSON(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, payload, string(raw))
		})
	}
}

func TestExtractJSON_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"Sure! Here is the profile you asked for.",
		"```json\n{\"name\": \"Tokyo\",\n```",
		`{"name": "Tokyo"} trailing`,
	} {
		_, err := ExtractJSON(in)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), "%q", in)
		assert.NotNil(t, perr.Err)
	}

	t.Run("excerpt truncated", func(t *testing.T) {
		_, err := ExtractJSON(strings.Repeat("x", 2000))
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Len(t, perr.Excerpt, 500)
	})
}

func TestDecodeRecord(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		rec, err := DecodeRecord("```json\n{\"name\":\"Lima\",\"country\":\"Peru\",\"scores\":{\"crime\":{\"score\":48}}}\n```")
		require.NoError(t, err)
		assert.Equal(t, "Lima", rec.Name)
		assert.Equal(t, 48.0, rec.Scores[CategoryCrime].Score)
	})

	t.Run("array is not a record", func(t *testing.T) {
		_, err := DecodeRecord(`[{"name":"Lima"}]`)
		assert.ErrorIs(t, err, ErrNotObject)
	})

	t.Run("parse error passes through", func(t *testing.T) {
		_, err := DecodeRecord(`{"name":`)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr)
	})
}

func TestDecodeAlerts(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		alerts := DecodeAlerts("```json\n[{\"city_id\":\"cairo-egypt\",\"alert_type\":\"unrest\",\"severity\":\"critical\",\"summary\":\"Protests\",\"action\":\"update_score\"}]\n```")
		require.Len(t, alerts, 1)
		assert.Equal(t, Alert{
			CityID:    "cairo-egypt",
			AlertType: "unrest",
			Severity:  SeverityCritical,
			Summary:   "Protests",
			Action:    "update_score",
		}, alerts[0])
	})

	t.Run("empty array", func(t *testing.T) {
		assert.Empty(t, DecodeAlerts("[]"))
	})

	t.Run("non-array shapes yield nothing", func(t *testing.T) {
		for _, in := range []string{`{"alerts":[]}`, `"none"`, `null`, `no alerts today`} {
			assert.Empty(t, DecodeAlerts(in), in)
		}
	})

	t.Run("bad elements dropped", func(t *testing.T) {
		alerts := DecodeAlerts(`[1, {"city_id":"x","severity":"low"}, "nope"]`)
		require.Len(t, alerts, 1)
		assert.Equal(t, "x", alerts[0].CityID)
	})
}

func TestParseError_Unwrap(t *testing.T) {
	inner := &json.SyntaxError{}
	err := &ParseError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "parse model reply")
}
