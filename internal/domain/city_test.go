package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityRecord_PreservesUnknownFields(t *testing.T) {
	in := `{
		"city_id": "tokyo-japan",
		"name": "Tokyo",
		"country": "Japan",
		"scores": {"crime": {"score": 92, "notes": "very low"}},
		"overall_safety_score": 23,
		"safety_tier": "high_risk",
		"last_updated": "2025-01-01T00:00:00Z",
		"recent_incidents": [{"date": "2024-12-30", "summary": "quake drill"}],
		"content": {"overview": "Huge and orderly."},
		"emergency_numbers": {"police": "110"},
		"auto_generated": true,
		"human_reviewed": false
	}`

	var rec CityRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))

	assert.Equal(t, "tokyo-japan", rec.CityID)
	assert.Equal(t, 92.0, rec.Scores[CategoryCrime].Score)
	assert.Equal(t, 23.0, rec.Score())
	assert.True(t, rec.AutoGenerated)
	assert.Len(t, rec.Extra, 2)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestCityRecord_LenientFields(t *testing.T) {
	var rec CityRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Lima",
		"scores": {"crime": {"score": "48.5"}, "health": 61, "night_safety": {"score": "n/a"}, "women_safety": {}},
		"overall_safety_score": "55.2",
		"global_rank": 7,
		"revision_count": "2",
		"auto_generated": "yes"
	}`), &rec))

	assert.Equal(t, 48.5, rec.Scores[CategoryCrime].Score)
	assert.Equal(t, 61.0, rec.Scores[CategoryHealth].Score)
	assert.Equal(t, 0.0, rec.Scores[CategoryNightSafety].Score)
	assert.Equal(t, 0.0, rec.Scores[CategoryWomenSafety].Score)
	assert.Equal(t, 55.2, rec.Score())
	assert.Equal(t, 7, rec.GlobalRank)
	assert.Equal(t, 2, rec.RevisionCount)
	assert.False(t, rec.AutoGenerated)
}

func TestCityRecord_ScoresPresence(t *testing.T) {
	var absent, empty CityRecord
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A"}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"name":"B","scores":{}}`), &empty))

	assert.False(t, absent.HasScores())
	assert.True(t, empty.HasScores())

	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"scores":{}`)

	out, err = json.Marshal(absent)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"scores"`)
	assert.NotContains(t, string(out), `"overall_safety_score"`)
}

func TestCityRecord_OddCategoryShapes(t *testing.T) {
	var rec CityRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"city_id": "cairo-egypt",
		"name": "Cairo",
		"scores": {"crime": {"score": 40}, "health": "n/a", "infrastructure": [80], "political_stability": null}
	}`), &rec))

	require.True(t, rec.HasScores())
	assert.Equal(t, 40.0, rec.Scores[CategoryCrime].Score)
	assert.Equal(t, 0.0, rec.Scores[CategoryHealth].Score)
	assert.JSONEq(t, `"n/a"`, string(rec.Scores[CategoryHealth].Extra["value"]))
	assert.JSONEq(t, `[80]`, string(rec.Scores[CategoryInfrastructure].Extra["value"]))
	assert.Nil(t, rec.Scores[CategoryPoliticalStability].Extra)
}

func TestCityRecord_NonMappingScores(t *testing.T) {
	in := `{"city_id":"oslo-norway","name":"Oslo","country":"Norway","scores":[],"auto_generated":false,"human_reviewed":true}`

	var rec CityRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))
	assert.Equal(t, "Oslo", rec.Name)
	assert.False(t, rec.HasScores())
	assert.True(t, rec.HumanReviewed)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out), "the original scores value is written back")

	var nulled CityRecord
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","scores":null}`), &nulled))
	assert.False(t, nulled.HasScores())
	assert.Empty(t, nulled.Extra)
}

func TestCityRecord_Clone(t *testing.T) {
	score := 70.0
	rec := CityRecord{
		Scores:             map[string]CategoryScore{CategoryCrime: {Score: 70}},
		OverallSafetyScore: &score,
		Extra:              map[string]json.RawMessage{"k": json.RawMessage(`1`)},
	}
	c := rec.Clone()
	c.Scores[CategoryCrime] = CategoryScore{Score: 1}
	*c.OverallSafetyScore = 1
	c.Extra["k"] = json.RawMessage(`2`)

	assert.Equal(t, 70.0, rec.Scores[CategoryCrime].Score)
	assert.Equal(t, 70.0, rec.Score())
	assert.Equal(t, json.RawMessage(`1`), rec.Extra["k"])
}

func TestQueueEntry_CityAlias(t *testing.T) {
	var entries []QueueEntry
	require.NoError(t, json.Unmarshal([]byte(`[{"city":"Accra","country":"Ghana"},{"name":"Lagos","city":"ignored","country":"Nigeria","region":"West Africa"}]`), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Accra", entries[0].Name)
	assert.Equal(t, "Lagos", entries[1].Name)
	assert.Equal(t, "West Africa", entries[1].Region)
}
