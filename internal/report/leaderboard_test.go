package report

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

func init() {
	color.NoColor = true
}

func TestWriteLeaderboard(t *testing.T) {
	entries := []domain.RankingEntry{
		{Rank: 1, CityID: "oslo-norway", Name: "Oslo", Country: "Norway", Score: 88, Tier: domain.TierVerySafe, Trending: domain.TrendImproving},
		{Rank: 2, CityID: "rome-italy", Name: "Rome", Country: "Italy", Score: 74.5, Tier: domain.TierGenerallySafe, Trending: domain.TrendStable},
		{Rank: 3, CityID: "cairo-egypt", Name: "Cairo", Country: "Egypt", Score: 50, Tier: domain.TierElevated, Trending: domain.TrendDeclining},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLeaderboard(&buf, entries, domain.DefaultScoring(), 2))
	out := buf.String()

	assert.Contains(t, out, "top 2 of 3")
	assert.Contains(t, out, "Oslo")
	assert.Contains(t, out, "88.0")
	assert.Contains(t, out, "Very Safe")
	assert.Contains(t, out, "↑")
	assert.Contains(t, out, "Generally Safe")
	assert.NotContains(t, out, "Cairo")
}

func TestWriteLeaderboard_NoLimit(t *testing.T) {
	var entries []domain.RankingEntry
	for i := 1; i <= 30; i++ {
		entries = append(entries, domain.RankingEntry{Rank: i, Name: fmt.Sprintf("City%02d", i), Tier: domain.TierModerate})
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLeaderboard(&buf, entries, domain.DefaultScoring(), 0))
	assert.Contains(t, buf.String(), "City30")
}

func TestWriteLeaderboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeaderboard(&buf, nil, domain.DefaultScoring(), 20))
	assert.Equal(t, "No cities ranked yet.\n", buf.String())
}
