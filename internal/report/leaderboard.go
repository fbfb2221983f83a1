// Package report renders the rankings leaderboard for terminal output.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

var tierColors = map[string]*color.Color{
	domain.TierVerySafe:      color.New(color.FgHiGreen, color.Bold),
	domain.TierGenerallySafe: color.New(color.FgGreen),
	domain.TierModerate:      color.New(color.FgYellow),
	domain.TierElevated:      color.New(color.FgHiRed),
	domain.TierHighRisk:      color.New(color.FgRed, color.Bold),
}

var trendSymbols = map[string]string{
	domain.TrendImproving: "↑",
	domain.TrendStable:    "→",
	domain.TrendDeclining: "↓",
}

// WriteLeaderboard writes the top limit entries as a table. A limit of zero
// or less writes every entry.
func WriteLeaderboard(w io.Writer, entries []domain.RankingEntry, scoring domain.Scoring, limit int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No cities ranked yet.")
		return err
	}
	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	title := color.New(color.FgHiCyan, color.Bold)
	if _, err := title.Fprintf(w, "City safety rankings (top %d of %d)\n", len(shown), len(entries)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Rank", "City", "Country", "Score", "Tier", "Trend")
	for _, e := range shown {
		tier := scoring.TierLabel(e.Tier)
		if c, ok := tierColors[e.Tier]; ok {
			tier = c.Sprint(tier)
		}
		trend, ok := trendSymbols[e.Trending]
		if !ok {
			trend = e.Trending
		}
		row := []string{
			strconv.Itoa(e.Rank),
			e.Name,
			e.Country,
			strconv.FormatFloat(e.Score, 'f', 1, 64),
			tier,
			trend,
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append %s: %w", e.CityID, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render leaderboard: %w", err)
	}
	return nil
}
