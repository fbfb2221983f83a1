package domain

import "sort"

// Rank re-derives score and tier for every record carrying a scores mapping,
// sorts descending by overall score and assigns 1-based global ranks. Records
// never scored sort as 0. Ties keep their input order. The input slice is not
// modified.
func (s Scoring) Rank(records []CityRecord) []CityRecord {
	ranked := make([]CityRecord, len(records))
	for i, rec := range records {
		ranked[i] = s.Derive(rec.Clone())
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	for i := range ranked {
		ranked[i].GlobalRank = i + 1
	}
	return ranked
}

// RankingSummary builds the rankings document rows from ranked records.
func RankingSummary(ranked []CityRecord) []RankingEntry {
	out := make([]RankingEntry, 0, len(ranked))
	for _, rec := range ranked {
		trending := rec.Trending
		if trending == "" {
			trending = TrendStable
		}
		out = append(out, RankingEntry{
			Rank:     rec.GlobalRank,
			CityID:   rec.CityID,
			Name:     rec.Name,
			Country:  rec.Country,
			Score:    rec.Score(),
			Tier:     rec.SafetyTier,
			Trending: trending,
		})
	}
	return out
}
