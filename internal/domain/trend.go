package domain

// Trend directions.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// Trend compares a new overall score against the previous one. A nil previous
// score counts as unchanged. Both thresholds are inclusive.
func (s Scoring) Trend(previous *float64, current float64) string {
	old := current
	if previous != nil {
		old = *previous
	}
	diff := current - old
	switch {
	case diff >= s.TrendThreshold:
		return TrendImproving
	case diff <= -s.TrendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}
