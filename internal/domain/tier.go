package domain

// Tier identifiers.
const (
	TierVerySafe      = "very_safe"
	TierGenerallySafe = "generally_safe"
	TierModerate      = "moderate"
	TierElevated      = "elevated"
	TierHighRisk      = "high_risk"
)

// Tier is a discrete safety band. A tier covers [Min, next higher tier's Min);
// the top tier is closed at Scoring.MaxScore.
type Tier struct {
	ID    string
	Label string
	Min   float64
}

// Classify maps a score to its tier. Bands are checked from the highest
// boundary down. Scores below the lowest band or above MaxScore (bad upstream
// data) get the Fallback tier rather than an error.
func (s Scoring) Classify(score float64) Tier {
	if score > s.MaxScore {
		return s.Fallback
	}
	for _, t := range s.Tiers {
		if score >= t.Min {
			return t
		}
	}
	return s.Fallback
}

// TierLabel returns the display label for a tier id, or the id itself when unknown.
func (s Scoring) TierLabel(id string) string {
	for _, t := range s.Tiers {
		if t.ID == id {
			return t.Label
		}
	}
	return id
}
