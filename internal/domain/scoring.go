package domain

import "math"

// Score categories.
const (
	CategoryCrime              = "crime"
	CategoryHealth             = "health"
	CategoryPoliticalStability = "political_stability"
	CategoryInfrastructure     = "infrastructure"
	CategoryNaturalDisaster    = "natural_disaster"
	CategoryScamsAndFraud      = "scams_and_fraud"
	CategoryLGBTQSafety        = "lgbtq_safety"
	CategoryWomenSafety        = "women_safety"
	CategoryNightSafety        = "night_safety"
)

// CategoryWeight is one row of the weight table.
type CategoryWeight struct {
	Category string
	Weight   float64
}

// Scoring bundles the tables used to derive scores, tiers and trends. It is
// passed by value into every derivation so callers can swap tables in tests
// without touching shared state.
type Scoring struct {
	// Weights is iterated in order so the floating-point sum is reproducible.
	Weights []CategoryWeight
	// Tiers must be ordered by descending Min.
	Tiers []Tier
	// Fallback is returned for scores outside every tier band.
	Fallback Tier
	// TrendThreshold is the inclusive score delta for improving/declining.
	TrendThreshold float64
	// MaxScore closes the top tier band.
	MaxScore float64
}

// DefaultScoring returns the production weight, tier and trend tables.
// The weights sum to 1.0.
func DefaultScoring() Scoring {
	return Scoring{
		Weights: []CategoryWeight{
			{CategoryCrime, 0.25},
			{CategoryHealth, 0.15},
			{CategoryPoliticalStability, 0.15},
			{CategoryInfrastructure, 0.10},
			{CategoryNaturalDisaster, 0.10},
			{CategoryScamsAndFraud, 0.10},
			{CategoryLGBTQSafety, 0.05},
			{CategoryWomenSafety, 0.05},
			{CategoryNightSafety, 0.05},
		},
		Tiers: []Tier{
			{ID: TierVerySafe, Label: "Very Safe", Min: 85},
			{ID: TierGenerallySafe, Label: "Generally Safe", Min: 70},
			{ID: TierModerate, Label: "Moderate Risk", Min: 55},
			{ID: TierElevated, Label: "Elevated Risk", Min: 40},
			{ID: TierHighRisk, Label: "High Risk", Min: 0},
		},
		Fallback:       Tier{ID: TierModerate, Label: "Moderate Risk", Min: 55},
		TrendThreshold: 3,
		MaxScore:       100,
	}
}

// Categories returns the category names in weight-table order.
func (s Scoring) Categories() []string {
	out := make([]string, len(s.Weights))
	for i, w := range s.Weights {
		out[i] = w.Category
	}
	return out
}

// Aggregate returns the weighted overall score rounded to one decimal.
// Categories absent from scores contribute nothing and the remaining weights
// are not renormalized, so a partial mapping scores lower than a full one.
func (s Scoring) Aggregate(scores map[string]CategoryScore) float64 {
	var total float64
	for _, w := range s.Weights {
		c, ok := scores[w.Category]
		if !ok {
			continue
		}
		total += c.Score * w.Weight
	}
	return roundTenth(total)
}

// Derive recomputes the overall score and tier of rec from its scores mapping.
// Records without a scores mapping are returned unchanged.
func (s Scoring) Derive(rec CityRecord) CityRecord {
	if !rec.HasScores() {
		return rec
	}
	score := s.Aggregate(rec.Scores)
	rec.OverallSafetyScore = &score
	rec.SafetyTier = s.Classify(score).ID
	return rec
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
