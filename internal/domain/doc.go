// Package domain models city safety profiles and the deterministic rules that
// derive scores, tiers, trends, staleness and rankings from them.
//
// # Records
//
// Each city is one JSON document keyed by a city id derived from its display
// name and country:
//
//	"Ho Chi Minh City", "Vietnam"  →  "ho-chi-minh-city-vietnam"
//
// Records are mostly written by a language model. The package interprets only
// the fields it derives from (scores, last_updated) and the fields it owns
// (overall_safety_score, safety_tier, trending, global_rank). Everything else
// is carried in [CityRecord.Extra] so a load/save cycle is lossless.
//
// # Scoring
//
// The overall score is a weighted sum over nine categories, rounded to one
// decimal:
//
//	crime 0.25 | health 0.15 | political_stability 0.15
//	infrastructure 0.10 | natural_disaster 0.10 | scams_and_fraud 0.10
//	lgbtq_safety 0.05 | women_safety 0.05 | night_safety 0.05
//
// Missing categories contribute zero and the remaining weights are not
// renormalized. A record missing health therefore tops out at 85.
//
// Tiers are contiguous half-open bands checked from the top:
//
//	[85,100] very_safe | [70,85) generally_safe | [55,70) moderate
//	[40,55) elevated   | [0,40) high_risk
//
// Scores outside [0,100] map to moderate. Trend compares the new score with
// the previous one using an inclusive ±3 threshold.
//
// # Model Replies
//
// Replies may arrive wrapped in a markdown code fence. [ExtractJSON] strips
// the fence and parses the payload; failures surface as [*ParseError] and are
// treated by callers as a per-city failure, never a fatal one.
//
// # Timestamps
//
// last_updated is ISO-8601. Values without a zone are UTC. Missing or
// unparseable values are always stale and sort as 2020-01-01T00:00:00Z.
package domain
