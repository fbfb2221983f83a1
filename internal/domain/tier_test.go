package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	s := DefaultScoring()

	tests := []struct {
		score float64
		want  string
	}{
		{100, TierVerySafe},
		{85.0, TierVerySafe},
		{84.9, TierGenerallySafe},
		{70, TierGenerallySafe},
		{69.9, TierModerate},
		{55.0, TierModerate},
		{54.9, TierElevated},
		{40, TierElevated},
		{39.9, TierHighRisk},
		{0, TierHighRisk},
		{-0.1, TierModerate},
		{100.1, TierModerate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Classify(tt.score).ID, "score=%v", tt.score)
	}
}

func TestClassify_TotalOverRange(t *testing.T) {
	s := DefaultScoring()
	valid := map[string]bool{}
	for _, tier := range s.Tiers {
		valid[tier.ID] = true
	}
	for i := 0; i <= 1000; i++ {
		score := float64(i) / 10
		tier := s.Classify(score)
		assert.True(t, valid[tier.ID], "score=%v", score)
		assert.NotEmpty(t, tier.Label)
	}
}

func TestClassify_Labels(t *testing.T) {
	s := DefaultScoring()
	assert.Equal(t, "Very Safe", s.Classify(90).Label)
	assert.Equal(t, "Moderate Risk", s.Classify(-5).Label)
	assert.Equal(t, "High Risk", s.TierLabel(TierHighRisk))
	assert.Equal(t, "mystery", s.TierLabel("mystery"))
}
