package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrend(t *testing.T) {
	s := DefaultScoring()
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		previous *float64
		current  float64
		want     string
	}{
		{"no previous score", nil, 72, TrendStable},
		{"up by threshold", ptr(50), 53, TrendImproving},
		{"down by threshold", ptr(50), 47, TrendDeclining},
		{"small rise", ptr(50), 51, TrendStable},
		{"just under threshold", ptr(50), 52.9, TrendStable},
		{"large drop", ptr(80), 60, TrendDeclining},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Trend(tt.previous, tt.current))
		})
	}
}
