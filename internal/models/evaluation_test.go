package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  QualityBand
	}{
		{5.0, BandExcellent},
		{4.5, BandExcellent},
		{4.49, BandGood},
		{3.5, BandGood},
		{3.49, BandAcceptable},
		{2.5, BandAcceptable},
		{2.49, BandPoor},
		{1.0, BandPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandForScore(tt.score), "score %.2f", tt.score)
	}
}

func TestDimensionWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range DimensionWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, DimensionWeights, 6)
}

func TestActionableRecommendations(t *testing.T) {
	eval := &EvaluationResult{Recommendations: []Recommendation{
		{Priority: PriorityLow, Issue: "minor spacing drift"},
		{Priority: PriorityCritical, Issue: "primary color wrong"},
		{Priority: PriorityMedium, Issue: "missing hover states"},
		{Priority: PriorityHigh, Issue: "heading font unnamed"},
	}}

	got := eval.ActionableRecommendations()
	assert.Len(t, got, 2)
	assert.Equal(t, "primary color wrong", got[0].Issue)
	assert.Equal(t, "heading font unnamed", got[1].Issue)

	empty := &EvaluationResult{Recommendations: []Recommendation{{Priority: PriorityMedium}}}
	assert.Empty(t, empty.ActionableRecommendations())
}
