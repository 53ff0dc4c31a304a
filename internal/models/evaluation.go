package models

// QualityBand classifies an overall evaluation score.
type QualityBand string

const (
	BandExcellent  QualityBand = "excellent"
	BandGood       QualityBand = "good"
	BandAcceptable QualityBand = "acceptable"
	BandPoor       QualityBand = "poor"
)

// Band thresholds. BandForScore is the single source of truth; bands
// suggested by the evaluation model are ignored.
const (
	ExcellentThreshold  = 4.5
	GoodThreshold       = 3.5
	AcceptableThreshold = 2.5
)

// BandForScore derives the quality band from an overall score. It is a pure
// function of the score: equal scores always produce equal bands.
func BandForScore(score float64) QualityBand {
	switch {
	case score >= ExcellentThreshold:
		return BandExcellent
	case score >= GoodThreshold:
		return BandGood
	case score >= AcceptableThreshold:
		return BandAcceptable
	default:
		return BandPoor
	}
}

// The six fixed evaluation dimensions and their weights. Weights sum to 1.0.
const (
	DimColorFidelity      = "colorFidelity"
	DimTypographyAccuracy = "typographyAccuracy"
	DimComponentCoverage  = "componentCoverage"
	DimSemanticQuality    = "semanticQuality"
	DimConsistency        = "consistency"
	DimCompleteness       = "completeness"
)

// DimensionWeights maps each dimension to its fixed weight.
var DimensionWeights = map[string]float64{
	DimColorFidelity:      0.20,
	DimTypographyAccuracy: 0.15,
	DimComponentCoverage:  0.15,
	DimSemanticQuality:    0.20,
	DimConsistency:        0.15,
	DimCompleteness:       0.15,
}

// DimensionScore is one scored quality dimension.
type DimensionScore struct {
	Name          string   `json:"name"`
	Weight        float64  `json:"weight"`
	Score         float64  `json:"score"`
	Justification string   `json:"justification"`
	Evidence      []string `json:"evidence"`
}

// Recommendation is one improvement suggestion, ordered by priority.
type Recommendation struct {
	Priority   string `json:"priority"`
	Dimension  string `json:"dimension"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// Recommendation priorities as emitted by the evaluation model. Only
// critical and high priority recommendations are forwarded to refinement.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// EvaluationResult is the quality assessment of one BrandSpecification.
type EvaluationResult struct {
	OverallScore    float64          `json:"overallScore"`
	QualityBand     QualityBand      `json:"qualityBand"`
	Dimensions      []DimensionScore `json:"dimensions"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ActionableRecommendations returns the critical and high priority
// recommendations, preserving their order.
func (e *EvaluationResult) ActionableRecommendations() []Recommendation {
	var out []Recommendation
	for _, rec := range e.Recommendations {
		if rec.Priority == PriorityCritical || rec.Priority == PriorityHigh {
			out = append(out, rec)
		}
	}
	return out
}
