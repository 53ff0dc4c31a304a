package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"

	"github.com/nvellis/brandflow/internal/gcp"
	"github.com/nvellis/brandflow/internal/models"
)

// EvaluationAdapter scores a specification on the six quality dimensions
// via one model call.
type EvaluationAdapter interface {
	Evaluate(ctx context.Context, spec *models.BrandSpecification) (*models.EvaluationResult, *models.StageMetrics, error)
}

// Evaluator calls the pre-configured evaluator model. The returned score is
// trusted, but the quality band is always recomputed locally from the fixed
// thresholds, never taken from the model.
type Evaluator struct {
	model *genai.GenerativeModel
}

// NewEvaluator creates an Evaluator backed by the shared Vertex client.
func NewEvaluator(vertexClient *gcp.VertexClient) *Evaluator {
	return &Evaluator{model: vertexClient.EvaluatorModel}
}

// Evaluate scores the specification.
func (e *Evaluator) Evaluate(ctx context.Context, spec *models.BrandSpecification) (*models.EvaluationResult, *models.StageMetrics, error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode specification for evaluation: %w", err)
	}

	prompt := genai.Text(gcp.EvaluatorUserPrompt + "\n\nSpecification:\n" + string(specJSON))
	resp, err := e.model.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate evaluation from model: %w", err)
	}
	metrics := usageMetrics(resp)

	payload := extractJSONPayload(extractText(resp))
	if payload == "" {
		return nil, metrics, fmt.Errorf("model returned no JSON payload for evaluation")
	}

	eval, err := ParseEvaluationPayload([]byte(payload))
	if err != nil {
		slog.Error("Failed to parse evaluation payload", "error", err, "responseBody", payload)
		return nil, metrics, err
	}
	return eval, metrics, nil
}

// evaluationWire mirrors the model's reply shape.
type evaluationWire struct {
	OverallScore float64 `json:"overallScore"`
	Dimensions   []struct {
		Name          string   `json:"name"`
		Score         float64  `json:"score"`
		Justification string   `json:"justification"`
		Evidence      []string `json:"evidence"`
	} `json:"dimensions"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// ParseEvaluationPayload validates and normalizes a raw evaluation reply.
// All six fixed dimensions must be present exactly once; weights are
// attached from the fixed table, scores are clamped to [1.0, 5.0], and the
// band is derived from the overall score. A missing overall score falls
// back to the weighted dimension sum.
func ParseEvaluationPayload(data []byte) (*models.EvaluationResult, error) {
	var wire evaluationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation from model: %w", err)
	}

	if len(wire.Dimensions) != len(models.DimensionWeights) {
		return nil, fmt.Errorf("evaluation has %d dimensions, want %d", len(wire.Dimensions), len(models.DimensionWeights))
	}

	result := &models.EvaluationResult{Recommendations: wire.Recommendations}
	seen := make(map[string]bool)
	var weighted float64
	for _, d := range wire.Dimensions {
		weight, ok := models.DimensionWeights[d.Name]
		if !ok {
			return nil, fmt.Errorf("evaluation has unknown dimension %q", d.Name)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("evaluation repeats dimension %q", d.Name)
		}
		seen[d.Name] = true

		score := clampScore(d.Score)
		weighted += weight * score
		result.Dimensions = append(result.Dimensions, models.DimensionScore{
			Name:          d.Name,
			Weight:        weight,
			Score:         score,
			Justification: d.Justification,
			Evidence:      d.Evidence,
		})
	}

	result.OverallScore = clampScore(wire.OverallScore)
	if wire.OverallScore == 0 {
		result.OverallScore = weighted
	}
	result.QualityBand = models.BandForScore(result.OverallScore)
	return result, nil
}

func clampScore(score float64) float64 {
	if score < 1.0 {
		return 1.0
	}
	if score > 5.0 {
		return 5.0
	}
	return score
}
