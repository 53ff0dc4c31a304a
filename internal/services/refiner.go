package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/nvellis/brandflow/internal/gcp"
	"github.com/nvellis/brandflow/internal/models"
	"github.com/nvellis/brandflow/internal/schema"
)

// RefinementThreshold is the quality gate: specifications scoring at or
// above it ship as-is and the refinement stage is skipped.
const RefinementThreshold = models.ExcellentThreshold

// RefinementAdapter issues one model call scoped to the supplied
// recommendations.
type RefinementAdapter interface {
	Refine(ctx context.Context, spec *models.BrandSpecification, recommendations []models.Recommendation) (*models.BrandSpecification, *models.StageMetrics, error)
}

// Refiner calls the pre-configured refiner model with the specification and
// the recommendations it must address.
type Refiner struct {
	model *genai.GenerativeModel
}

// NewRefiner creates a Refiner backed by the shared Vertex client.
func NewRefiner(vertexClient *gcp.VertexClient) *Refiner {
	return &Refiner{model: vertexClient.RefinerModel}
}

// Refine asks the model for a revised specification addressing exactly the
// given recommendations.
func (r *Refiner) Refine(ctx context.Context, spec *models.BrandSpecification, recommendations []models.Recommendation) (*models.BrandSpecification, *models.StageMetrics, error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode specification for refinement: %w", err)
	}
	recsJSON, err := json.Marshal(recommendations)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode recommendations for refinement: %w", err)
	}

	prompt := genai.Text(gcp.RefinerUserPrompt +
		"\n\nSpecification:\n" + string(specJSON) +
		"\n\nRecommendations to address:\n" + string(recsJSON))
	resp, err := r.model.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate refined specification from model: %w", err)
	}
	metrics := usageMetrics(resp)

	payload := extractJSONPayload(extractText(resp))
	if payload == "" {
		return nil, metrics, fmt.Errorf("model returned no JSON payload for refinement")
	}

	var refined models.BrandSpecification
	if err := json.Unmarshal([]byte(payload), &refined); err != nil {
		slog.Error("Failed to unmarshal refined specification", "error", err, "responseBody", payload)
		return nil, metrics, fmt.Errorf("failed to parse refined specification from model: %w", err)
	}
	return &refined, metrics, nil
}

// RefinementController owns the quality gate. It decides whether a
// specification ships as-is or gets one bounded improvement pass, and it
// guarantees refinement is additive-or-neutral: the specification reaching
// the caller is either a re-validated refinement or the original unchanged,
// never an invalid document.
type RefinementController struct {
	adapter   RefinementAdapter
	validator *schema.Validator
}

// NewRefinementController creates the controller.
func NewRefinementController(adapter RefinementAdapter, validator *schema.Validator) *RefinementController {
	return &RefinementController{adapter: adapter, validator: validator}
}

// Run applies the quality gate and, when warranted, one refinement pass.
// It never returns an error: refinement failures are absorbed into the
// StageResult and the original specification stands.
func (c *RefinementController) Run(ctx context.Context, spec *models.BrandSpecification, eval *models.EvaluationResult) (*models.BrandSpecification, models.StageResult) {
	start := time.Now()
	result := models.StageResult{Stage: models.StageRefine}

	if eval.OverallScore >= RefinementThreshold {
		result.Status = models.StageSkipped
		result.Duration = time.Since(start)
		result.Logs = []string{fmt.Sprintf("score %.2f is in the excellent band, refinement skipped", eval.OverallScore)}
		return spec, result
	}

	recommendations := eval.ActionableRecommendations()
	if len(recommendations) == 0 {
		result.Status = models.StageSkipped
		result.Duration = time.Since(start)
		result.Logs = []string{"no critical or high priority recommendations to address"}
		return spec, result
	}

	refined, metrics, err := c.adapter.Refine(ctx, spec, recommendations)
	result.Metrics = metrics
	if err != nil {
		slog.Warn("Refinement call failed, keeping original specification.", "specificationId", spec.ID, "error", err)
		return spec, c.fallback(result, start, err.Error())
	}

	// The model must not change document identity.
	refined.ID = spec.ID
	refined.SchemaVersion = spec.SchemaVersion
	refined.SourceURL = spec.SourceURL
	refined.GeneratedAt = spec.GeneratedAt

	violations, err := c.validator.Validate(refined)
	if err != nil {
		return spec, c.fallback(result, start, fmt.Sprintf("could not validate refined specification: %v", err))
	}
	if len(violations) > 0 {
		slog.Warn("Refined specification failed schema validation, keeping original.",
			"specificationId", spec.ID, "violations", len(violations))
		return spec, c.fallback(result, start,
			fmt.Sprintf("refined specification has %d schema violations, first: %s", len(violations), violations[0]))
	}

	result.Status = models.StageSuccess
	result.Duration = time.Since(start)
	result.Logs = []string{fmt.Sprintf("addressed %d recommendations", len(recommendations))}
	return refined, result
}

// fallback records an absorbed refinement failure. The stage is a warning,
// not a failure: the original, already-evaluated specification is final.
func (c *RefinementController) fallback(result models.StageResult, start time.Time, reason string) models.StageResult {
	result.Status = models.StageWarning
	result.Duration = time.Since(start)
	result.Logs = []string{"refinement discarded, original specification kept: " + reason}
	result.Errors = []models.StageError{{
		Code:        models.CodeRefinementFailed,
		Message:     reason,
		Recoverable: true,
	}}
	return result
}
