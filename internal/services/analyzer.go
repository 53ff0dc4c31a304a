package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/nvellis/brandflow/internal/gcp"
	"github.com/nvellis/brandflow/internal/models"
)

// AnalysisAdapter turns captured artifacts into raw brand tokens via one
// vision-model call.
type AnalysisAdapter interface {
	Analyze(ctx context.Context, capture *models.CaptureResponse, adjectives []string) (*models.RawBrandTokens, *models.StageMetrics, error)
}

// Analyzer calls the pre-configured analyzer model with the captured
// screenshots and page summaries.
type Analyzer struct {
	model *genai.GenerativeModel
}

// NewAnalyzer creates an Analyzer backed by the shared Vertex client.
func NewAnalyzer(vertexClient *gcp.VertexClient) *Analyzer {
	return &Analyzer{model: vertexClient.AnalyzerModel}
}

// Analyze sends the screenshots plus DOM and style summaries to the model
// and parses the loosely-structured token payload from its reply. Malformed
// replies are tolerated by extracting an embedded JSON payload before the
// stage is failed.
func (a *Analyzer) Analyze(ctx context.Context, capture *models.CaptureResponse, adjectives []string) (*models.RawBrandTokens, *models.StageMetrics, error) {
	parts := make([]genai.Part, 0, len(capture.Screenshots)+1)
	for _, shot := range capture.Screenshots {
		parts = append(parts, genai.Blob{MIMEType: shot.MIMEType, Data: shot.Data})
	}
	parts = append(parts, genai.Text(a.buildPrompt(capture, adjectives)))

	resp, err := a.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate brand tokens from model: %w", err)
	}
	metrics := usageMetrics(resp)

	content := extractText(resp)
	if err := checkRefusal(content); err != nil {
		slog.Error("Model refused brand analysis", "response", content)
		return nil, metrics, fmt.Errorf("brand analysis: %w", err)
	}

	payload := extractJSONPayload(content)
	if payload == "" {
		return nil, metrics, fmt.Errorf("model returned no JSON payload for brand analysis")
	}

	var raw models.RawBrandTokens
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		slog.Error("Failed to unmarshal analysis payload", "error", err, "responseBody", payload)
		return nil, metrics, fmt.Errorf("failed to parse brand tokens from model: %w", err)
	}
	return &raw, metrics, nil
}

// buildPrompt appends the page summaries and requested adjectives to the
// base analyzer prompt.
func (a *Analyzer) buildPrompt(capture *models.CaptureResponse, adjectives []string) string {
	var b strings.Builder
	b.WriteString(gcp.AnalyzerUserPrompt)
	if len(adjectives) > 0 {
		b.WriteString("\n\nThe requester describes the desired brand personality as: ")
		b.WriteString(strings.Join(adjectives, ", "))
		b.WriteString(". Weigh these words when describing tone, but never contradict what the page shows.")
	}
	if capture.DOMSummary != "" {
		b.WriteString("\n\nDOM structure summary:\n")
		b.WriteString(capture.DOMSummary)
	}
	if capture.StyleSummary != "" {
		b.WriteString("\n\nComputed style summary:\n")
		b.WriteString(capture.StyleSummary)
	}
	return b.String()
}
