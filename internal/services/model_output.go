package services

import (
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/nvellis/brandflow/internal/models"
)

// extractText robustly gets the raw text content from a model response,
// concatenating multiple text parts if present.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			builder.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(builder.String())
}

// extractJSONPayload strips markdown fences and surrounding prose from a
// model reply and returns the embedded JSON document, or "" when none can
// be found. Models configured for JSON output still occasionally wrap the
// payload in fences or preamble text.
func extractJSONPayload(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}

	// Fall back to the outermost braced payload embedded in prose.
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(s, pair[0])
		end := strings.LastIndex(s, pair[1])
		if start >= 0 && end > start {
			return s[start : end+1]
		}
	}
	return ""
}

// refusalPhrases flag replies where the model declined the task instead of
// producing a payload.
var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// checkRefusal fails fast when a model reply indicates refusal.
func checkRefusal(content string) error {
	lower := strings.ToLower(content)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("model response indicates refusal")
		}
	}
	return nil
}

// usageMetrics converts a response's usage metadata into stage metrics.
func usageMetrics(resp *genai.GenerateContentResponse) *models.StageMetrics {
	metrics := &models.StageMetrics{ModelCalls: 1}
	if resp != nil && resp.UsageMetadata != nil {
		metrics.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		metrics.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return metrics
}
