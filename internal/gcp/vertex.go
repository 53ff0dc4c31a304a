package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Analyzer Model Prompts ---
const AnalyzerSystemPrompt = "You are a visual brand analyst. Your task is to study screenshots and structural data of a website and extract its brand identity as design tokens. Accuracy and fidelity to what is actually visible on the page are of utmost importance. You must output your response as a single valid JSON object."
const AnalyzerUserPrompt = `You will be provided with screenshots of a website together with a summary of its DOM structure and computed styles.

Extract the brand identity as a JSON object with these keys:

- "description": one paragraph describing the brand's visual identity.
- "adjectives": an array of adjectives describing the brand personality.
- "tone": a single word or short phrase for the overall tone.
- "colors": an object mapping color roles (primary, secondary, accent, background, surface, textPrimary, textSecondary) to hex values actually observed on the page.
- "colorUsage": an object mapping the same roles to a short note on where each color is used.
- "headingFont" and "bodyFont": the font families observed for headings and body text.
- "fontWeights": an array of observed font weights as strings.
- "typeScale": an object mapping scale step names to sizes.
- "spacing": an object mapping spacing step names to values.
- "effects": an object mapping effect names (shadows, radii) to CSS values.
- "components": an array of objects, each with "name", "description", "properties" (object of string values), "states" (array), and "usageRules" (array), for every distinct UI component you can identify.
- "layouts": an array of objects, each with "name", "description", and "structure", for recurring layout patterns.

Only report values you can support from the screenshots or style data. Omit a key entirely rather than inventing a value. The final output MUST be a single valid JSON object with no text before or after it.`

// --- Evaluator Model Prompts ---
const EvaluatorSystemPrompt = "You are an exacting design-system reviewer. Your task is to score a machine-extracted brand specification against the website evidence embedded in it. You must output your response as a single valid JSON object."
const EvaluatorUserPrompt = `You will be provided with a brand specification in JSON form.

Score it on exactly these six dimensions, each from 1.0 (unusable) to 5.0 (flawless):
colorFidelity, typographyAccuracy, componentCoverage, semanticQuality, consistency, completeness.

Return a JSON object with these keys:

- "overallScore": the weighted overall score from 1.0 to 5.0.
- "dimensions": an array of six objects, each with "name" (one of the dimension names above), "score", "justification" (one or two sentences), and "evidence" (array of specific observations).
- "recommendations": an array of objects, each with "priority" (one of "critical", "high", "medium", "low"), "dimension", "issue", and "suggestion", ordered from highest to lowest priority.

Be specific in justifications and evidence. Do not include any text before or after the JSON object.`

// --- Refiner Model Prompts ---
const RefinerSystemPrompt = "You are a careful design-system editor. Your task is to improve a machine-extracted brand specification by addressing a specific list of review recommendations, and nothing else. You must output the full revised specification as a single valid JSON object."
const RefinerUserPrompt = `You will be provided with a brand specification in JSON form and a list of review recommendations.

Revise the specification to address ONLY the listed recommendations:

1. Fix exactly the issues the recommendations describe. Do not alter values that are already correct.
2. Keep the document structure, field names, "id", and "schemaVersion" exactly as they are.
3. Every token must keep both its "value" and its "usage" note; update the usage note when you change a value.
4. Do not add commentary.

Return ONLY the complete revised specification as a single valid JSON object.`

// VertexClient holds all pre-configured generative models for the pipeline.
type VertexClient struct {
	AnalyzerModel  *genai.GenerativeModel
	EvaluatorModel *genai.GenerativeModel
	RefinerModel   *genai.GenerativeModel
	baseClient     *genai.Client
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	// All three models return structured JSON, so they share the forced
	// JSON output and low temperature; only the system prompts differ.
	configure := func(system string) *genai.GenerativeModel {
		model := baseClient.GenerativeModel("gemini-1.5-pro")
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
		model.GenerationConfig = genai.GenerationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.0),
		}
		model.SafetySettings = []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		}
		return model
	}

	return &VertexClient{
		AnalyzerModel:  configure(AnalyzerSystemPrompt),
		EvaluatorModel: configure(EvaluatorSystemPrompt),
		RefinerModel:   configure(RefinerSystemPrompt),
		baseClient:     baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
