package services

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvellis/brandflow/internal/models"
	"github.com/nvellis/brandflow/internal/schema"
)

// Synthesizer deterministically maps raw analysis output into the canonical
// specification shape and owns the schema validate-and-repair loop.
// Synthesis never hard-fails on schema issues: validity is a quality signal
// carried forward as warnings, not a gate on pipeline continuation.
type Synthesizer struct {
	validator *schema.Validator
}

// NewSynthesizer creates a Synthesizer using the given schema validator.
func NewSynthesizer(validator *schema.Validator) *Synthesizer {
	return &Synthesizer{validator: validator}
}

// colorRoles is the fixed palette mapping order, so warnings and defaults
// are deterministic for a given input.
var colorRoles = []string{
	"primary", "secondary", "accent", "background",
	"surface", "textPrimary", "textSecondary",
}

// Synthesize builds a schema-shaped specification from raw tokens. Required
// fields missing from the raw payload are filled with labeled defaults and
// reported as warnings. After mapping, the result is validated; violations
// are repaired via the path-keyed repair map and re-validated once, and
// anything still unresolved is appended to the warnings. The returned error
// covers only mechanical failures, never schema violations.
func (s *Synthesizer) Synthesize(raw *models.RawBrandTokens, sourceURL string, adjectives []string) (*models.BrandSpecification, []string, error) {
	spec, warnings := s.mapRaw(raw, sourceURL, adjectives)

	violations, err := s.validator.Validate(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("schema validation failed mechanically: %w", err)
	}

	if len(violations) > 0 {
		repaired, unresolved := schema.Repair(spec, violations)
		for _, path := range repaired {
			warnings = append(warnings, fmt.Sprintf("repaired schema violation at %s", path))
		}

		if len(repaired) > 0 {
			// One bounded re-validation; repairs must not introduce new
			// violations, but the unrepaired ones may remain.
			if unresolved, err = s.revalidate(spec); err != nil {
				return nil, nil, err
			}
		}
		for _, v := range unresolved {
			warnings = append(warnings, fmt.Sprintf("unresolved schema violation: %s", v))
		}
		if len(unresolved) > 0 {
			slog.Warn("Specification carries unresolved schema violations.",
				"specificationId", spec.ID, "count", len(unresolved))
		}
	}

	return spec, warnings, nil
}

func (s *Synthesizer) revalidate(spec *models.BrandSpecification) ([]schema.Violation, error) {
	violations, err := s.validator.Validate(spec)
	if err != nil {
		return nil, fmt.Errorf("schema re-validation failed mechanically: %w", err)
	}
	return violations, nil
}

// mapRaw is the deterministic transform from loose tokens to the canonical
// shape. It never returns an error; gaps become labeled defaults plus a
// warning.
func (s *Synthesizer) mapRaw(raw *models.RawBrandTokens, sourceURL string, adjectives []string) (*models.BrandSpecification, []string) {
	var warnings []string

	spec := &models.BrandSpecification{
		ID:            uuid.NewString(),
		SchemaVersion: schema.Version,
		SourceURL:     sourceURL,
		GeneratedAt:   time.Now().UTC(),
	}

	// Essence.
	spec.Essence.Description = raw.Description
	if spec.Essence.Description == "" {
		spec.Essence.Description = schema.DefaultDescription
		warnings = append(warnings, "substituted default brand description")
	}
	spec.Essence.Tone = raw.Tone
	if spec.Essence.Tone == "" {
		spec.Essence.Tone = schema.DefaultTone
		warnings = append(warnings, "substituted default tone")
	}
	spec.Essence.Adjectives = mergeAdjectives(raw.Adjectives, adjectives)

	// Colors.
	for _, role := range colorRoles {
		token := models.Token{Name: role}
		if value, ok := raw.Colors[role]; ok && value != "" {
			token.Value = value
			token.Usage = raw.ColorUsage[role]
			if token.Usage == "" {
				token.Usage = "observed on page"
			}
		} else {
			token = schema.DefaultColorToken(role)
			warnings = append(warnings, fmt.Sprintf("substituted default for colors.%s", role))
		}
		setColorToken(&spec.DesignTokens, role, token)
	}

	// Typography.
	weights := raw.FontWeights
	if weights == nil {
		weights = []string{}
	}
	if raw.HeadingFont != "" {
		spec.DesignTokens.Typography.Headings = models.FontToken{
			Family: raw.HeadingFont, Weights: weights, Usage: "observed heading font",
		}
	} else {
		spec.DesignTokens.Typography.Headings = schema.DefaultFontToken(schema.DefaultHeadingFamily)
		warnings = append(warnings, "substituted default heading font")
	}
	if raw.BodyFont != "" {
		spec.DesignTokens.Typography.Body = models.FontToken{
			Family: raw.BodyFont, Weights: weights, Usage: "observed body font",
		}
	} else {
		spec.DesignTokens.Typography.Body = schema.DefaultFontToken(schema.DefaultBodyFamily)
		warnings = append(warnings, "substituted default body font")
	}
	spec.DesignTokens.Typography.Scale = tokensFromMap(raw.TypeScale, "type scale step")
	spec.DesignTokens.Spacing = tokensFromMap(raw.Spacing, "spacing step")
	spec.DesignTokens.Effects = tokensFromMap(raw.Effects, "effect")

	// Components and layouts.
	spec.Components = make([]models.Component, 0, len(raw.Components))
	for i, rc := range raw.Components {
		component := models.Component{
			Name:        rc.Name,
			Description: rc.Description,
			Properties:  rc.Properties,
			States:      rc.States,
			UsageRules:  rc.UsageRules,
		}
		if component.Name == "" {
			component.Name = fmt.Sprintf("component-%d", i+1)
			warnings = append(warnings, fmt.Sprintf("substituted name for unnamed component %d", i+1))
		}
		if component.Properties == nil {
			component.Properties = map[string]string{}
		}
		if component.States == nil {
			component.States = []string{}
		}
		if component.UsageRules == nil {
			component.UsageRules = []string{}
		}
		spec.Components = append(spec.Components, component)
	}

	spec.LayoutPatterns = make([]models.LayoutPattern, 0, len(raw.Layouts))
	for i, rl := range raw.Layouts {
		layout := models.LayoutPattern{Name: rl.Name, Description: rl.Description, Structure: rl.Structure}
		if layout.Name == "" {
			layout.Name = fmt.Sprintf("layout-%d", i+1)
			warnings = append(warnings, fmt.Sprintf("substituted name for unnamed layout %d", i+1))
		}
		spec.LayoutPatterns = append(spec.LayoutPatterns, layout)
	}

	return spec, warnings
}

func setColorToken(tokens *models.DesignTokens, role string, token models.Token) {
	switch role {
	case "primary":
		tokens.Colors.Primary = token
	case "secondary":
		tokens.Colors.Secondary = token
	case "accent":
		tokens.Colors.Accent = token
	case "background":
		tokens.Colors.Background = token
	case "surface":
		tokens.Colors.Surface = token
	case "textPrimary":
		tokens.Colors.TextPrimary = token
	case "textSecondary":
		tokens.Colors.TextSecondary = token
	}
}

// tokensFromMap converts a name→value map into a sorted token list so the
// output is stable across runs.
func tokensFromMap(values map[string]string, usage string) []models.Token {
	tokens := make([]models.Token, 0, len(values))
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if values[name] == "" {
			continue
		}
		tokens = append(tokens, models.Token{Name: name, Value: values[name], Usage: usage})
	}
	return tokens
}

// mergeAdjectives combines observed and requested adjectives, requested
// first, without duplicates.
func mergeAdjectives(observed, requested []string) []string {
	merged := make([]string, 0, len(observed)+len(requested))
	seen := make(map[string]bool)
	for _, adj := range append(append([]string{}, requested...), observed...) {
		key := strings.ToLower(strings.TrimSpace(adj))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, strings.TrimSpace(adj))
	}
	return merged
}
