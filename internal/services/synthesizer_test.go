package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvellis/brandflow/internal/models"
	"github.com/nvellis/brandflow/internal/schema"
)

func newTestSynthesizer(t *testing.T) *Synthesizer {
	t.Helper()
	validator, err := schema.NewValidator()
	require.NoError(t, err)
	return NewSynthesizer(validator)
}

// fullRawTokens is an analysis payload with every field populated.
func fullRawTokens() *models.RawBrandTokens {
	return &models.RawBrandTokens{
		Description: "A bold, energetic streetwear brand.",
		Adjectives:  []string{"bold", "energetic"},
		Tone:        "playful",
		Colors: map[string]string{
			"primary":       "#E4002B",
			"secondary":     "#1A1A1A",
			"accent":        "#FFD700",
			"background":    "#FFFFFF",
			"surface":       "#F2F2F2",
			"textPrimary":   "#0A0A0A",
			"textSecondary": "#555555",
		},
		ColorUsage:  map[string]string{"primary": "hero banner and CTAs"},
		HeadingFont: "Archivo Black",
		BodyFont:    "Inter",
		FontWeights: []string{"400", "900"},
		TypeScale:   map[string]string{"base": "16px", "h1": "48px"},
		Spacing:     map[string]string{"md": "16px", "lg": "32px"},
		Effects:     map[string]string{"shadow": "0 2px 8px rgba(0,0,0,.2)"},
		Components: []models.RawComponent{{
			Name:        "button",
			Description: "Primary CTA",
			Properties:  map[string]string{"radius": "0"},
			States:      []string{"default", "hover"},
			UsageRules:  []string{"uppercase labels"},
		}},
		Layouts: []models.RawLayout{{
			Name:        "hero",
			Description: "Full-bleed hero",
			Structure:   "image, heading, cta",
		}},
	}
}

func TestSynthesizeCompletePayloadHasNoWarnings(t *testing.T) {
	s := newTestSynthesizer(t)

	spec, warnings, err := s.Synthesize(fullRawTokens(), "https://example.com", nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.NotEmpty(t, spec.ID)
	assert.Equal(t, schema.Version, spec.SchemaVersion)
	assert.Equal(t, "https://example.com", spec.SourceURL)
	assert.False(t, spec.GeneratedAt.IsZero())

	assert.Equal(t, "#E4002B", spec.DesignTokens.Colors.Primary.Value)
	assert.Equal(t, "hero banner and CTAs", spec.DesignTokens.Colors.Primary.Usage)
	assert.Equal(t, "Archivo Black", spec.DesignTokens.Typography.Headings.Family)

	// The result is already schema-valid.
	violations, err := s.validator.Validate(spec)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestSynthesizeSubstitutesLabeledDefaults(t *testing.T) {
	s := newTestSynthesizer(t)

	raw := fullRawTokens()
	delete(raw.Colors, "secondary")
	raw.HeadingFont = ""
	raw.Description = ""

	spec, warnings, err := s.Synthesize(raw, "https://example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, schema.DefaultColors["secondary"], spec.DesignTokens.Colors.Secondary.Value)
	assert.Equal(t, schema.DefaultUsageNote, spec.DesignTokens.Colors.Secondary.Usage)
	assert.Equal(t, schema.DefaultHeadingFamily, spec.DesignTokens.Typography.Headings.Family)
	assert.Equal(t, schema.DefaultDescription, spec.Essence.Description)

	// Each substitution produces exactly one warning.
	joined := strings.Join(warnings, "\n")
	assert.Contains(t, joined, "colors.secondary")
	assert.Contains(t, joined, "heading font")
	assert.Contains(t, joined, "brand description")
	assert.Len(t, warnings, 3)

	// Defaults still yield a schema-valid specification.
	violations, err := s.validator.Validate(spec)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestSynthesizeEmptyPayloadIsStillValid(t *testing.T) {
	s := newTestSynthesizer(t)

	spec, warnings, err := s.Synthesize(&models.RawBrandTokens{}, "https://example.com", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)

	violations, err := s.validator.Validate(spec)
	require.NoError(t, err)
	assert.Empty(t, violations)

	assert.NotNil(t, spec.Components)
	assert.NotNil(t, spec.LayoutPatterns)
	assert.NotNil(t, spec.Essence.Adjectives)
}

func TestSynthesizeNamesUnnamedElements(t *testing.T) {
	s := newTestSynthesizer(t)

	raw := fullRawTokens()
	raw.Components = append(raw.Components, models.RawComponent{Description: "nameless"})
	raw.Layouts = append(raw.Layouts, models.RawLayout{Description: "nameless"})

	spec, warnings, err := s.Synthesize(raw, "https://example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, "component-2", spec.Components[1].Name)
	assert.Equal(t, "layout-2", spec.LayoutPatterns[1].Name)
	assert.NotNil(t, spec.Components[1].Properties)
	assert.NotNil(t, spec.Components[1].States)
	assert.NotNil(t, spec.Components[1].UsageRules)
	assert.Len(t, warnings, 2)
}

func TestSynthesizeTokenListsAreSorted(t *testing.T) {
	s := newTestSynthesizer(t)

	raw := fullRawTokens()
	raw.Spacing = map[string]string{"xl": "64px", "sm": "8px", "md": "16px", "empty": ""}

	spec, _, err := s.Synthesize(raw, "https://example.com", nil)
	require.NoError(t, err)

	names := make([]string, 0, len(spec.DesignTokens.Spacing))
	for _, token := range spec.DesignTokens.Spacing {
		names = append(names, token.Name)
	}
	// Sorted by name; tokens with empty values are dropped.
	assert.Equal(t, []string{"md", "sm", "xl"}, names)
}

func TestSynthesizeMergesRequestedAdjectivesFirst(t *testing.T) {
	s := newTestSynthesizer(t)

	raw := fullRawTokens()
	raw.Adjectives = []string{"bold", "street", "Modern"}

	spec, _, err := s.Synthesize(raw, "https://example.com", []string{"modern", "bold"})
	require.NoError(t, err)

	// Requested adjectives lead, duplicates are folded case-insensitively.
	assert.Equal(t, []string{"modern", "bold", "street"}, spec.Essence.Adjectives)
}
