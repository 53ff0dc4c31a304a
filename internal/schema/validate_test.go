package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvellis/brandflow/internal/models"
)

// validSpec builds a specification that satisfies every schema constraint.
// Slices are non-nil throughout: a nil slice marshals to JSON null, which
// the schema rejects for list fields.
func validSpec() *models.BrandSpecification {
	return &models.BrandSpecification{
		ID:            "spec-test",
		SchemaVersion: Version,
		SourceURL:     "https://example.com",
		GeneratedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Essence: models.BrandEssence{
			Description: "A clean, minimal developer tools brand.",
			Adjectives:  []string{"minimal", "technical"},
			Tone:        "confident",
		},
		DesignTokens: models.DesignTokens{
			Colors: models.ColorTokens{
				Primary:       models.Token{Name: "primary", Value: "#1A2B3C", Usage: "buttons"},
				Secondary:     models.Token{Name: "secondary", Value: "#445566", Usage: "links"},
				Accent:        models.Token{Name: "accent", Value: "#FF6600", Usage: "highlights"},
				Background:    models.Token{Name: "background", Value: "#FFFFFF", Usage: "page"},
				Surface:       models.Token{Name: "surface", Value: "#F5F5F5", Usage: "cards"},
				TextPrimary:   models.Token{Name: "textPrimary", Value: "#111111", Usage: "body text"},
				TextSecondary: models.Token{Name: "textSecondary", Value: "#666666", Usage: "captions"},
			},
			Typography: models.TypographyTokens{
				Headings: models.FontToken{Family: "Inter", Weights: []string{"600", "700"}, Usage: "headings"},
				Body:     models.FontToken{Family: "Inter", Weights: []string{"400"}, Usage: "body"},
				Scale:    []models.Token{{Name: "base", Value: "16px", Usage: "body size"}},
			},
			Spacing: []models.Token{{Name: "md", Value: "16px", Usage: "stack gap"}},
			Effects: []models.Token{},
		},
		Components: []models.Component{{
			Name:        "button",
			Description: "Primary call to action",
			Properties:  map[string]string{"radius": "6px"},
			States:      []string{"default", "hover"},
			UsageRules:  []string{"one primary button per view"},
		}},
		LayoutPatterns: []models.LayoutPattern{{
			Name:        "hero",
			Description: "Full-width intro section",
			Structure:   "heading, subheading, cta",
		}},
	}
}

func TestValidateAcceptsValidSpec(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	violations, err := v.Validate(validSpec())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateReportsPathForBadColor(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	spec := validSpec()
	spec.DesignTokens.Colors.Secondary.Value = "not-a-color"

	violations, err := v.Validate(spec)
	require.NoError(t, err)
	require.NotEmpty(t, violations)

	found := false
	for _, violation := range violations {
		if NormalizePath(violation.Path) == "designTokens.colors.secondary.value" {
			found = true
		}
	}
	assert.True(t, found, "expected a violation addressed to the secondary color value, got %v", violations)
}

func TestValidateReportsMissingEssenceFields(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	spec := validSpec()
	spec.Essence.Description = ""
	spec.Essence.Tone = ""

	violations, err := v.Validate(spec)
	require.NoError(t, err)

	paths := make(map[string]bool)
	for _, violation := range violations {
		paths[violation.Path] = true
	}
	assert.True(t, paths["essence.description"])
	assert.True(t, paths["essence.tone"])
}

func TestValidateRejectsNilListAsNull(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	spec := validSpec()
	spec.Components = nil

	violations, err := v.Validate(spec)
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Equal(t, "components", NormalizePath(violations[0].Path))
}

func TestValidateJSONRejectsMalformedInput(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	_, err = v.ValidateJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestRepairThenRevalidateIsClean(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	spec := validSpec()
	spec.Essence.Description = ""
	spec.DesignTokens.Colors.Primary = models.Token{}
	spec.Components = nil

	violations, err := v.Validate(spec)
	require.NoError(t, err)
	require.NotEmpty(t, violations)

	repaired, unresolved := Repair(spec, violations)
	assert.NotEmpty(t, repaired)
	assert.Empty(t, unresolved)

	// The repaired color is the labeled default for its role.
	assert.Equal(t, DefaultColors["primary"], spec.DesignTokens.Colors.Primary.Value)
	assert.Equal(t, DefaultUsageNote, spec.DesignTokens.Colors.Primary.Usage)
	assert.Equal(t, DefaultDescription, spec.Essence.Description)
	assert.NotNil(t, spec.Components)

	violations, err = v.Validate(spec)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestRepairLeavesUnmappedViolationsUnresolved(t *testing.T) {
	spec := validSpec()
	violations := []Violation{
		{Path: "id", Message: "empty"},
		{Path: "essence.tone", Message: "empty"},
	}

	repaired, unresolved := Repair(spec, violations)

	require.Len(t, repaired, 1)
	assert.Equal(t, "essence.tone", repaired[0])
	require.Len(t, unresolved, 1)
	assert.Equal(t, "id", unresolved[0].Path)
	assert.Equal(t, DefaultTone, spec.Essence.Tone)
}

func TestRepairAppliesOncePerNormalizedPath(t *testing.T) {
	spec := validSpec()
	spec.Components = []models.Component{
		{Description: "first"},
		{Description: "second"},
	}

	// Two violations on the same token collapse to one repair.
	violations := []Violation{
		{Path: "designTokens.colors.accent.name", Message: "empty"},
		{Path: "designTokens.colors.accent.value", Message: "empty"},
	}
	repaired, unresolved := Repair(spec, violations)
	assert.Len(t, repaired, 1)
	assert.Empty(t, unresolved)

	// Indexed violations on distinct elements share a normalized path, so
	// only the first index is repaired in this pass.
	violations = []Violation{
		{Path: "components.0.name", Message: "empty"},
		{Path: "components.1.name", Message: "empty"},
	}
	repaired, _ = Repair(spec, violations)
	require.Len(t, repaired, 1)
	assert.Equal(t, "component-1", spec.Components[0].Name)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"components.0.name", "components.*.name"},
		{"components.12.states", "components.*.states"},
		{"designTokens.colors.primary.value", "designTokens.colors.primary.value"},
		{"layoutPatterns.3.name", "layoutPatterns.*.name"},
		{"essence.tone", "essence.tone"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in))
	}
}
