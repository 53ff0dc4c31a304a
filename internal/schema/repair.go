package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nvellis/brandflow/internal/models"
)

// RepairFunc fixes one class of schema violation in place. The concrete
// violation path is passed so repairs under a list wildcard can recover the
// element index.
type RepairFunc func(spec *models.BrandSpecification, path string)

// repairs maps normalized violation paths (list indices replaced by "*") to
// the structural repair for that path. Repairs are targeted at specific
// violations, enumerable, and independently testable; anything without an
// entry here stays unresolved and is carried forward as a warning.
var repairs = map[string]RepairFunc{
	"essence.description": func(spec *models.BrandSpecification, _ string) {
		spec.Essence.Description = DefaultDescription
	},
	"essence.tone": func(spec *models.BrandSpecification, _ string) {
		spec.Essence.Tone = DefaultTone
	},
	"essence.adjectives": func(spec *models.BrandSpecification, _ string) {
		spec.Essence.Adjectives = []string{}
	},
	"designTokens.typography.headings.family": func(spec *models.BrandSpecification, _ string) {
		spec.DesignTokens.Typography.Headings = DefaultFontToken(DefaultHeadingFamily)
	},
	"designTokens.typography.body.family": func(spec *models.BrandSpecification, _ string) {
		spec.DesignTokens.Typography.Body = DefaultFontToken(DefaultBodyFamily)
	},
	"designTokens.typography.headings.weights": func(spec *models.BrandSpecification, _ string) {
		spec.DesignTokens.Typography.Headings.Weights = []string{}
	},
	"designTokens.typography.body.weights": func(spec *models.BrandSpecification, _ string) {
		spec.DesignTokens.Typography.Body.Weights = []string{}
	},
	"designTokens.typography.scale": func(spec *models.BrandSpecification, _ string) {
		spec.DesignTokens.Typography.Scale = []models.Token{}
	},
	"designTokens.spacing": func(spec *models.BrandSpecification, _ string) {
		spec.DesignTokens.Spacing = []models.Token{}
	},
	"designTokens.effects": func(spec *models.BrandSpecification, _ string) {
		spec.DesignTokens.Effects = []models.Token{}
	},
	"components": func(spec *models.BrandSpecification, _ string) {
		spec.Components = []models.Component{}
	},
	"layoutPatterns": func(spec *models.BrandSpecification, _ string) {
		spec.LayoutPatterns = []models.LayoutPattern{}
	},
	"components.*.name": func(spec *models.BrandSpecification, path string) {
		if i, ok := pathIndex(path, 1); ok && i < len(spec.Components) {
			spec.Components[i].Name = fmt.Sprintf("component-%d", i+1)
		}
	},
	"components.*.properties": func(spec *models.BrandSpecification, path string) {
		if i, ok := pathIndex(path, 1); ok && i < len(spec.Components) {
			spec.Components[i].Properties = map[string]string{}
		}
	},
	"components.*.states": func(spec *models.BrandSpecification, path string) {
		if i, ok := pathIndex(path, 1); ok && i < len(spec.Components) {
			spec.Components[i].States = []string{}
		}
	},
	"components.*.usageRules": func(spec *models.BrandSpecification, path string) {
		if i, ok := pathIndex(path, 1); ok && i < len(spec.Components) {
			spec.Components[i].UsageRules = []string{}
		}
	},
	"layoutPatterns.*.name": func(spec *models.BrandSpecification, path string) {
		if i, ok := pathIndex(path, 1); ok && i < len(spec.LayoutPatterns) {
			spec.LayoutPatterns[i].Name = fmt.Sprintf("layout-%d", i+1)
		}
	},
}

// colorTokenAccessors lets color repairs address the token for a role
// without reflection.
var colorTokenAccessors = map[string]func(*models.DesignTokens) *models.Token{
	"primary":       func(d *models.DesignTokens) *models.Token { return &d.Colors.Primary },
	"secondary":     func(d *models.DesignTokens) *models.Token { return &d.Colors.Secondary },
	"accent":        func(d *models.DesignTokens) *models.Token { return &d.Colors.Accent },
	"background":    func(d *models.DesignTokens) *models.Token { return &d.Colors.Background },
	"surface":       func(d *models.DesignTokens) *models.Token { return &d.Colors.Surface },
	"textPrimary":   func(d *models.DesignTokens) *models.Token { return &d.Colors.TextPrimary },
	"textSecondary": func(d *models.DesignTokens) *models.Token { return &d.Colors.TextSecondary },
}

func init() {
	// A violation on any field of a color token replaces the whole token
	// with the labeled default for that role.
	for role := range colorTokenAccessors {
		role := role
		replace := func(spec *models.BrandSpecification, _ string) {
			*colorTokenAccessors[role](&spec.DesignTokens) = DefaultColorToken(role)
		}
		base := "designTokens.colors." + role
		repairs[base+".name"] = replace
		repairs[base+".value"] = replace
	}
}

// NormalizePath rewrites numeric path segments to "*" so indexed list
// violations match their repair entry.
func NormalizePath(path string) string {
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		if _, err := strconv.Atoi(seg); err == nil {
			segments[i] = "*"
		}
	}
	return strings.Join(segments, ".")
}

func pathIndex(path string, segment int) (int, bool) {
	segments := strings.Split(path, ".")
	if segment >= len(segments) {
		return 0, false
	}
	i, err := strconv.Atoi(segments[segment])
	if err != nil {
		return 0, false
	}
	return i, true
}

// Repair applies the mapped repair for each violation, at most once per
// normalized path. It returns the paths that were repaired and the
// violations with no mapped repair.
func Repair(spec *models.BrandSpecification, violations []Violation) (repaired []string, unresolved []Violation) {
	applied := make(map[string]bool)
	for _, violation := range violations {
		key := NormalizePath(violation.Path)
		fix, ok := repairs[key]
		if !ok {
			unresolved = append(unresolved, violation)
			continue
		}
		if applied[key] {
			continue
		}
		applied[key] = true
		fix(spec, violation.Path)
		repaired = append(repaired, violation.Path)
	}
	return repaired, unresolved
}
