package models

import "time"

// BrandSpecification is the synthesized brand identity for one source site.
// It must validate against the embedded CUE schema (internal/schema) before
// it is considered complete; SchemaVersion tracks the schema independently
// of the pipeline version.
type BrandSpecification struct {
	ID             string          `json:"id"`
	SchemaVersion  string          `json:"schemaVersion"`
	SourceURL      string          `json:"sourceUrl"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	Essence        BrandEssence    `json:"essence"`
	DesignTokens   DesignTokens    `json:"designTokens"`
	Components     []Component     `json:"components"`
	LayoutPatterns []LayoutPattern `json:"layoutPatterns"`
}

// BrandEssence captures the qualitative identity of the brand.
type BrandEssence struct {
	Description string   `json:"description"`
	Adjectives  []string `json:"adjectives"`
	Tone        string   `json:"tone"`
}

// Token is one design token. Every token carries both a concrete value and
// a semantic usage note describing where the value was observed or why it
// was chosen (including the "default" label for substituted values).
type Token struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Usage string `json:"usage"`
}

// DesignTokens groups the extracted token families.
type DesignTokens struct {
	Colors     ColorTokens      `json:"colors"`
	Typography TypographyTokens `json:"typography"`
	Spacing    []Token          `json:"spacing"`
	Effects    []Token          `json:"effects"`
}

// ColorTokens is the fixed color role palette.
type ColorTokens struct {
	Primary       Token `json:"primary"`
	Secondary     Token `json:"secondary"`
	Accent        Token `json:"accent"`
	Background    Token `json:"background"`
	Surface       Token `json:"surface"`
	TextPrimary   Token `json:"textPrimary"`
	TextSecondary Token `json:"textSecondary"`
}

// FontToken describes one typographic role.
type FontToken struct {
	Family  string   `json:"family"`
	Weights []string `json:"weights"`
	Usage   string   `json:"usage"`
}

// TypographyTokens covers the observed type system.
type TypographyTokens struct {
	Headings FontToken `json:"headings"`
	Body     FontToken `json:"body"`
	Scale    []Token   `json:"scale"`
}

// Component is one recognized UI component with its visual properties,
// observed states and usage rules.
type Component struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Properties  map[string]string `json:"properties"`
	States      []string          `json:"states"`
	UsageRules  []string          `json:"usageRules"`
}

// LayoutPattern is one recurring page-level layout structure.
type LayoutPattern struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Structure   string `json:"structure"`
}

// RawBrandTokens is the loosely-structured payload returned by the analysis
// model. Fields are optional; the synthesizer normalizes this into a
// BrandSpecification and substitutes labeled defaults for anything missing.
type RawBrandTokens struct {
	Description string            `json:"description"`
	Adjectives  []string          `json:"adjectives"`
	Tone        string            `json:"tone"`
	Colors      map[string]string `json:"colors"`
	ColorUsage  map[string]string `json:"colorUsage"`
	HeadingFont string            `json:"headingFont"`
	BodyFont    string            `json:"bodyFont"`
	FontWeights []string          `json:"fontWeights"`
	TypeScale   map[string]string `json:"typeScale"`
	Spacing     map[string]string `json:"spacing"`
	Effects     map[string]string `json:"effects"`
	Components  []RawComponent    `json:"components"`
	Layouts     []RawLayout       `json:"layouts"`
}

// RawComponent mirrors Component but with every field optional.
type RawComponent struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Properties  map[string]string `json:"properties"`
	States      []string          `json:"states"`
	UsageRules  []string          `json:"usageRules"`
}

// RawLayout mirrors LayoutPattern with every field optional.
type RawLayout struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Structure   string `json:"structure"`
}
