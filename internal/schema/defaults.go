package schema

import "github.com/nvellis/brandflow/internal/models"

// Labeled defaults substituted for required-but-missing fields. Every
// substituted token carries DefaultUsageNote so a reader of the final
// specification can tell extracted values from filled ones.
const (
	DefaultUsageNote   = "default: not observed on the page"
	DefaultDescription = "No brand description could be derived from the page."
	DefaultTone        = "neutral"

	DefaultHeadingFamily = "system-ui, sans-serif"
	DefaultBodyFamily    = "system-ui, sans-serif"
)

// DefaultColors is the neutral fallback palette, keyed by color role.
var DefaultColors = map[string]string{
	"primary":       "#1F2937",
	"secondary":     "#6B7280",
	"accent":        "#3B82F6",
	"background":    "#FFFFFF",
	"surface":       "#F9FAFB",
	"textPrimary":   "#111827",
	"textSecondary": "#4B5563",
}

// DefaultColorToken builds the labeled default token for a color role.
func DefaultColorToken(role string) models.Token {
	return models.Token{
		Name:  role,
		Value: DefaultColors[role],
		Usage: DefaultUsageNote,
	}
}

// DefaultFontToken builds the labeled default token for a typographic role.
func DefaultFontToken(family string) models.FontToken {
	return models.FontToken{
		Family:  family,
		Weights: []string{"400", "700"},
		Usage:   DefaultUsageNote,
	}
}
