package unwatch

import "strconv"

// Zoom bounds, in percent. Values outside the range clamp; values that do
// not parse fall back to the default.
const (
	MinZoom     = 50
	MaxZoom     = 200
	DefaultZoom = 100
)

// DefaultFontFamily is used when the requested family is not on the
// allow-list.
const DefaultFontFamily = "Times New Roman"

// Base typography in points at 100% zoom, from the document stylesheet the
// service historically used: 12pt body, 18/14/12.5pt headings, 1.5 leading.
const (
	baseBodySize = 12.0
	baseH1Size   = 18.0
	baseH2Size   = 14.0
	baseH3Size   = 12.5

	lineHeightMultiplier = 1.5

	// Point-size floors after zoom scaling; below these, text stops being
	// legible in print.
	minBodySize    = 6.0
	minHeadingSize = 7.0
)

// Letter page geometry in points (72 per inch), 1in margins.
const (
	pageWidthPt  = 612.0
	pageHeightPt = 792.0
	pageMarginPt = 72.0
)

// fontFamilies maps every allow-listed family to the nearest family the
// page painter supports. Requests not in this map get DefaultFontFamily.
var fontFamilies = map[string]string{
	"Arial":           "Helvetica",
	"Calibri":         "Helvetica",
	"Comic Sans MS":   "Helvetica",
	"Garamond":        "Times",
	"Georgia":         "Times",
	"Tahoma":          "Helvetica",
	"Times New Roman": "Times",
	"Wingdings":       "ZapfDingbats",
}

// LayoutConfig is the set of user-tunable rendering parameters.
// The zero value is not meaningful; build one with DefaultLayout or
// LayoutFromRequest.
type LayoutConfig struct {
	FontFamily string // validated against the allow-list
	Zoom       int    // percent, clamped to [MinZoom, MaxZoom]
}

// DefaultLayout returns the layout used when the caller tunes nothing.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{FontFamily: DefaultFontFamily, Zoom: DefaultZoom}
}

// LayoutFromRequest builds a LayoutConfig from untrusted request parameters.
// Unknown fonts fall back to the default family; a non-numeric zoom falls
// back to 100; numeric zoom clamps to the supported range. Never fails.
func LayoutFromRequest(font, zoom string) LayoutConfig {
	cfg := DefaultLayout()

	if _, ok := fontFamilies[font]; ok {
		cfg.FontFamily = font
	}

	if zoom != "" {
		if z, err := strconv.Atoi(zoom); err == nil {
			cfg.Zoom = clampZoom(z)
		}
	}

	return cfg
}

// clampZoom restricts a zoom percentage to the supported range.
func clampZoom(z int) int {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// typography holds every derived metric the layout pass needs. Computed
// once from a LayoutConfig before layout begins; pure.
type typography struct {
	family string // painter family name

	bodySize float64
	h1Size   float64
	h2Size   float64
	h3Size   float64

	bodyLine float64 // body line height in points
}

// deriveTypography computes scaled point sizes and line heights.
func deriveTypography(cfg LayoutConfig) typography {
	family, ok := fontFamilies[cfg.FontFamily]
	if !ok {
		family = fontFamilies[DefaultFontFamily]
	}

	scale := float64(clampZoom(cfg.Zoom)) / 100.0

	t := typography{
		family:   family,
		bodySize: scaleSize(baseBodySize, scale, minBodySize),
		h1Size:   scaleSize(baseH1Size, scale, minHeadingSize),
		h2Size:   scaleSize(baseH2Size, scale, minHeadingSize),
		h3Size:   scaleSize(baseH3Size, scale, minHeadingSize),
	}
	t.bodyLine = t.bodySize * lineHeightMultiplier
	return t
}

// headingSize returns the point size for a heading level.
func (t typography) headingSize(level int) float64 {
	switch level {
	case 1:
		return t.h1Size
	case 2:
		return t.h2Size
	default:
		return t.h3Size
	}
}

// scaleSize applies the zoom factor with a legibility floor.
func scaleSize(base, scale, floor float64) float64 {
	size := base * scale
	if size < floor {
		return floor
	}
	return size
}

// printableWidth is the horizontal span available to content.
func printableWidth() float64 {
	return pageWidthPt - 2*pageMarginPt
}
