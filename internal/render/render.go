// Package render projects a generation result into display surfaces.
// Projections are pure: no I/O, no view binding, fully testable offline.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/smileynet/adforge/internal/creative"
)

// GalleryItem is one independently downloadable ad visual.
type GalleryItem struct {
	URL      string
	Filename string
}

// VariationTab pairs a tab label with its variation.
type VariationTab struct {
	Label     string
	Variation creative.Variation
}

// PlatformTab pairs a tab label with its platform preview.
type PlatformTab struct {
	Key     string
	Label   string
	Preview creative.PlatformPreview
}

// View is the complete projection of a generation result: primary copy,
// image gallery, variation tabs, and platform tabs.
type View struct {
	Copy       creative.Copy
	Gallery    []GalleryItem
	Variations []VariationTab
	Platforms  []PlatformTab
}

var whitespace = regexp.MustCompile(`\s+`)

// ImageFilename derives the download filename for the i-th visual (1-based):
// the product name lower-cased with whitespace collapsed to hyphens, the
// index, and a .jpg suffix. Cosmetic only, not content-negotiated.
func ImageFilename(productName string, index int) string {
	name := strings.ToLower(strings.TrimSpace(productName))
	name = whitespace.ReplaceAllString(name, "-")
	if name == "" {
		name = "ad-visual"
	}
	return fmt.Sprintf("%s-%d.jpg", name, index)
}

// VariationLabel formats a variation tab label: hint icon, capitalized tone,
// and a star on the primary rendition.
func VariationLabel(v creative.Variation) string {
	label := strings.TrimSpace(v.PerformanceHint.Icon + " " + capitalize(v.Tone))
	if v.IsPrimary {
		label += " ★"
	}
	return label
}

// Project maps a result onto its display surfaces. Empty variation or
// platform collections yield empty tab slices, never a panic.
func Project(result creative.Result) View {
	view := View{Copy: result.Copy}

	for i, img := range result.Images {
		view.Gallery = append(view.Gallery, GalleryItem{
			URL:      img.URL,
			Filename: ImageFilename(result.Brief.ProductName, i+1),
		})
	}

	for _, v := range result.Variations {
		view.Variations = append(view.Variations, VariationTab{Label: VariationLabel(v), Variation: v})
	}

	for _, key := range platformOrder(result) {
		p := result.Platforms[key]
		view.Platforms = append(view.Platforms, PlatformTab{
			Key:     key,
			Label:   strings.TrimSpace(p.Icon + " " + p.Name),
			Preview: p,
		})
	}

	return view
}

// platformOrder returns platform keys in the brief's selection order.
// JSON maps carry no order; the echoed brief is the canonical sequence.
// Keys not present in the brief (unexpected but possible) sort last.
func platformOrder(result creative.Result) []string {
	ordered := make([]string, 0, len(result.Platforms))
	seen := make(map[string]bool, len(result.Platforms))

	for _, key := range result.Brief.Platforms {
		if _, ok := result.Platforms[key]; ok && !seen[key] {
			ordered = append(ordered, key)
			seen[key] = true
		}
	}

	var extra []string
	for key := range result.Platforms {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	return append(ordered, extra...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
