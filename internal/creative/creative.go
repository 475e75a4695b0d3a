// Package creative defines the generation result data model shared by the
// orchestrator, the refinement loop, and the renderer. Field names and JSON
// tags match the AdGenius wire format.
package creative

import "github.com/smileynet/adforge/internal/brief"

// Copy is a single ad copy rendition.
type Copy struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
	CTA      string `json:"cta"`
}

// Image is one generated ad visual.
type Image struct {
	URL string `json:"url"`
}

// PerformanceHint carries typical performance characteristics for a tone.
type PerformanceHint struct {
	Icon       string `json:"icon"`
	BestFor    string `json:"best_for"`
	AvgCTR     string `json:"avg_ctr"`
	Conversion string `json:"conversion"`
}

// Variation is an alternate tone rendition of the base creative.
// Variations are immutable per render; the refinement loop replaces the
// whole list, never individual entries.
type Variation struct {
	Tone            string          `json:"tone"`
	Headline        string          `json:"headline"`
	Body            string          `json:"body"`
	CTA             string          `json:"cta"`
	IsPrimary       bool            `json:"is_primary"`
	PerformanceHint PerformanceHint `json:"performance_hint"`
}

// Format is one platform ad format.
type Format struct {
	Name  string `json:"name"`
	Ratio string `json:"ratio"`
}

// PlatformPreview is a platform-adapted rendering of the creative.
// Read-only from the client's perspective.
type PlatformPreview struct {
	Name          string   `json:"name"`
	Icon          string   `json:"icon"`
	AudienceReach string   `json:"audience_reach"`
	Formats       []Format `json:"formats"`
	PrimaryFormat Format   `json:"primary_format"`
	PrimaryImage  string   `json:"primary_image,omitempty"`
	Tips          string   `json:"tips"`
	AdaptedCopy   Copy     `json:"adapted_copy"`
}

// Result is a complete generation response. The orchestrator owns it
// exclusively until generation completes; afterwards the refinement loop
// may replace Copy and Variations (wholesale, through the orchestrator).
type Result struct {
	JobID       string                     `json:"job_id,omitempty"`
	Brief       brief.Brief                `json:"brief"`
	Copy        Copy                       `json:"copy"`
	Images      []Image                    `json:"images"`
	Variations  []Variation                `json:"variations"`
	Platforms   map[string]PlatformPreview `json:"platforms"`
	GeneratedAt string                     `json:"generated_at,omitempty"`
}

// Refinement is a /refine response. A nil Copy means the service could not
// produce a refinement; callers treat that as a soft failure.
type Refinement struct {
	Copy              *Copy       `json:"copy,omitempty"`
	Variations        []Variation `json:"variations,omitempty"`
	RefinementApplied string      `json:"refinement_applied,omitempty"`
	Message           string      `json:"message"`
}
