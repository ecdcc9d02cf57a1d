// Package imposition computes signature imposition: which source pages are
// printed side by side on each output page so that folded, nested sheets read
// in order once bound.
package imposition

import (
	"fmt"
	"strings"
)

// OutputMode selects how signatures are written to documents.
type OutputMode string

const (
	// ModeSingleConsolidated writes every signature to one document with
	// front/back separator pages before each signature.
	ModeSingleConsolidated OutputMode = "single"

	// ModeOnePerSignature writes one document per signature.
	ModeOnePerSignature OutputMode = "per_signature"
)

// ParseOutputMode accepts the canonical names plus a few aliases.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "single_consolidated", "consolidated", "master":
		return ModeSingleConsolidated, nil
	case "per_signature", "per-signature", "one_per_signature", "split":
		return ModeOnePerSignature, nil
	default:
		return "", fmt.Errorf("%w: unknown output mode %q", ErrConfiguration, s)
	}
}

// PointsPerInch converts job-file inches to PDF points.
const PointsPerInch = 72.0

// PageSize is a page's width and height in points.
type PageSize struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IsZero reports whether the size was left unset.
func (s PageSize) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Swapped returns the size rotated a quarter turn.
func (s PageSize) Swapped() PageSize {
	return PageSize{Width: s.Height, Height: s.Width}
}

// Placement is an affine descriptor for putting a source page on an output page:
// the matrix [ScaleX RotationX RotationY ScaleY OffsetX OffsetY].
type Placement struct {
	ScaleX    float64 `json:"scale_x" yaml:"scale_x"`
	ScaleY    float64 `json:"scale_y" yaml:"scale_y"`
	RotationX float64 `json:"rotation_x" yaml:"rotation_x"`
	RotationY float64 `json:"rotation_y" yaml:"rotation_y"`
	OffsetX   float64 `json:"offset_x" yaml:"offset_x"`
	OffsetY   float64 `json:"offset_y" yaml:"offset_y"`
}

func (p Placement) problem(side string) string {
	if p.ScaleX <= 0 || p.ScaleY <= 0 {
		return fmt.Sprintf("%s placement scales must be positive (x=%g, y=%g)", side, p.ScaleX, p.ScaleY)
	}
	return ""
}

// Transform is the final placement matrix handed to the document port.
type Transform struct {
	A, B, C, D, E, F float64
}

// StandardPlacement returns the fixed half-size layout used for letter-size
// spreads: both pages at 50%, the left page 60pt in and the right page 30pt
// past the spine, both 140pt up.
func StandardPlacement() (left, right Placement) {
	left = Placement{ScaleX: 0.5, ScaleY: 0.5, OffsetX: 60, OffsetY: 140}
	right = Placement{ScaleX: 0.5, ScaleY: 0.5, OffsetX: -30, OffsetY: 140}
	return left, right
}

// Job holds the resolved parameters for one imposition run.
type Job struct {
	Name               string
	SourcePath         string
	OutputDirectory    string
	PagesPerSheet      int
	SheetsPerSignature int
	Mode               OutputMode

	// PageSize of the output; zero means derive it from the source's first
	// page with width and height swapped.
	PageSize PageSize

	Left  Placement
	Right Placement
}

// Validate checks the job parameters that do not depend on the source.
func (j Job) Validate() error {
	var problems []string
	if strings.TrimSpace(j.Name) == "" {
		problems = append(problems, "job name is required")
	}
	if strings.TrimSpace(j.SourcePath) == "" {
		problems = append(problems, "source path is required")
	}
	if j.PagesPerSheet < 2 || j.PagesPerSheet%2 != 0 {
		problems = append(problems, fmt.Sprintf("pages per sheet must be a positive even number (got %d)", j.PagesPerSheet))
	}
	if j.SheetsPerSignature < 1 {
		problems = append(problems, fmt.Sprintf("sheets per signature must be at least 1 (got %d)", j.SheetsPerSignature))
	}
	switch j.Mode {
	case ModeSingleConsolidated, ModeOnePerSignature:
	default:
		problems = append(problems, fmt.Sprintf("unknown output mode %q", j.Mode))
	}
	if !j.PageSize.IsZero() && (j.PageSize.Width <= 0 || j.PageSize.Height <= 0) {
		problems = append(problems, fmt.Sprintf("output page size must be positive (got %gx%g)", j.PageSize.Width, j.PageSize.Height))
	}
	for _, msg := range []string{j.Left.problem("left"), j.Right.problem("right")} {
		if msg != "" {
			problems = append(problems, msg)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// ResolvePageSize returns the configured output size, or the source's first
// page size turned sideways when none was configured.
func (j Job) ResolvePageSize(firstPage PageSize) PageSize {
	if !j.PageSize.IsZero() {
		return j.PageSize
	}
	return firstPage.Swapped()
}

// rightTransform anchors the right page's x offset at the spine.
func (j Job) rightTransform(size PageSize) Transform {
	p := j.Right
	return Transform{A: p.ScaleX, B: p.RotationX, C: p.RotationY, D: p.ScaleY, E: size.Width/2 - p.OffsetX, F: p.OffsetY}
}

// leftTransform anchors the left page's x offset at the page's left edge.
func (j Job) leftTransform() Transform {
	p := j.Left
	return Transform{A: p.ScaleX, B: p.RotationX, C: p.RotationY, D: p.ScaleY, E: p.OffsetX, F: p.OffsetY}
}
