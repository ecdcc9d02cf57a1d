package jobfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/imposer/internal/imposition"
)

// DefaultFile returns a job file with sensible defaults: letter pages
// imposed two-up on 11x8.5in sheets, four sheets per signature.
func DefaultFile() *File {
	left, right := imposition.StandardPlacement()
	return &File{
		Job: JobSection{
			Name:               "book",
			Source:             "book.pdf",
			OutputDirectory:    "out",
			PagesPerSheet:      4,
			SheetsPerSignature: 4,
			OutputMode:         string(imposition.ModeSingleConsolidated),
		},
		PageSize:  PageSizeSection{Width: 11, Height: 8.5},
		LeftPage:  placementSection(left),
		RightPage: placementSection(right),
	}
}

func placementSection(p imposition.Placement) *PlacementSection {
	return &PlacementSection{
		XScalingFactor: p.ScaleX,
		YScalingFactor: p.ScaleY,
		XOffset:        p.OffsetX,
		YOffset:        p.OffsetY,
		XRotation:      p.RotationX,
		YRotation:      p.RotationY,
	}
}

// WriteDefault writes the default job file to path. Files ending in .json
// get JSON, .yaml or .yml get YAML, anything else gets INI.
func WriteDefault(path string) error {
	cfg := DefaultFile()

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal job file: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal job file: %w", err)
		}
		buf.WriteString(`# imposer job file
# page_size is in inches; placement offsets are in points.
# Override any key from the environment, e.g. IMPOSER_JOB_SOURCE=book.pdf

`)
		buf.Write(data)
	default:
		data, err := encodeINI(cfg)
		if err != nil {
			return fmt.Errorf("failed to render job file: %w", err)
		}
		buf.WriteString(`; imposer job file
; page_size is in inches; placement offsets are in points.
; output_mode is "single" (one master file with separator pages) or
; "per_signature" (one file per signature).

`)
		buf.Write(data)
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
