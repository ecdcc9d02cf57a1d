package jobfile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackzampolin/imposer/internal/imposition"
	"github.com/jackzampolin/imposer/internal/svcctx"
)

// Overrides are command-line values that replace job file values. Zero
// values leave the file's value in place.
type Overrides struct {
	Name               string
	Source             string
	OutputDirectory    string
	Mode               string
	PagesPerSheet      int
	SheetsPerSignature int
	PageWidth          float64 // inches
	PageHeight         float64 // inches
}

// Builder turns the manager's current job file into imposition jobs.
type Builder struct {
	manager *Manager
}

// NewBuilder creates a builder reading from m.
func NewBuilder(m *Manager) *Builder {
	return &Builder{manager: m}
}

// Job builds a job from the current file contents and o. Relative paths in
// the file resolve against the file's directory.
func (b *Builder) Job(ctx context.Context, o Overrides) (imposition.Job, error) {
	return ToJob(ctx, b.manager.Get(), filepath.Dir(b.manager.Path()), o)
}

func loggerFromContext(ctx context.Context) *slog.Logger {
	if logger := svcctx.LoggerFrom(ctx); logger != nil {
		return logger
	}
	return slog.Default()
}

// ToJob converts a decoded file into a job. baseDir anchors relative paths
// taken from the file; override paths are used as given.
func ToJob(ctx context.Context, f *File, baseDir string, o Overrides) (imposition.Job, error) {
	logger := loggerFromContext(ctx)

	job := imposition.Job{
		Name:               pick(o.Name, f.Job.Name),
		SourcePath:         o.Source,
		OutputDirectory:    o.OutputDirectory,
		PagesPerSheet:      f.Job.PagesPerSheet,
		SheetsPerSignature: f.Job.SheetsPerSignature,
	}
	if job.SourcePath == "" {
		job.SourcePath = resolve(baseDir, f.Job.Source)
	}
	if job.OutputDirectory == "" {
		job.OutputDirectory = resolve(baseDir, f.Job.OutputDirectory)
	}
	if o.PagesPerSheet != 0 {
		job.PagesPerSheet = o.PagesPerSheet
	}
	if o.SheetsPerSignature != 0 {
		job.SheetsPerSignature = o.SheetsPerSignature
	}

	mode, err := resolveMode(o.Mode, f.Job.OutputMode, f.Job.Output)
	if err != nil {
		return imposition.Job{}, err
	}
	job.Mode = mode

	width, height := f.PageSize.Width, f.PageSize.Height
	if o.PageWidth != 0 {
		width = o.PageWidth
	}
	if o.PageHeight != 0 {
		height = o.PageHeight
	}
	job.PageSize = imposition.PageSize{
		Width:  width * imposition.PointsPerInch,
		Height: height * imposition.PointsPerInch,
	}

	left, right := imposition.StandardPlacement()
	if f.LeftPage != nil {
		left = f.LeftPage.placement()
	} else {
		logger.Debug("no [leftpage] section, using standard placement")
	}
	if f.RightPage != nil {
		right = f.RightPage.placement()
	} else {
		logger.Debug("no [rightpage] section, using standard placement")
	}
	job.Left, job.Right = left, right

	return job, nil
}

func (p PlacementSection) placement() imposition.Placement {
	return imposition.Placement{
		ScaleX:    p.XScalingFactor,
		ScaleY:    p.YScalingFactor,
		RotationX: p.XRotation,
		RotationY: p.YRotation,
		OffsetX:   p.XOffset,
		OffsetY:   p.YOffset,
	}
}

// resolveMode picks the output mode: the override, then output_mode, then
// the legacy boolean output key, then consolidated.
func resolveMode(override, mode, legacy string) (imposition.OutputMode, error) {
	if s := pick(override, mode); s != "" {
		return imposition.ParseOutputMode(s)
	}
	if legacy == "" {
		return imposition.ModeSingleConsolidated, nil
	}
	single, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(legacy)))
	if err != nil {
		return "", fmt.Errorf("%w: output must be true or false (got %q)", imposition.ErrConfiguration, legacy)
	}
	if single {
		return imposition.ModeSingleConsolidated, nil
	}
	return imposition.ModeOnePerSignature, nil
}

func pick(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
