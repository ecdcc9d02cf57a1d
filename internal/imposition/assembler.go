package imposition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Config configures an Assembler.
type Config struct {
	Port   DocumentPort
	Paths  PathScheme
	Logger *slog.Logger // Optional; defaults to slog.Default()
	RunID  string       // Optional; generated when empty
}

// Assembler realizes imposition runs against a DocumentPort.
type Assembler struct {
	port   DocumentPort
	paths  PathScheme
	logger *slog.Logger
	runID  string
}

// Result summarizes a finished run.
type Result struct {
	RunID        string     `json:"run_id" yaml:"run_id"`
	Job          string     `json:"job" yaml:"job"`
	Mode         OutputMode `json:"mode" yaml:"mode"`
	PageSize     PageSize   `json:"page_size" yaml:"page_size"`
	Layout       Layout     `json:"layout" yaml:"layout"`
	Files        []string   `json:"files" yaml:"files"`
	OutputPages  int        `json:"output_pages" yaml:"output_pages"`
	Placements   int        `json:"placements" yaml:"placements"`
	BlankSheets  int        `json:"blank_sheets" yaml:"blank_sheets"`
	PaddingPages int        `json:"padding_pages" yaml:"padding_pages"`
	Separators   int        `json:"separators" yaml:"separators"`
	Unplaced     []int      `json:"unplaced,omitempty" yaml:"unplaced,omitempty"`
}

// NewAssembler creates an Assembler.
func NewAssembler(cfg Config) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		port:   cfg.Port,
		paths:  cfg.Paths,
		logger: logger,
		runID:  cfg.RunID,
	}
}

// prepared is everything a run needs before the first document is opened.
type prepared struct {
	src    Source
	layout Layout
	size   PageSize
}

// prepare validates the job, opens the source and applies the validity gate.
// Nothing is written before it succeeds.
func (a *Assembler) prepare(ctx context.Context, job Job, logger *slog.Logger) (*prepared, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	src, err := a.port.OpenSource(ctx, job.SourcePath)
	if err != nil {
		return nil, asKind(ErrSourceRead, fmt.Sprintf("open %s", job.SourcePath), err)
	}

	pageCount := src.PageCount()
	logger.Debug("opened source", "path", job.SourcePath, "pages", pageCount)
	if pageCount < 1 {
		closeSource(src)
		return nil, fmt.Errorf("%w: %s has no pages", ErrSourceRead, job.SourcePath)
	}
	if pageCount%2 != 0 {
		logger.Debug("odd page count, padding with one blank page", "pages", pageCount)
	}

	layout, err := NewLayout(pageCount, job.PagesPerSheet, job.SheetsPerSignature)
	if err != nil {
		closeSource(src)
		logger.Error("source has fewer pages than a signature",
			"available", layout.PaddedPageCount, "required", layout.MaxPagesPerSignature)
		return nil, err
	}

	first, err := src.PageSize(1)
	if err != nil {
		closeSource(src)
		return nil, asKind(ErrSourceRead, "read first page size", err)
	}
	size := job.ResolvePageSize(first)
	if size.Width <= 0 || size.Height <= 0 {
		closeSource(src)
		return nil, fmt.Errorf("%w: output page size %gx%g is not positive", ErrConfiguration, size.Width, size.Height)
	}

	logger.Debug("layout",
		"padded_pages", layout.PaddedPageCount,
		"max_pages_per_signature", layout.MaxPagesPerSignature,
		"magic_number", layout.MagicNumber,
		"signatures", layout.SignatureCount)

	return &prepared{src: src, layout: layout, size: size}, nil
}

// Plan computes the page mapping for job without writing any document.
func (a *Assembler) Plan(ctx context.Context, job Job) (Plan, PageSize, error) {
	p, err := a.prepare(ctx, job, a.logger.With("job", job.Name))
	if err != nil {
		return Plan{}, PageSize{}, err
	}
	closeSource(p.src)
	return BuildPlan(p.layout), p.size, nil
}

// Run imposes job. Signatures and sheets are processed strictly in order; the
// context is checked between sheets. Any failure aborts the whole run.
func (a *Assembler) Run(ctx context.Context, job Job) (*Result, error) {
	runID := a.runID
	if runID == "" {
		runID = uuid.New().String()
	}
	logger := a.logger.With("job", job.Name, "run_id", runID)

	p, err := a.prepare(ctx, job, logger)
	if err != nil {
		return nil, err
	}
	defer closeSource(p.src)

	logger.Info("starting imposition",
		"source", job.SourcePath,
		"pages", p.layout.PageCount,
		"signatures", p.layout.SignatureCount,
		"mode", string(job.Mode),
		"width", p.size.Width,
		"height", p.size.Height)

	assembly, err := NewOutputAssembly(AssemblyConfig{
		Mode:    job.Mode,
		JobName: job.Name,
		Port:    a.port,
		Source:  p.src,
		Size:    p.size,
		Paths:   a.paths,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:    runID,
		Job:      job.Name,
		Mode:     job.Mode,
		PageSize: p.size,
		Layout:   p.layout,
		Unplaced: BuildPlan(p.layout).Unplaced,
	}
	if len(res.Unplaced) > 0 {
		logger.Warn("source pages will not be placed: the source runs out partway through the last signature",
			"pages", res.Unplaced)
	}

	if err := a.emitSignatures(ctx, job, p, assembly, res, logger); err != nil {
		if abortErr := assembly.Abort(); abortErr != nil {
			logger.Warn("failed to discard unfinished output", "error", abortErr)
		}
		res.Files = assembly.Files()
		return res, err
	}
	if err := assembly.Finish(); err != nil {
		if abortErr := assembly.Abort(); abortErr != nil {
			logger.Warn("failed to discard unfinished output", "error", abortErr)
		}
		res.Files = assembly.Files()
		return res, err
	}

	res.Files = assembly.Files()
	res.Separators = assembly.Separators()
	res.OutputPages += res.Separators
	logger.Info("imposition complete",
		"files", len(res.Files),
		"output_pages", res.OutputPages,
		"placements", res.Placements,
		"blank_sheets", res.BlankSheets)
	return res, nil
}

func (a *Assembler) emitSignatures(ctx context.Context, job Job, p *prepared, assembly OutputAssembly, res *Result, logger *slog.Logger) error {
	cursor := 1
	for sigIdx := 0; sigIdx < p.layout.SignatureCount; sigIdx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("starting signature", "signature", sigIdx+1, "of", p.layout.SignatureCount)

		out, err := assembly.BeginSignature(ctx, sigIdx)
		if err != nil {
			return err
		}
		for pos := 0; pos < p.layout.SheetsPerSignatureOutput(); pos++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			var sheet Sheet
			sheet, cursor = planSheet(p.layout, sigIdx, pos, cursor)
			if err := emitSheet(out, p.src, job, p.size, sheet, logger); err != nil {
				return err
			}
			res.OutputPages++
			res.Placements += sheet.Placements()
			if sheet.Exhausted {
				res.BlankSheets++
			}
			if sheet.LeftSide == SidePadding {
				res.PaddingPages++
			}
		}
		if err := assembly.EndSignature(sigIdx); err != nil {
			return err
		}
	}
	return nil
}

// emitSheet realizes one planned sheet on a fresh output page. The right page
// is placed before the left; both land on the same page so order is moot.
func emitSheet(out Output, src Source, job Job, size PageSize, sheet Sheet, logger *slog.Logger) error {
	if err := out.NewPage(); err != nil {
		return asKind(ErrOutputWrite, "new page", err)
	}

	if sheet.Exhausted {
		logger.Debug("source exhausted, leaving page blank",
			"signature", sheet.Signature+1, "sheet", sheet.Position+1, "cursor", sheet.Cursor)
		return nil
	}

	logger.Debug("sheet", "signature", sheet.Signature+1, "sheet", sheet.Position+1,
		"left", sheet.Left, "right", sheet.Right)

	if sheet.RightSide == SidePlace {
		if err := out.PlacePage(src, sheet.Right, job.rightTransform(size)); err != nil {
			return asKind(ErrSourceRead, fmt.Sprintf("place page %d", sheet.Right), err)
		}
	}

	switch sheet.LeftSide {
	case SidePadding:
		logger.Warn("no such source page, leaving left side blank", "page", sheet.Left)
	case SidePlace:
		if err := out.PlacePage(src, sheet.Left, job.leftTransform()); err != nil {
			return asKind(ErrSourceRead, fmt.Sprintf("place page %d", sheet.Left), err)
		}
	}
	return nil
}

// asKind wraps err with kind unless it already carries one of the run's error kinds.
func asKind(kind error, op string, err error) error {
	if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrSourceRead) || errors.Is(err, ErrOutputWrite) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", kind, op, err)
}

func closeSource(src Source) {
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}
}
