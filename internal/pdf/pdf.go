// Package pdf implements the imposition document port on top of pdfcpu.
//
// Output documents are built inside a fresh read of the source file: each
// placed source page becomes a form XObject in the same object graph, new
// page dicts draw those forms, and the page tree is replaced on Close.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/imposer/internal/imposition"
)

// Engine opens sources and creates outputs.
type Engine struct {
	conf   *model.Configuration
	logger *slog.Logger
}

// New creates an Engine. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Engine{conf: conf, logger: logger}
}

// Source is an opened PDF.
type Source struct {
	path string
	ctx  *model.Context
	dims []types.Dim
}

// Path returns the file the source was read from.
func (s *Source) Path() string {
	return s.path
}

// PageCount returns the number of pages.
func (s *Source) PageCount() int {
	return s.ctx.PageCount
}

// PageSize returns the size of a 1-based page in points.
func (s *Source) PageSize(pageNr int) (imposition.PageSize, error) {
	if pageNr < 1 || pageNr > len(s.dims) {
		return imposition.PageSize{}, fmt.Errorf("page %d out of range 1-%d", pageNr, len(s.dims))
	}
	d := s.dims[pageNr-1]
	return imposition.PageSize{Width: d.Width, Height: d.Height}, nil
}

// readContext reads and validates a PDF file into a fresh context.
func (e *Engine) readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, e.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to validate PDF: %w", err)
	}
	return ctx, nil
}

// OpenSource reads the PDF at path.
func (e *Engine) OpenSource(ctx context.Context, path string) (imposition.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := e.readContext(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: source not found: %s", imposition.ErrSourceRead, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", imposition.ErrSourceRead, path, err)
	}

	dims, err := pctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: page dimensions of %s: %v", imposition.ErrSourceRead, path, err)
	}

	e.logger.Debug("read source PDF", "path", path, "pages", pctx.PageCount)
	return &Source{path: path, ctx: pctx, dims: dims}, nil
}

// CreateOutput starts a document at path whose pages have the given size.
// The file is created immediately so unwritable destinations fail early.
func (e *Engine) CreateOutput(ctx context.Context, src imposition.Source, path string, size imposition.PageSize) (imposition.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := src.(*Source)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported source type %T", imposition.ErrSourceRead, src)
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: page size %gx%g", imposition.ErrConfiguration, size.Width, size.Height)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imposition.ErrOutputWrite, err)
	}

	pctx, err := e.readContext(s.path)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: %s: %v", imposition.ErrSourceRead, s.path, err)
	}

	return &Output{
		src:    s,
		ctx:    pctx,
		file:   f,
		path:   path,
		size:   size,
		forms:  make(map[int]types.IndirectRef),
		logger: e.logger.With("output", path),
	}, nil
}
