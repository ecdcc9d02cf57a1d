package imposition

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// call is one recorded DocumentPort interaction.
type call struct {
	Op   string
	Path string
	Page int
	Text string
	T    Transform
}

func (c call) String() string {
	switch c.Op {
	case "place":
		return fmt.Sprintf("place(%d)", c.Page)
	case "text":
		return fmt.Sprintf("text(%s)", c.Text)
	case "create", "close", "discard":
		return fmt.Sprintf("%s(%s)", c.Op, filepath.Base(c.Path))
	default:
		return c.Op
	}
}

type fakeSource struct {
	pages int
	size  PageSize
}

func (s *fakeSource) PageCount() int { return s.pages }

func (s *fakeSource) PageSize(pageNr int) (PageSize, error) {
	if pageNr < 1 || pageNr > s.pages {
		return PageSize{}, fmt.Errorf("page %d out of range", pageNr)
	}
	return s.size, nil
}

// fakePort records every call in order.
type fakePort struct {
	src   *fakeSource
	calls []call

	openErr   error
	createErr error
	failPlace   int // page number whose placement fails
	failClose   bool
	failDiscard bool
}

func newFakePort(pages int) *fakePort {
	return &fakePort{src: &fakeSource{pages: pages, size: PageSize{Width: 612, Height: 792}}}
}

func (p *fakePort) OpenSource(_ context.Context, path string) (Source, error) {
	p.calls = append(p.calls, call{Op: "open", Path: path})
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p.src, nil
}

func (p *fakePort) CreateOutput(_ context.Context, _ Source, path string, _ PageSize) (Output, error) {
	p.calls = append(p.calls, call{Op: "create", Path: path})
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &fakeOutput{port: p, path: path}, nil
}

type fakeOutput struct {
	port   *fakePort
	path   string
	closed bool
}

func (o *fakeOutput) record(c call) error {
	if o.closed {
		return errors.New("write after close")
	}
	o.port.calls = append(o.port.calls, c)
	return nil
}

func (o *fakeOutput) NewPage() error { return o.record(call{Op: "page"}) }

func (o *fakeOutput) PlacePage(_ Source, pageNr int, t Transform) error {
	if pageNr < 1 || pageNr > o.port.src.pages {
		return fmt.Errorf("precondition violated: page %d", pageNr)
	}
	if o.port.failPlace == pageNr {
		return errors.New("corrupt page")
	}
	return o.record(call{Op: "place", Page: pageNr, T: t})
}

func (o *fakeOutput) DrawCenteredText(text string, _, _, _ float64) error {
	return o.record(call{Op: "text", Text: text})
}

func (o *fakeOutput) Close() error {
	if err := o.record(call{Op: "close", Path: o.path}); err != nil {
		return err
	}
	if o.port.failClose {
		return errors.New("disk full")
	}
	o.closed = true
	return nil
}

func (o *fakeOutput) Discard() error {
	o.closed = true
	o.port.calls = append(o.port.calls, call{Op: "discard", Path: o.path})
	if o.port.failDiscard {
		return errors.New("file busy")
	}
	return nil
}

// ops returns the recorded calls with the given op names.
func (p *fakePort) ops(names ...string) []call {
	var out []call
	for _, c := range p.calls {
		for _, n := range names {
			if c.Op == n {
				out = append(out, c)
			}
		}
	}
	return out
}

func (p *fakePort) trace() string {
	parts := make([]string, len(p.calls))
	for i, c := range p.calls {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

type fakePaths struct{ dir string }

func (f fakePaths) MasterPath(job string) string {
	return filepath.Join(f.dir, job+"_master.pdf")
}

func (f fakePaths) SignaturePath(job string, n int) string {
	return filepath.Join(f.dir, fmt.Sprintf("%s_sig%d.pdf", job, n))
}

func testJob(mode OutputMode, pagesPerSheet, sheetsPerSignature int) Job {
	left, right := StandardPlacement()
	return Job{
		Name:               "book",
		SourcePath:         "book.pdf",
		OutputDirectory:    "/out",
		PagesPerSheet:      pagesPerSheet,
		SheetsPerSignature: sheetsPerSignature,
		Mode:               mode,
		Left:               left,
		Right:              right,
	}
}
