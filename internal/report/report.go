// Package report renders run results and plans for the command line.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/imposer/internal/imposition"
)

// Format is an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml" or "json"; empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	if f == "" {
		return string(FormatYAML)
	}
	return string(f)
}

// Write encodes data to w in the given format.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// Save writes data to path, choosing the format from the extension.
func Save(path string, data any) error {
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := Write(f, format, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

// Status values for Run.Status.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run describes one imposition run, successful or not.
type Run struct {
	RunID      string             `json:"run_id" yaml:"run_id"`
	Job        string             `json:"job" yaml:"job"`
	Status     string             `json:"status" yaml:"status"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind  string             `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	StartedAt  time.Time          `json:"started_at" yaml:"started_at"`
	DurationMs int64              `json:"duration_ms" yaml:"duration_ms"`
	Result     *imposition.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Removed    []string           `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// NewRun builds a report from a run's outcome.
func NewRun(runID, job string, started time.Time, res *imposition.Result, err error) *Run {
	r := &Run{
		RunID:      runID,
		Job:        job,
		Status:     StatusOK,
		StartedAt:  started.UTC(),
		DurationMs: time.Since(started).Milliseconds(),
		Result:     res,
	}
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		r.ErrorKind = ErrorKind(err)
	}
	return r
}

// ErrorKind names the error category of err.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, imposition.ErrConfiguration):
		return "configuration"
	case errors.Is(err, imposition.ErrSourceRead):
		return "source_read"
	case errors.Is(err, imposition.ErrOutputWrite):
		return "output_write"
	default:
		return "other"
	}
}

// SheetLine is a compact view of one planned sheet.
type SheetLine struct {
	Position int    `json:"position" yaml:"position"`
	Pair     string `json:"pair" yaml:"pair"` // "right|left" in placement order
	Note     string `json:"note,omitempty" yaml:"note,omitempty"`
}

// SignatureLines lists the sheets of one signature.
type SignatureLines struct {
	Signature int         `json:"signature" yaml:"signature"` // 1-based
	FirstPage int         `json:"first_page" yaml:"first_page"`
	Sheets    []SheetLine `json:"sheets" yaml:"sheets"`
}

// Plan is the dry-run view of a job.
type Plan struct {
	Job        string                `json:"job" yaml:"job"`
	Mode       imposition.OutputMode `json:"mode" yaml:"mode"`
	PageSize   imposition.PageSize   `json:"page_size" yaml:"page_size"`
	Layout     imposition.Layout     `json:"layout" yaml:"layout"`
	Files      []string              `json:"files" yaml:"files"`
	Signatures []SignatureLines      `json:"signatures" yaml:"signatures"`
	Unplaced   []int                 `json:"unplaced,omitempty" yaml:"unplaced,omitempty"` // source pages never put on paper
}

// NewPlan summarizes p. files are the documents the run would write.
func NewPlan(job imposition.Job, size imposition.PageSize, p imposition.Plan, files []string) *Plan {
	out := &Plan{
		Job:      job.Name,
		Mode:     job.Mode,
		PageSize: size,
		Layout:   p.Layout,
		Files:    files,
		Unplaced: p.Unplaced,
	}
	for _, sig := range p.Signatures {
		lines := SignatureLines{Signature: sig.Index + 1, FirstPage: sig.FirstPage}
		for _, s := range sig.Sheets {
			lines.Sheets = append(lines.Sheets, sheetLine(s))
		}
		out.Signatures = append(out.Signatures, lines)
	}
	return out
}

func sheetLine(s imposition.Sheet) SheetLine {
	if s.Exhausted {
		return SheetLine{Position: s.Position, Pair: "-|-", Note: "blank: source exhausted"}
	}
	line := SheetLine{
		Position: s.Position,
		Pair:     fmt.Sprintf("%s|%s", side(s.Right, s.RightSide), side(s.Left, s.LeftSide)),
	}
	var notes []string
	for _, c := range []struct {
		name string
		page int
		a    imposition.SideAction
	}{{"right", s.Right, s.RightSide}, {"left", s.Left, s.LeftSide}} {
		switch c.a {
		case imposition.SidePadding:
			notes = append(notes, fmt.Sprintf("%s blank: padding page %d", c.name, c.page))
		case imposition.SideOutOfRange:
			notes = append(notes, fmt.Sprintf("%s skipped: page %d out of range", c.name, c.page))
		}
	}
	line.Note = strings.Join(notes, "; ")
	return line
}

func side(page int, a imposition.SideAction) string {
	if a == imposition.SidePlace {
		return fmt.Sprint(page)
	}
	return "-"
}
