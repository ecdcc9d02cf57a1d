package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/imposer/internal/imposition"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	data := map[string]int{"signatures": 4}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatJSON, data); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "{\n  \"signatures\": 4\n}\n" {
			t.Errorf("unexpected json: %q", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatYAML, data); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "signatures: 4\n" {
			t.Errorf("unexpected yaml: %q", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := Write(&bytes.Buffer{}, Format("xml"), data); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&imposition.ShortfallError{Required: 16, Available: 8}, "configuration"},
		{fmt.Errorf("open: %w", imposition.ErrSourceRead), "source_read"},
		{fmt.Errorf("close: %w", imposition.ErrOutputWrite), "output_write"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewRun(t *testing.T) {
	started := time.Now().Add(-1500 * time.Millisecond)

	ok := NewRun("run-1", "book", started, &imposition.Result{Files: []string{"book_master.pdf"}}, nil)
	if ok.Status != StatusOK || ok.Error != "" {
		t.Errorf("unexpected successful run: %+v", ok)
	}
	if ok.DurationMs < 1500 {
		t.Errorf("expected duration >= 1500ms, got %d", ok.DurationMs)
	}

	failed := NewRun("run-2", "book", started, nil, &imposition.ShortfallError{Required: 16, Available: 4})
	if failed.Status != StatusFailed || failed.ErrorKind != "configuration" {
		t.Errorf("unexpected failed run: %+v", failed)
	}
	if !strings.Contains(failed.Error, "adjust the source") {
		t.Errorf("expected shortfall diagnostic, got %q", failed.Error)
	}
}

func TestNewPlan(t *testing.T) {
	layout, err := imposition.NewLayout(15, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	job := imposition.Job{Name: "book", Mode: imposition.ModeOnePerSignature}
	p := NewPlan(job, imposition.PageSize{Width: 792, Height: 612}, imposition.BuildPlan(layout), []string{"a.pdf"})

	if len(p.Signatures) != 4 {
		t.Fatalf("expected 4 signatures, got %d", len(p.Signatures))
	}
	first := p.Signatures[0]
	if first.Signature != 1 || first.FirstPage != 0 {
		t.Errorf("unexpected first signature: %+v", first)
	}
	if first.Sheets[0].Pair != "1|4" || first.Sheets[1].Pair != "3|2" {
		t.Errorf("unexpected first signature pairs: %+v", first.Sheets)
	}

	last := p.Signatures[3]
	if last.Sheets[0].Pair != "13|-" || !strings.Contains(last.Sheets[0].Note, "padding page 16") {
		t.Errorf("expected padding on the last signature, got %+v", last.Sheets[0])
	}
	if len(p.Unplaced) != 0 {
		t.Errorf("expected every page placed, got %v", p.Unplaced)
	}

	t.Run("unplaced pages", func(t *testing.T) {
		layout, err := imposition.NewLayout(18, 4, 2)
		if err != nil {
			t.Fatal(err)
		}
		p := NewPlan(job, imposition.PageSize{Width: 792, Height: 612}, imposition.BuildPlan(layout), nil)
		if len(p.Unplaced) != 1 || p.Unplaced[0] != 18 {
			t.Errorf("Unplaced = %v, want [18]", p.Unplaced)
		}
		var buf bytes.Buffer
		if err := Write(&buf, FormatYAML, p); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "unplaced:") {
			t.Errorf("plan output does not list unplaced pages:\n%s", buf.String())
		}
	})
}

func TestSheetLine(t *testing.T) {
	tests := []struct {
		name  string
		sheet imposition.Sheet
		pair  string
		note  string
	}{
		{
			name:  "placed",
			sheet: imposition.Sheet{Left: 4, Right: 1, LeftSide: imposition.SidePlace, RightSide: imposition.SidePlace},
			pair:  "1|4",
		},
		{
			name:  "exhausted",
			sheet: imposition.Sheet{Exhausted: true, LeftSide: imposition.SideExhausted, RightSide: imposition.SideExhausted},
			pair:  "-|-",
			note:  "blank: source exhausted",
		},
		{
			name:  "out of range",
			sheet: imposition.Sheet{Left: 20, Right: 17, LeftSide: imposition.SideOutOfRange, RightSide: imposition.SidePlace},
			pair:  "17|-",
			note:  "left skipped: page 20 out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sheetLine(tt.sheet)
			if got.Pair != tt.pair || got.Note != tt.note {
				t.Errorf("sheetLine() = %+v, want pair %q note %q", got, tt.pair, tt.note)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	run := &Run{RunID: "run-1", Job: "book", Status: StatusOK}

	jsonPath := filepath.Join(dir, "book_report.json")
	if err := Save(jsonPath, run); err != nil {
		t.Fatalf("Save json failed: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Run
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not json: %v", err)
	}
	if decoded.RunID != "run-1" {
		t.Errorf("expected run-1, got %q", decoded.RunID)
	}

	yamlPath := filepath.Join(dir, "book_report.yaml")
	if err := Save(yamlPath, run); err != nil {
		t.Fatalf("Save yaml failed: %v", err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		t.Fatalf("report is not yaml: %v", err)
	}
	if fields["status"] != StatusOK {
		t.Errorf("expected status ok, got %v", fields["status"])
	}

	if err := Save(filepath.Join(dir, "missing", "r.yaml"), run); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
