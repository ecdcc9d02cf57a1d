package pdf

import (
	"testing"

	"github.com/jackzampolin/imposer/internal/imposition"
)

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-0.00001, "0"},
		{1, "1"},
		{0.5, "0.5"},
		{426, "426"},
		{-30.25, "-30.25"},
		{1.0 / 3, "0.3333"},
		{1e6, "1000000"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Front separator page for SIGNATURE 1", "Front separator page for SIGNATURE 1"},
		{`a(b)c\d`, `a\(b\)c\\d`},
		{"line\nbreak", `line\nbreak`},
		{"snow ☃", "snow ?"},
		{"café", "caf\xe9"},
	}
	for _, tt := range tests {
		if got := escapeText(tt.in); got != tt.want {
			t.Errorf("escapeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContentCreator_DrawForm(t *testing.T) {
	var cc contentCreator
	cc.DrawForm("Fm4", imposition.Transform{A: 0.5, D: 0.5, E: 426, F: 140})

	want := "q\n0.5 0 0 0.5 426 140 cm\n/Fm4 Do\nQ\n"
	if got := string(cc.Bytes()); got != want {
		t.Errorf("DrawForm() =\n%s\nwant\n%s", got, want)
	}
}

func TestContentCreator_DrawText(t *testing.T) {
	var cc contentCreator
	cc.DrawText("F1", 32, 100.5, 306, "Back (2)")

	want := "BT\n/F1 32 Tf\n100.5 306 Td\n(Back \\(2\\)) Tj\nET\n"
	if got := string(cc.Bytes()); got != want {
		t.Errorf("DrawText() =\n%s\nwant\n%s", got, want)
	}
	if cc.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", cc.Len(), len(want))
	}
}

func TestFormName(t *testing.T) {
	if got := formName(12); got != "Fm12" {
		t.Errorf("formName(12) = %q", got)
	}
}
