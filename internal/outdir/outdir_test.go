package outdir

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir := New("/tmp/imposer-out/")
		if dir.Path() != "/tmp/imposer-out" {
			t.Errorf("expected path /tmp/imposer-out, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses current directory", func(t *testing.T) {
		if got := New("").Path(); got != "." {
			t.Errorf("expected ., got %s", got)
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir := New("/tmp/out")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"MasterPath", dir.MasterPath("book"), "/tmp/out/book_master.pdf"},
		{"SignaturePath first", dir.SignaturePath("book", 1), "/tmp/out/book_sig1.pdf"},
		{"SignaturePath tenth", dir.SignaturePath("book", 10), "/tmp/out/book_sig10.pdf"},
		{"ReportPath", dir.ReportPath("book", "yaml"), "/tmp/out/book_report.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}

func TestDir_EnsureExists(t *testing.T) {
	dir := New(filepath.Join(t.TempDir(), "nested", "out"))

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}
	if err := dir.EnsureExists(); err != nil {
		t.Errorf("second EnsureExists failed: %v", err)
	}
}

func TestDir_ExistingAndRemove(t *testing.T) {
	dir := New(t.TempDir())

	files := []string{
		dir.MasterPath("book"),
		dir.SignaturePath("book", 1),
		dir.SignaturePath("book", 2),
		dir.SignaturePath("other", 1),
		filepath.Join(dir.Path(), "book.pdf"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("%PDF"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", f, err)
		}
	}

	got, err := dir.Existing("book")
	if err != nil {
		t.Fatalf("Existing failed: %v", err)
	}
	want := []string{dir.MasterPath("book"), dir.SignaturePath("book", 1), dir.SignaturePath("book", 2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Existing = %v, want %v", got, want)
	}

	missing := filepath.Join(dir.Path(), "never-written.pdf")
	if err := dir.RemoveFiles(append(got, missing)); err != nil {
		t.Fatalf("RemoveFiles failed: %v", err)
	}
	if left, _ := dir.Existing("book"); len(left) != 0 {
		t.Errorf("files left after RemoveFiles: %v", left)
	}
	if _, err := os.Stat(dir.SignaturePath("other", 1)); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}

func TestDir_ExistingEscapesName(t *testing.T) {
	dir := New(t.TempDir())
	if err := os.WriteFile(dir.SignaturePath("bookX", 1), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := dir.Existing("book?")
	if err != nil {
		t.Fatalf("Existing failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("glob characters in job name matched %v", got)
	}
}
