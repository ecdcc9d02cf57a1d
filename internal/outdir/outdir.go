// Package outdir names and manages the files an imposition run writes.
package outdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	// MasterSuffix ends the consolidated document's name.
	MasterSuffix = "_master.pdf"

	// ReportSuffix ends the run report's name.
	ReportSuffix = "_report"
)

// Dir is an output directory.
type Dir struct {
	path string
}

// New creates a Dir with the given path.
// If path is empty, uses the current directory.
func New(path string) *Dir {
	if path == "" {
		path = "."
	}
	return &Dir{path: filepath.Clean(path)}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// MasterPath returns the consolidated document path: <name>_master.pdf.
func (d *Dir) MasterPath(jobName string) string {
	return filepath.Join(d.path, jobName+MasterSuffix)
}

// SignaturePath returns the path of a per-signature document. Ordinals are
// 1-indexed: <name>_sig<N>.pdf.
func (d *Dir) SignaturePath(jobName string, ordinal int) string {
	return filepath.Join(d.path, fmt.Sprintf("%s_sig%d.pdf", jobName, ordinal))
}

// ReportPath returns the run report path for the given extension ("yaml" or "json").
func (d *Dir) ReportPath(jobName, ext string) string {
	return filepath.Join(d.path, jobName+ReportSuffix+"."+ext)
}

// EnsureExists creates the directory if it doesn't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Exists returns true if the directory exists.
func (d *Dir) Exists() bool {
	info, err := os.Stat(d.path)
	return err == nil && info.IsDir()
}

// Existing lists documents from earlier runs of the job, sorted by name.
func (d *Dir) Existing(jobName string) ([]string, error) {
	var found []string
	for _, pattern := range []string{
		filepath.Join(d.path, globEscape(jobName)+MasterSuffix),
		filepath.Join(d.path, globEscape(jobName)+"_sig*.pdf"),
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}
	sort.Strings(found)
	return found, nil
}

// RemoveFiles deletes the given files, ignoring ones already gone.
func (d *Dir) RemoveFiles(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func globEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
