package imposition

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure aborts the whole run; callers match them with errors.Is.
var (
	// ErrConfiguration is returned before any document is opened when the job
	// cannot produce a single complete signature or a parameter is malformed.
	ErrConfiguration = errors.New("configuration error")

	// ErrSourceRead is returned when the source cannot be opened or a page
	// cannot be extracted.
	ErrSourceRead = errors.New("source read error")

	// ErrOutputWrite is returned when an output document cannot be created,
	// written or finalized.
	ErrOutputWrite = errors.New("output write error")
)

// ShortfallError reports a source with fewer pages than one signature needs.
type ShortfallError struct {
	Required  int // pages in one signature
	Available int // padded source page count
}

func (e *ShortfallError) Error() string {
	noun := "pages"
	if e.Available == 1 {
		noun = "page"
	}
	return fmt.Sprintf("%v: source has %d %s and there are %d pages per signature; adjust the source to fit %d pages",
		ErrConfiguration, e.Available, noun, e.Required, e.Required)
}

// Unwrap lets errors.Is(err, ErrConfiguration) match.
func (e *ShortfallError) Unwrap() error {
	return ErrConfiguration
}
