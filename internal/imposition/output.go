package imposition

import (
	"context"
	"fmt"
	"log/slog"
)

// SeparatorFontSize is the text size on consolidated-mode separator pages.
const SeparatorFontSize = 32

// PathScheme names output files.
type PathScheme interface {
	MasterPath(jobName string) string
	SignaturePath(jobName string, ordinal int) string
}

type assemblyState int

const (
	stateIdle assemblyState = iota
	stateInSignature
	stateBetweenSignatures
	stateFinished
	stateAborted
)

func (s assemblyState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateInSignature:
		return "in_signature"
	case stateBetweenSignatures:
		return "between_signatures"
	case stateFinished:
		return "finished"
	case stateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OutputAssembly owns output document lifecycle for a run. Exactly one
// document is current at any time.
type OutputAssembly interface {
	// BeginSignature prepares the document for a signature's sheets and returns it.
	BeginSignature(ctx context.Context, sigIdx int) (Output, error)
	// EndSignature runs after the signature's last sheet.
	EndSignature(sigIdx int) error
	// Finish closes whatever is still open at the end of a successful run.
	Finish() error
	// Abort discards the current unfinished document, if any.
	Abort() error
	// Files lists finalized documents in the order they were closed.
	Files() []string
	// Separators counts separator pages emitted so far.
	Separators() int
}

// AssemblyConfig configures an OutputAssembly.
type AssemblyConfig struct {
	Mode    OutputMode
	JobName string
	Port    DocumentPort
	Source  Source
	Size    PageSize
	Paths   PathScheme
	Logger  *slog.Logger
}

// NewOutputAssembly returns the assembly for cfg.Mode.
func NewOutputAssembly(cfg AssemblyConfig) (OutputAssembly, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := assemblyBase{
		port:    cfg.Port,
		src:     cfg.Source,
		size:    cfg.Size,
		paths:   cfg.Paths,
		jobName: cfg.JobName,
		logger:  logger.With("mode", string(cfg.Mode)),
	}
	switch cfg.Mode {
	case ModeSingleConsolidated:
		return &consolidatedAssembly{assemblyBase: base}, nil
	case ModeOnePerSignature:
		return &perSignatureAssembly{assemblyBase: base}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output mode %q", ErrConfiguration, cfg.Mode)
	}
}

type assemblyBase struct {
	port    DocumentPort
	src     Source
	size    PageSize
	paths   PathScheme
	jobName string
	logger  *slog.Logger

	state       assemblyState
	current     Output
	currentPath string
	files       []string
	separators  int
}

func (a *assemblyBase) Files() []string {
	out := make([]string, len(a.files))
	copy(out, a.files)
	return out
}

func (a *assemblyBase) Separators() int {
	return a.separators
}

func (a *assemblyBase) expect(op string, states ...assemblyState) error {
	for _, s := range states {
		if a.state == s {
			return nil
		}
	}
	return fmt.Errorf("output assembly: %s not allowed in state %s", op, a.state)
}

func (a *assemblyBase) open(ctx context.Context, path string) error {
	out, err := a.port.CreateOutput(ctx, a.src, path, a.size)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrOutputWrite, path, err)
	}
	a.current = out
	a.currentPath = path
	a.logger.Debug("opened output document", "path", path)
	return nil
}

func (a *assemblyBase) close() error {
	if a.current == nil {
		return nil
	}
	out, path := a.current, a.currentPath
	a.current, a.currentPath = nil, ""
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrOutputWrite, path, err)
	}
	a.files = append(a.files, path)
	a.logger.Info("wrote output document", "path", path)
	return nil
}

func (a *assemblyBase) Abort() error {
	if a.state == stateFinished || a.state == stateAborted {
		return nil
	}
	a.state = stateAborted
	if a.current == nil {
		return nil
	}
	out, path := a.current, a.currentPath
	a.current, a.currentPath = nil, ""
	a.logger.Warn("discarding unfinished output document", "path", path)
	return out.Discard()
}

// consolidatedAssembly writes one master document with separators.
type consolidatedAssembly struct {
	assemblyBase
}

func (a *consolidatedAssembly) BeginSignature(ctx context.Context, sigIdx int) (Output, error) {
	if err := a.expect("begin signature", stateIdle, stateBetweenSignatures); err != nil {
		return nil, err
	}
	if a.current == nil {
		if err := a.open(ctx, a.paths.MasterPath(a.jobName)); err != nil {
			return nil, err
		}
	}
	if err := a.emitSeparators(sigIdx); err != nil {
		return nil, err
	}
	a.state = stateInSignature
	return a.current, nil
}

// emitSeparators adds the front and back marker pages so duplex printing
// stays aligned on whole sheets.
func (a *consolidatedAssembly) emitSeparators(sigIdx int) error {
	for _, face := range []string{"Front", "Back"} {
		if err := a.current.NewPage(); err != nil {
			return fmt.Errorf("%w: separator page: %v", ErrOutputWrite, err)
		}
		text := fmt.Sprintf("%s separator page for SIGNATURE %d", face, sigIdx+1)
		if err := a.current.DrawCenteredText(text, a.size.Width/2, a.size.Height/2, SeparatorFontSize); err != nil {
			return fmt.Errorf("%w: separator text: %v", ErrOutputWrite, err)
		}
		a.separators++
	}
	return nil
}

func (a *consolidatedAssembly) EndSignature(int) error {
	if err := a.expect("end signature", stateInSignature); err != nil {
		return err
	}
	a.state = stateBetweenSignatures
	return nil
}

func (a *consolidatedAssembly) Finish() error {
	if err := a.expect("finish", stateIdle, stateBetweenSignatures); err != nil {
		return err
	}
	if err := a.close(); err != nil {
		return err
	}
	a.state = stateFinished
	return nil
}

// perSignatureAssembly writes one document per signature.
type perSignatureAssembly struct {
	assemblyBase
}

func (a *perSignatureAssembly) BeginSignature(ctx context.Context, sigIdx int) (Output, error) {
	if err := a.expect("begin signature", stateIdle, stateBetweenSignatures); err != nil {
		return nil, err
	}
	if err := a.open(ctx, a.paths.SignaturePath(a.jobName, sigIdx+1)); err != nil {
		return nil, err
	}
	a.state = stateInSignature
	return a.current, nil
}

func (a *perSignatureAssembly) EndSignature(int) error {
	if err := a.expect("end signature", stateInSignature); err != nil {
		return err
	}
	if err := a.close(); err != nil {
		return err
	}
	a.state = stateBetweenSignatures
	return nil
}

func (a *perSignatureAssembly) Finish() error {
	if err := a.expect("finish", stateIdle, stateBetweenSignatures); err != nil {
		return err
	}
	a.state = stateFinished
	return nil
}
