// Package svcctx carries run-scoped services through context.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jackzampolin/imposer/internal/imposition"
	"github.com/jackzampolin/imposer/internal/outdir"
)

// Services holds the services a command shares with the packages it calls.
// Components extract what they need via the individual extractors.
type Services struct {
	Logger *slog.Logger
	RunID  string
	OutDir *outdir.Dir
	Port   imposition.DocumentPort
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// RunIDFrom extracts the run id from context.
func RunIDFrom(ctx context.Context) string {
	if s := ServicesFrom(ctx); s != nil {
		return s.RunID
	}
	return ""
}

// OutDirFrom extracts the output directory from context.
func OutDirFrom(ctx context.Context) *outdir.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.OutDir
	}
	return nil
}

// PortFrom extracts the document port from context.
func PortFrom(ctx context.Context) imposition.DocumentPort {
	if s := ServicesFrom(ctx); s != nil {
		return s.Port
	}
	return nil
}
