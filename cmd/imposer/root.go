package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/imposer/internal/report"
	"github.com/jackzampolin/imposer/internal/svcctx"
	"github.com/jackzampolin/imposer/version"
)

var (
	outputFormat string
	logLevel     string

	format report.Format
)

var rootCmd = &cobra.Command{
	Use:   "imposer",
	Short: "Impose PDF books into folded signatures",
	Long: `Imposer lays out the pages of a PDF book two-up on larger sheets so that,
once printed double-sided, folded and nested, each signature reads in order.

Jobs are described by an INI (or YAML/JSON) job file:
  [job]        name, source, output_directory, pages_per_sheet,
               sheets_per_signature, output_mode
  [page_size]  width, height in inches (omit to turn the source page sideways)
  [leftpage]   x_scaling_factor, y_scaling_factor, x_offset, y_offset, ...
  [rightpage]  same keys; x_offset is measured back from the spine`,
	Version:      version.GitRelease,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		f, err := report.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		format = f

		logger, err := newLogger(logLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		cmd.SetContext(svcctx.WithServices(cmd.Context(), &svcctx.Services{Logger: logger}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)
}

// newLogger builds the stderr logger; stdout carries reports.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})), nil
}

func loggerFrom(cmd *cobra.Command) *slog.Logger {
	if logger := svcctx.LoggerFrom(cmd.Context()); logger != nil {
		return logger
	}
	return slog.Default()
}
