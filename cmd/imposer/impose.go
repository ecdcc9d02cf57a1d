package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/imposer/internal/report"
)

var (
	imposeFlags    jobFlags
	imposeClean    bool
	cleanOnFailure bool
	saveReport     bool
)

var imposeCmd = &cobra.Command{
	Use:   "impose JOB_FILE",
	Short: "Impose the job's source PDF into signatures",
	Long: `Impose the source PDF named in JOB_FILE.

In single mode every signature goes into <name>_master.pdf, each preceded by
a front and a back separator page. In per_signature mode each signature is
written to <name>_sig<N>.pdf.

A failed run never leaves a half-written document behind. Documents already
finished stay unless --clean-on-failure is given.

Examples:
  imposer impose book.ini
  imposer impose book.ini --mode per_signature --sheets-per-signature 8
  imposer impose book.ini --source proof.pdf -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := loggerFrom(cmd)

		_, job, err := loadJob(ctx, args[0], imposeFlags.overrides, logger)
		if err != nil {
			return err
		}

		rep, runErr := imposeOnce(ctx, job, runOptions{
			cleanStale:     imposeClean,
			cleanOnFailure: cleanOnFailure,
			saveReport:     saveReport,
		})
		if err := report.Write(cmd.OutOrStdout(), format, rep); err != nil {
			logger.Warn("failed to print report", "error", err)
		}
		return runErr
	},
}

func init() {
	imposeFlags.register(imposeCmd)
	imposeCmd.Flags().BoolVar(&imposeClean, "clean", false, "remove earlier outputs of this job before imposing")
	imposeCmd.Flags().BoolVar(&cleanOnFailure, "clean-on-failure", false, "remove documents this run finished if it fails")
	imposeCmd.Flags().BoolVar(&saveReport, "save-report", false, "write the run report to <output_dir>/<name>_report.<format>")

	rootCmd.AddCommand(imposeCmd)
}
