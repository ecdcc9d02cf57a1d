package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/imposer/internal/imposition"
	"github.com/jackzampolin/imposer/internal/report"
)

var planFlags jobFlags

var planCmd = &cobra.Command{
	Use:   "plan JOB_FILE",
	Short: "Show which pages land on which sheets without writing anything",
	Long: `Print the signature plan for JOB_FILE.

Each sheet is shown as "right|left" in placement order. "-" marks a blank
half: the padding page of an odd source, a page past the end of the source,
or a sheet after the source ran out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := loggerFrom(cmd)

		_, job, err := loadJob(ctx, args[0], planFlags.overrides, logger)
		if err != nil {
			return err
		}

		ctx, s := withRunServices(ctx, job)
		a := imposition.NewAssembler(imposition.Config{
			Port:   s.Port,
			Paths:  s.OutDir,
			Logger: s.Logger,
			RunID:  s.RunID,
		})
		plan, size, err := a.Plan(ctx, job)
		if err != nil {
			return err
		}

		files := plannedFiles(s.OutDir, job, plan.Layout)
		return report.Write(cmd.OutOrStdout(), format, report.NewPlan(job, size, plan, files))
	},
}

func init() {
	planFlags.register(planCmd)
	rootCmd.AddCommand(planCmd)
}
