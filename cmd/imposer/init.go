package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/imposer/internal/jobfile"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a default job file",
	Long: `Write a job file with default settings to PATH (default: job.ini).

Paths ending in .json get JSON, .yaml or .yml get YAML, anything else gets INI.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "job.ini"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := jobfile.WriteDefault(path); err != nil {
			return err
		}

		loggerFrom(cmd).Info("wrote job file", "path", path)
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
