package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/imposer/internal/imposition"
	"github.com/jackzampolin/imposer/internal/jobfile"
	"github.com/jackzampolin/imposer/internal/outdir"
	"github.com/jackzampolin/imposer/internal/pdf"
	"github.com/jackzampolin/imposer/internal/report"
	"github.com/jackzampolin/imposer/internal/svcctx"
)

// jobFlags are the job file overrides shared by impose, plan and watch.
type jobFlags struct {
	overrides jobfile.Overrides
}

func (f *jobFlags) register(cmd *cobra.Command) {
	o := &f.overrides
	cmd.Flags().StringVar(&o.Name, "name", "", "job name (overrides [job] name)")
	cmd.Flags().StringVar(&o.Source, "source", "", "source PDF (overrides [job] source)")
	cmd.Flags().StringVar(&o.OutputDirectory, "output-dir", "", "output directory (overrides [job] output_directory)")
	cmd.Flags().StringVar(&o.Mode, "mode", "", "output mode: single or per_signature")
	cmd.Flags().IntVar(&o.PagesPerSheet, "pages-per-sheet", 0, "source pages per folded sheet (even)")
	cmd.Flags().IntVar(&o.SheetsPerSignature, "sheets-per-signature", 0, "sheets nested in each signature")
	cmd.Flags().Float64Var(&o.PageWidth, "page-width", 0, "output page width in inches")
	cmd.Flags().Float64Var(&o.PageHeight, "page-height", 0, "output page height in inches")
}

// loadJob reads the job file and applies the overrides.
func loadJob(ctx context.Context, path string, o jobfile.Overrides, logger *slog.Logger) (*jobfile.Manager, imposition.Job, error) {
	m, err := jobfile.NewManager(path, logger)
	if err != nil {
		return nil, imposition.Job{}, err
	}
	job, err := jobfile.NewBuilder(m).Job(ctx, o)
	if err != nil {
		return nil, imposition.Job{}, err
	}
	return m, job, nil
}

// runOptions control what happens around a run.
type runOptions struct {
	cleanStale     bool // remove earlier outputs of the job first
	cleanOnFailure bool // remove documents this run finalized if it fails
	saveReport     bool // write the report next to the outputs
}

// withRunServices attaches a run id, output dir and document port to ctx.
func withRunServices(ctx context.Context, job imposition.Job) (context.Context, *svcctx.Services) {
	s := &svcctx.Services{
		Logger: slog.Default(),
		RunID:  svcctx.NewRunID(),
		OutDir: outdir.New(job.OutputDirectory),
	}
	if parent := svcctx.ServicesFrom(ctx); parent != nil {
		if parent.Logger != nil {
			s.Logger = parent.Logger
		}
		s.Port = parent.Port
	}
	if s.Port == nil {
		s.Port = pdf.New(s.Logger)
	}
	return svcctx.WithServices(ctx, s), s
}

// imposeOnce runs job and returns its report. The report is non-nil even
// when the run fails.
func imposeOnce(ctx context.Context, job imposition.Job, opts runOptions) (*report.Run, error) {
	ctx, s := withRunServices(ctx, job)
	logger := s.Logger.With("run_id", s.RunID)
	started := time.Now()

	fail := func(err error) (*report.Run, error) {
		return report.NewRun(s.RunID, job.Name, started, nil, err), err
	}

	if err := job.Validate(); err != nil {
		return fail(err)
	}
	if err := s.OutDir.EnsureExists(); err != nil {
		return fail(fmt.Errorf("%w: %v", imposition.ErrOutputWrite, err))
	}
	if opts.cleanStale {
		stale, err := s.OutDir.Existing(job.Name)
		if err != nil {
			return fail(fmt.Errorf("%w: listing earlier outputs: %v", imposition.ErrOutputWrite, err))
		}
		if err := s.OutDir.RemoveFiles(stale); err != nil {
			return fail(fmt.Errorf("%w: removing earlier outputs: %v", imposition.ErrOutputWrite, err))
		}
		if len(stale) > 0 {
			logger.Info("removed earlier outputs", "files", len(stale))
		}
	}

	a := imposition.NewAssembler(imposition.Config{
		Port:   s.Port,
		Paths:  s.OutDir,
		Logger: s.Logger,
		RunID:  s.RunID,
	})
	res, runErr := a.Run(ctx, job)

	rep := report.NewRun(s.RunID, job.Name, started, res, runErr)
	if runErr != nil && opts.cleanOnFailure && res != nil && len(res.Files) > 0 {
		if err := s.OutDir.RemoveFiles(res.Files); err != nil {
			logger.Warn("failed to remove outputs of failed run", "error", err)
		} else {
			rep.Removed = res.Files
		}
	}

	if opts.saveReport {
		path := s.OutDir.ReportPath(job.Name, format.Ext())
		if err := report.Save(path, rep); err != nil {
			logger.Warn("failed to save run report", "path", path, "error", err)
		} else {
			logger.Debug("saved run report", "path", path)
		}
	}
	return rep, runErr
}

// plannedFiles lists the documents a run of job writes.
func plannedFiles(dir *outdir.Dir, job imposition.Job, l imposition.Layout) []string {
	if job.Mode == imposition.ModeSingleConsolidated {
		return []string{dir.MasterPath(job.Name)}
	}
	files := make([]string, 0, l.SignatureCount)
	for i := 1; i <= l.SignatureCount; i++ {
		files = append(files, dir.SignaturePath(job.Name, i))
	}
	return files
}
