package cmd

import (
	"fmt"
	"os"

	"flow-vault/core/models"
	"flow-vault/core/report"

	"github.com/spf13/cobra"
)

// runFlags are the options shared by backup, restore and sync.
type runFlags struct {
	strategy    string
	concurrency int
	maxAttempts int
	types       []string
	tags        []string
	dryRun      bool
}

func (f *runFlags) register(cmd *cobra.Command, mutating bool) {
	cmd.Flags().StringSliceVar(&f.types, "types", nil, "Restrict the run to these resource types (workflow, credential, tag)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Protection tags to stamp on the resulting version")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	if !mutating {
		return
	}
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Merge strategy: source-wins, target-wins, update-existing, add-missing")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Parallel reconcile calls (default from ENGINE_CONCURRENCY)")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", 0, "Attempts per object including the first (default from ENGINE_MAX_ATTEMPTS)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Classify objects without changing the target")
}

func (f *runFlags) options() (models.RunOptions, error) {
	opts := models.RunOptions{
		Strategy:    f.strategy,
		Concurrency: f.concurrency,
		MaxAttempts: f.maxAttempts,
		Tags:        f.tags,
		DryRun:      f.dryRun,
	}
	for _, t := range f.types {
		rt := models.ResourceType(t)
		if !rt.IsValid() {
			return opts, fmt.Errorf("unknown resource type %q", t)
		}
		opts.Types = append(opts.Types, rt)
	}
	return opts, nil
}

// finishRun prints the summary and converts the run status into an exit code.
func finishRun(s *models.Summary, runErr error) error {
	if s != nil {
		if jsonOutput {
			if err := printJSON(os.Stdout, s); err != nil {
				return err
			}
		} else {
			writeSummary(os.Stdout, s)
		}
	}
	if runErr != nil {
		return runErr
	}
	if code := report.ExitCode(s.Status); code != 0 {
		return &ExitError{Code: code, Status: string(s.Status)}
	}
	return nil
}
