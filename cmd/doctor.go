package cmd

import (
	"fmt"
	"os"

	"flow-vault/core/models"
	"flow-vault/feature/doctor"
	"flow-vault/feature/doctor/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var doctorFix bool

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the store, archive, profiles and platforms",
	Long: `Verifies that the version store schema is complete, the bundle archive is reachable,
profiles are configured with exactly one default, and every profile's platform answers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()
		logg := rt.logger

		svc := doctor.NewService(rt.db, rt.storage, rt.cfg.Storage, rt.store,
			func(p models.Profile) (checks.VersionReader, error) { return rt.dial(p) }, logg)

		ctx := cmd.Context()
		if doctorFix {
			if archive, err := svc.CheckArchive(ctx); err == nil && archive.Status == "missing" {
				logg.Info("Creating missing archive bucket...")
				if err := svc.FixArchive(ctx); err != nil {
					return fmt.Errorf("failed to create archive bucket: %w", err)
				}
			}
		}

		report := svc.RunAll(ctx)
		if jsonOutput {
			if err := printJSON(os.Stdout, report); err != nil {
				return err
			}
		} else {
			writeDoctor(report)
		}

		if !report.Healthy {
			logg.Warn("Doctor found problems", zap.Any("errors", report.Errors))
			return &ExitError{Code: 1, Status: "unhealthy"}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create a missing archive bucket")
	doctorCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
}

func writeDoctor(r *doctor.Report) {
	ok := func(b bool) string {
		if b {
			return successStyle.Render("ok")
		}
		return errorStyle.Render("problem")
	}

	t := newTable("check", "state", "detail")
	if r.Schema != nil {
		detail := fmt.Sprintf("%s, %d tables", r.Schema.Driver, len(r.Schema.Tables))
		for table, tr := range r.Schema.Tables {
			if len(tr.MissingColumns) > 0 {
				detail += fmt.Sprintf("; %s missing %v", table, tr.MissingColumns)
			}
		}
		t.Row("schema", ok(r.Schema.Matched), detail)
	}
	if r.Archive != nil {
		t.Row("archive", ok(r.Archive.Status != "missing"), fmt.Sprintf("%s %s, %d bundles", r.Archive.Status, r.Archive.Bucket, r.Archive.Bundles))
	}
	if r.Profiles != nil {
		t.Row("profiles", ok(r.Profiles.Status == "ok"), fmt.Sprintf("%d configured, default %q %v", r.Profiles.Count, r.Profiles.Default, r.Profiles.Errors))
	}
	for _, p := range r.Platforms {
		detail := p.Version
		if p.Error != "" {
			detail = p.Error
		}
		t.Row("platform "+p.Profile, ok(p.Error == ""), detail)
	}
	for check, msg := range r.Errors {
		t.Row(check, errorStyle.Render("error"), msg)
	}
	fmt.Println(t)
}
