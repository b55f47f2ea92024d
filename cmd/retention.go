package cmd

import (
	"context"
	"fmt"
	"os"

	"flow-vault/core/models"
	"flow-vault/core/retention"
	"flow-vault/core/versionstore"

	"github.com/spf13/cobra"
)

var (
	policyFile    string
	keepLast      int
	keepNewerThan string
	keepTagged    []string
	policyProfile string
	policyOp      string
	applyCleanup  bool
)

// retentionCmd represents the retention command
var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Show which versions a retention policy keeps",
	Long: `Evaluates a retention policy against the stored versions without deleting anything.
Rules combine with OR: a version is kept when any rule keeps it. The newest version is
always kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRetention(cmd.Context(), false)
	},
}

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete versions a retention policy does not keep",
	Long: `Evaluates the retention policy and, with --apply, deletes every eligible version and
its archived bundle. Without --apply the command only previews. Audit records are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRetention(cmd.Context(), true)
	},
}

func init() {
	RootCmd.AddCommand(retentionCmd, cleanupCmd)
	for _, c := range []*cobra.Command{retentionCmd, cleanupCmd} {
		c.Flags().StringVar(&policyFile, "policy", "", "TOML policy file (keep_last, keep_newer_than, keep_tagged)")
		c.Flags().IntVar(&keepLast, "keep-last", 0, "Keep the N most recent versions")
		c.Flags().StringVar(&keepNewerThan, "keep-newer-than", "", "Keep versions younger than this age (e.g. 30d, 72h)")
		c.Flags().StringSliceVar(&keepTagged, "keep-tagged", nil, "Keep versions carrying any of these tags")
		c.Flags().StringVarP(&policyProfile, "profile", "p", "", "Only versions of this profile")
		c.Flags().StringVar(&policyOp, "operation", "", "Only versions of this operation")
		c.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	}
	cleanupCmd.Flags().BoolVar(&applyCleanup, "apply", false, "Delete the eligible versions")
}

func loadPolicy() (retention.Policy, error) {
	var p retention.Policy
	if policyFile != "" {
		loaded, err := retention.LoadPolicy(policyFile)
		if err != nil {
			return p, err
		}
		p = loaded
	}
	if keepLast > 0 {
		p.KeepLast = keepLast
	}
	if keepNewerThan != "" {
		age, err := retention.ParseAge(keepNewerThan)
		if err != nil {
			return p, err
		}
		p.KeepNewerThan = age
	}
	if len(keepTagged) > 0 {
		p.KeepTagged = keepTagged
	}
	return p, nil
}

func runRetention(ctx context.Context, cleanup bool) error {
	policy, err := loadPolicy()
	if err != nil {
		return err
	}
	if cleanup && applyCleanup && policy.IsEmpty() {
		return fmt.Errorf("refusing to clean up without a retention rule")
	}

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	f := versionstore.VersionFilter{Operation: models.OperationType(policyOp)}
	if policyProfile != "" {
		p, err := rt.store.GetProfile(ctx, policyProfile)
		if err != nil {
			return err
		}
		f.ProfileID = p.ID
	}

	orch := rt.orchestrator(ctx)
	if !cleanup {
		res, err := orch.EvaluateRetention(ctx, f, policy)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, res)
		}
		writeRetention(os.Stdout, res)
		return nil
	}

	res, err := orch.Cleanup(ctx, f, policy, applyCleanup)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, res)
	}
	writeRetention(os.Stdout, res.Result)
	for _, w := range res.Warnings {
		fmt.Println(warnStyle.Render("  [warn] " + w))
	}
	if !res.Applied {
		fmt.Println(dimStyle.Render("  preview only; run with --apply to delete"))
		return nil
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("  deleted %d version(s), audit %s", res.Deleted, res.AuditID)))
	return nil
}
