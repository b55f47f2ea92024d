package cmd

import (
	"flow-vault/core/platform"

	"github.com/spf13/cobra"
)

var (
	backupFlags   runFlags
	backupProfile string
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Capture every workflow, credential and tag into a new version",
	Long: `Fetches all objects visible to the profile and stores them as an immutable version.
The summary reports what changed since the profile's last successful backup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := backupFlags.options()
		if err != nil {
			return err
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		src, err := rt.endpoint(ctx, backupProfile, platform.WithTypes(opts.Types...))
		if err != nil {
			return err
		}

		return finishRun(rt.orchestrator(ctx).RunBackup(ctx, src, opts))
	},
}

func init() {
	RootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringVarP(&backupProfile, "profile", "p", "", "Profile to back up (default profile when empty)")
	backupFlags.register(backupCmd, false)
}
