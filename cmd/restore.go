package cmd

import (
	"github.com/spf13/cobra"
)

var (
	restoreFlags  runFlags
	restoreTarget string
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <version-id>",
	Short: "Apply a stored version to a target profile",
	Long: `Restores the objects of a version to the target platform. The run is aborted without
touching the target when the platform versions differ in major or minor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := restoreFlags.options()
		if err != nil {
			return err
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		target, err := rt.endpoint(ctx, restoreTarget)
		if err != nil {
			return err
		}

		return finishRun(rt.orchestrator(ctx).RunRestore(ctx, args[0], target, opts))
	},
}

func init() {
	RootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVarP(&restoreTarget, "target", "t", "", "Target profile (default profile when empty)")
	restoreFlags.register(restoreCmd, true)
}
