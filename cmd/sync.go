package cmd

import (
	"fmt"

	"flow-vault/core/platform"

	"github.com/spf13/cobra"
)

var (
	syncFlags runFlags
	syncFrom  string
	syncTo    string
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy the live state of one profile to another",
	Long: `Fetches every object from the source profile and applies it to the target profile
using the selected merge strategy. Both platforms must share major and minor versions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncFrom == syncTo {
			return fmt.Errorf("source and target profiles must differ")
		}
		opts, err := syncFlags.options()
		if err != nil {
			return err
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		source, err := rt.endpoint(ctx, syncFrom, platform.WithTypes(opts.Types...))
		if err != nil {
			return fmt.Errorf("failed to resolve source profile: %w", err)
		}
		target, err := rt.endpoint(ctx, syncTo)
		if err != nil {
			return fmt.Errorf("failed to resolve target profile: %w", err)
		}

		return finishRun(rt.orchestrator(ctx).RunSync(ctx, source, target, opts))
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncFrom, "from", "", "Source profile")
	syncCmd.Flags().StringVar(&syncTo, "to", "", "Target profile")
	_ = syncCmd.MarkFlagRequired("from")
	_ = syncCmd.MarkFlagRequired("to")
	syncFlags.register(syncCmd, true)
}
