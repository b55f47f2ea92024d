package cmd

import (
	"os"

	"flow-vault/core/models"
	"flow-vault/core/versionstore"

	"github.com/spf13/cobra"
)

var (
	auditsVersion   string
	auditsOperation string
	auditsLimit     int
)

// auditsCmd represents the audits command
var auditsCmd = &cobra.Command{
	Use:   "audits",
	Short: "List audit records, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		audits, err := rt.store.ListAudits(cmd.Context(), versionstore.AuditFilter{
			VersionID: auditsVersion,
			Operation: models.OperationType(auditsOperation),
			Limit:     auditsLimit,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, audits)
		}
		writeAudits(os.Stdout, audits)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(auditsCmd)
	auditsCmd.Flags().StringVar(&auditsVersion, "version", "", "Only audits of this version")
	auditsCmd.Flags().StringVar(&auditsOperation, "operation", "", "Only audits of this operation")
	auditsCmd.Flags().IntVar(&auditsLimit, "limit", 50, "Maximum number of records")
	auditsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
}
