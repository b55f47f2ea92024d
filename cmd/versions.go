package cmd

import (
	"fmt"
	"os"

	"flow-vault/core/models"
	"flow-vault/core/versionstore"

	"github.com/spf13/cobra"
)

var (
	versionsProfile   string
	versionsOperation string
	versionsStatus    []string
	versionsLimit     int
	versionsArchived  bool
)

// versionsCmd represents the versions command
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List and inspect stored versions",
}

// versionsListCmd represents the versions list command
var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List versions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		f := versionstore.VersionFilter{
			Operation: models.OperationType(versionsOperation),
			Limit:     versionsLimit,
		}
		for _, s := range versionsStatus {
			f.Statuses = append(f.Statuses, models.VersionStatus(s))
		}
		if versionsProfile != "" {
			p, err := rt.store.GetProfile(cmd.Context(), versionsProfile)
			if err != nil {
				return err
			}
			f.ProfileID = p.ID
		}

		versions, err := rt.store.ListVersions(cmd.Context(), f)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, versions)
		}
		writeVersions(os.Stdout, versions)
		return nil
	},
}

// versionsShowCmd represents the versions show command
var versionsShowCmd = &cobra.Command{
	Use:   "show <version-id>",
	Short: "Show a version with its objects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		var v *models.Version
		if versionsArchived {
			if rt.archive == nil {
				return fmt.Errorf("archive is not enabled")
			}
			bundle, err := rt.archive.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v = &bundle.Version
		} else {
			v, err = rt.store.GetVersion(cmd.Context(), args[0])
			if err != nil {
				return err
			}
		}
		if jsonOutput {
			return printJSON(os.Stdout, v)
		}

		summary := v.Summary
		writeSummary(os.Stdout, &summary)
		fmt.Println()
		writeRecords(os.Stdout, v.Records)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(versionsCmd)
	versionsCmd.AddCommand(versionsListCmd, versionsShowCmd)

	versionsListCmd.Flags().StringVarP(&versionsProfile, "profile", "p", "", "Only versions of this profile")
	versionsListCmd.Flags().StringVar(&versionsOperation, "operation", "", "Only versions of this operation (backup, restore, sync)")
	versionsListCmd.Flags().StringSliceVar(&versionsStatus, "status", nil, "Only versions with these statuses")
	versionsListCmd.Flags().IntVar(&versionsLimit, "limit", 50, "Maximum number of versions")
	versionsShowCmd.Flags().BoolVar(&versionsArchived, "archived", false, "Read the version from its archived bundle")
	versionsCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON")
}
