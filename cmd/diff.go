package cmd

import (
	"fmt"
	"os"
	"strings"

	"flow-vault/feature/history"

	"github.com/spf13/cobra"
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <base-version> <current-version>",
	Short: "Compare the objects of two versions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := history.NewService(rt.store, rt.logger).Diff(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, report)
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("==> %s..%s", shortID(report.Base), shortID(report.Current))))
		if report.Identical() {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  identical (%d objects)", report.Unchanged)))
			return nil
		}

		t := newTable("change", "object", "fields")
		for _, k := range report.Added {
			t.Row(successStyle.Render("added"), k, "")
		}
		for _, m := range report.Modified {
			t.Row(warnStyle.Render("modified"), m.Key, strings.Join(m.Fields, ","))
		}
		for _, k := range report.Removed {
			t.Row(errorStyle.Render("removed"), k, "")
		}
		fmt.Println(t)
		fmt.Println(dimStyle.Render(fmt.Sprintf("  +%d ~%d -%d (=%d)", len(report.Added), len(report.Modified), len(report.Removed), report.Unchanged)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
}
