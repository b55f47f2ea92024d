package cmd

import (
	"fmt"
	"os"

	"flow-vault/core/models"

	"github.com/spf13/cobra"
)

// apiKeyEnv is read when --api-key is not given, keeping the key out of shell history.
const apiKeyEnv = "FLOW_VAULT_API_KEY"

var (
	profileURL     string
	profileAPIKey  string
	profileDefault bool
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage platform profiles",
}

// profileAddCmd represents the profile add command
var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a platform instance",
	Long: `Registers a platform instance. The API key is encrypted with the local age identity
before it is stored. The first profile becomes the default.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := profileAPIKey
		if apiKey == "" {
			apiKey = os.Getenv(apiKeyEnv)
		}
		if apiKey == "" {
			return fmt.Errorf("an api key is required (--api-key or %s)", apiKeyEnv)
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		sealer, err := rt.sealer()
		if err != nil {
			return err
		}
		sealed, err := sealer.Seal(apiKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt api key: %w", err)
		}

		p := &models.Profile{
			Name:       args[0],
			URL:        profileURL,
			Credential: sealed,
			IsDefault:  profileDefault,
		}
		if err := rt.store.CreateProfile(cmd.Context(), p); err != nil {
			return err
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("profile %s added", p.Name)))
		if p.IsDefault {
			fmt.Println(dimStyle.Render("  default profile"))
		}
		return nil
	},
}

// profileListCmd represents the profile list command
var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		profiles, err := rt.store.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, profiles)
		}
		if len(profiles) == 0 {
			fmt.Println(dimStyle.Render("no profiles configured"))
			fmt.Println(dimStyle.Render("add one with: flow-vault profile add <name> --url <url>"))
			return nil
		}

		t := newTable("name", "url", "default", "id")
		for _, p := range profiles {
			def := ""
			if p.IsDefault {
				def = successStyle.Render("*")
			}
			t.Row(p.Name, p.URL, def, p.ID)
		}
		fmt.Println(t)
		return nil
	},
}

// profileDefaultCmd represents the profile default command
var profileDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Make a profile the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.store.SetDefault(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("profile %s is now the default", args[0])))
		return nil
	},
}

// profileRemoveCmd represents the profile remove command
var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a profile",
	Long:  `Removes a profile. Its versions and audit records are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.store.DeleteProfile(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("profile %s removed", args[0])))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileDefaultCmd, profileRemoveCmd)

	profileAddCmd.Flags().StringVar(&profileURL, "url", "", "Base URL of the platform instance")
	profileAddCmd.Flags().StringVar(&profileAPIKey, "api-key", "", "Platform API key (or "+apiKeyEnv+")")
	profileAddCmd.Flags().BoolVar(&profileDefault, "default", false, "Make this the default profile")
	_ = profileAddCmd.MarkFlagRequired("url")
	profileListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
}
