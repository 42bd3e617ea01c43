package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change animerec settings.

Values resolve in order: built-in defaults, the config file, then
environment variables (ANIMEREC_* and the providers' conventional keys
such as GROQ_API_KEY).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings and where each value came from",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting in the config file",
	Long: `Validate and store one setting by its dotted key.

Examples:
  animerec settings set llm.provider groq
  animerec settings set retrieval.k 6
  animerec settings set chunking.chunk_size 800`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsServiceFor() (driving.SettingsService, error) {
	svc, err := getServices()
	if err != nil {
		return nil, err
	}
	return svc.Settings()
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := settingsServiceFor()
	if err != nil {
		return err
	}

	entries, err := settings.Entries()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}

	section := ""
	for _, e := range entries {
		if s, _, _ := strings.Cut(e.Key, "."); s != section {
			section = s
			cmd.Printf("\n[%s]\n", section)
		}
		cmd.Printf("  %-*s  %s (%s)\n", width, e.Key, e.Value, e.Source)
	}
	cmd.Println()

	if _, err := settings.Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'animerec settings set <key> <value>' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := settingsServiceFor()
	if err != nil {
		return err
	}

	if err := settings.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	settings, err := settingsServiceFor()
	if err != nil {
		return err
	}

	for _, k := range settings.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	settings, err := settingsServiceFor()
	if err != nil {
		return err
	}

	if err := settings.CheckProviders(cmd.Context()); err != nil {
		return fmt.Errorf("provider check failed: %w", err)
	}
	cmd.Println("Embedding and completion providers are reachable.")
	return nil
}
