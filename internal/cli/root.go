// Package cli provides the command-line interface for stampcam.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stampcam/internal/config"
)

// NewRootCmd creates the root command. Running stampcam with no subcommand
// launches the camera window; runGUI is injected by main so this package
// stays free of GTK and GStreamer imports.
func NewRootCmd(version, commit, buildDate string, runGUI func() int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stampcam",
		Short: "A small camera app with timestamp overlays",
		Long:  `Live camera preview with photo capture and timestamped video recording.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if code := runGUI(); code != 0 {
				return fmt.Errorf("exited with code %d", code)
			}
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("stampcam %s\n", version)
			fmt.Printf("commit: %s\n", commit)
			fmt.Printf("built: %s\n", buildDate)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the configuration file location",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.GetConfigFile()
			if err != nil {
				return fmt.Errorf("failed to resolve config file: %w", err)
			}
			fmt.Println(path)
			return nil
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(newLsCmd())

	return rootCmd
}
