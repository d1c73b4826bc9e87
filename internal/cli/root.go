// Package cli provides the petgroom commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "petgroom",
	Short:   "Pet Grooming match engine",
	Version: Version,
	Long: `petgroom runs the Pet Grooming match rules engine.

A Groomer catches cats and dogs, carries them to a grooming station and
finishes the grooming sequence before the mischief meter or the match timer
runs out. The engine can be played live over a websocket, simulated headless
with a scripted Groomer, or watched in the terminal.`,
	SilenceUsage: true,
}

// Command group IDs
const (
	GroupPlay    = "play"
	GroupHistory = "history"
	GroupConfig  = "config"
)

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupPlay, Title: "Matches:"},
		&cobra.Group{ID: GroupHistory, Title: "History:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupConfig)
	rootCmd.SetCompletionCommandGroupID(GroupConfig)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML file overriding the built-in tuning")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine events to stderr")
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		// Errors already printed by cobra
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// commandLogger logs to stderr with --verbose and is silent otherwise.
func commandLogger(cmd *cobra.Command) *logger.Logger {
	if verbose {
		return logger.NewLoggerTo(cmd.ErrOrStderr())
	}
	return logger.Discard()
}

// dbPathOr returns flagValue, or the configured database when it is empty.
func dbPathOr(cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Server.DBPath
}
