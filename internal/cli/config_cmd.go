package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/PetGrooming/internal/config"
	"github.com/MRamiBalles/PetGrooming/internal/style"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: GroupConfig,
	Short:   "Inspect and check match tuning",
	RunE:    requireSubcommand,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check an override file against every engine invariant",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := config.Load(path); err != nil {
			return err
		}
		name := path
		if name == "" {
			name = "built-in defaults"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid\n", style.SuccessPrefix, name)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of an override file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Schema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd, configShowCmd, configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}
