package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/lumiere/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Show where the configuration lives and export its JSON schema.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	Long:  `Print the JSON schema for config.toml, for editor validation and completion.`,
	RunE:  runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSchemaCmd)
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	manager := config.GetManager()
	if manager == nil {
		return fmt.Errorf("configuration not initialized")
	}

	file := manager.GetConfigFile()
	if file == "" {
		// Not created yet; report where it would go.
		var err error
		file, err = config.GetConfigFile()
		if err != nil {
			return err
		}
	}

	fmt.Println(file)
	return nil
}

func runConfigSchema(_ *cobra.Command, _ []string) error {
	data, err := config.SchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
