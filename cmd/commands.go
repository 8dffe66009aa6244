package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/loganalyzer/rtlog/pkg/config"
	"github.com/loganalyzer/rtlog/pkg/discovery"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var forceInit bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rtlog %s\n", Version)
	},
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader(configFile)
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		data, err := cfg.YAML()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if path := loader.ConfigFile(); path != "" {
			fmt.Fprintf(out, "# loaded from %s\n", path)
		} else {
			fmt.Fprintln(out, "# no config file, showing defaults")
		}
		_, err = out.Write(data)
		return err
	},
}

// configInitCmd writes the default configuration
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Save(config.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

// validateCmd validates the configuration and the inputs
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate configuration, alert patterns and inputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		fmt.Fprintln(out, "✓ Configuration is valid")
		fmt.Fprintf(out, "✓ Alert patterns: %q\n", cfg.Alerts.Patterns)

		if len(args) == 0 {
			return nil
		}
		files, err := discovery.Resolve(args, cfg.Ingest.Recursive)
		for _, f := range files {
			fmt.Fprintf(out, "✓ %s\n", f)
		}
		if err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
			return errors.New("some inputs are invalid")
		}
		return nil
	},
}

// configPath returns the configuration file path
func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.DefaultPath()
}

// Add subcommands
func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(validateCmd)
}
