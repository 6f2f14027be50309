// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arcadeai/arcade/internal/config"
)

// newConfigCommand creates the `arcade config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage arcade configuration",
		Long: `Manage arcade configuration.

Configuration is stored in:
  - Linux: ~/.config/arcade/config.cue
  - macOS: ~/Library/Application Support/arcade/config.cue
  - Windows: %APPDATA%\arcade\config.cue

Values can be overridden with ARCADE_* environment variables, for example
ARCADE_LOG_LEVEL=debug or ARCADE_DISCOVERY_PREFIX=acme_.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(newConfigShowCommand(app))

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return app.fail(cmd, nil, err, "create configuration", "")
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Config file already exists:"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, nil, err, "load configuration", app.flags.configPath)
			}
			if cfg.Path != "" {
				fmt.Fprintln(app.stdout, cfg.Path)
				return nil
			}
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, nil, err, "resolve config directory", "")
			}
			fmt.Fprintf(app.stdout, "%s %s\n",
				filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt),
				SubtitleStyle.Render("(not created)"))
			return nil
		},
	})

	return cfgCmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	output := outputText

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Show current configuration.

The output merges the config file, environment overrides and the global
--site-packages and --workspace flags. Text output is valid config.cue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, nil, err, "load configuration", app.flags.configPath)
			}

			if ok, err := writeStructured(app.stdout, output, cfg); ok {
				if err != nil {
					return app.fail(cmd, nil, err, "write output", "")
				}
				return nil
			}

			source := cfg.Path
			if source == "" {
				source = "(using defaults)"
			}
			fmt.Fprintf(app.stderr, "%s %s\n", SubtitleStyle.Render("// config file:"), source)
			if len(cfg.SitePackages) == 0 {
				if detected := cfg.EffectiveSitePackages(); len(detected) > 0 {
					fmt.Fprintf(app.stderr, "%s %v\n", SubtitleStyle.Render("// detected site-packages:"), detected)
				}
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	}

	showCmd.Flags().VarP(&output, "output", "o", "output format: text, json or yaml")
	return showCmd
}
