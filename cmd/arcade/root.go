// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/arcadeai/arcade/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app. Global flags are bound
// to app so that every subcommand sees them.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "arcade",
		Short: "Discover and package arcade toolkits",
		Long: TitleStyle.Render("arcade") + SubtitleStyle.Render(" - Discover and package arcade toolkits") + `

arcade finds toolkit packages installed in Python site-packages directories
or checked out in workspaces, lists the tools their modules declare, and
writes pack.lock.toml manifests that pin them.

Toolkits are found through entry points in the 'arcade_toolkits' group and
through distributions whose name starts with 'arcade_'.

` + SubtitleStyle.Render("Examples:") + `
  arcade toolkit list                      List every discovered toolkit
  arcade toolkit show arcade_math          Show the tools of one toolkit
  arcade lock write arcade_math ./pack     Write ./pack/pack.lock.toml
  arcade lock verify ./pack arcade_math    Check the installed toolkit against a lock
  arcade config show                       Show current configuration`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/arcade/config.cue)")
	pf.StringArrayVar(&app.flags.sitePackages, "site-packages", nil,
		"site-packages directory to search, repeatable (replaces site_packages from config)")
	pf.StringArrayVar(&app.flags.workspaces, "workspace", nil,
		"workspace directory holding toolkit projects, repeatable (replaces workspaces from config)")

	rootCmd.AddCommand(newToolkitCommand(app))
	rootCmd.AddCommand(newLockCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's status. It is called by
// main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(int(types.ExitFailure))
	}

	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		// Command failures carry their own code; anything else is a flag
		// or argument error reported by cobra.
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.Code
			if code.Validate() != nil {
				code = types.ExitFailure
			}
			os.Exit(int(code))
		}
		os.Exit(int(types.ExitUsage))
	}
}
