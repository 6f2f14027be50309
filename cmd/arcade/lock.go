// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arcadeai/arcade/internal/issue"
	"github.com/arcadeai/arcade/pkg/packlock"
)

// ErrLockMismatch is returned by `lock verify` when the toolkit does not
// satisfy the lock file.
var ErrLockMismatch = errors.New("lock file does not match toolkit")

type lockWriteOptions struct {
	author string
	email  string
}

// newLockCommand creates the `arcade lock` command tree.
func newLockCommand(app *App) *cobra.Command {
	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Manage pack.lock.toml manifests",
		Long: `Manage pack.lock.toml manifests.

A lock manifest describes one toolkit pack: its name, version and author,
its runtime dependencies ([depends]) and a version constraint for every
tool it ships ([tools]).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	lockCmd.AddCommand(newLockWriteCommand(app))
	lockCmd.AddCommand(newLockShowCommand(app))
	lockCmd.AddCommand(newLockVerifyCommand(app))
	return lockCmd
}

func newLockWriteCommand(app *App) *cobra.Command {
	var opts lockWriteOptions

	writeCmd := &cobra.Command{
		Use:   "write <package> <dir>",
		Short: "Write a lock manifest for an installed toolkit",
		Long: `Write a lock manifest for an installed toolkit.

Every tool is pinned to the toolkit's current version. Author and email
default to the first author entry of the package metadata.`,
		Example: `  arcade lock write arcade_math ./pack
  arcade lock write arcade_math . --author "Jane Doe" --email jane@example.com`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, dir := args[0], args[1]

			s, err := app.newSession(cmd.Context())
			if err != nil {
				return app.fail(cmd, nil, err, "load configuration", app.flags.configPath)
			}
			tk, err := s.assembler.Assemble(pkg)
			if err != nil {
				return app.fail(cmd, s, err, "load toolkit", pkg)
			}

			pack := packlock.FromToolkit(tk, opts.author, opts.email)
			if err := packlock.Write(pack, dir); err != nil {
				return app.fail(cmd, s, err, "write lock file", packlock.Path(dir))
			}

			s.logger.Debug("lock file written", "path", packlock.Path(dir), "tools", len(pack.Tools))
			fmt.Fprintf(app.stdout, "%s Wrote %s (%s %s, %d tool%s)\n",
				SuccessStyle.Render("✓"), CmdStyle.Render(packlock.Path(dir)),
				pack.Pack.Name, pack.Pack.Version, len(pack.Tools), plural(len(pack.Tools), "", "s"))
			return nil
		},
	}

	writeCmd.Flags().StringVar(&opts.author, "author", "", "pack author (default from package metadata)")
	writeCmd.Flags().StringVar(&opts.email, "email", "", "pack author email (default from package metadata)")
	return writeCmd
}

func newLockShowCommand(app *App) *cobra.Command {
	output := outputText

	showCmd := &cobra.Command{
		Use:   "show <dir>",
		Short: "Show the lock manifest in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := packlock.Read(args[0])
			if err != nil {
				return app.fail(cmd, nil, err, "read lock file", packlock.Path(args[0]))
			}

			if ok, err := writeStructured(app.stdout, output, pack); ok {
				if err != nil {
					return app.fail(cmd, nil, err, "write output", "")
				}
				return nil
			}
			renderPack(app.stdout, pack)
			return nil
		},
	}

	showCmd.Flags().VarP(&output, "output", "o", "output format: text, json or yaml")
	return showCmd
}

func newLockVerifyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <dir> <package>",
		Short: "Check an installed toolkit against a lock manifest",
		Long: `Check an installed toolkit against a lock manifest.

The command exits with status 1 when the manifest names another package, a
locked tool is missing, or the toolkit version does not satisfy a tool's
constraint.`,
		Example: `  arcade lock verify ./pack arcade_math`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, pkg := args[0], args[1]
			path := packlock.Path(dir)

			pack, err := packlock.Read(dir)
			if err != nil {
				return app.fail(cmd, nil, err, "read lock file", path)
			}

			s, err := app.newSession(cmd.Context())
			if err != nil {
				return app.fail(cmd, nil, err, "load configuration", app.flags.configPath)
			}
			tk, err := s.assembler.Assemble(pkg)
			if err != nil {
				return app.fail(cmd, s, err, "load toolkit", pkg)
			}

			mismatches := packlock.Verify(pack, tk)
			if len(mismatches) == 0 {
				fmt.Fprintf(app.stdout, "%s %s matches %s %s (%d tool%s)\n",
					SuccessStyle.Render("✓"), CmdStyle.Render(path), tk.PackageName, tk.Version,
					len(pack.Tools), plural(len(pack.Tools), "", "s"))
				return nil
			}

			fmt.Fprintf(app.stdout, "%s %s does not match %s %s\n",
				ErrorStyle.Render("✗"), CmdStyle.Render(path), tk.PackageName, tk.Version)
			for _, m := range mismatches {
				fmt.Fprintf(app.stdout, "  • %s\n", m)
			}

			mismatchErr := issue.NewErrorContext().
				WithOperation("verify lock file").
				WithResource(path).
				WithSuggestion(fmt.Sprintf("Regenerate it with 'arcade lock write %s %s'", pkg, dir)).
				WithIssue(issue.LockMismatchId).
				Wrap(fmt.Errorf("%w: %d mismatch%s", ErrLockMismatch, len(mismatches), plural(len(mismatches), "", "es"))).
				BuildError()
			return app.fail(cmd, s, mismatchErr, "verify lock file", path)
		},
	}
}

func renderPack(w io.Writer, pack *packlock.ToolPack) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(pack.Pack.Name), SubtitleStyle.Render(pack.Pack.Version))
	if pack.Pack.Description != "" {
		fmt.Fprintln(w, pack.Pack.Description)
	}
	if pack.Pack.Author != "" || pack.Pack.Email != "" {
		author := pack.Pack.Author
		if pack.Pack.Email != "" {
			author = fmt.Sprintf("%s <%s>", author, pack.Pack.Email)
		}
		fmt.Fprintf(w, "%s%s\n", keyStyle.Render("Author"), author)
	}

	table := func(title string, m map[string]string) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s (%d)", title, len(m))))
		if len(m) == 0 {
			fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
			return
		}
		for _, k := range slices.Sorted(maps.Keys(m)) {
			fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render(k), m[k])
		}
	}
	table("Depends", pack.Depends)
	table("Tools", pack.Tools)
}
