// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/arcadeai/arcade/internal/discovery"
	"github.com/arcadeai/arcade/internal/issue"
	"github.com/arcadeai/arcade/internal/watch"
	"github.com/arcadeai/arcade/pkg/toolkit"
)

type listOptions struct {
	source string
	output outputFormat
	watch  bool
}

// newToolkitCommand creates the `arcade toolkit` command tree.
func newToolkitCommand(app *App) *cobra.Command {
	tkCmd := &cobra.Command{
		Use:     "toolkit",
		Aliases: []string{"tk"},
		Short:   "Discover and inspect toolkits",
		Long: `Discover and inspect toolkits.

Toolkits are found in two ways, and entry-point results win when a package
is found by both:
  - entry points named 'toolkit_name' in the 'arcade_toolkits' group
  - distributions whose name starts with 'arcade_'

Packages are looked up in the configured site-packages directories first
(or those of $VIRTUAL_ENV), then in workspaces.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	tkCmd.AddCommand(newToolkitListCommand(app))
	tkCmd.AddCommand(newToolkitShowCommand(app))
	return tkCmd
}

func newToolkitListCommand(app *App) *cobra.Command {
	opts := listOptions{source: discovery.SourceAll.String(), output: outputText}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List discovered toolkits",
		Long: `List discovered toolkits.

Toolkits that fail to load are skipped with a warning on stderr. With
--watch, the list is printed again whenever an installed distribution or a
workspace source file changes.`,
		Example: `  arcade toolkit list
  arcade toolkit list --source entrypoint -o json
  arcade --workspace ~/src/toolkits toolkit list --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := discovery.ParseSource(opts.source)
			if err != nil {
				return app.fail(cmd, nil, err, "parse --source", opts.source)
			}
			if opts.watch {
				return app.watchToolkits(cmd, source, opts.output)
			}
			return app.listToolkits(cmd, source, opts.output)
		},
	}

	listCmd.Flags().StringVar(&opts.source, "source", opts.source, "discovery strategy: all, entrypoint or prefix")
	listCmd.Flags().VarP(&opts.output, "output", "o", "output format: text, json or yaml")
	listCmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run discovery when packages change")
	return listCmd
}

func newToolkitShowCommand(app *App) *cobra.Command {
	output := outputText

	showCmd := &cobra.Command{
		Use:   "show <package>",
		Short: "Show one toolkit and its tools",
		Long: `Show one toolkit and its tools.

The package is assembled directly, without discovery, so it does not need
the 'arcade_' prefix or an entry point.`,
		Example: `  arcade toolkit show arcade_math
  arcade toolkit show arcade_math -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return app.fail(cmd, nil, err, "load configuration", app.flags.configPath)
			}

			tk, err := s.assembler.Assemble(args[0])
			if err != nil {
				return app.fail(cmd, s, err, "load toolkit", args[0])
			}

			if ok, err := writeStructured(app.stdout, output, tk); ok {
				if err != nil {
					return app.fail(cmd, s, err, "write output", "")
				}
				return nil
			}
			renderToolkit(app.stdout, tk)
			return nil
		},
	}

	showCmd.Flags().VarP(&output, "output", "o", "output format: text, json or yaml")
	return showCmd
}

// listToolkits runs discovery once and prints the result.
func (a *App) listToolkits(cmd *cobra.Command, source discovery.Source, format outputFormat) error {
	s, err := a.newSession(cmd.Context())
	if err != nil {
		return a.fail(cmd, nil, err, "load configuration", a.flags.configPath)
	}
	if err := a.renderListing(s, s.discovery.Discover(source), format); err != nil {
		return a.fail(cmd, s, err, "write output", "")
	}
	return nil
}

// watchToolkits prints the listing, then prints it again after every
// debounced change under the indexed directories until the context ends.
func (a *App) watchToolkits(cmd *cobra.Command, source discovery.Source, format outputFormat) error {
	s, err := a.newSession(cmd.Context())
	if err != nil {
		return a.fail(cmd, nil, err, "load configuration", a.flags.configPath)
	}

	// Distributions appear as top-level dist-info directories and import
	// packages; workspaces hold arbitrarily nested sources.
	roots := make([]watch.Root, 0, len(s.sites)+len(s.cfg.Workspaces))
	for _, dir := range s.sites {
		roots = append(roots, watch.Root{Dir: dir, MaxDepth: 1})
	}
	for _, dir := range s.cfg.Workspaces {
		roots = append(roots, watch.Root{Dir: dir, MaxDepth: watch.Unlimited})
	}

	w, err := watch.New(watch.Config{
		Roots:       roots,
		ClearScreen: format == outputText,
		Stdout:      a.stdout,
		Logger:      s.logger,
		OnChange: func(_ context.Context, changed []string) error {
			s.logger.Debug("package index changed", "paths", changed)
			return a.renderListing(s, s.discovery.Discover(source), format)
		},
	})
	if err != nil {
		return a.fail(cmd, s, err, "watch package index", strings.Join(slices.Concat(s.sites, s.cfg.Workspaces), ", "))
	}

	if err := a.renderListing(s, s.discovery.Discover(source), format); err != nil {
		return a.fail(cmd, s, err, "write output", "")
	}
	fmt.Fprintln(a.stderr, SubtitleStyle.Render(fmt.Sprintf("Watching %d director%s for changes. Press Ctrl+C to stop.",
		len(w.Roots()), plural(len(w.Roots()), "y", "ies"))))

	if err := w.Run(cmd.Context()); err != nil {
		return a.fail(cmd, s, err, "watch package index", "")
	}
	return nil
}

// renderListing writes diagnostics to stderr and the toolkits to stdout.
func (a *App) renderListing(s *session, res discovery.Result, format outputFormat) error {
	renderDiagnostics(a.stderr, res.Diagnostics, s.verbose)

	toolkits := res.Toolkits
	if toolkits == nil {
		toolkits = []*toolkit.Toolkit{}
	}
	if ok, err := writeStructured(a.stdout, format, toolkits); ok {
		return err
	}

	if len(toolkits) == 0 {
		fmt.Fprintln(a.stdout, WarningStyle.Render("No toolkits found."))
		renderIssue(a.stderr, issue.NoToolkitsFoundId, glamourStyle(s.cfg.UI.ColorScheme))
		return nil
	}
	renderToolkitTable(a.stdout, toolkits)
	return nil
}

// renderDiagnostics prints one line per diagnostic. Causes are only shown
// in verbose mode.
func renderDiagnostics(w io.Writer, diags []discovery.Diagnostic, verbose bool) {
	for _, d := range diags {
		label := WarningStyle.Render("Warning:")
		if d.Severity == discovery.SeverityError {
			label = ErrorStyle.Render("Error:")
		}
		fmt.Fprintf(w, "%s [%s] %s\n", label, d.Code, d.Message)
		if verbose && d.Cause != nil {
			fmt.Fprintf(w, "    %s\n", VerboseStyle.Render(d.Cause.Error()))
		}
	}
}

func renderToolkitTable(w io.Writer, toolkits []*toolkit.Toolkit) {
	nameWidth, pkgWidth := 0, 0
	for _, tk := range toolkits {
		nameWidth = max(nameWidth, lipgloss.Width(tk.Name))
		pkgWidth = max(pkgWidth, lipgloss.Width(tk.PackageName+" "+tk.Version))
	}
	nameStyle := CmdStyle.Width(nameWidth + 2)
	pkgStyle := SubtitleStyle.Width(pkgWidth + 2)

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Discovered toolkits (%d)", len(toolkits))))
	fmt.Fprintln(w)
	for _, tk := range toolkits {
		n := tk.ToolCount()
		fmt.Fprintf(w, "  %s%s%-9s %s\n",
			nameStyle.Render(tk.Name),
			pkgStyle.Render(tk.PackageName+" "+tk.Version),
			fmt.Sprintf("%d tool%s", n, plural(n, "", "s")),
			tk.Description)
	}
}

func renderToolkit(w io.Writer, tk *toolkit.Toolkit) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(tk.Name), SubtitleStyle.Render("("+tk.PackageName+" "+tk.Version+")"))
	if tk.Description != "" {
		fmt.Fprintln(w, tk.Description)
	}
	fmt.Fprintln(w)

	field := func(key, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s%s\n", keyStyle.Render(key), value)
		}
	}
	field("Author", strings.Join(tk.Authors, ", "))
	field("Homepage", tk.Homepage)
	field("Repository", tk.Repository)
	reqs := make([]string, 0, len(tk.Requires))
	for _, r := range tk.Requires {
		reqs = append(reqs, r.Name+" "+r.Constraint)
	}
	field("Requires", strings.Join(reqs, ", "))

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Tools (%d)", tk.ToolCount())))
	for _, m := range tk.Modules {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(m.Path))
		if len(m.Tools) == 0 {
			fmt.Fprintf(w, "    %s\n", SubtitleStyle.Render("(no tools)"))
			continue
		}
		for _, t := range m.Tools {
			fmt.Fprintf(w, "    • %s\n", t)
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
