// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arcadeai/arcade/internal/config"
	"github.com/arcadeai/arcade/internal/issue"
	"github.com/arcadeai/arcade/pkg/packlock"
	"github.com/arcadeai/arcade/pkg/toolkit"
	"github.com/arcadeai/arcade/pkg/types"
)

// fail renders err on stderr and returns an ExitError so that neither Cobra
// nor fang print it a second time. s may be nil when configuration could not
// be loaded.
func (a *App) fail(cmd *cobra.Command, s *session, err error, operation, resource string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	verbose, style := a.flags.verbose, glamourStyle(config.ColorSchemeAuto)
	if s != nil {
		verbose, style = s.verbose, glamourStyle(s.cfg.UI.ColorScheme)
	}

	ae := classify(err, operation, resource)
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+ae.Format(verbose))
	renderIssue(a.stderr, ae.Issue, style)
	return &ExitError{Code: types.ExitFailure, Err: ae}
}

// classify wraps err in an ActionableError. Known failure classes get a
// catalog page and suggestions; an ActionableError is returned unchanged.
func classify(err error, operation, resource string) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	ctx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		Wrap(err)

	var le *toolkit.LoadError
	switch {
	case errors.Is(err, toolkit.ErrPackageNotFound):
		ctx.WithIssue(issue.ToolkitNotFoundId).
			WithSuggestion("Check the name with 'arcade toolkit list'")
	case errors.As(err, &le):
		ctx.WithIssue(issue.ToolkitInvalidId)
		switch {
		case errors.Is(err, toolkit.ErrNoTools):
			ctx.WithSuggestion("Decorate at least one top-level function with @tool")
		case errors.Is(err, toolkit.ErrMetadataKey):
			ctx.WithSuggestion("Make sure METADATA declares both Name and Version")
		case errors.Is(err, toolkit.ErrSourceDir):
			ctx.WithSuggestion("Reinstall the distribution; its import package is missing")
		}
	case errors.Is(err, packlock.ErrLockFileNotFound):
		ctx.WithIssue(issue.LockFileNotFoundId).
			WithSuggestion("Create one with 'arcade lock write <package> <dir>'")
	case errors.Is(err, packlock.ErrLockFileParse), errors.Is(err, packlock.ErrInvalidLockFile):
		ctx.WithIssue(issue.LockFileInvalidId)
	}
	return ctx.Build()
}

// renderIssue prints the catalog page for id. A page that cannot be rendered
// is skipped; the error line has already been printed.
func renderIssue(w io.Writer, id issue.Id, style string) {
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(style)
	if err != nil {
		fmt.Fprintln(w, VerboseStyle.Render(fmt.Sprintf("(could not render help page %d: %v)", id, err)))
		return
	}
	fmt.Fprint(w, rendered)
}

// glamourStyle maps the configured color scheme to a glamour standard style.
// "auto" picks dark or light from the terminal and plain text otherwise.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
