// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/arcadeai/arcade/internal/config"
	"github.com/arcadeai/arcade/internal/discovery"
	"github.com/arcadeai/arcade/pkg/pkgindex"
	"github.com/arcadeai/arcade/pkg/toolkit"
	"github.com/arcadeai/arcade/pkg/toolscan"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and builds
	// a session from it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
		flags  globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		verbose      bool
		configPath   string
		sitePackages []string
		workspaces   []string
	}

	// session is one command invocation's view of configuration and the
	// services built from it. sites holds the site-packages directories in
	// effect, configured or detected.
	session struct {
		cfg       *config.Config
		sites     []string
		verbose   bool
		logger    *log.Logger
		index     pkgindex.Chain
		assembler *toolkit.Assembler
		discovery *discovery.Discovery
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// loadConfig loads configuration and applies the global flag overrides.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, err
	}
	if len(a.flags.sitePackages) > 0 {
		cfg.SitePackages = slices.Clone(a.flags.sitePackages)
	}
	if len(a.flags.workspaces) > 0 {
		cfg.Workspaces = slices.Clone(a.flags.workspaces)
	}
	return cfg, nil
}

// newSession loads configuration and builds the index chain, assembler and
// discovery for one command run. Site-packages take precedence over
// workspaces.
func (a *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	verbose := a.flags.verbose || cfg.UI.Verbose
	logger := newLogger(a.stderr, cfg.LogLevel, verbose)

	sites := cfg.EffectiveSitePackages()
	var indexes []pkgindex.Index
	if len(sites) > 0 {
		indexes = append(indexes, pkgindex.NewSitePackages(sites...))
	}
	if len(cfg.Workspaces) > 0 {
		indexes = append(indexes, pkgindex.NewWorkspace(cfg.Workspaces...))
	}
	if len(indexes) == 0 {
		logger.Warn("no site-packages or workspace configured; activate a virtualenv or pass --site-packages")
	}
	logger.Debug("package index", "site_packages", sites, "workspaces", cfg.Workspaces, "config", cfg.Path)

	index := pkgindex.NewChain(indexes...)
	assembler := toolkit.NewAssembler(index, toolscan.Python{},
		toolkit.WithSourcePattern(cfg.Discovery.SourcePattern))
	// Skips are rendered from Result.Diagnostics; the discovery logger only
	// adds detail in verbose mode.
	discLogger := logger.WithPrefix("arcade/discovery")
	if !verbose {
		discLogger.SetLevel(log.ErrorLevel)
	}
	disc := discovery.New(assembler,
		discovery.WithLogger(discLogger),
		discovery.WithEntryPointGroup(cfg.Discovery.EntryPointGroup),
		discovery.WithEntryPointName(cfg.Discovery.EntryPointName),
		discovery.WithPrefix(cfg.Discovery.Prefix),
	)

	return &session{
		cfg:       cfg,
		sites:     sites,
		verbose:   verbose,
		logger:    logger,
		index:     index,
		assembler: assembler,
		discovery: disc,
	}, nil
}

// newLogger creates the stderr logger. Verbose output forces debug level.
func newLogger(w io.Writer, level config.LogLevel, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "arcade"})
	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.WarnLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}
