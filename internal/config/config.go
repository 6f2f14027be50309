// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arcadeai/arcade/internal/issue"
	"github.com/arcadeai/arcade/pkg/cueutil"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "arcade"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. ARCADE_LOG_LEVEL.
	EnvPrefix = "ARCADE"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the arcade configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading without touching
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("site_packages", defaults.SitePackages)
	v.SetDefault("workspaces", defaults.Workspaces)
	v.SetDefault("discovery.prefix", defaults.Discovery.Prefix)
	v.SetDefault("discovery.entry_point_group", defaults.Discovery.EntryPointGroup)
	v.SetDefault("discovery.entry_point_name", defaults.Discovery.EntryPointName)
	v.SetDefault("discovery.source_pattern", defaults.Discovery.SourcePattern)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolveConfigPath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'arcade config init' in an empty config directory to see a valid file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Path = path

	if ok, errs := cfg.IsValid(); !ok {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check ARCADE_* environment variables for stray values").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	cfg.SitePackages = expandPaths(cfg.SitePackages)
	cfg.Workspaces = expandPaths(cfg.Workspaces)
	return &cfg, nil
}

// resolveConfigPath picks the file to load: an explicit path (which must
// exist), then config.cue in the config directory, then ./config.cue. An
// empty result means defaults only.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		var err error
		if cfgDir, err = ConfigDir(); err != nil {
			return "", err
		}
	}

	fileName := ConfigFileName + "." + ConfigFileExt
	if path := filepath.Join(cfgDir, fileName); fileExists(path) {
		return path, nil
	}
	if fileExists(fileName) {
		return fileName, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// contents into Viper. Fields are optional, so values need not be concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	res, err := cueutil.Decode[map[string]any](
		[]byte(configSchema), data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// expandPaths replaces a leading "~" with the home directory.
func expandPaths(paths []string) []string {
	if len(paths) == 0 {
		return paths
	}
	home, err := os.UserHomeDir()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if err == nil && (p == "~" || strings.HasPrefix(p, "~/")) {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		out = append(out, p)
	}
	return out
}

// DetectSitePackages returns the site-packages directories of the virtual
// environment rooted at venv, or nil when venv is empty or has none.
func DetectSitePackages(venv string) []string {
	if venv == "" {
		return nil
	}
	var patterns []string
	if runtime.GOOS == "windows" {
		patterns = []string{filepath.Join(venv, "Lib", "site-packages")}
	} else {
		patterns = []string{
			filepath.Join(venv, "lib", "python3*", "site-packages"),
			filepath.Join(venv, "lib64", "python3*", "site-packages"),
		}
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			resolved := m
			if r, err := filepath.EvalSymlinks(m); err == nil {
				resolved = r
			}
			if info, err := os.Stat(resolved); err == nil && info.IsDir() && !seen[resolved] {
				seen[resolved] = true
				dirs = append(dirs, m)
			}
		}
	}
	return dirs
}

// EffectiveSitePackages returns the configured site-packages directories,
// or those of the active virtual environment when none are configured.
func (c *Config) EffectiveSitePackages() []string {
	if len(c.SitePackages) > 0 {
		return append([]string(nil), c.SitePackages...)
	}
	return DetectSitePackages(os.Getenv("VIRTUAL_ENV"))
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return cfgDir, nil
}

// CreateDefaultConfig writes the default config file into cfgDir (the
// platform config directory when empty). An existing file is left alone
// and created is false.
func CreateDefaultConfig(cfgDir string) (path string, created bool, err error) {
	if cfgDir == "" {
		if cfgDir, err = EnsureConfigDir(); err != nil {
			return "", false, err
		}
	} else if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	path = filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// arcade configuration file\n\n")

	writeList := func(key string, values []string) {
		if len(values) == 0 {
			fmt.Fprintf(&sb, "%s: []\n", key)
			return
		}
		fmt.Fprintf(&sb, "%s: [\n", key)
		for _, v := range values {
			fmt.Fprintf(&sb, "\t%q,\n", v)
		}
		sb.WriteString("]\n")
	}
	writeList("site_packages", cfg.SitePackages)
	writeList("workspaces", cfg.Workspaces)

	sb.WriteString("\ndiscovery: {\n")
	fmt.Fprintf(&sb, "\tprefix: %q\n", cfg.Discovery.Prefix)
	fmt.Fprintf(&sb, "\tentry_point_group: %q\n", cfg.Discovery.EntryPointGroup)
	fmt.Fprintf(&sb, "\tentry_point_name: %q\n", cfg.Discovery.EntryPointName)
	fmt.Fprintf(&sb, "\tsource_pattern: %q\n", cfg.Discovery.SourcePattern)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nlog_level: %q\n", cfg.LogLevel)
	return sb.String()
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
