// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/arcadeai/arcade/internal/issue"
	"github.com/arcadeai/arcade/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	testutil.MustWriteFile(t, path, content)
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if len(cfg.SitePackages) != 0 || len(cfg.Workspaces) != 0 {
		t.Errorf("expected no default paths, got %v / %v", cfg.SitePackages, cfg.Workspaces)
	}
	if cfg.Discovery.Prefix != "arcade_" {
		t.Errorf("Prefix = %q", cfg.Discovery.Prefix)
	}
	if cfg.Discovery.EntryPointGroup != "arcade_toolkits" || cfg.Discovery.EntryPointName != "toolkit_name" {
		t.Errorf("entry point defaults = %+v", cfg.Discovery)
	}
	if cfg.Discovery.SourcePattern != "**/*.py" {
		t.Errorf("SourcePattern = %q", cfg.Discovery.SourcePattern)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("default config invalid: %v", errs)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `
site_packages: ["/opt/venv/lib/python3.12/site-packages"]
discovery: {
	prefix: "acme_"
}
ui: verbose: true
log_level: "debug"
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}

	want := DefaultConfig()
	want.SitePackages = []string{"/opt/venv/lib/python3.12/site-packages"}
	want.Discovery.Prefix = "acme_"
	want.UI.Verbose = true
	want.LogLevel = LogLevelDebug
	if diff := cmp.Diff(want, cfg, cmpopts.EquateEmpty(), cmpopts.IgnoreFields(Config{}, "Path")); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `workspaces: ["/src/toolkits"]`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: path,
		ConfigDirPath:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Workspaces) != 1 || cfg.Workspaces[0] != "/src/toolkits" {
		t.Errorf("Workspaces = %v", cfg.Workspaces)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		missing  bool
		contains string
	}{
		{name: "explicit file missing", missing: true, contains: "config file not found"},
		{name: "syntax error", content: `ui: {`, contains: "config.cue"},
		{name: "wrong type", content: `site_packages: "/one"`, contains: "site_packages"},
		{name: "bad enum", content: `ui: color_scheme: "blue"`, contains: "ui.color_scheme"},
		{name: "unknown field", content: `colour: "red"`, contains: "colour"},
		{name: "bad prefix", content: `discovery: prefix: "-x"`, contains: "discovery.prefix"},
		{name: "bad log level", content: `log_level: "trace"`, contains: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.cue")
			if !tt.missing {
				testutil.MustWriteFile(t, path, tt.content)
			}

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error %T is not an ActionableError", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
			}
			if ae.Resource != path {
				t.Errorf("Resource = %q, want %q", ae.Resource, path)
			}
			if !ae.HasSuggestions() {
				t.Error("expected suggestions")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err, tt.contains)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ARCADE_LOG_LEVEL", "info")
	t.Setenv("ARCADE_DISCOVERY_PREFIX", "corp_")

	dir := t.TempDir()
	writeConfig(t, dir, `log_level: "debug"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Discovery.Prefix != "corp_" {
		t.Errorf("Prefix = %q, want corp_", cfg.Discovery.Prefix)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("ARCADE_LOG_LEVEL", "loud")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("Load() error = %v, want ErrInvalidLogLevel", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should also match ErrInvalidConfig")
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SitePackages = []string{"/a/site-packages", "/b/site-packages"}
	cfg.Workspaces = []string{"/src"}
	cfg.Discovery.SourcePattern = "tools/**/*.py"
	cfg.UI.ColorScheme = ColorSchemeDark
	cfg.LogLevel = LogLevelError

	dir := t.TempDir()
	writeConfig(t, dir, GenerateCUE(cfg))

	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load(GenerateCUE()) error = %v", err)
	}
	if diff := cmp.Diff(cfg, got, cmpopts.IgnoreFields(Config{}, "Path")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "arcade")
	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}

	if err := os.WriteFile(path, []byte(`log_level: "info"`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, created, err = CreateDefaultConfig(dir)
	if err != nil || created {
		t.Fatalf("second CreateDefaultConfig() = %v, %v; want existing file kept", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `log_level: "info"` {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestConfigDir_Platform(t *testing.T) {
	home := t.TempDir()
	t.Cleanup(testutil.SetConfigHome(t, home))

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}

	want := filepath.Join(home, AppName)
	if runtime.GOOS == "darwin" {
		want = filepath.Join(home, "Library", "Application Support", AppName)
	}
	if got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestDetectSitePackages(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX virtualenv layout")
	}

	venv := t.TempDir()
	site := filepath.Join(venv, "lib", "python3.12", "site-packages")
	testutil.MustMkdirAll(t, site)
	testutil.MustMkdirAll(t, filepath.Join(venv, "lib", "python2.7", "site-packages"))
	testutil.MustWriteFile(t, filepath.Join(venv, "lib", "python3.11", "site-packages"), "not a dir")

	got := DetectSitePackages(venv)
	if diff := cmp.Diff([]string{site}, got); diff != "" {
		t.Errorf("DetectSitePackages() mismatch (-want +got):\n%s", diff)
	}

	if DetectSitePackages("") != nil {
		t.Error("DetectSitePackages(\"\") should be nil")
	}
	if got := DetectSitePackages(filepath.Join(venv, "missing")); len(got) != 0 {
		t.Errorf("DetectSitePackages(missing) = %v", got)
	}
}

func TestEffectiveSitePackages(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX virtualenv layout")
	}

	venv := t.TempDir()
	site := filepath.Join(venv, "lib", "python3.13", "site-packages")
	testutil.MustMkdirAll(t, site)
	t.Setenv("VIRTUAL_ENV", venv)

	cfg := DefaultConfig()
	if got := cfg.EffectiveSitePackages(); len(got) != 1 || got[0] != site {
		t.Errorf("EffectiveSitePackages() = %v, want [%s]", got, site)
	}

	cfg.SitePackages = []string{"/explicit"}
	if got := cfg.EffectiveSitePackages(); len(got) != 1 || got[0] != "/explicit" {
		t.Errorf("EffectiveSitePackages() = %v, want configured value", got)
	}
}

func TestExpandPaths(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got := expandPaths([]string{"~/venv", "/abs", "~other"})
	want := []string{filepath.Join(home, "venv"), "/abs", "~other"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expandPaths() mismatch (-want +got):\n%s", diff)
	}
}
