// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ColorSchemeAuto detects the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark palette.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light palette.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// DefaultPrefix is the distribution name prefix used by prefix discovery.
	DefaultPrefix = "arcade_"
	// DefaultEntryPointGroup is the entry-point group toolkits register under.
	DefaultEntryPointGroup = "arcade_toolkits"
	// DefaultEntryPointName is the entry-point name that carries the package name.
	DefaultEntryPointName = "toolkit_name"
	// DefaultSourcePattern selects the Python sources of a toolkit package.
	DefaultSourcePattern = "**/*.py"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidSourcePattern is returned when discovery.source_pattern is not a valid glob.
	ErrInvalidSourcePattern = errors.New("invalid source pattern")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the terminal palette.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidSourcePatternError is returned when a source pattern does not compile.
	InvalidSourcePatternError struct {
		Value string
	}

	// InvalidConfigError collects every field-level problem of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// SitePackages lists site-packages directories, searched in order.
		// Empty means "detect from $VIRTUAL_ENV".
		SitePackages []string `json:"site_packages" yaml:"site_packages" mapstructure:"site_packages"`
		// Workspaces lists toolkit source checkouts.
		Workspaces []string        `json:"workspaces" yaml:"workspaces" mapstructure:"workspaces"`
		Discovery  DiscoveryConfig `json:"discovery" yaml:"discovery" mapstructure:"discovery"`
		UI         UIConfig        `json:"ui" yaml:"ui" mapstructure:"ui"`
		LogLevel   LogLevel        `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

		// Path is the file the configuration was read from; empty when only
		// defaults apply.
		Path string `json:"-" yaml:"-" mapstructure:"-"`
	}

	// DiscoveryConfig tunes toolkit discovery.
	DiscoveryConfig struct {
		Prefix          string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
		EntryPointGroup string `json:"entry_point_group" yaml:"entry_point_group" mapstructure:"entry_point_group"`
		EntryPointName  string `json:"entry_point_name" yaml:"entry_point_name" mapstructure:"entry_point_name"`
		SourcePattern   string `json:"source_pattern" yaml:"source_pattern" mapstructure:"source_pattern"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" yaml:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		SitePackages: []string{},
		Workspaces:   []string{},
		Discovery: DiscoveryConfig{
			Prefix:          DefaultPrefix,
			EntryPointGroup: DefaultEntryPointGroup,
			EntryPointName:  DefaultEntryPointName,
			SourcePattern:   DefaultSourcePattern,
		},
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
		LogLevel: LogLevelWarn,
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (e *InvalidSourcePatternError) Error() string {
	return fmt.Sprintf("invalid source pattern %q", e.Value)
}

func (e *InvalidSourcePatternError) Unwrap() error { return ErrInvalidSourcePattern }

// IsValid returns whether the DiscoveryConfig has valid fields. Empty
// fields are valid and mean "use the default".
func (c DiscoveryConfig) IsValid() (bool, []error) {
	if c.SourcePattern != "" && !doublestar.ValidatePattern(c.SourcePattern) {
		return false, []error{&InvalidSourcePatternError{Value: c.SourcePattern}}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if _, fieldErrs := c.UI.ColorScheme.IsValid(); len(fieldErrs) > 0 {
		errs = append(errs, fieldErrs...)
	}
	if _, fieldErrs := c.LogLevel.IsValid(); len(fieldErrs) > 0 {
		errs = append(errs, fieldErrs...)
	}
	if _, fieldErrs := c.Discovery.IsValid(); len(fieldErrs) > 0 {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap exposes ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
