// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"testing"
)

func TestSeverity_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     bool
	}{
		{SeverityWarning, true},
		{SeverityError, true},
		{"", false},
		{"WARNING", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.severity.IsValid()
			if isValid != tt.want {
				t.Errorf("Severity(%q).IsValid() = %v, want %v", tt.severity, isValid, tt.want)
			}
			if !tt.want {
				if len(errs) == 0 || !errors.Is(errs[0], ErrInvalidSeverity) {
					t.Errorf("errors = %v, want ErrInvalidSeverity", errs)
				}
			}
		})
	}
}

func TestDiagnosticCode_IsValid(t *testing.T) {
	t.Parallel()

	for _, code := range []DiagnosticCode{
		CodeEntryPointToolkitSkipped, CodeEntryPointsUnavailable,
		CodePrefixToolkitSkipped, CodeDistributionsUnavailable,
	} {
		if ok, errs := code.IsValid(); !ok || len(errs) > 0 {
			t.Errorf("DiagnosticCode(%q).IsValid() = %v, %v", code, ok, errs)
		}
	}

	for _, code := range []DiagnosticCode{"", "invalid", "PREFIX_TOOLKIT_SKIPPED"} {
		ok, errs := code.IsValid()
		if ok {
			t.Errorf("DiagnosticCode(%q).IsValid() = true, want false", code)
		}
		if len(errs) == 0 || !errors.Is(errs[0], ErrInvalidDiagnosticCode) {
			t.Errorf("DiagnosticCode(%q) errors = %v, want ErrInvalidDiagnosticCode", code, errs)
		}
	}

	if got := CodePrefixToolkitSkipped.String(); got != "prefix_toolkit_skipped" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewDiagnosticWithCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	d := NewDiagnosticWithCause(SeverityError, CodePrefixToolkitSkipped, "skipped", "arcade_x", cause)

	if d.Severity != SeverityError || d.Code != CodePrefixToolkitSkipped {
		t.Errorf("got severity %q code %q", d.Severity, d.Code)
	}
	if d.Message != "skipped" || d.Path != "arcade_x" {
		t.Errorf("got message %q path %q", d.Message, d.Path)
	}
	if !errors.Is(d.Cause, cause) {
		t.Errorf("Cause = %v, want %v", d.Cause, cause)
	}

	plain := NewDiagnosticWithPath(SeverityWarning, CodeEntryPointsUnavailable, "m", "p")
	if plain.Cause != nil || plain.Path != "p" {
		t.Errorf("NewDiagnosticWithPath() = %+v", plain)
	}
	if r := (Result{Diagnostics: []Diagnostic{plain}}); r.HasErrors() {
		t.Error("HasErrors() = true for warnings only")
	}
	if r := (Result{Diagnostics: []Diagnostic{plain, d}}); !r.HasErrors() {
		t.Error("HasErrors() = false with an error diagnostic")
	}
}

func TestParseSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{in: "", want: SourceAll},
		{in: "all", want: SourceAll},
		{in: "entrypoint", want: SourceEntryPoint},
		{in: "prefix", want: SourcePrefix},
		{in: "pip", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidSource) {
				t.Errorf("ParseSource(%q) error = %v, want ErrInvalidSource", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseSource(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
		if got.String() != tt.want.String() {
			t.Errorf("String() = %q", got.String())
		}
	}

	if ok, errs := Source(99).IsValid(); ok || !errors.Is(errs[0], ErrInvalidSource) {
		t.Errorf("Source(99).IsValid() = %v, %v", ok, errs)
	}
}
