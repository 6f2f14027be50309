// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arcadeai/arcade/internal/config"
	"github.com/arcadeai/arcade/internal/discovery"
	"github.com/arcadeai/arcade/internal/issue"
	"github.com/arcadeai/arcade/internal/testutil/sitetest"
	"github.com/arcadeai/arcade/pkg/types"
)

const (
	addTool      = "from arcade_tdk import tool\n\n@tool\ndef add(a: int, b: int) -> int:\n    return a + b\n"
	multiplyTool = "@tool\ndef multiply(a, b):\n    return a * b\n"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of watch mode.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testCLI runs commands against an App whose configuration is cfg (defaults
// when nil) and whose output is captured.
type testCLI struct {
	cfg    *config.Config
	stdout syncBuffer
	stderr syncBuffer
}

func newTestCLI(cfg *config.Config) *testCLI {
	return &testCLI{cfg: cfg}
}

func (c *testCLI) run(t *testing.T, args ...string) error {
	t.Helper()
	return c.runContext(t, context.Background(), args...)
}

func (c *testCLI) runContext(t *testing.T, ctx context.Context, args ...string) error {
	t.Helper()
	app, err := NewApp(Dependencies{
		Config: config.StaticProvider{Config: c.cfg},
		Stdout: &c.stdout,
		Stderr: &c.stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	root := newRootCommand(app)
	root.SetOut(&c.stdout)
	root.SetErr(&c.stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// installMath installs arcade_math 1.0.0 with one tool module and an
// entry point into site.
func installMath(t *testing.T, site string) {
	t.Helper()
	sitetest.Install(t, site, sitetest.NewDist("arcade_math", "1.0.0",
		sitetest.WithSummary("Math tools"),
		sitetest.WithAuthor("Jane Doe <jane@example.com>"),
		sitetest.WithRequires("arcade-tdk>=1.0.0"),
		sitetest.WithEntryPoint(discovery.DefaultEntryPointGroup, discovery.DefaultEntryPointName, "arcade_math"),
		sitetest.WithFile("arcade_math/__init__.py", ""),
		sitetest.WithFile("arcade_math/ops.py", addTool),
	))
}

// requireExitIssue asserts that err is an ExitError with code 1 wrapping an
// ActionableError linked to id.
func requireExitIssue(t *testing.T, err error, id issue.Id) *issue.ActionableError {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v (%T), want *ExitError", err, err)
	}
	if exitErr.Code != types.ExitFailure {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *issue.ActionableError in chain", err)
	}
	if ae.Issue != id {
		t.Errorf("issue = %d, want %d", ae.Issue, id)
	}
	return ae
}
