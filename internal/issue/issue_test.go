// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		ToolkitNotFoundId,
		ToolkitInvalidId,
		NoToolkitsFoundId,
		LockFileNotFoundId,
		LockFileInvalidId,
		LockMismatchId,
		ConfigLoadFailedId,
	}
}

func TestGet(t *testing.T) {
	for _, id := range allIds() {
		i := Get(id)
		if i == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if i.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, i.Id())
		}
		if strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no content", id)
		}
	}

	if Get(0) != nil {
		t.Error("Get(0) should be nil")
	}
	if Get(Id(999)) != nil {
		t.Error("Get(999) should be nil")
	}
}

func TestValues_SortedAndComplete(t *testing.T) {
	values := Values()
	if len(values) != len(allIds()) {
		t.Fatalf("len(Values()) = %d, want %d", len(values), len(allIds()))
	}
	for i, want := range allIds() {
		if values[i].Id() != want {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, values[i].Id(), want)
		}
	}
}

func TestIssue_DocLinksIsCopy(t *testing.T) {
	i := Get(ToolkitNotFoundId)
	links := i.DocLinks()
	if len(links) == 0 {
		t.Fatal("expected doc links")
	}
	links[0] = "changed"
	if i.DocLinks()[0] == "changed" {
		t.Error("DocLinks() should return a copy")
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	out, err := Get(LockFileInvalidId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.Contains(out, "Lock file is invalid") {
		t.Errorf("Render() missing title: %q", out)
	}
	if !strings.Contains(out, "## See also") || !strings.Contains(out, "https://toml.io/en/v1.0.0") {
		t.Errorf("Render() missing links section: %q", out)
	}

	out, err = Get(LockMismatchId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(out, "See also") {
		t.Error("issue without links should not render a links section")
	}
}

func TestAllIssuesRenderWithGlamour(t *testing.T) {
	for _, i := range Values() {
		out, err := i.Render("notty")
		if err != nil {
			t.Errorf("issue %d: Render() error = %v", i.Id(), err)
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("issue %d rendered empty", i.Id())
		}
	}
}
