// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCatalogComplete(t *testing.T) {
	t.Parallel()

	for id := ProjectNotFoundId; id <= YarnNotFoundId; id++ {
		v := Get(id)
		if v == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if v.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, v.Id())
		}
		if strings.TrimSpace(string(v.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no message", id)
		}
	}
	if Get(Id(999)) != nil {
		t.Error("Get(unknown) != nil")
	}
}

func TestLinksAreCopies(t *testing.T) {
	t.Parallel()

	i := Get(NoBuildToolId)
	links := i.ExtLinks()
	if len(links) == 0 {
		t.Fatal("NoBuildTool issue has no links")
	}
	links[0] = "mutated"
	if i.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks() exposed internal state")
	}
	if !strings.Contains(i.Markdown(), "## See also") {
		t.Error("Markdown() lacks the link section")
	}
	if strings.Contains(Get(ArtifactNotFoundId).Markdown(), "See also") {
		t.Error("Markdown() added a link section without links")
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := Get(ProjectNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "No C# project found") {
		t.Errorf("Render() = %q", out)
	}
}

func TestOf(t *testing.T) {
	t.Parallel()

	linked := NewErrorContext().WithOperation("resolve project").WithIssue(ProjectNotFoundId).BuildError()
	if got := Of(fmt.Errorf("run: %w", linked)); got == nil || got.Id() != ProjectNotFoundId {
		t.Errorf("Of(linked) = %v", got)
	}
	if Of(NewErrorContext().WithOperation("x").BuildError()) != nil {
		t.Error("Of(unlinked) != nil")
	}
	if Of(errors.New("plain")) != nil {
		t.Error("Of(plain) != nil")
	}
}
