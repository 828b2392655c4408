// SPDX-License-Identifier: MPL-2.0

package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func linePrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(WithInput(strings.NewReader(input)), WithOutput(&out), WithInteractive(false)), &out
}

func TestPromptSequence(t *testing.T) {
	t.Parallel()

	p, out := linePrompter("My Tool\n\nDoes things\n  me@studio.io  \n")
	ctx := context.Background()

	name, err := p.Prompt(ctx, "Enter the name of your add-in")
	if err != nil || name != "My Tool" {
		t.Fatalf("Prompt() = %q, %v", name, err)
	}
	vendor, err := p.PromptDefault(ctx, "Enter your vendor ID", "Development")
	if err != nil || vendor != "Development" {
		t.Fatalf("PromptDefault() = %q, %v", vendor, err)
	}
	desc, _ := p.Prompt(ctx, "Enter a description of your add-in")
	email, _ := p.Prompt(ctx, "Enter your work email address")
	if desc != "Does things" || email != "me@studio.io" {
		t.Errorf("answers = %q, %q", desc, email)
	}

	if !strings.Contains(out.String(), "Enter your vendor ID [Development]: ") {
		t.Errorf("default not shown in prompt:\n%s", out.String())
	}
}

func TestPromptRepeatsUntilAnswered(t *testing.T) {
	t.Parallel()

	p, out := linePrompter("\n   \nSample\n")
	got, err := p.Prompt(context.Background(), "Name")
	if err != nil || got != "Sample" {
		t.Fatalf("Prompt() = %q, %v", got, err)
	}
	if n := strings.Count(out.String(), "Name: "); n != 3 {
		t.Errorf("prompted %d times, want 3", n)
	}
}

func TestPromptEndOfInput(t *testing.T) {
	t.Parallel()

	p, _ := linePrompter("")
	if _, err := p.Prompt(context.Background(), "Name"); !errors.Is(err, ErrNoInput) {
		t.Errorf("Prompt() error = %v, want ErrNoInput", err)
	}

	p, _ = linePrompter("last line without newline")
	if got, err := p.Prompt(context.Background(), "Name"); err != nil || got != "last line without newline" {
		t.Errorf("Prompt() = %q, %v", got, err)
	}
}

func TestPromptCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := linePrompter("x\n")
	if _, err := p.PromptDefault(ctx, "Name", "d"); !errors.Is(err, context.Canceled) {
		t.Errorf("PromptDefault() error = %v, want context.Canceled", err)
	}
}

func TestSelectTargetVersionValidates(t *testing.T) {
	t.Parallel()

	p, out := linePrompter("2016\nnext year\n2023\n")
	got, err := p.SelectTargetVersion(context.Background(), "")
	if err != nil || got != "2023" {
		t.Fatalf("SelectTargetVersion() = %q, %v", got, err)
	}
	if n := strings.Count(out.String(), "(2019-2025): "); n != 3 {
		t.Errorf("asked %d times, want 3:\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), "2016") {
		t.Error("rejection message does not name the invalid value")
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		answer, def string
		hasDefault  bool
		want        string
	}{
		{"", "Development", true, "Development"},
		{" Acme ", "Development", true, "Acme"},
		{"", "", false, ""},
		{"x", "", false, "x"},
	}
	for _, tt := range tests {
		if got := resolve(tt.answer, tt.def, tt.hasDefault); got != tt.want {
			t.Errorf("resolve(%q, %q, %v) = %q, want %q", tt.answer, tt.def, tt.hasDefault, got, tt.want)
		}
	}
	if requireValue("  ") == nil || requireValue("a") != nil {
		t.Error("requireValue() disagrees on blank input")
	}
}
