// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableErrorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "resolve project"}, "failed to resolve project"},
		{"with resource", &ActionableError{Operation: "resolve project", Resource: "./src"}, "failed to resolve project: ./src"},
		{"with cause", &ActionableError{Operation: "build add-in", Cause: errors.New("exit status 1")}, "failed to build add-in: exit status 1"},
		{
			"full context",
			&ActionableError{Operation: "load configuration", Resource: "config.cue", Cause: errors.New("bad key")},
			"failed to load configuration: config.cue: bad key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	err := fmt.Errorf("export: %w", &ActionableError{Operation: "create destination", Cause: cause})
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach the cause")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() without cause should be nil")
	}
}

func TestActionableErrorFormat(t *testing.T) {
	t.Parallel()

	inner := errors.New("no csproj file found")
	err := &ActionableError{
		Operation:   "resolve project",
		Resource:    "./src",
		Suggestions: []string{"Run rev from the add-in folder", "Raise search.max_depth"},
		Cause:       fmt.Errorf("search ./src: %w", inner),
	}

	short := err.Format(false)
	for _, want := range []string{"failed to resolve project", "• Run rev from the add-in folder", "• Raise search.max_depth"} {
		if !strings.Contains(short, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, short)
		}
	}
	if strings.Contains(short, "Error chain") {
		t.Error("Format(false) included the error chain")
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. search ./src: no csproj file found", "2. no csproj file found"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, long)
		}
	}
}

func TestErrorContextBuildError(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").BuildError() != nil {
		t.Error("BuildError() without operation should be nil")
	}

	cause := errors.New("boom")
	c := NewErrorContext().
		WithOperation("export add-in").
		WithResource("Sample").
		WithSuggestion("one").
		WithSuggestion("two").
		WithIssue(DestinationUnwritableId).
		Wrap(cause)
	err := c.BuildError()

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() = %T, want *ActionableError", err)
	}
	if ae.Operation != "export add-in" || ae.Resource != "Sample" || ae.Cause != cause {
		t.Errorf("BuildError() = %+v", ae)
	}
	if len(ae.Suggestions) != 2 || ae.Suggestions[1] != "two" {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if Of(err) != Get(DestinationUnwritableId) {
		t.Error("Of() did not return the linked catalog entry")
	}

	c.WithSuggestion("three")
	if len(ae.Suggestions) != 2 {
		t.Error("built error shares suggestions with its context")
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "save configuration", "config.cue") != nil {
		t.Error("wrapping nil should return nil")
	}
	cause := errors.New("read-only file system")
	err := WrapWithContext(cause, "save configuration", "config.cue")
	if got := err.Error(); got != "failed to save configuration: config.cue: read-only file system" {
		t.Errorf("WrapWithContext() = %q", got)
	}
	if !errors.Is(err, cause) || Of(err) != nil {
		t.Errorf("WrapWithContext() = %#v", err)
	}
}
