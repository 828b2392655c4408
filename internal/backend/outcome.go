// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"errors"
	"fmt"
)

const (
	// KindSuccess means the tool ran and exited with status zero.
	KindSuccess Kind = iota
	// KindToolNotFound means the tool could not be launched at all.
	KindToolNotFound
	// KindToolReportedError means the tool ran but failed, exited non-zero or timed out.
	KindToolReportedError
)

var (
	// ErrToolNotFound is the sentinel matched by failures of kind KindToolNotFound.
	ErrToolNotFound = errors.New("build tool not found")
	// ErrToolReportedError is the sentinel matched by failures of kind KindToolReportedError.
	ErrToolReportedError = errors.New("build tool reported an error")
)

type (
	// Kind tags the result of a build attempt.
	Kind int

	// Outcome is the uniform result of running one build backend. A chain run
	// produces exactly one Outcome.
	Outcome struct {
		Kind Kind
		// Backend names the adapter that produced the outcome.
		Backend string
		// Output is the captured stdout of a successful run.
		Output string
		// Message describes a failure. For KindToolReportedError it carries the
		// tool's stderr.
		Message string
	}

	// BuildError is the error form of a failed Outcome.
	// It wraps ErrToolNotFound or ErrToolReportedError for errors.Is() compatibility.
	BuildError struct {
		Kind    Kind
		Backend string
		Message string
	}
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindToolNotFound:
		return "tool-not-found"
	case KindToolReportedError:
		return "tool-reported-error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Success returns a successful outcome carrying the captured output.
func Success(backend, output string) Outcome {
	return Outcome{Kind: KindSuccess, Backend: backend, Output: output}
}

// ToolNotFound returns a failure for a tool that could not be launched.
func ToolNotFound(backend, msg string) Outcome {
	return Outcome{Kind: KindToolNotFound, Backend: backend, Message: msg}
}

// ToolReportedError returns a failure for a tool that ran and failed.
func ToolReportedError(backend, msg string) Outcome {
	return Outcome{Kind: KindToolReportedError, Backend: backend, Message: msg}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Kind == KindSuccess }

// Err returns nil for a success and a *BuildError otherwise.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return &BuildError{Kind: o.Kind, Backend: o.Backend, Message: o.Message}
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Unwrap().Error()
}

// Unwrap returns the sentinel matching the failure kind.
func (e *BuildError) Unwrap() error {
	if e.Kind == KindToolNotFound {
		return ErrToolNotFound
	}
	return ErrToolReportedError
}
