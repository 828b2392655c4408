// SPDX-License-Identifier: MPL-2.0

// Package ledger records the errors and warnings produced by one export run.
//
// A Ledger is append-only. Entries are kept in insertion order and are never
// deduplicated; adding to one list never prevents later additions to either.
// One or more errors means the run failed. Warnings never change that.
package ledger

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

type (
	// Ledger is an ordered, concurrency-safe record of error and warning
	// messages. The zero value is ready to use.
	Ledger struct {
		mu       sync.Mutex
		errors   []string
		warnings []string
	}

	// snapshot is the JSON shape of a Ledger.
	snapshot struct {
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}
)

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// NewWithError returns a ledger holding a single error message.
func NewWithError(msg string) *Ledger {
	l := New()
	l.AddError(msg)
	return l
}

// AddError appends an error message.
func (l *Ledger) AddError(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

// AddErrorf formats and appends an error message.
func (l *Ledger) AddErrorf(format string, args ...any) {
	l.AddError(fmt.Sprintf(format, args...))
}

// AddWarning appends a warning message.
func (l *Ledger) AddWarning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

// AddWarningf formats and appends a warning message.
func (l *Ledger) AddWarningf(format string, args ...any) {
	l.AddWarning(fmt.Sprintf(format, args...))
}

// HasErrors reports whether the run failed.
func (l *Ledger) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors) > 0
}

// HasWarnings reports whether any warning was recorded.
func (l *Ledger) HasWarnings() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warnings) > 0
}

// Errors returns a copy of the recorded error messages in insertion order.
func (l *Ledger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.errors)
}

// Warnings returns a copy of the recorded warning messages in insertion order.
func (l *Ledger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.warnings)
}

// Extend appends every entry of other after the existing entries.
// Extending a ledger with itself doubles its contents.
func (l *Ledger) Extend(other *Ledger) {
	if other == nil {
		return
	}
	errs, warns := other.Errors(), other.Warnings()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, errs...)
	l.warnings = append(l.warnings, warns...)
}

// MarshalJSON encodes the ledger as {"errors": [...], "warnings": [...]}.
// Empty lists encode as [] rather than null.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	s := snapshot{Errors: l.Errors(), Warnings: l.Warnings()}
	if s.Errors == nil {
		s.Errors = []string{}
	}
	if s.Warnings == nil {
		s.Warnings = []string{}
	}
	return json.Marshal(s)
}

// UnmarshalJSON replaces the ledger contents with the decoded entries.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode ledger: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = s.Errors
	l.warnings = s.Warnings
	return nil
}
