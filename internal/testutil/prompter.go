// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned when a ScriptedPrompter runs out of answers.
var ErrScriptExhausted = errors.New("scripted prompter has no answers left")

type (
	// PromptCall records one prompt.
	PromptCall struct {
		Label   string
		Default string
		// HasDefault distinguishes an empty default from no default.
		HasDefault bool
	}

	// ScriptedPrompter answers prompts from a fixed list. An empty answer
	// to a prompt with a default yields the default.
	ScriptedPrompter struct {
		mu      sync.Mutex
		answers []string
		calls   []PromptCall
	}
)

// NewScriptedPrompter returns a prompter that replies with answers in order.
func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	return &ScriptedPrompter{answers: answers}
}

// Prompt returns the next answer.
func (s *ScriptedPrompter) Prompt(ctx context.Context, label string) (string, error) {
	return s.next(ctx, PromptCall{Label: label})
}

// PromptDefault returns the next answer, or def when the answer is empty.
func (s *ScriptedPrompter) PromptDefault(ctx context.Context, label, def string) (string, error) {
	answer, err := s.next(ctx, PromptCall{Label: label, Default: def, HasDefault: true})
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Calls returns the prompts seen so far.
func (s *ScriptedPrompter) Calls() []PromptCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PromptCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *ScriptedPrompter) next(ctx context.Context, call PromptCall) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if len(s.answers) == 0 {
		return "", ErrScriptExhausted
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}
