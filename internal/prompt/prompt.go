// SPDX-License-Identifier: MPL-2.0

// Package prompt asks the user for values. On a terminal it renders huh
// forms; otherwise it reads plain lines, so scripted input works.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/revkit/rev/internal/prefs"
)

const targetVersionLabel = "Enter the Revit version you are targeting"

var (
	// ErrAborted is returned when the user cancels a form.
	ErrAborted = errors.New("prompt aborted")
	// ErrNoInput is returned when input ends before an answer is read.
	ErrNoInput = errors.New("no input available")
)

type (
	// Option configures a Prompter.
	Option func(*Prompter)

	// Prompter implements the certifier's prompting interface.
	Prompter struct {
		in          io.Reader
		out         io.Writer
		interactive bool
		accessible  bool
		theme       *huh.Theme
		lines       *bufio.Reader
	}
)

// WithInput sets the reader answers come from.
func WithInput(r io.Reader) Option {
	return func(p *Prompter) { p.in = r }
}

// WithOutput sets where prompts are written.
func WithOutput(w io.Writer) Option {
	return func(p *Prompter) { p.out = w }
}

// WithInteractive forces huh forms on or off.
func WithInteractive(on bool) Option {
	return func(p *Prompter) { p.interactive = on }
}

// WithAccessible renders huh forms in screen-reader mode.
func WithAccessible(on bool) Option {
	return func(p *Prompter) { p.accessible = on }
}

// WithColorScheme picks the form theme: "light" uses the base theme,
// anything else the charm theme.
func WithColorScheme(scheme string) Option {
	return func(p *Prompter) {
		if scheme == "light" {
			p.theme = huh.ThemeBase()
			return
		}
		p.theme = huh.ThemeCharm()
	}
}

// New returns a Prompter reading stdin and writing stderr. Forms are used
// only when both are terminals; ACCESSIBLE in the environment selects
// screen-reader mode.
func New(opts ...Option) *Prompter {
	p := &Prompter{
		in:          os.Stdin,
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())),
		accessible:  os.Getenv("ACCESSIBLE") != "",
		theme:       huh.ThemeCharm(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interactive reports whether forms are rendered.
func (p *Prompter) Interactive() bool { return p.interactive }

// Prompt asks for a non-empty value.
func (p *Prompter) Prompt(ctx context.Context, label string) (string, error) {
	return p.ask(ctx, label, "", false)
}

// PromptDefault asks for a value, returning def when the answer is empty.
func (p *Prompter) PromptDefault(ctx context.Context, label, def string) (string, error) {
	return p.ask(ctx, label, def, true)
}

// SelectTargetVersion asks for a supported Revit version, preselecting
// current when it is valid.
func (p *Prompter) SelectTargetVersion(ctx context.Context, current prefs.TargetVersion) (prefs.TargetVersion, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	supported := prefs.SupportedTargetVersions()
	if !p.interactive {
		return p.readTargetVersion(ctx, supported)
	}

	choice := string(supported[0])
	if ok, _ := current.IsValid(); ok {
		choice = string(current)
	}
	opts := make([]huh.Option[string], len(supported))
	for i, v := range supported {
		opts[i] = huh.NewOption(string(v), string(v))
	}
	field := huh.NewSelect[string]().
		Title(targetVersionLabel).
		Options(opts...).
		Value(&choice)
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return prefs.TargetVersion(choice), nil
}

func (p *Prompter) ask(ctx context.Context, label, def string, hasDefault bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !p.interactive {
		return p.readLine(ctx, label, def, hasDefault)
	}

	var value string
	field := huh.NewInput().Title(label).Value(&value)
	if hasDefault {
		field = field.Placeholder(def)
	} else {
		field = field.Validate(requireValue)
	}
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return resolve(value, def, hasDefault), nil
}

func (p *Prompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme).
		WithAccessible(p.accessible).
		WithInput(p.in).
		WithOutput(p.out)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("run prompt: %w", err)
	}
	return nil
}

// readLine prompts on out and reads one line, asking again while a value
// without default is left empty.
func (p *Prompter) readLine(ctx context.Context, label, def string, hasDefault bool) (string, error) {
	for {
		if hasDefault && def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}
		line, err := p.nextLine(ctx)
		if err != nil {
			return "", err
		}
		if value := resolve(line, def, hasDefault); value != "" || hasDefault {
			return value, nil
		}
	}
}

func (p *Prompter) readTargetVersion(ctx context.Context, supported []prefs.TargetVersion) (prefs.TargetVersion, error) {
	first, last := supported[len(supported)-1], supported[0]
	for {
		fmt.Fprintf(p.out, "%s (%s-%s): ", targetVersionLabel, first, last)
		line, err := p.nextLine(ctx)
		if err != nil {
			return "", err
		}
		v := prefs.TargetVersion(line)
		if ok, errs := v.IsValid(); !ok {
			fmt.Fprintf(p.out, "%v\n", errors.Join(errs...))
			continue
		}
		return v, nil
	}
}

func (p *Prompter) nextLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.lines == nil {
		p.lines = bufio.NewReader(p.in)
	}
	line, err := p.lines.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func resolve(answer, def string, hasDefault bool) string {
	answer = strings.TrimSpace(answer)
	if answer == "" && hasDefault {
		return def
	}
	return answer
}

func requireValue(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}
