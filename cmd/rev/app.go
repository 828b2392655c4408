// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/revkit/rev/internal/backend"
	"github.com/revkit/rev/internal/config"
	"github.com/revkit/rev/internal/issue"
	"github.com/revkit/rev/internal/manifest"
	"github.com/revkit/rev/internal/prefs"
	"github.com/revkit/rev/internal/project"
	"github.com/revkit/rev/internal/prompt"

	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer; every Cobra handler receives an App reference.
	App struct {
		Config config.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		verbose    bool
		configPath string
		dir        string
	}

	// session is the per-invocation state resolved from flags, configuration
	// and the preferences file.
	session struct {
		app      *App
		cfg      *config.Config
		dir      string
		logger   *slog.Logger
		store    *prefs.Store
		prefs    prefs.Preferences
		prompter *prompt.Prompter
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// newSession loads configuration and preferences for one command run.
func (a *App) newSession(cmd *cobra.Command, flags *rootFlagValues) (*session, error) {
	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return nil, fmt.Errorf("resolve starting directory: %w", err)
	}

	cfg, err := a.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkDir:        dir,
	})
	if err != nil {
		return nil, err
	}

	logger := newLogger(a.stderr, flags.verbose || cfg.UI.Verbose)

	s := &session{
		app:    a,
		cfg:    cfg,
		dir:    dir,
		logger: logger,
		prompter: prompt.New(
			prompt.WithInput(a.stdin),
			prompt.WithOutput(a.stderr),
			prompt.WithInteractive(isTerminal(a.stdin) && isTerminal(a.stderr)),
			prompt.WithColorScheme(cfg.UI.ColorScheme.String()),
		),
	}

	statePath, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	s.store = prefs.NewStore(statePath)
	if s.prefs, err = s.store.Load(); err != nil {
		logger.Warn("could not read preferences, using defaults", "path", statePath, "error", err)
	}
	return s, nil
}

// newLogger returns a charmbracelet/log handler behind log/slog.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	}))
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// resolveProject finds the project below the starting directory.
func (s *session) resolveProject() (project.Descriptor, error) {
	desc, err := project.Resolve(s.dir, s.searchDepth())
	if err != nil {
		return project.Descriptor{}, issue.NewErrorContext().
			WithOperation("find project").
			WithIssue(issue.ProjectNotFoundId).
			WithResource(s.dir).
			WithSuggestion("Run rev from the project directory or pass --dir").
			WithSuggestion(fmt.Sprintf("Projects are searched at most %d levels deep (search.max_depth)", s.searchDepth())).
			Wrap(err).
			BuildError()
	}
	s.logger.Debug("resolved project", "path", desc.Path())
	return desc, nil
}

func (s *session) searchDepth() int {
	if s.cfg.Search.MaxDepth <= 0 {
		return project.DefaultSearchDepth
	}
	return s.cfg.Search.MaxDepth
}

func (s *session) settings() (backend.Settings, error) {
	settings, err := s.cfg.Build.Settings(s.logger)
	if err != nil {
		return backend.Settings{}, fmt.Errorf("build settings: %w", err)
	}
	return settings, nil
}

func (s *session) chain() (*backend.Chain, error) {
	settings, err := s.settings()
	if err != nil {
		return nil, err
	}
	return backend.NewChainFromSettings(settings)
}

func (s *session) certifier() *manifest.Certifier {
	return &manifest.Certifier{
		Prompter: s.prompter,
		Prefs:    &s.prefs,
		Store:    s.store,
		Logger:   s.logger,
	}
}

// targetVersion returns the stored target version, prompting for and
// saving one when none is stored.
func (s *session) targetVersion(ctx context.Context) (prefs.TargetVersion, error) {
	if s.prefs.TargetVersion.IsSet() {
		return s.prefs.TargetVersion, nil
	}
	v, err := s.prompter.SelectTargetVersion(ctx, "")
	if err != nil {
		return "", fmt.Errorf("select target version: %w", err)
	}
	if err := s.saveTargetVersion(v); err != nil {
		return "", err
	}
	return v, nil
}

func (s *session) saveTargetVersion(v prefs.TargetVersion) error {
	if ok, errs := v.IsValid(); !ok {
		return issue.NewErrorContext().
			WithOperation("set target version").
			WithIssue(issue.InvalidTargetVersionId).
			WithSuggestion("Pass only the year, for example 2024").
			Wrap(errors.Join(errs...)).
			BuildError()
	}
	s.prefs.TargetVersion = v
	if err := s.store.Save(s.prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// renderIssue prints the catalog entry for id to stderr.
func (s *session) renderIssue(id issue.Id) {
	i := issue.Get(id)
	if i == nil {
		return
	}
	rendered, err := i.Render(glamourStyle(s.app.stderr))
	if err != nil {
		s.logger.Debug("render issue", "error", err)
		return
	}
	fmt.Fprint(s.app.stderr, rendered)
}

// glamourStyle picks a markdown style for w.
func glamourStyle(w io.Writer) string {
	if isTerminal(w) {
		return "dark"
	}
	return "notty"
}
