// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/revkit/rev/internal/prefs"
	"github.com/revkit/rev/internal/project"
)

const (
	// DefaultVendorID is offered when prompting for the vendor ID.
	DefaultVendorID = "Development"

	labelName        = "Enter the name of your add-in"
	labelVendorID    = "Enter your vendor ID"
	labelDescription = "Enter a description of your add-in"
	labelEmail       = "Enter your work email address"
)

type (
	// Prompter collects user-supplied values. Implementations may be
	// interactive or scripted.
	Prompter interface {
		Prompt(ctx context.Context, label string) (string, error)
		PromptDefault(ctx context.Context, label, def string) (string, error)
	}

	// PreferenceSaver persists the preference record.
	PreferenceSaver interface {
		Save(p prefs.Preferences) error
	}

	// Certifier ensures a project has a customized manifest, generating one
	// when it is missing or still a template.
	Certifier struct {
		Prompter Prompter
		// Prefs is the record loaded for this run. The collected vendor
		// email is written back into it.
		Prefs *prefs.Preferences
		// Store persists Prefs after the email is collected. Optional.
		Store  PreferenceSaver
		Logger *slog.Logger
	}
)

// Ensure returns the manifest path for desc, regenerating the file first
// when it is missing or holds placeholders. Freshly written files are not
// checked again.
func (c *Certifier) Ensure(ctx context.Context, desc project.Descriptor) (string, error) {
	path := desc.ManifestPath()

	regenerate, err := NeedsRegeneration(path)
	if err != nil {
		return "", err
	}
	if !regenerate {
		c.logger().Debug("manifest accepted", "path", path)
		return path, nil
	}

	info, err := c.Collect(ctx, desc)
	if err != nil {
		return "", err
	}
	if err := Write(path, info); err != nil {
		return "", err
	}
	c.logger().Info("generated manifest", "path", path, "addin_id", info.AddInID)
	return path, nil
}

// Collect prompts for the manifest fields of desc. The add-in ID is a fresh
// UUIDv4 on every call.
func (c *Certifier) Collect(ctx context.Context, desc project.Descriptor) (Info, error) {
	if c.Prompter == nil {
		return Info{}, fmt.Errorf("generate manifest for %s: no prompter available", desc.Name)
	}

	name, err := c.Prompter.Prompt(ctx, labelName)
	if err != nil {
		return Info{}, fmt.Errorf("prompt for add-in name: %w", err)
	}
	vendorID, err := c.Prompter.PromptDefault(ctx, labelVendorID, DefaultVendorID)
	if err != nil {
		return Info{}, fmt.Errorf("prompt for vendor ID: %w", err)
	}
	description, err := c.Prompter.Prompt(ctx, labelDescription)
	if err != nil {
		return Info{}, fmt.Errorf("prompt for vendor description: %w", err)
	}

	remembered := ""
	if c.Prefs != nil {
		remembered = c.Prefs.VendorEmail
	}
	var email string
	if remembered == "" {
		email, err = c.Prompter.Prompt(ctx, labelEmail)
	} else {
		email, err = c.Prompter.PromptDefault(ctx, labelEmail, remembered)
	}
	if err != nil {
		return Info{}, fmt.Errorf("prompt for vendor email: %w", err)
	}
	c.rememberEmail(email)

	return Info{
		Name:              name,
		Assembly:          desc.Name + `\` + desc.Name + ".dll",
		AddInID:           uuid.NewString(),
		FullClassName:     desc.Name + ".App",
		VendorID:          vendorID,
		VendorDescription: description,
		VendorEmail:       email,
	}, nil
}

func (c *Certifier) rememberEmail(email string) {
	if c.Prefs == nil {
		return
	}
	c.Prefs.VendorEmail = email
	if c.Store == nil {
		return
	}
	if err := c.Store.Save(*c.Prefs); err != nil {
		c.logger().Warn("could not save vendor email", "error", err)
	}
}

func (c *Certifier) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
