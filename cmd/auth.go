package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"alpencams/internal/auth"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in and out of an account",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in via OAuth and adopt the account's presets",
				Action: r.Login,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and reset device presets to defaults",
				Action: r.Logout,
			},
			{
				Name:   "status",
				Usage:  "Show the current sign-in state",
				Action: r.AuthStatus,
			},
		},
	}
}

// Login runs the OAuth flow, persists the identity, and reconciles presets
// against the account's store.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if current := r.auth.Current(); current != nil {
		return r.writePlain("Already signed in as %s\n", current.ID)
	}

	identity, err := auth.Login(ctx, r.auth, r.config.OAuth)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := storeIdentity(identity); err != nil {
		r.logger.Warnf("failed to persist identity: %v", err)
	}

	// Re-run startup reconciliation against the account store. Any presets
	// created on this device before signing in migrate now.
	r.ready = false
	if err := r.initEngine(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Signed in as %s\n", identity.ID)
}

// Logout clears the stored identity and resets the device to default presets.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	current := r.auth.Current()
	if current == nil {
		return r.writePlain("Not signed in\n")
	}

	// SignOut notifies the auth subscription, which resets the device store.
	r.auth.SignOut()
	if err := clearStoredIdentity(); err != nil {
		r.logger.Warnf("failed to remove identity file: %v", err)
	}
	r.ready = true

	return r.writePlain("✓ Signed out of %s\n", current.ID)
}

// AuthStatus reports the current sign-in state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	current := r.auth.Current()
	if current == nil {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Account: %s\n", current.ID)
	if current.Email != "" {
		r.writePlain("Email: %s\n", current.Email)
	}
	return nil
}

func identityPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(configDir, "alpencams", "identity.json"), nil
}

// loadStoredIdentity reads the identity persisted by a previous login.
// Returns nil without error when no identity is stored.
func loadStoredIdentity() (*auth.Identity, error) {
	path, err := identityPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	var identity auth.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity file: %w", err)
	}
	if identity.ID == "" {
		return nil, nil
	}
	return &identity, nil
}

func storeIdentity(identity *auth.Identity) error {
	path, err := identityPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}

	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

func clearStoredIdentity() error {
	path, err := identityPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove identity file: %w", err)
	}
	return nil
}
