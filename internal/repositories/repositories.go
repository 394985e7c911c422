package repositories

import (
	"context"
	"fmt"

	"alpencams/internal/models"
	"alpencams/internal/shared"
)

// Repository is the capability set both storage backends implement.
//
// All operations are identity-scoped: the local backend is scoped to the
// device, the remote backend to the authenticated account. Callers must not
// issue overlapping writes for the same identity; the preset engine
// serializes its calls.
type Repository interface {
	// LoadPresets returns all stored presets, or nil when none are stored.
	LoadPresets(ctx context.Context) ([]models.PresetEntity, error)

	// SavePresets replaces all stored presets with the given set atomically.
	// An empty slice clears storage.
	SavePresets(ctx context.Context, presets []models.PresetEntity) error

	// AddPreset inserts one preset. Fails with [shared.ErrConflict] when a
	// preset with the same id already exists.
	AddPreset(ctx context.Context, preset models.PresetEntity) error

	// DeletePreset removes one preset by id. Absent ids are a no-op.
	DeletePreset(ctx context.Context, id string) error

	// AddCamToPreset appends one camera name to a preset's list.
	AddCamToPreset(ctx context.Context, id, camName string) error

	// RemoveCamFromPreset removes the first occurrence of a camera name from a preset's list.
	RemoveCamFromPreset(ctx context.Context, id, camName string) error

	// LoadSettings returns the stored settings, or the zero value when nothing is stored.
	LoadSettings(ctx context.Context) (models.UserSettings, error)

	// SaveSettings upserts the single settings record.
	SaveSettings(ctx context.Context, settings models.UserSettings) error

	// DeletePresets clears all stored presets.
	DeletePresets(ctx context.Context) error
}

// IdentityProvider reports the currently authenticated account id, or "" when signed out.
type IdentityProvider interface {
	CurrentID() string
}

// Mode selects which backend a call should target.
type Mode int

const (
	// ModeAuto targets the remote backend when an identity exists, the local backend otherwise.
	ModeAuto Mode = iota
	// ModeLocal always targets device storage.
	ModeLocal
	// ModeRemote always targets account storage.
	ModeRemote
)

// Selector resolves a [Mode] to a backend.
//
// Stateless by design: every call re-reads the identity provider, so auto
// resolution always reflects the latest sign-in state.
type Selector struct {
	local    Repository
	remote   Repository
	identity IdentityProvider
}

// NewSelector creates a Selector over the two backends.
func NewSelector(local, remote Repository, identity IdentityProvider) *Selector {
	return &Selector{local: local, remote: remote, identity: identity}
}

// Repo returns the backend for the given mode.
func (s *Selector) Repo(mode Mode) Repository {
	switch mode {
	case ModeLocal:
		return s.local
	case ModeRemote:
		return s.remote
	default:
		if s.identity.CurrentID() != "" {
			return s.remote
		}
		return s.local
	}
}

// backendErr wraps an I/O failure as [shared.ErrBackendUnavailable], keeping the cause in the message.
func backendErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", shared.ErrBackendUnavailable, op, err)
}
