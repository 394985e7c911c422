package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"alpencams/internal/models"
	"alpencams/internal/shared"
)

// RemoteRepository implements [Repository] on the account-scoped SQLite store.
//
// Every call resolves the current identity first and fails with
// [shared.ErrAuthRequired] when nobody is signed in.
type RemoteRepository struct {
	db       *sql.DB
	identity IdentityProvider
}

// NewRemoteRepository creates a remote backend over db, scoped per call by the identity provider.
func NewRemoteRepository(db *sql.DB, identity IdentityProvider) *RemoteRepository {
	return &RemoteRepository{db: db, identity: identity}
}

func (r *RemoteRepository) userID() (string, error) {
	id := r.identity.CurrentID()
	if id == "" {
		return "", shared.ErrAuthRequired
	}
	return id, nil
}

// LoadPresets returns the identity's presets in insertion order, or nil when none exist.
func (r *RemoteRepository) LoadPresets(ctx context.Context) ([]models.PresetEntity, error) {
	userID, err := r.userID()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, cam_ids FROM presets WHERE user_id = ? ORDER BY rowid ASC", userID)
	if err != nil {
		return nil, backendErr("load presets", err)
	}
	defer rows.Close()

	var presets []models.PresetEntity
	for rows.Next() {
		var preset models.PresetEntity
		var camIDs string
		if err := rows.Scan(&preset.ID, &preset.Name, &camIDs); err != nil {
			return nil, backendErr("scan preset", err)
		}
		if err := json.Unmarshal([]byte(camIDs), &preset.CamIDs); err != nil {
			return nil, backendErr("decode cam ids", err)
		}
		presets = append(presets, preset)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("load presets", err)
	}

	return presets, nil
}

// SavePresets deletes the identity's presets and inserts the given set in one transaction.
func (r *RemoteRepository) SavePresets(ctx context.Context, presets []models.PresetEntity) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return backendErr("save presets", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM presets WHERE user_id = ?", userID); err != nil {
		return backendErr("save presets", err)
	}

	for _, preset := range presets {
		if err := insertPreset(ctx, tx, userID, preset); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return backendErr("save presets", err)
	}
	return nil
}

func insertPreset(ctx context.Context, tx *sql.Tx, userID string, preset models.PresetEntity) error {
	camIDs, err := encodeCamIDs(preset.CamIDs)
	if err != nil {
		return backendErr("encode cam ids", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO presets (id, user_id, name, cam_ids) VALUES (?, ?, ?, ?)",
		preset.ID, userID, preset.Name, camIDs)
	if err != nil {
		return backendErr("insert preset", err)
	}
	return nil
}

// AddPreset inserts one preset, failing with [shared.ErrConflict] on a duplicate id.
func (r *RemoteRepository) AddPreset(ctx context.Context, preset models.PresetEntity) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM presets WHERE id = ? AND user_id = ?)",
		preset.ID, userID).Scan(&exists)
	if err != nil {
		return backendErr("add preset", err)
	}
	if exists {
		return fmt.Errorf("%w: preset %s", shared.ErrConflict, preset.ID)
	}

	camIDs, err := encodeCamIDs(preset.CamIDs)
	if err != nil {
		return backendErr("encode cam ids", err)
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO presets (id, user_id, name, cam_ids) VALUES (?, ?, ?, ?)",
		preset.ID, userID, preset.Name, camIDs)
	if err != nil {
		return backendErr("add preset", err)
	}
	return nil
}

// DeletePreset removes one preset by id; absent ids are a no-op.
func (r *RemoteRepository) DeletePreset(ctx context.Context, id string) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"DELETE FROM presets WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return backendErr("delete preset", err)
	}
	return nil
}

// AddCamToPreset appends a camera to the preset's list inside a transaction,
// evicting from the front when the cap is exceeded.
func (r *RemoteRepository) AddCamToPreset(ctx context.Context, id, camName string) error {
	return r.mutateCamIDs(ctx, id, func(camIDs []string) []string {
		camIDs = append(camIDs, camName)
		if len(camIDs) > models.MaxPresetCams {
			camIDs = camIDs[len(camIDs)-models.MaxPresetCams:]
		}
		return camIDs
	})
}

// RemoveCamFromPreset removes the first occurrence of a camera from the preset's list.
func (r *RemoteRepository) RemoveCamFromPreset(ctx context.Context, id, camName string) error {
	return r.mutateCamIDs(ctx, id, func(camIDs []string) []string {
		for i, name := range camIDs {
			if name == camName {
				return append(camIDs[:i], camIDs[i+1:]...)
			}
		}
		return camIDs
	})
}

// mutateCamIDs runs a read-modify-write of one preset's cam list as a single transaction.
func (r *RemoteRepository) mutateCamIDs(ctx context.Context, id string, fn func([]string) []string) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return backendErr("mutate preset", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		"SELECT cam_ids FROM presets WHERE id = ? AND user_id = ?", id, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: preset %q", shared.ErrNotFound, id)
	}
	if err != nil {
		return backendErr("mutate preset", err)
	}

	var camIDs []string
	if err := json.Unmarshal([]byte(raw), &camIDs); err != nil {
		return backendErr("decode cam ids", err)
	}

	encoded, err := encodeCamIDs(fn(camIDs))
	if err != nil {
		return backendErr("encode cam ids", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE presets SET cam_ids = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?",
		encoded, id, userID)
	if err != nil {
		return backendErr("mutate preset", err)
	}

	if err := tx.Commit(); err != nil {
		return backendErr("mutate preset", err)
	}
	return nil
}

// LoadSettings returns the identity's settings record, or the zero value when none exists.
func (r *RemoteRepository) LoadSettings(ctx context.Context) (models.UserSettings, error) {
	var settings models.UserSettings

	userID, err := r.userID()
	if err != nil {
		return settings, err
	}

	var selected sql.NullString
	err = r.db.QueryRowContext(ctx,
		"SELECT selected_preset, visited FROM user_settings WHERE user_id = ?", userID).
		Scan(&selected, &settings.Visited)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return settings, backendErr("load settings", err)
	}

	if selected.Valid {
		settings.SelectedPreset = selected.String
	}
	return settings, nil
}

// SaveSettings upserts the identity's settings record.
func (r *RemoteRepository) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	var selected any
	if settings.SelectedPreset != "" {
		selected = settings.SelectedPreset
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, selected_preset, visited)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			selected_preset = excluded.selected_preset,
			visited = excluded.visited,
			updated_at = CURRENT_TIMESTAMP
	`, userID, selected, settings.Visited)
	if err != nil {
		return backendErr("save settings", err)
	}
	return nil
}

// DeletePresets clears every preset for the identity.
func (r *RemoteRepository) DeletePresets(ctx context.Context) error {
	userID, err := r.userID()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, "DELETE FROM presets WHERE user_id = ?", userID)
	if err != nil {
		return backendErr("delete presets", err)
	}
	return nil
}

func encodeCamIDs(camIDs []string) (string, error) {
	if camIDs == nil {
		camIDs = []string{}
	}
	data, err := json.Marshal(camIDs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
