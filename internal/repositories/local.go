package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"alpencams/internal/models"
	"alpencams/internal/shared"
)

// Storage keys used by the device-scoped backend.
const (
	keyPresets        = "presets"
	keySelectedPreset = "selectedPreset"
	keyVisited        = "visited"
)

// KVStore is the key-value persistence surface the local backend writes through.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// FileStore implements [KVStore] on a single JSON file, written atomically via rename.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

// DefaultStorePath returns the default location of the device store.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "alpencams", "local.json"), nil
}

// NewFileStore creates a FileStore at the given path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, values: map[string]string{}}
}

func (f *FileStore) load() error {
	if f.loaded {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.loaded = true
			return nil
		}
		return err
	}

	if err := json.Unmarshal(data, &f.values); err != nil {
		return fmt.Errorf("corrupt store file %s: %w", f.path, err)
	}
	f.loaded = true
	return nil
}

func (f *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Get returns the value for key and whether it was present.
func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return "", false, err
	}
	v, ok := f.values[key]
	return v, ok, nil
}

// Set stores a value and flushes the file.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return err
	}
	f.values[key] = value
	return f.flush()
}

// Remove deletes a key and flushes the file. Absent keys are a no-op.
func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return err
	}
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.flush()
}

// LocalRepository implements [Repository] over a device-scoped [KVStore].
type LocalRepository struct {
	store KVStore
}

// NewLocalRepository creates a local backend over the given store.
func NewLocalRepository(store KVStore) *LocalRepository {
	return &LocalRepository{store: store}
}

// legacyPreset is the pre-camIds storage shape, kept only for one-shot migration on load.
type legacyPreset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cams []struct {
		Name string `json:"name"`
	} `json:"cams"`
}

// LoadPresets returns the stored presets, or nil when none are stored.
//
// Presets stored in the legacy {name, cams: [...]} shape are migrated to the
// camIds shape and rewritten before being returned.
func (r *LocalRepository) LoadPresets(ctx context.Context) ([]models.PresetEntity, error) {
	raw, ok, err := r.store.Get(keyPresets)
	if err != nil {
		return nil, backendErr("load presets", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	// Corrupt stored data fails loudly; loading it as empty would let the
	// next write erase the user's presets.
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, backendErr("load presets", err)
	}

	if len(probe) > 0 {
		if _, hasCamIDs := probe[0]["camIds"]; !hasCamIDs {
			return r.migrateLegacy(ctx, raw)
		}
	}

	var presets []models.PresetEntity
	if err := json.Unmarshal([]byte(raw), &presets); err != nil {
		return nil, backendErr("load presets", err)
	}
	return presets, nil
}

// migrateLegacy converts legacy-format presets and persists the new shape.
func (r *LocalRepository) migrateLegacy(ctx context.Context, raw string) ([]models.PresetEntity, error) {
	var legacy []legacyPreset
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return nil, backendErr("load presets", err)
	}

	migrated := make([]models.PresetEntity, len(legacy))
	for i, p := range legacy {
		camIDs := make([]string, len(p.Cams))
		for j, cam := range p.Cams {
			camIDs[j] = cam.Name
		}
		migrated[i] = models.PresetEntity{ID: p.ID, Name: p.Name, CamIDs: camIDs}
	}

	if err := r.SavePresets(ctx, migrated); err != nil {
		return nil, err
	}
	return migrated, nil
}

// SavePresets replaces the stored preset array.
func (r *LocalRepository) SavePresets(ctx context.Context, presets []models.PresetEntity) error {
	if presets == nil {
		presets = []models.PresetEntity{}
	}
	data, err := json.Marshal(presets)
	if err != nil {
		return backendErr("save presets", err)
	}
	if err := r.store.Set(keyPresets, string(data)); err != nil {
		return backendErr("save presets", err)
	}
	return nil
}

// AddPreset appends one preset, failing with [shared.ErrConflict] on a duplicate id.
func (r *LocalRepository) AddPreset(ctx context.Context, preset models.PresetEntity) error {
	presets, err := r.LoadPresets(ctx)
	if err != nil {
		return err
	}
	for _, p := range presets {
		if p.ID == preset.ID {
			return fmt.Errorf("%w: preset %s", shared.ErrConflict, preset.ID)
		}
	}
	return r.SavePresets(ctx, append(presets, preset))
}

// DeletePreset removes one preset by id; absent ids are a no-op.
func (r *LocalRepository) DeletePreset(ctx context.Context, id string) error {
	presets, err := r.LoadPresets(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(presets, func(p models.PresetEntity) bool { return p.ID == id })
	return r.SavePresets(ctx, kept)
}

// AddCamToPreset appends a camera name to the identified preset.
func (r *LocalRepository) AddCamToPreset(ctx context.Context, id, camName string) error {
	return r.mutatePreset(ctx, id, func(p *models.PresetEntity) {
		p.CamIDs = append(p.CamIDs, camName)
	})
}

// RemoveCamFromPreset removes the first occurrence of a camera name from the identified preset.
func (r *LocalRepository) RemoveCamFromPreset(ctx context.Context, id, camName string) error {
	return r.mutatePreset(ctx, id, func(p *models.PresetEntity) {
		for i, name := range p.CamIDs {
			if name == camName {
				p.CamIDs = append(p.CamIDs[:i], p.CamIDs[i+1:]...)
				return
			}
		}
	})
}

func (r *LocalRepository) mutatePreset(ctx context.Context, id string, fn func(*models.PresetEntity)) error {
	presets, err := r.LoadPresets(ctx)
	if err != nil {
		return err
	}
	for i := range presets {
		if presets[i].ID == id {
			fn(&presets[i])
			return r.SavePresets(ctx, presets)
		}
	}
	return fmt.Errorf("%w: preset %q", shared.ErrNotFound, id)
}

// LoadSettings returns the stored settings, defaulting to the zero value.
func (r *LocalRepository) LoadSettings(ctx context.Context) (models.UserSettings, error) {
	var settings models.UserSettings

	selected, ok, err := r.store.Get(keySelectedPreset)
	if err != nil {
		return settings, backendErr("load settings", err)
	}
	if ok {
		settings.SelectedPreset = selected
	}

	visited, ok, err := r.store.Get(keyVisited)
	if err != nil {
		return settings, backendErr("load settings", err)
	}
	settings.Visited = ok && visited == "1"

	return settings, nil
}

// SaveSettings writes both settings keys. An empty selection removes its key.
func (r *LocalRepository) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	if settings.SelectedPreset == "" {
		if err := r.store.Remove(keySelectedPreset); err != nil {
			return backendErr("save settings", err)
		}
	} else if err := r.store.Set(keySelectedPreset, settings.SelectedPreset); err != nil {
		return backendErr("save settings", err)
	}

	visited := "0"
	if settings.Visited {
		visited = "1"
	}
	if err := r.store.Set(keyVisited, visited); err != nil {
		return backendErr("save settings", err)
	}
	return nil
}

// DeletePresets clears the preset key entirely.
func (r *LocalRepository) DeletePresets(ctx context.Context) error {
	if err := r.store.Remove(keyPresets); err != nil {
		return backendErr("delete presets", err)
	}
	return nil
}
