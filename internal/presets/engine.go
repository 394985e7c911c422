package presets

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"alpencams/internal/catalog"
	"alpencams/internal/models"
	"alpencams/internal/repositories"
	"alpencams/internal/shared"
)

// defaultCamNames seeds the Default sentinel preset on first visit.
// Names missing from the catalog are dropped at hydration.
var defaultCamNames = []string{
	"Wanglspitze",
	"Achensee",
	"Großglockner Hochalpenstraße - Edelweißspitze",
	"Weißenkirchen in der Wachau",
	"Pyramidenkogel - Aussichtsturm",
	"Eng",
}

// AuthState reports the current account id, or "" when signed out.
type AuthState interface {
	CurrentID() string
}

// Engine is the preset synchronization engine.
type Engine struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	selector *repositories.Selector
	auth     AuthState
	logger   *log.Logger

	presets    []models.Preset
	settings   models.UserSettings
	firstVisit bool
}

// localData is the device-side state read at the start of Init.
// presets is nil when the device has zero stored presets.
type localData struct {
	presets  []models.Preset
	settings models.UserSettings
}

// NewEngine creates an engine over the given catalog, backend selector, and auth state.
func NewEngine(cat *catalog.Catalog, selector *repositories.Selector, auth AuthState, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		catalog:  cat,
		selector: selector,
		auth:     auth,
		logger:   logger,
	}
}

// Init loads and reconciles state for the session. Failures are fatal to the
// session; callers must not serve preset state after an Init error.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	local, err := e.loadLocalData(ctx)
	if err != nil {
		return err
	}

	if e.auth.CurrentID() != "" {
		if err := e.reconcileRemote(ctx, local); err != nil {
			return err
		}
	} else {
		if local.presets != nil {
			e.presets = local.presets
		} else {
			e.presets = e.defaultPresets()
		}
		e.settings = local.settings

		if !e.settings.Visited {
			if err := e.initializeFirstVisit(ctx); err != nil {
				return err
			}
		}
	}

	if err := e.repairSelection(ctx); err != nil {
		return err
	}

	if e.settings.SelectedPreset == models.RandomPresetID {
		e.randomiseCams()
	}

	return nil
}

// loadLocalData reads presets and settings from the device store.
func (e *Engine) loadLocalData(ctx context.Context) (localData, error) {
	local := e.selector.Repo(repositories.ModeLocal)

	entities, err := local.LoadPresets(ctx)
	if err != nil {
		return localData{}, err
	}

	settings, err := local.LoadSettings(ctx)
	if err != nil {
		return localData{}, err
	}

	data := localData{settings: settings}
	if len(entities) > 0 {
		data.presets = e.hydrateAll(entities)
	}
	return data, nil
}

// reconcileRemote runs the login-time reconciliation protocol.
//
// An unvisited remote has never been initialized: the device's data migrates
// up (sequential AddPreset calls, then settings), becomes the in-memory
// state, and the device store is erased. Flipping the remote visited flag in
// the same step closes the migration lock, so the migration runs at most
// once per device. A visited remote is authoritative and the device store is
// not touched.
func (e *Engine) reconcileRemote(ctx context.Context, local localData) error {
	remote := e.selector.Repo(repositories.ModeRemote)

	remoteSettings, err := remote.LoadSettings(ctx)
	if err != nil {
		return err
	}

	if !remoteSettings.Visited {
		migrated := local.presets
		if migrated == nil {
			migrated = e.defaultPresets()
		}

		for _, preset := range migrated {
			if err := remote.AddPreset(ctx, preset.Entity()); err != nil {
				return err
			}
		}

		settings := local.settings
		settings.Visited = true
		if err := remote.SaveSettings(ctx, settings); err != nil {
			return err
		}

		e.presets = migrated
		e.settings = settings

		return e.removeLocalData(ctx)
	}

	remotePresets, err := remote.LoadPresets(ctx)
	if err != nil {
		return err
	}

	if len(remotePresets) > 0 {
		e.presets = e.hydrateAll(remotePresets)
	} else {
		e.presets = e.defaultPresets()
	}
	e.settings = remoteSettings

	return nil
}

// removeLocalData erases the device store after a completed migration.
func (e *Engine) removeLocalData(ctx context.Context) error {
	local := e.selector.Repo(repositories.ModeLocal)

	if err := local.DeletePresets(ctx); err != nil {
		return err
	}
	return local.SaveSettings(ctx, models.UserSettings{SelectedPreset: "", Visited: true})
}

// initializeFirstVisit marks the device visited, selects the Default
// sentinel, and persists the in-memory presets and settings.
func (e *Engine) initializeFirstVisit(ctx context.Context) error {
	e.settings.Visited = true
	e.settings.SelectedPreset = models.DefaultPresetID
	e.firstVisit = true

	repo := e.selector.Repo(repositories.ModeAuto)
	for _, preset := range e.presets {
		if err := repo.AddPreset(ctx, preset.Entity()); err != nil {
			return err
		}
	}
	return repo.SaveSettings(ctx, e.settings)
}

// repairSelection forces the selection onto the Default sentinel when it is
// empty or references no in-memory preset, persisting the change.
func (e *Engine) repairSelection(ctx context.Context) error {
	if e.settings.SelectedPreset != "" && e.findPreset(e.settings.SelectedPreset) != nil {
		return nil
	}
	e.settings.SelectedPreset = models.DefaultPresetID
	return e.selector.Repo(repositories.ModeAuto).SaveSettings(ctx, e.settings)
}

// HandleLogout rebuilds the sentinel presets and resets the device store to
// them. Wire it to the auth context's signed-in → signed-out transition.
func (e *Engine) HandleLogout(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.presets = e.defaultPresets()
	e.settings = models.UserSettings{SelectedPreset: models.DefaultPresetID, Visited: true}

	local := e.selector.Repo(repositories.ModeLocal)

	// Logout overwrites the device store unconditionally; anything worth
	// keeping already migrated to the account on login.
	if err := local.DeletePresets(ctx); err != nil {
		return err
	}
	for _, preset := range e.presets {
		if err := local.AddPreset(ctx, preset.Entity()); err != nil {
			return err
		}
	}
	return local.SaveSettings(ctx, e.settings)
}

// ToggleWebcam adds the camera to the selected preset, or removes it when
// already present. Adding at the cap evicts the oldest camera first.
// Mutations of the Random sentinel stay transient.
func (e *Engine) ToggleWebcam(ctx context.Context, cam models.Webcam) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	preset := e.selectedRef()
	if preset == nil {
		return nil
	}

	repo := e.selector.Repo(repositories.ModeAuto)
	transient := preset.ID == models.RandomPresetID

	idx := slices.IndexFunc(preset.Cams, func(c models.Webcam) bool { return c.Name == cam.Name })
	if idx != -1 {
		preset.Cams = append(preset.Cams[:idx], preset.Cams[idx+1:]...)
		if transient {
			return nil
		}
		return repo.RemoveCamFromPreset(ctx, preset.ID, cam.Name)
	}

	if len(preset.Cams) >= models.MaxPresetCams {
		evicted := preset.Cams[0]
		preset.Cams = preset.Cams[1:]
		if !transient {
			if err := repo.RemoveCamFromPreset(ctx, preset.ID, evicted.Name); err != nil {
				return err
			}
		}
	}

	preset.Cams = append(preset.Cams, cam)
	if transient {
		return nil
	}
	return repo.AddCamToPreset(ctx, preset.ID, cam.Name)
}

// SwitchPreset changes the selection and persists it. Switching to the
// already-selected preset is a no-op.
func (e *Engine) SwitchPreset(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.switchPreset(ctx, id)
}

func (e *Engine) switchPreset(ctx context.Context, id string) error {
	if id == e.settings.SelectedPreset {
		return nil
	}

	if e.findPreset(id) == nil {
		return fmt.Errorf("%w: preset %q not found", shared.ErrNotFound, id)
	}

	// Leaving the Random sentinel discards its transient cams.
	if current := e.selectedRef(); current != nil && current.ID == models.RandomPresetID {
		current.Cams = nil
	}

	e.settings.SelectedPreset = id
	if err := e.selector.Repo(repositories.ModeAuto).SaveSettings(ctx, e.settings); err != nil {
		return err
	}

	if id == models.RandomPresetID {
		e.randomiseCams()
	}
	return nil
}

// CreatePreset validates the name, persists a fresh preset, and selects it.
func (e *Engine) CreatePreset(ctx context.Context, name string) (models.Preset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	trimmed := strings.TrimSpace(name)
	if err := models.ValidatePresetName(trimmed); err != nil {
		return models.Preset{}, err
	}

	for _, p := range e.presets {
		if p.Name == trimmed {
			return models.Preset{}, fmt.Errorf("%w: A preset with this name already exists", shared.ErrValidation)
		}
	}

	entity := models.PresetEntity{
		ID:     shared.GenerateID(),
		Name:   trimmed,
		CamIDs: []string{},
	}

	if err := e.selector.Repo(repositories.ModeAuto).AddPreset(ctx, entity); err != nil {
		return models.Preset{}, err
	}

	preset := e.hydrate(entity)
	e.presets = append(e.presets, preset)

	if err := e.switchPreset(ctx, entity.ID); err != nil {
		return models.Preset{}, err
	}
	return preset, nil
}

// RemovePreset deletes a preset. The last remaining preset cannot be
// removed; deleting the selected preset falls back to the first remaining
// one.
func (e *Engine) RemovePreset(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.presets) == 1 {
		return fmt.Errorf("%w: Cannot delete the last preset", shared.ErrValidation)
	}

	idx := slices.IndexFunc(e.presets, func(p models.Preset) bool { return p.ID == id })
	if idx == -1 {
		return fmt.Errorf("%w: preset %q not found", shared.ErrNotFound, id)
	}

	repo := e.selector.Repo(repositories.ModeAuto)
	if err := repo.DeletePreset(ctx, id); err != nil {
		return err
	}
	e.presets = append(e.presets[:idx], e.presets[idx+1:]...)

	if id == e.settings.SelectedPreset {
		e.settings.SelectedPreset = e.presets[0].ID
		return repo.SaveSettings(ctx, e.settings)
	}
	return nil
}

// Presets returns a snapshot of the in-memory presets.
func (e *Engine) Presets() []models.Preset {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Preset, len(e.presets))
	for i, p := range e.presets {
		out[i] = p
		out[i].Cams = slices.Clone(p.Cams)
	}
	return out
}

// Settings returns the current settings.
func (e *Engine) Settings() models.UserSettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Selected returns a snapshot of the selected preset, falling back to the
// first preset when the selection id has no match.
func (e *Engine) Selected() (models.Preset, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ref := e.selectedRef()
	if ref == nil {
		return models.Preset{}, false
	}
	out := *ref
	out.Cams = slices.Clone(ref.Cams)
	return out, true
}

// FirstVisit reports whether Init ran the first-visit bootstrap this session.
func (e *Engine) FirstVisit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.firstVisit
}

// selectedRef returns a pointer into the preset slice for the selection, or
// the first preset when the selection has no match, or nil when empty.
func (e *Engine) selectedRef() *models.Preset {
	if len(e.presets) == 0 {
		return nil
	}
	if p := e.findPreset(e.settings.SelectedPreset); p != nil {
		return p
	}
	return &e.presets[0]
}

func (e *Engine) findPreset(id string) *models.Preset {
	if id == "" {
		return nil
	}
	for i := range e.presets {
		if e.presets[i].ID == id {
			return &e.presets[i]
		}
	}
	return nil
}

// randomiseCams resamples the Random sentinel's cameras from the catalog.
// The sample is never written to a backend.
func (e *Engine) randomiseCams() {
	if p := e.findPreset(models.RandomPresetID); p != nil {
		p.Cams = e.catalog.Random(models.MaxPresetCams)
	}
}

// defaultPresets builds the two sentinel presets.
func (e *Engine) defaultPresets() []models.Preset {
	return []models.Preset{
		e.hydrate(models.PresetEntity{
			ID:     models.DefaultPresetID,
			Name:   models.DefaultPresetName,
			CamIDs: defaultCamNames,
		}),
		{
			ID:   models.RandomPresetID,
			Name: models.RandomPresetName,
		},
	}
}

// hydrate resolves an entity's camera names against the catalog. Unresolved
// names are dropped from the view, never from storage, and are logged so the
// mismatch is visible.
func (e *Engine) hydrate(entity models.PresetEntity) models.Preset {
	cams, unresolved := e.catalog.Resolve(entity.CamIDs)
	if len(unresolved) > 0 {
		e.logger.Warn("dropping cameras missing from catalog",
			"preset", entity.Name, "cams", unresolved)
	}
	return models.Preset{ID: entity.ID, Name: entity.Name, Cams: cams}
}

func (e *Engine) hydrateAll(entities []models.PresetEntity) []models.Preset {
	presets := make([]models.Preset, len(entities))
	for i, entity := range entities {
		presets[i] = e.hydrate(entity)
	}
	return presets
}
