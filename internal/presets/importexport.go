package presets

import (
	"context"
	"encoding/json"
	"fmt"

	"alpencams/internal/models"
	"alpencams/internal/repositories"
	"alpencams/internal/shared"
)

// importedPreset is the accepted import shape. The id is optional.
type importedPreset struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name"`
	CamIDs []string `json:"camIds"`
}

// validateImportData checks shape strictly: a non-empty JSON array whose
// items are objects with a string name and a string-array camIds.
func validateImportData(data []byte) ([]importedPreset, error) {
	invalid := fmt.Errorf("%w: invalid preset data format", shared.ErrValidation)

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalid
	}
	if len(raw) == 0 {
		return nil, invalid
	}

	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item["name"], &name); err != nil {
			return nil, invalid
		}
		var camIDs []string
		if err := json.Unmarshal(item["camIds"], &camIDs); err != nil || camIDs == nil {
			return nil, invalid
		}
	}

	var presets []importedPreset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, invalid
	}
	return presets, nil
}

// normalizeImported assigns ids: sentinel names keep their fixed ids,
// everything else keeps a supplied id or receives a fresh one.
func normalizeImported(imported []importedPreset) []models.PresetEntity {
	sentinelIDs := map[string]string{
		models.DefaultPresetName: models.DefaultPresetID,
		models.RandomPresetName:  models.RandomPresetID,
	}

	entities := make([]models.PresetEntity, len(imported))
	for i, p := range imported {
		id := p.ID
		if id == "" {
			if sentinel, ok := sentinelIDs[p.Name]; ok {
				id = sentinel
			} else {
				id = shared.GenerateID()
			}
		}
		entities[i] = models.PresetEntity{ID: id, Name: p.Name, CamIDs: p.CamIDs}
	}
	return entities
}

// ImportPresets replaces the active backend's presets with the given JSON
// export and re-initializes the engine from storage.
func (e *Engine) ImportPresets(ctx context.Context, data []byte) error {
	imported, err := validateImportData(data)
	if err != nil {
		return err
	}
	entities := normalizeImported(imported)

	repo := e.selector.Repo(repositories.ModeAuto)
	if err := repo.SavePresets(ctx, entities); err != nil {
		return err
	}
	settings := models.UserSettings{SelectedPreset: entities[0].ID, Visited: true}
	if err := repo.SaveSettings(ctx, settings); err != nil {
		return err
	}

	return e.Init(ctx)
}

// ExportPresets returns the active backend's presets, an empty slice when none are stored.
func (e *Engine) ExportPresets(ctx context.Context) ([]models.PresetEntity, error) {
	entities, err := e.selector.Repo(repositories.ModeAuto).LoadPresets(ctx)
	if err != nil {
		return nil, err
	}
	if entities == nil {
		entities = []models.PresetEntity{}
	}
	return entities, nil
}
