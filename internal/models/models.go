// package models defines the data model for the webcam preset service
package models

import (
	"fmt"
	"strings"

	"alpencams/internal/shared"
)

// MaxPresetCams is the per-preset camera cap. Adding beyond it evicts the oldest entry first.
const MaxPresetCams = 9

// Fixed ids of the two sentinel presets.
const (
	DefaultPresetID = "00000000-0000-0000-0000-000000000001"
	RandomPresetID  = "00000000-0000-0000-0000-000000000002"
)

// Names of the two sentinel presets.
const (
	DefaultPresetName = "Default preset"
	RandomPresetName  = "Random"
)

// Webcam represents a single camera from the catalog.
type Webcam struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Provider  string  `json:"provider"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PresetEntity is the persisted form of a preset.
//
// CamIDs holds camera names in insertion order; duplicates are permitted.
type PresetEntity struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	CamIDs []string `json:"camIds"`
}

// Preset is the view form of a preset with camera names resolved against the catalog.
type Preset struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Cams []Webcam `json:"cams"`
}

// UserSettings holds per-identity selection state.
//
// Visited doubles as the first-run marker and the remote migration lock:
// a remote identity with Visited == false has never been reconciled, and
// reconciliation flips it exactly once.
type UserSettings struct {
	SelectedPreset string `json:"selectedPreset"`
	Visited        bool   `json:"visited"`
}

// Entity converts a view-form preset back to its persisted form.
func (p Preset) Entity() PresetEntity {
	camIDs := make([]string, len(p.Cams))
	for i, cam := range p.Cams {
		camIDs[i] = cam.Name
	}
	return PresetEntity{ID: p.ID, Name: p.Name, CamIDs: camIDs}
}

// Validate checks the entity's id and name and returns an error if either is invalid.
func (e PresetEntity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: preset id is empty", shared.ErrValidation)
	}
	return ValidatePresetName(e.Name)
}

// ValidatePresetName enforces the naming rule for user-created presets: more than 3 characters after trimming.
func ValidatePresetName(name string) error {
	if len(strings.TrimSpace(name)) <= 3 {
		return fmt.Errorf("%w: Preset name must be longer than 3 characters", shared.ErrValidation)
	}
	return nil
}
