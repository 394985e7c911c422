package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"alpencams/internal/models"
)

var (
	_ list.Item = presetItem{}
	_ list.Item = camItem{}
)

// presetItem wraps [models.Preset] to implement [list.Item].
type presetItem struct {
	preset   models.Preset
	selected bool
}

func (i presetItem) FilterValue() string { return i.preset.Name }
func (i presetItem) Title() string {
	if i.selected {
		return "● " + i.preset.Name
	}
	return i.preset.Name
}
func (i presetItem) Description() string {
	return fmt.Sprintf("%d cams", len(i.preset.Cams))
}

// camItem wraps [models.Webcam] to implement [list.Item].
type camItem struct {
	cam      models.Webcam
	inPreset bool
}

func (i camItem) FilterValue() string { return i.cam.Name }
func (i camItem) Title() string {
	if i.inPreset {
		return "✓ " + i.cam.Name
	}
	return i.cam.Name
}
func (i camItem) Description() string {
	return fmt.Sprintf("%s • %.4f, %.4f", i.cam.Provider, i.cam.Latitude, i.cam.Longitude)
}
