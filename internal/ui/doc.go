// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing webcam presets:
//  1. [PresetListView] : Browse presets; enter selects one
//  2. [CamListView] : The selected preset's cameras; delete toggles one off
//  3. [CatalogView] : The full catalog with filtering; enter toggles a camera onto the selected preset
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. All preset mutations go through the synchronization engine, so
// the TUI observes the same state as the HTTP surface.
package ui
