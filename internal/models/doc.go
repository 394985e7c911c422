// Package models defines the domain entities shared by every layer of alpencams.
//
// The package contains two categories of types:
//
// 1. Catalog types:
//   - [Webcam] : A single camera from the scraped catalog. The catalog ordinal
//     is assigned by position and is not stable across catalog regenerations,
//     so cross-backend references always use the camera name.
//
// 2. Preset types:
//   - [PresetEntity] : The persisted form of a preset, referencing cameras by name
//   - [Preset] : The hydrated view form with resolved [Webcam] values
//   - [UserSettings] : Per-identity selection state and the visited flag
//
// Two sentinel presets (Default and Random) carry fixed ids and are guaranteed
// to exist after engine initialization. The Random preset never persists its
// camera list; it is resampled from the catalog whenever it is selected.
package models
