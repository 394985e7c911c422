// Package presets implements the preset synchronization engine.
//
// [Engine] owns the in-memory preset list and user settings, and keeps them
// consistent with whichever storage backend is active. Its lifecycle follows
// three conceptual states: uninitialized, local-only, reconciled.
//
// [Engine.Init] runs once per session. With a signed-in identity it
// reconciles against the remote backend: an unvisited remote adopts the
// device's local data in a one-time migration (remote's visited flag is the
// migration lock), a visited remote is authoritative and the device data is
// left untouched. Without an identity it bootstraps from local data, seeding
// the two sentinel presets on a true first visit.
//
// Sign-out transitions reset the device store to the sentinel presets.
// Mutations (toggle, switch, create, remove) write through to the active
// backend one call at a time; the engine never issues concurrent writes for
// the same identity. A mutex serializes all entry points, which is what lets
// concurrent callers (the HTTP layer, the TUI) share one engine.
package presets
