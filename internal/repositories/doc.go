// Package repositories implements the storage backend contract for presets and settings.
//
// Two interchangeable backends satisfy [Repository]:
//   - [LocalRepository] : device-scoped JSON key-value persistence, one file per device
//   - [RemoteRepository] : account-scoped SQLite records, one row set per identity
//
// Backends store exactly what they are told. The FIFO capacity rule for preset
// cameras is engine policy; the remote cam procedures additionally enforce it
// inside a transaction so a row can never exceed the cap regardless of caller.
//
// [Selector] picks a backend per call from a closed mode set (local, remote,
// auto). It keeps no state, so the auto mode always reflects the current
// authentication state.
package repositories
