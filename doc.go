// Package enginelib reads and writes the on-disk library format used by
// Engine-family DJ software and hardware: SQLite-backed databases holding
// tracks, crates/playlists, and per-track analysis data (beatgrids,
// waveforms, cue points, loops) as opaque schema-versioned BLOBs.
//
// Open a library with CreateDatabase, LoadDatabase, or CreateOrLoad, then
// drive it through Database, Crate, and Track handles. A Database owns its
// backing connection(s) exclusively; see the package-level concurrency
// note on Database for the threading contract.
package enginelib
