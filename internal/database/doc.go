// Package database keeps the export journal: a SQLite file under the XDG
// data directory that records every annotate run.
//
// Each run stores the document fingerprint and name, when it ran, summary
// counts and the full report as JSON. Files written by the run are kept in
// a separate table so they can be listed per document.
//
// The journal uses modernc.org/sqlite, a CGO-free driver, so the binary
// cross-compiles without a C toolchain.
package database
