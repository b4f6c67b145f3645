// Package database provides SQLite-based storage for audit report history.
//
// This package implements the HistoryDB, which stores every persisted
// aggregate report along with denormalized summary columns for fast
// history listings. The compare command diffs two stored reports and the
// filter command can read the latest one back without a report file.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
