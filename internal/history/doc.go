// Package history persists one row per pipeline run in an embedded SQLite
// database so operators can review what was generated, where it was written,
// and why a run failed.
//
// The store is append-mostly: Begin inserts a running row, Update records the
// last stage reached and the final status, and Prune trims old rows. All
// writes retry briefly on SQLITE_BUSY so a watch-mode process and an ad-hoc
// CLI invocation can share the file.
package history
