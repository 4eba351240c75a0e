// Package history persists the CLI's submission record in SQLite.
//
// Each row captures one submission: the client-side identifier, the server
// resource id, what was submitted, the requested sizes, and the last observed
// status. The database is a convenience log for 'embdr history', not a source
// of truth — the server owns resource state. A file lock beside the database
// serializes schema setup across concurrent CLI invocations.
package history
