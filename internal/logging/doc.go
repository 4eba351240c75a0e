// Package logging builds the slog loggers used across the CLI. Console
// output uses the text handler; json emits one object per record for log
// shippers.
package logging
