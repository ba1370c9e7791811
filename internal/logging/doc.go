// Package logging constructs the application slog logger.
//
// Two output formats are supported: a human console format for interactive
// use and JSON for log files and ingestion. NewFromConfig wires the format,
// level, and output paths from application config; WithContext enriches a
// logger with the work id, actor, and request id carried on a context.
package logging
