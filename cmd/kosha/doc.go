// Package main hosts the kosha CLI entrypoint and command graph.
//
// The Cobra-based command tree operates on the library directly: it opens
// the document store, review engine, and exporters in-process rather than
// proxying through the daemon, so curation keeps working when koshad is
// down. It centralizes configuration resolution and store wiring so
// subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
