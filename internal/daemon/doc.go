// Package daemon hosts the long-running kosha service: it enforces
// single-instance execution with a lock file, owns the session registry,
// and exposes the library over a local HTTP API.
//
// The daemon is intentionally thin. All document and review semantics live
// in the api.Service it wraps; the daemon only adds process lifecycle,
// authentication, and HTTP plumbing.
package daemon
