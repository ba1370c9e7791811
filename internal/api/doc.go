// Package api exposes the library, review, and export operations behind a
// single service facade consumed by the daemon HTTP surface and the CLI.
//
// The facade owns the distinction between whole-document replacement and
// field merging: work updates are full replacements by contract, while verse
// and commentary updates also come in a patch variant that merges the
// supplied fields over the stored document before the store's whole-file
// write.
package api
