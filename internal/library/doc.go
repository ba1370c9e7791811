// Package library persists works, verses, and commentary as whole JSON
// documents on a directory-per-entity layout and exposes helpers for
// identifier generation, language normalization, and tombstoned deletes.
//
// The Store owns the on-disk layout: one directory per work containing
// work.json, a verses/ directory of one file per verse, and a
// commentary/<verse_id|work>/ directory per commentary scope. Deletes move
// files into a parallel trash/ tree and append a tombstone record; nothing
// under trash/ is ever removed by the store itself.
//
// Writes are whole-file replacements with no intra-file locking. Two
// concurrent writers to the same document race and the later write wins;
// callers that need stronger guarantees must serialize above this package.
//
// Treat this package as the single source of truth for document semantics;
// when you add review states or actions, update models.go and the review
// package together.
package library
