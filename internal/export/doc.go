// Package export derives read-only projections from the document store.
//
// Three projections exist: a merged snapshot with review metadata intact
// (backups and build artifacts), a clean snapshot stripped of reviewer
// identity and internal review fields (external consumption), and training
// lines in JSON Lines form for corpus construction. Projections are computed
// on demand and never cached; nothing here writes to the store.
package export
