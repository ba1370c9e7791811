// Package review drives verse and commentary documents through the review
// workflow.
//
// The transition graph is a deliberately permissive star: approve, reject,
// flag, and lock are legal from any state provided their pre-conditions
// hold, rather than enforcing a strict pipeline. Every transition appends an
// immutable history entry on the document, persists it, and writes one line
// to the date-partitioned audit log. Bulk operations isolate per-item
// failures so one bad id cannot abort a batch.
package review
