package review

import (
	"context"
	"path/filepath"
	"time"

	"kosha/internal/fileutil"
	"kosha/internal/library"
)

// Record is one audit log line: a single review action applied to a verse or
// commentary entry.
type Record struct {
	Kind   string         `json:"kind"`
	WorkID string         `json:"work_id"`
	ID     string         `json:"id"`
	Actor  string         `json:"actor"`
	Action library.Action `json:"action"`
	From   library.State  `json:"from"`
	To     library.State  `json:"to"`
	Issues []string       `json:"issues,omitempty"`
	At     time.Time      `json:"at"`
}

// AuditLogger appends review actions to a date-partitioned JSONL log. Files
// are append-only; one file accumulates all lines for a UTC calendar day.
// Appends rely on OS per-line append atomicity; no internal locking is
// performed.
type AuditLogger struct {
	dir string
}

// NewAuditLogger returns an audit logger writing under dir.
func NewAuditLogger(dir string) *AuditLogger {
	return &AuditLogger{dir: dir}
}

// Append writes one line for the record to the current UTC date file.
// Failures surface as ErrStorage; audit writes are never silently dropped.
func (a *AuditLogger) Append(ctx context.Context, record Record) error {
	if record.At.IsZero() {
		record.At = time.Now().UTC()
	}
	path := filepath.Join(a.dir, record.At.UTC().Format("2006-01-02")+".jsonl")
	if err := fileutil.AppendJSONLine(path, record); err != nil {
		return library.Wrap(library.ErrStorage, "audit", "append", path, err)
	}
	return nil
}

// Path returns the audit file that would receive a record at the given time.
func (a *AuditLogger) Path(at time.Time) string {
	return filepath.Join(a.dir, at.UTC().Format("2006-01-02")+".jsonl")
}
