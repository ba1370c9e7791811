package api

import (
	"kosha/internal/library"
	"kosha/internal/review"
)

// StatusSummary aggregates library counts for status displays.
type StatusSummary struct {
	Works      int            `json:"works"`
	Verses     int            `json:"verses"`
	Commentary int            `json:"commentary"`
	States     map[string]int `json:"states"`
}

// DaemonStatus describes daemon runtime information for the status endpoint.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	LibraryDir   string        `json:"library_dir"`
	LockFilePath string        `json:"lock_file_path"`
	Library      StatusSummary `json:"library"`
}

// TransitionRequest is the payload for a single review transition.
type TransitionRequest struct {
	Kind   string   `json:"kind"` // "verse" or "commentary"
	ID     string   `json:"id"`
	Action string   `json:"action"`
	Actor  string   `json:"actor"`
	Issues []string `json:"issues,omitempty"`
}

// BulkTransitionRequest applies one action to a batch of verse ids.
type BulkTransitionRequest struct {
	VerseIDs []string `json:"verse_ids"`
	Action   string   `json:"action"`
	Actor    string   `json:"actor"`
	Issues   []string `json:"issues,omitempty"`
}

// BulkTransitionResponse mirrors review.BulkResult on the wire.
type BulkTransitionResponse = review.BulkResult

// LoginRequest authenticates an actor against the daemon.
type LoginRequest struct {
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string   `json:"token"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	ExpiresAt string   `json:"expires_at,omitempty"`
}

// TombstoneList wraps tombstones for JSON responses.
type TombstoneList struct {
	Items []library.Tombstone `json:"items"`
	Total int                 `json:"total"`
}
