package library

import (
	"strings"
	"time"
)

// State represents the review lifecycle of a verse or commentary entry.
type State string

const (
	StateDraft         State = "draft"
	StateReviewPending State = "review_pending"
	StateApproved      State = "approved"
	StateRejected      State = "rejected"
	StateFlagged       State = "flagged"
	StateLocked        State = "locked"
)

var allStates = []State{
	StateDraft,
	StateReviewPending,
	StateApproved,
	StateRejected,
	StateFlagged,
	StateLocked,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// AllStates returns the ordered list of known review states.
func AllStates() []State {
	cp := make([]State, len(allStates))
	copy(cp, allStates)
	return cp
}

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// Action identifies a review transition applied to a verse or commentary.
type Action string

const (
	ActionSubmit        Action = "submit"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionFlag          Action = "flag"
	ActionLock          Action = "lock"
	ActionRollback      Action = "rollback"
	ActionSegmentUpdate Action = "segment_update"
)

var allActions = []Action{
	ActionSubmit,
	ActionApprove,
	ActionReject,
	ActionFlag,
	ActionLock,
	ActionRollback,
	ActionSegmentUpdate,
}

// ParseAction converts a string into a known Action.
func ParseAction(value string) (Action, bool) {
	normalized := Action(strings.ToLower(strings.TrimSpace(value)))
	for _, action := range allActions {
		if normalized == action {
			return action, true
		}
	}
	return "", false
}

// HistoryEntry records a single review transition. Entries are append-only;
// once written they are never edited or removed.
type HistoryEntry struct {
	Action Action    `json:"action"`
	From   State     `json:"from_state"`
	To     State     `json:"to_state"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
	Issues []string  `json:"issues,omitempty"`
}

// Review holds the current workflow state plus the ordered transition history.
type Review struct {
	State   State          `json:"state"`
	History []HistoryEntry `json:"history"`
}

// NewReview returns a review block in the draft state with empty history.
func NewReview() Review {
	return Review{State: StateDraft, History: []HistoryEntry{}}
}

// Edition describes one source edition a work draws its text from.
type Edition struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Year      string `json:"year,omitempty"`
}

// Work is a logical book or collection of verses and commentary. WorkID is
// used verbatim as the directory name and is immutable after creation.
type Work struct {
	WorkID         string            `json:"work_id"`
	Title          map[string]string `json:"title"`
	Langs          []string          `json:"langs"`
	Canonical      string            `json:"canonical_lang"`
	SourceEditions []Edition         `json:"source_editions,omitempty"`
	Structure      map[string]any    `json:"structure,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Meta captures entry provenance for a verse or commentary document.
type Meta struct {
	EnteredBy string    `json:"entered_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Verse is a canonical textual unit belonging to exactly one work.
// NumberManual is the human-assigned identifier, unique within the work and
// independent of the generated VerseID.
type Verse struct {
	VerseID      string              `json:"verse_id"`
	WorkID       string              `json:"work_id"`
	NumberManual string              `json:"number_manual"`
	Order        int                 `json:"order"`
	Texts        map[string]string   `json:"texts"`
	Segments     map[string][]string `json:"segments"`
	Tags         []string            `json:"tags,omitempty"`
	Origin       string              `json:"origin,omitempty"`
	Meta         Meta                `json:"meta"`
	Review       Review              `json:"review"`
}

// Authenticity records whether a commentary entry has been verified against
// its cited source.
type Authenticity struct {
	Verified bool   `json:"verified"`
	Notes    string `json:"notes,omitempty"`
}

// Priority ranks commentary for presentation ordering.
type Priority struct {
	Rank     int  `json:"rank"`
	Reviewed bool `json:"reviewed"`
}

// Commentary is a scholarly annotation attached to a verse, or to the work
// as a whole when VerseID is empty. Targets may list additional verses the
// entry applies to beyond its primary scope.
type Commentary struct {
	CommentaryID string            `json:"commentary_id"`
	WorkID       string            `json:"work_id"`
	VerseID      string            `json:"verse_id,omitempty"`
	Targets      []string          `json:"targets,omitempty"`
	Texts        map[string]string `json:"texts"`
	Speaker      string            `json:"speaker,omitempty"`
	Source       string            `json:"source,omitempty"`
	Genre        string            `json:"genre,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Authenticity *Authenticity     `json:"authenticity,omitempty"`
	Priority     *Priority         `json:"priority,omitempty"`
	Meta         Meta              `json:"meta"`
	Review       Review            `json:"review"`
}

// Scope returns the attachment scope for the commentary entry.
func (c *Commentary) Scope() Scope {
	if c == nil {
		return ScopeWork()
	}
	if strings.TrimSpace(c.VerseID) == "" {
		return ScopeWork()
	}
	return ScopeVerse(c.VerseID)
}

// Scope distinguishes commentary attached to a single verse from commentary
// attached to the work as a whole.
type Scope struct {
	verseID string
}

// ScopeWork returns the work-level commentary scope.
func ScopeWork() Scope { return Scope{} }

// ScopeVerse returns the scope for commentary attached to the given verse.
func ScopeVerse(verseID string) Scope {
	return Scope{verseID: strings.TrimSpace(verseID)}
}

// IsWork reports whether the scope targets the work as a whole.
func (s Scope) IsWork() bool { return s.verseID == "" }

// VerseID returns the scoped verse id, or empty for work-level scope.
func (s Scope) VerseID() string { return s.verseID }

// Dir returns the on-disk directory segment for the scope. Work-level
// commentary lives under the reserved directory name "work".
func (s Scope) Dir() string {
	if s.verseID == "" {
		return workScopeDir
	}
	return s.verseID
}

const workScopeDir = "work"

// Tombstone records a deletion so destructive operations stay recoverable.
// From and To are paths relative to the library root.
type Tombstone struct {
	Type      string    `json:"type"`
	WorkID    string    `json:"work_id"`
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
	Actor     string    `json:"actor,omitempty"`
	From      string    `json:"from"`
	To        string    `json:"to"`
}

// Entity type names recorded on tombstones.
const (
	TypeWork       = "work"
	TypeVerse      = "verse"
	TypeCommentary = "commentary"
)
