package library

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"kosha/internal/config"
	"kosha/internal/logging"
)

// Store manages document persistence on the library directory tree.
type Store struct {
	root     string
	required []string
	logger   *slog.Logger
}

// Open prepares the library directory tree and returns a store. The required
// language list is captured from config and applied by the normalizer on
// every write.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, Wrap(ErrStorage, "library", "open", "ensure directories", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		root:     cfg.Paths.LibraryDir,
		required: append([]string(nil), cfg.Languages.Required...),
		logger:   logger.With(slog.String(logging.FieldComponent, "library")),
	}, nil
}

// Root returns the library root directory.
func (s *Store) Root() string { return s.root }

// RequiredLanguages returns the store-wide required language codes.
func (s *Store) RequiredLanguages() []string {
	return append([]string(nil), s.required...)
}

const (
	workFileName     = "work.json"
	versesDirName    = "verses"
	commentaryDir    = "commentary"
	trashDirName     = "trash"
	tombstoneLogName = "tombstones.jsonl"
)

func (s *Store) workDir(workID string) string {
	return filepath.Join(s.root, workID)
}

func (s *Store) workFile(workID string) string {
	return filepath.Join(s.workDir(workID), workFileName)
}

func (s *Store) versesDir(workID string) string {
	return filepath.Join(s.workDir(workID), versesDirName)
}

func (s *Store) verseFile(workID, verseID string) string {
	return filepath.Join(s.versesDir(workID), verseID+".json")
}

func (s *Store) commentaryScopeDir(workID string, scope Scope) string {
	return filepath.Join(s.workDir(workID), commentaryDir, scope.Dir())
}

func (s *Store) commentaryFile(workID string, scope Scope, commentaryID string) string {
	return filepath.Join(s.commentaryScopeDir(workID, scope), commentaryID+".json")
}

func (s *Store) trashDir() string {
	return filepath.Join(s.root, trashDirName)
}

func (s *Store) tombstoneLog() string {
	return filepath.Join(s.trashDir(), tombstoneLogName)
}

// relPath converts an absolute path under the library root into the relative
// form recorded on tombstones.
func (s *Store) relPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

var workIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// validateWorkID rejects identifiers that are unsafe as directory names or
// collide with reserved layout names.
func validateWorkID(workID string) error {
	trimmed := strings.TrimSpace(workID)
	if trimmed == "" {
		return Wrap(ErrBadRequest, "work", "validate id", "work_id must not be empty", nil)
	}
	if trimmed != workID {
		return Wrap(ErrBadRequest, "work", "validate id", "work_id must not contain surrounding whitespace", nil)
	}
	if !workIDPattern.MatchString(workID) {
		return Wrap(ErrBadRequest, "work", "validate id", "work_id may only contain letters, digits, '.', '_', and '-'", nil)
	}
	if workID == trashDirName {
		return Wrap(ErrBadRequest, "work", "validate id", `"trash" is reserved`, nil)
	}
	return nil
}
