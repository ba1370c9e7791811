package library

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kosha/internal/fileutil"
)

// trash relocates path into the trash tree, mirroring its position relative
// to the library root, and appends a tombstone. The destination is uniquified
// with a timestamp when a trashed entity of the same name already exists;
// earlier tombstones are never overwritten.
func (s *Store) trash(entityType, workID, id, actor, path string) (*Tombstone, error) {
	rel := s.relPath(path)
	dest := filepath.Join(s.trashDir(), filepath.FromSlash(rel))
	if _, err := os.Stat(dest); err == nil {
		dest = uniquifyTrashPath(dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, Wrap(ErrStorage, entityType, "delete", "stat trash destination", err)
	}
	if err := fileutil.Move(path, dest); err != nil {
		return nil, Wrap(ErrStorage, entityType, "delete", "move to trash", err)
	}
	tombstone := &Tombstone{
		Type:      entityType,
		WorkID:    workID,
		ID:        id,
		DeletedAt: time.Now().UTC(),
		Actor:     actor,
		From:      rel,
		To:        s.relPath(dest),
	}
	if err := fileutil.AppendJSONLine(s.tombstoneLog(), tombstone); err != nil {
		return nil, Wrap(ErrStorage, entityType, "delete", "append tombstone", err)
	}
	return tombstone, nil
}

// uniquifyTrashPath appends a nanosecond timestamp so repeated deletes of
// the same identifier never collide inside the trash tree.
func uniquifyTrashPath(dest string) string {
	ext := filepath.Ext(dest)
	stamp := fmt.Sprintf(".%d", time.Now().UnixNano())
	if ext == ".json" {
		return strings.TrimSuffix(dest, ext) + stamp + ext
	}
	return dest + stamp
}

// ListTombstones returns every recorded tombstone in append order. The
// tombstone log is append-only; the store never prunes it.
func (s *Store) ListTombstones(ctx context.Context) ([]Tombstone, error) {
	file, err := os.Open(s.tombstoneLog())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, Wrap(ErrStorage, "tombstone", "list", "open tombstone log", err)
	}
	defer file.Close()

	var tombstones []Tombstone
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var tombstone Tombstone
		if err := json.Unmarshal([]byte(line), &tombstone); err != nil {
			return nil, Wrap(ErrStorage, "tombstone", "list", "parse tombstone line", err)
		}
		tombstones = append(tombstones, tombstone)
	}
	if err := scanner.Err(); err != nil {
		return nil, Wrap(ErrStorage, "tombstone", "list", "scan tombstone log", err)
	}
	return tombstones, nil
}
