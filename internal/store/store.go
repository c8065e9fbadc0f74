// Package store persists normalized category records as JSON files keyed by
// (body, session, category).
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"unigov/internal/models"
)

// Store errors.
var (
	ErrNotFound = errors.New("category data not found")
	ErrCorrupt  = errors.New("category data is corrupt")
)

// Store reads and writes the per-(body, session, category) JSON files under
// the data directory.
type Store struct {
	dataDir string
}

// New creates a store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// CategoryPath returns the file path for one (body, session, category) unit.
func (s *Store) CategoryPath(body, session string, category models.Category) string {
	return filepath.Join(s.dataDir, "ga", body, session, string(category)+".json")
}

// Save writes the full record sequence as one pretty-printed JSON document,
// replacing any prior content atomically.
func (s *Store) Save(body, session string, category models.Category, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	path := s.CategoryPath(body, session, category)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	return WriteFileAtomic(path, data)
}

// Load reads one unit into out (a pointer to the category's record slice).
// Returns ErrNotFound when the file does not exist and ErrCorrupt when the
// content does not decode.
func (s *Store) Load(body, session string, category models.Category, out any) error {
	path := s.CategoryPath(body, session, category)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	return nil
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so no partial content is ever observable at path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
