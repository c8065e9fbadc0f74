package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"unigov/internal/models"

	"github.com/google/uuid"
)

// manifestFile is written under the data root after every scrape run.
const manifestFile = "manifest.json"

// Manifest records the outcome of one scrape run. It supplements the
// category files and is never read by the build phase.
type Manifest struct {
	RunID      string         `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Units      []ManifestUnit `json:"units"`
}

// ManifestUnit is the outcome of one (body, session, category) unit.
type ManifestUnit struct {
	Body     string          `json:"body"`
	Session  string          `json:"session"`
	Category models.Category `json:"category"`
	Records  int             `json:"records"`
	Skipped  int             `json:"skipped"`
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
}

// NewManifest starts a manifest for a scrape run.
func NewManifest() *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// AddUnit appends one unit outcome.
func (m *Manifest) AddUnit(unit ManifestUnit) {
	m.Units = append(m.Units, unit)
}

// WriteManifest stamps the finish time and writes the manifest atomically
// under the data root.
func (s *Store) WriteManifest(m *Manifest) error {
	m.FinishedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	return WriteFileAtomic(filepath.Join(s.dataDir, manifestFile), data)
}
