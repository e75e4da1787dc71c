package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/amishk599/aisocjobs/internal/model"
)

const (
	snapshotFile = "ai_society_jobs.json"
	summaryFile  = "scraping_summary.json"
	lastRunFile  = "last_update.json"
	lockFile     = ".aisocjobs.lock"
)

// runSummary is the stats-only view written alongside the full snapshot
// for consumers that do not want the posting list.
type runSummary struct {
	Stats    model.Stats            `json:"stats"`
	Metadata model.SnapshotMetadata `json:"metadata"`
}

// lastRun records when the most recent collection completed.
type lastRun struct {
	RunID      string    `json:"run_id"`
	LastUpdate time.Time `json:"last_update"`
	TotalJobs  int       `json:"total_jobs"`
}

// SnapshotStore persists collection snapshots as JSON files in a data
// directory. Writes go to a temp file first and are renamed into place,
// so readers never observe a partially written snapshot. A file lock
// guards against concurrent runs on the same directory.
type SnapshotStore struct {
	dir  string
	lock *flock.Flock
}

// NewSnapshotStore creates the data directory if needed and returns a
// store rooted there.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &SnapshotStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

// Save writes the snapshot, its stats summary, and the last-update
// marker. Each file is written atomically; the snapshot is written
// first so the marker never points at data that does not exist.
func (s *SnapshotStore) Save(snap model.Snapshot) error {
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring data directory lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("data directory %s is locked by another run", s.dir)
	}
	defer s.lock.Unlock()

	if err := s.writeAtomic(snapshotFile, snap); err != nil {
		return err
	}

	summary := runSummary{Stats: snap.Stats, Metadata: snap.Metadata}
	if err := s.writeAtomic(summaryFile, summary); err != nil {
		return err
	}

	marker := lastRun{
		RunID:      snap.Metadata.RunID,
		LastUpdate: snap.Metadata.LastUpdate,
		TotalJobs:  snap.Metadata.TotalJobs,
	}
	return s.writeAtomic(lastRunFile, marker)
}

// Load reads the most recently saved snapshot. A missing file is
// returned as os.ErrNotExist so callers can distinguish "no run yet"
// from corruption.
func (s *SnapshotStore) Load() (model.Snapshot, error) {
	var snap model.Snapshot
	data, err := os.ReadFile(filepath.Join(s.dir, snapshotFile))
	if err != nil {
		return snap, fmt.Errorf("reading snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parsing snapshot: %w", err)
	}
	return snap, nil
}

// writeAtomic marshals v and renames a temp file over the target path.
func (s *SnapshotStore) writeAtomic(name string, v any) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
