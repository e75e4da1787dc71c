package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/aisocjobs/internal/model"
)

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Jobs: []model.Posting{
			{
				Title:          "AI Ethics Policy Researcher",
				Company:        "Center for Technology Policy",
				SourceURL:      "https://example.com/jobs/1?ref=feed&utm=x",
				SourceSite:     "rss_jobs",
				RelevanceScore: 85,
			},
		},
		Stats: model.Stats{
			Total:      1,
			ByJobType:  map[string]int{"industry": 1},
			ByCategory: map[string]int{"policy": 1},
			BySource:   map[string]int{"rss_jobs": 1},
		},
		Metadata: model.SnapshotMetadata{
			RunID:      "run-1",
			TotalJobs:  1,
			LastUpdate: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Sources:    []string{"rss"},
		},
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}

	if err := s.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].Title != "AI Ethics Policy Researcher" {
		t.Errorf("unexpected jobs after round trip: %+v", got.Jobs)
	}
	if got.Metadata.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", got.Metadata.RunID)
	}
}

func TestSaveWritesAllThreeFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}

	if err := s.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, name := range []string{snapshotFile, summaryFile, lastRunFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	// The summary must not embed the posting list.
	data, err := os.ReadFile(filepath.Join(dir, summaryFile))
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	var summary map[string]json.RawMessage
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("parsing summary: %v", err)
	}
	if _, ok := summary["jobs"]; ok {
		t.Error("summary should not contain a jobs array")
	}
}

func TestSaveDoesNotEscapeURLs(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	if err := s.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("snapshot is not valid JSON")
	}
	if want := "ref=feed&utm=x"; !strings.Contains(string(data), want) {
		t.Errorf("expected unescaped URL query %q in snapshot", want)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}

	_, err = s.Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestFailedWriteKeepsPriorSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	if err := s.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A write that dies before the rename must not touch the file
	// under the final name. Channels cannot be encoded, so this aborts
	// mid-write exactly like a crash would.
	if err := s.writeAtomic(snapshotFile, make(chan int)); err == nil {
		t.Fatal("expected writeAtomic to fail for unencodable value")
	}

	data, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if err != nil {
		t.Fatalf("reading snapshot after failed write: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("snapshot corrupted by failed write")
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load after failed write: %v", err)
	}
	if got.Metadata.RunID != "run-1" {
		t.Errorf("RunID = %q, want the prior run-1 intact", got.Metadata.RunID)
	}

	// And the aborted temp file is cleaned up.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s after failed write", e.Name())
		}
	}
}

func TestInterruptedWriterLeavesFinalFileIntact(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	if err := s.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Plant the truncated temp file a writer killed mid-write would
	// leave behind; it must never shadow the committed snapshot.
	stray := filepath.Join(dir, snapshotFile+".tmp-898989")
	if err := os.WriteFile(stray, []byte(`{"jobs": [{"title": "Trunc`), 0o644); err != nil {
		t.Fatalf("planting stray temp file: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].Title != "AI Ethics Policy Researcher" {
		t.Errorf("unexpected snapshot contents: %+v", got.Jobs)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir)
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	if err := s.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" && e.Name() != lockFile {
			t.Errorf("unexpected leftover file %s", e.Name())
		}
	}
}
