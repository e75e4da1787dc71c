package store

import "time"

// NopStore is a no-op seen store used in dry-run mode. It never marks
// postings as seen, so every posting appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(key string) (bool, error)      { return false, nil }
func (s *NopStore) MarkSeen(key string) error             { return nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error { return nil }
func (s *NopStore) IsEmpty() (bool, error)                { return false, nil }
