package filestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

// RankingsStore holds the leaderboard summary, regenerated on every ranking pass.
type RankingsStore struct {
	path string
	mu   sync.Mutex
}

// NewRankingsStore creates a RankingsStore backed by path.
func NewRankingsStore(path string) *RankingsStore {
	return &RankingsStore{path: path}
}

// Write replaces the rankings document.
func (r *RankingsStore) Write(ctx context.Context, entries []domain.RankingEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	data, err := encode(entries)
	if err != nil {
		return fmt.Errorf("encode rankings: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("write rankings: %w", err)
	}
	return nil
}

// Load returns the current rankings. A missing file yields no entries.
func (r *RankingsStore) Load(ctx context.Context) ([]domain.RankingEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []domain.RankingEntry
	if err := readArray(r.path, &entries); err != nil {
		return nil, fmt.Errorf("load rankings: %w", err)
	}
	return entries, nil
}
