package filestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

// ChangelogStore is the append-only audit trail, kept as one JSON array.
type ChangelogStore struct {
	path string
	mu   sync.Mutex
}

// NewChangelogStore creates a ChangelogStore backed by path.
func NewChangelogStore(path string) *ChangelogStore {
	return &ChangelogStore{path: path}
}

// Append adds entry to the end of the changelog.
func (c *ChangelogStore) Append(ctx context.Context, entry domain.ChangelogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []domain.ChangelogEntry
	if err := readArray(c.path, &entries); err != nil {
		return fmt.Errorf("load changelog: %w", err)
	}
	entries = append(entries, entry)

	data, err := encode(entries)
	if err != nil {
		return fmt.Errorf("encode changelog: %w", err)
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("append changelog: %w", err)
	}
	return nil
}

// Entries returns the full changelog, oldest first.
func (c *ChangelogStore) Entries(ctx context.Context) ([]domain.ChangelogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []domain.ChangelogEntry
	if err := readArray(c.path, &entries); err != nil {
		return nil, fmt.Errorf("load changelog: %w", err)
	}
	return entries, nil
}
