package filestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

// QueueStore persists the FIFO list of cities waiting to be generated.
type QueueStore struct {
	path string
	mu   sync.Mutex
}

// NewQueueStore creates a QueueStore backed by path.
func NewQueueStore(path string) *QueueStore {
	return &QueueStore{path: path}
}

// Path returns the queue document path.
func (q *QueueStore) Path() string { return q.path }

// Load returns the queued entries. A missing file is an empty queue.
func (q *QueueStore) Load(ctx context.Context) ([]domain.QueueEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Replace overwrites the queue with entries.
func (q *QueueStore) Replace(ctx context.Context, entries []domain.QueueEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.save(entries)
}

// Consume removes batch from the head of the queue and returns the number of
// entries left. The queue is re-read first so entries appended while the batch
// was being processed survive. Batch entries no longer at the head are removed
// wherever they first appear.
func (q *QueueStore) Consume(ctx context.Context, batch []domain.QueueEntry) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	current, err := q.load()
	if err != nil {
		return 0, err
	}
	remaining := removeEntries(current, batch)
	if err := q.save(remaining); err != nil {
		return 0, err
	}
	return len(remaining), nil
}

func removeEntries(current, batch []domain.QueueEntry) []domain.QueueEntry {
	if hasPrefix(current, batch) {
		return append([]domain.QueueEntry{}, current[len(batch):]...)
	}
	out := append([]domain.QueueEntry{}, current...)
	for _, b := range batch {
		for i, e := range out {
			if e == b {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out
}

func hasPrefix(entries, prefix []domain.QueueEntry) bool {
	if len(prefix) > len(entries) {
		return false
	}
	for i := range prefix {
		if entries[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (q *QueueStore) load() ([]domain.QueueEntry, error) {
	var entries []domain.QueueEntry
	if err := readArray(q.path, &entries); err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	return entries, nil
}

func (q *QueueStore) save(entries []domain.QueueEntry) error {
	if entries == nil {
		entries = []domain.QueueEntry{}
	}
	data, err := encode(entries)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}
	if err := writeFileAtomic(q.path, data); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}
	return nil
}
