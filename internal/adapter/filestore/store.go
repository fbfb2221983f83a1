// Package filestore persists city records, the add queue, the changelog and
// the rankings summary as JSON documents on the local filesystem.
//
// Every document is replaced whole: the new content is written to a temporary
// file in the same directory and renamed over the old one, so readers never
// observe a partial write.
package filestore

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Paths locates the documents managed by the store.
type Paths struct {
	DataDir       string
	QueueFile     string
	ChangelogFile string
	RankingsFile  string
}

// Store groups the four document stores behind one set of paths.
type Store struct {
	Records   *RecordStore
	Queue     *QueueStore
	Changelog *ChangelogStore
	Rankings  *RankingsStore
}

// New creates a Store. cacheSize bounds the record cache; metrics may be nil.
func New(paths Paths, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	records, err := NewRecordStore(paths.DataDir, cacheSize, logger, metrics)
	if err != nil {
		return nil, err
	}
	return &Store{
		Records:   records,
		Queue:     NewQueueStore(paths.QueueFile),
		Changelog: NewChangelogStore(paths.ChangelogFile),
		Rankings:  NewRankingsStore(paths.RankingsFile),
	}, nil
}

// CheckReadiness reports whether the record directory is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.Records.CheckReadiness(ctx)
}

// encode renders v as two-space indented JSON with a trailing newline.
func encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// writeFileAtomic replaces path with data via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// readArray decodes a JSON array document into dst. A missing file leaves
// dst untouched and is not an error.
func readArray(path string, dst any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
