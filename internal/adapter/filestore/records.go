package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
)

// ErrInvalidCityID is returned for ids that could escape the data directory.
var ErrInvalidCityID = errors.New("invalid city id")

const recordExt = ".json"

// RecordStore keeps one JSON document per city under a directory.
type RecordStore struct {
	dir     string
	cache   *recordCache
	logger  *slog.Logger
	metrics *observability.Metrics

	// locks holds one *sync.Mutex per city id.
	locks sync.Map
}

// NewRecordStore creates a RecordStore rooted at dir.
func NewRecordStore(dir string, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) (*RecordStore, error) {
	cache, err := newRecordCache(cacheSize)
	if err != nil {
		return nil, err
	}
	return &RecordStore{
		dir:     dir,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Dir returns the record directory.
func (s *RecordStore) Dir() string { return s.dir }

// ValidateCityID rejects ids that are empty or contain path elements.
func ValidateCityID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || id != filepath.Base(id) {
		return fmt.Errorf("%w: %q", ErrInvalidCityID, id)
	}
	return nil
}

func (s *RecordStore) path(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}

func (s *RecordStore) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Load returns the record for id. The boolean is false when no document exists.
func (s *RecordStore) Load(ctx context.Context, id string) (domain.CityRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.CityRecord{}, false, err
	}
	if err := ValidateCityID(id); err != nil {
		return domain.CityRecord{}, false, err
	}

	unlock := s.lock(id)
	defer unlock()

	rec, err := s.readFile(id)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.CityRecord{}, false, nil
	}
	if err != nil {
		return domain.CityRecord{}, false, err
	}
	return rec, true, nil
}

// List loads every record in the directory in filename order. Documents that
// cannot be decoded are logged and skipped. A missing directory is empty.
func (s *RecordStore) List(ctx context.Context) ([]domain.CityRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]domain.CityRecord, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != recordExt {
			continue
		}
		id := strings.TrimSuffix(name, recordExt)
		if ValidateCityID(id) != nil {
			continue
		}

		unlock := s.lock(id)
		rec, err := s.readFile(id)
		unlock()
		if err != nil {
			s.logger.Warn("skipping unreadable city record", "file", name, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Save replaces the document for rec.CityID and refreshes the cache.
func (s *RecordStore) Save(ctx context.Context, rec domain.CityRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateCityID(rec.CityID); err != nil {
		return err
	}

	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("encode city %s: %w", rec.CityID, err)
	}

	unlock := s.lock(rec.CityID)
	defer unlock()

	path := s.path(rec.CityID)
	if err := writeFileAtomic(path, data); err != nil {
		s.cache.remove(rec.CityID)
		return fmt.Errorf("save city %s: %w", rec.CityID, err)
	}
	if info, err := os.Stat(path); err == nil {
		s.cache.put(rec.CityID, info, rec)
	} else {
		s.cache.remove(rec.CityID)
	}
	s.logger.Debug("saved city record", "city_id", rec.CityID)
	return nil
}

// CheckReadiness reports whether the record directory exists and is a directory.
func (s *RecordStore) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("record directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("record directory %s is not a directory", s.dir)
	}
	return nil
}

// readFile decodes one record, serving it from the cache while the file's
// size and modification time are unchanged. Callers hold the id's lock.
func (s *RecordStore) readFile(id string) (domain.CityRecord, error) {
	path := s.path(id)
	info, err := os.Stat(path)
	if err != nil {
		return domain.CityRecord{}, err
	}

	if rec, ok := s.cache.get(id, info); ok {
		s.countCache("hit")
		return rec, nil
	}
	s.countCache("miss")

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CityRecord{}, err
	}
	var rec domain.CityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CityRecord{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if rec.CityID == "" {
		rec.CityID = id
	}
	s.cache.put(id, info, rec)
	return rec, nil
}

func (s *RecordStore) countCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordCache.WithLabelValues(result).Inc()
	}
}
