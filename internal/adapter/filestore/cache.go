package filestore

import (
	"fmt"
	"io/fs"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

// recordCache is an LRU of decoded records keyed by city id. An entry is only
// served while the file it was decoded from is unchanged on disk.
type recordCache struct {
	lru *lru.Cache[string, cachedRecord]
}

type cachedRecord struct {
	size    int64
	modTime time.Time
	rec     domain.CityRecord
}

func newRecordCache(maxEntries int) (*recordCache, error) {
	c, err := lru.New[string, cachedRecord](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create record cache: %w", err)
	}
	return &recordCache{lru: c}, nil
}

// get returns a copy of the cached record so callers cannot mutate the entry.
func (c *recordCache) get(id string, info fs.FileInfo) (domain.CityRecord, bool) {
	e, ok := c.lru.Get(id)
	if !ok {
		return domain.CityRecord{}, false
	}
	if e.size != info.Size() || !e.modTime.Equal(info.ModTime()) {
		c.lru.Remove(id)
		return domain.CityRecord{}, false
	}
	return e.rec.Clone(), true
}

func (c *recordCache) put(id string, info fs.FileInfo, rec domain.CityRecord) {
	c.lru.Add(id, cachedRecord{size: info.Size(), modTime: info.ModTime(), rec: rec.Clone()})
}

func (c *recordCache) remove(id string) {
	c.lru.Remove(id)
}
