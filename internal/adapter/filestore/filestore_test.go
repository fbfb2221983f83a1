package filestore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := New(Paths{
		DataDir:       filepath.Join(root, "data", "cities"),
		QueueFile:     filepath.Join(root, "data", "city_queue.json"),
		ChangelogFile: filepath.Join(root, "logs", "changelog.json"),
		RankingsFile:  filepath.Join(root, "data", "rankings.json"),
	}, 16, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	return s, root
}

func sampleRecord(id string, score float64) domain.CityRecord {
	return domain.CityRecord{
		CityID:             id,
		Name:               "Tokyo",
		Country:            "Japan",
		Scores:             map[string]domain.CategoryScore{domain.CategoryCrime: {Score: score}},
		OverallSafetyScore: &score,
		SafetyTier:         domain.TierVerySafe,
		LastUpdated:        "2025-01-01T00:00:00Z",
	}
}

func TestRecordStore_SaveLoad(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, found, err := s.Records.Load(ctx, "tokyo-japan")
	require.NoError(t, err)
	assert.False(t, found)

	rec := sampleRecord("tokyo-japan", 88)
	require.NoError(t, s.Records.Save(ctx, rec))

	got, found, err := s.Records.Load(ctx, "tokyo-japan")
	require.NoError(t, err)
	require.True(t, found)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(s.Records.Dir(), "tokyo-japan.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"city_id\": \"tokyo-japan\"")
}

func TestRecordStore_RejectsUnsafeIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", `a\b`, "..", "x..y"} {
		err := s.Records.Save(ctx, domain.CityRecord{CityID: id})
		assert.ErrorIs(t, err, ErrInvalidCityID, id)

		_, _, err = s.Records.Load(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidCityID, id)
	}
}

func TestRecordStore_List(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	records, err := s.Records.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "missing directory lists as empty")

	require.NoError(t, s.Records.Save(ctx, sampleRecord("b-city", 60)))
	require.NoError(t, s.Records.Save(ctx, sampleRecord("a-city", 70)))

	dir := s.Records.Dir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "no-id-city.json"), []byte(`{"name":"No Id","custom":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".a-city.json.tmp-1"), []byte(`{}`), 0o644))

	records, err = s.Records.List(ctx)
	require.NoError(t, err)

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.CityID
	}
	assert.Equal(t, []string{"a-city", "b-city", "no-id-city"}, ids)
	assert.Contains(t, records[2].Extra, "custom")
}

func TestRecordStore_ListKeepsOddlyShapedScores(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Records.Save(ctx, sampleRecord("oslo-norway", 88)))
	dir := s.Records.Dir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cairo-egypt.json"),
		[]byte(`{"city_id":"cairo-egypt","name":"Cairo","scores":{"crime":{"score":40},"health":"n/a"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lima-peru.json"),
		[]byte(`{"city_id":"lima-peru","name":"Lima","scores":[]}`), 0o644))

	records, err := s.Records.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "cairo-egypt", records[0].CityID)
	assert.Equal(t, 40.0, records[0].Scores[domain.CategoryCrime].Score)
	assert.Equal(t, 0.0, records[0].Scores[domain.CategoryHealth].Score)
	assert.Equal(t, "lima-peru", records[1].CityID)
	assert.False(t, records[1].HasScores())
	assert.Equal(t, "oslo-norway", records[2].CityID)
}

func TestRecordStore_CacheTracksFileChanges(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Records.Save(ctx, sampleRecord("lima-peru", 50)))
	assert.Equal(t, 1, s.Records.cache.lru.Len())

	_, _, err := s.Records.Load(ctx, "lima-peru")
	require.NoError(t, err)

	// An edit outside the store must not be masked by the cache.
	path := filepath.Join(s.Records.Dir(), "lima-peru.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"city_id":"lima-peru","name":"Lima, edited by hand"}`), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	got, found, err := s.Records.Load(ctx, "lima-peru")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Lima, edited by hand", got.Name)
	assert.Nil(t, got.Scores)
}

func TestRecordStore_LoadReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Records.Save(ctx, sampleRecord("oslo-norway", 90)))

	first, _, err := s.Records.Load(ctx, "oslo-norway")
	require.NoError(t, err)
	first.Scores[domain.CategoryCrime] = domain.CategoryScore{Score: 1}

	second, _, err := s.Records.Load(ctx, "oslo-norway")
	require.NoError(t, err)
	assert.Equal(t, 90.0, second.Scores[domain.CategoryCrime].Score)
}

func TestRecordStore_CheckReadiness(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.CheckReadiness(ctx))
	require.NoError(t, os.MkdirAll(s.Records.Dir(), 0o755))
	assert.NoError(t, s.CheckReadiness(ctx))
}

func TestQueueStore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	entries, err := s.Queue.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	queue := []domain.QueueEntry{
		{Name: "Tokyo", Country: "Japan"},
		{Name: "Lima", Country: "Peru"},
		{Name: "Cairo", Country: "Egypt"},
	}
	require.NoError(t, s.Queue.Replace(ctx, queue))

	left, err := s.Queue.Consume(ctx, queue[:2])
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	entries, err = s.Queue.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, queue[2:], entries)
}

func TestQueueStore_ConsumeKeepsConcurrentEdits(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	batch := []domain.QueueEntry{{Name: "Tokyo", Country: "Japan"}, {Name: "Lima", Country: "Peru"}}
	// Someone prepended an entry after the batch was read.
	edited := []domain.QueueEntry{{Name: "Accra", Country: "Ghana"}, batch[0], batch[1], {Name: "Doha", Country: "Qatar"}}
	require.NoError(t, s.Queue.Replace(ctx, edited))

	left, err := s.Queue.Consume(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	entries, err := s.Queue.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.QueueEntry{edited[0], edited[3]}, entries)
}

func TestQueueStore_LegacyKeysAndEmptyWrite(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Dir(s.Queue.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Queue.Path(), []byte(`[{"city":"Kigali","country":"Rwanda"}]`), 0o644))

	entries, err := s.Queue.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kigali", entries[0].Name)

	_, err = s.Queue.Consume(ctx, entries)
	require.NoError(t, err)
	data, err := os.ReadFile(s.Queue.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestChangelogStore_Append(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := domain.ChangelogEntry{Timestamp: "2025-01-01T00:00:00Z", Action: domain.ActionAdd, CityID: "tokyo-japan", Details: "New city added with score 88"}
	second := domain.ChangelogEntry{Timestamp: "2025-01-02T00:00:00Z", Action: domain.ActionRankings, CityID: "all", Details: "Recalculated rankings for 1 cities"}
	require.NoError(t, s.Changelog.Append(ctx, first))
	require.NoError(t, s.Changelog.Append(ctx, second))

	entries, err := s.Changelog.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ChangelogEntry{first, second}, entries)
}

func TestChangelogStore_CorruptFile(t *testing.T) {
	s, root := newTestStore(t)
	path := filepath.Join(root, "logs", "changelog.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"oops":`), 0o644))

	err := s.Changelog.Append(context.Background(), domain.ChangelogEntry{Action: domain.ActionAdd})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"oops":`, string(data), "corrupt changelog left untouched")
}

func TestRankingsStore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	got, err := s.Rankings.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := []domain.RankingEntry{
		{Rank: 1, CityID: "oslo-norway", Name: "Oslo", Country: "Norway", Score: 90.5, Tier: domain.TierVerySafe, Trending: domain.TrendStable},
	}
	require.NoError(t, s.Rankings.Write(ctx, want))

	got, err = s.Rankings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Records.Save(ctx, sampleRecord("x-y", 1)), context.Canceled)
	_, err := s.Queue.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Changelog.Append(ctx, domain.ChangelogEntry{}), context.Canceled)
}
