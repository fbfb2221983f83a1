// Command genmock writes a deterministic set of mock city records and the
// matching rankings summary. Records are built from the seed city list and
// pass through the same scoring, ranking and storage code as the agent.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/cities -count 40 -seed 7
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	"github.com/tsethwilliams/isitsafetovisit/internal/adapter/filestore"
	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

// mockNow is the fixed clock all generated timestamps are relative to.
var mockNow = clockwork.NewFakeClockAt(domain.DefaultStalenessPolicy().Fallback.AddDate(6, 0, 14))

const spreadDays = 60

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write city records into")
	rankings := flag.String("rankings", "", "rankings summary path (default: <out>/../rankings.json)")
	count := flag.Int("count", len(domain.SeedCities), "number of cities to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *count < 1 || *count > len(domain.SeedCities) {
		return fmt.Errorf("-count must be 1-%d", len(domain.SeedCities))
	}
	if *rankings == "" {
		*rankings = filepath.Join(filepath.Dir(filepath.Clean(*out)), "rankings.json")
	}

	scoring := domain.DefaultScoring()
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	records := make([]domain.CityRecord, 0, *count)
	for _, entry := range domain.SeedCities[:*count] {
		records = append(records, mockRecord(entry, scoring, rng))
	}
	ranked := scoring.Rank(records)

	ctx := context.Background()
	store, err := filestore.New(filestore.Paths{
		DataDir:      *out,
		RankingsFile: *rankings,
	}, 1, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	if err != nil {
		return err
	}
	for _, rec := range ranked {
		if err := store.Records.Save(ctx, rec); err != nil {
			return fmt.Errorf("save %s: %w", rec.CityID, err)
		}
	}
	if err := store.Rankings.Write(ctx, domain.RankingSummary(ranked)); err != nil {
		return fmt.Errorf("write rankings: %w", err)
	}

	log.Printf("wrote %d records to %s", len(ranked), *out)
	log.Printf("wrote rankings to %s", *rankings)
	printStats(ranked, scoring)
	return nil
}

func mockRecord(entry domain.QueueEntry, scoring domain.Scoring, rng *rand.Rand) domain.CityRecord {
	// Each city gets a base level with per-category jitter so tiers spread out.
	base := 35 + rng.IntN(56)
	scores := make(map[string]domain.CategoryScore, len(scoring.Weights))
	for _, c := range scoring.Categories() {
		v := base + rng.IntN(21) - 10
		v = max(0, min(100, v))
		scores[c] = domain.CategoryScore{Score: float64(v)}
	}

	trends := []string{domain.TrendImproving, domain.TrendStable, domain.TrendStable, domain.TrendDeclining}
	updated := mockNow.Now().AddDate(0, 0, -rng.IntN(spreadDays))

	rec := domain.CityRecord{
		CityID:        domain.CityID(entry.Name, entry.Country),
		Name:          entry.Name,
		Country:       entry.Country,
		Region:        entry.Region,
		Scores:        scores,
		Trending:      trends[rng.IntN(len(trends))],
		LastUpdated:   domain.FormatTimestamp(updated),
		RevisionCount: 1 + rng.IntN(5),
		AutoGenerated: true,
	}
	return scoring.Derive(rec)
}

func printStats(ranked []domain.CityRecord, scoring domain.Scoring) {
	tiers := map[string]int{}
	for _, rec := range ranked {
		tiers[rec.SafetyTier]++
	}
	staleCount := len(domain.DefaultStalenessPolicy().Stale(ranked, mockNow.Now()))

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(ranked))
	fmt.Printf("Stale at %s: %d\n", domain.FormatTimestamp(mockNow.Now()), staleCount)
	for _, t := range scoring.Tiers {
		fmt.Printf("  %-16s %d\n", t.Label, tiers[t.ID])
	}
	if len(ranked) > 0 {
		fmt.Printf("Top: %s (%.1f)\n", ranked[0].CityID, ranked[0].Score())
	}
}
