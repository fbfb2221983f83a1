// Command validate checks a city record directory for data integrity: every
// record's score and tier agree with the scoring tables, global ranks are
// unique and dense, and the rankings summary matches the records.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data/cities -rankings data/rankings.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/tsethwilliams/isitsafetovisit/internal/adapter/filestore"
	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

// scoreTolerance absorbs rounding to one decimal place.
const scoreTolerance = 0.051

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "directory containing city record JSON files")
	rankingsPath := flag.String("rankings", "", "path to rankings summary JSON (optional)")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dataDir, *rankingsPath))
}

func run(dataDir, rankingsPath string) int {
	ctx := context.Background()
	scoring := domain.DefaultScoring()

	fmt.Println("=== City Data Integrity Validation ===")
	fmt.Println()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	records, err := filestore.NewRecordStore(dataDir, 1, discard, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open records: %v\n", err)
		return 1
	}
	recs, err := records.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: list records: %v\n", err)
		return 1
	}
	files, err := filepath.Glob(filepath.Join(dataDir, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: scan %s: %v\n", dataDir, err)
		return 1
	}

	phases := []*phase{
		validateDecoding(files, recs),
		validateRecords(recs, scoring),
		validateRanks(recs),
	}

	var summary []domain.RankingEntry
	if rankingsPath != "" {
		summary, err = filestore.NewRankingsStore(rankingsPath).Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load rankings: %v\n", err)
			return 1
		}
		phases = append(phases, validateRankings(summary, recs))
	}

	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintfFunc()

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := pass("PASS")
		if !p.passed() {
			status = fail("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d files, %d decoded, %d rankings rows\n", len(files), len(recs), len(summary))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}

func validateDecoding(files []string, recs []domain.CityRecord) *phase {
	p := &phase{name: "Phase 1: Record decoding"}

	decoded := make(map[string]bool, len(recs))
	for _, r := range recs {
		decoded[r.CityID] = true
	}
	for _, f := range files {
		id := strings.TrimSuffix(filepath.Base(f), ".json")
		if strings.HasPrefix(id, ".") {
			continue
		}
		if !decoded[id] {
			p.errorf("%s: file could not be decoded", filepath.Base(f))
		}
	}
	return p
}

func validateRecords(recs []domain.CityRecord, scoring domain.Scoring) *phase {
	p := &phase{name: "Phase 2: Score and tier invariants"}

	trends := map[string]bool{
		domain.TrendImproving: true,
		domain.TrendStable:    true,
		domain.TrendDeclining: true,
	}
	for _, r := range recs {
		if r.Name == "" || r.Country == "" {
			p.errorf("%s: missing name or country", r.CityID)
		}
		if want := domain.CityID(r.Name, r.Country); r.Name != "" && r.Country != "" && want != r.CityID {
			p.errorf("%s: city_id does not match name/country (want %s)", r.CityID, want)
		}
		if _, ok := domain.ParseTimestamp(r.LastUpdated); !ok {
			p.errorf("%s: last_updated %q is not a timestamp", r.CityID, r.LastUpdated)
		}
		if r.Trending != "" && !trends[r.Trending] {
			p.errorf("%s: unknown trending %q", r.CityID, r.Trending)
		}
		if !r.HasScores() {
			continue
		}
		if r.OverallSafetyScore == nil {
			p.errorf("%s: scored record has no overall_safety_score", r.CityID)
			continue
		}
		score := *r.OverallSafetyScore
		if want := scoring.Aggregate(r.Scores); math.Abs(want-score) > scoreTolerance {
			p.errorf("%s: overall_safety_score %.1f, categories aggregate to %.1f", r.CityID, score, want)
		}
		if score < 0 || score > scoring.MaxScore {
			p.errorf("%s: overall_safety_score %.1f out of range", r.CityID, score)
		}
		if want := scoring.Classify(score).ID; r.SafetyTier != want {
			p.errorf("%s: safety_tier %q, score %.1f implies %q", r.CityID, r.SafetyTier, score, want)
		}
	}
	return p
}

func validateRanks(recs []domain.CityRecord) *phase {
	p := &phase{name: "Phase 3: Global rank uniqueness"}

	byRank := make(map[int]string, len(recs))
	ranked := make([]domain.CityRecord, 0, len(recs))
	for _, r := range recs {
		if r.GlobalRank <= 0 {
			p.errorf("%s: not ranked", r.CityID)
			continue
		}
		if other, dup := byRank[r.GlobalRank]; dup {
			p.errorf("%s: rank %d already held by %s", r.CityID, r.GlobalRank, other)
			continue
		}
		byRank[r.GlobalRank] = r.CityID
		ranked = append(ranked, r)
	}
	for i := 1; i <= len(ranked); i++ {
		if _, ok := byRank[i]; !ok {
			p.errorf("rank %d is missing", i)
		}
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].GlobalRank < ranked[j].GlobalRank })
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score() > ranked[i-1].Score()+scoreTolerance {
			p.errorf("%s (rank %d, %.1f) outscores %s (rank %d, %.1f)",
				ranked[i].CityID, ranked[i].GlobalRank, ranked[i].Score(),
				ranked[i-1].CityID, ranked[i-1].GlobalRank, ranked[i-1].Score())
		}
	}
	return p
}

func validateRankings(summary []domain.RankingEntry, recs []domain.CityRecord) *phase {
	p := &phase{name: "Phase 4: Rankings summary consistency"}

	byID := make(map[string]domain.CityRecord, len(recs))
	for _, r := range recs {
		byID[r.CityID] = r
	}
	if len(summary) != len(recs) {
		p.errorf("rankings has %d rows, data dir has %d records", len(summary), len(recs))
	}

	seen := make(map[string]bool, len(summary))
	for _, e := range summary {
		if seen[e.CityID] {
			p.errorf("%s: listed twice", e.CityID)
			continue
		}
		seen[e.CityID] = true

		r, ok := byID[e.CityID]
		if !ok {
			p.errorf("%s: in rankings but no record", e.CityID)
			continue
		}
		if e.Rank != r.GlobalRank {
			p.errorf("%s: rankings rank %d, record rank %d", e.CityID, e.Rank, r.GlobalRank)
		}
		if math.Abs(e.Score-r.Score()) > scoreTolerance {
			p.errorf("%s: rankings score %.1f, record score %.1f", e.CityID, e.Score, r.Score())
		}
		if e.Tier != r.SafetyTier {
			p.errorf("%s: rankings tier %q, record tier %q", e.CityID, e.Tier, r.SafetyTier)
		}
	}
	return p
}
