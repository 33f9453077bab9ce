package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wizenheimer/lexdex/internal/index"
	"github.com/wizenheimer/lexdex/internal/query"
	"github.com/wizenheimer/lexdex/internal/rank"
)

// nullObserver discards every event; a local stand-in so this package's
// tests don't need to import internal/metrics.
type nullObserver struct{}

func (nullObserver) CacheHit()                                      {}
func (nullObserver) CacheMiss()                                     {}
func (nullObserver) PostingsDecodeError()                           {}
func (nullObserver) BooleanFallbackTriggered()                      {}
func (nullObserver) QueryLatency(queryType string, seconds float64) {}

// countingObserver records which events fired, for assertions.
type countingObserver struct {
	decodeErrors int
	fallbacks    int
	latencies    int
}

func (c *countingObserver) CacheHit()                 {}
func (c *countingObserver) CacheMiss()                {}
func (c *countingObserver) PostingsDecodeError()      { c.decodeErrors++ }
func (c *countingObserver) BooleanFallbackTriggered() { c.fallbacks++ }
func (c *countingObserver) QueryLatency(queryType string, seconds float64) {
	c.latencies++
}

// buildEngineFixture writes a small on-disk index with one document and
// two title-zoned terms, then opens it through the real Store.
func buildEngineFixture(t *testing.T) *index.Store {
	t.Helper()
	dir := t.TempDir()

	// A single document whose title contains "contract" and "breach";
	// doc IDs in the postings grammar are gap-encoded, so with no prior
	// entry on the line a leading "1" means absolute doc ID 1.
	header := "1 1:2.0\n"
	contractTitle := "1,2:0,5\n" // gap=1 (doc 1), tf=2, positions=[0,5]
	breachTitle := "1,1:1\n"     // gap=1 (doc 1), tf=1, positions=[1]

	postings := header + contractTitle + breachTitle
	postingsPath := filepath.Join(dir, "postings.txt")
	if err := os.WriteFile(postingsPath, []byte(postings), 0o644); err != nil {
		t.Fatalf("writing postings file: %v", err)
	}

	contractOffset := len(header)
	breachOffset := contractOffset + len(contractTitle)

	dictPath := filepath.Join(dir, "dict.txt")
	dictContent := "contract@title 1 " + itoa(contractOffset) + "\n" +
		"breach@title 1 " + itoa(breachOffset) + "\n"
	if err := os.WriteFile(dictPath, []byte(dictContent), 0o644); err != nil {
		t.Fatalf("writing dict file: %v", err)
	}

	metaPath := filepath.Join(dir, "meta.tsv")
	metaContent := "1\tUK Supreme Court\t2024-01-01\n"
	if err := os.WriteFile(metaPath, []byte(metaContent), 0o644); err != nil {
		t.Fatalf("writing metadata file: %v", err)
	}

	store, err := index.Open(dictPath, postingsPath, metaPath)
	if err != nil {
		t.Fatalf("index.Open() error = %v, want nil", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestSearch_FreeTextReturnsRankedResults(t *testing.T) {
	store := buildEngineFixture(t)
	e := New(store, rank.DefaultConfig(), nullObserver{})

	results, err := e.Search(context.Background(), "contract", 10)
	if err != nil {
		t.Fatalf("Search() error = %v, want nil", err)
	}
	if len(results) == 0 {
		t.Fatal("Search(contract) returned no results")
	}
	if results[0].DocID != 1 {
		t.Errorf("top result = doc %d, want doc 1 (UK Supreme Court, recent)", results[0].DocID)
	}
}

func TestSearch_BooleanQueryEvaluates(t *testing.T) {
	store := buildEngineFixture(t)
	e := New(store, rank.DefaultConfig(), nullObserver{})

	results, err := e.Search(context.Background(), "contract AND breach", 10)
	if err != nil {
		t.Fatalf("Search() error = %v, want nil", err)
	}
	found := false
	for _, r := range results {
		if r.DocID == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("Search(contract AND breach) = %v, want doc 1 present", results)
	}
}

func TestSearch_BooleanFallbackObservedWhenShortOfTotal(t *testing.T) {
	store := buildEngineFixture(t)
	obs := &countingObserver{}
	e := New(store, rank.DefaultConfig(), obs)

	if _, err := e.Search(context.Background(), "contract AND breach", 10); err != nil {
		t.Fatalf("Search() error = %v, want nil", err)
	}
	if obs.fallbacks == 0 {
		t.Error("BooleanFallbackTriggered was never observed for a short boolean result")
	}
	if obs.latencies != 1 {
		t.Errorf("QueryLatency observed %d times, want 1", obs.latencies)
	}
}

func TestSearch_EmptyQueryIsAnEmptyQueryError(t *testing.T) {
	store := buildEngineFixture(t)
	e := New(store, rank.DefaultConfig(), nullObserver{})

	_, err := e.Search(context.Background(), "   ", 10)
	if !errors.Is(err, query.ErrEmptyQuery) {
		t.Errorf("Search(empty) error = %v, want query.ErrEmptyQuery", err)
	}
}

func TestSearch_CancelledContextStopsBeforeScoring(t *testing.T) {
	store := buildEngineFixture(t)
	e := New(store, rank.DefaultConfig(), nullObserver{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Search(ctx, "contract", 10); err == nil {
		t.Error("Search() with a cancelled context error = nil, want context.Canceled")
	}
}

func TestSuggestions_PassesThroughToStore(t *testing.T) {
	store := buildEngineFixture(t)
	e := New(store, rank.DefaultConfig(), nullObserver{})

	got := e.Suggestions("contr", 10)
	if len(got) != 1 || got[0] != "contract" {
		t.Errorf("Suggestions(contr) = %v, want [contract]", got)
	}
}

func TestSearch_TopKTruncates(t *testing.T) {
	store := buildEngineFixture(t)
	e := New(store, rank.DefaultConfig(), nullObserver{})

	results, err := e.Search(context.Background(), "contract", 1)
	if err != nil {
		t.Fatalf("Search() error = %v, want nil", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1 (topK)", len(results))
	}
}
