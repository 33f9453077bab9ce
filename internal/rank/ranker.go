// Package rank scores and orders candidate documents with a zoned
// cosine-like tf-idf model, then refines free-text rankings with a
// Rocchio pseudo-relevance feedback pass.
package rank

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/wizenheimer/lexdex/internal/analysis"
	"github.com/wizenheimer/lexdex/internal/index"
)

// Index is the subset of index.Store the Ranker needs.
type Index interface {
	ZonesOf(stem string) []string
	Postings(zonedTerm string) ([]index.Entry, error)
	DocFreq(zonedTerm string) int
	N() int
	DocLength(id int) float64
	Metadata(id int) (index.Metadata, bool)
}

// Result is one scored, boosted document.
type Result struct {
	DocID int
	Score float64
}

// courtBoost is the fixed table of §6; courts absent from it get 1.0.
var courtBoost = map[string]float64{
	"SG Court of Appeal":      1.5,
	"SG Privy Council":        1.5,
	"UK House of Lords":       1.5,
	"UK Supreme Court":        1.5,
	"High Court of Australia": 1.5,
	"CA Supreme Court":        1.5,

	"SG High Court":                            1.2,
	"Singapore International Commercial Court": 1.2,
	"HK High Court":                            1.2,
	"HK Court of First Instance":                1.2,
	"UK Crown Court":                            1.2,
	"UK Court of Appeal":                        1.2,
	"UK High Court":                             1.2,
	"Federal Court of Australia":                 1.2,
	"NSW Court of Appeal":                        1.2,
	"NSW Court of Criminal Appeal":                1.2,
	"NSW Supreme Court":                           1.2,
}

// Config parameterizes the parts of the Ranker spec.md leaves as
// implementation-defined: the length-normalization floor and the
// reference year date boosts are measured against.
type Config struct {
	LengthFloor            float64
	DateBoostReferenceYear int
}

// DefaultConfig matches the original engine's hardcoded behavior.
func DefaultConfig() Config {
	return Config{LengthFloor: 1.0, DateBoostReferenceYear: 2025}
}

// Ranker scores term-frequency bags against an Index.
type Ranker struct {
	idx Index
	cfg Config
}

// New builds a Ranker over idx with cfg.
func New(idx Index, cfg Config) *Ranker {
	return &Ranker{idx: idx, cfg: cfg}
}

// Score computes the zoned tf-idf score for every document any bag term
// reaches, applies length normalization and metadata boosts, and returns
// results sorted by (-score, doc_id) (§4.4).
func (r *Ranker) Score(bag map[string]int) []Result {
	scores := make(map[int]float64)

	for stem, qf := range bag {
		zones := r.idx.ZonesOf(stem)
		if len(zones) == 0 {
			continue
		}

		dfSum := 0
		for _, z := range zones {
			dfSum += r.idx.DocFreq(z)
		}
		if dfSum == 0 {
			continue
		}
		idf := math.Log10(float64(r.idx.N()) / float64(dfSum))
		qfW := 1 + math.Log10(float64(qf))

		for _, zonedTerm := range zones {
			_, zone := analysis.SplitZoneTerm(zonedTerm)
			zoneWeight := analysis.ZoneWeight(zone)

			entries, err := r.idx.Postings(zonedTerm)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.TermFreq <= 0 {
					continue
				}
				tfW := 1 + math.Log10(float64(e.TermFreq))
				scores[e.DocID] += tfW * qfW * idf * zoneWeight
			}
		}
	}

	return r.normalizeAndBoost(scores)
}

func (r *Ranker) normalizeAndBoost(scores map[int]float64) []Result {
	out := make([]Result, 0, len(scores))
	for doc, score := range scores {
		length := r.idx.DocLength(doc)
		if length <= 0 {
			length = r.cfg.LengthFloor
		}
		score /= math.Max(length, r.cfg.LengthFloor)

		if meta, ok := r.idx.Metadata(doc); ok {
			score *= courtBoostFor(meta.Court)
			score *= r.dateBoost(meta.Date)
		}

		out = append(out, Result{DocID: doc, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})

	return out
}

func courtBoostFor(court string) float64 {
	if b, ok := courtBoost[court]; ok {
		return b
	}
	return 1.0
}

// dateBoost implements §4.4's recency boost off the "YYYY-MM-DD..."
// prefix of the date string; any parse failure defaults to 1.0.
func (r *Ranker) dateBoost(date string) float64 {
	datePart := date
	if i := strings.IndexByte(date, ' '); i >= 0 {
		datePart = date[:i]
	}
	parts := strings.SplitN(datePart, "-", 3)
	if len(parts) < 1 {
		return 1.0
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 1.0
	}

	age := r.cfg.DateBoostReferenceYear - year
	switch {
	case age <= 5:
		return 1.3
	case age <= 10:
		return 1.2
	case age <= 20:
		return 1.1
	default:
		return 1.0
	}
}
