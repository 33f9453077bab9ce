package rank

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/wizenheimer/lexdex/internal/analysis"
)

const (
	feedbackSetSize = 30
	rocchioAlpha    = 1.5
	rocchioBeta     = 0.4
	minStemLength   = 3
)

// Refine runs Rocchio pseudo-relevance feedback over the top ranked
// documents of an initial free-text ranking (§4.5): it builds the
// original query vector q0 over zoned terms, blends in the centroid of
// the feedback documents' own vectors, and augments bag with the top
// m newly-surfaced bare stems before the caller re-ranks.
//
// If the initial ranking is empty, bag is returned unchanged.
func (r *Ranker) Refine(bag map[string]int, tokens []string, initial []Result) map[string]int {
	feedback := initial
	if len(feedback) > feedbackSetSize {
		feedback = feedback[:feedbackSetSize]
	}
	if len(feedback) == 0 {
		return bag
	}

	q0 := r.queryVector(bag)
	q1 := make(map[string]float64, len(q0))
	for zk, w := range q0 {
		q1[zk] += rocchioAlpha * w
	}

	for _, res := range feedback {
		vd := r.documentVector(res.DocID, bag)
		for zk, w := range vd {
			q1[zk] += (rocchioBeta / float64(len(feedback))) * w
		}
	}

	m := 2
	for _, t := range tokens {
		if isAllDigits(t) {
			m = 1
			break
		}
	}

	expanded := make(map[string]int, len(bag)+m)
	for k, v := range bag {
		expanded[k] = v
	}

	for _, zk := range topZonedTerms(q1, m) {
		stem, _ := analysis.SplitZoneTerm(zk)
		if stemHasDigit(stem) || len(stem) < minStemLength {
			continue
		}
		if _, ok := expanded[stem]; ok {
			continue
		}
		expanded[stem] = 1
	}

	return expanded
}

// queryVector builds q0: for each stem with query frequency qf, for each
// zoned variant, (1+log10(qf)) * idf * zone_weight.
func (r *Ranker) queryVector(bag map[string]int) map[string]float64 {
	q0 := make(map[string]float64)
	for stem, qf := range bag {
		for _, zk := range r.idx.ZonesOf(stem) {
			df := r.idx.DocFreq(zk)
			if df == 0 {
				continue
			}
			idf := math.Log10(float64(r.idx.N()) / float64(df))
			_, zone := analysis.SplitZoneTerm(zk)
			q0[zk] += (1 + math.Log10(float64(qf))) * idf * analysis.ZoneWeight(zone)
		}
	}
	return q0
}

// documentVector builds vd for a single feedback document over the
// union of zoned terms reachable from bag (the same terms queryVector
// walks), since only those zones were ever read from postings.
func (r *Ranker) documentVector(docID int, bag map[string]int) map[string]float64 {
	vd := make(map[string]float64)
	for stem := range bag {
		for _, zk := range r.idx.ZonesOf(stem) {
			df := r.idx.DocFreq(zk)
			if df == 0 {
				continue
			}
			entries, err := r.idx.Postings(zk)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.DocID != docID {
					continue
				}
				if e.TermFreq > 0 {
					idf := math.Log10(float64(r.idx.N()) / float64(df))
					vd[zk] = (1 + math.Log10(float64(e.TermFreq))) * idf
				}
				break
			}
		}
	}
	return vd
}

// topZonedTerms returns the m highest-weighted zoned terms of q1.
func topZonedTerms(q1 map[string]float64, m int) []string {
	type scored struct {
		zk string
		w  float64
	}
	all := make([]scored, 0, len(q1))
	for zk, w := range q1 {
		all = append(all, scored{zk, w})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].w > all[j].w })

	if len(all) > m {
		all = all[:m]
	}
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = s.zk
	}
	return out
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func stemHasDigit(stem string) bool {
	return strings.IndexFunc(stem, unicode.IsDigit) >= 0
}
