// Package boolean evaluates a postfix atom stream produced by
// internal/query over an index.Store, using skip-pointer-aware
// intersection for AND, roaring-bitmap set operations for OR/NOT, and
// incremental position-narrowing for quoted phrases.
//
// Cross-zone phrase alignment is not attempted: a phrase only matches
// when its stems co-occur positionally within the same zone's postings,
// because positions are recorded per zoned term, not per document.
package boolean

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/wizenheimer/lexdex/internal/index"
)

// Candidate is one boolean-evaluator stack entry: a document ID together
// with an optional skip stride. Score is carried for symmetry with the
// Ranker's own candidate notion but is never populated here — the
// boolean evaluator only ever builds and narrows document sets.
type Candidate struct {
	DocID int
	Skip  int // -1 when absent
	Score float32
}

// Index is the subset of index.Store the evaluator needs.
type Index interface {
	PostingsAll(stem string) ([]index.Entry, error)
	N() int
}

// Evaluator runs postfix boolean programs against an Index.
type Evaluator struct {
	idx Index
}

// NewEvaluator builds an Evaluator over idx.
func NewEvaluator(idx Index) *Evaluator {
	return &Evaluator{idx: idx}
}

// Evaluate walks postfix left to right over a Candidate stack and
// returns the final set's document IDs in ascending order.
func (e *Evaluator) Evaluate(postfix []string) ([]int, error) {
	var stack [][]Candidate

	for _, atom := range postfix {
		switch atom {
		case "and":
			if len(stack) < 2 {
				stack = append(stack, nil)
				continue
			}
			right, left := stack[len(stack)-1], stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, intersectWithSkips(left, right))

		case "or":
			if len(stack) < 2 {
				stack = append(stack, nil)
				continue
			}
			right, left := stack[len(stack)-1], stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, union(left, right))

		case "not":
			if len(stack) < 1 {
				stack = append(stack, nil)
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = append(stack, complement(top, e.idx.N()))

		default:
			set, err := e.atomSet(atom)
			if err != nil {
				return nil, err
			}
			stack = append(stack, set)
		}
	}

	if len(stack) == 0 {
		return nil, nil
	}

	top := stack[len(stack)-1]
	out := make([]int, len(top))
	for i, c := range top {
		out[i] = c.DocID
	}
	return out, nil
}

func (e *Evaluator) atomSet(atom string) ([]Candidate, error) {
	if strings.Contains(atom, "_") {
		return e.phraseMatch(strings.Split(atom, "_"))
	}
	return e.termMatch(atom)
}

// termMatch dedupes and sorts by DocID before returning: PostingsAll
// concatenates one zone's postings after another without merging, so a
// stem present in more than one zone yields duplicate, non-monotonic doc
// IDs that intersectWithSkips' two-pointer walk requires to be unique
// and ascending. Skip strides are zone-local offsets into a single
// zone's postings array, so they cannot be carried over once entries
// from different zones are combined; every Candidate here gets Skip -1.
func (e *Evaluator) termMatch(stem string) ([]Candidate, error) {
	entries, err := e.idx.PostingsAll(stem)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(entries))
	docIDs := make([]int, 0, len(entries))
	for _, en := range entries {
		if _, ok := seen[en.DocID]; ok {
			continue
		}
		seen[en.DocID] = struct{}{}
		docIDs = append(docIDs, en.DocID)
	}
	sort.Ints(docIDs)

	out := make([]Candidate, len(docIDs))
	for i, id := range docIDs {
		out[i] = Candidate{DocID: id, Skip: -1}
	}
	return out, nil
}

// phraseMatch implements §4.3's phrase algorithm: build a position map
// for the first stem, then for each subsequent stem keep only documents
// where some position p in the running candidate set has p+1 present in
// the next stem's positions, replacing the candidate positions with
// those p+1 values. An empty intermediate candidate set short-circuits
// to "phrase cannot exist".
//
// Candidates are tracked per (doc, zone), not just per doc: position
// numbering is local to a zone's own text, so "position p" in the title
// and "position p" in the body are different offsets that happen to
// share a number. Advancing from one stem to the next only compares
// positions within the same zone, so a phrase can only match within a
// single zone's occurrence of every stem (§5 Open Question 3).
func (e *Evaluator) phraseMatch(stems []string) ([]Candidate, error) {
	if len(stems) == 0 {
		return nil, nil
	}

	first, err := e.idx.PostingsAll(stems[0])
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, nil
	}

	candidates := make(map[int]map[string][]int)
	for _, en := range first {
		if len(en.Positions) == 0 {
			continue
		}
		if candidates[en.DocID] == nil {
			candidates[en.DocID] = make(map[string][]int)
		}
		candidates[en.DocID][en.Zone] = en.Positions
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for _, stem := range stems[1:] {
		entries, err := e.idx.PostingsAll(stem)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, nil
		}

		positions := make(map[int]map[string][]int, len(entries))
		for _, en := range entries {
			if len(en.Positions) == 0 {
				continue
			}
			if positions[en.DocID] == nil {
				positions[en.DocID] = make(map[string][]int)
			}
			positions[en.DocID][en.Zone] = en.Positions
		}

		next := make(map[int]map[string][]int)
		for doc, zonePos := range candidates {
			docPositions, ok := positions[doc]
			if !ok {
				continue
			}
			for zone, pos := range zonePos {
				curr, ok := docPositions[zone]
				if !ok {
					continue
				}
				currSet := make(map[int]struct{}, len(curr))
				for _, p := range curr {
					currSet[p] = struct{}{}
				}
				var advanced []int
				for _, p := range pos {
					if _, ok := currSet[p+1]; ok {
						advanced = append(advanced, p+1)
					}
				}
				if len(advanced) > 0 {
					if next[doc] == nil {
						next[doc] = make(map[string][]int)
					}
					next[doc][zone] = advanced
				}
			}
		}

		candidates = next
		if len(candidates) == 0 {
			return nil, nil
		}
	}

	docIDs := make([]int, 0, len(candidates))
	for d := range candidates {
		docIDs = append(docIDs, d)
	}
	sort.Ints(docIDs)

	out := make([]Candidate, len(docIDs))
	for i, d := range docIDs {
		out[i] = Candidate{DocID: d, Skip: -1}
	}
	return out, nil
}

// intersectWithSkips is the skip-pointer-aware two-pointer walk of §4.3:
// when doc1 < doc2 and p1's skip stride lands at or before doc2, jump the
// stride instead of stepping by one. It must agree with the naive -1
// -strided intersection for any input (§8).
func intersectWithSkips(p1, p2 []Candidate) []Candidate {
	if len(p1) == 0 || len(p2) == 0 {
		return nil
	}

	var out []Candidate
	i, j := 0, 0
	for i < len(p1) && j < len(p2) {
		d1, s1 := p1[i].DocID, p1[i].Skip
		d2, s2 := p2[j].DocID, p2[j].Skip

		switch {
		case d1 == d2:
			out = append(out, Candidate{DocID: d1, Skip: -1})
			i++
			j++
		case d1 < d2:
			if s1 != -1 && i+s1 < len(p1) && p1[i+s1].DocID <= d2 {
				i += s1
			} else {
				i++
			}
		default:
			if s2 != -1 && j+s2 < len(p2) && p2[j+s2].DocID <= d1 {
				j += s2
			} else {
				j++
			}
		}
	}
	return out
}

func toBitmap(set []Candidate) *roaring.Bitmap {
	bm := roaring.NewBitmap()
	for _, c := range set {
		bm.Add(uint32(c.DocID))
	}
	return bm
}

func fromBitmap(bm *roaring.Bitmap) []Candidate {
	out := make([]Candidate, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, Candidate{DocID: int(it.Next()), Skip: -1})
	}
	return out
}

// union is the `or` atom: set-theoretic union via roaring's bitmap OR.
func union(a, b []Candidate) []Candidate {
	return fromBitmap(roaring.Or(toBitmap(a), toBitmap(b)))
}

// complement is the `not` atom: the difference between the 0..N document
// universe and set, via roaring's AndNot (§9 Open Question: implemented
// with natural set-theoretic semantics rather than gated off).
func complement(set []Candidate, n int) []Candidate {
	universe := roaring.New()
	if n > 0 {
		universe.AddRange(0, uint64(n))
	}
	return fromBitmap(roaring.AndNot(universe, toBitmap(set)))
}

// Default fallback-merge parameters (§4.3): B is how many boolean hits,
// in native order, seed the merged result; T is the total size the merge
// tops out at by backfilling with free-text-ranked IDs.
const (
	DefaultBoolPrefix = 500
	DefaultTotal      = 500
)

// FallbackMerge guarantees a non-empty answer when a boolean AND-chain is
// too strict: take the first b boolean IDs, and if that falls short of
// t, append free-text-ranked IDs not already present until t is reached
// or free text is exhausted.
func FallbackMerge(booleanIDs, freeTextIDs []int, b, t int) []int {
	if b > len(booleanIDs) {
		b = len(booleanIDs)
	}
	top := booleanIDs[:b]

	if len(top) >= t {
		out := make([]int, len(top))
		copy(out, top)
		return out
	}

	merged := make([]int, len(top))
	copy(merged, top)
	seen := make(map[int]struct{}, len(top))
	for _, d := range top {
		seen[d] = struct{}{}
	}

	for _, d := range freeTextIDs {
		if _, ok := seen[d]; ok {
			continue
		}
		merged = append(merged, d)
		seen[d] = struct{}{}
		if len(merged) >= t {
			break
		}
	}

	return merged
}
