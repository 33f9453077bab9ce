package rank

import (
	"reflect"
	"testing"

	"github.com/wizenheimer/lexdex/internal/index"
)

// fakeIndex is a minimal, hand-built Index for ranking tests.
type fakeIndex struct {
	zones     map[string][]string
	docFreq   map[string]int
	postings  map[string][]index.Entry
	n         int
	docLength map[int]float64
	metadata  map[int]index.Metadata
}

func (f *fakeIndex) ZonesOf(stem string) []string { return f.zones[stem] }

func (f *fakeIndex) Postings(zonedTerm string) ([]index.Entry, error) {
	return f.postings[zonedTerm], nil
}

func (f *fakeIndex) DocFreq(zonedTerm string) int { return f.docFreq[zonedTerm] }

func (f *fakeIndex) N() int { return f.n }

func (f *fakeIndex) DocLength(id int) float64 {
	if l, ok := f.docLength[id]; ok {
		return l
	}
	return 1.0
}

func (f *fakeIndex) Metadata(id int) (index.Metadata, bool) {
	m, ok := f.metadata[id]
	return m, ok
}

// ═══════════════════════════════════════════════════════════════════════════════
// SCORING TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestScore_ZoneWeighting(t *testing.T) {
	idx := &fakeIndex{
		n: 100,
		zones: map[string][]string{
			"contract": {"contract@title", "contract@body"},
		},
		docFreq: map[string]int{
			"contract@title": 5,
			"contract@body":  5,
		},
		postings: map[string][]index.Entry{
			"contract@title": {{DocID: 1, TermFreq: 2}},
			"contract@body":  {{DocID: 2, TermFreq: 2}},
		},
		docLength: map[int]float64{1: 1.0, 2: 1.0},
	}

	r := New(idx, DefaultConfig())
	results := r.Score(map[string]int{"contract": 1})

	var scoreByDoc = map[int]float64{}
	for _, res := range results {
		scoreByDoc[res.DocID] = res.Score
	}

	if scoreByDoc[1] <= scoreByDoc[2] {
		t.Errorf("title-zone score %v should exceed body-zone score %v", scoreByDoc[1], scoreByDoc[2])
	}
}

func TestScore_LengthNormalization(t *testing.T) {
	idx := &fakeIndex{
		n: 100,
		zones: map[string][]string{
			"breach": {"breach@body"},
		},
		docFreq: map[string]int{"breach@body": 10},
		postings: map[string][]index.Entry{
			"breach@body": {{DocID: 1, TermFreq: 3}, {DocID: 2, TermFreq: 3}},
		},
		docLength: map[int]float64{1: 1.0, 2: 4.0},
	}

	r := New(idx, DefaultConfig())
	results := r.Score(map[string]int{"breach": 1})

	byDoc := map[int]float64{}
	for _, res := range results {
		byDoc[res.DocID] = res.Score
	}

	if byDoc[1] <= byDoc[2] {
		t.Errorf("shorter doc (length 1) should outscore longer doc (length 4): got %v vs %v", byDoc[1], byDoc[2])
	}
}

func TestScore_CourtBoost(t *testing.T) {
	idx := &fakeIndex{
		n: 100,
		zones: map[string][]string{
			"tort": {"tort@body"},
		},
		docFreq: map[string]int{"tort@body": 10},
		postings: map[string][]index.Entry{
			"tort@body": {{DocID: 1, TermFreq: 2}, {DocID: 2, TermFreq: 2}},
		},
		docLength: map[int]float64{1: 1.0, 2: 1.0},
		metadata: map[int]index.Metadata{
			1: {Court: "UK Supreme Court", Date: "2024-01-01"},
			2: {Court: "Some Magistrate Court", Date: "2024-01-01"},
		},
	}

	r := New(idx, DefaultConfig())
	results := r.Score(map[string]int{"tort": 1})

	byDoc := map[int]float64{}
	for _, res := range results {
		byDoc[res.DocID] = res.Score
	}

	if byDoc[1] <= byDoc[2] {
		t.Errorf("UK Supreme Court (1.5x) should outscore unlisted court (1.0x): got %v vs %v", byDoc[1], byDoc[2])
	}
}

func TestScore_DateBoost(t *testing.T) {
	idx := &fakeIndex{
		n: 100,
		zones: map[string][]string{
			"negligence": {"negligence@body"},
		},
		docFreq: map[string]int{"negligence@body": 10},
		postings: map[string][]index.Entry{
			"negligence@body": {{DocID: 1, TermFreq: 2}, {DocID: 2, TermFreq: 2}},
		},
		docLength: map[int]float64{1: 1.0, 2: 1.0},
		metadata: map[int]index.Metadata{
			1: {Court: "", Date: "2024-01-01"}, // age 1, boost 1.3
			2: {Court: "", Date: "1990-01-01"}, // age 35, boost 1.0
		},
	}

	r := New(idx, DefaultConfig())
	results := r.Score(map[string]int{"negligence": 1})

	byDoc := map[int]float64{}
	for _, res := range results {
		byDoc[res.DocID] = res.Score
	}

	if byDoc[1] <= byDoc[2] {
		t.Errorf("recent doc should outscore old doc: got %v vs %v", byDoc[1], byDoc[2])
	}
}

func TestScore_DateParseFailureDefaultsToOne(t *testing.T) {
	cfg := DefaultConfig()
	r := New(&fakeIndex{}, cfg)

	if got := r.dateBoost("not-a-date"); got != 1.0 {
		t.Errorf("dateBoost(garbage) = %v, want 1.0", got)
	}
}

func TestScore_SortOrder(t *testing.T) {
	idx := &fakeIndex{
		n: 100,
		zones: map[string][]string{
			"law": {"law@body"},
		},
		docFreq: map[string]int{"law@body": 10},
		postings: map[string][]index.Entry{
			"law@body": {{DocID: 5, TermFreq: 1}, {DocID: 1, TermFreq: 1}, {DocID: 3, TermFreq: 5}},
		},
		docLength: map[int]float64{1: 1.0, 3: 1.0, 5: 1.0},
	}

	r := New(idx, DefaultConfig())
	results := r.Score(map[string]int{"law": 1})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].DocID != 3 {
		t.Errorf("top result = doc %d, want doc 3 (highest term frequency)", results[0].DocID)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// FEEDBACK REFINER TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func buildFeedbackIndex() *fakeIndex {
	return &fakeIndex{
		n: 100,
		zones: map[string][]string{
			"contract": {"contract@body"},
			"damag":    {"damag@body"},
		},
		docFreq: map[string]int{
			"contract@body": 20,
			"damag@body":    10,
		},
		postings: map[string][]index.Entry{
			"contract@body": {{DocID: 1, TermFreq: 3}, {DocID: 2, TermFreq: 1}},
			"damag@body":    {{DocID: 1, TermFreq: 5}},
		},
		docLength: map[int]float64{1: 1.0, 2: 1.0},
	}
}

func TestRefine_EmptyInitialReturnsOriginalBag(t *testing.T) {
	r := New(buildFeedbackIndex(), DefaultConfig())
	bag := map[string]int{"contract": 1}

	got := r.Refine(bag, []string{"contract"}, nil)
	if !reflect.DeepEqual(got, bag) {
		t.Errorf("Refine() = %v, want unchanged bag %v", got, bag)
	}
}

func TestRefine_AddsNewStemFromFeedback(t *testing.T) {
	idx := buildFeedbackIndex()
	r := New(idx, DefaultConfig())
	bag := map[string]int{"contract": 1}
	initial := []Result{{DocID: 1, Score: 1.0}, {DocID: 2, Score: 0.5}}

	got := r.Refine(bag, []string{"contract"}, initial)

	if _, ok := got["damag"]; !ok {
		t.Errorf("Refine() = %v, want it to add 'damag' surfaced from feedback doc 1", got)
	}
	if got["contract"] != 1 {
		t.Errorf("Refine() should not change the original bag's count for 'contract'")
	}
}

func TestRefine_DigitTokenLimitsExpansionToOneTerm(t *testing.T) {
	idx := &fakeIndex{
		n: 100,
		zones: map[string][]string{
			"case": {"case@body"},
			"alpha": {"alpha@body"},
			"beta":  {"beta@body"},
		},
		docFreq: map[string]int{
			"case@body":  20,
			"alpha@body": 10,
			"beta@body":  10,
		},
		postings: map[string][]index.Entry{
			"case@body":  {{DocID: 1, TermFreq: 2}},
			"alpha@body": {{DocID: 1, TermFreq: 4}},
			"beta@body":  {{DocID: 1, TermFreq: 3}},
		},
		docLength: map[int]float64{1: 1.0},
	}
	r := New(idx, DefaultConfig())
	bag := map[string]int{"case": 1}
	initial := []Result{{DocID: 1, Score: 1.0}}

	got := r.Refine(bag, []string{"123"}, initial)

	added := 0
	for k := range got {
		if k != "case" {
			added++
		}
	}
	if added > 1 {
		t.Errorf("Refine() with an all-digit original token should add at most 1 new term, got %d", added)
	}
}

func TestRefine_RejectsShortAndDigitStems(t *testing.T) {
	if !stemHasDigit("case123") {
		t.Error("stemHasDigit(case123) = false, want true")
	}
	if len("ab") >= minStemLength {
		t.Fatal("test setup: 'ab' should be shorter than minStemLength")
	}
}

func TestIsAllDigits(t *testing.T) {
	cases := map[string]bool{
		"12345": true,
		"abc":   false,
		"12a45": false,
		"":      false,
	}
	for in, want := range cases {
		if got := isAllDigits(in); got != want {
			t.Errorf("isAllDigits(%q) = %v, want %v", in, got, want)
		}
	}
}
