package index

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/wizenheimer/lexdex/internal/analysis"
)

// Store is the read-only, load-once index over a dictionary file, a
// postings file, and an optional metadata file (§3 Index Store). It is
// safe for concurrent use: the dictionary, base→zones map, metadata, and
// doc-length map are immutable after Open, and postings-file reads are
// serialized behind fileMu since a seek-then-read pair must not be
// interleaved with another goroutine's seek.
type Store struct {
	dict       map[string]dictEntry
	base2zones map[string][]string
	metadata   map[int]Metadata
	docLength  map[int]float64
	n          int
	terms      *termSkipList

	postingsPath string
	fileMu       sync.Mutex
	postingsFile *os.File
}

// Open loads the dictionary, reads the postings header, and (best-effort)
// loads document metadata. A missing metadata file is not fatal: it is
// logged once and every Metadata lookup thereafter reports ok == false,
// so the Ranker's boosts default to 1.0 (§7 Policy).
func Open(dictPath, postingsPath, metadataPath string) (*Store, error) {
	dict, base2zones, terms, err := loadDictionary(dictPath)
	if err != nil {
		return nil, err
	}

	f, err := openPostingsFile(postingsPath)
	if err != nil {
		return nil, err
	}

	hdr, _, err := readHeader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, err
	}

	var metadata map[int]Metadata
	if metadataPath != "" {
		metadata, err = loadMetadata(metadataPath)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Warn("index: metadata file missing, boosts default to 1.0", "path", metadataPath)
				metadata = map[int]Metadata{}
			} else {
				f.Close()
				return nil, err
			}
		}
	} else {
		metadata = map[int]Metadata{}
	}

	return &Store{
		dict:         dict,
		base2zones:   base2zones,
		metadata:     metadata,
		docLength:    hdr.docLength,
		n:            hdr.n,
		terms:        newTermSkipList(terms),
		postingsPath: postingsPath,
		postingsFile: f,
	}, nil
}

// Close releases the underlying postings file handle.
func (s *Store) Close() error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	return s.postingsFile.Close()
}

// N returns the corpus size used by idf calculations (§4.4).
func (s *Store) N() int { return s.n }

// DocLength returns the precomputed length for id, defaulting to 1.0 when
// absent (§4.4 "ε default of 1.0").
func (s *Store) DocLength(id int) float64 {
	if l, ok := s.docLength[id]; ok {
		return l
	}
	return 1.0
}

// Metadata returns the court/date record for id, if any.
func (s *Store) Metadata(id int) (Metadata, bool) {
	m, ok := s.metadata[id]
	return m, ok
}

// ZonesOf returns every zoned variant of a bare stem present in the
// dictionary (e.g. "contract" -> ["contract@title", "contract@body"]).
func (s *Store) ZonesOf(stem string) []string {
	return s.base2zones[stem]
}

// DocFreq returns the dictionary document frequency for a zoned term, or
// 0 if the term is absent (§4.4: "if df_sum == 0, skip").
func (s *Store) DocFreq(zonedTerm string) int {
	return int(s.dict[zonedTerm].DocFreq)
}

// Postings returns the decoded posting list for a single zoned term. A
// term absent from the dictionary yields an empty, non-error result
// (§4.1: "A term absent from the dictionary yields an empty posting
// list, not an error"). Every returned Entry is tagged with the zone
// parsed out of zonedTerm, so a caller merging several zoned variants of
// the same stem (PostingsAll) can still tell which zone each entry came
// from.
func (s *Store) Postings(zonedTerm string) ([]Entry, error) {
	entry, ok := s.dict[zonedTerm]
	if !ok {
		return nil, nil
	}
	entries, err := s.readPostingsAt(entry.Offset)
	if err != nil {
		return nil, err
	}
	_, zone := analysis.SplitZoneTerm(zonedTerm)
	for i := range entries {
		entries[i].Zone = zone
	}
	return entries, nil
}

// PostingsAll concatenates the postings of every zoned variant of a bare
// stem, used when a query term is not itself zone-qualified (§3
// "cross-zone lookups"). Entries are never merged across zones: a
// document occurring in more than one zone comes back as one Entry per
// zone, each with that zone's own Positions intact. Merging positions
// from different zones into a single slice would let a phrase match
// bridge a word at the end of one zone with a word at the start of
// another (§4.1, §5 Open Question 3 "no cross-zone phrase alignment"),
// which the original's own get_postings_all never does either — it
// simply extends one list with the next zone's postings.
func (s *Store) PostingsAll(stem string) ([]Entry, error) {
	zones := s.base2zones[stem]
	if len(zones) == 0 {
		return nil, nil
	}

	var out []Entry
	for _, z := range zones {
		entries, err := s.Postings(z)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

// Suggestions returns up to limit dictionary stems starting with prefix
// (case-insensitive), ascending, for autocomplete (§6 Programmatic
// surface). A mid-query postings decode failure elsewhere in the engine
// does not affect this path; decode errors only ever surface from
// Postings/PostingsAll.
func (s *Store) Suggestions(prefix string, limit int) []string {
	return s.terms.prefixScan(strings.ToLower(prefix), limit)
}

// readPostingsAt seeks to offset in the postings file and decodes the
// single line found there. This method surfaces decode failures as
// errors; callers decide what to do with them: the Ranker skips the
// failing zoned term, the boolean evaluator returns the error, and the
// Engine then treats the whole boolean result as empty and records
// Observer.PostingsDecodeError.
func (s *Store) readPostingsAt(offset uint64) ([]Entry, error) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if _, err := s.postingsFile.Seek(int64(offset), 0); err != nil {
		return nil, fmt.Errorf("%w: seeking postings file: %v", ErrIoError, err)
	}

	r := bufio.NewReader(s.postingsFile)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("%w: reading postings line at offset %d: %v", ErrIoError, offset, err)
	}

	return decodePostingsLine(strings.TrimRight(line, "\n"))
}
