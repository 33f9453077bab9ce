package index

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one posting: a document's occurrence record for a single zoned
// term (§3 Postings list).
type Entry struct {
	DocID     int
	TermFreq  int
	Positions []int  // in-document token offsets, strictly increasing; may be empty
	Skip      int    // advisory skip stride, -1 if absent
	Zone      string // the zone this posting came from, e.g. "title"; set by Store.Postings
}

// decodePostingsLine parses one postings line of the shape described in
// §4.1 "Decoding": whitespace-separated entries of
//
//	gap,tf[:pos1_gap,pos2_gap,...[:skip]]
//
// Doc-id gaps and position gaps are both cumulative (the first value in
// each series is absolute, every subsequent value is a delta from the
// previous one). A missing positions section yields empty Positions; a
// missing skip section yields Skip == -1. Trailing blank fields are
// tolerated and ignored, matching "must tolerate and ignore trailing
// blanks" in §4.1.
func decodePostingsLine(line string) ([]Entry, error) {
	tokens := strings.Fields(line)
	entries := make([]Entry, 0, len(tokens))
	prevDoc := 0

	for _, tok := range tokens {
		parts := strings.Split(tok, ":")
		if len(parts) == 0 || parts[0] == "" {
			continue
		}

		gapTF := strings.SplitN(parts[0], ",", 2)
		if len(gapTF) != 2 {
			return nil, fmt.Errorf("%w: malformed posting entry %q", ErrIndexCorrupt, tok)
		}
		gap, err := strconv.Atoi(gapTF[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad doc gap in %q: %v", ErrIndexCorrupt, tok, err)
		}
		tf, err := strconv.Atoi(gapTF[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad term frequency in %q: %v", ErrIndexCorrupt, tok, err)
		}

		docID := prevDoc + gap
		prevDoc = docID

		var positions []int
		if len(parts) > 1 && parts[1] != "" {
			prevPos := 0
			for _, pg := range strings.Split(parts[1], ",") {
				if pg == "" {
					continue
				}
				delta, err := strconv.Atoi(pg)
				if err != nil {
					return nil, fmt.Errorf("%w: bad position gap in %q: %v", ErrIndexCorrupt, tok, err)
				}
				prevPos += delta
				positions = append(positions, prevPos)
			}
		}

		skip := -1
		if len(parts) > 2 && parts[2] != "" {
			s, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("%w: bad skip stride in %q: %v", ErrIndexCorrupt, tok, err)
			}
			skip = s
		}

		entries = append(entries, Entry{DocID: docID, TermFreq: tf, Positions: positions, Skip: skip})
	}

	return entries, nil
}

// encodePostingsLine is the inverse of decodePostingsLine: it re-encodes a
// decoded entry list back into gap form. It exists to satisfy the
// decode-then-re-encode round-trip law of §8 and as a test fixture builder.
func encodePostingsLine(entries []Entry) string {
	var b strings.Builder
	prevDoc := 0

	for i, e := range entries {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(e.DocID - prevDoc))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(e.TermFreq))
		prevDoc = e.DocID

		if len(e.Positions) > 0 {
			b.WriteByte(':')
			prevPos := 0
			for j, p := range e.Positions {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.Itoa(p - prevPos))
				prevPos = p
			}
		}

		if e.Skip != -1 {
			if len(e.Positions) == 0 {
				b.WriteByte(':')
			}
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(e.Skip))
		}
	}

	return b.String()
}
