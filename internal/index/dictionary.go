package index

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wizenheimer/lexdex/internal/analysis"
)

// dictEntry is the dictionary's value: document frequency and the byte
// offset of the term's postings line (§3 Dictionary).
type dictEntry struct {
	DocFreq uint32
	Offset  uint64
}

// loadDictionary reads the dictionary file (§6: "<zoned_term>
// <doc_frequency> <byte_offset>", whitespace-separated, blank lines
// ignored) and derives the base→zones map used for cross-zone lookups
// (§3 "Also derived at load time").
func loadDictionary(path string) (dict map[string]dictEntry, base2zones map[string][]string, terms []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: opening dictionary file: %v", ErrIoError, err)
	}
	defer f.Close()

	dict = make(map[string]dictEntry)
	base2zones = make(map[string][]string)

	scanner := bufio.NewScanner(f)
	// Dictionary lines can be long for wide corpora; grow the buffer past
	// bufio's default 64KiB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, nil, nil, fmt.Errorf("%w: dictionary line %d has %d fields, want 3", ErrIndexCorrupt, lineNo, len(fields))
		}

		zoned := fields[0]
		df, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: dictionary line %d: bad doc frequency: %v", ErrIndexCorrupt, lineNo, err)
		}
		offset, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: dictionary line %d: bad byte offset: %v", ErrIndexCorrupt, lineNo, err)
		}

		dict[zoned] = dictEntry{DocFreq: uint32(df), Offset: offset}

		base, zone := analysis.SplitZoneTerm(zoned)
		base2zones[base] = append(base2zones[base], zoned)
		_ = zone
		terms = append(terms, base)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: reading dictionary file: %v", ErrIoError, err)
	}

	return dict, base2zones, terms, nil
}
