// Package loader converts the CSV document corpus into the JSONL shape
// the rest of the pipeline consumes, one document per line.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Document is one row of the corpus after field mapping.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Court   string `json:"court"`
	Date    string `json:"date"`
}

// requiredColumns must be present in the CSV header; document_id is the
// field this loader cannot substitute a default for.
var requiredColumns = []string{"document_id"}

// Load reads a CSV corpus and writes one JSON document per line to w,
// mapping document_id -> id and date_posted -> date (§3.10: matching
// the original corpus-loading script's column names) and trimming
// whitespace from the title, content, court and date fields; id is
// copied as is. It returns the number of documents written.
func Load(r io.Reader, w io.Writer) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("loader: reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("loader: CSV missing required column %q", col)
		}
	}

	enc := json.NewEncoder(w)
	count := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("loader: reading CSV record %d: %w", count+1, err)
		}

		doc := Document{
			ID:      field(record, index, "document_id"),
			Title:   strings.TrimSpace(field(record, index, "title")),
			Content: strings.TrimSpace(field(record, index, "content")),
			Court:   strings.TrimSpace(field(record, index, "court")),
			Date:    strings.TrimSpace(field(record, index, "date_posted")),
		}
		if err := enc.Encode(doc); err != nil {
			return count, fmt.Errorf("loader: writing JSONL record %d: %w", count+1, err)
		}
		count++
	}

	slog.Info("loader: corpus converted", "documents", count)
	return count, nil
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
