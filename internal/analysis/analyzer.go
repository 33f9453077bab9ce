// Package analysis implements the text-analysis pipeline shared by the
// index builder and the retriever: tokenization, lowercasing, punctuation
// stripping, and Porter stemming.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY THIS PACKAGE HAS TO MATCH THE INDEXER EXACTLY
// ═══════════════════════════════════════════════════════════════════════════════
// The on-disk dictionary was built by stemming every document with a specific
// Porter stemmer implementation. If the retriever stems query terms with a
// different variant (or applies extra filters the indexer didn't), query
// stems will miss dictionary entries that should have matched. There is no
// stopword list here and no minimum-length filter: the indexer kept every
// token, so the retriever must too.
//
// PIPELINE:
// ---------
//  1. Tokenization   → Unicode-aware word splitting
//  2. Lowercasing    → Normalize case
//  3. Punctuation strip → drop leading/trailing punctuation per token
//  4. Stemming       → Snowball (Porter2) English stemmer
// ═══════════════════════════════════════════════════════════════════════════════
package analysis

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Stem lowercases, strips punctuation, and Porter-stems a single word. It
// returns "" if nothing is left after stripping (e.g. the input was pure
// punctuation).
func Stem(word string) string {
	w := stripPunctuation(strings.ToLower(word))
	if w == "" {
		return ""
	}
	return snowballeng.Stem(w, false)
}

// Tokenize extracts word runs from free text (letters and digits only, as
// the dictionary's word regex does) and Porter-stems each one. Order is
// preserved so callers can build a term-frequency bag positionally.
//
// Example:
//
//	Tokenize("The Quick Brown Fox!") → ["the", "quick", "brown", "fox"]
func Tokenize(text string) []string {
	words := wordRun(strings.ToLower(text))
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, snowballeng.Stem(w, false))
	}
	return out
}

// wordRun splits already-lowercased text into maximal runs of letters and
// digits, matching the free-text word regex of the query parser (§4.2).
func wordRun(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// stripPunctuation removes any character that is not a letter or a digit
// from a single already-split token (there should be none left in the
// middle after FieldsFunc, but bare-word parsing in the boolean tokenizer
// passes whole tokens through here before word-splitting, so punctuation
// can still appear at the edges or throughout, e.g. "don't" or "U.S.").
func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ZoneTerm joins a bare stem and a zone name into the dictionary's zoned
// term key, "stem@zone".
func ZoneTerm(stem, zone string) string {
	return stem + "@" + zone
}

// SplitZoneTerm splits a zoned term back into its bare stem and zone. If
// the term carries no "@", zone is "".
func SplitZoneTerm(zoned string) (stem, zone string) {
	if i := strings.IndexByte(zoned, '@'); i >= 0 {
		return zoned[:i], zoned[i+1:]
	}
	return zoned, ""
}

// TitleZone is the zone the ranker gives extra weight (§4.4 zone_weight).
const TitleZone = "title"

// ZoneWeight returns the ranker's zone_weight: 2.0 for title, 1.0 otherwise.
func ZoneWeight(zone string) float64 {
	if zone == TitleZone {
		return 2.0
	}
	return 1.0
}
