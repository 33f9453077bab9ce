// Package query turns a raw query string into either a postfix boolean
// program or a free-text term-frequency bag, mirroring the
// classify-then-tokenize pipeline of the retrieval engine this package
// was built against.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wizenheimer/lexdex/internal/analysis"
)

var (
	boolTokenPattern = regexp.MustCompile(`"[^"]+"|\S+`)
	wordPattern      = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// Query is the Parser's output: either a postfix boolean program (And/Or/
// Not atoms interleaved with term and phrase atoms) or a free-text bag,
// depending on Boolean. Bag and Tokens are populated on both paths so a
// boolean query that returns no hits can still fall back to free-text
// ranking, and so the Feedback Refiner can inspect the original tokens.
type Query struct {
	Boolean bool
	Postfix []string       // set iff Boolean; "and"/"or"/"not" or an atom
	Bag     map[string]int // stem -> query frequency
	Tokens  []string       // atoms in original order, digits untouched
}

// Parse classifies raw as boolean (contains the literal uppercase token
// "AND") or free-text, and tokenizes it accordingly.
func Parse(raw string) (*Query, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyQuery
	}
	if strings.Count(raw, `"`)%2 != 0 {
		return nil, fmt.Errorf("%w: unbalanced quote", ErrQuerySyntax)
	}

	if isBooleanQuery(raw) {
		return parseBoolean(raw)
	}
	return parseFreeText(raw), nil
}

func isBooleanQuery(raw string) bool {
	for _, f := range strings.Fields(raw) {
		if f == "AND" {
			return true
		}
	}
	return false
}

func parseFreeText(raw string) *Query {
	words := wordPattern.FindAllString(strings.ToLower(raw), -1)
	bag := make(map[string]int, len(words))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		stem := analysis.Stem(w)
		if stem == "" {
			continue
		}
		tokens = append(tokens, stem)
		bag[stem]++
	}
	return &Query{Bag: bag, Tokens: tokens}
}

func parseBoolean(raw string) (*Query, error) {
	parts := boolTokenPattern.FindAllString(raw, -1)
	bag := make(map[string]int)
	infix := make([]string, 0, len(parts))

	for _, tok := range parts {
		switch {
		case strings.EqualFold(tok, "AND"):
			infix = append(infix, "and")
		case strings.EqualFold(tok, "OR"):
			infix = append(infix, "or")
		case strings.EqualFold(tok, "NOT"):
			infix = append(infix, "not")
		case len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`):
			stems := analysis.Tokenize(strings.Trim(tok, `"`))
			if len(stems) == 0 {
				continue
			}
			for _, s := range stems {
				bag[s]++
			}
			infix = append(infix, strings.Join(stems, "_"))
		default:
			stem := analysis.Stem(tok)
			if stem == "" {
				continue
			}
			bag[stem]++
			infix = append(infix, stem)
		}
	}

	postfix, err := shuntingYard(infix)
	if err != nil {
		return nil, err
	}

	return &Query{Boolean: true, Postfix: postfix, Bag: bag, Tokens: infix}, nil
}

var precedence = map[string]int{"not": 3, "and": 2, "or": 1}

// rightAssociative reports whether op groups right-to-left; "not" is the
// only such operator here (and=L, or=L).
func rightAssociative(op string) bool { return op == "not" }

// shuntingYard converts an infix atom stream to postfix, per §4.2's
// precedence (not > and > or) and associativity (not=R, and=L, or=L).
func shuntingYard(infix []string) ([]string, error) {
	var output, operators []string

	for _, tok := range infix {
		prec, isOp := precedence[tok]
		if !isOp {
			output = append(output, tok)
			continue
		}
		for len(operators) > 0 {
			top := operators[len(operators)-1]
			topPrec := precedence[top]
			if topPrec > prec || (topPrec == prec && !rightAssociative(tok)) {
				output = append(output, top)
				operators = operators[:len(operators)-1]
				continue
			}
			break
		}
		operators = append(operators, tok)
	}

	for len(operators) > 0 {
		output = append(output, operators[len(operators)-1])
		operators = operators[:len(operators)-1]
	}

	return output, nil
}
