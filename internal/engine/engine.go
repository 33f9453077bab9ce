// Package engine is the composition root: it wires the query parser, the
// boolean evaluator, and the ranker together behind a single Search
// call, and passes the Index Store's autocomplete straight through.
package engine

import (
	"context"
	"time"

	"github.com/wizenheimer/lexdex/internal/boolean"
	"github.com/wizenheimer/lexdex/internal/index"
	"github.com/wizenheimer/lexdex/internal/query"
	"github.com/wizenheimer/lexdex/internal/rank"
)

// Engine runs one query end to end over a loaded Index Store.
type Engine struct {
	idx    *index.Store
	eval   *boolean.Evaluator
	ranker *rank.Ranker
	obs    Observer
}

// New builds an Engine over idx. obs must not be nil; pass
// metrics.NullObserver{} when no metrics sink is wired.
func New(idx *index.Store, cfg rank.Config, obs Observer) *Engine {
	return &Engine{
		idx:    idx,
		eval:   boolean.NewEvaluator(idx),
		ranker: rank.New(idx, cfg),
		obs:    obs,
	}
}

// Search classifies raw, runs it through the boolean or free-text path,
// and returns up to topK results. Free-text results are ordered by
// descending score; boolean results list the boolean hits first in
// ascending doc ID order, then the free-text backfill in ranked order. ctx is
// checked between pipeline stages (parse, score, evaluate) so a caller
// can cancel a slow query without waiting for it to run to completion.
func (e *Engine) Search(ctx context.Context, raw string, topK int) ([]rank.Result, error) {
	start := time.Now()

	q, err := query.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryType := "freetext"
	if q.Boolean {
		queryType = "boolean"
	}
	defer func() {
		e.obs.QueryLatency(queryType, time.Since(start).Seconds())
	}()

	freeText := e.ranker.Score(q.Bag)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !q.Boolean {
		return e.searchFreeText(q, freeText, topK)
	}
	return e.searchBoolean(ctx, q, freeText, topK)
}

// searchFreeText runs pseudo-relevance feedback over the initial ranking
// and re-scores with the expanded bag when feedback actually added terms.
func (e *Engine) searchFreeText(q *query.Query, initial []rank.Result, topK int) ([]rank.Result, error) {
	refined := e.ranker.Refine(q.Bag, q.Tokens, initial)

	final := initial
	if len(refined) != len(q.Bag) {
		final = e.ranker.Score(refined)
	}

	if len(final) > topK {
		final = final[:topK]
	}
	return final, nil
}

// searchBoolean evaluates the postfix program and falls back to the
// free-text ranking to backfill a short or empty boolean result (§4.3).
// A postings decode failure mid-evaluation is treated as an empty
// boolean result, not a fatal query error (§7 Policy).
func (e *Engine) searchBoolean(ctx context.Context, q *query.Query, freeText []rank.Result, topK int) ([]rank.Result, error) {
	booleanIDs, err := e.eval.Evaluate(q.Postfix)
	if err != nil {
		e.obs.PostingsDecodeError()
		booleanIDs = nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	freeTextIDs := make([]int, len(freeText))
	scoreByDoc := make(map[int]float64, len(freeText))
	for i, r := range freeText {
		freeTextIDs[i] = r.DocID
		scoreByDoc[r.DocID] = r.Score
	}

	if len(booleanIDs) < boolean.DefaultTotal {
		e.obs.BooleanFallbackTriggered()
	}
	mergedIDs := boolean.FallbackMerge(booleanIDs, freeTextIDs, boolean.DefaultBoolPrefix, boolean.DefaultTotal)

	results := make([]rank.Result, len(mergedIDs))
	for i, id := range mergedIDs {
		results[i] = rank.Result{DocID: id, Score: scoreByDoc[id]}
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Suggestions passes an autocomplete prefix straight through to the
// Index Store; it never touches the query parser or ranker.
func (e *Engine) Suggestions(prefix string, limit int) []string {
	return e.idx.Suggestions(prefix, limit)
}

// Metadata passes a document's court/date record straight through to
// the Index Store, for callers (e.g. the API layer) that want to
// enrich a result beyond its doc ID and score.
func (e *Engine) Metadata(docID int) (index.Metadata, bool) {
	return e.idx.Metadata(docID)
}
