package suggest

import (
	"strings"

	"github.com/bastiangx/destserve/internal/utils"
	"github.com/bastiangx/destserve/pkg/destinations"
	"github.com/charmbracelet/log"
)

// Result is the outcome of evaluating one query.
type Result struct {
	Query string
	Exact []MatchResult
	Fuzzy []MatchResult
	// IsSearching is set by callers that debounce; Evaluate itself is synchronous.
	IsSearching bool
	// FuzzyRan reports whether the fuzzy ranker was invoked for this call.
	// It is false when the result came from the cache.
	FuzzyRan bool
}

// Empty reports whether the result has no suggestions at all.
func (r Result) Empty() bool {
	return len(r.Exact) == 0 && len(r.Fuzzy) == 0
}

// Engine runs the exact matcher and, when needed, the fuzzy ranker over one index.
type Engine struct {
	index  *destinations.Index
	opts   Options
	ranker *Ranker
	cache  *ResultCache
}

// NewEngine prepares an engine. A nil or unready index yields no matches.
func NewEngine(idx *destinations.Index, opts Options) *Engine {
	opts = opts.withDefaults()
	if idx == nil {
		idx = destinations.Unavailable()
	}

	e := &Engine{
		index:  idx,
		opts:   opts,
		ranker: NewRanker(idx, opts),
		cache:  NewResultCache(opts.CacheSize),
	}
	log.Debugf("Engine ready: %d destinations, %d in popular pool, cache size %d",
		idx.Len(), e.ranker.PopularPoolSize(), opts.CacheSize)
	return e
}

// Evaluate runs the pipeline for text.
func (e *Engine) Evaluate(text string) Result {
	if !utils.IsSearchable(text, e.opts.MinQueryLen) {
		return Result{Query: text}
	}

	key := strings.ToLower(text)
	if cached, ok := e.cache.Get(key); ok {
		cached.Query = text
		cached.FuzzyRan = false
		return cached
	}

	res := Result{
		Query: text,
		Exact: Match(text, e.index, e.opts.MaxExact),
	}

	if len(res.Exact) < e.opts.FuzzyThreshold {
		exclude := make([]string, 0, len(res.Exact))
		for _, m := range res.Exact {
			exclude = append(exclude, m.Record.Term)
		}
		res.Fuzzy = e.ranker.rank(text, exclude)
		res.FuzzyRan = true
	}

	e.cache.Put(key, res)
	return res
}

// Index returns the index the engine searches.
func (e *Engine) Index() *destinations.Index {
	return e.index
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Stats returns counters about the index and the cache.
func (e *Engine) Stats() map[string]int {
	stats := map[string]int{
		"destinations": e.index.Len(),
		"dropped":      e.index.Dropped(),
		"popularPool":  e.ranker.PopularPoolSize(),
		"ready":        0,
	}
	if e.index.Ready() {
		stats["ready"] = 1
	}
	for k, v := range e.cache.Stats() {
		stats[k] = v
	}
	return stats
}
