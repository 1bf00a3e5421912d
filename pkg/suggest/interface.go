/*
Package suggest is the core of the destination search box: an exact substring
matcher, a fuzzy fallback ranker and the Engine that runs them in order.

Evaluation of a query goes:

	text < MinQueryLen runes  -> empty result, nothing ranked
	cache hit                 -> cached result
	exact substring matches   -> at most MaxExact, index order
	exact < FuzzyThreshold    -> fuzzy: popular pass, general pass, merged

Exact matches never carry a score. Fuzzy matches carry a score in (0, 1]
(higher is better), derived from an optimal string alignment distance, so a
single typo (insertion, deletion, substitution or adjacent swap) still finds
the destination.

Everything here is synchronous and free of UI concerns. Debouncing lives in
package debounce and the per-search-box state in package session.
*/
package suggest

// Evaluator turns the current input text into a result set.
type Evaluator interface {
	// Evaluate runs the full matching pipeline for text.
	Evaluate(text string) Result

	// Stats returns counters about the index and the result cache.
	Stats() map[string]int
}
