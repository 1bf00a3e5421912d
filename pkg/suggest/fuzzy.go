package suggest

import (
	"sort"
	"strings"

	"github.com/bastiangx/destserve/internal/utils"
	"github.com/bastiangx/destserve/pkg/destinations"
	"github.com/hbollon/go-edlib"
)

// Ranker produces fuzzy suggestions for queries with too few exact matches.
// The popular candidate pool is computed once, so a Ranker is bound to one index.
type Ranker struct {
	idx         *destinations.Index
	opts        Options
	popularPool []int
}

type candidate struct {
	pos  int
	dist int
}

// NewRanker prepares a ranker over idx.
func NewRanker(idx *destinations.Index, opts Options) *Ranker {
	opts = opts.withDefaults()
	return &Ranker{
		idx:         idx,
		opts:        opts,
		popularPool: popularPool(idx, opts.PopularTerms),
	}
}

// Rank is the one-shot form of Ranker.Rank for callers without a prepared ranker.
func Rank(text string, idx *destinations.Index, popularTerms []string, opts Options) []MatchResult {
	opts.PopularTerms = popularTerms
	return NewRanker(idx, opts).Rank(text)
}

// Rank runs the popular pass and the general pass and merges them.
func (rk *Ranker) Rank(text string) []MatchResult {
	return rk.rank(text, nil)
}

// PopularPoolSize returns how many records the popular pass scores.
func (rk *Ranker) PopularPoolSize() int {
	return len(rk.popularPool)
}

// rank is Rank with terms that must not show up in the output, typically
// the terms already listed as exact matches.
func (rk *Ranker) rank(text string, exclude []string) []MatchResult {
	if text == "" || rk.idx.Len() == 0 {
		return nil
	}

	query := []rune(strings.ToLower(text))
	maxDist := rk.maxDistance(len(query))

	popular := rk.topN(query, maxDist, len(rk.popularPool), rk.opts.PopularTop,
		func(k int) int { return rk.popularPool[k] })

	generalPool := min(rk.idx.Len(), rk.opts.GeneralPoolCap)
	general := rk.topN(query, maxDist, generalPool, rk.opts.GeneralTop,
		func(k int) int { return k })

	return mergeFuzzy(
		rk.toResults(popular, SourcePopular),
		rk.toResults(general, SourceGeneral),
		rk.opts.MaxFuzzy,
		exclude,
	)
}

func (rk *Ranker) maxDistance(queryLen int) int {
	if queryLen <= ShortQueryLen {
		return min(rk.opts.MaxDistance, 1)
	}
	return rk.opts.MaxDistance
}

// topN scores n candidates and keeps the keep closest ones.
// pos maps the k-th candidate to an index position; positions must be
// ascending so the stable sort breaks ties by index order.
func (rk *Ranker) topN(query []rune, maxDist, n, keep int, pos func(k int) int) []candidate {
	if keep <= 0 || n == 0 {
		return nil
	}

	var found []candidate
	for k := 0; k < n; k++ {
		p := pos(k)
		if d := windowDistance(query, rk.idx.LowerTerm(p), maxDist); d <= maxDist {
			found = append(found, candidate{pos: p, dist: d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].dist < found[j].dist
	})
	if len(found) > keep {
		found = found[:keep]
	}
	return found
}

func (rk *Ranker) toResults(found []candidate, source Source) []MatchResult {
	results := make([]MatchResult, 0, len(found))
	for _, c := range found {
		score := scoreFor(c.dist)
		results = append(results, MatchResult{
			Record: rk.idx.At(c.pos),
			Score:  &score,
			Source: source,
		})
	}
	return results
}

// scoreFor maps an edit distance to a score; strictly decreasing in dist.
func scoreFor(dist int) float64 {
	return 1 / (1 + float64(dist))
}

// windowDistance is the smallest OSA distance between query and a window of
// term: the whole term, each token, and token-anchored prefixes within one
// rune of the query length (so a partially typed word can still match).
// Both inputs are lowercase. Returns maxDist+1 when nothing is close enough.
func windowDistance(query []rune, term string, maxDist int) int {
	runes := []rune(term)
	q := string(query)
	best := maxDist + 1

	consider := func(window []rune) {
		// OSA distance is never below the length difference
		if abs(len(window)-len(query)) >= best {
			return
		}
		if d := edlib.OSADamerauLevenshteinDistance(q, string(window)); d < best {
			best = d
		}
	}

	consider(runes)
	for _, start := range utils.TokenStarts(runes) {
		if best == 0 {
			break
		}
		consider(runes[start:utils.TokenEnd(runes, start)])

		rest := runes[start:]
		for l := len(query) - 1; l <= len(query)+1; l++ {
			if l > 0 && l <= len(rest) {
				consider(rest[:l])
			}
		}
	}
	return best
}

// popularPool returns, in index order, the positions of records whose term
// contains one of the popular names.
func popularPool(idx *destinations.Index, names []string) []int {
	if len(names) == 0 || idx.Len() == 0 {
		return nil
	}

	lowered := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			lowered = append(lowered, name)
		}
	}

	var pool []int
	for i := 0; i < idx.Len(); i++ {
		term := idx.LowerTerm(i)
		for _, name := range lowered {
			if strings.Contains(term, name) {
				pool = append(pool, i)
				break
			}
		}
	}
	return pool
}

// mergeFuzzy concatenates popular before general results, drops repeated
// terms (first one wins, excluded terms count as already seen) and caps the output.
func mergeFuzzy(popular, general []MatchResult, limit int, exclude []string) []MatchResult {
	filter := utils.NewTermFilter(exclude...)
	merged := make([]MatchResult, 0, min(limit, len(popular)+len(general)))

	for _, group := range [][]MatchResult{popular, general} {
		for _, r := range group {
			if len(merged) >= limit {
				return merged
			}
			if filter.ShouldInclude(r.Record.Term) {
				merged = append(merged, r)
			}
		}
	}
	return merged
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
