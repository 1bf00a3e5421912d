package suggest

import (
	"testing"

	"github.com/bastiangx/destserve/pkg/destinations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateShortQuery(t *testing.T) {
	e := NewEngine(cityIndex(), DefaultOptions())

	for _, q := range []string{"", "S", "é"} {
		res := e.Evaluate(q)
		assert.Equal(t, q, res.Query)
		assert.True(t, res.Empty(), "query %q", q)
		assert.False(t, res.FuzzyRan)
	}
	assert.Zero(t, e.Stats()["cacheEntries"], "short queries are never cached")
}

func TestEvaluateFuzzyRunsOnlyBelowThreshold(t *testing.T) {
	e := NewEngine(cityIndex(), DefaultOptions())

	tests := []struct {
		query    string
		fuzzyRan bool
	}{
		{"Singapire", true}, // no exact match
		{"Zurich", true},    // one exact match
		{"Tokyo", false},    // Tokyo and Tokyo Bay
		{"san", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := e.Evaluate(tt.query)
			assert.Equal(t, tt.fuzzyRan, res.FuzzyRan)
			assert.Equal(t, len(res.Exact) < DefaultOptions().FuzzyThreshold, res.FuzzyRan)
			if !res.FuzzyRan {
				assert.Empty(t, res.Fuzzy)
			}
			assert.LessOrEqual(t, len(res.Exact), 8)
			assert.LessOrEqual(t, len(res.Fuzzy), 5)
		})
	}
}

func TestEvaluateTypo(t *testing.T) {
	res := NewEngine(cityIndex(), DefaultOptions()).Evaluate("Singapire")
	assert.Empty(t, res.Exact)
	require.True(t, res.FuzzyRan)
	require.NotEmpty(t, res.Fuzzy)
	assert.Equal(t, "Singapore", res.Fuzzy[0].Record.Term)
}

func TestEvaluateNoMatches(t *testing.T) {
	res := NewEngine(cityIndex(), DefaultOptions()).Evaluate("Zzqx")
	assert.Empty(t, res.Exact)
	assert.True(t, res.FuzzyRan)
	assert.LessOrEqual(t, len(res.Fuzzy), 5)

	seen := map[string]bool{}
	for _, r := range res.Fuzzy {
		assert.False(t, seen[r.Record.Term])
		seen[r.Record.Term] = true
	}
}

func TestEvaluateExcludesExactTermsFromFuzzy(t *testing.T) {
	idx := indexOf("Zurich", "Zürich", "Zurick")
	res := NewEngine(idx, DefaultOptions()).Evaluate("Zurich")

	require.Equal(t, []string{"Zurich"}, terms(res.Exact))
	require.True(t, res.FuzzyRan)
	assert.NotContains(t, terms(res.Fuzzy), "Zurich")
	assert.Contains(t, terms(res.Fuzzy), "Zurick")
}

func TestEvaluateUnavailableIndex(t *testing.T) {
	for name, idx := range map[string]*destinations.Index{
		"nil":         nil,
		"unavailable": destinations.Unavailable(),
		"empty":       destinations.New(nil),
	} {
		t.Run(name, func(t *testing.T) {
			e := NewEngine(idx, DefaultOptions())
			res := e.Evaluate("Paris")
			assert.True(t, res.Empty())
			assert.Equal(t, "Paris", res.Query)
		})
	}
}

func TestEvaluateUsesCache(t *testing.T) {
	e := NewEngine(cityIndex(), DefaultOptions())

	first := e.Evaluate("Pari")
	second := e.Evaluate("PARI")

	assert.Equal(t, "PARI", second.Query)
	assert.Equal(t, terms(first.Exact), terms(second.Exact))
	assert.Equal(t, 1, e.Stats()["cacheHits"])
	assert.Equal(t, 1, e.Stats()["cacheEntries"])
}

func TestEvaluateCacheHitSkipsRanker(t *testing.T) {
	e := NewEngine(cityIndex(), DefaultOptions())

	first := e.Evaluate("Singapire")
	require.True(t, first.FuzzyRan)

	second := e.Evaluate("Singapire")
	assert.False(t, second.FuzzyRan)
	assert.Equal(t, terms(first.Fuzzy), terms(second.Fuzzy))
	assert.Equal(t, 1, e.Stats()["cacheHits"])
}

func TestEvaluateFuzzyDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.FuzzyThreshold = 0

	res := NewEngine(cityIndex(), opts).Evaluate("Singapire")
	assert.False(t, res.FuzzyRan)
	assert.True(t, res.Empty())
}

func TestEngineStats(t *testing.T) {
	idx := destinations.New([]destinations.Record{
		{ID: "1", Term: "Paris"},
		{ID: "", Term: "Nowhere"},
		{ID: "2", Term: "London"},
	})
	stats := NewEngine(idx, DefaultOptions()).Stats()

	assert.Equal(t, 2, stats["destinations"])
	assert.Equal(t, 1, stats["dropped"])
	assert.Equal(t, 2, stats["popularPool"])
	assert.Equal(t, 1, stats["ready"])
	assert.Equal(t, 1024, stats["cacheMax"])
}

func BenchmarkEvaluateExact(b *testing.B) {
	e := NewEngine(cityIndex(), DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate("San")
	}
}

func BenchmarkRankTypo(b *testing.B) {
	rk := NewRanker(cityIndex(), DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rk.Rank("Singapire")
	}
}
