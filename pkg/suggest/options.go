package suggest

// Options tunes the matching pipeline. It is passed to NewEngine explicitly;
// the package keeps no mutable globals.
type Options struct {
	// MinQueryLen is the minimum rune length that triggers a search.
	MinQueryLen int
	// MaxExact caps exact matches.
	MaxExact int
	// FuzzyThreshold runs fuzzy ranking when exact matches are fewer than this.
	// 0 disables fuzzy ranking.
	FuzzyThreshold int
	// PopularTop is how many popular-pass matches are kept.
	PopularTop int
	// GeneralTop is how many general-pass matches are kept.
	GeneralTop int
	// GeneralPoolCap bounds how many records the general pass scans.
	GeneralPoolCap int
	// MaxFuzzy caps the merged fuzzy output.
	MaxFuzzy int
	// MaxDistance is the largest edit distance still reported as a match.
	// Queries of up to ShortQueryLen runes are held to 1 regardless.
	MaxDistance int
	// PopularTerms are well-known city names that get their own pass.
	PopularTerms []string
	// CacheSize is the number of evaluated queries kept; 0 disables the cache.
	CacheSize int
}

// ShortQueryLen is the query length at or below which only one edit is tolerated.
const ShortQueryLen = 4

// DefaultPopularTerms returns the curated list of well-known cities.
func DefaultPopularTerms() []string {
	return []string{
		"Singapore", "Kuala Lumpur", "Bangkok", "Tokyo", "Seoul",
		"Hong Kong", "Taipei", "Jakarta", "Bali", "Manila",
		"Sydney", "Melbourne", "London", "Paris", "New York",
		"Los Angeles", "Dubai", "Osaka", "Shanghai", "Beijing",
	}
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		MinQueryLen:    2,
		MaxExact:       8,
		FuzzyThreshold: 2,
		PopularTop:     3,
		GeneralTop:     5,
		GeneralPoolCap: 25000,
		MaxFuzzy:       5,
		MaxDistance:    2,
		PopularTerms:   DefaultPopularTerms(),
		CacheSize:      1024,
	}
}

// withDefaults fills zero values so a partially built Options still works.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinQueryLen <= 0 {
		o.MinQueryLen = d.MinQueryLen
	}
	if o.MaxExact <= 0 {
		o.MaxExact = d.MaxExact
	}
	if o.FuzzyThreshold < 0 {
		o.FuzzyThreshold = 0
	}
	if o.PopularTop < 0 {
		o.PopularTop = 0
	}
	if o.GeneralTop < 0 {
		o.GeneralTop = 0
	}
	if o.GeneralPoolCap <= 0 {
		o.GeneralPoolCap = d.GeneralPoolCap
	}
	if o.MaxFuzzy <= 0 {
		o.MaxFuzzy = d.MaxFuzzy
	}
	if o.MaxDistance <= 0 {
		o.MaxDistance = 1
	}
	if o.CacheSize < 0 {
		o.CacheSize = 0
	}
	return o
}
