package utils

// TermFilter drops repeated display terms from a suggestion stream.
// Terms are compared exactly; the first occurrence wins.
// Not safe for concurrent use.
type TermFilter struct {
	seen map[string]struct{}
}

// NewTermFilter creates a filter that already treats the given terms as seen.
func NewTermFilter(seen ...string) *TermFilter {
	f := &TermFilter{seen: make(map[string]struct{}, len(seen)+8)}
	for _, term := range seen {
		f.seen[term] = struct{}{}
	}
	return f
}

// ShouldInclude reports whether term is new, and marks it as seen.
func (f *TermFilter) ShouldInclude(term string) bool {
	if _, dup := f.seen[term]; dup {
		return false
	}
	f.seen[term] = struct{}{}
	return true
}
