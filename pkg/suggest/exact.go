package suggest

import (
	"strings"

	"github.com/bastiangx/destserve/pkg/destinations"
)

// Source tells which stage produced a match.
type Source uint8

const (
	SourceExact Source = iota
	SourcePopular
	SourceGeneral
)

func (s Source) String() string {
	switch s {
	case SourceExact:
		return "exact"
	case SourcePopular:
		return "popular"
	case SourceGeneral:
		return "general"
	}
	return "unknown"
}

// MatchResult is one suggestion. Score is nil for exact matches.
type MatchResult struct {
	Record destinations.Record
	Score  *float64
	Source Source
}

// Match returns the records whose term contains text, ignoring case, in
// index order and capped at limit (limit <= 0 means no cap).
func Match(text string, idx *destinations.Index, limit int) []MatchResult {
	if text == "" || idx.Len() == 0 {
		return nil
	}

	needle := strings.ToLower(text)
	var results []MatchResult
	for i := 0; i < idx.Len(); i++ {
		if !strings.Contains(idx.LowerTerm(i), needle) {
			continue
		}
		results = append(results, MatchResult{Record: idx.At(i), Source: SourceExact})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}
