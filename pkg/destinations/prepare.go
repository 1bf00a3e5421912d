package destinations

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// PrepareStats counts what Prepare changed.
type PrepareStats struct {
	Input      int
	Kept       int
	Invalid    int
	Duplicates int
	Normalized int
}

// Prepare cleans records for writing a binary index: terms and regions are
// NFC normalized with whitespace collapsed and control characters removed,
// invalid records are dropped, and repeated ids keep their first record.
// Order is preserved.
func Prepare(records []Record) ([]Record, PrepareStats) {
	stats := PrepareStats{Input: len(records)}
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))

	for _, r := range records {
		cleaned := Record{
			ID:   strings.TrimSpace(r.ID),
			Term: NormalizeText(r.Term),
		}
		if r.Region != nil {
			if region := NormalizeText(*r.Region); region != "" {
				cleaned.Region = &region
			}
		}
		if !valid(cleaned) {
			stats.Invalid++
			continue
		}
		if _, dup := seen[cleaned.ID]; dup {
			stats.Duplicates++
			continue
		}
		seen[cleaned.ID] = struct{}{}

		if cleaned.Term != r.Term {
			stats.Normalized++
		}
		out = append(out, cleaned)
	}
	stats.Kept = len(out)
	return out, stats
}

// NormalizeText applies NFC, drops control characters and collapses runs of
// whitespace into single spaces.
func NormalizeText(text string) string {
	normed := norm.NFC.String(text)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, normed)
	return strings.Join(strings.Fields(normed), " ")
}
