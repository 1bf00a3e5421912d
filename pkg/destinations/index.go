/*
Package destinations holds the read-only destination index the search pipeline runs on.

An index is an ordered list of records, loaded wholesale once at startup from a
JSON list or a checksummed binary (msgpack) file. Records without an id or a
display term are dropped while the index is prepared so matching code never has
to deal with them.

	idx, err := destinations.Load("data/destinations.idx")
	if err != nil {
		idx = destinations.Unavailable()
	}

The order of records is significant: exact matches are returned in index order
and fuzzy ties are broken by it.
*/
package destinations

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Record is a single searchable destination.
type Record struct {
	ID     string  `msgpack:"id" json:"id"`
	Term   string  `msgpack:"t" json:"term"`
	Region *string `msgpack:"r,omitempty" json:"region"`
}

// RegionOr returns the region or fallback when the record has none.
func (r Record) RegionOr(fallback string) string {
	if r.Region == nil {
		return fallback
	}
	return *r.Region
}

// Index is an immutable, ordered destination list.
// A nil *Index behaves like an empty, unready index.
type Index struct {
	records []Record
	lower   []string
	byID    map[string]int
	terms   *patricia.Trie
	ready   bool
	dropped int
}

// New prepares an index from records, dropping malformed entries.
// The given slice is copied.
func New(records []Record) *Index {
	idx := &Index{
		records: make([]Record, 0, len(records)),
		lower:   make([]string, 0, len(records)),
		byID:    make(map[string]int, len(records)),
		terms:   patricia.NewTrie(),
		ready:   true,
	}

	for _, r := range records {
		if !valid(r) {
			idx.dropped++
			continue
		}
		pos := len(idx.records)
		lowerTerm := strings.ToLower(r.Term)
		idx.records = append(idx.records, r)
		idx.lower = append(idx.lower, lowerTerm)

		// first occurrence of an id wins lookups
		if _, exists := idx.byID[r.ID]; !exists {
			idx.byID[r.ID] = pos
		}

		key := patricia.Prefix(lowerTerm)
		if item := idx.terms.Get(key); item != nil {
			idx.terms.Set(key, append(item.([]int), pos))
		} else {
			idx.terms.Insert(key, []int{pos})
		}
	}

	if idx.dropped > 0 {
		log.Debugf("Dropped %d malformed destination records", idx.dropped)
	}
	return idx
}

// Unavailable returns an empty index flagged as not ready.
// It is what callers fall back to when loading fails.
func Unavailable() *Index {
	return &Index{
		byID:  map[string]int{},
		terms: patricia.NewTrie(),
	}
}

func valid(r Record) bool {
	return strings.TrimSpace(r.ID) != "" && strings.TrimSpace(r.Term) != ""
}

// Len returns the number of usable records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// At returns the record at position i.
func (idx *Index) At(i int) Record {
	return idx.records[i]
}

// LowerTerm returns the lowercased term of the record at position i.
func (idx *Index) LowerTerm(i int) string {
	return idx.lower[i]
}

// Ready reports whether the index was loaded successfully.
func (idx *Index) Ready() bool {
	return idx != nil && idx.ready
}

// Dropped returns how many input records were filtered out as malformed.
func (idx *Index) Dropped() int {
	if idx == nil {
		return 0
	}
	return idx.dropped
}

// Lookup finds a record by id.
func (idx *Index) Lookup(id string) (Record, bool) {
	if idx == nil {
		return Record{}, false
	}
	pos, ok := idx.byID[id]
	if !ok {
		return Record{}, false
	}
	return idx.records[pos], true
}

// ByTerm returns every record whose term equals term case-insensitively, in index order.
func (idx *Index) ByTerm(term string) []Record {
	if idx == nil || idx.terms == nil {
		return nil
	}
	item := idx.terms.Get(patricia.Prefix(strings.ToLower(term)))
	if item == nil {
		return nil
	}
	positions := item.([]int)
	out := make([]Record, 0, len(positions))
	for _, pos := range positions {
		out = append(out, idx.records[pos])
	}
	return out
}
