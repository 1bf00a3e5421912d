package suggest

import (
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ResultCache remembers evaluated queries so retyping the same text
// (backspace, then the same letter again) does not rank twice.
// Entries are evicted least recently used first.
type ResultCache struct {
	trie       *patricia.Trie
	accessTime map[string]int64
	clock      int64
	hits       int
	misses     int
	maxEntries int
	mu         sync.Mutex
}

// NewResultCache creates a cache holding up to maxEntries results.
// A cache with maxEntries <= 0 stores nothing.
func NewResultCache(maxEntries int) *ResultCache {
	return &ResultCache{
		trie:       patricia.NewTrie(),
		accessTime: make(map[string]int64),
		maxEntries: maxEntries,
	}
}

// Get returns a copy of the cached result for key.
func (rc *ResultCache) Get(key string) (Result, bool) {
	if rc == nil || rc.maxEntries <= 0 {
		return Result{}, false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	item := rc.trie.Get(patricia.Prefix(key))
	if item == nil {
		rc.misses++
		return Result{}, false
	}
	rc.hits++
	rc.touch(key)
	return item.(Result).clone(), true
}

// Put stores res under key, evicting the least recently used entry when full.
func (rc *ResultCache) Put(key string, res Result) {
	if rc == nil || rc.maxEntries <= 0 {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	prefix := patricia.Prefix(key)
	if _, exists := rc.accessTime[key]; !exists && len(rc.accessTime) >= rc.maxEntries {
		rc.evictLRU()
	}
	rc.trie.Set(prefix, res.clone())
	rc.touch(key)
}

// Len returns the number of cached results.
func (rc *ResultCache) Len() int {
	if rc == nil {
		return 0
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.accessTime)
}

// Stats returns entry and hit counters.
func (rc *ResultCache) Stats() map[string]int {
	if rc == nil {
		return map[string]int{"cacheEntries": 0, "cacheHits": 0, "cacheMisses": 0, "cacheMax": 0}
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return map[string]int{
		"cacheEntries": len(rc.accessTime),
		"cacheHits":    rc.hits,
		"cacheMisses":  rc.misses,
		"cacheMax":     rc.maxEntries,
	}
}

func (rc *ResultCache) touch(key string) {
	rc.clock++
	rc.accessTime[key] = rc.clock
}

func (rc *ResultCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, t := range rc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldestKey = key
		}
	}
	if oldestTime == math.MaxInt64 {
		return
	}
	rc.trie.Delete(patricia.Prefix(oldestKey))
	delete(rc.accessTime, oldestKey)
	log.Debugf("Evicted query '%s' from result cache", oldestKey)
}

func (r Result) clone() Result {
	r.Exact = slices.Clone(r.Exact)
	r.Fuzzy = slices.Clone(r.Fuzzy)
	return r
}
