// Package resolve turns a settled query into its result list, consulting an LRU cache
// before running the matcher.
package resolve

import (
	"fmt"
	"strings"
	"sync"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/lru"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/match"
	"github.com/charmbracelet/log"
)

// Resolver caches matcher output per lower-cased query.
// Get and Set on the cache happen under one lock, so a Resolver may be shared.
type Resolver struct {
	matcher match.Matcher

	mu    sync.Mutex
	cache *lru.Cache[string, []dataset.Candidate]
	runs  int
}

// New creates a Resolver whose cache holds up to capacity queries.
func New(matcher match.Matcher, capacity int) (*Resolver, error) {
	cache, err := lru.New[string, []dataset.Candidate](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &Resolver{matcher: matcher, cache: cache}, nil
}

// Key normalizes a query into its cache key.
func Key(query string) string {
	return strings.ToLower(query)
}

// Resolve returns the results for query. A blank query returns an empty list
// without touching the cache. The returned slice is shared with the cache and
// must not be modified.
func (r *Resolver) Resolve(query string) []dataset.Candidate {
	if match.IsBlank(query) {
		return []dataset.Candidate{}
	}
	key := Key(query)

	r.mu.Lock()
	defer r.mu.Unlock()

	if results, ok := r.cache.Get(key); ok {
		log.Debug("Cache hit", "query", key, "results", len(results))
		return results
	}

	results := r.matcher.Match(query)
	r.runs++
	r.cache.Set(key, results)
	log.Debug("Cache miss", "query", key, "results", len(results), "cached", r.cache.Len())
	return results
}

// Cached reports whether query currently has a cache entry, without changing recency.
func (r *Resolver) Cached(query string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Contains(Key(query))
}

// Stats merges the cache counters with the number of matcher runs.
func (r *Resolver) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := r.cache.Stats()
	stats["matcherRuns"] = r.runs
	return stats
}
