// Package cache keeps computed budget summaries in memory so repeated reads
// of an unchanged budget skip the entry scan.
package cache

import (
	"fmt"
	"sync"
	"time"

	"budgetplanner/internal/budget"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"
)

// SummaryCache maps budget ids to their last computed summary. A nil
// *SummaryCache is valid and caches nothing.
//
// Each budget has a generation that Invalidate bumps. A summary computed
// while the generation moved is never stored.
type SummaryCache struct {
	store *ristretto.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

// NewSummaryCache creates a cache holding up to maxItems summaries, each
// kept for at most ttl.
func NewSummaryCache(maxItems int64, ttl time.Duration) (*SummaryCache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // keys tracked for admission frequency
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summary cache: %w", err)
	}
	return &SummaryCache{store: store, ttl: ttl, generations: make(map[string]uint64)}, nil
}

func key(budgetID string) string {
	return "summary:" + budgetID
}

// Get returns a copy of the cached summary for budgetID.
func (c *SummaryCache) Get(budgetID string) (budget.Summary, bool) {
	if c == nil {
		return budget.Summary{}, false
	}
	v, ok := c.store.Get(key(budgetID))
	if !ok {
		return budget.Summary{}, false
	}
	s, ok := v.(budget.Summary)
	if !ok {
		return budget.Summary{}, false
	}
	return cloneSummary(s), true
}

// Generation returns the current generation of budgetID. Read it before
// loading the data a summary is computed from and pass it to Set.
func (c *SummaryCache) Generation(budgetID string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[budgetID]
}

// Set stores summary for budgetID if no Invalidate happened since gen was
// read, and reports whether it did. The write is visible to Get on return.
func (c *SummaryCache) Set(budgetID string, gen uint64, summary budget.Summary) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[budgetID] != gen {
		return false
	}
	c.store.SetWithTTL(key(budgetID), cloneSummary(summary), 1, c.ttl)
	c.store.Wait()
	return true
}

// Invalidate drops the summary for budgetID and rejects any Set still
// holding the old generation.
func (c *SummaryCache) Invalidate(budgetID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[budgetID]++
	c.store.Del(key(budgetID))
	c.store.Wait()
}

// Close stops the cache's background goroutines.
func (c *SummaryCache) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}

// cloneSummary copies the category map so callers cannot mutate cached state.
func cloneSummary(s budget.Summary) budget.Summary {
	totals := make(map[string]decimal.Decimal, len(s.CategoryTotals))
	for k, v := range s.CategoryTotals {
		totals[k] = v
	}
	s.CategoryTotals = totals
	return s
}
