package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/choice-sim/internal/logit"
	"github.com/yourusername/choice-sim/internal/metrics"
)

// ResultCache memoizes probability tables keyed by parameter hash, so
// repeated runs over identical inputs skip recomputation.
type ResultCache struct {
	cache   *gocache.Cache
	maxSize int
}

// NewResultCache creates a result cache with the given TTL and entry limit.
// maxSize 0 means unbounded.
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	return &ResultCache{
		cache:   gocache.New(ttl, 2*ttl),
		maxSize: maxSize,
	}
}

// Get returns a cached table for the hash, recording hit or miss.
func (c *ResultCache) Get(hash string) (*logit.ProbabilityTable, bool) {
	if value, found := c.cache.Get(hash); found {
		metrics.RecordCacheHit()
		return value.(*logit.ProbabilityTable), true
	}
	metrics.RecordCacheMiss()
	return nil, false
}

// Set stores a table under the hash. New entries are dropped once the cache
// is at capacity; refreshing an existing entry is always allowed.
func (c *ResultCache) Set(hash string, table *logit.ProbabilityTable) {
	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		if _, exists := c.cache.Get(hash); !exists {
			return
		}
	}
	c.cache.SetDefault(hash, table)
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	return c.cache.ItemCount()
}

// ParameterHash derives a stable digest of everything that determines a run's
// output: coefficients, utility formulas, observations and engine options.
// Maps are serialized in sorted key order so the hash is deterministic.
func ParameterHash(coeffs logit.CoefficientSet, formulas []string, observations logit.ObservationTable, stabilized bool) (string, error) {
	type entry struct {
		Key    string    `json:"k"`
		Value  float64   `json:"v,omitempty"`
		Values []float64 `json:"vs,omitempty"`
	}

	coeffEntries := make([]entry, 0, len(coeffs))
	for name, value := range coeffs {
		coeffEntries = append(coeffEntries, entry{Key: name, Value: value})
	}
	sort.Slice(coeffEntries, func(i, j int) bool { return coeffEntries[i].Key < coeffEntries[j].Key })

	obsEntries := make([]entry, 0, len(observations))
	for name, values := range observations {
		obsEntries = append(obsEntries, entry{Key: name, Values: values})
	}
	sort.Slice(obsEntries, func(i, j int) bool { return obsEntries[i].Key < obsEntries[j].Key })

	payload := struct {
		Coefficients []entry  `json:"coefficients"`
		Formulas     []string `json:"formulas"`
		Observations []entry  `json:"observations"`
		Stabilized   bool     `json:"stabilized"`
	}{coeffEntries, formulas, obsEntries, stabilized}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to hash parameters: %w", err)
	}

	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}
