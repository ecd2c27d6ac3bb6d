package mapbox

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/couchcryptid/sightings-etl/internal/domain"
	"github.com/couchcryptid/sightings-etl/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. NUFORC repeats
// the same cities thousands of times, so most lookups are hits.
type CachedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics

	mu      sync.Mutex
	max     int
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key    string
	result domain.GeocodingResult
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		metrics: metrics,
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, city, state string) (domain.GeocodingResult, error) {
	key := cacheKey(city, state)
	if result, ok := c.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, city, state)
	if err != nil {
		return result, err
	}
	// Empty results are not cached so a later run can retry them.
	if result.Lat != 0 || result.Lon != 0 {
		c.put(key, result)
	}
	return result, nil
}

// Len returns the number of cached entries.
func (c *CachedGeocoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// cacheKey normalizes case and spacing; NUFORC spells cities inconsistently.
func cacheKey(city, state string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "|" + strings.ToUpper(strings.TrimSpace(state))
}

func (c *CachedGeocoder) get(key string) (domain.GeocodingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.GeocodingResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

func (c *CachedGeocoder) put(key string, result domain.GeocodingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).result = result
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
