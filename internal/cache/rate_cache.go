package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// CachedRate is the last rate fetched for a currency and the moment it was fetched
type CachedRate struct {
	Rate      decimal.Decimal
	FetchedAt time.Time
}

// RateCache keeps exchange rates per currency code for a fixed TTL.
// Expiry is lazy: entries are judged on read and simply superseded on write,
// nothing sweeps them in the background.
type RateCache struct {
	ttl   time.Duration
	now   func() time.Time
	mutex sync.RWMutex
	rates map[string]CachedRate
}

// Option configures a RateCache
type Option func(*RateCache)

// WithClock replaces time.Now as the cache clock
func WithClock(now func() time.Time) Option {
	return func(rateCache *RateCache) {
		rateCache.now = now
	}
}

// NewRateCache creates an empty cache whose entries stay fresh for ttl
func NewRateCache(ttl time.Duration, options ...Option) *RateCache {
	rateCache := &RateCache{
		ttl:   ttl,
		now:   time.Now,
		rates: make(map[string]CachedRate),
	}
	for _, option := range options {
		option(rateCache)
	}
	return rateCache
}

// Get returns the rate for currencyCode while it is fresh.
// A stale entry and a missing entry both report false.
func (rateCache *RateCache) Get(currencyCode string) (decimal.Decimal, bool) {
	rateCache.mutex.RLock()
	cached, found := rateCache.rates[normalize(currencyCode)]
	rateCache.mutex.RUnlock()

	if !found || !rateCache.now().Before(cached.FetchedAt.Add(rateCache.ttl)) {
		return decimal.Decimal{}, false
	}
	return cached.Rate, true
}

// Put stores rate for currencyCode stamped with the current time, overwriting any previous entry
func (rateCache *RateCache) Put(currencyCode string, rate decimal.Decimal) {
	entry := CachedRate{Rate: rate, FetchedAt: rateCache.now()}

	rateCache.mutex.Lock()
	rateCache.rates[normalize(currencyCode)] = entry
	rateCache.mutex.Unlock()
}

// Entries returns a copy of every stored entry, fresh or not
func (rateCache *RateCache) Entries() map[string]CachedRate {
	rateCache.mutex.RLock()
	defer rateCache.mutex.RUnlock()

	entries := make(map[string]CachedRate, len(rateCache.rates))
	for code, cached := range rateCache.rates {
		entries[code] = cached
	}
	return entries
}

// TTL returns how long an entry stays fresh
func (rateCache *RateCache) TTL() time.Duration {
	return rateCache.ttl
}

func normalize(currencyCode string) string {
	return strings.ToUpper(currencyCode)
}
