package scoring

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memo caches computed scores and can be shared by many scorers. Keys cover the
// scorer profile (target skills, experience cap, weights, salary band) and the
// scored attributes, so scorers with different settings never see each other's values.
type Memo struct {
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo creates a memo whose entries expire after ttl. Zero keeps entries forever.
func NewMemo(ttl time.Duration) *Memo {
	if ttl <= 0 {
		return &Memo{cache: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Memo{cache: gocache.New(ttl, ttl/2)}
}

func (m *Memo) get(key string) (float64, bool) {
	if cached, ok := m.cache.Get(key); ok {
		m.hits.Add(1)
		return cached.(float64), true
	}
	m.misses.Add(1)
	return 0, false
}

func (m *Memo) set(key string, score float64) {
	m.cache.SetDefault(key, score)
}

// Len returns the number of cached scores, expired ones included until cleanup.
func (m *Memo) Len() int {
	return m.cache.ItemCount()
}

// Stats returns how many lookups were served from the memo and how many were computed.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
