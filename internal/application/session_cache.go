package application

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSessionCacheSize = 128
	defaultSessionCacheTTL  = 30 * time.Second
)

// SessionCache keeps recently listed session schedules keyed by batch ID so
// repeated reads of an unchanged batch skip the database. Entries expire after
// the configured TTL and are dropped whenever the batch is mutated.
type SessionCache struct {
	lru *expirable.LRU[string, []Session]
}

// NewSessionCache builds a cache holding at most size batches for ttl. Non
// positive arguments fall back to 128 entries and 30 seconds.
func NewSessionCache(size int, ttl time.Duration) *SessionCache {
	if size <= 0 {
		size = defaultSessionCacheSize
	}
	if ttl <= 0 {
		ttl = defaultSessionCacheTTL
	}
	return &SessionCache{lru: expirable.NewLRU[string, []Session](size, nil, ttl)}
}

// Get returns a copy of the cached sessions for batchID.
func (c *SessionCache) Get(batchID string) ([]Session, bool) {
	if c == nil {
		return nil, false
	}
	sessions, ok := c.lru.Get(batchID)
	if !ok {
		return nil, false
	}
	return cloneSessions(sessions), true
}

// Store caches a copy of sessions for batchID.
func (c *SessionCache) Store(batchID string, sessions []Session) {
	if c == nil {
		return
	}
	c.lru.Add(batchID, cloneSessions(sessions))
}

// Invalidate drops the cached sessions for batchID.
func (c *SessionCache) Invalidate(batchID string) {
	if c == nil {
		return
	}
	c.lru.Remove(batchID)
}

// Len reports the number of cached batches.
func (c *SessionCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func cloneSessions(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	for i, session := range sessions {
		if session.Notes != nil {
			notes := *session.Notes
			session.Notes = &notes
		}
		out[i] = session
	}
	return out
}
