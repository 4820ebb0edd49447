// Package session keeps per-visitor widget state in an expiring in-memory cache.
package session

import (
	"context"
	"math"
	"time"

	expirecache "github.com/dgryski/go-expirecache"

	"github.com/okian/samemean/internal/domain/selection"
)

// Store holds the widget state of every mounted instance.
type Store interface {
	// Get returns the state for id, or false when it was never stored,
	// was deleted or has expired.
	Get(ctx context.Context, id string) (selection.State, bool)

	// Put stores the state and restarts the id's time to live.
	Put(ctx context.Context, id string, s selection.State)

	// Delete discards the state so the next visit starts fresh.
	Delete(ctx context.Context, id string)

	// Len counts held entries, including expired ones not yet reclaimed.
	Len() int
}

// Every entry is accounted as one unit, so the cache's size bound is a
// session count bound.
const entrySize = 1

type expiringStore struct {
	cache           *expirecache.Cache
	ttl             time.Duration
	maxSessions     int
	cleanupInterval time.Duration
}

// NewExpiringStore creates a Store backed by go-expirecache. When full, a
// random session is evicted. A cleanup goroutine reclaims expired entries
// for the rest of the process lifetime.
func NewExpiringStore(opts ...Option) Store {
	s := &expiringStore{
		ttl:             30 * time.Minute,
		maxSessions:     10000,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cache = expirecache.New(uint64(s.maxSessions))
	if s.cleanupInterval > 0 {
		go s.cache.ApproximateCleaner(s.cleanupInterval)
	}
	return s
}

func (s *expiringStore) Get(_ context.Context, id string) (selection.State, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return selection.State{}, false
	}
	st, ok := v.(selection.State)
	return st, ok
}

func (s *expiringStore) Put(_ context.Context, id string, st selection.State) {
	s.cache.Set(id, st, entrySize, ttlSeconds(s.ttl))
}

// Delete marks the entry as already expired; the cleaner reclaims its slot.
func (s *expiringStore) Delete(_ context.Context, id string) {
	s.cache.Set(id, selection.State{}, entrySize, -1)
}

func (s *expiringStore) Len() int {
	return s.cache.Items()
}

func ttlSeconds(d time.Duration) int32 {
	secs := math.Ceil(d.Seconds())
	if secs > math.MaxInt32 {
		return math.MaxInt32
	}
	if secs < 1 {
		return 1
	}
	return int32(secs)
}
