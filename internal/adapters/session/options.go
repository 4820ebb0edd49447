package session

import "time"

// Option configures the expiring store.
type Option func(*expiringStore)

// WithTTL sets how long an idle session is kept.
func WithTTL(ttl time.Duration) Option {
	return func(s *expiringStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions bounds the number of held sessions.
func WithMaxSessions(n int) Option {
	return func(s *expiringStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithCleanupInterval sets how often expired sessions are reclaimed.
// Zero disables the cleanup goroutine.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *expiringStore) {
		if d >= 0 {
			s.cleanupInterval = d
		}
	}
}
