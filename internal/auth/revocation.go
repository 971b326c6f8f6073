package auth

import (
	"sync"
	"time"
)

// RevocationStore records tokens that were logged out before their natural
// expiry. A shared expiring key-value store can implement this to survive
// restarts; the in-memory store below covers a single instance.
type RevocationStore interface {
	Revoke(token string, ttl time.Duration)
	IsRevoked(token string) bool
}

// MemoryRevocationStore is an in-process RevocationStore with TTL cleanup.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	done    chan struct{}
}

// NewMemoryRevocationStore creates a revocation store and starts its
// background janitor. Call Close to stop the janitor.
func NewMemoryRevocationStore(cleanupInterval time.Duration) *MemoryRevocationStore {
	s := &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go s.janitor(cleanupInterval)
	return s
}

// Revoke marks a token as revoked for the given TTL. Tokens with a
// non-positive TTL are already expired and need no entry.
func (s *MemoryRevocationStore) Revoke(token string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.revoked[token] = time.Now().Add(ttl)
	s.mu.Unlock()
}

// IsRevoked reports whether the token has been revoked and is still within
// its original lifetime.
func (s *MemoryRevocationStore) IsRevoked(token string) bool {
	s.mu.RLock()
	expiry, ok := s.revoked[token]
	s.mu.RUnlock()
	return ok && time.Now().Before(expiry)
}

// Close stops the janitor goroutine.
func (s *MemoryRevocationStore) Close() {
	close(s.done)
}

func (s *MemoryRevocationStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for token, expiry := range s.revoked {
				if now.After(expiry) {
					delete(s.revoked, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
