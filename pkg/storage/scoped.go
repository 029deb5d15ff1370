package storage

import (
	"context"
	"time"
)

// expiringWriter is implemented by stores that can attach a TTL to a write.
type expiringWriter interface {
	WriteWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ScopedStore prefixes every key so a browser session gets its own slots.
type ScopedStore struct {
	Store
	prefix string
	ttl    time.Duration
}

// Scoped returns a view of s where every key is prefixed. When ttl is
// positive and s supports expiry, writes through the view expire after ttl.
func Scoped(s Store, prefix string, ttl time.Duration) *ScopedStore {
	return &ScopedStore{Store: s, prefix: prefix, ttl: ttl}
}

// SessionPrefix is the key prefix for one browser session.
func SessionPrefix(sessionID string) string {
	return "session:" + sessionID + ":"
}

func (s *ScopedStore) Read(ctx context.Context, key string) ([]byte, error) {
	return s.Store.Read(ctx, s.prefix+key)
}

func (s *ScopedStore) Write(ctx context.Context, key string, value []byte) error {
	if ew, ok := s.Store.(expiringWriter); ok && s.ttl > 0 {
		return ew.WriteWithTTL(ctx, s.prefix+key, value, s.ttl)
	}
	return s.Store.Write(ctx, s.prefix+key, value)
}

func (s *ScopedStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.Store.Update(ctx, s.prefix+key, fn)
}

// Close is a no-op; the underlying store is owned by the caller.
func (s *ScopedStore) Close() error { return nil }
