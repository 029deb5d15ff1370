package storage

import (
	"context"
	"errors"
	"time"
)

// ObserveFunc is told about every store call once it returns.
type ObserveFunc func(op string, took time.Duration, err error)

type observedStore struct {
	Store
	observe ObserveFunc
}

// WithObserver reports the duration and outcome of each call on s to observe.
func WithObserver(s Store, observe ObserveFunc) Store {
	return &observedStore{Store: s, observe: observe}
}

func (s *observedStore) Read(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.Store.Read(ctx, key)
	if errors.Is(err, ErrNotFound) {
		s.observe("read", time.Since(start), nil)
	} else {
		s.observe("read", time.Since(start), err)
	}
	return value, err
}

func (s *observedStore) Write(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.Store.Write(ctx, key, value)
	s.observe("write", time.Since(start), err)
	return err
}

func (s *observedStore) WriteWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	var err error
	if ew, ok := s.Store.(expiringWriter); ok {
		err = ew.WriteWithTTL(ctx, key, value, ttl)
	} else {
		err = s.Store.Write(ctx, key, value)
	}
	s.observe("write", time.Since(start), err)
	return err
}

func (s *observedStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	start := time.Now()
	err := s.Store.Update(ctx, key, fn)
	s.observe("update", time.Since(start), err)
	return err
}

func (s *observedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.Store.Ping(ctx)
	s.observe("ping", time.Since(start), err)
	return err
}
