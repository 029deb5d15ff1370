// Package storage provides the key-value area the intake, booking and
// vendor screens share. Values are opaque bytes; callers encode JSON.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the application.
const (
	KeyHospital = "hospitalData"
	KeyVendor   = "vendorData"
	KeyBookings = "bookings"
)

// ErrNotFound is returned by Read when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// UpdateFunc receives the current value (found=false when absent) and returns
// the value to store.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Store defines the operations on the key-value area
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	// Update performs an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON reads key and decodes it into out. It returns false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, out interface{}) (bool, error) {
	data, err := s.Read(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("error decoding %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and writes it to key, replacing any prior value.
func PutJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", key, err)
	}
	return s.Write(ctx, key, data)
}
