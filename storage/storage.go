// Package storage holds the client-local persisted state of one storefront
// profile: the current user, one cart per email and the checkout draft.
// It plays the part a browser's localStorage plays for a web storefront.
package storage

import (
	"sync"

	"github.com/pkg/errors"
)

// Fixed keys owned by the storefront core.
const (
	UserKey     = "ecoisla_user"
	CartPrefix  = "ecoisla_cart_"
	CheckoutKey = "ecoisla_checkout"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Local is a string key/value store. Every Set replaces the whole value.
type Local interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Memory is a Local kept in process memory.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Keys returns the stored keys, in no particular order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}
