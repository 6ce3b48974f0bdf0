package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	codes  map[shortener.Code]shortener.Mapping // code -> mapping
	urls   map[string]shortener.Code            // long url -> code
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: make(map[shortener.Code]shortener.Mapping),
		urls:  make(map[string]shortener.Code),
	}
}

func (m *MemoryStore) FindByLongURL(_ context.Context, longURL string) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.urls[longURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	mapping := m.codes[code]

	return &mapping, nil
}

func (m *MemoryStore) Exists(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.codes[code]

	return ok, nil
}

func (m *MemoryStore) Insert(_ context.Context, mapping *shortener.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.codes[mapping.Code]; ok {
		return shortener.ErrDuplicateCode
	}

	if _, ok := m.urls[mapping.LongURL]; ok {
		return shortener.ErrDuplicateURL
	}

	m.nextID++
	mapping.ID = m.nextID
	mapping.CreatedAt = time.Now()

	m.codes[mapping.Code] = *mapping
	m.urls[mapping.LongURL] = mapping.Code

	return nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.codes[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &mapping, nil
}

// Len returns the number of stored mappings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.codes)
}

var _ shortener.Repository = (*MemoryStore)(nil)
