package storage

import (
	"sync"
	"time"
)

// memoryStore keeps seen recipes in process memory; contents are lost on exit.
type memoryStore struct {
	mu      sync.Mutex
	expiry  map[string]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		expiry:  make(map[string]time.Time),
		ttl:     opts.RecipeTTL,
		nowFunc: time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) SeenRecipe(feedID, recipeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recipeKey(feedID, recipeID)
	exp, ok := m.expiry[key]
	if !ok {
		return false, nil
	}
	if !exp.After(m.nowFunc()) {
		delete(m.expiry, key)
		return false, nil
	}
	return true, nil
}

func (m *memoryStore) MarkRecipe(feedID, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiry[recipeKey(feedID, recipeID)] = m.nowFunc().Add(m.ttl)
	return nil
}
