// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tradeforge/aatm/internal/core"
)

// Memory is an in-memory DocumentStore used for tests and the
// backtest/simulation trading modes, where no external store is wanted.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]map[string]map[string]any // collection -> id -> fields
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]map[string]any),
	}
}

func (m *Memory) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return core.ErrNotInitialized
	}

	coll, ok := m.data[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		m.data[collection] = coll
	}

	existing, ok := coll[id]
	if !ok || !merge {
		existing = make(map[string]any, len(fields))
		coll[id] = existing
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.data[collection][id]
	if !ok {
		return nil, core.ErrDocumentNotFound
	}

	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if coll, ok := m.data[collection]; ok {
		delete(coll, id)
	}
	return nil
}

func (m *Memory) Documents(ctx context.Context, collection string, limit int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.data[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		fields := make(map[string]any, len(coll[id]))
		for k, v := range coll[id] {
			fields[k] = v
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of documents in a collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}
