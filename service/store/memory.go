package store

import (
	"context"
	"sync"

	"coalhub/model"
)

// Memory keeps records in a map guarded by a mutex.
type Memory struct {
	mu      sync.RWMutex
	records map[uint64]*model.TestingRecord
	lastID  uint64
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[uint64]*model.TestingRecord)}
}

func (m *Memory) Get(_ context.Context, id uint64) (*model.TestingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) Put(_ context.Context, rec *model.TestingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == 0 {
		m.lastID++
		rec.ID = m.lastID
	} else if rec.ID > m.lastID {
		m.lastID = rec.ID
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) ListBy(_ context.Context, filter Filter) ([]model.TestingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.TestingRecord, 0, len(m.records))
	for _, rec := range m.records {
		if filter.Match(rec) {
			out = append(out, *rec.Clone())
		}
	}
	return filter.page(out), nil
}

func (m *Memory) Close() error { return nil }
