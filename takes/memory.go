package takes

import (
	"context"
	"iter"
	"sync"
)

// Memory is an in-memory Store. Takes are stored encoded, so a take read
// back is a copy of the one saved.
type Memory struct {
	mu    sync.RWMutex
	takes map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{takes: map[string][]byte{}}
}

func (m *Memory) Save(_ context.Context, t *Take) error {
	data, err := encode(t)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.takes[t.ID] = data
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*Take, error) {
	m.mu.RLock()
	data, ok := m.takes[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

func (m *Memory) List(_ context.Context) iter.Seq2[*Take, error] {
	m.mu.RLock()
	values := make([][]byte, 0, len(m.takes))
	for _, v := range m.takes {
		values = append(values, v)
	}
	m.mu.RUnlock()
	return sortedSeq(values)
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.takes, id)
	return nil
}

func (m *Memory) Close() error { return nil }
