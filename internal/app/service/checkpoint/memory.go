package checkpoint

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store used by tests and local development.
// It honors the same first-write-wins contract as the durable store.
type Memory struct {
	mu      sync.Mutex
	results map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{results: make(map[string][]byte)}
}

func key(runID, label string) string {
	return runID + "/" + label
}

func (m *Memory) IsCompleted(_ context.Context, runID, label string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.results[key(runID, label)]
	return ok, nil
}

func (m *Memory) RecordCompleted(_ context.Context, runID, label string, result []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(runID, label)
	if _, ok := m.results[k]; ok {
		return nil
	}
	if len(result) == 0 {
		result = []byte("{}")
	}
	cp := make([]byte, len(result))
	copy(cp, result)
	m.results[k] = cp
	return nil
}

func (m *Memory) Result(_ context.Context, runID, label string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[key(runID, label)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotCompleted, runID, label)
	}
	return r, nil
}
