package storage

import (
	"sync"

	"github.com/ssargent/raffle/pkg/store"
)

// MemoryEngine is a process-local engine. Nothing survives Close.
type MemoryEngine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	order  []string // insertion order of live keys
	closed bool
}

var _ store.Engine = (*MemoryEngine)(nil)

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

func (m *MemoryEngine) Put(key, value []byte) error {
	if len(key) == 0 {
		return store.ErrInvalidKey
	}
	if len(value) == 0 {
		return store.ErrInvalidValue
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return store.ErrStoreClosed
	}
	k := string(key)
	if _, ok := m.data[k]; !ok {
		m.order = append(m.order, k)
	}
	m.data[k] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryEngine) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, store.ErrStoreClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryEngine) Delete(key []byte) error {
	if len(key) == 0 {
		return store.ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return store.ErrStoreClosed
	}
	k := string(key)
	if _, ok := m.data[k]; !ok {
		return nil
	}
	delete(m.data, k)
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Scan visits pairs in insertion order over a copy taken when it starts
func (m *MemoryEngine) Scan(fn func(key, value []byte) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return store.ErrStoreClosed
	}
	keys := append([]string(nil), m.order...)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = m.data[k]
	}
	m.mu.RUnlock()

	for i, k := range keys {
		if err := fn([]byte(k), append([]byte(nil), values[i]...)); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryEngine) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, store.ErrStoreClosed
	}
	return len(m.data), nil
}

func (m *MemoryEngine) Sync() error {
	return nil
}

func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	m.order = nil
	return nil
}
