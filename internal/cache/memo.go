package cache

import "sync"

// Memo stores computations derived from one cached value. It is dropped
// together with that value, so entries never outlive their inputs.
type Memo struct {
	mu     sync.Mutex
	values map[string]any
}

func newMemo() *Memo {
	return &Memo{values: make(map[string]any)}
}

// Len returns the number of remembered results.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// Remember returns the result stored under key, computing it on first use.
// Errors are not remembered. A nil memo always computes.
func Remember[T any](m *Memo, key string, compute func() (T, error)) (T, error) {
	if m == nil {
		return compute()
	}

	m.mu.Lock()
	if v, ok := m.values[key]; ok {
		m.mu.Unlock()
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		return compute()
	}
	m.mu.Unlock()

	value, err := compute()
	if err != nil {
		return value, err
	}

	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return value, nil
}
