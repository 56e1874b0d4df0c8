package repository

import "encoding/json"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithOnChange registers a hook invoked with a full collection snapshot after
// every successful mutation. The hook runs outside the store lock.
func WithOnChange(fn func(collection string, docs []json.RawMessage)) Option {
	return func(s *MemoryStore) {
		s.onChange = fn
	}
}
