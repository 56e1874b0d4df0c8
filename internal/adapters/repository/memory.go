package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// document is one stored entry. seq preserves insertion order across
// overwrites so List stays stable while a document is edited in place.
type document struct {
	raw json.RawMessage
	seq int64
}

// MemoryStore implements Store with in-memory collections. Durability is out
// of scope; the store exists to drive the live feed.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]document
	nextSeq     int64
	onChange    func(collection string, docs []json.RawMessage)
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]document),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put inserts or replaces a document and notifies the change hook with a
// fresh snapshot of the collection.
func (s *MemoryStore) Put(ctx context.Context, collection, id string, doc json.RawMessage) error {
	if collection == "" || id == "" {
		return NewKind("repository.put", ErrInvalidDocument)
	}
	if !json.Valid(doc) {
		return NewKind("repository.put", ErrInvalidDocument)
	}

	s.mu.Lock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]document)
		s.collections[collection] = coll
	}
	seq := s.nextSeq
	if prev, exists := coll[id]; exists {
		seq = prev.seq
	} else {
		s.nextSeq++
	}
	coll[id] = document{raw: append(json.RawMessage(nil), doc...), seq: seq}
	snapshot := s.snapshotLocked(collection)
	s.mu.Unlock()

	s.notify(collection, snapshot)
	return nil
}

// Delete removes a document and notifies the change hook.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	coll, ok := s.collections[collection]
	if !ok {
		s.mu.Unlock()
		return NewKind("repository.delete", ErrNotFound)
	}
	if _, exists := coll[id]; !exists {
		s.mu.Unlock()
		return NewKind("repository.delete", ErrNotFound)
	}
	delete(coll, id)
	snapshot := s.snapshotLocked(collection)
	s.mu.Unlock()

	s.notify(collection, snapshot)
	return nil
}

// List returns a snapshot copy of the collection in insertion order.
func (s *MemoryStore) List(ctx context.Context, collection string) []json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(collection)
}

// Count returns the number of documents in a collection.
func (s *MemoryStore) Count(ctx context.Context, collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *MemoryStore) snapshotLocked(collection string) []json.RawMessage {
	coll := s.collections[collection]
	docs := make([]document, 0, len(coll))
	for _, d := range coll {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].seq < docs[j].seq })
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = append(json.RawMessage(nil), d.raw...)
	}
	return out
}

func (s *MemoryStore) notify(collection string, docs []json.RawMessage) {
	if s.onChange != nil {
		s.onChange(collection, docs)
	}
}
