// Package repository defines the live document store backing the feed.
//
// The store holds named collections of JSON documents keyed by ID, the same
// shape the display pages used to read from the external document database.
// Every mutation produces a complete snapshot of the touched collection for
// the feed layer; derived views are always rebuilt from full snapshots.
package repository

import (
	"context"
	"encoding/json"
)

// Store provides read/write access to named document collections.
type Store interface {
	// Put inserts or replaces the document with the given id.
	Put(ctx context.Context, collection, id string, doc json.RawMessage) error

	// Delete removes a document. Returns ErrNotFound for unknown ids.
	Delete(ctx context.Context, collection, id string) error

	// List returns a snapshot copy of the collection's documents in
	// insertion order.
	List(ctx context.Context, collection string) []json.RawMessage

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) int
}
