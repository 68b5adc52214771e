package storage

import (
	"context"

	"github.com/poiesic/spansearch/core"
)

// IndexStore persists built retrieval indexes keyed by content address.
// An entry has two parts: a small config blob and the index blob holding
// every span with its vector. Implementations must be thread-safe.
type IndexStore interface {
	// HasIndex reports whether both parts of the entry at address exist.
	// A partially written entry reports false.
	HasIndex(ctx context.Context, address core.Address) (bool, error)

	// LoadIndex reads the entry at address.
	// Returns ErrNotFound if neither part exists and an error wrapping
	// core.ErrCacheInconsistency if only one part exists or a part cannot
	// be decoded.
	LoadIndex(ctx context.Context, address core.Address) (*core.IndexConfig, []core.IndexedSpan, error)

	// SaveIndex writes both parts of an entry so that readers never observe
	// one without the other. The address is taken from config.Address.
	SaveIndex(ctx context.Context, config *core.IndexConfig, spans []core.IndexedSpan) error

	// DeleteIndex removes whatever parts of the entry at address exist.
	DeleteIndex(ctx context.Context, address core.Address) error

	// ListIndexes returns the configs of every complete entry, ordered by address.
	ListIndexes(ctx context.Context) ([]*core.IndexConfig, error)

	// Close releases resources held by the store.
	Close() error
}
