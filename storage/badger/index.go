package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/storage"
)

// defaultChunkSize keeps every blob write well under badger's transaction limit.
const defaultChunkSize = 2 << 20

// IndexStore implements storage.IndexStore for BadgerDB.
//
// The index blob is split into chunks written in their own transactions. The
// config and the chunk count are written last, in one transaction, and act
// as the commit marker: an entry without them is never reported as present.
type IndexStore struct {
	backend   *Backend
	chunkSize int
	logger    *slog.Logger
}

var _ storage.IndexStore = (*IndexStore)(nil)

// newIndexStore is an internal constructor that returns the concrete type.
func newIndexStore(backend *Backend, chunkSize int) (*IndexStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}
	return &IndexStore{
		backend:   backend,
		chunkSize: chunkSize,
		logger:    backend.logger.With("store", "index"),
	}, nil
}

// NewIndexStore creates an index store on top of backend.
// The caller keeps ownership of backend and must close it after the store.
//
// Returns storage.IndexStore interface to enforce abstraction.
func NewIndexStore(backend *Backend) (storage.IndexStore, error) {
	return newIndexStore(backend, defaultChunkSize)
}

// HasIndex reports whether a committed entry exists at address.
func (s *IndexStore) HasIndex(ctx context.Context, address core.Address) (bool, error) {
	var found bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		parts, ok, err := readParts(tx, address)
		if err != nil {
			if errors.Is(err, core.ErrCacheInconsistency) {
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}
		if _, err := tx.Get(makeIndexConfigKey(address)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		for i := 0; i < parts; i++ {
			if _, err := tx.Get(makeIndexBlobKey(address, i)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return nil
				}
				return err
			}
		}
		found = true
		return nil
	}, false)
	return found, err
}

// LoadIndex reads the entry at address.
func (s *IndexStore) LoadIndex(ctx context.Context, address core.Address) (*core.IndexConfig, []core.IndexedSpan, error) {
	var (
		config *core.IndexConfig
		spans  []core.IndexedSpan
	)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		parts, ok, err := readParts(tx, address)
		if err != nil {
			return err
		}
		if !ok {
			if hasAnyChunk(tx, address) {
				return fmt.Errorf("%w: %s has blob chunks but no config", core.ErrCacheInconsistency, address)
			}
			return storage.ErrNotFound
		}

		item, err := tx.Get(makeIndexConfigKey(address))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s is missing its config", core.ErrCacheInconsistency, address)
			}
			return err
		}
		err = item.Value(func(val []byte) error {
			var unmarshalErr error
			config, unmarshalErr = storage.UnmarshalIndexConfig(val)
			return unmarshalErr
		})
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrCacheInconsistency, err)
		}

		var blob []byte
		for i := 0; i < parts; i++ {
			item, err := tx.Get(makeIndexBlobKey(address, i))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s is missing blob chunk %d", core.ErrCacheInconsistency, address, i)
				}
				return err
			}
			chunk, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			blob = append(blob, chunk...)
		}

		spans, err = storage.UnmarshalIndexBlob(blob)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrCacheInconsistency, err)
		}
		return nil
	}, false)
	if err != nil {
		return nil, nil, err
	}
	return config, spans, nil
}

// SaveIndex writes the blob chunks first and commits the config last.
func (s *IndexStore) SaveIndex(ctx context.Context, config *core.IndexConfig, spans []core.IndexedSpan) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", storage.ErrInvalidAddress)
	}
	address := core.Address(config.Address)
	if err := storage.ValidateAddress(address); err != nil {
		return err
	}

	// drop any earlier attempt so stale chunks cannot linger past the new count
	if err := s.DeleteIndex(ctx, address); err != nil {
		return err
	}

	blob := storage.MarshalIndexBlob(spans)
	parts := 0
	for offset := 0; offset < len(blob) || parts == 0; offset += s.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(offset+s.chunkSize, len(blob))
		key := makeIndexBlobKey(address, parts)
		chunk := blob[offset:end]
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set(key, chunk); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
		parts++
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexConfigKey(address), storage.MarshalIndexConfig(config)); err != nil {
			return err
		}
		if err := tx.Set(makeIndexPartsKey(address), []byte(strconv.Itoa(parts))); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("saved index", "address", address, "spans", len(spans), "bytes", len(blob), "parts", parts)
	return nil
}

// DeleteIndex removes the commit marker first, then every blob chunk.
func (s *IndexStore) DeleteIndex(ctx context.Context, address core.Address) error {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeIndexPartsKey(address)); err != nil {
			return err
		}
		if err := tx.Delete(makeIndexConfigKey(address)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	var keys [][]byte
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialIndexBlobKey(address)
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	for _, key := range keys {
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Delete(key); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListIndexes returns the configs of every committed entry.
func (s *IndexStore) ListIndexes(ctx context.Context) ([]*core.IndexConfig, error) {
	var configs []*core.IndexConfig
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexConfigPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			address := addressFromConfigKey(item.Key())
			if _, ok, err := readParts(tx, address); err != nil || !ok {
				continue
			}
			var config *core.IndexConfig
			err := item.Value(func(val []byte) error {
				var err error
				config, err = storage.UnmarshalIndexConfig(val)
				return err
			})
			if err != nil {
				s.logger.Warn("skipping undecodable index config", "address", address, "err", err)
				continue
			}
			configs = append(configs, config)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// Close is a no-op; the backend is owned by the caller.
func (s *IndexStore) Close() error {
	return nil
}

// readParts returns the committed chunk count for address.
func readParts(tx *badger.Txn, address core.Address) (int, bool, error) {
	item, err := tx.Get(makeIndexPartsKey(address))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	var parts int
	err = item.Value(func(val []byte) error {
		var convErr error
		parts, convErr = strconv.Atoi(string(val))
		return convErr
	})
	if err != nil {
		return 0, false, fmt.Errorf("%w: bad chunk count for %s: %w", core.ErrCacheInconsistency, address, err)
	}
	return parts, true, nil
}

func hasAnyChunk(tx *badger.Txn, address core.Address) bool {
	_, err := tx.Get(makeIndexBlobKey(address, 0))
	return err == nil
}
