// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/storage"
)

const (
	configFilePrefix = "config_"
	indexFilePrefix  = "index_"
	tempFilePattern  = ".tmp-*"
)

// IndexStore implements storage.IndexStore with two files per address under
// a root directory: index_<address> holds the blob and config_<address> the
// config. Each file is written to a temporary file, synced and renamed into
// place, the index before the config.
type IndexStore struct {
	root   string
	perm   os.FileMode
	logger *slog.Logger
}

var _ storage.IndexStore = (*IndexStore)(nil)

// Option configures an IndexStore.
type Option func(*IndexStore) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *IndexStore) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithFileMode sets the permission bits of written files. Default is 0644.
func WithFileMode(perm os.FileMode) Option {
	return func(s *IndexStore) error {
		s.perm = perm
		return nil
	}
}

// NewIndexStore creates a file backed index store rooted at dir, creating
// the directory if needed.
//
// Returns storage.IndexStore interface to enforce abstraction.
func NewIndexStore(dir string, opts ...Option) (storage.IndexStore, error) {
	if dir == "" {
		return nil, ErrRootRequired
	}
	s := &IndexStore{root: dir, perm: 0o644, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "fs-index-store")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return s, nil
}

func (s *IndexStore) configPath(address core.Address) string {
	return filepath.Join(s.root, configFilePrefix+string(address))
}

func (s *IndexStore) indexPath(address core.Address) string {
	return filepath.Join(s.root, indexFilePrefix+string(address))
}

// HasIndex reports whether both files exist.
func (s *IndexStore) HasIndex(ctx context.Context, address core.Address) (bool, error) {
	if err := storage.ValidateAddress(address); err != nil {
		return false, err
	}
	hasConfig, err := exists(s.configPath(address))
	if err != nil {
		return false, err
	}
	hasIndex, err := exists(s.indexPath(address))
	if err != nil {
		return false, err
	}
	return hasConfig && hasIndex, nil
}

// LoadIndex reads and decodes both files.
func (s *IndexStore) LoadIndex(ctx context.Context, address core.Address) (*core.IndexConfig, []core.IndexedSpan, error) {
	if err := storage.ValidateAddress(address); err != nil {
		return nil, nil, err
	}
	configData, configErr := os.ReadFile(s.configPath(address))
	indexData, indexErr := os.ReadFile(s.indexPath(address))

	switch {
	case errors.Is(configErr, os.ErrNotExist) && errors.Is(indexErr, os.ErrNotExist):
		return nil, nil, storage.ErrNotFound
	case errors.Is(configErr, os.ErrNotExist):
		return nil, nil, fmt.Errorf("%w: %s is missing its config file", core.ErrCacheInconsistency, address)
	case errors.Is(indexErr, os.ErrNotExist):
		return nil, nil, fmt.Errorf("%w: %s is missing its index file", core.ErrCacheInconsistency, address)
	case configErr != nil:
		return nil, nil, configErr
	case indexErr != nil:
		return nil, nil, indexErr
	}

	config, err := storage.UnmarshalIndexConfig(configData)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", core.ErrCacheInconsistency, err)
	}
	spans, err := storage.UnmarshalIndexBlob(indexData)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", core.ErrCacheInconsistency, err)
	}
	return config, spans, nil
}

// SaveIndex writes the index file, then the config file.
func (s *IndexStore) SaveIndex(ctx context.Context, config *core.IndexConfig, spans []core.IndexedSpan) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", storage.ErrInvalidAddress)
	}
	address := core.Address(config.Address)
	if err := storage.ValidateAddress(address); err != nil {
		return err
	}
	// a reader must not pair a new index with an old config
	if err := removeIfExists(s.configPath(address)); err != nil {
		return err
	}
	blob := storage.MarshalIndexBlob(spans)
	if err := s.writeAtomic(ctx, s.indexPath(address), blob); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	if err := s.writeAtomic(ctx, s.configPath(address), storage.MarshalIndexConfig(config)); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	s.logger.Debug("saved index", "address", address, "spans", len(spans), "bytes", len(blob))
	return nil
}

// DeleteIndex removes the config file first, then the index file.
func (s *IndexStore) DeleteIndex(ctx context.Context, address core.Address) error {
	if err := storage.ValidateAddress(address); err != nil {
		return err
	}
	if err := removeIfExists(s.configPath(address)); err != nil {
		return err
	}
	return removeIfExists(s.indexPath(address))
}

// ListIndexes returns the configs of every complete entry, ordered by address.
func (s *IndexStore) ListIndexes(ctx context.Context) ([]*core.IndexConfig, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var configs []*core.IndexConfig
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, configFilePrefix) {
			continue
		}
		address := core.Address(strings.TrimPrefix(name, configFilePrefix))
		if storage.ValidateAddress(address) != nil {
			continue
		}
		if ok, err := exists(s.indexPath(address)); err != nil || !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, name))
		if err != nil {
			return nil, err
		}
		config, err := storage.UnmarshalIndexConfig(data)
		if err != nil {
			s.logger.Warn("skipping undecodable index config", "address", address, "err", err)
			continue
		}
		configs = append(configs, config)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Address < configs[j].Address
	})
	return configs, nil
}

// Close is a no-op; files are closed after every write.
func (s *IndexStore) Close() error {
	return nil
}

func (s *IndexStore) writeAtomic(ctx context.Context, dest string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := os.Chmod(tmpPath, s.perm); err != nil {
		s.logger.Warn("error setting cache file mode", "path", tmpPath, "mode", s.perm, "err", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
