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


// Package storage provides the persistence abstraction for built indexes.
//
// An index entry is addressed by the content address of the corpus, window
// configuration and embedding configuration it was built from. Each entry
// has two parts, a config blob and an index blob, and a read is only a hit
// when both are present.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the IndexStore
// interface:
//
//	store, err := badger.NewIndexStore(backend) // returns storage.IndexStore
//	store, err := fs.NewIndexStore(dir)         // returns storage.IndexStore
//
// # Implementations
//
//   - storage/badger: entries live in a BadgerDB database and both parts are
//     written in one transaction.
//   - storage/fs: entries live as two files per address, each written to a
//     temporary file and renamed into place.
//
// # Thread Safety
//
// All implementations must be thread-safe. Serializing concurrent builds of
// the same address is the job of the index package, not of the store.
package storage
