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

// Package index builds, persists and reloads embedding indexes over corpus
// spans.
//
// An index is identified by its content address (see core.AddressFor). The
// Manager guarantees that at most one build runs per address at a time:
// callers asking for the same address wait for the first build and then load
// its committed result, while unrelated addresses proceed in parallel.
//
// # Basic Usage
//
//	store, _ := badger.NewIndexStore(backend)
//	mgr, err := index.NewManager(store, provider.PassageEmbedder(),
//		index.WithBatchSize(64),
//		index.WithProgress(os.Stderr),
//	)
//	if err != nil {
//		return err
//	}
//	defer mgr.Release()
//
//	idx, hit, err := mgr.GetOrBuild(ctx, address, spans, embedding)
//	results, err := idx.Query(ctx, queryVector, 10)
//
// Entries found half-written (config without blob or the reverse, or a blob
// that does not decode) are logged, deleted and rebuilt.
package index
