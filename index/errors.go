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

package index

import "errors"

var (
	// ErrStoreRequired is returned when a Manager is created without a store.
	ErrStoreRequired = errors.New("index store is required")

	// ErrEmbedderRequired is returned when a Manager is created without a passage embedder.
	ErrEmbedderRequired = errors.New("passage embedder is required")

	// ErrEmbeddingCountMismatch is returned when an embedder returns a
	// different number of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrDimensionMismatch is returned when a vector does not have the
	// dimension recorded for the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
