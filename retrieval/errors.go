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

package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when a dense retriever has no index.
	ErrIndexRequired = errors.New("index is required")

	// ErrEmbedderRequired is returned when a dense retriever has no query embedder.
	ErrEmbedderRequired = errors.New("query embedder is required")

	// ErrRetrieverRequired is returned when a wrapper has no retriever to wrap.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrRankerRequired is returned when ranking is requested without a ranker.
	ErrRankerRequired = errors.New("ranker is required")

	// ErrRankerScores is returned when a ranker does not score every span.
	ErrRankerScores = errors.New("ranker score count mismatch")
)
