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


package core

import "errors"

var (
	// ErrUnsupportedConfiguration indicates an unknown granularity, source type,
	// retriever or selection policy. It is reported to the caller immediately.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")

	// ErrCacheInconsistency indicates a persisted index entry that is only
	// partially present or cannot be decoded.
	ErrCacheInconsistency = errors.New("cache entry inconsistent")

	// ErrEmptyInput indicates an empty corpus or a window configuration that
	// yields no spans.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidSpan indicates a span that does not fit its unit sequence.
	ErrInvalidSpan = errors.New("invalid span")

	// ErrInvalidWindowSize indicates a window size below one.
	ErrInvalidWindowSize = errors.New("window size must be positive")

	// ErrCorruptRecord indicates a serialized record whose lengths do not fit
	// the buffer it was read from.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrEmptyModel indicates an embedding configuration without a model name.
	ErrEmptyModel = errors.New("embedding model cannot be empty")
)
