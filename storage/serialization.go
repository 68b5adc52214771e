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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/spansearch/core"
)

// MarshalIndexConfig serializes an IndexConfig to bytes.
func MarshalIndexConfig(config *core.IndexConfig) []byte {
	buf := make([]byte, core.IndexConfigMUS.Size(*config))
	core.IndexConfigMUS.Marshal(*config, buf)
	return buf
}

// UnmarshalIndexConfig deserializes an IndexConfig from bytes.
func UnmarshalIndexConfig(data []byte) (*core.IndexConfig, error) {
	config, _, err := core.IndexConfigMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &config, nil
}

// MarshalIndexBlob serializes a span list as a count followed by each span.
func MarshalIndexBlob(spans []core.IndexedSpan) []byte {
	size := varint.PositiveInt.Size(len(spans))
	for _, s := range spans {
		size += core.IndexedSpanMUS.Size(s)
	}
	buf := make([]byte, size)
	n := varint.PositiveInt.Marshal(len(spans), buf)
	for _, s := range spans {
		n += core.IndexedSpanMUS.Marshal(s, buf[n:])
	}
	return buf
}

// UnmarshalIndexBlob deserializes a span list written by MarshalIndexBlob.
func UnmarshalIndexBlob(data []byte) ([]core.IndexedSpan, error) {
	count, n, err := varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	// every span takes at least four bytes
	if count < 0 || count > (len(data)-n)/4 {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, ErrTruncatedData)
	}
	spans := make([]core.IndexedSpan, count)
	for i := range spans {
		span, m, err := core.IndexedSpanMUS.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: span %d: %w", ErrSerializationFailed, i, err)
		}
		spans[i] = span
		n += m
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return spans, nil
}
