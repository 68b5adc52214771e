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

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Binary codecs for the persisted records. Slice lengths read from a buffer
// are bounded by the bytes that remain, so a damaged cache entry fails with
// ErrCorruptRecord instead of forcing a huge allocation.

var sliceIntMUS = sliceIntSer{}

type sliceIntSer struct{}

func (s sliceIntSer) Marshal(v []int, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, e := range v {
		n += varint.Int.Marshal(e, bs[n:])
	}
	return
}

func (s sliceIntSer) Unmarshal(bs []byte) (v []int, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		err = ErrCorruptRecord
		return
	}
	v = make([]int, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s sliceIntSer) Size(v []int) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, e := range v {
		size += varint.Int.Size(e)
	}
	return
}

func (s sliceIntSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

var sliceFloat32MUS = sliceFloat32Ser{}

type sliceFloat32Ser struct{}

func (s sliceFloat32Ser) Marshal(v []float32, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, e := range v {
		n += raw.Float32.Marshal(e, bs[n:])
	}
	return
}

func (s sliceFloat32Ser) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length*4 > len(bs)-n {
		err = ErrCorruptRecord
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s sliceFloat32Ser) Size(v []float32) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, e := range v {
		size += raw.Float32.Size(e)
	}
	return
}

func (s sliceFloat32Ser) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

var IndexConfigMUS = indexConfigMUS{}

type indexConfigMUS struct{}

func (s indexConfigMUS) Marshal(v IndexConfig, bs []byte) (n int) {
	n = ord.String.Marshal(v.Address, bs)
	n += ord.String.Marshal(v.QueryModel, bs[n:])
	n += ord.String.Marshal(v.PassageModel, bs[n:])
	n += varint.Int.Marshal(v.Dimension, bs[n:])
	n += ord.String.Marshal(v.Similarity, bs[n:])
	n += sliceIntMUS.Marshal(v.WindowSizes, bs[n:])
	n += varint.Int.Marshal(v.SpanCount, bs[n:])
	return n + varint.Int64.Marshal(v.CreatedAt.UnixMicro(), bs[n:])
}

func (s indexConfigMUS) Unmarshal(bs []byte) (v IndexConfig, n int, err error) {
	v.Address, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.QueryModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PassageModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Dimension, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Similarity, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.WindowSizes, n1, err = sliceIntMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SpanCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var createdAt int64
	createdAt, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt = time.UnixMicro(createdAt).UTC()
	return
}

func (s indexConfigMUS) Size(v IndexConfig) (size int) {
	size = ord.String.Size(v.Address)
	size += ord.String.Size(v.QueryModel)
	size += ord.String.Size(v.PassageModel)
	size += varint.Int.Size(v.Dimension)
	size += ord.String.Size(v.Similarity)
	size += sliceIntMUS.Size(v.WindowSizes)
	size += varint.Int.Size(v.SpanCount)
	return size + varint.Int64.Size(v.CreatedAt.UnixMicro())
}

func (s indexConfigMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

var IndexedSpanMUS = indexedSpanMUS{}

type indexedSpanMUS struct{}

func (s indexedSpanMUS) Marshal(v IndexedSpan, bs []byte) (n int) {
	n = varint.Int.Marshal(v.StartIndex, bs)
	n += varint.Int.Marshal(v.WindowSize, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	return n + sliceFloat32MUS.Marshal(v.Vector, bs[n:])
}

func (s indexedSpanMUS) Unmarshal(bs []byte) (v IndexedSpan, n int, err error) {
	v.StartIndex, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.WindowSize, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = sliceFloat32MUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s indexedSpanMUS) Size(v IndexedSpan) (size int) {
	size = varint.Int.Size(v.StartIndex)
	size += varint.Int.Size(v.WindowSize)
	size += ord.String.Size(v.Content)
	return size + sliceFloat32MUS.Size(v.Vector)
}

func (s indexedSpanMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
