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

package window

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/spansearch/core"
)

// Corpus is the full span sequence produced for one window size.
type Corpus struct {
	WindowSize int
	Spans      []core.Span
}

// Window slides a window of size over units with stride one. It returns
// exactly max(0, len(units)-size+1) spans, each tagged with its start index.
func Window(units []core.Unit, size int, granularity core.Granularity) ([]core.Span, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %w: %d", core.ErrUnsupportedConfiguration, core.ErrInvalidWindowSize, size)
	}
	count := len(units) - size + 1
	if count <= 0 {
		return []core.Span{}, nil
	}

	sep := granularity.Separator()
	spans := make([]core.Span, count)
	contents := make([]string, size)
	for start := 0; start < count; start++ {
		for i := 0; i < size; i++ {
			contents[i] = units[start+i].Content
		}
		spans[start] = core.Span{
			StartIndex: start,
			WindowSize: size,
			Content:    strings.Join(contents, sep),
		}
	}
	return spans, nil
}

// Degranularize joins unit contents with the separator of granularity.
func Degranularize(contents []string, granularity core.Granularity) string {
	return strings.Join(contents, granularity.Separator())
}

// Corpora fans Window out over every window size, in the order given.
func Corpora(units []core.Unit, granularity core.Granularity, sizes []int) ([]Corpus, error) {
	corpora := make([]Corpus, 0, len(sizes))
	for _, size := range sizes {
		spans, err := Window(units, size, granularity)
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, Corpus{WindowSize: size, Spans: spans})
	}
	return corpora, nil
}

// Flatten returns the spans of every corpus as one sequence.
func Flatten(corpora []Corpus) []core.Span {
	total := 0
	for _, c := range corpora {
		total += len(c.Spans)
	}
	spans := make([]core.Span, 0, total)
	for _, c := range corpora {
		spans = append(spans, c.Spans...)
	}
	return spans
}

// ParseSizes parses a window size list such as "1 2 3".
// Sizes are separated by single spaces, matching how the list is
// hashed into the content address.
func ParseSizes(list string) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, fmt.Errorf("%w: empty window size list", core.ErrUnsupportedConfiguration)
	}
	fields := strings.Split(list, " ")
	sizes := make([]int, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		size, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: window size %q", core.ErrUnsupportedConfiguration, f)
		}
		if size < 1 {
			return nil, fmt.Errorf("%w: %w: %d", core.ErrUnsupportedConfiguration, core.ErrInvalidWindowSize, size)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

// FormatSizes renders sizes in the form accepted by ParseSizes.
func FormatSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, " ")
}
