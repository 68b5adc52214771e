package index

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressTracker(&out, 10, 5)

	p.Increment(3)
	assert.Empty(t, out.String(), "not started")

	p.Start()
	p.Increment(3)
	assert.Empty(t, out.String())
	p.Increment(3)
	assert.Contains(t, out.String(), "Indexing: 6/10 spans (60.0%)")

	p.Increment(100)
	assert.Equal(t, 10, p.Current())

	p.Finish()
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
	assert.Positive(t, p.Elapsed())
}

func TestProgressTracker_NilWriter(t *testing.T) {
	p := NewProgressTracker(nil, 2, 0)
	p.Start()
	p.Increment(2)
	p.Finish()
	assert.Equal(t, 2, p.Current())
}
