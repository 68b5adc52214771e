package core

import (
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Address is the content address of a cached index.
type Address string

// String returns the address as a plain string.
func (a Address) String() string {
	return string(a)
}

// AddressInput holds everything that changes the content of a built index.
type AddressInput struct {
	Corpus      string
	SourceType  SourceType
	Granularity Granularity
	WindowSizes string // raw window size specification, e.g. "1 2 3"
	Embedding   EmbeddingConfig
}

// AddressFor derives the content address for in. The address is made of three
// BLAKE2b digests joined by underscores: corpus (with its source type and
// granularity), window size specification and embedding configuration.
func AddressFor(in AddressInput) Address {
	corpus := in.SourceType.String() + "/" + in.Granularity.String() + "\x00" + in.Corpus
	parts := []string{
		digest(corpus),
		digest(in.WindowSizes),
		digest(in.Embedding.String()),
	}
	return Address(strings.Join(parts, "_"))
}

// digest returns the hex encoded 128 bit BLAKE2b hash of text.
func digest(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
