package badger

import (
	"fmt"

	"github.com/poiesic/spansearch/core"
)

// Key prefixes for different data types
const (
	indexConfigPrefix = "idxcfg"
	indexPartsPrefix  = "idxparts"
	indexBlobPrefix   = "idxblob"
)

// makeIndexConfigKey generates the key holding the serialized IndexConfig.
func makeIndexConfigKey(address core.Address) []byte {
	return []byte(fmt.Sprintf("%s:%s", indexConfigPrefix, address))
}

// makeIndexPartsKey generates the key holding the number of blob chunks.
func makeIndexPartsKey(address core.Address) []byte {
	return []byte(fmt.Sprintf("%s:%s", indexPartsPrefix, address))
}

// makeIndexBlobKey generates the key for one chunk of an index blob.
// Format: prefix:address:part, with part zero padded so chunks sort in order.
func makeIndexBlobKey(address core.Address, part int) []byte {
	return []byte(fmt.Sprintf("%s:%s:%06d", indexBlobPrefix, address, part))
}

// makePartialIndexBlobKey generates the prefix shared by every chunk of an address.
func makePartialIndexBlobKey(address core.Address) []byte {
	return []byte(fmt.Sprintf("%s:%s:", indexBlobPrefix, address))
}

// addressFromConfigKey extracts the address from an index config key.
func addressFromConfigKey(key []byte) core.Address {
	return core.Address(key[len(indexConfigPrefix)+1:])
}
