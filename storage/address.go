package storage

import (
	"fmt"

	"github.com/poiesic/spansearch/core"
)

// ValidateAddress rejects addresses that could not have come from
// core.AddressFor. Stores that map addresses onto file names rely on this to
// stay inside their root directory.
func ValidateAddress(address core.Address) error {
	if address == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	for _, r := range address {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r == '_') {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
		}
	}
	return nil
}
