package series

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// AddressLen is the length of a holder or contract address in bytes.
const AddressLen = 20

// Address identifies a holder, issuer, or contract instance. It is the
// last 20 bytes of the Keccak-256 hash of an uncompressed public key,
// matching the native chain's addressing scheme.
type Address [AddressLen]byte

// ZeroAddress is the all-zero address. It is never a valid participant.
var ZeroAddress Address

// AddressFromPubKey derives an address from a 65-byte uncompressed
// public key (0x04 prefix).
func AddressFromPubKey(pub []byte) (Address, error) {
	if len(pub) != 65 || pub[0] != 0x04 {
		return Address{}, fmt.Errorf("%w: %d bytes", ErrInvalidPubKey, len(pub))
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(pub[1:])
	sum := h.Sum(nil)

	var addr Address
	copy(addr[:], sum[32-AddressLen:])
	return addr, nil
}

// AddressFromBytes builds an Address from a raw 20-byte slice.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLen {
		return Address{}, fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(b))
	}
	var addr Address
	copy(addr[:], b)
	return addr, nil
}

// IsZero reports whether the address is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the address as lowercase hex.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// ID identifies a deployed series instance. It is the Keccak-256 hash
// of the issuer address, the creation timestamp, and the unit supply,
// which is what the deployment factory hands to consumers.
type ID [32]byte

// NewID derives the series identifier from its creation inputs.
func NewID(issuer Address, createdAtUnix int64, totalUnits uint64) ID {
	h := sha3.NewLegacyKeccak256()
	h.Write(issuer[:])

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(createdAtUnix))
	binary.BigEndian.PutUint64(buf[8:16], totalUnits)
	h.Write(buf[:])

	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// String returns the series ID as lowercase hex.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}
