package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLength is the byte length of a ledger public key.
const AddressLength = 32

// Address is a 32-byte ledger public key. It identifies both actors
// (owners, signers) and program-derived accounts.
type Address [AddressLength]byte

// ZeroAddress is the all-zero address, used as the placeholder identity
// for read-only connections.
var ZeroAddress Address

// ParseAddress decodes a base58-encoded address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, &ValidationError{Reason: fmt.Sprintf("invalid address %q: %v", s, err)}
	}
	if len(raw) != AddressLength {
		return a, &ValidationError{Reason: fmt.Sprintf("invalid address %q: expected %d bytes, got %d", s, AddressLength, len(raw))}
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress decodes a base58-encoded address and panics on failure.
// Intended for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, &ValidationError{Reason: fmt.Sprintf("invalid address length %d", len(b))}
	}
	copy(a[:], b)
	return a, nil
}

// String returns the base58 form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns the raw 32 bytes.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero reports whether the address is the placeholder identity.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// MarshalText implements encoding.TextMarshaler so addresses render as
// base58 in JSON responses.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressSet is a membership set keyed by address, used by the relation
// resolver to avoid repeated linear scans per relation check.
type AddressSet map[Address]struct{}

// NewAddressSet builds a set from the given addresses.
func NewAddressSet(addrs ...Address) AddressSet {
	s := make(AddressSet, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

// Add inserts an address into the set.
func (s AddressSet) Add(a Address) {
	s[a] = struct{}{}
}

// Contains reports membership.
func (s AddressSet) Contains(a Address) bool {
	_, ok := s[a]
	return ok
}
