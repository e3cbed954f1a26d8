// Package core provides the field element type shared by every part of the Cairo VM
package core

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Felt is an element of the Cairo prime field p = 2^251 + 17*2^192 + 1.
// It is used both for data and for memory addresses.
type Felt = fp.Element

// Modulus returns the field modulus
func Modulus() *big.Int {
	return fp.Modulus()
}

// Zero returns the additive identity
func Zero() Felt {
	return Felt{}
}

// One returns the multiplicative identity
func One() Felt {
	return fp.One()
}

// NewFelt creates a field element from a uint64
func NewFelt(v uint64) Felt {
	return fp.NewElement(v)
}

// NewFeltFromInt64 creates a field element from an int64, mapping negative
// values to p - |v|
func NewFeltFromInt64(v int64) Felt {
	var f Felt
	f.SetInt64(v)
	return f
}

// NewFeltFromBig reduces a big.Int into the field
func NewFeltFromBig(v *big.Int) Felt {
	var f Felt
	f.SetBigInt(v)
	return f
}

// ParseFelt parses a decimal (optionally signed) or 0x-prefixed hex string
func ParseFelt(s string) (Felt, error) {
	var f Felt
	if _, err := f.SetString(s); err != nil {
		return Felt{}, fmt.Errorf("invalid field element %q: %w", s, err)
	}
	return f, nil
}

// FeltsFromInt64s converts a slice of signed integers into field elements
func FeltsFromInt64s(values []int64) []Felt {
	out := make([]Felt, len(values))
	for i, v := range values {
		out[i] = NewFeltFromInt64(v)
	}
	return out
}

// FeltsFromUint64s converts a slice of unsigned integers into field elements
func FeltsFromUint64s(values []uint64) []Felt {
	out := make([]Felt, len(values))
	for i, v := range values {
		out[i] = NewFelt(v)
	}
	return out
}

// Add returns a + b
func Add(a, b Felt) Felt {
	var r Felt
	r.Add(&a, &b)
	return r
}

// Sub returns a - b
func Sub(a, b Felt) Felt {
	var r Felt
	r.Sub(&a, &b)
	return r
}

// Mul returns a * b
func Mul(a, b Felt) Felt {
	var r Felt
	r.Mul(&a, &b)
	return r
}

// AddUint64 returns a + n
func AddUint64(a Felt, n uint64) Felt {
	return Add(a, NewFelt(n))
}

// Compare orders two elements by their canonical integer representation
func Compare(a, b Felt) int {
	return a.Cmp(&b)
}

// ToUint64 returns the canonical integer of f when it fits in a uint64
func ToUint64(f Felt) (uint64, bool) {
	if !f.IsUint64() {
		return 0, false
	}
	return f.Uint64(), true
}

// Limbs returns the canonical little-endian 64-bit limbs of f
func Limbs(f Felt) [4]uint64 {
	return f.Bits()
}

// Hex returns the canonical 0x-prefixed hexadecimal form of f
func Hex(f Felt) string {
	return "0x" + f.BigInt(new(big.Int)).Text(16)
}
