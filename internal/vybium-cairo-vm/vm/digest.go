package vm

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// DigestLen is the number of field elements of a program or memory digest
const DigestLen = 5

// feltDigestLimbs is the number of 32-bit limbs a Felt is split into. Each
// limb is below the Goldilocks modulus, so the split is injective.
const feltDigestLimbs = 8

// FeltElements splits f into little-endian 32-bit limbs over the
// Goldilocks field
func FeltElements(f core.Felt) []field.Element {
	limbs := core.Limbs(f)
	out := make([]field.Element, 0, feltDigestLimbs)
	for _, l := range limbs {
		out = append(out, field.New(l&0xFFFFFFFF), field.New(l>>32))
	}
	return out
}

// ProgramDigest computes the Poseidon digest of a program for attestation.
// The length is absorbed first so programs that differ only by trailing
// zero words hash differently.
func ProgramDigest(program []core.Felt) [DigestLen]field.Element {
	elements := make([]field.Element, 0, 1+len(program)*feltDigestLimbs)
	elements = append(elements, field.New(uint64(len(program))))
	for _, w := range program {
		elements = append(elements, FeltElements(w)...)
	}
	return expandDigest(hash.PoseidonHash(elements))
}

// MemoryDigest computes the Poseidon digest of every set cell, address
// first, in increasing address order
func MemoryDigest(mem *Memory) [DigestLen]field.Element {
	addrs := mem.Addresses()
	elements := make([]field.Element, 0, len(addrs)*(2+feltDigestLimbs))
	for _, a := range addrs {
		v, _ := mem.ReadAt(a)
		elements = append(elements, field.New(a&0xFFFFFFFF), field.New(a>>32))
		elements = append(elements, FeltElements(v)...)
	}
	return expandDigest(hash.PoseidonHash(elements))
}

// expandDigest chains the sponge output into DigestLen elements
func expandDigest(first field.Element) [DigestLen]field.Element {
	var digest [DigestLen]field.Element
	digest[0] = first
	for i := 1; i < DigestLen; i++ {
		digest[i] = hash.PoseidonHash([]field.Element{digest[i-1], field.New(uint64(i))})
	}
	return digest
}
