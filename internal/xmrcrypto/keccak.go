package xmrcrypto

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// NewKeccakHash returns a fresh incremental Keccak-256 hash.Hash, for
// callers that need to stream data across many Write calls before reading
// the digest (tx_prefix_hasher, PreMlsagHasher).
func NewKeccakHash() hash.Hash { return sha3.NewLegacyKeccak256() }

// Keccak256 is Monero's cn_fast_hash: the original Keccak padding, not the
// NIST SHA3 variant. golang.org/x/crypto/sha3's "Legacy" constructor is the
// one that preserves that padding.
func Keccak256(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Keccak256x2 is Keccak(Keccak(parts...)) — used throughout the key
// schedule (hmac_key_txin, key_hmac, key_enc, ...).
func Keccak256x2(parts ...[]byte) [32]byte {
	first := Keccak256(parts...)
	return Keccak256(first[:])
}

// HashToScalar reduces Keccak256(data) mod the group order l, i.e. Hs(x)
// in the spec.
func HashToScalar(parts ...[]byte) *Scalar {
	h := Keccak256(parts...)
	return ScalarFromWide(h[:])
}

// HashToEC maps arbitrary bytes to a curve point (Hp(x) in the spec), used
// for key images: I = x * Hp(x*G). Uses try-and-increment: Keccak the input,
// attempt to decode the digest as a compressed Edwards point, and on
// failure rehash with an incrementing counter appended until one decodes.
// The cofactor is then cleared (×8) so the result lands in the prime-order
// subgroup the rest of the protocol operates in.
func HashToEC(data []byte) *Point {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, 0)
	for {
		h := Keccak256(buf)
		if p, err := NewIdentityPoint().SetBytes(h[:]); err == nil {
			return p.MulByCofactor()
		}
		buf[len(buf)-1]++
	}
}
