// Package xmrcrypto provides the Ed25519-curve scalar/point arithmetic and
// Keccak-based hashing primitives the rest of the signer is built on.
package xmrcrypto

// Atoms is the bit width of a Monero range proof commitment decomposition.
const Atoms = 64

// ScalarSize and PointSize are the canonical on-wire encoding length for a
// scalar or a compressed Edwards point.
const (
	ScalarSize = 32
	PointSize  = 32
)
