package xmrcrypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"filippo.io/edwards25519"
)

// Scalar is an integer mod the Ed25519 group order l, matching the
// reference's "sc_*" functions.
type Scalar struct {
	s *edwards25519.Scalar
}

func newScalar(s *edwards25519.Scalar) *Scalar { return &Scalar{s: s} }

// ZeroScalar returns the additive identity.
func ZeroScalar() *Scalar { return newScalar(edwards25519.NewScalar()) }

// RandomScalar draws a uniformly random scalar via a CSPRNG, matching the
// reference's random_scalar(); tests may substitute a deterministic reader
// by calling ScalarFromWide directly with fixed bytes instead.
func RandomScalar() (*Scalar, error) {
	var wide [64]byte
	if _, err := rand.Read(wide[:]); err != nil {
		return nil, fmt.Errorf("xmrcrypto: random scalar: %w", err)
	}
	return ScalarFromWide(wide[:]), nil
}

// RandomScalarFrom draws a uniformly random scalar from an explicit CSPRNG,
// for callers that must not depend on process-global entropy (session-level
// secrets, and tests that want a deterministic, seeded reader).
func RandomScalarFrom(rng io.Reader) (*Scalar, error) {
	var wide [64]byte
	if _, err := io.ReadFull(rng, wide[:]); err != nil {
		return nil, fmt.Errorf("xmrcrypto: random scalar: %w", err)
	}
	return ScalarFromWide(wide[:]), nil
}

// ScalarFromWide reduces a 64-byte wide value mod l (sc_reduce).
func ScalarFromWide(wide []byte) *Scalar {
	var buf [64]byte
	copy(buf[:], wide)
	s, err := edwards25519.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		panic("xmrcrypto: SetUniformBytes on 64-byte buffer cannot fail: " + err.Error())
	}
	return newScalar(s)
}

// ScalarFromCanonicalBytes decodes a 32-byte little-endian scalar, rejecting
// values >= l (sc_check).
func ScalarFromCanonicalBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, fmt.Errorf("xmrcrypto: scalar must be %d bytes, got %d", ScalarSize, len(b))
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return nil, fmt.Errorf("xmrcrypto: scalar out of range: %w", err)
	}
	return newScalar(s), nil
}

// Bytes returns the canonical 32-byte little-endian encoding.
func (s *Scalar) Bytes() []byte { return s.s.Bytes() }

func (s *Scalar) Add(x, y *Scalar) *Scalar {
	s.s.Add(x.s, y.s)
	return s
}

func (s *Scalar) Sub(x, y *Scalar) *Scalar {
	s.s.Subtract(x.s, y.s)
	return s
}

func (s *Scalar) Negate(x *Scalar) *Scalar {
	s.s.Negate(x.s)
	return s
}

func (s *Scalar) Mul(x, y *Scalar) *Scalar {
	s.s.Multiply(x.s, y.s)
	return s
}

// MulSub computes s = z - x*y (sc_mulsub).
func (s *Scalar) MulSub(x, y, z *Scalar) *Scalar {
	neg := edwards25519.NewScalar().Negate(x.s)
	s.s.MultiplyAdd(neg, y.s, z.s)
	return s
}

// MulAdd computes s = x*y + z (sc_muladd).
func (s *Scalar) MulAdd(x, y, z *Scalar) *Scalar {
	s.s.MultiplyAdd(x.s, y.s, z.s)
	return s
}

func (s *Scalar) Invert(x *Scalar) *Scalar {
	s.s.Invert(x.s)
	return s
}

// Equal reports whether s == t in constant time.
func (s *Scalar) Equal(t *Scalar) bool { return s.s.Equal(t.s) == 1 }

func (s *Scalar) IsZero() bool { return s.Equal(ZeroScalar()) }

// MarshalBinary/UnmarshalBinary let a Scalar travel as a plain struct field
// through gob (used by internal/signer's wire codec) without exposing the
// edwards25519 internals.
func (s *Scalar) MarshalBinary() ([]byte, error) { return s.Bytes(), nil }

func (s *Scalar) UnmarshalBinary(b []byte) error {
	v, err := ScalarFromCanonicalBytes(b)
	if err != nil {
		return err
	}
	*s = *v
	return nil
}

// Add/Sub/Mul/Negate/Invert allocate-and-return variants, convenient for
// expression-style use in the higher protocol layers.
func Add(x, y *Scalar) *Scalar    { return ZeroScalar().Add(x, y) }
func Sub(x, y *Scalar) *Scalar    { return ZeroScalar().Sub(x, y) }
func Mul(x, y *Scalar) *Scalar    { return ZeroScalar().Mul(x, y) }
func Negate(x *Scalar) *Scalar    { return ZeroScalar().Negate(x) }
func MulSub(x, y, z *Scalar) *Scalar { return ZeroScalar().MulSub(x, y, z) }
func MulAdd(x, y, z *Scalar) *Scalar { return ZeroScalar().MulAdd(x, y, z) }

// ScalarFromUint64 encodes a little-endian u64 as a scalar (used for amounts
// treated as exponents of H, e.g. amount*H).
func ScalarFromUint64(v uint64) *Scalar {
	var wide [64]byte
	for i := 0; i < 8; i++ {
		wide[i] = byte(v >> (8 * i))
	}
	return ScalarFromWide(wide[:])
}
