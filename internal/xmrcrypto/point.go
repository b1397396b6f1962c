package xmrcrypto

import (
	"fmt"
	"sync"

	"filippo.io/edwards25519"
)

// Point is a point on the Ed25519 curve's prime-order subgroup.
type Point struct {
	p *edwards25519.Point
}

func newPoint(p *edwards25519.Point) *Point { return &Point{p: p} }

// NewIdentityPoint returns the curve's neutral element.
func NewIdentityPoint() *Point { return newPoint(edwards25519.NewIdentityPoint()) }

// NewGeneratorPoint returns G, the standard Ed25519 base point.
func NewGeneratorPoint() *Point { return newPoint(edwards25519.NewGeneratorPoint()) }

var hGenerator struct {
	once sync.Once
	pt   *Point
}

// HGenerator returns Monero's second Pedersen generator H, defined as
// hash_to_point(G_encoded) — independent of G with unknown discrete log
// relative to it, exactly as the reference derives it.
func HGenerator() *Point {
	hGenerator.once.Do(func() {
		g := NewGeneratorPoint().Bytes()
		hGenerator.pt = HashToEC(g)
	})
	return hGenerator.pt
}

func (v *Point) Bytes() []byte { return v.p.Bytes() }

// SetBytes decodes a canonical compressed point, rejecting non-canonical or
// invalid encodings.
func (v *Point) SetBytes(b []byte) (*Point, error) {
	if len(b) != PointSize {
		return nil, fmt.Errorf("xmrcrypto: point must be %d bytes, got %d", PointSize, len(b))
	}
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("xmrcrypto: invalid point encoding: %w", err)
	}
	v.p = p
	return v, nil
}

func PointFromBytes(b []byte) (*Point, error) {
	return NewIdentityPoint().SetBytes(b)
}

func (v *Point) Add(a, b *Point) *Point {
	v.p.Add(a.p, b.p)
	return v
}

func (v *Point) Sub(a, b *Point) *Point {
	v.p.Subtract(a.p, b.p)
	return v
}

func (v *Point) Negate(a *Point) *Point {
	v.p.Negate(a.p)
	return v
}

// ScalarMult computes v = x*a.
func (v *Point) ScalarMult(x *Scalar, a *Point) *Point {
	v.p.ScalarMult(x.s, a.p)
	return v
}

// ScalarBaseMult computes v = x*G.
func (v *Point) ScalarBaseMult(x *Scalar) *Point {
	v.p.ScalarBaseMult(x.s)
	return v
}

// MulByCofactor clears the small-order component (×8), used after
// try-and-increment hash-to-point mapping.
func (v *Point) MulByCofactor() *Point {
	v.p.MultByCofactor(v.p)
	return v
}

// DoubleScalarBaseMult computes a*A + b*G in variable time (used for
// non-secret verification arithmetic only).
func DoubleScalarBaseMult(a *Scalar, A *Point, b *Scalar) *Point {
	out := edwards25519.NewIdentityPoint().VarTimeDoubleScalarBaseMult(a.s, A.p, b.s)
	return newPoint(out)
}

// MultiScalarMult computes sum(scalars[i]*points[i]).
func MultiScalarMult(scalars []*Scalar, points []*Point) *Point {
	ss := make([]*edwards25519.Scalar, len(scalars))
	ps := make([]*edwards25519.Point, len(points))
	for i := range scalars {
		ss[i] = scalars[i].s
		ps[i] = points[i].p
	}
	out := edwards25519.NewIdentityPoint().MultiScalarMult(ss, ps)
	return newPoint(out)
}

func (v *Point) Equal(u *Point) bool { return v.p.Equal(u.p) == 1 }

// MarshalBinary/UnmarshalBinary let a Point travel as a plain struct field
// through gob (used by internal/signer's wire codec) without exposing the
// edwards25519 internals.
func (v *Point) MarshalBinary() ([]byte, error) { return v.Bytes(), nil }

func (v *Point) UnmarshalBinary(b []byte) error {
	p, err := PointFromBytes(b)
	if err != nil {
		return err
	}
	*v = *p
	return nil
}

// PedersenCommit computes C = a*G + b*H — the core commitment primitive.
func PedersenCommit(a, b *Scalar) *Point {
	return NewIdentityPoint().Add(
		NewIdentityPoint().ScalarBaseMult(a),
		NewIdentityPoint().ScalarMult(b, HGenerator()),
	)
}

// CommitAmount computes amount*H for a plain uint64 amount (used for
// pseudo-out/pre-balance comparisons when the blinding factor is zero).
func CommitAmount(amount uint64) *Point {
	return NewIdentityPoint().ScalarMult(ScalarFromUint64(amount), HGenerator())
}
