// Package rangeproof implements the memory-optimized two-pass Borromean
// range proof: a single linked ring signature over 64 independent 1-of-2
// rings (one per bit of a 64-bit amount), proving a Pedersen commitment
// opens to a value in [0, 2^64) without revealing it.
package rangeproof

import (
	"errors"
	"fmt"

	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// ErrNotImplemented is returned by Prove when UseASNL is requested; only
// the Borromean path is implemented (see DESIGN.md Open Questions).
var ErrNotImplemented = errors.New("rangeproof: ASNL range proofs are not implemented, Borromean-only")

// ErrVerifyFailed is returned by Verify on a malformed or invalid proof.
var ErrVerifyFailed = errors.New("rangeproof: range proof failed to verify")

var rangeProofTag = []byte("xmr-borromean-rangeproof")

// Proof is the result of Prove: the commitment, its blinding mask, and the
// wire-form range signature.
type Proof struct {
	C    *xmrcrypto.Point
	Mask *xmrcrypto.Scalar
	Sig  *moneroutil.RangeSig
}

func pow2Scalar(i int) *xmrcrypto.Scalar {
	if i < 64 {
		return xmrcrypto.ScalarFromUint64(uint64(1) << uint(i))
	}
	// Unreachable for Atoms=64, kept for safety against a larger Atoms.
	s := xmrcrypto.ScalarFromUint64(1)
	two := xmrcrypto.ScalarFromUint64(2)
	for j := 0; j < i; j++ {
		s = xmrcrypto.Mul(s, two)
	}
	return s
}

func h2(i int) *xmrcrypto.Point {
	return xmrcrypto.NewIdentityPoint().ScalarMult(pow2Scalar(i), xmrcrypto.HGenerator())
}

func bitHashTag(bit int, i int, point *xmrcrypto.Point) *xmrcrypto.Scalar {
	buf := make([]byte, 0, len(rangeProofTag)+1+8+xmrcrypto.PointSize)
	buf = append(buf, rangeProofTag...)
	buf = append(buf, byte(bit))
	buf = xmrcrypto.AppendVarint(buf, uint64(i))
	buf = append(buf, point.Bytes()...)
	return xmrcrypto.HashToScalar(buf)
}

type ringState struct {
	bit    int
	a      *xmrcrypto.Scalar
	alpha  *xmrcrypto.Scalar
	P0, P1 *xmrcrypto.Point
	// fake response chosen in pass 1; real one filled in during pass 2.
	s0, s1 *xmrcrypto.Scalar
}

// Prove implements prove_range_mem: constructs a range proof for amount
// over xmrcrypto.Atoms bits. If lastMask is non-nil, the final bit's
// blinding factor is chosen so the total mask equals lastMask exactly
// (used to force Σ mask_outputs == Σ alpha_inputs on the final output of a
// Simple RCT transaction). useASNL is carried on the signature for
// signature-shape compatibility but is not implemented.
func Prove(amount uint64, lastMask *xmrcrypto.Scalar, useASNL bool) (*Proof, error) {
	if useASNL {
		return nil, ErrNotImplemented
	}

	rings := make([]*ringState, xmrcrypto.Atoms)
	closing := make([][]byte, xmrcrypto.Atoms)
	sumA := xmrcrypto.ZeroScalar()

	for i := 0; i < xmrcrypto.Atoms; i++ {
		bit := int((amount >> uint(i)) & 1)

		var a *xmrcrypto.Scalar
		var err error
		if lastMask != nil && i == xmrcrypto.Atoms-1 {
			a = xmrcrypto.Sub(lastMask, sumA)
		} else {
			a, err = xmrcrypto.RandomScalar()
			if err != nil {
				return nil, fmt.Errorf("rangeproof: %w", err)
			}
		}
		sumA = xmrcrypto.Add(sumA, a)

		var Ci *xmrcrypto.Point
		if bit == 0 {
			Ci = xmrcrypto.NewIdentityPoint().ScalarBaseMult(a)
		} else {
			Ci = xmrcrypto.NewIdentityPoint().Add(
				xmrcrypto.NewIdentityPoint().ScalarBaseMult(a), h2(i))
		}
		P0 := Ci
		P1 := xmrcrypto.NewIdentityPoint().Sub(Ci, h2(i))

		alpha, err := xmrcrypto.RandomScalar()
		if err != nil {
			return nil, fmt.Errorf("rangeproof: %w", err)
		}

		rs := &ringState{bit: bit, a: a, alpha: alpha, P0: P0, P1: P1}

		var cPoint *xmrcrypto.Point
		if bit == 0 {
			L0 := xmrcrypto.NewIdentityPoint().ScalarBaseMult(alpha)
			e1 := bitHashTag(1, i, L0)
			s1Fake, err := xmrcrypto.RandomScalar()
			if err != nil {
				return nil, fmt.Errorf("rangeproof: %w", err)
			}
			L1 := xmrcrypto.NewIdentityPoint().Add(
				xmrcrypto.NewIdentityPoint().ScalarBaseMult(s1Fake),
				xmrcrypto.NewIdentityPoint().ScalarMult(e1, P1))
			rs.s1 = s1Fake
			cPoint = L1
		} else {
			L1 := xmrcrypto.NewIdentityPoint().ScalarBaseMult(alpha)
			s0Fake, err := xmrcrypto.RandomScalar()
			if err != nil {
				return nil, fmt.Errorf("rangeproof: %w", err)
			}
			rs.s0 = s0Fake
			cPoint = L1
		}
		c := bitHashTag(0, i, cPoint)
		closing[i] = c.Bytes()
		rings[i] = rs
	}

	ee := xmrcrypto.HashToScalar(closing...)

	for i, rs := range rings {
		if rs.bit == 0 {
			rs.s0 = xmrcrypto.MulSub(ee, rs.a, rs.alpha) // alpha - ee*a
		} else {
			L0 := xmrcrypto.NewIdentityPoint().Add(
				xmrcrypto.NewIdentityPoint().ScalarBaseMult(rs.s0),
				xmrcrypto.NewIdentityPoint().ScalarMult(ee, rs.P0))
			e1 := bitHashTag(1, i, L0)
			rs.s1 = xmrcrypto.MulSub(e1, rs.a, rs.alpha) // alpha - e1*a
		}
		rings[i] = rs
	}

	var sig moneroutil.RangeSig
	copy(sig.Sig.Ee[:], ee.Bytes())
	for i, rs := range rings {
		copy(sig.Sig.S0[i][:], rs.s0.Bytes())
		copy(sig.Sig.S1[i][:], rs.s1.Bytes())
		copy(sig.Ci[i][:], rs.P0.Bytes())
	}

	C := sumCi(&sig)
	return &Proof{C: C, Mask: sumA, Sig: &sig}, nil
}

func sumCi(sig *moneroutil.RangeSig) *xmrcrypto.Point {
	sum := xmrcrypto.NewIdentityPoint()
	for i := 0; i < xmrcrypto.Atoms; i++ {
		ci, err := xmrcrypto.PointFromBytes(sig.Ci[i][:])
		if err != nil {
			// Ci was produced by us moments ago from a valid point; a
			// decode failure here means Prove's own output is corrupt.
			panic("rangeproof: invalid Ci produced by Prove: " + err.Error())
		}
		sum = xmrcrypto.NewIdentityPoint().Add(sum, ci)
	}
	return sum
}

// Verify implements ver_range: checks that sig opens C correctly.
func Verify(C *xmrcrypto.Point, sig *moneroutil.RangeSig) error {
	ee, err := xmrcrypto.ScalarFromCanonicalBytes(sig.Sig.Ee[:])
	if err != nil {
		return fmt.Errorf("rangeproof: %w: bad ee: %w", ErrVerifyFailed, err)
	}

	closing := make([][]byte, xmrcrypto.Atoms)
	for i := 0; i < xmrcrypto.Atoms; i++ {
		P0, err := xmrcrypto.PointFromBytes(sig.Ci[i][:])
		if err != nil {
			return fmt.Errorf("rangeproof: %w: bad Ci[%d]: %w", ErrVerifyFailed, i, err)
		}
		P1 := xmrcrypto.NewIdentityPoint().Sub(P0, h2(i))

		s0, err := xmrcrypto.ScalarFromCanonicalBytes(sig.Sig.S0[i][:])
		if err != nil {
			return fmt.Errorf("rangeproof: %w: bad s0[%d]: %w", ErrVerifyFailed, i, err)
		}
		s1, err := xmrcrypto.ScalarFromCanonicalBytes(sig.Sig.S1[i][:])
		if err != nil {
			return fmt.Errorf("rangeproof: %w: bad s1[%d]: %w", ErrVerifyFailed, i, err)
		}

		L0 := xmrcrypto.NewIdentityPoint().Add(
			xmrcrypto.NewIdentityPoint().ScalarBaseMult(s0),
			xmrcrypto.NewIdentityPoint().ScalarMult(ee, P0))
		e1 := bitHashTag(1, i, L0)
		L1 := xmrcrypto.NewIdentityPoint().Add(
			xmrcrypto.NewIdentityPoint().ScalarBaseMult(s1),
			xmrcrypto.NewIdentityPoint().ScalarMult(e1, P1))
		c := bitHashTag(0, i, L1)
		closing[i] = c.Bytes()
	}

	gotEE := xmrcrypto.HashToScalar(closing...)
	if !gotEE.Equal(ee) {
		return fmt.Errorf("rangeproof: %w: challenge mismatch", ErrVerifyFailed)
	}

	gotC := sumCi(sig)
	if !gotC.Equal(C) {
		return fmt.Errorf("rangeproof: %w: commitment sum mismatch", ErrVerifyFailed)
	}
	return nil
}
