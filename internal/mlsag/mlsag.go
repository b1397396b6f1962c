// Package mlsag implements Multilayered Linkable Spontaneous Anonymous
// Group ring signatures — the Full and Simple RingCT variants — plus the
// classic single-key ring signature used for wallet key-image export.
package mlsag

import (
	"errors"
	"fmt"

	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// ErrVerifyFailed is returned by the Verify functions on an invalid signature.
var ErrVerifyFailed = errors.New("mlsag: signature failed to verify")

// ErrMultisigUnsupported is returned whenever a non-nil MultisigKLRki is
// supplied; multisig support is an open question the spec defers.
var ErrMultisigUnsupported = errors.New("mlsag: multisig kLRki paths are not supported")

var mlsagTag = []byte("xmr-mlsag")

// Signature is a generic MLSAG signature over an NxM ring: N decoy rows,
// M key "columns" per row. SS is indexed [row][col]; II holds one key
// image per column (shared by every row).
type Signature struct {
	C0 *xmrcrypto.Scalar
	SS [][]*xmrcrypto.Scalar
	II []*xmrcrypto.Point
}

// MultisigKLRki is the stubbed multisig hook named in the spec's Design
// Notes; it is never populated by this implementation.
type MultisigKLRki struct {
	K, L, R, KI *xmrcrypto.Point
}

func chainHash(message []byte, L, R []*xmrcrypto.Point) *xmrcrypto.Scalar {
	buf := make([]byte, 0, len(mlsagTag)+len(message)+len(L)*2*xmrcrypto.PointSize)
	buf = append(buf, mlsagTag...)
	buf = append(buf, message...)
	for i := range L {
		buf = append(buf, L[i].Bytes()...)
		buf = append(buf, R[i].Bytes()...)
	}
	return xmrcrypto.HashToScalar(buf)
}

// Gen implements MLSAG_Gen: given the ring pk[row][col], the real row's
// secret key vector xx[col] (with pk[index][col] == xx[col]*G for every
// col), produces a linkable ring signature binding message; the key image
// of each column is computed here from xx.
func Gen(message []byte, pk [][]*xmrcrypto.Point, xx []*xmrcrypto.Scalar, index int, kLRki *MultisigKLRki) (*Signature, error) {
	if kLRki != nil {
		return nil, ErrMultisigUnsupported
	}
	n := len(pk)
	if n == 0 {
		return nil, fmt.Errorf("mlsag: empty ring")
	}
	cols := len(xx)
	if index < 0 || index >= n {
		return nil, fmt.Errorf("mlsag: index %d out of range [0,%d)", index, n)
	}
	for _, row := range pk {
		if len(row) != cols {
			return nil, fmt.Errorf("mlsag: ragged ring, want %d columns", cols)
		}
	}

	II := make([]*xmrcrypto.Point, cols)
	hp := make([]*xmrcrypto.Point, cols)
	for m := 0; m < cols; m++ {
		hp[m] = xmrcrypto.HashToEC(pk[index][m].Bytes())
		II[m] = xmrcrypto.NewIdentityPoint().ScalarMult(xx[m], hp[m])
	}

	alpha := make([]*xmrcrypto.Scalar, cols)
	ss := make([][]*xmrcrypto.Scalar, n)
	for i := range ss {
		ss[i] = make([]*xmrcrypto.Scalar, cols)
	}

	L := make([]*xmrcrypto.Point, cols)
	R := make([]*xmrcrypto.Point, cols)
	for m := 0; m < cols; m++ {
		a, err := xmrcrypto.RandomScalar()
		if err != nil {
			return nil, fmt.Errorf("mlsag: %w", err)
		}
		alpha[m] = a
		L[m] = xmrcrypto.NewIdentityPoint().ScalarBaseMult(a)
		R[m] = xmrcrypto.NewIdentityPoint().ScalarMult(a, hp[m])
	}

	// chal[j] is the challenge that enters row j. The verifier always
	// walks rows in natural order 0..n-1 starting from chal[0]=C0, so
	// every challenge computed here — including the one for row 0 — must
	// be recorded regardless of where the real row sits in the ring.
	chal := make([]*xmrcrypto.Scalar, n)
	chal[(index+1)%n] = chainHash(message, L, R)

	j := (index + 1) % n
	for k := 0; k < n-1; k++ {
		for m := 0; m < cols; m++ {
			s, err := xmrcrypto.RandomScalar()
			if err != nil {
				return nil, fmt.Errorf("mlsag: %w", err)
			}
			ss[j][m] = s
			L[m] = xmrcrypto.NewIdentityPoint().Add(
				xmrcrypto.NewIdentityPoint().ScalarBaseMult(s),
				xmrcrypto.NewIdentityPoint().ScalarMult(chal[j], pk[j][m]))
			hpj := xmrcrypto.HashToEC(pk[j][m].Bytes())
			R[m] = xmrcrypto.NewIdentityPoint().Add(
				xmrcrypto.NewIdentityPoint().ScalarMult(s, hpj),
				xmrcrypto.NewIdentityPoint().ScalarMult(chal[j], II[m]))
		}
		next := (j + 1) % n
		chal[next] = chainHash(message, L, R)
		j = next
	}

	for m := 0; m < cols; m++ {
		ss[index][m] = xmrcrypto.MulSub(chal[index], xx[m], alpha[m]) // alpha - chal[index]*x
	}

	return &Signature{C0: chal[0], SS: ss, II: II}, nil
}

// Ver implements MLSAG_Ver: recomputes the challenge chain starting from c0
// and checks it closes back to itself after one full loop.
func Ver(message []byte, pk [][]*xmrcrypto.Point, sig *Signature) error {
	n := len(pk)
	if n == 0 || len(sig.SS) != n {
		return fmt.Errorf("mlsag: %w: ring size mismatch", ErrVerifyFailed)
	}
	cols := len(sig.II)
	c := sig.C0
	L := make([]*xmrcrypto.Point, cols)
	R := make([]*xmrcrypto.Point, cols)

	for j := 0; j < n; j++ {
		if len(sig.SS[j]) != cols {
			return fmt.Errorf("mlsag: %w: ragged response row", ErrVerifyFailed)
		}
		for m := 0; m < cols; m++ {
			L[m] = xmrcrypto.NewIdentityPoint().Add(
				xmrcrypto.NewIdentityPoint().ScalarBaseMult(sig.SS[j][m]),
				xmrcrypto.NewIdentityPoint().ScalarMult(c, pk[j][m]))
			hpj := xmrcrypto.HashToEC(pk[j][m].Bytes())
			R[m] = xmrcrypto.NewIdentityPoint().Add(
				xmrcrypto.NewIdentityPoint().ScalarMult(sig.SS[j][m], hpj),
				xmrcrypto.NewIdentityPoint().ScalarMult(c, sig.II[m]))
		}
		c = chainHash(message, L, R)
	}

	if !c.Equal(sig.C0) {
		return fmt.Errorf("mlsag: %w: challenge chain did not close", ErrVerifyFailed)
	}
	return nil
}
