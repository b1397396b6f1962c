package mlsag

import (
	"fmt"

	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

func toWire(sig *Signature) *moneroutil.MgSig {
	wire := &moneroutil.MgSig{
		SS: make([][][xmrcrypto.ScalarSize]byte, len(sig.SS)),
		II: make([][xmrcrypto.PointSize]byte, len(sig.II)),
	}
	copy(wire.CC[:], sig.C0.Bytes())
	for i, row := range sig.SS {
		wire.SS[i] = make([][xmrcrypto.ScalarSize]byte, len(row))
		for m, s := range row {
			copy(wire.SS[i][m][:], s.Bytes())
		}
	}
	for m, p := range sig.II {
		copy(wire.II[m][:], p.Bytes())
	}
	return wire
}

func fromWire(wire *moneroutil.MgSig) (*Signature, error) {
	c0, err := xmrcrypto.ScalarFromCanonicalBytes(wire.CC[:])
	if err != nil {
		return nil, fmt.Errorf("mlsag: bad CC: %w", err)
	}
	sig := &Signature{
		C0: c0,
		SS: make([][]*xmrcrypto.Scalar, len(wire.SS)),
		II: make([]*xmrcrypto.Point, len(wire.II)),
	}
	for i, row := range wire.SS {
		sig.SS[i] = make([]*xmrcrypto.Scalar, len(row))
		for m, b := range row {
			s, err := xmrcrypto.ScalarFromCanonicalBytes(b[:])
			if err != nil {
				return nil, fmt.Errorf("mlsag: bad SS[%d][%d]: %w", i, m, err)
			}
			sig.SS[i][m] = s
		}
	}
	for m, b := range wire.II {
		p, err := xmrcrypto.PointFromBytes(b[:])
		if err != nil {
			return nil, fmt.Errorf("mlsag: bad II[%d]: %w", m, err)
		}
		sig.II[m] = p
	}
	return sig, nil
}

// ProveRctMgSimple implements the Simple RingCT MLSAG: a 2-column ring over
// one input. Column 0 is the one-time output key; column 1 is the
// commitment-to-zero point C_real - C_pseudoOut, whose discrete log is
// src.Mask - pseudoOutMask. Grounded on the "every re-ingested pseudo-out
// must re-verify" rule: src.Outputs is always consulted directly, never a
// single first entry, per the permutation-indexing discipline.
func ProveRctMgSimple(message []byte, src *moneroutil.SourceEntry, inSk *xmrcrypto.Scalar, pseudoOutMask *xmrcrypto.Scalar, pseudoOut *xmrcrypto.Point) (*moneroutil.MgSig, error) {
	n := len(src.Outputs)
	if src.RealOutput < 0 || src.RealOutput >= n {
		return nil, fmt.Errorf("mlsag: real output index %d out of range [0,%d)", src.RealOutput, n)
	}

	pk := make([][]*xmrcrypto.Point, n)
	for i, out := range src.Outputs {
		commZero := xmrcrypto.NewIdentityPoint().Sub(out.Mask, pseudoOut)
		pk[i] = []*xmrcrypto.Point{out.Dest, commZero}
	}

	xx := []*xmrcrypto.Scalar{inSk, xmrcrypto.Sub(src.Mask, pseudoOutMask)}

	sig, err := Gen(message, pk, xx, src.RealOutput, nil)
	if err != nil {
		return nil, err
	}
	return toWire(sig), nil
}

// VerRctMgSimple verifies a ProveRctMgSimple signature against the ring's
// public outputs and the pseudo-out commitment it was signed against.
func VerRctMgSimple(message []byte, outputs []moneroutil.SourceOutput, pseudoOut *xmrcrypto.Point, wire *moneroutil.MgSig) error {
	pk := make([][]*xmrcrypto.Point, len(outputs))
	for i, out := range outputs {
		commZero := xmrcrypto.NewIdentityPoint().Sub(out.Mask, pseudoOut)
		pk[i] = []*xmrcrypto.Point{out.Dest, commZero}
	}
	sig, err := fromWire(wire)
	if err != nil {
		return err
	}
	return Ver(message, pk, sig)
}

// ProveRctMg implements the Full RingCT MLSAG: a single (inputs+1)-column
// ring shared across every input of the transaction. Column m < len(srcs)
// is input m's one-time output key; the last column is the per-row
// commitment-to-zero formed from that row's input masks minus the
// transaction's total output commitment and fee. All input rings must share
// one real ring position, srcs[*].RealOutput, since the commitment-to-zero
// column only closes when every input's real output sits at the same row.
func ProveRctMg(message []byte, srcs []*moneroutil.SourceEntry, inSk []*xmrcrypto.Scalar, outMasks []*xmrcrypto.Scalar, outPk []*xmrcrypto.Point, fee uint64, realIndex int) (*moneroutil.MgSig, error) {
	if len(srcs) == 0 || len(srcs) != len(inSk) {
		return nil, fmt.Errorf("mlsag: srcs/inSk length mismatch")
	}
	n := len(srcs[0].Outputs)
	for _, s := range srcs {
		if len(s.Outputs) != n {
			return nil, fmt.Errorf("mlsag: all inputs must share one ring size")
		}
	}

	sumOutPk := xmrcrypto.NewIdentityPoint()
	for _, p := range outPk {
		sumOutPk = xmrcrypto.NewIdentityPoint().Add(sumOutPk, p)
	}
	feeCommit := xmrcrypto.CommitAmount(fee)
	sumOutPk = xmrcrypto.NewIdentityPoint().Add(sumOutPk, feeCommit)

	cols := len(srcs) + 1
	pk := make([][]*xmrcrypto.Point, n)
	for i := 0; i < n; i++ {
		pk[i] = make([]*xmrcrypto.Point, cols)
		rowMaskSum := xmrcrypto.NewIdentityPoint()
		for m, s := range srcs {
			pk[i][m] = s.Outputs[i].Dest
			rowMaskSum = xmrcrypto.NewIdentityPoint().Add(rowMaskSum, s.Outputs[i].Mask)
		}
		pk[i][len(srcs)] = xmrcrypto.NewIdentityPoint().Sub(rowMaskSum, sumOutPk)
	}

	sumInMask := xmrcrypto.ZeroScalar()
	for _, s := range srcs {
		sumInMask = xmrcrypto.Add(sumInMask, s.Mask)
	}
	sumOutMask := xmrcrypto.ZeroScalar()
	for _, m := range outMasks {
		sumOutMask = xmrcrypto.Add(sumOutMask, m)
	}

	xx := make([]*xmrcrypto.Scalar, cols)
	copy(xx, inSk)
	xx[len(srcs)] = xmrcrypto.Sub(sumInMask, sumOutMask)

	sig, err := Gen(message, pk, xx, realIndex, nil)
	if err != nil {
		return nil, err
	}
	return toWire(sig), nil
}

// VerRctMg verifies a ProveRctMg signature.
func VerRctMg(message []byte, srcs []moneroutil.SourceEntry, outPk []*xmrcrypto.Point, fee uint64, wire *moneroutil.MgSig) error {
	if len(srcs) == 0 {
		return fmt.Errorf("mlsag: %w: no inputs", ErrVerifyFailed)
	}
	n := len(srcs[0].Outputs)
	for _, s := range srcs {
		if len(s.Outputs) != n {
			return fmt.Errorf("mlsag: %w: ring size mismatch across inputs", ErrVerifyFailed)
		}
	}

	sumOutPk := xmrcrypto.NewIdentityPoint()
	for _, p := range outPk {
		sumOutPk = xmrcrypto.NewIdentityPoint().Add(sumOutPk, p)
	}
	sumOutPk = xmrcrypto.NewIdentityPoint().Add(sumOutPk, xmrcrypto.CommitAmount(fee))

	cols := len(srcs) + 1
	pk := make([][]*xmrcrypto.Point, n)
	for i := 0; i < n; i++ {
		pk[i] = make([]*xmrcrypto.Point, cols)
		rowMaskSum := xmrcrypto.NewIdentityPoint()
		for m, s := range srcs {
			pk[i][m] = s.Outputs[i].Dest
			rowMaskSum = xmrcrypto.NewIdentityPoint().Add(rowMaskSum, s.Outputs[i].Mask)
		}
		pk[i][len(srcs)] = xmrcrypto.NewIdentityPoint().Sub(rowMaskSum, sumOutPk)
	}

	sig, err := fromWire(wire)
	if err != nil {
		return err
	}
	return Ver(message, pk, sig)
}
