package mlsag

import (
	"testing"

	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

func randomSourceEntry(t *testing.T, n, real int) (*moneroutil.SourceEntry, *xmrcrypto.Scalar) {
	t.Helper()
	outs := make([]moneroutil.SourceOutput, n)
	realSecret, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	realMask, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		s, _ := xmrcrypto.RandomScalar()
		m, _ := xmrcrypto.RandomScalar()
		dest := xmrcrypto.NewIdentityPoint().ScalarBaseMult(s)
		mask := xmrcrypto.NewIdentityPoint().ScalarBaseMult(m)
		if i == real {
			dest = xmrcrypto.NewIdentityPoint().ScalarBaseMult(realSecret)
			mask = xmrcrypto.PedersenCommit(realMask, xmrcrypto.ScalarFromUint64(100))
		}
		outs[i] = moneroutil.SourceOutput{GlobalIndex: uint64(i), Dest: dest, Mask: mask}
	}
	src := &moneroutil.SourceEntry{
		Amount:     100,
		Outputs:    outs,
		RealOutput: real,
		Mask:       realMask,
	}
	return src, realSecret
}

func TestProveVerRctMgSimpleRoundTrip(t *testing.T) {
	src, secret := randomSourceEntry(t, 4, 2)
	pseudoOutMask, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	pseudoOut := xmrcrypto.PedersenCommit(pseudoOutMask, xmrcrypto.ScalarFromUint64(100))

	wire, err := ProveRctMgSimple([]byte("msg"), src, secret, pseudoOutMask, pseudoOut)
	if err != nil {
		t.Fatalf("ProveRctMgSimple: %v", err)
	}
	if err := VerRctMgSimple([]byte("msg"), src.Outputs, pseudoOut, wire); err != nil {
		t.Fatalf("VerRctMgSimple: %v", err)
	}
}

func TestProveVerRctMgFullRoundTrip(t *testing.T) {
	const n, real = 3, 1
	src1, sk1 := randomSourceEntry(t, n, real)
	src2, sk2 := randomSourceEntry(t, n, real)

	outMask1, _ := xmrcrypto.RandomScalar()
	outMask2, _ := xmrcrypto.RandomScalar()
	const fee = 5
	const amt1, amt2 = 97, 98
	outPk := []*xmrcrypto.Point{
		xmrcrypto.PedersenCommit(outMask1, xmrcrypto.ScalarFromUint64(amt1)),
		xmrcrypto.PedersenCommit(outMask2, xmrcrypto.ScalarFromUint64(amt2)),
	}

	srcs := []*moneroutil.SourceEntry{src1, src2}
	inSk := []*xmrcrypto.Scalar{sk1, sk2}
	outMasks := []*xmrcrypto.Scalar{outMask1, outMask2}

	wire, err := ProveRctMg([]byte("msg"), srcs, inSk, outMasks, outPk, fee, real)
	if err != nil {
		t.Fatalf("ProveRctMg: %v", err)
	}

	verifySrcs := []moneroutil.SourceEntry{*src1, *src2}
	if err := VerRctMg([]byte("msg"), verifySrcs, outPk, fee, wire); err != nil {
		t.Fatalf("VerRctMg: %v", err)
	}
}

func TestGenerateCheckRingSignatureRoundTrip(t *testing.T) {
	const n, real = 5, 3
	pubs := make([]*xmrcrypto.Point, n)
	var secret *xmrcrypto.Scalar
	for i := 0; i < n; i++ {
		s, _ := xmrcrypto.RandomScalar()
		pubs[i] = xmrcrypto.NewIdentityPoint().ScalarBaseMult(s)
		if i == real {
			secret = s
		}
	}
	wire, err := GenerateRingSignature([]byte("msg"), pubs, secret, real)
	if err != nil {
		t.Fatalf("GenerateRingSignature: %v", err)
	}
	if err := CheckRingSignature([]byte("msg"), pubs, wire); err != nil {
		t.Fatalf("CheckRingSignature: %v", err)
	}
}
