package moneroutil

import (
	"testing"

	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

func randomCreds(t *testing.T) Credentials {
	t.Helper()
	spendSec, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	viewSec, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	return Credentials{
		SpendSecret: spendSec,
		SpendPublic: xmrcrypto.NewIdentityPoint().ScalarBaseMult(spendSec),
		ViewSecret:  viewSec,
		ViewPublic:  xmrcrypto.NewIdentityPoint().ScalarBaseMult(viewSec),
	}
}

func TestDeriveSubaddressPublicKeyInvertsDerivePublicKey(t *testing.T) {
	creds := randomCreds(t)
	r, _ := xmrcrypto.RandomScalar()
	derivation := GenerateKeyDerivation(creds.ViewPublic, r)

	outKey := DerivePublicKey(derivation, 5, creds.SpendPublic)
	base := DeriveSubaddressPublicKey(outKey, derivation, 5)
	if !base.Equal(creds.SpendPublic) {
		t.Fatal("DeriveSubaddressPublicKey did not recover the spend public key")
	}
}

func TestGenerateKeyImageHelperPrimaryAddress(t *testing.T) {
	creds := randomCreds(t)
	r, _ := xmrcrypto.RandomScalar()
	derivation := GenerateKeyDerivation(creds.ViewPublic, r)
	const outIdx = 2
	outKey := DerivePublicKey(derivation, outIdx, creds.SpendPublic)

	subaddrs := PrecomputeSubaddresses(creds, 0, nil)
	rPub := xmrcrypto.NewIdentityPoint().ScalarBaseMult(r)

	res, err := GenerateKeyImageHelper(creds, subaddrs, outKey, rPub, nil, outIdx)
	if err != nil {
		t.Fatalf("GenerateKeyImageHelper: %v", err)
	}
	if !res.Index.IsPrimary() {
		t.Fatalf("expected primary address, got %+v", res.Index)
	}
	gotPub := xmrcrypto.NewIdentityPoint().ScalarBaseMult(res.Secret)
	if !gotPub.Equal(outKey) {
		t.Fatal("recovered secret does not reproduce the output key")
	}
}

func TestGenerateKeyImageHelperSubaddress(t *testing.T) {
	creds := randomCreds(t)
	idx := SubaddressIndex{Major: 0, Minor: 7}
	spendSub := SubaddressSpendPublic(creds.SpendPublic, creds.ViewSecret, idx)
	viewSub := SubaddressViewPublic(spendSub, creds.ViewSecret)

	r, _ := xmrcrypto.RandomScalar()
	// Single-destination-to-subaddress rule: r_pub = r * D_spend.
	derivation := GenerateKeyDerivation(viewSub, r)
	const outIdx = 0
	outKey := DerivePublicKey(derivation, outIdx, spendSub)

	subaddrs := PrecomputeSubaddresses(creds, 0, []uint32{7})
	rPub := xmrcrypto.NewIdentityPoint().ScalarMult(r, spendSub)

	res, err := GenerateKeyImageHelper(creds, subaddrs, outKey, rPub, nil, outIdx)
	if err != nil {
		t.Fatalf("GenerateKeyImageHelper: %v", err)
	}
	if res.Index != idx {
		t.Fatalf("expected index %+v, got %+v", idx, res.Index)
	}
}

func TestPaymentIDEncryptionSelfInverse(t *testing.T) {
	creds := randomCreds(t)
	r, _ := xmrcrypto.RandomScalar()
	var pid [8]byte
	copy(pid[:], []byte("deadbeef"))

	enc := EncryptPaymentID(pid, creds.ViewPublic, r)
	dec := DecryptPaymentID(enc, creds.ViewPublic, r)
	if dec != pid {
		t.Fatal("payment id encrypt/decrypt is not self-inverse")
	}
}

func TestRelativeAbsoluteOffsetsRoundTrip(t *testing.T) {
	abs := []uint64{3, 10, 15, 1000}
	rel := RelativeOutputOffsets(abs)
	got := AbsoluteOutputOffsets(rel)
	if len(got) != len(abs) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(abs))
	}
	for i := range abs {
		if got[i] != abs[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], abs[i])
		}
	}
}

func TestTxPrefixHasherDeterministic(t *testing.T) {
	h1 := NewTxPrefixHasher()
	h2 := NewTxPrefixHasher()
	vin := Vin{Amount: 5, KeyOffsets: []uint64{1, 2, 3}}
	vout := Vout{Amount: 0}

	for _, h := range []*TxPrefixHasher{h1, h2} {
		h.WriteVarint(2)
		h.WriteVarint(0)
		h.WriteVin(vin)
		h.WriteVout(vout)
	}
	if h1.Finalize() != h2.Finalize() {
		t.Fatal("TxPrefixHasher is not deterministic")
	}
}
