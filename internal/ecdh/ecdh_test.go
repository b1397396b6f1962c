package ecdh

import (
	"testing"

	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mask, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	amount, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	amountKey, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}

	x := Tuple{Mask: mask, Amount: amount}
	enc := Encode(x, amountKey)
	dec := Decode(enc, amountKey)

	if !dec.Mask.Equal(x.Mask) || !dec.Amount.Equal(x.Amount) {
		t.Fatal("ecdh decode did not invert encode")
	}
}

func TestEncodeWireDecodeRCTAmountRoundTrip(t *testing.T) {
	mask, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	amountKey, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	const amount uint64 = 123456789012345

	wire := EncodeWire(mask, amount, amountKey)
	gotMask, gotAmount, err := DecodeRCTAmount(wire, amountKey)
	if err != nil {
		t.Fatalf("DecodeRCTAmount: %v", err)
	}
	if !gotMask.Equal(mask) {
		t.Fatal("decoded mask mismatch")
	}
	if gotAmount != amount {
		t.Fatalf("decoded amount mismatch: got %d want %d", gotAmount, amount)
	}
}

func TestAmountKeyDeterministic(t *testing.T) {
	s, _ := xmrcrypto.RandomScalar()
	d := xmrcrypto.NewIdentityPoint().ScalarBaseMult(s)
	k1 := AmountKey(d, 3)
	k2 := AmountKey(d, 3)
	if !k1.Equal(k2) {
		t.Fatal("AmountKey is not deterministic")
	}
	k3 := AmountKey(d, 4)
	if k1.Equal(k3) {
		t.Fatal("AmountKey did not vary with output index")
	}
}
