package xmrcrypto

import (
	"bytes"
	"testing"
)

func TestScalarRoundTrip(t *testing.T) {
	s, err := RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	b := s.Bytes()
	s2, err := ScalarFromCanonicalBytes(b)
	if err != nil {
		t.Fatalf("ScalarFromCanonicalBytes: %v", err)
	}
	if !s.Equal(s2) {
		t.Fatal("round trip mismatch")
	}
}

func TestMulAddMulSub(t *testing.T) {
	x, _ := RandomScalar()
	y, _ := RandomScalar()
	z, _ := RandomScalar()

	sum := MulAdd(x, y, z) // x*y + z
	back := MulSub(x, y, sum) // sum - x*y == z
	if !back.Equal(z) {
		t.Fatal("MulAdd/MulSub do not invert")
	}
}

func TestPedersenCommitAdditivity(t *testing.T) {
	a1, _ := RandomScalar()
	b1, _ := RandomScalar()
	a2, _ := RandomScalar()
	b2, _ := RandomScalar()

	c1 := PedersenCommit(a1, b1)
	c2 := PedersenCommit(a2, b2)
	sum := NewIdentityPoint().Add(c1, c2)

	expect := PedersenCommit(Add(a1, a2), Add(b1, b2))
	if !sum.Equal(expect) {
		t.Fatal("Pedersen commitments are not additively homomorphic")
	}
}

func TestHGeneratorIndependentOfG(t *testing.T) {
	h := HGenerator()
	g := NewGeneratorPoint()
	if h.Equal(g) {
		t.Fatal("H must not equal G")
	}
	// deterministic
	if !HGenerator().Equal(h) {
		t.Fatal("HGenerator must be deterministic")
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, ^uint64(0)}
	for _, v := range cases {
		enc := Varint(v)
		got, n, ok := ReadVarint(enc)
		if !ok || n != len(enc) || got != v {
			t.Fatalf("varint round trip failed for %d: got=%d n=%d ok=%v", v, got, n, ok)
		}
	}
}

func TestHMACKeccakVerify(t *testing.T) {
	key := []byte("session-hmac-key-0123456789abcd")
	msg := []byte("vin-0")
	tag := HMACKeccak(key, msg)
	if !HMACVerify(key, msg, tag[:]) {
		t.Fatal("HMAC should verify against its own tag")
	}
	tampered := append([]byte(nil), msg...)
	tampered[0] ^= 0xff
	if HMACVerify(key, tampered, tag[:]) {
		t.Fatal("HMAC verified against a tampered message")
	}
}

func TestSealOpenScalar(t *testing.T) {
	var key [32]byte
	copy(key[:], bytes.Repeat([]byte{0x42}, 32))
	s, _ := RandomScalar()
	ct, err := SealScalar(key, s.Bytes())
	if err != nil {
		t.Fatalf("SealScalar: %v", err)
	}
	pt, err := OpenScalar(key, ct)
	if err != nil {
		t.Fatalf("OpenScalar: %v", err)
	}
	if !bytes.Equal(pt, s.Bytes()) {
		t.Fatal("AEAD round trip mismatch")
	}
	ct[0] ^= 0xff
	if _, err := OpenScalar(key, ct); err == nil {
		t.Fatal("OpenScalar should fail on tampered ciphertext")
	}
}

func TestKeyImageWellFormed(t *testing.T) {
	x, _ := RandomScalar()
	xG := NewIdentityPoint().ScalarBaseMult(x)
	Hp := HashToEC(xG.Bytes())
	I := NewIdentityPoint().ScalarMult(x, Hp)
	if I.Equal(NewIdentityPoint()) {
		t.Fatal("key image must not be the identity for nonzero x")
	}
}
