package walletcreds

import (
	"bytes"
	"testing"

	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

func mustSeed(t *testing.T) []byte {
	t.Helper()
	spend, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatalf("random spend scalar: %v", err)
	}
	view, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatalf("random view scalar: %v", err)
	}
	return append(append([]byte{}, spend.Bytes()...), view.Bytes()...)
}

func TestNewVaultRejectsWrongSeedLength(t *testing.T) {
	if _, err := NewVault(make([]byte, 10)); err == nil {
		t.Fatal("expected error for undersized seed")
	}
	if _, err := NewVault(make([]byte, 65)); err == nil {
		t.Fatal("expected error for oversized seed")
	}
}

func TestNewVaultDerivesPublicKeys(t *testing.T) {
	seed := mustSeed(t)
	spendSecretBytes := append([]byte{}, seed[:xmrcrypto.ScalarSize]...)
	viewSecretBytes := append([]byte{}, seed[xmrcrypto.ScalarSize:]...)

	v, err := NewVault(seed)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	spendSecret, err := xmrcrypto.ScalarFromCanonicalBytes(spendSecretBytes)
	if err != nil {
		t.Fatalf("reconstruct spend secret: %v", err)
	}
	viewSecret, err := xmrcrypto.ScalarFromCanonicalBytes(viewSecretBytes)
	if err != nil {
		t.Fatalf("reconstruct view secret: %v", err)
	}
	wantSpendPub := xmrcrypto.NewIdentityPoint().ScalarBaseMult(spendSecret)
	wantViewPub := xmrcrypto.NewIdentityPoint().ScalarBaseMult(viewSecret)

	if !bytes.Equal(v.SpendPublic().Bytes(), wantSpendPub.Bytes()) {
		t.Error("spend public key mismatch")
	}
	if !bytes.Equal(v.ViewPublic().Bytes(), wantViewPub.Bytes()) {
		t.Error("view public key mismatch")
	}
}

func TestVaultOpenRoundTrip(t *testing.T) {
	seed := mustSeed(t)
	wantSpendSecret := append([]byte{}, seed[:xmrcrypto.ScalarSize]...)
	wantViewSecret := append([]byte{}, seed[xmrcrypto.ScalarSize:]...)

	v, err := NewVault(seed)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	unsealed, err := v.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !bytes.Equal(unsealed.Creds.SpendSecret.Bytes(), wantSpendSecret) {
		t.Error("spend secret did not survive seal/open round trip")
	}
	if !bytes.Equal(unsealed.Creds.ViewSecret.Bytes(), wantViewSecret) {
		t.Error("view secret did not survive seal/open round trip")
	}
	if !bytes.Equal(unsealed.Creds.SpendPublic.Bytes(), v.SpendPublic().Bytes()) {
		t.Error("spend public key not carried into Unsealed credentials")
	}
	if !bytes.Equal(unsealed.Creds.ViewPublic.Bytes(), v.ViewPublic().Bytes()) {
		t.Error("view public key not carried into Unsealed credentials")
	}
}

func TestVaultOpenIsRepeatable(t *testing.T) {
	v, err := NewVault(mustSeed(t))
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	first, err := v.Open()
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	second, err := v.Open()
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if !bytes.Equal(first.Creds.SpendSecret.Bytes(), second.Creds.SpendSecret.Bytes()) {
		t.Error("repeated Open calls produced different spend secrets")
	}
}
