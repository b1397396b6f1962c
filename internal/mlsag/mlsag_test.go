package mlsag

import (
	"testing"

	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

func buildRing(t *testing.T, n, cols, realIndex int) ([][]*xmrcrypto.Point, []*xmrcrypto.Scalar) {
	t.Helper()
	pk := make([][]*xmrcrypto.Point, n)
	var xx []*xmrcrypto.Scalar
	for i := 0; i < n; i++ {
		pk[i] = make([]*xmrcrypto.Point, cols)
		for m := 0; m < cols; m++ {
			s, err := xmrcrypto.RandomScalar()
			if err != nil {
				t.Fatal(err)
			}
			pk[i][m] = xmrcrypto.NewIdentityPoint().ScalarBaseMult(s)
			if i == realIndex {
				xx = append(xx, s)
			}
		}
	}
	return pk, xx
}

func TestGenVerRoundTripEveryRealIndex(t *testing.T) {
	const n, cols = 5, 2
	for realIndex := 0; realIndex < n; realIndex++ {
		pk, xx := buildRing(t, n, cols, realIndex)
		sig, err := Gen([]byte("msg"), pk, xx, realIndex, nil)
		if err != nil {
			t.Fatalf("index %d: Gen: %v", realIndex, err)
		}
		if err := Ver([]byte("msg"), pk, sig); err != nil {
			t.Fatalf("index %d: Ver: %v", realIndex, err)
		}
	}
}

func TestVerRejectsWrongMessage(t *testing.T) {
	const n, cols = 4, 1
	pk, xx := buildRing(t, n, cols, 1)
	sig, err := Gen([]byte("msg"), pk, xx, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Ver([]byte("other"), pk, sig); err == nil {
		t.Fatal("Ver accepted a signature under the wrong message")
	}
}

func TestVerRejectsSwappedKeyImage(t *testing.T) {
	const n, cols = 4, 2
	pk, xx := buildRing(t, n, cols, 2)
	sig, err := Gen([]byte("msg"), pk, xx, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	sig.II[0], sig.II[1] = sig.II[1], sig.II[0]
	if err := Ver([]byte("msg"), pk, sig); err == nil {
		t.Fatal("Ver accepted a signature with swapped key images")
	}
}

func TestGenRejectsMultisig(t *testing.T) {
	pk, xx := buildRing(t, 2, 1, 0)
	if _, err := Gen([]byte("msg"), pk, xx, 0, &MultisigKLRki{}); err != ErrMultisigUnsupported {
		t.Fatalf("expected ErrMultisigUnsupported, got %v", err)
	}
}
