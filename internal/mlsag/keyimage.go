package mlsag

import (
	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// GenerateRingSignature produces the classic single-column ring signature
// used to export a key image proof: a 1-of-N ring over plain public keys,
// which is exactly Gen/Ver specialized to a single key column.
func GenerateRingSignature(message []byte, pubs []*xmrcrypto.Point, secret *xmrcrypto.Scalar, index int) (*moneroutil.MgSig, error) {
	pk := make([][]*xmrcrypto.Point, len(pubs))
	for i, p := range pubs {
		pk[i] = []*xmrcrypto.Point{p}
	}
	sig, err := Gen(message, pk, []*xmrcrypto.Scalar{secret}, index, nil)
	if err != nil {
		return nil, err
	}
	return toWire(sig), nil
}

// CheckRingSignature verifies a GenerateRingSignature proof.
func CheckRingSignature(message []byte, pubs []*xmrcrypto.Point, wire *moneroutil.MgSig) error {
	pk := make([][]*xmrcrypto.Point, len(pubs))
	for i, p := range pubs {
		pk[i] = []*xmrcrypto.Point{p}
	}
	sig, err := fromWire(wire)
	if err != nil {
		return err
	}
	return Ver(message, pk, sig)
}

// ExportKeyImage derives the key image for a one-time output key and its
// owning secret, for wallet key-image export flows outside of signing.
func ExportKeyImage(secret *xmrcrypto.Scalar, outKey *xmrcrypto.Point) *xmrcrypto.Point {
	hp := xmrcrypto.HashToEC(outKey.Bytes())
	return xmrcrypto.NewIdentityPoint().ScalarMult(secret, hp)
}
