package moneroutil

import (
	"errors"
	"fmt"

	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// ErrNotMyOutput is returned when a SourceEntry's claimed real output does
// not actually belong to the wallet's known (sub)addresses.
var ErrNotMyOutput = errors.New("moneroutil: real output does not belong to any known subaddress")

// KeyImageResult is the (one-time secret key, key image, shared derivation)
// triple computed for one spent input.
type KeyImageResult struct {
	Secret     *xmrcrypto.Scalar
	Image      *xmrcrypto.Point
	Derivation *xmrcrypto.Point
	Index      SubaddressIndex
}

// GenerateKeyImageHelper reproduces the reference's compute_sec_keys /
// key-image derivation: given the wallet credentials, the recognized
// subaddress table, and the real output's one-time public key plus the
// transaction public key(s) that produced it, recovers the spend secret xi
// and the key image I = xi * Hp(out_key).
func GenerateKeyImageHelper(
	creds Credentials,
	subaddresses map[[xmrcrypto.PointSize]byte]SubaddressIndex,
	outKey *xmrcrypto.Point,
	realOutTxKey *xmrcrypto.Point,
	additionalTxKeys []*xmrcrypto.Point,
	realOutputInTxIndex uint32,
) (*KeyImageResult, error) {
	derivation := GenerateKeyDerivation(realOutTxKey, creds.ViewSecret)
	scalarStep1 := DeriveSecretKey(derivation, uint64(realOutputInTxIndex), creds.SpendSecret)

	// Determine which (sub)address this output was sent to by testing
	// whether out_key - Hs(derivation||idx)*G lands on a known spend key.
	candidateBase := DeriveSubaddressPublicKey(outKey, derivation, uint64(realOutputInTxIndex))
	var baseKey [xmrcrypto.PointSize]byte
	copy(baseKey[:], candidateBase.Bytes())
	subIdx, ok := subaddresses[baseKey]

	if !ok && len(additionalTxKeys) > int(realOutputInTxIndex) {
		// Retry against the per-destination additional derivation used
		// when the recipient is a subaddress mixed with other outputs.
		altDerivation := GenerateKeyDerivation(additionalTxKeys[realOutputInTxIndex], creds.ViewSecret)
		scalarStep1 = DeriveSecretKey(altDerivation, uint64(realOutputInTxIndex), creds.SpendSecret)
		candidateBase = DeriveSubaddressPublicKey(outKey, altDerivation, uint64(realOutputInTxIndex))
		copy(baseKey[:], candidateBase.Bytes())
		subIdx, ok = subaddresses[baseKey]
		derivation = altDerivation
	}
	if !ok {
		return nil, fmt.Errorf("moneroutil: %w", ErrNotMyOutput)
	}

	xi := scalarStep1
	if !subIdx.IsPrimary() {
		m := subaddressScalar(creds.ViewSecret, subIdx)
		xi = xmrcrypto.Add(scalarStep1, m)
	}

	gotPub := xmrcrypto.NewIdentityPoint().ScalarBaseMult(xi)
	if !gotPub.Equal(outKey) {
		return nil, fmt.Errorf("moneroutil: recovered secret does not reproduce out_key")
	}

	keyImage := GenerateKeyImage(xi, outKey)

	return &KeyImageResult{
		Secret:     xi,
		Image:      keyImage,
		Derivation: derivation,
		Index:      subIdx,
	}, nil
}

// GenerateKeyImage computes I = x * Hp(P) for one-time secret x and its
// public key P = x*G.
func GenerateKeyImage(x *xmrcrypto.Scalar, pub *xmrcrypto.Point) *xmrcrypto.Point {
	hp := xmrcrypto.HashToEC(pub.Bytes())
	return xmrcrypto.NewIdentityPoint().ScalarMult(x, hp)
}
