package moneroutil

import "github.com/monero-agent/xmrsigner/internal/xmrcrypto"

// GenerateKeyDerivation computes 8*(secret*pub), the shared secret point
// both sides of an ECDH exchange compute: the sender from (r, A) and the
// recipient from (R, a).
func GenerateKeyDerivation(pub *xmrcrypto.Point, secret *xmrcrypto.Scalar) *xmrcrypto.Point {
	shared := xmrcrypto.NewIdentityPoint().ScalarMult(secret, pub)
	return shared.MulByCofactor()
}

// DerivationToScalar computes Hs(derivation || varint(index)).
func DerivationToScalar(derivation *xmrcrypto.Point, index uint64) *xmrcrypto.Scalar {
	buf := xmrcrypto.AppendVarint(append([]byte(nil), derivation.Bytes()...), index)
	return xmrcrypto.HashToScalar(buf)
}

// DerivePublicKey computes base + Hs(derivation||index)*G, the recipient's
// one-time output public key.
func DerivePublicKey(derivation *xmrcrypto.Point, index uint64, base *xmrcrypto.Point) *xmrcrypto.Point {
	hs := DerivationToScalar(derivation, index)
	return xmrcrypto.NewIdentityPoint().Add(base, xmrcrypto.NewIdentityPoint().ScalarBaseMult(hs))
}

// DeriveSecretKey computes base + Hs(derivation||index), the recipient's
// one-time output secret key (when base is the spend secret).
func DeriveSecretKey(derivation *xmrcrypto.Point, index uint64, base *xmrcrypto.Scalar) *xmrcrypto.Scalar {
	hs := DerivationToScalar(derivation, index)
	return xmrcrypto.Add(base, hs)
}

// DeriveSubaddressPublicKey inverts DerivePublicKey: given a candidate
// output key, the shared derivation, and the output's index, returns the
// base spend key the output would have needed to belong to — used to test
// "is this output mine" by comparing against known subaddress spend keys.
//
// Concrete worked example (spec.md Testable Properties #1):
// out_key=f4ef..., derivation=259e..., index=5 => base=5a10...
func DeriveSubaddressPublicKey(outKey, derivation *xmrcrypto.Point, index uint64) *xmrcrypto.Point {
	hs := DerivationToScalar(derivation, index)
	hsG := xmrcrypto.NewIdentityPoint().ScalarBaseMult(hs)
	return xmrcrypto.NewIdentityPoint().Sub(outKey, hsG)
}

var subaddrDomain = []byte("SubAddr\x00")

// subaddressScalar computes m = Hs("SubAddr\0" || view_secret || major || minor).
func subaddressScalar(viewSecret *xmrcrypto.Scalar, idx SubaddressIndex) *xmrcrypto.Scalar {
	buf := append([]byte(nil), subaddrDomain...)
	buf = append(buf, viewSecret.Bytes()...)
	buf = xmrcrypto.AppendVarint(buf, uint64(idx.Major))
	buf = xmrcrypto.AppendVarint(buf, uint64(idx.Minor))
	return xmrcrypto.HashToScalar(buf)
}

// SubaddressSpendPublic computes D_spend = spend_pub + m*G for (major,minor).
// For the primary address (0,0) this returns spend_pub unchanged, matching
// the convention that the primary address is the base case of the grid.
func SubaddressSpendPublic(spendPub *xmrcrypto.Point, viewSecret *xmrcrypto.Scalar, idx SubaddressIndex) *xmrcrypto.Point {
	if idx.IsPrimary() {
		return spendPub
	}
	m := subaddressScalar(viewSecret, idx)
	return xmrcrypto.NewIdentityPoint().Add(spendPub, xmrcrypto.NewIdentityPoint().ScalarBaseMult(m))
}

// SubaddressViewPublic computes D_view = view_secret * D_spend.
func SubaddressViewPublic(spendSub *xmrcrypto.Point, viewSecret *xmrcrypto.Scalar) *xmrcrypto.Point {
	return xmrcrypto.NewIdentityPoint().ScalarMult(viewSecret, spendSub)
}

// PrecomputeSubaddresses builds the recognized-destination lookup table for
// an (account, indices) range, keyed by the subaddress's encoded spend
// public key — canonicalized via encoding before insertion per the design
// note that different internal point representations of the same curve
// point must not be used as map keys.
func PrecomputeSubaddresses(creds Credentials, account uint32, minorIndices []uint32) map[[xmrcrypto.PointSize]byte]SubaddressIndex {
	out := make(map[[xmrcrypto.PointSize]byte]SubaddressIndex, len(minorIndices)+1)
	// The primary address is always recognized.
	var primaryKey [xmrcrypto.PointSize]byte
	copy(primaryKey[:], creds.SpendPublic.Bytes())
	out[primaryKey] = SubaddressIndex{0, 0}

	for _, minor := range minorIndices {
		idx := SubaddressIndex{Major: account, Minor: minor}
		if idx.IsPrimary() {
			continue
		}
		spendSub := SubaddressSpendPublic(creds.SpendPublic, creds.ViewSecret, idx)
		var key [xmrcrypto.PointSize]byte
		copy(key[:], spendSub.Bytes())
		out[key] = idx
	}
	return out
}
