package moneroutil

import "github.com/monero-agent/xmrsigner/internal/xmrcrypto"

const encryptedPaymentIDSize = 8

// paymentIDEncryptTag is the domain-separation suffix byte the reference
// appends before hashing the shared derivation for payment-id encryption.
const paymentIDEncryptTag = 0x8b

// EncryptPaymentID XORs an 8-byte encrypted payment id with
// Keccak(derivation || 0x8b)[:8], where derivation = 8*r*view_pub. The
// operation is its own inverse.
func EncryptPaymentID(paymentID [encryptedPaymentIDSize]byte, viewPub *xmrcrypto.Point, r *xmrcrypto.Scalar) [encryptedPaymentIDSize]byte {
	derivation := GenerateKeyDerivation(viewPub, r)
	buf := append(append([]byte(nil), derivation.Bytes()...), paymentIDEncryptTag)
	mask := xmrcrypto.Keccak256(buf)

	var out [encryptedPaymentIDSize]byte
	for i := range out {
		out[i] = paymentID[i] ^ mask[i]
	}
	return out
}

// DecryptPaymentID is identical to EncryptPaymentID (XOR is self-inverse);
// named separately for call-site clarity on the Host side.
func DecryptPaymentID(encrypted [encryptedPaymentIDSize]byte, viewPub *xmrcrypto.Point, r *xmrcrypto.Scalar) [encryptedPaymentIDSize]byte {
	return EncryptPaymentID(encrypted, viewPub, r)
}
