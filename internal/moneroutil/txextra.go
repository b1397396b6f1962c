package moneroutil

import "github.com/monero-agent/xmrsigner/internal/xmrcrypto"

// tx_extra field tags, matching the reference's extra-field discriminators.
const (
	txExtraTagPubKey           = 0x01
	txExtraTagNonce            = 0x02
	txExtraTagAdditionalPubKey = 0x04
)

const txExtraNonceEncryptedPaymentIDTag = 0x01

// BuildTxExtra composes the tx.extra byte field: the transaction public key,
// optionally an encrypted-payment-id nonce, and optionally the additional
// per-destination public keys used when any subaddress output is mixed
// with others.
func BuildTxExtra(rPub *xmrcrypto.Point, encryptedPaymentID *[8]byte, additional []*xmrcrypto.Point) []byte {
	var extra []byte

	extra = append(extra, txExtraTagPubKey)
	extra = append(extra, rPub.Bytes()...)

	if encryptedPaymentID != nil {
		nonce := append([]byte{txExtraNonceEncryptedPaymentIDTag}, encryptedPaymentID[:]...)
		extra = append(extra, txExtraTagNonce)
		extra = xmrcrypto.AppendVarint(extra, uint64(len(nonce)))
		extra = append(extra, nonce...)
	}

	if len(additional) > 0 {
		extra = append(extra, txExtraTagAdditionalPubKey)
		extra = xmrcrypto.AppendVarint(extra, uint64(len(additional)))
		for _, k := range additional {
			extra = append(extra, k.Bytes()...)
		}
	}

	return extra
}
