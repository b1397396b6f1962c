package txsession

import (
	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// keySchedule holds the per-session root and derived HMAC/AEAD keys
// (§4.2). Indices passed to the per-index derivations are always the
// pre-permutation ingestion index for txin/txin-comm/txin-alpha, and the
// final output index for txout/txout-asig — callers are responsible for
// passing the right index, this type does not re-derive it.
type keySchedule struct {
	master [32]byte
	hmac   [32]byte
	enc    [32]byte
}

func newKeySchedule(tsxData *moneroutil.TsxData, r *xmrcrypto.Scalar, tsxCtr uint64) *keySchedule {
	ctrBuf := xmrcrypto.AppendVarint(nil, tsxCtr)
	master := xmrcrypto.Keccak256(moneroutil.SerializeTsxData(tsxData), r.Bytes(), ctrBuf)
	hmac := xmrcrypto.Keccak256x2([]byte("hmac"), master[:])
	enc := xmrcrypto.Keccak256x2([]byte("enc"), master[:])
	return &keySchedule{master: master, hmac: hmac, enc: enc}
}

func (k *keySchedule) hmacKeyTxin(i int) [32]byte {
	return xmrcrypto.Keccak256x2(k.hmac[:], []byte("txin"), xmrcrypto.Varint(uint64(i)))
}

func (k *keySchedule) hmacKeyTxinComm(i int) [32]byte {
	return xmrcrypto.Keccak256x2(k.hmac[:], []byte("txin-comm"), xmrcrypto.Varint(uint64(i)))
}

func (k *keySchedule) hmacKeyTxout(i int) [32]byte {
	return xmrcrypto.Keccak256x2(k.hmac[:], []byte("txout"), xmrcrypto.Varint(uint64(i)))
}

func (k *keySchedule) hmacKeyTxoutAsig(i int) [32]byte {
	return xmrcrypto.Keccak256x2(k.hmac[:], []byte("txout-asig"), xmrcrypto.Varint(uint64(i)))
}

func (k *keySchedule) encKeyTxinAlpha(i int) [32]byte {
	return xmrcrypto.Keccak256x2(k.enc[:], []byte("txin-alpha"), xmrcrypto.Varint(uint64(i)))
}
