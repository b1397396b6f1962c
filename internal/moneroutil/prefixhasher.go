package moneroutil

import (
	"hash"

	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// TxPrefixHasher incrementally hashes the non-signature transaction body
// (version, unlock_time, vin[], vout[], extra) to produce tx_prefix_hash,
// so the Signer never needs to buffer the full prefix in memory.
type TxPrefixHasher struct {
	h hash.Hash
}

func NewTxPrefixHasher() *TxPrefixHasher {
	return &TxPrefixHasher{h: xmrcrypto.NewKeccakHash()}
}

func (t *TxPrefixHasher) WriteVarint(v uint64) { t.h.Write(xmrcrypto.Varint(v)) }
func (t *TxPrefixHasher) WriteBytes(b []byte)  { t.h.Write(b) }

func (t *TxPrefixHasher) WriteVin(v Vin) {
	t.WriteVarint(v.Amount)
	t.WriteBytes(v.KeyImage[:])
	t.WriteVarint(uint64(len(v.KeyOffsets)))
	for _, off := range v.KeyOffsets {
		t.WriteVarint(off)
	}
}

func (t *TxPrefixHasher) WriteVout(v Vout) {
	t.WriteVarint(v.Amount)
	t.WriteBytes(v.Target[:])
}

func (t *TxPrefixHasher) Finalize() [32]byte {
	var out [32]byte
	copy(out[:], t.h.Sum(nil))
	return out
}

// PreMlsagHasher accumulates the RCT "full message" the MLSAG signatures
// are made over: it absorbs the tx_prefix_hash, the rct type and fee, the
// pseudo-outs, ecdhInfo, outPk, and finally every range signature, in the
// order §4.7/§4.8 specify.
type PreMlsagHasher struct {
	h hash.Hash
}

func NewPreMlsagHasher() *PreMlsagHasher {
	return &PreMlsagHasher{h: xmrcrypto.NewKeccakHash()}
}

// Init must be called exactly once, after tx_prefix_hash is known and
// before any pseudo-out/ecdh/outPk/range-sig is absorbed.
func (p *PreMlsagHasher) Init(txPrefixHash [32]byte, rctType byte, fee uint64, numPseudoOuts int) {
	p.h.Write(txPrefixHash[:])
	p.h.Write([]byte{rctType})
	p.h.Write(xmrcrypto.Varint(fee))
	p.h.Write(xmrcrypto.Varint(uint64(numPseudoOuts)))
}

func (p *PreMlsagHasher) AbsorbPseudoOut(po *xmrcrypto.Point) { p.h.Write(po.Bytes()) }

func (p *PreMlsagHasher) AbsorbEcdh(e EcdhTuple) {
	p.h.Write(e.Mask[:])
	p.h.Write(e.Amount[:])
}

func (p *PreMlsagHasher) AbsorbOutPk(o OutPk) { p.h.Write(o.Mask[:]) }

func (p *PreMlsagHasher) AbsorbRangeSig(rs *RangeSig) { p.h.Write(SerializeRangeSig(rs)) }

// Finalize returns full_message, the Keccak-256 digest of everything
// absorbed so far (not reduced to a scalar).
func (p *PreMlsagHasher) Finalize() [32]byte {
	var out [32]byte
	copy(out[:], p.h.Sum(nil))
	return out
}
