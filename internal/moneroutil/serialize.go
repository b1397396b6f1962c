package moneroutil

import "github.com/monero-agent/xmrsigner/internal/xmrcrypto"

// This file implements the deterministic serialization the protocol's HMAC
// tags and incremental hashes are computed over. It intentionally does not
// reproduce Monero's consensus binary wire format byte-for-byte — per
// scope, that format is "assumed available as a library" elsewhere. What
// matters here is that serialization is total, deterministic, and
// injective enough that two distinct (src, vin) pairs never collide — the
// property the HMAC discipline actually depends on.

// SerializeVin encodes a SourceEntry together with the Vin the Signer
// derived from it, for hmac_vini.
func SerializeVin(src *SourceEntry, vin *Vin) []byte {
	buf := make([]byte, 0, 128)
	buf = xmrcrypto.AppendVarint(buf, src.Amount)
	buf = xmrcrypto.AppendVarint(buf, uint64(len(src.Outputs)))
	for _, o := range src.Outputs {
		buf = xmrcrypto.AppendVarint(buf, o.GlobalIndex)
		buf = append(buf, o.Dest.Bytes()...)
		buf = append(buf, o.Mask.Bytes()...)
	}
	buf = xmrcrypto.AppendVarint(buf, uint64(src.RealOutput))
	buf = xmrcrypto.AppendVarint(buf, uint64(src.RealOutputInTxIndex))

	buf = xmrcrypto.AppendVarint(buf, vin.Amount)
	buf = append(buf, vin.KeyImage[:]...)
	buf = xmrcrypto.AppendVarint(buf, uint64(len(vin.KeyOffsets)))
	for _, off := range vin.KeyOffsets {
		buf = xmrcrypto.AppendVarint(buf, off)
	}
	return buf
}

// SerializeVout encodes a Destination together with the Vout the Signer
// built for it, for hmac_vouti.
func SerializeVout(dst *Destination, vout *Vout) []byte {
	buf := make([]byte, 0, 64)
	buf = xmrcrypto.AppendVarint(buf, dst.Amount)
	buf = append(buf, dst.Addr.SpendPub.Bytes()...)
	buf = append(buf, dst.Addr.ViewPub.Bytes()...)
	if dst.IsSubaddress {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = xmrcrypto.AppendVarint(buf, vout.Amount)
	buf = append(buf, vout.Target[:]...)
	return buf
}

// SerializePseudoOut encodes a pseudo-out commitment point for
// hmac_key_txin_comm tagging.
func SerializePseudoOut(p *xmrcrypto.Point) []byte { return p.Bytes() }

// SerializeRangeSig encodes a RangeSig for hmac_key_txout_asig tagging and
// for absorption into the PreMlsagHasher.
func SerializeRangeSig(rs *RangeSig) []byte {
	buf := make([]byte, 0, xmrcrypto.Atoms*(xmrcrypto.ScalarSize*2+xmrcrypto.PointSize)+xmrcrypto.ScalarSize)
	for i := 0; i < xmrcrypto.Atoms; i++ {
		buf = append(buf, rs.Sig.S0[i][:]...)
	}
	for i := 0; i < xmrcrypto.Atoms; i++ {
		buf = append(buf, rs.Sig.S1[i][:]...)
	}
	buf = append(buf, rs.Sig.Ee[:]...)
	for i := 0; i < xmrcrypto.Atoms; i++ {
		buf = append(buf, rs.Ci[i][:]...)
	}
	return buf
}

// SerializeTsxData deterministically encodes a TsxData request, the input
// to key_master's derivation (§4.2: key_master = Keccak(serialize(TsxData)
// || r || tsx_ctr)).
func SerializeTsxData(t *TsxData) []byte {
	buf := make([]byte, 0, 128)
	buf = xmrcrypto.AppendVarint(buf, uint64(t.Version))
	buf = xmrcrypto.AppendVarint(buf, uint64(len(t.PaymentID)))
	buf = append(buf, t.PaymentID...)
	buf = xmrcrypto.AppendVarint(buf, t.UnlockTime)
	buf = xmrcrypto.AppendVarint(buf, uint64(len(t.Outputs)))
	for _, d := range t.Outputs {
		buf = xmrcrypto.AppendVarint(buf, d.Amount)
		buf = append(buf, d.Addr.SpendPub.Bytes()...)
		buf = append(buf, d.Addr.ViewPub.Bytes()...)
		if d.IsSubaddress {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	if t.ChangeDts != nil {
		buf = append(buf, 1)
		buf = xmrcrypto.AppendVarint(buf, t.ChangeDts.Amount)
		buf = append(buf, t.ChangeDts.Addr.SpendPub.Bytes()...)
		buf = append(buf, t.ChangeDts.Addr.ViewPub.Bytes()...)
	} else {
		buf = append(buf, 0)
	}
	buf = xmrcrypto.AppendVarint(buf, uint64(t.SubaddrAccount))
	buf = xmrcrypto.AppendVarint(buf, uint64(len(t.SubaddrIndices)))
	for _, idx := range t.SubaddrIndices {
		buf = xmrcrypto.AppendVarint(buf, uint64(idx))
	}
	return buf
}

// RelativeOutputOffsets converts ascending absolute global indices into the
// relative (delta-encoded) form used on the wire, and back.
func RelativeOutputOffsets(abs []uint64) []uint64 {
	rel := make([]uint64, len(abs))
	var prev uint64
	for i, v := range abs {
		if i == 0 {
			rel[i] = v
		} else {
			rel[i] = v - prev
		}
		prev = v
	}
	return rel
}

// AbsoluteOutputOffsets is the inverse of RelativeOutputOffsets.
func AbsoluteOutputOffsets(rel []uint64) []uint64 {
	abs := make([]uint64, len(rel))
	var sum uint64
	for i, v := range rel {
		sum += v
		abs[i] = sum
	}
	return abs
}
