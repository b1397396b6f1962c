// Package ecdh implements Monero's RingCT ECDH amount/mask masking: blinding
// an output's Pedersen mask and cleartext amount behind a chain of
// Hs-derived shared secrets computed over the recipient's tx key derivation,
// recoverable only by the holder of the matching view key.
package ecdh

import (
	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// Tuple is the cleartext (mask, amount) pair attached to one RCT output
// before masking, or recovered after decoding.
type Tuple struct {
	Mask   *xmrcrypto.Scalar
	Amount *xmrcrypto.Scalar
}

// AmountKey computes amount_key = Hs(derivation || varint(outputIndex)),
// the per-output secret that seeds both this output's ECDH chain and its
// one-time destination key derivation.
func AmountKey(derivation *xmrcrypto.Point, outputIndex int) *xmrcrypto.Scalar {
	buf := xmrcrypto.AppendVarint(nil, uint64(outputIndex))
	return xmrcrypto.HashToScalar(derivation.Bytes(), buf)
}

func sharedSecrets(amountKey *xmrcrypto.Scalar) (shared1, shared2 *xmrcrypto.Scalar) {
	shared1 = xmrcrypto.HashToScalar(amountKey.Bytes())
	shared2 = xmrcrypto.HashToScalar(shared1.Bytes())
	return
}

// Encode masks x under amountKey: ecdh = {mask + shared1, amount + shared2}
// where shared1 = Hs(amountKey), shared2 = Hs(shared1).
func Encode(x Tuple, amountKey *xmrcrypto.Scalar) Tuple {
	shared1, shared2 := sharedSecrets(amountKey)
	return Tuple{
		Mask:   xmrcrypto.Add(x.Mask, shared1),
		Amount: xmrcrypto.Add(x.Amount, shared2),
	}
}

// Decode reverses Encode given the same amountKey.
func Decode(enc Tuple, amountKey *xmrcrypto.Scalar) Tuple {
	shared1, shared2 := sharedSecrets(amountKey)
	return Tuple{
		Mask:   xmrcrypto.Sub(enc.Mask, shared1),
		Amount: xmrcrypto.Sub(enc.Amount, shared2),
	}
}

// amountScalarToUint64 returns the low 8 bytes of a scalar's canonical
// little-endian encoding as a uint64: the compact on-wire amount form.
func amountScalarToUint64(s *xmrcrypto.Scalar) uint64 {
	b := s.Bytes()
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// uint64ToAmountScalar is the inverse of amountScalarToUint64: it embeds a
// cleartext uint64 amount into scalar form for the addition in Encode.
func uint64ToAmountScalar(v uint64) *xmrcrypto.Scalar {
	return xmrcrypto.ScalarFromUint64(v)
}

// EncodeWire masks (mask, amount) and packs the result into the compact
// on-wire EcdhTuple form used by moneroutil.RctSig's ecdhInfo.
func EncodeWire(mask *xmrcrypto.Scalar, amount uint64, amountKey *xmrcrypto.Scalar) moneroutil.EcdhTuple {
	enc := Encode(Tuple{Mask: mask, Amount: uint64ToAmountScalar(amount)}, amountKey)
	var wire moneroutil.EcdhTuple
	copy(wire.Mask[:], enc.Mask.Bytes())
	maskedAmount := amountScalarToUint64(enc.Amount)
	for i := 0; i < 8; i++ {
		wire.Amount[i] = byte(maskedAmount >> (8 * uint(i)))
	}
	return wire
}

// DecodeRCTAmount implements decode_rct: reverses EncodeWire, returning the
// cleartext mask and amount.
func DecodeRCTAmount(wire moneroutil.EcdhTuple, amountKey *xmrcrypto.Scalar) (mask *xmrcrypto.Scalar, amount uint64, err error) {
	encMask, err := xmrcrypto.ScalarFromCanonicalBytes(wire.Mask[:])
	if err != nil {
		return nil, 0, err
	}
	var maskedAmount uint64
	for i := 7; i >= 0; i-- {
		maskedAmount = maskedAmount<<8 | uint64(wire.Amount[i])
	}
	// The wire keeps only the low 8 bytes of amount+shared2, so the amount is
	// recovered by subtracting shared2's low 8 bytes modulo 2^64 (exact unless
	// amount+shared2 wrapped past the group order, a negligible case).
	shared1, shared2 := sharedSecrets(amountKey)
	return xmrcrypto.Sub(encMask, shared1), maskedAmount - amountScalarToUint64(shared2), nil
}
