package moneroutil

import "github.com/monero-agent/xmrsigner/internal/xmrcrypto"

// Vin is the serialized form of a spent input (TxinToKey).
type Vin struct {
	Amount     uint64
	KeyImage   [xmrcrypto.PointSize]byte
	KeyOffsets []uint64 // relative offsets, ascending
}

// Vout is one transaction output (TxOut); Amount is 0 pre-reveal for RCT.
type Vout struct {
	Amount uint64
	Target [xmrcrypto.PointSize]byte
}

// EcdhTuple is the masked (mask, amount) pair attached to an RCT output.
type EcdhTuple struct {
	Mask   [xmrcrypto.ScalarSize]byte
	Amount [8]byte // compact on-wire amount form
}

// OutPk is the output's one-time destination key plus its amount commitment.
type OutPk struct {
	Dest [xmrcrypto.PointSize]byte
	Mask [xmrcrypto.PointSize]byte
}

// BoroSig is a Borromean range proof over Atoms bit commitments.
type BoroSig struct {
	S0 [xmrcrypto.Atoms][xmrcrypto.ScalarSize]byte
	S1 [xmrcrypto.Atoms][xmrcrypto.ScalarSize]byte
	Ee [xmrcrypto.ScalarSize]byte
}

// RangeSig pairs a BoroSig with its per-bit commitments Ci.
type RangeSig struct {
	Sig BoroSig
	Ci  [xmrcrypto.Atoms][xmrcrypto.PointSize]byte
}

// MgSig is one MLSAG signature. SS is indexed [ring row][key layer]; II
// holds one key image per key layer (length 2 for Simple RCT, inputs+1 for
// Full).
type MgSig struct {
	SS [][][xmrcrypto.ScalarSize]byte
	CC [xmrcrypto.ScalarSize]byte
	II [][xmrcrypto.PointSize]byte
}
