// Package moneroutil implements the Monero-specific helpers layered on top
// of internal/xmrcrypto: subaddress derivation, key images, payment id
// encryption, and the deterministic serialization the protocol's HMACs and
// incremental hashes are computed over.
package moneroutil

import "github.com/monero-agent/xmrsigner/internal/xmrcrypto"

// Address is a two-point Monero address: a spend and a view public key.
type Address struct {
	SpendPub *xmrcrypto.Point
	ViewPub  *xmrcrypto.Point
}

// SubaddressIndex identifies an address within a wallet's (major, minor)
// subaddress grid. (0,0) is the primary address.
type SubaddressIndex struct {
	Major uint32
	Minor uint32
}

// IsPrimary reports whether this is (0,0), the base address.
func (i SubaddressIndex) IsPrimary() bool { return i.Major == 0 && i.Minor == 0 }

// Destination is one payment output requested by TsxData.
type Destination struct {
	Amount       uint64
	Addr         Address
	IsSubaddress bool
}

// SourceOutput is one ring member of a SourceEntry: a global chain index
// paired with the output's one-time public key and the amount commitment
// mask the Signer will need if it turns out to be the real output.
type SourceOutput struct {
	GlobalIndex uint64
	Dest        *xmrcrypto.Point
	Mask        *xmrcrypto.Point
}

// SourceEntry is one input being spent: a decoy ring plus the index and
// secrets for the real output within that ring.
type SourceEntry struct {
	Amount                    uint64
	Outputs                   []SourceOutput
	RealOutput                int
	RealOutTxKey              *xmrcrypto.Point
	RealOutAdditionalTxKeys   []*xmrcrypto.Point
	RealOutputInTxIndex       uint32
	Mask                      *xmrcrypto.Scalar
	RCT                       bool
}

// TsxData is the transaction request handed to init_transaction.
type TsxData struct {
	Version          uint32
	PaymentID        []byte // 0 or 8 bytes
	UnlockTime       uint64
	Outputs          []Destination
	ChangeDts        *Destination
	SubaddrAccount   uint32
	SubaddrIndices   []uint32
}

// Credentials holds the wallet's long-term key material. The spend secret
// is expected to live inside a memguard enclave in internal/walletcreds;
// this struct is the plaintext shape used only while the enclave is open.
type Credentials struct {
	SpendSecret *xmrcrypto.Scalar
	SpendPublic *xmrcrypto.Point
	ViewSecret  *xmrcrypto.Scalar
	ViewPublic  *xmrcrypto.Point
}
