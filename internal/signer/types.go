// Package signer is the trusted process: it holds the wallet seed inside
// a walletcreds.Vault and answers the Host Agent's RPCs by driving one
// internal/txsession.Session per transaction. It never retains
// unauthenticated state — every re-ingested vin/vout/pseudo-out/range
// proof is re-verified under the session's HMAC keys before being
// absorbed, exactly as txsession enforces.
package signer

import (
	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// ServiceName is the gRPC service's fully-qualified name, used both in the
// hand-written ServiceDesc and by interceptors for logging/metrics.
const ServiceName = "xmrsigner.signer.v1.Signer"

// InitTransactionRequest starts a new session.
type InitTransactionRequest struct {
	TsxData moneroutil.TsxData
}

// InitTransactionResponse carries the new session handle and the
// transaction public key R.
type InitTransactionResponse struct {
	SessionID   string
	TxPublicKey *xmrcrypto.Point
}

// PrecomputeSubaddrRequest supplies the subaddress range to precompute.
type PrecomputeSubaddrRequest struct {
	SessionID    string
	Account      uint32
	MinorIndices []uint32
}

// PrecomputeSubaddrResponse is empty on success.
type PrecomputeSubaddrResponse struct{}

// SetInputCountRequest declares how many inputs will be ingested.
type SetInputCountRequest struct {
	SessionID string
	Count     int
}

// SetInputCountResponse is empty on success.
type SetInputCountResponse struct{}

// SetInputRequest ingests one ring + real-output secret.
type SetInputRequest struct {
	SessionID string
	Source    moneroutil.SourceEntry
}

// SetInputResponse returns the vin, its HMAC, and — for Simple RCT — the
// pseudo-output commitment, its HMAC, and the sealed per-input alpha.
type SetInputResponse struct {
	Vin        moneroutil.Vin
	HmacVin    [32]byte
	PseudoOut  *xmrcrypto.Point
	PseudoHmac [32]byte
	AlphaEnc   []byte
}

// InputsDoneRequest closes input ingestion.
type InputsDoneRequest struct{ SessionID string }

// InputsDoneResponse is empty on success.
type InputsDoneResponse struct{}

// InputsPermutationRequest supplies the key-image-descending permutation
// the Host Agent computed over the ingested inputs.
type InputsPermutationRequest struct {
	SessionID   string
	Permutation []int
}

// InputsPermutationResponse is empty on success.
type InputsPermutationResponse struct{}

// InputViniRequest replays one permuted-order vin for HMAC re-verification.
type InputViniRequest struct {
	SessionID string
	Source    moneroutil.SourceEntry
	Vin       moneroutil.Vin
	HmacVin   [32]byte
}

// InputViniResponse is empty on success.
type InputViniResponse struct{}

// InputViniDoneRequest closes the permuted-vin replay phase.
type InputViniDoneRequest struct{ SessionID string }

// InputViniDoneResponse is empty on success.
type InputViniDoneResponse struct{}

// SetOutputRequest ingests one destination.
type SetOutputRequest struct {
	SessionID string
	Dest      moneroutil.Destination
	IsChange  bool
}

// SetOutputResponse returns the vout, its HMAC, the range proof, and its HMAC.
type SetOutputResponse struct {
	Vout     moneroutil.Vout
	HmacVout [32]byte
	RangeSig moneroutil.RangeSig
	HmacRsig [32]byte
}

// AllOut1SetRequest closes output ingestion and fixes tx_prefix_hash.
type AllOut1SetRequest struct{ SessionID string }

// AllOut1SetResponse is empty on success.
type AllOut1SetResponse struct{}

// MlsagPseudoOutRequest replays one Simple RCT pseudo-output for
// re-verification and full-message absorption.
type MlsagPseudoOutRequest struct {
	SessionID  string
	PseudoOut  *xmrcrypto.Point
	HmacPseudo [32]byte
}

// MlsagPseudoOutResponse is empty on success.
type MlsagPseudoOutResponse struct{}

// MlsagRangeproofRequest replays one range proof for re-verification and
// full-message absorption.
type MlsagRangeproofRequest struct {
	SessionID string
	RangeSig  moneroutil.RangeSig
	HmacRsig  [32]byte
}

// MlsagRangeproofResponse is empty on success.
type MlsagRangeproofResponse struct{}

// SignInputRequest requests the MLSAG signature for one permuted-order
// input slot.
type SignInputRequest struct {
	SessionID  string
	Source     moneroutil.SourceEntry
	Vin        moneroutil.Vin
	HmacVin    [32]byte
	PseudoOut  *xmrcrypto.Point
	HmacPseudo [32]byte
	AlphaEnc   []byte
}

// SignInputResponse carries the produced MLSAG signature.
type SignInputResponse struct {
	Signature moneroutil.MgSig
}

// EndSessionRequest tears down a session's in-memory state, whether it
// finished normally or aborted.
type EndSessionRequest struct{ SessionID string }

// EndSessionResponse is empty on success.
type EndSessionResponse struct{}

// GetSessionStateRequest asks for a session's current phase, for
// observability (mirrors the teacher's GetSessionStatus RPC).
type GetSessionStateRequest struct{ SessionID string }

// GetSessionStateResponse reports the session's current phase name.
type GetSessionStateResponse struct {
	State string
}

// GetAssemblyRequest asks for the final-assembly material (tx_extra, fee,
// out_pk, ecdh_info) once output ingestion has closed.
type GetAssemblyRequest struct{ SessionID string }

// GetAssemblyResponse carries the final-assembly material.
type GetAssemblyResponse struct {
	Extra        []byte
	Fee          uint64
	OutPk        []moneroutil.OutPk
	EcdhInfo     []moneroutil.EcdhTuple
	TxPrefixHash [32]byte
}
