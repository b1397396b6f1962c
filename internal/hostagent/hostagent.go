// Package hostagent is the untrusted orchestrator side of a transaction
// signing: it drives a signer.Client through the full RPC sequence for one
// transaction, computes the key-image-descending input permutation, and
// assembles the final Transaction from the Signer's per-step responses plus
// the assembly material GetAssembly returns once output ingestion closes.
// It never sees the wallet's secret keys — everything it holds is public
// transaction data and HMAC-authenticated Signer responses.
package hostagent

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/signer"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

// RctSignatures mirrors Monero's rct_signatures: the RingCT-specific part of
// a transaction. Message carries the fixed tx_prefix_hash; the MLSAGs are
// signed over the separate full message that also covers the RingCT data.
type RctSignatures struct {
	Type       uint8
	TxnFee     uint64
	Message    [32]byte
	PseudoOuts []*xmrcrypto.Point
	EcdhInfo   []moneroutil.EcdhTuple
	OutPk      []moneroutil.OutPk
	RangeSigs  []moneroutil.RangeSig
	MGs        []moneroutil.MgSig
}

// rctTypeFull and rctTypeSimple mirror Monero's rct_type_t values for the
// two variants this signer produces.
const (
	rctTypeFull   uint8 = 1
	rctTypeSimple uint8 = 2
)

// Transaction is the fully assembled, ready-to-serialize Monero transaction:
// the prefix (version, unlock_time, vin, vout, extra) plus its RingCT
// signature data.
type Transaction struct {
	Version    uint32
	UnlockTime uint64
	Vin        []moneroutil.Vin
	Vout       []moneroutil.Vout
	Extra      []byte
	RctSigs    RctSignatures
}

// ingested is everything the Host learned about one input from SetInput,
// kept in original ingestion order until the permutation is known.
type ingested struct {
	src        moneroutil.SourceEntry
	vin        moneroutil.Vin
	hmacVin    [32]byte
	pseudoOut  *xmrcrypto.Point
	pseudoHmac [32]byte
	alphaEnc   []byte
}

// Orchestrate drives client through init_transaction .. sign_input for one
// transaction built from tsxData and sources, following the sequence this
// system's Host orchestration defines: ingest inputs, close and permute them
// by key image descending, replay the permuted vins for re-authentication,
// ingest outputs, replay pseudo-outs and range proofs for full-message
// absorption, then collect one MLSAG signature per permuted input slot.
// The returned Transaction is ready for consensus serialization.
func Orchestrate(
	ctx context.Context,
	client *signer.Client,
	tsxData moneroutil.TsxData,
	sources []moneroutil.SourceEntry,
	account uint32,
	minorIndices []uint32,
) (*Transaction, error) {
	initResp, err := client.InitTransaction(ctx, &signer.InitTransactionRequest{TsxData: tsxData})
	if err != nil {
		return nil, fmt.Errorf("hostagent: init_transaction: %w", err)
	}
	sessionID := initResp.SessionID

	if _, err := client.PrecomputeSubaddr(ctx, &signer.PrecomputeSubaddrRequest{
		SessionID: sessionID, Account: account, MinorIndices: minorIndices,
	}); err != nil {
		return nil, fmt.Errorf("hostagent: precompute_subaddr: %w", err)
	}

	if _, err := client.SetInputCount(ctx, &signer.SetInputCountRequest{
		SessionID: sessionID, Count: len(sources),
	}); err != nil {
		return nil, fmt.Errorf("hostagent: set_input_count: %w", err)
	}

	ins := make([]ingested, len(sources))
	for i, src := range sources {
		resp, err := client.SetInput(ctx, &signer.SetInputRequest{SessionID: sessionID, Source: src})
		if err != nil {
			return nil, fmt.Errorf("hostagent: set_input[%d]: %w", i, err)
		}
		ins[i] = ingested{
			src: src, vin: resp.Vin, hmacVin: resp.HmacVin,
			pseudoOut: resp.PseudoOut, pseudoHmac: resp.PseudoHmac, alphaEnc: resp.AlphaEnc,
		}
	}

	if _, err := client.InputsDone(ctx, &signer.InputsDoneRequest{SessionID: sessionID}); err != nil {
		return nil, fmt.Errorf("hostagent: inputs_done: %w", err)
	}

	perm := argsortByKeyImageDescending(ins)
	if _, err := client.InputsPermutation(ctx, &signer.InputsPermutationRequest{
		SessionID: sessionID, Permutation: perm,
	}); err != nil {
		return nil, fmt.Errorf("hostagent: inputs_permutation: %w", err)
	}

	permutedVin := make([]moneroutil.Vin, len(perm))
	for p, origIdx := range perm {
		in := ins[origIdx]
		if _, err := client.InputVini(ctx, &signer.InputViniRequest{
			SessionID: sessionID, Source: in.src, Vin: in.vin, HmacVin: in.hmacVin,
		}); err != nil {
			return nil, fmt.Errorf("hostagent: input_vini[%d]: %w", p, err)
		}
		permutedVin[p] = in.vin
	}
	if _, err := client.InputViniDone(ctx, &signer.InputViniDoneRequest{SessionID: sessionID}); err != nil {
		return nil, fmt.Errorf("hostagent: input_vini_done: %w", err)
	}

	dests := append([]moneroutil.Destination(nil), tsxData.Outputs...)
	if tsxData.ChangeDts != nil {
		dests = append(dests, *tsxData.ChangeDts)
	}

	vout := make([]moneroutil.Vout, len(dests))
	var rangeSigs []moneroutil.RangeSig
	var hmacRsigs [][32]byte
	for i, d := range dests {
		isChange := tsxData.ChangeDts != nil && i == len(dests)-1
		resp, err := client.SetOutput(ctx, &signer.SetOutputRequest{SessionID: sessionID, Dest: d, IsChange: isChange})
		if err != nil {
			return nil, fmt.Errorf("hostagent: set_output[%d]: %w", i, err)
		}
		vout[i] = resp.Vout
		rangeSigs = append(rangeSigs, resp.RangeSig)
		hmacRsigs = append(hmacRsigs, resp.HmacRsig)
	}

	if _, err := client.AllOut1Set(ctx, &signer.AllOut1SetRequest{SessionID: sessionID}); err != nil {
		return nil, fmt.Errorf("hostagent: all_out1_set: %w", err)
	}

	simple := len(sources) > 1
	if simple {
		for p, origIdx := range perm {
			in := ins[origIdx]
			if _, err := client.MlsagPseudoOut(ctx, &signer.MlsagPseudoOutRequest{
				SessionID: sessionID, PseudoOut: in.pseudoOut, HmacPseudo: in.pseudoHmac,
			}); err != nil {
				return nil, fmt.Errorf("hostagent: mlsag_pseudo_out[%d]: %w", p, err)
			}
		}
	}
	for i, rsig := range rangeSigs {
		if _, err := client.MlsagRangeproof(ctx, &signer.MlsagRangeproofRequest{
			SessionID: sessionID, RangeSig: rsig, HmacRsig: hmacRsigs[i],
		}); err != nil {
			return nil, fmt.Errorf("hostagent: mlsag_rangeproof[%d]: %w", i, err)
		}
	}

	mgs := make([]moneroutil.MgSig, len(perm))
	for p, origIdx := range perm {
		in := ins[origIdx]
		resp, err := client.SignInput(ctx, &signer.SignInputRequest{
			SessionID: sessionID, Source: in.src, Vin: in.vin, HmacVin: in.hmacVin,
			PseudoOut: in.pseudoOut, HmacPseudo: in.pseudoHmac, AlphaEnc: in.alphaEnc,
		})
		if err != nil {
			return nil, fmt.Errorf("hostagent: sign_input[%d]: %w", p, err)
		}
		mgs[p] = resp.Signature
	}

	asm, err := client.GetAssembly(ctx, &signer.GetAssemblyRequest{SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("hostagent: get_assembly: %w", err)
	}

	if _, err := client.EndSession(ctx, &signer.EndSessionRequest{SessionID: sessionID}); err != nil {
		return nil, fmt.Errorf("hostagent: end_session: %w", err)
	}

	rctType := rctTypeFull
	var pseudoOuts []*xmrcrypto.Point
	if simple {
		rctType = rctTypeSimple
		pseudoOuts = make([]*xmrcrypto.Point, len(perm))
		for p, origIdx := range perm {
			pseudoOuts[p] = ins[origIdx].pseudoOut
		}
	}

	return &Transaction{
		Version:    tsxData.Version,
		UnlockTime: tsxData.UnlockTime,
		Vin:        permutedVin,
		Vout:       vout,
		Extra:      asm.Extra,
		RctSigs: RctSignatures{
			Type:       rctType,
			TxnFee:     asm.Fee,
			Message:    asm.TxPrefixHash,
			PseudoOuts: pseudoOuts,
			EcdhInfo:   asm.EcdhInfo,
			OutPk:      asm.OutPk,
			RangeSigs:  rangeSigs,
			MGs:        mgs,
		},
	}, nil
}

// argsortByKeyImageDescending returns the permutation that sorts ins by
// key image lexicographically descending, the same sort the reference
// implementation performs before replaying input_vini.
func argsortByKeyImageDescending(ins []ingested) []int {
	perm := make([]int, len(ins))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return bytes.Compare(ins[perm[a]].vin.KeyImage[:], ins[perm[b]].vin.KeyImage[:]) > 0
	})
	return perm
}
