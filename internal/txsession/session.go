// Package txsession implements the Signer's side of the multi-phase
// HMAC-authenticated transaction protocol: the TState machine, the
// key schedule, and every ingestion/output/signing operation of §4.
package txsession

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/monero-agent/xmrsigner/internal/ecdh"
	"github.com/monero-agent/xmrsigner/internal/mlsag"
	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/rangeproof"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

const txVersion = 2

// Option configures a Session at construction time.
type Option func(*Session)

// WithInMemory toggles the in-memory (buffered) variant of the state
// machine, which skips the streaming permutation-replay round trip
// (§4.5). Defaults to false: the streaming path is the only one
// reachable in the reference (in_memory() == (input_count == 0), which
// never holds for a real transaction), but the toggle is preserved as a
// config knob per spec.md's open question.
func WithInMemory(v bool) Option { return func(s *Session) { s.inMemory = v } }

// WithStrict toggles the debug self-consistency assertions (range proof
// and MLSAG self-verification after producing them). Defaults to true.
func WithStrict(v bool) Option { return func(s *Session) { s.strict = v } }

// WithRand overrides the CSPRNG used for session-level secrets (r, and
// Simple RCT per-input alphas). Defaults to crypto/rand.Reader. Tests
// that need determinism should supply a seeded reader here rather than
// relying on process-global entropy.
func WithRand(rng io.Reader) Option { return func(s *Session) { s.rng = rng } }

type outputRecord struct {
	dest      moneroutil.Destination
	isChange  bool
	secretKey *xmrcrypto.Scalar // amount_key
	amount    uint64
	mask      *xmrcrypto.Scalar
	pk        moneroutil.OutPk
	ecdhTuple moneroutil.EcdhTuple
	rangeSig  *moneroutil.RangeSig
}

type inputRecord struct {
	src       *moneroutil.SourceEntry
	secret    *xmrcrypto.Scalar // xi
	vin       moneroutil.Vin
	alpha     *xmrcrypto.Scalar  // Simple RCT only
	pseudoOut *xmrcrypto.Point   // Simple RCT only
}

// Session is one transaction's Signer-side state, per the Data Model
// section. It is not safe for concurrent use: the protocol is strictly
// sequential by design (§5).
type Session struct {
	phase    *phase
	inMemory bool
	strict   bool
	rng      io.Reader

	creds        moneroutil.Credentials
	subaddresses map[[xmrcrypto.PointSize]byte]moneroutil.SubaddressIndex

	tsxCtr  uint64
	tsxData *moneroutil.TsxData
	keys    *keySchedule

	r    *xmrcrypto.Scalar
	rPub *xmrcrypto.Point

	needAdditional         bool
	additionalTxKeys       []*xmrcrypto.Scalar
	additionalTxPublicKeys []*xmrcrypto.Point

	inputCount          int
	inputs              []*inputRecord // ingestion order
	summaryInputsMoney  uint64
	sumPoutsAlphas      *xmrcrypto.Scalar
	sourcePermutation   []int // slot -> ingestion index
	permutedVins        []moneroutil.Vin

	destCount     int
	outputs       []*outputRecord // ingestion order == final output index
	sumOut        *xmrcrypto.Scalar

	txPrefixHasher *moneroutil.TxPrefixHasher
	txPrefixHash   [32]byte

	fullMessageHasher *moneroutil.PreMlsagHasher
	fullMessage       [32]byte
	pseudoOutsAbsorbed int
	rangeProofsAbsorbed int

	fee   uint64
	extra []byte

	signed []*moneroutil.MgSig
}

// NewSession constructs a Signer session for one transaction. tsxCtr is
// the Signer's monotonic session counter (internal/noncestore), mixed
// into key_master so no two sessions ever share a key schedule.
func NewSession(creds moneroutil.Credentials, tsxCtr uint64, opts ...Option) *Session {
	s := &Session{
		phase:          newPhase(),
		strict:         true,
		rng:            rand.Reader,
		creds:          creds,
		tsxCtr:         tsxCtr,
		sumPoutsAlphas: xmrcrypto.ZeroScalar(),
		sumOut:         xmrcrypto.ZeroScalar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's current phase, for observability.
func (s *Session) State() TState { return s.phase.current() }

func (s *Session) fail(kind error, format string, args ...any) error {
	s.phase.abort()
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// InitTransaction implements init_transaction (§4.3): transitions 0→1,
// generates the transaction keypair, classifies destinations, and
// derives the key schedule.
func (s *Session) InitTransaction(tsxData *moneroutil.TsxData) (*xmrcrypto.Point, error) {
	if err := s.phase.transition("init_tsx", StateInit, StateStart); err != nil {
		return nil, err
	}
	if len(tsxData.Outputs) == 0 {
		return nil, s.fail(ErrShape, "zero destinations")
	}

	r, err := xmrcrypto.RandomScalarFrom(s.rng)
	if err != nil {
		return nil, s.fail(ErrCryptoContract, "generate r: %v", err)
	}
	rPub := xmrcrypto.NewIdentityPoint().ScalarBaseMult(r)

	numStd, numSub := 0, 0
	var onlySubDest *moneroutil.Destination
	encryptedPidDests := 0
	for i := range tsxData.Outputs {
		d := &tsxData.Outputs[i]
		if d.IsSubaddress {
			numSub++
			onlySubDest = d
		} else {
			numStd++
		}
	}
	if len(tsxData.PaymentID) > 0 {
		encryptedPidDests = len(tsxData.Outputs)
		if encryptedPidDests != 1 {
			return nil, s.fail(ErrMultipleEncryptedPid, "payment id requires exactly one destination, got %d", len(tsxData.Outputs))
		}
	}

	if numStd == 0 && numSub == 1 {
		rPub = xmrcrypto.NewIdentityPoint().ScalarMult(r, onlySubDest.Addr.SpendPub)
	}

	needAdditional := numSub > 0 && (numStd > 0 || numSub > 1)
	var additionalKeys []*xmrcrypto.Scalar
	if needAdditional {
		additionalKeys = make([]*xmrcrypto.Scalar, len(tsxData.Outputs))
		for i := range tsxData.Outputs {
			k, err := xmrcrypto.RandomScalarFrom(s.rng)
			if err != nil {
				return nil, s.fail(ErrCryptoContract, "generate additional tx key: %v", err)
			}
			additionalKeys[i] = k
		}
	}

	s.r = r
	s.rPub = rPub
	s.needAdditional = needAdditional
	s.additionalTxKeys = additionalKeys
	s.tsxData = tsxData
	s.keys = newKeySchedule(tsxData, r, s.tsxCtr)
	s.destCount = len(tsxData.Outputs)
	if tsxData.ChangeDts != nil {
		s.destCount++
	}

	_ = encryptedPidDests
	return rPub, nil
}

// PrecomputeSubaddr implements precompute_subaddr (§4.10 step 2):
// transition 1→2.
func (s *Session) PrecomputeSubaddr(account uint32, minorIndices []uint32) error {
	if err := s.phase.transition("precomp", StatePrecomp, StateInit); err != nil {
		return err
	}
	s.subaddresses = moneroutil.PrecomputeSubaddresses(s.creds, account, minorIndices)
	return nil
}

// SetInputCount implements set_input_count: transition 2→3.
func (s *Session) SetInputCount(n int) error {
	if err := s.phase.transition("inp_cnt", StateInputCount, StatePrecomp); err != nil {
		return err
	}
	if n <= 0 {
		return s.fail(ErrShape, "zero inputs")
	}
	s.inputCount = n
	s.inputs = make([]*inputRecord, 0, n)
	return nil
}

// isSimpleRCT reports whether this session uses Simple RCT (>1 input) as
// opposed to Full RCT (exactly 1 input).
func (s *Session) isSimpleRCT() bool { return s.inputCount > 1 }

// SetInput implements set_input (§4.4): transition 3|4 → 4.
func (s *Session) SetInput(src *moneroutil.SourceEntry) (vin moneroutil.Vin, hmacVin [32]byte, pseudoOut *xmrcrypto.Point, pseudoHmac [32]byte, alphaEnc []byte, err error) {
	if err = s.phase.transition("input", StateInput, StateInputCount, StateInput); err != nil {
		return
	}
	if src.RealOutput < 0 || src.RealOutput >= len(src.Outputs) {
		err = s.fail(ErrAccounting, "real_output %d out of range [0,%d)", src.RealOutput, len(src.Outputs))
		return
	}
	if len(s.inputs) >= s.inputCount {
		err = s.fail(ErrAccounting, "more inputs ingested than declared (%d)", s.inputCount)
		return
	}

	kir, kerr := moneroutil.GenerateKeyImageHelper(s.creds, s.subaddresses, src.Outputs[src.RealOutput].Dest, src.RealOutTxKey, src.RealOutAdditionalTxKeys, src.RealOutputInTxIndex)
	if kerr != nil {
		err = s.fail(ErrCryptoContract, "key image helper: %v", kerr)
		return
	}

	s.summaryInputsMoney += src.Amount

	i := len(s.inputs)
	amount := src.Amount
	if src.RCT {
		amount = 0
	}
	vin = moneroutil.Vin{
		Amount:   amount,
		KeyImage: [xmrcrypto.PointSize]byte{},
		KeyOffsets: moneroutil.RelativeOutputOffsets(func() []uint64 {
			idx := make([]uint64, len(src.Outputs))
			for j, o := range src.Outputs {
				idx[j] = o.GlobalIndex
			}
			return idx
		}()),
	}
	copy(vin.KeyImage[:], kir.Image.Bytes())

	rec := &inputRecord{src: src, secret: kir.Secret, vin: vin}

	hmacKey := s.keys.hmacKeyTxin(i)
	hmacVin = xmrcrypto.HMACKeccak(hmacKey[:], moneroutil.SerializeVin(src, &vin))

	if s.isSimpleRCT() {
		alpha, aerr := xmrcrypto.RandomScalarFrom(s.rng)
		if aerr != nil {
			err = s.fail(ErrCryptoContract, "generate alpha: %v", aerr)
			return
		}
		po := xmrcrypto.PedersenCommit(alpha, xmrcrypto.ScalarFromUint64(src.Amount))
		s.sumPoutsAlphas = xmrcrypto.Add(s.sumPoutsAlphas, alpha)

		rec.alpha = alpha
		rec.pseudoOut = po

		encKey := s.keys.encKeyTxinAlpha(i)
		enc, eerr := xmrcrypto.SealScalar(encKey, alpha.Bytes())
		if eerr != nil {
			err = s.fail(ErrCryptoContract, "seal alpha: %v", eerr)
			return
		}
		commKey := s.keys.hmacKeyTxinComm(i)
		ph := xmrcrypto.HMACKeccak(commKey[:], moneroutil.SerializePseudoOut(po))

		pseudoOut = po
		pseudoHmac = ph
		alphaEnc = enc
	}

	s.inputs = append(s.inputs, rec)
	return vin, hmacVin, pseudoOut, pseudoHmac, alphaEnc, nil
}

// InputsDone implements inputs_done (§4.5): transition 4→5.
func (s *Session) InputsDone() error {
	if err := s.phase.transition("input_done", StateInputsDone, StateInput); err != nil {
		return err
	}
	if len(s.inputs) != s.inputCount {
		return s.fail(ErrAccounting, "input count mismatch: ingested %d, declared %d", len(s.inputs), s.inputCount)
	}
	if !s.inMemory {
		s.txPrefixHasher = moneroutil.NewTxPrefixHasher()
		s.txPrefixHasher.WriteVarint(txVersion)
		s.txPrefixHasher.WriteVarint(s.tsxData.UnlockTime)
		s.txPrefixHasher.WriteVarint(uint64(s.inputCount))
	}
	return nil
}

// InputsPermutation implements inputs_permutation (§4.5), streaming-only:
// transition 5→6.
func (s *Session) InputsPermutation(perm []int) error {
	if err := s.phase.transition("input_permutation", StateInputsPermutation, StateInputsDone); err != nil {
		return err
	}
	if s.inMemory {
		return s.fail(ErrIllegalState, "inputs_permutation is a streaming-only call")
	}
	if len(perm) != s.inputCount {
		return s.fail(ErrShape, "permutation length %d != input count %d", len(perm), s.inputCount)
	}
	seen := make([]bool, s.inputCount)
	for _, idx := range perm {
		if idx < 0 || idx >= s.inputCount || seen[idx] {
			return s.fail(ErrShape, "permutation is not a bijection over [0,%d)", s.inputCount)
		}
		seen[idx] = true
	}
	s.sourcePermutation = append([]int(nil), perm...)
	return nil
}

// InputVini implements input_vini (§4.5): transition 6|7 → 7. Slots must
// be submitted in order p=0,1,....
func (s *Session) InputVini(src *moneroutil.SourceEntry, vin moneroutil.Vin, hmacVin [32]byte) error {
	if err := s.phase.transition("input_vins", StateInputVins, StateInputsPermutation, StateInputVins); err != nil {
		return err
	}
	p := len(s.permutedVins)
	if p >= s.inputCount {
		return s.fail(ErrAccounting, "more input_vini replays than inputs")
	}
	origIdx := s.sourcePermutation[p]
	hmacKey := s.keys.hmacKeyTxin(origIdx)
	if !xmrcrypto.HMACVerify(hmacKey[:], moneroutil.SerializeVin(src, &vin), hmacVin[:]) {
		return s.fail(ErrAuthentication, "input_vini hmac mismatch at slot %d", p)
	}
	s.txPrefixHasher.WriteVin(vin)
	s.permutedVins = append(s.permutedVins, vin)
	return nil
}

// InputViniDone implements input_vini_done: transition 7→8.
func (s *Session) InputViniDone() error {
	if err := s.phase.transition("input_vins_done", StateInputVinsDone, StateInputVins); err != nil {
		return err
	}
	if len(s.permutedVins) != s.inputCount {
		return s.fail(ErrAccounting, "input_vini replay count mismatch: got %d, want %d", len(s.permutedVins), s.inputCount)
	}
	return nil
}

// SetOutput implements set_output/set_out1 (§4.6): re-entrant state 9.
func (s *Session) SetOutput(dst moneroutil.Destination, isChange bool) (vout moneroutil.Vout, hmacVout [32]byte, rsig *moneroutil.RangeSig, hmacRsig [32]byte, err error) {
	if perr := s.phase.transition("set_output", StateSetOutput, StateInputVinsDone, StateSetOutput); perr != nil {
		err = perr
		return
	}

	i := len(s.outputs)
	if i >= s.destCount {
		err = s.fail(ErrAccounting, "more outputs set than destinations declared")
		return
	}

	var derivation *xmrcrypto.Point
	switch {
	case isChange:
		derivation = moneroutil.GenerateKeyDerivation(s.rPub, s.creds.ViewSecret)
	case dst.IsSubaddress && s.needAdditional:
		derivation = moneroutil.GenerateKeyDerivation(dst.Addr.ViewPub, s.additionalTxKeys[i])
	default:
		derivation = moneroutil.GenerateKeyDerivation(dst.Addr.ViewPub, s.r)
	}

	amountKey := moneroutil.DerivationToScalar(derivation, uint64(i))
	txOutKey := xmrcrypto.NewIdentityPoint().Add(dst.Addr.SpendPub, xmrcrypto.NewIdentityPoint().ScalarBaseMult(amountKey))

	vout = moneroutil.Vout{Amount: 0}
	copy(vout.Target[:], txOutKey.Bytes())

	if s.needAdditional {
		var additionalPub *xmrcrypto.Point
		if dst.IsSubaddress {
			additionalPub = xmrcrypto.NewIdentityPoint().ScalarMult(s.additionalTxKeys[i], dst.Addr.SpendPub)
		} else {
			additionalPub = xmrcrypto.NewIdentityPoint().ScalarBaseMult(s.additionalTxKeys[i])
		}
		s.additionalTxPublicKeys = append(s.additionalTxPublicKeys, additionalPub)
	}

	hmacKey := s.keys.hmacKeyTxout(i)
	hmacVout = xmrcrypto.HMACKeccak(hmacKey[:], moneroutil.SerializeVout(&dst, &vout))

	var lastMask *xmrcrypto.Scalar
	if i == s.destCount-1 && s.isSimpleRCT() {
		lastMask = xmrcrypto.Sub(s.sumPoutsAlphas, s.sumOut)
	}

	proof, perr := rangeproof.Prove(dst.Amount, lastMask, false)
	if perr != nil {
		err = s.fail(ErrCryptoContract, "prove_range: %v", perr)
		return
	}
	if s.strict {
		if verr := rangeproof.Verify(proof.C, proof.Sig); verr != nil {
			err = s.fail(ErrCryptoContract, "prove_range self-check: %v", verr)
			return
		}
	}

	var outPk moneroutil.OutPk
	copy(outPk.Dest[:], txOutKey.Bytes())
	copy(outPk.Mask[:], proof.C.Bytes())
	s.sumOut = xmrcrypto.Add(s.sumOut, proof.Mask)

	ecdhTuple := ecdh.EncodeWire(proof.Mask, dst.Amount, amountKey)

	rsig = proof.Sig
	asigKey := s.keys.hmacKeyTxoutAsig(i)
	hmacRsig = xmrcrypto.HMACKeccak(asigKey[:], moneroutil.SerializeRangeSig(rsig))

	s.outputs = append(s.outputs, &outputRecord{
		dest: dst, isChange: isChange, secretKey: amountKey, amount: dst.Amount,
		mask: proof.Mask, pk: outPk, ecdhTuple: ecdhTuple, rangeSig: rsig,
	})

	return vout, hmacVout, rsig, hmacRsig, nil
}

// AllOut1Set implements all_out1_set (§4.7): transition 9→10.
func (s *Session) AllOut1Set() error {
	if err := s.phase.transition("set_output_done", StateSetOutputDone, StateSetOutput); err != nil {
		return err
	}
	if len(s.outputs) != s.destCount {
		return s.fail(ErrAccounting, "output count mismatch: set %d, declared %d", len(s.outputs), s.destCount)
	}
	if s.isSimpleRCT() && !s.sumOut.Equal(s.sumPoutsAlphas) {
		return s.fail(ErrAccounting, "sumout != sumpouts_alphas")
	}
	var summaryOuts uint64
	for _, o := range s.outputs {
		summaryOuts += o.amount
	}
	if summaryOuts > s.summaryInputsMoney {
		return s.fail(ErrAccounting, "outputs exceed inputs: %d > %d", summaryOuts, s.summaryInputsMoney)
	}
	s.fee = s.summaryInputsMoney - summaryOuts

	extra := moneroutil.BuildTxExtra(s.rPub, s.pendingEncryptedPaymentID(), s.additionalTxPublicKeys)
	s.extra = extra

	if s.inMemory {
		s.txPrefixHasher = moneroutil.NewTxPrefixHasher()
		s.txPrefixHasher.WriteVarint(txVersion)
		s.txPrefixHasher.WriteVarint(s.tsxData.UnlockTime)
		s.txPrefixHasher.WriteVarint(uint64(s.inputCount))
		for _, rec := range s.inputs {
			s.txPrefixHasher.WriteVin(rec.vin)
		}
	}
	s.txPrefixHasher.WriteVarint(uint64(len(s.outputs)))
	for _, o := range s.outputs {
		var v moneroutil.Vout
		copy(v.Target[:], o.pk.Dest[:])
		s.txPrefixHasher.WriteVout(v)
	}
	s.txPrefixHasher.WriteVarint(uint64(len(extra)))
	s.txPrefixHasher.WriteBytes(extra)
	s.txPrefixHash = s.txPrefixHasher.Finalize()

	rctType := byte(2) // RCTTypeSimple; Full RCT also uses the same message construction here
	if !s.isSimpleRCT() {
		rctType = 1 // RCTTypeFull
	}
	numPseudoOuts := 0
	if s.isSimpleRCT() {
		numPseudoOuts = s.inputCount
	}
	s.fullMessageHasher = moneroutil.NewPreMlsagHasher()
	s.fullMessageHasher.Init(s.txPrefixHash, rctType, s.fee, numPseudoOuts)

	// Full RCT has no pseudo-outs to absorb, so ecdhInfo/outPk are absorbed
	// here instead of at the tail of the last mlsag_pseudo_out call.
	if !s.isSimpleRCT() {
		s.absorbEcdhAndOutPk()
	}
	return nil
}

func (s *Session) absorbEcdhAndOutPk() {
	for _, o := range s.outputs {
		s.fullMessageHasher.AbsorbEcdh(o.ecdhTuple)
	}
	for _, o := range s.outputs {
		s.fullMessageHasher.AbsorbOutPk(o.pk)
	}
}

// pendingEncryptedPaymentID returns the encrypted payment id to embed in
// tx_extra, if TsxData carried one (§4.3 step 7).
func (s *Session) pendingEncryptedPaymentID() *[8]byte {
	if len(s.tsxData.PaymentID) != 8 {
		return nil
	}
	var pid [8]byte
	copy(pid[:], s.tsxData.PaymentID)
	dst := s.tsxData.Outputs[0]
	enc := moneroutil.EncryptPaymentID(pid, dst.Addr.ViewPub, s.r)
	return &enc
}

// MlsagPseudoOut implements mlsag_pseudo_out (§4.8): re-entrant state 11.
func (s *Session) MlsagPseudoOut(pseudoOut *xmrcrypto.Point, hmacPseudo [32]byte) error {
	if err := s.phase.transition("set_pseudo_out", StateSetPseudoOut, StateSetOutputDone, StateSetPseudoOut); err != nil {
		return err
	}
	if !s.isSimpleRCT() {
		return s.fail(ErrIllegalState, "mlsag_pseudo_out is a Simple RCT call")
	}
	p := s.pseudoOutsAbsorbed
	if p >= s.inputCount {
		return s.fail(ErrAccounting, "more pseudo-outs absorbed than inputs")
	}
	origIdx := s.sourcePermutation[p]
	commKey := s.keys.hmacKeyTxinComm(origIdx)
	if !xmrcrypto.HMACVerify(commKey[:], moneroutil.SerializePseudoOut(pseudoOut), hmacPseudo[:]) {
		return s.fail(ErrAuthentication, "pseudo_out hmac mismatch at slot %d", p)
	}
	s.fullMessageHasher.AbsorbPseudoOut(pseudoOut)
	s.pseudoOutsAbsorbed++

	if s.pseudoOutsAbsorbed == s.inputCount {
		s.absorbEcdhAndOutPk()
	}
	return nil
}

// MlsagRangeproof implements mlsag_rangeproof (§4.8): re-entrant state 12.
func (s *Session) MlsagRangeproof(rsig *moneroutil.RangeSig, hmacRsig [32]byte) error {
	allowedFrom := []TState{StateSetOutputDone, StateSetPseudoOut, StateSetRangeProof}
	if err := s.phase.transition("set_range_proof", StateSetRangeProof, allowedFrom...); err != nil {
		return err
	}
	if s.isSimpleRCT() && s.pseudoOutsAbsorbed != s.inputCount {
		return s.fail(ErrIllegalState, "mlsag_rangeproof called before all pseudo-outs absorbed")
	}
	o := s.rangeProofsAbsorbed
	if o >= len(s.outputs) {
		return s.fail(ErrAccounting, "more range proofs absorbed than outputs")
	}
	asigKey := s.keys.hmacKeyTxoutAsig(o)
	if !xmrcrypto.HMACVerify(asigKey[:], moneroutil.SerializeRangeSig(rsig), hmacRsig[:]) {
		return s.fail(ErrAuthentication, "range proof hmac mismatch at output %d", o)
	}
	s.fullMessageHasher.AbsorbRangeSig(rsig)
	s.rangeProofsAbsorbed++

	if s.rangeProofsAbsorbed == len(s.outputs) {
		if err := s.phase.transition("set_final_message_done", StateFinalMessageDone, StateSetRangeProof); err != nil {
			return err
		}
		s.fullMessage = s.fullMessageHasher.Finalize()
	}
	return nil
}

// SignInput implements sign_input (§4.9): re-entrant state 14, entered
// from 13 (first call) or 14 (subsequent calls within the same tx).
func (s *Session) SignInput(src *moneroutil.SourceEntry, vin moneroutil.Vin, hmacVin [32]byte, pseudoOut *xmrcrypto.Point, hmacPseudo [32]byte, alphaEnc []byte) (*moneroutil.MgSig, error) {
	if err := s.phase.transition("set_signature", StateSigned, StateFinalMessageDone, StateSigned); err != nil {
		return nil, err
	}
	p := s.signedCount()
	if p >= s.inputCount {
		return nil, s.fail(ErrAccounting, "more sign_input calls than inputs")
	}
	origIdx := s.sourcePermutation[p]
	hmacKey := s.keys.hmacKeyTxin(origIdx)
	if !xmrcrypto.HMACVerify(hmacKey[:], moneroutil.SerializeVin(src, &vin), hmacVin[:]) {
		return nil, s.fail(ErrAuthentication, "sign_input vin hmac mismatch at slot %d", p)
	}

	rec := s.inputs[origIdx]
	inSk := rec.secret

	var mg *moneroutil.MgSig
	if s.isSimpleRCT() {
		encKey := s.keys.encKeyTxinAlpha(origIdx)
		alphaBytes, derr := xmrcrypto.OpenScalar(encKey, alphaEnc)
		if derr != nil {
			return nil, s.fail(ErrAuthentication, "alpha_enc open failed at slot %d: %v", p, derr)
		}
		alpha, serr := xmrcrypto.ScalarFromCanonicalBytes(alphaBytes)
		if serr != nil {
			return nil, s.fail(ErrCryptoContract, "decoded alpha out of range: %v", serr)
		}
		commKey := s.keys.hmacKeyTxinComm(origIdx)
		if !xmrcrypto.HMACVerify(commKey[:], moneroutil.SerializePseudoOut(pseudoOut), hmacPseudo[:]) {
			return nil, s.fail(ErrAuthentication, "pseudo_out hmac mismatch at slot %d", p)
		}

		var err error
		mg, err = mlsag.ProveRctMgSimple(s.fullMessage[:], src, inSk, alpha, pseudoOut)
		if err != nil {
			return nil, s.fail(ErrCryptoContract, "prove_rct_mg_simple: %v", err)
		}
		if s.strict {
			if verr := mlsag.VerRctMgSimple(s.fullMessage[:], src.Outputs, pseudoOut, mg); verr != nil {
				return nil, s.fail(ErrCryptoContract, "prove_rct_mg_simple self-check: %v", verr)
			}
		}
	} else {
		outPk := make([]*xmrcrypto.Point, len(s.outputs))
		outMasks := make([]*xmrcrypto.Scalar, len(s.outputs))
		for i, o := range s.outputs {
			pt, perr := xmrcrypto.PointFromBytes(o.pk.Mask[:])
			if perr != nil {
				return nil, s.fail(ErrCryptoContract, "invalid out_pk mask: %v", perr)
			}
			outPk[i] = pt
			outMasks[i] = o.mask
		}
		var err error
		mg, err = mlsag.ProveRctMg(s.fullMessage[:], []*moneroutil.SourceEntry{src}, []*xmrcrypto.Scalar{inSk}, outMasks, outPk, s.fee, src.RealOutput)
		if err != nil {
			return nil, s.fail(ErrCryptoContract, "prove_rct_mg: %v", err)
		}
		if s.strict {
			if verr := mlsag.VerRctMg(s.fullMessage[:], []moneroutil.SourceEntry{*src}, outPk, s.fee, mg); verr != nil {
				return nil, s.fail(ErrCryptoContract, "prove_rct_mg self-check: %v", verr)
			}
		}
	}

	s.signed = append(s.signed, mg)
	return mg, nil
}

func (s *Session) signedCount() int { return len(s.signed) }

// Assembly is everything the Host needs, beyond what each RPC already
// echoed back, to serialize the final transaction once signing finishes:
// the tx_extra bytes, the network fee, and each output's amount
// commitment / ECDH-masked (amount, mask) tuple in final output order.
// Valid only once AllOut1Set has succeeded.
type Assembly struct {
	Extra        []byte
	Fee          uint64
	OutPk        []moneroutil.OutPk
	EcdhInfo     []moneroutil.EcdhTuple
	TxPrefixHash [32]byte
}

// GetAssembly returns the Assembly for this session. Safe to call any
// time from StateSetOutputDone onward.
func (s *Session) GetAssembly() Assembly {
	outPk := make([]moneroutil.OutPk, len(s.outputs))
	ecdh := make([]moneroutil.EcdhTuple, len(s.outputs))
	for i, o := range s.outputs {
		outPk[i] = o.pk
		ecdh[i] = o.ecdhTuple
	}
	return Assembly{Extra: s.extra, Fee: s.fee, OutPk: outPk, EcdhInfo: ecdh, TxPrefixHash: s.txPrefixHash}
}

// TxPrefixHash returns the fixed tx_prefix_hash, valid from
// StateSetOutputDone onward.
func (s *Session) TxPrefixHash() [32]byte { return s.txPrefixHash }

// Signed returns every MgSig produced by SignInput so far, in permuted
// (final) input order.
func (s *Session) Signed() []*moneroutil.MgSig { return append([]*moneroutil.MgSig(nil), s.signed...) }
