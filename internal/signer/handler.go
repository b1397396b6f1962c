package signer

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/monero-agent/xmrsigner/internal/txsession"
)

// Handler answers the Host Agent's RPCs by driving one txsession.Session
// per in-flight transaction, looked up in a Manager. It never handles
// EIP-712 orders; the Polymarket/Kalshi signing surface the teacher
// exposed here has no place in a Monero signer.
type Handler struct {
	mgr *Manager
}

// NewHandler creates a Handler wired to mgr.
func NewHandler(mgr *Manager) *Handler { return &Handler{mgr: mgr} }

func statusFor(err error) error {
	switch txsession.Classify(err) {
	case txsession.ErrKindStateViolation:
		return status.Error(codes.FailedPrecondition, err.Error())
	case txsession.ErrKindAuthentication:
		return status.Error(codes.PermissionDenied, err.Error())
	case txsession.ErrKindAccounting:
		return status.Error(codes.InvalidArgument, err.Error())
	case txsession.ErrKindCryptoContract:
		return status.Error(codes.Internal, err.Error())
	case txsession.ErrKindShape:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

// InitTransaction mints a new session and starts it.
func (h *Handler) InitTransaction(ctx context.Context, req *InitTransactionRequest) (*InitTransactionResponse, error) {
	id, tsxCtr, creds, err := h.mgr.Create(ctx)
	if err != nil {
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	}
	s := txsession.NewSession(creds.Creds, tsxCtr)
	rPub, err := s.InitTransaction(&req.TsxData)
	if err != nil {
		return nil, statusFor(err)
	}
	h.mgr.Put(id, s, creds)
	return &InitTransactionResponse{SessionID: id, TxPublicKey: rPub}, nil
}

func (h *Handler) PrecomputeSubaddr(_ context.Context, req *PrecomputeSubaddrRequest) (*PrecomputeSubaddrResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.PrecomputeSubaddr(req.Account, req.MinorIndices); err != nil {
		return nil, statusFor(err)
	}
	return &PrecomputeSubaddrResponse{}, nil
}

func (h *Handler) SetInputCount(_ context.Context, req *SetInputCountRequest) (*SetInputCountResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.SetInputCount(req.Count); err != nil {
		return nil, statusFor(err)
	}
	return &SetInputCountResponse{}, nil
}

func (h *Handler) SetInput(_ context.Context, req *SetInputRequest) (*SetInputResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	vin, hmacVin, pseudoOut, pseudoHmac, alphaEnc, err := s.SetInput(&req.Source)
	if err != nil {
		return nil, statusFor(err)
	}
	return &SetInputResponse{
		Vin: vin, HmacVin: hmacVin, PseudoOut: pseudoOut,
		PseudoHmac: pseudoHmac, AlphaEnc: alphaEnc,
	}, nil
}

func (h *Handler) InputsDone(_ context.Context, req *InputsDoneRequest) (*InputsDoneResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.InputsDone(); err != nil {
		return nil, statusFor(err)
	}
	return &InputsDoneResponse{}, nil
}

func (h *Handler) InputsPermutation(_ context.Context, req *InputsPermutationRequest) (*InputsPermutationResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.InputsPermutation(req.Permutation); err != nil {
		return nil, statusFor(err)
	}
	return &InputsPermutationResponse{}, nil
}

func (h *Handler) InputVini(_ context.Context, req *InputViniRequest) (*InputViniResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.InputVini(&req.Source, req.Vin, req.HmacVin); err != nil {
		return nil, statusFor(err)
	}
	return &InputViniResponse{}, nil
}

func (h *Handler) InputViniDone(_ context.Context, req *InputViniDoneRequest) (*InputViniDoneResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.InputViniDone(); err != nil {
		return nil, statusFor(err)
	}
	return &InputViniDoneResponse{}, nil
}

func (h *Handler) SetOutput(_ context.Context, req *SetOutputRequest) (*SetOutputResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	vout, hmacVout, rsig, hmacRsig, err := s.SetOutput(req.Dest, req.IsChange)
	if err != nil {
		return nil, statusFor(err)
	}
	return &SetOutputResponse{Vout: vout, HmacVout: hmacVout, RangeSig: *rsig, HmacRsig: hmacRsig}, nil
}

func (h *Handler) AllOut1Set(_ context.Context, req *AllOut1SetRequest) (*AllOut1SetResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.AllOut1Set(); err != nil {
		return nil, statusFor(err)
	}
	return &AllOut1SetResponse{}, nil
}

func (h *Handler) MlsagPseudoOut(_ context.Context, req *MlsagPseudoOutRequest) (*MlsagPseudoOutResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.MlsagPseudoOut(req.PseudoOut, req.HmacPseudo); err != nil {
		return nil, statusFor(err)
	}
	return &MlsagPseudoOutResponse{}, nil
}

func (h *Handler) MlsagRangeproof(_ context.Context, req *MlsagRangeproofRequest) (*MlsagRangeproofResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := s.MlsagRangeproof(&req.RangeSig, req.HmacRsig); err != nil {
		return nil, statusFor(err)
	}
	return &MlsagRangeproofResponse{}, nil
}

func (h *Handler) SignInput(_ context.Context, req *SignInputRequest) (*SignInputResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	mg, err := s.SignInput(&req.Source, req.Vin, req.HmacVin, req.PseudoOut, req.HmacPseudo, req.AlphaEnc)
	if err != nil {
		return nil, statusFor(err)
	}
	return &SignInputResponse{Signature: *mg}, nil
}

func (h *Handler) EndSession(_ context.Context, req *EndSessionRequest) (*EndSessionResponse, error) {
	h.mgr.End(req.SessionID)
	return &EndSessionResponse{}, nil
}

func (h *Handler) GetSessionState(_ context.Context, req *GetSessionStateRequest) (*GetSessionStateResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return &GetSessionStateResponse{State: s.State().String()}, nil
}

func (h *Handler) GetAssembly(_ context.Context, req *GetAssemblyRequest) (*GetAssemblyResponse, error) {
	s, err := h.mgr.Get(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	a := s.GetAssembly()
	return &GetAssemblyResponse{Extra: a.Extra, Fee: a.Fee, OutPk: a.OutPk, EcdhInfo: a.EcdhInfo, TxPrefixHash: a.TxPrefixHash}, nil
}
