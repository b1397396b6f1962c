package txsession

import (
	"fmt"

	"go.uber.org/atomic"
)

// TState is the Signer's transaction phase, states 0..14 of the legal
// transition table. Only the trigger methods below may move it forward;
// any other call in the wrong phase aborts with ErrIllegalState.
type TState int32

const (
	StateStart TState = iota
	StateInit
	StatePrecomp
	StateInputCount
	StateInput
	StateInputsDone
	StateInputsPermutation
	StateInputVins
	StateInputVinsDone
	StateSetOutput
	StateSetOutputDone
	StateSetPseudoOut
	StateSetRangeProof
	StateFinalMessageDone
	StateSigned
)

func (s TState) String() string {
	names := [...]string{
		"Start", "Init", "Precomp", "InputCount", "Input", "InputsDone",
		"InputsPermutation", "InputVins", "InputVinsDone", "SetOutput",
		"SetOutputDone", "SetPseudoOut", "SetRangeProof", "FinalMessageDone",
		"Signed",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return fmt.Sprintf("TState(%d)", int(s))
	}
	return names[s]
}

// phase is the atomic, abort-aware guard around TState. A session's trigger
// methods call phase.transition to enforce the table in spec §4.1; once
// aborted, every further call fails regardless of the requested trigger.
type phase struct {
	state   atomic.Int32
	aborted atomic.Bool
}

func newPhase() *phase {
	p := &phase{}
	p.state.Store(int32(StateStart))
	return p
}

func (p *phase) current() TState { return TState(p.state.Load()) }

func (p *phase) abort() { p.aborted.Store(true) }

// transition validates that `from` contains the current state and moves to
// `to`, failing if the session is aborted or the current state isn't one of
// `from`.
func (p *phase) transition(trigger string, to TState, from ...TState) error {
	if p.aborted.Load() {
		return fmt.Errorf("%w: session aborted, rejecting %s", ErrIllegalState, trigger)
	}
	cur := TState(p.state.Load())
	ok := false
	for _, f := range from {
		if cur == f {
			ok = true
			break
		}
	}
	if !ok {
		p.abort()
		return fmt.Errorf("%w: %s not legal from state %s", ErrIllegalState, trigger, cur)
	}
	p.state.Store(int32(to))
	return nil
}
