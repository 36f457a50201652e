// Package message defines the wire types and broadcast/gather primitives
// that parties and the synchronizer exchange over, grounded on
// original_source/src/message.rs's broadcast/recv_all helpers and SyncMsg/
// SyncMsgReply enums, and on the teacher's core/node/io.go channel-alias
// convention (spec.md §4.4).
package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/republicprotocol/spdz/core/commitment"
	"github.com/republicprotocol/spdz/core/field"
)

// ErrTimeout is returned when a gather does not hear from every channel
// before ctx is done (spec.md §7 ChannelTimeout).
var ErrTimeout = errors.New("message: timed out waiting for peer")

// ErrSend is returned when a send to a peer channel cannot complete
// (spec.md §7 ChannelSend).
var ErrSend = errors.New("message: failed to send to peer")

// PartyMsg is exchanged directly between parties: a field element (for
// Input/Open exchanges), a commitment, or a commitment opening (for the
// MAC-check subprotocol). Grounded on original_source/src/party.rs's
// PartyMsg::{Elem,Com,Opening}.
type PartyMsg struct {
	Elem    *field.Fp
	Com     *commitment.Commitment
	Opening *commitment.Opening
}

// ElemMsg builds a PartyMsg carrying a field element.
func ElemMsg(x field.Fp) PartyMsg { return PartyMsg{Elem: &x} }

// ComMsg builds a PartyMsg carrying a commitment.
func ComMsg(c commitment.Commitment) PartyMsg { return PartyMsg{Com: &c} }

// OpeningMsg builds a PartyMsg carrying a commitment opening.
func OpeningMsg(o commitment.Opening) PartyMsg { return PartyMsg{Opening: &o} }

// AsElem unwraps m as an element message, or reports a protocol error.
func (m PartyMsg) AsElem() (field.Fp, error) {
	if m.Elem == nil {
		return field.Fp{}, fmt.Errorf("message: expected an element message, got %+v", m)
	}
	return *m.Elem, nil
}

// AsCom unwraps m as a commitment message, or reports a protocol error.
func (m PartyMsg) AsCom() (commitment.Commitment, error) {
	if m.Com == nil {
		return commitment.Commitment{}, fmt.Errorf("message: expected a commitment message, got %+v", m)
	}
	return *m.Com, nil
}

// AsOpening unwraps m as an opening message, or reports a protocol error.
func (m PartyMsg) AsOpening() (commitment.Opening, error) {
	if m.Opening == nil {
		return commitment.Opening{}, fmt.Errorf("message: expected an opening message, got %+v", m)
	}
	return *m.Opening, nil
}

// SyncMsg is broadcast by the synchronizer to every party (spec.md §4.3).
type SyncMsg int

const (
	// Start tells every party to begin stepping through its program.
	Start SyncMsg = iota
	// Next tells every party to execute its next instruction.
	Next
	// Abort tells every party to halt immediately: a peer detected an
	// active-security violation.
	Abort
)

func (m SyncMsg) String() string {
	switch m {
	case Start:
		return "Start"
	case Next:
		return "Next"
	case Abort:
		return "Abort"
	default:
		return fmt.Sprintf("SyncMsg(%d)", int(m))
	}
}

// SyncReply is sent by each party back to the synchronizer in response to a
// SyncMsg (spec.md §4.3).
type SyncReply int

const (
	// Ok reports that the instruction just executed did not halt.
	Ok SyncReply = iota
	// Done reports that the instruction just executed was Stop.
	Done
	// ReplyAbort reports that the party detected an active-security
	// violation and is halting.
	ReplyAbort
)

func (r SyncReply) String() string {
	switch r {
	case Ok:
		return "Ok"
	case Done:
		return "Done"
	case ReplyAbort:
		return "Abort"
	default:
		return fmt.Sprintf("SyncReply(%d)", int(r))
	}
}

// Broadcast sends m on every channel in chans, returning ErrSend wrapped
// with the failing index if ctx ends before any one send completes.
// Grounded on original_source/src/message.rs's broadcast<T>.
func Broadcast[T any](ctx context.Context, chans []chan<- T, m T) error {
	for i, c := range chans {
		select {
		case c <- m:
		case <-ctx.Done():
			return fmt.Errorf("%w: peer %d: %v", ErrSend, i, ctx.Err())
		}
	}
	return nil
}

// Gather reads exactly one message from every channel in chans, in order,
// returning ErrTimeout if ctx ends first. Grounded on
// original_source/src/message.rs's recv_all<T>.
func Gather[T any](ctx context.Context, chans []<-chan T) ([]T, error) {
	out := make([]T, len(chans))
	for i, c := range chans {
		select {
		case v := <-c:
			out[i] = v
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: peer %d: %v", ErrTimeout, i, ctx.Err())
		}
	}
	return out, nil
}
