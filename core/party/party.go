// Package party implements the per-party control loop: waiting for the
// synchronizer's Start, stepping the VM one instruction per Next, and
// servicing the VM's Open/Input/Check Actions against its peers. Grounded
// on original_source/src/party.rs's Party::listen, generalized from
// crossbeam_channel select! to a context.Context-bound Go select (spec.md
// §4.2).
package party

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/republicprotocol/spdz/core/commitment"
	"github.com/republicprotocol/spdz/core/field"
	"github.com/republicprotocol/spdz/core/instruction"
	"github.com/republicprotocol/spdz/core/logging"
	"github.com/republicprotocol/spdz/core/message"
	"github.com/republicprotocol/spdz/core/register"
	"github.com/republicprotocol/spdz/core/share"
	"github.com/republicprotocol/spdz/core/vm"
)

// DefaultTimeout mirrors original_source/src/error.rs's TIMEOUT constant
// bounding every peer round-trip (spec.md §7 ChannelTimeout).
const DefaultTimeout = time.Second

// ErrProtocol is returned when a peer's message is not of the kind a given
// Action step expects, a byzantine or buggy peer (spec.md §7 Protocol).
var ErrProtocol = errors.New("party: unexpected message from peer")

// Config wires one party's runtime. PeerSend/PeerRecv both have length n
// (the party count) indexed by party id, INCLUDING this party's own loopback
// entry at index ID: every broadcast is received by the sender too, so an
// n-way Gather always yields exactly n shares to sum (grounded on
// original_source/src/integration_test.rs's create_node_chans row/column
// wiring).
type Config struct {
	ID         int
	AlphaShare field.Fp
	Program    instruction.Program
	Reg        *register.File
	Preproc    vm.Preproc

	PeerSend []chan<- message.PartyMsg
	PeerRecv []<-chan message.PartyMsg

	SyncRecv <-chan message.SyncMsg
	SyncSend chan<- message.SyncReply

	// Timeout bounds every peer round-trip. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Party runs one party's side of the protocol to completion.
type Party struct {
	cfg Config
	vm  *vm.VM
}

// New constructs a Party from cfg.
func New(cfg Config) *Party {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Party{
		cfg: cfg,
		vm:  vm.New(cfg.ID, cfg.AlphaShare, cfg.Reg, cfg.Preproc),
	}
}

// Run waits for Start on SyncRecv, then steps the VM to completion,
// replying Ok/Done/Abort to the synchronizer after every instruction. It
// returns the VM's output vector, or the first error encountered (spec.md
// §4.2, §7: no retries, no silent recovery).
func (p *Party) Run(ctx context.Context) ([]field.Fp, error) {
	if err := p.waitForStart(ctx); err != nil {
		return nil, err
	}

	pc := 0
	for {
		if pc >= len(p.cfg.Program) {
			return nil, fmt.Errorf("party: instruction counter overflow at %d", pc)
		}

		select {
		case msg := <-p.cfg.SyncRecv:
			switch msg {
			case message.Start:
				return nil, fmt.Errorf("party: received Start after already starting")
			case message.Abort:
				return nil, fmt.Errorf("party: synchronizer aborted")
			case message.Next:
				inst := p.cfg.Program[pc]
				pc++

				halted, err := p.vm.Exec(inst, p)
				if err != nil {
					logging.Errorf("party", "<%d> %v", p.cfg.ID, err)
					p.reply(ctx, message.ReplyAbort)
					return nil, err
				}

				if halted {
					logging.Infof("party", "<%d> terminating", p.cfg.ID)
					if err := p.reply(ctx, message.Done); err != nil {
						return nil, err
					}
					return p.vm.Outputs(), nil
				}
				if err := p.reply(ctx, message.Ok); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("%w: unexpected sync message %v", ErrProtocol, msg)
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("party: %w", ctx.Err())
		}
	}
}

func (p *Party) waitForStart(ctx context.Context) error {
	for {
		select {
		case msg := <-p.cfg.SyncRecv:
			if msg == message.Start {
				return nil
			}
		case <-ctx.Done():
			return fmt.Errorf("party: %w waiting for start", ctx.Err())
		}
	}
}

func (p *Party) reply(ctx context.Context, r message.SyncReply) error {
	select {
	case p.cfg.SyncSend <- r:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("party: %w replying %v to synchronizer", ctx.Err(), r)
	}
}

func (p *Party) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.cfg.Timeout)
}

func (p *Party) broadcast(ctx context.Context, m message.PartyMsg) error {
	return message.Broadcast(ctx, p.cfg.PeerSend, m)
}

func (p *Party) gather(ctx context.Context) ([]message.PartyMsg, error) {
	return message.Gather(ctx, p.cfg.PeerRecv)
}

// Open implements vm.ActionHandler: broadcast this party's share, gather
// every party's share (including its own loopback), and sum.
func (p *Party) Open(x field.Fp) (field.Fp, error) {
	ctx, cancel := p.withTimeout(context.Background())
	defer cancel()

	if err := p.broadcast(ctx, message.ElemMsg(x)); err != nil {
		return field.Fp{}, err
	}
	msgs, err := p.gather(ctx)
	if err != nil {
		return field.Fp{}, err
	}

	sum := field.Zero()
	for _, m := range msgs {
		v, err := m.AsElem()
		if err != nil {
			return field.Fp{}, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		sum = sum.Add(v)
	}
	return sum, nil
}

// Input implements vm.ActionHandler: only the owning party broadcasts its
// offset; every party (including the owner) then reads the owner's
// broadcast value back off its own peer channel.
func (p *Party) Input(ownerID int, offset *field.Fp) (field.Fp, error) {
	ctx, cancel := p.withTimeout(context.Background())
	defer cancel()

	if offset != nil {
		if err := p.broadcast(ctx, message.ElemMsg(*offset)); err != nil {
			return field.Fp{}, err
		}
	}

	select {
	case m := <-p.cfg.PeerRecv[ownerID]:
		v, err := m.AsElem()
		if err != nil {
			return field.Fp{}, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return v, nil
	case <-ctx.Done():
		return field.Fp{}, fmt.Errorf("party: %w waiting for input offset from %d", ctx.Err(), ownerID)
	}
}

// Check implements vm.ActionHandler: run the MAC-check subprotocol over
// every entry of openings in order, stopping at the first failure
// (original_source/src/party.rs's handle_action Action::Check arm).
func (p *Party) Check(openings []vm.Opening) error {
	for _, o := range openings {
		if err := p.macCheck(o.Value, o.Share); err != nil {
			return err
		}
	}
	return nil
}

// ErrBadCommitment reports that some peer's opening did not match the
// commitment it broadcast earlier (spec.md §4.2, active-security abort
// trigger).
var ErrBadCommitment = errors.New("party: mac check: bad commitment")

// ErrSumNotZero reports that the sum of every party's d_i did not vanish,
// meaning some share's MAC does not match alpha*x (spec.md §4.2,
// active-security abort trigger).
var ErrSumNotZero = errors.New("party: mac check: sum is not zero")

// macCheck runs one round of the commit-then-open MAC-check subprotocol
// for a single (x, share) pair, grounded directly on
// original_source/src/party.rs's mac_check closure.
func (p *Party) macCheck(x field.Fp, s share.AuthShare) error {
	ctx, cancel := p.withTimeout(context.Background())
	defer cancel()

	d := p.cfg.AlphaShare.Mul(x).Sub(s.MAC)
	dCom, dOpen := commitment.Commit(d)

	if err := p.broadcast(ctx, message.ComMsg(dCom)); err != nil {
		return err
	}
	comMsgs, err := p.gather(ctx)
	if err != nil {
		return err
	}
	dComs := make([]commitment.Commitment, len(comMsgs))
	for i, m := range comMsgs {
		c, err := m.AsCom()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		dComs[i] = c
	}

	if err := p.broadcast(ctx, message.OpeningMsg(dOpen)); err != nil {
		return err
	}
	openMsgs, err := p.gather(ctx)
	if err != nil {
		return err
	}

	sum := field.Zero()
	for i, m := range openMsgs {
		o, err := m.AsOpening()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		if err := commitment.Verify(o, dComs[i]); err != nil {
			logging.Errorf("party, mac-check", "<%d> bad commitment from peer %d", p.cfg.ID, i)
			return fmt.Errorf("%w: peer %d", ErrBadCommitment, i)
		}
		sum = sum.Add(o.V)
	}

	if !sum.IsZero() {
		logging.Errorf("party, mac-check", "<%d> sum is not zero", p.cfg.ID)
		return ErrSumNotZero
	}
	return nil
}
