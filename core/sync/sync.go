// Package sync implements the alpha-synchronizer: the single coordinating
// process that drives every party through the program in lockstep,
// broadcasting Start/Next/Abort and gathering each party's Ok/Done/Abort
// reply. Grounded on original_source/src/synchronizer.rs's Synchronizer
// (spec.md §4.3).
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/republicprotocol/spdz/core/logging"
	"github.com/republicprotocol/spdz/core/message"
)

// DefaultTimeout bounds every gather of party replies.
const DefaultTimeout = time.Second

// Config wires the synchronizer to every party's sync channels, indexed by
// party id.
type Config struct {
	Send    []chan<- message.SyncMsg
	Recv    []<-chan message.SyncReply
	Timeout time.Duration
}

// Synchronizer drives parties to completion and reports the outcome.
type Synchronizer struct {
	cfg Config
}

// New constructs a Synchronizer from cfg.
func New(cfg Config) *Synchronizer {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Synchronizer{cfg: cfg}
}

// Run broadcasts Start, then repeatedly broadcasts Next and gathers
// replies: if every party reports Done, the run finished successfully; if
// any party reports Abort, Abort is broadcast and Run returns an error; any
// other pattern of replies is a protocol violation (spec.md §4.3,
// original_source/src/synchronizer.rs's listen loop).
func (s *Synchronizer) Run(ctx context.Context) error {
	if err := s.broadcast(ctx, message.Start); err != nil {
		return err
	}

	for {
		if err := s.broadcast(ctx, message.Next); err != nil {
			return err
		}
		replies, err := s.gather(ctx)
		if err != nil {
			return err
		}

		switch {
		case allEqual(replies, message.Done):
			logging.Infof("sync", "terminating")
			return nil
		case anyEqual(replies, message.ReplyAbort):
			logging.Errorf("sync", "party aborted, broadcasting Abort")
			if err := s.broadcast(ctx, message.Abort); err != nil {
				return fmt.Errorf("sync: party aborted, and broadcasting Abort failed: %w", err)
			}
			return fmt.Errorf("sync: party aborted")
		case allEqual(replies, message.Ok):
			// loop: broadcast Next again
		default:
			logging.Errorf("sync", "unexpected mix of replies: %v", replies)
			return fmt.Errorf("sync: unexpected mix of replies: %v", replies)
		}
	}
}

func (s *Synchronizer) broadcast(ctx context.Context, m message.SyncMsg) error {
	tctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return message.Broadcast(tctx, s.cfg.Send, m)
}

func (s *Synchronizer) gather(ctx context.Context) ([]message.SyncReply, error) {
	tctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return message.Gather(tctx, s.cfg.Recv)
}

func allEqual(replies []message.SyncReply, want message.SyncReply) bool {
	for _, r := range replies {
		if r != want {
			return false
		}
	}
	return true
}

func anyEqual(replies []message.SyncReply, want message.SyncReply) bool {
	for _, r := range replies {
		if r == want {
			return true
		}
	}
	return false
}
