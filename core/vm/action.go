package vm

import (
	"github.com/republicprotocol/spdz/core/field"
	"github.com/republicprotocol/spdz/core/share"
)

// Opening is one entry of the partial-opening log: a value that has been
// summed across parties, paired with the AuthShare it was opened from. It
// is not trusted until a MAC-check over it succeeds (spec.md §3
// Partial-opening log, GLOSSARY "Partial open").
type Opening struct {
	Value field.Fp
	Share share.AuthShare
}

// ActionHandler is the party-side half of the Action protocol from
// spec.md §4.1/§4.2. Per the design note in spec.md §9 ("An implementer may
// collapse the VM and party into a single task if they preserve the Action
// protocol as an internal function-call interface; this loses no
// property"), this package models the three peer-interacting Actions
// (Open, Input, Check) as direct method calls instead of a channel +
// reply-channel pair. Every call may block on peer I/O and can fail with a
// transport or MAC-check error; the VM's Exec loop propagates any error to
// its caller unchanged, exactly as spec.md §7 requires ("no error is
// retried; no error is silently recovered").
//
// The fourth Action, Action::Next, has no method here: in the collapsed
// model a synchronous return from Exec *is* the Next signal that unblocks
// the party's control loop in spec.md's channel-based description.
type ActionHandler interface {
	// Open broadcasts share x to every peer, gathers their shares, and
	// returns the summed clear value (Action::Open).
	Open(x field.Fp) (field.Fp, error)

	// Input exchanges the input-masking offset for an Input instruction.
	// offset is non-nil only when the caller's VM is the owning party;
	// the returned value is the owner's offset e, known to every party
	// after the exchange (Action::Input).
	Input(ownerID int, offset *field.Fp) (field.Fp, error)

	// Check runs the MAC-check subprotocol over every entry of openings
	// and returns the first failure encountered, or nil if every entry
	// verified (Action::Check).
	Check(openings []Opening) error
}

// Preproc is the VM's view of the preprocessing adapter (spec.md §4.5):
// two blocking, timeout-bound sources of preprocessing items. Triple calls
// are consumed FIFO; RandShare calls are bucketed and consumed LIFO within
// a given owner's bucket (spec.md §9 "Input rand-share keying").
type Preproc interface {
	// NextTriple blocks until a Beaver triple is available, or the
	// preprocessing stream's timeout elapses.
	NextTriple() (share.Triple, error)

	// NextRandShare blocks until a rand-share tagged with owner is
	// available, or the timeout elapses.
	NextRandShare(owner int) (share.RandShare, error)
}
