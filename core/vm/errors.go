package vm

import (
	"fmt"

	"github.com/republicprotocol/spdz/core/instruction"
)

// ExecError wraps any error raised while executing a single instruction
// with the program counter it occurred at, mirroring
// original_source/src/vm.rs's "execution error at instruction N" wrapping.
type ExecError struct {
	PC  int
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("vm: execution error at instruction %d: %v", e.PC, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func execErr(pc int, err error) error {
	if err == nil {
		return nil
	}
	return &ExecError{PC: pc, Err: err}
}

// ErrMissingClearMask is returned when an Input instruction's owning party
// pulls a rand-share whose clear mask was never generated by preprocessing,
// a preprocessing-supplier bug rather than anything a party can recover
// from (the owner's own copy of every RandShare carries its clear mask).
var ErrMissingClearMask = fmt.Errorf("vm: rand-share missing clear mask")

func errMissingClearMask(ownerID int) error {
	return fmt.Errorf("%w: owner %d", ErrMissingClearMask, ownerID)
}

// unexpectedInst reports an Inst value outside the closed set in package
// instruction.
func unexpectedInst(inst instruction.Inst) error {
	return fmt.Errorf("vm: unexpected instruction: %#v", inst)
}
