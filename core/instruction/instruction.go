// Package instruction defines the fixed arithmetic instruction set that the
// VM interprets (spec.md §3 Instruction, §4.1) and the Program it is packaged
// into. Opcodes are plain, cheaply-clonable data, grounded on the tagged-enum
// shape of original_source/src/vm.rs's Instruction. Each opcode is an
// exported plain struct built with a composite literal; there are no
// constructor functions.
package instruction

import "github.com/republicprotocol/spdz/core/register"

// Addr is a register-file address, shared between both banks.
type Addr = register.Addr

// Inst is the interface every opcode implements. It is a closed set: the
// six classes enumerated in spec.md §4.1.
type Inst interface {
	isInst()
}

// ---------- Arithmetic on clear registers ----------

// CAdd sets clear[Dst] = clear[A] + clear[B].
type CAdd struct{ Dst, A, B Addr }

func (CAdd) isInst() {}

// CSub sets clear[Dst] = clear[A] - clear[B].
type CSub struct{ Dst, A, B Addr }

func (CSub) isInst() {}

// CMul sets clear[Dst] = clear[A] * clear[B].
type CMul struct{ Dst, A, B Addr }

func (CMul) isInst() {}

// ---------- Arithmetic on secret registers ----------

// SAdd sets secret[Dst] = secret[A] + secret[B]. No peer interaction: SPDZ
// shares are linear.
type SAdd struct{ Dst, A, B Addr }

func (SAdd) isInst() {}

// SSub sets secret[Dst] = secret[A] - secret[B].
type SSub struct{ Dst, A, B Addr }

func (SSub) isInst() {}

// ---------- Mixed operations ----------

// MAdd sets secret[Dst] = secret[Src].AddClear(clear[C], alpha_i, self.id ==
// OwnerID). OwnerID must be identical across all parties; it selects which
// single party absorbs the clear constant into its additive share.
type MAdd struct {
	Dst, Src, C Addr
	OwnerID     int
}

func (MAdd) isInst() {}

// MMul sets secret[Dst] = secret[Src].MulClear(clear[C]).
type MMul struct{ Dst, Src, C Addr }

func (MMul) isInst() {}

// ---------- Preprocessing consumers ----------

// Triple pulls one Beaver triple from the preprocessing queue and stores its
// three authenticated shares into secret[R0], secret[R1], secret[R2].
type Triple struct{ R0, R1, R2 Addr }

func (Triple) isInst() {}

// Input consumes one rand-share tagged with OwnerID and secret-shares
// clear[C] (only meaningful on the owning party) into secret[Dst].
type Input struct {
	Dst, C  Addr
	OwnerID int
}

func (Input) isInst() {}

// ---------- Open and output ----------

// Open partially opens secret[Src], storing the reconstructed clear value
// into clear[Dst] and pushing (value, share) onto the partial-opening log.
type Open struct{ Dst, Src Addr }

func (Open) isInst() {}

// COutput appends clear[K] to the program's output vector. No peer
// interaction.
type COutput struct{ K Addr }

func (COutput) isInst() {}

// SOutput partially opens secret[K] like Open, then immediately requires a
// MAC-check over the entire partial-opening log; on success the
// reconstructed clear value is appended to the outputs.
type SOutput struct{ K Addr }

func (SOutput) isInst() {}

// Stop runs a final MAC-check over any remaining openings and halts the VM.
type Stop struct{}

func (Stop) isInst() {}

// Program is a finite ordered sequence of instructions, fixed at party
// startup and terminated by Stop, identical on every party (spec.md §3
// invariant 2).
type Program []Inst
