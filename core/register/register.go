// Package register implements the VM's two-bank register file: one bank of
// clear field elements, one bank of authenticated shares. spec.md §3.
package register

import (
	"errors"
	"fmt"

	"github.com/republicprotocol/spdz/core/field"
	"github.com/republicprotocol/spdz/core/share"
)

// ErrEmptyRegister is returned (and wrapped) when a program reads a
// register slot that was never written, or was explicitly cleared. Fatal
// per spec.md §4.1 "Edge cases and policies" and §7.
var ErrEmptyRegister = errors.New("register: read from empty register")

// Addr indexes a slot in either bank.
type Addr = int

// File is the register file owned by exactly one VM. Slots are optional:
// a slot that has never been written, or has been cleared, reads as
// ErrEmptyRegister.
type File struct {
	clear  []*field.Fp
	secret []*share.AuthShare
}

// New allocates a File with size slots in each bank.
func New(size int) *File {
	return &File{
		clear:  make([]*field.Fp, size),
		secret: make([]*share.AuthShare, size),
	}
}

// SetClear writes v into the clear bank at addr.
func (f *File) SetClear(addr Addr, v field.Fp) {
	cp := v
	f.clear[addr] = &cp
}

// GetClear reads the clear bank at addr, or ErrEmptyRegister if unset.
func (f *File) GetClear(addr Addr) (field.Fp, error) {
	if f.clear[addr] == nil {
		return field.Fp{}, fmt.Errorf("%w: clear[%d]", ErrEmptyRegister, addr)
	}
	return *f.clear[addr], nil
}

// SetSecret writes an AuthShare into the secret bank at addr.
func (f *File) SetSecret(addr Addr, v share.AuthShare) {
	cp := v
	f.secret[addr] = &cp
}

// GetSecret reads the secret bank at addr, or ErrEmptyRegister if unset.
func (f *File) GetSecret(addr Addr) (share.AuthShare, error) {
	if f.secret[addr] == nil {
		return share.AuthShare{}, fmt.Errorf("%w: secret[%d]", ErrEmptyRegister, addr)
	}
	return *f.secret[addr], nil
}

// ClearClear unsets the clear bank slot at addr.
func (f *File) ClearClear(addr Addr) {
	f.clear[addr] = nil
}

// ClearSecret unsets the secret bank slot at addr.
func (f *File) ClearSecret(addr Addr) {
	f.secret[addr] = nil
}

// FromClearInputs builds a File of the given size with the clear bank
// preloaded from vals (vals[i] goes to clear[i]); the secret bank starts
// empty. Mirrors original_source/src/vm.rs's vec_to_reg / Reg::from_vec
// helpers used to seed a party's initial register state (spec.md §6,
// input #5 "Initial register state").
func FromClearInputs(size int, vals []field.Fp) *File {
	f := New(size)
	for i, v := range vals {
		if i >= size {
			break
		}
		f.SetClear(i, v)
	}
	return f
}
