// Package commitment implements the hash-based commitment scheme used by
// the MAC-check subprotocol: Commitment = H(r || v) for a 32-byte random r.
// Shaped after core/vss/pedersen.Pedersen's Commit/Verify API in the teacher
// repo, but swaps Pedersen's group-exponentiation construction for a hash
// construction per spec.md §3, using blake3 as H (see SPEC_FULL.md §2).
package commitment

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/republicprotocol/spdz/core/field"
)

// SaltLen is the width, in bytes, of the commitment's random opening salt.
const SaltLen = 32

// ErrUnacceptableCommitment is returned by Verify when the opening does not
// reproduce the commitment, mirroring pedersen.ErrUnacceptableCommitment.
var ErrUnacceptableCommitment = errors.New("commitment: opening does not match commitment")

// Commitment is the output of H(r || v): a 32-byte digest that is binding
// under collision resistance of H and hiding under the random-oracle model.
type Commitment [blake3.Size]byte

// Opening reveals the committed value v and the salt r used to commit it.
type Opening struct {
	V field.Fp
	R [SaltLen]byte
}

// Commit produces a Commitment to v along with the Opening needed to reveal
// it later.
func Commit(v field.Fp) (Commitment, Opening) {
	var r [SaltLen]byte
	if _, err := rand.Read(r[:]); err != nil {
		panic(fmt.Sprintf("commitment: reading randomness: %v", err))
	}
	return hash(v, r), Opening{V: v, R: r}
}

// Verify recomputes H(opening.R || opening.V) and compares it against com.
func Verify(opening Opening, com Commitment) error {
	if hash(opening.V, opening.R) != com {
		return ErrUnacceptableCommitment
	}
	return nil
}

func hash(v field.Fp, r [SaltLen]byte) Commitment {
	h := blake3.New()
	h.Write(r[:])
	vb := v.Bytes()
	h.Write(vb[:])
	var out Commitment
	copy(out[:], h.Sum(nil))
	return out
}
