// Package field implements the prime field Fp that every share, MAC and
// commitment value in the SPDZ online phase is drawn from.
package field

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ByteLen is the fixed width, in bytes, of a serialized field element.
const ByteLen = 32

// modulus is the BLS12-381 scalar field prime, a 255-bit prime, matching the
// size original_source/src/algebra.rs picks for its Fp (>=128 bits of
// statistical soundness per spec.md §9's "Polymorphism over field backends"
// note).
var modulus, _ = new(big.Int).SetString(
	"52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

// ErrNotInField is returned when deserializing bytes that do not represent a
// canonical element of the field.
var ErrNotInField = errors.New("field: value is not canonically reduced mod p")

// Fp is an element of GF(p) for the fixed prime p. It wraps a *big.Int the
// same way core/vss/algebra.Fp in the teacher repo wraps one, except the
// modulus is fixed module-wide instead of carried per-value.
type Fp struct {
	v *big.Int
}

// Zero is the additive identity.
func Zero() Fp { return Fp{big.NewInt(0)} }

// One is the multiplicative identity.
func One() Fp { return Fp{big.NewInt(1)} }

// FromInt64 lifts a small signed integer into the field.
func FromInt64(x int64) Fp {
	return reduce(big.NewInt(x))
}

// FromBigInt reduces an arbitrary integer modulo p.
func FromBigInt(x *big.Int) Fp {
	return reduce(new(big.Int).Set(x))
}

func reduce(x *big.Int) Fp {
	x.Mod(x, modulus)
	if x.Sign() < 0 {
		x.Add(x, modulus)
	}
	return Fp{x}
}

// Random samples a uniform element of the field using a cryptographic RNG.
func Random() Fp {
	v, err := rand.Int(rand.Reader, modulus)
	if err != nil {
		// crypto/rand.Reader failing is a fatal environment error, not a
		// recoverable field-arithmetic condition.
		panic(fmt.Sprintf("field: random: %v", err))
	}
	return Fp{v}
}

// Add returns a + b mod p.
func (a Fp) Add(b Fp) Fp {
	return reduce(new(big.Int).Add(a.v, b.v))
}

// Sub returns a - b mod p.
func (a Fp) Sub(b Fp) Fp {
	return reduce(new(big.Int).Sub(a.v, b.v))
}

// Mul returns a * b mod p.
func (a Fp) Mul(b Fp) Fp {
	return reduce(new(big.Int).Mul(a.v, b.v))
}

// Neg returns -a mod p.
func (a Fp) Neg() Fp {
	return reduce(new(big.Int).Neg(a.v))
}

// Inv returns a^-1 mod p. Panics for the zero element, mirroring
// core/vss/algebra.Fp.MulInv's ModInverse call which has the same precondition.
func (a Fp) Inv() Fp {
	if a.v.Sign() == 0 {
		panic("field: inverse of zero")
	}
	return Fp{new(big.Int).ModInverse(a.v, modulus)}
}

// Div returns a / b mod p, i.e. a * b^-1.
func (a Fp) Div(b Fp) Fp {
	return a.Mul(b.Inv())
}

// Equal reports whether a and b represent the same field element.
func (a Fp) Equal(b Fp) bool {
	return a.v.Cmp(b.v) == 0
}

// IsZero reports whether a is the additive identity.
func (a Fp) IsZero() bool {
	return a.v.Sign() == 0
}

// Bytes serializes a to a fixed-width, 32-byte little-endian string.
func (a Fp) Bytes() [ByteLen]byte {
	var out [ByteLen]byte
	b := a.v.Bytes() // big-endian, no leading zeros
	for i, bi := range b {
		out[len(b)-1-i] = bi
	}
	return out
}

// FromBytes deserializes a fixed-width little-endian byte string. Returns
// ErrNotInField if the encoded integer is not less than the modulus.
func FromBytes(b [ByteLen]byte) (Fp, error) {
	be := make([]byte, ByteLen)
	for i, bi := range b {
		be[ByteLen-1-i] = bi
	}
	v := new(big.Int).SetBytes(be)
	if v.Cmp(modulus) >= 0 {
		return Fp{}, ErrNotInField
	}
	return Fp{v}, nil
}

// String renders the decimal representation, for debugging and log lines.
func (a Fp) String() string {
	return a.v.String()
}
