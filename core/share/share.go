// Package share implements SPDZ additive secret sharing: plain additive
// shares, MAC-authenticated shares, and the two preprocessing item shapes
// (Beaver triples and input-randomness shares) that the core's VM consumes.
package share

import "github.com/republicprotocol/spdz/core/field"

// Share is one party's additive piece of a secret value. Summing Share
// across all parties reconstructs the secret (spec.md §3 invariant 1).
type Share = field.Fp

// Combine reconstructs a clear value from every party's additive share.
// Grounded on original_source/src/crypto.rs's unauth_combine.
func Combine(shares []Share) field.Fp {
	out := field.Zero()
	for _, s := range shares {
		out = out.Add(s)
	}
	return out
}

// Split additively shares secret across n parties using n-1 random shares
// plus a final share that makes the sum exact. Grounded on
// original_source/src/crypto.rs's unauth_share.
func Split(secret field.Fp, n int) []Share {
	out := make([]Share, n)
	sum := field.Zero()
	for i := 0; i < n-1; i++ {
		r := field.Random()
		out[i] = r
		sum = sum.Add(r)
	}
	out[n-1] = secret.Sub(sum)
	return out
}

// AuthShare is one party's piece of a SPDZ-authenticated secret: an additive
// share of the value x, and an additive share of the MAC alpha*x under the
// globally-shared (never reconstructed) key alpha. spec.md §3.
type AuthShare struct {
	Share field.Fp
	MAC   field.Fp
}

// Add returns the componentwise sum of two AuthShares (spec.md §3).
func (a AuthShare) Add(b AuthShare) AuthShare {
	return AuthShare{Share: a.Share.Add(b.Share), MAC: a.MAC.Add(b.MAC)}
}

// Sub returns the componentwise difference of two AuthShares (spec.md §3).
func (a AuthShare) Sub(b AuthShare) AuthShare {
	return AuthShare{Share: a.Share.Sub(b.Share), MAC: a.MAC.Sub(b.MAC)}
}

// MulClear scales both the share and the MAC by a public constant c
// (spec.md §3 mul_clear).
func (a AuthShare) MulClear(c field.Fp) AuthShare {
	return AuthShare{Share: a.Share.Mul(c), MAC: a.MAC.Mul(c)}
}

// AddClear absorbs a public constant c into the MAC (every party) and,
// iff updateShare is true, into the additive share too (spec.md §3
// add_clear). Exactly one party in the cluster must call this with
// updateShare = true for a given clear offset, selected by MAdd's owner_id.
func (a AuthShare) AddClear(c, alphaShare field.Fp, updateShare bool) AuthShare {
	out := AuthShare{Share: a.Share, MAC: a.MAC.Add(alphaShare.Mul(c))}
	if updateShare {
		out.Share = out.Share.Add(c)
	}
	return out
}

// AuthSplit authenticates a secret for n parties under MAC key alpha,
// returning one AuthShare per party. Grounded on
// original_source/src/crypto.rs's auth_share.
func AuthSplit(secret, alpha field.Fp, n int) []AuthShare {
	macOnSecret := secret.Mul(alpha)
	shares := Split(secret, n)
	macs := Split(macOnSecret, n)
	out := make([]AuthShare, n)
	for i := range out {
		out[i] = AuthShare{Share: shares[i], MAC: macs[i]}
	}
	return out
}

// Triple is a Beaver multiplication triple: per-party AuthShares of A, B, C
// such that summing each field across all parties yields A*B = C
// (spec.md §3 Preprocessing item).
type Triple struct {
	A, B, C AuthShare
}

// AuthTriple generates a consistent Beaver triple and authenticates its
// three components for n parties under alpha. Used only by the in-memory
// preprocessing of core/harness; real triple generation is out of
// scope per spec.md §1. Grounded on original_source/src/crypto.rs's
// auth_triple.
func AuthTriple(alpha field.Fp, n int) []Triple {
	a := field.Random()
	b := field.Random()
	c := a.Mul(b)

	aShares := AuthSplit(a, alpha, n)
	bShares := AuthSplit(b, alpha, n)
	cShares := AuthSplit(c, alpha, n)

	out := make([]Triple, n)
	for i := range out {
		out[i] = Triple{A: aShares[i], B: bShares[i], C: cShares[i]}
	}
	return out
}

// RandShare is one party's share of a uniformly random field element r used
// to mask a private input. Exactly the party whose index equals PartyID
// receives the clear value r; every other party's Clear is nil
// (spec.md §3 Preprocessing item).
type RandShare struct {
	Share   AuthShare
	Clear   *field.Fp
	PartyID int
}

// AuthRandShares generates a fresh random mask owned by owner and
// authenticates it for n parties under alpha, returning one RandShare per
// party (only the owner's entry carries Clear).
func AuthRandShares(owner int, alpha field.Fp, n int) []RandShare {
	r := field.Random()
	shares := AuthSplit(r, alpha, n)
	out := make([]RandShare, n)
	for i := range out {
		out[i] = RandShare{Share: shares[i], PartyID: owner}
		if i == owner {
			rCopy := r
			out[i].Clear = &rCopy
		}
	}
	return out
}
