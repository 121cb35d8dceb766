package indycrypto

import (
	"math/big"

	"github.com/dhuseby/indy-crypto/revocation"
)

// PrimaryEqualProof proves knowledge of a CL signature over the credential's
// attributes, revealing the values in RevealedAttrs and proving knowledge of
// the rest. APrime is the randomized signature component; E, V, M, M1 and M2
// are the challenge responses for the signature exponent, the randomizer,
// the hidden attributes, the master secret and the credential context.
type PrimaryEqualProof struct {
	RevealedAttrs map[string]*big.Int
	APrime        *big.Int
	E             *big.Int
	V             *big.Int
	M             map[string]*big.Int
	M1            *big.Int
	M2            *big.Int
}

// PrimaryPredicateGEProof proves attr >= k over a hidden attribute, by
// proving knowledge of a four-square decomposition of the difference.
// U and R hold the responses for the squares and their commitment
// randomizers, T the commitments; Mj must equal the equality proof's
// response for the same attribute, which binds the predicate to the
// credential.
type PrimaryPredicateGEProof struct {
	U      [4]*big.Int
	R      [4]*big.Int
	RDelta *big.Int
	Mj     *big.Int
	Alpha  *big.Int

	T      [4]*big.Int
	TDelta *big.Int

	Predicate Predicate
}

// PrimaryProof is the CL-signature part of one credential's sub-proof.
type PrimaryProof struct {
	EqProof  *PrimaryEqualProof
	GEProofs []*PrimaryPredicateGEProof
}

// SubProof is the portion of an aggregate proof covering one credential:
// the primary signature-possession proof and, when the credential is held
// against a revocation registry, a non-revocation proof.
type SubProof struct {
	Primary       *PrimaryProof
	NonRevocation *revocation.Proof
}

// Proof is an aggregate zero-knowledge proof over one or more credentials,
// bound together by a single Fiat-Shamir challenge.
type Proof struct {
	SubProofs []*SubProof
	CHash     *big.Int
}

func (p *PrimaryEqualProof) wellFormed() bool {
	if p == nil || p.APrime == nil || p.E == nil || p.V == nil || p.M1 == nil || p.M2 == nil {
		return false
	}
	if p.APrime.Sign() <= 0 {
		return false
	}
	for _, v := range p.RevealedAttrs {
		if v == nil {
			return false
		}
	}
	for _, v := range p.M {
		if v == nil {
			return false
		}
	}
	return true
}

func (p *PrimaryPredicateGEProof) wellFormed() bool {
	if p == nil || p.RDelta == nil || p.Mj == nil || p.Alpha == nil || p.TDelta == nil {
		return false
	}
	if p.TDelta.Sign() <= 0 {
		return false
	}
	for i := 0; i < 4; i++ {
		if p.U[i] == nil || p.R[i] == nil || p.T[i] == nil || p.T[i].Sign() <= 0 {
			return false
		}
	}
	return true
}

// correctResponseSizes checks that the challenge responses are within the
// widths the system parameters permit; anything wider cannot have been
// produced by an honest prover and is rejected before any arithmetic.
func (p *PrimaryEqualProof) correctResponseSizes(params *SystemParameters) bool {
	maximum := new(big.Int).Lsh(bigONE, params.LeTilde+1)
	if p.E.Cmp(maximum) >= 0 {
		return false
	}
	maximum.Lsh(bigONE, params.LmTilde+1)
	if p.M1.Cmp(maximum) >= 0 || p.M2.Cmp(maximum) >= 0 {
		return false
	}
	for _, m := range p.M {
		if m.Cmp(maximum) >= 0 {
			return false
		}
	}
	return true
}

func (p *PrimaryPredicateGEProof) correctResponseSizes(params *SystemParameters) bool {
	maximum := new(big.Int).Lsh(bigONE, params.LuTilde+1)
	for i := 0; i < 4; i++ {
		if p.U[i].Cmp(maximum) >= 0 {
			return false
		}
	}
	maximum.Lsh(bigONE, params.LmTilde+1)
	return p.Mj.Cmp(maximum) < 0
}
