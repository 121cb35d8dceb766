package indycrypto

import (
	"math/big"

	"github.com/go-errors/errors"

	"github.com/dhuseby/indy-crypto/internal/common"
	"github.com/dhuseby/indy-crypto/revocation"
)

// ProofVerifier accumulates one sub-proof request per credential and then
// verifies an aggregate proof against them. Requests must be added in the
// same order the prover used; insertion order is part of the challenge
// binding. A verifier produces exactly one verification result and cannot
// be reused afterwards.
type ProofVerifier struct {
	entries  []*verifierEntry
	keyIDs   map[string]struct{}
	verified bool
}

type verifierEntry struct {
	keyID  string
	req    *SubProofRequest
	schema *Schema
	pk     *IssuerPublicKey
	revKey *RevocationPublicKey
}

// NewProofVerifier returns an empty proof verifier.
func NewProofVerifier() *ProofVerifier {
	return &ProofVerifier{keyIDs: make(map[string]struct{})}
}

// AddSubProofRequest appends one credential's verification request under
// the given key id. The revocation key may be nil when no non-revocation
// proof is expected for this credential.
func (v *ProofVerifier) AddSubProofRequest(keyID string, req *SubProofRequest, schema *Schema, pk *IssuerPublicKey, revKey *RevocationPublicKey) error {
	if v.verified {
		return errors.WrapPrefix(ErrInvalidState, "proof verifier already consumed", 0)
	}
	if _, ok := v.keyIDs[keyID]; ok {
		return errors.WrapPrefix(ErrDuplicateKeyID, keyID, 0)
	}
	if err := req.ValidateAgainst(schema); err != nil {
		return err
	}
	Logger.Tracef("proof verifier: adding sub proof request %q", keyID)

	v.keyIDs[keyID] = struct{}{}
	v.entries = append(v.entries, &verifierEntry{keyID: keyID, req: req, schema: schema, pk: pk, revKey: revKey})
	return nil
}

// Verify checks the proof against the accumulated requests and the nonce.
// A false return with a nil error means the proof is well formed but
// cryptographically invalid; errors are reserved for structural problems
// and misuse. The verifier is consumed regardless of the outcome.
func (v *ProofVerifier) Verify(proof *Proof, nonce *Nonce) (bool, error) {
	if v.verified {
		return false, errors.WrapPrefix(ErrInvalidState, "proof verifier already consumed", 0)
	}
	v.verified = true

	if proof == nil || proof.CHash == nil || nonce == nil || nonce.Value == nil {
		return false, errors.WrapPrefix(ErrInvalidStructure, "missing proof or nonce", 0)
	}
	if len(proof.SubProofs) != len(v.entries) {
		return false, errors.WrapPrefix(ErrProofRejected, "sub proof count mismatch", 0)
	}
	Logger.Tracef("proof verifier: verifying proof over %d sub proofs", len(v.entries))

	var ts transcript
	for i, entry := range v.entries {
		sub := proof.SubProofs[i]
		if err := entry.checkShape(sub); err != nil {
			return false, err
		}

		if sub.NonRevocation != nil {
			tauList := revocation.RecomputeTauList(entry.revKey.Key, entry.revKey.Accumulator,
				entry.revKey.AccumulatorKey, proof.CHash, sub.NonRevocation)
			ts.addTauBytes(tauList.Bytes()...)
			ts.addCommitmentBytes(sub.NonRevocation.CList.Bytes()...)
		}

		eq := sub.Primary.EqProof
		tEq, err := entry.recomputeEqualityCommitment(eq, proof.CHash)
		if err != nil {
			return false, err
		}
		ts.addTauInt(tEq, entry.pk)
		ts.addCommitmentInt(eq.APrime, entry.pk)

		for _, ge := range sub.Primary.GEProofs {
			// The predicate response must be the equality proof's
			// response for the same attribute, otherwise the
			// predicate says nothing about the signed value.
			if ref, ok := eq.M[ge.Predicate.AttrName]; !ok || ref.Cmp(ge.Mj) != 0 {
				return false, nil
			}
			taus, err := entry.recomputePredicateCommitments(ge, proof.CHash)
			if err != nil {
				return false, err
			}
			for _, tau := range taus {
				ts.addTauInt(tau, entry.pk)
			}
			for j := 0; j < 4; j++ {
				ts.addCommitmentInt(ge.T[j], entry.pk)
			}
			ts.addCommitmentInt(ge.TDelta, entry.pk)
		}
	}

	valid := ts.challenge(nonce).Cmp(proof.CHash) == 0
	Logger.Tracef("proof verifier: result %t", valid)
	return valid, nil
}

// checkShape validates one sub-proof's structure against its request before
// any arithmetic: presence and well-formedness of every component, response
// widths, the revocation flag, the revealed attribute set and the predicate
// list.
func (e *verifierEntry) checkShape(sub *SubProof) error {
	if sub == nil || sub.Primary == nil || !sub.Primary.EqProof.wellFormed() {
		return errors.WrapPrefix(ErrInvalidStructure, "malformed sub proof", 0)
	}
	if (sub.NonRevocation != nil) != (e.revKey != nil) {
		return errors.WrapPrefix(ErrProofRejected, "revocation flag mismatch", 0)
	}
	if sub.NonRevocation != nil && !sub.NonRevocation.WellFormed() {
		return errors.WrapPrefix(ErrInvalidStructure, "malformed non-revocation proof", 0)
	}

	eq := sub.Primary.EqProof
	if !eq.correctResponseSizes(e.pk.Params) {
		return errors.WrapPrefix(ErrInvalidStructure, "equality proof response out of range", 0)
	}
	if len(eq.RevealedAttrs) != len(e.req.RevealedAttrs) {
		return errors.WrapPrefix(ErrProofRejected, "revealed attribute set mismatch", 0)
	}
	for _, name := range e.req.revealedNames() {
		if _, ok := eq.RevealedAttrs[name]; !ok {
			return errors.WrapPrefix(ErrProofRejected, "revealed attribute set mismatch", 0)
		}
	}
	if len(eq.M) != len(e.hiddenAttrs()) {
		return errors.WrapPrefix(ErrInvalidStructure, "hidden attribute response set mismatch", 0)
	}

	if len(sub.Primary.GEProofs) != len(e.req.Predicates) {
		return errors.WrapPrefix(ErrProofRejected, "predicate proof count mismatch", 0)
	}
	for i, ge := range sub.Primary.GEProofs {
		if !ge.wellFormed() {
			return errors.WrapPrefix(ErrInvalidStructure, "malformed predicate proof", 0)
		}
		if !ge.correctResponseSizes(e.pk.Params) {
			return errors.WrapPrefix(ErrInvalidStructure, "predicate proof response out of range", 0)
		}
		if !ge.Predicate.Equal(e.req.Predicates[i]) {
			return errors.WrapPrefix(ErrProofRejected, "predicate mismatch", 0)
		}
	}
	return nil
}

// recomputeEqualityCommitment rebuilds the prover's signature-possession
// commitment:
//
//	(Z / (prod R_i^{a_i} * APrime^(2^LeStart)))^(-c) *
//	APrime^e * prod R_i^{m_i} * RMS^m1 * RCtxt^m2 * S^v mod N
func (e *verifierEntry) recomputeEqualityCommitment(eq *PrimaryEqualProof, challenge *big.Int) (*big.Int, error) {
	pk := e.pk

	tHat, err := calcTeq(pk, eq.APrime, eq.E, eq.V, eq.M1, eq.M2, eq.M, e.hiddenAttrs())
	if err != nil {
		return nil, structureErr(err)
	}

	rar := new(big.Int).Exp(eq.APrime, new(big.Int).Lsh(bigONE, pk.Params.LeStart), pk.N)
	for name, value := range eq.RevealedAttrs {
		base, ok := pk.R[name]
		if !ok {
			return nil, errors.WrapPrefix(ErrInvalidStructure, "attribute "+name+" not in issuer key", 0)
		}
		f, err := common.ModPow(base, value, pk.N)
		if err != nil {
			return nil, structureErr(err)
		}
		rar.Mul(rar, f).Mod(rar, pk.N)
	}
	rarInverse, ok := common.ModInverse(rar, pk.N)
	if !ok {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "degenerate revealed attribute term", 0)
	}
	zDivRar := new(big.Int).Mul(pk.Z, rarInverse)
	zDivRar.Mod(zDivRar, pk.N)

	t, err := common.ModPow(zDivRar, new(big.Int).Neg(challenge), pk.N)
	if err != nil {
		return nil, structureErr(err)
	}
	t.Mul(t, tHat)
	return t.Mod(t, pk.N), nil
}

// recomputePredicateCommitments rebuilds the six commitment values of one
// predicate proof from its responses and the challenge.
func (e *verifierEntry) recomputePredicateCommitments(ge *PrimaryPredicateGEProof, challenge *big.Int) ([]*big.Int, error) {
	pk := e.pk
	negC := new(big.Int).Neg(challenge)

	taus, err := calcTge(pk, ge.U, ge.R, ge.RDelta, ge.Mj, ge.Alpha, ge.T)
	if err != nil {
		return nil, structureErr(err)
	}

	for i := 0; i < 4; i++ {
		f, err := common.ModPow(ge.T[i], negC, pk.N)
		if err != nil {
			return nil, structureErr(err)
		}
		taus[i].Mul(taus[i], f).Mod(taus[i], pk.N)
	}

	// tau_delta opens against Z^k * TDelta, folding the public threshold
	// into the commitment.
	zk, err := pk.ExpZ(big.NewInt(ge.Predicate.Value))
	if err != nil {
		return nil, structureErr(err)
	}
	zkT := new(big.Int).Mul(zk, ge.TDelta)
	zkT.Mod(zkT, pk.N)
	f, err := common.ModPow(zkT, negC, pk.N)
	if err != nil {
		return nil, structureErr(err)
	}
	taus[4].Mul(taus[4], f).Mod(taus[4], pk.N)

	f, err = common.ModPow(ge.TDelta, negC, pk.N)
	if err != nil {
		return nil, structureErr(err)
	}
	taus[5].Mul(taus[5], f).Mod(taus[5], pk.N)

	return taus, nil
}

// structureErr maps arithmetic failures caused by adversarial inputs, such
// as a proof value with no modular inverse, onto the structure error.
func structureErr(err error) error {
	if errors.Is(err, common.ErrNoModInverse) {
		return errors.WrapPrefix(ErrInvalidStructure, "proof value not invertible", 0)
	}
	return err
}

// hiddenAttrs returns the non-revealed schema attributes in schema order.
func (e *verifierEntry) hiddenAttrs() []string {
	hidden := make([]string, 0, len(e.schema.AttrNames))
	for _, name := range e.schema.AttrNames {
		if _, revealed := e.req.RevealedAttrs[name]; !revealed {
			hidden = append(hidden, name)
		}
	}
	return hidden
}
