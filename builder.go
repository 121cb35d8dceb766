package indycrypto

import (
	"math/big"

	"github.com/go-errors/errors"

	"github.com/dhuseby/indy-crypto/internal/common"
	"github.com/dhuseby/indy-crypto/revocation"
)

// Credential is the holder's side of an issued credential: the CL signature
// together with everything it signs, plus the revocation credential when
// the issuer maintains a registry.
type Credential struct {
	Signature    *CLSignature
	MasterSecret *big.Int
	Context      *big.Int
	Attributes   map[string]*big.Int

	NonRevocation *revocation.Credential
}

// RevocationPublicKey bundles the public revocation state both sides of a
// non-revocation proof evaluate against: the registry key, the current
// accumulator and the accumulator's pairing constant.
type RevocationPublicKey struct {
	Key            *revocation.PublicKey
	Accumulator    *revocation.Accumulator
	AccumulatorKey *revocation.AccumulatorPublicKey
}

// ProofBuilder accumulates one credential per sub-proof request and builds
// the aggregate proof under a single Fiat-Shamir challenge. Requests must be
// added in the same order the verifier will use. A builder produces one
// proof and cannot be reused afterwards.
type ProofBuilder struct {
	entries   []*builderEntry
	keyIDs    map[string]struct{}
	finalized bool
}

type builderEntry struct {
	keyID  string
	req    *SubProofRequest
	schema *Schema
	pk     *IssuerPublicKey
	cred   *Credential

	aPrime *big.Int
	ePrime *big.Int
	vPrime *big.Int

	eTilde  *big.Int
	vTilde  *big.Int
	m1Tilde *big.Int
	m2Tilde *big.Int
	mTilde  map[string]*big.Int
	tEq     *big.Int

	geStates []*geCommitState

	revInit *revocation.InitProof
}

type geCommitState struct {
	pred Predicate

	u      [4]*big.Int
	r      [4]*big.Int
	rDelta *big.Int
	alpha  *big.Int

	uTilde      [4]*big.Int
	rTilde      [4]*big.Int
	rDeltaTilde *big.Int
	alphaTilde  *big.Int

	t       [4]*big.Int
	tDelta  *big.Int
	tauList []*big.Int
}

// NewProofBuilder returns an empty proof builder.
func NewProofBuilder() *ProofBuilder {
	return &ProofBuilder{keyIDs: make(map[string]struct{})}
}

// AddSubProofRequest commits to one credential under the given request. The
// revocation key may be nil when the credential is not held against a
// registry; when it is not nil the credential must carry its revocation
// part.
func (b *ProofBuilder) AddSubProofRequest(keyID string, req *SubProofRequest, schema *Schema, pk *IssuerPublicKey, cred *Credential, revKey *RevocationPublicKey) error {
	if b.finalized {
		return errors.WrapPrefix(ErrInvalidState, "proof builder already finalized", 0)
	}
	if _, ok := b.keyIDs[keyID]; ok {
		return errors.WrapPrefix(ErrDuplicateKeyID, keyID, 0)
	}
	if err := req.ValidateAgainst(schema); err != nil {
		return err
	}
	if revKey != nil && cred.NonRevocation == nil {
		return errors.WrapPrefix(ErrInvalidStructure, "credential has no revocation part", 0)
	}
	Logger.Tracef("proof builder: adding sub proof request %q", keyID)

	entry := &builderEntry{keyID: keyID, req: req, schema: schema, pk: pk, cred: cred}
	if err := entry.commitPrimary(); err != nil {
		return err
	}
	if revKey != nil {
		revInit, err := revocation.NewInitProof(cred.NonRevocation, revKey.Accumulator, revKey.Key)
		if err != nil {
			return err
		}
		entry.revInit = revInit
	}

	b.keyIDs[keyID] = struct{}{}
	b.entries = append(b.entries, entry)
	return nil
}

// commitPrimary randomizes the signature, draws the blinding values of the
// equality proof and of every predicate proof, and evaluates their
// commitment expressions.
func (e *builderEntry) commitPrimary() error {
	pk, params, sig := e.pk, e.pk.Params, e.cred.Signature

	r := common.FastRandomBits(params.LrPrime, false)
	sr, err := pk.ExpS(r)
	if err != nil {
		return err
	}
	e.aPrime = new(big.Int).Mul(sig.A, sr)
	e.aPrime.Mod(e.aPrime, pk.N)
	e.vPrime = new(big.Int).Sub(sig.V, new(big.Int).Mul(sig.E, r))
	e.ePrime = new(big.Int).Sub(sig.E, new(big.Int).Lsh(bigONE, params.LeStart))

	e.eTilde = common.FastRandomBits(params.LeTilde, false)
	e.vTilde = common.FastRandomBits(params.LvTilde, false)
	e.m1Tilde = common.FastRandomBits(params.LmTilde, false)
	e.m2Tilde = common.FastRandomBits(params.LmTilde, false)
	e.mTilde = make(map[string]*big.Int)
	for _, name := range e.hiddenAttrs() {
		if _, ok := e.cred.Attributes[name]; !ok {
			return errors.WrapPrefix(ErrInvalidStructure, "credential lacks attribute "+name, 0)
		}
		e.mTilde[name] = common.FastRandomBits(params.LmTilde, false)
	}
	e.tEq, err = calcTeq(pk, e.aPrime, e.eTilde, e.vTilde, e.m1Tilde, e.m2Tilde, e.mTilde, e.hiddenAttrs())
	if err != nil {
		return err
	}

	for _, pred := range e.req.Predicates {
		ge, err := e.commitPredicate(pred)
		if err != nil {
			return err
		}
		e.geStates = append(e.geStates, ge)
	}
	return nil
}

func (e *builderEntry) commitPredicate(pred Predicate) (*geCommitState, error) {
	pk, params := e.pk, e.pk.Params

	value, ok := e.cred.Attributes[pred.AttrName]
	if !ok {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "credential lacks attribute "+pred.AttrName, 0)
	}
	delta := new(big.Int).Sub(value, big.NewInt(pred.Value))
	if delta.Sign() < 0 {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "predicate not satisfied by attribute "+pred.AttrName, 0)
	}

	ge := &geCommitState{pred: pred}
	ge.u[0], ge.u[1], ge.u[2], ge.u[3] = common.SumFourSquares(delta)

	for i := 0; i < 4; i++ {
		ge.r[i] = common.FastRandomBits(params.LrPrime, false)
		t, err := zsExp(pk, ge.u[i], ge.r[i])
		if err != nil {
			return nil, err
		}
		ge.t[i] = t
	}
	ge.rDelta = common.FastRandomBits(params.LrPrime, false)
	tDelta, err := zsExp(pk, delta, ge.rDelta)
	if err != nil {
		return nil, err
	}
	ge.tDelta = tDelta

	// alpha = rDelta - sum u_i * r_i, over the integers
	ge.alpha = new(big.Int).Set(ge.rDelta)
	for i := 0; i < 4; i++ {
		ge.alpha.Sub(ge.alpha, new(big.Int).Mul(ge.u[i], ge.r[i]))
	}

	for i := 0; i < 4; i++ {
		ge.uTilde[i] = common.FastRandomBits(params.LuTilde, false)
		ge.rTilde[i] = common.FastRandomBits(params.LrTilde, false)
	}
	ge.rDeltaTilde = common.FastRandomBits(params.LrTilde, false)
	ge.alphaTilde = common.FastRandomBits(params.LalphaTilde, false)

	ge.tauList, err = calcTge(pk, ge.uTilde, ge.rTilde, ge.rDeltaTilde, e.mTilde[pred.AttrName], ge.alphaTilde, ge.t)
	if err != nil {
		return nil, err
	}
	return ge, nil
}

// hiddenAttrs returns the non-revealed schema attributes in schema order.
func (e *builderEntry) hiddenAttrs() []string {
	hidden := make([]string, 0, len(e.schema.AttrNames))
	for _, name := range e.schema.AttrNames {
		if _, revealed := e.req.RevealedAttrs[name]; !revealed {
			hidden = append(hidden, name)
		}
	}
	return hidden
}

// Finalize hashes the accumulated commitments together with the nonce into
// the aggregate challenge and turns every committed value into its
// response. The builder cannot be used afterwards.
func (b *ProofBuilder) Finalize(nonce *Nonce) (*Proof, error) {
	if b.finalized {
		return nil, errors.WrapPrefix(ErrInvalidState, "proof builder already finalized", 0)
	}
	if len(b.entries) == 0 {
		return nil, errors.WrapPrefix(ErrInvalidState, "no sub proof requests accumulated", 0)
	}
	b.finalized = true

	var ts transcript
	for _, e := range b.entries {
		if e.revInit != nil {
			ts.addTauBytes(e.revInit.TauList.Bytes()...)
			ts.addCommitmentBytes(e.revInit.CList.Bytes()...)
		}
		ts.addTauInt(e.tEq, e.pk)
		ts.addCommitmentInt(e.aPrime, e.pk)
		for _, ge := range e.geStates {
			for _, tau := range ge.tauList {
				ts.addTauInt(tau, e.pk)
			}
			for i := 0; i < 4; i++ {
				ts.addCommitmentInt(ge.t[i], e.pk)
			}
			ts.addCommitmentInt(ge.tDelta, e.pk)
		}
	}
	challenge := ts.challenge(nonce)

	subProofs := make([]*SubProof, 0, len(b.entries))
	for _, e := range b.entries {
		sub := &SubProof{Primary: e.finalizePrimary(challenge)}
		if e.revInit != nil {
			sub.NonRevocation = e.revInit.Finalize(challenge)
		}
		subProofs = append(subProofs, sub)
	}
	return &Proof{SubProofs: subProofs, CHash: challenge}, nil
}

func (e *builderEntry) finalizePrimary(challenge *big.Int) *PrimaryProof {
	eq := &PrimaryEqualProof{
		RevealedAttrs: make(map[string]*big.Int, len(e.req.RevealedAttrs)),
		APrime:        e.aPrime,
		E:             respond(e.eTilde, challenge, e.ePrime),
		V:             respond(e.vTilde, challenge, e.vPrime),
		M:             make(map[string]*big.Int, len(e.mTilde)),
		M1:            respond(e.m1Tilde, challenge, e.cred.MasterSecret),
		M2:            respond(e.m2Tilde, challenge, e.cred.Context),
	}
	for name := range e.req.RevealedAttrs {
		eq.RevealedAttrs[name] = e.cred.Attributes[name]
	}
	for name, tilde := range e.mTilde {
		eq.M[name] = respond(tilde, challenge, e.cred.Attributes[name])
	}

	proof := &PrimaryProof{EqProof: eq}
	for _, ge := range e.geStates {
		geProof := &PrimaryPredicateGEProof{
			RDelta:    respond(ge.rDeltaTilde, challenge, ge.rDelta),
			Mj:        eq.M[ge.pred.AttrName],
			Alpha:     respond(ge.alphaTilde, challenge, ge.alpha),
			TDelta:    ge.tDelta,
			Predicate: ge.pred,
		}
		for i := 0; i < 4; i++ {
			geProof.U[i] = respond(ge.uTilde[i], challenge, ge.u[i])
			geProof.R[i] = respond(ge.rTilde[i], challenge, ge.r[i])
			geProof.T[i] = ge.t[i]
		}
		proof.GEProofs = append(proof.GEProofs, geProof)
	}
	return proof
}

// respond computes tilde + challenge*secret over the integers.
func respond(tilde, challenge, secret *big.Int) *big.Int {
	r := new(big.Int).Mul(challenge, secret)
	return r.Add(tilde, r)
}
