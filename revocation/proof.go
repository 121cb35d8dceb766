package revocation

import (
	"math/big"

	"github.com/cloudflare/bn256"
	"github.com/go-errors/errors"
)

// ProofCList holds the blinded commitment points of a non-revocation proof:
// the holder's credential values and witness, each shifted by a fresh
// multiple of a public generator.
type ProofCList struct {
	E *bn256.G1
	D *bn256.G1
	A *bn256.G1
	G *bn256.G1

	W *bn256.G2
	S *bn256.G2
	U *bn256.G2
}

// Bytes returns the canonical encodings of the commitment points, in
// transcript order.
func (c *ProofCList) Bytes() [][]byte {
	return [][]byte{
		c.E.Marshal(), c.D.Marshal(), c.A.Marshal(), c.G.Marshal(),
		c.W.Marshal(), c.S.Marshal(), c.U.Marshal(),
	}
}

func (c *ProofCList) wellFormed() bool {
	return c != nil && c.E != nil && c.D != nil && c.A != nil && c.G != nil &&
		c.W != nil && c.S != nil && c.U != nil
}

// ProofXList holds the sigma-protocol scalars of a non-revocation proof. On
// the prover side these are first the blinding values and later the
// challenge responses; the verifier only ever sees responses.
type ProofXList struct {
	Rho    *big.Int
	O      *big.Int
	C      *big.Int
	OPrime *big.Int

	M      *big.Int
	MPrime *big.Int
	T      *big.Int
	TPrime *big.Int

	M2 *big.Int
	S  *big.Int

	R                *big.Int
	RPrime           *big.Int
	RPrimePrime      *big.Int
	RPrimePrimePrime *big.Int
}

func (x *ProofXList) asList() []*big.Int {
	return []*big.Int{
		x.Rho, x.O, x.C, x.OPrime, x.M, x.MPrime, x.T, x.TPrime,
		x.M2, x.S, x.R, x.RPrime, x.RPrimePrime, x.RPrimePrimePrime,
	}
}

func xListFromList(l []*big.Int) *ProofXList {
	return &ProofXList{
		Rho: l[0], O: l[1], C: l[2], OPrime: l[3],
		M: l[4], MPrime: l[5], T: l[6], TPrime: l[7],
		M2: l[8], S: l[9],
		R: l[10], RPrime: l[11], RPrimePrime: l[12], RPrimePrimePrime: l[13],
	}
}

func (x *ProofXList) wellFormed() bool {
	if x == nil {
		return false
	}
	for _, v := range x.asList() {
		if v == nil || v.Sign() < 0 || v.Cmp(bn256.Order) >= 0 {
			return false
		}
	}
	return true
}

func randomXList() *ProofXList {
	l := make([]*big.Int, 14)
	for i := range l {
		l[i] = randomScalar()
	}
	return xListFromList(l)
}

// TauList is the ordered list of sigma-protocol commitment values of a
// non-revocation proof, as they enter the challenge transcript.
type TauList struct {
	T1 *bn256.G1
	T2 *bn256.G1
	T3 *bn256.GT
	T4 *bn256.GT
	T5 *bn256.G1
	T6 *bn256.G1
	T7 *bn256.GT
	T8 *bn256.GT
}

// Bytes returns the canonical encodings of the commitment values, in
// transcript order.
func (t *TauList) Bytes() [][]byte {
	return [][]byte{
		t.T1.Marshal(), t.T2.Marshal(), t.T3.Marshal(), t.T4.Marshal(),
		t.T5.Marshal(), t.T6.Marshal(), t.T7.Marshal(), t.T8.Marshal(),
	}
}

func g1Mul(p *bn256.G1, k *big.Int) *bn256.G1 {
	return new(bn256.G1).ScalarMult(p, k)
}

func g1Add(ps ...*bn256.G1) *bn256.G1 {
	sum := ps[0]
	for _, p := range ps[1:] {
		sum = new(bn256.G1).Add(sum, p)
	}
	return sum
}

func g1Neg(p *bn256.G1) *bn256.G1 {
	return new(bn256.G1).Neg(p)
}

func gtMul(p *bn256.GT, k *big.Int) *bn256.GT {
	return new(bn256.GT).ScalarMult(p, k)
}

func gtAdd(ps ...*bn256.GT) *bn256.GT {
	sum := ps[0]
	for _, p := range ps[1:] {
		sum = new(bn256.GT).Add(sum, p)
	}
	return sum
}

func gtNeg(p *bn256.GT) *bn256.GT {
	return new(bn256.GT).Neg(p)
}

// CreateTauListValues evaluates the sigma-protocol commitment relations for
// the scalar vector x against the commitment points c. The prover calls it
// with blinding scalars to commit, the verifier with the proof's responses.
func CreateTauListValues(pk *PublicKey, acc *Accumulator, x *ProofXList, c *ProofCList) *TauList {
	hTildeHCap := bn256.Pair(pk.HTilde, pk.HCap)

	t1 := g1Add(g1Mul(pk.H, x.Rho), g1Mul(pk.HTilde, x.O))
	t2 := g1Add(g1Mul(c.E, x.C), g1Neg(g1Mul(pk.H, x.M)), g1Neg(g1Mul(pk.HTilde, x.T)))
	t3 := gtAdd(
		gtMul(bn256.Pair(c.A, pk.HCap), x.C),
		gtMul(hTildeHCap, x.R),
		gtNeg(gtAdd(
			gtMul(bn256.Pair(pk.HTilde, pk.Y), x.Rho),
			gtMul(hTildeHCap, x.M),
			gtMul(bn256.Pair(pk.H1, pk.HCap), x.M2),
			gtMul(bn256.Pair(pk.H2, pk.HCap), x.S))))
	t4 := gtAdd(
		gtMul(bn256.Pair(pk.HTilde, acc.Acc), x.R),
		gtMul(bn256.Pair(g1Neg(pk.G), pk.HCap), x.RPrime))
	t5 := g1Add(g1Mul(pk.G, x.R), g1Mul(pk.HTilde, x.OPrime))
	t6 := g1Add(g1Mul(c.D, x.RPrimePrime), g1Neg(g1Mul(pk.G, x.MPrime)), g1Neg(g1Mul(pk.HTilde, x.TPrime)))
	t7 := gtAdd(
		gtMul(bn256.Pair(g1Add(pk.PK, c.G), pk.HCap), x.RPrimePrime),
		gtNeg(gtMul(hTildeHCap, x.MPrime)),
		gtMul(bn256.Pair(pk.HTilde, c.S), x.R))
	t8 := gtAdd(
		gtMul(bn256.Pair(pk.HTilde, pk.U), x.R),
		gtMul(bn256.Pair(g1Neg(pk.G), pk.HCap), x.RPrimePrimePrime))

	return &TauList{T1: t1, T2: t2, T3: t3, T4: t4, T5: t5, T6: t6, T7: t7, T8: t8}
}

// CreateTauListExpectedValues evaluates the public side of every commitment
// relation: the values the prover's commitments must open to under the
// challenge, determined entirely by public key, accumulator state and the
// proof's commitment points.
func CreateTauListExpectedValues(pk *PublicKey, acc *Accumulator, accPK *AccumulatorPublicKey, c *ProofCList) *TauList {
	identity := new(bn256.G1).ScalarBaseMult(big.NewInt(0))

	t1 := c.E
	t2 := identity
	t3 := gtAdd(
		bn256.Pair(g1Add(pk.H0, c.G), pk.HCap),
		gtNeg(bn256.Pair(c.A, pk.Y)))
	t4 := gtAdd(
		bn256.Pair(c.G, acc.Acc),
		gtNeg(bn256.Pair(pk.G, c.W)),
		gtNeg(accPK.Z))
	t5 := c.D
	t6 := identity
	t7 := gtAdd(
		bn256.Pair(g1Add(pk.PK, c.G), c.S),
		gtNeg(bn256.Pair(pk.G, pk.GDash)))
	t8 := gtAdd(
		bn256.Pair(c.G, pk.U),
		gtNeg(bn256.Pair(pk.G, c.U)))

	return &TauList{T1: t1, T2: t2, T3: t3, T4: t4, T5: t5, T6: t6, T7: t7, T8: t8}
}

// Proof is a finalized non-revocation proof: the challenge responses for
// every protocol scalar plus the blinded commitment points.
type Proof struct {
	XList *ProofXList
	CList *ProofCList
}

// WellFormed reports whether every component of the proof is present and
// every scalar is a canonical group order element.
func (p *Proof) WellFormed() bool {
	return p != nil && p.XList.wellFormed() && p.CList.wellFormed()
}

// InitProof is the prover's state between committing and receiving the
// aggregate challenge.
type InitProof struct {
	CList   *ProofCList
	TauList *TauList

	cListParams   *ProofXList
	tauListParams *ProofXList
}

// NewInitProof commits to the holder's revocation credential and witness:
// it blinds them into a commitment point list and evaluates the protocol
// relations over fresh blinding scalars.
func NewInitProof(cred *Credential, acc *Accumulator, pk *PublicKey) (*InitProof, error) {
	if cred == nil || cred.Witness == nil {
		return nil, errors.New("incomplete revocation credential")
	}

	cListParams := &ProofXList{
		Rho:              randomScalar(),
		O:                randomScalar(),
		C:                cred.C,
		OPrime:           randomScalar(),
		M2:               new(big.Int).Mod(cred.M2, bn256.Order),
		S:                cred.VrPrimePrime,
		R:                randomScalar(),
		RPrime:           randomScalar(),
		RPrimePrime:      randomScalar(),
		RPrimePrimePrime: randomScalar(),
	}
	cListParams.M = mulScalar(cListParams.Rho, cred.C)
	cListParams.MPrime = mulScalar(cListParams.R, cListParams.RPrimePrime)
	cListParams.T = mulScalar(cListParams.O, cred.C)
	cListParams.TPrime = mulScalar(cListParams.OPrime, cListParams.RPrimePrime)

	cList := &ProofCList{
		E: g1Add(g1Mul(pk.H, cListParams.Rho), g1Mul(pk.HTilde, cListParams.O)),
		D: g1Add(g1Mul(pk.G, cListParams.R), g1Mul(pk.HTilde, cListParams.OPrime)),
		A: g1Add(cred.Sigma, g1Mul(pk.HTilde, cListParams.Rho)),
		G: g1Add(cred.GI, g1Mul(pk.HTilde, cListParams.R)),
		W: new(bn256.G2).Add(cred.Witness.Omega, new(bn256.G2).ScalarMult(pk.HCap, cListParams.RPrime)),
		S: new(bn256.G2).Add(cred.Witness.SigmaI, new(bn256.G2).ScalarMult(pk.HCap, cListParams.RPrimePrime)),
		U: new(bn256.G2).Add(cred.Witness.UI, new(bn256.G2).ScalarMult(pk.HCap, cListParams.RPrimePrimePrime)),
	}

	tauListParams := randomXList()
	tauList := CreateTauListValues(pk, acc, tauListParams, cList)

	return &InitProof{
		CList:         cList,
		TauList:       tauList,
		cListParams:   cListParams,
		tauListParams: tauListParams,
	}, nil
}

// Finalize turns the committed state into challenge responses:
// xhat = xtilde - ch*x for every protocol scalar, modulo the group order.
func (p *InitProof) Finalize(challenge *big.Int) *Proof {
	ch := ChallengeScalar(challenge)
	tilde := p.tauListParams.asList()
	secret := p.cListParams.asList()
	hats := make([]*big.Int, len(tilde))
	for i := range tilde {
		hat := new(big.Int).Mul(ch, secret[i])
		hat.Sub(tilde[i], hat)
		hats[i] = hat.Mod(hat, bn256.Order)
	}
	return &Proof{XList: xListFromList(hats), CList: p.CList}
}

// RecomputeTauList rebuilds the prover's original commitment values from a
// finalized proof and the challenge: expected^ch combined with the relation
// evaluated over the responses.
func RecomputeTauList(pk *PublicKey, acc *Accumulator, accPK *AccumulatorPublicKey, challenge *big.Int, proof *Proof) *TauList {
	ch := ChallengeScalar(challenge)
	expected := CreateTauListExpectedValues(pk, acc, accPK, proof.CList)
	calc := CreateTauListValues(pk, acc, proof.XList, proof.CList)

	return &TauList{
		T1: g1Add(g1Mul(expected.T1, ch), calc.T1),
		T2: g1Add(g1Mul(expected.T2, ch), calc.T2),
		T3: gtAdd(gtMul(expected.T3, ch), calc.T3),
		T4: gtAdd(gtMul(expected.T4, ch), calc.T4),
		T5: g1Add(g1Mul(expected.T5, ch), calc.T5),
		T6: g1Add(g1Mul(expected.T6, ch), calc.T6),
		T7: gtAdd(gtMul(expected.T7, ch), calc.T7),
		T8: gtAdd(gtMul(expected.T8, ch), calc.T8),
	}
}

// ChallengeScalar reduces an aggregate Fiat-Shamir challenge to a group
// order element.
func ChallengeScalar(challenge *big.Int) *big.Int {
	return new(big.Int).Mod(challenge, bn256.Order)
}

func mulScalar(a, b *big.Int) *big.Int {
	m := new(big.Int).Mul(a, b)
	return m.Mod(m, bn256.Order)
}
