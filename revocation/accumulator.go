// Package revocation implements non-revocation proofs against a
// pairing-based cryptographic accumulator. The registry holder accumulates
// issued credential indices; a holder proves in zero knowledge that their
// index is a member of the accumulator without revealing which one.
package revocation

import (
	"crypto/rand"
	"math/big"

	"github.com/cloudflare/bn256"
	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"
	"github.com/sirupsen/logrus"

	"github.com/dhuseby/indy-crypto/internal/common"
)

var Logger *logrus.Logger

// PublicKey is the public part of a revocation registry key pair: the group
// generators the membership equations are evaluated over, together with
// pk = g*sk and y = hcap*x.
type PublicKey struct {
	G     *bn256.G1
	GDash *bn256.G2

	H      *bn256.G1
	H0     *bn256.G1
	H1     *bn256.G1
	H2     *bn256.G1
	HTilde *bn256.G1

	HCap *bn256.G2
	U    *bn256.G2

	PK *bn256.G1
	Y  *bn256.G2
}

// PrivateKey is the private part of a revocation registry key pair.
type PrivateKey struct {
	X  *big.Int
	SK *big.Int
}

// NewKeys generates a revocation registry key pair.
func NewKeys() (*PublicKey, *PrivateKey, error) {
	pub := &PublicKey{}
	priv := &PrivateKey{
		X:  randomScalar(),
		SK: randomScalar(),
	}
	var err error
	for _, p := range []**bn256.G1{&pub.G, &pub.H, &pub.H0, &pub.H1, &pub.H2, &pub.HTilde} {
		if _, *p, err = bn256.RandomG1(rand.Reader); err != nil {
			return nil, nil, err
		}
	}
	for _, p := range []**bn256.G2{&pub.GDash, &pub.HCap, &pub.U} {
		if _, *p, err = bn256.RandomG2(rand.Reader); err != nil {
			return nil, nil, err
		}
	}
	pub.PK = new(bn256.G1).ScalarMult(pub.G, priv.SK)
	pub.Y = new(bn256.G2).ScalarMult(pub.HCap, priv.X)
	return pub, priv, nil
}

// Accumulator is the public accumulator value together with the set of
// member indices it currently covers.
type Accumulator struct {
	Acc        *bn256.G2
	V          []uint32
	MaxCredNum uint32
}

// AccumulatorPublicKey carries z = e(g, gdash)^(gamma^(L+1)), the pairing
// constant the accumulator membership equation is checked against.
type AccumulatorPublicKey struct {
	Z *bn256.GT
}

// Tails holds the registry's tails vectors: g*gamma^i in both source groups
// for i in [1, 2L] excluding L+1. They are public and content-addressed.
type Tails struct {
	G     []*bn256.G1
	GDash []*bn256.G2
}

// ID returns the content digest of the tails vectors as a base58 multihash.
func (t *Tails) ID() (string, error) {
	var data []byte
	for i := range t.G {
		if t.G[i] == nil {
			continue
		}
		data = append(data, t.G[i].Marshal()...)
		data = append(data, t.GDash[i].Marshal()...)
	}
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return mh.B58String(), nil
}

// Witness is a holder's membership witness for one accumulated index.
type Witness struct {
	SigmaI *bn256.G2
	UI     *bn256.G2
	Omega  *bn256.G2
	V      []uint32
}

// Credential is the revocation part of an issued credential: the issuer's
// signature sigma over the credential context m2 bound to tails index i,
// plus the membership witness.
type Credential struct {
	I            uint32
	Sigma        *bn256.G1
	C            *big.Int
	VrPrimePrime *big.Int
	M2           *big.Int
	GI           *bn256.G1
	Witness      *Witness
}

// Registry is the issuer-side state of a revocation registry: the
// accumulator private exponent gamma, the tails vectors derived from it and
// the current accumulator value.
type Registry struct {
	PublicKey  *PublicKey
	PrivateKey *PrivateKey

	gamma *big.Int
	tails *Tails

	Accumulator    *Accumulator
	AccumulatorKey *AccumulatorPublicKey
}

// NewRegistry creates a registry for at most maxCredNum credentials under
// the given key pair, with a fresh accumulator exponent and tails vectors.
func NewRegistry(pub *PublicKey, priv *PrivateKey, maxCredNum uint32) (*Registry, error) {
	if maxCredNum == 0 {
		return nil, errors.New("registry size must be positive")
	}
	gamma := randomScalar()

	size := 2*maxCredNum + 1
	tails := &Tails{
		G:     make([]*bn256.G1, size),
		GDash: make([]*bn256.G2, size),
	}
	gammaI := new(big.Int).Set(gamma)
	for i := uint32(1); i < size; i++ {
		if i != maxCredNum+1 {
			tails.G[i] = new(bn256.G1).ScalarMult(pub.G, gammaI)
			tails.GDash[i] = new(bn256.G2).ScalarMult(pub.GDash, gammaI)
		}
		gammaI.Mul(gammaI, gamma).Mod(gammaI, bn256.Order)
	}

	// z = e(g, gdash)^(gamma^(L+1))
	gammaL1 := new(big.Int).Exp(gamma, big.NewInt(int64(maxCredNum+1)), bn256.Order)
	z := new(bn256.GT).ScalarMult(bn256.Pair(pub.G, pub.GDash), gammaL1)

	return &Registry{
		PublicKey:  pub,
		PrivateKey: priv,
		gamma:      gamma,
		tails:      tails,
		Accumulator: &Accumulator{
			Acc:        new(bn256.G2).ScalarBaseMult(big.NewInt(0)),
			MaxCredNum: maxCredNum,
		},
		AccumulatorKey: &AccumulatorPublicKey{Z: z},
	}, nil
}

// Tails returns the registry's public tails vectors.
func (r *Registry) Tails() *Tails {
	return r.tails
}

// IssueCredential accumulates index i and returns the revocation credential
// binding the context value m2 to it, witness included. m2 must already be
// reduced modulo the group order.
func (r *Registry) IssueCredential(m2 *big.Int, i uint32) (*Credential, error) {
	if i == 0 || i > r.Accumulator.MaxCredNum {
		return nil, errors.Errorf("index %d outside registry range", i)
	}
	for _, j := range r.Accumulator.V {
		if j == i {
			return nil, errors.Errorf("index %d already accumulated", i)
		}
	}
	if Logger != nil {
		Logger.Tracef("revocation: issuing credential at index %d", i)
	}

	c := randomScalar()
	vrPrimePrime := randomScalar()

	// sigma = (h0 + h1*m2 + h2*s + g_i) * 1/(x+c)
	base := new(bn256.G1).Add(r.PublicKey.H0, new(bn256.G1).ScalarMult(r.PublicKey.H1, m2))
	base = new(bn256.G1).Add(base, new(bn256.G1).ScalarMult(r.PublicKey.H2, vrPrimePrime))
	base = new(bn256.G1).Add(base, r.tails.G[i])
	xc := new(big.Int).Add(r.PrivateKey.X, c)
	xc.Mod(xc, bn256.Order)
	xcInv, ok := common.ModInverse(xc, bn256.Order)
	if !ok {
		return nil, errors.New("degenerate signature exponent")
	}
	sigma := new(bn256.G1).ScalarMult(base, xcInv)

	r.Accumulator.Acc = new(bn256.G2).Add(r.Accumulator.Acc, r.tails.GDash[r.Accumulator.MaxCredNum+1-i])
	r.Accumulator.V = append(r.Accumulator.V, i)

	witness, err := r.ComputeWitness(i)
	if err != nil {
		return nil, err
	}

	return &Credential{
		I:            i,
		Sigma:        sigma,
		C:            c,
		VrPrimePrime: vrPrimePrime,
		M2:           new(big.Int).Set(m2),
		GI:           r.tails.G[i],
		Witness:      witness,
	}, nil
}

// ComputeWitness derives the membership witness for index i against the
// registry's current accumulator state.
func (r *Registry) ComputeWitness(i uint32) (*Witness, error) {
	// sigma_i = gdash * 1/(sk + gamma^i)
	gammaI := new(big.Int).Exp(r.gamma, big.NewInt(int64(i)), bn256.Order)
	skGammaI := new(big.Int).Add(r.PrivateKey.SK, gammaI)
	skGammaI.Mod(skGammaI, bn256.Order)
	inv, ok := common.ModInverse(skGammaI, bn256.Order)
	if !ok {
		return nil, errors.New("degenerate witness exponent")
	}
	sigmaI := new(bn256.G2).ScalarMult(r.PublicKey.GDash, inv)
	uI := new(bn256.G2).ScalarMult(r.PublicKey.U, gammaI)

	omega := new(bn256.G2).ScalarBaseMult(big.NewInt(0))
	v := make([]uint32, 0, len(r.Accumulator.V))
	for _, j := range r.Accumulator.V {
		v = append(v, j)
		if j == i {
			continue
		}
		omega = new(bn256.G2).Add(omega, r.tails.GDash[r.Accumulator.MaxCredNum+1-j+i])
	}

	return &Witness{SigmaI: sigmaI, UI: uI, Omega: omega, V: v}, nil
}

func randomScalar() *big.Int {
	return common.FastRandomBigInt(bn256.Order)
}
