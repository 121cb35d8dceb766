package indycrypto

import (
	"math/big"
	"sync"

	"github.com/bwesterb/go-exptable"
	"github.com/go-errors/errors"

	"github.com/dhuseby/indy-crypto/internal/common"
)

// IssuerPublicKey is the public part of an issuer's CL signing key: the RSA
// modulus N and the quadratic-residue generators the signature and proof
// equations are evaluated over. R holds one base per named attribute; RMS
// and RCtxt are the bases for the holder's master secret and the credential
// context.
type IssuerPublicKey struct {
	N     *big.Int
	S     *big.Int
	Z     *big.Int
	R     map[string]*big.Int
	RMS   *big.Int
	RCtxt *big.Int

	Params *SystemParameters

	tableOnce sync.Once
	sTable    exptable.Table
	zTable    exptable.Table
}

// IssuerPrivateKey is the private part of an issuer's CL signing key.
type IssuerPrivateKey struct {
	P      *big.Int
	Q      *big.Int
	PPrime *big.Int
	QPrime *big.Int
}

var (
	bigONE = big.NewInt(1)
	bigTWO = big.NewInt(2)
)

// NewIssuerKeys derives an issuer key pair over the named attributes from
// the safe primes p and q. All generators are powers of a random quadratic
// residue modulo n = p*q, so that proofs of representation over them are
// sound.
func NewIssuerKeys(attrNames []string, p, q *big.Int) (*IssuerPublicKey, *IssuerPrivateKey, error) {
	n := new(big.Int).Mul(p, q)
	params, ok := DefaultSystemParameters[n.BitLen()]
	if !ok {
		return nil, nil, errors.WrapPrefix(ErrInvalidStructure, "no system parameters for modulus size", 0)
	}

	priv := &IssuerPrivateKey{
		P:      p,
		Q:      q,
		PPrime: new(big.Int).Rsh(new(big.Int).Sub(p, bigONE), 1),
		QPrime: new(big.Int).Rsh(new(big.Int).Sub(q, bigONE), 1),
	}
	order := new(big.Int).Mul(priv.PPrime, priv.QPrime)

	pub := &IssuerPublicKey{
		N:      n,
		S:      common.RandomQR(n),
		R:      make(map[string]*big.Int, len(attrNames)),
		Params: params,
	}
	pub.Z = randomPower(pub.S, order, n)
	pub.RMS = randomPower(pub.S, order, n)
	pub.RCtxt = randomPower(pub.S, order, n)
	for _, name := range attrNames {
		if _, ok := pub.R[name]; ok {
			return nil, nil, errors.WrapPrefix(ErrInvalidStructure, "duplicate attribute name "+name, 0)
		}
		pub.R[name] = randomPower(pub.S, order, n)
	}
	return pub, priv, nil
}

// randomPower returns s^x mod n for a random x in [2, order).
func randomPower(s, order, n *big.Int) *big.Int {
	x := common.FastRandomBigInt(new(big.Int).Sub(order, bigTWO))
	x.Add(x, bigTWO)
	return new(big.Int).Exp(s, x, n)
}

func (pk *IssuerPublicKey) computeTables() {
	pk.sTable.Compute(pk.S, pk.N, 7)
	pk.zTable.Compute(pk.Z, pk.N, 7)
}

// ExpS computes S^exp mod N, using a precomputed fixed-base table when the
// exponent fits the table and falling back to plain modular exponentiation
// otherwise.
func (pk *IssuerPublicKey) ExpS(exp *big.Int) (*big.Int, error) {
	return pk.tableExp(&pk.sTable, pk.S, exp)
}

// ExpZ computes Z^exp mod N, analogous to ExpS.
func (pk *IssuerPublicKey) ExpZ(exp *big.Int) (*big.Int, error) {
	return pk.tableExp(&pk.zTable, pk.Z, exp)
}

func (pk *IssuerPublicKey) tableExp(table *exptable.Table, base, exp *big.Int) (*big.Int, error) {
	if exp.Sign() < 0 || exp.BitLen() > pk.N.BitLen() {
		return common.ModPow(base, exp, pk.N)
	}
	pk.tableOnce.Do(pk.computeTables)
	ret := new(big.Int)
	table.Exp(ret, exp)
	return ret, nil
}
