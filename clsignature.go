package indycrypto

import (
	"math/big"

	"github.com/go-errors/errors"

	"github.com/dhuseby/indy-crypto/internal/common"
)

// CLSignature is a Camenisch-Lysyanskaya signature over a holder's master
// secret, a credential context and a set of named attribute values.
type CLSignature struct {
	A *big.Int
	E *big.Int
	V *big.Int
}

// SignAttributes issues a CL signature on (masterSecret, context, attrs)
// under the issuer's key pair. The signature satisfies
//
//	A^e = Z / (S^v * RMS^ms * RCtxt^ctx * prod R_i^{m_i}) mod N
//
// with e a random prime from the prime range of the system parameters and v
// a random integer of the signature randomizer length.
func SignAttributes(pub *IssuerPublicKey, priv *IssuerPrivateKey, masterSecret, context *big.Int, attrs map[string]*big.Int) (*CLSignature, error) {
	params := pub.Params

	e, err := common.RandomPrimeInRange(common.PRNG(), params.LeStart, params.LeEndRange)
	if err != nil {
		return nil, err
	}
	v := common.FastRandomBits(params.Lv, true)

	q, err := signatureBase(pub, v, masterSecret, context, attrs)
	if err != nil {
		return nil, err
	}

	// A = Q^(e^-1 mod p'q') mod N
	order := new(big.Int).Mul(priv.PPrime, priv.QPrime)
	eInverse, ok := common.ModInverse(e, order)
	if !ok {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "signature exponent not invertible", 0)
	}
	a := new(big.Int).Exp(q, eInverse, pub.N)

	return &CLSignature{A: a, E: e, V: v}, nil
}

// Verify checks the signature against the issuer public key and the signed
// values.
func (sig *CLSignature) Verify(pub *IssuerPublicKey, masterSecret, context *big.Int, attrs map[string]*big.Int) bool {
	q, err := signatureBase(pub, sig.V, masterSecret, context, attrs)
	if err != nil {
		return false
	}
	ae := new(big.Int).Exp(sig.A, sig.E, pub.N)
	return ae.Cmp(q) == 0
}

// signatureBase computes Z / (S^v * RMS^ms * RCtxt^ctx * prod R_i^{m_i}) mod N.
func signatureBase(pub *IssuerPublicKey, v, masterSecret, context *big.Int, attrs map[string]*big.Int) (*big.Int, error) {
	acc, err := pub.ExpS(v)
	if err != nil {
		return nil, err
	}
	acc.Mul(acc, new(big.Int).Exp(pub.RMS, masterSecret, pub.N)).Mod(acc, pub.N)
	acc.Mul(acc, new(big.Int).Exp(pub.RCtxt, context, pub.N)).Mod(acc, pub.N)
	for name, value := range attrs {
		base, ok := pub.R[name]
		if !ok {
			return nil, errors.WrapPrefix(ErrInvalidStructure, "attribute "+name+" not in issuer key", 0)
		}
		acc.Mul(acc, new(big.Int).Exp(base, value, pub.N)).Mod(acc, pub.N)
	}
	accInverse, ok := common.ModInverse(acc, pub.N)
	if !ok {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "signature base not invertible", 0)
	}
	q := new(big.Int).Mul(pub.Z, accInverse)
	return q.Mod(q, pub.N), nil
}
