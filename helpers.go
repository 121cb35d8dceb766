package indycrypto

import (
	"math/big"

	"github.com/go-errors/errors"

	"github.com/dhuseby/indy-crypto/internal/common"
)

// This file holds the arithmetic core shared by prover and verifier: the
// commitment expressions of the signature-possession and predicate proofs.
// Each function is a pure function of its arguments; the prover evaluates
// them over blinding values, the verifier over challenge responses.

// calcTeq computes
//
//	APrime^e * prod R_i^{m_i} * RMS^m1 * RCtxt^m2 * S^v mod N
//
// over the unrevealed attribute set, the commitment expression of the
// signature-possession proof.
func calcTeq(pk *IssuerPublicKey, aPrime, e, v, m1, m2 *big.Int, m map[string]*big.Int, unrevealed []string) (*big.Int, error) {
	t, err := common.ModPow(aPrime, e, pk.N)
	if err != nil {
		return nil, err
	}
	for _, name := range unrevealed {
		base, ok := pk.R[name]
		if !ok {
			return nil, errors.WrapPrefix(ErrInvalidStructure, "attribute "+name+" not in issuer key", 0)
		}
		response, ok := m[name]
		if !ok {
			return nil, errors.WrapPrefix(ErrInvalidStructure, "no response for hidden attribute "+name, 0)
		}
		f, err := common.ModPow(base, response, pk.N)
		if err != nil {
			return nil, err
		}
		t.Mul(t, f).Mod(t, pk.N)
	}
	f, err := common.ModPow(pk.RMS, m1, pk.N)
	if err != nil {
		return nil, err
	}
	t.Mul(t, f).Mod(t, pk.N)
	f, err = common.ModPow(pk.RCtxt, m2, pk.N)
	if err != nil {
		return nil, err
	}
	t.Mul(t, f).Mod(t, pk.N)
	f, err = pk.ExpS(v)
	if err != nil {
		return nil, err
	}
	t.Mul(t, f).Mod(t, pk.N)
	return t, nil
}

// calcTge computes the six commitment expressions of a predicate proof over
// the four-square values u, their randomizers r (with rDelta), the attribute
// value mj and the cross-term alpha:
//
//	Z^{u_i} * S^{r_i}           for each square
//	Z^{mj}  * S^{rDelta}
//	prod T_i^{u_i} * S^{alpha}
func calcTge(pk *IssuerPublicKey, u, r [4]*big.Int, rDelta, mj, alpha *big.Int, t [4]*big.Int) ([]*big.Int, error) {
	tauList := make([]*big.Int, 0, 6)
	for i := 0; i < 4; i++ {
		tau, err := zsExp(pk, u[i], r[i])
		if err != nil {
			return nil, err
		}
		tauList = append(tauList, tau)
	}

	tau, err := zsExp(pk, mj, rDelta)
	if err != nil {
		return nil, err
	}
	tauList = append(tauList, tau)

	q := big.NewInt(1)
	for i := 0; i < 4; i++ {
		f, err := common.ModPow(t[i], u[i], pk.N)
		if err != nil {
			return nil, err
		}
		q.Mul(q, f).Mod(q, pk.N)
	}
	f, err := pk.ExpS(alpha)
	if err != nil {
		return nil, err
	}
	q.Mul(q, f).Mod(q, pk.N)
	tauList = append(tauList, q)

	return tauList, nil
}

// zsExp computes Z^a * S^b mod N.
func zsExp(pk *IssuerPublicKey, a, b *big.Int) (*big.Int, error) {
	za, err := pk.ExpZ(a)
	if err != nil {
		return nil, err
	}
	sb, err := pk.ExpS(b)
	if err != nil {
		return nil, err
	}
	za.Mul(za, sb)
	return za.Mod(za, pk.N), nil
}
