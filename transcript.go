package indycrypto

import (
	"math/big"

	"github.com/dhuseby/indy-crypto/internal/common"
)

// transcript accumulates the ordered commitment values of every sub-proof
// for the Fiat-Shamir challenge. Commitment order is part of the binding:
// prover and verifier must append the exact same values in the exact same
// order, or the recomputed challenge diverges.
type transcript struct {
	params      *SystemParameters
	tauValues   [][]byte
	commitments [][]byte
}

// addTauInt appends one recomputed commitment value, encoded fixed-width at
// the modulus byte size. The first contribution fixes the parameter set the
// nonce is encoded under.
func (t *transcript) addTauInt(v *big.Int, pk *IssuerPublicKey) {
	if t.params == nil {
		t.params = pk.Params
	}
	t.tauValues = append(t.tauValues, encodeInt(v, pk))
}

// addTauBytes appends already-encoded commitment values, such as marshaled
// curve points.
func (t *transcript) addTauBytes(bs ...[]byte) {
	t.tauValues = append(t.tauValues, bs...)
}

// addCommitmentInt appends one correlated commitment carried inside the
// proof itself, such as the randomized signature component.
func (t *transcript) addCommitmentInt(v *big.Int, pk *IssuerPublicKey) {
	t.commitments = append(t.commitments, encodeInt(v, pk))
}

func (t *transcript) addCommitmentBytes(bs ...[]byte) {
	t.commitments = append(t.commitments, bs...)
}

// challenge hashes the transcript together with the nonce into the
// aggregate challenge value.
func (t *transcript) challenge(nonce *Nonce) *big.Int {
	params := t.params
	if params == nil {
		params = DefaultSystemParameters[DefaultKeyLength]
	}
	values := make([][]byte, 0, len(t.tauValues)+len(t.commitments)+1)
	values = append(values, t.tauValues...)
	values = append(values, t.commitments...)
	values = append(values, common.IntToBytes(nonce.Value, int(params.LNonce/8)))
	return common.HashToInt(values...)
}

// encodeInt gives the canonical fixed-width encoding of a proof value:
// big-endian at the byte size of the issuer's modulus. Negative values keep
// a sign prefix so that they cannot collide with positive encodings.
func encodeInt(v *big.Int, pk *IssuerPublicKey) []byte {
	size := (pk.N.BitLen() + 7) / 8
	if v.Sign() < 0 {
		return append([]byte{'-'}, common.IntToBytes(new(big.Int).Neg(v), size)...)
	}
	return common.IntToBytes(v, size)
}
