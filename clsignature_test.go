package indycrypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhuseby/indy-crypto/internal/common"
)

func TestSignatureRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "name", "age")
	attrs := map[string]*big.Int{
		"name": big.NewInt(1139),
		"age":  big.NewInt(25),
	}
	masterSecret := common.FastRandomBits(issuer.pub.Params.Lm, false)
	context := common.FastRandomBits(issuer.pub.Params.Lm, false)

	sig, err := SignAttributes(issuer.pub, issuer.priv, masterSecret, context, attrs)
	require.NoError(t, err)

	assert.True(t, sig.Verify(issuer.pub, masterSecret, context, attrs))

	// Signature exponent must be a prime from the configured range.
	params := issuer.pub.Params
	lower := new(big.Int).Lsh(big.NewInt(1), params.LeStart)
	assert.True(t, sig.E.Cmp(lower) >= 0)
	assert.True(t, sig.E.ProbablyPrime(20))
}

func TestSignatureRejectsTampering(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	attrs := map[string]*big.Int{"age": big.NewInt(25)}
	masterSecret := common.FastRandomBits(issuer.pub.Params.Lm, false)
	context := common.FastRandomBits(issuer.pub.Params.Lm, false)

	sig, err := SignAttributes(issuer.pub, issuer.priv, masterSecret, context, attrs)
	require.NoError(t, err)

	assert.False(t, sig.Verify(issuer.pub, masterSecret, context, map[string]*big.Int{"age": big.NewInt(26)}))
	assert.False(t, sig.Verify(issuer.pub, masterSecret, new(big.Int).Add(context, big.NewInt(1)), attrs))

	tampered := &CLSignature{A: new(big.Int).Add(sig.A, big.NewInt(1)), E: sig.E, V: sig.V}
	assert.False(t, tampered.Verify(issuer.pub, masterSecret, context, attrs))
}

func TestSignatureUnknownAttribute(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	masterSecret := common.FastRandomBits(issuer.pub.Params.Lm, false)
	context := common.FastRandomBits(issuer.pub.Params.Lm, false)

	_, err := SignAttributes(issuer.pub, issuer.priv, masterSecret, context, map[string]*big.Int{"email": big.NewInt(1)})
	assert.Error(t, err)
}

func TestIssuerKeyGeneration(t *testing.T) {
	pub, priv, err := NewIssuerKeys([]string{"a", "b"}, testP, testQ)
	require.NoError(t, err)

	n := new(big.Int).Mul(testP, testQ)
	assert.Equal(t, 0, pub.N.Cmp(n))
	assert.Equal(t, uint(1024), pub.Params.Ln)
	assert.Len(t, pub.R, 2)

	// p = 2p' + 1
	p := new(big.Int).Lsh(priv.PPrime, 1)
	p.Add(p, big.NewInt(1))
	assert.Equal(t, 0, p.Cmp(testP))
}

func TestIssuerKeyExpTables(t *testing.T) {
	pub, _, err := NewIssuerKeys([]string{"a"}, testP, testQ)
	require.NoError(t, err)

	exps := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		common.FastRandomBits(593, false),
		common.FastRandomBits(3060, false), // wider than the modulus: fallback path
		big.NewInt(-42),                    // negative: fallback path
	}
	for _, exp := range exps {
		want, err := common.ModPow(pub.S, exp, pub.N)
		require.NoError(t, err)
		got, err := pub.ExpS(exp)
		require.NoError(t, err)
		assert.Equal(t, 0, want.Cmp(got))

		want, err = common.ModPow(pub.Z, exp, pub.N)
		require.NoError(t, err)
		got, err = pub.ExpZ(exp)
		require.NoError(t, err)
		assert.Equal(t, 0, want.Cmp(got))
	}
}
