package indycrypto

import (
	"math/big"
	"testing"

	"github.com/cloudflare/bn256"
	"github.com/stretchr/testify/require"

	"github.com/dhuseby/indy-crypto/internal/common"
	"github.com/dhuseby/indy-crypto/revocation"
)

// Fixed safe primes, so the tests do not have to spend time on safe prime
// generation.
var (
	testP, _ = new(big.Int).SetString("10436034022637868273483137633548989700482895839559909621411910579140541345632481969613724849214412062500244238926015929148144084368427474551770487566048119", 10)
	testQ, _ = new(big.Int).SetString("9204968012315139729618449685392284928468933831570080795536662422367142181432679739143882888540883909887054345986640656981843559062844656131133512640733759", 10)

	testP2, _ = new(big.Int).SetString("12511561644521105216249960315425509848310543851123625148071038103672749250653050780946327920540373585150518830678888836864183842100121288018131086700947919", 10)
	testQ2, _ = new(big.Int).SetString("13175754961224278923898419496296790582860213842149399404614891067426616055648139811854869087421318470521236911637912285993998784296429335994419545592486183", 10)
)

type testIssuer struct {
	pub    *IssuerPublicKey
	priv   *IssuerPrivateKey
	schema *Schema
}

func newTestIssuer(t *testing.T, p, q *big.Int, attrNames ...string) *testIssuer {
	pub, priv, err := NewIssuerKeys(attrNames, p, q)
	require.NoError(t, err)
	return &testIssuer{pub: pub, priv: priv, schema: NewSchema(attrNames...)}
}

// issue signs the given attribute values under a fresh master secret and
// credential context.
func (iss *testIssuer) issue(t *testing.T, attrs map[string]*big.Int) *Credential {
	masterSecret := common.FastRandomBits(iss.pub.Params.Lm, false)
	context := common.FastRandomBits(iss.pub.Params.Lm, false)
	sig, err := SignAttributes(iss.pub, iss.priv, masterSecret, context, attrs)
	require.NoError(t, err)
	require.True(t, sig.Verify(iss.pub, masterSecret, context, attrs))
	return &Credential{
		Signature:    sig,
		MasterSecret: masterSecret,
		Context:      context,
		Attributes:   attrs,
	}
}

type testRegistry struct {
	reg *revocation.Registry
	key *RevocationPublicKey
}

func newTestRegistry(t *testing.T, maxCredNum uint32) *testRegistry {
	pub, priv, err := revocation.NewKeys()
	require.NoError(t, err)
	reg, err := revocation.NewRegistry(pub, priv, maxCredNum)
	require.NoError(t, err)
	return &testRegistry{
		reg: reg,
		key: &RevocationPublicKey{
			Key:            pub,
			Accumulator:    reg.Accumulator,
			AccumulatorKey: reg.AccumulatorKey,
		},
	}
}

// enroll accumulates the credential at the given registry index and attaches
// the resulting revocation credential to it.
func (r *testRegistry) enroll(t *testing.T, cred *Credential, idx uint32) {
	m2 := new(big.Int).Mod(cred.Context, bn256.Order)
	revCred, err := r.reg.IssueCredential(m2, idx)
	require.NoError(t, err)
	cred.NonRevocation = revCred
}
