package indycrypto

import (
	"math/big"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProofSingleCredential(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestProofWrongNonce(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	valid, err := verifier.Verify(proof, NewNonce())
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestProofTamperedResponse(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	eq := proof.SubProofs[0].Primary.EqProof
	eq.V = new(big.Int).Add(eq.V, big.NewInt(1))

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestProofRevealAndPredicate(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "name", "age")
	cred := issuer.issue(t, map[string]*big.Int{
		"name": big.NewInt(1139),
		"age":  big.NewInt(25),
	})
	req := NewSubProofRequest([]string{"name"}, []Predicate{{AttrName: "age", PType: PredicateGE, Value: 18}})

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	eq := proof.SubProofs[0].Primary.EqProof
	require.Len(t, eq.RevealedAttrs, 1)
	assert.Equal(t, 0, eq.RevealedAttrs["name"].Cmp(big.NewInt(1139)))

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestProofPredicateBoundary(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(18)})
	req := NewSubProofRequest(nil, []Predicate{{AttrName: "age", PType: PredicateGE, Value: 18}})

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestProofPredicateNotSatisfied(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(16)})
	req := NewSubProofRequest(nil, []Predicate{{AttrName: "age", PType: PredicateGE, Value: 18}})

	builder := NewProofBuilder()
	err := builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil)
	assert.True(t, errors.Is(err, ErrInvalidStructure))
}

func TestProofMultiCredential(t *testing.T) {
	issuer1 := newTestIssuer(t, testP, testQ, "name", "age")
	issuer2 := newTestIssuer(t, testP2, testQ2, "status")
	cred1 := issuer1.issue(t, map[string]*big.Int{
		"name": big.NewInt(1139),
		"age":  big.NewInt(42),
	})
	cred2 := issuer2.issue(t, map[string]*big.Int{"status": big.NewInt(7)})

	req1 := NewSubProofRequest([]string{"name"}, []Predicate{{AttrName: "age", PType: PredicateGE, Value: 18}})
	req2 := NewSubProofRequest([]string{"status"}, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req1, issuer1.schema, issuer1.pub, cred1, nil))
	require.NoError(t, builder.AddSubProofRequest("cred2", req2, issuer2.schema, issuer2.pub, cred2, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req1, issuer1.schema, issuer1.pub, nil))
	require.NoError(t, verifier.AddSubProofRequest("cred2", req2, issuer2.schema, issuer2.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestProofOrderSensitivity(t *testing.T) {
	issuer1 := newTestIssuer(t, testP, testQ, "age")
	issuer2 := newTestIssuer(t, testP2, testQ2, "age")
	cred1 := issuer1.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	cred2 := issuer2.issue(t, map[string]*big.Int{"age": big.NewInt(30)})
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer1.schema, issuer1.pub, cred1, nil))
	require.NoError(t, builder.AddSubProofRequest("cred2", req, issuer2.schema, issuer2.pub, cred2, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	// Same requests, reversed insertion order: the transcript no longer
	// matches the prover's.
	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred2", req, issuer2.schema, issuer2.pub, nil))
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer1.schema, issuer1.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestProofRevealMismatch(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "name", "age")
	cred := issuer.issue(t, map[string]*big.Int{
		"name": big.NewInt(1139),
		"age":  big.NewInt(25),
	})
	proveReq := NewSubProofRequest([]string{"name"}, nil)
	verifyReq := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", proveReq, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", verifyReq, issuer.schema, issuer.pub, nil))
	_, err = verifier.Verify(proof, nonce)
	assert.True(t, errors.Is(err, ErrProofRejected))
}

func TestProofSubProofCountMismatch(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	require.NoError(t, verifier.AddSubProofRequest("cred2", req, issuer.schema, issuer.pub, nil))
	_, err = verifier.Verify(proof, nonce)
	assert.True(t, errors.Is(err, ErrProofRejected))
}

func TestProofPredicateBindingTamper(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	req := NewSubProofRequest(nil, []Predicate{{AttrName: "age", PType: PredicateGE, Value: 18}})

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	// Detach the predicate proof from the signed attribute.
	ge := proof.SubProofs[0].Primary.GEProofs[0]
	ge.Mj = new(big.Int).Add(ge.Mj, big.NewInt(1))

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifierStateMachine(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	require.True(t, valid)

	_, err = verifier.Verify(proof, nonce)
	assert.True(t, errors.Is(err, ErrInvalidState))
	err = verifier.AddSubProofRequest("cred2", req, issuer.schema, issuer.pub, nil)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestVerifierDuplicateKeyID(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	req := NewSubProofRequest(nil, nil)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil))
	err := verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil)
	assert.True(t, errors.Is(err, ErrDuplicateKeyID))
}

func TestVerifierPredicateOverRevealed(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	req := NewSubProofRequest([]string{"age"}, []Predicate{{AttrName: "age", PType: PredicateGE, Value: 18}})

	verifier := NewProofVerifier()
	err := verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, nil)
	assert.True(t, errors.Is(err, ErrInvalidStructure))
}

func TestProofWithRevocation(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	registry := newTestRegistry(t, 5)
	registry.enroll(t, cred, 1)
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, registry.key))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)
	require.NotNil(t, proof.SubProofs[0].NonRevocation)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, registry.key))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.True(t, valid)

	verifier = NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, registry.key))
	valid, err = verifier.Verify(proof, NewNonce())
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestProofWithRevocationMultipleMembers(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	registry := newTestRegistry(t, 5)

	other := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(30)})
	registry.enroll(t, other, 1)
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	registry.enroll(t, cred, 2)
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, registry.key))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, registry.key))
	valid, err := verifier.Verify(proof, nonce)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestProofRevocationFlagMismatch(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	registry := newTestRegistry(t, 5)
	req := NewSubProofRequest(nil, nil)

	nonce := NewNonce()
	builder := NewProofBuilder()
	require.NoError(t, builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, nil))
	proof, err := builder.Finalize(nonce)
	require.NoError(t, err)

	verifier := NewProofVerifier()
	require.NoError(t, verifier.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, registry.key))
	_, err = verifier.Verify(proof, nonce)
	assert.True(t, errors.Is(err, ErrProofRejected))
}

func TestBuilderRequiresRevocationCredential(t *testing.T) {
	issuer := newTestIssuer(t, testP, testQ, "age")
	cred := issuer.issue(t, map[string]*big.Int{"age": big.NewInt(25)})
	registry := newTestRegistry(t, 5)
	req := NewSubProofRequest(nil, nil)

	builder := NewProofBuilder()
	err := builder.AddSubProofRequest("cred1", req, issuer.schema, issuer.pub, cred, registry.key)
	assert.True(t, errors.Is(err, ErrInvalidStructure))
}
