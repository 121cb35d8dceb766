package indycrypto

import "github.com/go-errors/errors"

// Error taxonomy. All fallible operations return one of these sentinels,
// possibly wrapped with additional context; match with errors.Is.
var (
	// ErrInvalidStructure signals malformed or semantically inconsistent
	// input: a bad attribute reference, a response value outside its
	// permitted width, or a decode failure at the serialization boundary.
	ErrInvalidStructure = errors.New("invalid structure")

	// ErrDuplicateKeyID signals reuse of a credential key id within one
	// ProofVerifier or ProofBuilder.
	ErrDuplicateKeyID = errors.New("duplicate key id")

	// ErrInvalidState signals an operation invoked outside its allowed
	// state-machine transition, such as calling Verify twice.
	ErrInvalidState = errors.New("invalid state")

	// ErrProofRejected signals a structural shape mismatch between a proof
	// and the accumulated requests. It is distinct from cryptographic
	// invalidity, which Verify reports as a false return value.
	ErrProofRejected = errors.New("proof rejected")
)
