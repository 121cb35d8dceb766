// Package indycrypto implements Camenisch-Lysyanskaya anonymous credentials:
// issuer key generation and signing, prover-side selective-disclosure proof
// construction, and the verifier that checks aggregate proofs against a set
// of sub-proof requests and a freshness nonce.
//
// A holder proves possession of one or more issuer-signed credentials,
// revealing some attributes while proving knowledge of the rest, optionally
// together with greater-than-or-equal predicates over hidden attributes and
// pairing-based non-revocation proofs against a cryptographic accumulator
// (see the revocation subpackage).
package indycrypto
