package indycrypto

import (
	"github.com/go-errors/errors"

	"github.com/dhuseby/indy-crypto/cbor"
)

// Canonical binary serialization of the values that cross the process
// boundary: proofs, nonces, sub-proof requests and issuer public keys. The
// encoding is deterministic CBOR; decode failures surface as
// ErrInvalidStructure, never as a panic.

// MarshalProof encodes a proof.
func MarshalProof(p *Proof) ([]byte, error) {
	return cbor.Marshal(p)
}

// UnmarshalProof decodes a proof.
func UnmarshalProof(data []byte) (*Proof, error) {
	p := &Proof{}
	if err := cbor.Unmarshal(data, p); err != nil {
		return nil, errors.WrapPrefix(ErrInvalidStructure, err.Error(), 0)
	}
	return p, nil
}

// MarshalNonce encodes a nonce.
func MarshalNonce(n *Nonce) ([]byte, error) {
	return cbor.Marshal(n)
}

// UnmarshalNonce decodes a nonce.
func UnmarshalNonce(data []byte) (*Nonce, error) {
	n := &Nonce{}
	if err := cbor.Unmarshal(data, n); err != nil || n.Value == nil {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "malformed nonce", 0)
	}
	return n, nil
}

// MarshalSubProofRequest encodes a sub-proof request.
func MarshalSubProofRequest(r *SubProofRequest) ([]byte, error) {
	return cbor.Marshal(r)
}

// UnmarshalSubProofRequest decodes a sub-proof request.
func UnmarshalSubProofRequest(data []byte) (*SubProofRequest, error) {
	r := &SubProofRequest{}
	if err := cbor.Unmarshal(data, r); err != nil {
		return nil, errors.WrapPrefix(ErrInvalidStructure, err.Error(), 0)
	}
	return r, nil
}

// MarshalIssuerPublicKey encodes an issuer public key.
func MarshalIssuerPublicKey(pk *IssuerPublicKey) ([]byte, error) {
	return cbor.Marshal(pk)
}

// UnmarshalIssuerPublicKey decodes an issuer public key and reattaches the
// system parameters matching its modulus size.
func UnmarshalIssuerPublicKey(data []byte) (*IssuerPublicKey, error) {
	pk := &IssuerPublicKey{}
	if err := cbor.Unmarshal(data, pk); err != nil {
		return nil, errors.WrapPrefix(ErrInvalidStructure, err.Error(), 0)
	}
	if pk.N == nil || pk.S == nil || pk.Z == nil || pk.RMS == nil || pk.RCtxt == nil {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "incomplete issuer public key", 0)
	}
	if pk.N.Sign() <= 0 || pk.S.Sign() <= 0 || pk.Z.Sign() <= 0 || pk.RMS.Sign() <= 0 || pk.RCtxt.Sign() <= 0 {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "non-positive issuer key component", 0)
	}
	for name, base := range pk.R {
		if base == nil || base.Sign() <= 0 {
			return nil, errors.WrapPrefix(ErrInvalidStructure, "malformed base for attribute "+name, 0)
		}
	}
	params, ok := DefaultSystemParameters[pk.N.BitLen()]
	if !ok {
		return nil, errors.WrapPrefix(ErrInvalidStructure, "no system parameters for modulus size", 0)
	}
	pk.Params = params
	return pk, nil
}
