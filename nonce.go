package indycrypto

import (
	"math/big"

	"github.com/dhuseby/indy-crypto/internal/common"
)

// Nonce is a single-use random value bound into the challenge transcript of
// a proof to prevent replay. It is immutable after creation.
type Nonce struct {
	Value *big.Int
}

// NewNonce draws a fresh random nonce of the protocol's fixed width.
func NewNonce() *Nonce {
	params := DefaultSystemParameters[DefaultKeyLength]
	return &Nonce{Value: common.FastRandomBits(params.LNonce, false)}
}

// Equal reports whether two nonces hold the same value.
func (n *Nonce) Equal(other *Nonce) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Value.Cmp(other.Value) == 0
}
