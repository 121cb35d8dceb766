package common

import (
	"crypto/sha256"
	"math/big"
)

// HashToInt hashes the concatenation of the given byte slices with SHA-256
// and interprets the digest as a nonnegative integer.
func HashToInt(values ...[]byte) *big.Int {
	h := sha256.New()
	for _, v := range values {
		h.Write(v)
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// IntToBytes encodes i as a fixed-width big-endian byte string of the given
// length. Integers wider than length bytes keep their natural encoding.
func IntToBytes(i *big.Int, length int) []byte {
	b := i.Bytes()
	if len(b) >= length {
		return b
	}
	buf := make([]byte, length)
	copy(buf[length-len(b):], b)
	return buf
}
