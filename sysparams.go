package indycrypto

// SystemParameters holds the bit lengths of the values that make up CL
// signatures and proofs of knowledge, keyed to a given RSA modulus size.
type SystemParameters struct {
	Ln uint // modulus length
	Lm uint // attribute value length
	Lh uint // challenge hash length

	LeStart    uint // signature exponent offset: e in [2^LeStart, 2^LeStart + 2^LeEndRange]
	LeEndRange uint
	Lv         uint // signature randomizer length
	LrPrime    uint // signature randomization / predicate blinding length

	LNonce uint // verifier nonce length

	// Commitment randomizer lengths for the Fiat-Shamir sigma protocol.
	LeTilde     uint
	LvTilde     uint
	LmTilde     uint
	LuTilde     uint
	LrTilde     uint
	LalphaTilde uint
}

// DefaultSystemParameters is a map of default system parameters by modulus
// bit length.
var DefaultSystemParameters = map[int]*SystemParameters{
	1024: {
		Ln:          1024,
		Lm:          256,
		Lh:          256,
		LeStart:     596,
		LeEndRange:  119,
		Lv:          2724,
		LrPrime:     2128,
		LNonce:      80,
		LeTilde:     456,
		LvTilde:     3060,
		LmTilde:     593,
		LuTilde:     592,
		LrTilde:     672,
		LalphaTilde: 2787,
	},
}

// DefaultKeyLength is the modulus size used when no explicit parameters are
// requested.
const DefaultKeyLength = 1024
