// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"crypto/rand"
	"math/big"
	mathRand "math/rand"

	"github.com/go-errors/errors"
)

// Math utilities shared by the signature, proof and revocation code.

var (
	bigONE   = big.NewInt(1)
	bigTHREE = big.NewInt(3)
)

// ErrNoModInverse is returned when a modular inverse does not exist.
var ErrNoModInverse = errors.New("modular inverse does not exist")

// ModInverse returns the inverse of a in the multiplicative group modulo n,
// if it exists. The second return value reports whether it does; a and n not
// being coprime is an expected condition for nearly-prime moduli.
func ModInverse(a, n *big.Int) (*big.Int, bool) {
	g := new(big.Int)
	x := new(big.Int)
	g.GCD(x, nil, a, n)
	if g.Cmp(bigONE) != 0 {
		return nil, false
	}
	if x.Sign() < 0 {
		x.Add(x, n)
	}
	return x, true
}

// ModPow computes x^y mod m. Unlike big.Int.Exp, the exponent may be
// negative, in which case the modular inverse of x is exponentiated.
func ModPow(x, y, m *big.Int) (*big.Int, error) {
	if y.Sign() == -1 {
		t := new(big.Int).ModInverse(x, m)
		if t == nil {
			return nil, ErrNoModInverse
		}
		return t.Exp(t, new(big.Int).Neg(y), m), nil
	}
	return new(big.Int).Exp(x, y, m), nil
}

// RandomBigInt returns a random integer in [0, 2^numBits), drawn from
// crypto/rand.
func RandomBigInt(numBits uint) (*big.Int, error) {
	t := new(big.Int).Lsh(bigONE, numBits)
	return rand.Int(rand.Reader, t)
}

// SumFourSquares expresses a non-negative number as a sum of four squares,
// using the randomized algorithm from "Randomized algorithms in number
// theory" by M. Rabin and J. Shallit.
func SumFourSquares(n *big.Int) (*big.Int, *big.Int, *big.Int, *big.Int) {
	if n.BitLen() == 0 {
		return big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0)
	}
	temp := new(big.Int).And(n, bigTHREE)
	if temp.Int64() == 2 {
		return sumFourSquaresSpecial(n)
	} else if temp.Int64() == 0 {
		// Extract 2^2k, decompose the remaining factor and scale the
		// result back up by 2^k.
		d := uint(1)
		temp.Rsh(n, 1)
		temp2 := new(big.Int).And(temp, bigTHREE)
		for temp2.Int64() != 2 {
			temp.Rsh(temp, 1)
			d++
			temp2.And(temp, bigTHREE)
		}
		if d%2 == 1 {
			temp.Rsh(temp, 1)
			d++
		}
		x, y, z, w := SumFourSquares(temp)
		x.Lsh(x, d/2)
		y.Lsh(y, d/2)
		z.Lsh(z, d/2)
		w.Lsh(w, d/2)
		return x, y, z, w
	} else {
		temp.Lsh(n, 1)
		x, y, z, w := sumFourSquaresSpecial(temp)
		temp.And(x, bigONE)
		xOdd := temp.Int64()
		temp.And(y, bigONE)
		yOdd := temp.Int64()
		if xOdd != yOdd {
			temp.And(z, bigONE)
			zOdd := temp.Int64()
			if xOdd == zOdd {
				y, z = z, y
			} else {
				y, w = w, y
			}
		}
		if x.Cmp(y) < 0 {
			x, y = y, x
		}
		if z.Cmp(w) < 0 {
			z, w = w, z
		}

		temp.Sub(x, y)
		x.Add(x, y)
		x.Rsh(x, 1)
		y.Rsh(temp, 1)
		temp.Sub(z, w)
		z.Add(z, w)
		z.Rsh(z, 1)
		w.Rsh(temp, 1)
		return x, y, z, w
	}
}

func sumFourSquaresSpecial(n *big.Int) (*big.Int, *big.Int, *big.Int, *big.Int) {
	if n.IsInt64() && n.Int64() < 4 {
		return big.NewInt(1), big.NewInt(1), big.NewInt(0), big.NewInt(0)
	}
	rootN := new(big.Int).Sqrt(n)
	x := new(big.Int)
	y := new(big.Int)
	z := new(big.Int)
	w := new(big.Int)
	p := new(big.Int)
	t1 := new(big.Int)

	// The algorithm is randomized but the randomness has no security role,
	// so the faster math/rand suffices.
	randomSource := mathRand.New(mathRand.NewSource(1))
	for {
		x.Rand(randomSource, rootN)
		y.Rand(randomSource, rootN)

		z.Mul(x, x)
		z.Sub(n, z)
		w.Mul(y, y)
		z.Sub(z, w)

		if z.IsInt64() && z.Int64() == 2 {
			return x, y, big.NewInt(1), big.NewInt(1)
		}

		if z.BitLen() == 0 || z.Bits()[0]&3 != 1 {
			continue // z unsuitable
		}

		if !z.ProbablyPrime(10) {
			continue // z unsuitable
		}

		p.Set(z)

		w.Sub(z, bigONE)
		w.ModSqrt(w, z)

		if 2*w.BitLen()-1 <= p.BitLen() {
			t1.Mul(w, w)
			if p.Cmp(t1) > 0 {
				z.Mod(z, w)
				return x, y, z, w
			}
		}

		for {
			z.Mod(z, w)
			if z.BitLen() == 0 {
				break
			}
			if 2*z.BitLen()-1 <= p.BitLen() {
				t1.Mul(z, z)
				if p.Cmp(t1) > 0 {
					w.Mod(w, z)
					return x, y, z, w
				}
			}

			w.Mod(w, z)
			if w.BitLen() == 0 {
				break
			}
			if 2*w.BitLen()-1 <= p.BitLen() {
				t1.Mul(w, w)
				if p.Cmp(t1) > 0 {
					z.Mod(z, w)
					return x, y, z, w
				}
			}
		}
	}
}
