package revocation

import (
	"math/big"

	"github.com/cloudflare/bn256"
	"github.com/go-errors/errors"

	"github.com/dhuseby/indy-crypto/cbor"
)

// proofWire is the interchange shape of a non-revocation proof: scalars as
// bignums, curve points in their canonical marshaled form.
type proofWire struct {
	XList []*big.Int `cbor:"x_list"`

	E []byte `cbor:"e"`
	D []byte `cbor:"d"`
	A []byte `cbor:"a"`
	G []byte `cbor:"g"`
	W []byte `cbor:"w"`
	S []byte `cbor:"s"`
	U []byte `cbor:"u"`
}

// MarshalCBOR implements cbor.Marshaler.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	if !p.WellFormed() {
		return nil, errors.New("incomplete non-revocation proof")
	}
	return cbor.Marshal(&proofWire{
		XList: p.XList.asList(),
		E:     p.CList.E.Marshal(),
		D:     p.CList.D.Marshal(),
		A:     p.CList.A.Marshal(),
		G:     p.CList.G.Marshal(),
		W:     p.CList.W.Marshal(),
		S:     p.CList.S.Marshal(),
		U:     p.CList.U.Marshal(),
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	var wire proofWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.XList) != 14 {
		return errors.New("wrong response count in non-revocation proof")
	}
	cList := &ProofCList{
		E: new(bn256.G1), D: new(bn256.G1), A: new(bn256.G1), G: new(bn256.G1),
		W: new(bn256.G2), S: new(bn256.G2), U: new(bn256.G2),
	}
	for _, point := range []struct {
		data []byte
		dst  interface{ Unmarshal([]byte) ([]byte, error) }
	}{
		{wire.E, cList.E}, {wire.D, cList.D}, {wire.A, cList.A}, {wire.G, cList.G},
		{wire.W, cList.W}, {wire.S, cList.S}, {wire.U, cList.U},
	} {
		if _, err := point.dst.Unmarshal(point.data); err != nil {
			return errors.WrapPrefix(err, "malformed curve point", 0)
		}
	}
	p.XList = xListFromList(wire.XList)
	p.CList = cList
	if !p.WellFormed() {
		return errors.New("non-canonical scalar in non-revocation proof")
	}
	return nil
}
