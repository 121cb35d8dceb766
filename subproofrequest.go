package indycrypto

import (
	"sort"

	"github.com/go-errors/errors"
)

// PredicateType identifies the comparison a predicate proves over a hidden
// attribute value.
type PredicateType string

// PredicateGE proves that a hidden attribute is greater than or equal to a
// public threshold.
const PredicateGE PredicateType = "GE"

// Predicate describes one inequality to be proven in zero knowledge over a
// hidden attribute.
type Predicate struct {
	AttrName string
	PType    PredicateType
	Value    int64
}

// Equal reports whether two predicates describe the same statement.
func (p Predicate) Equal(other Predicate) bool {
	return p.AttrName == other.AttrName && p.PType == other.PType && p.Value == other.Value
}

// SubProofRequest specifies, for one credential, which attributes must be
// revealed and which predicates must hold over hidden attributes. It is an
// immutable value type.
type SubProofRequest struct {
	RevealedAttrs map[string]struct{}
	Predicates    []Predicate
}

// NewSubProofRequest builds a sub-proof request from the revealed attribute
// names and predicate list.
func NewSubProofRequest(revealedAttrs []string, predicates []Predicate) *SubProofRequest {
	revealed := make(map[string]struct{}, len(revealedAttrs))
	for _, name := range revealedAttrs {
		revealed[name] = struct{}{}
	}
	return &SubProofRequest{RevealedAttrs: revealed, Predicates: predicates}
}

// revealedNames returns the revealed attribute names in a stable order.
func (r *SubProofRequest) revealedNames() []string {
	names := make([]string, 0, len(r.RevealedAttrs))
	for name := range r.RevealedAttrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateAgainst checks the request against a credential schema: every
// revealed attribute must exist in the schema, every predicate must exist in
// the schema, and predicates may only reference hidden attributes since a
// predicate proves a fact about a value that is not shown.
func (r *SubProofRequest) ValidateAgainst(schema *Schema) error {
	for name := range r.RevealedAttrs {
		if !schema.Contains(name) {
			return errors.WrapPrefix(ErrInvalidStructure, "revealed attribute "+name+" not in schema", 0)
		}
	}
	for _, pred := range r.Predicates {
		if pred.PType != PredicateGE {
			return errors.WrapPrefix(ErrInvalidStructure, "unsupported predicate type "+string(pred.PType), 0)
		}
		if !schema.Contains(pred.AttrName) {
			return errors.WrapPrefix(ErrInvalidStructure, "predicate attribute "+pred.AttrName+" not in schema", 0)
		}
		if _, revealed := r.RevealedAttrs[pred.AttrName]; revealed {
			return errors.WrapPrefix(ErrInvalidStructure, "predicate over revealed attribute "+pred.AttrName, 0)
		}
	}
	return nil
}
