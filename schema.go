package indycrypto

// Schema is the ordered list of attribute names a credential carries. It is
// supplied by an external schema provider and consumed read-only.
type Schema struct {
	AttrNames []string
}

// NewSchema returns a schema over the given attribute names.
func NewSchema(attrNames ...string) *Schema {
	return &Schema{AttrNames: attrNames}
}

// Contains reports whether name is one of the schema's attributes.
func (s *Schema) Contains(name string) bool {
	for _, n := range s.AttrNames {
		if n == name {
			return true
		}
	}
	return false
}
