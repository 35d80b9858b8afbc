package apitree

import (
	"go/token"
	"strings"
)

// Kind classifies an exported member.
type Kind string

const (
	KindFunction Kind = "function"
	KindType     Kind = "type"
	KindError    Kind = "error" // a type implementing error
	KindConstant Kind = "constant"
	KindVariable Kind = "variable"
)

// Member is one exported declaration of a package.
type Member struct {
	Name      string
	Kind      Kind
	Summary   string
	Doc       string
	Bases     []string // embedded type names, as declared
	Methods   []string // exported method names of types
	Signature string
}

// IsType reports whether the member is a type, error types included.
func (m *Member) IsType() bool {
	return m.Kind == KindType || m.Kind == KindError
}

// Classify maps a probed object onto exactly one kind.
func Classify(p Probe) Kind {
	switch {
	case p.IsType() && p.IsError():
		return KindError
	case p.IsType():
		return KindType
	case p.IsCallable():
		return KindFunction
	case p.IsConstant():
		return KindConstant
	default:
		return KindVariable
	}
}

// newMember classifies obj. It returns nil when obj is not part of the
// exported surface of the package at path.
func newMember(obj Object, path string) *Member {
	name := obj.Name()
	if name == "_" || !obj.Exported() || !token.IsExported(name) {
		return nil
	}
	if !definedWithin(obj.Origin(), path) {
		return nil
	}

	m := &Member{
		Name:      name,
		Kind:      Classify(obj),
		Bases:     obj.Bases(),
		Signature: obj.Signature(),
	}
	if m.IsType() {
		m.Methods = obj.Methods()
	}
	m.Doc, m.Summary = describe(obj.Doc)
	return m
}

func definedWithin(origin, path string) bool {
	if origin == "" || origin == path {
		return true
	}
	return strings.HasPrefix(origin, path+Separator)
}
