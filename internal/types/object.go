package types

import "argus/internal/source"

// TObjectAny is an object of unknown class.
type TObjectAny struct{}

func (*TObjectAny) AtomicKind() Kind { return KindObjectAny }
func (t *TObjectAny) Clone() Atomic  { c := *t; return &c }

// TEnum is an instance of an enum, optionally narrowed to one case.
type TEnum struct {
	Name source.StringID
	Case source.StringID // NoStringID when any case is possible
}

func (*TEnum) AtomicKind() Kind { return KindEnum }
func (t *TEnum) Clone() Atomic  { c := *t; return &c }

// TNamedObject is a nominal object type, possibly generic, possibly an
// intersection (Foo&Bar renders as Name=Foo with Bar in Intersections).
type TNamedObject struct {
	Name           source.StringID
	TypeParameters []*Union // nil when the class-like is not parameterized here
	Intersections  []Atomic
	// Static marks a static::-resolved reference; containment treats it
	// like the named class but template replacement may rebind it.
	Static bool
}

func (*TNamedObject) AtomicKind() Kind { return KindNamedObject }
func (t *TNamedObject) Clone() Atomic {
	c := &TNamedObject{Name: t.Name, Static: t.Static}
	if len(t.TypeParameters) > 0 {
		c.TypeParameters = make([]*Union, len(t.TypeParameters))
		for i, p := range t.TypeParameters {
			c.TypeParameters[i] = p.Clone()
		}
	}
	c.Intersections = cloneAtomics(t.Intersections)
	return c
}

// NewNamedObject is a plain nominal reference.
func NewNamedObject(name source.StringID) *TNamedObject {
	return &TNamedObject{Name: name}
}

// NewGenericObject is Name<params...>.
func NewGenericObject(name source.StringID, params ...*Union) *TNamedObject {
	return &TNamedObject{Name: name, TypeParameters: params}
}
