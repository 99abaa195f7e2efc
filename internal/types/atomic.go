package types

import (
	"fmt"

	"argus/internal/source"
)

// Kind enumerates every atomic type the lattice knows about.
//
// The sum is closed on purpose: the comparator, combiner, intersector,
// reconciler and template replacer all dispatch over it with exhaustive
// switches, and a new kind must be threaded through each of them.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArrayKey
	KindNumber
	KindClassString
	KindScalar
	KindNull
	KindVoid
	KindNever
	KindMixed
	KindKeyedArray
	KindList
	KindIterable
	KindObjectAny
	KindEnum
	KindNamedObject
	KindCallable
	KindResource
	KindGenericParam
	KindVariable
	KindConditional
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArrayKey:
		return "array-key"
	case KindNumber:
		return "number"
	case KindClassString:
		return "class-string"
	case KindScalar:
		return "scalar"
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindNever:
		return "never"
	case KindMixed:
		return "mixed"
	case KindKeyedArray:
		return "keyed-array"
	case KindList:
		return "list"
	case KindIterable:
		return "iterable"
	case KindObjectAny:
		return "object"
	case KindEnum:
		return "enum"
	case KindNamedObject:
		return "named-object"
	case KindCallable:
		return "callable"
	case KindResource:
		return "resource"
	case KindGenericParam:
		return "generic-parameter"
	case KindVariable:
		return "variable"
	case KindConditional:
		return "conditional"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Atomic is one member of the closed type sum. Implementations live in
// scalar.go, array.go, object.go, callable.go and below in this file.
type Atomic interface {
	AtomicKind() Kind
	// Clone returns a deep copy; narrowing mutates clones, never originals.
	Clone() Atomic
}

// Truthiness tracks partial boolean knowledge on mixed.
type Truthiness uint8

const (
	TruthinessAny Truthiness = iota
	TruthinessTruthy
	TruthinessFalsy
)

// TNull is the null type.
type TNull struct{}

func (*TNull) AtomicKind() Kind { return KindNull }
func (t *TNull) Clone() Atomic  { c := *t; return &c }

// TVoid is the void return type.
type TVoid struct{}

func (*TVoid) AtomicKind() Kind { return KindVoid }
func (t *TVoid) Clone() Atomic  { c := *t; return &c }

// TNever is the bottom type; the canonical empty union holds exactly one.
type TNever struct{}

func (*TNever) AtomicKind() Kind { return KindNever }
func (t *TNever) Clone() Atomic  { c := *t; return &c }

// TMixed is gradual-typing top, refined by partial-knowledge flags.
type TMixed struct {
	NonNull       bool
	Truthiness    Truthiness
	IssetFromLoop bool
	Vanilla       bool
}

func (*TMixed) AtomicKind() Kind { return KindMixed }
func (t *TMixed) Clone() Atomic  { c := *t; return &c }

// NewMixed returns plain vanilla mixed.
func NewMixed() *TMixed { return &TMixed{Vanilla: true} }

// NewNonNullMixed returns mixed known to exclude null.
func NewNonNullMixed() *TMixed { return &TMixed{NonNull: true} }

// TResource is a runtime resource handle, optionally known (un)closed.
type TResource struct {
	Closed *bool
}

func (*TResource) AtomicKind() Kind { return KindResource }
func (t *TResource) Clone() Atomic {
	c := *t
	if t.Closed != nil {
		v := *t.Closed
		c.Closed = &v
	}
	return &c
}

// TVariable is an unresolved flow variable used as a template bound sink.
type TVariable struct {
	Name string
}

func (*TVariable) AtomicKind() Kind { return KindVariable }
func (t *TVariable) Clone() Atomic  { c := *t; return &c }

// EntityKind distinguishes the defining entity of a generic parameter.
type EntityKind uint8

const (
	EntityClassLike EntityKind = iota
	EntityFunctionLike
)

// TGenericParam is a declared template parameter standing in for a type.
type TGenericParam struct {
	Name           source.StringID
	DefiningEntity source.StringID
	EntityKind     EntityKind
	Constraint     *Union
	Intersections  []Atomic
}

func (*TGenericParam) AtomicKind() Kind { return KindGenericParam }
func (t *TGenericParam) Clone() Atomic {
	c := *t
	c.Constraint = t.Constraint.Clone()
	c.Intersections = cloneAtomics(t.Intersections)
	return &c
}

// TConditional is `(subject is IfType) ? Then : Else`, resolved lazily
// during template replacement.
type TConditional struct {
	Subject *Union
	IfType  *Union
	Then    *Union
	Else    *Union
}

func (*TConditional) AtomicKind() Kind { return KindConditional }
func (t *TConditional) Clone() Atomic {
	return &TConditional{
		Subject: t.Subject.Clone(),
		IfType:  t.IfType.Clone(),
		Then:    t.Then.Clone(),
		Else:    t.Else.Clone(),
	}
}

func cloneAtomics(in []Atomic) []Atomic {
	if len(in) == 0 {
		return nil
	}
	out := make([]Atomic, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
