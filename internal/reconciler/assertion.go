package reconciler

import (
	"fmt"

	"argus/internal/types"
)

// Assertion is one typed predicate attached to a control-flow edge.
// Reconciliation applies it to the union flowing along that edge.
// The sum is closed; the reconciler dispatches exhaustively.
type Assertion interface {
	// Negate returns the dual assertion.
	Negate() Assertion
	// Negated reports whether this is the negative member of its pair.
	Negated() bool
	String() string
}

// IsType asserts the value is contained by Type.
type IsType struct{ Type *types.Union }

// IsNotType asserts the value is not contained by Type.
type IsNotType struct{ Type *types.Union }

// IsIdentical asserts strict equality with a value of Type.
type IsIdentical struct{ Type *types.Union }

// IsNotIdentical asserts strict inequality with every value of Type.
type IsNotIdentical struct{ Type *types.Union }

// Truthy asserts the value is truthy.
type Truthy struct{}

// Falsy asserts the value is falsy.
type Falsy struct{}

// IsIsset asserts the path is set and non-null.
type IsIsset struct{}

// IsNotIsset asserts the path is unset or null.
type IsNotIsset struct{}

// IsEqualIsset is the isset produced by null-coalescing reads; it narrows
// like IsIsset but never reports redundancy.
type IsEqualIsset struct{}

// HasArrayKey asserts the container has the literal key, defined.
type HasArrayKey struct{ Key types.ArrayKey }

// DoesNotHaveArrayKey asserts the container lacks the literal key.
type DoesNotHaveArrayKey struct{ Key types.ArrayKey }

// HasNonnullEntryForKey asserts the container has the key with a
// non-null value.
type HasNonnullEntryForKey struct{ Key types.ArrayKey }

// HasStringArrayAccess asserts the container is array-accessible with
// string keys; the weaker form of HasArrayKey for unknown key exprs.
type HasStringArrayAccess struct{}

// HasIntOrStringArrayAccess is HasStringArrayAccess with int keys allowed.
type HasIntOrStringArrayAccess struct{}

// InArray asserts membership in a value set described by Type.
type InArray struct{ Type *types.Union }

// NotInArray asserts non-membership.
type NotInArray struct{ Type *types.Union }

// NonEmptyCountable asserts count > 0.
type NonEmptyCountable struct{}

// NotNonEmptyCountable asserts count == 0.
type NotNonEmptyCountable struct{}

// Countable asserts the value is an array or a countable object.
type Countable struct{}

// IntRangeCompare narrows integers against a comparison with a constant:
// Op one of "<", "<=", ">", ">=".
type IntRangeCompare struct {
	Op    string
	Value int64
}

func (a IsType) Negate() Assertion              { return IsNotType{Type: a.Type} }
func (a IsNotType) Negate() Assertion           { return IsType{Type: a.Type} }
func (a IsIdentical) Negate() Assertion         { return IsNotIdentical{Type: a.Type} }
func (a IsNotIdentical) Negate() Assertion      { return IsIdentical{Type: a.Type} }
func (Truthy) Negate() Assertion                { return Falsy{} }
func (Falsy) Negate() Assertion                 { return Truthy{} }
func (IsIsset) Negate() Assertion               { return IsNotIsset{} }
func (IsNotIsset) Negate() Assertion            { return IsIsset{} }
func (IsEqualIsset) Negate() Assertion          { return IsNotIsset{} }
func (a HasArrayKey) Negate() Assertion         { return DoesNotHaveArrayKey{Key: a.Key} }
func (a DoesNotHaveArrayKey) Negate() Assertion { return HasArrayKey{Key: a.Key} }
func (a HasNonnullEntryForKey) Negate() Assertion {
	return DoesNotHaveArrayKey{Key: a.Key}
}
func (HasStringArrayAccess) Negate() Assertion      { return Falsy{} }
func (HasIntOrStringArrayAccess) Negate() Assertion { return Falsy{} }
func (a InArray) Negate() Assertion                 { return NotInArray{Type: a.Type} }
func (a NotInArray) Negate() Assertion              { return InArray{Type: a.Type} }
func (NonEmptyCountable) Negate() Assertion         { return NotNonEmptyCountable{} }
func (NotNonEmptyCountable) Negate() Assertion      { return NonEmptyCountable{} }
func (Countable) Negate() Assertion                 { return Falsy{} }
func (a IntRangeCompare) Negate() Assertion {
	switch a.Op {
	case "<":
		return IntRangeCompare{Op: ">=", Value: a.Value}
	case "<=":
		return IntRangeCompare{Op: ">", Value: a.Value}
	case ">":
		return IntRangeCompare{Op: "<=", Value: a.Value}
	default:
		return IntRangeCompare{Op: "<", Value: a.Value}
	}
}

func (IsType) Negated() bool                    { return false }
func (IsNotType) Negated() bool                 { return true }
func (IsIdentical) Negated() bool               { return false }
func (IsNotIdentical) Negated() bool            { return true }
func (Truthy) Negated() bool                    { return false }
func (Falsy) Negated() bool                     { return false }
func (IsIsset) Negated() bool                   { return false }
func (IsNotIsset) Negated() bool                { return true }
func (IsEqualIsset) Negated() bool              { return false }
func (HasArrayKey) Negated() bool               { return false }
func (DoesNotHaveArrayKey) Negated() bool       { return true }
func (HasNonnullEntryForKey) Negated() bool     { return false }
func (HasStringArrayAccess) Negated() bool      { return false }
func (HasIntOrStringArrayAccess) Negated() bool { return false }
func (InArray) Negated() bool                   { return false }
func (NotInArray) Negated() bool                { return true }
func (NonEmptyCountable) Negated() bool         { return false }
func (NotNonEmptyCountable) Negated() bool      { return true }
func (Countable) Negated() bool                 { return false }
func (IntRangeCompare) Negated() bool           { return false }

func (a IsType) String() string         { return "is-type" }
func (a IsNotType) String() string      { return "!is-type" }
func (a IsIdentical) String() string    { return "===" }
func (a IsNotIdentical) String() string { return "!==" }
func (Truthy) String() string           { return "truthy" }
func (Falsy) String() string            { return "falsy" }
func (IsIsset) String() string          { return "isset" }
func (IsNotIsset) String() string       { return "!isset" }
func (IsEqualIsset) String() string     { return "=isset" }
func (a HasArrayKey) String() string    { return "has-array-key " + a.Key.String() }
func (a DoesNotHaveArrayKey) String() string {
	return "!has-array-key " + a.Key.String()
}
func (a HasNonnullEntryForKey) String() string {
	return "has-nonnull-entry " + a.Key.String()
}
func (HasStringArrayAccess) String() string      { return "string-array-access" }
func (HasIntOrStringArrayAccess) String() string { return "int-string-array-access" }
func (InArray) String() string                   { return "in-array" }
func (NotInArray) String() string                { return "!in-array" }
func (NonEmptyCountable) String() string         { return "non-empty-countable" }
func (NotNonEmptyCountable) String() string      { return "!non-empty-countable" }
func (Countable) String() string                 { return "countable" }
func (a IntRangeCompare) String() string {
	return fmt.Sprintf("int%s%d", a.Op, a.Value)
}
