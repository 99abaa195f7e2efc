package types

import (
	"math"

	"argus/internal/source"
)

// TBool is bool, optionally narrowed to a known literal.
type TBool struct {
	Value *bool // nil when either literal is possible
}

func (*TBool) AtomicKind() Kind { return KindBool }
func (t *TBool) Clone() Atomic {
	c := *t
	if t.Value != nil {
		v := *t.Value
		c.Value = &v
	}
	return &c
}

func NewBool() *TBool { return &TBool{} }

func NewBoolLiteral(v bool) *TBool { return &TBool{Value: &v} }

// TInt is an integer interval. Nil bounds are open; Min==Max is a literal.
type TInt struct {
	Min *int64
	Max *int64
}

func (*TInt) AtomicKind() Kind { return KindInt }
func (t *TInt) Clone() Atomic {
	c := *t
	if t.Min != nil {
		v := *t.Min
		c.Min = &v
	}
	if t.Max != nil {
		v := *t.Max
		c.Max = &v
	}
	return &c
}

func NewInt() *TInt { return &TInt{} }

func NewIntLiteral(v int64) *TInt {
	lo, hi := v, v
	return &TInt{Min: &lo, Max: &hi}
}

// NewIntFrom is int<lo, max>.
func NewIntFrom(lo int64) *TInt { return &TInt{Min: &lo} }

// NewIntTo is int<min, hi>.
func NewIntTo(hi int64) *TInt { return &TInt{Max: &hi} }

func NewIntRange(lo, hi int64) *TInt { return &TInt{Min: &lo, Max: &hi} }

// Literal returns the known value when the interval is a single point.
func (t *TInt) Literal() (int64, bool) {
	if t.Min != nil && t.Max != nil && *t.Min == *t.Max {
		return *t.Min, true
	}
	return 0, false
}

// Unbounded reports whether the interval is plain int.
func (t *TInt) Unbounded() bool { return t.Min == nil && t.Max == nil }

// LowerBound returns the effective minimum.
func (t *TInt) LowerBound() int64 {
	if t.Min == nil {
		return math.MinInt64
	}
	return *t.Min
}

// UpperBound returns the effective maximum.
func (t *TInt) UpperBound() int64 {
	if t.Max == nil {
		return math.MaxInt64
	}
	return *t.Max
}

// Contains reports interval containment of other in t.
func (t *TInt) Contains(other *TInt) bool {
	return t.LowerBound() <= other.LowerBound() && other.UpperBound() <= t.UpperBound()
}

// IntersectRange clips t to [lo, hi]; returns false when the result is empty.
func (t *TInt) IntersectRange(lo, hi int64) (*TInt, bool) {
	newLo := max(t.LowerBound(), lo)
	newHi := min(t.UpperBound(), hi)
	if newLo > newHi {
		return nil, false
	}
	out := &TInt{}
	if newLo != math.MinInt64 {
		out.Min = &newLo
	}
	if newHi != math.MaxInt64 {
		out.Max = &newHi
	}
	return out, true
}

// TFloat is float, optionally a known literal.
type TFloat struct {
	Value *float64
}

func (*TFloat) AtomicKind() Kind { return KindFloat }
func (t *TFloat) Clone() Atomic {
	c := *t
	if t.Value != nil {
		v := *t.Value
		c.Value = &v
	}
	return &c
}

func NewFloat() *TFloat { return &TFloat{} }

func NewFloatLiteral(v float64) *TFloat { return &TFloat{Value: &v} }

// TString is string with an optional known literal and refinement flags.
//
// The flags form a normal form: Truthy implies NonEmpty, and a literal
// determines every flag. Constructors and Normalize enforce this; incoherent
// combinations cannot be built through the package API.
type TString struct {
	Literal     *string
	IsNumeric   bool
	IsTruthy    bool
	IsNonEmpty  bool
	IsLowercase bool
	IsClassLike bool
}

func (*TString) AtomicKind() Kind { return KindString }
func (t *TString) Clone() Atomic {
	c := *t
	if t.Literal != nil {
		v := *t.Literal
		c.Literal = &v
	}
	return &c
}

func NewString() *TString { return &TString{} }

func NewStringLiteral(v string) *TString {
	t := &TString{Literal: &v}
	t.Normalize()
	return t
}

func NewNonEmptyString() *TString { return &TString{IsNonEmpty: true} }

func NewTruthyString() *TString { return &TString{IsTruthy: true, IsNonEmpty: true} }

func NewNumericString() *TString { return &TString{IsNumeric: true, IsNonEmpty: true} }

func NewLowercaseString() *TString { return &TString{IsLowercase: true} }

// Normalize upgrades weaker flags implied by stronger ones and derives all
// flags from a known literal.
func (t *TString) Normalize() {
	if t.Literal != nil {
		lit := *t.Literal
		t.IsNonEmpty = lit != ""
		t.IsTruthy = lit != "" && lit != "0"
		t.IsNumeric = isNumericLiteral(lit)
		t.IsLowercase = isLowercaseLiteral(lit)
		return
	}
	if t.IsTruthy || t.IsNumeric {
		t.IsNonEmpty = true
	}
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	digits := 0
	dot := false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

func isLowercaseLiteral(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return false
		}
	}
	return true
}

// TArrayKey is int|string as used for array keys.
type TArrayKey struct{}

func (*TArrayKey) AtomicKind() Kind { return KindArrayKey }
func (t *TArrayKey) Clone() Atomic  { c := *t; return &c }

// TNumber is int|float.
type TNumber struct{}

func (*TNumber) AtomicKind() Kind { return KindNumber }
func (t *TNumber) Clone() Atomic  { c := *t; return &c }

// TClassString is class-string, optionally constrained to a class-like
// (class-string<T>). NoStringID means any class name.
type TClassString struct {
	Target source.StringID
}

func (*TClassString) AtomicKind() Kind { return KindClassString }
func (t *TClassString) Clone() Atomic  { c := *t; return &c }

// TScalar is the top scalar: bool|int|float|string.
type TScalar struct{}

func (*TScalar) AtomicKind() Kind { return KindScalar }
func (t *TScalar) Clone() Atomic  { c := *t; return &c }
