package types

import "sort"

// Union is the join of its atomics: a value of this type has *some* of them.
// An empty Types slice is invalid; the canonical empty union is Never().
// Literal atomics may coexist with the broader types refining them; the
// comparator resolves which dominates.
type Union struct {
	Types []Atomic

	// PossiblyUndefinedFromTry marks values assigned inside a try block
	// observed after it; they may not have been written at all.
	PossiblyUndefinedFromTry bool
	// ReferenceFree is set when no by-reference alias can retype the value.
	ReferenceFree bool
	// HadTemplate records that template replacement already ran over this
	// union, so standins left inside are deliberate.
	HadTemplate bool
}

// NewUnion builds a union from atomics. Empty input yields Never().
func NewUnion(atomics ...Atomic) *Union {
	if len(atomics) == 0 {
		return Never()
	}
	return &Union{Types: atomics}
}

// Never is the canonical empty union.
func Never() *Union { return &Union{Types: []Atomic{&TNever{}}} }

// MixedUnion is the gradual top as a union.
func MixedUnion() *Union { return &Union{Types: []Atomic{NewMixed()}} }

// Clone deep-copies the union.
func (u *Union) Clone() *Union {
	if u == nil {
		return nil
	}
	c := &Union{
		PossiblyUndefinedFromTry: u.PossiblyUndefinedFromTry,
		ReferenceFree:            u.ReferenceFree,
		HadTemplate:              u.HadTemplate,
	}
	c.Types = make([]Atomic, len(u.Types))
	for i, a := range u.Types {
		c.Types[i] = a.Clone()
	}
	return c
}

// IsNever reports whether the union is empty (only Never members).
func (u *Union) IsNever() bool {
	if u == nil || len(u.Types) == 0 {
		return true
	}
	for _, a := range u.Types {
		if a.AtomicKind() != KindNever {
			return false
		}
	}
	return true
}

// IsMixed reports whether the union is a single mixed atomic.
func (u *Union) IsMixed() bool {
	if u == nil || len(u.Types) != 1 {
		return false
	}
	_, ok := u.Types[0].(*TMixed)
	return ok
}

// IsSingle reports whether exactly one non-never atomic remains.
func (u *Union) IsSingle() bool {
	return u != nil && len(u.Types) == 1
}

// Single returns the only atomic, when IsSingle.
func (u *Union) Single() (Atomic, bool) {
	if u.IsSingle() {
		return u.Types[0], true
	}
	return nil, false
}

// HasNull reports whether null is a member.
func (u *Union) HasNull() bool {
	for _, a := range u.Types {
		if a.AtomicKind() == KindNull {
			return true
		}
	}
	return false
}

// IsNullable reports whether null is reachable, through mixed included.
func (u *Union) IsNullable() bool {
	for _, a := range u.Types {
		switch t := a.(type) {
		case *TNull:
			return true
		case *TMixed:
			if !t.NonNull {
				return true
			}
		}
	}
	return false
}

// HasKind reports whether any member has the given kind.
func (u *Union) HasKind(k Kind) bool {
	for _, a := range u.Types {
		if a.AtomicKind() == k {
			return true
		}
	}
	return false
}

// FirstOfKind returns the first member of the given kind.
func (u *Union) FirstOfKind(k Kind) (Atomic, bool) {
	for _, a := range u.Types {
		if a.AtomicKind() == k {
			return a, true
		}
	}
	return nil, false
}

// WithoutKind returns a copy with every member of kind k removed.
// The result is Never() when nothing remains.
func (u *Union) WithoutKind(k Kind) *Union {
	kept := make([]Atomic, 0, len(u.Types))
	for _, a := range u.Types {
		if a.AtomicKind() != k {
			kept = append(kept, a.Clone())
		}
	}
	out := NewUnion(kept...)
	out.PossiblyUndefinedFromTry = u.PossiblyUndefinedFromTry
	out.ReferenceFree = u.ReferenceFree
	out.HadTemplate = u.HadTemplate
	return out
}

// HasTemplateStandins reports whether a generic parameter or conditional
// remains anywhere at the top level.
func (u *Union) HasTemplateStandins() bool {
	for _, a := range u.Types {
		switch a.AtomicKind() {
		case KindGenericParam, KindConditional, KindVariable:
			return true
		}
	}
	return false
}

// SortKey returns a canonical ordering key for deterministic iteration.
func (u *Union) SortKey() string {
	keys := make([]string, len(u.Types))
	for i, a := range u.Types {
		keys[i] = atomicKey(a)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "|"
		}
		out += k
	}
	return out
}

// Equals reports structural equality modulo member ordering. Flags are
// ignored; the comparator owns semantic equivalence.
func (u *Union) Equals(other *Union) bool {
	if u == nil || other == nil {
		return u == other
	}
	if len(u.Types) != len(other.Types) {
		return false
	}
	return u.SortKey() == other.SortKey()
}
