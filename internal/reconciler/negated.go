package reconciler

import (
	"math"

	"argus/internal/types"
)

// Subtract removes every value of removed from existing. Atomics fully
// covered by removed are dropped; integers split around the removed
// range; generic parameters recurse into their constraint and rewrap.
// The dual of intersection: reconcile(!T, U) = Subtract(U, T).
func Subtract(g types.ClassGraph, existing, removed *types.Union) *types.Union {
	if existing == nil || removed == nil || removed.IsNever() {
		return existing
	}
	kept := existing.Types
	for _, r := range removed.Types {
		var next []types.Atomic
		for _, e := range kept {
			next = append(next, subtractAtomic(g, e, r)...)
		}
		kept = next
	}
	if len(kept) == 0 {
		return types.Never()
	}
	out := types.NewUnion(kept...)
	out.PossiblyUndefinedFromTry = existing.PossiblyUndefinedFromTry
	out.ReferenceFree = existing.ReferenceFree
	out.HadTemplate = existing.HadTemplate
	return out
}

// subtractAtomic returns what remains of e after removing r: nothing,
// e unchanged, or a split replacement.
func subtractAtomic(g types.ClassGraph, e, r types.Atomic) []types.Atomic {
	// Removing null from mixed leaves the non-null tier.
	if m, ok := e.(*types.TMixed); ok {
		if _, isNull := r.(*types.TNull); isNull {
			out := m.Clone().(*types.TMixed)
			out.NonNull = true
			out.Vanilla = false
			return []types.Atomic{out}
		}
		// Mixed minus anything narrower stays mixed.
		return []types.Atomic{e.Clone()}
	}

	// Generic parameters subtract through their constraint and rewrap so
	// the standin survives.
	if p, ok := e.(*types.TGenericParam); ok {
		narrowed := Subtract(g, p.Constraint, types.NewUnion(r.Clone()))
		if narrowed.IsNever() {
			return nil
		}
		out := p.Clone().(*types.TGenericParam)
		out.Constraint = narrowed
		return []types.Atomic{out}
	}

	switch rt := r.(type) {
	case *types.TBool:
		if et, ok := e.(*types.TBool); ok {
			return subtractBool(et, rt)
		}
	case *types.TInt:
		if et, ok := e.(*types.TInt); ok {
			return subtractInt(et, rt)
		}
	case *types.TString:
		if et, ok := e.(*types.TString); ok {
			return subtractString(et, rt)
		}
	}

	// General case: drop e when it is fully inside r, keep otherwise.
	var res types.ComparisonResult
	if types.AtomicContainedBy(g, e, r, &res) && !res.CoercionRequired {
		return nil
	}
	return []types.Atomic{e.Clone()}
}

func subtractBool(e, r *types.TBool) []types.Atomic {
	if r.Value == nil {
		return nil
	}
	if e.Value == nil {
		return []types.Atomic{types.NewBoolLiteral(!*r.Value)}
	}
	if *e.Value == *r.Value {
		return nil
	}
	return []types.Atomic{e.Clone()}
}

// subtractInt splits e's interval around r's, producing up to two ranges.
func subtractInt(e, r *types.TInt) []types.Atomic {
	eLo, eHi := e.LowerBound(), e.UpperBound()
	rLo, rHi := r.LowerBound(), r.UpperBound()
	if rHi < eLo || rLo > eHi {
		return []types.Atomic{e.Clone()}
	}
	var out []types.Atomic
	if rLo > eLo && rLo != math.MinInt64 {
		out = append(out, boundedInt(eLo, rLo-1))
	}
	if rHi < eHi && rHi != math.MaxInt64 {
		out = append(out, boundedInt(rHi+1, eHi))
	}
	return out
}

func boundedInt(lo, hi int64) *types.TInt {
	t := &types.TInt{}
	if lo != math.MinInt64 {
		v := lo
		t.Min = &v
	}
	if hi != math.MaxInt64 {
		v := hi
		t.Max = &v
	}
	return t
}

// subtractString removes a string set from a string. The flag lattice has
// one carveable hole: removing the empty literal from a plain string
// leaves non-empty-string. Other literal removals from a broad string
// keep the string as-is, since the lattice cannot express the gap.
func subtractString(e, r *types.TString) []types.Atomic {
	if r.Literal != nil {
		if e.Literal != nil {
			if *e.Literal == *r.Literal {
				return nil
			}
			return []types.Atomic{e.Clone()}
		}
		if *r.Literal == "" && !e.IsNonEmpty {
			out := e.Clone().(*types.TString)
			out.IsNonEmpty = true
			return []types.Atomic{out}
		}
		return []types.Atomic{e.Clone()}
	}
	// Removing a broad string drops every string it contains.
	if stringCovered(e, r) {
		return nil
	}
	return []types.Atomic{e.Clone()}
}

// stringCovered reports e ⊑ r on the string flag lattice.
func stringCovered(e, r *types.TString) bool {
	var res types.ComparisonResult
	return types.AtomicContainedBy(types.EmptyGraph{}, e, r, &res) && !res.CoercionRequired
}
