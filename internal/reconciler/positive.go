package reconciler

import (
	"math"

	"argus/internal/source"
	"argus/internal/types"
)

// reconcileAssertion applies one assertion to the union currently known
// for a path and returns the narrowed union. Pure except for the
// type-variable bounds recorded on the context.
func reconcileAssertion(g types.ClassGraph, a Assertion, existing *types.Union, ctx *BlockContext) *types.Union {
	switch as := a.(type) {
	case IsType:
		return reconcileIsType(g, as.Type, existing, ctx)
	case IsIdentical:
		return reconcileIsType(g, as.Type, existing, ctx)
	case IsNotType:
		return Subtract(g, existing, as.Type)
	case IsNotIdentical:
		return Subtract(g, existing, as.Type)
	case Truthy:
		return types.FoldUnionTruthy(existing)
	case Falsy:
		return types.FoldUnionFalsy(existing)
	case IsIsset:
		return reconcileIsset(existing, ctx)
	case IsEqualIsset:
		return reconcileIsset(existing, ctx)
	case IsNotIsset:
		return types.NewUnion(&types.TNull{})
	case HasArrayKey:
		return reconcileHasKey(g, as.Key, existing, false)
	case HasNonnullEntryForKey:
		return reconcileHasKey(g, as.Key, existing, true)
	case DoesNotHaveArrayKey:
		return reconcileLacksKey(as.Key, existing)
	case HasStringArrayAccess:
		return reconcileArrayAccess(existing)
	case HasIntOrStringArrayAccess:
		return reconcileArrayAccess(existing)
	case InArray:
		return types.Intersect(g, existing, as.Type)
	case NotInArray:
		return reconcileNotInArray(g, existing, as.Type)
	case NonEmptyCountable:
		return reconcileNonEmptyCountable(existing)
	case NotNonEmptyCountable:
		return reconcileEmptyCountable(existing)
	case Countable:
		return reconcileCountable(g, existing)
	case IntRangeCompare:
		return reconcileIntCompare(as, existing)
	default:
		return existing
	}
}

// reconcileIsType intersects, first recording any flow-variable sinks in
// the asserted type as lower bounds on the context.
func reconcileIsType(g types.ClassGraph, asserted, existing *types.Union, ctx *BlockContext) *types.Union {
	if ctx != nil {
		for _, a := range asserted.Types {
			if v, ok := a.(*types.TVariable); ok {
				ctx.RecordTypeVariableBound(v.Name, existing.Clone())
			}
		}
	}
	return types.Intersect(g, existing, asserted)
}

// reconcileIsset removes null and the possibly-undefined mark. Inside a
// loop, mixed keeps the isset-from-loop tint so later iterations do not
// over-narrow.
func reconcileIsset(existing *types.Union, ctx *BlockContext) *types.Union {
	var kept []types.Atomic
	for _, a := range existing.Types {
		switch t := a.(type) {
		case *types.TNull, *types.TVoid:
		case *types.TMixed:
			out := t.Clone().(*types.TMixed)
			out.NonNull = true
			out.Vanilla = false
			if ctx != nil && ctx.InsideLoop {
				out.IssetFromLoop = true
			}
			kept = append(kept, out)
		default:
			kept = append(kept, a.Clone())
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	out := types.NewUnion(kept...)
	out.ReferenceFree = existing.ReferenceFree
	out.HadTemplate = existing.HadTemplate
	return out
}

// reconcileHasKey marks the literal key present and defined on every
// container atomic; nonnull additionally strips null from the entry.
func reconcileHasKey(g types.ClassGraph, key types.ArrayKey, existing *types.Union, nonnull bool) *types.Union {
	var kept []types.Atomic
	for _, a := range existing.Types {
		switch t := a.(type) {
		case *types.TKeyedArray:
			out := t.Clone().(*types.TKeyedArray)
			entry, ok := out.Item(key)
			switch {
			case ok:
				entry.PossiblyUndefined = false
			case out.Parameters != nil:
				entry = types.KeyedEntry{Value: out.Parameters.Value.Clone()}
			default:
				// Sealed shape without the key cannot satisfy the check.
				continue
			}
			if nonnull {
				entry.Value = Subtract(g, entry.Value, types.NewUnion(&types.TNull{}))
				if entry.Value.IsNever() {
					continue
				}
			}
			out.SetItem(key, entry)
			out.NonEmpty = true
			kept = append(kept, out)
		case *types.TList:
			if !key.IsInt || key.Int < 0 {
				continue
			}
			out := t.Clone().(*types.TList)
			idx := int(key.Int)
			entry, ok := out.Element(idx)
			if !ok {
				if out.KnownCount != nil && *out.KnownCount <= idx {
					continue
				}
				entry = types.KeyedEntry{Value: out.ElementType.Clone()}
			}
			entry.PossiblyUndefined = false
			if nonnull {
				entry.Value = Subtract(g, entry.Value, types.NewUnion(&types.TNull{}))
				if entry.Value.IsNever() {
					continue
				}
			}
			out.SetElement(idx, entry)
			out.NonEmpty = true
			kept = append(kept, out)
		case *types.TMixed:
			kept = append(kept, a.Clone())
		case *types.TGenericParam:
			narrowed := reconcileHasKey(g, key, t.Constraint, nonnull)
			if narrowed.IsNever() {
				continue
			}
			out := t.Clone().(*types.TGenericParam)
			out.Constraint = narrowed
			kept = append(kept, out)
		default:
			kept = append(kept, a.Clone())
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	return types.NewUnion(kept...)
}

// reconcileLacksKey removes or weakens the literal key on every container.
func reconcileLacksKey(key types.ArrayKey, existing *types.Union) *types.Union {
	var kept []types.Atomic
	for _, a := range existing.Types {
		switch t := a.(type) {
		case *types.TKeyedArray:
			entry, ok := t.Item(key)
			if ok && !entry.PossiblyUndefined && t.Sealed() {
				// The key is definitely there; this atomic cannot survive.
				continue
			}
			out := t.Clone().(*types.TKeyedArray)
			out.RemoveItem(key)
			kept = append(kept, out)
		case *types.TList:
			if key.IsInt && t.NonEmpty && key.Int == 0 {
				continue
			}
			kept = append(kept, a.Clone())
		default:
			kept = append(kept, a.Clone())
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	return types.NewUnion(kept...)
}

// reconcileArrayAccess keeps everything array-accessible.
func reconcileArrayAccess(existing *types.Union) *types.Union {
	var kept []types.Atomic
	for _, a := range existing.Types {
		switch a.(type) {
		case *types.TKeyedArray, *types.TList, *types.TMixed, *types.TNamedObject, *types.TObjectAny, *types.TGenericParam:
			kept = append(kept, a.Clone())
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	return types.NewUnion(kept...)
}

// reconcileNotInArray subtracts only when the set is all literals; a
// broad set proves nothing about the complement.
func reconcileNotInArray(g types.ClassGraph, existing, set *types.Union) *types.Union {
	for _, a := range set.Types {
		switch t := a.(type) {
		case *types.TInt:
			if _, ok := t.Literal(); !ok {
				return existing
			}
		case *types.TString:
			if t.Literal == nil {
				return existing
			}
		case *types.TBool:
			if t.Value == nil {
				return existing
			}
		case *types.TFloat:
			if t.Value == nil {
				return existing
			}
		case *types.TEnum:
		default:
			return existing
		}
	}
	return Subtract(g, existing, set)
}

func reconcileNonEmptyCountable(existing *types.Union) *types.Union {
	var kept []types.Atomic
	for _, a := range existing.Types {
		switch t := a.(type) {
		case *types.TKeyedArray:
			if t.Sealed() && len(t.KnownItems) == 0 {
				continue
			}
			out := t.Clone().(*types.TKeyedArray)
			out.NonEmpty = true
			kept = append(kept, out)
		case *types.TList:
			if t.KnownCount != nil && *t.KnownCount == 0 {
				continue
			}
			out := t.Clone().(*types.TList)
			out.NonEmpty = true
			kept = append(kept, out)
		default:
			kept = append(kept, a.Clone())
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	return types.NewUnion(kept...)
}

func reconcileEmptyCountable(existing *types.Union) *types.Union {
	var kept []types.Atomic
	for _, a := range existing.Types {
		switch t := a.(type) {
		case *types.TKeyedArray:
			if t.NonEmpty {
				continue
			}
			kept = append(kept, types.NewEmptyArray())
		case *types.TList:
			if t.NonEmpty || len(t.KnownElements) > 0 {
				continue
			}
			zero := 0
			kept = append(kept, &types.TList{ElementType: types.Never(), KnownCount: &zero})
		default:
			kept = append(kept, a.Clone())
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	return types.NewUnion(kept...)
}

// reconcileCountable keeps arrays and objects; mixed widens to
// array|object since anything countable is one of the two. A named object
// not already known to implement Countable picks up a Countable
// intersection bound.
func reconcileCountable(g types.ClassGraph, existing *types.Union) *types.Union {
	countable, resolved := countableSymbol(g)
	var kept []types.Atomic
	for _, a := range existing.Types {
		switch t := a.(type) {
		case *types.TKeyedArray, *types.TList, *types.TIterable, *types.TObjectAny, *types.TGenericParam:
			kept = append(kept, a.Clone())
		case *types.TNamedObject:
			out := t.Clone().(*types.TNamedObject)
			if resolved && t.Name != countable && !g.IsInstanceOf(t.Name, countable) {
				out.Intersections = append(out.Intersections, types.NewNamedObject(countable))
			}
			kept = append(kept, out)
		case *types.TMixed:
			kept = append(kept,
				types.NewKeyedArray(types.NewUnion(&types.TArrayKey{}), types.MixedUnion()),
				&types.TObjectAny{})
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	return types.NewUnion(kept...)
}

// countableSymbol resolves the Countable interface when the graph carries
// an interner. Type-level fakes do not, and then named objects pass
// through unrefined.
func countableSymbol(g types.ClassGraph) (source.StringID, bool) {
	held, ok := g.(interface{ Interner() *source.Interner })
	if !ok {
		return 0, false
	}
	return held.Interner().Intern("Countable"), true
}

// reconcileIntCompare clips integer ranges against a constant comparison.
// A range provably below zero also removes null and false, whose numeric
// coercions are zero.
func reconcileIntCompare(cmp IntRangeCompare, existing *types.Union) *types.Union {
	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	switch cmp.Op {
	case "<":
		hi = cmp.Value - 1
	case "<=":
		hi = cmp.Value
	case ">":
		lo = cmp.Value + 1
	case ">=":
		lo = cmp.Value
	}
	excludesZero := lo > 0 || hi < 0

	var kept []types.Atomic
	for _, a := range existing.Types {
		switch t := a.(type) {
		case *types.TInt:
			if out, ok := t.IntersectRange(lo, hi); ok {
				kept = append(kept, out)
			}
		case *types.TNull:
			if !excludesZero {
				kept = append(kept, a.Clone())
			}
		case *types.TBool:
			if excludesZero {
				if t.Value != nil && !*t.Value {
					continue
				}
				if t.Value == nil {
					kept = append(kept, types.NewBoolLiteral(true))
					continue
				}
			}
			kept = append(kept, a.Clone())
		case *types.TMixed:
			kept = append(kept, boundedInt(lo, hi))
		default:
			kept = append(kept, a.Clone())
		}
	}
	if len(kept) == 0 {
		return types.Never()
	}
	return types.NewUnion(kept...)
}
