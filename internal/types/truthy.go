package types

// foldTruthy narrows one atomic to its truthy variant, or drops it
// (ok=false) when the atomic is known falsy.
func foldTruthy(a Atomic) (Atomic, bool) {
	switch t := a.(type) {
	case *TNull, *TVoid, *TNever:
		return nil, false
	case *TBool:
		if t.Value != nil && !*t.Value {
			return nil, false
		}
		return NewBoolLiteral(true), true
	case *TInt:
		// Truthy int is everything but zero; the interval model cannot
		// carve a hole, so only edges move.
		if v, ok := t.Literal(); ok && v == 0 {
			return nil, false
		}
		out := t.Clone().(*TInt)
		if out.Min != nil && *out.Min == 0 {
			lo := int64(1)
			out.Min = &lo
		}
		if out.Max != nil && *out.Max == 0 {
			hi := int64(-1)
			out.Max = &hi
		}
		return out, true
	case *TFloat:
		if t.Value != nil && *t.Value == 0 {
			return nil, false
		}
		return t.Clone(), true
	case *TString:
		if t.Literal != nil {
			if *t.Literal == "" || *t.Literal == "0" {
				return nil, false
			}
			return t.Clone(), true
		}
		out := t.Clone().(*TString)
		out.IsNonEmpty = true
		out.IsTruthy = true
		return out, true
	case *TMixed:
		out := t.Clone().(*TMixed)
		out.Truthiness = TruthinessTruthy
		out.NonNull = true
		out.IssetFromLoop = false
		out.Vanilla = false
		return out, true
	case *TKeyedArray:
		if t.Sealed() && len(t.KnownItems) == 0 {
			return nil, false
		}
		out := t.Clone().(*TKeyedArray)
		out.NonEmpty = true
		return out, true
	case *TList:
		if t.KnownCount != nil && *t.KnownCount == 0 {
			return nil, false
		}
		out := t.Clone().(*TList)
		out.NonEmpty = true
		return out, true
	case *TGenericParam:
		narrowed, ok := foldUnionTruthy(t.Constraint)
		if !ok {
			return nil, false
		}
		out := t.Clone().(*TGenericParam)
		out.Constraint = narrowed
		return out, true
	default:
		// Objects, closures, resources and iterables are always truthy.
		return a.Clone(), true
	}
}

// foldFalsy narrows one atomic to its falsy variant, or drops it when the
// atomic is known truthy.
func foldFalsy(a Atomic) (Atomic, bool) {
	switch t := a.(type) {
	case *TNull, *TVoid:
		return a.Clone(), true
	case *TNever:
		return nil, false
	case *TBool:
		if t.Value != nil && *t.Value {
			return nil, false
		}
		return NewBoolLiteral(false), true
	case *TInt:
		if t.LowerBound() > 0 || t.UpperBound() < 0 {
			return nil, false
		}
		return NewIntLiteral(0), true
	case *TFloat:
		if t.Value != nil && *t.Value != 0 {
			return nil, false
		}
		return NewFloatLiteral(0), true
	case *TString:
		if t.Literal != nil {
			if *t.Literal == "" || *t.Literal == "0" {
				return t.Clone(), true
			}
			return nil, false
		}
		if t.IsTruthy || t.IsClassLike {
			return nil, false
		}
		if t.IsNonEmpty || t.IsNumeric {
			// '' is already excluded, leaving '0' as the only falsy value.
			return NewStringLiteral("0"), true
		}
		// Falsy strings are '' or '0'; neither carries uppercase letters,
		// so only the lowercase refinement survives.
		return &TString{IsLowercase: t.IsLowercase}, true
	case *TMixed:
		out := t.Clone().(*TMixed)
		out.Truthiness = TruthinessFalsy
		out.IssetFromLoop = false
		out.Vanilla = false
		return out, true
	case *TKeyedArray:
		if t.NonEmpty || hasDefiniteItem(t) {
			return nil, false
		}
		return NewEmptyArray(), true
	case *TList:
		if t.NonEmpty || len(t.KnownElements) > 0 {
			return nil, false
		}
		zero := 0
		return &TList{ElementType: Never(), KnownCount: &zero}, true
	case *TGenericParam:
		narrowed, ok := foldUnionFalsy(t.Constraint)
		if !ok {
			return nil, false
		}
		out := t.Clone().(*TGenericParam)
		out.Constraint = narrowed
		return out, true
	default:
		// Objects, closures and resources are never falsy.
		return nil, false
	}
}

// FoldUnionTruthy narrows every member to its truthy variant.
func FoldUnionTruthy(u *Union) *Union {
	out, ok := foldUnionTruthy(u)
	if !ok {
		return Never()
	}
	return out
}

// FoldUnionFalsy narrows every member to its falsy variant.
func FoldUnionFalsy(u *Union) *Union {
	out, ok := foldUnionFalsy(u)
	if !ok {
		return Never()
	}
	return out
}

func foldUnionTruthy(u *Union) (*Union, bool) {
	var kept []Atomic
	for _, a := range u.Types {
		if t, ok := foldTruthy(a); ok {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}
	out := NewUnion(combineAtomics(kept)...)
	out.PossiblyUndefinedFromTry = u.PossiblyUndefinedFromTry
	out.ReferenceFree = u.ReferenceFree
	out.HadTemplate = u.HadTemplate
	return out, true
}

func foldUnionFalsy(u *Union) (*Union, bool) {
	var kept []Atomic
	for _, a := range u.Types {
		if t, ok := foldFalsy(a); ok {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}
	out := NewUnion(combineAtomics(kept)...)
	out.PossiblyUndefinedFromTry = u.PossiblyUndefinedFromTry
	out.ReferenceFree = u.ReferenceFree
	out.HadTemplate = u.HadTemplate
	return out, true
}
