package types

// Intersect computes the meet of two unions.
// Commutative; A∧A = A; A∧never = never.
// Refinement flags survive intersection even though widening drops them.
func Intersect(g ClassGraph, a, b *Union) *Union {
	if a == nil || b == nil || a.IsNever() || b.IsNever() {
		return Never()
	}

	var kept []Atomic
	for _, x := range a.Types {
		for _, y := range b.Types {
			if z, ok := intersectAtomics(g, x, y); ok {
				kept = append(kept, z)
			}
		}
	}
	if len(kept) == 0 {
		return Never()
	}
	out := NewUnion(combineAtomics(kept)...)
	out.PossiblyUndefinedFromTry = a.PossiblyUndefinedFromTry && b.PossiblyUndefinedFromTry
	out.ReferenceFree = a.ReferenceFree || b.ReferenceFree
	out.HadTemplate = a.HadTemplate || b.HadTemplate
	return out
}

// intersectAtomics returns the meet of two atomics, or ok=false when they
// are disjoint.
func intersectAtomics(g ClassGraph, x, y Atomic) (Atomic, bool) {
	// Mixed is the identity of the meet, modulo null and truthiness.
	if m, ok := x.(*TMixed); ok {
		return intersectWithMixed(m, y)
	}
	if m, ok := y.(*TMixed); ok {
		return intersectWithMixed(m, x)
	}

	// A flow-variable sink adopts the other side; the reconciler records
	// the bound before calling in here.
	if _, ok := x.(*TVariable); ok {
		return y.Clone(), true
	}
	if _, ok := y.(*TVariable); ok {
		return x.Clone(), true
	}

	// Generic parameters intersect through their constraint and rewrap,
	// so the standin survives for later replacement.
	if p, ok := x.(*TGenericParam); ok {
		return intersectGenericParam(g, p, y)
	}
	if p, ok := y.(*TGenericParam); ok {
		return intersectGenericParam(g, p, x)
	}

	switch xt := x.(type) {
	case *TInt:
		if yt, ok := y.(*TInt); ok {
			return intersectInts(xt, yt)
		}
	case *TString:
		if yt, ok := y.(*TString); ok {
			return intersectStrings(xt, yt)
		}
	case *TBool:
		if yt, ok := y.(*TBool); ok {
			return intersectBools(xt, yt)
		}
	case *TKeyedArray:
		if yt, ok := y.(*TKeyedArray); ok {
			return intersectKeyed(g, xt, yt)
		}
	case *TList:
		if yt, ok := y.(*TList); ok {
			return intersectLists(g, xt, yt)
		}
	case *TNamedObject:
		if yt, ok := y.(*TNamedObject); ok {
			return intersectNamedObjects(g, xt, yt)
		}
	}

	// General case: containment decides which side survives.
	var res ComparisonResult
	if AtomicContainedBy(g, x, y, &res) && !res.CoercionRequired {
		return x.Clone(), true
	}
	res = ComparisonResult{}
	if AtomicContainedBy(g, y, x, &res) && !res.CoercionRequired {
		return y.Clone(), true
	}
	return nil, false
}

func intersectWithMixed(m *TMixed, other Atomic) (Atomic, bool) {
	if o, ok := other.(*TNull); ok {
		if m.NonNull {
			return nil, false
		}
		return o.Clone(), true
	}
	out := other.Clone()
	switch m.Truthiness {
	case TruthinessTruthy:
		return foldTruthy(out)
	case TruthinessFalsy:
		return foldFalsy(out)
	}
	return out, true
}

func intersectGenericParam(g ClassGraph, p *TGenericParam, other Atomic) (Atomic, bool) {
	narrowed := Intersect(g, p.Constraint, NewUnion(other.Clone()))
	if narrowed.IsNever() {
		return nil, false
	}
	out := p.Clone().(*TGenericParam)
	out.Constraint = narrowed
	return out, true
}

func intersectInts(a, b *TInt) (Atomic, bool) {
	out, ok := a.IntersectRange(b.LowerBound(), b.UpperBound())
	if !ok {
		return nil, false
	}
	return out, true
}

func intersectStrings(a, b *TString) (Atomic, bool) {
	if a.Literal != nil && b.Literal != nil {
		if *a.Literal == *b.Literal {
			return a.Clone(), true
		}
		return nil, false
	}
	if a.Literal != nil {
		if literalSatisfiesFlags(*a.Literal, b) {
			return a.Clone(), true
		}
		return nil, false
	}
	if b.Literal != nil {
		if literalSatisfiesFlags(*b.Literal, a) {
			return b.Clone(), true
		}
		return nil, false
	}
	out := &TString{
		IsNumeric:   a.IsNumeric || b.IsNumeric,
		IsTruthy:    a.IsTruthy || b.IsTruthy,
		IsNonEmpty:  a.IsNonEmpty || b.IsNonEmpty,
		IsLowercase: a.IsLowercase || b.IsLowercase,
		IsClassLike: a.IsClassLike || b.IsClassLike,
	}
	out.Normalize()
	return out, true
}

func intersectBools(a, b *TBool) (Atomic, bool) {
	if a.Value == nil {
		return b.Clone(), true
	}
	if b.Value == nil || *a.Value == *b.Value {
		return a.Clone(), true
	}
	return nil, false
}

func intersectKeyed(g ClassGraph, a, b *TKeyedArray) (Atomic, bool) {
	out := &TKeyedArray{NonEmpty: a.NonEmpty || b.NonEmpty}
	for _, it := range a.KnownItems {
		other, ok := b.Item(it.Key)
		switch {
		case ok:
			v := Intersect(g, it.Entry.Value, other.Value)
			if v.IsNever() && !(it.Entry.PossiblyUndefined && other.PossiblyUndefined) {
				return nil, false
			}
			out.KnownItems = append(out.KnownItems, KeyedItem{Key: it.Key, Entry: KeyedEntry{
				PossiblyUndefined: it.Entry.PossiblyUndefined && other.PossiblyUndefined,
				Value:             v,
			}})
		case b.Parameters != nil:
			v := Intersect(g, it.Entry.Value, b.Parameters.Value)
			if v.IsNever() && !it.Entry.PossiblyUndefined {
				return nil, false
			}
			out.KnownItems = append(out.KnownItems, KeyedItem{Key: it.Key, Entry: KeyedEntry{
				PossiblyUndefined: it.Entry.PossiblyUndefined,
				Value:             v,
			}})
		case it.Entry.PossiblyUndefined:
			// The sealed side proves absence; drop the entry.
		default:
			return nil, false
		}
	}
	for _, it := range b.KnownItems {
		if _, ok := a.Item(it.Key); ok {
			continue
		}
		switch {
		case a.Parameters != nil:
			v := Intersect(g, it.Entry.Value, a.Parameters.Value)
			if v.IsNever() && !it.Entry.PossiblyUndefined {
				return nil, false
			}
			out.KnownItems = append(out.KnownItems, KeyedItem{Key: it.Key, Entry: KeyedEntry{
				PossiblyUndefined: it.Entry.PossiblyUndefined,
				Value:             v,
			}})
		case it.Entry.PossiblyUndefined:
		default:
			return nil, false
		}
	}
	if a.Parameters != nil && b.Parameters != nil {
		key := Intersect(g, a.Parameters.Key, b.Parameters.Key)
		value := Intersect(g, a.Parameters.Value, b.Parameters.Value)
		if !key.IsNever() && !value.IsNever() {
			out.Parameters = &KeyValue{Key: key, Value: value}
		}
	}
	if out.NonEmpty && len(out.KnownItems) == 0 && out.Parameters == nil {
		return nil, false
	}
	return out, true
}

func intersectLists(g ClassGraph, a, b *TList) (Atomic, bool) {
	elem := Intersect(g, a.ElementType, b.ElementType)
	out := &TList{
		ElementType: elem,
		NonEmpty:    a.NonEmpty || b.NonEmpty,
	}
	switch {
	case a.KnownCount != nil && b.KnownCount != nil:
		if *a.KnownCount != *b.KnownCount {
			return nil, false
		}
		v := *a.KnownCount
		out.KnownCount = &v
	case a.KnownCount != nil:
		v := *a.KnownCount
		out.KnownCount = &v
	case b.KnownCount != nil:
		v := *b.KnownCount
		out.KnownCount = &v
	}
	for _, el := range a.KnownElements {
		other, ok := b.Element(el.Index)
		if !ok {
			out.KnownElements = append(out.KnownElements, ListItem{Index: el.Index, Entry: el.Entry.clone()})
			continue
		}
		v := Intersect(g, el.Entry.Value, other.Value)
		if v.IsNever() && !(el.Entry.PossiblyUndefined && other.PossiblyUndefined) {
			return nil, false
		}
		out.KnownElements = append(out.KnownElements, ListItem{Index: el.Index, Entry: KeyedEntry{
			PossiblyUndefined: el.Entry.PossiblyUndefined && other.PossiblyUndefined,
			Value:             v,
		}})
	}
	for _, el := range b.KnownElements {
		if _, ok := a.Element(el.Index); !ok {
			out.KnownElements = append(out.KnownElements, ListItem{Index: el.Index, Entry: el.Entry.clone()})
		}
	}
	if elem.IsNever() && len(out.KnownElements) == 0 && out.NonEmpty {
		return nil, false
	}
	return out, true
}

func intersectNamedObjects(g ClassGraph, a, b *TNamedObject) (Atomic, bool) {
	var res ComparisonResult
	if AtomicContainedBy(g, a, b, &res) {
		return a.Clone(), true
	}
	res = ComparisonResult{}
	if AtomicContainedBy(g, b, a, &res) {
		return b.Clone(), true
	}
	// Two known, unrelated concrete classes cannot meet. Interfaces may
	// still overlap in an unseen class, and unknown symbols make no claim,
	// so both become an intersection object.
	if g.ClassLikeExists(a.Name) && g.ClassLikeExists(b.Name) &&
		!g.IsInterface(a.Name) && !g.IsInterface(b.Name) {
		return nil, false
	}
	out := a.Clone().(*TNamedObject)
	out.Intersections = append(out.Intersections, b.Clone())
	return out, true
}
