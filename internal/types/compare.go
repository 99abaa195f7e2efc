package types

// ComparisonResult records what a failed or lossy containment check would
// need to succeed. The comparator only ever sets fields; callers reset.
type ComparisonResult struct {
	// CoercionRequired: containment holds only under a runtime coercion
	// the language would perform (int into float, numeric-string into int).
	CoercionRequired bool
	// UpcastRequired: the input is a strict supertype; assigning it down
	// would need an explicit upcast.
	UpcastRequired bool
	// MixedFromLoss: the input is mixed flowing into a concrete type.
	MixedFromLoss bool
	// ScalarTypeMismatch: both sides are scalars of different families.
	ScalarTypeMismatch bool
}

// UnionContainedBy decides input ⊑ container: every atomic of input must be
// contained by the container union. Inputs are never mutated.
func UnionContainedBy(g ClassGraph, input, container *Union, res *ComparisonResult) bool {
	if input == nil || container == nil {
		return false
	}
	if input.IsNever() {
		return true
	}
	for _, a := range input.Types {
		if a.AtomicKind() == KindNever {
			continue
		}
		if !AtomicContainedByUnion(g, a, container, res) {
			return false
		}
	}
	return true
}

// AtomicContainedByUnion reports whether some member of container contains a.
func AtomicContainedByUnion(g ClassGraph, a Atomic, container *Union, res *ComparisonResult) bool {
	if container == nil {
		return false
	}
	// Try strict containment first; only then fall back to members that
	// would need coercion, so the flags reflect the best available path.
	for _, c := range container.Types {
		var probe ComparisonResult
		if AtomicContainedBy(g, a, c, &probe) && !probe.CoercionRequired {
			return true
		}
	}
	for _, c := range container.Types {
		var probe ComparisonResult
		if AtomicContainedBy(g, a, c, &probe) {
			if res != nil {
				res.CoercionRequired = res.CoercionRequired || probe.CoercionRequired
			}
			return true
		}
	}
	if res != nil {
		// Record why the closest member failed.
		for _, c := range container.Types {
			AtomicContainedBy(g, a, c, res)
		}
	}
	return false
}

// AtomicContainedBy decides input ⊑ container for a single atomic pair.
func AtomicContainedBy(g ClassGraph, input, container Atomic, res *ComparisonResult) bool {
	// Bottom is contained everywhere.
	if input.AtomicKind() == KindNever {
		return true
	}

	// Top tier: mixed swallows everything except null when non-null.
	if c, ok := container.(*TMixed); ok {
		switch t := input.(type) {
		case *TNull:
			return !c.NonNull
		case *TMixed:
			if c.NonNull && !t.NonNull {
				return false
			}
			if c.Truthiness != TruthinessAny && c.Truthiness != t.Truthiness {
				return false
			}
			return true
		default:
			return true
		}
	}
	if in, ok := input.(*TMixed); ok {
		_ = in
		if res != nil {
			res.MixedFromLoss = true
		}
		return false
	}

	// Generic parameters: equal standins match; otherwise the input's
	// constraint must fit, and a container standin only admits inputs
	// under coercion (the real binding could be narrower).
	if in, ok := input.(*TGenericParam); ok {
		if c, ok := container.(*TGenericParam); ok {
			if in.Name == c.Name && in.DefiningEntity == c.DefiningEntity {
				return true
			}
		}
		return UnionContainedBy(g, in.Constraint, NewUnion(container.Clone()), res)
	}
	if c, ok := container.(*TGenericParam); ok {
		var probe ComparisonResult
		if UnionContainedBy(g, NewUnion(input.Clone()), c.Constraint, &probe) {
			if res != nil {
				res.CoercionRequired = true
			}
			return true
		}
		return false
	}

	if c, ok := container.(*TConditional); ok {
		// Unresolved conditional: contained when both arms contain.
		return AtomicContainedByUnion(g, input, c.Then, res) &&
			AtomicContainedByUnion(g, input, c.Else, res)
	}
	if in, ok := input.(*TConditional); ok {
		return UnionContainedBy(g, in.Then, NewUnion(container.Clone()), res) &&
			UnionContainedBy(g, in.Else, NewUnion(container.Clone()), res)
	}

	switch c := container.(type) {
	case *TNever:
		return false
	case *TNull:
		_, ok := input.(*TNull)
		return ok
	case *TVoid:
		switch input.(type) {
		case *TVoid, *TNull:
			return true
		}
		return false
	case *TBool, *TInt, *TFloat, *TString, *TArrayKey, *TNumber, *TClassString, *TScalar:
		return scalarContainedBy(g, input, container, res)
	case *TKeyedArray, *TList, *TIterable:
		return arrayContainedBy(g, input, container, res)
	case *TObjectAny, *TEnum, *TNamedObject:
		return objectContainedBy(g, input, container, res)
	case *TCallable:
		return callableContainedBy(g, input, c, res)
	case *TResource:
		in, ok := input.(*TResource)
		if !ok {
			return false
		}
		return c.Closed == nil || (in.Closed != nil && *in.Closed == *c.Closed)
	case *TVariable:
		in, ok := input.(*TVariable)
		return ok && in.Name == c.Name
	default:
		return false
	}
}

// UnionsAreIdentical reports set equality modulo ordering.
func UnionsAreIdentical(a, b *Union) bool {
	return a.Equals(b)
}

// CanBeIdentical reports whether some value could inhabit both unions.
// This is the disjointness test the reconciler uses for impossibility.
func CanBeIdentical(g ClassGraph, a, b *Union) bool {
	if a == nil || b == nil || a.IsNever() || b.IsNever() {
		return false
	}
	for _, x := range a.Types {
		for _, y := range b.Types {
			if CanAtomicsBeIdentical(g, x, y) {
				return true
			}
		}
	}
	return false
}

// CanAtomicsBeIdentical reports whether the two atomics overlap.
func CanAtomicsBeIdentical(g ClassGraph, a, b Atomic) bool {
	if a.AtomicKind() == KindMixed || b.AtomicKind() == KindMixed {
		return true
	}
	if x, ok := a.(*TGenericParam); ok {
		return CanBeIdentical(g, x.Constraint, NewUnion(b.Clone()))
	}
	if y, ok := b.(*TGenericParam); ok {
		return CanBeIdentical(g, NewUnion(a.Clone()), y.Constraint)
	}
	// Overlapping intervals are identical somewhere even when neither
	// contains the other.
	if x, ok := a.(*TInt); ok {
		if y, ok := b.(*TInt); ok {
			return x.LowerBound() <= y.UpperBound() && y.LowerBound() <= x.UpperBound()
		}
	}
	if x, ok := a.(*TString); ok {
		if y, ok := b.(*TString); ok {
			return stringsCanOverlap(x, y)
		}
	}
	if x, ok := a.(*TNamedObject); ok {
		if y, ok := b.(*TNamedObject); ok {
			// Sibling classes cannot overlap, but unrelated interfaces can.
			return g.IsInstanceOf(x.Name, y.Name) || g.IsInstanceOf(y.Name, x.Name) ||
				!g.ClassLikeExists(x.Name) || !g.ClassLikeExists(y.Name)
		}
	}
	var fwd, bwd ComparisonResult
	return AtomicContainedBy(g, a, b, &fwd) || AtomicContainedBy(g, b, a, &bwd)
}

func stringsCanOverlap(a, b *TString) bool {
	if a.Literal != nil && b.Literal != nil {
		return *a.Literal == *b.Literal
	}
	if a.Literal != nil {
		return literalSatisfiesFlags(*a.Literal, b)
	}
	if b.Literal != nil {
		return literalSatisfiesFlags(*b.Literal, a)
	}
	return true
}

func literalSatisfiesFlags(lit string, flags *TString) bool {
	if flags.IsNonEmpty && lit == "" {
		return false
	}
	if flags.IsTruthy && (lit == "" || lit == "0") {
		return false
	}
	if flags.IsNumeric && !isNumericLiteral(lit) {
		return false
	}
	if flags.IsLowercase && !isLowercaseLiteral(lit) {
		return false
	}
	return true
}
