package types

// scalarContainedBy handles every pair whose container is a scalar kind.
func scalarContainedBy(g ClassGraph, input, container Atomic, res *ComparisonResult) bool {
	switch c := container.(type) {
	case *TScalar:
		switch input.(type) {
		case *TBool, *TInt, *TFloat, *TString, *TArrayKey, *TNumber, *TClassString, *TScalar:
			return true
		case *TEnum:
			// A backed enum coerces to its backing scalar, never silently.
			if res != nil {
				res.CoercionRequired = true
			}
			return false
		}
		return false

	case *TBool:
		in, ok := input.(*TBool)
		if !ok {
			markScalarMismatch(input, res)
			return false
		}
		if c.Value == nil {
			return true
		}
		return in.Value != nil && *in.Value == *c.Value

	case *TInt:
		switch in := input.(type) {
		case *TInt:
			return c.Contains(in)
		case *TString:
			// numeric-string -> int is a coercion, not containment.
			if in.IsNumeric && res != nil {
				res.CoercionRequired = true
			}
			markScalarMismatch(input, res)
			return false
		}
		markScalarMismatch(input, res)
		return false

	case *TFloat:
		switch in := input.(type) {
		case *TFloat:
			if c.Value == nil {
				return true
			}
			return in.Value != nil && *in.Value == *c.Value
		case *TInt:
			// Ints pass where floats are expected, by value coercion.
			if res != nil {
				res.CoercionRequired = true
			}
			return true
		}
		markScalarMismatch(input, res)
		return false

	case *TString:
		switch in := input.(type) {
		case *TString:
			return stringContainedBy(in, c)
		case *TClassString:
			// class-string is a truthy non-empty string.
			return !c.IsNumeric && !c.IsLowercase && c.Literal == nil
		}
		markScalarMismatch(input, res)
		return false

	case *TClassString:
		switch in := input.(type) {
		case *TClassString:
			if c.Target == 0 {
				return true
			}
			if in.Target == 0 {
				if res != nil {
					res.UpcastRequired = true
				}
				return false
			}
			return g.IsInstanceOf(in.Target, c.Target)
		case *TString:
			if in.IsClassLike && c.Target == 0 {
				return true
			}
			if res != nil {
				res.CoercionRequired = true
			}
			return false
		}
		markScalarMismatch(input, res)
		return false

	case *TArrayKey:
		switch input.(type) {
		case *TInt, *TString, *TClassString, *TArrayKey:
			return true
		}
		markScalarMismatch(input, res)
		return false

	case *TNumber:
		switch input.(type) {
		case *TInt, *TFloat, *TNumber:
			return true
		}
		markScalarMismatch(input, res)
		return false
	}
	return false
}

// stringContainedBy checks the refined-string sub-lattice.
func stringContainedBy(in, c *TString) bool {
	if c.Literal != nil {
		return in.Literal != nil && *in.Literal == *c.Literal
	}
	if in.Literal != nil {
		return literalSatisfiesFlags(*in.Literal, c)
	}
	// Flag implication: every refinement the container demands must
	// already hold on the input.
	if c.IsNonEmpty && !in.IsNonEmpty {
		return false
	}
	if c.IsTruthy && !in.IsTruthy {
		return false
	}
	if c.IsNumeric && !in.IsNumeric {
		return false
	}
	if c.IsLowercase && !in.IsLowercase {
		return false
	}
	if c.IsClassLike && !in.IsClassLike {
		return false
	}
	return true
}

func markScalarMismatch(input Atomic, res *ComparisonResult) {
	if res == nil {
		return
	}
	switch input.(type) {
	case *TBool, *TInt, *TFloat, *TString, *TArrayKey, *TNumber, *TClassString, *TScalar:
		res.ScalarTypeMismatch = true
	}
}
