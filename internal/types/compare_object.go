package types

// objectContainedBy handles containers of object kind.
func objectContainedBy(g ClassGraph, input, container Atomic, res *ComparisonResult) bool {
	switch c := container.(type) {
	case *TObjectAny:
		switch input.(type) {
		case *TObjectAny, *TNamedObject, *TEnum:
			return true
		case *TCallable:
			in := input.(*TCallable)
			return in.IsClosure
		}
		return false

	case *TEnum:
		switch in := input.(type) {
		case *TEnum:
			if in.Name != c.Name {
				return false
			}
			return c.Case == 0 || in.Case == c.Case
		case *TNamedObject:
			return in.Name == c.Name && c.Case == 0
		}
		return false

	case *TNamedObject:
		switch in := input.(type) {
		case *TNamedObject:
			return namedObjectContainedBy(g, in, c, res)
		case *TEnum:
			// Enums satisfy the interfaces they implement.
			if in.Name == c.Name {
				return true
			}
			if !g.ClassLikeExists(in.Name) || !g.ClassLikeExists(c.Name) {
				return false
			}
			return g.IsInstanceOf(in.Name, c.Name)
		case *TObjectAny:
			if res != nil {
				res.UpcastRequired = true
			}
			return false
		}
		return false
	}
	return false
}

func namedObjectContainedBy(g ClassGraph, in, c *TNamedObject, res *ComparisonResult) bool {
	// An intersection input is contained when any component is.
	if len(in.Intersections) > 0 {
		base := &TNamedObject{Name: in.Name, TypeParameters: in.TypeParameters}
		if namedObjectContainedBy(g, base, c, res) {
			return true
		}
		for _, part := range in.Intersections {
			var probe ComparisonResult
			if AtomicContainedBy(g, part, c, &probe) {
				return true
			}
		}
		return false
	}

	// An intersection container requires every component contained.
	if len(c.Intersections) > 0 {
		base := &TNamedObject{Name: c.Name, TypeParameters: c.TypeParameters}
		if !namedObjectContainedBy(g, in, base, res) {
			return false
		}
		for _, part := range c.Intersections {
			if !AtomicContainedBy(g, in, part, res) {
				return false
			}
		}
		return true
	}

	if in.Name != c.Name {
		if !g.ClassLikeExists(in.Name) || !g.ClassLikeExists(c.Name) {
			// Gradual typing: unknown symbols short-circuit with no claim.
			return false
		}
		if !g.IsInstanceOf(in.Name, c.Name) {
			if g.IsInstanceOf(c.Name, in.Name) && res != nil {
				res.UpcastRequired = true
			}
			return false
		}
	}

	if len(c.TypeParameters) == 0 {
		return true
	}

	variances := g.TemplateVariances(c.Name)
	for i, want := range c.TypeParameters {
		have, ok := resolveTypeParameter(g, in, c, i)
		if !ok {
			// The child never bound this template; treat as mixed flow.
			if res != nil {
				res.MixedFromLoss = true
			}
			return false
		}
		v := Invariant
		if i < len(variances) {
			v = variances[i]
		}
		switch v {
		case Covariant:
			if !UnionContainedBy(g, have, want, res) {
				return false
			}
		case Contravariant:
			if !UnionContainedBy(g, want, have, res) {
				return false
			}
		default:
			if !UnionContainedBy(g, have, want, res) || !UnionContainedBy(g, want, have, res) {
				return false
			}
		}
	}
	return true
}

// resolveTypeParameter finds the union the input supplies for the
// container's template position, walking the extended-parameter maps when
// the input is a subclass.
func resolveTypeParameter(g ClassGraph, in, c *TNamedObject, index int) (*Union, bool) {
	if in.Name == c.Name {
		if index < len(in.TypeParameters) {
			return in.TypeParameters[index], true
		}
		return nil, false
	}
	if u, ok := g.TemplateExtendedParameter(in.Name, c.Name, index); ok {
		return u, true
	}
	return nil, false
}
