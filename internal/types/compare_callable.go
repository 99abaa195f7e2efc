package types

// callableContainedBy checks signature compatibility: parameter lists are
// contravariant, the return type is covariant, and variadics widen their
// position for every remaining container parameter.
func callableContainedBy(g ClassGraph, input Atomic, c *TCallable, res *ComparisonResult) bool {
	in, ok := input.(*TCallable)
	if !ok {
		// A class-string of an invokable would need resolution through the
		// codebase; the comparator stays structural.
		if _, isClassString := input.(*TClassString); isClassString && res != nil {
			res.CoercionRequired = true
		}
		return false
	}
	if c.IsClosure && !in.IsClosure {
		return false
	}
	if c.Pure && !in.Pure {
		return false
	}

	for i, want := range c.Params {
		have, ok := parameterAt(in.Params, i)
		if !ok {
			// Fewer parameters than the container passes is fine; the
			// extras are simply ignored by the callee.
			break
		}
		if want.IsVariadic && !have.IsVariadic {
			return false
		}
		if have.Type == nil || want.Type == nil {
			continue
		}
		// Contravariance: the callee must accept at least what the
		// container promises to pass.
		if !UnionContainedBy(g, want.Type, have.Type, res) {
			return false
		}
	}

	// The input may not require parameters the container never passes.
	for i := len(c.Params); i < len(in.Params); i++ {
		p := in.Params[i]
		if !p.HasDefault && !p.IsVariadic {
			return false
		}
	}

	if c.Return != nil {
		if in.Return == nil {
			if res != nil {
				res.MixedFromLoss = true
			}
			return false
		}
		if !UnionContainedBy(g, in.Return, c.Return, res) {
			return false
		}
	}
	return true
}

// parameterAt resolves position i, letting a trailing variadic soak up
// every later position.
func parameterAt(params []CallableParam, i int) (CallableParam, bool) {
	if i < len(params) {
		return params[i], true
	}
	if n := len(params); n > 0 && params[n-1].IsVariadic {
		return params[n-1], true
	}
	return CallableParam{}, false
}
