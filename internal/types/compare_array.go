package types

// arrayContainedBy handles containers of array, list and iterable kind.
func arrayContainedBy(g ClassGraph, input, container Atomic, res *ComparisonResult) bool {
	switch c := container.(type) {
	case *TIterable:
		switch in := input.(type) {
		case *TIterable:
			return UnionContainedBy(g, in.Key, c.Key, res) &&
				UnionContainedBy(g, in.Value, c.Value, res)
		case *TKeyedArray:
			key, value := keyedArrayParameters(in)
			return UnionContainedBy(g, key, c.Key, res) &&
				UnionContainedBy(g, value, c.Value, res)
		case *TList:
			return UnionContainedBy(g, listKeyUnion(in), c.Key, res) &&
				UnionContainedBy(g, listValueUnion(in), c.Value, res)
		}
		return false

	case *TKeyedArray:
		switch in := input.(type) {
		case *TKeyedArray:
			return keyedArrayContainedBy(g, in, c, res)
		case *TList:
			return listContainedByKeyed(g, in, c, res)
		}
		return false

	case *TList:
		in, ok := input.(*TList)
		if !ok {
			// A keyed array may happen to be a list at runtime, but the
			// type system cannot prove it.
			if _, isKeyed := input.(*TKeyedArray); isKeyed && res != nil {
				res.CoercionRequired = true
			}
			return false
		}
		return listContainedBy(g, in, c, res)
	}
	return false
}

// keyedArrayParameters folds known items and residual parameters into one
// (key, value) pair describing every possible entry.
func keyedArrayParameters(t *TKeyedArray) (key, value *Union) {
	key = Never()
	value = Never()
	for _, it := range t.KnownItems {
		if it.Key.IsInt {
			key = Add(key, NewUnion(NewIntLiteral(it.Key.Int)))
		} else {
			key = Add(key, NewUnion(NewStringLiteral(it.Key.Str)))
		}
		value = Add(value, it.Entry.Value)
	}
	if t.Parameters != nil {
		key = Add(key, t.Parameters.Key)
		value = Add(value, t.Parameters.Value)
	}
	return key, value
}

func listKeyUnion(t *TList) *Union {
	if t.KnownCount != nil && *t.KnownCount > 0 {
		return NewUnion(NewIntRange(0, int64(*t.KnownCount-1)))
	}
	return NewUnion(NewIntFrom(0))
}

func listValueUnion(t *TList) *Union {
	out := t.ElementType.Clone()
	for _, el := range t.KnownElements {
		out = Add(out, el.Entry.Value)
	}
	return out
}

func keyedArrayContainedBy(g ClassGraph, in, c *TKeyedArray, res *ComparisonResult) bool {
	// Every container known offset must be satisfied pointwise.
	for _, want := range c.KnownItems {
		have, ok := in.Item(want.Key)
		switch {
		case ok:
			if have.PossiblyUndefined && !want.Entry.PossiblyUndefined {
				return false
			}
			if !UnionContainedBy(g, have.Value, want.Entry.Value, res) {
				return false
			}
		case in.Parameters != nil:
			// The entry may exist through the residual; it is only safe
			// when the container admits absence.
			if !want.Entry.PossiblyUndefined {
				return false
			}
			if !UnionContainedBy(g, in.Parameters.Value, want.Entry.Value, res) {
				return false
			}
		default:
			if !want.Entry.PossiblyUndefined {
				return false
			}
		}
	}

	// Input known items that the container only admits via the residual.
	for _, have := range in.KnownItems {
		if _, ok := c.Item(have.Key); ok {
			continue
		}
		if c.Parameters == nil {
			return false
		}
		keyUnion := NewUnion(have.Key.atomicType())
		if !UnionContainedBy(g, keyUnion, c.Parameters.Key, res) {
			return false
		}
		if !UnionContainedBy(g, have.Entry.Value, c.Parameters.Value, res) {
			return false
		}
	}

	// Residual against residual.
	if in.Parameters != nil {
		if c.Parameters == nil {
			return false
		}
		if !UnionContainedBy(g, in.Parameters.Key, c.Parameters.Key, res) {
			return false
		}
		if !UnionContainedBy(g, in.Parameters.Value, c.Parameters.Value, res) {
			return false
		}
	}

	if c.NonEmpty && !in.NonEmpty && !hasDefiniteItem(in) {
		return false
	}
	return true
}

func hasDefiniteItem(t *TKeyedArray) bool {
	for _, it := range t.KnownItems {
		if !it.Entry.PossiblyUndefined {
			return true
		}
	}
	return false
}

func listContainedBy(g ClassGraph, in, c *TList, res *ComparisonResult) bool {
	for _, want := range c.KnownElements {
		have, ok := in.Element(want.Index)
		if !ok {
			if !want.Entry.PossiblyUndefined {
				return false
			}
			if !UnionContainedBy(g, in.ElementType, want.Entry.Value, res) {
				return false
			}
			continue
		}
		if have.PossiblyUndefined && !want.Entry.PossiblyUndefined {
			return false
		}
		if !UnionContainedBy(g, have.Value, want.Entry.Value, res) {
			return false
		}
	}
	if !UnionContainedBy(g, listValueUnion(in), listValueUnion(c), res) {
		return false
	}
	if c.NonEmpty && !in.NonEmpty && len(in.KnownElements) == 0 {
		return false
	}
	if c.KnownCount != nil {
		if in.KnownCount == nil || *in.KnownCount != *c.KnownCount {
			return false
		}
	}
	return true
}

func listContainedByKeyed(g ClassGraph, in *TList, c *TKeyedArray, res *ComparisonResult) bool {
	// Lists fit keyed containers whose residual admits int keys.
	for _, want := range c.KnownItems {
		if !want.Key.IsInt {
			if !want.Entry.PossiblyUndefined {
				return false
			}
			continue
		}
		have, ok := in.Element(int(want.Key.Int))
		if !ok {
			if !want.Entry.PossiblyUndefined {
				return false
			}
			if !UnionContainedBy(g, in.ElementType, want.Entry.Value, res) {
				return false
			}
			continue
		}
		if !UnionContainedBy(g, have.Value, want.Entry.Value, res) {
			return false
		}
	}
	if c.Parameters != nil {
		if !UnionContainedBy(g, listKeyUnion(in), c.Parameters.Key, res) {
			return false
		}
		if !UnionContainedBy(g, listValueUnion(in), c.Parameters.Value, res) {
			return false
		}
	} else if len(in.KnownElements) > 0 || !in.ElementType.IsNever() {
		// A sealed shape cannot absorb arbitrary list elements.
		for _, el := range in.KnownElements {
			if _, ok := c.Item(IntKey(int64(el.Index))); !ok {
				return false
			}
		}
		if !in.ElementType.IsNever() {
			return false
		}
	}
	if c.NonEmpty && !in.NonEmpty && len(in.KnownElements) == 0 {
		return false
	}
	return true
}

// atomicType renders a literal key as its literal atomic.
func (k ArrayKey) atomicType() Atomic {
	if k.IsInt {
		return NewIntLiteral(k.Int)
	}
	return NewStringLiteral(k.Str)
}
