package types

import "sort"

// Add widens a with b: the result contains both.
// Commutative up to ordering and idempotent. Inputs are never mutated.
func Add(a, b *Union) *Union {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}
	if a.IsNever() {
		out := b.Clone()
		out.PossiblyUndefinedFromTry = a.PossiblyUndefinedFromTry || b.PossiblyUndefinedFromTry
		return out
	}
	if b.IsNever() {
		out := a.Clone()
		out.PossiblyUndefinedFromTry = a.PossiblyUndefinedFromTry || b.PossiblyUndefinedFromTry
		return out
	}

	atomics := make([]Atomic, 0, len(a.Types)+len(b.Types))
	for _, t := range a.Types {
		atomics = append(atomics, t.Clone())
	}
	for _, t := range b.Types {
		atomics = append(atomics, t.Clone())
	}

	out := &Union{
		Types:                    combineAtomics(atomics),
		PossiblyUndefinedFromTry: a.PossiblyUndefinedFromTry || b.PossiblyUndefinedFromTry,
		ReferenceFree:            a.ReferenceFree && b.ReferenceFree,
		HadTemplate:              a.HadTemplate || b.HadTemplate,
	}
	return out
}

// Combine normalizes a bag of atomics into a canonical union member list.
func Combine(atomics []Atomic) []Atomic {
	cloned := make([]Atomic, len(atomics))
	for i, a := range atomics {
		cloned[i] = a.Clone()
	}
	return combineAtomics(cloned)
}

// combineAtomics owns its input slice. Widening drops refinements where a
// broader member subsumes them and fuses members of the same family.
func combineAtomics(atomics []Atomic) []Atomic {
	c := &combiner{}
	for _, a := range atomics {
		c.absorb(a)
	}
	return c.finish()
}

type combiner struct {
	mixed   *TMixed
	bool_   *TBool
	hasBool bool
	ints    []*TInt
	floats  []*TFloat
	strings []*TString
	keyed   *TKeyedArray
	list    *TList
	iter    *TIterable

	// Members that dedupe by canonical key, in first-seen order.
	order []string
	byKey map[string]Atomic
}

func (c *combiner) keep(a Atomic) {
	if c.byKey == nil {
		c.byKey = make(map[string]Atomic)
	}
	k := atomicKey(a)
	if _, ok := c.byKey[k]; ok {
		return
	}
	c.byKey[k] = a
	c.order = append(c.order, k)
}

func (c *combiner) absorb(a Atomic) {
	switch t := a.(type) {
	case *TNever:
		// Identity element.
	case *TMixed:
		c.mixed = mergeMixed(c.mixed, t)
	case *TBool:
		if !c.hasBool {
			c.bool_ = t
			c.hasBool = true
			return
		}
		c.bool_ = mergeBool(c.bool_, t)
	case *TInt:
		c.ints = append(c.ints, t)
	case *TFloat:
		c.floats = append(c.floats, t)
	case *TString:
		c.strings = append(c.strings, t)
	case *TKeyedArray:
		if c.keyed == nil {
			c.keyed = t
			return
		}
		c.keyed = mergeKeyed(c.keyed, t)
	case *TList:
		if c.list == nil {
			c.list = t
			return
		}
		c.list = mergeList(c.list, t)
	case *TIterable:
		if c.iter == nil {
			c.iter = t
			return
		}
		c.iter = &TIterable{Key: Add(c.iter.Key, t.Key), Value: Add(c.iter.Value, t.Value)}
	case *TResource:
		c.mergeResource(t)
	case *TNamedObject:
		c.mergeNamedObject(t)
	case *TGenericParam:
		c.mergeGenericParam(t)
	default:
		c.keep(a)
	}
}

func (c *combiner) mergeResource(t *TResource) {
	k := "resource"
	if c.byKey == nil {
		c.byKey = make(map[string]Atomic)
	}
	if prev, ok := c.byKey[k]; ok {
		pr := prev.(*TResource)
		if pr.Closed == nil || t.Closed == nil || *pr.Closed != *t.Closed {
			pr.Closed = nil
		}
		return
	}
	c.byKey[k] = t
	c.order = append(c.order, k)
}

func (c *combiner) mergeNamedObject(t *TNamedObject) {
	// Same class with the same arity combines pointwise; anything else
	// stays a distinct member.
	if c.byKey == nil {
		c.byKey = make(map[string]Atomic)
	}
	if len(t.Intersections) > 0 {
		c.keep(t)
		return
	}
	k := "obj:" + atomicKey(&TNamedObject{Name: t.Name, Static: t.Static})
	prev, ok := c.byKey[k]
	if !ok {
		c.byKey[k] = t
		c.order = append(c.order, k)
		return
	}
	po := prev.(*TNamedObject)
	if len(po.TypeParameters) != len(t.TypeParameters) || len(po.Intersections) > 0 {
		c.keep(t)
		return
	}
	for i := range po.TypeParameters {
		po.TypeParameters[i] = Add(po.TypeParameters[i], t.TypeParameters[i])
	}
}

func (c *combiner) mergeGenericParam(t *TGenericParam) {
	if c.byKey == nil {
		c.byKey = make(map[string]Atomic)
	}
	k := "tpl:" + atomicKey(&TGenericParam{Name: t.Name, DefiningEntity: t.DefiningEntity, Constraint: Never()})
	prev, ok := c.byKey[k]
	if !ok {
		c.byKey[k] = t
		c.order = append(c.order, k)
		return
	}
	pp := prev.(*TGenericParam)
	pp.Constraint = Add(pp.Constraint, t.Constraint)
}

func (c *combiner) finish() []Atomic {
	var out []Atomic

	if c.mixed != nil {
		// Vanilla mixed swallows the whole union; refined mixed keeps null
		// company when the refinement excludes it.
		if !c.mixed.NonNull && c.mixed.Truthiness == TruthinessAny {
			return []Atomic{c.mixed}
		}
		out = append(out, c.mixed)
	}
	if c.hasBool {
		out = append(out, c.bool_)
	}
	out = append(out, fuseIntRanges(c.ints)...)
	out = append(out, fuseFloats(c.floats)...)
	out = append(out, fuseStrings(c.strings)...)
	if c.keyed != nil {
		out = append(out, c.keyed)
	}
	if c.list != nil {
		out = append(out, c.list)
	}
	if c.iter != nil {
		out = append(out, c.iter)
	}
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}

	if c.mixed != nil && c.mixed.NonNull {
		// mixed(non-null)|null would be plain mixed.
		for _, a := range out {
			if a.AtomicKind() == KindNull {
				return []Atomic{NewMixed()}
			}
		}
	}
	if len(out) == 0 {
		return []Atomic{&TNever{}}
	}
	return out
}

func mergeMixed(a, b *TMixed) *TMixed {
	if a == nil {
		return b
	}
	out := &TMixed{
		NonNull: a.NonNull && b.NonNull,
		Vanilla: a.Vanilla || b.Vanilla,
	}
	if a.Truthiness == b.Truthiness {
		out.Truthiness = a.Truthiness
	}
	out.IssetFromLoop = a.IssetFromLoop || b.IssetFromLoop
	return out
}

func mergeBool(a, b *TBool) *TBool {
	if a.Value == nil || b.Value == nil || *a.Value != *b.Value {
		return &TBool{}
	}
	return a
}

// fuseIntRanges sorts intervals and fuses overlapping or adjacent ones,
// so literals survive until a neighbor swallows them.
func fuseIntRanges(ints []*TInt) []Atomic {
	if len(ints) == 0 {
		return nil
	}
	for _, t := range ints {
		if t.Unbounded() {
			return []Atomic{NewInt()}
		}
	}
	sort.Slice(ints, func(i, j int) bool {
		if ints[i].LowerBound() != ints[j].LowerBound() {
			return ints[i].LowerBound() < ints[j].LowerBound()
		}
		return ints[i].UpperBound() < ints[j].UpperBound()
	})
	var out []Atomic
	cur := ints[0]
	for _, next := range ints[1:] {
		if rangesTouch(cur, next) {
			cur = hullInt(cur, next)
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)
	return out
}

func rangesTouch(a, b *TInt) bool {
	hi := a.UpperBound()
	lo := b.LowerBound()
	if hi >= lo {
		return true
	}
	return hi+1 == lo
}

func hullInt(a, b *TInt) *TInt {
	out := &TInt{}
	if a.Min != nil && b.Min != nil {
		lo := min(*a.Min, *b.Min)
		out.Min = &lo
	}
	if a.Max != nil && b.Max != nil {
		hi := max(*a.Max, *b.Max)
		out.Max = &hi
	}
	return out
}

func fuseFloats(floats []*TFloat) []Atomic {
	if len(floats) == 0 {
		return nil
	}
	seen := map[float64]bool{}
	var literals []Atomic
	for _, f := range floats {
		if f.Value == nil {
			return []Atomic{NewFloat()}
		}
		if !seen[*f.Value] {
			seen[*f.Value] = true
			literals = append(literals, f)
		}
	}
	return literals
}

// fuseStrings drops refinements down to the meet of all members: widening
// keeps only refinements every member carries.
func fuseStrings(strs []*TString) []Atomic {
	if len(strs) == 0 {
		return nil
	}
	allLiterals := true
	for _, s := range strs {
		if s.Literal == nil {
			allLiterals = false
			break
		}
	}
	if allLiterals {
		seen := map[string]bool{}
		var out []Atomic
		for _, s := range strs {
			if !seen[*s.Literal] {
				seen[*s.Literal] = true
				out = append(out, s)
			}
		}
		return out
	}
	merged := &TString{IsNumeric: true, IsTruthy: true, IsNonEmpty: true, IsLowercase: true, IsClassLike: true}
	for _, s := range strs {
		flags := s
		if s.Literal != nil {
			derived := &TString{Literal: s.Literal}
			derived.Normalize()
			derived.IsClassLike = s.IsClassLike
			flags = derived
		}
		merged.IsNumeric = merged.IsNumeric && flags.IsNumeric
		merged.IsTruthy = merged.IsTruthy && flags.IsTruthy
		merged.IsNonEmpty = merged.IsNonEmpty && flags.IsNonEmpty
		merged.IsLowercase = merged.IsLowercase && flags.IsLowercase
		merged.IsClassLike = merged.IsClassLike && flags.IsClassLike
	}
	return []Atomic{merged}
}

func mergeKeyed(a, b *TKeyedArray) *TKeyedArray {
	out := &TKeyedArray{NonEmpty: a.NonEmpty && b.NonEmpty}

	for _, it := range a.KnownItems {
		other, ok := b.Item(it.Key)
		entry := it.Entry.clone()
		if ok {
			entry.Value = Add(entry.Value, other.Value)
			entry.PossiblyUndefined = entry.PossiblyUndefined || other.PossiblyUndefined
		} else if b.Parameters != nil {
			entry.Value = Add(entry.Value, b.Parameters.Value)
			entry.PossiblyUndefined = true
		} else {
			entry.PossiblyUndefined = true
		}
		out.KnownItems = append(out.KnownItems, KeyedItem{Key: it.Key, Entry: entry})
	}
	for _, it := range b.KnownItems {
		if _, ok := a.Item(it.Key); ok {
			continue
		}
		entry := it.Entry.clone()
		if a.Parameters != nil {
			entry.Value = Add(entry.Value, a.Parameters.Value)
		}
		entry.PossiblyUndefined = true
		out.KnownItems = append(out.KnownItems, KeyedItem{Key: it.Key, Entry: entry})
	}

	switch {
	case a.Parameters != nil && b.Parameters != nil:
		out.Parameters = &KeyValue{
			Key:   Add(a.Parameters.Key, b.Parameters.Key),
			Value: Add(a.Parameters.Value, b.Parameters.Value),
		}
	case a.Parameters != nil:
		out.Parameters = a.Parameters.clone()
	case b.Parameters != nil:
		out.Parameters = b.Parameters.clone()
	}
	return out
}

func mergeList(a, b *TList) *TList {
	out := &TList{
		ElementType: Add(a.ElementType, b.ElementType),
		NonEmpty:    a.NonEmpty && b.NonEmpty,
	}
	if a.KnownCount != nil && b.KnownCount != nil && *a.KnownCount == *b.KnownCount {
		v := *a.KnownCount
		out.KnownCount = &v
	}
	for _, el := range a.KnownElements {
		other, ok := b.Element(el.Index)
		entry := el.Entry.clone()
		if ok {
			entry.Value = Add(entry.Value, other.Value)
			entry.PossiblyUndefined = entry.PossiblyUndefined || other.PossiblyUndefined
		} else {
			entry.PossiblyUndefined = true
		}
		out.KnownElements = append(out.KnownElements, ListItem{Index: el.Index, Entry: entry})
	}
	for _, el := range b.KnownElements {
		if _, ok := a.Element(el.Index); ok {
			continue
		}
		entry := el.Entry.clone()
		entry.PossiblyUndefined = true
		out.KnownElements = append(out.KnownElements, ListItem{Index: el.Index, Entry: entry})
	}
	return out
}
