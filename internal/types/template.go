package types

import "argus/internal/source"

// TemplateKey identifies a template parameter by name and defining entity.
type TemplateKey struct {
	Name   source.StringID
	Entity source.StringID
}

// TemplateBound is one piece of evidence about a template parameter,
// gathered at a call site or an extends clause.
type TemplateBound struct {
	Bound *Union
	// AppearanceDepth orders bounds found at different nesting depths of
	// the parameter type; shallower evidence wins ties.
	AppearanceDepth int
	// Equality marks bounds from identity checks; they intersect instead
	// of widening.
	Equality bool
	// ArgumentOffset records which argument produced the bound.
	ArgumentOffset int
	Span           source.Span
}

// TemplateResult accumulates template evidence. Collection is additive:
// lower-bound conflicts widen, upper-bound conflicts intersect, and
// collection never fails.
type TemplateResult struct {
	LowerBounds map[TemplateKey][]TemplateBound
	UpperBounds map[TemplateKey][]TemplateBound
}

func NewTemplateResult() *TemplateResult {
	return &TemplateResult{
		LowerBounds: make(map[TemplateKey][]TemplateBound),
		UpperBounds: make(map[TemplateKey][]TemplateBound),
	}
}

// AddLowerBound records evidence that the parameter is at least bound.
func (r *TemplateResult) AddLowerBound(key TemplateKey, b TemplateBound) {
	r.LowerBounds[key] = append(r.LowerBounds[key], b)
}

// AddUpperBound records evidence that the parameter is at most bound.
func (r *TemplateResult) AddUpperBound(key TemplateKey, b TemplateBound) {
	r.UpperBounds[key] = append(r.UpperBounds[key], b)
}

// LowerBound folds the collected lower bounds for key into one union.
func (r *TemplateResult) LowerBound(key TemplateKey) (*Union, bool) {
	bounds, ok := r.LowerBounds[key]
	if !ok || len(bounds) == 0 {
		return nil, false
	}
	out := Never()
	for _, b := range bounds {
		out = Add(out, b.Bound)
	}
	return out, true
}

// UpperBound folds the collected upper bounds for key by intersection.
func (r *TemplateResult) UpperBound(g ClassGraph, key TemplateKey) (*Union, bool) {
	bounds, ok := r.UpperBounds[key]
	if !ok || len(bounds) == 0 {
		return nil, false
	}
	out := bounds[0].Bound.Clone()
	for _, b := range bounds[1:] {
		out = Intersect(g, out, b.Bound)
	}
	return out, true
}

// ReplaceOptions tune standin replacement.
type ReplaceOptions struct {
	// AddUpperBound records the declared constraint as an upper bound for
	// parameters with no collected evidence, instead of leaving them be.
	AddUpperBound bool
	// Depth tracks recursion for AppearanceDepth bookkeeping.
	Depth int
}

// Replace walks the union and substitutes every template standin for which
// the result has evidence. Conditionals resolve once their subject is
// decided; everything else propagates structurally.
func Replace(u *Union, res *TemplateResult, g ClassGraph, opts ReplaceOptions) *Union {
	if u == nil {
		return nil
	}
	out := Never()
	replacedAny := false
	for _, a := range u.Types {
		repl, changed := replaceAtomic(a, res, g, opts)
		replacedAny = replacedAny || changed
		out = Add(out, repl)
	}
	out.PossiblyUndefinedFromTry = u.PossiblyUndefinedFromTry
	out.ReferenceFree = u.ReferenceFree
	out.HadTemplate = u.HadTemplate || replacedAny
	return out
}

func replaceAtomic(a Atomic, res *TemplateResult, g ClassGraph, opts ReplaceOptions) (*Union, bool) {
	switch t := a.(type) {
	case *TGenericParam:
		key := TemplateKey{Name: t.Name, Entity: t.DefiningEntity}
		if lower, ok := res.LowerBound(key); ok {
			return lower.Clone(), true
		}
		if opts.AddUpperBound {
			res.AddUpperBound(key, TemplateBound{
				Bound:           t.Constraint.Clone(),
				AppearanceDepth: opts.Depth,
			})
		}
		return NewUnion(t.Clone()), false

	case *TConditional:
		subject := Replace(t.Subject, res, g, deeper(opts))
		thenT := Replace(t.Then, res, g, deeper(opts))
		elseT := Replace(t.Else, res, g, deeper(opts))
		if !subject.HasTemplateStandins() {
			var cmp ComparisonResult
			if UnionContainedBy(g, subject, t.IfType, &cmp) && !cmp.CoercionRequired {
				return thenT, true
			}
			if !CanBeIdentical(g, subject, t.IfType) {
				return elseT, true
			}
		}
		return NewUnion(&TConditional{
			Subject: subject,
			IfType:  t.IfType.Clone(),
			Then:    thenT,
			Else:    elseT,
		}), false

	case *TKeyedArray:
		out := t.Clone().(*TKeyedArray)
		changed := false
		for i := range out.KnownItems {
			repl := Replace(out.KnownItems[i].Entry.Value, res, g, deeper(opts))
			changed = changed || repl.HadTemplate
			out.KnownItems[i].Entry.Value = repl
		}
		if out.Parameters != nil {
			out.Parameters.Key = Replace(out.Parameters.Key, res, g, deeper(opts))
			out.Parameters.Value = Replace(out.Parameters.Value, res, g, deeper(opts))
		}
		return NewUnion(out), changed

	case *TList:
		out := t.Clone().(*TList)
		out.ElementType = Replace(out.ElementType, res, g, deeper(opts))
		for i := range out.KnownElements {
			out.KnownElements[i].Entry.Value = Replace(out.KnownElements[i].Entry.Value, res, g, deeper(opts))
		}
		return NewUnion(out), false

	case *TIterable:
		return NewUnion(&TIterable{
			Key:   Replace(t.Key, res, g, deeper(opts)),
			Value: Replace(t.Value, res, g, deeper(opts)),
		}), false

	case *TNamedObject:
		out := t.Clone().(*TNamedObject)
		for i := range out.TypeParameters {
			out.TypeParameters[i] = Replace(out.TypeParameters[i], res, g, deeper(opts))
		}
		for i, part := range out.Intersections {
			repl, _ := replaceAtomic(part, res, g, deeper(opts))
			if single, ok := repl.Single(); ok {
				out.Intersections[i] = single
			}
		}
		return NewUnion(out), false

	case *TCallable:
		out := t.Clone().(*TCallable)
		for i := range out.Params {
			if out.Params[i].Type != nil {
				out.Params[i].Type = Replace(out.Params[i].Type, res, g, deeper(opts))
			}
		}
		if out.Return != nil {
			out.Return = Replace(out.Return, res, g, deeper(opts))
		}
		return NewUnion(out), false

	default:
		return NewUnion(a.Clone()), false
	}
}

func deeper(opts ReplaceOptions) ReplaceOptions {
	opts.Depth++
	return opts
}
