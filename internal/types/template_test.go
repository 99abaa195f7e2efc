package types

import (
	"testing"

	"argus/internal/source"
)

func testStandin(in *source.Interner, name, entity string, constraint *Union) *TGenericParam {
	if constraint == nil {
		constraint = MixedUnion()
	}
	return &TGenericParam{
		Name:           in.Intern(name),
		DefiningEntity: in.Intern(entity),
		Constraint:     constraint,
	}
}

func TestReplaceSubstitutesLowerBound(t *testing.T) {
	in := source.NewInterner()
	p := testStandin(in, "T", "C", nil)
	key := TemplateKey{Name: p.Name, Entity: p.DefiningEntity}

	res := NewTemplateResult()
	res.AddLowerBound(key, TemplateBound{Bound: NewUnion(NewInt())})

	out := Replace(NewUnion(p), res, EmptyGraph{}, ReplaceOptions{})
	if !out.HasKind(KindInt) || out.HasKind(KindGenericParam) {
		t.Fatalf("the standin should resolve to int, got %v", out)
	}
	if !out.HadTemplate {
		t.Fatal("a substituted union must remember it had a template")
	}
}

func TestReplaceWidensConflictingLowerBounds(t *testing.T) {
	in := source.NewInterner()
	p := testStandin(in, "T", "C", nil)
	key := TemplateKey{Name: p.Name, Entity: p.DefiningEntity}

	res := NewTemplateResult()
	res.AddLowerBound(key, TemplateBound{Bound: NewUnion(NewInt())})
	res.AddLowerBound(key, TemplateBound{Bound: NewUnion(NewString())})

	out := Replace(NewUnion(p), res, EmptyGraph{}, ReplaceOptions{})
	if !out.HasKind(KindInt) || !out.HasKind(KindString) {
		t.Fatalf("conflicting evidence widens, got %v", out)
	}
}

func TestReplaceLeavesUnboundStandin(t *testing.T) {
	in := source.NewInterner()
	p := testStandin(in, "T", "C", nil)

	out := Replace(NewUnion(p), NewTemplateResult(), EmptyGraph{}, ReplaceOptions{})
	if !out.HasKind(KindGenericParam) {
		t.Fatalf("an unbound standin stays put, got %v", out)
	}
}

func TestReplaceRecordsUpperBoundForUnbound(t *testing.T) {
	in := source.NewInterner()
	p := testStandin(in, "T", "C", NewUnion(NewString()))
	key := TemplateKey{Name: p.Name, Entity: p.DefiningEntity}

	res := NewTemplateResult()
	Replace(NewUnion(p), res, EmptyGraph{}, ReplaceOptions{AddUpperBound: true})

	upper, ok := res.UpperBound(EmptyGraph{}, key)
	if !ok {
		t.Fatal("the declared constraint should be recorded as an upper bound")
	}
	if !upper.HasKind(KindString) {
		t.Fatalf("expected the constraint, got %v", upper)
	}
}

func TestReplaceDescendsIntoContainers(t *testing.T) {
	in := source.NewInterner()
	p := testStandin(in, "T", "C", nil)
	key := TemplateKey{Name: p.Name, Entity: p.DefiningEntity}

	res := NewTemplateResult()
	res.AddLowerBound(key, TemplateBound{Bound: NewUnion(NewInt())})

	coll := NewGenericObject(in.Intern("Collection"), NewUnion(p.Clone()))
	shape := &TKeyedArray{}
	shape.SetItem(StrKey("v"), KeyedEntry{Value: NewUnion(p.Clone())})

	out := Replace(NewUnion(coll, shape), res, EmptyGraph{}, ReplaceOptions{})

	obj, _ := out.FirstOfKind(KindNamedObject)
	if !obj.(*TNamedObject).TypeParameters[0].HasKind(KindInt) {
		t.Fatalf("the object parameter should resolve, got %v", out)
	}
	arr, _ := out.FirstOfKind(KindKeyedArray)
	entry, _ := arr.(*TKeyedArray).Item(StrKey("v"))
	if !entry.Value.HasKind(KindInt) {
		t.Fatalf("the shape entry should resolve, got %v", out)
	}
}

func TestReplaceResolvesConditional(t *testing.T) {
	in := source.NewInterner()
	p := testStandin(in, "T", "C", nil)
	key := TemplateKey{Name: p.Name, Entity: p.DefiningEntity}

	cond := &TConditional{
		Subject: NewUnion(p),
		IfType:  NewUnion(NewString()),
		Then:    NewUnion(NewStringLiteral("text")),
		Else:    NewUnion(NewIntLiteral(0)),
	}

	res := NewTemplateResult()
	res.AddLowerBound(key, TemplateBound{Bound: NewUnion(NewString())})
	out := Replace(NewUnion(cond), res, EmptyGraph{}, ReplaceOptions{})
	if !out.HasKind(KindString) || out.HasKind(KindInt) {
		t.Fatalf("string subject picks the then arm, got %v", out)
	}

	res = NewTemplateResult()
	res.AddLowerBound(key, TemplateBound{Bound: NewUnion(NewIntLiteral(5))})
	out = Replace(NewUnion(cond), res, EmptyGraph{}, ReplaceOptions{})
	if !out.HasKind(KindInt) || out.HasKind(KindString) {
		t.Fatalf("int subject picks the else arm, got %v", out)
	}
}

func TestReplaceKeepsUndecidedConditional(t *testing.T) {
	in := source.NewInterner()
	p := testStandin(in, "T", "C", nil)

	cond := &TConditional{
		Subject: NewUnion(p),
		IfType:  NewUnion(NewString()),
		Then:    NewUnion(NewString()),
		Else:    NewUnion(NewInt()),
	}

	out := Replace(NewUnion(cond), NewTemplateResult(), EmptyGraph{}, ReplaceOptions{})
	if !out.HasKind(KindConditional) {
		t.Fatalf("an undecided conditional propagates, got %v", out)
	}
}

func TestUpperBoundsIntersect(t *testing.T) {
	in := source.NewInterner()
	key := TemplateKey{Name: in.Intern("T"), Entity: in.Intern("C")}

	res := NewTemplateResult()
	res.AddUpperBound(key, TemplateBound{Bound: NewUnion(NewIntRange(0, 100))})
	res.AddUpperBound(key, TemplateBound{Bound: NewUnion(NewIntRange(50, 200))})

	upper, ok := res.UpperBound(EmptyGraph{}, key)
	if !ok {
		t.Fatal("expected a folded upper bound")
	}
	r := upper.Types[0].(*TInt)
	if r.LowerBound() != 50 || r.UpperBound() != 100 {
		t.Fatalf("upper bounds intersect, got [%d, %d]", r.LowerBound(), r.UpperBound())
	}
}
