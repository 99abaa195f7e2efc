package reconciler

import (
	"testing"

	"argus/internal/diag"
	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/types"
)

func newTestReconciler(t *testing.T) (*Reconciler, *diag.Bag) {
	t.Helper()
	cb := meta.NewCodebase(source.NewInterner())
	bag := diag.NewBag(64)
	return New(cb, diag.BagReporter{Bag: bag}), bag
}

func assertOne(path string, a Assertion) map[string]CNF {
	return map[string]CNF{path: {Clauses: [][]Assertion{{a}}}}
}

func TestTruthyDropsNull(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$a", types.NewUnion(&types.TNull{}, types.NewString()))

	rc.ReconcileKeyedTypes(assertOne("$a", Truthy{}), ctx)

	got, _ := ctx.GetType("$a")
	if got.HasNull() {
		t.Fatalf("truthy narrowing must drop null, got %v", got)
	}
	s, ok := got.FirstOfKind(types.KindString)
	if !ok || !s.(*types.TString).IsTruthy {
		t.Fatalf("the string should narrow to its truthy variant, got %v", got)
	}
	if bag.Len() != 0 {
		t.Fatalf("a real narrowing reports nothing, got %d diagnostics", bag.Len())
	}
}

func TestImpossibleNullComparison(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$name", types.NewUnion(types.NewNonEmptyString()))

	rc.ReconcileKeyedTypes(assertOne("$name", IsIdentical{Type: types.NewUnion(&types.TNull{})}), ctx)

	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ImpossibleNullTypeComparison {
		t.Fatalf("expected ImpossibleNullTypeComparison, got %v", d.Code)
	}
	if d.Severity != diag.SevError {
		t.Fatalf("impossibility is an error, got %v", d.Severity)
	}
	got, _ := ctx.GetType("$name")
	if !got.IsNever() {
		t.Fatalf("the branch type should be never, got %v", got)
	}
}

func TestRedundantTypeComparison(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$n", types.NewUnion(types.NewInt()))

	rc.ReconcileKeyedTypes(assertOne("$n", IsType{Type: types.NewUnion(types.NewInt())}), ctx)

	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.RedundantTypeComparison || d.Severity != diag.SevWarning {
		t.Fatalf("expected a RedundantTypeComparison warning, got %v %v", d.Code, d.Severity)
	}
}

func TestRedundantIssetCheck(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$s", types.NewUnion(types.NewString()))

	rc.ReconcileKeyedTypes(assertOne("$s", IsIsset{}), ctx)

	if bag.Len() != 1 || bag.Items()[0].Code != diag.RedundantIssetCheck {
		t.Fatalf("isset on a definite string is redundant, got %d diagnostics", bag.Len())
	}
}

func TestIssetInsideLoopIsExempt(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.InsideLoop = true
	ctx.SetType("$s", types.NewUnion(types.NewString()))

	rc.ReconcileKeyedTypes(assertOne("$s", IsIsset{}), ctx)

	if bag.Len() != 0 {
		t.Fatalf("loop bodies may set the variable later, expected silence, got %d", bag.Len())
	}
}

func TestIssetOnMixedInsideLoop(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.InsideLoop = true
	ctx.SetType("$v", types.MixedUnion())

	rc.ReconcileKeyedTypes(assertOne("$v", IsIsset{}), ctx)

	got, _ := ctx.GetType("$v")
	m := got.Types[0].(*types.TMixed)
	if !m.NonNull || !m.IssetFromLoop {
		t.Fatalf("isset in a loop tints mixed, got %v", got)
	}
}

func TestNotIssetForcesNull(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$v", types.NewUnion(&types.TNull{}, types.NewInt()))

	rc.ReconcileKeyedTypes(assertOne("$v", IsNotIsset{}), ctx)

	got, _ := ctx.GetType("$v")
	if len(got.Types) != 1 || !got.HasNull() {
		t.Fatalf("the negative isset branch is null, got %v", got)
	}
}

func TestOrClauseWidens(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$v", types.NewUnion(types.NewInt(), types.NewString(), &types.TNull{}))

	cnf := map[string]CNF{"$v": {Clauses: [][]Assertion{{
		IsType{Type: types.NewUnion(types.NewInt())},
		IsType{Type: types.NewUnion(types.NewString())},
	}}}}
	rc.ReconcileKeyedTypes(cnf, ctx)

	got, _ := ctx.GetType("$v")
	if !got.HasKind(types.KindInt) || !got.HasKind(types.KindString) {
		t.Fatalf("an OR clause keeps both alternatives, got %v", got)
	}
	if got.HasNull() {
		t.Fatalf("null satisfies neither alternative, got %v", got)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
}

func TestAndClausesChain(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$v", types.NewUnion(types.NewIntRange(0, 100), &types.TNull{}))

	cnf := map[string]CNF{"$v": {Clauses: [][]Assertion{
		{IsIsset{}},
		{IntRangeCompare{Op: ">=", Value: 34}},
	}}}
	rc.ReconcileKeyedTypes(cnf, ctx)

	got, _ := ctx.GetType("$v")
	if got.HasNull() {
		t.Fatalf("isset removed null first, got %v", got)
	}
	r := got.Types[0].(*types.TInt)
	if r.LowerBound() != 34 || r.UpperBound() != 100 {
		t.Fatalf("expected int<34, 100>, got [%d, %d]", r.LowerBound(), r.UpperBound())
	}
}

func TestIntCompareSplitScenario(t *testing.T) {
	rc, _ := newTestReconciler(t)
	g := types.EmptyGraph{}

	ctx := NewBlockContext()
	ctx.SetType("$n", types.NewUnion(types.NewInt()))
	rc.ReconcileKeyedTypes(assertOne("$n", IntRangeCompare{Op: ">=", Value: 34}), ctx)
	thenType, _ := ctx.GetType("$n")

	r := thenType.Types[0].(*types.TInt)
	if r.LowerBound() != 34 || r.Max != nil {
		t.Fatalf("the positive branch should be int<34, max>, got %v", thenType)
	}

	elseType := Subtract(g, types.NewUnion(types.NewInt()), thenType)
	e := elseType.Types[0].(*types.TInt)
	if e.Min != nil || e.UpperBound() != 33 {
		t.Fatalf("the negative branch should be int<min, 33>, got %v", elseType)
	}
}

func TestPositiveIntExcludesNullAndFalse(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$v", types.NewUnion(types.NewInt(), &types.TNull{}, types.NewBool()))

	rc.ReconcileKeyedTypes(assertOne("$v", IntRangeCompare{Op: ">", Value: 0}), ctx)

	got, _ := ctx.GetType("$v")
	if got.HasNull() {
		t.Fatalf("null coerces to 0 and cannot be positive, got %v", got)
	}
	b, ok := got.FirstOfKind(types.KindBool)
	if !ok || b.(*types.TBool).Value == nil || !*b.(*types.TBool).Value {
		t.Fatalf("bool narrows to true, got %v", got)
	}
}

func TestNarrowingBareVarInvalidatesDescendants(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$a", types.NewUnion(
		types.NewKeyedArray(types.NewUnion(&types.TArrayKey{}), types.MixedUnion()),
		&types.TNull{}))
	ctx.SetType("$a[0]", types.MixedUnion())

	rc.ReconcileKeyedTypes(assertOne("$a", IsIsset{}), ctx)

	if _, ok := ctx.GetType("$a[0]"); ok {
		t.Fatal("narrowing the root must invalidate cached descendants")
	}
}

func TestNestedIssetExpandsPrefixes(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$arr", types.NewUnion(
		&types.TNull{},
		types.NewKeyedArray(types.NewUnion(types.NewString()), types.NewUnion(&types.TNull{}, types.NewString()))))

	rc.ReconcileKeyedTypes(assertOne("$arr['k']", IsIsset{}), ctx)

	root, _ := ctx.GetType("$arr")
	if root.HasNull() {
		t.Fatalf("the root prefix must be isset too, got %v", root)
	}
	entry, ok := ctx.GetType("$arr['k']")
	if !ok {
		t.Fatal("the narrowed entry should be cached")
	}
	if entry.HasNull() || !entry.HasKind(types.KindString) {
		t.Fatalf("isset drops null from the entry, got %v", entry)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
}

func TestNestedNarrowingRefinesParentShape(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()

	shape := &types.TKeyedArray{}
	shape.SetItem(types.StrKey("k"), types.KeyedEntry{Value: types.NewUnion(types.NewInt(), types.NewString())})
	ctx.SetType("$arr", types.NewUnion(shape))

	rc.ReconcileKeyedTypes(assertOne("$arr['k']", IsType{Type: types.NewUnion(types.NewInt())}), ctx)

	parent, _ := ctx.GetType("$arr")
	arr := parent.Types[0].(*types.TKeyedArray)
	entry, ok := arr.Item(types.StrKey("k"))
	if !ok {
		t.Fatal("the known item must survive")
	}
	if entry.Value.HasKind(types.KindString) || !entry.Value.HasKind(types.KindInt) {
		t.Fatalf("the parent shape should see the narrowed entry, got %v", entry.Value)
	}
}

func TestHasKeyOnSealedShapeWithoutKey(t *testing.T) {
	rc, bag := newTestReconciler(t)
	ctx := NewBlockContext()

	shape := &types.TKeyedArray{}
	shape.SetItem(types.StrKey("a"), types.KeyedEntry{Value: types.NewUnion(types.NewInt())})
	ctx.SetType("$arr", types.NewUnion(shape))

	rc.ReconcileKeyedTypes(assertOne("$arr", HasArrayKey{Key: types.StrKey("b")}), ctx)

	if bag.Len() != 1 || bag.Items()[0].Code != diag.ImpossibleKeyCheck {
		t.Fatalf("a sealed shape proves the key absent, got %d diagnostics", bag.Len())
	}
	got, _ := ctx.GetType("$arr")
	if !got.IsNever() {
		t.Fatalf("expected never, got %v", got)
	}
}

func TestHasKeyPromotesResidualEntry(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$arr", types.NewUnion(
		types.NewKeyedArray(types.NewUnion(types.NewString()), types.NewUnion(&types.TNull{}, types.NewInt()))))

	rc.ReconcileKeyedTypes(assertOne("$arr", HasNonnullEntryForKey{Key: types.StrKey("k")}), ctx)

	got, _ := ctx.GetType("$arr")
	arr := got.Types[0].(*types.TKeyedArray)
	entry, ok := arr.Item(types.StrKey("k"))
	if !ok {
		t.Fatal("the key should be promoted to a known item")
	}
	if entry.PossiblyUndefined {
		t.Fatal("the asserted key is definitely present")
	}
	if entry.Value.HasNull() {
		t.Fatalf("the nonnull form strips null, got %v", entry.Value)
	}
	if !arr.NonEmpty {
		t.Fatal("a container with a definite key is non-empty")
	}
}

func TestNotInArraySubtractsLiteralSet(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	ctx.SetType("$v", types.NewUnion(types.NewStringLiteral("a"), types.NewStringLiteral("b"), types.NewStringLiteral("c")))

	set := types.NewUnion(types.NewStringLiteral("a"), types.NewStringLiteral("b"))
	rc.ReconcileKeyedTypes(assertOne("$v", NotInArray{Type: set}), ctx)

	got, _ := ctx.GetType("$v")
	if len(got.Types) != 1 {
		t.Fatalf("only 'c' should remain, got %v", got)
	}
	s := got.Types[0].(*types.TString)
	if s.Literal == nil || *s.Literal != "c" {
		t.Fatalf("expected 'c', got %v", got)
	}
}

func TestNotInArrayBroadSetProvesNothing(t *testing.T) {
	rc, _ := newTestReconciler(t)
	ctx := NewBlockContext()
	existing := types.NewUnion(types.NewString())
	ctx.SetType("$v", existing)

	rc.ReconcileKeyedTypes(assertOne("$v", NotInArray{Type: types.NewUnion(types.NewString())}), ctx)

	got, _ := ctx.GetType("$v")
	if !got.Equals(existing) {
		t.Fatalf("a broad set proves nothing about the complement, got %v", got)
	}
}

func TestCountableBindsNamedObjects(t *testing.T) {
	rc, _ := newTestReconciler(t)
	in := rc.Codebase.Interner()
	countable := in.Intern("Countable")
	rc.Codebase.AddClassLike(meta.NewClassLikeMetadata(countable, meta.KindInterface))

	basket := in.Intern("Basket")
	rc.Codebase.AddClassLike(meta.NewClassLikeMetadata(basket, meta.KindClass))

	tally := in.Intern("Tally")
	tm := meta.NewClassLikeMetadata(tally, meta.KindClass)
	tm.DirectParentInterfaces = []source.StringID{countable}
	rc.Codebase.AddClassLike(tm)
	rc.Codebase.Populate(diag.NopReporter{})

	ctx := NewBlockContext()
	ctx.SetType("$bag", types.NewUnion(types.NewNamedObject(basket)))
	rc.ReconcileKeyedTypes(assertOne("$bag", Countable{}), ctx)
	got, _ := ctx.GetType("$bag")
	obj := got.Types[0].(*types.TNamedObject)
	if len(obj.Intersections) != 1 {
		t.Fatalf("a plain class should meet Countable, got %v", got)
	}
	if bound := obj.Intersections[0].(*types.TNamedObject); bound.Name != countable {
		t.Fatalf("the intersection bound must be Countable, got %v", got)
	}

	ctx = NewBlockContext()
	ctx.SetType("$tally", types.NewUnion(types.NewNamedObject(tally)))
	rc.ReconcileKeyedTypes(assertOne("$tally", Countable{}), ctx)
	got, _ = ctx.GetType("$tally")
	if obj = got.Types[0].(*types.TNamedObject); len(obj.Intersections) != 0 {
		t.Fatalf("an implementor needs no extra bound, got %v", got)
	}
}

func TestValueForKeyDescendsKnownItems(t *testing.T) {
	cb := meta.NewCodebase(source.NewInterner())
	ctx := NewBlockContext()

	inner := &types.TKeyedArray{}
	inner.SetItem(types.IntKey(0), types.KeyedEntry{Value: types.NewUnion(types.NewInt())})
	outer := &types.TKeyedArray{}
	outer.SetItem(types.StrKey("rows"), types.KeyedEntry{Value: types.NewUnion(inner)})
	ctx.SetType("$data", types.NewUnion(outer))

	got := valueForKey(cb, "$data['rows'][0]", ctx)
	if !got.HasKind(types.KindInt) || len(got.Types) != 1 {
		t.Fatalf("descent through known items should find int, got %v", got)
	}
	if _, ok := ctx.GetType("$data['rows']"); !ok {
		t.Fatal("intermediate steps should be cached")
	}
}

func TestValueForKeyUnknownIsMixed(t *testing.T) {
	cb := meta.NewCodebase(source.NewInterner())
	ctx := NewBlockContext()
	got := valueForKey(cb, "$nope['x']", ctx)
	if !got.IsMixed() {
		t.Fatalf("unknown roots answer mixed, got %v", got)
	}
}

func TestMergeContextsWidens(t *testing.T) {
	a := NewBlockContext()
	a.SetType("$v", types.NewUnion(types.NewInt()))
	a.SetType("$only", types.NewUnion(types.NewString()))
	b := NewBlockContext()
	b.SetType("$v", types.NewUnion(types.NewString()))

	out := MergeContexts(a, b)
	v, _ := out.GetType("$v")
	if !v.HasKind(types.KindInt) || !v.HasKind(types.KindString) {
		t.Fatalf("shared keys widen pointwise, got %v", v)
	}
	only, _ := out.GetType("$only")
	if !only.PossiblyUndefinedFromTry {
		t.Fatal("one-sided keys become possibly undefined")
	}
}
