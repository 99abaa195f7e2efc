package types

import "testing"

func TestFoldTruthyDropsFalsyMembers(t *testing.T) {
	u := NewUnion(&TNull{}, NewBoolLiteral(false), NewStringLiteral(""), NewString())
	out := FoldUnionTruthy(u)
	if out.HasNull() {
		t.Fatalf("null cannot be truthy, got %v", out)
	}
	if out.HasKind(KindBool) {
		t.Fatalf("false cannot be truthy, got %v", out)
	}
	s, ok := out.FirstOfKind(KindString)
	if !ok {
		t.Fatalf("string should survive, got %v", out)
	}
	str := s.(*TString)
	if !str.IsTruthy || !str.IsNonEmpty {
		t.Fatal("the surviving string must become truthy")
	}
}

func TestFoldTruthyIntEdges(t *testing.T) {
	out := FoldUnionTruthy(NewUnion(NewIntRange(0, 10)))
	r := out.Types[0].(*TInt)
	if r.LowerBound() != 1 || r.UpperBound() != 10 {
		t.Fatalf("truthy int<0, 10> should be int<1, 10>, got [%d, %d]", r.LowerBound(), r.UpperBound())
	}

	if !FoldUnionTruthy(NewUnion(NewIntLiteral(0))).IsNever() {
		t.Fatal("truthy 0 is never")
	}
}

func TestFoldTruthyBareBool(t *testing.T) {
	out := FoldUnionTruthy(NewUnion(NewBool()))
	b := out.Types[0].(*TBool)
	if b.Value == nil || !*b.Value {
		t.Fatalf("truthy bool should be true, got %v", out)
	}
}

func TestFoldTruthyMixed(t *testing.T) {
	out := FoldUnionTruthy(MixedUnion())
	m := out.Types[0].(*TMixed)
	if !m.NonNull || m.Truthiness != TruthinessTruthy {
		t.Fatalf("truthy mixed must be non-null and truthy, got %v", out)
	}
}

func TestFoldTruthyObjectsUntouched(t *testing.T) {
	out := FoldUnionTruthy(NewUnion(&TObjectAny{}))
	if len(out.Types) != 1 || out.Types[0].AtomicKind() != KindObjectAny {
		t.Fatalf("objects are always truthy, got %v", out)
	}
}

func TestFoldFalsyKeepsNullAndZero(t *testing.T) {
	u := NewUnion(&TNull{}, NewIntRange(-5, 5), NewStringLiteral("php"))
	out := FoldUnionFalsy(u)
	if !out.HasNull() {
		t.Fatalf("null is falsy and must survive, got %v", out)
	}
	r, ok := out.FirstOfKind(KindInt)
	if !ok {
		t.Fatalf("the int interval straddles zero, 0 should survive, got %v", out)
	}
	if v, isLit := r.(*TInt).Literal(); !isLit || v != 0 {
		t.Fatalf("falsy int should collapse to 0, got %v", out)
	}
	if out.HasKind(KindString) {
		t.Fatalf("'php' is truthy and must drop, got %v", out)
	}
}

func TestFoldFalsyStringClearsFlags(t *testing.T) {
	out := FoldUnionFalsy(NewUnion(NewString()))
	s := out.Types[0].(*TString)
	if s.IsNonEmpty || s.IsTruthy || s.IsNumeric || s.IsLowercase {
		t.Fatalf("falsy string keeps no refinement, got %v", out)
	}

	if !FoldUnionFalsy(NewUnion(NewTruthyString())).IsNever() {
		t.Fatal("a truthy string has no falsy variant")
	}
}

func TestFoldFalsyRefinedStringsNarrow(t *testing.T) {
	out := FoldUnionFalsy(NewUnion(NewNonEmptyString()))
	s, ok := out.Single()
	if !ok {
		t.Fatalf("falsy non-empty-string is a single literal, got %v", out)
	}
	if lit := s.(*TString); lit.Literal == nil || *lit.Literal != "0" {
		t.Fatalf("'' is excluded, so '0' is the only falsy value, got %v", out)
	}
	var res ComparisonResult
	if !UnionContainedBy(EmptyGraph{}, out, NewUnion(NewNonEmptyString()), &res) {
		t.Fatalf("falsy narrowing must stay inside the original type, got %v", out)
	}

	numeric := FoldUnionFalsy(NewUnion(NewNumericString()))
	if lit := numeric.Types[0].(*TString); lit.Literal == nil || *lit.Literal != "0" {
		t.Fatalf("falsy numeric-string is '0', got %v", numeric)
	}

	classLike := &TString{IsClassLike: true, IsNonEmpty: true}
	if !FoldUnionFalsy(NewUnion(classLike)).IsNever() {
		t.Fatal("a class name is never '' or '0'")
	}

	lower := FoldUnionFalsy(NewUnion(NewLowercaseString()))
	if ls := lower.Types[0].(*TString); !ls.IsLowercase {
		t.Fatalf("falsy lowercase-string stays lowercase, got %v", lower)
	}
}

func TestFoldFalsyPositiveIntIsNever(t *testing.T) {
	if !FoldUnionFalsy(NewUnion(NewIntRange(1, 100))).IsNever() {
		t.Fatal("a positive interval has no falsy variant")
	}
}

func TestFoldFalsyObjectsAreNever(t *testing.T) {
	if !FoldUnionFalsy(NewUnion(&TObjectAny{})).IsNever() {
		t.Fatal("objects are never falsy")
	}
}

func TestFoldFalsyEmptyArray(t *testing.T) {
	broad := NewKeyedArray(NewUnion(&TArrayKey{}), MixedUnion())
	out := FoldUnionFalsy(NewUnion(broad))
	arr, ok := out.FirstOfKind(KindKeyedArray)
	if !ok {
		t.Fatalf("a maybe-empty array can be falsy, got %v", out)
	}
	shape := arr.(*TKeyedArray)
	if len(shape.KnownItems) != 0 || shape.Parameters != nil {
		t.Fatalf("the falsy variant is the empty array, got %v", out)
	}
}
