package reconciler

import (
	"testing"

	"argus/internal/source"
	"argus/internal/types"
)

func TestSubtractSplitsInterval(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewIntRange(0, 100)), types.NewUnion(types.NewIntRange(34, 56)))
	if len(out.Types) != 2 {
		t.Fatalf("removing a middle range should split, got %v", out)
	}
	lo := out.Types[0].(*types.TInt)
	hi := out.Types[1].(*types.TInt)
	if lo.LowerBound() != 0 || lo.UpperBound() != 33 {
		t.Fatalf("left half should be int<0, 33>, got [%d, %d]", lo.LowerBound(), lo.UpperBound())
	}
	if hi.LowerBound() != 57 || hi.UpperBound() != 100 {
		t.Fatalf("right half should be int<57, 100>, got [%d, %d]", hi.LowerBound(), hi.UpperBound())
	}
}

func TestSubtractBoundedFromUnbounded(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewInt()), types.NewUnion(types.NewIntRange(34, 256)))
	if len(out.Types) != 2 {
		t.Fatalf("int minus int<34, 256> should split, got %v", out)
	}
	lo := out.Types[0].(*types.TInt)
	hi := out.Types[1].(*types.TInt)
	if lo.Min != nil || lo.UpperBound() != 33 {
		t.Fatalf("left half should be int<min, 33>, got %v", out)
	}
	if hi.LowerBound() != 257 || hi.Max != nil {
		t.Fatalf("right half should be int<257, max>, got %v", out)
	}
}

func TestSubtractLiteralFromRange(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewIntRange(0, 10)), types.NewUnion(types.NewIntLiteral(0)))
	if len(out.Types) != 1 {
		t.Fatalf("removing the low edge should clip, got %v", out)
	}
	r := out.Types[0].(*types.TInt)
	if r.LowerBound() != 1 || r.UpperBound() != 10 {
		t.Fatalf("expected int<1, 10>, got [%d, %d]", r.LowerBound(), r.UpperBound())
	}
}

func TestSubtractWholeRangeIsNever(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewIntRange(5, 9)), types.NewUnion(types.NewIntRange(0, 100)))
	if !out.IsNever() {
		t.Fatalf("a fully covered interval must vanish, got %v", out)
	}
}

func TestSubtractNullFromMixed(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.MixedUnion(), types.NewUnion(&types.TNull{}))
	if len(out.Types) != 1 {
		t.Fatalf("mixed minus null should stay one member, got %v", out)
	}
	m := out.Types[0].(*types.TMixed)
	if !m.NonNull || m.Vanilla {
		t.Fatalf("mixed minus null should be the non-null refinement, got %v", out)
	}
}

func TestSubtractConcreteFromMixed(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.MixedUnion(), types.NewUnion(types.NewString()))
	if len(out.Types) != 1 || out.Types[0].AtomicKind() != types.KindMixed {
		t.Fatalf("mixed cannot carve out a concrete type, got %v", out)
	}
}

func TestSubtractNullFromNullable(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(&types.TNull{}, types.NewString()), types.NewUnion(&types.TNull{}))
	if out.HasNull() {
		t.Fatalf("null should be removed, got %v", out)
	}
	if !out.HasKind(types.KindString) {
		t.Fatalf("string should survive, got %v", out)
	}
}

func TestSubtractBoolLiteral(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewBool()), types.NewUnion(types.NewBoolLiteral(false)))
	if len(out.Types) != 1 {
		t.Fatalf("bool minus false should be true, got %v", out)
	}
	b := out.Types[0].(*types.TBool)
	if b.Value == nil || !*b.Value {
		t.Fatalf("expected true, got %v", out)
	}
}

func TestSubtractEmptyLiteralCarvesNonEmpty(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewString()), types.NewUnion(types.NewStringLiteral("")))
	s := out.Types[0].(*types.TString)
	if !s.IsNonEmpty {
		t.Fatalf("string minus '' should be non-empty-string, got %v", out)
	}
}

func TestSubtractOtherLiteralKeepsString(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewString()), types.NewUnion(types.NewStringLiteral("php")))
	s := out.Types[0].(*types.TString)
	if s.IsNonEmpty || s.Literal != nil {
		t.Fatalf("the flag lattice cannot carve out 'php', got %v", out)
	}
}

func TestSubtractBroadStringDropsRefined(t *testing.T) {
	g := types.EmptyGraph{}
	out := Subtract(g, types.NewUnion(types.NewNonEmptyString(), types.NewInt()), types.NewUnion(types.NewString()))
	if out.HasKind(types.KindString) {
		t.Fatalf("non-empty-string is covered by string, got %v", out)
	}
	if !out.HasKind(types.KindInt) {
		t.Fatalf("int should survive, got %v", out)
	}
}

func TestSubtractGenericParamRewraps(t *testing.T) {
	g := types.EmptyGraph{}
	in := source.NewInterner()
	p := &types.TGenericParam{
		Name:           in.Intern("T"),
		DefiningEntity: in.Intern("C"),
		Constraint:     types.NewUnion(&types.TNull{}, types.NewInt()),
	}
	out := Subtract(g, types.NewUnion(p), types.NewUnion(&types.TNull{}))
	if len(out.Types) != 1 {
		t.Fatalf("the standin should survive, got %v", out)
	}
	narrowed := out.Types[0].(*types.TGenericParam)
	if narrowed.Constraint.HasNull() {
		t.Fatalf("null should be gone from the constraint, got %v", narrowed.Constraint)
	}
}

func TestSubtractPreservesUnionFlags(t *testing.T) {
	g := types.EmptyGraph{}
	u := types.NewUnion(&types.TNull{}, types.NewString())
	u.PossiblyUndefinedFromTry = true
	out := Subtract(g, u, types.NewUnion(&types.TNull{}))
	if !out.PossiblyUndefinedFromTry {
		t.Fatal("union flags must survive subtraction")
	}
}
