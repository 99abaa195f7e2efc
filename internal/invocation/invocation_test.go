package invocation

import (
	"testing"

	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/types"
)

func functionTarget(in *source.Interner) InvocationTarget {
	return InvocationTarget{
		Kind: TargetFunctionLike,
		FunctionLike: &meta.FunctionLikeMetadata{
			Name: in.Intern("format"),
			Parameters: []*meta.ParameterMetadata{
				{Name: in.Intern("template"), Type: types.NewUnion(types.NewString())},
				{Name: in.Intern("args"), Type: types.MixedUnion(), Variadic: true},
			},
			ReturnType: types.NewUnion(types.NewString()),
		},
	}
}

func TestFunctionLikeParameters(t *testing.T) {
	in := source.NewInterner()
	target := functionTarget(in)

	params := target.Parameters()
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	if !params[0].Type.HasKind(types.KindString) {
		t.Fatalf("first parameter should be string, got %v", params[0].Type)
	}
	if !params[1].Variadic {
		t.Fatal("the tail parameter is variadic")
	}
	if !target.ReturnType().HasKind(types.KindString) {
		t.Fatalf("declared return should win, got %v", target.ReturnType())
	}
}

func TestParameterAtSoaksIntoVariadic(t *testing.T) {
	in := source.NewInterner()
	target := functionTarget(in)

	p, ok := target.ParameterAt(0)
	if !ok || !p.Type.HasKind(types.KindString) {
		t.Fatalf("position 0 is the template, got %v", p.Type)
	}
	p, ok = target.ParameterAt(5)
	if !ok || !p.Variadic {
		t.Fatal("positions past the tail soak into the variadic")
	}

	bare := InvocationTarget{Kind: TargetCallable, Callable: types.NewCallable()}
	if _, ok := bare.ParameterAt(0); ok {
		t.Fatal("a bare callable has no parameters to resolve")
	}
}

func TestAllowsNamedArguments(t *testing.T) {
	in := source.NewInterner()
	target := functionTarget(in)
	if target.AllowsNamedArguments() {
		t.Fatal("the flag comes from metadata, not the target kind")
	}
	target.FunctionLike.AllowsNamedArguments = true
	if !target.AllowsNamedArguments() {
		t.Fatal("an opted-in function-like accepts named arguments")
	}

	bare := InvocationTarget{Kind: TargetCallable, Callable: types.NewCallable()}
	if bare.AllowsNamedArguments() {
		t.Fatal("dynamic callables never accept named arguments")
	}
	construct := InvocationTarget{Kind: TargetConstruct, Construct: PrintConstruct}
	if construct.AllowsNamedArguments() {
		t.Fatal("constructs never accept named arguments")
	}
}

func TestCallableTarget(t *testing.T) {
	target := InvocationTarget{
		Kind: TargetCallable,
		Callable: types.NewClosure([]types.CallableParam{
			{Type: types.NewUnion(types.NewInt())},
			{HasDefault: true},
		}, types.NewUnion(types.NewBool())),
	}

	params := target.Parameters()
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	if params[0].Type == nil || !params[0].Type.HasKind(types.KindInt) {
		t.Fatalf("closure parameter type lost: %v", params[0].Type)
	}
	if !params[1].HasDefault {
		t.Fatal("the optional parameter keeps its default flag")
	}
	if !target.ReturnType().HasKind(types.KindBool) {
		t.Fatalf("closure return lost: %v", target.ReturnType())
	}
}

func TestUnknownReturnIsMixed(t *testing.T) {
	target := InvocationTarget{Kind: TargetCallable, Callable: types.NewCallable()}
	if !target.ReturnType().IsMixed() {
		t.Fatalf("an unknown signature returns mixed, got %v", target.ReturnType())
	}
}

func TestConstructs(t *testing.T) {
	c, ok := ConstructByName("echo")
	if !ok {
		t.Fatal("echo is a construct")
	}
	if !c.Return.HasKind(types.KindVoid) {
		t.Fatalf("echo returns nothing, got %v", c.Return)
	}

	exit, ok := ConstructByName("die")
	if !ok || exit != ExitConstruct {
		t.Fatal("die aliases exit")
	}
	if !exit.Return.IsNever() {
		t.Fatalf("exit never returns, got %v", exit.Return)
	}

	target := InvocationTarget{Kind: TargetConstruct, Construct: PrintConstruct}
	params := target.Parameters()
	if len(params) != 1 || !params[0].Type.HasKind(types.KindString) {
		t.Fatalf("print takes one string, got %v", params)
	}
	lit, ok := target.ReturnType().Single()
	if !ok {
		t.Fatalf("print returns a single atomic, got %v", target.ReturnType())
	}
	if i := lit.(*types.TInt); i.Min == nil || *i.Min != 1 || i.Max == nil || *i.Max != 1 {
		t.Fatalf("print returns int(1), got %v", target.ReturnType())
	}

	if _, ok := ConstructByName("require"); ok {
		t.Fatal("unknown constructs must not resolve")
	}
}

func TestArgumentsCount(t *testing.T) {
	cases := []struct {
		src  ArgumentsSource
		want int
	}{
		{ArgumentsSource{Kind: ArgsNone}, 0},
		{ArgumentsSource{Kind: ArgsPipe, Pipe: &Argument{}}, 1},
		{ArgumentsSource{Kind: ArgsSlice}, -1},
		{ArgumentsSource{Kind: ArgsList, List: []Argument{{}, {}}}, 2},
		{ArgumentsSource{Kind: ArgsList, List: []Argument{{}, {Spread: true}}}, -1},
	}
	for i, tc := range cases {
		if got := tc.src.Count(); got != tc.want {
			t.Errorf("case %d: Count() = %d, want %d", i, got, tc.want)
		}
	}
}
