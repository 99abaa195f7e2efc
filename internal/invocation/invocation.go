// Package invocation gives every call site a uniform shape, whether the
// callee is a named function-like, a dynamic callable, or a language
// construct. It is a pure data adapter: every operation is total and
// side-effect free.
package invocation

import (
	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/types"
)

// TargetKind discriminates InvocationTarget.
type TargetKind uint8

const (
	// TargetFunctionLike is a named function or method with metadata.
	TargetFunctionLike TargetKind = iota
	// TargetCallable is a dynamic callable with only a signature.
	TargetCallable
	// TargetConstruct is a language construct (echo, print, exit).
	TargetConstruct
)

// MethodTargetContext carries the class side of a method call.
type MethodTargetContext struct {
	DeclaringMethod meta.MethodID
	ClassLike       *meta.ClassLikeMetadata
	// StaticType is the resolved static:: type at the call site.
	StaticType *types.Union
}

// InvocationTarget is the callee of one call site.
type InvocationTarget struct {
	Kind TargetKind

	// FunctionLike is set for TargetFunctionLike.
	FunctionLike *meta.FunctionLikeMetadata
	// Method is set when the function-like is a method.
	Method *MethodTargetContext

	// Callable is set for TargetCallable.
	Callable *types.TCallable

	// Construct is set for TargetConstruct.
	Construct *Construct
}

// ArgumentsKind discriminates ArgumentsSource.
type ArgumentsKind uint8

const (
	// ArgsList is an ordinary argument list.
	ArgsList ArgumentsKind = iota
	// ArgsPipe is a single value piped into the callee.
	ArgsPipe
	// ArgsSlice is a spread of an array value.
	ArgsSlice
	// ArgsNone is a call with no arguments at all.
	ArgsNone
)

// Argument is one supplied argument.
type Argument struct {
	Name   source.StringID // NoStringID for positional
	Type   *types.Union
	Span   source.Span
	Spread bool
}

// ArgumentsSource is the supplied-argument side of a call site.
type ArgumentsSource struct {
	Kind ArgumentsKind
	List []Argument
	// Pipe is the piped value for ArgsPipe.
	Pipe *Argument
	// Slice is the spread array value for ArgsSlice.
	Slice *types.Union
}

// Count returns how many argument positions the source supplies; spreads
// and slices count as unknown (-1).
func (s ArgumentsSource) Count() int {
	switch s.Kind {
	case ArgsNone:
		return 0
	case ArgsPipe:
		return 1
	case ArgsSlice:
		return -1
	default:
		for _, a := range s.List {
			if a.Spread {
				return -1
			}
		}
		return len(s.List)
	}
}

// Invocation is one call site in uniform shape.
type Invocation struct {
	Target    InvocationTarget
	Arguments ArgumentsSource
	Span      source.Span
}

// Parameter is the uniform view over one declared parameter, whatever
// the target kind.
type Parameter struct {
	Name       source.StringID
	Type       *types.Union
	OutType    *types.Union
	ByRef      bool
	Variadic   bool
	HasDefault bool
}

// Parameters projects the target's parameter list into the uniform shape.
func (t InvocationTarget) Parameters() []Parameter {
	switch t.Kind {
	case TargetFunctionLike:
		if t.FunctionLike == nil {
			return nil
		}
		out := make([]Parameter, len(t.FunctionLike.Parameters))
		for i, p := range t.FunctionLike.Parameters {
			out[i] = Parameter{
				Name:       p.Name,
				Type:       p.Type,
				OutType:    p.OutType,
				ByRef:      p.ByRef,
				Variadic:   p.Variadic,
				HasDefault: p.HasDefault,
			}
		}
		return out
	case TargetCallable:
		if t.Callable == nil {
			return nil
		}
		out := make([]Parameter, len(t.Callable.Params))
		for i, p := range t.Callable.Params {
			out[i] = Parameter{
				Type:       p.Type,
				ByRef:      p.ByRef,
				Variadic:   p.IsVariadic,
				HasDefault: p.HasDefault,
			}
		}
		return out
	case TargetConstruct:
		if t.Construct == nil {
			return nil
		}
		return t.Construct.Parameters
	}
	return nil
}

// ReturnType answers the declared return of the target, mixed when the
// target carries none.
func (t InvocationTarget) ReturnType() *types.Union {
	switch t.Kind {
	case TargetFunctionLike:
		if t.FunctionLike != nil && t.FunctionLike.ReturnType != nil {
			return t.FunctionLike.ReturnType
		}
	case TargetCallable:
		if t.Callable != nil && t.Callable.Return != nil {
			return t.Callable.Return
		}
	case TargetConstruct:
		if t.Construct != nil {
			return t.Construct.Return
		}
	}
	return types.MixedUnion()
}

// AllowsNamedArguments reports whether the target accepts named
// arguments. Dynamic callables and constructs never do; named
// function-likes carry the answer on their metadata.
func (t InvocationTarget) AllowsNamedArguments() bool {
	return t.Kind == TargetFunctionLike && t.FunctionLike != nil && t.FunctionLike.AllowsNamedArguments
}

// ParameterAt resolves the parameter for an argument position, soaking
// into a trailing variadic.
func (t InvocationTarget) ParameterAt(index int) (Parameter, bool) {
	params := t.Parameters()
	if index < len(params) {
		return params[index], true
	}
	if n := len(params); n > 0 && params[n-1].Variadic {
		return params[n-1], true
	}
	return Parameter{}, false
}
