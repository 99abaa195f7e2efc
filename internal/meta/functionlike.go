package meta

import (
	"argus/internal/source"
	"argus/internal/types"
)

// ParameterMetadata is one declared parameter of a function-like.
type ParameterMetadata struct {
	Name     source.StringID
	Span     source.Span
	TypeSpan source.Span

	// Type is the resolved signature type, docblock winning over the
	// native declaration when both exist and agree.
	Type *types.Union
	// OutType is the type the parameter holds after the call for by-ref
	// parameters with a declared @param-out.
	OutType *types.Union
	// DefaultType is the type of the default expression.
	DefaultType *types.Union

	ByRef      bool
	Variadic   bool
	HasDefault bool
	// Promoted marks constructor-promoted properties.
	Promoted bool
}

// AssertKind says when an assertion clause applies.
type AssertKind uint8

const (
	// AssertAlways applies unconditionally after the call returns.
	AssertAlways AssertKind = iota
	// AssertIfTrue applies when the call returned a truthy value.
	AssertIfTrue
	// AssertIfFalse applies when the call returned a falsy value.
	AssertIfFalse
)

// AssertionClause is one declared @assert clause: after a call, the named
// parameter's access path is known to satisfy (or, negated, to not
// satisfy) the given type.
type AssertionClause struct {
	Kind AssertKind
	// Path is the asserted access path rooted at a parameter name,
	// e.g. "$value" or "$arr['key']".
	Path    string
	Type    *types.Union
	Negated bool
}

// MethodMetadata is the method-only half of a function-like.
type MethodMetadata struct {
	DefiningClass source.StringID
	Visibility    Visibility
	Abstract      bool
	Final         bool
	Static        bool
}

// FunctionLikeMetadata describes a function, method or closure signature.
type FunctionLikeMetadata struct {
	Name     source.StringID
	Span     source.Span
	NameSpan source.Span

	Parameters []*ParameterMetadata
	ReturnType *types.Union
	ReturnSpan source.Span
	Templates  []TemplateParam
	Throws     []source.StringID
	Assertions []AssertionClause

	Pure         bool
	MutationFree bool
	Deprecated   bool
	// AllowsNamedArguments is true for every scanned signature unless a
	// no-named-arguments docblock tag opts the function-like out.
	AllowsNamedArguments bool
	// Method is nil for plain functions and closures.
	Method *MethodMetadata

	UserDefined bool
}

// RequiredParamCount counts parameters without defaults, ignoring the
// variadic tail.
func (f *FunctionLikeMetadata) RequiredParamCount() int {
	n := 0
	for _, p := range f.Parameters {
		if !p.HasDefault && !p.Variadic {
			n++
		}
	}
	return n
}

// ParamByName finds a parameter by its declared name.
func (f *FunctionLikeMetadata) ParamByName(name source.StringID) (*ParameterMetadata, bool) {
	for _, p := range f.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// IsAbstract reports whether this is an abstract method.
func (f *FunctionLikeMetadata) IsAbstract() bool {
	return f.Method != nil && f.Method.Abstract
}

// IsStatic reports whether this is a static method.
func (f *FunctionLikeMetadata) IsStatic() bool {
	return f.Method != nil && f.Method.Static
}

// Visibility returns the method visibility, Public for plain functions.
func (f *FunctionLikeMetadata) Visibility() Visibility {
	if f.Method == nil {
		return Public
	}
	return f.Method.Visibility
}
