package types

import "argus/internal/source"

// Variance of one template-parameter position.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	default:
		return "invariant"
	}
}

// ClassGraph is the read-only view of the populated codebase the type model
// needs for nominal containment. meta.Codebase implements it; tests use
// small fakes. Missing symbols answer false, which short-circuits checks
// without diagnostics, per gradual-typing rules.
type ClassGraph interface {
	// ClassLikeExists reports whether the symbol names a known class-like.
	ClassLikeExists(name source.StringID) bool
	// IsInstanceOf reports nominal containment through transitive parents,
	// interfaces and used traits. Reflexive: IsInstanceOf(x, x) is true for
	// known x.
	IsInstanceOf(child, parent source.StringID) bool
	// TemplateVariances returns the declared variance per template position
	// of the class-like, nil when it has none.
	TemplateVariances(name source.StringID) []Variance
	// TemplateExtendedParameter resolves the union the child supplied for
	// parent's template parameter at the given index.
	TemplateExtendedParameter(child, parent source.StringID, index int) (*Union, bool)
	// IsEnum reports whether the symbol is an enum.
	IsEnum(name source.StringID) bool
	// IsInterface reports whether the symbol is an interface.
	IsInterface(name source.StringID) bool
}

// EmptyGraph is a ClassGraph with no classes; handy for scalar-only work.
type EmptyGraph struct{}

func (EmptyGraph) ClassLikeExists(source.StringID) bool         { return false }
func (EmptyGraph) IsInstanceOf(_, _ source.StringID) bool       { return false }
func (EmptyGraph) TemplateVariances(source.StringID) []Variance { return nil }
func (EmptyGraph) TemplateExtendedParameter(_, _ source.StringID, _ int) (*Union, bool) {
	return nil, false
}
func (EmptyGraph) IsEnum(source.StringID) bool      { return false }
func (EmptyGraph) IsInterface(source.StringID) bool { return false }
