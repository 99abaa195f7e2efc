package reconciler

import (
	"sort"

	"argus/internal/source"
	"argus/internal/types"
)

// BlockContext is the per-body flow state: a map from access path to the
// union currently known to flow there, plus scope flags the reconciler
// consults while narrowing.
type BlockContext struct {
	Types map[string]*types.Union

	InsideLoop bool
	InsideTry  bool

	// ScopeClass is the class-like whose body is being analyzed,
	// NoStringID at file scope.
	ScopeClass source.StringID
	// StaticType is the resolved static:: type in the current scope.
	StaticType *types.Union

	// TypeVariableBounds collects lower bounds recorded when an assertion
	// intersects a flow-variable sink.
	TypeVariableBounds map[string][]types.TemplateBound
}

// NewBlockContext returns an empty context.
func NewBlockContext() *BlockContext {
	return &BlockContext{
		Types:              make(map[string]*types.Union),
		TypeVariableBounds: make(map[string][]types.TemplateBound),
	}
}

// Clone copies the context; unions are shared, the maps are not.
func (c *BlockContext) Clone() *BlockContext {
	out := &BlockContext{
		Types:              make(map[string]*types.Union, len(c.Types)),
		InsideLoop:         c.InsideLoop,
		InsideTry:          c.InsideTry,
		ScopeClass:         c.ScopeClass,
		StaticType:         c.StaticType,
		TypeVariableBounds: make(map[string][]types.TemplateBound, len(c.TypeVariableBounds)),
	}
	for k, v := range c.Types {
		out.Types[k] = v
	}
	for k, v := range c.TypeVariableBounds {
		out.TypeVariableBounds[k] = append([]types.TemplateBound(nil), v...)
	}
	return out
}

// SetType records the union for a path.
func (c *BlockContext) SetType(path string, u *types.Union) {
	c.Types[path] = u
}

// GetType fetches the union cached for a path.
func (c *BlockContext) GetType(path string) (*types.Union, bool) {
	u, ok := c.Types[path]
	return u, ok
}

// RemoveDescendants drops every cached path strictly nested under root;
// they must be recomputed against the root's new type on next access.
func (c *BlockContext) RemoveDescendants(root string) {
	for path := range c.Types {
		if VarHasRoot(path, root) {
			delete(c.Types, path)
		}
	}
}

// RecordTypeVariableBound notes a lower bound for a flow variable sink.
func (c *BlockContext) RecordTypeVariableBound(name string, bound *types.Union) {
	c.TypeVariableBounds[name] = append(c.TypeVariableBounds[name], types.TemplateBound{Bound: bound})
}

// SortedPaths returns the context's keys in stable order.
func (c *BlockContext) SortedPaths() []string {
	out := make([]string, 0, len(c.Types))
	for k := range c.Types {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MergeContexts joins two contexts at a control-flow join: pointwise
// widening on shared keys; keys defined on one side only survive as
// possibly undefined.
func MergeContexts(a, b *BlockContext) *BlockContext {
	out := a.Clone()
	for path, bu := range b.Types {
		if au, ok := out.Types[path]; ok {
			out.Types[path] = types.Add(au, bu)
			continue
		}
		u := bu.Clone()
		u.PossiblyUndefinedFromTry = true
		out.Types[path] = u
	}
	for path, au := range out.Types {
		if _, ok := b.Types[path]; !ok && a.Types[path] != nil {
			u := au.Clone()
			u.PossiblyUndefinedFromTry = true
			out.Types[path] = u
		}
	}
	for name, bounds := range b.TypeVariableBounds {
		out.TypeVariableBounds[name] = append(out.TypeVariableBounds[name], bounds...)
	}
	return out
}
