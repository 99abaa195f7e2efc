package meta

import (
	"sort"
	"strings"
	"sync"

	"argus/internal/source"
	"argus/internal/types"
)

// Codebase is the whole-program symbol store. Scanning registers raw
// metadata per class-like and function; Populate then resolves
// inheritance and freezes the store. After Populate the store is
// read-only and safe for concurrent readers.
type Codebase struct {
	mu sync.RWMutex

	interner *source.Interner

	classLikes    map[source.StringID]*ClassLikeMetadata
	functionLikes map[source.StringID]*FunctionLikeMetadata
	constants     map[source.StringID]*types.Union

	// lower maps the case-folded symbol name to its canonical id; class
	// and function lookups are case-insensitive.
	lower map[string]source.StringID

	populated bool
}

// NewCodebase returns an empty store interning through in.
func NewCodebase(in *source.Interner) *Codebase {
	return &Codebase{
		interner:      in,
		classLikes:    make(map[source.StringID]*ClassLikeMetadata),
		functionLikes: make(map[source.StringID]*FunctionLikeMetadata),
		constants:     make(map[source.StringID]*types.Union),
		lower:         make(map[string]source.StringID),
	}
}

// Interner exposes the store's interner for display and path work.
func (c *Codebase) Interner() *source.Interner { return c.interner }

// AddClassLike registers metadata during the scan pass. The last
// registration for a name wins; duplicate declarations surface as
// diagnostics elsewhere.
func (c *Codebase) AddClassLike(m *ClassLikeMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		panic("meta: AddClassLike after Populate")
	}
	c.classLikes[m.Name] = m
	c.lower[strings.ToLower(c.interner.MustLookup(m.Name))] = m.Name
}

// AddFunctionLike registers a standalone function during the scan pass.
func (c *Codebase) AddFunctionLike(f *FunctionLikeMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		panic("meta: AddFunctionLike after Populate")
	}
	c.functionLikes[f.Name] = f
	c.lower[strings.ToLower(c.interner.MustLookup(f.Name))] = f.Name
}

// AddConstant registers a global constant with its inferred type.
func (c *Codebase) AddConstant(name source.StringID, t *types.Union) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constants[name] = t
}

// Resolve maps a possibly differently-cased symbol name to its canonical
// id.
func (c *Codebase) Resolve(name string) (source.StringID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.lower[strings.ToLower(name)]
	return id, ok
}

// ClassLike fetches the metadata for a class-like, case-sensitively by id.
func (c *Codebase) ClassLike(name source.StringID) (*ClassLikeMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.classLikes[name]
	return m, ok
}

// FunctionLike fetches a standalone function's metadata.
func (c *Codebase) FunctionLike(name source.StringID) (*FunctionLikeMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.functionLikes[name]
	return f, ok
}

// Constant fetches a global constant's type.
func (c *Codebase) Constant(name source.StringID) (*types.Union, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.constants[name]
	return t, ok
}

// ClassLikeNames returns every registered class-like id, sorted for
// deterministic iteration.
func (c *Codebase) ClassLikeNames() []source.StringID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]source.StringID, 0, len(c.classLikes))
	for name := range c.classLikes {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MethodMetadata resolves a MethodID to its function-like record.
func (c *Codebase) MethodMetadata(id MethodID) (*FunctionLikeMetadata, bool) {
	m, ok := c.ClassLike(id.ClassLike)
	if !ok {
		return nil, false
	}
	f, ok := m.Methods[id.Method]
	return f, ok
}

// PropertyMetadata resolves a PropertyID to its property record.
func (c *Codebase) PropertyMetadata(id PropertyID) (*PropertyMetadata, bool) {
	m, ok := c.ClassLike(id.ClassLike)
	if !ok {
		return nil, false
	}
	p, ok := m.Properties[id.Property]
	return p, ok
}

// Populated reports whether Populate has run.
func (c *Codebase) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// ClassGraph implementation. All answers for unknown symbols are the
// gradual defaults: no claim, no diagnostic.

func (c *Codebase) ClassLikeExists(name source.StringID) bool {
	_, ok := c.ClassLike(name)
	return ok
}

func (c *Codebase) IsInstanceOf(child, parent source.StringID) bool {
	if child == parent {
		_, ok := c.ClassLike(child)
		return ok
	}
	m, ok := c.ClassLike(child)
	if !ok {
		return false
	}
	if m.ExtendsOrImplements(parent) {
		return true
	}
	for _, tr := range m.UsedTraits {
		if tr == parent {
			return true
		}
	}
	return false
}

func (c *Codebase) TemplateVariances(name source.StringID) []types.Variance {
	m, ok := c.ClassLike(name)
	if !ok || len(m.Templates) == 0 {
		return nil
	}
	out := make([]types.Variance, len(m.Templates))
	for i, tp := range m.Templates {
		out[i] = tp.Variance
	}
	return out
}

func (c *Codebase) TemplateExtendedParameter(child, parent source.StringID, index int) (*types.Union, bool) {
	m, ok := c.ClassLike(child)
	if !ok {
		return nil, false
	}
	pm, ok := c.ClassLike(parent)
	if !ok || index >= len(pm.Templates) {
		return nil, false
	}
	byName, ok := m.TemplateExtended[parent]
	if !ok {
		return nil, false
	}
	u, ok := byName[pm.Templates[index].Name]
	return u, ok
}

func (c *Codebase) IsEnum(name source.StringID) bool {
	m, ok := c.ClassLike(name)
	return ok && m.Kind == KindEnum
}

func (c *Codebase) IsInterface(name source.StringID) bool {
	m, ok := c.ClassLike(name)
	return ok && m.Kind == KindInterface
}

var _ types.ClassGraph = (*Codebase)(nil)
