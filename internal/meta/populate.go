package meta

import (
	"fmt"

	"argus/internal/diag"
	"argus/internal/source"
	"argus/internal/types"
)

// Populate resolves inheritance for every registered class-like and
// freezes the store. It walks each class-like once, recursing into
// ancestors first; a walk set catches inheritance cycles, which mark
// every participant InvalidDependency instead of recursing forever.
func (c *Codebase) Populate(r diag.Reporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		return
	}

	names := make([]source.StringID, 0, len(c.classLikes))
	for name := range c.classLikes {
		names = append(names, name)
	}
	sortIDs(names)

	for _, name := range names {
		c.populateClassLike(name, make(map[source.StringID]bool), r)
	}
	c.populated = true
}

func sortIDs(ids []source.StringID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func (c *Codebase) populateClassLike(name source.StringID, walk map[source.StringID]bool, r diag.Reporter) {
	m, ok := c.classLikes[name]
	if !ok || m.populated {
		return
	}
	if walk[name] {
		m.InvalidDependency = true
		m.populated = true
		r.Report(diag.CircularReference, diag.SevError, m.NameSpan,
			fmt.Sprintf("circular reference involving %s", c.interner.MustLookup(name)), nil, "")
		return
	}
	walk[name] = true
	defer delete(walk, name)

	c.seedOwnMembers(m)

	for _, use := range m.DirectTraits {
		c.populateClassLike(use.Name, walk, r)
		if tm, ok := c.classLikes[use.Name]; ok {
			if tm.InvalidDependency {
				m.InvalidDependency = true
			}
			c.mergeTrait(m, tm, use)
			m.UsedTraits = appendUnique(m.UsedTraits, use.Name)
			for _, t := range tm.UsedTraits {
				m.UsedTraits = appendUnique(m.UsedTraits, t)
			}
		}
	}

	if m.DirectParentClass != source.NoStringID {
		c.populateClassLike(m.DirectParentClass, walk, r)
		if pm, ok := c.classLikes[m.DirectParentClass]; ok {
			if pm.InvalidDependency {
				m.InvalidDependency = true
			}
			m.AllParentClasses = append([]source.StringID{pm.Name}, pm.AllParentClasses...)
			for _, i := range pm.AllParentInterfaces {
				m.AllParentInterfaces = appendUnique(m.AllParentInterfaces, i)
			}
			for _, t := range pm.UsedTraits {
				m.UsedTraits = appendUnique(m.UsedTraits, t)
			}
			c.inheritMembers(m, pm)
			c.expandTemplateExtended(m, pm)
		}
	}

	for _, iface := range m.DirectParentInterfaces {
		c.populateClassLike(iface, walk, r)
		if im, ok := c.classLikes[iface]; ok {
			if im.InvalidDependency {
				m.InvalidDependency = true
			}
			m.AllParentInterfaces = appendUnique(m.AllParentInterfaces, iface)
			for _, i := range im.AllParentInterfaces {
				m.AllParentInterfaces = appendUnique(m.AllParentInterfaces, i)
			}
			c.inheritMembers(m, im)
			c.expandTemplateExtended(m, im)
		}
	}

	m.populated = true
}

// seedOwnMembers records every member declared directly on m.
func (c *Codebase) seedOwnMembers(m *ClassLikeMetadata) {
	for name, f := range m.Methods {
		id := MethodID{ClassLike: m.Name, Method: name}
		m.DeclaringMethodIDs[name] = id
		m.AppearingMethodIDs[name] = id
		if f.Visibility() != Private {
			m.InheritableMethodIDs[name] = id
		}
	}
	for name, p := range m.Properties {
		id := PropertyID{ClassLike: m.Name, Property: name}
		m.DeclaringPropertyIDs[name] = id
		m.AppearingPropertyIDs[name] = id
		if p.ReadVisibility != Private {
			m.InheritablePropertyIDs[name] = id
		}
	}
}

// mergeTrait flattens one trait use into m. Trait members appear on the
// using class; methods the class declares itself win over the trait's.
func (c *Codebase) mergeTrait(m, tm *ClassLikeMetadata, use TraitUse) {
	aliased := make(map[source.StringID]bool)
	for _, al := range use.Aliases {
		aliased[al.Method] = true
		src, ok := tm.Methods[al.Method]
		if !ok {
			continue
		}
		if _, declared := m.Methods[al.Alias]; declared {
			continue
		}
		clone := *src
		if al.Visibility != 0 {
			mm := *src.Method
			mm.Visibility = al.Visibility
			clone.Method = &mm
		}
		clone.Name = al.Alias
		m.Methods[al.Alias] = &clone
		id := MethodID{ClassLike: m.Name, Method: al.Alias}
		m.DeclaringMethodIDs[al.Alias] = id
		m.AppearingMethodIDs[al.Alias] = id
		if clone.Visibility() != Private {
			m.InheritableMethodIDs[al.Alias] = id
		}
	}

	for name := range tm.Methods {
		if _, declared := m.Methods[name]; declared {
			continue
		}
		if aliased[name] {
			continue
		}
		decl := MethodID{ClassLike: tm.Name, Method: name}
		if inner, ok := tm.DeclaringMethodIDs[name]; ok {
			decl = inner
		}
		m.DeclaringMethodIDs[name] = decl
		m.AppearingMethodIDs[name] = MethodID{ClassLike: m.Name, Method: name}
		m.InheritableMethodIDs[name] = decl
	}

	for name := range tm.Properties {
		if _, declared := m.Properties[name]; declared {
			continue
		}
		decl := PropertyID{ClassLike: tm.Name, Property: name}
		if inner, ok := tm.DeclaringPropertyIDs[name]; ok {
			decl = inner
		}
		m.DeclaringPropertyIDs[name] = decl
		m.AppearingPropertyIDs[name] = PropertyID{ClassLike: m.Name, Property: name}
		m.InheritablePropertyIDs[name] = decl
	}

	m.RequireExtends = append(m.RequireExtends, tm.RequireExtends...)
	m.RequireImplements = append(m.RequireImplements, tm.RequireImplements...)
}

// inheritMembers pulls pm's inheritable members into m. Names m declares
// itself become overrides; everything else is copied through.
func (c *Codebase) inheritMembers(m, pm *ClassLikeMetadata) {
	for name, id := range pm.InheritableMethodIDs {
		if _, own := m.Methods[name]; own {
			m.OverriddenMethodIDs[name] = append(m.OverriddenMethodIDs[name], id)
			m.OverriddenMethodIDs[name] = append(m.OverriddenMethodIDs[name], pm.OverriddenMethodIDs[name]...)
			continue
		}
		if _, seen := m.DeclaringMethodIDs[name]; seen {
			continue
		}
		m.DeclaringMethodIDs[name] = id
		if app, ok := pm.AppearingMethodIDs[name]; ok {
			m.AppearingMethodIDs[name] = app
		} else {
			m.AppearingMethodIDs[name] = id
		}
		m.InheritableMethodIDs[name] = id
	}
	for name, id := range pm.InheritablePropertyIDs {
		if _, own := m.Properties[name]; own {
			m.OverriddenPropertyIDs[name] = append(m.OverriddenPropertyIDs[name], id)
			m.OverriddenPropertyIDs[name] = append(m.OverriddenPropertyIDs[name], pm.OverriddenPropertyIDs[name]...)
			continue
		}
		if _, seen := m.DeclaringPropertyIDs[name]; seen {
			continue
		}
		m.DeclaringPropertyIDs[name] = id
		if app, ok := pm.AppearingPropertyIDs[name]; ok {
			m.AppearingPropertyIDs[name] = app
		} else {
			m.AppearingPropertyIDs[name] = id
		}
		m.InheritablePropertyIDs[name] = id
	}
}

// expandTemplateExtended turns the direct extends arguments for pm into
// named bindings, then lifts pm's own bindings through them so every
// ancestor of m gets an entry in m's terms.
func (c *Codebase) expandTemplateExtended(m, pm *ClassLikeMetadata) {
	if args, ok := m.TemplateExtendedOffsets[pm.Name]; ok {
		byName := m.TemplateExtended[pm.Name]
		if byName == nil {
			byName = make(map[source.StringID]*types.Union)
			m.TemplateExtended[pm.Name] = byName
		}
		for i, arg := range args {
			if i >= len(pm.Templates) {
				break
			}
			byName[pm.Templates[i].Name] = arg
		}
	}

	direct := m.TemplateExtended[pm.Name]
	for ancestor, bindings := range pm.TemplateExtended {
		out := m.TemplateExtended[ancestor]
		if out == nil {
			out = make(map[source.StringID]*types.Union)
			m.TemplateExtended[ancestor] = out
		}
		for param, u := range bindings {
			if _, ok := out[param]; ok {
				continue
			}
			out[param] = substituteTemplates(u, pm.Name, direct)
		}
	}
}

// substituteTemplates replaces standins defined by entity with the child's
// bindings. Unbound standins pass through untouched. Runs under the store
// lock, so it must not consult the store as a ClassGraph.
func substituteTemplates(u *types.Union, entity source.StringID, bindings map[source.StringID]*types.Union) *types.Union {
	if u == nil || len(bindings) == 0 || !u.HasTemplateStandins() {
		return u
	}
	res := types.NewTemplateResult()
	for param, bound := range bindings {
		res.AddLowerBound(types.TemplateKey{Name: param, Entity: entity}, types.TemplateBound{Bound: bound})
	}
	return types.Replace(u, res, types.EmptyGraph{}, types.ReplaceOptions{})
}

func appendUnique(xs []source.StringID, x source.StringID) []source.StringID {
	for _, v := range xs {
		if v == x {
			return xs
		}
	}
	return append(xs, x)
}
