package reconciler

import (
	"strconv"
	"strings"

	"argus/internal/meta"
	"argus/internal/types"
)

// valueForKey resolves an access path to the union currently flowing
// there, walking from the head variable through each divider. Containers
// descend through known-item maps, then the generic value parameter;
// generic parameters unfold into their constraint. Anything unknowable
// answers mixed, per gradual-typing rules. Intermediate results are
// cached in the context so later narrowings reuse them.
func valueForKey(cb *meta.Codebase, path string, ctx *BlockContext) *types.Union {
	if u, ok := ctx.GetType(path); ok {
		return u
	}

	parts := BreakUpPath(path)
	if len(parts) == 0 {
		return types.MixedUnion()
	}

	root := parts[0]
	idx := 1
	if len(parts) >= 3 && parts[1] == "::" {
		root = parts[0] + "::" + parts[2]
		idx = 3
	}

	current, ok := ctx.GetType(root)
	if !ok {
		current = resolveStaticRoot(cb, parts)
		ctx.SetType(root, current)
	}

	walked := root
	for idx < len(parts) {
		switch parts[idx] {
		case "[":
			if idx+2 >= len(parts) || parts[idx+2] != "]" {
				return types.MixedUnion()
			}
			key := parts[idx+1]
			current = descendIndex(current, key)
			walked += "[" + key + "]"
			idx += 3
		case "->":
			if idx+1 >= len(parts) {
				return types.MixedUnion()
			}
			prop := parts[idx+1]
			current = descendProperty(cb, current, prop)
			walked += "->" + prop
			idx += 2
		default:
			return types.MixedUnion()
		}
		ctx.SetType(walked, current)
	}
	return current
}

// resolveStaticRoot answers the type of a Class::$prop or Class::CONST
// head, mixed when the path is a plain unknown variable.
func resolveStaticRoot(cb *meta.Codebase, parts []string) *types.Union {
	if len(parts) < 3 || parts[1] != "::" {
		return types.MixedUnion()
	}
	in := cb.Interner()
	member := parts[2]
	if strings.HasPrefix(member, "$") {
		classID, ok := cb.Resolve(parts[0])
		if !ok {
			return types.MixedUnion()
		}
		m, ok := cb.ClassLike(classID)
		if !ok {
			return types.MixedUnion()
		}
		propID, ok := m.AppearingPropertyIDs[in.Intern(strings.TrimPrefix(member, "$"))]
		if !ok {
			return types.MixedUnion()
		}
		if p, ok := cb.PropertyMetadata(propID); ok && p.Type != nil {
			return p.Type
		}
		return types.MixedUnion()
	}
	if t, ok := cb.Constant(in.Intern(parts[0] + "::" + member)); ok {
		return t
	}
	return types.MixedUnion()
}

// descendIndex descends one array access with the raw key part.
func descendIndex(u *types.Union, rawKey string) *types.Union {
	key, literal := parseKeyLiteral(rawKey)

	out := types.Never()
	for _, a := range u.Types {
		switch t := a.(type) {
		case *types.TKeyedArray:
			switch {
			case literal:
				if entry, ok := t.Item(key); ok {
					out = types.Add(out, entry.Value)
				} else if t.Parameters != nil {
					out = types.Add(out, t.Parameters.Value)
				} else {
					out = types.Add(out, types.MixedUnion())
				}
			case t.Parameters != nil:
				out = types.Add(out, t.Parameters.Value)
			default:
				out = types.Add(out, anyKnownValue(t))
			}
		case *types.TList:
			if literal && key.IsInt {
				if entry, ok := t.Element(int(key.Int)); ok {
					out = types.Add(out, entry.Value)
					continue
				}
			}
			out = types.Add(out, t.ElementType)
		case *types.TGenericParam:
			out = types.Add(out, descendIndex(t.Constraint, rawKey))
		default:
			out = types.Add(out, types.MixedUnion())
		}
	}
	if out.IsNever() {
		return types.MixedUnion()
	}
	return out
}

// anyKnownValue is the join of every known item, for unknown-key reads.
func anyKnownValue(t *types.TKeyedArray) *types.Union {
	out := types.Never()
	for _, it := range t.KnownItems {
		out = types.Add(out, it.Entry.Value)
	}
	if out.IsNever() {
		return types.MixedUnion()
	}
	return out
}

// descendProperty descends one ->prop access.
func descendProperty(cb *meta.Codebase, u *types.Union, prop string) *types.Union {
	in := cb.Interner()
	propID := in.Intern(prop)

	out := types.Never()
	for _, a := range u.Types {
		switch t := a.(type) {
		case *types.TNamedObject:
			m, ok := cb.ClassLike(t.Name)
			if !ok {
				out = types.Add(out, types.MixedUnion())
				continue
			}
			id, ok := m.AppearingPropertyIDs[propID]
			if !ok {
				out = types.Add(out, types.MixedUnion())
				continue
			}
			if p, ok := cb.PropertyMetadata(id); ok && p.Type != nil {
				out = types.Add(out, p.Type)
			} else {
				out = types.Add(out, types.MixedUnion())
			}
		case *types.TGenericParam:
			out = types.Add(out, descendProperty(cb, t.Constraint, prop))
		default:
			out = types.Add(out, types.MixedUnion())
		}
	}
	if out.IsNever() {
		return types.MixedUnion()
	}
	return out
}

// parseKeyLiteral recognizes a literal bracket key: a quoted string or a
// decimal integer. Anything else is a dynamic key expression.
func parseKeyLiteral(raw string) (types.ArrayKey, bool) {
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
			return types.StrKey(raw[1 : len(raw)-1]), true
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return types.IntKey(n), true
	}
	return types.ArrayKey{}, false
}
