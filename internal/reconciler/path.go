package reconciler

import "strings"

// Access paths are canonical strings naming a place in the current scope:
// $var, $var[0], $var['k'], $var->prop, Class::$static, Class::CONST, and
// any composition. BreakUpPath splits a path into parts such that
// JoinPath(BreakUpPath(p)) == p; dividers are parts of their own.

// BreakUpPath tokenizes an access path. Quoted keys keep their quotes and
// may contain dividers; brackets nest.
func BreakUpPath(path string) []string {
	var parts []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, buf.String())
			buf.Reset()
		}
	}

	i := 0
	for i < len(path) {
		c := path[i]
		switch {
		case c == '\'' || c == '"':
			quote := c
			buf.WriteByte(c)
			i++
			for i < len(path) {
				buf.WriteByte(path[i])
				if path[i] == '\\' && i+1 < len(path) {
					i++
					buf.WriteByte(path[i])
				} else if path[i] == quote {
					i++
					break
				}
				i++
			}
		case c == '[':
			flush()
			parts = append(parts, "[")
			i++
			// The bracket body is one part; inner brackets and quotes
			// stay balanced inside it.
			depth := 0
			for i < len(path) {
				b := path[i]
				if b == '\'' || b == '"' {
					quote := b
					buf.WriteByte(b)
					i++
					for i < len(path) {
						buf.WriteByte(path[i])
						if path[i] == '\\' && i+1 < len(path) {
							i++
							buf.WriteByte(path[i])
						} else if path[i] == quote {
							i++
							break
						}
						i++
					}
					continue
				}
				if b == '[' {
					depth++
				}
				if b == ']' {
					if depth == 0 {
						break
					}
					depth--
				}
				buf.WriteByte(b)
				i++
			}
			flush()
			if i < len(path) && path[i] == ']' {
				parts = append(parts, "]")
				i++
			}
		case c == '-' && i+1 < len(path) && path[i+1] == '>':
			flush()
			parts = append(parts, "->")
			i += 2
		case c == ':' && i+1 < len(path) && path[i+1] == ':':
			flush()
			parts = append(parts, "::")
			i += 2
		default:
			buf.WriteByte(c)
			i++
		}
	}
	flush()
	return parts
}

// JoinPath is the inverse of BreakUpPath.
func JoinPath(parts []string) string {
	return strings.Join(parts, "")
}

// VarHasRoot reports whether path is strictly nested under root, i.e.
// root followed immediately by a divider.
func VarHasRoot(path, root string) bool {
	if len(path) <= len(root) || !strings.HasPrefix(path, root) {
		return false
	}
	rest := path[len(root):]
	return strings.HasPrefix(rest, "[") || strings.HasPrefix(rest, "->") || strings.HasPrefix(rest, "::")
}

// pathRoot returns the head variable of an access path.
func pathRoot(path string) string {
	parts := BreakUpPath(path)
	if len(parts) == 0 {
		return path
	}
	// Static paths keep Class:: in the root.
	if len(parts) >= 3 && parts[1] == "::" {
		return parts[0] + "::" + parts[2]
	}
	return parts[0]
}

// isDivider reports whether a part is a path divider token.
func isDivider(part string) bool {
	switch part {
	case "[", "]", "->", "::":
		return true
	}
	return false
}
