package types

import (
	"fmt"
	"strings"

	"argus/internal/source"
)

// Display renders the union in docblock syntax for diagnostics.
func (u *Union) Display(in *source.Interner) string {
	if u == nil || len(u.Types) == 0 {
		return "never"
	}
	parts := make([]string, len(u.Types))
	for i, a := range u.Types {
		parts[i] = DisplayAtomic(a, in)
	}
	return strings.Join(parts, "|")
}

func name(in *source.Interner, id source.StringID) string {
	if in == nil {
		return fmt.Sprintf("#%d", id)
	}
	if s, ok := in.Lookup(id); ok && s != "" {
		return s
	}
	return fmt.Sprintf("#%d", id)
}

// DisplayAtomic renders one atomic in docblock syntax.
func DisplayAtomic(a Atomic, in *source.Interner) string {
	switch t := a.(type) {
	case *TBool:
		if t.Value == nil {
			return "bool"
		}
		if *t.Value {
			return "true"
		}
		return "false"
	case *TInt:
		if t.Unbounded() {
			return "int"
		}
		if v, ok := t.Literal(); ok {
			return fmt.Sprintf("%d", v)
		}
		lo, hi := "min", "max"
		if t.Min != nil {
			lo = fmt.Sprintf("%d", *t.Min)
		}
		if t.Max != nil {
			hi = fmt.Sprintf("%d", *t.Max)
		}
		return fmt.Sprintf("int<%s, %s>", lo, hi)
	case *TFloat:
		if t.Value == nil {
			return "float"
		}
		return fmt.Sprintf("float(%v)", *t.Value)
	case *TString:
		if t.Literal != nil {
			return "'" + *t.Literal + "'"
		}
		switch {
		case t.IsClassLike:
			return "class-string"
		case t.IsNumeric:
			return "numeric-string"
		case t.IsTruthy:
			return "truthy-string"
		case t.IsNonEmpty && t.IsLowercase:
			return "non-empty-lowercase-string"
		case t.IsNonEmpty:
			return "non-empty-string"
		case t.IsLowercase:
			return "lowercase-string"
		default:
			return "string"
		}
	case *TArrayKey:
		return "array-key"
	case *TNumber:
		return "number"
	case *TClassString:
		if t.Target == source.NoStringID {
			return "class-string"
		}
		return fmt.Sprintf("class-string<%s>", name(in, t.Target))
	case *TScalar:
		return "scalar"
	case *TNull:
		return "null"
	case *TVoid:
		return "void"
	case *TNever:
		return "never"
	case *TMixed:
		switch {
		case t.NonNull:
			return "non-null-mixed"
		case t.Truthiness == TruthinessTruthy:
			return "truthy-mixed"
		case t.Truthiness == TruthinessFalsy:
			return "falsy-mixed"
		default:
			return "mixed"
		}
	case *TKeyedArray:
		return displayKeyedArray(t, in)
	case *TList:
		return displayList(t, in)
	case *TIterable:
		return fmt.Sprintf("iterable<%s, %s>", t.Key.Display(in), t.Value.Display(in))
	case *TObjectAny:
		return "object"
	case *TEnum:
		if t.Case == source.NoStringID {
			return name(in, t.Name)
		}
		return name(in, t.Name) + "::" + name(in, t.Case)
	case *TNamedObject:
		var sb strings.Builder
		sb.WriteString(name(in, t.Name))
		if len(t.TypeParameters) > 0 {
			sb.WriteByte('<')
			for i, p := range t.TypeParameters {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.Display(in))
			}
			sb.WriteByte('>')
		}
		for _, x := range t.Intersections {
			sb.WriteByte('&')
			sb.WriteString(DisplayAtomic(x, in))
		}
		return sb.String()
	case *TCallable:
		return displayCallable(t, in)
	case *TResource:
		if t.Closed == nil {
			return "resource"
		}
		if *t.Closed {
			return "closed-resource"
		}
		return "open-resource"
	case *TGenericParam:
		return name(in, t.Name)
	case *TVariable:
		return "<" + t.Name + ">"
	case *TConditional:
		return fmt.Sprintf("(%s is %s ? %s : %s)",
			t.Subject.Display(in), t.IfType.Display(in),
			t.Then.Display(in), t.Else.Display(in))
	default:
		return a.AtomicKind().String()
	}
}

func displayKeyedArray(t *TKeyedArray, in *source.Interner) string {
	if len(t.KnownItems) == 0 {
		if t.Parameters == nil {
			return "array{}"
		}
		base := "array"
		if t.NonEmpty {
			base = "non-empty-array"
		}
		return fmt.Sprintf("%s<%s, %s>", base, t.Parameters.Key.Display(in), t.Parameters.Value.Display(in))
	}
	var sb strings.Builder
	sb.WriteString("array{")
	for i, it := range t.KnownItems {
		if i > 0 {
			sb.WriteString(", ")
		}
		if it.Key.IsInt {
			fmt.Fprintf(&sb, "%d", it.Key.Int)
		} else {
			sb.WriteString(it.Key.Str)
		}
		if it.Entry.PossiblyUndefined {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		sb.WriteString(it.Entry.Value.Display(in))
	}
	if t.Parameters != nil {
		sb.WriteString(", ...")
	}
	sb.WriteByte('}')
	return sb.String()
}

func displayList(t *TList, in *source.Interner) string {
	base := "list"
	if t.NonEmpty {
		base = "non-empty-list"
	}
	if len(t.KnownElements) == 0 {
		return fmt.Sprintf("%s<%s>", base, t.ElementType.Display(in))
	}
	var sb strings.Builder
	sb.WriteString("list{")
	for i, el := range t.KnownElements {
		if i > 0 {
			sb.WriteString(", ")
		}
		if el.Entry.PossiblyUndefined {
			sb.WriteByte('?')
		}
		sb.WriteString(el.Entry.Value.Display(in))
	}
	sb.WriteByte('}')
	return sb.String()
}

func displayCallable(t *TCallable, in *source.Interner) string {
	head := "callable"
	if t.IsClosure {
		head = "Closure"
	}
	if t.Pure {
		head = "pure-" + head
	}
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Type != nil {
			sb.WriteString(p.Type.Display(in))
		} else {
			sb.WriteString("mixed")
		}
		if p.IsVariadic {
			sb.WriteString("...")
		}
		if p.HasDefault {
			sb.WriteString("=")
		}
	}
	sb.WriteByte(')')
	if t.Return != nil {
		sb.WriteString(": ")
		sb.WriteString(t.Return.Display(in))
	}
	return sb.String()
}
