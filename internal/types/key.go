package types

import (
	"fmt"
	"strings"
)

// atomicKey renders a canonical, interner-independent key for sorting and
// deduplication. Symbol names appear as raw StringIDs; the key is stable
// within one process, which is all determinism needs.
func atomicKey(a Atomic) string {
	switch t := a.(type) {
	case *TBool:
		if t.Value == nil {
			return "bool"
		}
		return fmt.Sprintf("bool(%t)", *t.Value)
	case *TInt:
		if t.Unbounded() {
			return "int"
		}
		return fmt.Sprintf("int<%s,%s>", boundKey(t.Min), boundKey(t.Max))
	case *TFloat:
		if t.Value == nil {
			return "float"
		}
		return fmt.Sprintf("float(%v)", *t.Value)
	case *TString:
		if t.Literal != nil {
			return fmt.Sprintf("string(%q)", *t.Literal)
		}
		return fmt.Sprintf("string[n=%t,t=%t,e=%t,l=%t,c=%t]",
			t.IsNumeric, t.IsTruthy, t.IsNonEmpty, t.IsLowercase, t.IsClassLike)
	case *TArrayKey:
		return "array-key"
	case *TNumber:
		return "number"
	case *TClassString:
		if t.Target == 0 {
			return "class-string"
		}
		return fmt.Sprintf("class-string<#%d>", t.Target)
	case *TScalar:
		return "scalar"
	case *TNull:
		return "null"
	case *TVoid:
		return "void"
	case *TNever:
		return "never"
	case *TMixed:
		return fmt.Sprintf("mixed[nn=%t,tr=%d,il=%t]", t.NonNull, t.Truthiness, t.IssetFromLoop)
	case *TKeyedArray:
		var sb strings.Builder
		sb.WriteString("array{")
		for i, it := range t.KnownItems {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(it.Key.String())
			if it.Entry.PossiblyUndefined {
				sb.WriteByte('?')
			}
			sb.WriteByte(':')
			sb.WriteString(it.Entry.Value.SortKey())
		}
		sb.WriteByte('}')
		if t.Parameters != nil {
			fmt.Fprintf(&sb, "<%s,%s>", t.Parameters.Key.SortKey(), t.Parameters.Value.SortKey())
		}
		if t.NonEmpty {
			sb.WriteByte('+')
		}
		return sb.String()
	case *TList:
		var sb strings.Builder
		sb.WriteString("list{")
		for i, el := range t.KnownElements {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", el.Index)
			if el.Entry.PossiblyUndefined {
				sb.WriteByte('?')
			}
			sb.WriteByte(':')
			sb.WriteString(el.Entry.Value.SortKey())
		}
		sb.WriteByte('}')
		fmt.Fprintf(&sb, "<%s>", t.ElementType.SortKey())
		if t.NonEmpty {
			sb.WriteByte('+')
		}
		if t.KnownCount != nil {
			fmt.Fprintf(&sb, "#%d", *t.KnownCount)
		}
		return sb.String()
	case *TIterable:
		return fmt.Sprintf("iterable<%s,%s>", t.Key.SortKey(), t.Value.SortKey())
	case *TObjectAny:
		return "object"
	case *TEnum:
		if t.Case == 0 {
			return fmt.Sprintf("enum(#%d)", t.Name)
		}
		return fmt.Sprintf("enum(#%d::#%d)", t.Name, t.Case)
	case *TNamedObject:
		var sb strings.Builder
		fmt.Fprintf(&sb, "object(#%d)", t.Name)
		if t.Static {
			sb.WriteString("static")
		}
		if len(t.TypeParameters) > 0 {
			sb.WriteByte('<')
			for i, p := range t.TypeParameters {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(p.SortKey())
			}
			sb.WriteByte('>')
		}
		for _, in := range t.Intersections {
			sb.WriteByte('&')
			sb.WriteString(atomicKey(in))
		}
		return sb.String()
	case *TCallable:
		var sb strings.Builder
		if t.IsClosure {
			sb.WriteString("closure(")
		} else {
			sb.WriteString("callable(")
		}
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteByte(',')
			}
			if p.Type != nil {
				sb.WriteString(p.Type.SortKey())
			} else {
				sb.WriteByte('_')
			}
			if p.IsVariadic {
				sb.WriteString("...")
			}
			if p.ByRef {
				sb.WriteByte('&')
			}
			if p.HasDefault {
				sb.WriteByte('=')
			}
		}
		sb.WriteByte(')')
		if t.Return != nil {
			sb.WriteByte(':')
			sb.WriteString(t.Return.SortKey())
		}
		return sb.String()
	case *TResource:
		if t.Closed == nil {
			return "resource"
		}
		return fmt.Sprintf("resource(closed=%t)", *t.Closed)
	case *TGenericParam:
		return fmt.Sprintf("param(#%d@#%d:%s)", t.Name, t.DefiningEntity, t.Constraint.SortKey())
	case *TVariable:
		return "var(" + t.Name + ")"
	case *TConditional:
		return fmt.Sprintf("cond(%s is %s ? %s : %s)",
			t.Subject.SortKey(), t.IfType.SortKey(), t.Then.SortKey(), t.Else.SortKey())
	default:
		panic(fmt.Sprintf("types: unhandled atomic kind %v", a.AtomicKind()))
	}
}

func boundKey(b *int64) string {
	if b == nil {
		return "_"
	}
	return fmt.Sprintf("%d", *b)
}
