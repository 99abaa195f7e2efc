package meta

import "argus/internal/source"

// ClassLikeKind distinguishes the four class-like declarations.
type ClassLikeKind uint8

const (
	KindClass ClassLikeKind = iota
	KindInterface
	KindTrait
	KindEnum
)

func (k ClassLikeKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	default:
		return "class"
	}
}

// Visibility of a member. Ordered: larger is stricter.
type Visibility uint8

const (
	Public Visibility = iota + 1
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// StricterThan reports whether v admits fewer callers than other.
func (v Visibility) StricterThan(other Visibility) bool {
	return v > other
}

// MethodID names a method on the class-like where its implementation lives.
type MethodID struct {
	ClassLike source.StringID
	Method    source.StringID
}

// PropertyID names a property on the class-like declaring it.
type PropertyID struct {
	ClassLike source.StringID
	Property  source.StringID
}
