package meta

import (
	"argus/internal/source"
	"argus/internal/types"
)

// PropertyMetadata describes one declared property.
type PropertyMetadata struct {
	Name     source.StringID
	Span     source.Span
	NameSpan source.Span
	TypeSpan source.Span

	// SignatureType is the native declaration, nil when the property is
	// only typed through its docblock.
	SignatureType *types.Union
	// Type is the resolved property type, docblock winning over the
	// native declaration.
	Type *types.Union
	// DefaultType is the type of the initializer expression, nil when the
	// property has no default.
	DefaultType *types.Union

	// ReadVisibility and WriteVisibility differ for asymmetric properties.
	ReadVisibility  Visibility
	WriteVisibility Visibility

	Static     bool
	Readonly   bool
	Abstract   bool
	HasDefault bool
	Promoted   bool
	Deprecated bool
	// AllowPrivateMutation lets the declaring class write a readonly-ish
	// property from private scope.
	AllowPrivateMutation bool
}
