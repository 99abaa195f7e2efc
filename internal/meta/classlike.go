package meta

import (
	"argus/internal/source"
	"argus/internal/types"
)

// TemplateParam is one declared template parameter of a class-like or
// function-like, in declaration order.
type TemplateParam struct {
	Name       source.StringID
	Constraint *types.Union
	Variance   types.Variance
	Span       source.Span
}

// TraitAlias renames or re-scopes one trait method at the use site.
type TraitAlias struct {
	Method     source.StringID
	Alias      source.StringID
	Visibility Visibility // 0 when the alias keeps the trait's visibility
}

// TraitUse is one `use Trait` clause with its adaptations.
type TraitUse struct {
	Name    source.StringID
	Span    source.Span
	Aliases []TraitAlias
	// Final marks methods the use site declares final.
	Final map[source.StringID]bool
}

// ClassLikeMetadata is everything the analyzer records about one class,
// interface, trait or enum. Scan fills the Direct* and declared-member
// fields; Populate derives the rest.
type ClassLikeMetadata struct {
	Name     source.StringID
	Kind     ClassLikeKind
	Span     source.Span
	NameSpan source.Span

	DirectParentClass      source.StringID
	DirectParentClassSpan  source.Span
	DirectParentInterfaces []source.StringID
	DirectTraits           []TraitUse

	// AllParentClasses and AllParentInterfaces are transitive, nearest
	// first. Filled by Populate.
	AllParentClasses    []source.StringID
	AllParentInterfaces []source.StringID
	UsedTraits          []source.StringID

	Templates []TemplateParam
	// ConsistentTemplates requires children to re-declare this class's
	// template parameters verbatim.
	ConsistentTemplates bool

	// TemplateExtended maps an ancestor to the unions this class supplies
	// for the ancestor's template parameters, keyed by parameter name.
	// Direct entries come from the extends/implements clause; Populate
	// adds transitive ones by substitution.
	TemplateExtended map[source.StringID]map[source.StringID]*types.Union
	// TemplateExtendedOffsets keeps the direct arguments in written order,
	// for arity checks.
	TemplateExtendedOffsets map[source.StringID][]*types.Union

	RequireExtends      []source.StringID
	RequireImplements   []source.StringID
	PermittedInheritors []source.StringID

	Abstract             bool
	Final                bool
	Readonly             bool
	Deprecated           bool
	MutationFree         bool
	ExternalMutationFree bool

	// EnumBackingType is the declared backing scalar of a backed enum.
	EnumBackingType *types.Union
	// EnumCases maps case name to the type of its value, nil for pure cases.
	EnumCases map[source.StringID]*types.Union

	// Methods and Properties hold members declared directly on this
	// class-like.
	Methods    map[source.StringID]*FunctionLikeMetadata
	Properties map[source.StringID]*PropertyMetadata

	// Member resolution maps, filled by Populate.
	//
	// Declaring: where the reachable implementation lives.
	// Appearing: where the member surfaces on this class (trait members
	// appear here, inherited ones on the ancestor).
	// Inheritable: the version a child would inherit.
	// Overridden: every ancestor version shadowed by this class's own
	// declaration.
	DeclaringMethodIDs     map[source.StringID]MethodID
	AppearingMethodIDs     map[source.StringID]MethodID
	InheritableMethodIDs   map[source.StringID]MethodID
	OverriddenMethodIDs    map[source.StringID][]MethodID
	DeclaringPropertyIDs   map[source.StringID]PropertyID
	AppearingPropertyIDs   map[source.StringID]PropertyID
	InheritablePropertyIDs map[source.StringID]PropertyID
	OverriddenPropertyIDs  map[source.StringID][]PropertyID

	// InvalidDependency marks a class-like caught in an inheritance cycle
	// or depending on one; downstream checks skip it.
	InvalidDependency bool
	// UserDefined distinguishes scanned sources from stub symbols.
	UserDefined bool

	populated bool
}

// NewClassLikeMetadata returns a metadata record with every map allocated.
func NewClassLikeMetadata(name source.StringID, kind ClassLikeKind) *ClassLikeMetadata {
	return &ClassLikeMetadata{
		Name:                    name,
		Kind:                    kind,
		TemplateExtended:        make(map[source.StringID]map[source.StringID]*types.Union),
		TemplateExtendedOffsets: make(map[source.StringID][]*types.Union),
		EnumCases:               make(map[source.StringID]*types.Union),
		Methods:                 make(map[source.StringID]*FunctionLikeMetadata),
		Properties:              make(map[source.StringID]*PropertyMetadata),
		DeclaringMethodIDs:      make(map[source.StringID]MethodID),
		AppearingMethodIDs:      make(map[source.StringID]MethodID),
		InheritableMethodIDs:    make(map[source.StringID]MethodID),
		OverriddenMethodIDs:     make(map[source.StringID][]MethodID),
		DeclaringPropertyIDs:    make(map[source.StringID]PropertyID),
		AppearingPropertyIDs:    make(map[source.StringID]PropertyID),
		InheritablePropertyIDs:  make(map[source.StringID]PropertyID),
		OverriddenPropertyIDs:   make(map[source.StringID][]PropertyID),
	}
}

// TemplateIndex returns the position of the named template parameter.
func (m *ClassLikeMetadata) TemplateIndex(name source.StringID) (int, bool) {
	for i, tp := range m.Templates {
		if tp.Name == name {
			return i, true
		}
	}
	return 0, false
}

// HasTemplate reports whether the class declares the named parameter.
func (m *ClassLikeMetadata) HasTemplate(name source.StringID) bool {
	_, ok := m.TemplateIndex(name)
	return ok
}

// IsAbstractLike reports whether the class-like can hold unimplemented
// abstract methods without a diagnostic.
func (m *ClassLikeMetadata) IsAbstractLike() bool {
	return m.Abstract || m.Kind == KindInterface || m.Kind == KindTrait
}

// ExtendsOrImplements reports whether parent appears anywhere above m.
func (m *ClassLikeMetadata) ExtendsOrImplements(parent source.StringID) bool {
	for _, p := range m.AllParentClasses {
		if p == parent {
			return true
		}
	}
	for _, p := range m.AllParentInterfaces {
		if p == parent {
			return true
		}
	}
	return false
}
