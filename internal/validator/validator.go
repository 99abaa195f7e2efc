// Package validator checks every user-defined class-like against its
// ancestry after codebase population: abstract coverage, inheritance
// legality, template arity, variance and constraints, and property
// override invariance. Findings go to the reporter; the validator never
// mutates metadata.
package validator

import (
	"fmt"

	"argus/internal/diag"
	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/types"
)

type Validator struct {
	Codebase *meta.Codebase
	Reporter diag.Reporter
}

func New(cb *meta.Codebase, r diag.Reporter) *Validator {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Validator{Codebase: cb, Reporter: r}
}

// ValidateClassLike runs every check, in order, for one class-like.
// Unknown ancestors short-circuit their checks without diagnostics.
func (v *Validator) ValidateClassLike(name source.StringID) {
	m, ok := v.Codebase.ClassLike(name)
	if !ok || !m.UserDefined || m.InvalidDependency {
		return
	}

	v.checkAbstractCoverage(m)
	v.checkTemplateNameCollisions(m)
	v.checkParents(m)
	v.checkTemplateArity(m)
	v.checkTemplateVariance(m)
	v.checkTemplateConstraints(m)
	v.checkPropertyOverrides(m)
}

// checkAbstractCoverage requires a concrete class to implement every
// abstract method reachable through its ancestry. Enum value plumbing is
// implicit and skipped.
func (v *Validator) checkAbstractCoverage(m *meta.ClassLikeMetadata) {
	if m.IsAbstractLike() {
		return
	}
	in := v.Codebase.Interner()
	for methodName, id := range m.DeclaringMethodIDs {
		f, ok := v.Codebase.MethodMetadata(id)
		if !ok || !f.IsAbstract() {
			continue
		}
		if m.Kind == meta.KindEnum && isImplicitEnumMethod(in.MustLookup(methodName)) {
			continue
		}
		v.Reporter.Report(diag.UnimplementedAbstractMethod, diag.SevError, m.NameSpan,
			fmt.Sprintf("%s %s must implement abstract method %s::%s",
				m.Kind, in.MustLookup(m.Name),
				in.MustLookup(id.ClassLike), in.MustLookup(methodName)),
			[]diag.Note{{Span: f.NameSpan, Msg: "declared abstract here"}}, "")
	}
}

func isImplicitEnumMethod(name string) bool {
	switch name {
	case "cases", "from", "tryFrom":
		return true
	}
	return false
}

// checkTemplateNameCollisions rejects a template parameter that shadows
// an existing class-like.
func (v *Validator) checkTemplateNameCollisions(m *meta.ClassLikeMetadata) {
	in := v.Codebase.Interner()
	for _, tp := range m.Templates {
		tpName := in.MustLookup(tp.Name)
		if _, exists := v.Codebase.Resolve(tpName); exists {
			v.Reporter.Report(diag.NameAlreadyInUse, diag.SevError, tp.Span,
				fmt.Sprintf("template parameter %s shadows the class-like of the same name", tpName),
				nil, "")
		}
	}
}

// checkParents validates extends/implements legality against each known
// direct parent.
func (v *Validator) checkParents(m *meta.ClassLikeMetadata) {
	in := v.Codebase.Interner()

	if m.DirectParentClass != source.NoStringID {
		if pm, ok := v.Codebase.ClassLike(m.DirectParentClass); ok {
			v.checkExtend(m, pm)
		}
	}

	for _, iface := range m.DirectParentInterfaces {
		pm, ok := v.Codebase.ClassLike(iface)
		if !ok {
			continue
		}
		if m.Kind == meta.KindInterface {
			// Interface "implements" clauses are really extends.
			v.checkExtend(m, pm)
			continue
		}
		if pm.Kind != meta.KindInterface {
			v.Reporter.Report(diag.InvalidImplement, diag.SevError, m.NameSpan,
				fmt.Sprintf("%s cannot implement %s %s",
					in.MustLookup(m.Name), pm.Kind, in.MustLookup(pm.Name)),
				nil, "")
			continue
		}
		v.checkInheritors(m, pm, diag.InvalidImplement)
		v.checkDeprecatedParent(m, pm)
	}

	v.checkTraitRequirements(m)
}

func (v *Validator) checkExtend(m, pm *meta.ClassLikeMetadata) {
	in := v.Codebase.Interner()

	if m.Kind == meta.KindInterface && pm.Kind != meta.KindInterface {
		v.Reporter.Report(diag.InvalidExtend, diag.SevError, m.NameSpan,
			fmt.Sprintf("interface %s cannot extend %s %s",
				in.MustLookup(m.Name), pm.Kind, in.MustLookup(pm.Name)),
			nil, "")
		return
	}
	if m.Kind == meta.KindClass && pm.Kind != meta.KindClass {
		v.Reporter.Report(diag.InvalidExtend, diag.SevError, m.DirectParentClassSpan,
			fmt.Sprintf("class %s cannot extend %s %s",
				in.MustLookup(m.Name), pm.Kind, in.MustLookup(pm.Name)),
			nil, "")
		return
	}

	if pm.Final {
		v.Reporter.Report(diag.InvalidExtend, diag.SevError, m.DirectParentClassSpan,
			fmt.Sprintf("%s cannot extend final class %s",
				in.MustLookup(m.Name), in.MustLookup(pm.Name)),
			[]diag.Note{{Span: pm.NameSpan, Msg: "declared final here"}}, "")
	}
	if pm.Readonly && !m.Readonly {
		v.Reporter.Report(diag.InvalidExtend, diag.SevError, m.NameSpan,
			fmt.Sprintf("%s must be readonly to extend readonly class %s",
				in.MustLookup(m.Name), in.MustLookup(pm.Name)),
			[]diag.Note{{Span: pm.NameSpan, Msg: "declared readonly here"}}, "")
	}
	if pm.MutationFree && !m.MutationFree {
		v.Reporter.Report(diag.InvalidExtend, diag.SevError, m.NameSpan,
			fmt.Sprintf("%s must be mutation-free to extend mutation-free class %s",
				in.MustLookup(m.Name), in.MustLookup(pm.Name)),
			nil, "")
	}
	if pm.ExternalMutationFree && !m.ExternalMutationFree && !m.MutationFree {
		v.Reporter.Report(diag.InvalidExtend, diag.SevError, m.NameSpan,
			fmt.Sprintf("%s must be external-mutation-free to extend %s",
				in.MustLookup(m.Name), in.MustLookup(pm.Name)),
			nil, "")
	}

	v.checkInheritors(m, pm, diag.InvalidExtend)
	v.checkDeprecatedParent(m, pm)
}

// checkInheritors enforces a sealed parent's permitted-inheritor list. A
// child is admitted when it, or any of its ancestors, is in the set.
func (v *Validator) checkInheritors(m, pm *meta.ClassLikeMetadata, code diag.Code) {
	if len(pm.PermittedInheritors) == 0 || m.IsAbstractLike() {
		return
	}
	in := v.Codebase.Interner()
	for _, permitted := range pm.PermittedInheritors {
		if !v.Codebase.ClassLikeExists(permitted) {
			v.Reporter.Report(diag.NonExistentClassLike, diag.SevError, pm.NameSpan,
				fmt.Sprintf("permitted inheritor %s of %s does not exist",
					in.MustLookup(permitted), in.MustLookup(pm.Name)),
				nil, "")
			continue
		}
		if permitted == m.Name || m.ExtendsOrImplements(permitted) {
			return
		}
	}
	v.Reporter.Report(code, diag.SevError, m.NameSpan,
		fmt.Sprintf("%s is not a permitted inheritor of %s",
			in.MustLookup(m.Name), in.MustLookup(pm.Name)),
		[]diag.Note{{Span: pm.NameSpan, Msg: "inheritors restricted here"}}, "")
}

func (v *Validator) checkDeprecatedParent(m, pm *meta.ClassLikeMetadata) {
	if !pm.Deprecated || m.Deprecated {
		return
	}
	in := v.Codebase.Interner()
	v.Reporter.Report(diag.DeprecatedClass, diag.SevWarning, m.NameSpan,
		fmt.Sprintf("%s inherits from deprecated %s %s",
			in.MustLookup(m.Name), pm.Kind, in.MustLookup(pm.Name)),
		nil, "")
}

// checkTraitRequirements enforces @require-extends / @require-implements
// collected from used traits onto concrete classes.
func (v *Validator) checkTraitRequirements(m *meta.ClassLikeMetadata) {
	if m.Kind != meta.KindClass || m.IsAbstractLike() {
		return
	}
	in := v.Codebase.Interner()
	for _, req := range m.RequireExtends {
		if !v.Codebase.ClassLikeExists(req) {
			continue
		}
		if m.Name != req && !m.ExtendsOrImplements(req) {
			v.Reporter.Report(diag.MissingRequiredInterface, diag.SevError, m.NameSpan,
				fmt.Sprintf("%s must extend %s, required by a used trait",
					in.MustLookup(m.Name), in.MustLookup(req)),
				nil, "")
		}
	}
	for _, req := range m.RequireImplements {
		if !v.Codebase.ClassLikeExists(req) {
			continue
		}
		if !m.ExtendsOrImplements(req) {
			v.Reporter.Report(diag.MissingRequiredInterface, diag.SevError, m.NameSpan,
				fmt.Sprintf("%s must implement %s, required by a used trait",
					in.MustLookup(m.Name), in.MustLookup(req)),
				nil, "")
		}
	}
}

// checkTemplateArity requires each @extends/@implements/@use tag to
// supply exactly the parent's template count.
func (v *Validator) checkTemplateArity(m *meta.ClassLikeMetadata) {
	in := v.Codebase.Interner()
	for parent, args := range m.TemplateExtendedOffsets {
		pm, ok := v.Codebase.ClassLike(parent)
		if !ok {
			continue
		}
		switch {
		case len(args) < len(pm.Templates):
			v.Reporter.Report(diag.MissingTemplateParameter, diag.SevError, m.NameSpan,
				fmt.Sprintf("%s supplies %d template parameters for %s, expecting %d",
					in.MustLookup(m.Name), len(args), in.MustLookup(parent), len(pm.Templates)),
				[]diag.Note{{Span: pm.NameSpan, Msg: "templates declared here"}}, "")
		case len(args) > len(pm.Templates):
			v.Reporter.Report(diag.ExcessTemplateParameter, diag.SevError, m.NameSpan,
				fmt.Sprintf("%s supplies %d template parameters for %s, expecting %d",
					in.MustLookup(m.Name), len(args), in.MustLookup(parent), len(pm.Templates)),
				[]diag.Note{{Span: pm.NameSpan, Msg: "templates declared here"}}, "")
		}
	}
}

// checkTemplateVariance rejects a covariant child standin in an invariant
// parent position, and enforces @consistent-templates.
func (v *Validator) checkTemplateVariance(m *meta.ClassLikeMetadata) {
	in := v.Codebase.Interner()
	for parent, args := range m.TemplateExtendedOffsets {
		pm, ok := v.Codebase.ClassLike(parent)
		if !ok {
			continue
		}
		for i, arg := range args {
			if i >= len(pm.Templates) {
				break
			}
			standin, ok := loneStandin(arg)
			if !ok {
				continue
			}
			childParam, declared := templateByName(m, standin.Name)
			if !declared {
				continue
			}
			if pm.Templates[i].Variance == types.Invariant && childParam.Variance == types.Covariant {
				v.Reporter.Report(diag.InvalidTemplateParameter, diag.SevError, childParam.Span,
					fmt.Sprintf("covariant template %s cannot fill invariant position %d of %s",
						in.MustLookup(childParam.Name), i, in.MustLookup(parent)),
					[]diag.Note{{Span: pm.Templates[i].Span, Msg: "declared invariant here"}}, "")
			}
		}

		if !pm.ConsistentTemplates {
			continue
		}
		if len(args) != len(pm.Templates) || len(m.Templates) != len(pm.Templates) {
			v.Reporter.Report(diag.InconsistentTemplate, diag.SevError, m.NameSpan,
				fmt.Sprintf("%s must re-declare the template parameters of %s",
					in.MustLookup(m.Name), in.MustLookup(parent)),
				nil, "")
			continue
		}
		for i, arg := range args {
			standin, ok := loneStandin(arg)
			if !ok {
				v.reportInconsistent(m, pm, i)
				continue
			}
			childParam, declared := templateByName(m, standin.Name)
			if !declared {
				v.reportInconsistent(m, pm, i)
				continue
			}
			if !constraintsIdentical(v.Codebase, childParam.Constraint, pm.Templates[i].Constraint) {
				v.reportInconsistent(m, pm, i)
			}
		}
	}
}

func (v *Validator) reportInconsistent(m, pm *meta.ClassLikeMetadata, index int) {
	in := v.Codebase.Interner()
	v.Reporter.Report(diag.InconsistentTemplate, diag.SevError, m.NameSpan,
		fmt.Sprintf("template argument %d of %s must be a template parameter with the constraint declared by %s",
			index, in.MustLookup(m.Name), in.MustLookup(pm.Name)),
		[]diag.Note{{Span: pm.Templates[index].Span, Msg: "declared here"}}, "")
}

// checkTemplateConstraints widens each extended argument through the
// earlier bindings for the same parent, then requires containment in the
// parent's declared constraint.
func (v *Validator) checkTemplateConstraints(m *meta.ClassLikeMetadata) {
	in := v.Codebase.Interner()
	for parent, args := range m.TemplateExtendedOffsets {
		pm, ok := v.Codebase.ClassLike(parent)
		if !ok {
			continue
		}
		previous := types.NewTemplateResult()
		for i, arg := range args {
			if i >= len(pm.Templates) {
				break
			}
			constraint := pm.Templates[i].Constraint
			widened := types.Replace(arg, previous, v.Codebase, types.ReplaceOptions{})
			widened = resolveOwnStandins(v.Codebase, m, widened)
			if constraint != nil && !constraint.IsMixed() {
				var res types.ComparisonResult
				if !types.UnionContainedBy(v.Codebase, widened, constraint, &res) {
					v.Reporter.Report(diag.InvalidTemplateParameter, diag.SevError, m.NameSpan,
						fmt.Sprintf("template argument %s for %s of %s does not satisfy constraint %s",
							arg.Display(in), in.MustLookup(pm.Templates[i].Name),
							in.MustLookup(parent), constraint.Display(in)),
						[]diag.Note{{Span: pm.Templates[i].Span, Msg: "constraint declared here"}}, "")
				}
			}
			previous.AddLowerBound(
				types.TemplateKey{Name: pm.Templates[i].Name, Entity: parent},
				types.TemplateBound{Bound: arg, ArgumentOffset: i},
			)
		}
	}
}

// resolveOwnStandins widens the class's own template standins to their
// constraints so containment can be decided.
func resolveOwnStandins(cb *meta.Codebase, m *meta.ClassLikeMetadata, u *types.Union) *types.Union {
	if !u.HasTemplateStandins() {
		return u
	}
	res := types.NewTemplateResult()
	for _, tp := range m.Templates {
		constraint := tp.Constraint
		if constraint == nil {
			constraint = types.MixedUnion()
		}
		res.AddLowerBound(
			types.TemplateKey{Name: tp.Name, Entity: m.Name},
			types.TemplateBound{Bound: constraint},
		)
	}
	return types.Replace(u, res, cb, types.ReplaceOptions{})
}

// checkPropertyOverrides enforces visibility monotonicity and type
// invariance between a property and every ancestor version it shadows.
func (v *Validator) checkPropertyOverrides(m *meta.ClassLikeMetadata) {
	in := v.Codebase.Interner()
	for propName, parents := range m.OverriddenPropertyIDs {
		own, ok := m.Properties[propName]
		if !ok {
			continue
		}
		for _, pid := range parents {
			parentProp, ok := v.Codebase.PropertyMetadata(pid)
			if !ok {
				continue
			}
			if own.ReadVisibility.StricterThan(parentProp.ReadVisibility) {
				v.Reporter.Report(diag.OverriddenPropertyAccess, diag.SevError, own.NameSpan,
					fmt.Sprintf("property %s::$%s cannot narrow read visibility from %s to %s",
						in.MustLookup(m.Name), in.MustLookup(propName),
						parentProp.ReadVisibility, own.ReadVisibility),
					[]diag.Note{{Span: parentProp.NameSpan, Msg: "parent property here"}}, "")
			}
			asymmetric := own.ReadVisibility != own.WriteVisibility ||
				parentProp.ReadVisibility != parentProp.WriteVisibility
			if asymmetric && own.WriteVisibility.StricterThan(parentProp.WriteVisibility) {
				v.Reporter.Report(diag.OverriddenPropertyAccess, diag.SevError, own.NameSpan,
					fmt.Sprintf("property %s::$%s cannot narrow write visibility from %s to %s",
						in.MustLookup(m.Name), in.MustLookup(propName),
						parentProp.WriteVisibility, own.WriteVisibility),
					[]diag.Note{{Span: parentProp.NameSpan, Msg: "parent property here"}}, "")
			}
			v.checkPropertyTypeInvariance(m, propName, own, parentProp)
		}
	}
}

func (v *Validator) checkPropertyTypeInvariance(m *meta.ClassLikeMetadata, propName source.StringID, own, parent *meta.PropertyMetadata) {
	in := v.Codebase.Interner()
	report := func(msg string) {
		v.Reporter.Report(diag.IncompatiblePropertyType, diag.SevError, own.TypeSpan,
			fmt.Sprintf("property %s::$%s %s", in.MustLookup(m.Name), in.MustLookup(propName), msg),
			[]diag.Note{{Span: parent.TypeSpan, Msg: "parent type here"}}, "")
	}

	switch {
	case own.SignatureType != nil && parent.SignatureType == nil:
		report("adds a native type its parent declaration lacks")
	case own.SignatureType == nil && parent.SignatureType != nil:
		report("drops the native type its parent declares")
	case own.SignatureType != nil && parent.SignatureType != nil:
		if !mutuallyContained(v.Codebase, own.SignatureType, parent.SignatureType) {
			report(fmt.Sprintf("has native type %s, not invariant with parent type %s",
				own.SignatureType.Display(in), parent.SignatureType.Display(in)))
		}
	default:
		// Neither side declares a native type; docblock pairs still
		// demand invariance.
		if own.Type != nil && parent.Type != nil &&
			!mutuallyContained(v.Codebase, own.Type, parent.Type) {
			report(fmt.Sprintf("has type %s, not invariant with parent type %s",
				own.Type.Display(in), parent.Type.Display(in)))
		}
	}
}

func mutuallyContained(g types.ClassGraph, a, b *types.Union) bool {
	var r1, r2 types.ComparisonResult
	return types.UnionContainedBy(g, a, b, &r1) && !r1.CoercionRequired &&
		types.UnionContainedBy(g, b, a, &r2) && !r2.CoercionRequired
}

// constraintsIdentical compares two template constraints, nil meaning
// mixed.
func constraintsIdentical(g types.ClassGraph, a, b *types.Union) bool {
	if a == nil {
		a = types.MixedUnion()
	}
	if b == nil {
		b = types.MixedUnion()
	}
	return types.UnionsAreIdentical(a, b)
}

func loneStandin(u *types.Union) (*types.TGenericParam, bool) {
	if u == nil {
		return nil, false
	}
	single, ok := u.Single()
	if !ok {
		return nil, false
	}
	p, ok := single.(*types.TGenericParam)
	return p, ok
}

func templateByName(m *meta.ClassLikeMetadata, name source.StringID) (meta.TemplateParam, bool) {
	for _, tp := range m.Templates {
		if tp.Name == name {
			return tp, true
		}
	}
	return meta.TemplateParam{}, false
}
