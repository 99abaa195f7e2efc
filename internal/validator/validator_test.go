package validator

import (
	"testing"

	"argus/internal/diag"
	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/types"
)

type fixture struct {
	t  *testing.T
	in *source.Interner
	cb *meta.Codebase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	in := source.NewInterner()
	return &fixture{t: t, in: in, cb: meta.NewCodebase(in)}
}

func (f *fixture) id(name string) source.StringID { return f.in.Intern(name) }

func (f *fixture) class(name string, kind meta.ClassLikeKind) *meta.ClassLikeMetadata {
	m := meta.NewClassLikeMetadata(f.id(name), kind)
	m.UserDefined = true
	f.cb.AddClassLike(m)
	return m
}

func (f *fixture) method(m *meta.ClassLikeMetadata, name string, abstract bool) *meta.FunctionLikeMetadata {
	fn := &meta.FunctionLikeMetadata{
		Name:        f.id(name),
		UserDefined: true,
		Method: &meta.MethodMetadata{
			DefiningClass: m.Name,
			Visibility:    meta.Public,
			Abstract:      abstract,
		},
	}
	m.Methods[fn.Name] = fn
	return fn
}

func (f *fixture) property(m *meta.ClassLikeMetadata, name string, t *types.Union, read, write meta.Visibility) *meta.PropertyMetadata {
	p := &meta.PropertyMetadata{
		Name:            f.id(name),
		Type:            t,
		ReadVisibility:  read,
		WriteVisibility: write,
	}
	m.Properties[p.Name] = p
	return p
}

// validate populates the store and validates every class-like.
func (f *fixture) validate() *diag.Bag {
	bag := diag.NewBag(64)
	f.cb.Populate(diag.BagReporter{Bag: bag})
	v := New(f.cb, diag.BagReporter{Bag: bag})
	for _, name := range f.cb.ClassLikeNames() {
		v.ValidateClassLike(name)
	}
	return bag
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestUnimplementedAbstractMethod(t *testing.T) {
	f := newFixture(t)
	base := f.class("Shape", meta.KindClass)
	base.Abstract = true
	f.method(base, "area", true)
	child := f.class("Circle", meta.KindClass)
	child.DirectParentClass = base.Name

	bag := f.validate()
	if got := countCode(bag, diag.UnimplementedAbstractMethod); got != 1 {
		t.Fatalf("expected exactly one finding, got %d: %v", got, codes(bag))
	}
}

func TestAbstractMethodImplemented(t *testing.T) {
	f := newFixture(t)
	base := f.class("Shape", meta.KindClass)
	base.Abstract = true
	f.method(base, "area", true)
	child := f.class("Circle", meta.KindClass)
	child.DirectParentClass = base.Name
	f.method(child, "area", false)

	bag := f.validate()
	if got := countCode(bag, diag.UnimplementedAbstractMethod); got != 0 {
		t.Fatalf("implemented methods report nothing, got %v", codes(bag))
	}
}

func TestAbstractClassMayKeepAbstractMethods(t *testing.T) {
	f := newFixture(t)
	base := f.class("Shape", meta.KindClass)
	base.Abstract = true
	f.method(base, "area", true)
	mid := f.class("Curve", meta.KindClass)
	mid.Abstract = true
	mid.DirectParentClass = base.Name

	bag := f.validate()
	if got := countCode(bag, diag.UnimplementedAbstractMethod); got != 0 {
		t.Fatalf("abstract classes carry abstract methods, got %v", codes(bag))
	}
}

func TestExtendFinalClass(t *testing.T) {
	f := newFixture(t)
	base := f.class("Sealed", meta.KindClass)
	base.Final = true
	child := f.class("Child", meta.KindClass)
	child.DirectParentClass = base.Name

	bag := f.validate()
	if got := countCode(bag, diag.InvalidExtend); got != 1 {
		t.Fatalf("extending a final class is invalid, got %v", codes(bag))
	}
}

func TestClassCannotExtendInterface(t *testing.T) {
	f := newFixture(t)
	iface := f.class("Walker", meta.KindInterface)
	child := f.class("Robot", meta.KindClass)
	child.DirectParentClass = iface.Name

	bag := f.validate()
	if got := countCode(bag, diag.InvalidExtend); got != 1 {
		t.Fatalf("a class extends classes only, got %v", codes(bag))
	}
}

func TestImplementClassIsInvalid(t *testing.T) {
	f := newFixture(t)
	base := f.class("Concrete", meta.KindClass)
	child := f.class("User", meta.KindClass)
	child.DirectParentInterfaces = []source.StringID{base.Name}

	bag := f.validate()
	if got := countCode(bag, diag.InvalidImplement); got != 1 {
		t.Fatalf("implementing a class is invalid, got %v", codes(bag))
	}
}

func TestReadonlyParentRequiresReadonlyChild(t *testing.T) {
	f := newFixture(t)
	base := f.class("Frozen", meta.KindClass)
	base.Readonly = true
	child := f.class("Child", meta.KindClass)
	child.DirectParentClass = base.Name

	bag := f.validate()
	if got := countCode(bag, diag.InvalidExtend); got != 1 {
		t.Fatalf("a readonly parent requires a readonly child, got %v", codes(bag))
	}
}

func TestDeprecatedParentWarns(t *testing.T) {
	f := newFixture(t)
	base := f.class("Legacy", meta.KindClass)
	base.Deprecated = true
	child := f.class("Modern", meta.KindClass)
	child.DirectParentClass = base.Name

	bag := f.validate()
	if got := countCode(bag, diag.DeprecatedClass); got != 1 {
		t.Fatalf("expected a deprecation warning, got %v", codes(bag))
	}
	for _, d := range bag.Items() {
		if d.Code == diag.DeprecatedClass && d.Severity != diag.SevWarning {
			t.Fatalf("deprecation is a warning, got %v", d.Severity)
		}
	}
}

func TestPermittedInheritors(t *testing.T) {
	f := newFixture(t)
	allowed := f.id("Allowed")
	base := f.class("Restricted", meta.KindClass)
	base.PermittedInheritors = []source.StringID{allowed}

	good := f.class("Allowed", meta.KindClass)
	good.DirectParentClass = base.Name
	bad := f.class("Intruder", meta.KindClass)
	bad.DirectParentClass = base.Name

	bag := f.validate()
	if got := countCode(bag, diag.InvalidExtend); got != 1 {
		t.Fatalf("only the intruder is rejected, got %v", codes(bag))
	}
}

func TestUnknownPermittedInheritor(t *testing.T) {
	f := newFixture(t)
	base := f.class("Restricted", meta.KindClass)
	base.PermittedInheritors = []source.StringID{f.id("Ghost")}
	child := f.class("Child", meta.KindClass)
	child.DirectParentClass = base.Name

	bag := f.validate()
	if got := countCode(bag, diag.NonExistentClassLike); got != 1 {
		t.Fatalf("an unknown permitted inheritor is reported, got %v", codes(bag))
	}
}

func TestTraitRequireImplements(t *testing.T) {
	f := newFixture(t)
	iface := f.class("Countable", meta.KindInterface)
	trait := f.class("CountsItems", meta.KindTrait)
	trait.RequireImplements = []source.StringID{iface.Name}

	bad := f.class("Bag", meta.KindClass)
	bad.DirectTraits = []meta.TraitUse{{Name: trait.Name}}

	good := f.class("Basket", meta.KindClass)
	good.DirectTraits = []meta.TraitUse{{Name: trait.Name}}
	good.DirectParentInterfaces = []source.StringID{iface.Name}

	bag := f.validate()
	if got := countCode(bag, diag.MissingRequiredInterface); got != 1 {
		t.Fatalf("only the class missing the interface is reported, got %v", codes(bag))
	}
}

func TestTemplateArity(t *testing.T) {
	f := newFixture(t)
	base := f.class("Pair", meta.KindClass)
	base.Templates = []meta.TemplateParam{
		{Name: f.id("K"), Constraint: types.MixedUnion()},
		{Name: f.id("V"), Constraint: types.MixedUnion()},
	}

	few := f.class("IntPair", meta.KindClass)
	few.DirectParentClass = base.Name
	few.TemplateExtendedOffsets[base.Name] = []*types.Union{types.NewUnion(types.NewInt())}

	many := f.class("TriplePair", meta.KindClass)
	many.DirectParentClass = base.Name
	many.TemplateExtendedOffsets[base.Name] = []*types.Union{
		types.NewUnion(types.NewInt()),
		types.NewUnion(types.NewInt()),
		types.NewUnion(types.NewInt()),
	}

	bag := f.validate()
	if got := countCode(bag, diag.MissingTemplateParameter); got != 1 {
		t.Fatalf("one under-supplied clause expected, got %v", codes(bag))
	}
	if got := countCode(bag, diag.ExcessTemplateParameter); got != 1 {
		t.Fatalf("one over-supplied clause expected, got %v", codes(bag))
	}
}

func TestTemplateConstraintViolation(t *testing.T) {
	f := newFixture(t)
	base := f.class("NumberBox", meta.KindClass)
	base.Templates = []meta.TemplateParam{
		{Name: f.id("T"), Constraint: types.NewUnion(types.NewInt(), types.NewFloat())},
	}

	bad := f.class("StringBox", meta.KindClass)
	bad.DirectParentClass = base.Name
	bad.TemplateExtendedOffsets[base.Name] = []*types.Union{types.NewUnion(types.NewString())}

	good := f.class("IntBox", meta.KindClass)
	good.DirectParentClass = base.Name
	good.TemplateExtendedOffsets[base.Name] = []*types.Union{types.NewUnion(types.NewInt())}

	bag := f.validate()
	if got := countCode(bag, diag.InvalidTemplateParameter); got != 1 {
		t.Fatalf("only the string argument violates the constraint, got %v", codes(bag))
	}
}

func TestCovariantStandinInInvariantSlot(t *testing.T) {
	f := newFixture(t)
	base := f.class("Container", meta.KindClass)
	base.Templates = []meta.TemplateParam{
		{Name: f.id("T"), Constraint: types.MixedUnion(), Variance: types.Invariant},
	}

	child := f.class("CoContainer", meta.KindClass)
	child.DirectParentClass = base.Name
	child.Templates = []meta.TemplateParam{
		{Name: f.id("U"), Constraint: types.MixedUnion(), Variance: types.Covariant},
	}
	child.TemplateExtendedOffsets[base.Name] = []*types.Union{
		types.NewUnion(&types.TGenericParam{
			Name:           f.id("U"),
			DefiningEntity: child.Name,
			Constraint:     types.MixedUnion(),
		}),
	}

	bag := f.validate()
	if got := countCode(bag, diag.InvalidTemplateParameter); got != 1 {
		t.Fatalf("a covariant standin cannot fill an invariant slot, got %v", codes(bag))
	}
}

func TestConsistentTemplates(t *testing.T) {
	f := newFixture(t)
	base := f.class("Repo", meta.KindClass)
	base.ConsistentTemplates = true
	base.Templates = []meta.TemplateParam{
		{Name: f.id("T"), Constraint: types.MixedUnion()},
	}

	bad := f.class("UserRepo", meta.KindClass)
	bad.DirectParentClass = base.Name
	bad.TemplateExtendedOffsets[base.Name] = []*types.Union{types.NewUnion(types.NewInt())}

	bag := f.validate()
	if got := countCode(bag, diag.InconsistentTemplate); got == 0 {
		t.Fatalf("a concrete argument breaks template consistency, got %v", codes(bag))
	}
}

func TestPropertyTypeInvariance(t *testing.T) {
	f := newFixture(t)
	base := f.class("Model", meta.KindClass)
	f.property(base, "id", types.NewUnion(types.NewString()), meta.Public, meta.Public)

	child := f.class("User", meta.KindClass)
	child.DirectParentClass = base.Name
	f.property(child, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)

	bag := f.validate()
	if got := countCode(bag, diag.IncompatiblePropertyType); got != 1 {
		t.Fatalf("changing a property type is invalid, got %v", codes(bag))
	}
}

func TestPropertyWideningIsAlsoInvalid(t *testing.T) {
	f := newFixture(t)
	base := f.class("Model", meta.KindClass)
	f.property(base, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)

	child := f.class("User", meta.KindClass)
	child.DirectParentClass = base.Name
	f.property(child, "id", types.NewUnion(types.NewInt(), &types.TNull{}), meta.Public, meta.Public)

	bag := f.validate()
	if got := countCode(bag, diag.IncompatiblePropertyType); got != 1 {
		t.Fatalf("property overrides are invariant, not covariant, got %v", codes(bag))
	}
}

func TestIdenticalPropertyOverrideIsFine(t *testing.T) {
	f := newFixture(t)
	base := f.class("Model", meta.KindClass)
	f.property(base, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)

	child := f.class("User", meta.KindClass)
	child.DirectParentClass = base.Name
	f.property(child, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)

	bag := f.validate()
	if got := countCode(bag, diag.IncompatiblePropertyType); got != 0 {
		t.Fatalf("an identical override is legal, got %v", codes(bag))
	}
}

func TestNativePropertyTypeAdded(t *testing.T) {
	f := newFixture(t)
	base := f.class("Model", meta.KindClass)
	f.property(base, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)

	child := f.class("User", meta.KindClass)
	child.DirectParentClass = base.Name
	cp := f.property(child, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)
	cp.SignatureType = types.NewUnion(types.NewInt())

	bag := f.validate()
	if got := countCode(bag, diag.IncompatiblePropertyType); got != 1 {
		t.Fatalf("a native type over a docblock-only parent is an addition, got %v", codes(bag))
	}
}

func TestNativePropertyTypeDropped(t *testing.T) {
	f := newFixture(t)
	base := f.class("Model", meta.KindClass)
	pp := f.property(base, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)
	pp.SignatureType = types.NewUnion(types.NewInt())

	child := f.class("User", meta.KindClass)
	child.DirectParentClass = base.Name
	f.property(child, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)

	bag := f.validate()
	if got := countCode(bag, diag.IncompatiblePropertyType); got != 1 {
		t.Fatalf("losing the parent's native type is a drop, got %v", codes(bag))
	}
}

func TestNativePropertyTypePairInvariance(t *testing.T) {
	f := newFixture(t)
	base := f.class("Model", meta.KindClass)
	pp := f.property(base, "id", types.NewUnion(types.NewString()), meta.Public, meta.Public)
	pp.SignatureType = types.NewUnion(types.NewString())

	child := f.class("User", meta.KindClass)
	child.DirectParentClass = base.Name
	cp := f.property(child, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)
	cp.SignatureType = types.NewUnion(types.NewInt())

	bag := f.validate()
	if got := countCode(bag, diag.IncompatiblePropertyType); got != 1 {
		t.Fatalf("mismatched native types are invalid, got %v", codes(bag))
	}

	g := newFixture(t)
	gb := g.class("Model", meta.KindClass)
	gp := g.property(gb, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)
	gp.SignatureType = types.NewUnion(types.NewInt())
	gc := g.class("User", meta.KindClass)
	gc.DirectParentClass = gb.Name
	cp = g.property(gc, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)
	cp.SignatureType = types.NewUnion(types.NewInt())

	if got := countCode(g.validate(), diag.IncompatiblePropertyType); got != 0 {
		t.Fatalf("matching native types are legal, got %d findings", got)
	}
}

func TestPropertyVisibilityNarrowing(t *testing.T) {
	f := newFixture(t)
	base := f.class("Model", meta.KindClass)
	f.property(base, "id", types.NewUnion(types.NewInt()), meta.Public, meta.Public)

	child := f.class("User", meta.KindClass)
	child.DirectParentClass = base.Name
	f.property(child, "id", types.NewUnion(types.NewInt()), meta.Protected, meta.Protected)

	bag := f.validate()
	if got := countCode(bag, diag.OverriddenPropertyAccess); got != 1 {
		t.Fatalf("narrowing read visibility is invalid, got %v", codes(bag))
	}
}

func TestTemplateNameCollision(t *testing.T) {
	f := newFixture(t)
	f.class("Model", meta.KindClass)
	box := f.class("Box", meta.KindClass)
	box.Templates = []meta.TemplateParam{
		{Name: f.id("Model"), Constraint: types.MixedUnion()},
	}

	bag := f.validate()
	if got := countCode(bag, diag.NameAlreadyInUse); got != 1 {
		t.Fatalf("a template shadowing a class is rejected, got %v", codes(bag))
	}
}

func TestInvalidDependencySkipsValidation(t *testing.T) {
	f := newFixture(t)
	a := f.class("A", meta.KindClass)
	b := f.class("B", meta.KindClass)
	a.DirectParentClass = b.Name
	b.DirectParentClass = a.Name

	bag := f.validate()
	if got := countCode(bag, diag.CircularReference); got == 0 {
		t.Fatalf("the cycle itself is reported, got %v", codes(bag))
	}
	if got := countCode(bag, diag.InvalidExtend); got != 0 {
		t.Fatalf("cycle participants skip the remaining checks, got %v", codes(bag))
	}
}
