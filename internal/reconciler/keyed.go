package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"argus/internal/diag"
	"argus/internal/meta"
	"argus/internal/source"
	"argus/internal/types"
)

// CNF is the assertions gathered for one access path: an AND of OR
// clauses, with the span of the condition that produced them.
type CNF struct {
	Clauses [][]Assertion
	Span    source.Span
}

// Reconciler narrows block contexts under assertion sets.
type Reconciler struct {
	Codebase *meta.Codebase
	Reporter diag.Reporter
}

// New returns a reconciler over the populated codebase.
func New(cb *meta.Codebase, r diag.Reporter) *Reconciler {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Reconciler{Codebase: cb, Reporter: r}
}

// ReconcileKeyedTypes applies a map of access path to CNF against the
// block context, in place. Nested isset paths synthesize assertions for
// each prefix first; narrowing a bare variable invalidates its cached
// descendants; narrowing a nested path refines the parent shape in
// place.
func (rc *Reconciler) ReconcileKeyedTypes(newTypes map[string]CNF, ctx *BlockContext) {
	keys := make([]string, 0, len(newTypes))
	for k := range newTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expanded := make(map[string]CNF, len(newTypes))
	var order []string
	for _, key := range keys {
		cnf := newTypes[key]
		if isNestedPath(key) && assertsIsset(cnf) {
			for _, pre := range prefixAssertions(key, cnf.Span) {
				if _, have := newTypes[pre.path]; have {
					continue
				}
				if _, have := expanded[pre.path]; have {
					continue
				}
				expanded[pre.path] = pre.cnf
				order = append(order, pre.path)
			}
		}
		expanded[key] = cnf
		order = append(order, key)
	}

	for _, key := range order {
		rc.reconcileKey(key, expanded[key], ctx)
	}
}

func (rc *Reconciler) reconcileKey(key string, cnf CNF, ctx *BlockContext) {
	existing := valueForKey(rc.Codebase, key, ctx)
	result := existing

	for _, clause := range cnf.Clauses {
		clauseResult := types.Never()
		for _, a := range clause {
			clauseResult = types.Add(clauseResult, reconcileAssertion(rc.Codebase, a, result, ctx))
		}
		result = clauseResult
		if result.IsNever() {
			break
		}
	}

	rc.emitOutcome(key, cnf, existing, result, ctx)

	ctx.SetType(key, result)

	if !isNestedPath(key) {
		if !existing.Equals(result) {
			ctx.RemoveDescendants(key)
		}
		return
	}
	rc.refineParent(key, result, ctx)
}

// emitOutcome reports an impossible or redundant condition for the key.
func (rc *Reconciler) emitOutcome(key string, cnf CNF, existing, result *types.Union, ctx *BlockContext) {
	first := firstAssertion(cnf)
	if first == nil {
		return
	}
	in := rc.Codebase.Interner()

	if result.IsNever() && !existing.IsNever() {
		code := impossibleCode(first)
		rc.Reporter.Report(code, diag.SevError, cnf.Span,
			fmt.Sprintf("%s can never be %s, its type is %s",
				key, first.String(), existing.Display(in)),
			nil, "")
		return
	}

	if !existing.Equals(result) {
		return
	}
	code, report := redundantCode(first, existing, ctx)
	if !report {
		return
	}
	rc.Reporter.Report(code, diag.SevWarning, cnf.Span,
		fmt.Sprintf("%s is always %s, its type is %s",
			key, first.String(), existing.Display(in)),
		nil, "")
}

// refineParent writes the narrowed value back into the parent container's
// known shape so further narrowings see the stronger type. Parents with
// unknown shape are left alone.
func (rc *Reconciler) refineParent(key string, value *types.Union, ctx *BlockContext) {
	parentPath, rawKey, kind, ok := splitLastAccess(key)
	if !ok || kind != "[" {
		return
	}
	arrKey, literal := parseKeyLiteral(rawKey)
	if !literal {
		return
	}
	parent, ok := ctx.GetType(parentPath)
	if !ok {
		return
	}

	out := parent.Clone()
	changed := false
	for _, a := range out.Types {
		switch t := a.(type) {
		case *types.TKeyedArray:
			if entry, ok := t.Item(arrKey); ok {
				entry.Value = value
				t.SetItem(arrKey, entry)
				changed = true
			} else if t.Parameters != nil {
				t.SetItem(arrKey, types.KeyedEntry{Value: value, PossiblyUndefined: true})
				changed = true
			}
		case *types.TList:
			if arrKey.IsInt {
				if entry, ok := t.Element(int(arrKey.Int)); ok {
					entry.Value = value
					t.SetElement(int(arrKey.Int), entry)
					changed = true
				}
			}
		}
	}
	if changed {
		ctx.SetType(parentPath, out)
	}
}

// splitLastAccess splits "$a['k'][0]" into ("$a['k']", "0", "["). The
// kind is "[" for index access, "->" for property access.
func splitLastAccess(path string) (parent, key, kind string, ok bool) {
	parts := BreakUpPath(path)
	if len(parts) < 3 {
		return "", "", "", false
	}
	last := parts[len(parts)-1]
	if last == "]" && len(parts) >= 4 && parts[len(parts)-3] == "[" {
		return JoinPath(parts[:len(parts)-3]), parts[len(parts)-2], "[", true
	}
	if len(parts) >= 3 && parts[len(parts)-2] == "->" {
		return JoinPath(parts[:len(parts)-2]), last, "->", true
	}
	return "", "", "", false
}

func isNestedPath(path string) bool {
	parts := BreakUpPath(path)
	if len(parts) >= 3 && parts[1] == "::" {
		return len(parts) > 3
	}
	return len(parts) > 1
}

func assertsIsset(cnf CNF) bool {
	a := firstAssertion(cnf)
	switch a.(type) {
	case IsIsset, IsEqualIsset:
		return true
	}
	return false
}

func firstAssertion(cnf CNF) Assertion {
	for _, clause := range cnf.Clauses {
		for _, a := range clause {
			return a
		}
	}
	return nil
}

type prefixed struct {
	path string
	cnf  CNF
}

// prefixAssertions synthesizes assertions for every prefix of a nested
// isset path: the root must be isset, and each intermediate container
// must have a non-null entry at its literal key. Dynamic keys demote to
// the weaker array-access assertion.
func prefixAssertions(key string, span source.Span) []prefixed {
	parts := BreakUpPath(key)
	var out []prefixed

	idx := 1
	root := parts[0]
	if len(parts) >= 3 && parts[1] == "::" {
		root = parts[0] + "::" + parts[2]
		idx = 3
	}
	out = append(out, prefixed{path: root, cnf: CNF{
		Clauses: [][]Assertion{{IsIsset{}}},
		Span:    span,
	}})

	walked := root
	for idx < len(parts) {
		switch parts[idx] {
		case "[":
			if idx+2 >= len(parts) || parts[idx+2] != "]" {
				return out
			}
			raw := parts[idx+1]
			next := walked + "[" + raw + "]"
			if next == key {
				return out
			}
			var a Assertion
			if k, literal := parseKeyLiteral(raw); literal {
				a = HasNonnullEntryForKey{Key: k}
			} else if strings.HasPrefix(raw, "$") {
				a = HasIntOrStringArrayAccess{}
			} else {
				a = HasStringArrayAccess{}
			}
			out = append(out, prefixed{path: walked, cnf: CNF{
				Clauses: [][]Assertion{{a}},
				Span:    span,
			}})
			out = append(out, prefixed{path: next, cnf: CNF{
				Clauses: [][]Assertion{{IsEqualIsset{}}},
				Span:    span,
			}})
			walked = next
			idx += 3
		case "->":
			if idx+1 >= len(parts) {
				return out
			}
			next := walked + "->" + parts[idx+1]
			if next == key {
				return out
			}
			out = append(out, prefixed{path: next, cnf: CNF{
				Clauses: [][]Assertion{{IsEqualIsset{}}},
				Span:    span,
			}})
			walked = next
			idx += 2
		default:
			return out
		}
	}
	return out
}

// impossibleCode picks the diagnostic kind for a never-satisfiable
// assertion.
func impossibleCode(a Assertion) diag.Code {
	switch as := a.(type) {
	case IsIdentical:
		if isNullType(as.Type) {
			return diag.ImpossibleNullTypeComparison
		}
		return diag.ImpossibleTypeComparison
	case IsNotIdentical:
		if isNullType(as.Type) {
			return diag.ImpossibleNullTypeComparison
		}
		return diag.ImpossibleTypeComparison
	case IsType, IsNotType, InArray, NotInArray:
		return diag.ImpossibleTypeComparison
	case HasArrayKey, DoesNotHaveArrayKey:
		return diag.ImpossibleKeyCheck
	case HasNonnullEntryForKey:
		return diag.ImpossibleNonnullEntryCheck
	default:
		return diag.ImpossibleCondition
	}
}

// redundantCode picks the diagnostic kind for an assertion that changed
// nothing; isset, truthy and falsy checks are exempt except for the
// dedicated redundant-isset case.
func redundantCode(a Assertion, existing *types.Union, ctx *BlockContext) (diag.Code, bool) {
	switch a.(type) {
	case Truthy, Falsy, IsEqualIsset:
		return 0, false
	case IsIsset:
		if ctx.InsideLoop || ctx.InsideTry || existing.PossiblyUndefinedFromTry || existing.IsMixed() {
			return 0, false
		}
		return diag.RedundantIssetCheck, true
	case IsType, IsIdentical, IsNotType, IsNotIdentical, InArray, NotInArray:
		return diag.RedundantTypeComparison, true
	case HasArrayKey, DoesNotHaveArrayKey:
		return diag.RedundantKeyCheck, true
	case HasNonnullEntryForKey:
		return diag.RedundantNonnullEntryCheck, true
	case IntRangeCompare:
		return diag.RedundantCondition, true
	default:
		return 0, false
	}
}

func isNullType(u *types.Union) bool {
	if u == nil || len(u.Types) != 1 {
		return false
	}
	_, ok := u.Types[0].(*types.TNull)
	return ok
}
