package diag

import (
	"fmt"
)

// Code is a compact, stable identifier for a typing-issue kind.
type Code uint16

const (
	UnknownCode Code = 0

	// Reconciliation findings (condition narrowing).
	ReconInfo                    Code = 1000
	ImpossibleCondition          Code = 1001
	RedundantCondition           Code = 1002
	ImpossibleTypeComparison     Code = 1003
	RedundantTypeComparison      Code = 1004
	ImpossibleNullTypeComparison Code = 1005
	ImpossibleKeyCheck           Code = 1006
	RedundantKeyCheck            Code = 1007
	ImpossibleNonnullEntryCheck  Code = 1008
	RedundantNonnullEntryCheck   Code = 1009
	RedundantIssetCheck          Code = 1010

	// Class-like validation findings.
	ClassInfo                   Code = 2000
	UnimplementedAbstractMethod Code = 2001
	InvalidExtend               Code = 2002
	InvalidImplement            Code = 2003
	MissingRequiredInterface    Code = 2004
	MissingTemplateParameter    Code = 2005
	ExcessTemplateParameter     Code = 2006
	InconsistentTemplate        Code = 2007
	InvalidTemplateParameter    Code = 2008
	IncompatiblePropertyType    Code = 2009
	OverriddenPropertyAccess    Code = 2010
	NameAlreadyInUse            Code = 2011
	DeprecatedClass             Code = 2012
	NonExistentClassLike        Code = 2013
	CircularReference           Code = 2014

	// Expression/statement findings.
	ExprInfo               Code = 3000
	MixedAssignment        Code = 3001
	InvalidReturnStatement Code = 3002

	// Driver findings.
	IOInfo          Code = 8000
	IOLoadFileError Code = 8001
	IOSnapshotError Code = 8002

	// Internal invariant violations surfaced as a single diagnostic.
	InternalError Code = 9001
)

var codeNames = map[Code]string{
	UnknownCode:                  "UnknownCode",
	ImpossibleCondition:          "ImpossibleCondition",
	RedundantCondition:           "RedundantCondition",
	ImpossibleTypeComparison:     "ImpossibleTypeComparison",
	RedundantTypeComparison:      "RedundantTypeComparison",
	ImpossibleNullTypeComparison: "ImpossibleNullTypeComparison",
	ImpossibleKeyCheck:           "ImpossibleKeyCheck",
	RedundantKeyCheck:            "RedundantKeyCheck",
	ImpossibleNonnullEntryCheck:  "ImpossibleNonnullEntryCheck",
	RedundantNonnullEntryCheck:   "RedundantNonnullEntryCheck",
	RedundantIssetCheck:          "RedundantIssetCheck",
	UnimplementedAbstractMethod:  "UnimplementedAbstractMethod",
	InvalidExtend:                "InvalidExtend",
	InvalidImplement:             "InvalidImplement",
	MissingRequiredInterface:     "MissingRequiredInterface",
	MissingTemplateParameter:     "MissingTemplateParameter",
	ExcessTemplateParameter:      "ExcessTemplateParameter",
	InconsistentTemplate:         "InconsistentTemplate",
	InvalidTemplateParameter:     "InvalidTemplateParameter",
	IncompatiblePropertyType:     "IncompatiblePropertyType",
	OverriddenPropertyAccess:     "OverriddenPropertyAccess",
	NameAlreadyInUse:             "NameAlreadyInUse",
	DeprecatedClass:              "DeprecatedClass",
	NonExistentClassLike:         "NonExistentClassLike",
	CircularReference:            "CircularReference",
	MixedAssignment:              "MixedAssignment",
	InvalidReturnStatement:       "InvalidReturnStatement",
	IOLoadFileError:              "IOLoadFileError",
	IOSnapshotError:              "IOSnapshotError",
	InternalError:                "InternalError",
}

var namesToCodes = func() map[string]Code {
	m := make(map[string]Code, len(codeNames))
	for c, n := range codeNames {
		m[n] = c
	}
	return m
}()

// String returns the stable name of the code. Unknown values render as
// ARG<number> so serialized reports stay parseable.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ARG%04d", uint16(c))
}

// CodeByName resolves the stable name back to a Code (used by config
// allow/deny lists and baselines).
func CodeByName(name string) (Code, bool) {
	c, ok := namesToCodes[name]
	return c, ok
}

// IsReconciliation reports whether the code belongs to the narrowing family.
func (c Code) IsReconciliation() bool {
	return c >= ReconInfo && c < ClassInfo
}

// IsClassLike reports whether the code belongs to the class-like validator.
func (c Code) IsClassLike() bool {
	return c >= ClassInfo && c < ExprInfo
}
