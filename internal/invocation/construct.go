package invocation

import (
	"argus/internal/types"
)

// Construct models a language construct as a callable: a fixed parameter
// shape and a known return.
type Construct struct {
	Name       string
	Parameters []Parameter
	Return     *types.Union
	Variadic   bool
}

// Built-in construct signatures. echo takes any number of stringable
// scalars and returns nothing; print takes one string and always returns
// int(1); exit takes an int status or a string message and never returns.
var (
	EchoConstruct = &Construct{
		Name: "echo",
		Parameters: []Parameter{{
			Type: types.NewUnion(
				&types.TString{},
				&types.TInt{},
				&types.TFloat{},
				&types.TBool{},
				&types.TNull{},
			),
			Variadic: true,
		}},
		Return:   types.NewUnion(&types.TVoid{}),
		Variadic: true,
	}

	PrintConstruct = &Construct{
		Name: "print",
		Parameters: []Parameter{{
			Type: types.NewUnion(&types.TString{}),
		}},
		Return: types.NewUnion(types.NewIntLiteral(1)),
	}

	ExitConstruct = &Construct{
		Name: "exit",
		Parameters: []Parameter{{
			Type:       types.NewUnion(&types.TInt{}, &types.TString{}),
			HasDefault: true,
		}},
		Return: types.Never(),
	}
)

// ConstructByName resolves a language construct.
func ConstructByName(name string) (*Construct, bool) {
	switch name {
	case "echo":
		return EchoConstruct, true
	case "print":
		return PrintConstruct, true
	case "exit", "die":
		return ExitConstruct, true
	}
	return nil, false
}
