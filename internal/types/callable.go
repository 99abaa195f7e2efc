package types

// CallableParam is one parameter of a callable signature.
type CallableParam struct {
	Type       *Union // nil when the signature leaves it untyped
	ByRef      bool
	IsVariadic bool
	HasDefault bool
}

func (p CallableParam) clone() CallableParam {
	c := p
	if p.Type != nil {
		c.Type = p.Type.Clone()
	}
	return c
}

// TCallable is a callable or closure signature.
type TCallable struct {
	Params    []CallableParam
	Return    *Union // nil when unknown
	Pure      bool
	Throws    bool
	IsClosure bool
}

func (*TCallable) AtomicKind() Kind { return KindCallable }
func (t *TCallable) Clone() Atomic {
	c := &TCallable{Pure: t.Pure, Throws: t.Throws, IsClosure: t.IsClosure}
	if len(t.Params) > 0 {
		c.Params = make([]CallableParam, len(t.Params))
		for i, p := range t.Params {
			c.Params[i] = p.clone()
		}
	}
	if t.Return != nil {
		c.Return = t.Return.Clone()
	}
	return c
}

// NewCallable is a bare `callable` with unknown signature.
func NewCallable() *TCallable { return &TCallable{} }

// NewClosure is a Closure with the given signature.
func NewClosure(params []CallableParam, ret *Union) *TCallable {
	return &TCallable{Params: params, Return: ret, IsClosure: true}
}
