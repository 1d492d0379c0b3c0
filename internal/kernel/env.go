package kernel

// Environment owns the five hash-consed interning stores, the two
// memoization maps, and the declaration table. It is built once
// by the export-file parser and then read-mostly by checking: infers/whnfs
// grow, and the kernel may allocate fresh intermediate terms into the other
// stores while checking, but nothing already interned is ever mutated or
// removed.
type Environment struct {
	names        store[Name]
	universes    store[Universe]
	exprs        store[Expr]
	uparamsStore store[UParams]
	recRules     store[RecRule]

	declars     map[NameHandle]Declar
	declarOrder []NameHandle // insertion order, for check_all's snapshot

	infers map[ExprHandle]ExprHandle
	whnfs  map[ExprHandle]ExprHandle

	fvarCounter uint32
}

// NewEnvironment returns a freshly seeded environment: handle 0 of the Name
// store is Anon, handle 0 of the Universe store is Zero.
func NewEnvironment() *Environment {
	e := &Environment{
		names:        newStore[Name](),
		universes:    newStore[Universe](),
		exprs:        newStore[Expr](),
		uparamsStore: newStore[UParams](),
		recRules:     newStore[RecRule](),
		declars:      make(map[NameHandle]Declar),
		infers:       make(map[ExprHandle]ExprHandle),
		whnfs:        make(map[ExprHandle]ExprHandle),
	}
	e.names.intern(Name{tag: nameAnon, hash: anonHash})
	e.universes.intern(Universe{tag: univZero, hash: zeroHash})
	return e
}

// RegisterDeclar adds d to the declaration table under d.Name(), recording
// first-seen insertion order for check_all's iteration snapshot.
// Declar.name() is always the key it's registered under.
func (e *Environment) RegisterDeclar(d Declar) {
	if _, exists := e.declars[d.name]; !exists {
		e.declarOrder = append(e.declarOrder, d.name)
	}
	e.declars[d.name] = d
}

// Declar looks up a registered declaration by name. A missing name is a
// kernel invariant violation: the parser must never hand the kernel a Const
// referencing an unregistered declaration.
func (e *Environment) Declar(name NameHandle) Declar {
	d, ok := e.declars[name]
	if !ok {
		invariantf("unknown declaration referenced")
	}
	return d
}

// LookupDeclar is the non-panicking counterpart, used by the parser to
// validate cross-references (e.g. a Constructor's parent, a Recursor's
// inductives) before they ever reach the kernel.
func (e *Environment) LookupDeclar(name NameHandle) (Declar, bool) {
	d, ok := e.declars[name]
	return d, ok
}

// NamesLen, UniversesLen, ExprsLen, UParamsLen and RecRulesLen report each
// store's current size — used by the parser to assert that a
// primitive-allocation line's declared index matches the store's
// append-only growth.
func (e *Environment) NamesLen() int     { return e.names.len() }
func (e *Environment) UniversesLen() int { return e.universes.len() }
func (e *Environment) ExprsLen() int     { return e.exprs.len() }
func (e *Environment) UParamsLen() int   { return e.uparamsStore.len() }
func (e *Environment) RecRulesLen() int  { return e.recRules.len() }

// DeclarSnapshot returns declarations in insertion order, a point-in-time
// copy independent of further RegisterDeclar calls. check_all iterates a
// snapshot taken before checking begins, since checking may itself
// register further intermediate declarations that must not re-enter the
// outer loop.
func (e *Environment) DeclarSnapshot() []Declar {
	out := make([]Declar, len(e.declarOrder))
	for i, n := range e.declarOrder {
		out[i] = e.declars[n]
	}
	return out
}
