package kernel

const recRuleHash uint64 = 40

// RecRule is a single recursor ι-reduction rule, kept for wire-format
// fidelity (#RR lines / #REC's rule list) even though whnf does
// not execute recursor reduction (documented gap).
type RecRule struct {
	ctorName NameHandle
	numParam uint32
	val      ExprHandle
	hash     uint64
}

func (r RecRule) hashKey() uint64 { return r.hash }

func (r RecRule) equalTo(o RecRule) bool {
	return r.ctorName == o.ctorName && r.numParam == o.numParam && r.val == o.val
}

// MkRecRule interns a recursor rule.
func (e *Environment) MkRecRule(ctorName NameHandle, numParam uint32, val ExprHandle) RecRuleHandle {
	h := hash64(recRuleHash, uint64(ctorName), uint64(numParam), uint64(val))
	return RecRuleHandle(e.recRules.intern(RecRule{ctorName: ctorName, numParam: numParam, val: val, hash: h}))
}

// ReadRecRule returns the rule interned at h.
func (e *Environment) ReadRecRule(h RecRuleHandle) RecRule {
	return e.recRules.read(int(h))
}

type declarTag uint8

const (
	declAxiom declarTag = iota
	declQuot
	declOpaque
	declTheorem
	declDefinition
	declInductive
	declConstructor
	declRecursor
)

// DefHint mirrors the export format's #DEF reducibility hint token
// — parsed and retained for fidelity, not consulted by whnf.
type DefHint uint8

const (
	HintOpaque     DefHint = iota // "O"
	HintAbbrev                    // "A"
	HintRegular                   // "R n"
)

// Declar is the declaration sum type, keyed by Name in the
// environment's declaration table. Only Definition/Theorem/Opaque carry a
// value.
type Declar struct {
	tag     declarTag
	name    NameHandle
	uparams UParamsHandle
	ty      ExprHandle

	val    ExprHandle // Definition/Theorem/Opaque
	hasVal bool

	hint     DefHint // Definition
	hintN    uint32  // Definition, when hint == HintRegular

	numIndices    uint32       // Inductive
	allCtorNames  []NameHandle // Inductive

	numParams uint32     // Constructor
	numFields uint32     // Constructor
	parent    NameHandle // Constructor
}

// Uparams returns the declaration's universe parameter list handle.
func (d Declar) Uparams() UParamsHandle { return d.uparams }

// Ty returns the declaration's type.
func (d Declar) Ty() ExprHandle { return d.ty }

// Name returns the handle under which the declaration is registered.
func (d Declar) Name() NameHandle { return d.name }

// Val returns the declaration's value, if it has one (Definition, Theorem,
// Opaque).
func (d Declar) Val() (ExprHandle, bool) { return d.val, d.hasVal }

// AxiomDeclar builds an Axiom declaration.
func AxiomDeclar(name NameHandle, uparams UParamsHandle, ty ExprHandle) Declar {
	return Declar{tag: declAxiom, name: name, uparams: uparams, ty: ty}
}

// QuotDeclar builds a Quot (quotient-primitive) declaration.
func QuotDeclar(name NameHandle, uparams UParamsHandle, ty ExprHandle) Declar {
	return Declar{tag: declQuot, name: name, uparams: uparams, ty: ty}
}

// OpaqueDeclar builds an Opaque declaration.
func OpaqueDeclar(name NameHandle, uparams UParamsHandle, ty, val ExprHandle) Declar {
	return Declar{tag: declOpaque, name: name, uparams: uparams, ty: ty, val: val, hasVal: true}
}

// TheoremDeclar builds a Theorem declaration.
func TheoremDeclar(name NameHandle, uparams UParamsHandle, ty, val ExprHandle) Declar {
	return Declar{tag: declTheorem, name: name, uparams: uparams, ty: ty, val: val, hasVal: true}
}

// DefinitionDeclar builds a Definition declaration, retaining its
// reducibility hint.
func DefinitionDeclar(name NameHandle, uparams UParamsHandle, ty, val ExprHandle, hint DefHint, hintN uint32) Declar {
	return Declar{tag: declDefinition, name: name, uparams: uparams, ty: ty, val: val, hasVal: true, hint: hint, hintN: hintN}
}

// InductiveDeclar builds an Inductive declaration.
func InductiveDeclar(name NameHandle, uparams UParamsHandle, ty ExprHandle, numIndices uint32, allCtorNames []NameHandle) Declar {
	return Declar{tag: declInductive, name: name, uparams: uparams, ty: ty, numIndices: numIndices, allCtorNames: allCtorNames}
}

// ConstructorDeclar builds a Constructor declaration.
func ConstructorDeclar(name NameHandle, uparams UParamsHandle, ty ExprHandle, numParams, numFields uint32, parent NameHandle) Declar {
	return Declar{tag: declConstructor, name: name, uparams: uparams, ty: ty, numParams: numParams, numFields: numFields, parent: parent}
}

// RecursorDeclar builds a Recursor declaration.
func RecursorDeclar(name NameHandle, uparams UParamsHandle, ty ExprHandle) Declar {
	return Declar{tag: declRecursor, name: name, uparams: uparams, ty: ty}
}

// IsInductive reports whether d is an Inductive and, if so, its
// (allCtorNames, numIndices).
func (d Declar) IsInductive() (ctors []NameHandle, numIndices uint32, ok bool) {
	if d.tag != declInductive {
		return nil, 0, false
	}
	return d.allCtorNames, d.numIndices, true
}

// IsConstructor reports whether d is a Constructor and, if so, its
// (numParams, numFields, parent).
func (d Declar) IsConstructor() (numParams, numFields uint32, parent NameHandle, ok bool) {
	if d.tag != declConstructor {
		return 0, 0, 0, false
	}
	return d.numParams, d.numFields, d.parent, true
}
