package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv bundles together a handful of declarations shared by several
// scenario tests: a Type-valued Nat axiom, a Prop-valued singleton Unit
// inductive, and a generic two-field Pair structure over Nat.
type testEnv struct {
	e *Environment

	natName NameHandle
	natTy   ExprHandle

	unitName, unitCtorName NameHandle
	unitTy                 ExprHandle

	pairName, pairCtorName NameHandle
	pairTy                 ExprHandle
}

func newTestEnv() *testEnv {
	e := NewEnvironment()
	empty := e.MkUParams(nil)

	te := &testEnv{e: e}

	te.natName = e.MkStr(AnonName, "Nat")
	te.natTy = e.MkConst(te.natName, empty)
	e.RegisterDeclar(AxiomDeclar(te.natName, empty, e.Sort(e.Succ(e.Zero()))))

	te.unitName = e.MkStr(AnonName, "Unit")
	te.unitCtorName = e.MkStr(AnonName, "unit")
	te.unitTy = e.MkConst(te.unitName, empty)
	e.RegisterDeclar(InductiveDeclar(te.unitName, empty, e.Sort(e.Zero()), 0, []NameHandle{te.unitCtorName}))
	e.RegisterDeclar(ConstructorDeclar(te.unitCtorName, empty, te.unitTy, 0, 0, te.unitName))

	te.pairName = e.MkStr(AnonName, "Pair")
	te.pairCtorName = e.MkStr(AnonName, "mk")
	te.pairTy = e.MkConst(te.pairName, empty)
	mkTy := e.Pi(AnonName, te.natTy, e.Pi(AnonName, te.natTy, te.pairTy))
	e.RegisterDeclar(InductiveDeclar(te.pairName, empty, e.Sort(e.Succ(e.Zero())), 0, []NameHandle{te.pairCtorName}))
	e.RegisterDeclar(ConstructorDeclar(te.pairCtorName, empty, mkTy, 0, 2, te.pairName))

	return te
}

// S1: an Axiom whose type is Sort(0) (Prop) checks with no mismatch.
func TestScenarioAxiomProp(t *testing.T) {
	e := NewEnvironment()
	empty := e.MkUParams(nil)
	name := e.MkStr(AnonName, "Foo")
	e.RegisterDeclar(AxiomDeclar(name, empty, e.Sort(e.Zero())))

	mismatches := e.CheckAll()
	assert.Empty(t, mismatches, "Axiom Foo : Prop should check with no mismatches")
}

// S2: a universe-polymorphic identity definition checks with no mismatch.
func TestScenarioPolymorphicIdentity(t *testing.T) {
	e := NewEnvironment()
	uName := e.MkStr(AnonName, "u")
	u := e.Param(uName)
	uparams := e.MkUParams([]UniverseHandle{u})
	alphaName := e.MkStr(AnonName, "alpha")
	xName := e.MkStr(AnonName, "x")

	// Pi(alpha : Sort(u), Pi(x : alpha, alpha))
	ty := e.Pi(alphaName, e.Sort(u), e.Pi(xName, e.BVar(0), e.BVar(1)))
	// Lam(alpha, Sort(u), Lam(x, alpha, x))
	val := e.Lam(alphaName, e.Sort(u), e.Lam(xName, e.BVar(0), e.BVar(0)))

	idName := e.MkStr(AnonName, "id")
	e.RegisterDeclar(DefinitionDeclar(idName, uparams, ty, val, HintRegular, 0))

	m := e.CheckOne(idName, uparams, ty, val, true)
	assert.Nil(t, m, "polymorphic identity should check with no mismatch")
}

// S3: two distinct opaque inhabitants of a Prop-valued singleton inductive
// are definitionally equal by proof irrelevance.
func TestScenarioUnitProofIrrelevance(t *testing.T) {
	te := newTestEnv()
	e := te.e
	empty := e.MkUParams(nil)

	aName := e.MkStr(AnonName, "a")
	bName := e.MkStr(AnonName, "b")
	e.RegisterDeclar(AxiomDeclar(aName, empty, te.unitTy))
	e.RegisterDeclar(AxiomDeclar(bName, empty, te.unitTy))

	a := e.MkConst(aName, empty)
	b := e.MkConst(bName, empty)
	assert.True(t, e.DefEq(a, b), "two inhabitants of a Prop-valued singleton type should be def_eq")
}

// S4: structure-eta — a value r of structure type Pair is def_eq to the
// constructor application rebuilt from its own projections.
func TestScenarioPairStructureEta(t *testing.T) {
	te := newTestEnv()
	e := te.e
	empty := e.MkUParams(nil)

	r := e.FreeVar(te.pairTy)
	mk := e.MkConst(te.pairCtorName, empty)
	fst := e.Proj(te.pairName, 0, r)
	snd := e.Proj(te.pairName, 1, r)
	rebuilt := e.App(e.App(mk, fst), snd)

	assert.True(t, e.DefEq(r, rebuilt), "a structure value should be def_eq to mk applied to its own projections")

	// Ordinary congruence: mk x y and mk x y' are def_eq whenever y def_eq y'.
	xName := e.MkStr(AnonName, "x")
	yName := e.MkStr(AnonName, "y")
	e.RegisterDeclar(AxiomDeclar(xName, empty, te.natTy))
	e.RegisterDeclar(AxiomDeclar(yName, empty, te.natTy))
	x := e.MkConst(xName, empty)
	y := e.MkConst(yName, empty)
	yPrimeName := e.MkStr(AnonName, "y'")
	e.RegisterDeclar(DefinitionDeclar(yPrimeName, empty, te.natTy, y, HintRegular, 0)) // y' := y
	yPrime := e.MkConst(yPrimeName, empty)
	p := e.App(e.App(mk, x), y)
	q := e.App(e.App(mk, x), yPrime)
	assert.True(t, e.DefEq(p, q), "mk x y should be def_eq to mk x y' when y' unfolds to y")
}

// S5: two proofs of the same proposition are def_eq by proof irrelevance.
func TestScenarioProofIrrelevance(t *testing.T) {
	e := NewEnvironment()
	empty := e.MkUParams(nil)

	pName := e.MkStr(AnonName, "P")
	e.RegisterDeclar(AxiomDeclar(pName, empty, e.Sort(e.Zero())))
	p := e.MkConst(pName, empty)

	h1Name := e.MkStr(AnonName, "h1")
	h2Name := e.MkStr(AnonName, "h2")
	e.RegisterDeclar(AxiomDeclar(h1Name, empty, p))
	e.RegisterDeclar(AxiomDeclar(h2Name, empty, p))

	h1 := e.MkConst(h1Name, empty)
	h2 := e.MkConst(h2Name, empty)
	assert.True(t, e.DefEq(h1, h2), "two proofs of the same proposition should be def_eq")
}

// S6 (malformed input) is exercised in internal/parser, where the fatal
// abort actually originates.

// Universal property 5: whnf is stable under repeated calls.
func TestWhnfConfluence(t *testing.T) {
	te := newTestEnv()
	e := te.e
	empty := e.MkUParams(nil)

	xName := e.MkStr(AnonName, "x")
	e.RegisterDeclar(AxiomDeclar(xName, empty, te.natTy))
	x := e.MkConst(xName, empty)

	letExpr := e.Let(AnonName, te.natTy, x, e.BVar(0))
	first := e.Whnf(letExpr)
	second := e.Whnf(letExpr)
	require.Equal(t, first, second)
	assert.Equal(t, x, first, "whnf of a trivial let should reduce to its value")
}

// Universal property 6: def_eq is reflexive for every term.
func TestReflexivityOfDefEq(t *testing.T) {
	te := newTestEnv()
	e := te.e

	testCases := []ExprHandle{
		e.Sort(e.Zero()),
		te.natTy,
		te.unitTy,
		te.pairTy,
		e.FreeVar(te.natTy),
		e.Lam(AnonName, te.natTy, e.BVar(0)),
		e.Pi(AnonName, te.natTy, te.natTy),
	}
	for _, tc := range testCases {
		assert.True(t, e.DefEq(tc, tc), "def_eq(%v, %v) should hold", tc, tc)
	}
}

// Universal property 7: infer(Sort(u)) == Sort(Succ(u)).
func TestSortOfSort(t *testing.T) {
	e := NewEnvironment()
	got := e.Infer(e.Sort(e.Zero()))
	want := e.Sort(e.Succ(e.Zero()))
	assert.Equal(t, want, got)
}

// Universal property 8: infer(App(Lam(n, T, body), a)) def_eq
// infer(instantiate(body, a, 0)).
func TestDeBruijnCorrectness(t *testing.T) {
	te := newTestEnv()
	e := te.e
	empty := e.MkUParams(nil)

	aName := e.MkStr(AnonName, "a")
	e.RegisterDeclar(AxiomDeclar(aName, empty, te.natTy))
	a := e.MkConst(aName, empty)

	lam := e.Lam(AnonName, te.natTy, e.BVar(0))
	app := e.App(lam, a)

	lhs := e.Infer(app)
	rhs := e.Infer(e.Instantiate(e.BVar(0), a, 0))
	assert.True(t, e.DefEq(lhs, rhs))
}
