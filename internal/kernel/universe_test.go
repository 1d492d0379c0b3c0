package kernel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimplifyIdempotent(t *testing.T) {
	e := NewEnvironment()
	p := e.MkStr(AnonName, "u")
	u := e.Param(p)

	testCases := []UniverseHandle{
		e.Zero(),
		e.Succ(e.Zero()),
		e.Max(u, e.Succ(u)),
		e.IMax(e.Succ(e.Zero()), u),
		e.Max(e.Succ(e.Zero()), e.Succ(e.Succ(e.Zero()))),
	}

	for _, tc := range testCases {
		once := e.Simplify(tc)
		twice := e.Simplify(once)
		if once != twice {
			t.Errorf("Simplify(%v) = %v, Simplify of that = %v, want idempotent", tc, once, twice)
		}
	}
}

func TestLeqReflexive(t *testing.T) {
	e := NewEnvironment()
	p := e.MkStr(AnonName, "u")
	u := e.Param(p)

	testCases := []UniverseHandle{
		e.Zero(),
		e.Succ(e.Zero()),
		u,
		e.Max(u, e.Succ(e.Zero())),
		e.IMax(u, e.Succ(u)),
	}

	for _, tc := range testCases {
		if !e.Leq(tc, tc, 0) {
			t.Errorf("Leq(%v, %v, 0) = false, want true", tc, tc)
		}
	}
}

func TestLeqZeroIsBottom(t *testing.T) {
	e := NewEnvironment()
	p := e.MkStr(AnonName, "u")
	u := e.Param(p)

	if !e.Leq(e.Zero(), u, 0) {
		t.Error("Zero <= u should hold for any universe u")
	}
	if !e.Leq(e.Zero(), e.Succ(e.Zero()), 0) {
		t.Error("Zero <= Succ(Zero) should hold")
	}
}

func TestLeqSuccMonotone(t *testing.T) {
	e := NewEnvironment()
	zero := e.Zero()
	one := e.Succ(zero)
	two := e.Succ(one)

	if !e.Leq(zero, one, 0) {
		t.Error("0 <= 1 should hold")
	}
	if e.Leq(two, zero, 0) {
		t.Error("2 <= 0 should not hold")
	}
	if e.Leq(zero, zero, -1) {
		t.Error("0 <= 0 - 1 should not hold")
	}
}

func TestContainsParamOwnParam(t *testing.T) {
	e := NewEnvironment()
	pName := e.MkStr(AnonName, "u")
	qName := e.MkStr(AnonName, "v")
	p := e.Param(pName)
	q := e.Param(qName)
	ups := e.MkUParams([]UniverseHandle{p})

	if !e.ContainsParam(p, ups) {
		t.Error("ContainsParam(p, [p]) should be true")
	}
	if e.ContainsParam(q, ups) {
		t.Error("ContainsParam(q, [p]) should be false")
	}
	if !e.ContainsParam(e.Max(p, e.Zero()), ups) {
		t.Error("ContainsParam(Max(p, Zero), [p]) should be true")
	}
	if e.ContainsParam(e.Max(p, q), ups) {
		t.Error("ContainsParam(Max(p, q), [p]) should be false")
	}
}

func TestSubstUniverseParallel(t *testing.T) {
	e := NewEnvironment()
	pName := e.MkStr(AnonName, "u")
	qName := e.MkStr(AnonName, "v")
	p := e.Param(pName)
	q := e.Param(qName)
	from := e.MkUParams([]UniverseHandle{p, q})
	to := e.MkUParams([]UniverseHandle{e.Zero(), e.Succ(e.Zero())})

	got := e.SubstUniverse(e.Max(p, q), from, to)
	want := e.Max(e.Zero(), e.Succ(e.Zero()))
	if got != want {
		t.Errorf("SubstUniverse(Max(p,q)) = %v, want %v", got, want)
	}
}

// TestSubstUniversesSlice checks SubstUniverses against the whole
// resulting handle sequence at once, rather than element by element.
func TestSubstUniversesSlice(t *testing.T) {
	e := NewEnvironment()
	pName := e.MkStr(AnonName, "u")
	qName := e.MkStr(AnonName, "v")
	p := e.Param(pName)
	q := e.Param(qName)
	from := e.MkUParams([]UniverseHandle{p, q})
	to := e.MkUParams([]UniverseHandle{e.Zero(), e.Succ(e.Zero())})

	us := e.MkUParams([]UniverseHandle{p, e.Max(p, q), q})
	got := e.ReadUParams(e.SubstUniverses(us, from, to))
	want := []UniverseHandle{
		e.Zero(),
		e.Max(e.Zero(), e.Succ(e.Zero())),
		e.Succ(e.Zero()),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SubstUniverses slice mismatch (-want +got):\n%s", diff)
	}
}

func TestLeqMany(t *testing.T) {
	e := NewEnvironment()
	p := e.Param(e.MkStr(AnonName, "u"))
	xs := e.MkUParams([]UniverseHandle{e.Zero(), p})
	ys := e.MkUParams([]UniverseHandle{e.Zero(), p})
	zs := e.MkUParams([]UniverseHandle{e.Succ(e.Zero()), p})

	if !e.LeqMany(xs, ys) {
		t.Error("LeqMany should hold between identical sequences")
	}
	if e.LeqMany(xs, zs) {
		t.Error("LeqMany should not hold when a component disagrees")
	}
}
