package kernel

import "math/big"

const (
	bvarHash   uint64 = 20
	sortHash   uint64 = 21
	constHash  uint64 = 22
	appHash    uint64 = 23
	lamHash    uint64 = 24
	piHash     uint64 = 25
	letHash    uint64 = 26
	projHash   uint64 = 27
	natLitHash uint64 = 28
	strLitHash uint64 = 29
	fvarHash   uint64 = 30
)

type exprTag uint8

const (
	exprBVar exprTag = iota
	exprFVar
	exprSort
	exprConst
	exprApp
	exprLam
	exprPi
	exprLet
	exprProj
	exprNatLit
	exprStrLit
)

// Expr is the De Bruijn-indexed term sum type. A single struct
// with a tag carries every variant; which fields are meaningful depends on
// tag, matching the "tagged variants, not polymorphism" guidance for a
// closed sum.
type Expr struct {
	tag exprTag

	bvarIdx uint32 // BVar
	fvarID  uint32 // FVar identity (global counter, NOT content)
	fvarTy  ExprHandle

	sortU UniverseHandle // Sort

	name    NameHandle    // Const/Lam/Pi/Let binder hint/Proj struct name
	uparams UParamsHandle // Const

	fn, arg ExprHandle // App

	ty, body ExprHandle // Lam/Pi/Let
	val      ExprHandle // Let

	of       ExprHandle // Proj
	fieldIdx uint32     // Proj

	nat *big.Int // NatLit
	str string   // StrLit

	hash uint64
}

func (x Expr) hashKey() uint64 { return x.hash }

func (x Expr) equalTo(o Expr) bool {
	if x.tag != o.tag {
		return false
	}
	switch x.tag {
	case exprBVar:
		return x.bvarIdx == o.bvarIdx
	case exprFVar:
		return x.fvarID == o.fvarID && x.fvarTy == o.fvarTy
	case exprSort:
		return x.sortU == o.sortU
	case exprConst:
		return x.name == o.name && x.uparams == o.uparams
	case exprApp:
		return x.fn == o.fn && x.arg == o.arg
	case exprLam, exprPi:
		return x.name == o.name && x.ty == o.ty && x.body == o.body
	case exprLet:
		return x.name == o.name && x.ty == o.ty && x.val == o.val && x.body == o.body
	case exprProj:
		return x.name == o.name && x.fieldIdx == o.fieldIdx && x.of == o.of
	case exprNatLit:
		return x.nat.Cmp(o.nat) == 0
	case exprStrLit:
		return x.str == o.str
	default:
		return false
	}
}

func (e *Environment) intern(x Expr) ExprHandle {
	return ExprHandle(e.exprs.intern(x))
}

func (e *Environment) BVar(idx uint32) ExprHandle {
	return e.intern(Expr{tag: exprBVar, bvarIdx: idx, hash: hash64(bvarHash, uint64(idx))})
}

// FreeVar allocates a fresh, globally-unique FVar of the given type. FVar
// identity comes from the environment's monotonic counter, never from
// content.
func (e *Environment) FreeVar(ty ExprHandle) ExprHandle {
	id := e.fvarCounter
	e.fvarCounter++
	return e.intern(Expr{tag: exprFVar, fvarID: id, fvarTy: ty, hash: hash64(fvarHash, uint64(id), uint64(ty))})
}

func (e *Environment) Sort(u UniverseHandle) ExprHandle {
	return e.intern(Expr{tag: exprSort, sortU: u, hash: hash64(sortHash, uint64(u))})
}

func (e *Environment) MkConst(name NameHandle, us UParamsHandle) ExprHandle {
	return e.intern(Expr{tag: exprConst, name: name, uparams: us, hash: hash64(constHash, uint64(name), uint64(us))})
}

func (e *Environment) App(fn, arg ExprHandle) ExprHandle {
	return e.intern(Expr{tag: exprApp, fn: fn, arg: arg, hash: hash64(appHash, uint64(fn), uint64(arg))})
}

func (e *Environment) Lam(name NameHandle, ty, body ExprHandle) ExprHandle {
	return e.intern(Expr{tag: exprLam, name: name, ty: ty, body: body, hash: hash64(lamHash, uint64(name), uint64(ty), uint64(body))})
}

func (e *Environment) Pi(name NameHandle, ty, body ExprHandle) ExprHandle {
	return e.intern(Expr{tag: exprPi, name: name, ty: ty, body: body, hash: hash64(piHash, uint64(name), uint64(ty), uint64(body))})
}

func (e *Environment) Let(name NameHandle, ty, val, body ExprHandle) ExprHandle {
	return e.intern(Expr{tag: exprLet, name: name, ty: ty, val: val, body: body, hash: hash64(letHash, uint64(name), uint64(ty), uint64(val), uint64(body))})
}

func (e *Environment) Proj(structName NameHandle, fieldIdx uint32, of ExprHandle) ExprHandle {
	return e.intern(Expr{tag: exprProj, name: structName, fieldIdx: fieldIdx, of: of, hash: hash64(projHash, uint64(structName), uint64(fieldIdx), uint64(of))})
}

func (e *Environment) NatLit(v *big.Int) ExprHandle {
	h := newHasher(natLitHash).writeString(v.String()).sum()
	return e.intern(Expr{tag: exprNatLit, nat: v, hash: h})
}

func (e *Environment) StrLit(v string) ExprHandle {
	h := newHasher(strLitHash).writeString(v).sum()
	return e.intern(Expr{tag: exprStrLit, str: v, hash: h})
}

// ReadExpr returns the exact Expr interned at h.
func (e *Environment) ReadExpr(h ExprHandle) Expr {
	return e.exprs.read(int(h))
}

// Instantiate replaces BVar(depth) by v, shifts BVar(k>depth) down by one,
// and recurses under binders bumping depth. FVar/Sort/Const/
// literals pass through unchanged.
func (e *Environment) Instantiate(expr, v ExprHandle, depth uint32) ExprHandle {
	x := e.ReadExpr(expr)
	switch x.tag {
	case exprBVar:
		switch {
		case x.bvarIdx == depth:
			return v
		case x.bvarIdx > depth:
			return e.BVar(x.bvarIdx - 1)
		default:
			return expr
		}
	case exprFVar, exprSort, exprConst, exprNatLit, exprStrLit:
		return expr
	case exprApp:
		return e.App(e.Instantiate(x.fn, v, depth), e.Instantiate(x.arg, v, depth))
	case exprLam:
		return e.Lam(x.name, e.Instantiate(x.ty, v, depth), e.Instantiate(x.body, v, depth+1))
	case exprPi:
		return e.Pi(x.name, e.Instantiate(x.ty, v, depth), e.Instantiate(x.body, v, depth+1))
	case exprLet:
		return e.Let(x.name, e.Instantiate(x.ty, v, depth), e.Instantiate(x.val, v, depth), e.Instantiate(x.body, v, depth+1))
	case exprProj:
		return e.Proj(x.name, x.fieldIdx, e.Instantiate(x.of, v, depth))
	default:
		invariantf("unreachable expr tag in Instantiate")
		return 0
	}
}

// Abstract is the dual of Instantiate: e == fv becomes BVar(depth); any
// BVar(k>=depth) shifts up by one; recurses under binders bumping depth
//.
func (e *Environment) Abstract(expr, fv ExprHandle, depth uint32) ExprHandle {
	x := e.ReadExpr(expr)
	switch x.tag {
	case exprFVar:
		if expr == fv {
			return e.BVar(depth)
		}
		return expr
	case exprBVar:
		if x.bvarIdx >= depth {
			return e.BVar(x.bvarIdx + 1)
		}
		return expr
	case exprSort, exprConst, exprNatLit, exprStrLit:
		return expr
	case exprApp:
		return e.App(e.Abstract(x.fn, fv, depth), e.Abstract(x.arg, fv, depth))
	case exprLam:
		return e.Lam(x.name, e.Abstract(x.ty, fv, depth), e.Abstract(x.body, fv, depth+1))
	case exprPi:
		return e.Pi(x.name, e.Abstract(x.ty, fv, depth), e.Abstract(x.body, fv, depth+1))
	case exprLet:
		return e.Let(x.name, e.Abstract(x.ty, fv, depth), e.Abstract(x.val, fv, depth), e.Abstract(x.body, fv, depth+1))
	case exprProj:
		return e.Proj(x.name, x.fieldIdx, e.Abstract(x.of, fv, depth))
	default:
		invariantf("unreachable expr tag in Abstract")
		return 0
	}
}

// SubstExprUniverses recurses structurally over expr, substituting
// universe parameters in Sort/Const children. Hitting an FVar
// is a logic error: FVars only appear as kernel-local opened binders, never
// inside a declaration's stored type/value.
func (e *Environment) SubstExprUniverses(expr ExprHandle, from, to UParamsHandle) ExprHandle {
	x := e.ReadExpr(expr)
	switch x.tag {
	case exprBVar, exprNatLit, exprStrLit:
		return expr
	case exprFVar:
		invariantf("subst_expr_universes hit a free variable")
		return 0
	case exprSort:
		return e.Sort(e.SubstUniverse(x.sortU, from, to))
	case exprConst:
		return e.MkConst(x.name, e.SubstUniverses(x.uparams, from, to))
	case exprApp:
		return e.App(e.SubstExprUniverses(x.fn, from, to), e.SubstExprUniverses(x.arg, from, to))
	case exprLam:
		return e.Lam(x.name, e.SubstExprUniverses(x.ty, from, to), e.SubstExprUniverses(x.body, from, to))
	case exprPi:
		return e.Pi(x.name, e.SubstExprUniverses(x.ty, from, to), e.SubstExprUniverses(x.body, from, to))
	case exprLet:
		return e.Let(x.name, e.SubstExprUniverses(x.ty, from, to), e.SubstExprUniverses(x.val, from, to), e.SubstExprUniverses(x.body, from, to))
	case exprProj:
		return e.Proj(x.name, x.fieldIdx, e.SubstExprUniverses(x.of, from, to))
	default:
		invariantf("unreachable expr tag in SubstExprUniverses")
		return 0
	}
}
