package kernel

// DefEq decides definitional equality between x and y: a
// handful of structural/tagged cases, unit-like and structure-η special
// cases, proof irrelevance, and a reduction fallback. Case order matters —
// the first case whose pair of tags matches wins, mirroring the shape of
// the rest of the kernel's ordered dispatch.
func (e *Environment) DefEq(x, y ExprHandle) bool {
	if x == y {
		return true
	}

	xv := e.ReadExpr(x)
	yv := e.ReadExpr(y)

	switch {
	case xv.tag == exprBVar || yv.tag == exprBVar:
		invariantf("def_eq hit a bound variable")

	case xv.tag == exprFVar && yv.tag == exprFVar:
		return xv.fvarID == yv.fvarID

	case xv.tag == exprSort && yv.tag == exprSort:
		return e.Leq(xv.sortU, yv.sortU, 0) && e.Leq(yv.sortU, xv.sortU, 0)

	case xv.tag == exprConst && yv.tag == exprConst && xv.name == yv.name:
		return e.LeqMany(xv.uparams, yv.uparams)

	case xv.tag == exprConst && yv.tag == exprConst:
		if e.unitLike(x, y) || e.unitLike(y, x) {
			return true
		}

	case xv.tag == exprApp && yv.tag == exprApp:
		if e.DefEq(xv.fn, yv.fn) {
			return e.DefEq(xv.arg, yv.arg)
		}

	case (xv.tag == exprLam && yv.tag == exprLam) || (xv.tag == exprPi && yv.tag == exprPi):
		if e.DefEq(xv.ty, yv.ty) {
			free := e.FreeVar(xv.ty)
			a := e.Instantiate(xv.body, free, 0)
			b := e.Instantiate(yv.body, free, 0)
			return e.DefEq(a, b)
		}

	case xv.tag == exprLet && yv.tag == exprLet:
		if e.DefEq(xv.val, yv.val) {
			x1 := e.Instantiate(xv.body, xv.val, 0)
			y1 := e.Instantiate(yv.body, yv.val, 0)
			return e.DefEq(x1, y1)
		}

	case xv.tag == exprProj && yv.tag == exprProj:
		return xv.name == yv.name && xv.fieldIdx == yv.fieldIdx && e.DefEq(xv.of, yv.of)

	case xv.tag == exprLam:
		if lam, ok := e.etaLambdaAgainst(y); ok {
			return e.DefEq(x, lam)
		}

	case yv.tag == exprLam:
		if lam, ok := e.etaLambdaAgainst(x); ok {
			return e.DefEq(lam, y)
		}

	case xv.tag == exprApp:
		if e.defEqStruct(y, x) {
			return true
		}

	case yv.tag == exprApp:
		if e.defEqStruct(x, y) {
			return true
		}
	}

	if e.proofIrrelevant(x, y) || e.proofIrrelevant(y, x) {
		return true
	}

	wx := e.Whnf(x)
	wy := e.Whnf(y)
	if wx != x || wy != y {
		return e.DefEq(wx, wy)
	}
	return false
}

// etaLambdaAgainst infers other's type and, if it whnf-reduces to a Pi,
// builds `(fun v : A => v) other` — the identity lambda over that Pi's
// domain A, applied to other — to compare against a Lambda on the opposite
// side.
func (e *Environment) etaLambdaAgainst(other ExprHandle) (ExprHandle, bool) {
	ty := e.Whnf(e.Infer(other))
	tv := e.ReadExpr(ty)
	if tv.tag != exprPi {
		return 0, false
	}
	v := e.BVar(0)
	lam := e.Lam(tv.name, tv.ty, v)
	return e.App(lam, other), true
}

// unitLike reports whether x is a Const naming a one-constructor, zero-index
// inductive whose type is def_eq to y's type and whose sole constructor
// declares as many universe parameters as x carries universe arguments —
// used when comparing two Consts of different inductives that both happen
// to be unit types.
func (e *Environment) unitLike(x, y ExprHandle) bool {
	xv := e.ReadExpr(x)
	if xv.tag != exprConst {
		return false
	}
	ctors, numIndices, ok := e.Declar(xv.name).IsInductive()
	if !ok || len(ctors) != 1 || numIndices != 0 {
		return false
	}
	if !e.DefEq(e.Infer(x), e.Infer(y)) {
		return false
	}
	ctorUparams, ok := e.declarUparams(ctors[0])
	if !ok {
		return false
	}
	return len(e.ReadUParams(xv.uparams)) == len(e.ReadUParams(ctorUparams))
}

// declarUparams returns name's Uparams handle if it is registered as a
// Constructor.
func (e *Environment) declarUparams(name NameHandle) (UParamsHandle, bool) {
	d, ok := e.LookupDeclar(name)
	if !ok {
		return 0, false
	}
	if _, _, _, isCtor := d.IsConstructor(); !isCtor {
		return 0, false
	}
	return d.Uparams(), true
}

// proofIrrelevant reports whether x and y both have Prop-valued types that
// are themselves definitionally equal: any two proofs of the
// same proposition are interchangeable.
func (e *Environment) proofIrrelevant(x, y ExprHandle) bool {
	infX := e.Infer(x)
	infY := e.Infer(y)
	if e.IsSort(infX) != e.Zero() {
		return false
	}
	if e.IsSort(infY) != e.Zero() {
		return false
	}
	return e.DefEq(infX, infY)
}

// defEqStruct compares x against y's structure literal: y must spine down
// to a Const naming the sole constructor of a one-constructor, zero-index
// inductive, fully applied; x is then compared field-by-field against
// projections out of itself (structure-η).
func (e *Environment) defEqStruct(x, y ExprHandle) bool {
	head, args := e.spine(y)
	hv := e.ReadExpr(head)
	if hv.tag != exprConst {
		return false
	}
	numParams, numFields, parent, ok := e.Declar(hv.name).IsConstructor()
	if !ok {
		return false
	}
	ctors, numIndices, ok := e.Declar(parent).IsInductive()
	if !ok || len(ctors) != 1 || numIndices != 0 {
		return false
	}
	if uint32(len(args)) != numParams+numFields {
		return false
	}
	if !e.DefEq(e.Infer(x), e.Infer(y)) {
		return false
	}
	for i := uint32(0); i < numFields; i++ {
		proj := e.Proj(parent, numParams+i, x)
		if !e.DefEq(proj, args[numParams+i]) {
			return false
		}
	}
	return true
}
