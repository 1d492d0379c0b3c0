package kernel

// Infer computes e's type, memoized per expression handle. A
// BVar reaching infer, or any of the shape assertions below failing, is a
// kernel invariant violation: by the time a term reaches infer it is
// expected to already be locally closed and well-scoped.
func (e *Environment) Infer(expr ExprHandle) ExprHandle {
	if out, ok := e.infers[expr]; ok {
		return out
	}

	x := e.ReadExpr(expr)
	var out ExprHandle
	switch x.tag {
	case exprBVar:
		invariantf("infer hit a bound variable")

	case exprFVar:
		out = x.fvarTy

	case exprNatLit:
		out = e.MkConst(e.MkStr(AnonName, "Nat"), e.MkUParams(nil))

	case exprStrLit:
		out = e.MkConst(e.MkStr(AnonName, "String"), e.MkUParams(nil))

	case exprSort:
		out = e.Sort(e.Succ(x.sortU))

	case exprConst:
		d := e.Declar(x.name)
		if d.Uparams() == x.uparams {
			e.infers[expr] = d.Ty()
			return d.Ty()
		}
		out = e.SubstExprUniverses(d.Ty(), d.Uparams(), x.uparams)

	case exprLet:
		e.IsSort(x.ty)
		v := e.Infer(x.val)
		if !e.DefEq(x.ty, v) {
			invariantf("let-bound value's inferred type does not match its annotation")
		}
		out = e.Infer(e.Instantiate(x.body, x.val, 0))

	case exprPi:
		l := e.IsSort(x.ty)
		free := e.FreeVar(x.ty)
		b := e.Instantiate(x.body, free, 0)
		r := e.IsSort(b)
		out = e.Sort(e.IMax(l, r))

	case exprLam:
		e.IsSort(x.ty)
		free := e.FreeVar(x.ty)
		body := e.Instantiate(x.body, free, 0)
		inf := e.Infer(body)
		abstracted := e.Abstract(inf, free, 0)
		out = e.Pi(x.name, x.ty, abstracted)

	case exprApp:
		fnTy := e.Whnf(e.Infer(x.fn))
		fv := e.ReadExpr(fnTy)
		if fv.tag != exprPi {
			invariantf("application head does not infer to a Pi type")
		}
		a := e.Infer(x.arg)
		if !e.DefEq(fv.ty, a) {
			invariantf("application argument type mismatch")
		}
		out = e.Instantiate(fv.body, x.arg, 0)

	case exprProj:
		out = e.inferProj(x.name, x.fieldIdx, x.of)

	default:
		invariantf("unreachable expr tag in Infer")
	}

	e.infers[expr] = out
	return out
}

// inferProj computes a projection's type by unwinding the target's
// constructor type across its parameters and the preceding fields.
func (e *Environment) inferProj(structName NameHandle, fieldIdx uint32, of ExprHandle) ExprHandle {
	s := e.Whnf(e.Infer(of))
	head, args := e.spine(s)

	hv := e.ReadExpr(head)
	if hv.tag != exprConst || hv.name != structName {
		invariantf("projection target does not infer to its declared structure type")
	}

	ctors, numIndices, ok := e.Declar(structName).IsInductive()
	if !ok || len(ctors) != 1 || numIndices != 0 {
		invariantf("proj used on a value whose type is not a one-constructor, zero-index inductive")
	}

	ctorNumParams, _, _, ok := e.Declar(ctors[0]).IsConstructor()
	if !ok {
		invariantf("proj: structure's sole constructor is not registered as a Constructor")
	}

	ctorTy := e.SubstExprUniverses(e.Declar(ctors[0]).Ty(), e.Declar(ctors[0]).Uparams(), hv.uparams)

	if uint32(len(args)) < ctorNumParams {
		invariantf("proj: structure value has fewer arguments than its constructor's parameters")
	}
	for i := uint32(0); i < ctorNumParams; i++ {
		ctorTy = e.Whnf(ctorTy)
		pv := e.ReadExpr(ctorTy)
		if pv.tag != exprPi {
			invariantf("proj: expected a Pi while consuming constructor parameters")
		}
		ctorTy = e.Instantiate(pv.body, args[i], 0)
	}

	for i := uint32(0); i < fieldIdx; i++ {
		ctorTy = e.Whnf(ctorTy)
		pv := e.ReadExpr(ctorTy)
		if pv.tag != exprPi {
			invariantf("proj: expected a Pi while consuming preceding fields")
		}
		p := e.Proj(structName, i, of)
		ctorTy = e.Instantiate(pv.body, p, 0)
	}

	ctorTy = e.Whnf(ctorTy)
	pv := e.ReadExpr(ctorTy)
	if pv.tag != exprPi {
		invariantf("proj: expected a Pi to return the field's type")
	}
	return pv.ty
}

// IsSort infers e's type, reduces it to whnf, and unwraps until a Sort is
// reached. FreeVar and Const unwind through their own types;
// anything else is a kernel invariant violation.
func (e *Environment) IsSort(expr ExprHandle) UniverseHandle {
	cur := expr
	for {
		t := e.Whnf(e.Infer(cur))
		x := e.ReadExpr(t)
		switch x.tag {
		case exprSort:
			return x.sortU
		case exprFVar:
			cur = x.fvarTy
		case exprConst:
			d := e.Declar(x.name)
			cur = e.SubstExprUniverses(d.Ty(), d.Uparams(), x.uparams)
		default:
			invariantf("is_sort: value does not have a Sort type")
		}
	}
}
