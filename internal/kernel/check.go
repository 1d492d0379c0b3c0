package kernel

import "fmt"

// Mismatch is a recoverable type-mismatch diagnostic: a
// declaration whose declared type disagrees with its inferred value type.
// check_one collects these and continues; only they are non-fatal.
type Mismatch struct {
	Decl NameHandle
	Ty   ExprHandle
	Val  ExprHandle
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("declaration %d: declared type does not match inferred value type", m.Decl)
}

// CheckOne type-checks a single declaration's (uparams, ty, val) triple:
// its universe-parameter containment, that its type is itself
// well-sorted, and — when it carries a value — that the value's inferred
// type agrees with the declared one. A disagreement here is reported,
// not panicked: every other failure path in the kernel is fatal.
func (e *Environment) CheckOne(name NameHandle, uparams UParamsHandle, ty ExprHandle, val ExprHandle, hasVal bool) *Mismatch {
	if len(e.ReadUParams(uparams)) > 0 {
		e.checkParamsContained(ty, uparams)
	}
	e.IsSort(ty)
	if !hasVal {
		return nil
	}
	if len(e.ReadUParams(uparams)) > 0 {
		e.checkParamsContained(val, uparams)
	}
	v := e.Infer(val)
	if !e.DefEq(ty, v) {
		return &Mismatch{Decl: name, Ty: ty, Val: v}
	}
	return nil
}

// checkParamsContained asserts every universe parameter occurring in expr
// is among ups — a declaration may only
// mention the universe parameters it declares. A violation here means the
// parser handed the kernel a declaration that doesn't close over its own
// uparams list, which is a kernel invariant violation, not a reportable
// mismatch.
func (e *Environment) checkParamsContained(expr ExprHandle, ups UParamsHandle) {
	x := e.ReadExpr(expr)
	switch x.tag {
	case exprFVar, exprNatLit, exprStrLit, exprBVar:
		return
	case exprSort:
		if !e.ContainsParam(x.sortU, ups) {
			invariantf("declaration body references a universe parameter outside its own uparams list")
		}
	case exprConst:
		for _, u := range e.ReadUParams(x.uparams) {
			if !e.ContainsParam(u, ups) {
				invariantf("declaration body references a universe parameter outside its own uparams list")
			}
		}
	case exprApp:
		e.checkParamsContained(x.fn, ups)
		e.checkParamsContained(x.arg, ups)
	case exprPi, exprLam:
		e.checkParamsContained(x.ty, ups)
		e.checkParamsContained(x.body, ups)
	case exprLet:
		e.checkParamsContained(x.ty, ups)
		e.checkParamsContained(x.val, ups)
		e.checkParamsContained(x.body, ups)
	case exprProj:
		e.checkParamsContained(x.of, ups)
	default:
		invariantf("unreachable expr tag in checkParamsContained")
	}
}

// CheckAll runs CheckOne over every declaration in the environment, in
// insertion order (ordering guarantee), collecting mismatches
// rather than stopping at the first one. The caller is expected to recover
// any fault panic surfacing from beneath this call — that signals a kernel
// invariant violation and aborts the whole run.
func (e *Environment) CheckAll() []Mismatch {
	var mismatches []Mismatch
	for _, d := range e.DeclarSnapshot() {
		val, hasVal := d.Val()
		if m := e.CheckOne(d.Name(), d.Uparams(), d.Ty(), val, hasVal); m != nil {
			mismatches = append(mismatches, *m)
		}
	}
	return mismatches
}
