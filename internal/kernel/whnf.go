package kernel

// Whnf reduces expr to weak head normal form: β (application of a lambda
// spine), δ (constant unfolding — including Opaque
// open question), ζ (let), and projection reduction. Results are memoized
// per input handle.
func (e *Environment) Whnf(expr ExprHandle) ExprHandle {
	if out, ok := e.whnfs[expr]; ok {
		return out
	}
	out := e.whnfLoop(expr)
	e.whnfs[expr] = out
	return out
}

func (e *Environment) whnfLoop(start ExprHandle) ExprHandle {
	cur := start
	for {
		x := e.ReadExpr(cur)
		switch x.tag {
		case exprLet:
			cur = e.Instantiate(x.body, x.val, 0)

		case exprConst:
			d := e.Declar(x.name)
			val, ok := d.Val()
			if !ok {
				return cur
			}
			cur = e.SubstExprUniverses(val, d.Uparams(), x.uparams)

		case exprProj:
			head, args := e.spine(e.Whnf(x.of))
			hv := e.ReadExpr(head)
			if hv.tag != exprConst {
				return cur
			}
			numParams, _, _, ok := e.Declar(hv.name).IsConstructor()
			if !ok {
				return cur
			}
			pos := int(x.fieldIdx + numParams)
			if pos >= len(args) {
				invariantf("projection index out of range of constructor spine")
			}
			cur = args[pos]

		case exprApp:
			head, args := e.spine(cur)
			// Strip lambdas off head, pairing each with the next unconsumed
			// argument in left-to-right (application) order — the first
			// lambda stripped binds the first-applied argument.
			var applied []ExprHandle
			for len(args) > 0 {
				hv := e.ReadExpr(head)
				if hv.tag != exprLam {
					break
				}
				applied = append(applied, args[0])
				args = args[1:]
				head = hv.body
			}
			// The last stripped binder is BVar(0) in head, so its argument is
			// instantiated first.
			for i := len(applied) - 1; i >= 0; i-- {
				head = e.Instantiate(head, applied[i], 0)
			}
			for _, a := range args {
				head = e.App(head, a)
			}
			return head

		default:
			return cur
		}
	}
}

// spine collects e's left-leaning App spine into (head, args) with args in
// left-to-right application order.
func (e *Environment) spine(expr ExprHandle) (ExprHandle, []ExprHandle) {
	var args []ExprHandle
	cur := expr
	for {
		x := e.ReadExpr(cur)
		if x.tag != exprApp {
			break
		}
		args = append(args, x.arg)
		cur = x.fn
	}
	// args were collected innermost-first (right to left); reverse to get
	// left-to-right application order.
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return cur, args
}
