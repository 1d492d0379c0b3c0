package kernel

const (
	zeroHash  uint64 = 10
	succHash  uint64 = 11
	maxHash   uint64 = 12
	imaxHash  uint64 = 13
	paramHash uint64 = 14
)

type univTag uint8

const (
	univZero univTag = iota
	univSucc
	univMax
	univIMax
	univParam
)

// Universe is the universe-level expression sum type: Zero,
// Succ(pred), Max(a,b), IMax(a,b), or Param(name).
type Universe struct {
	tag  univTag
	a, b UniverseHandle // Succ uses a as pred; Max/IMax use a, b
	name NameHandle     // Param
	hash uint64
}

func (u Universe) hashKey() uint64 { return u.hash }

func (u Universe) equalTo(o Universe) bool {
	return u.tag == o.tag && u.a == o.a && u.b == o.b && u.name == o.name
}

func (e *Environment) Zero() UniverseHandle { return ZeroLevel }

func (e *Environment) Succ(pred UniverseHandle) UniverseHandle {
	h := hash64(succHash, uint64(pred))
	return UniverseHandle(e.universes.intern(Universe{tag: univSucc, a: pred, hash: h}))
}

func (e *Environment) Max(a, b UniverseHandle) UniverseHandle {
	h := hash64(maxHash, uint64(a), uint64(b))
	return UniverseHandle(e.universes.intern(Universe{tag: univMax, a: a, b: b, hash: h}))
}

func (e *Environment) IMax(a, b UniverseHandle) UniverseHandle {
	h := hash64(imaxHash, uint64(a), uint64(b))
	return UniverseHandle(e.universes.intern(Universe{tag: univIMax, a: a, b: b, hash: h}))
}

func (e *Environment) Param(name NameHandle) UniverseHandle {
	h := hash64(paramHash, uint64(name))
	return UniverseHandle(e.universes.intern(Universe{tag: univParam, name: name, hash: h}))
}

// LookupParam finds an already-interned Param(name) universe without
// allocating one — the export format requires a declaration's uparams
// list to reference universe parameters previously introduced by a #UP
// primitive line, never to introduce fresh ones.
func (e *Environment) LookupParam(name NameHandle) (UniverseHandle, bool) {
	h := hash64(paramHash, uint64(name))
	idx, ok := e.universes.find(Universe{tag: univParam, name: name, hash: h})
	return UniverseHandle(idx), ok
}

// ReadUniverse returns the exact Universe interned at h.
func (e *Environment) ReadUniverse(h UniverseHandle) Universe {
	return e.universes.read(int(h))
}

// UParams is an interned, order-significant sequence of universe handles:
// two equal sequences share one handle, and order matters because it
// aligns positionally with a declaration's uparams binding.
type UParams struct {
	us   []UniverseHandle
	hash uint64
}

func (u UParams) hashKey() uint64 { return u.hash }

func (u UParams) equalTo(o UParams) bool {
	if len(u.us) != len(o.us) {
		return false
	}
	for i := range u.us {
		if u.us[i] != o.us[i] {
			return false
		}
	}
	return true
}

const uparamsHash uint64 = 15

// MkUParams interns an ordered sequence of universe handles as a single
// handle.
func (e *Environment) MkUParams(us []UniverseHandle) UParamsHandle {
	h := newHasher(uparamsHash)
	for _, u := range us {
		h = h.writeUint(uint64(u))
	}
	cp := append([]UniverseHandle(nil), us...)
	return UParamsHandle(e.uparamsStore.intern(UParams{us: cp, hash: h.sum()}))
}

// ReadUParams returns the sequence interned at h.
func (e *Environment) ReadUParams(h UParamsHandle) []UniverseHandle {
	return e.uparamsStore.read(int(h)).us
}

// Simplify recursively normalizes a universe expression.
func (e *Environment) Simplify(u UniverseHandle) UniverseHandle {
	v := e.ReadUniverse(u)
	switch v.tag {
	case univZero, univParam:
		return u
	case univSucc:
		return e.Succ(e.Simplify(v.a))
	case univMax:
		l := e.Simplify(v.a)
		r := e.Simplify(v.b)
		return e.reduce(l, r, false)
	case univIMax:
		l := e.Simplify(v.a)
		r := e.Simplify(v.b)
		if e.Leq(r, e.Zero(), 0) {
			return e.Zero()
		}
		return e.reduce(l, r, false)
	default:
		invariantf("unreachable universe tag")
		return 0
	}
}

// reduce combines two already-simplified levels.
func (e *Environment) reduce(l, r UniverseHandle, fromMax bool) UniverseHandle {
	lv, rv := e.ReadUniverse(l), e.ReadUniverse(r)
	switch {
	case lv.tag == univZero:
		return r
	case rv.tag == univZero:
		return l
	case lv.tag == univSucc && rv.tag == univSucc:
		return e.Succ(e.reduce(lv.a, rv.a, false))
	case lv.tag == univMax || lv.tag == univIMax || rv.tag == univMax || rv.tag == univIMax:
		l2 := e.Simplify(l)
		r2 := e.Simplify(r)
		if fromMax {
			return e.Max(l2, r2)
		}
		return e.reduce(l2, r2, true)
	case lv.tag == univParam:
		r2 := e.Simplify(r)
		return e.Max(l, r2)
	case rv.tag == univParam:
		l2 := e.Simplify(l)
		return e.Max(l2, r)
	default:
		invariantf("unreachable universe reduce case")
		return 0
	}
}

// Leq decides l <= r + offset after simplification. Case order
// matters: the first matching rule wins.
func (e *Environment) Leq(l, r UniverseHandle, offset int) bool {
	l = e.Simplify(l)
	r = e.Simplify(r)
	lv, rv := e.ReadUniverse(l), e.ReadUniverse(r)

	switch {
	case lv.tag == univZero && offset >= 0:
		return true
	case rv.tag == univZero && offset < 0:
		return false
	case lv.tag == univZero && rv.tag == univZero:
		return offset >= 0
	case lv.tag == univParam && rv.tag == univZero:
		return false
	case lv.tag == univZero && rv.tag == univParam:
		return offset >= 0
	case lv.tag == univParam && rv.tag == univParam:
		return lv.name == rv.name && offset >= 0
	case lv.tag == univSucc && rv.tag == univSucc:
		return e.Leq(lv.a, rv.a, offset)
	case lv.tag == univSucc:
		return e.Leq(lv.a, r, offset-1)
	case rv.tag == univSucc:
		return e.Leq(l, rv.a, offset+1)
	}

	// Either side is an IMax whose right operand simplifies to Zero: that
	// IMax collapses to Zero.
	if lv.tag == univIMax && e.Leq(lv.b, e.Zero(), 0) {
		return e.Leq(e.Zero(), r, offset)
	}
	if rv.tag == univIMax && e.Leq(rv.b, e.Zero(), 0) {
		return e.Leq(l, e.Zero(), offset)
	}

	// Same-shape Max/IMax with permutation-equal children.
	if lv.tag == rv.tag && (lv.tag == univMax || lv.tag == univIMax) {
		if (lv.a == rv.a && lv.b == rv.b) || (lv.a == rv.b && lv.b == rv.a) {
			return offset >= 0
		}
	}

	// IMax whose right operand is a Param: case-split on that parameter.
	if lv.tag == univIMax && e.ReadUniverse(lv.b).tag == univParam {
		return e.leqIMaxParamSplit(lv.b, l, r, offset)
	}
	if rv.tag == univIMax && e.ReadUniverse(rv.b).tag == univParam {
		return e.leqIMaxParamSplit(rv.b, l, r, offset)
	}

	switch {
	case lv.tag == univMax || lv.tag == univIMax:
		return e.Leq(lv.a, r, offset) && e.Leq(lv.b, r, offset)
	case rv.tag == univMax || rv.tag == univIMax:
		return e.Leq(l, rv.a, offset) || e.Leq(l, rv.b, offset)
	}

	invariantf("leq: no case matched")
	return false
}

// leqIMaxParamSplit substitutes p := Zero and p := Succ(p) into both sides
// and requires leq in both substituted worlds.
func (e *Environment) leqIMaxParamSplit(p UniverseHandle, l, r UniverseHandle, offset int) bool {
	from := e.MkUParams([]UniverseHandle{p})
	toZero := e.MkUParams([]UniverseHandle{e.Zero()})
	toSucc := e.MkUParams([]UniverseHandle{e.Succ(p)})

	lz := e.SubstUniverse(l, from, toZero)
	rz := e.SubstUniverse(r, from, toZero)
	ls := e.SubstUniverse(l, from, toSucc)
	rs := e.SubstUniverse(r, from, toSucc)
	return e.Leq(lz, rz, offset) && e.Leq(ls, rs, offset)
}

// LeqMany checks antisymmetric pairwise equality of two equal-length
// universe-handle sequences.
func (e *Environment) LeqMany(xs, ys UParamsHandle) bool {
	xsv := e.ReadUParams(xs)
	ysv := e.ReadUParams(ys)
	if len(xsv) != len(ysv) {
		return false
	}
	for i := range xsv {
		if !e.Leq(xsv[i], ysv[i], 0) || !e.Leq(ysv[i], xsv[i], 0) {
			return false
		}
	}
	return true
}

// ContainsParam reports whether every universe parameter occurring in u is
// present in ups — used to check a declaration's body only
// references its own declared uparams.
func (e *Environment) ContainsParam(u UniverseHandle, ups UParamsHandle) bool {
	v := e.ReadUniverse(u)
	switch v.tag {
	case univZero:
		return true
	case univSucc:
		return e.ContainsParam(v.a, ups)
	case univMax, univIMax:
		return e.ContainsParam(v.a, ups) && e.ContainsParam(v.b, ups)
	case univParam:
		for _, p := range e.ReadUParams(ups) {
			if p == u {
				return true
			}
		}
		return false
	default:
		invariantf("unreachable universe tag in ContainsParam")
		return false
	}
}

// SubstUniverse performs parallel substitution: occurrences of from[i]
// become to[i].
func (e *Environment) SubstUniverse(u UniverseHandle, from, to UParamsHandle) UniverseHandle {
	v := e.ReadUniverse(u)
	switch v.tag {
	case univZero:
		return u
	case univSucc:
		return e.Succ(e.SubstUniverse(v.a, from, to))
	case univMax:
		return e.Max(e.SubstUniverse(v.a, from, to), e.SubstUniverse(v.b, from, to))
	case univIMax:
		return e.IMax(e.SubstUniverse(v.a, from, to), e.SubstUniverse(v.b, from, to))
	case univParam:
		fromV, toV := e.ReadUParams(from), e.ReadUParams(to)
		for i, f := range fromV {
			if f == u {
				return toV[i]
			}
		}
		return u
	default:
		invariantf("unreachable universe tag in SubstUniverse")
		return 0
	}
}

// SubstUniverses maps SubstUniverse across a sequence.
func (e *Environment) SubstUniverses(us, from, to UParamsHandle) UParamsHandle {
	in := e.ReadUParams(us)
	out := make([]UniverseHandle, len(in))
	for i, u := range in {
		out[i] = e.SubstUniverse(u, from, to)
	}
	return e.MkUParams(out)
}
