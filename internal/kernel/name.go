package kernel

const (
	anonHash uint64 = 0
	strHash  uint64 = 1
	numHash  uint64 = 2
)

type nameTag uint8

const (
	nameAnon nameTag = iota
	nameStr
	nameNum
)

// Name is the hierarchical-identifier sum type: Anon, a Str
// extension ("prefix.value"), or a Num extension ("prefix.value").
type Name struct {
	tag    nameTag
	prefix NameHandle
	str    string
	num    uint64
	hash   uint64
}

func (n Name) hashKey() uint64 { return n.hash }

func (n Name) equalTo(o Name) bool {
	return n.tag == o.tag && n.prefix == o.prefix && n.str == o.str && n.num == o.num
}

// MkStr interns Str{prefix, value}.
func (e *Environment) MkStr(prefix NameHandle, value string) NameHandle {
	h := newHasher(strHash).writeUint(uint64(prefix)).writeString(value).sum()
	return NameHandle(e.names.intern(Name{tag: nameStr, prefix: prefix, str: value, hash: h}))
}

// MkNum interns Num{prefix, value}.
func (e *Environment) MkNum(prefix NameHandle, value uint64) NameHandle {
	h := newHasher(numHash).writeUint(uint64(prefix)).writeUint(value).sum()
	return NameHandle(e.names.intern(Name{tag: nameNum, prefix: prefix, num: value, hash: h}))
}

// ReadName returns the exact Name interned at h.
func (e *Environment) ReadName(h NameHandle) Name {
	return e.names.read(int(h))
}
