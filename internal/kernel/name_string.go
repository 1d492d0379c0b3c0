package kernel

import "strconv"

// NameString renders a Name handle as a dotted identifier for diagnostics
// (e.g. "List.map"). Anon renders as "_".
func (e *Environment) NameString(h NameHandle) string {
	n := e.ReadName(h)
	switch n.tag {
	case nameAnon:
		return "_"
	case nameStr:
		prefix := e.NameString(n.prefix)
		if prefix == "_" {
			return n.str
		}
		return prefix + "." + n.str
	case nameNum:
		prefix := e.NameString(n.prefix)
		s := strconv.FormatUint(n.num, 10)
		if prefix == "_" {
			return s
		}
		return prefix + "." + s
	default:
		return "_"
	}
}
