// Package kernel implements the content-addressed term universe and the
// type-checking operations (whnf, infer, def_eq) that decide whether a
// declaration is well-typed.
package kernel

// Handle is a stable, append-only index into one of the environment's
// interning stores. Two values compare equal iff their handles are equal;
// stores never renumber or evict, so a handle is valid for the lifetime of
// the Environment that produced it.
type (
	NameHandle    uint32
	UniverseHandle uint32
	ExprHandle    uint32
	UParamsHandle uint32
	RecRuleHandle uint32
)

// Reserved handles, pre-seeded by NewEnvironment (handle 0
// of the Name store is Anon, handle 0 of the Universe store is Zero).
const (
	AnonName  NameHandle     = 0
	ZeroLevel UniverseHandle = 0
)
