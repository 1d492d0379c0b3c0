package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tckernel/internal/kernel"
)

// TestParseAxiomProp round-trips a minimal, well-formed export file
// declaring a single Axiom whose type is Sort(0) — the S1 scenario from
// the other side of the kernel/parser boundary.
func TestParseAxiomProp(t *testing.T) {
	src := "2.0.0\n" +
		"1 #NS 0 Foo\n" +
		"0 #ES 0\n" +
		"#AX 1 0\n"

	env, err := Parse(src)
	require.NoError(t, err)
	require.NotNil(t, env)

	assert.Equal(t, 2, env.NamesLen())
	assert.Equal(t, 1, env.UniversesLen())
	assert.Equal(t, 1, env.ExprsLen())

	d, ok := env.LookupDeclar(kernel.NameHandle(1))
	require.True(t, ok)
	assert.Equal(t, kernel.ExprHandle(0), d.Ty())

	mismatches := env.CheckAll()
	assert.Empty(t, mismatches)
}

// TestParseMissingVersion asserts a completely empty file is fatal.
func TestParseMissingVersion(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}

// TestParseWrongVersion asserts a version line other than "2.0.0" is
// fatal.
func TestParseWrongVersion(t *testing.T) {
	_, err := Parse("1.0.0\n")
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)
}

// TestParseOutOfRangeHandle is the S6 scenario: a primitive-allocation line
// whose handle reference points beyond the current store length aborts
// parsing with a fatal, line-numbered error — nothing gets checked.
func TestParseOutOfRangeHandle(t *testing.T) {
	src := "2.0.0\n" +
		"0 #EA 5 5\n"

	_, err := Parse(src)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "expected a *ParseError in the chain, got %T", err)
	assert.Equal(t, 2, pe.Line)
}

// TestParseDuplicateUparam asserts a declaration-level uparams list that
// repeats the same universe parameter is rejected.
func TestParseDuplicateUparam(t *testing.T) {
	src := "2.0.0\n" +
		"1 #NS 0 u\n" +
		"1 #UP 1\n" +
		"0 #ES 1\n" +
		"#AX 1 0 1 1\n"

	_, err := Parse(src)
	require.Error(t, err)
}

// TestParseUnregisteredUparam asserts a uparams list referencing a name
// that was never introduced by a #UP primitive line is rejected.
func TestParseUnregisteredUparam(t *testing.T) {
	src := "2.0.0\n" +
		"1 #NS 0 u\n" +
		"0 #ES 0\n" +
		"#AX 1 0 1\n"

	_, err := Parse(src)
	require.Error(t, err)
}

// TestParseInductiveAndConstructor round-trips a one-constructor,
// zero-index inductive plus its constructor, cross-referencing correctly.
func TestParseInductiveAndConstructor(t *testing.T) {
	src := "2.0.0\n" +
		"1 #NS 0 Unit\n" +
		"2 #NS 0 unit\n" +
		"0 #ES 0\n" + // Sort(0), Unit's type
		"#IND 1 0 0 0 0 0 0 0 1 2\n" + // Unit : Sort(0), 0 indices, 0 siblings, 1 ctor: unit
		"1 #EC 1\n" + // Const(Unit) with no universe args, Unit's own type for unit
		"#CTOR 2 1 1 0 0 0\n" // unit : Unit, parent Unit, ctor idx 0, 0 params, 0 fields

	env, err := Parse(src)
	require.NoError(t, err)
	require.NotNil(t, env)

	unitDecl, ok := env.LookupDeclar(kernel.NameHandle(1))
	require.True(t, ok)
	ctors, numIndices, isInd := unitDecl.IsInductive()
	require.True(t, isInd)
	assert.Equal(t, uint32(0), numIndices)
	assert.Equal(t, []kernel.NameHandle{2}, ctors)

	ctorDecl, ok := env.LookupDeclar(kernel.NameHandle(2))
	require.True(t, ok)
	_, _, parent, isCtor := ctorDecl.IsConstructor()
	require.True(t, isCtor)
	assert.Equal(t, kernel.NameHandle(1), parent)
}

// TestParseConstructorUnregisteredParent asserts a Constructor line naming
// a parent that was never registered as an Inductive is fatal.
func TestParseConstructorUnregisteredParent(t *testing.T) {
	src := "2.0.0\n" +
		"1 #NS 0 unit\n" +
		"2 #NS 0 Unit\n" +
		"0 #EC 2\n" +
		"#CTOR 1 0 2 0 0 0\n"

	_, err := Parse(src)
	require.Error(t, err)
}
