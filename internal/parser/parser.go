package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"tckernel/internal/kernel"
)

// ParseError is a malformed-input diagnostic naming the offending line
//.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func parseErrorf(line int, format string, args ...any) error {
	return errors.WithStack(&ParseError{Line: line, Msg: fmt.Sprintf(format, args...)})
}

// cursor walks one line's fields positionally — the Go counterpart of the
// original line-iterator consumption.
type cursor struct {
	line   int
	fields []string
	pos    int
}

func (c *cursor) next() (string, bool) {
	if c.pos >= len(c.fields) {
		return "", false
	}
	v := c.fields[c.pos]
	c.pos++
	return v, true
}

func (c *cursor) atEnd() bool { return c.pos >= len(c.fields) }

type parser struct {
	env *kernel.Environment
}

// Parse builds a kernel.Environment from a complete export file: a
// mandatory "2.0.0" version line, then one declaration or
// primitive-allocation line per line, each checked against every store's
// append-only growth as it's consumed.
func Parse(src string) (*kernel.Environment, error) {
	lines, err := tokenizeLines("export", src)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, parseErrorf(1, "missing version line")
	}
	version := lines[0]
	if len(version.fields) != 1 || version.fields[0] != "2.0.0" {
		return nil, parseErrorf(version.line, "expected file version \"2.0.0\"")
	}

	p := &parser{env: kernel.NewEnvironment()}
	for _, lf := range lines[1:] {
		if err := p.line(lf); err != nil {
			return nil, err
		}
	}
	return p.env, nil
}

func (p *parser) line(lf lineFields) error {
	if len(lf.fields) == 0 {
		return parseErrorf(lf.line, "empty lines are not allowed")
	}
	c := &cursor{line: lf.line, fields: lf.fields}
	first, _ := c.next()

	var err error
	switch first {
	case "#AX":
		err = p.declAxiom(c)
	case "#DEF":
		err = p.declDef(c)
	case "#OPAQ":
		err = p.declOpaq(c)
	case "#THM":
		err = p.declTheorem(c)
	case "#QUOT":
		err = p.declQuot(c)
	case "#IND":
		err = p.declInductive(c)
	case "#CTOR":
		err = p.declConstructor(c)
	case "#REC":
		err = p.declRecursor(c)
	default:
		idx, convErr := strconv.ParseUint(first, 10, 32)
		if convErr != nil {
			return parseErrorf(lf.line, "unrecognized line keyword %q", first)
		}
		err = p.primitive(c, uint32(idx))
	}
	if err != nil {
		return err
	}
	if !c.atEnd() {
		return parseErrorf(lf.line, "trailing tokens at the end of the line")
	}
	return nil
}

// --- declaration lines ---

func (p *parser) declAxiom(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.AxiomDeclar(name, uparams, ty))
	return nil
}

func (p *parser) declDef(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	val, err := p.expr(c)
	if err != nil {
		return err
	}
	hint, hintN, err := p.hint(c)
	if err != nil {
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.DefinitionDeclar(name, uparams, ty, val, hint, hintN))
	return nil
}

func (p *parser) declOpaq(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	val, err := p.expr(c)
	if err != nil {
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.OpaqueDeclar(name, uparams, ty, val))
	return nil
}

func (p *parser) declTheorem(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	val, err := p.expr(c)
	if err != nil {
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.TheoremDeclar(name, uparams, ty, val))
	return nil
}

func (p *parser) declQuot(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.QuotDeclar(name, uparams, ty))
	return nil
}

func (p *parser) declInductive(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	if _, err := p.boolField(c); err != nil { // recursive flag, not needed by the kernel
		return err
	}
	if _, err := p.boolField(c); err != nil { // reflexive flag, not needed by the kernel
		return err
	}
	if _, err := p.u32(c); err != nil { // num_params, not needed by the kernel
		return err
	}
	if _, err := p.u32(c); err != nil { // num_motives, not needed by the kernel
		return err
	}
	numIndices, err := p.u32(c)
	if err != nil {
		return err
	}
	numInductives, err := p.u32(c)
	if err != nil {
		return err
	}
	if _, err := p.names(c, numInductives); err != nil { // mutual-block siblings, not needed by the kernel
		return err
	}
	numCtors, err := p.u32(c)
	if err != nil {
		return err
	}
	allCtorNames, err := p.names(c, numCtors)
	if err != nil {
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.InductiveDeclar(name, uparams, ty, numIndices, allCtorNames))
	return nil
}

func (p *parser) declConstructor(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	parent, err := p.name(c)
	if err != nil {
		return err
	}
	parentDecl, ok := p.env.LookupDeclar(parent)
	if !ok {
		return parseErrorf(c.line, "constructor's parent inductive is not registered")
	}
	if _, _, ok := parentDecl.IsInductive(); !ok {
		return parseErrorf(c.line, "constructor's parent is not an Inductive")
	}
	if _, err := p.u32(c); err != nil { // constructor's index within the parent, not needed by the kernel
		return err
	}
	numParams, err := p.u32(c)
	if err != nil {
		return err
	}
	numFields, err := p.u32(c)
	if err != nil {
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.ConstructorDeclar(name, uparams, ty, numParams, numFields, parent))
	return nil
}

func (p *parser) declRecursor(c *cursor) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	numInductives, err := p.u32(c)
	if err != nil {
		return err
	}
	allInductives, err := p.names(c, numInductives)
	if err != nil {
		return err
	}
	for _, ind := range allInductives {
		d, ok := p.env.LookupDeclar(ind)
		if !ok {
			return parseErrorf(c.line, "recursor's inductive is not registered")
		}
		if _, _, ok := d.IsInductive(); !ok {
			return parseErrorf(c.line, "recursor's inductive is not an Inductive")
		}
	}
	for i := 0; i < 4; i++ { // num_params/num_indices/num_motives/num_minors, not needed by the kernel
		if _, err := p.u32(c); err != nil {
			return err
		}
	}
	numRecRules, err := p.u32(c)
	if err != nil {
		return err
	}
	if _, err := p.recRules(c, numRecRules); err != nil {
		return err
	}
	if _, err := p.boolField(c); err != nil { // k-like reduction flag, not needed by the kernel
		return err
	}
	uparams, err := p.declUparams(c)
	if err != nil {
		return err
	}
	p.env.RegisterDeclar(kernel.RecursorDeclar(name, uparams, ty))
	return nil
}

// --- primitive-allocation lines: "<idx> <tag> <payload...>" ---

func (p *parser) primitive(c *cursor, idx uint32) error {
	tag, ok := c.next()
	if !ok {
		return parseErrorf(c.line, "missing primitive tag")
	}
	switch tag {
	case "#RR":
		return p.primRR(c, idx)
	case "#NS":
		return p.primNS(c, idx)
	case "#NI":
		return p.primNI(c, idx)
	case "#US":
		return p.primUS(c, idx)
	case "#UM":
		return p.primUM(c, idx)
	case "#UIM":
		return p.primUIM(c, idx)
	case "#UP":
		return p.primUP(c, idx)
	case "#EV":
		return p.primEV(c, idx)
	case "#ES":
		return p.primES(c, idx)
	case "#EC":
		return p.primEC(c, idx)
	case "#EA":
		return p.primEA(c, idx)
	case "#EL":
		return p.primEL(c, idx)
	case "#EP":
		return p.primEP(c, idx)
	case "#EZ":
		return p.primEZ(c, idx)
	case "#EJ":
		return p.primEJ(c, idx)
	case "#ELN":
		return p.primELN(c, idx)
	case "#ELS":
		return p.primELS(c, idx)
	default:
		return parseErrorf(c.line, "unrecognized line")
	}
}

func (p *parser) primRR(c *cursor, idx uint32) error {
	ctorName, err := p.name(c)
	if err != nil {
		return err
	}
	ctorDecl, ok := p.env.LookupDeclar(ctorName)
	if !ok {
		return parseErrorf(c.line, "#RR constructor is not registered")
	}
	if _, _, _, ok := ctorDecl.IsConstructor(); !ok {
		return parseErrorf(c.line, "#RR name is not a Constructor")
	}
	numParam, err := p.u32(c)
	if err != nil {
		return err
	}
	val, err := p.expr(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.RecRulesLen() {
		return parseErrorf(c.line, "rec rule index %d does not match store growth", idx)
	}
	p.env.MkRecRule(ctorName, numParam, val)
	return nil
}

func (p *parser) primNS(c *cursor, idx uint32) error {
	prefix, err := p.name(c)
	if err != nil {
		return err
	}
	str, ok := c.next()
	if !ok {
		return parseErrorf(c.line, "expected a string value")
	}
	if int(idx) != p.env.NamesLen() {
		return parseErrorf(c.line, "name index %d does not match store growth", idx)
	}
	p.env.MkStr(prefix, str)
	return nil
}

func (p *parser) primNI(c *cursor, idx uint32) error {
	prefix, err := p.name(c)
	if err != nil {
		return err
	}
	n, err := p.u64(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.NamesLen() {
		return parseErrorf(c.line, "name index %d does not match store growth", idx)
	}
	p.env.MkNum(prefix, n)
	return nil
}

func (p *parser) primUS(c *cursor, idx uint32) error {
	l, err := p.universe(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.UniversesLen() {
		return parseErrorf(c.line, "universe index %d does not match store growth", idx)
	}
	p.env.Succ(l)
	return nil
}

func (p *parser) primUM(c *cursor, idx uint32) error {
	l, err := p.universe(c)
	if err != nil {
		return err
	}
	r, err := p.universe(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.UniversesLen() {
		return parseErrorf(c.line, "universe index %d does not match store growth", idx)
	}
	p.env.Max(l, r)
	return nil
}

func (p *parser) primUIM(c *cursor, idx uint32) error {
	l, err := p.universe(c)
	if err != nil {
		return err
	}
	r, err := p.universe(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.UniversesLen() {
		return parseErrorf(c.line, "universe index %d does not match store growth", idx)
	}
	p.env.IMax(l, r)
	return nil
}

func (p *parser) primUP(c *cursor, idx uint32) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.UniversesLen() {
		return parseErrorf(c.line, "universe index %d does not match store growth", idx)
	}
	p.env.Param(name)
	return nil
}

func (p *parser) primEV(c *cursor, idx uint32) error {
	dbj, err := p.u32(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.BVar(dbj)
	return nil
}

func (p *parser) primES(c *cursor, idx uint32) error {
	u, err := p.universe(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.Sort(u)
	return nil
}

func (p *parser) primEC(c *cursor, idx uint32) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	us, err := p.universes(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.MkConst(name, us)
	return nil
}

func (p *parser) primEA(c *cursor, idx uint32) error {
	fn, err := p.expr(c)
	if err != nil {
		return err
	}
	arg, err := p.expr(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.App(fn, arg)
	return nil
}

func (p *parser) primEL(c *cursor, idx uint32) error {
	if err := p.info(c); err != nil {
		return err
	}
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	body, err := p.expr(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.Lam(name, ty, body)
	return nil
}

func (p *parser) primEP(c *cursor, idx uint32) error {
	if err := p.info(c); err != nil {
		return err
	}
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	body, err := p.expr(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.Pi(name, ty, body)
	return nil
}

func (p *parser) primEZ(c *cursor, idx uint32) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	ty, err := p.expr(c)
	if err != nil {
		return err
	}
	val, err := p.expr(c)
	if err != nil {
		return err
	}
	body, err := p.expr(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.Let(name, ty, val, body)
	return nil
}

func (p *parser) primEJ(c *cursor, idx uint32) error {
	name, err := p.name(c)
	if err != nil {
		return err
	}
	fieldIdx, err := p.u32(c)
	if err != nil {
		return err
	}
	of, err := p.expr(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.Proj(name, fieldIdx, of)
	return nil
}

func (p *parser) primELN(c *cursor, idx uint32) error {
	v, err := p.u128(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.NatLit(v)
	return nil
}

func (p *parser) primELS(c *cursor, idx uint32) error {
	s, err := p.hexString(c)
	if err != nil {
		return err
	}
	if int(idx) != p.env.ExprsLen() {
		return parseErrorf(c.line, "expr index %d does not match store growth", idx)
	}
	p.env.StrLit(s)
	return nil
}

// --- field readers ---

func (p *parser) u32(c *cursor) (uint32, error) {
	tok, ok := c.next()
	if !ok {
		return 0, parseErrorf(c.line, "expected a value")
	}
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, parseErrorf(c.line, "expected a u32, got %q", tok)
	}
	return uint32(n), nil
}

func (p *parser) u64(c *cursor) (uint64, error) {
	tok, ok := c.next()
	if !ok {
		return 0, parseErrorf(c.line, "expected a value")
	}
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, parseErrorf(c.line, "expected a u64, got %q", tok)
	}
	return n, nil
}

func (p *parser) u128(c *cursor) (*big.Int, error) {
	tok, ok := c.next()
	if !ok {
		return nil, parseErrorf(c.line, "expected a value")
	}
	n, ok := new(big.Int).SetString(tok, 10)
	if !ok {
		return nil, parseErrorf(c.line, "expected a non-negative integer, got %q", tok)
	}
	return n, nil
}

func (p *parser) boolField(c *cursor) (bool, error) {
	tok, ok := c.next()
	if !ok {
		return false, parseErrorf(c.line, "expected 0 or 1")
	}
	switch tok {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, parseErrorf(c.line, "expected 0 or 1, got %q", tok)
	}
}

func (p *parser) info(c *cursor) error {
	tok, ok := c.next()
	if !ok {
		return parseErrorf(c.line, "expected a binder info token")
	}
	switch tok {
	case "#BD", "#BI", "#BC", "#BS":
		return nil
	default:
		return parseErrorf(c.line, "invalid binder info token %q", tok)
	}
}

func (p *parser) hint(c *cursor) (kernel.DefHint, uint32, error) {
	tok, ok := c.next()
	if !ok {
		return 0, 0, parseErrorf(c.line, "expected a reducibility hint")
	}
	switch tok {
	case "O":
		return kernel.HintOpaque, 0, nil
	case "A":
		return kernel.HintAbbrev, 0, nil
	case "R":
		n, err := p.u32(c)
		if err != nil {
			return 0, 0, err
		}
		return kernel.HintRegular, n, nil
	default:
		return 0, 0, parseErrorf(c.line, "expected a reducibility hint (O, A, R), got %q", tok)
	}
}

func (p *parser) name(c *cursor) (kernel.NameHandle, error) {
	idx, err := p.u32(c)
	if err != nil {
		return 0, err
	}
	if int(idx) >= p.env.NamesLen() {
		return 0, parseErrorf(c.line, "name handle %d is out of range", idx)
	}
	return kernel.NameHandle(idx), nil
}

func (p *parser) names(c *cursor, n uint32) ([]kernel.NameHandle, error) {
	out := make([]kernel.NameHandle, 0, n)
	for i := uint32(0); i < n; i++ {
		h, err := p.name(c)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (p *parser) universe(c *cursor) (kernel.UniverseHandle, error) {
	idx, err := p.u32(c)
	if err != nil {
		return 0, err
	}
	if int(idx) >= p.env.UniversesLen() {
		return 0, parseErrorf(c.line, "universe handle %d is out of range", idx)
	}
	return kernel.UniverseHandle(idx), nil
}

// universes consumes the rest of the line as a universe-argument list for
// a Const expression.
func (p *parser) universes(c *cursor) (kernel.UParamsHandle, error) {
	var us []kernel.UniverseHandle
	for !c.atEnd() {
		u, err := p.universe(c)
		if err != nil {
			return 0, err
		}
		us = append(us, u)
	}
	return p.env.MkUParams(us), nil
}

// declUparams consumes the rest of the line as a declaration's own
// universe-parameter list: each field names a universe parameter already
// introduced by a prior #UP primitive line, and no parameter may repeat.
func (p *parser) declUparams(c *cursor) (kernel.UParamsHandle, error) {
	var us []kernel.UniverseHandle
	seen := make(map[kernel.UniverseHandle]bool)
	for !c.atEnd() {
		name, err := p.name(c)
		if err != nil {
			return 0, err
		}
		u, ok := p.env.LookupParam(name)
		if !ok {
			return 0, parseErrorf(c.line, "universe parameter was never declared with #UP")
		}
		if seen[u] {
			return 0, parseErrorf(c.line, "duplicate universe parameter in uparams list")
		}
		seen[u] = true
		us = append(us, u)
	}
	return p.env.MkUParams(us), nil
}

func (p *parser) expr(c *cursor) (kernel.ExprHandle, error) {
	idx, err := p.u32(c)
	if err != nil {
		return 0, err
	}
	if int(idx) >= p.env.ExprsLen() {
		return 0, parseErrorf(c.line, "expr handle %d is out of range", idx)
	}
	return kernel.ExprHandle(idx), nil
}

func (p *parser) recRules(c *cursor, n uint32) ([]kernel.RecRuleHandle, error) {
	out := make([]kernel.RecRuleHandle, 0, n)
	for i := uint32(0); i < n; i++ {
		idx, err := p.u32(c)
		if err != nil {
			return nil, err
		}
		if int(idx) >= p.env.RecRulesLen() {
			return nil, parseErrorf(c.line, "rec rule handle %d is out of range", idx)
		}
		out = append(out, kernel.RecRuleHandle(idx))
	}
	return out, nil
}

// hexString consumes the rest of the line as a sequence of hex-encoded
// byte values, each widened directly to its Unicode code point — mirroring
// the original parser's own hex-string decoding rather than treating the
// bytes as UTF-8.
func (p *parser) hexString(c *cursor) (string, error) {
	var b strings.Builder
	for !c.atEnd() {
		tok, _ := c.next()
		n, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return "", parseErrorf(c.line, "expected a hex byte, got %q", tok)
		}
		b.WriteRune(rune(n))
	}
	return b.String(), nil
}
