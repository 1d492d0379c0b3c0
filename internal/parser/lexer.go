// Package parser turns a line-oriented export file into a
// populated kernel.Environment. Tokenizing is handled by a stateful
// participle/v2 lexer; the actual grammar is not tree-shaped, so the
// fields within a line are consumed positionally by a cursor instead.
package parser

import "github.com/alecthomas/participle/v2/lexer"

// exportLexer splits the file into newline tokens and whitespace-separated
// word tokens. Everything past that — which keyword a line starts with,
// how many fields it consumes, whether a field is a decimal handle, a hex
// byte, or a bareword — is decided positionally while a line is walked,
// not by the lexer's grammar.
var exportLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Newline", Pattern: `\r?\n`},
		{Name: "Space", Pattern: `[ \t]+`},
		{Name: "Word", Pattern: `\S+`},
	},
})

// tokenizeLines runs the lexer over src and groups Word tokens by line,
// returning 1-indexed line numbers alongside their fields. Blank lines
// produce an empty field slice rather than being dropped, since the
// export format treats a blank line as malformed input, not
// as something to skip silently.
func tokenizeLines(filename, src string) ([]lineFields, error) {
	lex, err := exportLexer.LexString(filename, src)
	if err != nil {
		return nil, err
	}

	var out []lineFields
	cur := lineFields{line: 1}
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			if len(cur.fields) > 0 {
				out = append(out, cur)
			}
			return out, nil
		}
		switch tokenName(tok.Type) {
		case "Newline":
			out = append(out, cur)
			cur = lineFields{line: cur.line + 1}
		case "Word":
			cur.fields = append(cur.fields, tok.Value)
		}
	}
}

type lineFields struct {
	line   int
	fields []string
}

func tokenName(t lexer.TokenType) string {
	for name, tt := range exportLexer.Symbols() {
		if tt == t {
			return name
		}
	}
	return ""
}
