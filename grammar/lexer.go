package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// DriftLexer tokenizes drift surface syntax for the CST grammar. It
// mirrors internal/parser/scanner.go's token set but, like the teacher's
// stateful KansoLexer, leans on one generic Ident rule for every keyword
// (the grammar's own literal tags — "class", "fn", "val", "is", ...  —
// match against any token whose lexeme equals that literal) rather than
// a dedicated keyword-token state.
var DriftLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"DocComment", `///[^\n]*`, nil},
		{"Comment", `//[^\n]*`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},

		// Multi-char operators, ordered longest-alternative-first so Go's
		// leftmost-first regexp semantics don't let a shorter prefix (e.g.
		// "==") shadow a longer one (e.g. "===").
		{"Operator", `\?\.|\?:|!!|===|!==|==|!=|<=|>=|&&|\|\||->`, nil},

		{"Punctuation", `[{}()\[\],:;.?!<>=+\-*/%]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
