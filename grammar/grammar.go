package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// grammar.go is a second, declarative parse of drift's surface syntax,
// independent of internal/parser's hand-rolled recursive-descent one.
// It exists purely for the `driftc -print-cst` debug dump, not for
// compilation or for the LSP (which walks internal/ast directly), so it
// trades precision for a compact, participle-declarative shape: every
// infix operator sits at one flat precedence level (as the teacher's own
// grammar.go did for Move) and a block's trailing tail expression shows
// up as its last Statement rather than a distinct node.
//
// This file replaces the teacher's grammar.go/shared.go pair, which
// declared the same Move-shaped type names twice in one package (once
// positionless, once with lexer.Position fields) — a pre-existing defect
// in the teacher snapshot itself. Only the positional shape survives
// here, rebuilt for drift's grammar.

type Program struct {
	Pos, EndPos lexer.Position
	Items       []*Item `@@*`
}

type Item struct {
	Pos, EndPos lexer.Position
	Comment     *Comment  `  @@`
	Class       *Class    `| @@`
	Func        *Function `| @@`
}

type DocComment struct {
	Pos, EndPos lexer.Position
	Text        string `@DocComment`
}

type Comment struct {
	Pos, EndPos lexer.Position
	Text        string `@Comment`
}

type PosIdent struct {
	Pos, EndPos lexer.Position
	Value       string `@Ident`
}

// Class declares a named type with fields and methods (spec.md §1 ClassDecl).
type Class struct {
	Pos, EndPos lexer.Position
	Doc         *DocComment `@@?`
	Name        PosIdent    `"class" @@ "{"`
	Fields      []*Field    `@@*`
	Methods     []*Function `@@* "}"`
}

type Field struct {
	Pos, EndPos lexer.Position
	Qualifier   string   `@("val" | "var")`
	Name        PosIdent `@@ ":"`
	Type        *Type    `@@`
}

// Type is a (possibly nullable, possibly generic) type reference, e.g.
// "Any", "String?", "List<Int>".
type Type struct {
	Pos, EndPos lexer.Position
	Name        PosIdent `@@`
	Generics    []*Type  `[ "<" @@ { "," @@ } ">" ]`
	Nullable    bool     `[ @"?" ]`
}

type Param struct {
	Pos, EndPos lexer.Position
	Qualifier   string   `[ @("var" | "val") ]`
	Name        PosIdent `@@ ":"`
	Type        *Type    `@@`
}

// Contract is the optional `contract { effect; effect }` clause the
// ContractEngine reads (spec.md §4.3 "Contracts").
type Contract struct {
	Pos, EndPos lexer.Position
	Effects     []*Effect `"contract" "{" @@* "}"`
}

type Effect struct {
	Pos, EndPos  lexer.Position
	ForEachIndex *int   `( "returnsForEach" "(" [ @Integer ] ")" "->" )?`
	ReturnsKind  string `[ "returns" "(" @("true" | "false" | "null" | "notNull") ")" "->" ]`
	Condition    *Expr  `@@ [ ";" ]`
}

// Function is a top-level function or — with Receiver set — a class
// method (spec.md §1 Function, Receiver "this").
type Function struct {
	Pos, EndPos lexer.Position
	Doc         *DocComment `@@?`
	Name        PosIdent    `"fn" @@ "("`
	Receiver    bool        `[ @"this" [ "," ] ]`
	Params      []*Param    `[ @@ { "," @@ } ] ")"`
	Return      *Type       `[ "->" @@ ]`
	Contract    *Contract   `@@?`
	Body        *Block      `"{" @@ "}"`
}

type Block struct {
	Pos, EndPos lexer.Position
	Statements  []*Statement `@@*`
}

type Statement struct {
	Pos, EndPos lexer.Position
	Comment     *Comment    `  @@`
	Let         *LetStmt    `| @@`
	Return      *ReturnStmt `| @@`
	Assert      *AssertStmt `| @@`
	While       *WhileStmt  `| @@`
	Assign      *AssignStmt `| @@`
	ExprStmt    *ExprStmt   `| @@`
}

type LetStmt struct {
	Pos, EndPos lexer.Position
	Qualifier   string   `@("val" | "var")`
	Name        PosIdent `@@`
	Type        *Type    `[ ":" @@ ]`
	Value       *Expr    `"=" @@ [ ";" ]`
}

type ReturnStmt struct {
	Pos, EndPos lexer.Position
	Value       *Expr `"return" [ @@ ] [ ";" ]`
}

type AssertStmt struct {
	Pos, EndPos lexer.Position
	Args        []*Expr `"assert" "(" @@ { "," @@ } ")" [ ";" ]`
}

type WhileStmt struct {
	Pos, EndPos lexer.Position
	Cond        *Expr  `"while" "(" @@ ")"`
	Body        *Block `"{" @@ "}"`
}

type AssignStmt struct {
	Pos, EndPos lexer.Position
	Target      PosIdent `@@ "="`
	Value       *Expr    `@@ [ ";" ]`
}

type ExprStmt struct {
	Pos, EndPos lexer.Position
	Value       *Expr `@@ [ ";" ]`
}

// Expr is the entry point into the flat-precedence expression grammar;
// Elvis (`?:`) is the loosest-binding operator, same as internal/parser's
// Pratt ladder.
type Expr struct {
	Pos, EndPos lexer.Position
	Left        *BinaryExpr `@@`
	Default     *BinaryExpr `[ "?:" @@ ]`
}

type BinaryExpr struct {
	Pos, EndPos lexer.Position
	Left        *UnaryExpr `@@`
	Ops         []*BinOp   `{ @@ }`
}

type BinOp struct {
	Pos, EndPos lexer.Position
	Operator    string     `@("||" | "&&" | "===" | "!==" | "==" | "!=" | "<=" | ">=" | "<" | ">" | "+" | "-" | "*" | "/" | "%")`
	Right       *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos, EndPos lexer.Position
	Operator    string       `[ @("!" | "-") ]`
	Value       *PostfixExpr `@@`
}

type PostfixExpr struct {
	Pos, EndPos lexer.Position
	Primary     *PrimaryExpr `@@`
	Suffix      []*PostfixOp `{ @@ }`
}

// PostfixOp is one of: `.name[(...)][{lambda}]`, `?.name[(...)]`, `!!`,
// `[!]is Type` or `as[?] Type` — every postfix form spec.md §4.3
// describes, folded into one alternation (spec.md scenario 8's
// `xs.filter { it is Int }` is `Dot` with Lambda set, no Call).
type PostfixOp struct {
	Pos, EndPos lexer.Position
	Dot         *PosIdent   `( "." @@`
	Call        *CallSuffix `  [ @@ ]`
	Lambda      *Lambda     `  [ @@ ] )`
	SafeDot     *PosIdent   `| ( "?." @@`
	SafeCall    *CallSuffix `  [ @@ ] )`
	NotNull     bool        `| @"!!"`
	IsNegated   bool        `| ( [ @"!" ] "is"`
	IsType      *Type       `  @@ )`
	AsSafe      bool        `| ( "as" [ @"?" ]`
	AsType      *Type       `  @@ )`
}

type CallSuffix struct {
	Pos, EndPos lexer.Position
	Args        []*Expr `"(" [ @@ { "," @@ } ] ")"`
}

type Lambda struct {
	Pos, EndPos lexer.Position
	Body        *Block `"{" @@ "}"`
}

type CallExpr struct {
	Pos, EndPos lexer.Position
	Callee      PosIdent    `@@`
	Args        *CallSuffix `@@`
	Lambda      *Lambda     `[ @@ ]`
}

type IfExpr struct {
	Pos, EndPos lexer.Position
	Cond        *Expr  `"if" "(" @@ ")"`
	Then        *Block `"{" @@ "}"`
	Else        *Block `[ "else" "{" @@ "}" ]`
}

type WhenBranch struct {
	Pos, EndPos lexer.Position
	Else        bool   `(  @"else"`
	Condition   *Expr  `|  @@ )`
	Body        *Block `"->" "{" @@ "}"`
}

type WhenExpr struct {
	Pos, EndPos lexer.Position
	Subject     *Expr         `"when" [ "(" @@ ")" ]`
	Branches    []*WhenBranch `"{" @@* "}"`
}

// PrimaryExpr is tried in keyword-before-identifier order: if/when/the
// true-false-null-number-string literals and `this` must all win over
// the generic Ident/Call alternatives, since those alternatives would
// otherwise happily consume the same keyword text as a plain name.
type PrimaryExpr struct {
	Pos, EndPos lexer.Position
	If          *IfExpr   `  @@`
	When        *WhenExpr `| @@`
	Literal     *string   `| @(Integer | String | "true" | "false" | "null")`
	Call        *CallExpr `| @@`
	This        bool      `| @"this"`
	Ident       *PosIdent `| @@`
	Lambda      *Lambda   `| @@`
	Parens      *Expr     `| "(" @@ ")"`
}
