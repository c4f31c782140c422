package ast

// Expr is any expression node. Every expression has an identity (ID) that
// VariableStorage uses to intern or memoize its dataflow variable.
type Expr interface {
	Node
	isExpr()
}

// LiteralKind distinguishes the handful of literal forms drift supports.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	BoolLiteral
	StringLiteral
	NullLiteral
)

// LiteralExpr is an integer, boolean, string or `null` literal.
type LiteralExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Kind   LiteralKind
	Value  string // raw lexeme; "true"/"false" for bools, "null" for NullLiteral
}

func (l *LiteralExpr) NodePos() Position    { return l.Pos }
func (l *LiteralExpr) NodeEndPos() Position { return l.EndPos }
func (*LiteralExpr) NodeType() NodeType     { return LITERAL_EXPR }
func (l *LiteralExpr) ID() NodeID           { return l.NID }
func (*LiteralExpr) isExpr()                {}

// IdentExpr is a use of a name: a local, parameter, field or `this`.
type IdentExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Name   string
}

func (i *IdentExpr) NodePos() Position    { return i.Pos }
func (i *IdentExpr) NodeEndPos() Position { return i.EndPos }
func (*IdentExpr) NodeType() NodeType     { return IDENT_EXPR }
func (i *IdentExpr) ID() NodeID           { return i.NID }
func (*IdentExpr) isExpr()                {}

// ParenExpr is a parenthesized expression, kept distinct from its inner
// value so positions stay accurate; it is transparent to the dataflow
// engine (the operand's variable/statements are the ones that matter).
type ParenExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Value  Expr
}

func (p *ParenExpr) NodePos() Position    { return p.Pos }
func (p *ParenExpr) NodeEndPos() Position { return p.EndPos }
func (*ParenExpr) NodeType() NodeType     { return PAREN_EXPR }
func (p *ParenExpr) ID() NodeID           { return p.NID }
func (*ParenExpr) isExpr()                {}

// BinaryExpr covers arithmetic, comparison, equality (==, !=, ===, !==) and
// the boolean operators (&&, ||) — spec.md §4.3 "Equality" and "Boolean
// operators".
type BinaryExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Op     string
	Left   Expr
	Right  Expr
}

func (b *BinaryExpr) NodePos() Position    { return b.Pos }
func (b *BinaryExpr) NodeEndPos() Position { return b.EndPos }
func (*BinaryExpr) NodeType() NodeType     { return BINARY_EXPR }
func (b *BinaryExpr) ID() NodeID           { return b.NID }
func (*BinaryExpr) isExpr()                {}

func (b *BinaryExpr) IsEqualityOp() bool {
	switch b.Op {
	case "==", "!=", "===", "!==":
		return true
	}
	return false
}

func (b *BinaryExpr) IsBooleanOp() bool { return b.Op == "&&" || b.Op == "||" }

// UnaryExpr is prefix `!` (boolean negation) or `-` (arithmetic negation).
type UnaryExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Op     string
	Value  Expr
}

func (u *UnaryExpr) NodePos() Position    { return u.Pos }
func (u *UnaryExpr) NodeEndPos() Position { return u.EndPos }
func (*UnaryExpr) NodeType() NodeType     { return UNARY_EXPR }
func (u *UnaryExpr) ID() NodeID           { return u.NID }
func (*UnaryExpr) isExpr()                {}

// IsExpr is `x is T` / `x !is T` (spec.md §4.3 "Type tests").
type IsExpr struct {
	Pos     Position
	EndPos  Position
	NID     NodeID
	Value   Expr
	Type    *VariableType
	Negated bool
}

func (e *IsExpr) NodePos() Position    { return e.Pos }
func (e *IsExpr) NodeEndPos() Position { return e.EndPos }
func (*IsExpr) NodeType() NodeType     { return IS_EXPR }
func (e *IsExpr) ID() NodeID           { return e.NID }
func (*IsExpr) isExpr()                {}

// AsExpr is `x as T` (unchecked cast) or `x as? T` (safe cast), spec.md
// §4.3 "Unchecked / safe casts".
type AsExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Value  Expr
	Type   *VariableType
	Safe   bool
}

func (e *AsExpr) NodePos() Position    { return e.Pos }
func (e *AsExpr) NodeEndPos() Position { return e.EndPos }
func (*AsExpr) NodeType() NodeType     { return AS_EXPR }
func (e *AsExpr) ID() NodeID           { return e.NID }
func (*AsExpr) isExpr()                {}

// NotNullAssertExpr is `x!!`, spec.md §4.3 "Null-check expression".
type NotNullAssertExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Value  Expr
}

func (e *NotNullAssertExpr) NodePos() Position    { return e.Pos }
func (e *NotNullAssertExpr) NodeEndPos() Position { return e.EndPos }
func (*NotNullAssertExpr) NodeType() NodeType     { return NOT_NULL_ASSERT_EXPR }
func (e *NotNullAssertExpr) ID() NodeID           { return e.NID }
func (*NotNullAssertExpr) isExpr()                {}

// SafeCallExpr is `x?.sel`, where Selector is either a CallExpr or a
// FieldAccessExpr whose Target is the (elided) receiver — spec.md §4.3
// "Safe call".
type SafeCallExpr struct {
	Pos      Position
	EndPos   Position
	NID      NodeID
	Receiver Expr
	Selector Expr // *CallExpr or *FieldAccessExpr, Target left nil
}

func (e *SafeCallExpr) NodePos() Position    { return e.Pos }
func (e *SafeCallExpr) NodeEndPos() Position { return e.EndPos }
func (*SafeCallExpr) NodeType() NodeType     { return SAFE_CALL_EXPR }
func (e *SafeCallExpr) ID() NodeID           { return e.NID }
func (*SafeCallExpr) isExpr()                {}

// ElvisExpr is `x ?: default` (supplemented feature, SPEC_FULL.md §5).
type ElvisExpr struct {
	Pos     Position
	EndPos  Position
	NID     NodeID
	Left    Expr
	Default Expr
}

func (e *ElvisExpr) NodePos() Position    { return e.Pos }
func (e *ElvisExpr) NodeEndPos() Position { return e.EndPos }
func (*ElvisExpr) NodeType() NodeType     { return ELVIS_EXPR }
func (e *ElvisExpr) ID() NodeID           { return e.NID }
func (*ElvisExpr) isExpr()                {}

// CallExpr is a function/method call.
type CallExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Callee Expr
	Args   []Expr
	Lambda *LambdaExpr // trailing-lambda argument, nil if none
}

func (c *CallExpr) NodePos() Position    { return c.Pos }
func (c *CallExpr) NodeEndPos() Position { return c.EndPos }
func (*CallExpr) NodeType() NodeType     { return CALL_EXPR }
func (c *CallExpr) ID() NodeID           { return c.NID }
func (*CallExpr) isExpr()                {}

// FieldAccessExpr is `target.Name`.
type FieldAccessExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Target Expr
	Name   Ident
}

func (f *FieldAccessExpr) NodePos() Position    { return f.Pos }
func (f *FieldAccessExpr) NodeEndPos() Position { return f.EndPos }
func (*FieldAccessExpr) NodeType() NodeType     { return FIELD_ACCESS_EXPR }
func (f *FieldAccessExpr) ID() NodeID           { return f.NID }
func (*FieldAccessExpr) isExpr()                {}

// IfExpr is `if (cond) thenBlock [else elseBlock]`, usable as a statement
// (ExprStmt wrapping it, no else) or as a value expression.
type IfExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Cond   Expr
	Then   *FunctionBlock
	Else   *FunctionBlock // nil if no else branch
}

func (e *IfExpr) NodePos() Position    { return e.Pos }
func (e *IfExpr) NodeEndPos() Position { return e.EndPos }
func (*IfExpr) NodeType() NodeType     { return IF_EXPR }
func (e *IfExpr) ID() NodeID           { return e.NID }
func (*IfExpr) isExpr()                {}

// WhenBranch is one arm of a WhenExpr. A nil Condition marks the `else`
// branch (or the synthetic else the analyzer inserts for a non-exhaustive
// subject-less `when`, spec.md §4.3 "when expression").
type WhenBranch struct {
	Condition Expr
	Body      *FunctionBlock
}

// WhenExpr is `when (subject) { cond -> body; ... else -> body }` or the
// subject-less form `when { cond -> body; ... }` used purely for its
// branch conditions.
type WhenExpr struct {
	Pos      Position
	EndPos   Position
	NID      NodeID
	Subject  Expr // nil for the subject-less form
	Branches []*WhenBranch
}

func (e *WhenExpr) NodePos() Position    { return e.Pos }
func (e *WhenExpr) NodeEndPos() Position { return e.EndPos }
func (*WhenExpr) NodeType() NodeType     { return WHEN_EXPR }
func (e *WhenExpr) ID() NodeID           { return e.NID }
func (*WhenExpr) isExpr()                {}

// LambdaExpr is a trailing-lambda argument, e.g. `{ it is Int }` in
// `xs.filter { it is Int }` — needed to exercise ForEachReturnValue
// contracts (spec.md §4.3 "Contracts", scenario 8).
type LambdaExpr struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Params []Ident // usually empty; implicit parameter is named "it"
	Body   *FunctionBlock
}

func (l *LambdaExpr) NodePos() Position    { return l.Pos }
func (l *LambdaExpr) NodeEndPos() Position { return l.EndPos }
func (*LambdaExpr) NodeType() NodeType     { return LAMBDA_EXPR }
func (l *LambdaExpr) ID() NodeID           { return l.NID }
func (*LambdaExpr) isExpr()                {}
