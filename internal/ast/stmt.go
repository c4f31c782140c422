package ast

// FunctionBlockItem is a statement inside a function body.
type FunctionBlockItem interface {
	Node
	isFunctionBlockItem()
}

// FunctionBlock is a braced sequence of statements with an optional tail
// expression (the block's value when used as an expression, e.g. the arm
// of an IfExpr/WhenExpr or a function body).
type FunctionBlock struct {
	Pos      Position
	EndPos   Position
	NID      NodeID
	Items    []FunctionBlockItem
	TailExpr Expr // nil if the block ends in a statement, not an expression
}

func (b *FunctionBlock) NodePos() Position    { return b.Pos }
func (b *FunctionBlock) NodeEndPos() Position { return b.EndPos }
func (*FunctionBlock) NodeType() NodeType     { return FUNCTION_BLOCK }
func (b *FunctionBlock) ID() NodeID           { return b.NID }

// ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Expr   Expr
}

func (e *ExprStmt) NodePos() Position    { return e.Pos }
func (e *ExprStmt) NodeEndPos() Position { return e.EndPos }
func (*ExprStmt) NodeType() NodeType     { return EXPR_STMT }
func (e *ExprStmt) ID() NodeID           { return e.NID }
func (*ExprStmt) isFunctionBlockItem()   {}

// ReturnStmt is `return [value]`.
type ReturnStmt struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Value  Expr // nil for a bare `return`
}

func (r *ReturnStmt) NodePos() Position    { return r.Pos }
func (r *ReturnStmt) NodeEndPos() Position { return r.EndPos }
func (*ReturnStmt) NodeType() NodeType     { return RETURN_STMT }
func (r *ReturnStmt) ID() NodeID           { return r.NID }
func (*ReturnStmt) isFunctionBlockItem()   {}

// LetStmt is `val name[: T] = expr` or `var name[: T] = expr`. Only `val`
// locals (and `this`/stable parameters) are eligible for a RealVariable —
// spec.md §4.1 "Stability rule".
type LetStmt struct {
	Pos          Position
	EndPos       Position
	NID          NodeID
	Name         Ident
	Mutable      bool // true for `var`, false for `val`
	VariableType *VariableType
	Expr         Expr
}

func (l *LetStmt) NodePos() Position    { return l.Pos }
func (l *LetStmt) NodeEndPos() Position { return l.EndPos }
func (*LetStmt) NodeType() NodeType     { return LET_STMT }
func (l *LetStmt) ID() NodeID           { return l.NID }
func (*LetStmt) isFunctionBlockItem()   {}

// AssignStmt is `target = value`, reassigning a local `var` or a field.
type AssignStmt struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Target Expr
	Value  Expr
}

func (a *AssignStmt) NodePos() Position    { return a.Pos }
func (a *AssignStmt) NodeEndPos() Position { return a.EndPos }
func (*AssignStmt) NodeType() NodeType     { return ASSIGN_STMT }
func (a *AssignStmt) ID() NodeID           { return a.NID }
func (*AssignStmt) isFunctionBlockItem()   {}

// AssertStmt is `assert(cond, args...)`. It can terminate execution but
// is not treated as a definitive return, matching kanso's own
// RequireStmt handling in flow_analyzer.go.
type AssertStmt struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Args   []Expr
}

func (a *AssertStmt) NodePos() Position    { return a.Pos }
func (a *AssertStmt) NodeEndPos() Position { return a.EndPos }
func (*AssertStmt) NodeType() NodeType     { return ASSERT_STMT }
func (a *AssertStmt) ID() NodeID           { return a.NID }
func (*AssertStmt) isFunctionBlockItem()   {}

// WhileStmt is `while (cond) body`. `for` has no special dataflow
// semantics beyond the unrolled CFG the GraphBuilder produces (spec.md
// §4.3 "Loops") so it is not a distinct AST node here.
type WhileStmt struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Cond   Expr
	Body   *FunctionBlock
}

func (w *WhileStmt) NodePos() Position    { return w.Pos }
func (w *WhileStmt) NodeEndPos() Position { return w.EndPos }
func (*WhileStmt) NodeType() NodeType     { return WHILE_STMT }
func (w *WhileStmt) ID() NodeID           { return w.NID }
func (*WhileStmt) isFunctionBlockItem()   {}
