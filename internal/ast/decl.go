package ast

// Program is the root of one parsed source file: a sequence of class and
// top-level function declarations. The analyzer resets its context
// (DataFlowAnalyzerContext) between the declarations of one Program,
// spec.md §5.
type Program struct {
	Pos     Position
	EndPos  Position
	NID     NodeID
	Classes []*ClassDecl
	Funcs   []*Function
}

func (p *Program) NodePos() Position    { return p.Pos }
func (p *Program) NodeEndPos() Position { return p.EndPos }
func (*Program) NodeType() NodeType     { return PROGRAM }
func (p *Program) ID() NodeID           { return p.NID }

// ClassDecl declares a named type with fields and methods. A method's
// implicit `this` is the receiver the ReceiverStack adapter refines
// (spec.md §4.4).
type ClassDecl struct {
	Pos     Position
	EndPos  Position
	NID     NodeID
	Name    Ident
	Fields  []*FieldDecl
	Methods []*Function
}

func (c *ClassDecl) NodePos() Position    { return c.Pos }
func (c *ClassDecl) NodeEndPos() Position { return c.EndPos }
func (*ClassDecl) NodeType() NodeType     { return CLASS_DECL }
func (c *ClassDecl) ID() NodeID           { return c.NID }

// FieldDecl is a class field. Only `val` (immutable) fields reached
// through a stable receiver chain are eligible for a RealVariable.
type FieldDecl struct {
	Pos          Position
	EndPos       Position
	NID          NodeID
	Name         Ident
	Mutable      bool
	VariableType *VariableType
}

func (f *FieldDecl) NodePos() Position    { return f.Pos }
func (f *FieldDecl) NodeEndPos() Position { return f.EndPos }
func (*FieldDecl) NodeType() NodeType     { return FIELD_DECL }
func (f *FieldDecl) ID() NodeID           { return f.NID }

// FunctionParam is a value parameter. Parameters are stable (spec.md
// §4.1) unless explicitly declared `var`.
type FunctionParam struct {
	Pos          Position
	EndPos       Position
	NID          NodeID
	Name         Ident
	Mutable      bool
	VariableType *VariableType
}

func (p *FunctionParam) NodePos() Position    { return p.Pos }
func (p *FunctionParam) NodeEndPos() Position { return p.EndPos }
func (*FunctionParam) NodeType() NodeType     { return FUNCTION_PARAM }
func (p *FunctionParam) ID() NodeID           { return p.NID }

// Function is a top-level function or a class method (Receiver != nil).
type Function struct {
	Pos        Position
	EndPos     Position
	NID        NodeID
	Name       Ident
	Receiver   *FunctionParam // non-nil for a method; its Name is "this"
	Params     []*FunctionParam
	ReturnType *VariableType // nil for Unit-returning functions
	Contract   *ContractClause
	Body       *FunctionBlock
}

func (f *Function) NodePos() Position    { return f.Pos }
func (f *Function) NodeEndPos() Position { return f.EndPos }
func (*Function) NodeType() NodeType     { return FUNCTION }
func (f *Function) ID() NodeID           { return f.NID }

// ContractEffectKind classifies a single declared effect, mirroring the
// modes spec.md §4.3 "processContracts" installs implications for.
type ContractEffectKind int

const (
	// EffectReturnsWildcard: "returns(...) implies <condition>" — the
	// condition holds whenever the call returns normally, regardless of
	// the returned value.
	EffectReturnsWildcard ContractEffectKind = iota
	// EffectReturnsTrue: "returns(true) implies <condition>".
	EffectReturnsTrue
	// EffectReturnsFalse: "returns(false) implies <condition>".
	EffectReturnsFalse
	// EffectReturnsNull: "returns(null) implies <condition>".
	EffectReturnsNull
	// EffectReturnsNotNull: "returns(notNull) implies <condition>".
	EffectReturnsNotNull
	// EffectForEachReturnValue: "returnsForEach(paramIndex) implies
	// <condition on the lambda parameter>" — spec.md
	// "getTypeUsingContractsForCollections".
	EffectForEachReturnValue
)

// ContractEffect is one declared effect inside a function's `contract {}`
// clause. Condition is a *drift* boolean expression over the function's
// formal parameters (or, for EffectForEachReturnValue, over the lambda
// argument's implicit parameter) — the ContractEngine evaluates it
// symbolically, never at runtime.
type ContractEffect struct {
	Kind      ContractEffectKind
	Condition Expr
	ParamIdx  int // which formal parameter this effect concerns, for ForEachReturnValue
}

// ContractClause is the optional `contract { effect; effect; ... }`
// attached to a function declaration — spec.md's ContractProvider
// collaborator surfaces these to the ContractEngine.
type ContractClause struct {
	Pos     Position
	EndPos  Position
	NID     NodeID
	Effects []*ContractEffect
}

func (c *ContractClause) NodePos() Position    { return c.Pos }
func (c *ContractClause) NodeEndPos() Position { return c.EndPos }
func (*ContractClause) NodeType() NodeType     { return CONTRACT_CLAUSE }
func (c *ContractClause) ID() NodeID           { return c.NID }
