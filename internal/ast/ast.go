// Package ast defines the syntax tree for drift, the small statically typed
// expression language the dataflow engine analyzes. The shapes mirror the
// teacher's kanso AST (Position, per-type Pos/EndPos fields, doc comments)
// but the node set is generalized to carry nullable types, type tests,
// safe-calls, when-expressions and contracts.
package ast

import "fmt"

// Position tracks location information for error reporting and tooling.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// NodeID uniquely identifies an AST node within one parse. It doubles as the
// "expression identity" the dataflow engine keys synthetic variables and
// memoized real/synthetic lookups on (VariableStorage, spec.md §4.1).
type NodeID uint32

// IDGen hands out NodeIDs during a single parse.
type IDGen struct{ next NodeID }

func (g *IDGen) Next() NodeID {
	g.next++
	return g.next
}

type NodeType int

const (
	ILLEGAL NodeType = iota
	IDENT
	VARIABLE_TYPE

	PROGRAM
	CLASS_DECL
	FIELD_DECL
	FUNCTION
	FUNCTION_PARAM
	FUNCTION_BLOCK
	CONTRACT_CLAUSE

	EXPR_STMT
	RETURN_STMT
	LET_STMT
	ASSIGN_STMT
	ASSERT_STMT
	WHILE_STMT

	BINARY_EXPR
	UNARY_EXPR
	IS_EXPR
	AS_EXPR
	NOT_NULL_ASSERT_EXPR
	SAFE_CALL_EXPR
	ELVIS_EXPR
	CALL_EXPR
	FIELD_ACCESS_EXPR
	IDENT_EXPR
	LITERAL_EXPR
	PAREN_EXPR
	IF_EXPR
	WHEN_EXPR
	LAMBDA_EXPR
)

// Node is implemented by every syntax tree element. ID is the expression
// identity used to memoize synthetic dataflow variables per spec.md §4.1.
type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	ID() NodeID
}

// Ident is a bare identifier: a variable, parameter, field or type name.
type Ident struct {
	Pos    Position
	EndPos Position
	NID    NodeID
	Value  string
}

func (i *Ident) NodePos() Position    { return i.Pos }
func (i *Ident) NodeEndPos() Position { return i.EndPos }
func (*Ident) NodeType() NodeType     { return IDENT }
func (i *Ident) ID() NodeID           { return i.NID }

// VariableType is a (possibly nullable, possibly generic) type reference,
// e.g. "Any", "String?", "List<Int>".
type VariableType struct {
	Pos      Position
	EndPos   Position
	NID      NodeID
	Name     string
	Nullable bool
	Generics []*VariableType
}

func (t *VariableType) NodePos() Position    { return t.Pos }
func (t *VariableType) NodeEndPos() Position { return t.EndPos }
func (*VariableType) NodeType() NodeType      { return VARIABLE_TYPE }
func (t *VariableType) ID() NodeID            { return t.NID }

func (t *VariableType) String() string {
	s := t.Name
	if len(t.Generics) > 0 {
		s += "<"
		for i, g := range t.Generics {
			if i > 0 {
				s += ", "
			}
			s += g.String()
		}
		s += ">"
	}
	if t.Nullable {
		s += "?"
	}
	return s
}
