package dataflow

import (
	"fmt"
	"sort"
	"strings"

	"driftc/internal/types"
)

// Statement is either a TypeStatement or an OperationStatement — the two
// atoms the logic is built from (spec.md §3, GLOSSARY).
type Statement interface {
	isStatement()
	String() string
}

// TypeStatement: "at this program point, variable's value belongs to
// every type in ExactType" — their intersection refines the declared
// type. ExactType is logically a set; String() sorts it for readability
// but membership, not order, is the semantic content (spec.md §3).
type TypeStatement struct {
	Variable  *RealVariable
	ExactType []types.Type
}

func (*TypeStatement) isStatement() {}

// Empty reports whether this statement is trivially true (spec.md §3).
func (ts *TypeStatement) Empty() bool { return len(ts.ExactType) == 0 }

func (ts *TypeStatement) String() string {
	names := make([]string, len(ts.ExactType))
	for i, t := range ts.ExactType {
		names[i] = t.String()
	}
	sort.Strings(names)
	return fmt.Sprintf("%s hasType %s", ts.Variable, strings.Join(names, " & "))
}

// clone returns a TypeStatement with an independent ExactType slice, so
// callers can extend it without mutating a statement another Flow still
// references (Flow persistence, spec.md §3).
func (ts *TypeStatement) clone() *TypeStatement {
	cp := make([]types.Type, len(ts.ExactType))
	copy(cp, ts.ExactType)
	return &TypeStatement{Variable: ts.Variable, ExactType: cp}
}

// Operation is one of the four atoms an OperationStatement can assert.
type Operation int

const (
	EqTrue Operation = iota
	EqFalse
	EqNull
	NotEqNull
)

func (op Operation) String() string {
	switch op {
	case EqTrue:
		return "EqTrue"
	case EqFalse:
		return "EqFalse"
	case EqNull:
		return "EqNull"
	case NotEqNull:
		return "NotEqNull"
	default:
		panic(fmt.Sprintf("dataflow: unknown operation %d", int(op)))
	}
}

// Negate returns the logical opposite within the same pair (EqTrue <->
// EqFalse, EqNull <-> NotEqNull). Negating across pairs is meaningless
// and is a programmer error, matching spec.md §7's "inconsistent storage
// state" fatal-condition philosophy.
func (op Operation) Negate() Operation {
	switch op {
	case EqTrue:
		return EqFalse
	case EqFalse:
		return EqTrue
	case EqNull:
		return NotEqNull
	case NotEqNull:
		return EqNull
	default:
		panic(fmt.Sprintf("dataflow: unknown operation %d", int(op)))
	}
}

// OperationStatement is the atom `(variable, operation)`, e.g. "v is
// true", "v is null" (spec.md §3).
type OperationStatement struct {
	Variable Variable
	Op       Operation
}

func (OperationStatement) isStatement() {}

func (os OperationStatement) String() string {
	return fmt.Sprintf("%s %s", os.Variable, os.Op)
}

// Implication is `condition ⟹ effect` (spec.md §3, GLOSSARY).
type Implication struct {
	Condition OperationStatement
	Effect    Statement
}

func (i Implication) String() string {
	return fmt.Sprintf("(%s) ⟹ (%s)", i.Condition, i.Effect)
}

// equalStatement is structural equality between two Statements — needed
// because logicStatements is not a native Go set (Statement can hold a
// *TypeStatement, and two independently-built TypeStatements with the
// same content must compare equal for join/approve to behave correctly).
func equalStatement(a, b Statement) bool {
	switch av := a.(type) {
	case *TypeStatement:
		bv, ok := b.(*TypeStatement)
		if !ok || av.Variable != bv.Variable || len(av.ExactType) != len(bv.ExactType) {
			return false
		}
		for _, t := range av.ExactType {
			if !containsTypeByName(bv.ExactType, t) {
				return false
			}
		}
		return true
	case OperationStatement:
		bv, ok := b.(OperationStatement)
		return ok && av.Variable == bv.Variable && av.Op == bv.Op
	default:
		return false
	}
}

func containsTypeByName(ts []types.Type, t types.Type) bool {
	for _, c := range ts {
		if c.String() == t.String() {
			return true
		}
	}
	return false
}

func equalImplication(a, b Implication) bool {
	return a.Condition == b.Condition && equalStatement(a.Effect, b.Effect)
}
