package dataflow

import (
	"driftc/internal/ast"
	"driftc/internal/types"
)

// ContractProvider surfaces a callee's declared `contract {}` clause by
// name — implemented by the resolver's function table (spec.md §4.4
// "ContractEngine's collaborator").
type ContractProvider interface {
	ContractFor(funcName string) (*ast.ContractClause, []*ast.FunctionParam, bool)
}

// TypeResolver resolves a surface VariableType to the engine's Type —
// the ContractEngine needs this to turn a contract's `is T` condition
// into a TypeStatement member.
type TypeResolver interface {
	ResolveVariableType(*ast.VariableType) types.Type
}

// ContractEngine evaluates a callee's declared contract symbolically
// against one call site's actual argument variables, producing the
// direct facts and conditional implications the analyzer installs after
// visiting the call (spec.md §4.3 "Contracts", §4.4).
type ContractEngine struct {
	provider ContractProvider
	types    TypeResolver
}

func NewContractEngine(provider ContractProvider, types TypeResolver) *ContractEngine {
	return &ContractEngine{provider: provider, types: types}
}

// ProcessContracts looks up calleeName's contract and evaluates each
// effect against argVars (the dataflow Variable for each actual argument,
// parallel to the callee's formal parameter list) and resultVar (the
// call expression's own variable, real or synthetic). It returns facts
// that hold unconditionally once the call returns (EffectReturnsWildcard)
// and facts that hold conditionally on the returned value
// (spec.md §4.3 "processContracts").
func (ce *ContractEngine) ProcessContracts(calleeName string, argVars []Variable, resultVar Variable) (direct []Statement, implications []Implication) {
	clause, params, ok := ce.provider.ContractFor(calleeName)
	if !ok || clause == nil {
		return nil, nil
	}

	subst := make(mapSubst, len(params))
	for i, p := range params {
		if i < len(argVars) {
			subst[p.Name.Value] = argVars[i]
		}
	}

	for _, effect := range clause.Effects {
		switch effect.Kind {
		case ast.EffectReturnsWildcard:
			if s := ce.evalWith(effect.Condition, subst); s != nil {
				direct = append(direct, s)
			}
		case ast.EffectReturnsTrue:
			if s := ce.evalWith(effect.Condition, subst); s != nil {
				implications = append(implications, Implication{
					Condition: OperationStatement{Variable: resultVar, Op: EqTrue},
					Effect:    s,
				})
			}
		case ast.EffectReturnsFalse:
			if s := ce.evalWith(effect.Condition, subst); s != nil {
				implications = append(implications, Implication{
					Condition: OperationStatement{Variable: resultVar, Op: EqFalse},
					Effect:    s,
				})
			}
		case ast.EffectReturnsNull:
			if s := ce.evalWith(effect.Condition, subst); s != nil {
				implications = append(implications, Implication{
					Condition: OperationStatement{Variable: resultVar, Op: EqNull},
					Effect:    s,
				})
			}
		case ast.EffectReturnsNotNull:
			if s := ce.evalWith(effect.Condition, subst); s != nil {
				implications = append(implications, Implication{
					Condition: OperationStatement{Variable: resultVar, Op: NotEqNull},
					Effect:    s,
				})
			}
		case ast.EffectForEachReturnValue:
			// Handled separately by LambdaParameterFacts once the lambda
			// body's implicit parameter variable exists.
		}
	}
	return direct, implications
}

// Lookup returns calleeName's declared contract clause, if any — used by
// the analyzer to seed a trailing lambda's implicit parameter before
// LambdaParameterFacts can be applied.
func (ce *ContractEngine) Lookup(calleeName string) (*ast.ContractClause, bool) {
	clause, _, ok := ce.provider.ContractFor(calleeName)
	return clause, ok
}

// LambdaParameterFacts evaluates an EffectForEachReturnValue effect
// against a single lambda-implicit-parameter variable, producing facts
// that hold unconditionally for the duration of the lambda body
// (spec.md §4.3 scenario 8, "getTypeUsingContractsForCollections").
// Every identifier in the effect's condition is treated as a reference to
// the lambda's sole parameter — ForEachReturnValue contracts are only
// ever declared over a single-argument lambda.
func (ce *ContractEngine) LambdaParameterFacts(clause *ast.ContractClause, lambdaParamVar Variable) []Statement {
	if clause == nil {
		return nil
	}
	var facts []Statement
	for _, effect := range clause.Effects {
		if effect.Kind != ast.EffectForEachReturnValue {
			continue
		}
		if s := ce.evalWith(effect.Condition, singleSubst{lambdaParamVar}); s != nil {
			facts = append(facts, s)
		}
	}
	return facts
}

// singleSubst implements the substitution lookup used by
// LambdaParameterFacts: every name resolves to the same variable.
type singleSubst struct{ v Variable }

func (s singleSubst) lookup(string) (Variable, bool) { return s.v, true }

type substitution interface {
	lookup(name string) (Variable, bool)
}

type mapSubst map[string]Variable

func (m mapSubst) lookup(name string) (Variable, bool) { v, ok := m[name]; return v, ok }

func (ce *ContractEngine) identVar(e ast.Expr, sub substitution) (Variable, bool) {
	for {
		if p, ok := e.(*ast.ParenExpr); ok {
			e = p.Value
			continue
		}
		break
	}
	id, ok := e.(*ast.IdentExpr)
	if !ok {
		return nil, false
	}
	return sub.lookup(id.Name)
}

func isNullLiteral(e ast.Expr) bool {
	lit, ok := e.(*ast.LiteralExpr)
	return ok && lit.Kind == ast.NullLiteral
}

func (ce *ContractEngine) evalWith(cond ast.Expr, sub substitution) Statement {
	switch e := cond.(type) {
	case *ast.ParenExpr:
		return ce.evalWith(e.Value, sub)

	case *ast.IdentExpr:
		if v, ok := sub.lookup(e.Name); ok {
			return OperationStatement{Variable: v, Op: EqTrue}
		}
		return nil

	case *ast.UnaryExpr:
		if e.Op != "!" {
			return nil
		}
		inner := ce.evalWith(e.Value, sub)
		os, ok := inner.(OperationStatement)
		if !ok {
			return nil
		}
		return OperationStatement{Variable: os.Variable, Op: os.Op.Negate()}

	case *ast.BinaryExpr:
		if !e.IsEqualityOp() {
			return nil
		}
		negate := e.Op == "!=" || e.Op == "!=="
		if v, ok := ce.identVar(e.Left, sub); ok && isNullLiteral(e.Right) {
			if negate {
				return OperationStatement{Variable: v, Op: NotEqNull}
			}
			return OperationStatement{Variable: v, Op: EqNull}
		}
		if v, ok := ce.identVar(e.Right, sub); ok && isNullLiteral(e.Left) {
			if negate {
				return OperationStatement{Variable: v, Op: NotEqNull}
			}
			return OperationStatement{Variable: v, Op: EqNull}
		}
		return nil

	case *ast.IsExpr:
		if e.Negated {
			return nil
		}
		v, ok := ce.identVar(e.Value, sub)
		if !ok || ce.types == nil {
			return nil
		}
		t := ce.types.ResolveVariableType(e.Type)
		if t == nil {
			return nil
		}
		rv, ok := v.(*RealVariable)
		if !ok {
			return nil
		}
		return &TypeStatement{Variable: rv, ExactType: []types.Type{t}}

	default:
		return nil
	}
}
