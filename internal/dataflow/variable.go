// Package dataflow is the CORE of the engine described in spec.md: the
// dataflow/smartcast analyzer for a statically typed front end. It is
// organized exactly as spec.md §2 lays out: VariableStorage (this file),
// Flow/LogicSystem (flow.go, logic.go), the ReceiverStack adapter
// (receiver.go), the ContractEngine (contracts.go) and the
// DataFlowAnalyzer visitor (analyzer.go, context.go).
package dataflow

import (
	"fmt"

	"github.com/google/uuid"

	"driftc/internal/ast"
	"driftc/internal/types"
)

// Variable is a DataFlowVariable (spec.md §3): the identity the logic is
// built over. Exactly two variants exist — RealVariable and
// SyntheticVariable — dispatched by type switch, never by virtual call,
// matching the teacher's closed-variant style (kanso's ast.Node).
type Variable interface {
	isDataFlowVariable()
	String() string
}

// SymbolKind classifies what a RealVariable names.
type SymbolKind int

const (
	SymLocal SymbolKind = iota // a `val` or `var` local
	SymParam                   // a value parameter
	SymField                   // a class field reached through a receiver
	SymThis                    // the implicit receiver itself
)

// Symbol identifies the declaration a RealVariable refers to. DeclID
// disambiguates shadowing: two locals named "x" in nested scopes have
// distinct DeclIDs (their LetStmt/FunctionParam node identities).
type Symbol struct {
	Kind   SymbolKind
	Name   string
	DeclID ast.NodeID
}

// RealVariable is a stable identifier for an lvalue the program can name:
// a symbol plus its explicit receiver chain. Equality is structural on
// (symbol, receiver chain, isReceiver) — spec.md §3 — which is exactly
// what Go's struct equality gives us here, since Receiver is itself an
// interned *RealVariable pointer.
type RealVariable struct {
	Sym        Symbol
	Receiver   *RealVariable
	IsReceiver bool
}

func (*RealVariable) isDataFlowVariable() {}

func (v *RealVariable) String() string {
	if v.Receiver != nil {
		return v.Receiver.String() + "." + v.Sym.Name
	}
	return v.Sym.Name
}

// SyntheticVariable is an opaque token for a transient expression — a
// `when` condition, a safe-call result, a boolean-operator subexpression.
// It carries operation statements but never a type refinement, because
// the expression it decorates is unnameable after the statement that
// produced it (spec.md §3).
type SyntheticVariable struct {
	token  string // cosmetic stable label, not used for equality
	exprID ast.NodeID
}

func (*SyntheticVariable) isDataFlowVariable() {}

func (v *SyntheticVariable) String() string {
	return fmt.Sprintf("$%s", v.token)
}

// SymbolInfo is what the resolver (internal/semantic) reports about a
// name so VariableStorage can decide RealVariable eligibility without
// itself doing name resolution — spec.md §1 keeps that out of scope for
// the engine.
type SymbolInfo struct {
	Kind   SymbolKind
	Name   string
	DeclID ast.NodeID
	// Stable is the §4.1 "Stability rule" judgment for this single link:
	// a local val, a parameter (a `var` parameter included, for the same
	// reason as a local `var` below), `this`, or a final
	// (non-var) field. A local `var` is also treated as stable here — it
	// is not captured by a closure in drift (closures are out of scope,
	// SPEC_FULL.md Non-goals), so nothing else can alias it between
	// reads, and scope-erasure on reassignment (spec.md testable
	// property 6) is enforced separately by the assignment handler.
	Stable bool
	// DeclaredType is the field/parameter/local's declared (unrefined)
	// type, used to seed directAliasMap's "originalType" and the
	// ReceiverStack's fallback type.
	DeclaredType types.Type
}

// SymbolResolver is the narrow slice of the resolver's symbol table that
// VariableStorage needs: is this name stable, and what does it resolve
// to. Implemented by internal/semantic.Scope.
type SymbolResolver interface {
	ResolveIdent(name string, useSiteID ast.NodeID) (SymbolInfo, bool)
	ResolveField(receiverType types.Type, fieldName string, useSiteID ast.NodeID) (SymbolInfo, bool)
}

// VariableStorage interns RealVariables and memoizes SyntheticVariables,
// spec.md §4.1.
type VariableStorage struct {
	reals      map[RealVariable]*RealVariable
	synthetics map[ast.NodeID]*SyntheticVariable
}

func NewVariableStorage() *VariableStorage {
	return &VariableStorage{
		reals:      make(map[RealVariable]*RealVariable),
		synthetics: make(map[ast.NodeID]*SyntheticVariable),
	}
}

func (s *VariableStorage) intern(sym Symbol, receiver *RealVariable, isReceiver bool) *RealVariable {
	key := RealVariable{Sym: sym, Receiver: receiver, IsReceiver: isReceiver}
	if existing, ok := s.reals[key]; ok {
		return existing
	}
	rv := &RealVariable{Sym: sym, Receiver: receiver, IsReceiver: isReceiver}
	s.reals[key] = rv
	return rv
}

// GetOrCreateReal returns the canonical RealVariable for expr's (symbol,
// receiver chain), following directAliasMap so reads observe the
// variable the expression currently aliases. Returns ok=false if expr's
// symbol is not stable (spec.md §4.1).
func (s *VariableStorage) GetOrCreateReal(flow *Flow, resolver SymbolResolver, expr ast.Expr) (*RealVariable, bool) {
	rv, ok := s.realWithoutUnwrapping(resolver, expr)
	if !ok {
		return nil, false
	}
	return s.unwrapAlias(flow, rv), true
}

// GetOrCreateRealWithoutUnwrapping is as above but does not follow
// directAliasMap — used on the LHS of an assignment so aliasing can be
// refreshed (spec.md §4.1).
func (s *VariableStorage) GetOrCreateRealWithoutUnwrapping(resolver SymbolResolver, expr ast.Expr) (*RealVariable, bool) {
	return s.realWithoutUnwrapping(resolver, expr)
}

func (s *VariableStorage) realWithoutUnwrapping(resolver SymbolResolver, expr ast.Expr) (*RealVariable, bool) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return s.realWithoutUnwrapping(resolver, e.Value)

	case *ast.IdentExpr:
		info, ok := resolver.ResolveIdent(e.Name, e.ID())
		if !ok || !info.Stable {
			return nil, false
		}
		return s.intern(Symbol{Kind: info.Kind, Name: info.Name, DeclID: info.DeclID}, nil, info.Kind == SymThis), true

	case *ast.FieldAccessExpr:
		targetRV, ok := s.realWithoutUnwrapping(resolver, e.Target)
		if !ok {
			return nil, false
		}
		receiverType := s.DeclaredTypeOf(resolver, e.Target)
		info, ok := resolver.ResolveField(receiverType, e.Name.Value, e.ID())
		if !ok || !info.Stable {
			return nil, false
		}
		return s.intern(Symbol{Kind: SymField, Name: info.Name, DeclID: info.DeclID}, targetRV, false), true

	default:
		return nil, false
	}
}

// DeclaredTypeOf re-resolves expr's symbol just far enough to recover its
// declared (unrefined) type, for callers that already hold a RealVariable
// from GetOrCreateReal and now need to seed the analyzer context's
// declared-type table (variable.go keeps no type information of its own —
// spec.md §1 keeps type resolution external to VariableStorage).
func (s *VariableStorage) DeclaredTypeOf(resolver SymbolResolver, expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return s.DeclaredTypeOf(resolver, e.Value)
	case *ast.IdentExpr:
		if info, ok := resolver.ResolveIdent(e.Name, e.ID()); ok {
			return info.DeclaredType
		}
	case *ast.FieldAccessExpr:
		if _, ok := s.realWithoutUnwrapping(resolver, e.Target); !ok {
			return nil
		}
		if info, ok := resolver.ResolveField(s.DeclaredTypeOf(resolver, e.Target), e.Name.Value, e.ID()); ok {
			return info.DeclaredType
		}
	}
	return nil
}

func (s *VariableStorage) unwrapAlias(flow *Flow, rv *RealVariable) *RealVariable {
	if flow == nil {
		return rv
	}
	seen := map[*RealVariable]bool{}
	for {
		alias, ok := flow.directAliasMap[rv]
		if !ok || seen[rv] {
			return rv
		}
		seen[rv] = true
		rv = alias.Target
	}
}

// CreateSynthetic returns a fresh SyntheticVariable bound to expr's
// identity, memoized so repeated lookups for the same expression (e.g.
// the analyzer visiting an `is` expression's entry and exit) see the
// same token.
func (s *VariableStorage) CreateSynthetic(expr ast.Expr) *SyntheticVariable {
	if existing, ok := s.synthetics[expr.ID()]; ok {
		return existing
	}
	sv := &SyntheticVariable{token: uuid.NewString()[:8], exprID: expr.ID()}
	s.synthetics[expr.ID()] = sv
	return sv
}

// GetOrCreateVariable returns a RealVariable if expr's symbol is stable,
// otherwise a SyntheticVariable — memoized on expression identity either
// way (spec.md §4.1).
func (s *VariableStorage) GetOrCreateVariable(flow *Flow, resolver SymbolResolver, expr ast.Expr) Variable {
	if rv, ok := s.GetOrCreateReal(flow, resolver, expr); ok {
		return rv
	}
	return s.CreateSynthetic(expr)
}

// RemoveReal drops interning for every RealVariable naming this symbol —
// used when a value parameter's scope exits (spec.md §3 lifecycle).
func (s *VariableStorage) RemoveReal(declID ast.NodeID) {
	for k := range s.reals {
		if k.Sym.DeclID == declID {
			delete(s.reals, k)
		}
	}
}

// Clear wipes all state between top-level declarations (spec.md §5).
func (s *VariableStorage) Clear() {
	s.reals = make(map[RealVariable]*RealVariable)
	s.synthetics = make(map[ast.NodeID]*SyntheticVariable)
}
