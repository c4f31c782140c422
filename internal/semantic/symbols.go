// Package semantic drives the dataflow engine (internal/dataflow) over a
// parsed program: it owns name resolution, the class/function tables,
// and reports diagnostics with internal/errors. It plays the collaborator
// role spec.md leaves external to the engine itself — SymbolResolver,
// ContractProvider, TypeResolver — grounded on the teacher's
// SymbolTable/ContextRegistry split (symbols.go, context.go) but
// generalized for drift's class/contract surface instead of kanso's
// struct/module one.
package semantic

import (
	"driftc/internal/ast"
	"driftc/internal/types"
)

// SymbolKind mirrors dataflow.SymbolKind's classification, kept as its
// own type so the resolver doesn't need to import dataflow just to build
// a Symbol during declaration collection.
type SymbolKind int

const (
	SymLocal SymbolKind = iota
	SymParam
	SymField
	SymThis
)

// Symbol is one resolver-owned binding: a local, a parameter, a field or
// the receiver, with enough information to answer both ResolveIdent and
// the stability judgment spec.md §4.1 requires.
type Symbol struct {
	Kind         SymbolKind
	Name         string
	DeclID       ast.NodeID
	Mutable      bool
	DeclaredType types.Type
	Used         bool
	Pos          ast.Position
}

func (s *Symbol) stable() bool {
	// Locals declared `var` remain stable in drift's variable sense
	// (spec.md §4.1 note: no closures, so nothing aliases a var local
	// between reads) — only a mutable *field* loses the stability
	// judgment, since another alias of the same receiver can write it
	// between two reads through this one.
	if s.Kind == SymField {
		return !s.Mutable
	}
	return true
}

// Scope is one lexical block's bindings, chained to its parent for
// lookup — grounded on the teacher's SymbolTable (internal/semantic/symbols.go).
type Scope struct {
	symbols map[string]*Symbol
	parent  *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{symbols: make(map[string]*Symbol), parent: parent}
}

func (s *Scope) Define(sym *Symbol) {
	s.symbols[sym.Name] = sym
}

func (s *Scope) Lookup(name string) (*Symbol, bool) {
	if sym, ok := s.symbols[name]; ok {
		return sym, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}
