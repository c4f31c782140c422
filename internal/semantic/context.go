package semantic

import (
	"driftc/internal/ast"
	"driftc/internal/types"
)

// ClassInfo is one declared class's field table, keyed by field name —
// the receiver-side half of ResolveField.
type ClassInfo struct {
	Decl   *ast.ClassDecl
	Fields map[string]*Symbol
}

// FuncInfo is one declared function or method's signature, keyed by
// name — the ContractProvider/call-resolution half of the registry.
type FuncInfo struct {
	Decl     *ast.Function
	Receiver *ClassInfo // non-nil for a method
}

// ProgramTable is the whole-program registry built once before any
// function is analyzed, so a call to a function declared later in the
// file (or a field of a class declared later) still resolves — grounded
// on the teacher's ContextRegistry (internal/semantic/context.go), slimmed
// to drift's class/fn declaration set.
type ProgramTable struct {
	Classes map[string]*ClassInfo
	Funcs   map[string]*FuncInfo
	types   *types.TypeContext
}

func NewProgramTable(tc *types.TypeContext) *ProgramTable {
	return &ProgramTable{
		Classes: make(map[string]*ClassInfo),
		Funcs:   make(map[string]*FuncInfo),
		types:   tc,
	}
}

// Build populates the table from a parsed Program, registering every
// class's fields with the TypeContext first so ResolveVariableType can
// already tell a user class from an unknown name while functions are
// being processed.
func (t *ProgramTable) Build(prog *ast.Program) {
	for _, cd := range prog.Classes {
		t.types.Registry().DeclareClass(cd.Name.Value)
		ci := &ClassInfo{Decl: cd, Fields: make(map[string]*Symbol)}
		for _, f := range cd.Fields {
			ci.Fields[f.Name.Value] = &Symbol{
				Kind: SymField, Name: f.Name.Value, DeclID: f.ID(),
				Mutable: f.Mutable, DeclaredType: t.resolveType(f.VariableType), Pos: f.Pos,
			}
		}
		t.Classes[cd.Name.Value] = ci
		for _, m := range cd.Methods {
			t.Funcs[m.Name.Value] = &FuncInfo{Decl: m, Receiver: ci}
		}
	}
	for _, fn := range prog.Funcs {
		t.Funcs[fn.Name.Value] = &FuncInfo{Decl: fn}
	}
}

func (t *ProgramTable) resolveType(vt *ast.VariableType) types.Type {
	if vt == nil {
		return nil
	}
	return t.types.ResolveVariableType(vt)
}
