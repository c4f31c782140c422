package semantic

import (
	"fmt"

	"driftc/internal/ast"
	"driftc/internal/cfg"
	"driftc/internal/dataflow"
	"driftc/internal/errors"
	"driftc/internal/stdlib"
	"driftc/internal/types"
)

// Resolver drives the dataflow engine over one parsed Program: it builds
// the whole-program class/function table, then analyzes each function
// and method body with a fresh scope and a fresh
// dataflow.DataFlowAnalyzerContext (spec.md §5 "reset between
// declarations"). It implements every collaborator interface the engine
// declares external to itself — dataflow.SymbolResolver,
// dataflow.ContractProvider, dataflow.TypeResolver — grounded on the
// teacher's Analyzer (internal/semantic/analyzer.go) playing the same
// role for kanso's own checks.
type Resolver struct {
	types *types.TypeContext
	table *ProgramTable
	scope *Scope
	errs  []errors.CompilerError
}

func NewResolver(tc *types.TypeContext) *Resolver {
	return &Resolver{types: tc, table: NewProgramTable(tc)}
}

func (r *Resolver) Errors() []errors.CompilerError { return r.errs }

func (r *Resolver) addError(e errors.CompilerError) { r.errs = append(r.errs, e) }

// AnalyzeProgram builds the class/function table and then runs the
// dataflow engine over every function and method body, returning the
// final Flow and unreachable-code findings per function (keyed by
// declaration identity) for callers that want smartcast query access
// after the fact (spec.md §6 "getTypeUsingSmartcastInfo").
type FunctionResult struct {
	Fn          *ast.Function
	FinalFlow   *dataflow.Flow
	Unreachable []ast.FunctionBlockItem
}

func (r *Resolver) AnalyzeProgram(prog *ast.Program) []FunctionResult {
	r.table.Build(prog)

	var results []FunctionResult
	for _, cd := range prog.Classes {
		ci := r.table.Classes[cd.Name.Value]
		for _, m := range cd.Methods {
			results = append(results, r.analyzeFunction(m, ci))
		}
	}
	for _, fn := range prog.Funcs {
		results = append(results, r.analyzeFunction(fn, nil))
	}
	return results
}

func (r *Resolver) analyzeFunction(fn *ast.Function, receiver *ClassInfo) (res FunctionResult) {
	// An internal fatal condition in the engine panics; recovering here
	// abandons only this declaration and reports it as a diagnostic.
	defer func() {
		if p := recover(); p != nil {
			r.addError(errors.NewSemanticError(errors.ErrorGenericSemantic,
				fmt.Sprintf("internal error while analyzing '%s': %v", fn.Name.Value, p), fn.Pos).Build())
			res = FunctionResult{Fn: fn}
		}
	}()
	r.scope = NewScope(nil)

	if fn.Receiver != nil {
		r.scope.Define(&Symbol{Kind: SymThis, Name: "this", DeclID: fn.Receiver.ID(), DeclaredType: r.classType(receiver)})
	}
	for _, p := range fn.Params {
		r.scope.Define(&Symbol{
			Kind: SymParam, Name: p.Name.Value, DeclID: p.ID(),
			Mutable: p.Mutable, DeclaredType: r.table.resolveType(p.VariableType),
		})
	}
	// ResolveIdent is purely name/identity lookup with no notion of "not
	// declared yet", so every `val`/`var` in the body is registered up
	// front rather than threading a declare-as-you-go hook through the
	// analyzer's visitor (spec.md §1 keeps that resolution external and
	// doesn't mandate a particular order for it).
	r.collectLocals(fn.Body)

	ctx := dataflow.NewDataFlowAnalyzerContext(r.types)
	ctx = ctx.WithContracts(dataflow.NewContractEngine(r, r))
	analyzer := dataflow.NewDataFlowAnalyzer(ctx, r, r.types)

	var recvType types.Type
	if receiver != nil {
		recvType = r.classType(receiver)
	}
	final := analyzer.AnalyzeFunction(fn, recvType)

	if fn.ReturnType != nil && !r.hasDefiniteReturn(fn.Body) {
		r.addError(errors.MissingReturnStatement(fn.Name.Value, fn.ReturnType.String(), fn.Body.EndPos))
	}

	graph := cfg.NewGraphBuilder().Build(fn.Body)
	unreachable := graph.UnreachableItems()
	for _, item := range unreachable {
		r.addError(errors.NewUnreachableCode(item.NodePos()))
	}

	return FunctionResult{Fn: fn, FinalFlow: final, Unreachable: unreachable}
}

// collectLocals walks every nested block reachable from body (if/else
// arms, while bodies, when branches, trailing lambdas) and defines each
// `val`/`var` it finds, so a use anywhere in the function resolves
// regardless of textual order relative to this prescan.
func (r *Resolver) collectLocals(body *ast.FunctionBlock) {
	if body == nil {
		return
	}
	for _, item := range body.Items {
		switch s := item.(type) {
		case *ast.LetStmt:
			r.scope.Define(&Symbol{
				Kind: SymLocal, Name: s.Name.Value, DeclID: s.ID(),
				Mutable: s.Mutable, DeclaredType: r.localDeclaredType(s),
			})
			r.collectLocalsExpr(s.Expr)
		case *ast.ExprStmt:
			r.collectLocalsExpr(s.Expr)
		case *ast.AssignStmt:
			r.collectLocalsExpr(s.Value)
		case *ast.AssertStmt:
			for _, a := range s.Args {
				r.collectLocalsExpr(a)
			}
		case *ast.WhileStmt:
			r.collectLocalsExpr(s.Cond)
			r.collectLocals(s.Body)
		}
	}
	if body.TailExpr != nil {
		r.collectLocalsExpr(body.TailExpr)
	}
}

func (r *Resolver) localDeclaredType(s *ast.LetStmt) types.Type {
	if s.VariableType != nil {
		return r.table.resolveType(s.VariableType)
	}
	// No annotation: the declared type is inferred from the initializer
	// elsewhere (internal/semantic's type checker, out of scope here);
	// leaving it nil just means nullability-refinement operators on this
	// local have nothing to narrow from, which only matters once a type
	// checker is wired in.
	return nil
}

func (r *Resolver) collectLocalsExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		r.collectLocalsExpr(e.Value)
	case *ast.IfExpr:
		r.collectLocalsExpr(e.Cond)
		r.collectLocals(e.Then)
		r.collectLocals(e.Else)
	case *ast.WhenExpr:
		if e.Subject != nil {
			r.collectLocalsExpr(e.Subject)
		}
		for _, br := range e.Branches {
			if br.Condition != nil {
				r.collectLocalsExpr(br.Condition)
			}
			r.collectLocals(br.Body)
		}
	case *ast.BinaryExpr:
		r.collectLocalsExpr(e.Left)
		r.collectLocalsExpr(e.Right)
	case *ast.UnaryExpr:
		r.collectLocalsExpr(e.Value)
	case *ast.IsExpr:
		r.collectLocalsExpr(e.Value)
	case *ast.AsExpr:
		r.collectLocalsExpr(e.Value)
	case *ast.NotNullAssertExpr:
		r.collectLocalsExpr(e.Value)
	case *ast.SafeCallExpr:
		r.collectLocalsExpr(e.Receiver)
	case *ast.ElvisExpr:
		r.collectLocalsExpr(e.Left)
		r.collectLocalsExpr(e.Default)
	case *ast.CallExpr:
		r.collectLocalsExpr(e.Callee)
		for _, a := range e.Args {
			r.collectLocalsExpr(a)
		}
		if e.Lambda != nil {
			if len(e.Lambda.Params) == 0 {
				// The implicit "it" — scoped (flatly, per collectLocals's
				// documented simplification) to the lambda's own node
				// identity, so the engine can make it a RealVariable and
				// let `it is T` narrow it like any other local.
				r.scope.Define(&Symbol{Kind: SymLocal, Name: "it", DeclID: e.Lambda.ID()})
			}
			for _, p := range e.Lambda.Params {
				r.scope.Define(&Symbol{Kind: SymLocal, Name: p.Value, DeclID: p.NID})
			}
			r.collectLocals(e.Lambda.Body)
		}
	case *ast.FieldAccessExpr:
		r.collectLocalsExpr(e.Target)
	}
}

func (r *Resolver) classType(ci *ClassInfo) types.Type {
	if ci == nil {
		return types.Any()
	}
	return types.NewNamed(ci.Decl.Name.Value, false)
}

// hasDefiniteReturn is the teacher's flow_analyzer.go check generalized
// to accept a tail expression as an implicit return (drift blocks are
// expression-oriented, spec.md's FunctionBlock.TailExpr).
func (r *Resolver) hasDefiniteReturn(body *ast.FunctionBlock) bool {
	if body.TailExpr != nil {
		return true
	}
	for _, item := range body.Items {
		if _, ok := item.(*ast.ReturnStmt); ok {
			return true
		}
		if ifExpr, ok := exprStmtIf(item); ok {
			if ifExpr.Else != nil && blockHasDefiniteReturn(ifExpr.Then) && blockHasDefiniteReturn(ifExpr.Else) {
				return true
			}
		}
	}
	return false
}

func blockHasDefiniteReturn(b *ast.FunctionBlock) bool {
	if b.TailExpr != nil {
		return true
	}
	for _, item := range b.Items {
		if _, ok := item.(*ast.ReturnStmt); ok {
			return true
		}
	}
	return false
}

func exprStmtIf(item ast.FunctionBlockItem) (*ast.IfExpr, bool) {
	es, ok := item.(*ast.ExprStmt)
	if !ok {
		return nil, false
	}
	ifExpr, ok := es.Expr.(*ast.IfExpr)
	return ifExpr, ok
}

// --- dataflow.SymbolResolver ---

func (r *Resolver) ResolveIdent(name string, _ ast.NodeID) (dataflow.SymbolInfo, bool) {
	sym, ok := r.scope.Lookup(name)
	if !ok {
		return dataflow.SymbolInfo{}, false
	}
	sym.Used = true
	return dataflow.SymbolInfo{
		Kind: dataflow.SymbolKind(sym.Kind), Name: sym.Name, DeclID: sym.DeclID,
		Stable: sym.stable(), DeclaredType: sym.DeclaredType,
	}, true
}

func (r *Resolver) ResolveField(receiverType types.Type, fieldName string, _ ast.NodeID) (dataflow.SymbolInfo, bool) {
	if receiverType == nil {
		return dataflow.SymbolInfo{}, false
	}
	ci, ok := r.table.Classes[receiverType.Name()]
	if !ok {
		return dataflow.SymbolInfo{}, false
	}
	field, ok := ci.Fields[fieldName]
	if !ok {
		return dataflow.SymbolInfo{}, false
	}
	return dataflow.SymbolInfo{
		Kind: dataflow.SymField, Name: field.Name, DeclID: field.DeclID,
		Stable: field.stable(), DeclaredType: field.DeclaredType,
	}, true
}

// --- dataflow.ContractProvider ---

func (r *Resolver) ContractFor(funcName string) (*ast.ContractClause, []*ast.FunctionParam, bool) {
	if fi, ok := r.table.Funcs[funcName]; ok && fi.Decl.Contract != nil {
		return fi.Decl.Contract, fi.Decl.Params, true
	}
	// A user declaration always wins over a builtin of the same name,
	// matching how ResolveIdent prefers a local over an outer binding —
	// there is no import system to shadow with here, so falling through
	// to stdlib is the whole resolution rule.
	return stdlib.ContractFor(funcName)
}

// --- dataflow.TypeResolver ---

func (r *Resolver) ResolveVariableType(vt *ast.VariableType) types.Type {
	return r.types.ResolveVariableType(vt)
}
