package dataflow

import (
	"driftc/internal/ast"
	"driftc/internal/types"
)

// DataFlowAnalyzer walks a function body threading a Flow through every
// expression and statement, narrowing and widening RealVariable types as
// the event handlers of spec.md §4.3 describe. It is driven directly over
// the AST and is the single place the actual narrowing rules live;
// internal/cfg's GraphBuilder builds a separate block graph for
// reachability diagnostics and does not call these handlers.
type DataFlowAnalyzer struct {
	ctx      *DataFlowAnalyzerContext
	resolver SymbolResolver
	types    *types.TypeContext
}

func NewDataFlowAnalyzer(ctx *DataFlowAnalyzerContext, resolver SymbolResolver, tc *types.TypeContext) *DataFlowAnalyzer {
	return &DataFlowAnalyzer{ctx: ctx, resolver: resolver, types: tc}
}

// AnalyzeFunction resets nothing itself (the caller resets between
// top-level declarations, spec.md §5) and returns the flow reaching the
// end of the body.
func (a *DataFlowAnalyzer) AnalyzeFunction(fn *ast.Function, receiverType types.Type) *Flow {
	flow := NewFlow()
	if fn.Receiver != nil {
		this := a.ctx.Storage.GetOrCreateVariable(flow, a.resolver, &ast.IdentExpr{NID: fn.Receiver.ID(), Name: fn.Receiver.Name.Value})
		if rv, ok := this.(*RealVariable); ok {
			a.ctx.RecordDeclaredType(rv, receiverType)
			a.ctx.Receivers.Push(rv, receiverType)
			defer a.ctx.Receivers.Pop()
		}
	}
	if fn.Body != nil {
		flow = a.visitBlock(fn.Body, flow)
	}
	return flow
}

func (a *DataFlowAnalyzer) visitBlock(block *ast.FunctionBlock, flow *Flow) *Flow {
	for _, item := range block.Items {
		flow = a.visitBlockItem(item, flow)
	}
	if block.TailExpr != nil {
		_, flow = a.visitExpr(block.TailExpr, flow)
	}
	return flow
}

func (a *DataFlowAnalyzer) visitBlockItem(item ast.FunctionBlockItem, flow *Flow) *Flow {
	switch s := item.(type) {
	case *ast.ExprStmt:
		_, flow = a.visitExpr(s.Expr, flow)
		return flow

	case *ast.ReturnStmt:
		if s.Value != nil {
			_, flow = a.visitExpr(s.Value, flow)
		}
		return flow

	case *ast.LetStmt:
		return a.visitLetStmt(s, flow)

	case *ast.AssignStmt:
		return a.visitAssignStmt(s, flow)

	case *ast.AssertStmt:
		for _, arg := range s.Args {
			var v Variable
			v, flow = a.visitExpr(arg, flow)
			if os, ok := conditionOf(v); ok {
				flow = a.ctx.Logic.ApproveStatementsInsideFlow(flow, os, true, true)
			}
		}
		return flow

	case *ast.WhileStmt:
		return a.visitWhileStmt(s, flow)

	default:
		return flow
	}
}

// conditionOf turns a boolean-valued Variable into the OperationStatement
// "this evaluated to true", the approval key used whenever a condition
// is asserted (an `if`, a `while`, an `assert`) — spec.md §4.3.
func conditionOf(v Variable) (OperationStatement, bool) {
	if v == nil {
		return OperationStatement{}, false
	}
	return OperationStatement{Variable: v, Op: EqTrue}, true
}

func (a *DataFlowAnalyzer) visitLetStmt(s *ast.LetStmt, flow *Flow) *Flow {
	var rhsVar Variable
	if s.Expr != nil {
		rhsVar, flow = a.visitExpr(s.Expr, flow)
	}

	identExpr := &ast.IdentExpr{NID: s.ID(), Name: s.Name.Value}
	bound := a.ctx.Storage.GetOrCreateVariable(flow, a.resolver, identExpr)
	rv, ok := bound.(*RealVariable)
	if !ok {
		return flow
	}
	if declared := a.declaredTypeFor(s.VariableType); declared != nil {
		a.ctx.RecordDeclaredType(rv, declared)
	}

	if rhsRV, ok := rhsVar.(*RealVariable); ok {
		originalType := a.ctx.DeclaredTypeOf(rv)
		flow = a.ctx.Logic.AddLocalVariableAlias(flow, rv, rhsRV, originalType)
	} else if ts := flow.TypeStatementFor(realOf(rhsVar)); ts != nil {
		flow = a.ctx.Logic.AddTypeStatement(flow, &TypeStatement{Variable: rv, ExactType: ts.ExactType})
	} else if id, ok := callExprID(s.Expr); ok {
		if t, ok := a.ctx.CallElementType(id); ok {
			listType := types.Named{NameValue: "List", Generics: []types.Type{t}}
			flow = a.ctx.Logic.AddTypeStatement(flow, &TypeStatement{Variable: rv, ExactType: []types.Type{listType}})
		}
	}
	return flow
}

// callExprID unwraps parens to find the CallExpr a `val` initializer is,
// if any — used to read back a ForEachReturnValue contract's narrowed
// element type (see RecordCallElementType).
func callExprID(e ast.Expr) (ast.NodeID, bool) {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			break
		}
		e = p.Value
	}
	ce, ok := e.(*ast.CallExpr)
	if !ok {
		return 0, false
	}
	return ce.ID(), true
}

func realOf(v Variable) *RealVariable {
	rv, _ := v.(*RealVariable)
	return rv
}

func (a *DataFlowAnalyzer) declaredTypeFor(vt *ast.VariableType) types.Type {
	if vt == nil || a.types == nil {
		return nil
	}
	if !a.types.Registry().IsKnownClass(vt.Name) && !types.IsBuiltinName(vt.Name) {
		return nil
	}
	named := types.NewNamed(vt.Name, vt.Nullable)
	return named
}

func (a *DataFlowAnalyzer) visitAssignStmt(s *ast.AssignStmt, flow *Flow) *Flow {
	var rhsVar Variable
	rhsVar, flow = a.visitExpr(s.Value, flow)

	rv, ok := a.ctx.Storage.GetOrCreateRealWithoutUnwrapping(a.resolver, s.Target)
	if !ok {
		return flow
	}

	// Reassignment erases every previously approved fact about this
	// variable and drops any alias it held (spec.md §8 property 6, "scope
	// erasure").
	flow = a.ctx.Logic.EraseFacts(flow, rv)
	flow = a.ctx.Logic.RemoveLocalVariableAlias(flow, rv)

	if rhsRV, ok := rhsVar.(*RealVariable); ok {
		originalType := a.ctx.DeclaredTypeOf(rv)
		flow = a.ctx.Logic.AddLocalVariableAlias(flow, rv, rhsRV, originalType)
	}
	if rv.IsReceiver {
		flow = a.ctx.Logic.UpdateAllReceivers(flow)
	}
	return flow
}

func (a *DataFlowAnalyzer) visitWhileStmt(s *ast.WhileStmt, flow *Flow) *Flow {
	var condVar Variable
	condVar, flow = a.visitExpr(s.Cond, flow)

	bodyEntry := flow
	if os, ok := conditionOf(condVar); ok {
		bodyEntry = a.ctx.Logic.ApproveStatementsInsideFlow(flow, os, true, true)
	}
	bodyExit := a.visitBlock(s.Body, bodyEntry)

	// The loop may run zero or more times: what holds after it is only
	// what held before entering minus anything the body could have
	// invalidated, approximated here as the join of "never entered" and
	// "ran at least once" (spec.md §4.3 "Loops").
	return a.ctx.Logic.Join([]*Flow{flow, bodyExit})
}

// visitExpr returns the Variable denoting expr's value (for chaining into
// enclosing expressions) and the Flow after evaluating it.
func (a *DataFlowAnalyzer) visitExpr(expr ast.Expr, flow *Flow) (Variable, *Flow) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return a.visitExpr(e.Value, flow)

	case *ast.LiteralExpr:
		return a.ctx.Storage.CreateSynthetic(e), flow

	case *ast.IdentExpr:
		v := a.ctx.Storage.GetOrCreateVariable(flow, a.resolver, e)
		if rv, ok := v.(*RealVariable); ok {
			a.ctx.RecordDeclaredType(rv, a.ctx.Storage.DeclaredTypeOf(a.resolver, e))
		}
		return v, flow

	case *ast.FieldAccessExpr:
		_, flow = a.visitExpr(e.Target, flow)
		v := a.ctx.Storage.GetOrCreateVariable(flow, a.resolver, e)
		if rv, ok := v.(*RealVariable); ok {
			a.ctx.RecordDeclaredType(rv, a.ctx.Storage.DeclaredTypeOf(a.resolver, e))
		}
		return v, flow

	case *ast.IsExpr:
		return a.visitIsExpr(e, flow)

	case *ast.AsExpr:
		return a.visitAsExpr(e, flow)

	case *ast.NotNullAssertExpr:
		return a.visitNotNullAssert(e, flow)

	case *ast.SafeCallExpr:
		return a.visitSafeCall(e, flow)

	case *ast.ElvisExpr:
		return a.visitElvis(e, flow)

	case *ast.BinaryExpr:
		return a.visitBinaryExpr(e, flow)

	case *ast.UnaryExpr:
		return a.visitUnaryExpr(e, flow)

	case *ast.CallExpr:
		return a.visitCallExpr(e, flow)

	case *ast.IfExpr:
		return a.visitIfExpr(e, flow)

	case *ast.WhenExpr:
		return a.visitWhenExpr(e, flow)

	case *ast.LambdaExpr:
		sv := a.ctx.Storage.CreateSynthetic(e)
		_ = a.visitBlock(e.Body, flow)
		return sv, flow

	default:
		return a.ctx.Storage.CreateSynthetic(expr), flow
	}
}

// visitIsExpr handles `x is T` / `x !is T` (spec.md §4.3 "Type tests").
func (a *DataFlowAnalyzer) visitIsExpr(e *ast.IsExpr, flow *Flow) (Variable, *Flow) {
	var valueVar Variable
	valueVar, flow = a.visitExpr(e.Value, flow)

	result := a.ctx.Storage.CreateSynthetic(e)
	rv, ok := valueVar.(*RealVariable)
	if !ok || a.types == nil {
		return result, flow
	}

	t := a.declaredTypeFor(e.Type)
	if t == nil {
		return result, flow
	}
	ts := &TypeStatement{Variable: rv, ExactType: []types.Type{t}}

	trueKey, falseKey := OperationStatement{Variable: result, Op: EqTrue}, OperationStatement{Variable: result, Op: EqFalse}
	if e.Negated {
		trueKey, falseKey = falseKey, trueKey
	}
	flow = a.ctx.Logic.AddImplication(flow, Implication{Condition: trueKey, Effect: ts})
	_ = falseKey // the negative arm ("not of type T") has no representable positive TypeStatement.
	return result, flow
}

// visitAsExpr handles `x as T` (unchecked) and `x as? T` (safe cast),
// spec.md §4.3 "Unchecked / safe casts". An unchecked cast either throws
// or succeeds, so on the path where it returns, the source variable (if
// any) is known to be T; a safe cast additionally requires the result
// itself be non-null before that holds.
func (a *DataFlowAnalyzer) visitAsExpr(e *ast.AsExpr, flow *Flow) (Variable, *Flow) {
	var valueVar Variable
	valueVar, flow = a.visitExpr(e.Value, flow)

	result := a.ctx.Storage.CreateSynthetic(e)
	rv, ok := valueVar.(*RealVariable)
	t := a.declaredTypeFor(e.Type)
	if !ok || t == nil {
		return result, flow
	}

	if !e.Safe {
		flow = a.ctx.Logic.AddTypeStatement(flow, &TypeStatement{Variable: rv, ExactType: []types.Type{t}})
		return result, flow
	}

	ts := &TypeStatement{Variable: rv, ExactType: []types.Type{t}}
	flow = a.ctx.Logic.AddImplication(flow, Implication{
		Condition: OperationStatement{Variable: result, Op: NotEqNull},
		Effect:    ts,
	})
	return result, flow
}

// visitNotNullAssert handles `x!!` — either it throws or x is non-null
// from here on (spec.md §4.3 "Null-check expression").
func (a *DataFlowAnalyzer) visitNotNullAssert(e *ast.NotNullAssertExpr, flow *Flow) (Variable, *Flow) {
	var valueVar Variable
	valueVar, flow = a.visitExpr(e.Value, flow)

	rv, ok := valueVar.(*RealVariable)
	if !ok {
		return valueVar, flow
	}
	declared := a.ctx.DeclaredTypeOf(rv)
	if declared == nil {
		return valueVar, flow
	}
	flow = a.ctx.Logic.AddTypeStatement(flow, &TypeStatement{Variable: rv, ExactType: []types.Type{declared.NonNull()}})
	return rv, flow
}

// visitSafeCall handles `x?.sel`: sel is only evaluated when x is
// non-null, and the whole expression's result is then the same
// nullability question lifted one level (spec.md §4.3 "Safe call").
func (a *DataFlowAnalyzer) visitSafeCall(e *ast.SafeCallExpr, flow *Flow) (Variable, *Flow) {
	var recvVar Variable
	recvVar, flow = a.visitExpr(e.Receiver, flow)

	guardedFlow := flow
	if rv, ok := recvVar.(*RealVariable); ok {
		if declared := a.ctx.DeclaredTypeOf(rv); declared != nil {
			guardedFlow = a.ctx.Logic.AddTypeStatement(flow, &TypeStatement{Variable: rv, ExactType: []types.Type{declared.NonNull()}})
		}
	}
	_, guardedFlow = a.visitExpr(e.Selector, guardedFlow)

	// Two paths rejoin here: receiver was null (selector skipped) or
	// non-null (selector ran) — neither path's extra facts survive past
	// the expression as a whole.
	result := a.ctx.Storage.CreateSynthetic(e)
	return result, a.ctx.Logic.Join([]*Flow{flow, guardedFlow})
}

// visitElvis handles `x ?: default` (SPEC_FULL.md supplemented feature):
// the default is visited on the flow after the left operand, and the
// flows without and with it are joined. No null fact about the left
// operand is approved on either path, and the result is a synthetic
// variable with no non-null refinement.
func (a *DataFlowAnalyzer) visitElvis(e *ast.ElvisExpr, flow *Flow) (Variable, *Flow) {
	_, flow = a.visitExpr(e.Left, flow)

	rightFlow := flow
	_, rightFlow = a.visitExpr(e.Default, rightFlow)

	result := a.ctx.Storage.CreateSynthetic(e)
	return result, a.ctx.Logic.Join([]*Flow{flow, rightFlow})
}

// visitBinaryExpr handles equality/nullability comparisons and the
// short-circuiting boolean operators (spec.md §4.3 "Equality", "Boolean
// operators").
func (a *DataFlowAnalyzer) visitBinaryExpr(e *ast.BinaryExpr, flow *Flow) (Variable, *Flow) {
	if e.IsBooleanOp() {
		return a.visitBooleanOp(e, flow)
	}
	if e.IsEqualityOp() {
		return a.visitEquality(e, flow)
	}

	_, flow = a.visitExpr(e.Left, flow)
	_, flow = a.visitExpr(e.Right, flow)
	return a.ctx.Storage.CreateSynthetic(e), flow
}

func (a *DataFlowAnalyzer) visitEquality(e *ast.BinaryExpr, flow *Flow) (Variable, *Flow) {
	var leftVar, rightVar Variable
	leftVar, flow = a.visitExpr(e.Left, flow)
	rightVar, flow = a.visitExpr(e.Right, flow)

	result := a.ctx.Storage.CreateSynthetic(e)
	negate := e.Op == "!=" || e.Op == "!=="

	rv := pickNullComparisonTarget(e.Left, e.Right, leftVar, rightVar)
	if rv == nil {
		return result, flow
	}

	declared := a.ctx.DeclaredTypeOf(rv)
	if declared == nil {
		return result, flow
	}
	nonNullTS := &TypeStatement{Variable: rv, ExactType: []types.Type{declared.NonNull()}}

	nonNullKey := OperationStatement{Variable: result, Op: EqFalse}
	if negate {
		nonNullKey = OperationStatement{Variable: result, Op: EqTrue}
	}
	flow = a.ctx.Logic.AddImplication(flow, Implication{Condition: nonNullKey, Effect: nonNullTS})
	return result, flow
}

func pickNullComparisonTarget(leftExpr, rightExpr ast.Expr, leftVar, rightVar Variable) *RealVariable {
	if isNullLiteral(rightExpr) {
		if rv, ok := leftVar.(*RealVariable); ok {
			return rv
		}
	}
	if isNullLiteral(leftExpr) {
		if rv, ok := rightVar.(*RealVariable); ok {
			return rv
		}
	}
	return nil
}

// visitBooleanOp handles `&&`/`||`: the right operand only evaluates
// under the left's short-circuit condition (spec.md §4.3 "Boolean
// operators"). `&&` being true carries both operands' true-effects to the
// result, and `||` being false carries both operands' false-effects; no
// effect is derived for `&&` being false or `||` being true.
func (a *DataFlowAnalyzer) visitBooleanOp(e *ast.BinaryExpr, flow *Flow) (Variable, *Flow) {
	var leftVar Variable
	leftVar, flow = a.visitExpr(e.Left, flow)

	isAnd := e.Op == "&&"
	rhsEntry := flow
	if os, ok := conditionOf(leftVar); ok {
		key := os
		if !isAnd {
			key = OperationStatement{Variable: leftVar, Op: EqFalse}
		}
		rhsEntry = a.ctx.Logic.ApproveStatementsInsideFlow(flow, key, true, true)
	}

	var rightVar Variable
	rightVar, rhsEntry = a.visitExpr(e.Right, rhsEntry)

	result := a.ctx.Storage.CreateSynthetic(e)
	joined := a.ctx.Logic.Join([]*Flow{flow, rhsEntry})

	// `&&` is true only when both operands were true, `||` is false only
	// when both were false: each operand's own effects under that truth
	// value carry over to the result.
	op := EqFalse
	if isAnd {
		op = EqTrue
	}
	sides := []struct {
		flow *Flow
		v    Variable
	}{{flow, leftVar}, {rhsEntry, rightVar}}
	for _, s := range sides {
		key := OperationStatement{Variable: s.v, Op: op}
		for _, impl := range s.flow.Implications() {
			if impl.Condition == key {
				joined = a.ctx.Logic.AddImplication(joined, Implication{Condition: OperationStatement{Variable: result, Op: op}, Effect: impl.Effect})
			}
		}
	}
	return result, joined
}

func (a *DataFlowAnalyzer) visitUnaryExpr(e *ast.UnaryExpr, flow *Flow) (Variable, *Flow) {
	var valueVar Variable
	valueVar, flow = a.visitExpr(e.Value, flow)
	if e.Op != "!" {
		return a.ctx.Storage.CreateSynthetic(e), flow
	}

	result := a.ctx.Storage.CreateSynthetic(e)
	for _, impl := range flow.Implications() {
		if cond, ok := conditionOf(valueVar); ok && impl.Condition == cond {
			flow = a.ctx.Logic.AddImplication(flow, Implication{
				Condition: OperationStatement{Variable: result, Op: EqFalse},
				Effect:    impl.Effect,
			})
		}
		if cond := (OperationStatement{Variable: valueVar, Op: EqFalse}); impl.Condition == cond {
			flow = a.ctx.Logic.AddImplication(flow, Implication{
				Condition: OperationStatement{Variable: result, Op: EqTrue},
				Effect:    impl.Effect,
			})
		}
	}
	return result, flow
}

func (a *DataFlowAnalyzer) visitIfExpr(e *ast.IfExpr, flow *Flow) (Variable, *Flow) {
	var condVar Variable
	condVar, flow = a.visitExpr(e.Cond, flow)

	thenEntry, elseEntry := flow, flow
	if os, ok := conditionOf(condVar); ok {
		thenEntry = a.ctx.Logic.ApproveStatementsInsideFlow(flow, os, true, true)
		elseEntry = a.ctx.Logic.ApproveStatementsInsideFlow(flow, OperationStatement{Variable: condVar, Op: EqFalse}, true, true)
	}

	thenExit := a.visitBlock(e.Then, thenEntry)
	elseExit := elseEntry
	if e.Else != nil {
		elseExit = a.visitBlock(e.Else, elseEntry)
		return a.ctx.Storage.CreateSynthetic(e), a.ctx.Logic.Join([]*Flow{thenExit, elseExit})
	}
	// No else branch: the `then` path rejoins the implicit empty `else`.
	return a.ctx.Storage.CreateSynthetic(e), a.ctx.Logic.Join([]*Flow{thenExit, elseExit})
}

func (a *DataFlowAnalyzer) visitWhenExpr(e *ast.WhenExpr, flow *Flow) (Variable, *Flow) {
	var subjectVar Variable
	if e.Subject != nil {
		subjectVar, flow = a.visitExpr(e.Subject, flow)
		a.ctx.BindWhenSubject(e.ID(), subjectVar)
	}

	var exits []*Flow
	remaining := flow
	for _, branch := range e.Branches {
		branchEntry := remaining
		if branch.Condition != nil {
			var condVar Variable
			condVar, branchEntry = a.visitExpr(branch.Condition, remaining)
			if os, ok := conditionOf(condVar); ok {
				branchEntry = a.ctx.Logic.ApproveStatementsInsideFlow(branchEntry, os, true, true)
				remaining = a.ctx.Logic.ApproveStatementsInsideFlow(remaining, OperationStatement{Variable: condVar, Op: EqFalse}, true, true)
			}
		}
		exits = append(exits, a.visitBlock(branch.Body, branchEntry))
	}
	exits = append(exits, remaining) // the implicit/no-match path

	return a.ctx.Storage.CreateSynthetic(e), a.ctx.Logic.Join(exits)
}

// calleeName extracts the plain name a contract is registered under,
// whether the call is written as a free function (`filter(xs) {...}`,
// `e` is an *ast.IdentExpr) or as a method/extension call
// (`xs.filter {...}`, `e` is an *ast.FieldAccessExpr) — contracts.yaml's
// table has no separate notion of "receiver" vs "first argument", so
// both call shapes resolve the same contract by name alone.
func calleeName(e ast.Expr) (string, bool) {
	switch c := e.(type) {
	case *ast.IdentExpr:
		return c.Name, true
	case *ast.FieldAccessExpr:
		return c.Name.Value, true
	default:
		return "", false
	}
}

func (a *DataFlowAnalyzer) visitCallExpr(e *ast.CallExpr, flow *Flow) (Variable, *Flow) {
	name, hasCallee := calleeName(e.Callee)

	argVars := make([]Variable, 0, len(e.Args))
	for _, arg := range e.Args {
		var v Variable
		v, flow = a.visitExpr(arg, flow)
		argVars = append(argVars, v)
	}

	result := a.ctx.Storage.CreateSynthetic(e)

	if e.Lambda != nil {
		flow = a.visitCallLambda(e, name, hasCallee, flow)
	}

	if !hasCallee || a.ctx.Contracts == nil {
		return result, flow
	}

	direct, implications := a.ctx.Contracts.ProcessContracts(name, argVars, result)
	for _, fact := range direct {
		switch f := fact.(type) {
		case *TypeStatement:
			flow = a.ctx.Logic.AddTypeStatement(flow, f)
		case OperationStatement:
			// A declared `!= null`/`== null` condition (e.g.
			// requireNotNull's contract) names a nullability fact, not an
			// exact type — translate it through the variable's declared
			// type the same way `!!` and a safe-call guard do, since this
			// engine only ever represents "non-null" as a TypeStatement
			// (see visitNotNullAssert).
			if f.Op != NotEqNull {
				break
			}
			rv, ok := f.Variable.(*RealVariable)
			if !ok {
				break
			}
			if declared := a.ctx.DeclaredTypeOf(rv); declared != nil {
				flow = a.ctx.Logic.AddTypeStatement(flow, &TypeStatement{Variable: rv, ExactType: []types.Type{declared.NonNull()}})
			}
		}
	}
	for _, impl := range implications {
		flow = a.ctx.Logic.AddImplication(flow, impl)
	}
	return result, flow
}

// visitCallLambda runs a trailing lambda's body, binding its implicit
// parameter ("it") as a RealVariable scoped to the lambda (so the lambda
// body's own `is`/`!= null` tests can narrow it) and seeding it with any
// EffectForEachReturnValue facts the callee's contract declares (spec.md
// §4.3 scenario 8, "getTypeUsingContractsForCollections"). When the callee
// declares such an effect and the lambda's tail expression is itself a
// boolean condition on "it" (the `xs.filter { it is Int }` shape), the
// type that condition narrows "it" to when approved true is recorded as
// the call's narrowed element type, read back by visitLetStmt.
func (a *DataFlowAnalyzer) visitCallLambda(call *ast.CallExpr, name string, hasCallee bool, flow *Flow) *Flow {
	lambda := call.Lambda
	itIdent := &ast.IdentExpr{NID: lambda.ID(), Name: "it"}
	paramVar := a.ctx.Storage.GetOrCreateVariable(flow, a.resolver, itIdent)
	if rv, ok := paramVar.(*RealVariable); ok {
		a.ctx.RecordDeclaredType(rv, a.ctx.Storage.DeclaredTypeOf(a.resolver, itIdent))
	}

	lambdaFlow := flow
	var clause *ast.ContractClause
	if hasCallee && a.ctx.Contracts != nil {
		if c, ok := a.ctx.Contracts.Lookup(name); ok {
			clause = c
			for _, fact := range a.ctx.Contracts.LambdaParameterFacts(clause, paramVar) {
				if ts, ok := fact.(*TypeStatement); ok {
					lambdaFlow = a.ctx.Logic.AddTypeStatement(lambdaFlow, ts)
				}
			}
		}
	}

	for _, item := range lambda.Body.Items {
		lambdaFlow = a.visitBlockItem(item, lambdaFlow)
	}
	var tailVar Variable
	if lambda.Body.TailExpr != nil {
		tailVar, lambdaFlow = a.visitExpr(lambda.Body.TailExpr, lambdaFlow)
	}

	if rv, ok := paramVar.(*RealVariable); ok && clause != nil && hasForEachReturnValue(clause) && tailVar != nil {
		if os, ok := conditionOf(tailVar); ok {
			approved := a.ctx.Logic.ApproveStatementsInsideFlow(lambdaFlow, os, true, false)
			if ts := approved.TypeStatementFor(rv); ts != nil && len(ts.ExactType) > 0 {
				a.ctx.RecordCallElementType(call.ID(), ts.ExactType[0])
			}
		}
	}

	return lambdaFlow
}

func hasForEachReturnValue(clause *ast.ContractClause) bool {
	for _, e := range clause.Effects {
		if e.Kind == ast.EffectForEachReturnValue {
			return true
		}
	}
	return false
}
