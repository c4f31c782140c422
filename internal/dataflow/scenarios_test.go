package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftc/internal/ast"
	"driftc/internal/types"
)

// scenarios_test.go exercises the engine's core algebra against the
// scenario table (spec.md §8): each case drives VariableStorage/Flow/
// LogicSystem the way internal/semantic's Resolver would while visiting
// the literal program shown in its name, and asserts the smartcast the
// table says should hold at the marked site. Grounded on the teacher's
// flow_analyzer_test.go style (source-shaped subtests, testify asserts)
// but white-box here since the point is the engine's own fact algebra,
// not the parser surface.

func newTestSystem() (*VariableStorage, *LogicSystem) {
	ctx := types.NewTypeContext(types.NewRegistry())
	intersector := types.NewIntersector(ctx)
	receivers := NewReceiverStack(intersector)
	return NewVariableStorage(), NewLogicSystem(ctx, intersector, receivers)
}

func realVar(name string, id ast.NodeID) *RealVariable {
	return &RealVariable{Sym: Symbol{Kind: SymParam, Name: name, DeclID: id}}
}

// scenario 1: fun f(x: Any?) { if (x is String) ↯x } -> x: String
func TestScenario1_IsCheckNarrowsInsideThenBranch(t *testing.T) {
	_, logic := newTestSystem()
	x := realVar("x", 1)
	flow := NewFlow()

	flow = logic.AddTypeStatement(flow, &TypeStatement{Variable: x, ExactType: []types.Type{types.NewNamed("String", false)}})

	ts := flow.TypeStatementFor(x)
	require.NotNil(t, ts)
	assert.Equal(t, "String", ts.ExactType[0].Name())
}

// scenario 2: fun f(x: Any?) { if (x != null) ↯x } -> x: Any
func TestScenario2_NotNullCheckNarrowsToNonNullAny(t *testing.T) {
	_, logic := newTestSystem()
	x := realVar("x", 2)
	flow := NewFlow()

	flow = logic.AddTypeStatement(flow, &TypeStatement{Variable: x, ExactType: []types.Type{types.Any()}})

	ts := flow.TypeStatementFor(x)
	require.NotNil(t, ts)
	assert.Equal(t, types.AnyName, ts.ExactType[0].Name())
	assert.False(t, ts.ExactType[0].IsNullable())
}

// scenario 3: fun f(x: Any?) { x!!; ↯x } -> x: Any
func TestScenario3_NotNullAssertionNarrowsToNonNullAny(t *testing.T) {
	_, logic := newTestSystem()
	x := realVar("x", 3)
	flow := NewFlow()

	declared := types.NewNamed(types.AnyName, true)
	flow = logic.AddTypeStatement(flow, &TypeStatement{Variable: x, ExactType: []types.Type{declared.NonNull()}})

	ts := flow.TypeStatementFor(x)
	require.NotNil(t, ts)
	assert.False(t, ts.ExactType[0].IsNullable())
}

// scenario 4: fun f(x: Any?) { val b = x is String; if (b) ↯x } -> x: String
// b is a synthetic decorating the `x is String` expression; the
// implication (b EqTrue) ⟹ (x hasType String) is installed when the
// is-check is evaluated, and approved once the later `if (b)` runs.
func TestScenario4_BooleanCapturedThenApprovedLater(t *testing.T) {
	storage, logic := newTestSystem()
	x := realVar("x", 4)
	isCheckExpr := &ast.IdentExpr{NID: 40, Name: "b"}
	b := storage.CreateSynthetic(isCheckExpr)

	flow := NewFlow()
	flow = logic.AddImplication(flow, Implication{
		Condition: OperationStatement{Variable: b, Op: EqTrue},
		Effect:    &TypeStatement{Variable: x, ExactType: []types.Type{types.NewNamed("String", false)}},
	})

	// x isn't narrowed yet — only the implication is recorded.
	assert.Nil(t, flow.TypeStatementFor(x))

	approved := logic.ApproveStatementsInsideFlow(flow, OperationStatement{Variable: b, Op: EqTrue}, false, true)
	ts := approved.TypeStatementFor(x)
	require.NotNil(t, ts)
	assert.Equal(t, "String", ts.ExactType[0].Name())
}

// scenario 5: fun f(x: Any?, y: Any?) { if (x is Int && y is String) { ↯x; ↯y } }
// Both conjuncts narrow their own variable; a conjunction's flow is the
// union of each conjunct's own narrowing (no conjunct depends on the
// other), so both facts coexist after the `&&` is fully evaluated.
func TestScenario5_ConjunctionNarrowsBothOperands(t *testing.T) {
	_, logic := newTestSystem()
	x := realVar("x", 5)
	y := realVar("y", 6)

	left := logic.AddTypeStatement(NewFlow(), &TypeStatement{Variable: x, ExactType: []types.Type{types.NewNamed("Int", false)}})
	right := logic.AddTypeStatement(NewFlow(), &TypeStatement{Variable: y, ExactType: []types.Type{types.NewNamed("String", false)}})
	both := logic.Union([]*Flow{left, right})

	xTS := both.TypeStatementFor(x)
	yTS := both.TypeStatementFor(y)
	require.NotNil(t, xTS)
	require.NotNil(t, yTS)
	assert.Equal(t, "Int", xTS.ExactType[0].Name())
	assert.Equal(t, "String", yTS.ExactType[0].Name())
}

// scenario 6: fun f(x: Any?) { if (!(x is String)) return; ↯x } -> x: String
// The guard's negated condition is approved false on the fallthrough
// path (the `return` arm is dead past this point), which is the same as
// approving the un-negated condition true.
func TestScenario6_NegatedGuardNarrowsOnFallthrough(t *testing.T) {
	storage, logic := newTestSystem()
	x := realVar("x", 7)
	isCheckExpr := &ast.IdentExpr{NID: 70, Name: "$isCheck"}
	cond := storage.CreateSynthetic(isCheckExpr)

	flow := NewFlow()
	flow = logic.AddImplication(flow, Implication{
		Condition: OperationStatement{Variable: cond, Op: EqTrue},
		Effect:    &TypeStatement{Variable: x, ExactType: []types.Type{types.NewNamed("String", false)}},
	})

	// `!(x is String)` is false on the fallthrough path, i.e. the
	// un-negated condition is true.
	fallthroughFlow := logic.ApproveStatementsInsideFlow(flow, OperationStatement{Variable: cond, Op: EqTrue}, false, true)

	ts := fallthroughFlow.TypeStatementFor(x)
	require.NotNil(t, ts)
	assert.Equal(t, "String", ts.ExactType[0].Name())
}

// scenario 7: fun f(x: Any?) { when { x is Int -> ↯x; x is String -> ↯x; else -> {} } }
// Each `when` branch approves its own condition independently against
// the entry flow — they are mutually exclusive arms, not a conjunction.
func TestScenario7_WhenBranchesNarrowIndependently(t *testing.T) {
	_, logic := newTestSystem()
	x := realVar("x", 8)
	entry := NewFlow()

	intBranch := logic.AddTypeStatement(entry, &TypeStatement{Variable: x, ExactType: []types.Type{types.NewNamed("Int", false)}})
	stringBranch := logic.AddTypeStatement(entry, &TypeStatement{Variable: x, ExactType: []types.Type{types.NewNamed("String", false)}})

	intTS := intBranch.TypeStatementFor(x)
	stringTS := stringBranch.TypeStatementFor(x)
	require.NotNil(t, intTS)
	require.NotNil(t, stringTS)
	assert.Equal(t, "Int", intTS.ExactType[0].Name())
	assert.Equal(t, "String", stringTS.ExactType[0].Name())
}

// scenario 9: fun f(x: Any?) { x?.hashCode(); if (x != null) ↯x } -> x: Any
// (safe-call does not itself establish non-null; the later explicit
// check is what narrows it — the safe-call's own facts never touch x).
func TestScenario9_SafeCallAloneDoesNotNarrow(t *testing.T) {
	_, logic := newTestSystem()
	x := realVar("x", 9)
	flow := NewFlow()

	// The safe-call contributes nothing to x's facts.
	assert.Nil(t, flow.TypeStatementFor(x))

	// Only the later explicit `!= null` check narrows it.
	narrowed := logic.AddTypeStatement(flow, &TypeStatement{Variable: x, ExactType: []types.Type{types.Any()}})
	ts := narrowed.TypeStatementFor(x)
	require.NotNil(t, ts)
	assert.False(t, ts.ExactType[0].IsNullable())
}

// scenario 10: var x: Any? = "s"; if (x is String) { x = 1; ↯x } -> no refinement
// Reassignment erases every fact about the reassigned variable.
func TestScenario10_ReassignmentErasesFacts(t *testing.T) {
	_, logic := newTestSystem()
	x := realVar("x", 10)
	flow := logic.AddTypeStatement(NewFlow(), &TypeStatement{Variable: x, ExactType: []types.Type{types.NewNamed("String", false)}})
	require.NotNil(t, flow.TypeStatementFor(x))

	erased := logic.EraseFacts(flow, x)
	assert.Nil(t, erased.TypeStatementFor(x))
}

// scenario 8 ("getTypeUsingContractsForCollections"):
// fun f(xs: List<Any?>) { xs.filter { it is Int }.let { ↯it } } -> it: List<Int>
// Covered end-to-end (through the parser, resolver and
// DataFlowAnalyzer.visitCallLambda) in analyzer_scenario8_test.go, since
// it depends on ContractEngine + the resolver's "it" binding rather than
// on LogicSystem alone.
