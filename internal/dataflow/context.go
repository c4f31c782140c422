package dataflow

import (
	"driftc/internal/ast"
	"driftc/internal/types"
)

// CFGNode is the slice of the control-flow graph the engine depends on
// (spec.md §6 "external interfaces"): a node's predecessors and whether
// an incoming edge is a loop back-edge or dead code, both of which
// change how its incoming flows are combined.
type CFGNode interface {
	Predecessors() []CFGEdge
}

// CFGEdge carries the per-edge flags the GraphBuilder attaches: a back
// edge (loop re-entry) contributes nothing on its first visit, and a dead
// edge (unreachable code, e.g. after a `return`) never contributes to a
// join at all (spec.md §6).
type CFGEdge struct {
	From     CFGNode
	IsBack   bool
	IsDead   bool
	Resolved bool // false until the predecessor's own flow has been computed at least once
}

// DataFlowAnalyzerContext owns everything that must survive across a
// single top-level declaration's CFG traversal and nothing more — it is
// reset between declarations (spec.md §5 "Lifecycle and reset points").
type DataFlowAnalyzerContext struct {
	Storage   *VariableStorage
	Logic     *LogicSystem
	Receivers *ReceiverStack
	Contracts *ContractEngine

	flowOf           map[CFGNode]*Flow
	whenSubjects     map[ast.NodeID]Variable
	declaredType     map[*RealVariable]types.Type
	callElementTypes map[ast.NodeID]types.Type
}

func NewDataFlowAnalyzerContext(ctx *types.TypeContext) *DataFlowAnalyzerContext {
	intersector := types.NewIntersector(ctx)
	receivers := NewReceiverStack(intersector)
	logic := NewLogicSystem(ctx, intersector, receivers)
	return &DataFlowAnalyzerContext{
		Storage:          NewVariableStorage(),
		Logic:            logic,
		Receivers:        receivers,
		flowOf:           make(map[CFGNode]*Flow),
		whenSubjects:     make(map[ast.NodeID]Variable),
		declaredType:     make(map[*RealVariable]types.Type),
		callElementTypes: make(map[ast.NodeID]types.Type),
	}
}

// RecordDeclaredType remembers rv's declared (unrefined) type the first
// time it is resolved, so later nullability refinements (`!!`, `!=
// null`, safe-call guards) know what "non-null" means for it.
func (c *DataFlowAnalyzerContext) RecordDeclaredType(rv *RealVariable, t types.Type) {
	if _, ok := c.declaredType[rv]; !ok && t != nil {
		c.declaredType[rv] = t
	}
}

// DeclaredTypeOf returns rv's declared type, or nil if never recorded.
func (c *DataFlowAnalyzerContext) DeclaredTypeOf(rv *RealVariable) types.Type {
	return c.declaredType[rv]
}

// RecordCallElementType remembers the narrowed element type a
// ForEachReturnValue contract derived for one call expression's result
// (spec.md §4.3 scenario 8, "getTypeUsingContractsForCollections") — a
// CallExpr's own Variable is always synthetic (spec.md §3), so this lives
// beside declaredType rather than on a TypeStatement, and is read back
// the one time it matters: the `val` binding this call's result.
func (c *DataFlowAnalyzerContext) RecordCallElementType(callID ast.NodeID, t types.Type) {
	c.callElementTypes[callID] = t
}

// CallElementType returns the narrowed element type previously recorded
// for callID, if any.
func (c *DataFlowAnalyzerContext) CallElementType(callID ast.NodeID) (types.Type, bool) {
	t, ok := c.callElementTypes[callID]
	return t, ok
}

// WithContracts attaches a ContractEngine — split from the constructor
// because the resolver wires ContractProvider only once function
// signatures are known (internal/semantic).
func (c *DataFlowAnalyzerContext) WithContracts(ce *ContractEngine) *DataFlowAnalyzerContext {
	c.Contracts = ce
	return c
}

// FlowBefore computes a node's incoming flow by joining every resolved,
// non-dead predecessor's flow — a back-edge predecessor that has not been
// resolved yet (the loop's first pass) contributes nothing, matching
// spec.md §6 "dead-node and back-edge handling".
func (c *DataFlowAnalyzerContext) FlowBefore(node CFGNode) *Flow {
	var incoming []*Flow
	for _, edge := range node.Predecessors() {
		if edge.IsDead {
			continue
		}
		if edge.IsBack && !edge.Resolved {
			continue
		}
		if f, ok := c.flowOf[edge.From]; ok {
			incoming = append(incoming, f)
		}
	}
	if len(incoming) == 0 {
		return NewFlow()
	}
	return c.Logic.Join(incoming)
}

// SetFlowAfter records node's outgoing flow, read back by FlowBefore for
// every node that lists it as a predecessor.
func (c *DataFlowAnalyzerContext) SetFlowAfter(node CFGNode, flow *Flow) {
	c.flowOf[node] = flow
}

// FlowAfter returns the previously recorded outgoing flow for node, if
// any — used by getTypeUsingSmartcastInfo (spec.md §6) to answer a query
// about a program point without re-running the traversal.
func (c *DataFlowAnalyzerContext) FlowAfter(node CFGNode) (*Flow, bool) {
	f, ok := c.flowOf[node]
	return f, ok
}

// BindWhenSubject remembers which Variable a `when (subject)` expression
// is matching against, keyed by the WhenExpr's node identity, so each
// branch condition can be evaluated relative to it (spec.md §4.3 "when
// expression").
func (c *DataFlowAnalyzerContext) BindWhenSubject(whenID ast.NodeID, v Variable) {
	c.whenSubjects[whenID] = v
}

// WhenSubject looks up a previously bound subject variable.
func (c *DataFlowAnalyzerContext) WhenSubject(whenID ast.NodeID) (Variable, bool) {
	v, ok := c.whenSubjects[whenID]
	return v, ok
}

// Reset clears all per-declaration state between one top-level class or
// function and the next (spec.md §5): variable interning, recorded
// flows, and when-subject bindings all start fresh, since a RealVariable
// is only ever meaningful within the declaration it was resolved in.
func (c *DataFlowAnalyzerContext) Reset() {
	c.Storage.Clear()
	c.flowOf = make(map[CFGNode]*Flow)
	c.whenSubjects = make(map[ast.NodeID]Variable)
	c.declaredType = make(map[*RealVariable]types.Type)
	c.callElementTypes = make(map[ast.NodeID]types.Type)
}
