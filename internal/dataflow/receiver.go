package dataflow

import "driftc/internal/types"

// ReceiverStack is the adapter described in spec.md §4.4: it tracks the
// chain of implicit receivers in scope (the enclosing `this`, plus any
// nested `with`/scope-function receiver) and keeps each one's refined
// type in sync with approvedTypeStatements so unqualified member lookups
// ("length" inside a method, meaning "this.length") see the current
// smart-cast, not just the declared type.
type ReceiverStack struct {
	intersector *types.Intersector
	frames      []*receiverFrame
}

type receiverFrame struct {
	variable     *RealVariable
	declaredType types.Type
	refinedType  types.Type
}

func NewReceiverStack(intersector *types.Intersector) *ReceiverStack {
	return &ReceiverStack{intersector: intersector}
}

// Push enters a new implicit-receiver scope (a method body, or a lambda
// passed to a scope function like `run`/`apply` in the original
// language's idiom — drift exposes this only for method bodies' `this`,
// SPEC_FULL.md module map).
func (rs *ReceiverStack) Push(v *RealVariable, declaredType types.Type) {
	rs.frames = append(rs.frames, &receiverFrame{variable: v, declaredType: declaredType, refinedType: declaredType})
}

// Pop exits the innermost implicit-receiver scope.
func (rs *ReceiverStack) Pop() {
	if len(rs.frames) == 0 {
		return
	}
	rs.frames = rs.frames[:len(rs.frames)-1]
}

// Current returns the innermost implicit receiver, or nil if none is in
// scope (a free function body).
func (rs *ReceiverStack) Current() *RealVariable {
	if len(rs.frames) == 0 {
		return nil
	}
	return rs.frames[len(rs.frames)-1].variable
}

// RefinedType returns the innermost receiver's currently refined type —
// what an unqualified member access should be resolved against.
func (rs *ReceiverStack) RefinedType() types.Type {
	if len(rs.frames) == 0 {
		return nil
	}
	return rs.frames[len(rs.frames)-1].refinedType
}

// UpdateReceiver recomputes one frame's refined type after v gained a new
// TypeStatement: intersect(declaredType, everything currently approved
// for v) (spec.md §4.4).
func (rs *ReceiverStack) UpdateReceiver(flow *Flow, v *RealVariable) {
	for _, f := range rs.frames {
		if f.variable != v {
			continue
		}
		ts := flow.TypeStatementFor(v)
		if ts == nil || ts.Empty() {
			f.refinedType = f.declaredType
			continue
		}
		members := append([]types.Type{f.declaredType}, ts.ExactType...)
		f.refinedType = rs.intersector.Intersect(members)
	}
}

// UpdateAllReceivers recomputes every frame against flow — called after a
// branch merge (join) or any bulk rewrite of approvedTypeStatements where
// individual AddTypeStatement calls were bypassed (spec.md §4.2, §4.4).
func (rs *ReceiverStack) UpdateAllReceivers(flow *Flow) {
	for _, f := range rs.frames {
		rs.UpdateReceiver(flow, f.variable)
	}
}
