package dataflow

import "driftc/internal/types"

// ReceiverUpdater is the hook LogicSystem calls into whenever a receiver
// variable's facts change — implemented by the ReceiverStack adapter
// (receiver.go), spec.md §4.4.
type ReceiverUpdater interface {
	UpdateReceiver(flow *Flow, v *RealVariable)
	UpdateAllReceivers(flow *Flow)
}

// LogicSystem is the pure algebra over flows described in spec.md §4.2:
// every operation takes a flow and returns either a new flow or a set of
// derived statements. It never mutates a Flow in place.
type LogicSystem struct {
	ctx         *types.TypeContext
	intersector *types.Intersector
	receivers   ReceiverUpdater
}

func NewLogicSystem(ctx *types.TypeContext, intersector *types.Intersector, receivers ReceiverUpdater) *LogicSystem {
	return &LogicSystem{ctx: ctx, intersector: intersector, receivers: receivers}
}

// Fork produces a child flow sharing structure with its parent.
func (ls *LogicSystem) Fork(flow *Flow) *Flow { return flow.Fork() }

// AddTypeStatement unions ts.ExactType into flow's fact for ts.Variable
// and, if that variable is an implicit receiver, tells the ReceiverStack
// adapter to recompute its refined type (spec.md §4.2).
func (ls *LogicSystem) AddTypeStatement(flow *Flow, ts *TypeStatement) *Flow {
	if ts.Empty() {
		return flow
	}
	merged := ts.clone()
	if existing := flow.approvedTypeStatements[ts.Variable]; existing != nil {
		merged = existing.clone()
		for _, t := range ts.ExactType {
			if !containsTypeByName(merged.ExactType, t) {
				merged.ExactType = append(merged.ExactType, t)
			}
		}
	}

	next := flow.Fork()
	m := cloneTypeStatements(flow.approvedTypeStatements)
	m[ts.Variable] = merged
	next.approvedTypeStatements = m

	if ts.Variable.IsReceiver && ls.receivers != nil {
		ls.receivers.UpdateReceiver(next, ts.Variable)
	}
	return next
}

// alreadyImplied reports whether effect is already a consequence of
// flow's current facts — used by AddImplication to drop tautologies
// (spec.md §4.2 "addImplication").
func (ls *LogicSystem) alreadyImplied(flow *Flow, effect Statement) bool {
	ts, ok := effect.(*TypeStatement)
	if !ok {
		return false
	}
	existing := flow.approvedTypeStatements[ts.Variable]
	if existing == nil {
		return len(ts.ExactType) == 0
	}
	for _, t := range ts.ExactType {
		if !containsTypeByName(existing.ExactType, t) {
			return false
		}
	}
	return true
}

// AddImplication stores impl unless it is trivial (an empty-effect
// TypeStatement can never refine anything) or tautological (the effect
// already holds), spec.md §4.2.
func (ls *LogicSystem) AddImplication(flow *Flow, impl Implication) *Flow {
	if ts, ok := impl.Effect.(*TypeStatement); ok && ts.Empty() {
		return flow
	}
	if ls.alreadyImplied(flow, impl.Effect) {
		return flow
	}
	for _, existing := range flow.logicStatements {
		if equalImplication(existing, impl) {
			return flow
		}
	}
	next := flow.Fork()
	list := make([]Implication, len(flow.logicStatements), len(flow.logicStatements)+1)
	copy(list, flow.logicStatements)
	next.logicStatements = append(list, impl)
	return next
}

// transitiveClosure walks every implication reachable from os, returning
// the effects collected along the way and the set of conditions that were
// consumed reaching them (spec.md §4.2 "approveOperationStatement").
func transitiveClosure(flow *Flow, os OperationStatement) (effects []Statement, consumed []OperationStatement) {
	visited := map[OperationStatement]bool{}
	var walk func(cond OperationStatement)
	walk = func(cond OperationStatement) {
		if visited[cond] {
			return
		}
		visited[cond] = true
		consumed = append(consumed, cond)
		for _, impl := range flow.logicStatements {
			if impl.Condition != cond {
				continue
			}
			effects = append(effects, impl.Effect)
			if next, ok := impl.Effect.(OperationStatement); ok {
				walk(next)
			}
		}
	}
	walk(os)
	return effects, consumed
}

// ApproveOperationStatement returns the transitive closure of effects
// derivable under os without mutating flow (spec.md §4.2).
func (ls *LogicSystem) ApproveOperationStatement(flow *Flow, os OperationStatement) []Statement {
	effects, _ := transitiveClosure(flow, os)
	return effects
}

// ApproveStatementsInsideFlow is the canonical "we just learned X"
// primitive: it installs every TypeStatement effect reachable from os,
// and — when shouldRemoveSynthetics is set — garbage-collects
// implications whose condition was a synthetic variable consumed in the
// process (spec.md §4.2, §9 "Synthetic variable lifecycle").
func (ls *LogicSystem) ApproveStatementsInsideFlow(flow *Flow, os OperationStatement, shouldForkFlow, shouldRemoveSynthetics bool) *Flow {
	f := flow
	if shouldForkFlow {
		f = flow.Fork()
	}

	effects, consumed := transitiveClosure(flow, os)
	for _, eff := range effects {
		if ts, ok := eff.(*TypeStatement); ok {
			f = ls.AddTypeStatement(f, ts)
		}
	}

	if shouldRemoveSynthetics {
		consumedSet := make(map[OperationStatement]bool, len(consumed))
		for _, c := range consumed {
			if _, isSynth := c.Variable.(*SyntheticVariable); isSynth {
				consumedSet[c] = true
			}
		}
		if len(consumedSet) > 0 {
			kept := make([]Implication, 0, len(f.logicStatements))
			for _, impl := range f.logicStatements {
				if consumedSet[impl.Condition] {
					continue
				}
				kept = append(kept, impl)
			}
			f = f.Fork()
			f.logicStatements = kept
		}
	}
	return f
}

// Join computes the pointwise intersection of type statements, the set
// intersection of implications, and keeps alias-map entries only where
// every predecessor agrees — "facts true on all predecessor paths"
// (spec.md §4.2). Join([f]) returns f itself (idempotence, spec.md §8
// property 1).
func (ls *LogicSystem) Join(flows []*Flow) *Flow {
	if len(flows) == 0 {
		return NewFlow()
	}
	if len(flows) == 1 {
		return flows[0]
	}

	base := flows[0]
	rest := flows[1:]

	typeStmts := make(map[*RealVariable]*TypeStatement)
	for v, ts := range base.approvedTypeStatements {
		presentEverywhere := true
		for _, other := range rest {
			if other.approvedTypeStatements[v] == nil {
				presentEverywhere = false
				break
			}
		}
		if !presentEverywhere {
			continue
		}
		var inter []types.Type
		for _, t := range ts.ExactType {
			inAll := true
			for _, other := range rest {
				if !containsTypeByName(other.approvedTypeStatements[v].ExactType, t) {
					inAll = false
					break
				}
			}
			if inAll {
				inter = append(inter, t)
			}
		}
		if len(inter) > 0 {
			typeStmts[v] = &TypeStatement{Variable: v, ExactType: inter}
		}
	}

	var implications []Implication
	for _, impl := range base.logicStatements {
		inAll := true
		for _, other := range rest {
			found := false
			for _, oi := range other.logicStatements {
				if equalImplication(oi, impl) {
					found = true
					break
				}
			}
			if !found {
				inAll = false
				break
			}
		}
		if inAll {
			implications = append(implications, impl)
		}
	}

	aliases := make(map[*RealVariable]AliasInfo)
	for v, a := range base.directAliasMap {
		agree := true
		for _, other := range rest {
			oa, ok := other.directAliasMap[v]
			if !ok || oa.Target != a.Target {
				agree = false
				break
			}
		}
		if agree {
			aliases[v] = a
		}
	}

	return &Flow{
		approvedTypeStatements: typeStmts,
		logicStatements:        implications,
		directAliasMap:         aliases,
		backwardsAliasMap:      rebuildBackwardsAliasMap(aliases),
	}
}

// Union combines flows from sequentially evaluated sub-expressions (e.g.
// call arguments): per-variable union of ExactType, union of
// implications, later flows' aliasing overlaying earlier ones since the
// paths are known to compose in order (spec.md §4.2).
func (ls *LogicSystem) Union(flows []*Flow) *Flow {
	if len(flows) == 0 {
		return NewFlow()
	}
	if len(flows) == 1 {
		return flows[0]
	}

	typeStmts := make(map[*RealVariable]*TypeStatement)
	var implications []Implication
	aliases := make(map[*RealVariable]AliasInfo)

	for _, flow := range flows {
		for v, ts := range flow.approvedTypeStatements {
			cur := typeStmts[v]
			if cur == nil {
				typeStmts[v] = ts.clone()
				continue
			}
			for _, t := range ts.ExactType {
				if !containsTypeByName(cur.ExactType, t) {
					cur.ExactType = append(cur.ExactType, t)
				}
			}
		}
		for _, impl := range flow.logicStatements {
			dup := false
			for _, existing := range implications {
				if equalImplication(existing, impl) {
					dup = true
					break
				}
			}
			if !dup {
				implications = append(implications, impl)
			}
		}
		for v, a := range flow.directAliasMap {
			aliases[v] = a
		}
	}

	return &Flow{
		approvedTypeStatements: typeStmts,
		logicStatements:        implications,
		directAliasMap:         aliases,
		backwardsAliasMap:      rebuildBackwardsAliasMap(aliases),
	}
}

// Or computes "one of these alternatives holds": per variable, the
// intersection of ExactType across every alternative that mentions it,
// kept only when every alternative mentions that variable (spec.md
// §4.2). Used by the boolean-operator and ForEachReturnValue-contract
// handlers.
func (ls *LogicSystem) Or(alternatives [][]*TypeStatement) []*TypeStatement {
	if len(alternatives) == 0 {
		return nil
	}
	byVar := make(map[*RealVariable][][]types.Type)
	for _, alt := range alternatives {
		for _, ts := range alt {
			byVar[ts.Variable] = append(byVar[ts.Variable], ts.ExactType)
		}
	}

	var result []*TypeStatement
	for v, lists := range byVar {
		if len(lists) != len(alternatives) {
			continue
		}
		inter := lists[0]
		for _, l := range lists[1:] {
			var next []types.Type
			for _, t := range inter {
				if containsTypeByName(l, t) {
					next = append(next, t)
				}
			}
			inter = next
		}
		if len(inter) > 0 {
			result = append(result, &TypeStatement{Variable: v, ExactType: inter})
		}
	}
	return result
}

// TranslateVariableFromConditionInStatements rewrites every implication
// whose condition mentions `from` into a new implication keyed on `to`,
// applying transform to the effect; originals are kept (spec.md §4.2).
// Used when a synthetic result is re-bound to a real variable, e.g.
// `val b = x is String`.
func (ls *LogicSystem) TranslateVariableFromConditionInStatements(
	flow *Flow, from, to Variable,
	filter func(Implication) bool,
	transform func(Statement) Statement,
) *Flow {
	additions := translatedImplications(flow, from, to, filter, transform)
	if len(additions) == 0 {
		return flow
	}
	next := flow.Fork()
	list := make([]Implication, len(flow.logicStatements), len(flow.logicStatements)+len(additions))
	copy(list, flow.logicStatements)
	next.logicStatements = dedupImplications(append(list, additions...))
	return next
}

// ReplaceVariableFromConditionInStatements is like Translate but removes
// the originals whose condition mentioned `from` (spec.md §4.2).
func (ls *LogicSystem) ReplaceVariableFromConditionInStatements(
	flow *Flow, from, to Variable,
	filter func(Implication) bool,
	transform func(Statement) Statement,
) *Flow {
	kept := make([]Implication, 0, len(flow.logicStatements))
	var additions []Implication
	for _, impl := range flow.logicStatements {
		if impl.Condition.Variable == from && (filter == nil || filter(impl)) {
			newEffect := impl.Effect
			if transform != nil {
				newEffect = transform(impl.Effect)
			}
			additions = append(additions, Implication{
				Condition: OperationStatement{Variable: to, Op: impl.Condition.Op},
				Effect:    newEffect,
			})
			continue
		}
		kept = append(kept, impl)
	}
	next := flow.Fork()
	next.logicStatements = dedupImplications(append(kept, additions...))
	return next
}

func translatedImplications(
	flow *Flow, from, to Variable,
	filter func(Implication) bool,
	transform func(Statement) Statement,
) []Implication {
	var additions []Implication
	for _, impl := range flow.logicStatements {
		if impl.Condition.Variable != from {
			continue
		}
		if filter != nil && !filter(impl) {
			continue
		}
		newEffect := impl.Effect
		if transform != nil {
			newEffect = transform(impl.Effect)
		}
		additions = append(additions, Implication{
			Condition: OperationStatement{Variable: to, Op: impl.Condition.Op},
			Effect:    newEffect,
		})
	}
	return additions
}

func dedupImplications(list []Implication) []Implication {
	out := make([]Implication, 0, len(list))
	for _, impl := range list {
		dup := false
		for _, existing := range out {
			if equalImplication(existing, impl) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, impl)
		}
	}
	return out
}

// AddLocalVariableAlias records that v now names the same storage as
// target, recording v's own declared type alongside the alias in
// AliasInfo.OriginalType (spec.md §4.2); RemoveLocalVariableAlias drops
// that record without reading it back.
func (ls *LogicSystem) AddLocalVariableAlias(flow *Flow, v, target *RealVariable, originalType types.Type) *Flow {
	next := flow.Fork()
	aliases := cloneAliasMap(flow.directAliasMap)
	aliases[v] = AliasInfo{Target: target, OriginalType: originalType}
	next.directAliasMap = aliases
	next.backwardsAliasMap = rebuildBackwardsAliasMap(aliases)
	return next
}

// RemoveLocalVariableAlias drops v's entry from directAliasMap (and its
// back-reference), used on reassignment (spec.md §4.2, §8 property 6
// "scope erasure").
func (ls *LogicSystem) RemoveLocalVariableAlias(flow *Flow, v *RealVariable) *Flow {
	if _, ok := flow.directAliasMap[v]; !ok {
		return flow
	}
	next := flow.Fork()
	aliases := cloneAliasMap(flow.directAliasMap)
	delete(aliases, v)
	next.directAliasMap = aliases
	next.backwardsAliasMap = rebuildBackwardsAliasMap(aliases)
	return next
}

// EraseFacts drops every approved TypeStatement about v — used on
// reassignment of a local (spec.md §8 property 6 "scope erasure").
func (ls *LogicSystem) EraseFacts(flow *Flow, v *RealVariable) *Flow {
	if flow.approvedTypeStatements[v] == nil {
		return flow
	}
	next := flow.Fork()
	m := cloneTypeStatements(flow.approvedTypeStatements)
	delete(m, v)
	next.approvedTypeStatements = m
	return next
}

// UpdateAllReceivers asks the ReceiverStack adapter to recompute and push
// every implicit receiver's refined type (spec.md §4.2, §4.4).
func (ls *LogicSystem) UpdateAllReceivers(flow *Flow) *Flow {
	if ls.receivers != nil {
		ls.receivers.UpdateAllReceivers(flow)
	}
	return flow
}

func rebuildBackwardsAliasMap(aliases map[*RealVariable]AliasInfo) map[*RealVariable][]*RealVariable {
	back := make(map[*RealVariable][]*RealVariable, len(aliases))
	for v, a := range aliases {
		back[a.Target] = append(back[a.Target], v)
	}
	return back
}
