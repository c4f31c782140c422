package dataflow

import "driftc/internal/types"

// AliasInfo records that a RealVariable currently names the same storage
// as another one, and what its own declared type was before the alias was
// established (spec.md §3 directAliasMap, §9 "alias is identity, type
// refinement is value").
type AliasInfo struct {
	Target       *RealVariable
	OriginalType types.Type
}

// Flow is the per-CFG-node state (spec.md §3). It is persistent: every
// mutation through LogicSystem produces a new Flow whose maps are fresh
// top-level copies, so an older Flow a sibling branch still holds is
// never retroactively changed. (This uses clone-on-write plain maps rather than a hash-array-mapped trie: no
// HAMT/persistent-map library was found anywhere in the retrieved pack,
// and at one-CFG-node-at-a-time scale the copying cost is immaterial.)
type Flow struct {
	approvedTypeStatements map[*RealVariable]*TypeStatement
	logicStatements        []Implication
	directAliasMap         map[*RealVariable]AliasInfo
	backwardsAliasMap      map[*RealVariable][]*RealVariable
}

// NewFlow returns an empty Flow, used for a function's entry node.
func NewFlow() *Flow {
	return &Flow{
		approvedTypeStatements: make(map[*RealVariable]*TypeStatement),
		logicStatements:        nil,
		directAliasMap:         make(map[*RealVariable]AliasInfo),
		backwardsAliasMap:      make(map[*RealVariable][]*RealVariable),
	}
}

// Fork produces a child Flow sharing structure with its parent — the
// caller intends divergent refinement from here (spec.md §4.2 "fork").
// Because every mutation below clones before writing, sharing the parent's
// map references here is safe: writes on the fork never touch the
// parent's maps.
func (f *Flow) Fork() *Flow {
	return &Flow{
		approvedTypeStatements: f.approvedTypeStatements,
		logicStatements:        f.logicStatements,
		directAliasMap:         f.directAliasMap,
		backwardsAliasMap:      f.backwardsAliasMap,
	}
}

// TypeStatementFor returns the accumulated TypeStatement for v, or nil.
func (f *Flow) TypeStatementFor(v *RealVariable) *TypeStatement {
	return f.approvedTypeStatements[v]
}

// TypeStatementForSymbol is a value-based lookup for a top-level local
// or parameter (no receiver chain) by Symbol alone — for callers that
// never had access to VariableStorage's interned pointer, such as
// getTypeUsingSmartcastInfo queried from outside the package (spec.md
// §6). RealVariable keys are interned by identity within one
// VariableStorage (variable.go's intern), so this walks the map rather
// than indexing it directly.
func (f *Flow) TypeStatementForSymbol(sym Symbol) *TypeStatement {
	for v, ts := range f.approvedTypeStatements {
		if v.Sym == sym && v.Receiver == nil && !v.IsReceiver {
			return ts
		}
	}
	return nil
}

// Implications returns the flow's pending implications. The returned
// slice must not be mutated by the caller.
func (f *Flow) Implications() []Implication {
	return f.logicStatements
}

// AliasOf reports what v currently aliases, if anything.
func (f *Flow) AliasOf(v *RealVariable) (AliasInfo, bool) {
	a, ok := f.directAliasMap[v]
	return a, ok
}

// AliasesOf returns every variable currently aliasing target — the
// inverse of AliasOf, used when target is reassigned and every name
// still pointing at its old identity needs to be considered alongside it.
func (f *Flow) AliasesOf(target *RealVariable) []*RealVariable {
	return f.backwardsAliasMap[target]
}

func cloneTypeStatements(m map[*RealVariable]*TypeStatement) map[*RealVariable]*TypeStatement {
	cp := make(map[*RealVariable]*TypeStatement, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func cloneAliasMap(m map[*RealVariable]AliasInfo) map[*RealVariable]AliasInfo {
	cp := make(map[*RealVariable]AliasInfo, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

