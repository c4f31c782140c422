package cfg

import "driftc/internal/ast"

// UnreachableItems walks a built Graph and returns, across every dead
// block, the statements inside it — the same "unreachable code after
// return" condition the teacher's FlowAnalyzer tracked with a single
// afterReturn bool, generalized here to survive branching (an
// unreachable else-arm, not just a linear tail).
func (g *Graph) UnreachableItems() []ast.FunctionBlockItem {
	var out []ast.FunctionBlockItem
	for _, b := range g.Blocks {
		if !b.Dead {
			continue
		}
		out = append(out, b.Items...)
	}
	return out
}
