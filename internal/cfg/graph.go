// Package cfg builds the control-flow graph spec.md §6 describes as an
// external collaborator of the dataflow engine: a block-level view of one
// function body whose edges carry the back-edge/dead-edge flags
// DataFlowAnalyzerContext.FlowBefore needs. It is grounded on the
// teacher's FlowAnalyzer (internal/semantic/flow_analyzer.go), which
// tracked "after a return, the rest is unreachable" with a pair of bools
// inline; here that tracking is reified into actual graph edges so it can
// be queried rather than just reported once during a single walk.
package cfg

import (
	"driftc/internal/ast"
	"driftc/internal/dataflow"
)

// Block is a straight-line run of statements with no internal branching.
// It implements dataflow.CFGNode so DataFlowAnalyzerContext can query its
// predecessors directly.
type Block struct {
	ID    int
	Items []ast.FunctionBlockItem
	Tail  ast.Expr // non-nil only for the block ending a FunctionBlock

	preds      []dataflow.CFGEdge
	Terminates bool // block ends in `return`, no fallthrough successor
	Dead       bool // unreachable: only reached by a dead edge
}

func (b *Block) Predecessors() []dataflow.CFGEdge { return b.preds }

// Graph is the block set for one function body.
type Graph struct {
	Entry  *Block
	Blocks []*Block
}

// GraphBuilder constructs a Graph by walking a FunctionBlock once,
// splitting at `if` expressions (as an expression statement or a
// `val`/`var` initializer) and `while` loops (each arm and each loop body
// becomes its own Block) and marking everything after a
// `return` or an already-dead predecessor as dead.
type GraphBuilder struct {
	g      *Graph
	nextID int
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{g: &Graph{}}
}

func (gb *GraphBuilder) Build(body *ast.FunctionBlock) *Graph {
	entry := gb.newBlock()
	gb.g.Entry = entry
	gb.walkBlock(body, entry, nil)
	return gb.g
}

func (gb *GraphBuilder) newBlock() *Block {
	gb.nextID++
	b := &Block{ID: gb.nextID}
	gb.g.Blocks = append(gb.g.Blocks, b)
	return b
}

func (gb *GraphBuilder) link(from, to *Block, back, dead bool) {
	to.preds = append(to.preds, dataflow.CFGEdge{From: from, IsBack: back, IsDead: dead, Resolved: true})
}

// walkBlock appends items/branches of body into cur, returning the block
// where control falls through after body (nil if body never falls
// through, e.g. it ends in `return`). parentDead marks cur itself as
// already unreachable so everything inside inherits that.
func (gb *GraphBuilder) walkBlock(body *ast.FunctionBlock, cur *Block, parentDead *bool) *Block {
	dead := parentDead != nil && *parentDead
	cur.Dead = cur.Dead || dead

	for _, item := range body.Items {
		switch stmt := item.(type) {
		case *ast.ReturnStmt:
			cur.Items = append(cur.Items, item)
			cur.Terminates = true
			dead = true
			cur = gb.newBlock()
			cur.Dead = true
		case *ast.AssertStmt:
			cur.Items = append(cur.Items, item)
		case *ast.WhileStmt:
			cur = gb.walkWhile(stmt, cur, &dead)
		case *ast.LetStmt:
			cur.Items = append(cur.Items, item)
			if ifExpr, ok := stmt.Expr.(*ast.IfExpr); ok {
				cur = gb.walkIf(ifExpr, cur, &dead)
			}
		case *ast.ExprStmt:
			if ifExpr, ok := stmt.Expr.(*ast.IfExpr); ok {
				cur = gb.walkIf(ifExpr, cur, &dead)
			} else {
				cur.Items = append(cur.Items, item)
			}
		default:
			cur.Items = append(cur.Items, item)
		}
	}
	if body.TailExpr != nil {
		cur.Tail = body.TailExpr
	}
	if dead {
		return nil
	}
	return cur
}

// walkIf splits into a then-block and (if present) an else-block, both
// predecessors of a fresh join block that execution falls through to.
func (gb *GraphBuilder) walkIf(ifExpr *ast.IfExpr, cur *Block, dead *bool) *Block {
	thenBlock := gb.newBlock()
	gb.link(cur, thenBlock, false, *dead)
	thenExit := gb.walkBlock(ifExpr.Then, thenBlock, dead)

	var elseExit *Block
	if ifExpr.Else != nil {
		elseBlock := gb.newBlock()
		gb.link(cur, elseBlock, false, *dead)
		elseExit = gb.walkBlock(ifExpr.Else, elseBlock, dead)
	}

	join := gb.newBlock()
	anyLive := false
	if thenExit != nil {
		gb.link(thenExit, join, false, *dead)
		anyLive = true
	}
	if ifExpr.Else == nil {
		// no else: falling through cur itself reaches join too.
		gb.link(cur, join, false, *dead)
		anyLive = true
	} else if elseExit != nil {
		gb.link(elseExit, join, false, *dead)
		anyLive = true
	}
	join.Dead = *dead || !anyLive
	*dead = join.Dead
	return join
}

// walkWhile builds a header block (the condition's evaluation point, the
// target of the loop's back edge), a body block, and a fresh block the
// loop falls through to on exit. The body's fallthrough edge back to the
// header is the graph's one back edge (spec.md §6 "back-edge handling":
// first visit contributes nothing to FlowBefore until the builder's
// second pass would mark it Resolved — this single-pass builder always
// leaves it unresolved on purpose, matching the engine's documented
// zero-or-more-iterations approximation for loops).
func (gb *GraphBuilder) walkWhile(w *ast.WhileStmt, cur *Block, dead *bool) *Block {
	header := gb.newBlock()
	gb.link(cur, header, false, *dead)

	bodyBlock := gb.newBlock()
	gb.link(header, bodyBlock, false, *dead)
	bodyExit := gb.walkBlock(w.Body, bodyBlock, dead)
	if bodyExit != nil {
		header.preds = append(header.preds, dataflow.CFGEdge{From: bodyExit, IsBack: true, IsDead: *dead, Resolved: false})
	}

	after := gb.newBlock()
	after.Dead = *dead
	gb.link(header, after, false, *dead)
	return after
}
