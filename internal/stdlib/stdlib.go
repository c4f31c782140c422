// Package stdlib is the ContractEngine's view of drift's builtin
// functions: the handful of names every program can call without an
// import, each with the `contract {}` clause the engine would read off a
// user declaration if one existed. The table itself is authored as YAML
// (contracts.yaml) rather than hand-built Go literals, the way the
// teacher's own stdlib module table (internal/stdlib/modules.go) was a
// plain Go map — swapped here for a data file plus a small loader so a
// new builtin is a YAML entry, not a code change.
package stdlib

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"driftc/internal/ast"
)

//go:embed contracts.yaml
var contractsYAML []byte

type fileFormat struct {
	Functions []functionEntry `yaml:"functions"`
}

type functionEntry struct {
	Name    string        `yaml:"name"`
	Params  []paramEntry  `yaml:"params"`
	Returns string        `yaml:"returns"`
	Effects []effectEntry `yaml:"effects"`
}

type paramEntry struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

type effectEntry struct {
	Kind  string `yaml:"kind"`
	Param string `yaml:"param"`
}

// Entry is one builtin's signature and contract, in the same shape the
// resolver's own FuncInfo carries for a user-declared function.
type Entry struct {
	Params   []*ast.FunctionParam
	Contract *ast.ContractClause
}

var builtins map[string]*Entry

var idgen ast.IDGen

// synthetic AST built here is never compared by identity against a real
// parse's nodes (ContractEngine.evalWith matches on shape, not NodeID —
// see ContractEngine.evalWith's IdentExpr/IsExpr cases), so a private
// IDGen local to this package is enough to keep each node's ID unique
// within it.
func nextID() ast.NodeID { return idgen.Next() }

func init() {
	var doc fileFormat
	if err := yaml.Unmarshal(contractsYAML, &doc); err != nil {
		panic(fmt.Sprintf("stdlib: malformed contracts.yaml: %v", err))
	}
	builtins = make(map[string]*Entry, len(doc.Functions))
	for _, fn := range doc.Functions {
		builtins[fn.Name] = buildEntry(fn)
	}
}

func buildEntry(fn functionEntry) *Entry {
	params := make([]*ast.FunctionParam, len(fn.Params))
	indexOf := make(map[string]int, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = &ast.FunctionParam{
			NID:  nextID(),
			Name: ast.Ident{NID: nextID(), Value: p.Name},
			VariableType: &ast.VariableType{
				NID: nextID(), Name: p.Type, Nullable: p.Nullable,
			},
		}
		indexOf[p.Name] = i
	}

	clause := &ast.ContractClause{NID: nextID()}
	for _, eff := range fn.Effects {
		if effect := buildEffect(eff, indexOf); effect != nil {
			clause.Effects = append(clause.Effects, effect)
		}
	}
	return &Entry{Params: params, Contract: clause}
}

func buildEffect(eff effectEntry, indexOf map[string]int) *ast.ContractEffect {
	idx := indexOf[eff.Param]
	switch eff.Kind {
	case "notNullWildcard":
		return &ast.ContractEffect{
			Kind:      ast.EffectReturnsWildcard,
			Condition: notEqualNull(eff.Param),
			ParamIdx:  idx,
		}
	case "forEachReturnValue":
		// No fixed Condition: the narrowed type comes from the lambda
		// argument's own body at each call site, not a declared
		// expression (spec.md scenario 8) — the engine's
		// DataFlowAnalyzer.visitCallLambda does that analysis itself
		// once it sees this effect's Kind on the callee's contract.
		return &ast.ContractEffect{Kind: ast.EffectForEachReturnValue, ParamIdx: idx}
	default:
		return nil
	}
}

func notEqualNull(paramName string) ast.Expr {
	return &ast.BinaryExpr{
		NID:   nextID(),
		Op:    "!=",
		Left:  &ast.IdentExpr{NID: nextID(), Name: paramName},
		Right: &ast.LiteralExpr{NID: nextID(), Kind: ast.NullLiteral, Value: "null"},
	}
}

// ContractFor implements the slice of dataflow.ContractProvider a
// builtin can satisfy on its own — the resolver falls back to this when
// a call's callee isn't a user-declared function (internal/semantic's
// Resolver.ContractFor).
func ContractFor(name string) (*ast.ContractClause, []*ast.FunctionParam, bool) {
	e, ok := builtins[name]
	if !ok {
		return nil, nil, false
	}
	return e.Contract, e.Params, true
}
