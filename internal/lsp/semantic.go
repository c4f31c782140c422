package lsp

import (
	"driftc/internal/ast"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the SemanticTokenTypes array
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into SemanticTokenTypes
	TokenModifiers int // bitmask
}

// collectSemanticTokens walks a parsed Program and emits one token per
// name occurrence — class/function declarations, fields, parameters and
// every identifier/call/field-access reachable from a function body —
// the same per-node-kind walker shape as the teacher's own
// collectSemanticTokens, retargeted from kanso's grammar.AST to drift's
// internal/ast.Program.
func collectSemanticTokens(program *ast.Program) []SemanticToken {
	var tokens []SemanticToken
	if program == nil {
		return tokens
	}

	for _, cd := range program.Classes {
		tokens = append(tokens, walkClass(cd)...)
	}
	for _, fn := range program.Funcs {
		tokens = append(tokens, walkFunction(fn, 0)...)
	}
	return tokens
}

func walkClass(cd *ast.ClassDecl) []SemanticToken {
	var tokens []SemanticToken
	tokens = append(tokens, identToken(cd.Name, "type", 1))
	for _, f := range cd.Fields {
		tokens = append(tokens, identToken(f.Name, "property", 1))
		tokens = append(tokens, typeReferenceTokens(f.VariableType)...)
	}
	for _, m := range cd.Methods {
		tokens = append(tokens, walkFunction(m, 1)...)
	}
	return tokens
}

func walkFunction(fn *ast.Function, declModifier int) []SemanticToken {
	var tokens []SemanticToken
	tokens = append(tokens, identToken(fn.Name, "function", 1))

	if fn.Receiver != nil {
		tokens = append(tokens, identToken(fn.Receiver.Name, "variable", 1))
	}
	for _, p := range fn.Params {
		tokens = append(tokens, identToken(p.Name, "parameter", 1))
		tokens = append(tokens, typeReferenceTokens(p.VariableType)...)
	}
	tokens = append(tokens, typeReferenceTokens(fn.ReturnType)...)
	tokens = append(tokens, walkBlock(fn.Body)...)
	return tokens
}

func walkBlock(b *ast.FunctionBlock) []SemanticToken {
	var tokens []SemanticToken
	if b == nil {
		return tokens
	}
	for _, item := range b.Items {
		tokens = append(tokens, walkBlockItem(item)...)
	}
	if b.TailExpr != nil {
		tokens = append(tokens, walkExpr(b.TailExpr)...)
	}
	return tokens
}

func walkBlockItem(item ast.FunctionBlockItem) []SemanticToken {
	switch s := item.(type) {
	case *ast.LetStmt:
		tokens := []SemanticToken{identToken(s.Name, "variable", 1)}
		tokens = append(tokens, typeReferenceTokens(s.VariableType)...)
		return append(tokens, walkExpr(s.Expr)...)
	case *ast.ExprStmt:
		return walkExpr(s.Expr)
	case *ast.ReturnStmt:
		return walkExpr(s.Value)
	case *ast.AssignStmt:
		tokens := walkExpr(s.Target)
		return append(tokens, walkExpr(s.Value)...)
	case *ast.AssertStmt:
		var tokens []SemanticToken
		for _, a := range s.Args {
			tokens = append(tokens, walkExpr(a)...)
		}
		return tokens
	case *ast.WhileStmt:
		tokens := walkExpr(s.Cond)
		return append(tokens, walkBlock(s.Body)...)
	}
	return nil
}

func walkExpr(e ast.Expr) []SemanticToken {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.IdentExpr:
		return []SemanticToken{makeToken(v.Pos, v.EndPos, v.Name, "variable", 0)}
	case *ast.ParenExpr:
		return walkExpr(v.Value)
	case *ast.BinaryExpr:
		tokens := walkExpr(v.Left)
		return append(tokens, walkExpr(v.Right)...)
	case *ast.UnaryExpr:
		return walkExpr(v.Value)
	case *ast.IsExpr:
		tokens := walkExpr(v.Value)
		return append(tokens, typeReferenceTokens(v.Type)...)
	case *ast.AsExpr:
		tokens := walkExpr(v.Value)
		return append(tokens, typeReferenceTokens(v.Type)...)
	case *ast.NotNullAssertExpr:
		return walkExpr(v.Value)
	case *ast.SafeCallExpr:
		tokens := walkExpr(v.Receiver)
		return append(tokens, walkExpr(v.Selector)...)
	case *ast.ElvisExpr:
		tokens := walkExpr(v.Left)
		return append(tokens, walkExpr(v.Default)...)
	case *ast.CallExpr:
		tokens := walkExpr(v.Callee)
		for _, a := range v.Args {
			tokens = append(tokens, walkExpr(a)...)
		}
		if v.Lambda != nil {
			tokens = append(tokens, walkLambda(v.Lambda)...)
		}
		return tokens
	case *ast.FieldAccessExpr:
		tokens := walkExpr(v.Target)
		return append(tokens, identToken(v.Name, "property", 0))
	case *ast.IfExpr:
		tokens := walkExpr(v.Cond)
		tokens = append(tokens, walkBlock(v.Then)...)
		return append(tokens, walkBlock(v.Else)...)
	case *ast.WhenExpr:
		var tokens []SemanticToken
		if v.Subject != nil {
			tokens = append(tokens, walkExpr(v.Subject)...)
		}
		for _, br := range v.Branches {
			if br.Condition != nil {
				tokens = append(tokens, walkExpr(br.Condition)...)
			}
			tokens = append(tokens, walkBlock(br.Body)...)
		}
		return tokens
	case *ast.LambdaExpr:
		return walkLambda(v)
	}
	return nil
}

func walkLambda(l *ast.LambdaExpr) []SemanticToken {
	var tokens []SemanticToken
	for _, p := range l.Params {
		tokens = append(tokens, identToken(p, "parameter", 1))
	}
	return append(tokens, walkBlock(l.Body)...)
}

func identToken(id ast.Ident, tokenType string, decl int) SemanticToken {
	return makeToken(id.Pos, id.EndPos, id.Value, tokenType, decl)
}

func makeToken(pos, endPos ast.Position, value, tokenType string, decl int) SemanticToken {
	length := endPos.Column - pos.Column
	if length <= 0 {
		length = len(value)
	}

	return SemanticToken{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: decl << indexOf("declaration", SemanticTokenModifiers),
	}
}

// typeReferenceTokens collects tokens for a (possibly generic, possibly
// nullable) type reference — parameter types, return types, field types.
func typeReferenceTokens(t *ast.VariableType) []SemanticToken {
	if t == nil {
		return nil
	}
	tokens := []SemanticToken{makeToken(t.Pos, t.Pos, t.Name, "type", 0)}
	for _, g := range t.Generics {
		tokens = append(tokens, typeReferenceTokens(g)...)
	}
	return tokens
}

// indexOf returns the index of a string in a list, or -1 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}
