package parser

import "driftc/internal/ast"

// parser_decl.go covers everything above expressions: top-level
// declarations (class, fn), statements, blocks, contract clauses and
// type references. Grounded on the teacher's parser_decl.go-equivalent
// declaration parsing, generalized for drift's receiver methods,
// nullable types and contract clauses.

func (p *Parser) parseTopLevelDecl() ast.Node {
	switch {
	case p.check(CLASS):
		return p.parseClassDecl()
	case p.check(FN):
		return p.parseFunction()
	default:
		p.errorAtCurrent("expected 'class' or 'fn' declaration")
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseClassDecl() *ast.ClassDecl {
	start := p.consume(CLASS, "expected 'class'")
	name := p.consumeIdent("expected class name")
	p.consume(LEFT_BRACE, "expected '{' to start class body")

	var fields []*ast.FieldDecl
	var methods []*ast.Function
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		p.skipComments()
		if p.check(RIGHT_BRACE) {
			break
		}
		switch {
		case p.check(VAL), p.check(VAR):
			fields = append(fields, p.parseFieldDecl())
		case p.check(FN):
			methods = append(methods, p.parseFunction())
		default:
			p.errorAtCurrent("expected field or method declaration inside class body")
			p.synchronize()
		}
	}
	end := p.consume(RIGHT_BRACE, "expected '}' to close class body")
	return &ast.ClassDecl{Pos: p.makePos(start), EndPos: p.makeEndPos(end), NID: p.nextNodeID(), Name: name, Fields: fields, Methods: methods}
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	mutable := p.match(VAR)
	if !mutable {
		p.consume(VAL, "expected 'val' or 'var'")
	}
	start := p.previous()
	name := p.consumeIdent("expected field name")
	p.consume(COLON, "expected ':' after field name")
	vt := p.parseVariableType()
	return &ast.FieldDecl{Pos: p.makePos(start), EndPos: vt.NodeEndPos(), NID: p.nextNodeID(), Name: name, Mutable: mutable, VariableType: vt}
}

func (p *Parser) parseFunction() *ast.Function {
	start := p.consume(FN, "expected 'fn'")
	var contract *ast.ContractClause
	if p.check(CONTRACT) {
		contract = p.parseContractClause()
	}
	name := p.consumeIdent("expected function name")
	p.consume(LEFT_PAREN, "expected '(' after function name")

	var receiver *ast.FunctionParam
	var params []*ast.FunctionParam
	if p.check(THIS) {
		t := p.advance()
		receiver = &ast.FunctionParam{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Name: ast.Ident{Value: "this", Pos: p.makePos(t), EndPos: p.makeEndPos(t)}}
		if !p.check(RIGHT_PAREN) {
			p.consume(COMMA, "expected ',' after receiver parameter")
		}
	}
	for !p.check(RIGHT_PAREN) {
		params = append(params, p.parseFunctionParam())
		if !p.match(COMMA) {
			break
		}
	}
	p.consume(RIGHT_PAREN, "expected ')' after parameter list")

	var returnType *ast.VariableType
	if p.match(ARROW) {
		returnType = p.parseVariableType()
	}
	if contract == nil && p.check(CONTRACT) {
		contract = p.parseContractClause()
	}
	body := p.parseFunctionBlock()
	return &ast.Function{
		Pos: p.makePos(start), EndPos: body.EndPos, NID: p.nextNodeID(),
		Name: name, Receiver: receiver, Params: params, ReturnType: returnType,
		Contract: contract, Body: body,
	}
}

func (p *Parser) parseFunctionParam() *ast.FunctionParam {
	mutable := p.match(VAR)
	if !mutable {
		p.match(VAL)
	}
	start := p.peek()
	name := p.consumeIdent("expected parameter name")
	p.consume(COLON, "expected ':' after parameter name")
	vt := p.parseVariableType()
	return &ast.FunctionParam{Pos: p.makePos(start), EndPos: vt.NodeEndPos(), NID: p.nextNodeID(), Name: name, Mutable: mutable, VariableType: vt}
}

// parseVariableType parses "Name", "Name?" or "Name<A, B>?" (spec.md §4.4
// surface VariableType syntax).
func (p *Parser) parseVariableType() *ast.VariableType {
	start := p.consumeIdent("expected type name")
	vt := &ast.VariableType{Pos: start.Pos, EndPos: start.EndPos, NID: p.nextNodeID(), Name: start.Value}
	if p.match(LESS) {
		vt.Generics = append(vt.Generics, p.parseVariableType())
		for p.match(COMMA) {
			vt.Generics = append(vt.Generics, p.parseVariableType())
		}
		end := p.consume(GREATER, "expected '>' to close generic argument list")
		vt.EndPos = p.makeEndPos(end)
	}
	if p.match(QUESTION) {
		vt.Nullable = true
		vt.EndPos = p.makeEndPos(p.previous())
	}
	return vt
}

// parseContractClause parses `contract { effect; effect; ... }`, where
// each effect is one of the forms spec.md's ContractEngine evaluates:
// a bare boolean, `returns(true/false/null/notNull) -> <cond>`, or
// `returnsForEach(<index>) -> <cond>`.
func (p *Parser) parseContractClause() *ast.ContractClause {
	start := p.consume(CONTRACT, "expected 'contract'")
	p.consume(LEFT_BRACE, "expected '{' to start contract clause")
	var effects []*ast.ContractEffect
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		effects = append(effects, p.parseContractEffect())
		p.match(SEMICOLON)
	}
	end := p.consume(RIGHT_BRACE, "expected '}' to close contract clause")
	return &ast.ContractClause{Pos: p.makePos(start), EndPos: p.makeEndPos(end), NID: p.nextNodeID(), Effects: effects}
}

func (p *Parser) parseContractEffect() *ast.ContractEffect {
	if p.check(IDENTIFIER) && p.peek().Lexeme == "returnsForEach" {
		p.advance()
		p.consume(LEFT_PAREN, "expected '(' after 'returnsForEach'")
		idx := 0
		if p.check(NUMBER) {
			idx = parseSmallInt(p.advance().Lexeme)
		}
		p.consume(RIGHT_PAREN, "expected ')' after returnsForEach argument")
		p.consume(ARROW, "expected '->' after 'returnsForEach(...)'")
		cond := p.parseExpr()
		return &ast.ContractEffect{Kind: ast.EffectForEachReturnValue, Condition: cond, ParamIdx: idx}
	}
	if p.check(RETURNS) {
		p.advance()
		p.consume(LEFT_PAREN, "expected '(' after 'returns'")
		kind := ast.EffectReturnsWildcard
		switch {
		case p.match(TRUE):
			kind = ast.EffectReturnsTrue
		case p.match(FALSE):
			kind = ast.EffectReturnsFalse
		case p.match(NULL):
			kind = ast.EffectReturnsNull
		case p.check(IDENTIFIER) && p.peek().Lexeme == "notNull":
			p.advance()
			kind = ast.EffectReturnsNotNull
		}
		p.consume(RIGHT_PAREN, "expected ')' after returns(...) argument")
		p.consume(ARROW, "expected '->' after 'returns(...)'")
		cond := p.parseExpr()
		return &ast.ContractEffect{Kind: kind, Condition: cond}
	}
	cond := p.parseExpr()
	return &ast.ContractEffect{Kind: ast.EffectReturnsWildcard, Condition: cond}
}

func parseSmallInt(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// --- statements and blocks ---

func (p *Parser) parseFunctionBlock() *ast.FunctionBlock {
	start := p.consume(LEFT_BRACE, "expected '{'")
	block := p.parseBlockItems()
	end := p.consume(RIGHT_BRACE, "expected '}'")
	block.Pos = p.makePos(start)
	block.EndPos = p.makeEndPos(end)
	return block
}

// parseBlockItems parses statements until the closing brace, treating a
// trailing bare expression statement (no following statement) as the
// block's TailExpr — matching the teacher's treatment of a block's final
// expression as its value.
func (p *Parser) parseBlockItems() *ast.FunctionBlock {
	block := &ast.FunctionBlock{NID: p.nextNodeID()}
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		p.skipComments()
		if p.check(RIGHT_BRACE) {
			break
		}
		item := p.parseBlockItem()
		if item == nil {
			continue
		}
		if es, ok := item.(*ast.ExprStmt); ok && p.check(RIGHT_BRACE) {
			block.TailExpr = es.Expr
			continue
		}
		block.Items = append(block.Items, item)
	}
	return block
}

func (p *Parser) parseBlockItem() ast.FunctionBlockItem {
	switch {
	case p.check(VAL), p.check(VAR):
		return p.parseLetStmt()
	case p.check(RETURN):
		return p.parseReturnStmt()
	case p.check(WHILE):
		return p.parseWhileStmt()
	case p.check(ASSERT):
		return p.parseAssertStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	mutable := p.match(VAR)
	if !mutable {
		p.consume(VAL, "expected 'val' or 'var'")
	}
	start := p.previous()
	name := p.consumeIdent("expected variable name")
	var vt *ast.VariableType
	if p.match(COLON) {
		vt = p.parseVariableType()
	}
	p.consume(EQUAL, "expected '=' in variable declaration")
	value := p.parseExpr()
	p.match(SEMICOLON)
	return &ast.LetStmt{Pos: p.makePos(start), EndPos: value.NodeEndPos(), NID: p.nextNodeID(), Name: name, Mutable: mutable, VariableType: vt, Expr: value}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.consume(RETURN, "expected 'return'")
	var value ast.Expr
	end := p.makeEndPos(start)
	if !p.check(SEMICOLON) && !p.check(RIGHT_BRACE) {
		value = p.parseExpr()
		end = value.NodeEndPos()
	}
	p.match(SEMICOLON)
	return &ast.ReturnStmt{Pos: p.makePos(start), EndPos: end, NID: p.nextNodeID(), Value: value}
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.consume(WHILE, "expected 'while'")
	p.consume(LEFT_PAREN, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after while condition")
	body := p.parseFunctionBlock()
	return &ast.WhileStmt{Pos: p.makePos(start), EndPos: body.EndPos, NID: p.nextNodeID(), Cond: cond, Body: body}
}

// parseAssertStmt parses `assert(cond, ...)`, kanso's RequireStmt analogue.
func (p *Parser) parseAssertStmt() *ast.AssertStmt {
	start := p.consume(ASSERT, "expected 'assert'")
	p.consume(LEFT_PAREN, "expected '(' after 'assert'")
	var args []ast.Expr
	if !p.check(RIGHT_PAREN) {
		args = append(args, p.parseExpr())
		for p.match(COMMA) {
			args = append(args, p.parseExpr())
		}
	}
	end := p.consume(RIGHT_PAREN, "expected ')' after assert arguments")
	p.match(SEMICOLON)
	return &ast.AssertStmt{Pos: p.makePos(start), EndPos: p.makeEndPos(end), NID: p.nextNodeID(), Args: args}
}

func (p *Parser) parseExprOrAssignStmt() ast.FunctionBlockItem {
	expr := p.parseExpr()
	if p.match(EQUAL) {
		value := p.parseExpr()
		p.match(SEMICOLON)
		return &ast.AssignStmt{Pos: expr.NodePos(), EndPos: value.NodeEndPos(), NID: p.nextNodeID(), Target: expr, Value: value}
	}
	p.match(SEMICOLON)
	return &ast.ExprStmt{Pos: expr.NodePos(), EndPos: expr.NodeEndPos(), NID: p.nextNodeID(), Expr: expr}
}
