package parser

import "driftc/internal/ast"

// Expression parsing is precedence-climbing over a fixed ladder of
// levels, grounded on the teacher's parsePrattExpr/parsePostfixExpr shape
// but restructured as one function per level so the additional drift
// operators (is/as, !!, ?., ?:) each get an unambiguous slot instead of
// living in a generic binaryPrecedence table.
//
//	parseExpr        ?:            (lowest, right-assoc)
//	parseOr          ||
//	parseAnd         &&
//	parseEquality    == != === !==
//	parseComparison  < <= > >=
//	parseIsAs        is !is, as as?
//	parseAdditive    + -
//	parseMultiplicative * / %
//	parseUnary       ! -           (prefix)
//	parsePostfix     . ?. !! (...) (trailing lambda)
//	parsePrimary     literals, identifiers, ( ), if, when, { lambda }

func (p *Parser) parseExpr() ast.Expr {
	left := p.parseOr()
	if p.match(QUESTION_COLON) {
		start := left.NodePos()
		def := p.parseExpr()
		return &ast.ElvisExpr{Pos: start, EndPos: def.NodeEndPos(), NID: p.nextNodeID(), Left: left, Default: def}
	}
	return left
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.match(OR_OR) {
		right := p.parseAnd()
		left = &ast.BinaryExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), NID: p.nextNodeID(), Op: "||", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.match(AND_AND) {
		right := p.parseEquality()
		left = &ast.BinaryExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), NID: p.nextNodeID(), Op: "&&", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for {
		var op string
		switch {
		case p.match(EQUAL_EQUAL_EQUAL):
			op = "==="
		case p.match(BANG_EQUAL_EQUAL):
			op = "!=="
		case p.match(EQUAL_EQUAL):
			op = "=="
		case p.match(BANG_EQUAL):
			op = "!="
		default:
			return left
		}
		right := p.parseComparison()
		left = &ast.BinaryExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), NID: p.nextNodeID(), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseIsAs()
	for {
		var op string
		switch {
		case p.match(LESS_EQUAL):
			op = "<="
		case p.match(GREATER_EQUAL):
			op = ">="
		case p.match(LESS):
			op = "<"
		case p.match(GREATER):
			op = ">"
		default:
			return left
		}
		right := p.parseIsAs()
		left = &ast.BinaryExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), NID: p.nextNodeID(), Op: op, Left: left, Right: right}
	}
}

// parseIsAs handles `x is T`, `x !is T`, `x as T`, `x as? T`. These bind
// tighter than comparison/equality but looser than + -, matching how
// drift programs write `x !is Foo && ...` without extra parens.
func (p *Parser) parseIsAs() ast.Expr {
	left := p.parseAdditive()
	for {
		negated := false
		if p.check(BANG) && p.checkNext(IS) {
			p.advance()
			p.advance()
			negated = true
		} else if p.match(IS) {
			// fallthrough, negated stays false
		} else if p.match(AS) {
			safe := p.match(QUESTION)
			t := p.parseVariableType()
			left = &ast.AsExpr{Pos: left.NodePos(), EndPos: t.NodeEndPos(), NID: p.nextNodeID(), Value: left, Type: t, Safe: safe}
			continue
		} else {
			return left
		}
		t := p.parseVariableType()
		left = &ast.IsExpr{Pos: left.NodePos(), EndPos: t.NodeEndPos(), NID: p.nextNodeID(), Value: left, Type: t, Negated: negated}
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for {
		var op string
		switch {
		case p.match(PLUS):
			op = "+"
		case p.match(MINUS):
			op = "-"
		default:
			return left
		}
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), NID: p.nextNodeID(), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for {
		var op string
		switch {
		case p.match(STAR):
			op = "*"
		case p.match(SLASH):
			op = "/"
		case p.match(PERCENT):
			op = "%"
		default:
			return left
		}
		right := p.parseUnary()
		left = &ast.BinaryExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), NID: p.nextNodeID(), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.match(BANG) {
		start := p.previous()
		val := p.parseUnary()
		return &ast.UnaryExpr{Pos: p.makePos(start), EndPos: val.NodeEndPos(), NID: p.nextNodeID(), Op: "!", Value: val}
	}
	if p.match(MINUS) {
		start := p.previous()
		val := p.parseUnary()
		return &ast.UnaryExpr{Pos: p.makePos(start), EndPos: val.NodeEndPos(), NID: p.nextNodeID(), Op: "-", Value: val}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.match(DOT):
			name := p.consumeIdent("expected field or method name after '.'")
			if p.check(LEFT_PAREN) {
				call := p.finishCall(&ast.FieldAccessExpr{Pos: expr.NodePos(), EndPos: name.EndPos, NID: p.nextNodeID(), Target: expr, Name: name})
				expr = p.attachTrailingLambda(call)
			} else {
				expr = &ast.FieldAccessExpr{Pos: expr.NodePos(), EndPos: name.EndPos, NID: p.nextNodeID(), Target: expr, Name: name}
			}
		case p.match(QUESTION_DOT):
			name := p.consumeIdent("expected field or method name after '?.'")
			var selector ast.Expr
			field := &ast.FieldAccessExpr{Pos: p.previous().Position.asPos(), EndPos: name.EndPos, NID: p.nextNodeID(), Target: nil, Name: name}
			if p.check(LEFT_PAREN) {
				selector = p.attachTrailingLambda(p.finishCall(field))
			} else {
				selector = field
			}
			expr = &ast.SafeCallExpr{Pos: expr.NodePos(), EndPos: selector.NodeEndPos(), NID: p.nextNodeID(), Receiver: expr, Selector: selector}
		case p.match(BANG_BANG):
			expr = &ast.NotNullAssertExpr{Pos: expr.NodePos(), EndPos: p.makeEndPos(p.previous()), NID: p.nextNodeID(), Value: expr}
		case p.check(LEFT_PAREN):
			expr = p.attachTrailingLambda(p.finishCall(expr))
		case p.check(LEFT_BRACE) && isBareCallTarget(expr):
			expr = p.attachTrailingLambda(&ast.CallExpr{Pos: expr.NodePos(), EndPos: expr.NodeEndPos(), NID: p.nextNodeID(), Callee: expr})
		default:
			return expr
		}
	}
}

// isBareCallTarget reports whether expr can be the callee of a
// trailing-lambda-only call such as `xs.filter { ... }` once the `.filter`
// FieldAccessExpr has already been built.
func isBareCallTarget(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.IdentExpr, *ast.FieldAccessExpr:
		return true
	}
	return false
}

func (p *Parser) finishCall(callee ast.Expr) *ast.CallExpr {
	p.consume(LEFT_PAREN, "expected '('")
	var args []ast.Expr
	if !p.check(RIGHT_PAREN) {
		args = append(args, p.parseExpr())
		for p.match(COMMA) {
			args = append(args, p.parseExpr())
		}
	}
	end := p.consume(RIGHT_PAREN, "expected ')' after arguments")
	return &ast.CallExpr{Pos: callee.NodePos(), EndPos: p.makeEndPos(end), NID: p.nextNodeID(), Callee: callee, Args: args}
}

func (p *Parser) attachTrailingLambda(call *ast.CallExpr) ast.Expr {
	if !p.check(LEFT_BRACE) {
		return call
	}
	lambda := p.parseLambda()
	call.Lambda = lambda
	call.EndPos = lambda.NodeEndPos()
	return call
}

func (p *Parser) parseLambda() *ast.LambdaExpr {
	start := p.consume(LEFT_BRACE, "expected '{' to start lambda")
	body := p.parseBlockItems()
	end := p.consume(RIGHT_BRACE, "expected '}' to close lambda")
	return &ast.LambdaExpr{
		Pos: p.makePos(start), EndPos: p.makeEndPos(end), NID: p.nextNodeID(),
		Body: body,
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.match(NUMBER):
		t := p.previous()
		return &ast.LiteralExpr{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Kind: ast.IntLiteral, Value: t.Lexeme}
	case p.match(STRING):
		t := p.previous()
		return &ast.LiteralExpr{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Kind: ast.StringLiteral, Value: t.Lexeme}
	case p.check(TRUE), p.check(FALSE):
		t := p.advance()
		return &ast.LiteralExpr{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Kind: ast.BoolLiteral, Value: t.Lexeme}
	case p.match(NULL):
		t := p.previous()
		return &ast.LiteralExpr{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Kind: ast.NullLiteral, Value: "null"}
	case p.match(THIS):
		t := p.previous()
		return &ast.IdentExpr{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Name: "this"}
	case p.match(IDENTIFIER):
		t := p.previous()
		return &ast.IdentExpr{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Name: t.Lexeme}
	case p.match(LEFT_PAREN):
		start := p.previous()
		inner := p.parseExpr()
		end := p.consume(RIGHT_PAREN, "expected ')' to close parenthesized expression")
		return &ast.ParenExpr{Pos: p.makePos(start), EndPos: p.makeEndPos(end), NID: p.nextNodeID(), Value: inner}
	case p.check(IF):
		return p.parseIfExpr()
	case p.check(WHEN):
		return p.parseWhenExpr()
	case p.check(LEFT_BRACE):
		return p.parseLambda()
	default:
		p.errorAtCurrent("expected expression")
		t := p.advance()
		return &ast.LiteralExpr{Pos: p.makePos(t), EndPos: p.makeEndPos(t), NID: p.nextNodeID(), Kind: ast.NullLiteral, Value: "null"}
	}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.consume(IF, "expected 'if'")
	p.consume(LEFT_PAREN, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after if condition")
	then := p.parseFunctionBlock()
	var elseBlock *ast.FunctionBlock
	end := then.EndPos
	if p.match(ELSE) {
		if p.check(IF) {
			nested := p.parseIfExpr()
			elseBlock = &ast.FunctionBlock{Pos: nested.NodePos(), EndPos: nested.NodeEndPos(), NID: p.nextNodeID(), TailExpr: nested}
		} else {
			elseBlock = p.parseFunctionBlock()
		}
		end = elseBlock.EndPos
	}
	return &ast.IfExpr{Pos: p.makePos(start), EndPos: end, NID: p.nextNodeID(), Cond: cond, Then: then, Else: elseBlock}
}

func (p *Parser) parseWhenExpr() ast.Expr {
	start := p.consume(WHEN, "expected 'when'")
	var subject ast.Expr
	if p.match(LEFT_PAREN) {
		subject = p.parseExpr()
		p.consume(RIGHT_PAREN, "expected ')' after when subject")
	}
	p.consume(LEFT_BRACE, "expected '{' to start when body")
	var branches []*ast.WhenBranch
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		var cond ast.Expr
		if !p.match(ELSE) {
			cond = p.parseExpr()
		}
		p.consume(ARROW, "expected '->' after when branch condition")
		body := p.parseFunctionBlock()
		branches = append(branches, &ast.WhenBranch{Condition: cond, Body: body})
	}
	end := p.consume(RIGHT_BRACE, "expected '}' to close when body")
	return &ast.WhenExpr{Pos: p.makePos(start), EndPos: p.makeEndPos(end), NID: p.nextNodeID(), Subject: subject, Branches: branches}
}

func (p Position) asPos() ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}

func (p *Parser) checkNext(tt TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return tt == EOF
	}
	return p.tokens[p.current+1].Type == tt
}
