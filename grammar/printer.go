package grammar

import (
	"fmt"
	"strings"
)

// String renders the CST back to drift source, used by the `-print-cst`
// debug dump (the root main.go entry point) to show what the tooling
// grammar actually captured.

func indent(level int) string {
	return strings.Repeat("    ", level)
}

func (p *Program) String() string {
	var b strings.Builder
	for _, item := range p.Items {
		b.WriteString(item.StringWithIndent(0))
	}
	return b.String()
}

func (it *Item) StringWithIndent(level int) string {
	switch {
	case it.Comment != nil:
		return it.Comment.String() + "\n"
	case it.Class != nil:
		return it.Class.StringWithIndent(level) + "\n"
	case it.Func != nil:
		return it.Func.StringWithIndent(level) + "\n"
	}
	return ""
}

func (c *Comment) String() string { return c.Text }
func (d *DocComment) String() string { return d.Text }
func (id *PosIdent) String() string { return id.Value }

func (c *Class) StringWithIndent(level int) string {
	var b strings.Builder
	if c.Doc != nil {
		b.WriteString(indent(level) + c.Doc.String() + "\n")
	}
	b.WriteString(fmt.Sprintf("%sclass %s {\n", indent(level), c.Name.String()))
	for _, f := range c.Fields {
		b.WriteString(indent(level+1) + f.String() + "\n")
	}
	for _, m := range c.Methods {
		b.WriteString(m.StringWithIndent(level + 1))
	}
	b.WriteString(indent(level) + "}\n")
	return b.String()
}

func (f *Field) String() string {
	return fmt.Sprintf("%s %s: %s", f.Qualifier, f.Name.String(), f.Type.String())
}

func (t *Type) String() string {
	s := t.Name.String()
	if len(t.Generics) > 0 {
		var gens []string
		for _, g := range t.Generics {
			gens = append(gens, g.String())
		}
		s += "<" + strings.Join(gens, ", ") + ">"
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

func (p *Param) String() string {
	s := p.Name.String() + ": " + p.Type.String()
	if p.Qualifier != "" {
		s = p.Qualifier + " " + s
	}
	return s
}

func (c *Contract) String() string {
	var b strings.Builder
	b.WriteString("contract {\n")
	for _, e := range c.Effects {
		b.WriteString("    " + e.String() + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (e *Effect) String() string {
	var b strings.Builder
	if e.ForEachIndex != nil {
		b.WriteString(fmt.Sprintf("returnsForEach(%d) -> ", *e.ForEachIndex))
	} else if e.ReturnsKind != "" {
		b.WriteString(fmt.Sprintf("returns(%s) -> ", e.ReturnsKind))
	}
	if e.Condition != nil {
		b.WriteString(e.Condition.String())
	}
	b.WriteString(";")
	return b.String()
}

func (f *Function) StringWithIndent(level int) string {
	var b strings.Builder
	if f.Doc != nil {
		b.WriteString(indent(level) + f.Doc.String() + "\n")
	}
	b.WriteString(fmt.Sprintf("%sfn %s(", indent(level), f.Name.String()))
	var parts []string
	if f.Receiver {
		parts = append(parts, "this")
	}
	for _, p := range f.Params {
		parts = append(parts, p.String())
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	if f.Return != nil {
		b.WriteString(" -> " + f.Return.String())
	}
	if f.Contract != nil {
		b.WriteString(" " + f.Contract.String())
	}
	b.WriteString(" " + f.Body.StringWithIndent(level))
	return b.String()
}

func (blk *Block) StringWithIndent(level int) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, s := range blk.Statements {
		b.WriteString(s.StringWithIndent(level + 1))
	}
	b.WriteString(indent(level) + "}\n")
	return b.String()
}

func (s *Statement) StringWithIndent(level int) string {
	switch {
	case s.Comment != nil:
		return indent(level) + s.Comment.String() + "\n"
	case s.Let != nil:
		return indent(level) + s.Let.String() + "\n"
	case s.Return != nil:
		return indent(level) + s.Return.String() + "\n"
	case s.Assert != nil:
		return indent(level) + s.Assert.String() + "\n"
	case s.While != nil:
		return indent(level) + s.While.StringWithIndent(level)
	case s.Assign != nil:
		return indent(level) + s.Assign.String() + "\n"
	case s.ExprStmt != nil:
		return indent(level) + s.ExprStmt.String() + "\n"
	}
	return ""
}

func (l *LetStmt) String() string {
	s := fmt.Sprintf("%s %s", l.Qualifier, l.Name.String())
	if l.Type != nil {
		s += ": " + l.Type.String()
	}
	return s + " = " + l.Value.String() + ";"
}

func (r *ReturnStmt) String() string {
	if r.Value != nil {
		return "return " + r.Value.String() + ";"
	}
	return "return;"
}

func (a *AssertStmt) String() string {
	var args []string
	for _, arg := range a.Args {
		args = append(args, arg.String())
	}
	return fmt.Sprintf("assert(%s);", strings.Join(args, ", "))
}

func (w *WhileStmt) StringWithIndent(level int) string {
	return fmt.Sprintf("while (%s) %s", w.Cond.String(), w.Body.StringWithIndent(level))
}

func (a *AssignStmt) String() string {
	return a.Target.String() + " = " + a.Value.String() + ";"
}

func (e *ExprStmt) String() string {
	return e.Value.String() + ";"
}

func (e *Expr) String() string {
	if e.Left == nil {
		return ""
	}
	s := e.Left.String()
	if e.Default != nil {
		s += " ?: " + e.Default.String()
	}
	return s
}

func (b *BinaryExpr) String() string {
	s := b.Left.String()
	for _, op := range b.Ops {
		s += " " + op.String()
	}
	return s
}

func (op *BinOp) String() string {
	return fmt.Sprintf("%s %s", op.Operator, op.Right.String())
}

func (u *UnaryExpr) String() string {
	if u.Operator != "" {
		return u.Operator + u.Value.String()
	}
	return u.Value.String()
}

func (p *PostfixExpr) String() string {
	s := p.Primary.String()
	for _, op := range p.Suffix {
		s += op.String()
	}
	return s
}

func (op *PostfixOp) String() string {
	switch {
	case op.Dot != nil:
		s := "." + op.Dot.String()
		if op.Call != nil {
			s += op.Call.String()
		}
		if op.Lambda != nil {
			s += " " + op.Lambda.String()
		}
		return s
	case op.SafeDot != nil:
		s := "?." + op.SafeDot.String()
		if op.SafeCall != nil {
			s += op.SafeCall.String()
		}
		return s
	case op.NotNull:
		return "!!"
	case op.IsType != nil:
		if op.IsNegated {
			return " !is " + op.IsType.String()
		}
		return " is " + op.IsType.String()
	case op.AsType != nil:
		if op.AsSafe {
			return " as? " + op.AsType.String()
		}
		return " as " + op.AsType.String()
	}
	return ""
}

func (c *CallSuffix) String() string {
	var args []string
	for _, a := range c.Args {
		args = append(args, a.String())
	}
	return "(" + strings.Join(args, ", ") + ")"
}

func (l *Lambda) String() string {
	return "{ " + strings.TrimSpace(l.Body.StringWithIndent(0)) + " }"
}

func (c *CallExpr) String() string {
	s := c.Callee.String() + c.Args.String()
	if c.Lambda != nil {
		s += " " + c.Lambda.String()
	}
	return s
}

func (i *IfExpr) String() string {
	s := fmt.Sprintf("if (%s) %s", i.Cond.String(), strings.TrimSpace(i.Then.StringWithIndent(0)))
	if i.Else != nil {
		s += " else " + strings.TrimSpace(i.Else.StringWithIndent(0))
	}
	return s
}

func (wb *WhenBranch) String() string {
	cond := "else"
	if !wb.Else && wb.Condition != nil {
		cond = wb.Condition.String()
	}
	return fmt.Sprintf("%s -> %s", cond, strings.TrimSpace(wb.Body.StringWithIndent(0)))
}

func (w *WhenExpr) String() string {
	var b strings.Builder
	b.WriteString("when ")
	if w.Subject != nil {
		b.WriteString("(" + w.Subject.String() + ") ")
	}
	b.WriteString("{ ")
	for _, br := range w.Branches {
		b.WriteString(br.String() + "; ")
	}
	b.WriteString("}")
	return b.String()
}

func (p *PrimaryExpr) String() string {
	switch {
	case p.If != nil:
		return p.If.String()
	case p.When != nil:
		return p.When.String()
	case p.Literal != nil:
		return *p.Literal
	case p.Call != nil:
		return p.Call.String()
	case p.This:
		return "this"
	case p.Ident != nil:
		return p.Ident.String()
	case p.Lambda != nil:
		return p.Lambda.String()
	case p.Parens != nil:
		return "(" + p.Parens.String() + ")"
	}
	return ""
}
