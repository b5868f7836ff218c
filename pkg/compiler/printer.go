package compiler

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented dump of an AST node (an Expr, a Stmt or a
// *TypeExpr) to w, one node per line.
func Fprint(w io.Writer, node any) error {
	p := &printer{w: w}
	p.node(node, 0)
	return p.err
}

// Sprint is Fprint into a string.
func Sprint(node any) string {
	var sb strings.Builder
	_ = Fprint(&sb, node)
	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) node(node any, depth int) {
	switch n := node.(type) {
	case nil:
		p.line(depth, "<nil>")

	// statements
	case *Block:
		p.line(depth, "Block")
		for _, s := range n.Stmts {
			p.node(s, depth+1)
		}
	case *VariableDecl:
		final := ""
		if n.Final {
			final = " final"
		}
		p.line(depth, "VariableDecl %s %s%s", n.Name, n.Type, final)
		if n.Init != nil {
			p.node(n.Init, depth+1)
		}
	case *Assignment:
		p.line(depth, "Assignment")
		p.node(n.Target, depth+1)
		p.node(n.Value, depth+1)
	case *IfStmt:
		p.line(depth, "If")
		p.node(n.Cond, depth+1)
		p.node(n.Then, depth+1)
		if n.Else != nil {
			p.line(depth, "Else")
			p.node(n.Else, depth+1)
		}
	case *WhileStmt:
		p.line(depth, "While")
		p.node(n.Cond, depth+1)
		p.node(n.Body, depth+1)
	case *DoWhileStmt:
		p.line(depth, "DoWhile")
		p.node(n.Body, depth+1)
		p.node(n.Cond, depth+1)
	case *ForStmt:
		p.line(depth, "For %s", n.Var)
		p.node(n.Start, depth+1)
		p.node(n.End, depth+1)
		p.node(n.Step, depth+1)
		p.node(n.Body, depth+1)
	case *RecordDecl:
		p.line(depth, "Record %s", n.Name)
		for _, f := range n.Fields {
			p.line(depth+1, "Field %s %s", f.Name, f.Type)
		}
	case *FunctionDecl:
		p.line(depth, "Function %s %s", n.Name, n.Return)
		for _, param := range n.Params {
			p.line(depth+1, "Param %s %s", param.Name, param.Type)
		}
		p.node(n.Body, depth+1)
	case *FreeStmt:
		p.line(depth, "Free %s", n.Name)
	case *ReturnStmt:
		p.line(depth, "Return")
		if n.Value != nil {
			p.node(n.Value, depth+1)
		}
	case *FunctionCall:
		p.line(depth, "FunctionCall %s", n.Name)
		for _, arg := range n.Args {
			p.node(arg, depth+1)
		}

	// expressions
	case *Literal:
		p.line(depth, "Literal %s %s", n.Kind, n)
	case *VarRef:
		p.line(depth, "VarRef %s", n.Name)
	case *BinaryExpr:
		p.line(depth, "Binary %s", n.Op)
		p.node(n.Left, depth+1)
		p.node(n.Right, depth+1)
	case *UnaryExpr:
		p.line(depth, "Unary %s", n.Op)
		p.node(n.Right, depth+1)
	case *ArrayCreation:
		p.line(depth, "ArrayCreation of %s", n.Elem)
		p.node(n.Size, depth+1)
	case *ArrayAccess:
		p.line(depth, "ArrayAccess")
		p.node(n.Array, depth+1)
		p.node(n.Index, depth+1)
	case *FieldAccess:
		p.line(depth, "FieldAccess .%s", n.Field)
		p.node(n.Base, depth+1)
	case *CallExpr:
		p.line(depth, "Call %s (%s)", n.Name, n.Kind)
		for _, arg := range n.Args {
			p.node(arg, depth+1)
		}

	case *TypeExpr:
		p.line(depth, "Type %s", n)
	default:
		p.line(depth, "%T", node)
	}
}
