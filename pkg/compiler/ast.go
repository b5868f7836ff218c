package compiler

import (
	"fmt"
	"strings"
)

//  Type syntax

// TypeForm tells how a TypeExpr was written.
type TypeForm int

const (
	FormPrimitive TypeForm = iota // int float bool string
	FormRecord                    // a record name
	FormArray                     // Elem[]
)

// TypeExpr is a type as it appears in source. It is resolved to a VarType by
// the analyzer, never by the parser.
//
//	nums int[] = ...
//	     ^^^^^  TypeExpr{Form: FormArray, Elem: &TypeExpr{Name: "int"}}
type TypeExpr struct {
	Name string // empty for arrays
	Form TypeForm
	Elem *TypeExpr // element type when Form == FormArray
	Line int
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "void"
	}
	if t.Form == FormArray {
		return t.Elem.String() + "[]"
	}
	return t.Name
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	Pos() int
	String() string
}

// Literal is a constant. Kind is one of INTEGER_NUMBER, FLOAT_NUMBER,
// BOOLEAN or STRING and Value is the source text.
//
//	x int = 10;
//	        ^^  Literal{Kind: INTEGER_NUMBER, Value: "10"}
type Literal struct {
	Kind  TokenType
	Value string
	Line  int
}

func (*Literal) exprNode()  {}
func (l *Literal) Pos() int { return l.Line }
func (l *Literal) String() string {
	if l.Kind == STRING {
		return fmt.Sprintf("%q", l.Value)
	}
	return l.Value
}

// VarRef is a read of a named variable.
type VarRef struct {
	Name string
	Line int
}

func (*VarRef) exprNode()        {}
func (v *VarRef) Pos() int       { return v.Line }
func (v *VarRef) String() string { return v.Name }

// BinaryExpr represents Left Op Right.
//
//	x + 1
//	^ ^ ^
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
	Line  int
}

func (*BinaryExpr) exprNode()  {}
func (b *BinaryExpr) Pos() int { return b.Line }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// UnaryExpr represents -Right.
type UnaryExpr struct {
	Op    TokenType
	Right Expr
	Line  int
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) Pos() int       { return u.Line }
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s %s)", u.Op, u.Right) }

// ArrayCreation represents array [Size] of Elem.
type ArrayCreation struct {
	Size Expr
	Elem *TypeExpr
	Line int
}

func (*ArrayCreation) exprNode()  {}
func (a *ArrayCreation) Pos() int { return a.Line }
func (a *ArrayCreation) String() string {
	return fmt.Sprintf("ArrayCreation(%s, of=%s)", a.Size, a.Elem)
}

// ArrayAccess represents Array[Index]. Array may itself be any access chain.
type ArrayAccess struct {
	Array Expr
	Index Expr
	Line  int
}

func (*ArrayAccess) exprNode()        {}
func (a *ArrayAccess) Pos() int       { return a.Line }
func (a *ArrayAccess) String() string { return fmt.Sprintf("(%s[%s])", a.Array, a.Index) }

// FieldAccess represents Base.Field. Record is filled in by the analyzer with
// the resolved layout of Base.
type FieldAccess struct {
	Base   Expr
	Field  string
	Line   int
	Record *RecordType
}

func (*FieldAccess) exprNode()        {}
func (f *FieldAccess) Pos() int       { return f.Line }
func (f *FieldAccess) String() string { return fmt.Sprintf("(%s.%s)", f.Base, f.Field) }

// CallKind records what a CallExpr turned out to be once its name was
// resolved.
type CallKind int

const (
	CallUnresolved CallKind = iota
	CallFunction
	CallRecord
)

func (k CallKind) String() string {
	switch k {
	case CallFunction:
		return "function"
	case CallRecord:
		return "record"
	}
	return "unresolved"
}

// CallExpr is name(args) used as a value. The syntax is shared by function
// calls and positional record construction; the analyzer sets Kind and
// exactly one of Func or Record.
type CallExpr struct {
	Name   string
	Args   []Expr
	Line   int
	Kind   CallKind
	Func   *FunctionType
	Record *RecordType
}

func (*CallExpr) exprNode()  {}
func (c *CallExpr) Pos() int { return c.Line }
func (c *CallExpr) String() string {
	return fmt.Sprintf("CallExpr(%s, args=%s)", c.Name, exprList(c.Args))
}

// FunctionCall is name(args); used as a statement. It is also an Expr so its
// result type can be recorded like any other expression.
type FunctionCall struct {
	Name string
	Args []Expr
	Line int
}

func (*FunctionCall) exprNode()  {}
func (*FunctionCall) stmtNode()  {}
func (c *FunctionCall) Pos() int { return c.Line }
func (c *FunctionCall) String() string {
	return fmt.Sprintf("FunctionCall(%s, args=%s)", c.Name, exprList(c.Args))
}

func exprList(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	Pos() int
	String() string
}

// Block represents { statement ... }. The program itself is a Block.
// Scope is set by the analyzer.
type Block struct {
	Stmts []Stmt
	Line  int
	Scope *SymbolTable
}

func (*Block) stmtNode()  {}
func (b *Block) Pos() int { return b.Line }
func (b *Block) String() string {
	return fmt.Sprintf("Block(len=%d)", len(b.Stmts))
}

// VariableDecl represents [final] name type [= init];
type VariableDecl struct {
	Name  string
	Type  *TypeExpr
	Init  Expr // may be nil
	Final bool
	Line  int
}

func (*VariableDecl) stmtNode()  {}
func (d *VariableDecl) Pos() int { return d.Line }
func (d *VariableDecl) String() string {
	prefix := ""
	if d.Final {
		prefix = "final "
	}
	if d.Init == nil {
		return fmt.Sprintf("VariableDecl(%s%s %s)", prefix, d.Name, d.Type)
	}
	return fmt.Sprintf("VariableDecl(%s%s %s = %s)", prefix, d.Name, d.Type, d.Init)
}

// Assignment represents Target = Value; where Target is a VarRef,
// ArrayAccess or FieldAccess.
type Assignment struct {
	Target Expr
	Value  Expr
	Line   int
}

func (*Assignment) stmtNode()  {}
func (a *Assignment) Pos() int { return a.Line }
func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment(%s = %s)", a.Target, a.Value)
}

// IfStmt represents if (Cond) Then [else Else].
type IfStmt struct {
	Cond Expr
	Then *Block
	Else *Block // may be nil
	Line int
}

func (*IfStmt) stmtNode()  {}
func (i *IfStmt) Pos() int { return i.Line }
func (i *IfStmt) String() string {
	if i.Else != nil {
		return fmt.Sprintf("IfStmt(if %s then %s else %s)", i.Cond, i.Then, i.Else)
	}
	return fmt.Sprintf("IfStmt(if %s then %s)", i.Cond, i.Then)
}

// WhileStmt represents while (Cond) Body.
type WhileStmt struct {
	Cond Expr
	Body *Block
	Line int
}

func (*WhileStmt) stmtNode()  {}
func (w *WhileStmt) Pos() int { return w.Line }
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", w.Cond, w.Body)
}

// DoWhileStmt represents do Body while (Cond);
type DoWhileStmt struct {
	Body *Block
	Cond Expr
	Line int
}

func (*DoWhileStmt) stmtNode()  {}
func (d *DoWhileStmt) Pos() int { return d.Line }
func (d *DoWhileStmt) String() string {
	return fmt.Sprintf("DoWhileStmt(do %s while %s)", d.Body, d.Cond)
}

// ForStmt represents for (Var, Start, End, Step) Body. Var must already be
// declared.
type ForStmt struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  *Block
	Line  int
}

func (*ForStmt) stmtNode()  {}
func (f *ForStmt) Pos() int { return f.Line }
func (f *ForStmt) String() string {
	return fmt.Sprintf("ForStmt(%s, start=%s, end=%s, step=%s, body=%s)", f.Var, f.Start, f.End, f.Step, f.Body)
}

// FieldDecl is one "name type;" line of a record definition.
type FieldDecl struct {
	Name string
	Type *TypeExpr
	Line int
}

func (f FieldDecl) String() string { return f.Name + " " + f.Type.String() }

// RecordDecl represents Name rec { field type; ... }
type RecordDecl struct {
	Name   string
	Fields []FieldDecl
	Line   int
}

func (*RecordDecl) stmtNode()  {}
func (r *RecordDecl) Pos() int { return r.Line }
func (r *RecordDecl) String() string {
	return fmt.Sprintf("RecordDecl(%s, fields=%v)", r.Name, r.Fields)
}

// Param is one function parameter.
type Param struct {
	Name string
	Type *TypeExpr
	Line int
}

func (p Param) String() string { return p.Name + " " + p.Type.String() }

// FunctionDecl represents fun name(params) [type] { body }. A nil Return
// means the function returns nothing. Scope holds the parameters and is set
// by the analyzer.
type FunctionDecl struct {
	Name   string
	Params []Param
	Return *TypeExpr
	Body   *Block
	Line   int
	Scope  *SymbolTable
}

func (*FunctionDecl) stmtNode()  {}
func (f *FunctionDecl) Pos() int { return f.Line }
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("FunctionDecl(%s %s, params=%v, body=%s)", f.Return, f.Name, f.Params, f.Body)
}

// FreeStmt represents free name;
type FreeStmt struct {
	Name string
	Line int
}

func (*FreeStmt) stmtNode()        {}
func (f *FreeStmt) Pos() int       { return f.Line }
func (f *FreeStmt) String() string { return fmt.Sprintf("FreeStmt(%s)", f.Name) }

// ReturnStmt represents return [Value];
type ReturnStmt struct {
	Value Expr // may be nil
	Line  int
}

func (*ReturnStmt) stmtNode()  {}
func (r *ReturnStmt) Pos() int { return r.Line }
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "ReturnStmt()"
	}
	return fmt.Sprintf("ReturnStmt(%s)", r.Value)
}
