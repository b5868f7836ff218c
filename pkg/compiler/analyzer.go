package compiler

import (
	"log/slog"
	"strconv"
)

// Analyzer type-checks a parsed program. All state lives in the value, so
// separate Analyzers can run concurrently; Analyze resets it on every call.
type Analyzer struct {
	global *SymbolTable
	scope  *SymbolTable  // current scope cursor
	fn     *FunctionType // enclosing function, nil at top level
	types  map[Expr]VarType

	sigs     map[*FunctionDecl]*FunctionType
	declared map[*RecordDecl]bool // decls that created their global binding

	logger *slog.Logger
}

// Option configures an Analyzer or a Compile run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sends debug records about each stage to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAnalyzer returns an Analyzer with a fresh global scope.
func NewAnalyzer(opts ...Option) *Analyzer {
	o := buildOptions(opts)
	a := &Analyzer{logger: o.logger}
	a.reset()
	return a
}

func (a *Analyzer) reset() {
	a.global = NewSymbolTable()
	registerBuiltins(a.global)
	a.scope = a.global
	a.fn = nil
	a.types = make(map[Expr]VarType)
	a.sigs = make(map[*FunctionDecl]*FunctionType)
	a.declared = make(map[*RecordDecl]bool)
}

// Globals returns the global scope: builtins, records and functions.
func (a *Analyzer) Globals() *SymbolTable { return a.global }

// Types returns the static type of every expression analysed so far.
func (a *Analyzer) Types() map[Expr]VarType { return a.types }

// TypeOf returns the recorded type of e.
func (a *Analyzer) TypeOf(e Expr) (VarType, bool) {
	t, ok := a.types[e]
	return t, ok
}

// Analyze checks root and stops at the first violation, which is returned as
// an *Error. Records and function signatures at the top level are registered
// before any statement is checked, so they may be used before they appear.
func (a *Analyzer) Analyze(root *Block) error {
	a.reset()

	if err := a.registerRecords(root.Stmts); err != nil {
		return err
	}
	if err := a.registerFunctions(root.Stmts); err != nil {
		return err
	}
	a.logger.Debug("signatures registered", "globals", len(a.global.bindings))

	if err := a.checkBlock(root); err != nil {
		return err
	}
	a.logger.Debug("analysis complete", "expressions", len(a.types))
	return nil
}

//  Top-level pre-pass

func (a *Analyzer) registerRecords(stmts []Stmt) error {
	var pending []*RecordDecl
	for _, s := range stmts {
		d, ok := s.(*RecordDecl)
		if !ok || a.global.Contains(d.Name) {
			continue
		}
		a.global.Insert(d.Name, &RecordType{Name: d.Name})
		a.declared[d] = true
		pending = append(pending, d)
	}
	// Fields are resolved only once every name exists so records can refer
	// to each other in any order.
	for _, d := range pending {
		t, _ := a.global.Lookup(d.Name)
		if err := a.fillRecord(t.(*RecordType), d); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) registerFunctions(stmts []Stmt) error {
	for _, s := range stmts {
		f, ok := s.(*FunctionDecl)
		if !ok {
			continue
		}
		if a.global.Contains(f.Name) {
			return errorf(ScopeError, f.Line, "%q is already declared", f.Name)
		}
		sig, err := a.signature(f)
		if err != nil {
			return err
		}
		a.sigs[f] = sig
		a.global.Insert(f.Name, sig)
	}
	return nil
}

func (a *Analyzer) signature(f *FunctionDecl) (*FunctionType, error) {
	ret, err := a.resolveType(f.Return)
	if err != nil {
		return nil, err
	}
	sig := &FunctionType{Return: ret}
	for _, p := range f.Params {
		t, err := a.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, t)
	}
	return sig, nil
}

func (a *Analyzer) fillRecord(rec *RecordType, d *RecordDecl) error {
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if seen[f.Name] {
			return errorf(RecordError, f.Line, "record %s declares field %q twice", d.Name, f.Name)
		}
		seen[f.Name] = true
		t, err := a.resolveType(f.Type)
		if err != nil {
			return err
		}
		rec.Fields = append(rec.Fields, Field{Name: f.Name, Type: t})
	}
	return nil
}

// resolveType turns type syntax into a VarType. A nil TypeExpr is void.
func (a *Analyzer) resolveType(te *TypeExpr) (VarType, error) {
	if te == nil {
		return TypeVoid, nil
	}
	switch te.Form {
	case FormPrimitive:
		if p, ok := primitives[te.Name]; ok {
			return p, nil
		}
	case FormArray:
		elem, err := a.resolveType(te.Elem)
		if err != nil {
			return nil, err
		}
		return &ArrayType{Elem: elem, Size: -1}, nil
	case FormRecord:
		if t, ok := a.global.Lookup(te.Name); ok {
			if rec, ok := t.(*RecordType); ok {
				return rec, nil
			}
		}
	}
	return nil, errorf(TypeError, te.Line, "unknown type %q", te.String())
}

//  Statements

func (a *Analyzer) checkBlock(b *Block) error {
	prev := a.scope
	a.scope = prev.NewChildScope()
	b.Scope = a.scope
	defer func() { a.scope = prev }()

	for _, s := range b.Stmts {
		if err := a.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStmt(s Stmt) error {
	switch n := s.(type) {
	case *Block:
		return a.checkBlock(n)
	case *VariableDecl:
		return a.checkVariableDecl(n)
	case *Assignment:
		return a.checkAssignment(n)
	case *IfStmt:
		if err := a.checkCondition(n.Cond, "if"); err != nil {
			return err
		}
		if err := a.checkBlock(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return a.checkBlock(n.Else)
		}
		return nil
	case *WhileStmt:
		if err := a.checkCondition(n.Cond, "while"); err != nil {
			return err
		}
		return a.checkBlock(n.Body)
	case *DoWhileStmt:
		if err := a.checkBlock(n.Body); err != nil {
			return err
		}
		return a.checkCondition(n.Cond, "do-while")
	case *ForStmt:
		return a.checkFor(n)
	case *RecordDecl:
		return a.checkRecord(n)
	case *FunctionDecl:
		return a.checkFunction(n)
	case *FreeStmt:
		if _, ok := a.scope.Lookup(n.Name); !ok {
			return errorf(ScopeError, n.Line, "cannot free undeclared %q", n.Name)
		}
		return nil
	case *ReturnStmt:
		return a.checkReturn(n)
	case *FunctionCall:
		_, err := a.typeOf(n)
		return err
	}
	return errorf(ParserError, s.Pos(), "unsupported statement %s", s)
}

func (a *Analyzer) checkVariableDecl(d *VariableDecl) error {
	if a.scope.Contains(d.Name) {
		return errorf(ScopeError, d.Line, "%q is already declared in this scope", d.Name)
	}
	t, err := a.resolveType(d.Type)
	if err != nil {
		return err
	}
	if d.Init != nil {
		it, err := a.typeOf(d.Init)
		if err != nil {
			return err
		}
		if !Equal(t, it) {
			return errorf(TypeError, d.Line, "cannot initialise %s %s with %s", d.Name, t, it)
		}
	}
	a.scope.Insert(d.Name, t)
	return nil
}

func (a *Analyzer) checkAssignment(s *Assignment) error {
	switch s.Target.(type) {
	case *VarRef, *ArrayAccess, *FieldAccess:
	default:
		return errorf(TypeError, s.Line, "cannot assign to %s", s.Target)
	}
	tt, err := a.typeOf(s.Target)
	if err != nil {
		return err
	}
	vt, err := a.typeOf(s.Value)
	if err != nil {
		return err
	}
	if !Equal(tt, vt) {
		return errorf(TypeError, s.Line, "cannot assign %s to %s of type %s", vt, s.Target, tt)
	}
	return nil
}

func (a *Analyzer) checkCondition(cond Expr, stmt string) error {
	t, err := a.typeOf(cond)
	if err != nil {
		return err
	}
	if t != TypeBool {
		return errorf(MissingConditionError, cond.Pos(), "%s condition has type %s, want bool", stmt, t)
	}
	return nil
}

func (a *Analyzer) checkFor(f *ForStmt) error {
	vt, ok := a.scope.Lookup(f.Var)
	if !ok {
		return errorf(ScopeError, f.Line, "loop variable %q is not declared", f.Var)
	}
	for _, bound := range []struct {
		name string
		expr Expr
	}{{"start", f.Start}, {"end", f.End}, {"step", f.Step}} {
		t, err := a.typeOf(bound.expr)
		if err != nil {
			return err
		}
		if !Equal(vt, t) {
			return errorf(TypeError, bound.expr.Pos(), "for %s has type %s but %s is %s", bound.name, t, f.Var, vt)
		}
	}
	return a.checkBlock(f.Body)
}

// checkRecord handles a record definition met during the walk. A name that
// is already bound is accepted only if the new layout is identical.
func (a *Analyzer) checkRecord(d *RecordDecl) error {
	if a.declared[d] {
		return nil
	}
	if existing, ok := a.global.Lookup(d.Name); ok {
		fresh := &RecordType{Name: d.Name}
		if err := a.fillRecord(fresh, d); err != nil {
			return err
		}
		if !Equal(existing, fresh) {
			return errorf(RecordError, d.Line, "%q is already defined differently", d.Name)
		}
		return nil
	}
	rec := &RecordType{Name: d.Name}
	a.global.Insert(d.Name, rec)
	a.declared[d] = true
	return a.fillRecord(rec, d)
}

func (a *Analyzer) checkFunction(f *FunctionDecl) error {
	sig, ok := a.sigs[f]
	if !ok {
		return errorf(ScopeError, f.Line, "function %q is not declared at top level", f.Name)
	}

	prevScope, prevFn := a.scope, a.fn
	a.scope = prevScope.NewChildScope()
	a.fn = sig
	f.Scope = a.scope
	defer func() { a.scope, a.fn = prevScope, prevFn }()

	for i, p := range f.Params {
		if a.scope.Contains(p.Name) {
			return errorf(ScopeError, p.Line, "duplicate parameter %q", p.Name)
		}
		a.scope.Insert(p.Name, sig.Params[i])
	}
	return a.checkBlock(f.Body)
}

func (a *Analyzer) checkReturn(r *ReturnStmt) error {
	if a.fn == nil {
		return errorf(ReturnError, r.Line, "return outside a function")
	}
	var t VarType = TypeVoid
	if r.Value != nil {
		var err error
		if t, err = a.typeOf(r.Value); err != nil {
			return err
		}
	}
	if !Equal(t, a.fn.Return) {
		return errorf(ReturnError, r.Line, "returning %s from a function declared to return %s", t, a.fn.Return)
	}
	return nil
}

//  Expressions

// typeOf computes and records the type of e.
func (a *Analyzer) typeOf(e Expr) (VarType, error) {
	t, err := a.exprType(e)
	if err != nil {
		return nil, err
	}
	a.types[e] = t
	return t, nil
}

func (a *Analyzer) exprType(e Expr) (VarType, error) {
	switch n := e.(type) {
	case *Literal:
		switch n.Kind {
		case INTEGER_NUMBER:
			return TypeInt, nil
		case FLOAT_NUMBER:
			return TypeFloat, nil
		case BOOLEAN:
			return TypeBool, nil
		case STRING:
			return TypeString, nil
		}
		return nil, errorf(TypeError, n.Line, "literal of unknown kind %s", n.Kind)

	case *VarRef:
		t, scope, ok := a.scope.resolve(n.Name)
		if !ok {
			return nil, errorf(ScopeError, n.Line, "%q is not declared", n.Name)
		}
		// The global scope only holds functions and records.
		if scope == a.global {
			return nil, errorf(TypeError, n.Line, "%q is a %s, not a variable", n.Name, t)
		}
		return t, nil

	case *BinaryExpr:
		return a.binaryType(n)

	case *UnaryExpr:
		t, err := a.typeOf(n.Right)
		if err != nil {
			return nil, err
		}
		if !isNumeric(t) {
			return nil, errorf(OperatorError, n.Line, "unary %s needs int or float, got %s", n.Op, t)
		}
		return t, nil

	case *ArrayCreation:
		st, err := a.typeOf(n.Size)
		if err != nil {
			return nil, err
		}
		if st != TypeInt {
			return nil, errorf(TypeError, n.Line, "array size has type %s, want int", st)
		}
		elem, err := a.resolveType(n.Elem)
		if err != nil {
			return nil, err
		}
		size := -1
		if lit, ok := n.Size.(*Literal); ok {
			if v, err := strconv.Atoi(lit.Value); err == nil {
				size = v
			}
		}
		return &ArrayType{Elem: elem, Size: size}, nil

	case *ArrayAccess:
		bt, err := a.typeOf(n.Array)
		if err != nil {
			return nil, err
		}
		arr, ok := bt.(*ArrayType)
		if !ok {
			return nil, errorf(TypeError, n.Line, "cannot index %s of type %s", n.Array, bt)
		}
		it, err := a.typeOf(n.Index)
		if err != nil {
			return nil, err
		}
		if it != TypeInt {
			return nil, errorf(TypeError, n.Line, "array index has type %s, want int", it)
		}
		return arr.Elem, nil

	case *FieldAccess:
		bt, err := a.typeOf(n.Base)
		if err != nil {
			return nil, err
		}
		rec, ok := bt.(*RecordType)
		if !ok {
			return nil, errorf(TypeError, n.Line, "%s of type %s has no fields", n.Base, bt)
		}
		ft, ok := rec.Field(n.Field)
		if !ok {
			return nil, errorf(TypeError, n.Line, "record %s has no field %q", rec.Name, n.Field)
		}
		n.Record = rec
		return ft, nil

	case *CallExpr:
		return a.callType(n)

	case *FunctionCall:
		t, ok := a.scope.Lookup(n.Name)
		if !ok {
			return nil, errorf(ScopeError, n.Line, "function %q is not declared", n.Name)
		}
		ft, ok := t.(*FunctionType)
		if !ok {
			return nil, errorf(TypeError, n.Line, "%q is a %s, not a function", n.Name, t)
		}
		return a.checkArgs(n.Name, ft, n.Args, n.Line)
	}
	return nil, errorf(TypeError, e.Pos(), "unsupported expression %s", e)
}

func (a *Analyzer) binaryType(b *BinaryExpr) (VarType, error) {
	lt, err := a.typeOf(b.Left)
	if err != nil {
		return nil, err
	}
	rt, err := a.typeOf(b.Right)
	if err != nil {
		return nil, err
	}
	if !Equal(lt, rt) {
		return nil, errorf(OperatorError, b.Line, "mismatched operands for %s: %s and %s", b.Op, lt, rt)
	}

	switch b.Op {
	case EQUAL, NOT_EQUAL, LESS, GREATER, LESS_OR_EQUAL, GREATER_OR_EQUAL:
		return TypeBool, nil
	case ADD, SUBTRACT, MULTIPLY, DIVIDE, MODULO:
		return lt, nil
	case LOGICAL_OR, LOGICAL_AND:
		return rt, nil
	}
	return nil, errorf(OperatorError, b.Line, "unsupported operator %s", b.Op)
}

// callType resolves name(args) as either a function call or a positional
// record construction and records the outcome on the node.
func (a *Analyzer) callType(c *CallExpr) (VarType, error) {
	t, ok := a.scope.Lookup(c.Name)
	if !ok {
		return nil, errorf(ScopeError, c.Line, "%q is not declared", c.Name)
	}

	switch callee := t.(type) {
	case *FunctionType:
		c.Kind, c.Func = CallFunction, callee
		return a.checkArgs(c.Name, callee, c.Args, c.Line)

	case *RecordType:
		c.Kind, c.Record = CallRecord, callee
		if len(c.Args) != len(callee.Fields) {
			return nil, errorf(ArgumentError, c.Line, "record %s has %d fields, got %d arguments", callee.Name, len(callee.Fields), len(c.Args))
		}
		for i, arg := range c.Args {
			at, err := a.typeOf(arg)
			if err != nil {
				return nil, err
			}
			if f := callee.Fields[i]; !Equal(f.Type, at) {
				return nil, errorf(ArgumentError, arg.Pos(), "field %s of %s is %s, got %s", f.Name, callee.Name, f.Type, at)
			}
		}
		return callee, nil
	}
	return nil, errorf(TypeError, c.Line, "%q of type %s cannot be called", c.Name, t)
}

// checkArgs checks args against sig and returns the call's result type.
func (a *Analyzer) checkArgs(name string, sig *FunctionType, args []Expr, line int) (VarType, error) {
	argTypes := make([]VarType, len(args))
	for i, arg := range args {
		t, err := a.typeOf(arg)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}

	switch sig {
	case builtinLen:
		if len(args) != 1 {
			return nil, errorf(ArgumentError, line, "len takes 1 argument, got %d", len(args))
		}
		if _, isArray := argTypes[0].(*ArrayType); !isArray && argTypes[0] != TypeString {
			return nil, errorf(ArgumentError, line, "len needs a string or an array, got %s", argTypes[0])
		}
		return sig.Return, nil
	case builtinWriteln:
		if len(args) != 1 {
			return nil, errorf(ArgumentError, line, "writeln takes 1 argument, got %d", len(args))
		}
		if !isPrimitive(argTypes[0]) {
			return nil, errorf(ArgumentError, line, "writeln needs a primitive value, got %s", argTypes[0])
		}
		return sig.Return, nil
	}

	if len(args) != len(sig.Params) {
		return nil, errorf(ArgumentError, line, "%s takes %d arguments, got %d", name, len(sig.Params), len(args))
	}
	for i, want := range sig.Params {
		if !Equal(want, argTypes[i]) {
			return nil, errorf(ArgumentError, args[i].Pos(), "argument %d of %s is %s, want %s", i+1, name, argTypes[i], want)
		}
	}
	return sig.Return, nil
}
