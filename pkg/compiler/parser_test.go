package compiler

import (
	"errors"
	"reflect"
	"testing"
)

// TestParse verifies the shape of single-statement programs through the
// nodes' String forms.
func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Variable Declaration", "x int = 10;", "VariableDecl(x int = 10)"},
		{"Final Declaration", "final y float = 1.5;", "VariableDecl(final y float = 1.5)"},
		{"Declaration Without Init", "s string;", "VariableDecl(s string)"},
		{"Array Creation", "nums int[] = array [3] of int;", "VariableDecl(nums int[] = ArrayCreation(3, of=int))"},
		{"Nested Array Type", "grid int[][];", "VariableDecl(grid int[][])"},
		{"Record Construction", "p Point = Point(1, 2);", "VariableDecl(p Point = CallExpr(Point, args=[1 2]))"},
		{"String Literal", `s string = "hi there";`, `VariableDecl(s string = "hi there")`},
		{"Precedence", "x = a + b * c;", "Assignment(x = (a ADD (b MULTIPLY c)))"},
		{"Parentheses", "x = (a + b) * c;", "Assignment(x = ((a ADD b) MULTIPLY c))"},
		{"Left Associative", "x = a - b - c;", "Assignment(x = ((a SUBTRACT b) SUBTRACT c))"},
		{"Modulo and Divide", "x = a / b % c;", "Assignment(x = ((a DIVIDE b) MODULO c))"},
		{"Unary Minus", "x = -y;", "Assignment(x = (SUBTRACT y))"},
		{"Double Unary Minus", "x = - -y;", "Assignment(x = (SUBTRACT (SUBTRACT y)))"},
		{
			"Logical Ladder",
			"b = x < 1 || y >= 2 && z == 3;",
			"Assignment(b = ((x LESS 1) LOGICAL_OR ((y GREATER_OR_EQUAL 2) LOGICAL_AND (z EQUAL 3))))",
		},
		{"Negation Call", "b = !(done);", "Assignment(b = CallExpr(!, args=[done]))"},
		{"Access Chain Target", "a[i].f[0] = 1;", "Assignment((((a[i]).f)[0]) = 1)"},
		{"Access Chain Value", "x = p.pos.x;", "Assignment(x = ((p.pos).x))"},
		{"Call In Expression", "x = add(1, f());", "Assignment(x = CallExpr(add, args=[1 CallExpr(f, args=[])]))"},
		{"Call Statement", `writeln("hi");`, `FunctionCall(writeln, args=["hi"])`},
		{"Call Without Args", "f();", "FunctionCall(f, args=[])"},
		{"Record Definition", "Point rec { x int; y int; }", "RecordDecl(Point, fields=[x int y int])"},
		{"Empty Record", "Unit rec { }", "RecordDecl(Unit, fields=[])"},
		{
			"Function",
			"fun add(a int, b int) int { return a + b; }",
			"FunctionDecl(int add, params=[a int b int], body=Block(len=1))",
		},
		{"Void Function", "fun f() { }", "FunctionDecl(void f, params=[], body=Block(len=0))"},
		{"Array Parameter", "fun sum(xs int[]) int { return 0; }", "FunctionDecl(int sum, params=[xs int[]], body=Block(len=1))"},
		{"If Else", "if (x) { } else { y = 1; }", "IfStmt(if x then Block(len=0) else Block(len=1))"},
		{"If Without Else", "if (x == 1) { y = 1; }", "IfStmt(if (x EQUAL 1) then Block(len=1))"},
		{"While", "while (i < 10) { i = i + 1; }", "WhileStmt(while (i LESS 10) do Block(len=1))"},
		{"Do While", "do { } while (false);", "DoWhileStmt(do Block(len=0) while false)"},
		{"For", "for (i, 0, n - 1, 2) { }", "ForStmt(i, start=0, end=(n SUBTRACT 1), step=2, body=Block(len=0))"},
		{"Bare Return", "return;", "ReturnStmt()"},
		{"Return Value", "return x * 2;", "ReturnStmt((x MULTIPLY 2))"},
		{"Free", "free x;", "FreeStmt(x)"},
		{"Nested Block", "{ x int; }", "Block(len=1)"},
		{"Float Forms", "f float = .5 + 2.;", "VariableDecl(f float = (.5 ADD 2.))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if len(root.Stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(root.Stmts))
			}
			if got := root.Stmts[0].String(); got != tt.expected {
				t.Errorf("AST mismatch:\n got: %s\nwant: %s", got, tt.expected)
			}
		})
	}
}

func TestParseLines(t *testing.T) {
	src := "x int = 1;\nif (x == 1) {\n  x = 2;\n}"
	want := &Block{Line: 1, Stmts: []Stmt{
		&VariableDecl{
			Name: "x",
			Type: &TypeExpr{Name: "int", Form: FormPrimitive, Line: 1},
			Init: &Literal{Kind: INTEGER_NUMBER, Value: "1", Line: 1},
			Line: 1,
		},
		&IfStmt{
			Cond: &BinaryExpr{
				Op:    EQUAL,
				Left:  &VarRef{Name: "x", Line: 2},
				Right: &Literal{Kind: INTEGER_NUMBER, Value: "1", Line: 2},
				Line:  2,
			},
			Then: &Block{Line: 2, Stmts: []Stmt{
				&Assignment{
					Target: &VarRef{Name: "x", Line: 3},
					Value:  &Literal{Kind: INTEGER_NUMBER, Value: "2", Line: 3},
					Line:   3,
				},
			}},
			Line: 2,
		},
	}}

	got, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AST mismatch:\n got: %s\nwant: %s", Sprint(got), Sprint(want))
	}
}

func TestParseProgramMixesFunctionsAndStatements(t *testing.T) {
	src := `
$ globals first
count int = 0;
fun bump() { count = count + 1; }
bump();
Point rec { x int; y int; }
`
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(root.Stmts) != 4 {
		t.Fatalf("expected 4 top-level statements, got %d", len(root.Stmts))
	}
	if _, ok := root.Stmts[1].(*FunctionDecl); !ok {
		t.Errorf("statement 1: expected *FunctionDecl, got %T", root.Stmts[1])
	}
	if _, ok := root.Stmts[2].(*FunctionCall); !ok {
		t.Errorf("statement 2: expected *FunctionCall, got %T", root.Stmts[2])
	}
	if d, ok := root.Stmts[3].(*RecordDecl); !ok || d.Line != 6 {
		t.Errorf("statement 3: expected RecordDecl on line 6, got %v", root.Stmts[3])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  error
	}{
		{"Missing Initializer", "x int = ;", ErrParser},
		{"Missing Semicolon", "x int = 1", ErrParser},
		{"Condition Without Parens", "if x { }", ErrParser},
		{"Unclosed Block", "{ x int;", ErrParser},
		{"Dangling Operator", "x = 1 +;", ErrParser},
		{"Call On Access Chain", "a.b(1);", ErrParser},
		{"Nested Function", "fun f() { fun g() { } }", ErrParser},
		{"Statement Starting With Literal", "1 = x;", ErrParser},
		{"Keyword As Type", "x array;", ErrType},
		{"Keyword As Element Type", "nums int[] = array [3] of of;", ErrType},
		{"Keyword As Param Type", "fun f(a while) { }", ErrType},
		{"Declaration Missing Type", "x ;", ErrParser},
		{"For With Three Parts", "for (i, 0, 10) { }", ErrParser},
		{"Do Without While", "do { } (x);", ErrParser},
		{"Lexical Error Propagates", "x int = @;", ErrLexical},
		{"Unterminated String Propagates", `s string = "abc`, ErrLexical},
		{"Stray Else", "else { }", ErrParser},
		{"Unclosed Array Type", "x int[;", ErrParser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q, got nil", tt.input)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestParseErrorCarriesLineAndSnippet(t *testing.T) {
	src := "x int = 1;\ny int = 2;\nz int = ;"
	_, err := Parse(src)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if perr.Line != 3 {
		t.Errorf("expected line 3, got %d", perr.Line)
	}
	if perr.Snippet != "z int = ;" {
		t.Errorf("unexpected snippet %q", perr.Snippet)
	}
}
