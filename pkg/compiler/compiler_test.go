package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nalgeon/be"
)

func TestCompile(t *testing.T) {
	input := `
Point rec { x int; y int; }

fun dist(p Point) int {
	return p.x * p.x + p.y * p.y;
}

fun unused() { }

p Point = Point(3, 4);
d int = dist(p);
writeln(d);
`
	prog, err := Compile(input)
	be.Err(t, err, nil)

	be.True(t, prog.ID != uuid.Nil)
	be.Equal(t, len(prog.Root.Stmts), 6)
	be.True(t, prog.Root.Scope != nil)
	be.True(t, prog.Root.Scope.Contains("p"))
	be.True(t, prog.Root.Scope.Contains("d"))

	rec, ok := prog.Globals.Lookup("Point")
	be.True(t, ok)
	be.Equal(t, rec.String(), "Point")
	sig, ok := prog.Globals.Lookup("dist")
	be.True(t, ok)
	be.Equal(t, sig.String(), "fun(Point) int")

	be.Equal(t, prog.Reachable, map[string]bool{"dist": true})

	dInit := prog.Root.Stmts[4].(*VariableDecl).Init
	be.True(t, prog.Types[dInit] == VarType(TypeInt))
}

func TestCompileIDsAreUnique(t *testing.T) {
	a, err := Compile("x int = 1;")
	be.Err(t, err, nil)
	b, err := Compile("x int = 1;")
	be.Err(t, err, nil)
	be.True(t, a.ID != b.ID)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    error
		line    int
		snippet string
	}{
		{"Lexical", "x int = 1;\ny int = #;", ErrLexical, 2, "y int = #;"},
		{"Parser", "x int = 1;\n  y int = ;  ", ErrParser, 2, "y int = ;"},
		{"Scope", "x int = 1;\n\n\tz = 2;", ErrScope, 3, "z = 2;"},
		{"Type", `s string = 5;`, ErrType, 1, "s string = 5;"},
		{"Return", "fun f() int {\n  return true;\n}", ErrReturn, 2, "return true;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.input)
			be.Err(t, err, tt.kind)

			var cerr *Error
			be.True(t, errors.As(err, &cerr))
			be.Equal(t, cerr.Line, tt.line)
			be.Equal(t, cerr.Snippet, tt.snippet)
			be.True(t, strings.HasSuffix(err.Error(), "\n  |> "+tt.snippet))
		})
	}
}

func TestCompileDoesNotMutateSentinels(t *testing.T) {
	_, err := Compile("a = 1;")
	be.Err(t, err, ErrScope)
	be.Equal(t, ErrScope.Snippet, "")
	be.Equal(t, ErrScope.Line, 0)
}

func TestCompileLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	prog, err := Compile("fun f() { } f();", WithLogger(logger))
	be.Err(t, err, nil)

	out := buf.String()
	be.True(t, strings.Contains(out, "compilation="+prog.ID.String()))
	be.True(t, strings.Contains(out, "parse complete"))
	be.True(t, strings.Contains(out, "analysis complete"))
	be.True(t, strings.Contains(out, "compilation complete"))
}

func TestCompileConcurrent(t *testing.T) {
	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	progs := make([]*Program, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every program declares the same names with different types.
			src := fmt.Sprintf(`
R rec { v int[]; }
fun f(n int) int { return n + %d; }
x int = f(%d);
r R = R(array [x] of int);
`, i, i)
			if i%2 == 1 {
				src += "y string = x;\n"
			}
			progs[i], errs[i] = Compile(src)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if i%2 == 1 {
			be.Err(t, errs[i], ErrType)
			continue
		}
		be.Err(t, errs[i], nil)
		be.True(t, progs[i].Reachable["f"])
	}
}
