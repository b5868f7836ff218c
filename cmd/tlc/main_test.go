package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"tinylang/pkg/compiler"
)

func runTLC(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	var cerr *compiler.Error
	if errors.As(err, &cerr) {
		a.report(cerr)
	}
	return stdout.String(), stderr.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLexCommand(t *testing.T) {
	src := writeTemp(t, "p.tl", "x int = 1;")
	out, _, err := runTLC(t, "lex", src)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "IDENTIFIER"))
	be.True(t, strings.Contains(out, "KEYWORD"))
	be.True(t, strings.Contains(out, "EOF"))
}

func TestParseCommand(t *testing.T) {
	src := writeTemp(t, "p.tl", "x int = 1 + 2;")
	out, _, err := runTLC(t, "parse", src)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, "Block\n  VariableDecl x int\n"))
}

func TestCheckCommand(t *testing.T) {
	cfg := writeTemp(t, "tlc.toml", "[output]\ncolor = false\n")
	src := writeTemp(t, "p.tl", "fun f() { } fun g() { } f();")
	out, _, err := runTLC(t, "--config", cfg, "check", src)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, "GLOBAL:\n"))
	be.True(t, strings.Contains(out, "reachable: [f]"))
	be.True(t, strings.HasSuffix(out, "ok\n"))
}

func TestCheckCommandReportsError(t *testing.T) {
	cfg := writeTemp(t, "tlc.yaml", "output:\n  color: false\n")
	src := writeTemp(t, "p.tl", "x int = 1;\ny string = x;\n")
	_, stderr, err := runTLC(t, "-c", cfg, "check", src)
	be.Err(t, err, compiler.ErrType)
	be.True(t, strings.HasPrefix(stderr, "line 2: type error"))
	be.True(t, strings.Contains(stderr, "  |> y string = x;"))
}

func TestSnippetCanBeHidden(t *testing.T) {
	cfg := writeTemp(t, "tlc.yaml", "output:\n  color: false\n  show_snippet: false\n")
	src := writeTemp(t, "p.tl", "a = 1;")
	_, stderr, err := runTLC(t, "-c", cfg, "check", src)
	be.Err(t, err, compiler.ErrScope)
	be.True(t, !strings.Contains(stderr, "|>"))
}

func TestDebugLogging(t *testing.T) {
	cfg := writeTemp(t, "tlc.toml", "[log]\nlevel = \"debug\"\nformat = \"json\"\n")
	src := writeTemp(t, "p.tl", "x int = 1;")
	_, stderr, err := runTLC(t, "-c", cfg, "check", src)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stderr, `"msg":"compilation complete"`))
	be.True(t, strings.Contains(stderr, `"compilation":`))
}

func TestCommandErrors(t *testing.T) {
	_, _, err := runTLC(t, "check", filepath.Join(t.TempDir(), "missing.tl"))
	be.Err(t, err, os.ErrNotExist)

	_, _, err = runTLC(t, "check")
	be.Err(t, err)

	src := writeTemp(t, "p.tl", "x int = 1;")
	_, _, err = runTLC(t, "-c", writeTemp(t, "tlc.ini", ""), "check", src)
	be.Err(t, err, "cannot detect config format")
}
