package compiler

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Program is the checked result of one compilation, ready for a code
// generator.
type Program struct {
	ID        uuid.UUID        // identifies this run in logs
	Root      *Block           // checked AST; every Block carries its Scope
	Globals   *SymbolTable     // builtins, records and function signatures
	Types     map[Expr]VarType // static type of every analysed expression
	Reachable map[string]bool  // user functions reachable from top level
}

// Compile runs the whole front end over src with a fresh analysis context.
// It is safe to call from several goroutines at once.
func Compile(src string, opts ...Option) (*Program, error) {
	o := buildOptions(opts)
	id := uuid.New()
	logger := o.logger.With("compilation", id.String())

	logger.Debug("parse started", "bytes", len(src))
	p, err := NewParser(NewLexer(strings.NewReader(src)))
	if err != nil {
		return nil, withSnippet(err, src)
	}
	root, err := p.ParseProgram()
	if err != nil {
		logger.Debug("parse failed", "err", err)
		return nil, withSnippet(err, src)
	}
	logger.Debug("parse complete", "statements", len(root.Stmts))

	a := NewAnalyzer(WithLogger(logger))
	if err := a.Analyze(root); err != nil {
		logger.Debug("analysis failed", "err", err)
		return nil, withSnippet(err, src)
	}

	prog := &Program{
		ID:        id,
		Root:      root,
		Globals:   a.Globals(),
		Types:     a.Types(),
		Reachable: ReachableFunctions(root),
	}
	logger.Debug("compilation complete", "reachable", len(prog.Reachable))
	return prog, nil
}

// withSnippet copies a compiler error and attaches the trimmed source line it
// points at. Other errors are returned unchanged.
func withSnippet(err error, src string) error {
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Line <= 0 || cerr.Snippet != "" {
		return err
	}
	lines := strings.Split(src, "\n")
	if cerr.Line > len(lines) {
		return err
	}
	out := *cerr
	out.Snippet = strings.TrimSpace(lines[cerr.Line-1])
	return &out
}
