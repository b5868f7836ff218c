package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"tinylang/pkg/nfa"
)

// commentStart discards the rest of the physical line.
const commentStart = '$'

type rule struct {
	pattern *nfa.Automaton
	tt      TokenType
}

// rules is ordered: when several patterns accept the same text the first one
// wins, which is how "if" becomes a KEYWORD and not an IDENTIFIER.
var rules = []rule{
	{nfa.MustCompile("free|final|rec|fun|for|while|if|else|return|int|float|bool|array|of|string|do"), KEYWORD},
	{nfa.MustCompile(`([0-9]+\.[0-9]*)|([0-9]*\.[0-9]+)`), FLOAT_NUMBER},
	{nfa.MustCompile("[0-9][0-9]*"), INTEGER_NUMBER},
	{nfa.MustCompile("true|false"), BOOLEAN},
	{nfa.MustCompile("=="), EQUAL},
	{nfa.MustCompile("!="), NOT_EQUAL},
	{nfa.MustCompile("<="), LESS_OR_EQUAL},
	{nfa.MustCompile(">="), GREATER_OR_EQUAL},
	{nfa.MustCompile("="), ASSIGN},
	{nfa.MustCompile(`\+`), ADD},
	{nfa.MustCompile(`\-`), SUBTRACT},
	{nfa.MustCompile(`\*`), MULTIPLY},
	{nfa.MustCompile("/"), DIVIDE},
	{nfa.MustCompile("%"), MODULO},
	{nfa.MustCompile("<"), LESS},
	{nfa.MustCompile(">"), GREATER},
	{nfa.MustCompile(`\(`), LPAREN},
	{nfa.MustCompile(`\)`), RPAREN},
	{nfa.MustCompile("{"), LBRACE},
	{nfa.MustCompile("}"), RBRACE},
	{nfa.MustCompile(`\[`), LBRACKET},
	{nfa.MustCompile(`\]`), RBRACKET},
	{nfa.MustCompile("&&"), LOGICAL_AND},
	{nfa.MustCompile(`\|\|`), LOGICAL_OR},
	{nfa.MustCompile(`\.`), DOT},
	{nfa.MustCompile(";"), SEMICOLON},
	{nfa.MustCompile(","), COMMA},
	{nfa.MustCompile("!"), LOGICAL_NOT},
	{nfa.MustCompile("[_a-zA-Z][_a-zA-Z0-9]*"), IDENTIFIER},
}

// classify returns the type of the first rule accepting text.
func classify(text string) (TokenType, bool) {
	for _, r := range rules {
		if r.pattern.Matches(text) {
			return r.tt, true
		}
	}
	return EOF, false
}

// Lexer turns a character stream into Symbols using longest match over the
// rule table. Runes read past the end of a match are pushed back and served
// first on the next call.
type Lexer struct {
	in      *bufio.Reader
	pending []rune // pushed-back runes, top of stack is read next
	line    int    // current 1-based source line
	done    bool   // EOF symbol has been produced
}

// NewLexer returns a Lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{in: bufio.NewReader(r), line: 1}
}

// read returns the next rune; ok is false at end of input.
// Only runes coming from the underlying reader advance the line counter so
// that a pushed-back newline is never counted twice.
func (l *Lexer) read() (r rune, ok bool, err error) {
	if n := len(l.pending); n > 0 {
		r = l.pending[n-1]
		l.pending = l.pending[:n-1]
		return r, true, nil
	}
	r, _, err = l.in.ReadRune()
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read source: %w", err)
	}
	if r == '\n' {
		l.line++
	}
	return r, true, nil
}

// unread pushes runes back so the first of them is read next.
func (l *Lexer) unread(rs ...rune) {
	for i := len(rs) - 1; i >= 0; i-- {
		l.pending = append(l.pending, rs[i])
	}
}

// Complete reports whether the end of input has been reached and reported.
func (l *Lexer) Complete() bool {
	return l.done
}

func (l *Lexer) eof() Symbol {
	l.done = true
	return Symbol{Type: EOF, Lexeme: "", Line: l.line}
}

// skipComment discards everything up to and including the next newline.
func (l *Lexer) skipComment() error {
	for {
		r, ok, err := l.read()
		if err != nil || !ok || r == '\n' {
			return err
		}
	}
}

// scanString collects a "..." literal verbatim. The opening quote has been
// consumed already.
func (l *Lexer) scanString(line int) (Symbol, error) {
	var sb strings.Builder
	for {
		r, ok, err := l.read()
		if err != nil {
			return Symbol{}, err
		}
		if !ok {
			return Symbol{}, errorf(LexicalError, line, "unterminated string literal")
		}
		if r == '"' {
			return Symbol{Type: STRING, Lexeme: sb.String(), Line: line}, nil
		}
		sb.WriteRune(r)
	}
}

// NextSymbol skips whitespace and comments and returns the next Symbol.
// After the end of input it keeps returning EOF.
func (l *Lexer) NextSymbol() (Symbol, error) {
	if l.done {
		return Symbol{Type: EOF, Line: l.line}, nil
	}

	var first rune
	for {
		r, ok, err := l.read()
		if err != nil {
			return Symbol{}, err
		}
		if !ok {
			return l.eof(), nil
		}
		if r == commentStart {
			if err := l.skipComment(); err != nil {
				return Symbol{}, err
			}
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}
		first = r
		break
	}

	line := l.line
	if first == '"' {
		return l.scanString(line)
	}

	// Grow the lexeme while every extension is still accepted by some rule.
	// The second rune is always tried so two-rune operators like && whose
	// first half matches nothing are still found.
	lexeme := []rune{first}
	best, bestLen := EOF, 0
	if tt, ok := classify(string(lexeme)); ok {
		best, bestLen = tt, 1
	}
	for {
		r, ok, err := l.read()
		if err != nil {
			return Symbol{}, err
		}
		if !ok {
			break
		}
		if unicode.IsSpace(r) {
			l.unread(r)
			break
		}
		lexeme = append(lexeme, r)
		tt, matched := classify(string(lexeme))
		if !matched {
			break
		}
		best, bestLen = tt, len(lexeme)
	}

	if bestLen == 0 {
		return Symbol{}, errorf(LexicalError, line, "illegal character %q", first)
	}
	l.unread(lexeme[bestLen:]...)
	return Symbol{Type: best, Lexeme: string(lexeme[:bestLen]), Line: line}, nil
}

// Lex tokenises src and returns all symbols including the final EOF.
// It stops at the first lexical error.
func Lex(src string) ([]Symbol, error) {
	l := NewLexer(strings.NewReader(src))
	var symbols []Symbol
	for {
		sym, err := l.NextSymbol()
		if err != nil {
			return symbols, err
		}
		symbols = append(symbols, sym)
		if sym.Type == EOF {
			return symbols, nil
		}
	}
}
