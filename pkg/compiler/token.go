package compiler

import "fmt"

// TokenType identifies the category of a lexed symbol.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	KEYWORD // free final rec fun for while if else return int float bool array of string do

	// Literals
	STRING         // "..." (verbatim, quotes stripped)
	INTEGER_NUMBER // 42
	FLOAT_NUMBER   // 4.2 / 4. / .2
	BOOLEAN        // true / false

	// Comparison / assignment
	EQUAL            // ==
	NOT_EQUAL        // !=
	LESS_OR_EQUAL    // <=
	GREATER_OR_EQUAL // >=
	ASSIGN           // =

	// Arithmetic
	ADD      // +
	SUBTRACT // -
	MULTIPLY // *
	DIVIDE   // /
	MODULO   // %

	LESS    // <
	GREATER // >

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	// Logical
	LOGICAL_AND // &&
	LOGICAL_OR  // ||
	LOGICAL_NOT // !

	// Punctuation
	DOT       // .
	SEMICOLON // ;
	COMMA     // ,

	IDENTIFIER // variable / function / record name
)

var tokenNames = [...]string{
	EOF:              "EOF",
	KEYWORD:          "KEYWORD",
	STRING:           "STRING",
	INTEGER_NUMBER:   "INTEGER_NUMBER",
	FLOAT_NUMBER:     "FLOAT_NUMBER",
	BOOLEAN:          "BOOLEAN",
	EQUAL:            "EQUAL",
	NOT_EQUAL:        "NOT_EQUAL",
	LESS_OR_EQUAL:    "LESS_OR_EQUAL",
	GREATER_OR_EQUAL: "GREATER_OR_EQUAL",
	ASSIGN:           "ASSIGN",
	ADD:              "ADD",
	SUBTRACT:         "SUBTRACT",
	MULTIPLY:         "MULTIPLY",
	DIVIDE:           "DIVIDE",
	MODULO:           "MODULO",
	LESS:             "LESS",
	GREATER:          "GREATER",
	LPAREN:           "LPAREN",
	RPAREN:           "RPAREN",
	LBRACE:           "LBRACE",
	RBRACE:           "RBRACE",
	LBRACKET:         "LBRACKET",
	RBRACKET:         "RBRACKET",
	LOGICAL_AND:      "LOGICAL_AND",
	LOGICAL_OR:       "LOGICAL_OR",
	LOGICAL_NOT:      "LOGICAL_NOT",
	DOT:              "DOT",
	SEMICOLON:        "SEMICOLON",
	COMMA:            "COMMA",
	IDENTIFIER:       "IDENTIFIER",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Symbol is a single lexical unit produced by the Lexer.
type Symbol struct {
	Type   TokenType
	Lexeme string // the matched source text; string contents without quotes
	Line   int    // 1-based source line
}

// Is reports whether s is the keyword kw.
func (s Symbol) Is(kw string) bool {
	return s.Type == KEYWORD && s.Lexeme == kw
}

func (s Symbol) String() string {
	return fmt.Sprintf("%-16s %-14q  line %d", s.Type, s.Lexeme, s.Line)
}
