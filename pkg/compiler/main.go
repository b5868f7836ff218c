// Package compiler provides the front end for a small imperative language
// with primitives, arrays, records and functions: a longest-match lexer
// driven by pattern automata, a recursive-descent parser and a scope-aware
// type checker.
//
// Pipeline: source → Lex → Parse → Analyze → Program (checked AST + global scope)
package compiler
