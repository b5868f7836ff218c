package compiler

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a compilation failure.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	ParserError
	ScopeError
	TypeError
	OperatorError
	ArgumentError
	MissingConditionError
	ReturnError
	RecordError
)

var errorKindNames = [...]string{
	LexicalError:          "lexical error",
	ParserError:           "parser error",
	ScopeError:            "scope error",
	TypeError:             "type error",
	OperatorError:         "operator error",
	ArgumentError:         "argument error",
	MissingConditionError: "missing condition error",
	ReturnError:           "return error",
	RecordError:           "record error",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrLexical          = &Error{Kind: LexicalError}
	ErrParser           = &Error{Kind: ParserError}
	ErrScope            = &Error{Kind: ScopeError}
	ErrType             = &Error{Kind: TypeError}
	ErrOperator         = &Error{Kind: OperatorError}
	ErrArgument         = &Error{Kind: ArgumentError}
	ErrMissingCondition = &Error{Kind: MissingConditionError}
	ErrReturn           = &Error{Kind: ReturnError}
	ErrRecord           = &Error{Kind: RecordError}
)

// Error is the single error type produced by every stage of the pipeline.
// Line is 1-based; 0 means the location is unknown.
type Error struct {
	Kind    ErrorKind
	Msg     string
	Line    int
	Snippet string // trimmed source line, filled in by Compile
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Kind.String())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Snippet != "" {
		sb.WriteString("\n  |> ")
		sb.WriteString(e.Snippet)
	}
	return sb.String()
}

// Is matches on Kind so callers can test errors.Is(err, ErrScope).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errorf(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line}
}
