package compiler

import "strings"

// SymbolSource is a stream of symbols ending with EOF. *Lexer implements it.
type SymbolSource interface {
	NextSymbol() (Symbol, error)
}

// Parser pulls symbols from a SymbolSource one at a time and builds an AST.
//
// Grammar:
//
//	program    = (funDecl | statement)* EOF
//	funDecl    = "fun" IDENTIFIER "(" [param ("," param)*] ")" [type] block
//	param      = IDENTIFIER type
//	type       = ("int" | "float" | "bool" | "string" | IDENTIFIER) ("[" "]")*
//	statement  = IDENTIFIER "=" expression ";"
//	           | IDENTIFIER suffix+ "=" expression ";"
//	           | IDENTIFIER "(" args ")" ";"
//	           | IDENTIFIER "rec" "{" (IDENTIFIER type ";")* "}"
//	           | IDENTIFIER type ["=" expression] ";"
//	           | "final" IDENTIFIER type ["=" expression] ";"
//	           | block | if | while | do | for | return | free
//	suffix     = "[" expression "]" | "." IDENTIFIER
//	block      = "{" statement* "}"
//	if         = "if" "(" expression ")" block ["else" block]
//	while      = "while" "(" expression ")" block
//	do         = "do" block "while" "(" expression ")" ";"
//	for        = "for" "(" IDENTIFIER "," expression "," expression "," expression ")" block
//	return     = "return" [expression] ";"
//	free       = "free" IDENTIFIER ";"
//	expression = logical_or
//	logical_or = logical_and ("||" logical_and)*
//	logical_and = equality ("&&" equality)*
//	equality   = comparison (("==" | "!=") comparison)*
//	comparison = additive (("<" | ">" | "<=" | ">=") additive)*
//	additive   = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "%") unary)*
//	unary      = "-" unary | primary
//	primary    = INTEGER_NUMBER | FLOAT_NUMBER | BOOLEAN | STRING
//	           | "(" expression ")"
//	           | "array" "[" expression "]" "of" type
//	           | "!" "(" args ")"
//	           | IDENTIFIER "(" args ")"
//	           | IDENTIFIER suffix*
type Parser struct {
	src SymbolSource
	cur Symbol // one-symbol lookahead
}

// NewParser primes the lookahead from src.
func NewParser(src SymbolSource) (*Parser, error) {
	p := &Parser{src: src}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse lexes and parses src in one go.
func Parse(src string) (*Block, error) {
	p, err := NewParser(NewLexer(strings.NewReader(src)))
	if err != nil {
		return nil, withSnippet(err, src)
	}
	root, err := p.ParseProgram()
	if err != nil {
		return nil, withSnippet(err, src)
	}
	return root, nil
}

// peek returns the current symbol without consuming it.
func (p *Parser) peek() Symbol {
	return p.cur
}

// advance consumes and returns the current symbol.
func (p *Parser) advance() (Symbol, error) {
	sym := p.cur
	next, err := p.src.NextSymbol()
	if err != nil {
		return sym, err
	}
	p.cur = next
	return sym, nil
}

// expect consumes the current symbol if it has type tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Symbol, error) {
	if p.cur.Type != tt {
		return p.cur, p.unexpected(tt.String())
	}
	return p.advance()
}

// expectKeyword consumes the keyword kw.
func (p *Parser) expectKeyword(kw string) (Symbol, error) {
	if !p.cur.Is(kw) {
		return p.cur, p.unexpected("keyword '" + kw + "'")
	}
	return p.advance()
}

func (p *Parser) unexpected(want string) error {
	if p.cur.Type == EOF {
		return errorf(ParserError, p.cur.Line, "expected %s but reached end of input", want)
	}
	return errorf(ParserError, p.cur.Line, "expected %s but found %s %q", want, p.cur.Type, p.cur.Lexeme)
}

func isPrimitiveKeyword(sym Symbol) bool {
	if sym.Type != KEYWORD {
		return false
	}
	_, ok := primitives[sym.Lexeme]
	return ok
}

// ParseProgram parses the whole input as the root Block.
func (p *Parser) ParseProgram() (*Block, error) {
	root := &Block{Line: p.cur.Line}
	for p.peek().Type != EOF {
		var stmt Stmt
		var err error
		if p.peek().Is("fun") {
			stmt, err = p.parseFunction()
		} else {
			stmt, err = p.parseStatement()
		}
		if err != nil {
			return nil, err
		}
		root.Stmts = append(root.Stmts, stmt)
	}
	return root, nil
}

// parseType parses a type reference such as int, Point or float[][].
func (p *Parser) parseType() (*TypeExpr, error) {
	sym := p.peek()
	var t *TypeExpr
	switch {
	case isPrimitiveKeyword(sym):
		t = &TypeExpr{Name: sym.Lexeme, Form: FormPrimitive, Line: sym.Line}
	case sym.Type == IDENTIFIER:
		t = &TypeExpr{Name: sym.Lexeme, Form: FormRecord, Line: sym.Line}
	case sym.Type == KEYWORD:
		return nil, errorf(TypeError, sym.Line, "invalid type %q", sym.Lexeme)
	default:
		return nil, p.unexpected("a type")
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}

	for p.peek().Type == LBRACKET {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		t = &TypeExpr{Form: FormArray, Elem: t, Line: sym.Line}
	}
	return t, nil
}

// parseFunction parses fun name(params) [type] { body }
func (p *Parser) parseFunction() (Stmt, error) {
	kw, err := p.expectKeyword("fun")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	var params []Param
	if p.peek().Type != RPAREN {
		for {
			pname, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			ptype, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Name: pname.Lexeme, Type: ptype, Line: pname.Line})
			if p.peek().Type != COMMA {
				break
			}
			if _, err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	var ret *TypeExpr
	if p.peek().Type != LBRACE {
		if ret, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FunctionDecl{Name: name.Lexeme, Params: params, Return: ret, Body: body, Line: kw.Line}, nil
}

// parseBlock parses { statement* }
func (p *Parser) parseBlock() (*Block, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	block := &Block{Line: open.Line}
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	sym := p.peek()
	switch sym.Type {
	case IDENTIFIER:
		return p.parseIdentStatement()
	case LBRACE:
		return p.parseBlock()
	case KEYWORD:
		switch sym.Lexeme {
		case "final":
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			return p.parseVariableDecl(name, true, sym.Line)
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "do":
			return p.parseDoWhile()
		case "for":
			return p.parseFor()
		case "return":
			return p.parseReturn()
		case "free":
			return p.parseFree()
		}
		return nil, errorf(ParserError, sym.Line, "unexpected keyword %q", sym.Lexeme)
	case EOF:
		return nil, errorf(ParserError, sym.Line, "unexpected end of input")
	}
	return nil, errorf(ParserError, sym.Line, "unexpected %s %q", sym.Type, sym.Lexeme)
}

// parseIdentStatement decides what a statement starting with an identifier
// is by looking at the symbol right after it.
func (p *Parser) parseIdentStatement() (Stmt, error) {
	name, err := p.advance()
	if err != nil {
		return nil, err
	}

	next := p.peek()
	switch {
	case next.Type == ASSIGN:
		return p.parseAssignment(&VarRef{Name: name.Lexeme, Line: name.Line}, name.Line)
	case next.Type == LPAREN, next.Type == LBRACKET, next.Type == DOT:
		return p.parseAccessStatement(name)
	case next.Is("rec"):
		return p.parseRecord(name)
	case isPrimitiveKeyword(next), next.Type == IDENTIFIER:
		return p.parseVariableDecl(name, false, name.Line)
	case next.Type == KEYWORD:
		return nil, errorf(TypeError, next.Line, "invalid type %q for %q", next.Lexeme, name.Lexeme)
	}
	return nil, errorf(ParserError, next.Line, "unexpected %s %q after %q", next.Type, next.Lexeme, name.Lexeme)
}

// parseVariableDecl parses the part of a declaration after the name.
func (p *Parser) parseVariableDecl(name Symbol, final bool, line int) (Stmt, error) {
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	decl := &VariableDecl{Name: name.Lexeme, Type: t, Final: final, Line: line}
	if p.peek().Type == ASSIGN {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		if decl.Init, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseAssignment parses "= expression ;" for an already parsed target.
func (p *Parser) parseAssignment(target Expr, line int) (Stmt, error) {
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Assignment{Target: target, Value: value, Line: line}, nil
}

// parseAccessStatement handles name(args); and name[...].field... = value;
func (p *Parser) parseAccessStatement(name Symbol) (Stmt, error) {
	target, err := p.parseSuffixes(&VarRef{Name: name.Lexeme, Line: name.Line})
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case ASSIGN:
		return p.parseAssignment(target, name.Line)
	case LPAREN:
		if _, ok := target.(*VarRef); !ok {
			return nil, errorf(ParserError, p.peek().Line, "cannot call %s", target)
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &FunctionCall{Name: name.Lexeme, Args: args, Line: name.Line}, nil
	}
	return nil, errorf(ParserError, name.Line, "invalid statement starting with %q", name.Lexeme)
}

// parseSuffixes applies any chain of [index] and .field to base.
func (p *Parser) parseSuffixes(base Expr) (Expr, error) {
	expr := base
	for {
		switch p.peek().Type {
		case LBRACKET:
			open, err := p.advance()
			if err != nil {
				return nil, err
			}
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			expr = &ArrayAccess{Array: expr, Index: index, Line: open.Line}
		case DOT:
			dot, err := p.advance()
			if err != nil {
				return nil, err
			}
			field, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = &FieldAccess{Base: expr, Field: field.Lexeme, Line: dot.Line}
		default:
			return expr, nil
		}
	}
}

// parseArgs parses "(" [expression ("," expression)*] ")"
func (p *Parser) parseArgs() ([]Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type != COMMA {
				break
			}
			if _, err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseRecord parses rec { field type; ... } after the record name.
func (p *Parser) parseRecord(name Symbol) (Stmt, error) {
	if _, err := p.expectKeyword("rec"); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	rec := &RecordDecl{Name: name.Lexeme, Line: name.Line}
	for p.peek().Type != RBRACE {
		field, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, FieldDecl{Name: field.Lexeme, Type: t, Line: field.Line})
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return rec, nil
}

// parseCondition parses "(" expression ")"
func (p *Parser) parseCondition() (Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	kw, err := p.expectKeyword("if")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then, Line: kw.Line}
	if p.peek().Is("else") {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		if stmt.Else, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	kw, err := p.expectKeyword("while")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, Line: kw.Line}, nil
}

func (p *Parser) parseDoWhile() (Stmt, error) {
	kw, err := p.expectKeyword("do")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &DoWhileStmt{Body: body, Cond: cond, Line: kw.Line}, nil
}

// parseFor parses for (var, start, end, step) { body }
func (p *Parser) parseFor() (Stmt, error) {
	kw, err := p.expectKeyword("for")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	v, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	var bounds [3]Expr
	for i := range bounds {
		if _, err := p.expect(COMMA); err != nil {
			return nil, err
		}
		if bounds[i], err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Var: v.Lexeme, Start: bounds[0], End: bounds[1], Step: bounds[2], Body: body, Line: kw.Line}, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	kw, err := p.expectKeyword("return")
	if err != nil {
		return nil, err
	}
	stmt := &ReturnStmt{Line: kw.Line}
	if p.peek().Type != SEMICOLON {
		if stmt.Value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseFree() (Stmt, error) {
	kw, err := p.expectKeyword("free")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &FreeStmt{Name: name.Lexeme, Line: kw.Line}, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

// parseBinary parses one left-associative precedence level.
func (p *Parser) parseBinary(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for matchesAny(p.peek().Type, ops) {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Type, Left: expr, Right: right, Line: op.Line}
	}
	return expr, nil
}

func matchesAny(tt TokenType, ops []TokenType) bool {
	for _, op := range ops {
		if tt == op {
			return true
		}
	}
	return false
}

// parseLogicalOr handles ||
func (p *Parser) parseLogicalOr() (Expr, error) {
	return p.parseBinary(p.parseLogicalAnd, LOGICAL_OR)
}

// parseLogicalAnd handles &&
func (p *Parser) parseLogicalAnd() (Expr, error) {
	return p.parseBinary(p.parseEquality, LOGICAL_AND)
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	return p.parseBinary(p.parseComparison, EQUAL, NOT_EQUAL)
}

// parseComparison handles < > <= >=
func (p *Parser) parseComparison() (Expr, error) {
	return p.parseBinary(p.parseAdditive, LESS, GREATER, LESS_OR_EQUAL, GREATER_OR_EQUAL)
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	return p.parseBinary(p.parseMultiplicative, ADD, SUBTRACT)
}

// parseMultiplicative handles * / %
func (p *Parser) parseMultiplicative() (Expr, error) {
	return p.parseBinary(p.parseUnary, MULTIPLY, DIVIDE, MODULO)
}

// parseUnary handles prefix minus.
func (p *Parser) parseUnary() (Expr, error) {
	if p.peek().Type == SUBTRACT {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Type, Right: right, Line: op.Line}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	sym := p.peek()
	switch sym.Type {
	case INTEGER_NUMBER, FLOAT_NUMBER, BOOLEAN, STRING:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Kind: sym.Type, Value: sym.Lexeme, Line: sym.Line}, nil

	case IDENTIFIER:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		if p.peek().Type == LPAREN {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &CallExpr{Name: sym.Lexeme, Args: args, Line: sym.Line}, nil
		}
		return p.parseSuffixes(&VarRef{Name: sym.Lexeme, Line: sym.Line})

	case LOGICAL_NOT:
		// !(x) is a call to the builtin negation function.
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &CallExpr{Name: sym.Lexeme, Args: args, Line: sym.Line}, nil

	case LPAREN:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case KEYWORD:
		if sym.Lexeme == "array" {
			return p.parseArrayCreation()
		}
		return nil, errorf(ParserError, sym.Line, "unexpected keyword %q in expression", sym.Lexeme)

	case EOF:
		return nil, errorf(ParserError, sym.Line, "expected an expression but reached end of input")
	}
	return nil, errorf(ParserError, sym.Line, "unexpected %s %q in expression", sym.Type, sym.Lexeme)
}

// parseArrayCreation parses array [size] of type
func (p *Parser) parseArrayCreation() (Expr, error) {
	kw, err := p.expectKeyword("array")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACKET); err != nil {
		return nil, err
	}
	size, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("of"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ArrayCreation{Size: size, Elem: elem, Line: kw.Line}, nil
}
