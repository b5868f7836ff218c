package compiler

// ReachableFunctions returns the names of the user functions that can run:
// those called from top-level statements and, transitively, from their
// bodies. Builtins are not included. A code generator can skip the rest.
func ReachableFunctions(root *Block) map[string]bool {
	funcs := make(map[string]*FunctionDecl)
	for _, s := range root.Stmts {
		if f, ok := s.(*FunctionDecl); ok {
			funcs[f.Name] = f
		}
	}

	reachable := make(map[string]bool)
	var worklist []string

	addReachable := func(name string) {
		if _, ok := funcs[name]; ok && !reachable[name] {
			reachable[name] = true
			worklist = append(worklist, name)
		}
	}

	// Roots: every call made outside a function body.
	for _, s := range root.Stmts {
		if _, ok := s.(*FunctionDecl); ok {
			continue
		}
		calls := make(map[string]bool)
		findCallsStmt(s, calls)
		for call := range calls {
			addReachable(call)
		}
	}

	for len(worklist) > 0 {
		curr := worklist[0]
		worklist = worklist[1:]

		calls := make(map[string]bool)
		findCallsStmt(funcs[curr].Body, calls)
		for call := range calls {
			addReachable(call)
		}
	}
	return reachable
}

// findCallsExpr collects the names called anywhere inside e. Record
// constructions are collected too; callers filter by what they look for.
func findCallsExpr(e Expr, calls map[string]bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *CallExpr:
		if n.Kind != CallRecord {
			calls[n.Name] = true
		}
		for _, arg := range n.Args {
			findCallsExpr(arg, calls)
		}
	case *FunctionCall:
		calls[n.Name] = true
		for _, arg := range n.Args {
			findCallsExpr(arg, calls)
		}
	case *BinaryExpr:
		findCallsExpr(n.Left, calls)
		findCallsExpr(n.Right, calls)
	case *UnaryExpr:
		findCallsExpr(n.Right, calls)
	case *ArrayCreation:
		findCallsExpr(n.Size, calls)
	case *ArrayAccess:
		findCallsExpr(n.Array, calls)
		findCallsExpr(n.Index, calls)
	case *FieldAccess:
		findCallsExpr(n.Base, calls)
	case *Literal, *VarRef:
		// No calls here
	}
}

// findCallsStmt collects the names called anywhere inside s.
func findCallsStmt(s Stmt, calls map[string]bool) {
	switch n := s.(type) {
	case *Block:
		if n == nil {
			return
		}
		for _, child := range n.Stmts {
			findCallsStmt(child, calls)
		}
	case *VariableDecl:
		findCallsExpr(n.Init, calls)
	case *Assignment:
		findCallsExpr(n.Target, calls)
		findCallsExpr(n.Value, calls)
	case *IfStmt:
		findCallsExpr(n.Cond, calls)
		findCallsStmt(n.Then, calls)
		if n.Else != nil {
			findCallsStmt(n.Else, calls)
		}
	case *WhileStmt:
		findCallsExpr(n.Cond, calls)
		findCallsStmt(n.Body, calls)
	case *DoWhileStmt:
		findCallsStmt(n.Body, calls)
		findCallsExpr(n.Cond, calls)
	case *ForStmt:
		findCallsExpr(n.Start, calls)
		findCallsExpr(n.End, calls)
		findCallsExpr(n.Step, calls)
		findCallsStmt(n.Body, calls)
	case *ReturnStmt:
		findCallsExpr(n.Value, calls)
	case *FunctionCall:
		findCallsExpr(n, calls)
	case *RecordDecl, *FreeStmt, *FunctionDecl:
		// Nothing executable
	}
}
