package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for every node. Children are skipped when f returns false.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		inspectStatements(n.Statements, f)
	case *VariableAssign:
		Inspect(n.Value, f)
	case *AugAssign:
		Inspect(n.Value, f)
	case *FunctionDef:
		inspectStatements(n.Body, f)
	case *Return:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *IfStmt:
		Inspect(n.Test, f)
		inspectStatements(n.Body, f)
		inspectStatements(n.Orelse, f)
	case *ForStmt:
		Inspect(n.Iterable, f)
		inspectStatements(n.Body, f)
	case *WhileStmt:
		Inspect(n.Test, f)
		inspectStatements(n.Body, f)
	case *ExprStmt:
		Inspect(n.Value, f)
	case *BinaryOp:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *UnaryOp:
		Inspect(n.Operand, f)
	case *Subscript:
		Inspect(n.Value, f)
		Inspect(n.Index, f)
	case *Call:
		Inspect(n.Callee, f)
		inspectExpressions(n.Args, f)
	case *Compare:
		Inspect(n.Left, f)
		inspectExpressions(n.Comparators, f)
	case *ListLiteral:
		inspectExpressions(n.Elements, f)
	}
}

func inspectStatements(stmts []Statement, f func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, f)
	}
}

func inspectExpressions(exprs []Expression, f func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, f)
	}
}
