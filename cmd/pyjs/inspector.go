package main

import (
	"fmt"
	"sort"
	"strings"

	"pyjs/pkg/ast"
)

type ProgramInsights struct {
	Functions []FunctionInfo
	Loops     []LoopInfo
	Calls     []CallInfo
}

type FunctionInfo struct {
	Name       string
	Parameters []string
	Line       int
	Returns    bool
}

type LoopInfo struct {
	Kind   string // "counted", "for-of" or "while"
	Target string
	Line   int
}

type CallInfo struct {
	Name  string
	Count int
}

func analyzeProgram(program *ast.Program) ProgramInsights {
	insights := ProgramInsights{}
	calls := map[string]int{}

	ast.Inspect(program, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.FunctionDef:
			insights.Functions = append(insights.Functions, FunctionInfo{
				Name:       n.Name,
				Parameters: n.Parameters,
				Line:       n.Token.Line,
				Returns:    returnsValue(n.Body),
			})
		case *ast.ForStmt:
			kind := "for-of"
			if isCountedLoop(n) {
				kind = "counted"
			}
			insights.Loops = append(insights.Loops, LoopInfo{Kind: kind, Target: n.Target, Line: n.Token.Line})
		case *ast.WhileStmt:
			insights.Loops = append(insights.Loops, LoopInfo{Kind: "while", Line: n.Token.Line})
		case *ast.Call:
			calls[describeCallee(n)]++
		}
		return true
	})

	for name, count := range calls {
		insights.Calls = append(insights.Calls, CallInfo{Name: name, Count: count})
	}
	sort.Slice(insights.Calls, func(i, j int) bool {
		if insights.Calls[i].Count != insights.Calls[j].Count {
			return insights.Calls[i].Count > insights.Calls[j].Count
		}
		return insights.Calls[i].Name < insights.Calls[j].Name
	})
	return insights
}

// returnsValue reports whether any return in body, outside nested
// functions, carries a value.
func returnsValue(body []ast.Statement) bool {
	found := false
	for _, stmt := range body {
		ast.Inspect(stmt, func(node ast.Node) bool {
			switch n := node.(type) {
			case *ast.FunctionDef:
				return false
			case *ast.Return:
				if n.Value != nil {
					found = true
				}
			}
			return !found
		})
	}
	return found
}

func isCountedLoop(n *ast.ForStmt) bool {
	call, ok := n.Iterable.(*ast.Call)
	if !ok {
		return false
	}
	name, ok := call.CalleeName()
	return ok && name == "range" && len(call.Args) >= 1 && len(call.Args) <= 3
}

func describeCallee(c *ast.Call) string {
	if name, ok := c.CalleeName(); ok {
		return name
	}
	return c.Callee.String()
}

func printInsights(insights ProgramInsights) {
	fmt.Printf("Functions (%d)\n", len(insights.Functions))
	if len(insights.Functions) == 0 {
		fmt.Println("  · No function definitions found.")
	}
	for _, fn := range insights.Functions {
		suffix := ""
		if fn.Returns {
			suffix = " -> value"
		}
		fmt.Printf("  · line %d: def %s(%s)%s\n", fn.Line, fn.Name, strings.Join(fn.Parameters, ", "), suffix)
	}

	fmt.Printf("Loops (%d)\n", len(insights.Loops))
	for _, loop := range insights.Loops {
		if loop.Target != "" {
			fmt.Printf("  · line %d: %s loop over %s\n", loop.Line, loop.Kind, loop.Target)
		} else {
			fmt.Printf("  · line %d: %s loop\n", loop.Line, loop.Kind)
		}
	}

	fmt.Printf("Calls (%d distinct)\n", len(insights.Calls))
	for _, c := range insights.Calls {
		fmt.Printf("  · %s ×%d\n", c.Name, c.Count)
	}
}
