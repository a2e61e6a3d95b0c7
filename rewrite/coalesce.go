package rewrite

import (
	"strings"

	"github.com/mcuelenaere/b2/ast"
)

// RawCoalesce merges maximal contiguous runs of Raw children within a
// Statements sequence into a single Raw node (spec §4.5). It preserves
// the order of non-raw siblings exactly and is idempotent.
type RawCoalesce struct{}

func (RawCoalesce) Name() string { return "raw-block-coalescing-pass" }

func (p RawCoalesce) RunStmt(n ast.Node) (ast.Node, error) {
	return WalkStmt(n, p.hook)
}

func (p RawCoalesce) hook(n ast.Node) (ast.Node, error) {
	stmts, ok := n.(*ast.Statements)
	if !ok {
		return n, nil
	}
	merged := make([]ast.Node, 0, len(stmts.Children))
	var run *strings.Builder
	var runPos = stmts.Position

	flush := func() {
		if run != nil {
			merged = append(merged, &ast.Raw{Position: runPos, Text: run.String()})
			run = nil
		}
	}

	for _, child := range stmts.Children {
		raw, ok := child.(*ast.Raw)
		if !ok {
			flush()
			merged = append(merged, child)
			continue
		}
		if run == nil {
			run = &strings.Builder{}
			runPos = raw.Position
		}
		run.WriteString(raw.Text)
	}
	flush()

	stmts.Children = merged
	return stmts, nil
}
