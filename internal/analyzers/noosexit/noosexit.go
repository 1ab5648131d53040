// Package noosexit reports os.Exit calls made directly from main.main.
package noosexit

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer flags os.Exit inside the body of main.main. Deferred calls and
// shutdown of the logger are skipped by os.Exit, so main must return instead.
var Analyzer = &analysis.Analyzer{
	Name:     "noosexit",
	Doc:      "forbid direct os.Exit in main.main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	ins.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fd := n.(*ast.FuncDecl)
		if fd.Recv != nil || fd.Name.Name != "main" || fd.Body == nil {
			return
		}
		if isGeneratedOrTestMain(pass, fd) {
			return
		}

		ast.Inspect(fd.Body, func(n ast.Node) bool {
			// closures run outside main's frame
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if isOSExit(pass.TypesInfo, call) {
				pass.Reportf(call.Pos(), "do not call os.Exit inside main; return an error from run() instead")
			}
			return true
		})
	})
	return nil, nil
}

func isOSExit(info *types.Info, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	fn, ok := info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}

func isGeneratedOrTestMain(pass *analysis.Pass, fd *ast.FuncDecl) bool {
	for _, f := range pass.Files {
		if f.Pos() > fd.Pos() || fd.End() > f.End() {
			continue
		}
		if ast.IsGenerated(f) {
			return true
		}
		// go test synthesizes a main package in the build cache
		return strings.Contains(pass.Fset.Position(f.Pos()).Filename, "go-build")
	}
	return false
}
