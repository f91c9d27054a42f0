// Package scanner extracts module references from parsed sources: static
// imports, re-exports, and — for CommonJS modules only — unambiguous
// require() call sites.
package scanner

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/frida/frida-compile/internal/pathutil"
	"github.com/frida/frida-compile/internal/resolver"
)

// Reference is a dependency reference found in a module, normalized:
// relative references are resolved against the module's directory to an
// absolute path, everything else is kept verbatim.
type Reference struct {
	Name string
	// JSON references are loaded after the JS graph closes and synthesized
	// into modules rather than resolved through the module resolver.
	JSON bool
}

// Scan walks a parsed source file depth-first and returns its references in
// source order. kind gates require() extraction: only CommonJS modules pull
// dependencies through require, so treating require as special in ESM
// sources would misread shadowed user identifiers.
func Scan(file *ast.SourceFile, kind resolver.ModuleKind) []Reference {
	dir := pathutil.Dir(pathutil.Normalize(file.FileName()))
	var refs []Reference

	collect := func(name string) {
		if name == "" {
			return
		}
		if strings.HasPrefix(name, ".") {
			name = pathutil.Resolve(dir, name)
		}
		refs = append(refs, Reference{Name: name, JSON: strings.HasSuffix(name, ".json")})
	}

	var visit func(n *ast.Node) bool
	visit = func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindImportDeclaration:
			if spec := n.AsImportDeclaration().ModuleSpecifier; spec != nil && ast.IsStringLiteral(spec) {
				collect(spec.Text())
			}
		case ast.KindExportDeclaration:
			if spec := n.AsExportDeclaration().ModuleSpecifier; spec != nil && ast.IsStringLiteral(spec) {
				collect(spec.Text())
			}
		case ast.KindCallExpression:
			if kind == resolver.KindCommonJS {
				if name, ok := requireArgument(n.AsCallExpression()); ok {
					collect(name)
				}
			}
		}
		// Depth-first over everything, require() arguments included, so
		// the inner require("x") of require(require("x")) is still found.
		n.ForEachChild(visit)
		return false
	}

	file.AsNode().ForEachChild(visit)
	return refs
}

// requireArgument matches the one unambiguous require shape: a bare
// identifier callee named require with exactly one string-literal argument.
func requireArgument(call *ast.CallExpression) (string, bool) {
	if call.Expression == nil || !ast.IsIdentifier(call.Expression) {
		return "", false
	}
	if call.Expression.Text() != "require" {
		return "", false
	}
	args := call.Arguments.Nodes
	if len(args) != 1 || !ast.IsStringLiteral(args[0]) {
		return "", false
	}
	return args[0].Text(), true
}
