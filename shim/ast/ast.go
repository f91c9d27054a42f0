// Package ast re-exports the compiler's AST surface. The module path is
// rooted at github.com/microsoft/typescript-go, which is what makes the
// internal imports below legal.
package ast

import (
	"github.com/microsoft/typescript-go/internal/ast"
)

type (
	SourceFile        = ast.SourceFile
	Node              = ast.Node
	NodeList          = ast.NodeList
	Diagnostic        = ast.Diagnostic
	CallExpression    = ast.CallExpression
	ImportDeclaration = ast.ImportDeclaration
	ExportDeclaration = ast.ExportDeclaration
)

const (
	KindImportDeclaration = ast.KindImportDeclaration
	KindExportDeclaration = ast.KindExportDeclaration
	KindCallExpression    = ast.KindCallExpression
	KindIdentifier        = ast.KindIdentifier
	KindStringLiteral     = ast.KindStringLiteral
)

func IsStringLiteral(node *Node) bool {
	return ast.IsStringLiteral(node)
}

func IsIdentifier(node *Node) bool {
	return ast.IsIdentifier(node)
}

func Diagnostic_Category(d *Diagnostic) int32 {
	return int32(d.Category())
}
