// Package parser re-exports standalone source-file parsing. The module path
// is rooted at github.com/microsoft/typescript-go, which is what makes the
// internal imports below legal.
package parser

import (
	"github.com/microsoft/typescript-go/internal/ast"
	"github.com/microsoft/typescript-go/internal/core"
	"github.com/microsoft/typescript-go/internal/parser"
	"github.com/microsoft/typescript-go/internal/tspath"
)

// ParseJSSourceFile parses a single JavaScript file outside any program,
// for dependency scanning.
func ParseJSSourceFile(fileName string, text string) *ast.SourceFile {
	opts := ast.SourceFileParseOptions{
		FileName: fileName,
		Path:     tspath.Path(tspath.NormalizePath(fileName)),
	}
	return parser.ParseSourceFile(opts, text, core.ScriptKindJS)
}
