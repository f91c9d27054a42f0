// Package scanner re-exports position mapping helpers. The module path is
// rooted at github.com/microsoft/typescript-go, which is what makes the
// internal imports below legal.
package scanner

import (
	"github.com/microsoft/typescript-go/internal/ast"
	"github.com/microsoft/typescript-go/internal/scanner"
)

func GetECMALineAndCharacterOfPosition(sourceFile *ast.SourceFile, position int) (line int, character int) {
	return scanner.GetECMALineAndCharacterOfPosition(sourceFile, position)
}

func GetECMALineOfPosition(sourceFile *ast.SourceFile, position int) int {
	return scanner.GetECMALineOfPosition(sourceFile, position)
}

func GetECMAPositionOfLineAndCharacter(sourceFile *ast.SourceFile, line int, character int) int {
	return scanner.GetECMAPositionOfLineAndCharacter(sourceFile, line, character)
}
