// Package compiler re-exports program construction, emit, and diagnostics
// from the compiler's internal packages. The module path is rooted at
// github.com/microsoft/typescript-go, which is what makes the internal
// imports below legal.
package compiler

import (
	"github.com/microsoft/typescript-go/internal/ast"
	"github.com/microsoft/typescript-go/internal/compiler"
	"github.com/microsoft/typescript-go/internal/tsoptions"
	"github.com/microsoft/typescript-go/internal/vfs"
)

type (
	CompilerHost   = compiler.CompilerHost
	Program        = compiler.Program
	ProgramOptions = compiler.ProgramOptions
	EmitOptions    = compiler.EmitOptions
	EmitResult     = compiler.EmitResult
	WriteFile      = compiler.WriteFile
	WriteFileData  = compiler.WriteFileData
)

func NewCompilerHost(
	currentDirectory string,
	fs vfs.FS,
	defaultLibraryPath string,
	extendedConfigCache tsoptions.ExtendedConfigCache,
	trace func(msg string),
) CompilerHost {
	return compiler.NewCompilerHost(currentDirectory, fs, defaultLibraryPath, extendedConfigCache, trace)
}

func NewProgram(opts ProgramOptions) *Program {
	return compiler.NewProgram(opts)
}

func SortAndDeduplicateDiagnostics(diagnostics []*ast.Diagnostic) []*ast.Diagnostic {
	return compiler.SortAndDeduplicateDiagnostics(diagnostics)
}
