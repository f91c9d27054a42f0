// Package tsoptions re-exports tsconfig and command-line parsing. The
// module path is rooted at github.com/microsoft/typescript-go, which is
// what makes the internal imports below legal.
package tsoptions

import (
	"github.com/microsoft/typescript-go/internal/ast"
	"github.com/microsoft/typescript-go/internal/core"
	"github.com/microsoft/typescript-go/internal/tsoptions"
)

type (
	ParsedCommandLine   = tsoptions.ParsedCommandLine
	ParseConfigHost     = tsoptions.ParseConfigHost
	ExtendedConfigCache = tsoptions.ExtendedConfigCache
)

func ParseCommandLine(commandLine []string, host ParseConfigHost) *ParsedCommandLine {
	return tsoptions.ParseCommandLine(commandLine, host)
}

func GetParsedCommandLineOfConfigFile(
	configFileName string,
	options *core.CompilerOptions,
	extraFileExtensions []string,
	host ParseConfigHost,
	extendedConfigCache ExtendedConfigCache,
) (*ParsedCommandLine, []*ast.Diagnostic) {
	return tsoptions.GetParsedCommandLineOfConfigFile(configFileName, options, extraFileExtensions, host, extendedConfigCache)
}
