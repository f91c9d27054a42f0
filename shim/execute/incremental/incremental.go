// Package incremental re-exports the incremental program wrapper. The
// module path is rooted at github.com/microsoft/typescript-go, which is
// what makes the internal imports below legal.
package incremental

import (
	"github.com/microsoft/typescript-go/internal/compiler"
	"github.com/microsoft/typescript-go/internal/execute/incremental"
	"github.com/microsoft/typescript-go/internal/tsoptions"
)

type Program = incremental.Program

func NewProgram(
	program *compiler.Program,
	oldProgram *Program,
	host compiler.CompilerHost,
	config *tsoptions.ParsedCommandLine,
) *Program {
	return incremental.NewProgram(program, oldProgram, host, config)
}
