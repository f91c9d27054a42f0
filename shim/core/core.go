// Package core re-exports compiler option types and enums. The module path
// is rooted at github.com/microsoft/typescript-go, which is what makes the
// internal import below legal.
package core

import (
	"github.com/microsoft/typescript-go/internal/core"
)

type (
	CompilerOptions      = core.CompilerOptions
	Tristate             = core.Tristate
	ScriptTarget         = core.ScriptTarget
	ScriptKind           = core.ScriptKind
	ModuleKind           = core.ModuleKind
	ModuleResolutionKind = core.ModuleResolutionKind
)

const (
	TSUnknown = core.TSUnknown
	TSFalse   = core.TSFalse
	TSTrue    = core.TSTrue

	ScriptTargetNone   = core.ScriptTargetNone
	ScriptTargetES2020 = core.ScriptTargetES2020

	ScriptKindJS = core.ScriptKindJS

	ModuleKindES2020 = core.ModuleKindES2020

	ModuleResolutionKindNodeNext = core.ModuleResolutionKindNodeNext
)
