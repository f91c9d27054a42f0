package compiler

import (
	"github.com/microsoft/typescript-go/shim/core"
)

// applyBaseline forces the compiler options the bundle format depends on.
// A project tsconfig may tune target, lib, and strictness, but module
// shape, resolution, and output layout are not negotiable: the loader
// expects ES2020 modules named by project-rooted paths.
func applyBaseline(opts *core.CompilerOptions, projectRoot string, sourceMaps bool) {
	if opts.Target == core.ScriptTargetNone {
		opts.Target = core.ScriptTargetES2020
	}
	if opts.Strict == core.TSUnknown {
		opts.Strict = core.TSTrue
	}

	opts.Module = core.ModuleKindES2020
	// Node-style resolution: references resolve the way the runtime's
	// loader would, extension-less and node_modules-aware.
	opts.ModuleResolution = core.ModuleResolutionKindNodeNext
	opts.AllowJs = core.TSTrue
	opts.AllowSyntheticDefaultImports = core.TSTrue
	opts.ResolveJsonModule = core.TSTrue
	opts.RootDir = projectRoot
	opts.OutDir = "/"
	opts.NoEmit = core.TSFalse

	if sourceMaps {
		opts.SourceMap = core.TSTrue
		opts.InlineSourceMap = core.TSFalse
		opts.SourceRoot = projectRoot
	} else {
		opts.SourceMap = core.TSFalse
		opts.InlineSourceMap = core.TSFalse
	}
}
