package compiler

import (
	"testing"

	"github.com/microsoft/typescript-go/shim/core"
)

func TestApplyBaseline_HardOptions(t *testing.T) {
	opts := &core.CompilerOptions{}
	applyBaseline(opts, "/proj", true)

	if opts.Module != core.ModuleKindES2020 {
		t.Errorf("Module = %v, want ES2020", opts.Module)
	}
	if opts.ModuleResolution != core.ModuleResolutionKindNodeNext {
		t.Errorf("ModuleResolution = %v, want Node-style", opts.ModuleResolution)
	}
	if opts.AllowJs != core.TSTrue || opts.AllowSyntheticDefaultImports != core.TSTrue || opts.ResolveJsonModule != core.TSTrue {
		t.Error("allowJs, allowSyntheticDefaultImports, resolveJsonModule must be on")
	}
	if opts.RootDir != "/proj" || opts.OutDir != "/" {
		t.Errorf("RootDir/OutDir = %q/%q, want /proj and /", opts.RootDir, opts.OutDir)
	}
	if opts.NoEmit != core.TSFalse {
		t.Error("noEmit must be disabled")
	}
	if opts.SourceMap != core.TSTrue || opts.InlineSourceMap != core.TSFalse || opts.SourceRoot != "/proj" {
		t.Error("source-map trio not applied")
	}
	if opts.Target != core.ScriptTargetES2020 {
		t.Errorf("Target = %v, want the ES2020 default", opts.Target)
	}
	if opts.Strict != core.TSTrue {
		t.Errorf("Strict = %v, want the strict default", opts.Strict)
	}
}

func TestApplyBaseline_SoftOptionsSurvive(t *testing.T) {
	opts := &core.CompilerOptions{Strict: core.TSFalse}
	applyBaseline(opts, "/proj", false)

	if opts.Strict != core.TSFalse {
		t.Error("a project's strict setting must survive")
	}
	if opts.SourceMap != core.TSFalse {
		t.Error("source maps must stay off when disabled")
	}
}

func TestApplyBaseline_HardOptionsOverrideProjectValues(t *testing.T) {
	opts := &core.CompilerOptions{
		NoEmit:  core.TSTrue,
		RootDir: "/elsewhere",
		OutDir:  "/dist",
	}
	applyBaseline(opts, "/proj", true)

	if opts.NoEmit != core.TSFalse {
		t.Error("a project tsconfig must not disable emit")
	}
	if opts.RootDir != "/proj" || opts.OutDir != "/" {
		t.Errorf("RootDir/OutDir = %q/%q, want forced values", opts.RootDir, opts.OutDir)
	}
}
