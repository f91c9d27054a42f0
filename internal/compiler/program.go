package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/microsoft/typescript-go/shim/ast"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	shimparser "github.com/microsoft/typescript-go/shim/parser"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"

	"github.com/frida/frida-compile/internal/rewrite"
)

// Config describes a compilation unit: one entrypoint, its project root,
// and the rewrites to apply during write interception.
type Config struct {
	// Entrypoint is the absolute POSIX path of the root source file.
	Entrypoint string
	// ProjectRoot anchors rootDir and the sourceRoot of emitted maps.
	ProjectRoot string
	// SourceMaps enables external map emission.
	SourceMaps bool
	// Transforms run in order on every emitted JS file before it reaches
	// the write hook.
	Transforms []rewrite.Transform
	// FS overrides the compiler filesystem. Nil selects the cached OS
	// filesystem with bundled libs.
	FS vfs.FS
}

// TSGo is the one-shot front end.
type TSGo struct {
	cfg     Config
	fs      vfs.FS
	host    shimcompiler.CompilerHost
	parsed  *tsoptions.ParsedCommandLine
	program *shimcompiler.Program
}

var _ FrontEnd = (*TSGo)(nil)

// NewTSGo parses configuration and creates the program. Config diagnostics
// (a broken project tsconfig, an unreadable entrypoint) surface as errors
// here; type errors wait for EmitProject.
func NewTSGo(cfg Config) (*TSGo, error) {
	fe := &TSGo{cfg: cfg, fs: cfg.FS}
	if fe.fs == nil {
		fe.fs = CreateDefaultFS()
	}
	fe.host = CreateHost(cfg.ProjectRoot, fe.fs)

	parsed, err := fe.parseConfig()
	if err != nil {
		return nil, err
	}
	fe.parsed = parsed

	program, err := createProgram(parsed, fe.host)
	if err != nil {
		return nil, err
	}
	fe.program = program
	return fe, nil
}

func createProgram(parsed *tsoptions.ParsedCommandLine, host shimcompiler.CompilerHost) (*shimcompiler.Program, error) {
	program := shimcompiler.NewProgram(shimcompiler.ProgramOptions{
		Config:         parsed,
		Host:           host,
		SingleThreaded: core.TSTrue,
	})
	if program == nil {
		return nil, errors.New("failed to create program")
	}
	program.BindSourceFiles()
	return program, nil
}

// parseConfig builds the command line: the project tsconfig when present
// (soft options only survive), entrypoint-rooted defaults otherwise.
func (fe *TSGo) parseConfig() (*tsoptions.ParsedCommandLine, error) {
	tsconfigPath := tspath.ResolvePath(fe.cfg.ProjectRoot, "tsconfig.json")

	var parsed *tsoptions.ParsedCommandLine
	if fe.fs.FileExists(tsconfigPath) {
		result, errs := tsoptions.GetParsedCommandLineOfConfigFile(tsconfigPath, nil, nil, fe.host, nil)
		if len(errs) > 0 {
			return nil, &ConfigError{Path: tsconfigPath, Diagnostics: errs}
		}
		if result != nil && len(result.Errors) > 0 {
			return nil, &ConfigError{Path: tsconfigPath, Diagnostics: result.Errors}
		}
		parsed = result
	} else {
		parsed = tsoptions.ParseCommandLine([]string{fe.cfg.Entrypoint}, fe.host)
		if len(parsed.Errors) > 0 {
			return nil, &ConfigError{Path: fe.cfg.Entrypoint, Diagnostics: parsed.Errors}
		}
	}

	applyBaseline(parsed.CompilerOptions(), fe.cfg.ProjectRoot, fe.cfg.SourceMaps)
	return parsed, nil
}

// ConfigError reports configuration-stage diagnostics.
type ConfigError struct {
	Path        string
	Diagnostics []*ast.Diagnostic
}

func (e *ConfigError) Error() string {
	if len(e.Diagnostics) > 0 {
		return fmt.Sprintf("%s: %s", e.Path, e.Diagnostics[0].String())
	}
	return fmt.Sprintf("%s: invalid configuration", e.Path)
}

func (fe *TSGo) EmitProject(write WriteHook) (*EmitResult, error) {
	return emitProgram(fe.program, fe.cfg.Transforms, write)
}

func (fe *TSGo) ProjectFiles() []*ast.SourceFile {
	return projectFiles(fe.program)
}

func (fe *TSGo) ParseJS(path string, text string) *ast.SourceFile {
	return shimparser.ParseJSSourceFile(path, text)
}

// emitProgram gathers every diagnostic class, then emits through the
// transform chain. Diagnostics accumulate across the whole program so one
// invocation reports every actionable issue.
func emitProgram(program *shimcompiler.Program, transforms []rewrite.Transform, write WriteHook) (*EmitResult, error) {
	ctx := context.Background()
	diags := gatherDiagnostics(ctx, program)

	writeFile := func(fileName string, text string, writeByteOrderMark bool, data *shimcompiler.WriteFileData) error {
		name := tspath.NormalizeSlashes(fileName)
		if hasJSExtension(name) {
			for _, t := range transforms {
				text = t(name, text)
			}
		}
		if writeByteOrderMark {
			text = "\xEF\xBB\xBF" + text
		}
		write(name, text)
		return nil
	}

	result := program.Emit(ctx, shimcompiler.EmitOptions{WriteFile: writeFile})
	diags = append(diags, result.Diagnostics...)

	return &EmitResult{
		Diagnostics: shimcompiler.SortAndDeduplicateDiagnostics(diags),
		EmitSkipped: result.EmitSkipped,
	}, nil
}

func gatherDiagnostics(ctx context.Context, program *shimcompiler.Program) []*ast.Diagnostic {
	var diags []*ast.Diagnostic
	diags = append(diags, program.GetProgramDiagnostics()...)
	diags = append(diags, program.GetGlobalDiagnostics(ctx)...)
	for _, sf := range program.GetSourceFiles() {
		if sf.IsDeclarationFile {
			continue
		}
		diags = append(diags, program.GetSyntacticDiagnostics(ctx, sf)...)
		diags = append(diags, program.GetSemanticDiagnostics(ctx, sf)...)
	}
	return diags
}

func projectFiles(program *shimcompiler.Program) []*ast.SourceFile {
	var files []*ast.SourceFile
	for _, sf := range program.GetSourceFiles() {
		if sf.IsDeclarationFile {
			continue
		}
		files = append(files, sf)
	}
	return files
}

func hasJSExtension(name string) bool {
	return len(name) > 3 && name[len(name)-3:] == ".js"
}
