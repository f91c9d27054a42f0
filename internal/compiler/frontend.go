// Package compiler wraps the native TypeScript compiler behind the narrow
// front-end contract the bundler consumes: program creation, typed emit with
// write interception, standalone JS parsing for discovered dependencies, and
// an incremental watch variant. Host state is never patched; both variants
// are explicit objects.
package compiler

import (
	"github.com/microsoft/typescript-go/shim/ast"
)

// WriteHook receives each emitted output file. fileName is rooted at the
// emit outDir, so with the bundler's outDir of "/" the names double as
// asset-table keys.
type WriteHook func(fileName string, text string)

// EmitResult collects one emit pass's outcome.
type EmitResult struct {
	Diagnostics []*ast.Diagnostic
	EmitSkipped bool
}

// FrontEnd is the one-shot compiler contract.
type FrontEnd interface {
	// EmitProject type-checks the project and streams every output file
	// through write, with the configured transforms already applied.
	EmitProject(write WriteHook) (*EmitResult, error)

	// ProjectFiles returns the project's parsed sources, declaration files
	// excluded.
	ProjectFiles() []*ast.SourceFile

	// ParseJS parses an externally discovered JS module for scanning.
	ParseJS(path string, text string) *ast.SourceFile
}

// WatchFrontEnd extends FrontEnd with the incremental driver. Each time a
// new program is created — at start and after source changes — the
// onProgramCreate callback passed to Start fires.
type WatchFrontEnd interface {
	FrontEnd

	Start(onProgramCreate func()) error
	Stop()
}
