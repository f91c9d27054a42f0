package bundler

import (
	"fmt"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
)

// CompilationError reports error-severity front-end diagnostics. The full
// diagnostic list rides along so the CLI can render positions and snippets.
type CompilationError struct {
	Diagnostics []*ast.Diagnostic
}

func (e *CompilationError) Error() string {
	return "compilation failed"
}

// UnresolvableError lists every reference that survived the drain loop
// unresolved, sorted, so one run reports all of them.
type UnresolvableError struct {
	Names []string
}

func (e *UnresolvableError) Error() string {
	return "unable to resolve: " + strings.Join(e.Names, ", ")
}

// CommonJSError lists the reachable modules classified as CommonJS, sorted
// by path.
type CommonJSError struct {
	Paths []string
}

func (e *CommonJSError) Error() string {
	return "CommonJS modules are not supported: " + strings.Join(e.Paths, ", ")
}

// IOError reports a failure to read a file the resolver believed to exist,
// or to parse it as JSON.
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}
