package testutil

import (
	"sort"

	"github.com/microsoft/typescript-go/shim/ast"
	shimparser "github.com/microsoft/typescript-go/shim/parser"

	"github.com/frida/frida-compile/internal/compiler"
)

// FakeFrontEnd is a canned front end for bundler tests: it "emits" a fixed
// set of outputs and parses sources with the real parser, without running
// the type checker.
type FakeFrontEnd struct {
	// Sources maps project source paths (.ts) to their content. The content
	// is parsed for scanning, so it should use module syntax.
	Sources map[string]string
	// Emitted maps asset names to emitted text (.js and .map files).
	Emitted map[string]string
	// Diagnostics are returned from every emit.
	Diagnostics []*ast.Diagnostic

	parsed map[string]*ast.SourceFile
}

var _ compiler.FrontEnd = (*FakeFrontEnd)(nil)

func (f *FakeFrontEnd) EmitProject(write compiler.WriteHook) (*compiler.EmitResult, error) {
	names := make([]string, 0, len(f.Emitted))
	for name := range f.Emitted {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		write(name, f.Emitted[name])
	}
	return &compiler.EmitResult{Diagnostics: f.Diagnostics}, nil
}

func (f *FakeFrontEnd) ProjectFiles() []*ast.SourceFile {
	if f.parsed == nil {
		f.parsed = make(map[string]*ast.SourceFile)
	}
	paths := make([]string, 0, len(f.Sources))
	for path := range f.Sources {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]*ast.SourceFile, 0, len(paths))
	for _, path := range paths {
		sf, ok := f.parsed[path]
		if !ok {
			sf = shimparser.ParseJSSourceFile(path, f.Sources[path])
			f.parsed[path] = sf
		}
		files = append(files, sf)
	}
	return files
}

func (f *FakeFrontEnd) ParseJS(path string, text string) *ast.SourceFile {
	return shimparser.ParseJSSourceFile(path, text)
}

// FakeWatchFrontEnd extends FakeFrontEnd for controller tests. Program
// rebuilds are triggered by hand.
type FakeWatchFrontEnd struct {
	FakeFrontEnd
	Stopped bool

	onProgramCreate func()
}

var _ compiler.WatchFrontEnd = (*FakeWatchFrontEnd)(nil)

func (f *FakeWatchFrontEnd) Start(onProgramCreate func()) error {
	f.onProgramCreate = onProgramCreate
	if onProgramCreate != nil {
		onProgramCreate()
	}
	return nil
}

func (f *FakeWatchFrontEnd) Stop() {
	f.Stopped = true
}

// TriggerProgramCreate simulates the front-end watcher rebuilding its
// program after a project-source change.
func (f *FakeWatchFrontEnd) TriggerProgramCreate() {
	if f.onProgramCreate != nil {
		f.onProgramCreate()
	}
}
