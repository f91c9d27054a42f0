// Package bundler builds the module graph and produces the bundle. It
// drives the compiler front-end for project sources, chases every static
// and dynamic reference through the resolver until the graph closes,
// rewrites each asset, and hands the result to the assembler.
package bundler

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/frida/frida-compile/internal/catalog"
	"github.com/frida/frida-compile/internal/compiler"
	"github.com/frida/frida-compile/internal/jsonmodule"
	"github.com/frida/frida-compile/internal/minify"
	"github.com/frida/frida-compile/internal/pathutil"
	"github.com/frida/frida-compile/internal/resolver"
	"github.com/frida/frida-compile/internal/rewrite"
	"github.com/frida/frida-compile/internal/scanner"
	"github.com/frida/frida-compile/internal/sourcemap"
	"github.com/frida/frida-compile/internal/system"
)

// Module is one entry in the module table.
type Module struct {
	Kind resolver.ModuleKind
	// Path is the module's absolute POSIX path. Project modules carry the
	// path their emitted JS would occupy under the project root.
	Path   string
	Source *ast.SourceFile
	// Aliases are the canonical reference strings that resolved to this
	// module through a rewrite (shim names, package-main indirection,
	// subpaths), in first-seen order.
	Aliases []string
	// External modules were discovered through resolution rather than
	// emitted by the front-end.
	External bool
}

func (m *Module) addAlias(alias string) {
	for _, a := range m.Aliases {
		if a == alias {
			return
		}
	}
	m.Aliases = append(m.Aliases, alias)
}

// Options configures a Bundler.
type Options struct {
	// Entrypoint is the absolute POSIX path of the root source file.
	Entrypoint string
	// SourceMaps keeps and merges source maps.
	SourceMaps bool
	// Minifier, when set, rewrites each JS asset.
	Minifier minify.Minifier
	// TransformCommonJS, when set, converts a CommonJS module's code to an
	// ECMAScript module instead of rejecting the graph.
	TransformCommonJS func(file *ast.SourceFile, code string) (string, error)
}

type pendingRef struct {
	name     string
	referrer string
}

// Bundler owns the module table and asset table. One instance serves many
// passes in watch mode; Invalidate evicts a changed module between passes.
//
// mu serializes passes against invalidations: file-watch callbacks arrive on
// their own goroutines under the OS host, and the graph is only ever mutated
// with the lock held, so a change landing mid-pass waits for the pass to
// finish instead of racing its maps.
type Bundler struct {
	sys      system.System
	cat      *catalog.Catalog
	res      *resolver.Resolver
	frontEnd compiler.FrontEnd
	opts     Options

	mu sync.Mutex

	// OnExternalSourceAdded fires once for each newly discovered external
	// module, while a pass is running. The watch controller subscribes its
	// file watches from here.
	OnExternalSourceAdded func(path string)

	rawAssets     map[string]string
	moduleByAsset map[string]*Module
	assetByPath   map[string]string
	processed     map[string]bool
	// refsToPath records which reference strings resolved to a path, so
	// invalidating the path also reopens those references.
	refsToPath      map[string][]string
	externalSources map[string]*ast.SourceFile
}

// New creates a Bundler. The resolver routes all lookups through sys, with
// front-end emit output overlaid so project-internal references resolve
// without touching the real filesystem.
func New(sys system.System, cat *catalog.Catalog, frontEnd compiler.FrontEnd, opts Options) *Bundler {
	b := &Bundler{
		sys:             sys,
		cat:             cat,
		frontEnd:        frontEnd,
		opts:            opts,
		rawAssets:       make(map[string]string),
		moduleByAsset:   make(map[string]*Module),
		assetByPath:     make(map[string]string),
		processed:       make(map[string]bool),
		refsToPath:      make(map[string][]string),
		externalSources: make(map[string]*ast.SourceFile),
	}
	b.res = resolver.New(&overlaySystem{System: sys, b: b}, cat)
	return b
}

// EntryAssetName returns the asset name the entrypoint's compiled JS
// occupies; the assembler moves it to the front of the bundle.
func (b *Bundler) EntryAssetName() string {
	return b.cat.AssetName(outputPathFor(b.opts.Entrypoint))
}

// Invalidate evicts a module after its file changed: its asset (and map),
// its table entries, its cached parse, and every reference that resolved to
// it, so the next pass re-reads and re-scans it. Blocks while a pass is in
// flight; the eviction applies before the next pass starts.
func (b *Bundler) Invalidate(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path = pathutil.Normalize(path)
	delete(b.externalSources, path)
	name, ok := b.assetByPath[path]
	if !ok {
		return
	}
	delete(b.assetByPath, path)
	delete(b.moduleByAsset, name)
	delete(b.rawAssets, name)
	delete(b.rawAssets, name+".map")
	delete(b.processed, path)
	for _, ref := range b.refsToPath[path] {
		delete(b.processed, ref)
	}
	delete(b.refsToPath, path)
}

// Bundle runs one full pass and returns the serialized bundle. The graph
// lock is held for the whole pass; everything below it runs single-threaded.
func (b *Bundler) Bundle() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.dropProjectModules()

	emit, err := b.frontEnd.EmitProject(b.captureEmit)
	if err != nil {
		return nil, err
	}
	if compiler.CountErrors(emit.Diagnostics) > 0 {
		return nil, &CompilationError{Diagnostics: emit.Diagnostics}
	}
	b.attachProjectSources()

	jsonPaths, err := b.closeGraph()
	if err != nil {
		return nil, err
	}

	if err := b.checkCommonJS(); err != nil {
		return nil, err
	}

	output, err := b.buildOutput(jsonPaths)
	if err != nil {
		return nil, err
	}

	return b.assemble(output), nil
}

// dropProjectModules clears project-module state so emit rebuilds it; a
// source file deleted since the last pass must not leave a stale asset.
func (b *Bundler) dropProjectModules() {
	for name, mod := range b.moduleByAsset {
		if mod.External {
			continue
		}
		delete(b.moduleByAsset, name)
		delete(b.assetByPath, mod.Path)
		delete(b.rawAssets, name)
		delete(b.rawAssets, name+".map")
		delete(b.processed, name)
		delete(b.processed, mod.Path)
		for _, ref := range b.refsToPath[mod.Path] {
			delete(b.processed, ref)
		}
		delete(b.refsToPath, mod.Path)
	}
}

// captureEmit is the front-end write hook. Emitted JS becomes a project
// module record; maps land straight in the asset table.
func (b *Bundler) captureEmit(fileName string, text string) {
	name := pathutil.Normalize(fileName)
	b.rawAssets[name] = text
	if !strings.HasSuffix(name, ".js") {
		return
	}
	path := pathutil.Join(b.cat.ProjectRoot(), name)
	b.moduleByAsset[name] = &Module{
		Kind: resolver.KindESM,
		Path: path,
	}
	b.assetByPath[path] = name
	b.processed[name] = true
	b.processed[path] = true
}

// attachProjectSources pairs each emitted project module with the parsed
// source it was compiled from, for scanning.
func (b *Bundler) attachProjectSources() {
	for _, sf := range b.frontEnd.ProjectFiles() {
		name := b.cat.AssetName(outputPathFor(pathutil.Normalize(sf.FileName())))
		if mod, ok := b.moduleByAsset[name]; ok {
			mod.Source = sf
		}
	}
}

// closeGraph scans every module, resolving references until the pending
// queue drains. Unresolvable references accumulate and fail together after
// the drain so the user sees every failure at once. It returns the set of
// JSON file paths the graph references.
func (b *Bundler) closeGraph() (map[string]bool, error) {
	var queue []pendingRef
	jsonPaths := make(map[string]bool)
	missing := make(map[string]bool)

	enqueue := func(mod *Module) {
		if mod.Source == nil {
			return
		}
		for _, ref := range scanner.Scan(mod.Source, mod.Kind) {
			if ref.JSON {
				jsonPaths[ref.Name] = true
				continue
			}
			if !b.processed[ref.Name] {
				queue = append(queue, pendingRef{name: ref.Name, referrer: mod.Path})
			}
		}
	}

	// Seed in asset-name order: alias accrual and error reporting must not
	// depend on map iteration.
	seeds := make([]string, 0, len(b.moduleByAsset))
	for name := range b.moduleByAsset {
		seeds = append(seeds, name)
	}
	sort.Strings(seeds)
	for _, name := range seeds {
		enqueue(b.moduleByAsset[name])
	}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if b.processed[ref.name] {
			continue
		}
		b.processed[ref.name] = true

		result, err := b.res.Resolve(ref.name, ref.referrer)
		if err != nil {
			var notFound *resolver.NotFoundError
			if errors.As(err, &notFound) {
				missing[ref.name] = true
				continue
			}
			return nil, err
		}

		b.refsToPath[result.Path] = append(b.refsToPath[result.Path], ref.name)
		name := b.cat.AssetName(result.Path)

		mod, ok := b.moduleByAsset[name]
		if !ok {
			mod, err = b.loadExternal(name, result.Path)
			if err != nil {
				return nil, err
			}
			enqueue(mod)
		}
		b.processed[result.Path] = true

		if result.NeedsAlias {
			mod.addAlias(b.cat.StripProjectRoot(ref.name))
		}
	}

	if len(missing) > 0 {
		// Reopen the failed references so a later pass retries them once
		// the user installs the missing dependency.
		for name := range missing {
			delete(b.processed, name)
		}
		return nil, &UnresolvableError{Names: sortedKeys(missing)}
	}
	return jsonPaths, nil
}

// loadExternal reads, parses, and records a newly discovered module.
func (b *Bundler) loadExternal(name string, path string) (*Module, error) {
	text, err := b.sys.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Cause: err}
	}

	source, ok := b.externalSources[path]
	if !ok {
		source = b.frontEnd.ParseJS(path, text)
		b.externalSources[path] = source
	}

	mod := &Module{
		Kind:     resolver.DetectModuleKind(b.sys, path),
		Path:     path,
		Source:   source,
		External: true,
	}
	b.moduleByAsset[name] = mod
	b.assetByPath[path] = name
	b.rawAssets[name] = text

	if b.OnExternalSourceAdded != nil {
		b.OnExternalSourceAdded(path)
	}
	return mod, nil
}

// checkCommonJS rejects reachable CommonJS modules once the graph closes,
// unless a conversion transformer is plugged in.
func (b *Bundler) checkCommonJS() error {
	var cjs []*Module
	for _, mod := range b.moduleByAsset {
		if mod.Kind == resolver.KindCommonJS {
			cjs = append(cjs, mod)
		}
	}
	if len(cjs) == 0 {
		return nil
	}
	sort.Slice(cjs, func(i, j int) bool { return cjs[i].Path < cjs[j].Path })

	if b.opts.TransformCommonJS == nil {
		paths := make([]string, len(cjs))
		for i, mod := range cjs {
			paths[i] = mod.Path
		}
		return &CommonJSError{Paths: paths}
	}

	for _, mod := range cjs {
		name := b.assetByPath[mod.Path]
		converted, err := b.opts.TransformCommonJS(mod.Source, b.rawAssets[name])
		if err != nil {
			return err
		}
		b.rawAssets[name] = converted
		mod.Kind = resolver.KindESM
	}
	return nil
}

// buildOutput derives the final asset table for this pass: raw assets, then
// JSON synthesis, then the per-asset JS rewrite.
func (b *Bundler) buildOutput(jsonPaths map[string]bool) (map[string]string, error) {
	output := make(map[string]string, len(b.rawAssets)+len(jsonPaths))
	for name, text := range b.rawAssets {
		output[name] = text
	}

	for path := range jsonPaths {
		text, err := b.sys.ReadFile(path)
		if err != nil {
			return nil, &IOError{Path: path, Cause: err}
		}
		synthesized, err := jsonmodule.Synthesize(text)
		if err != nil {
			return nil, &IOError{Path: path, Cause: err}
		}
		output[b.cat.AssetName(path)] = synthesized
	}

	ctx := &rewrite.Context{
		Sys:        b.sys,
		SourceMaps: b.opts.SourceMaps,
		Minifier:   b.opts.Minifier,
	}
	var jsNames []string
	for name := range output {
		if strings.HasSuffix(name, ".js") {
			jsNames = append(jsNames, name)
		}
	}
	sort.Strings(jsNames)
	for _, name := range jsNames {
		var existing *sourcemap.Map
		if data, ok := output[name+".map"]; ok {
			m, err := sourcemap.Parse(data)
			if err == nil {
				existing = m
			}
		}

		originPath := name
		if mod, ok := b.moduleByAsset[name]; ok {
			originPath = mod.Path
		}

		code, outMap, err := ctx.ProcessJS(name, originPath, output[name], existing)
		if err != nil {
			return nil, err
		}
		output[name] = code
		if b.opts.SourceMaps && outMap != nil {
			serialized, err := outMap.Serialize()
			if err != nil {
				return nil, err
			}
			output[name+".map"] = serialized
		}
	}

	if !b.opts.SourceMaps {
		for name := range output {
			if strings.HasSuffix(name, ".map") {
				delete(output, name)
			}
		}
	}

	return output, nil
}

// outputPathFor maps a source path to the path its compiled JS occupies:
// the source extension swapped for .js.
func outputPathFor(path string) string {
	for _, ext := range []string{".ts", ".tsx", ".mts", ".cts", ".js"} {
		if strings.HasSuffix(path, ext) {
			return path[:len(path)-len(ext)] + ".js"
		}
	}
	return path + ".js"
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// overlaySystem makes front-end emit output visible to the resolver: the
// compiled form of a project source "exists" at its project-rooted path
// even though nothing was written to disk. Only called from inside a pass,
// under the graph lock, so the map reads below need no locking of their own.
type overlaySystem struct {
	system.System
	b *Bundler
}

func (o *overlaySystem) FileExists(path string) bool {
	if name, ok := o.b.assetByPath[pathutil.Normalize(path)]; ok {
		if mod := o.b.moduleByAsset[name]; mod != nil && !mod.External {
			return true
		}
	}
	return o.System.FileExists(path)
}

func (o *overlaySystem) ReadFile(path string) (string, error) {
	if name, ok := o.b.assetByPath[pathutil.Normalize(path)]; ok {
		if mod := o.b.moduleByAsset[name]; mod != nil && !mod.External {
			return o.b.rawAssets[name], nil
		}
	}
	return o.System.ReadFile(path)
}
