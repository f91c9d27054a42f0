// Package resolver maps module references to concrete files on disk. It
// implements the Node-flavored lookup the instrumentation runtime expects:
// shim interposition for builtins, package-manifest module/main fallback,
// directory index files, and the bare .js suffix retry.
package resolver

import (
	"fmt"
	"strings"

	"github.com/frida/frida-compile/internal/catalog"
	"github.com/frida/frida-compile/internal/pathutil"
	"github.com/frida/frida-compile/internal/system"
	"github.com/go-json-experiment/json"
)

// Result is a successful resolution. NeedsAlias is set whenever the
// canonical reference string cannot be derived mechanically from the
// resolved asset name, so the loader needs an alias entry.
type Result struct {
	Path       string
	NeedsAlias bool
}

// NotFoundError reports a reference no lookup rule could satisfy.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unable to resolve %q", e.Name)
}

type packageManifest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Main   string `json:"main"`
	Module string `json:"module"`
}

// Resolver resolves (reference, referrer) pairs against a catalog.
type Resolver struct {
	sys system.System
	cat *catalog.Catalog
}

// New creates a Resolver.
func New(sys system.System, cat *catalog.Catalog) *Resolver {
	return &Resolver{sys: sys, cat: cat}
}

// Resolve maps a reference string, as written in the module at referrerPath,
// to an absolute POSIX file path. First match wins:
//
//  1. absolute paths pass through
//  2. shim-catalog interposition for the package name
//  3. node_modules lookup, rooted by where the referrer lives
//  4. package-manifest module/main/index.js indirection
//  5. bare directory → index.js
//  6. missing extension → .js retry
func (r *Resolver) Resolve(name string, referrerPath string) (Result, error) {
	path, needsAlias := r.locate(name, referrerPath)

	if r.sys.DirectoryExists(path) {
		manifestPath := pathutil.Join(path, "package.json")
		if r.sys.FileExists(manifestPath) {
			entry := r.manifestEntry(manifestPath)
			path = pathutil.Join(path, entry)
			if r.sys.DirectoryExists(path) {
				path = pathutil.Join(path, "index.js")
			}
			needsAlias = true
		} else {
			path = pathutil.Join(path, "index.js")
		}
	}

	if !r.sys.FileExists(path) {
		retry := path + ".js"
		if !r.sys.FileExists(retry) {
			return Result{}, &NotFoundError{Name: name}
		}
		path = retry
	}

	return Result{Path: pathutil.Normalize(path), NeedsAlias: needsAlias}, nil
}

// locate applies steps 1–3: it picks the candidate path before any
// directory or extension fixups.
func (r *Resolver) locate(name string, referrerPath string) (string, bool) {
	if pathutil.IsAbs(name) {
		return pathutil.Normalize(name), false
	}

	tokens := strings.Split(name, "/")
	pkgName := tokens[0]
	subpath := tokens[1:]
	if strings.HasPrefix(pkgName, "@") && len(tokens) > 1 {
		pkgName = tokens[0] + "/" + tokens[1]
		subpath = tokens[2:]
	}

	if shimRoot, ok := r.cat.Lookup(pkgName); ok {
		if strings.HasSuffix(shimRoot, ".js") {
			return shimRoot, true
		}
		return pathutil.Join(append([]string{shimRoot}, subpath...)...), true
	}

	base := r.cat.ProjectNodeModules()
	if r.cat.IsCompilerPath(referrerPath) {
		base = r.cat.CompilerNodeModules()
	}
	return pathutil.Join(append([]string{base}, tokens...)...), len(subpath) > 0
}

// manifestEntry reads a package manifest and picks its entry file: module
// over main, so ESM-first packages stay in ESM form and skip the CommonJS
// conversion entirely.
func (r *Resolver) manifestEntry(manifestPath string) string {
	data, err := r.sys.ReadFile(manifestPath)
	if err != nil {
		return "index.js"
	}
	var m packageManifest
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return "index.js"
	}
	if m.Module != "" {
		return m.Module
	}
	if m.Main != "" {
		return m.Main
	}
	return "index.js"
}
