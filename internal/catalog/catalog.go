// Package catalog resolves the bare builtin specifiers a script may import
// (assert, buffer, fs, …) to the on-disk shim packages shipped with the
// compiler, and records the node_modules roots the resolver searches.
package catalog

import (
	"strings"

	"github.com/frida/frida-compile/internal/pathutil"
	"github.com/frida/frida-compile/internal/system"
	"github.com/go-json-experiment/json"
)

// CompilerPackageName is the published name of the compiler package. The
// resolver treats references coming from inside
// <project>/node_modules/<CompilerPackageName> as compiler-rooted.
const CompilerPackageName = "frida-compile"

// builtinShims maps each interposed builtin to the shim package that
// replaces it. A builtin is only registered when its shim package is present
// under the compiler's node_modules.
var builtinShims = map[string]string{
	"assert":              "@frida/assert",
	"base64-js":           "@frida/base64-js",
	"buffer":              "@frida/buffer",
	"crypto":              "@frida/crypto",
	"diagnostics_channel": "@frida/diagnostics_channel",
	"events":              "@frida/events",
	"fs":                  "frida-fs",
	"http":                "@frida/http",
	"https":               "@frida/https",
	"http-parser-js":      "@frida/http-parser-js",
	"ieee754":             "@frida/ieee754",
	"net":                 "@frida/net",
	"os":                  "@frida/os",
	"path":                "@frida/path",
	"process":             "@frida/process",
	"punycode":            "@frida/punycode",
	"querystring":         "@frida/querystring",
	"readable-stream":     "@frida/readable-stream",
	"stream":              "@frida/stream",
	"string_decoder":      "@frida/string_decoder",
	"timers":              "@frida/timers",
	"tty":                 "@frida/tty",
	"url":                 "@frida/url",
	"util":                "@frida/util",
	"vm":                  "@frida/vm",
	"zlib":                "@frida/zlib",
}

// nodePrefixed lists the builtins that are also reachable through a node:
// specifier. Third-party shim names like base64-js are not.
func nodePrefixed(name string) bool {
	switch name {
	case "base64-js", "http-parser-js", "ieee754", "readable-stream":
		return false
	}
	return true
}

type manifest struct {
	Name         string            `json:"name"`
	Dependencies map[string]string `json:"dependencies"`
}

// Catalog is the resolved shim mapping plus the search roots.
type Catalog struct {
	projectRoot  string
	compilerRoot string
	shims        map[string]string
}

// New builds a catalog for a project. projectRoot and compilerRoot are
// absolute POSIX paths; compilerRoot is the compiler package's own root
// (the directory holding its package.json and node_modules).
func New(sys system.System, projectRoot string, compilerRoot string) *Catalog {
	c := &Catalog{
		projectRoot:  pathutil.Normalize(projectRoot),
		compilerRoot: pathutil.Normalize(compilerRoot),
		shims:        make(map[string]string),
	}

	installed := installedShimPackages(sys, c.compilerRoot)
	shimRoot := pathutil.Join(c.compilerRoot, "node_modules")
	for name, pkg := range builtinShims {
		if !installed[pkg] {
			continue
		}
		root := pathutil.Join(shimRoot, pkg)
		if !sys.DirectoryExists(root) {
			continue
		}
		c.shims[name] = root
		if nodePrefixed(name) {
			c.shims["node:"+name] = root
		}
	}

	return c
}

// installedShimPackages reads the compiler manifest's dependencies so only
// shims the compiler actually ships get interposed.
func installedShimPackages(sys system.System, compilerRoot string) map[string]bool {
	installed := make(map[string]bool)
	data, err := sys.ReadFile(pathutil.Join(compilerRoot, "package.json"))
	if err != nil {
		return installed
	}
	var m manifest
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return installed
	}
	for dep := range m.Dependencies {
		installed[dep] = true
	}
	return installed
}

// Lookup returns the shim root for a bare specifier.
func (c *Catalog) Lookup(name string) (string, bool) {
	root, ok := c.shims[name]
	return root, ok
}

// ProjectRoot returns the project root.
func (c *Catalog) ProjectRoot() string {
	return c.projectRoot
}

// CompilerRoot returns the compiler package root.
func (c *Catalog) CompilerRoot() string {
	return c.compilerRoot
}

// ProjectNodeModules returns the project dependency root.
func (c *Catalog) ProjectNodeModules() string {
	return pathutil.Join(c.projectRoot, "node_modules")
}

// CompilerNodeModules returns the compiler dependency root, which doubles as
// the shim root.
func (c *Catalog) CompilerNodeModules() string {
	return pathutil.Join(c.compilerRoot, "node_modules")
}

// EmbeddedCompilerDir returns <project>/node_modules/frida-compile, the
// third location the resolver treats as compiler territory.
func (c *Catalog) EmbeddedCompilerDir() string {
	return pathutil.Join(c.projectRoot, "node_modules", CompilerPackageName)
}

// Names returns the registered bare specifiers, node:-prefixed aliases
// included.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.shims))
	for name := range c.shims {
		names = append(names, name)
	}
	return names
}

// IsCompilerPath reports whether path lies in compiler territory: the
// compiler root, the shim root, or the embedded compiler directory.
func (c *Catalog) IsCompilerPath(path string) bool {
	path = pathutil.Normalize(path)
	return pathutil.HasPrefix(path, c.compilerRoot) ||
		pathutil.HasPrefix(path, c.CompilerNodeModules()) ||
		pathutil.HasPrefix(path, c.EmbeddedCompilerDir())
}

// AssetName derives the asset-table key for an absolute module path by
// stripping the compiler or project root. Compiler territory wins, so shim
// assets stay rooted at the compiler root even when the compiler is embedded
// in the project.
func (c *Catalog) AssetName(path string) string {
	path = pathutil.Normalize(path)
	if pathutil.HasPrefix(path, c.EmbeddedCompilerDir()) {
		return pathutil.TrimPrefix(path, c.EmbeddedCompilerDir())
	}
	if pathutil.HasPrefix(path, c.compilerRoot) {
		return pathutil.TrimPrefix(path, c.compilerRoot)
	}
	return pathutil.TrimPrefix(path, c.projectRoot)
}

// StripProjectRoot removes the project-root prefix from an absolute
// reference, used when recording aliases for project-rooted absolute
// references.
func (c *Catalog) StripProjectRoot(ref string) string {
	if strings.HasPrefix(ref, "/") && pathutil.HasPrefix(pathutil.Normalize(ref), c.projectRoot) {
		return pathutil.TrimPrefix(pathutil.Normalize(ref), c.projectRoot)
	}
	return ref
}
