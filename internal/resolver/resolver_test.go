package resolver

import (
	"errors"
	"testing"

	"github.com/frida/frida-compile/internal/catalog"
	"github.com/frida/frida-compile/internal/system"
)

const (
	projectRoot  = "/p"
	compilerRoot = "/p/node_modules/frida-compile"
	shimRoot     = compilerRoot + "/node_modules"
)

func newTestEnv() (*system.Memory, *Resolver) {
	sys := system.NewMemory()
	sys.Touch(compilerRoot+"/package.json", `{
		"name": "frida-compile",
		"dependencies": {"@frida/buffer": "^7.0.0", "@frida/stream": "^1.0.0"}
	}`)
	sys.Touch(shimRoot+"/@frida/buffer/index.js", "export class Buffer {}\n")
	sys.Touch(shimRoot+"/@frida/buffer/lib/util.js", "export {};\n")
	sys.Touch(shimRoot+"/@frida/stream/package.json", `{"module": "lib/stream.mjs", "main": "lib/stream.js"}`)
	sys.Touch(shimRoot+"/@frida/stream/lib/stream.mjs", "export {};\n")
	sys.Touch(shimRoot+"/@frida/stream/lib/stream.js", "module.exports = {};\n")

	cat := catalog.New(sys, projectRoot, compilerRoot)
	return sys, New(sys, cat)
}

// ── resolution steps ─────────────────────────────────────────────────────────

func TestResolve_AbsolutePath(t *testing.T) {
	sys, r := newTestEnv()
	sys.Touch("/p/agent/helper.js", "export {};\n")

	result, err := r.Resolve("/p/agent/helper.js", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/p/agent/helper.js" {
		t.Errorf("Path = %q", result.Path)
	}
	if result.NeedsAlias {
		t.Error("absolute references must not need an alias")
	}
}

func TestResolve_AbsoluteMissingExtension(t *testing.T) {
	sys, r := newTestEnv()
	sys.Touch("/p/agent/helper.js", "export {};\n")

	result, err := r.Resolve("/p/agent/helper", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/p/agent/helper.js" {
		t.Errorf("Path = %q, want .js retry to hit", result.Path)
	}
	if result.NeedsAlias {
		t.Error("suffix retry alone must not need an alias")
	}
}

func TestResolve_Shim(t *testing.T) {
	_, r := newTestEnv()

	result, err := r.Resolve("buffer", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != shimRoot+"/@frida/buffer/index.js" {
		t.Errorf("Path = %q", result.Path)
	}
	if !result.NeedsAlias {
		t.Error("shim resolution must need an alias")
	}
}

func TestResolve_NodePrefixedShim(t *testing.T) {
	_, r := newTestEnv()

	result, err := r.Resolve("node:buffer", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != shimRoot+"/@frida/buffer/index.js" {
		t.Errorf("Path = %q", result.Path)
	}
}

func TestResolve_ShimSubpath(t *testing.T) {
	_, r := newTestEnv()

	result, err := r.Resolve("buffer/lib/util", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != shimRoot+"/@frida/buffer/lib/util.js" {
		t.Errorf("Path = %q", result.Path)
	}
	if !result.NeedsAlias {
		t.Error("subpath resolution must need an alias")
	}
}

func TestResolve_ModuleFieldPreferredOverMain(t *testing.T) {
	_, r := newTestEnv()

	result, err := r.Resolve("stream", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != shimRoot+"/@frida/stream/lib/stream.mjs" {
		t.Errorf("Path = %q, want the module entry, not main", result.Path)
	}
	if !result.NeedsAlias {
		t.Error("manifest indirection must need an alias")
	}
}

func TestResolve_ProjectDependency(t *testing.T) {
	sys, r := newTestEnv()
	sys.Touch("/p/node_modules/lodash/package.json", `{"main": "lodash.js"}`)
	sys.Touch("/p/node_modules/lodash/lodash.js", "module.exports = {};\n")

	result, err := r.Resolve("lodash", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/p/node_modules/lodash/lodash.js" {
		t.Errorf("Path = %q", result.Path)
	}
	if !result.NeedsAlias {
		t.Error("main indirection must need an alias")
	}
}

func TestResolve_ScopedPackageSubpath(t *testing.T) {
	sys, r := newTestEnv()
	sys.Touch("/p/node_modules/@acme/kit/util/strings.js", "export {};\n")

	result, err := r.Resolve("@acme/kit/util/strings", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/p/node_modules/@acme/kit/util/strings.js" {
		t.Errorf("Path = %q", result.Path)
	}
	if !result.NeedsAlias {
		t.Error("subpath must need an alias")
	}
}

func TestResolve_DirectoryWithoutManifest(t *testing.T) {
	sys, r := newTestEnv()
	sys.Touch("/p/node_modules/plain/index.js", "module.exports = {};\n")

	result, err := r.Resolve("plain", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/p/node_modules/plain/index.js" {
		t.Errorf("Path = %q", result.Path)
	}
	if result.NeedsAlias {
		t.Error("bare index.js fallback must not need an alias")
	}
}

func TestResolve_CompilerReferrerUsesShimRoot(t *testing.T) {
	sys, r := newTestEnv()
	sys.Touch(shimRoot+"/ieee754/index.js", "module.exports = {};\n")

	result, err := r.Resolve("ieee754", shimRoot+"/@frida/buffer/index.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != shimRoot+"/ieee754/index.js" {
		t.Errorf("Path = %q, want resolution against the shim root", result.Path)
	}
}

func TestResolve_Unresolvable(t *testing.T) {
	_, r := newTestEnv()

	_, err := r.Resolve("does-not-exist", "/p/agent/index.ts")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Name != "does-not-exist" {
		t.Errorf("Name = %q", notFound.Name)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	_, r := newTestEnv()

	first, err := r.Resolve("buffer", "/p/agent/index.ts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := r.Resolve("buffer", "/p/agent/index.ts")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if again != first {
			t.Fatalf("run %d: %+v != %+v", i, again, first)
		}
	}
}

// ── module-type detection ────────────────────────────────────────────────────

func TestDetectModuleKind(t *testing.T) {
	sys := system.NewMemory()
	sys.Touch("/p/node_modules/esm-pkg/package.json", `{"type": "module"}`)
	sys.Touch("/p/node_modules/esm-pkg/index.js", "export {};\n")
	sys.Touch("/p/node_modules/esm-field/package.json", `{"main": "a.js", "module": "a.mjs"}`)
	sys.Touch("/p/node_modules/esm-field/a.mjs", "export {};\n")
	sys.Touch("/p/node_modules/cjs-pkg/package.json", `{"main": "index.js"}`)
	sys.Touch("/p/node_modules/cjs-pkg/index.js", "module.exports = {};\n")
	sys.Touch("/orphan/lib/deep/file.js", "module.exports = {};\n")

	cases := []struct {
		path string
		want ModuleKind
	}{
		{"/p/node_modules/esm-pkg/index.js", KindESM},
		{"/p/node_modules/esm-field/a.mjs", KindESM},
		{"/p/node_modules/cjs-pkg/index.js", KindCommonJS},
		{"/orphan/lib/deep/file.js", KindCommonJS},
	}
	for _, tc := range cases {
		if got := DetectModuleKind(sys, tc.path); got != tc.want {
			t.Errorf("DetectModuleKind(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestDetectModuleKind_NearestManifestWins(t *testing.T) {
	sys := system.NewMemory()
	sys.Touch("/p/package.json", `{"type": "module"}`)
	sys.Touch("/p/node_modules/dep/package.json", `{"main": "index.js"}`)
	sys.Touch("/p/node_modules/dep/index.js", "module.exports = {};\n")

	if got := DetectModuleKind(sys, "/p/node_modules/dep/index.js"); got != KindCommonJS {
		t.Errorf("DetectModuleKind = %v, want cjs from the nearest manifest", got)
	}
}
