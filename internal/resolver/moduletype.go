package resolver

import (
	"github.com/frida/frida-compile/internal/pathutil"
	"github.com/frida/frida-compile/internal/system"
	"github.com/go-json-experiment/json"
)

// ModuleKind classifies a module's source format.
type ModuleKind int

const (
	// KindCommonJS modules pull dependencies through require() calls.
	KindCommonJS ModuleKind = iota
	// KindESM modules use import/export syntax. Every compiler-emitted
	// project source is ESM by construction.
	KindESM
)

func (k ModuleKind) String() string {
	switch k {
	case KindCommonJS:
		return "cjs"
	case KindESM:
		return "esm"
	}
	return "unknown"
}

// DetectModuleKind classifies the module at path by walking toward the
// filesystem root and reading the first package.json found: ESM when the
// manifest declares type "module" or carries a module field, CommonJS
// otherwise and when no manifest exists.
func DetectModuleKind(sys system.System, path string) ModuleKind {
	dir := pathutil.Dir(pathutil.Normalize(path))
	for {
		manifestPath := pathutil.Join(dir, "package.json")
		if sys.FileExists(manifestPath) {
			return classifyManifest(sys, manifestPath)
		}
		parent := pathutil.Dir(dir)
		if parent == dir {
			return KindCommonJS
		}
		dir = parent
	}
}

func classifyManifest(sys system.System, manifestPath string) ModuleKind {
	data, err := sys.ReadFile(manifestPath)
	if err != nil {
		return KindCommonJS
	}
	var m packageManifest
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return KindCommonJS
	}
	if m.Type == "module" || m.Module != "" {
		return KindESM
	}
	return KindCommonJS
}
