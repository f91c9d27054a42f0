package compiler

import (
	"github.com/microsoft/typescript-go/shim/bundled"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/cachedvfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

// CreateDefaultFS returns the OS filesystem wrapped with the bundled lib
// files and a stat/read cache. Emit never touches this filesystem — output
// is intercepted — so caching reads is safe across a pass.
func CreateDefaultFS() vfs.FS {
	return bundled.WrapFS(cachedvfs.From(osvfs.FS()))
}

// CreateHost builds a compiler host rooted at the project.
func CreateHost(projectRoot string, fs vfs.FS) shimcompiler.CompilerHost {
	return shimcompiler.NewCompilerHost(projectRoot, fs, bundled.LibPath(), nil, nil)
}
