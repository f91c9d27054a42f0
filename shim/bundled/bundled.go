// Package bundled re-exports the embedded lib.d.ts filesystem. The module
// path is rooted at github.com/microsoft/typescript-go, which is what makes
// the internal imports below legal.
package bundled

import (
	"github.com/microsoft/typescript-go/internal/bundled"
	"github.com/microsoft/typescript-go/internal/vfs"
)

func WrapFS(fs vfs.FS) vfs.FS {
	return bundled.WrapFS(fs)
}

func LibPath() string {
	return bundled.LibPath()
}
