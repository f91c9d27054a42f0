// Package cachedvfs re-exports the caching filesystem wrapper. The module
// path is rooted at github.com/microsoft/typescript-go, which is what makes
// the internal imports below legal.
package cachedvfs

import (
	"github.com/microsoft/typescript-go/internal/vfs"
	"github.com/microsoft/typescript-go/internal/vfs/cachedvfs"
)

func From(fs vfs.FS) vfs.FS {
	return cachedvfs.From(fs)
}
