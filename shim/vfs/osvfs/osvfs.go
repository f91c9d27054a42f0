// Package osvfs re-exports the OS-backed filesystem. The module path is
// rooted at github.com/microsoft/typescript-go, which is what makes the
// internal imports below legal.
package osvfs

import (
	"github.com/microsoft/typescript-go/internal/vfs"
	"github.com/microsoft/typescript-go/internal/vfs/osvfs"
)

func FS() vfs.FS {
	return osvfs.FS()
}
