// Package vfs re-exports the compiler's filesystem interface. The module
// path is rooted at github.com/microsoft/typescript-go, which is what makes
// the internal import below legal.
package vfs

import (
	"github.com/microsoft/typescript-go/internal/vfs"
)

type (
	FS          = vfs.FS
	Entries     = vfs.Entries
	FileInfo    = vfs.FileInfo
	WalkDirFunc = vfs.WalkDirFunc
)
