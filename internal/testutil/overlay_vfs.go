// Package testutil provides test fixtures: a virtual filesystem overlay for
// creating compiler programs from inline TypeScript source, and builders for
// in-memory project trees.
package testutil

import (
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/microsoft/typescript-go/shim/bundled"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

// OverlayVFS lays in-memory sources over a base compiler filesystem, so
// front-end tests can compile agent projects that never touch disk. Overlay
// entries win over the base; they are read-only.
type OverlayVFS struct {
	base  vfs.FS
	files map[string]string
}

var _ vfs.FS = (*OverlayVFS)(nil)

// NewOverlayVFS lays files over an arbitrary base filesystem.
func NewOverlayVFS(base vfs.FS, files map[string]string) vfs.FS {
	return &OverlayVFS{base: base, files: files}
}

// NewDefaultOverlayVFS lays files over the bundled OS filesystem, which
// carries the TypeScript lib files the checker needs.
func NewDefaultOverlayVFS(files map[string]string) vfs.FS {
	return NewOverlayVFS(bundled.WrapFS(osvfs.FS()), files)
}

// NewProjectVFS builds an agent-project overlay: sources given relative to
// projectRoot (e.g. "agent/index.ts") are rooted under it, absolute paths
// pass through. This is the usual front-end fixture shape.
func NewProjectVFS(projectRoot string, sources map[string]string) vfs.FS {
	files := make(map[string]string, len(sources))
	for name, text := range sources {
		if strings.HasPrefix(name, "/") {
			files[name] = text
			continue
		}
		files[tspath.ResolvePath(projectRoot, name)] = text
	}
	return NewDefaultOverlayVFS(files)
}

func (o *OverlayVFS) UseCaseSensitiveFileNames() bool {
	return o.base.UseCaseSensitiveFileNames()
}

func (o *OverlayVFS) FileExists(path string) bool {
	if _, ok := o.files[path]; ok {
		return true
	}
	return o.base.FileExists(path)
}

func (o *OverlayVFS) ReadFile(path string) (contents string, ok bool) {
	if text, ok := o.files[path]; ok {
		return text, true
	}
	return o.base.ReadFile(path)
}

func (o *OverlayVFS) DirectoryExists(path string) bool {
	if o.coversDirectory(path) {
		return true
	}
	return o.base.DirectoryExists(path)
}

func (o *OverlayVFS) GetAccessibleEntries(path string) vfs.Entries {
	result := o.base.GetAccessibleEntries(path)

	prefix := normalizedDir(path)
	seenDirs := make(map[string]bool)
	for overlayPath := range o.files {
		rest, found := strings.CutPrefix(overlayPath, prefix)
		if !found {
			continue
		}
		if child, _, nested := strings.Cut(rest, "/"); nested {
			if !seenDirs[child] {
				seenDirs[child] = true
				result.Directories = append(result.Directories, child)
			}
		} else {
			result.Files = append(result.Files, rest)
		}
	}
	sort.Strings(result.Files)
	sort.Strings(result.Directories)
	return result
}

func (o *OverlayVFS) Stat(path string) vfs.FileInfo {
	if text, ok := o.files[path]; ok {
		return &overlayFileInfo{name: path, size: int64(len(text))}
	}
	return o.base.Stat(path)
}

func (o *OverlayVFS) WalkDir(root string, walkFn vfs.WalkDirFunc) error {
	return o.base.WalkDir(root, walkFn)
}

func (o *OverlayVFS) Realpath(path string) string {
	if _, ok := o.files[path]; ok {
		return path
	}
	return o.base.Realpath(path)
}

func (o *OverlayVFS) WriteFile(path string, data string, writeByteOrderMark bool) error {
	if _, ok := o.files[path]; ok {
		panic("overlay sources are read-only")
	}
	return o.base.WriteFile(path, data, writeByteOrderMark)
}

func (o *OverlayVFS) Remove(path string) error {
	if _, ok := o.files[path]; ok {
		panic("overlay sources are read-only")
	}
	return o.base.Remove(path)
}

func (o *OverlayVFS) Chtimes(path string, aTime time.Time, mTime time.Time) error {
	if _, ok := o.files[path]; ok {
		panic("overlay sources are read-only")
	}
	return o.base.Chtimes(path, aTime, mTime)
}

// coversDirectory reports whether any overlay entry lives under path.
func (o *OverlayVFS) coversDirectory(path string) bool {
	prefix := normalizedDir(path)
	for overlayPath := range o.files {
		if strings.HasPrefix(overlayPath, prefix) {
			return true
		}
	}
	return false
}

func normalizedDir(path string) string {
	normalized := tspath.NormalizePath(path)
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}
	return normalized
}

type overlayFileInfo struct {
	mode fs.FileMode
	name string
	size int64
}

var (
	_ fs.FileInfo = (*overlayFileInfo)(nil)
	_ fs.DirEntry = (*overlayFileInfo)(nil)
)

func (fi *overlayFileInfo) IsDir() bool                { return fi.mode.IsDir() }
func (fi *overlayFileInfo) ModTime() time.Time         { return time.Time{} }
func (fi *overlayFileInfo) Mode() fs.FileMode          { return fi.mode }
func (fi *overlayFileInfo) Name() string               { return fi.name }
func (fi *overlayFileInfo) Size() int64                { return fi.size }
func (fi *overlayFileInfo) Sys() any                   { return nil }
func (fi *overlayFileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi *overlayFileInfo) Type() fs.FileMode          { return fi.mode.Type() }
