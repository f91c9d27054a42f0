// Package pathutil provides the POSIX-form path handling used throughout the
// bundler. Every key in the module table, asset table, and bundle manifest is
// a POSIX path; conversion from native form happens at the system boundary.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/microsoft/typescript-go/shim/tspath"
)

// ToPosix converts a native path to POSIX form.
func ToPosix(p string) string {
	return tspath.NormalizeSlashes(p)
}

// ToNative converts a POSIX-form path to the host's native form.
func ToNative(p string) string {
	return filepath.FromSlash(p)
}

// Normalize resolves "." and ".." segments and collapses separators,
// returning POSIX form.
func Normalize(p string) string {
	return tspath.NormalizePath(p)
}

// Join joins path segments with "/" and normalizes the result.
func Join(parts ...string) string {
	return tspath.NormalizePath(strings.Join(parts, "/"))
}

// Dir returns the parent directory of a POSIX path.
func Dir(p string) string {
	return tspath.GetDirectoryPath(tspath.NormalizeSlashes(p))
}

// Base returns the final segment of a POSIX path.
func Base(p string) string {
	p = tspath.NormalizeSlashes(p)
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Resolve resolves ref against the directory base, returning an absolute
// normalized POSIX path.
func Resolve(base string, ref string) string {
	return tspath.ResolvePath(base, ref)
}

// IsAbs reports whether p is an absolute path (POSIX or native form).
func IsAbs(p string) bool {
	return strings.HasPrefix(p, "/") || filepath.IsAbs(p)
}

// HasPrefix reports whether path lies inside dir (or equals it). Both are
// expected in normalized POSIX form.
func HasPrefix(path string, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return strings.HasPrefix(path, dir)
}

// TrimPrefix removes the dir prefix from path, keeping a leading "/". It
// returns path unchanged when path does not lie inside dir.
func TrimPrefix(path string, dir string) string {
	if !HasPrefix(path, dir) {
		return path
	}
	trimmed := strings.TrimPrefix(path, strings.TrimSuffix(dir, "/"))
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
