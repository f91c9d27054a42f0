// Package tspath re-exports the compiler's path helpers. The module path is
// rooted at github.com/microsoft/typescript-go, which is what makes the
// internal import below legal.
package tspath

import (
	"github.com/microsoft/typescript-go/internal/tspath"
)

func NormalizeSlashes(path string) string {
	return tspath.NormalizeSlashes(path)
}

func NormalizePath(path string) string {
	return tspath.NormalizePath(path)
}

func GetDirectoryPath(path string) string {
	return tspath.GetDirectoryPath(path)
}

func ResolvePath(path string, paths ...string) string {
	return tspath.ResolvePath(path, paths...)
}
