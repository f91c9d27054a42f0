// Package minify defines the minifier collaborator contract and its
// esbuild-backed implementation. The bundler invokes it once per JS asset;
// the contract is synchronous and performs no I/O of its own.
package minify

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/frida/frida-compile/internal/sourcemap"
)

// SourceMapOptions carries the map context for one input file.
type SourceMapOptions struct {
	// Root is the directory of the file's origin, with a trailing slash.
	Root string
	// Filename is the base name the output map's file field should carry.
	Filename string
	// Content is the map that arrived with the input, when one is known.
	// The minifier composes its own map through it so final positions
	// trace to original coordinates.
	Content *sourcemap.Map
}

// Result is the minifier's output for one file.
type Result struct {
	Code string
	Map  *sourcemap.Map
}

// Minifier rewrites a single JS source. filename is the source's name for
// map purposes; opts is nil when maps are disabled.
type Minifier interface {
	Minify(filename string, source string, opts *SourceMapOptions) (Result, error)
}

// Error wraps a failure reported by the minifier backend.
type Error struct {
	Filename string
	Messages []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("minifying %s: %s", e.Filename, strings.Join(e.Messages, "; "))
}

// Esbuild minifies through the esbuild Transform API: ES2020 output,
// whitespace/identifier/syntax passes, and process.env.FRIDA_COMPILE
// defined so runtime feature checks fold away.
type Esbuild struct{}

var _ Minifier = Esbuild{}

func (Esbuild) Minify(filename string, source string, opts *SourceMapOptions) (Result, error) {
	transformOpts := api.TransformOptions{
		Target:            api.ES2020,
		Format:            api.FormatESModule,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Define:            map[string]string{"process.env.FRIDA_COMPILE": "true"},
		Sourcefile:        filename,
		LogLevel:          api.LogLevelSilent,
	}
	if opts != nil {
		transformOpts.Sourcemap = api.SourceMapExternal
		transformOpts.SourceRoot = opts.Root
		transformOpts.Sourcefile = opts.Filename
	}

	result := api.Transform(source, transformOpts)
	if len(result.Errors) > 0 {
		messages := make([]string, len(result.Errors))
		for i, msg := range result.Errors {
			if msg.Location != nil {
				messages[i] = fmt.Sprintf("%d:%d: %s", msg.Location.Line, msg.Location.Column, msg.Text)
			} else {
				messages[i] = msg.Text
			}
		}
		return Result{}, &Error{Filename: filename, Messages: messages}
	}

	out := Result{Code: string(result.Code)}
	if opts != nil && len(result.Map) > 0 {
		m, err := sourcemap.Parse(string(result.Map))
		if err != nil {
			return Result{}, &Error{Filename: filename, Messages: []string{err.Error()}}
		}
		if opts.Content != nil {
			m = sourcemap.Compose(m, opts.Content)
		}
		m.File = opts.Filename
		out.Map = m
	}
	return out, nil
}
