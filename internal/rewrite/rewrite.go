// Package rewrite holds the per-asset JS rewriting the bundler applies
// between the front-end's emit and bundle assembly: prologue stripping on
// the way into the asset table, then source-map trailer handling and
// minification once the graph is closed.
package rewrite

import (
	"strings"

	"github.com/frida/frida-compile/internal/minify"
	"github.com/frida/frida-compile/internal/pathutil"
	"github.com/frida/frida-compile/internal/sourcemap"
	"github.com/frida/frida-compile/internal/system"
)

// Transform rewrites one emitted JS file during write interception. The
// front-end applies the chain in order before the text reaches its write
// hook.
type Transform func(fileName string, text string) string

// RemoveUseStrict deletes a leading "use strict" prologue. The bundle runs
// as ECMAScript modules, which are strict by definition, and the directive
// confuses the loader's prologue scanning.
func RemoveUseStrict(fileName string, text string) string {
	rest := text
	var bom string
	if strings.HasPrefix(rest, "\xEF\xBB\xBF") {
		bom = rest[:3]
		rest = rest[3:]
	}
	for {
		line := rest
		if i := strings.Index(rest, "\n"); i >= 0 {
			line = rest[:i]
		}
		switch strings.TrimSpace(line) {
		case `"use strict";`, `'use strict';`:
			if i := strings.Index(rest, "\n"); i >= 0 {
				rest = rest[i+1:]
				continue
			}
			rest = ""
		case "":
			if i := strings.Index(rest, "\n"); i >= 0 {
				rest = rest[i+1:]
				continue
			}
		}
		return bom + rest
	}
}

// Context carries the collaborators the per-asset pass needs.
type Context struct {
	Sys        system.System
	SourceMaps bool
	Minifier   minify.Minifier
}

// ProcessJS runs one JS asset through the rewrite pass. assetName is the
// asset-table key, originPath the on-disk file the asset came from, and
// existing the asset's map when the emit already produced one. It returns
// the rewritten code and the map to store under <assetName>.map (nil for
// none).
func (c *Context) ProcessJS(assetName string, originPath string, code string, existing *sourcemap.Map) (string, *sourcemap.Map, error) {
	code, url, found := sourcemap.TrimTrailer(code)

	inputMap := existing
	if found && c.SourceMaps && inputMap == nil {
		m, err := c.materialize(originPath, url)
		if err != nil {
			return "", nil, err
		}
		inputMap = m
	}

	if c.Minifier == nil {
		return code, inputMap, nil
	}

	var mapOpts *minify.SourceMapOptions
	if c.SourceMaps {
		mapOpts = &minify.SourceMapOptions{
			Root:     pathutil.Dir(originPath) + "/",
			Filename: pathutil.Base(assetName),
			Content:  inputMap,
		}
	}
	result, err := c.Minifier.Minify(originPath, code, mapOpts)
	if err != nil {
		return "", nil, err
	}
	if result.Map != nil {
		result.Map.StripSourcesPrefix(result.Map.SourceRoot)
		result.Map.SourceRoot = ""
		return result.Code, result.Map, nil
	}
	return result.Code, inputMap, nil
}

// materialize recovers the map a trailer points at: decoded in place for
// inline data URLs, read next to the origin file otherwise.
func (c *Context) materialize(originPath string, url string) (*sourcemap.Map, error) {
	if b64, ok := sourcemap.InlineData(url); ok {
		data, err := c.Sys.DecodeBase64(b64)
		if err != nil {
			return nil, err
		}
		return sourcemap.Parse(string(data))
	}
	data, err := c.Sys.ReadFile(pathutil.Join(pathutil.Dir(originPath), url))
	if err != nil {
		return nil, err
	}
	return sourcemap.Parse(data)
}
