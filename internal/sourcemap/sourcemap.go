// Package sourcemap models the V3 source-map documents that flow through the
// bundler: trailer extraction from emitted JS, decoding, composition across a
// minification step, and path rewriting for the bundle's flat namespace.
package sourcemap

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
)

// Map is a V3 source map.
type Map struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Parse decodes a serialized source map.
func Parse(data string) (*Map, error) {
	var m Map
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("parsing source map: %w", err)
	}
	return &m, nil
}

// Serialize encodes the map back to JSON.
func (m *Map) Serialize() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("serializing source map: %w", err)
	}
	return string(data), nil
}

// StripSourcesPrefix removes prefix from every source path that carries it,
// folding an absolute sourceRoot into project-relative entries.
func (m *Map) StripSourcesPrefix(prefix string) {
	if prefix == "" {
		return
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	for i, src := range m.Sources {
		m.Sources[i] = strings.TrimPrefix(src, prefix)
	}
	m.SourceRoot = strings.TrimPrefix(m.SourceRoot, strings.TrimSuffix(prefix, "/"))
}

const trailerPrefix = "//# sourceMappingURL="

// TrimTrailer splits a sourceMappingURL trailer off JS code. The trailer
// only counts when it is the last line.
func TrimTrailer(code string) (trimmed string, url string, found bool) {
	end := strings.TrimRight(code, "\n")
	idx := strings.LastIndex(end, "\n")
	last := end[idx+1:]
	if !strings.HasPrefix(last, trailerPrefix) {
		return code, "", false
	}
	url = strings.TrimSpace(last[len(trailerPrefix):])
	if idx < 0 {
		return "", url, true
	}
	return end[:idx+1], url, true
}

const inlinePrefix = "data:application/json;base64,"

// InlineData extracts the base64 payload of an inline source-map URL.
func InlineData(url string) (string, bool) {
	if !strings.HasPrefix(url, inlinePrefix) {
		return "", false
	}
	return url[len(inlinePrefix):], true
}
