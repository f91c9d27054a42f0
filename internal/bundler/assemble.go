package bundler

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Container sentinels. The loader parses the manifest by these exact byte
// sequences; they are not decorative.
const (
	manifestHeader = "\U0001F4E6\n" // 📦
	aliasPrefix    = "↻ "      // ↻
	separator      = "✄"       // ✄
)

// assemble serializes the output asset table: a manifest of byte lengths,
// names, and aliases, then the concatenated payloads. The entrypoint's
// compiled JS (with its map directly before it) leads; everything else
// follows in lexicographic name order, each map preceding its peer.
func (b *Bundler) assemble(output map[string]string) []byte {
	names := make([]string, 0, len(output))
	for name := range output {
		names = append(names, name)
	}
	sort.Strings(names)

	var primaries []string
	maps := make(map[string]bool)
	for _, name := range names {
		if strings.HasSuffix(name, ".map") {
			maps[name] = true
		} else {
			primaries = append(primaries, name)
		}
	}

	entryName := b.EntryAssetName()
	var order []string
	appendPair := func(dst []string, primary string) []string {
		if maps[primary+".map"] {
			dst = append(dst, primary+".map")
		}
		return append(dst, primary)
	}
	if _, ok := output[entryName]; ok {
		order = appendPair(order, entryName)
	}
	for _, primary := range primaries {
		if primary == entryName {
			continue
		}
		order = appendPair(order, primary)
	}

	var buf bytes.Buffer
	buf.WriteString(manifestHeader)
	for _, name := range order {
		fmt.Fprintf(&buf, "%d %s\n", len(output[name]), name)
		if mod, ok := b.moduleByAsset[name]; ok {
			for _, alias := range mod.Aliases {
				buf.WriteString(aliasPrefix + alias + "\n")
			}
		}
	}
	buf.WriteString(separator + "\n")

	for i, name := range order {
		if i > 0 {
			buf.WriteString("\n" + separator + "\n")
		}
		buf.WriteString(output[name])
	}

	return buf.Bytes()
}
