// Package jsonmodule turns a JSON document into an ECMAScript module: the
// parsed value as the default export plus a named export for every own key
// that is usable as a binding. Named exports keep document order.
package jsonmodule

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// reservedWords are the ES2015 keywords and future reserved words that are
// illegal as module-level bindings, strict-mode and module-goal additions
// included.
var reservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true,
	"default": true, "delete": true, "do": true, "else": true,
	"enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true,
	"implements": true, "import": true, "in": true, "instanceof": true,
	"interface": true, "let": true, "new": true, "null": true,
	"package": true, "private": true, "protected": true, "public": true,
	"return": true, "static": true, "super": true, "switch": true,
	"this": true, "throw": true, "true": true, "try": true,
	"typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

// Synthesize converts raw JSON text into module source. The JSON text is
// embedded verbatim (trimmed of surrounding whitespace), so formatting and
// number representations survive round trips.
func Synthesize(text string) (string, error) {
	trimmed := strings.TrimSpace(text)

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return "", fmt.Errorf("parsing JSON: %w", err)
	}

	obj, isObject := value.(map[string]any)
	if !isObject || obj == nil {
		return "export default " + trimmed + ";\n", nil
	}

	keys, err := topLevelKeys(trimmed)
	if err != nil {
		return "", fmt.Errorf("parsing JSON: %w", err)
	}

	id := bindingName(obj)

	var sb strings.Builder
	fmt.Fprintf(&sb, "const %s = %s;\n", id, trimmed)
	fmt.Fprintf(&sb, "export default %s;\n", id)
	for _, key := range keys {
		if !isIdentifier(key) || reservedWords[key] {
			continue
		}
		fmt.Fprintf(&sb, "export const %s = %s.%s;\n", key, id, key)
	}
	return sb.String(), nil
}

// topLevelKeys streams the document once to recover key order, which
// map-based decoding discards.
func topLevelKeys(text string) ([]string, error) {
	dec := jsontext.NewDecoder(strings.NewReader(text))
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	var keys []string
	seen := make(map[string]bool)
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		key := tok.String()
		// Duplicate keys: last value wins in JS, first position wins here.
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		if err := dec.SkipValue(); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// bindingName picks the shortest of d, d1, d2, … that is not an own
// property of the document.
func bindingName(obj map[string]any) string {
	if _, taken := obj["d"]; !taken {
		return "d"
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("d%d", i)
		if _, taken := obj[candidate]; !taken {
			return candidate
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := r == '_' || r == '$' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if i == 0 {
			if !alpha {
				return false
			}
			continue
		}
		if !alpha && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
