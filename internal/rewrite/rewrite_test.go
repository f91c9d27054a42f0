package rewrite

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/frida/frida-compile/internal/minify"
	"github.com/frida/frida-compile/internal/sourcemap"
	"github.com/frida/frida-compile/internal/system"
)

// ── use strict removal ───────────────────────────────────────────────────────

func TestRemoveUseStrict(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"double quotes", "\"use strict\";\nconst x = 1;\n", "const x = 1;\n"},
		{"single quotes", "'use strict';\nconst x = 1;\n", "const x = 1;\n"},
		{"leading blank line", "\n\"use strict\";\nconst x = 1;\n", "const x = 1;\n"},
		{"absent", "const x = 1;\n", "const x = 1;\n"},
		{"not at top", "const x = 1;\n\"use strict\";\n", "const x = 1;\n\"use strict\";\n"},
		{"inside string", "const s = '\"use strict\";';\n", "const s = '\"use strict\";';\n"},
	}
	for _, tc := range cases {
		if got := RemoveUseStrict("/agent/index.js", tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRemoveUseStrict_PreservesBOM(t *testing.T) {
	in := "\xEF\xBB\xBF\"use strict\";\nconst x = 1;\n"
	want := "\xEF\xBB\xBFconst x = 1;\n"
	if got := RemoveUseStrict("/agent/index.js", in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// ── per-asset processing ─────────────────────────────────────────────────────

func TestProcessJS_TrimsTrailer(t *testing.T) {
	ctx := &Context{Sys: system.NewMemory(), SourceMaps: false}

	code, m, err := ctx.ProcessJS("/agent/index.js", "/p/agent/index.js",
		"const x = 1;\n//# sourceMappingURL=index.js.map\n", nil)
	if err != nil {
		t.Fatalf("ProcessJS: %v", err)
	}
	if code != "const x = 1;\n" {
		t.Errorf("code = %q", code)
	}
	if m != nil {
		t.Error("no map expected with source maps disabled")
	}
}

func TestProcessJS_MaterializesInlineMap(t *testing.T) {
	sys := system.NewMemory()
	ctx := &Context{Sys: sys, SourceMaps: true}

	mapJSON := `{"version":3,"sources":["orig.ts"],"names":[],"mappings":"AAAA"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(mapJSON))
	code := "const x = 1;\n//# sourceMappingURL=data:application/json;base64," + encoded + "\n"

	_, m, err := ctx.ProcessJS("/lib/dep.js", "/p/node_modules/dep/index.js", code, nil)
	if err != nil {
		t.Fatalf("ProcessJS: %v", err)
	}
	if m == nil {
		t.Fatal("inline map should be materialized")
	}
	if len(m.Sources) != 1 || m.Sources[0] != "orig.ts" {
		t.Errorf("Sources = %v", m.Sources)
	}
}

func TestProcessJS_MaterializesSiblingMap(t *testing.T) {
	sys := system.NewMemory()
	sys.Touch("/p/node_modules/dep/index.js.map",
		`{"version":3,"sources":["src/index.ts"],"names":[],"mappings":"AAAA"}`)
	ctx := &Context{Sys: sys, SourceMaps: true}

	_, m, err := ctx.ProcessJS("/lib/dep.js", "/p/node_modules/dep/index.js",
		"const x = 1;\n//# sourceMappingURL=index.js.map\n", nil)
	if err != nil {
		t.Fatalf("ProcessJS: %v", err)
	}
	if m == nil {
		t.Fatal("sibling map should be materialized")
	}
	if m.Sources[0] != "src/index.ts" {
		t.Errorf("Sources = %v", m.Sources)
	}
}

// fakeMinifier records its input and returns canned output.
type fakeMinifier struct {
	lastOpts *minify.SourceMapOptions
	mapOut   *sourcemap.Map
}

func (f *fakeMinifier) Minify(filename string, source string, opts *minify.SourceMapOptions) (minify.Result, error) {
	f.lastOpts = opts
	return minify.Result{Code: strings.ReplaceAll(source, " ", ""), Map: f.mapOut}, nil
}

func TestProcessJS_MinifierReceivesMapContext(t *testing.T) {
	sys := system.NewMemory()
	min := &fakeMinifier{}
	ctx := &Context{Sys: sys, SourceMaps: true, Minifier: min}

	existing := &sourcemap.Map{Version: 3, Sources: []string{"index.ts"}}
	code, _, err := ctx.ProcessJS("/agent/index.js", "/p/agent/index.js", "const x = 1;\n", existing)
	if err != nil {
		t.Fatalf("ProcessJS: %v", err)
	}
	if code != "constx=1;\n" {
		t.Errorf("code = %q", code)
	}
	if min.lastOpts == nil {
		t.Fatal("map options should be passed")
	}
	if min.lastOpts.Root != "/p/agent/" {
		t.Errorf("Root = %q, want /p/agent/", min.lastOpts.Root)
	}
	if min.lastOpts.Filename != "index.js" {
		t.Errorf("Filename = %q, want index.js", min.lastOpts.Filename)
	}
	if min.lastOpts.Content != existing {
		t.Error("existing map should ride along as content")
	}
}

func TestProcessJS_MinifiedMapSourcesStripped(t *testing.T) {
	min := &fakeMinifier{mapOut: &sourcemap.Map{
		Version:    3,
		SourceRoot: "/p/agent",
		Sources:    []string{"/p/agent/index.ts"},
	}}
	ctx := &Context{Sys: system.NewMemory(), SourceMaps: true, Minifier: min}

	_, m, err := ctx.ProcessJS("/agent/index.js", "/p/agent/index.js", "const x = 1;\n", nil)
	if err != nil {
		t.Fatalf("ProcessJS: %v", err)
	}
	if m == nil {
		t.Fatal("map expected")
	}
	if m.Sources[0] != "index.ts" {
		t.Errorf("Sources = %v, want root prefix stripped", m.Sources)
	}
	if m.SourceRoot != "" {
		t.Errorf("SourceRoot = %q, want empty", m.SourceRoot)
	}
}

func TestProcessJS_NoMinifierKeepsCode(t *testing.T) {
	ctx := &Context{Sys: system.NewMemory(), SourceMaps: true}
	code, _, err := ctx.ProcessJS("/agent/index.js", "/p/agent/index.js", "const x = 1;\n", nil)
	if err != nil {
		t.Fatalf("ProcessJS: %v", err)
	}
	if code != "const x = 1;\n" {
		t.Errorf("code = %q", code)
	}
}
