package jsonmodule

import (
	"strings"
	"testing"
)

func TestSynthesize_Object(t *testing.T) {
	got, err := Synthesize(`{"a": 1, "b-c": 2, "default": 3}`)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	want := `const d = {"a": 1, "b-c": 2, "default": 3};
export default d;
export const a = d.a;
`
	if got != want {
		t.Errorf("Synthesize =\n%s\nwant\n%s", got, want)
	}
}

func TestSynthesize_BindingAvoidsCollision(t *testing.T) {
	got, err := Synthesize(`{"d": 1}`)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.HasPrefix(got, "const d1 = ") {
		t.Errorf("binding should be d1, got:\n%s", got)
	}
	if !strings.Contains(got, "export const d = d1.d;\n") {
		t.Errorf("d should be exported off d1:\n%s", got)
	}
}

func TestSynthesize_BindingSkipsTakenNames(t *testing.T) {
	got, err := Synthesize(`{"d": 1, "d1": 2, "d2": 3}`)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.HasPrefix(got, "const d3 = ") {
		t.Errorf("binding should be d3, got:\n%s", got)
	}
}

func TestSynthesize_ExportOrderFollowsDocument(t *testing.T) {
	got, err := Synthesize(`{"zebra": 1, "apple": 2, "mango": 3}`)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	z := strings.Index(got, "export const zebra")
	a := strings.Index(got, "export const apple")
	m := strings.Index(got, "export const mango")
	if !(z < a && a < m) {
		t.Errorf("export order should follow the document:\n%s", got)
	}
}

func TestSynthesize_NonObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`[1, 2, 3]`, "export default [1, 2, 3];\n"},
		{`"hello"`, "export default \"hello\";\n"},
		{`42`, "export default 42;\n"},
		{`null`, "export default null;\n"},
	}
	for _, tc := range cases {
		got, err := Synthesize(tc.in)
		if err != nil {
			t.Fatalf("Synthesize(%s): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Synthesize(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSynthesize_TrimsWhitespace(t *testing.T) {
	got, err := Synthesize("  \n {\"a\": 1} \n ")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.HasPrefix(got, `const d = {"a": 1};`) {
		t.Errorf("whitespace should be trimmed:\n%s", got)
	}
}

func TestSynthesize_ReservedWordsExcluded(t *testing.T) {
	got, err := Synthesize(`{"class": 1, "await": 2, "let": 3, "ok": 4}`)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for _, name := range []string{"class", "await", "let"} {
		if strings.Contains(got, "export const "+name+" ") {
			t.Errorf("%s must not be exported:\n%s", name, got)
		}
	}
	if !strings.Contains(got, "export const ok = d.ok;\n") {
		t.Errorf("ok should be exported:\n%s", got)
	}
}

func TestSynthesize_InvalidJSON(t *testing.T) {
	if _, err := Synthesize(`{"a": `); err == nil {
		t.Error("invalid JSON should fail")
	}
}

func TestIsIdentifier(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"a", true},
		{"_x", true},
		{"$jq", true},
		{"a1b2", true},
		{"1a", false},
		{"b-c", false},
		{"", false},
		{"with space", false},
	}
	for _, tc := range cases {
		if got := isIdentifier(tc.in); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
