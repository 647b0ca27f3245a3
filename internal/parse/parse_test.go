package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestFormatForPath(t *testing.T) {
	cases := map[string]Format{
		"config.toml":          FormatTOML,
		"data/authors.yml":     FormatYAML,
		"config/_default.YAML": FormatYAML,
		"data/nav.json":        FormatJSON,
		"content/post.md":      FormatUnknown,
	}
	for p, want := range cases {
		if got := FormatForPath(p); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestDecodeNestedYAML(t *testing.T) {
	m, err := Decode([]byte("title: Site\nparams:\n  author:\n    name: Jo\n  tags: [a, b]\n"), FormatYAML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := map[string]any{
		"title": "Site",
		"params": map[string]any{
			"author": map[string]any{"name": "Jo"},
			"tags":   []any{"a", "b"},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("decoded YAML mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTOML(t *testing.T) {
	m, err := Decode([]byte("baseURL = \"https://example.com/\"\n[params]\nshow = true\n"), FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m["baseURL"] != "https://example.com/" {
		t.Errorf("baseURL = %v", m["baseURL"])
	}
	params, ok := m["params"].(map[string]any)
	if !ok || params["show"] != true {
		t.Errorf("params = %#v", m["params"])
	}
}

func TestDecodeJSON(t *testing.T) {
	m, err := Decode([]byte(`{"menu": {"main": [{"name": "Home"}]}}`), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	menu := m["menu"].(map[string]any)
	entries := menu["main"].([]any)
	if len(entries) != 1 || entries[0].(map[string]any)["name"] != "Home" {
		t.Errorf("menu = %#v", menu)
	}
}

func TestDecodeUnknownFormatReturnsNothing(t *testing.T) {
	m, err := Decode([]byte("anything"), FormatUnknown)
	if err != nil || m != nil {
		t.Errorf("Decode unknown = %v, %v; want nil, nil", m, err)
	}
}

func TestDecodeEmptyYieldsEmptyMap(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		m, err := Decode(nil, f)
		if err != nil {
			t.Errorf("%s: unexpected error %v", f, err)
		}
		if m == nil || len(m) != 0 {
			t.Errorf("%s: got %#v, want empty map", f, m)
		}
	}
}

func TestDecodeTOMLErrorHasPosition(t *testing.T) {
	_, err := Decode([]byte("title = \"ok\"\nbroken = \n"), FormatTOML)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
}

func TestDecodeYAMLErrorHasPosition(t *testing.T) {
	_, err := Decode([]byte("a: 1\nb: [unclosed\nc: 2\n"), FormatYAML)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if perr.Line == 0 {
		t.Errorf("expected a line number in %v", perr)
	}
}

func TestDecodeRejectsNonMappingRoot(t *testing.T) {
	if _, err := Decode([]byte("- a\n- b\n"), FormatYAML); err == nil {
		t.Fatal("expected error for list root")
	}
	v, err := DecodeValue([]byte("- a\n- b\n"), FormatYAML)
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if list, ok := v.([]any); !ok || len(list) != 2 {
		t.Errorf("DecodeValue = %#v", v)
	}
}

func TestFileSetsPathOnError(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = afero.WriteFile(fsys, "config.toml", []byte("= nope"), 0o644)

	_, err := File(fsys, "config.toml")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "config.toml") {
		t.Errorf("error should start with the path: %v", err)
	}
}

func TestNormalizeConvertsInterfaceKeys(t *testing.T) {
	got := Normalize(map[any]any{1: map[any]any{"x": []any{map[any]any{true: "y"}}}})
	want := map[string]any{"1": map[string]any{"x": []any{map[string]any{"true": "y"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}
