package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// writeSite creates a small Hugo site in a temporary directory.
func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"hugo.toml":              "baseURL = \"https://example.com/\"\ntitle = \"Test\"\n",
		"content/posts/hello.md": "---\ntitle: Hello\n---\nbody\n",
		"content/about.md":       "---\ntitle: About\n---\n",
		"data/site.yml":          "name: Test\n",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// testSettings points at dir and a hugo binary that does not exist, so URLs
// come from file names.
func testSettings(dir string) settings {
	return settings{
		source:  dir,
		hugoBin: filepath.Join(dir, "no-such-hugo"),
		quiet:   true,
	}
}

func runOnce(t *testing.T, s settings) error {
	t.Helper()
	client, err := newClient(s, log.New(io.Discard))
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	return generateOnce(context.Background(), client, s, log.New(io.Discard))
}

func TestGenerateOnceWritesDescriptor(t *testing.T) {
	dir := writeSite(t)
	out, _ := captureOutput(t)
	s := testSettings(dir)
	s.quiet = false

	if err := runOnce(t, s); err != nil {
		t.Fatalf("generate: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "public", "_cloudcannon", "info.json"))
	if err != nil {
		t.Fatalf("read descriptor: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("descriptor is not JSON: %v", err)
	}
	collections, _ := doc["collections"].(map[string]any)
	if _, ok := collections["posts"]; !ok {
		t.Errorf("collections = %v", collections)
	}
	if !strings.Contains(out.String(), "public/_cloudcannon/info.json") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestGenerateOnceDryRunPrints(t *testing.T) {
	dir := writeSite(t)
	out, _ := captureOutput(t)
	s := testSettings(dir)
	s.dryRun = true

	if err := runOnce(t, s); err != nil {
		t.Fatalf("generate: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("stdout is not the descriptor: %v\n%s", err, out.String())
	}
	if doc["version"] != "0.0.3" {
		t.Errorf("version = %v", doc["version"])
	}
	if _, err := os.Stat(filepath.Join(dir, "public")); !os.IsNotExist(err) {
		t.Error("dry run should not create the publish directory")
	}
}

func TestGenerateOnceWriteFailure(t *testing.T) {
	dir := writeSite(t)
	captureOutput(t)
	// A file where the publish directory should be makes the write fail.
	if err := os.WriteFile(filepath.Join(dir, "public"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := testSettings(dir)
	if err := runOnce(t, s); err != nil {
		t.Errorf("write failure should not fail the run by default: %v", err)
	}

	s.strictWrite = true
	if err := runOnce(t, s); err == nil {
		t.Error("expected an error with strict writes")
	}
}

func TestGenerateOnceHonoursFlags(t *testing.T) {
	dir := writeSite(t)
	captureOutput(t)
	s := testSettings(dir)
	s.flags.Destination = "dist"

	if err := runOnce(t, s); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", "_cloudcannon", "info.json")); err != nil {
		t.Errorf("descriptor not under --destination: %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	dir := writeSite(t)
	if err := os.MkdirAll(filepath.Join(dir, "config", "_default"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "_default", "params.toml"), []byte("author = \"Jane\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _ := captureOutput(t)

	v.Set("source", dir)
	configShow = true
	t.Cleanup(func() {
		v.Set("source", "")
		configShow = false
	})

	if err := configCmd.RunE(configCmd, nil); err != nil {
		t.Fatalf("config: %v", err)
	}
	got := out.String()
	for _, want := range []string{"hugo.toml", "config/_default/params.toml -> params", "content:", "public", "author: Jane"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
