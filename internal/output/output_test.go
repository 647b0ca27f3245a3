package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestValidatePath(t *testing.T) {
	for _, ok := range []string{"public/_cloudcannon/info.json", "./dist//x.json", "/abs/inside.json"} {
		if _, err := ValidatePath(ok); err != nil {
			t.Errorf("ValidatePath(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"../outside.json", "public/../../x", "", "."} {
		if _, err := ValidatePath(bad); err == nil {
			t.Errorf("ValidatePath(%q) should fail", bad)
		}
	}
}

func TestSafeWriteLeavesNoTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()

	if err := SafeWrite(fsys, "public/_cloudcannon/info.json", []byte("{}"), 0o644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	entries, err := afero.ReadDir(fsys, "public/_cloudcannon")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "info.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only info.json", names)
	}
}

func TestSafeWriteOverwrites(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = SafeWrite(fsys, "out.json", []byte("old"), 0o644)
	if err := SafeWrite(fsys, "out.json", []byte("new"), 0o644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}
	got, _ := afero.ReadFile(fsys, "out.json")
	if string(got) != "new" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteDescriptor(t *testing.T) {
	fsys := afero.NewMemMapFs()

	target, n, err := WriteDescriptor(fsys, "/public/", map[string]any{"version": "0.0.3"})
	if err != nil {
		t.Fatalf("WriteDescriptor: %v", err)
	}
	if target != "public/_cloudcannon/info.json" {
		t.Errorf("target = %q", target)
	}

	data, _ := afero.ReadFile(fsys, target)
	if len(data) != n {
		t.Errorf("reported %d bytes, wrote %d", n, len(data))
	}
	if !strings.HasSuffix(string(data), "\n") || !strings.Contains(string(data), "\n  \"version\"") {
		t.Errorf("descriptor not indented: %q", data)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil || back["version"] != "0.0.3" {
		t.Errorf("round trip = %v, %v", back, err)
	}
}

func TestWriteDescriptorReadOnlyFs(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if _, _, err := WriteDescriptor(fsys, "public", map[string]any{}); err == nil {
		t.Error("expected a write failure on a read-only filesystem")
	}
}
