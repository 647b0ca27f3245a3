// Package output writes the generated descriptor into the site's publish directory.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"github.com/spf13/afero"
)

// InfoPath is the descriptor's location relative to the publish directory.
const InfoPath = "_cloudcannon/info.json"

// ValidatePath checks that relPath stays inside the root of fsys and returns
// it normalised.
func ValidatePath(relPath string) (string, error) {
	for _, seg := range strings.Split(strings.ReplaceAll(relPath, "\\", "/"), "/") {
		if seg == ".." {
			return "", fmt.Errorf("path %q escapes the site source", relPath)
		}
	}
	p := paths.Normalize(relPath)
	if p == "" {
		return "", fmt.Errorf("path %q names the site source itself", relPath)
	}
	return p, nil
}

// SafeWrite atomically writes content to relPath inside fsys.
func SafeWrite(fsys afero.Fs, relPath string, content []byte, perm os.FileMode) error {
	target, err := ValidatePath(relPath)
	if err != nil {
		return err
	}

	dir := path.Dir(target)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write to a temp file in the same directory so the rename stays on one filesystem.
	tmp, err := afero.TempFile(fsys, dir, ".cloudcannon-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = fsys.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := fsys.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := fsys.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", target, err)
	}

	success = true
	return nil
}

// Marshal encodes the descriptor as indented JSON with a trailing newline.
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding descriptor: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteDescriptor writes v to <publishDir>/_cloudcannon/info.json and returns
// the written path and its size in bytes.
func WriteDescriptor(fsys afero.Fs, publishDir string, v any) (string, int, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", 0, err
	}
	target := path.Join(paths.Normalize(publishDir), InfoPath)
	if err := SafeWrite(fsys, target, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("writing %s: %w", target, err)
	}
	return target, len(data), nil
}
