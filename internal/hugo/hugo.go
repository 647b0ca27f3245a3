// Package hugo runs the hugo binary to learn what the site will publish.
package hugo

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bianoble/cloudcannon-hugo/internal/paths"
)

// DefaultBin is the binary run when Client.Bin is empty.
const DefaultBin = "hugo"

// Runner executes an external command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &CommandError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return out, nil
}

// CommandError is a failed hugo invocation.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Command, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Client invokes hugo for a site.
type Client struct {
	Runner Runner
	Bin    string

	// Source is the site directory hugo runs in.
	Source      string
	Environment string
	ConfigFiles []string
	ConfigDir   string
	// BaseURL overrides the configured baseURL when set.
	BaseURL string
}

func (c *Client) runner() Runner {
	if c.Runner == nil {
		return ExecRunner{}
	}
	return c.Runner
}

func (c *Client) bin() string {
	if c.Bin == "" {
		return DefaultBin
	}
	return c.Bin
}

func (c *Client) siteArgs() []string {
	var args []string
	if c.Environment != "" {
		args = append(args, "--environment", c.Environment)
	}
	if len(c.ConfigFiles) > 0 {
		args = append(args, "--config", strings.Join(c.ConfigFiles, ","))
	}
	if c.ConfigDir != "" {
		args = append(args, "--configDir", c.ConfigDir)
	}
	if c.BaseURL != "" {
		args = append(args, "--baseURL", c.BaseURL)
	}
	return args
}

// ListAll runs "hugo list all" and maps each listed source path to its
// permalink, with baseURL stripped so the result is site-relative.
func (c *Client) ListAll(ctx context.Context, baseURL string) (map[string]string, error) {
	args := append([]string{"list", "all", "--buildDrafts", "--buildFuture", "--buildExpired"}, c.siteArgs()...)
	out, err := c.runner().Run(ctx, c.Source, c.bin(), args...)
	if err != nil {
		return nil, err
	}
	return ParseList(bytes.NewReader(out), baseURL)
}

// ParseList reads the CSV written by "hugo list". Columns are located by
// header name so the layout may vary between hugo releases.
func ParseList(r io.Reader, baseURL string) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading hugo list header: %w", err)
	}
	pathCol, linkCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "path":
			pathCol = i
		case "permalink":
			linkCol = i
		}
	}
	if pathCol < 0 || linkCol < 0 {
		return nil, fmt.Errorf("hugo list output has no path/permalink columns: %v", header)
	}

	urls := make(map[string]string)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading hugo list: %w", err)
		}
		if len(rec) <= pathCol || len(rec) <= linkCol {
			continue
		}
		p := paths.Normalize(filepath.ToSlash(rec[pathCol]))
		if p == "" {
			continue
		}
		urls[p] = StripBaseURL(rec[linkCol], baseURL)
	}
	return urls, nil
}

// StripBaseURL makes permalink relative to baseURL. Permalinks on another
// host keep only their path.
func StripBaseURL(permalink, baseURL string) string {
	base := strings.TrimSuffix(baseURL, "/")
	if base != "" && strings.HasPrefix(permalink, base) {
		rel := strings.TrimPrefix(permalink, base)
		if rel == "" {
			return "/"
		}
		if strings.HasPrefix(rel, "/") {
			return rel
		}
	}
	u, err := url.Parse(permalink)
	if err != nil || u.Host == "" {
		return permalink
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

var versionRe = regexp.MustCompile(`v(\d+\.\d+(?:\.\d+)?)`)

// Version runs "hugo version" and returns the version number, such as "0.121.1".
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.runner().Run(ctx, c.Source, c.bin(), "version")
	if err != nil {
		return "", err
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts the version number from "hugo version" output.
func ParseVersion(out string) (string, error) {
	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("unrecognised hugo version output: %q", strings.TrimSpace(out))
	}
	return m[1], nil
}
