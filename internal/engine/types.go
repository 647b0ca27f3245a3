package engine

import (
	"encoding/json"
	"maps"

	"github.com/bianoble/cloudcannon-hugo/internal/collection"
	"github.com/bianoble/cloudcannon-hugo/internal/config"
)

// DescriptorVersion is the info.json schema version this tool writes.
const DescriptorVersion = "0.0.3"

// ToolInfo names the program that produced the descriptor.
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// GeneratorInfo describes the site generator.
type GeneratorInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Environment string         `json:"environment"`
	Metadata    map[string]any `json:"metadata"`
}

// Multilingual describes a site's languages.
type Multilingual struct {
	Languages             []string `json:"languages"`
	DefaultLanguage       string   `json:"defaultContentLanguage"`
	DefaultLanguageSubdir bool     `json:"defaultContentLanguageInSubdir"`
}

// Descriptor is the info.json document.
type Descriptor struct {
	Time              string
	Version           string
	CloudCannon       ToolInfo
	Generator         GeneratorInfo
	Source            string
	BaseURL           string
	Paths             map[string]string
	Multilingual      *Multilingual
	CollectionsConfig map[string]collection.Entry
	Collections       map[string][]collection.Item
	// Data is nil when data is disabled, which leaves it out of the document.
	Data map[string]any

	// Passthrough holds editor settings copied from the site configuration.
	Passthrough map[string]any

	// PublishDir is where the descriptor is written. Not serialised, nor
	// are the fields below.
	PublishDir string
	// Fragments records how each config fragment loaded.
	Fragments []config.FragmentInfo
	// Skipped counts files left out by collections_config_override.
	Skipped map[string]int
}

// passthroughKeys are configuration keys copied into the descriptor unchanged.
var passthroughKeys = []string{
	"collection_groups",
	"editor",
	"source_editor",
	"_inputs",
	"_structures",
	"_select_data",
	"_editables",
	"_enabled_editors",
	"_comments",
	"_options",
	"_array_structures",
}

// Map flattens the descriptor into the serialised document.
func (d *Descriptor) Map() map[string]any {
	out := make(map[string]any, len(d.Passthrough)+12)
	maps.Copy(out, d.Passthrough)
	out["time"] = d.Time
	out["version"] = d.Version
	out["cloudcannon"] = d.CloudCannon
	out["generator"] = d.Generator
	out["source"] = d.Source
	out["base_url"] = d.BaseURL
	out["paths"] = d.Paths
	out["collections_config"] = d.CollectionsConfig
	out["collections"] = d.Collections
	if d.Multilingual != nil {
		out["multilingual"] = d.Multilingual
	}
	if d.Data != nil {
		out["data"] = d.Data
	}
	return out
}

func (d *Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// ItemCount is the number of items across all collections.
func (d *Descriptor) ItemCount() int {
	n := 0
	for _, items := range d.Collections {
		n += len(items)
	}
	return n
}
