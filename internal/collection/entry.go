package collection

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"github.com/spf13/cast"
)

// Entry is one collections_config entry. Keys this package does not
// interpret are kept in Extra and written back unchanged.
type Entry struct {
	Path             string
	Output           bool
	Filter           string
	ParseBranchIndex bool
	AutoDiscovered   bool
	Extra            map[string]any
}

var entryKeys = []string{"path", "output", "filter", "parse_branch_index", "auto_discovered"}

// EntryFromConfig decodes a raw collections_config value. Anything other than
// a mapping yields an empty entry.
func EntryFromConfig(raw any) Entry {
	m, _ := raw.(map[string]any)
	e := Entry{
		Path:             paths.Normalize(cast.ToString(m["path"])),
		Output:           cast.ToBool(m["output"]),
		Filter:           cast.ToString(m["filter"]),
		ParseBranchIndex: cast.ToBool(m["parse_branch_index"]),
		AutoDiscovered:   cast.ToBool(m["auto_discovered"]),
	}
	for k, v := range m {
		if slices.Contains(entryKeys, k) {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]any)
		}
		e.Extra[k] = v
	}
	return e
}

// EntriesFromConfig decodes a collections_config mapping.
func EntriesFromConfig(raw map[string]any) map[string]Entry {
	out := make(map[string]Entry, len(raw))
	for k, v := range raw {
		out[k] = EntryFromConfig(v)
	}
	return out
}

// setDefaultSchema records an archetype as the collection's default schema
// unless one is configured.
func (e *Entry) setDefaultSchema(archetype string) {
	schemas, _ := e.Extra["schemas"].(map[string]any)
	if _, ok := schemas["default"]; ok {
		return
	}
	next := make(map[string]any, len(schemas)+1)
	maps.Copy(next, schemas)
	next["default"] = map[string]any{"path": archetype}
	if e.Extra == nil {
		e.Extra = make(map[string]any)
	}
	e.Extra["schemas"] = next
}

// Map flattens the entry into the form written to the descriptor.
func (e Entry) Map() map[string]any {
	out := make(map[string]any, len(e.Extra)+5)
	maps.Copy(out, e.Extra)
	out["path"] = e.Path
	out["output"] = e.Output
	if e.Filter != "" {
		out["filter"] = e.Filter
	}
	if e.ParseBranchIndex {
		out["parse_branch_index"] = true
	}
	if e.AutoDiscovered {
		out["auto_discovered"] = true
	}
	return out
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}

// Item is one file in a collection. Fields holds the file's front matter (or
// decoded contents for data files) with draft replaced by published.
type Item struct {
	URL         string
	Path        string
	Collection  string
	ContentPath string
	Layout      string
	Output      bool
	Fields      map[string]any
}

// Map flattens the item into the form written to the descriptor. The item's
// own keys take precedence over front matter of the same name.
func (it Item) Map() map[string]any {
	out := make(map[string]any, len(it.Fields)+6)
	maps.Copy(out, it.Fields)
	out["url"] = it.URL
	out["path"] = it.Path
	out["collection"] = it.Collection
	out["output"] = it.Output
	if it.ContentPath != "" {
		out["content_path"] = it.ContentPath
	}
	if it.Layout != "" {
		out["layout"] = it.Layout
	}
	return out
}

func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.Map())
}
