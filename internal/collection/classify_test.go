package collection

import (
	"testing"

	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"pgregory.net/rapid"
)

var site = paths.Resolve(nil)

func classify(t *testing.T, c *Classifier, p string) string {
	t.Helper()
	key, ok := c.Classify(p)
	if !ok {
		return "<none>"
	}
	return key
}

func TestClassifyRenamedCollectionAppliesToNestedFiles(t *testing.T) {
	c := NewClassifier(site, map[string]Entry{"renamed": {Path: "content/coll"}}, nil)

	if got := classify(t, c, "content/coll/nested/file/item.md"); got != "renamed" {
		t.Errorf("nested file = %q, want renamed", got)
	}
	if got := classify(t, c, "content/collOther/item.md"); got == "renamed" {
		t.Error("content/collOther must not match the content/coll prefix")
	}
}

func TestClassifyPrefixNeverMatchesSibling(t *testing.T) {
	segment := rapid.StringMatching(`[a-z]{1,6}`)
	rapid.Check(t, func(t *rapid.T) {
		name := segment.Draw(t, "name")
		suffix := segment.Draw(t, "suffix")
		c := NewClassifier(site, map[string]Entry{"renamed": {Path: "content/" + name}}, nil)

		if key, _ := c.Classify("content/" + name + suffix + "/item.md"); key == "renamed" {
			t.Fatalf("content/%s%s/item.md matched content/%s", name, suffix, name)
		}
		if key, _ := c.Classify("content/" + name + "/deep/er/item.md"); key != "renamed" {
			t.Fatalf("nested file classified as %q", key)
		}
	})
}

func TestClassifyFolderFallback(t *testing.T) {
	c := NewClassifier(site, nil, nil)

	cases := map[string]string{
		"content/posts/_index.md":        "posts",
		"content/posts/post.md":          "posts",
		"content/posts/bundle/index.md":  "posts",
		"content/about.md":               "pages",
		"content/_index.md":              "pages",
		"layouts/_default/single.html":   "<none>",
		"static/uploads/image.png":       "<none>",
		"themes/x/content/posts/item.md": "<none>",
	}
	for p, want := range cases {
		if got := classify(t, c, p); got != want {
			t.Errorf("Classify(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestClassifyLanguagePrefix(t *testing.T) {
	c := NewClassifier(site, nil, []string{"en", "fr"})

	if got := classify(t, c, "content/fr/posts/post.md"); got != "posts" {
		t.Errorf("got %q, want posts", got)
	}
	if got := classify(t, c, "content/fr/about.md"); got != "pages" {
		t.Errorf("got %q, want pages", got)
	}
}

func TestClassifyDeepestExplicitAncestorWins(t *testing.T) {
	c := NewClassifier(site, map[string]Entry{
		"docs": {Path: "content/docs"},
		"api":  {Path: "content/docs/api"},
	}, nil)

	if got := classify(t, c, "content/docs/api/v1/endpoint.md"); got != "api" {
		t.Errorf("got %q, want api", got)
	}
	if got := classify(t, c, "content/docs/guide.md"); got != "docs" {
		t.Errorf("got %q, want docs", got)
	}
}

func TestClassifyBranchIndexNeedsPermission(t *testing.T) {
	c := NewClassifier(site, map[string]Entry{
		"articles": {Path: "content/posts"},
		"notes":    {Path: "content/notes", ParseBranchIndex: true},
	}, nil)

	if got := classify(t, c, "content/posts/_index.md"); got == "articles" {
		t.Error("branch index matched a collection that does not parse branch indexes")
	}
	if got := classify(t, c, "content/posts/entry.md"); got != "articles" {
		t.Errorf("leaf = %q, want articles", got)
	}
	if got := classify(t, c, "content/notes/_index.md"); got != "notes" {
		t.Errorf("permitted branch index = %q, want notes", got)
	}
}

func TestClassifyBranchIndexVetoedByFolderConfig(t *testing.T) {
	c := NewClassifier(site, map[string]Entry{"posts": {Path: "content/posts"}}, nil)

	if got := classify(t, c, "content/posts/_index.md"); got != "pages" {
		t.Errorf("got %q, want pages", got)
	}
}

func TestClassifyExplicitOutsideContent(t *testing.T) {
	c := NewClassifier(site, map[string]Entry{"authors": {Path: "data/authors"}}, nil)

	if got := classify(t, c, "data/authors/jane.yml"); got != "authors" {
		t.Errorf("got %q, want authors", got)
	}
	if got := classify(t, c, "data/other.yml"); got != "<none>" {
		t.Errorf("got %q, want no collection", got)
	}
}

func TestClassifyArchetypes(t *testing.T) {
	c := NewClassifier(site, nil, nil)

	cases := map[string]string{
		"archetypes/default.md":        "<none>",
		"archetypes/posts.md":          "posts",
		"archetypes/events/index.md":   "events",
		"archetypes/events/banner.png": "<none>",
		"archetypes/a/b/index.md":      "<none>",
	}
	for p, want := range cases {
		if got := classify(t, c, p); got != want {
			t.Errorf("Classify(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestClassifyDefaultArchetypeUnderAnyConfig(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := map[string]Entry{}
		keys := rapid.SliceOfN(rapid.SampledFrom([]string{"default", "posts", "pages", "data", "archetypes"}), 0, 4).Draw(t, "keys")
		for _, k := range keys {
			entries[k] = Entry{
				Path:             rapid.SampledFrom([]string{"", "content", "content/" + k, "archetypes/" + k}).Draw(t, k+".path"),
				ParseBranchIndex: rapid.Bool().Draw(t, k+".pbi"),
			}
		}
		c := NewClassifier(site, entries, nil)
		if key, ok := c.Classify("archetypes/default.md"); ok {
			t.Fatalf("archetypes/default.md classified as %q", key)
		}
	})
}
