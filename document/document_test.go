package document_test

import (
	"reflect"
	"testing"
	"time"

	"pbc/document"
	"pbc/schema"
	"pbc/styles"
)

func TestNew(t *testing.T) {
	d := document.New("Über uns")
	if d.Slug != "uber-uns" {
		t.Errorf("slug = %q", d.Slug)
	}
	if d.Status != document.StatusDraft {
		t.Errorf("status = %q", d.Status)
	}
	if !d.IsVisible || !d.ShowNavigationBar {
		t.Error("visibility defaults should be on")
	}
	if d.RenderBodyOnly {
		t.Error("render_body_only should default off")
	}
	if d.Blocks == nil || len(d.Blocks) != 0 {
		t.Errorf("blocks = %#v, want empty", d.Blocks)
	}
	if d.CustomNavItems != nil {
		t.Errorf("custom nav should start nil, got %#v", d.CustomNavItems)
	}
}

func TestCloneIsolation(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := document.New("Home")
	d.Blocks = []schema.Block{{
		ID:    "b1",
		Type:  "rich_text",
		Props: map[string]any{"html": "<p>hi</p>"},
	}}
	d.CustomNavItems = []string{"home", "contact"}
	d.PublishedAt = &when
	d.LayoutOverrides = map[string][]schema.Block{
		"de": {{ID: "b2", Type: "rich_text", Props: map[string]any{"html": "<p>hallo</p>"}}},
	}

	c := d.Clone()
	c.Blocks[0].Props["html"] = "changed"
	c.CustomNavItems[0] = "other"
	*c.PublishedAt = when.Add(time.Hour)
	c.LayoutOverrides["de"][0].Props["html"] = "geändert"

	if got := d.Blocks[0].Props["html"]; got != "<p>hi</p>" {
		t.Errorf("shared blocks leaked: %v", got)
	}
	if d.CustomNavItems[0] != "home" {
		t.Errorf("nav items leaked: %v", d.CustomNavItems)
	}
	if !d.PublishedAt.Equal(when) {
		t.Errorf("published_at leaked: %v", d.PublishedAt)
	}
	if got := d.LayoutOverrides["de"][0].Props["html"]; got != "<p>hallo</p>" {
		t.Errorf("override blocks leaked: %v", got)
	}

	if (*document.PageDocument)(nil).Clone() != nil {
		t.Error("nil clone should stay nil")
	}
}

func TestNormalize(t *testing.T) {
	reg := schema.NewRegistry()
	when := time.Now().UTC()

	d := &document.PageDocument{
		Title:       "About the Band",
		Status:      document.Status("archived"),
		PublishedAt: &when,
		Blocks:      []schema.Block{{ID: "b1", Type: "rich_text"}},
		Theme: styles.Theme{
			Body: styles.StyleValue{TextColor: "#ABC", FontFamily: "bogus"},
		},
		LayoutOverrides: map[string][]schema.Block{
			"de": {{ID: "b2", Type: "rich_text"}},
		},
	}
	document.Normalize(reg, d)

	if d.Slug != "about-the-band" {
		t.Errorf("slug = %q", d.Slug)
	}
	if d.Status != document.StatusDraft {
		t.Errorf("invalid status should fall back to draft, got %q", d.Status)
	}
	if d.PublishedAt != nil {
		t.Error("unpublished page kept a publication timestamp")
	}
	if got := d.Theme.Body; got != (styles.StyleValue{TextColor: "#aabbcc"}) {
		t.Errorf("theme body = %+v", got)
	}
	if got := d.Blocks[0].Props["html"]; got != "" {
		t.Errorf("shared block not normalized: %#v", d.Blocks[0].Props)
	}
	if got := d.LayoutOverrides["de"][0].Props["html"]; got != "" {
		t.Errorf("override block not normalized: %#v", d.LayoutOverrides["de"][0].Props)
	}

	var nilBlocks document.PageDocument
	document.Normalize(reg, &nilBlocks)
	if nilBlocks.Blocks == nil {
		t.Error("nil blocks should become empty")
	}

	document.Normalize(reg, nil)
}

func TestPublishCycle(t *testing.T) {
	first := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	d := document.New("News")
	d.Publish(first)
	if d.Status != document.StatusPublished {
		t.Fatalf("status = %q", d.Status)
	}
	if d.PublishedAt == nil || !d.PublishedAt.Equal(first) {
		t.Fatalf("published_at = %v", d.PublishedAt)
	}

	// Republishing keeps the original timestamp.
	d.Publish(later)
	if !d.PublishedAt.Equal(first) {
		t.Errorf("republish moved the timestamp to %v", d.PublishedAt)
	}

	d.Unpublish()
	if d.Status != document.StatusDraft || d.PublishedAt != nil {
		t.Errorf("unpublish left %q / %v", d.Status, d.PublishedAt)
	}

	// After a full cycle the next publish stamps fresh.
	d.Publish(later)
	if !d.PublishedAt.Equal(later) {
		t.Errorf("fresh publish = %v, want %v", d.PublishedAt, later)
	}
}

func TestBlocksForLanguage(t *testing.T) {
	shared := []schema.Block{{ID: "s1", Type: "rich_text", Props: map[string]any{"html": "shared"}}}
	german := []schema.Block{{ID: "g1", Type: "rich_text", Props: map[string]any{"html": "deutsch"}}}

	d := document.New("Home")
	d.Blocks = shared
	d.LayoutOverrides = map[string][]schema.Block{
		"de": german,
		"fr": {},
	}

	tests := []struct {
		name   string
		lang   string
		wantID string
	}{
		{name: "empty tag selects shared", lang: "", wantID: "s1"},
		{name: "override wins", lang: "de", wantID: "g1"},
		{name: "tag canonicalized", lang: "DE", wantID: "g1"},
		{name: "empty override falls back", lang: "fr", wantID: "s1"},
		{name: "no override falls back", lang: "en", wantID: "s1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.BlocksForLanguage(tc.lang)
			if err != nil {
				t.Fatalf("BlocksForLanguage(%q): %v", tc.lang, err)
			}
			if len(got) != 1 || got[0].ID != tc.wantID {
				t.Fatalf("BlocksForLanguage(%q) = %+v", tc.lang, got)
			}
		})
	}

	if _, err := d.BlocksForLanguage("not a tag"); err == nil {
		t.Error("malformed tag accepted")
	}

	got, err := d.BlocksForLanguage("de")
	if err != nil {
		t.Fatal(err)
	}
	got[0].Props["html"] = "mutated"
	if german[0].Props["html"] != "deutsch" {
		t.Error("returned layout aliases the stored one")
	}
}

func TestSetBlocksForLanguage(t *testing.T) {
	d := document.New("Home")
	d.Blocks = []schema.Block{{ID: "s1", Type: "rich_text"}}

	override := []schema.Block{{ID: "g1", Type: "rich_text"}}
	if err := d.SetBlocksForLanguage("DE", override, true); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.LayoutOverrides["de"]; !ok {
		t.Fatalf("override keys = %v, want canonical de", keysOf(d.LayoutOverrides))
	}

	// Writing without override replaces the shared layout and releases the
	// language back to it.
	replacement := []schema.Block{{ID: "s2", Type: "rich_text"}}
	if err := d.SetBlocksForLanguage("de", replacement, false); err != nil {
		t.Fatal(err)
	}
	if len(d.Blocks) != 1 || d.Blocks[0].ID != "s2" {
		t.Errorf("shared layout = %+v", d.Blocks)
	}
	if _, ok := d.LayoutOverrides["de"]; ok {
		t.Error("override survived a shared write")
	}

	if err := d.SetBlocksForLanguage("not a tag", nil, true); err == nil {
		t.Error("malformed tag accepted")
	}

	// Stored overrides are copies.
	if err := d.SetBlocksForLanguage("de", override, true); err != nil {
		t.Fatal(err)
	}
	override[0].ID = "mutated"
	if d.LayoutOverrides["de"][0].ID != "g1" {
		t.Error("stored override aliases the caller's slice")
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, s := range []document.Status{
		document.StatusDraft, document.StatusReview, document.StatusPublished,
	} {
		parsed, err := document.ParseStatus(s.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", s, err)
		}
		if parsed != s {
			t.Errorf("round trip %q -> %q", s, parsed)
		}
	}
	if _, err := document.ParseStatus("archived"); err == nil {
		t.Error("unknown status parsed")
	}
	if document.Status("archived").IsValid() {
		t.Error("unknown status reported valid")
	}
}

func keysOf(m map[string][]schema.Block) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestCloneDeepEqual(t *testing.T) {
	d := document.New("Home")
	d.Blocks = []schema.Block{{ID: "b1", Type: "hero", Props: map[string]any{"heading": "Hi"}}}
	d.CustomNavItems = []string{}
	if c := d.Clone(); !reflect.DeepEqual(c, d) {
		t.Errorf("clone differs:\n got %+v\nwant %+v", c, d)
	}
}
