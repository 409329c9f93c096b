// Package document holds the authoring model of a page: block layout,
// theme, navigation settings and publication state, together with payload
// application and serialization for the authoring API.
package document

import (
	"fmt"
	"slices"
	"time"

	"github.com/gosimple/slug"
	"golang.org/x/text/language"

	"pbc/schema"
	"pbc/styles"
)

// Status is the publication state of a page.
// ENUM(draft, review, published)
type Status string

// PageDocument is a single page under construction. Blocks is the shared
// layout; LayoutOverrides holds full replacement layouts keyed by canonical
// BCP-47 tags. CustomNavItems is tri-state: nil derives navigation from the
// page tree, an empty list renders none, a non-empty list renders exactly
// those slugs.
type PageDocument struct {
	Title             string                    `json:"title"`
	Slug              string                    `json:"slug"`
	Summary           string                    `json:"summary"`
	Body              string                    `json:"body"`
	Status            Status                    `json:"status"`
	PublishedAt       *time.Time                `json:"published_at,omitempty"`
	IsVisible         bool                      `json:"is_visible"`
	NavigationOrder   int                       `json:"navigation_order"`
	RenderBodyOnly    bool                      `json:"render_body_only"`
	ShowNavigationBar bool                      `json:"show_navigation_bar"`
	Blocks            []schema.Block            `json:"blocks"`
	Theme             styles.Theme              `json:"theme"`
	CustomNavItems    []string                  `json:"custom_nav_items"`
	CustomCSS         string                    `json:"custom_css,omitempty"`
	CustomJS          string                    `json:"custom_js,omitempty"`
	LayoutOverrides   map[string][]schema.Block `json:"layout_overrides,omitempty"`
}

// New creates a draft document with the model defaults.
func New(title string) *PageDocument {
	return &PageDocument{
		Title:             title,
		Slug:              slug.Make(title),
		Status:            StatusDraft,
		IsVisible:         true,
		ShowNavigationBar: true,
		Blocks:            []schema.Block{},
	}
}

// Clone returns a deep copy.
func (d *PageDocument) Clone() *PageDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Blocks = cloneBlocks(d.Blocks)
	out.CustomNavItems = slices.Clone(d.CustomNavItems)
	if d.PublishedAt != nil {
		t := *d.PublishedAt
		out.PublishedAt = &t
	}
	if d.LayoutOverrides != nil {
		out.LayoutOverrides = make(map[string][]schema.Block, len(d.LayoutOverrides))
		for lang, blocks := range d.LayoutOverrides {
			out.LayoutOverrides[lang] = cloneBlocks(blocks)
		}
	}
	return &out
}

func cloneBlocks(blocks []schema.Block) []schema.Block {
	if blocks == nil {
		return nil
	}
	out := make([]schema.Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Clone()
	}
	return out
}

// Normalize makes the document canonical: slug fallback from the title,
// validated status, normalized theme, and registry normalization of the
// shared layout and every language override. Pages that are not published
// carry no publication timestamp.
func Normalize(reg *schema.Registry, doc *PageDocument) {
	if doc == nil {
		return
	}
	if doc.Slug == "" {
		doc.Slug = slug.Make(doc.Title)
	}
	if !doc.Status.IsValid() {
		doc.Status = StatusDraft
	}
	doc.Theme = styles.NormalizeTheme(doc.Theme)
	doc.Blocks = normalizeBlocks(reg, doc.Blocks)
	if doc.Blocks == nil {
		doc.Blocks = []schema.Block{}
	}
	for lang, blocks := range doc.LayoutOverrides {
		doc.LayoutOverrides[lang] = normalizeBlocks(reg, blocks)
	}
	if doc.Status != StatusPublished {
		doc.PublishedAt = nil
	}
}

func normalizeBlocks(reg *schema.Registry, blocks []schema.Block) []schema.Block {
	if blocks == nil {
		return nil
	}
	out := make([]schema.Block, len(blocks))
	for i, b := range blocks {
		out[i] = reg.NormalizeBlock(b)
	}
	return out
}

// Publish moves the page to published, stamping PublishedAt on the first
// publish only.
func (d *PageDocument) Publish(now time.Time) {
	d.Status = StatusPublished
	if d.PublishedAt == nil {
		t := now.UTC()
		d.PublishedAt = &t
	}
}

// Unpublish returns the page to draft and clears the publication timestamp.
func (d *PageDocument) Unpublish() {
	d.Status = StatusDraft
	d.PublishedAt = nil
}

// BlocksForLanguage returns a deep copy of the layout for the given BCP-47
// tag: the language's override when present and non-empty, the shared layout
// otherwise. An empty tag selects the shared layout.
func (d *PageDocument) BlocksForLanguage(lang string) ([]schema.Block, error) {
	if lang == "" {
		return cloneBlocks(d.Blocks), nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid language tag %q: %w", lang, err)
	}
	if blocks, ok := d.LayoutOverrides[tag.String()]; ok && len(blocks) > 0 {
		return cloneBlocks(blocks), nil
	}
	return cloneBlocks(d.Blocks), nil
}

// SetBlocksForLanguage stores blocks as the language's override layout, or,
// when override is false, as the shared layout (dropping that language's
// override so it follows the shared one again).
func (d *PageDocument) SetBlocksForLanguage(lang string, blocks []schema.Block, override bool) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language tag %q: %w", lang, err)
	}
	key := tag.String()
	if !override {
		d.Blocks = cloneBlocks(blocks)
		delete(d.LayoutOverrides, key)
		return nil
	}
	if d.LayoutOverrides == nil {
		d.LayoutOverrides = make(map[string][]schema.Block)
	}
	d.LayoutOverrides[key] = cloneBlocks(blocks)
	return nil
}
