package document

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/multierr"

	"pbc/schema"
	"pbc/styles"
)

// ApplyPayload applies a presence-driven JSON patch to the document: only
// keys present in data change anything. Shaped fields (blocks, custom nav
// items, status) are validated first and their errors aggregated; on any
// validation error the document is left untouched. A successful apply ends
// with document normalization and publication timestamp upkeep.
func ApplyPayload(reg *schema.Registry, doc *PageDocument, data map[string]any) error {
	var errs error

	blocks, haveBlocks, err := blocksFromPayload(data)
	errs = multierr.Append(errs, err)

	navItems, haveNav, err := navItemsFromPayload(data)
	errs = multierr.Append(errs, err)

	status, haveStatus, err := statusFromPayload(data)
	errs = multierr.Append(errs, err)

	if errs != nil {
		return errs
	}

	if v, ok := data["title"]; ok {
		doc.Title = stringValue(v)
	}
	if v, ok := data["summary"]; ok {
		doc.Summary = stringValue(v)
	}
	if v, ok := data["body"]; ok {
		doc.Body = stringValue(v)
	}
	if v, ok := data["custom_css"]; ok {
		doc.CustomCSS = stringValue(v)
	}
	if v, ok := data["custom_js"]; ok {
		doc.CustomJS = stringValue(v)
	}
	if haveStatus {
		doc.Status = status
	}
	if v, ok := data["is_visible"]; ok {
		doc.IsVisible = truthy(v)
	}
	if v, ok := data["show_navigation_bar"]; ok {
		doc.ShowNavigationBar = truthy(v)
	}
	if v, ok := data["render_body_only"]; ok {
		doc.RenderBodyOnly = truthy(v)
	}
	if v, ok := data["slug"]; ok {
		s := slug.Make(stringValue(v))
		if s == "" {
			switch {
			case doc.Title != "":
				s = slug.Make(doc.Title)
			case doc.Slug != "":
				s = doc.Slug
			default:
				s = "page"
			}
		}
		doc.Slug = s
	}
	if haveBlocks {
		doc.Blocks = blocks
	}
	if v, ok := data["theme"]; ok {
		doc.Theme = themeFromPayload(v)
	}
	if v, ok := data["navigation_order"]; ok {
		doc.NavigationOrder = intValue(v)
	}
	if haveNav {
		doc.CustomNavItems = navItems
	}

	if doc.Status == StatusPublished && doc.PublishedAt == nil {
		now := time.Now().UTC()
		doc.PublishedAt = &now
	}

	Normalize(reg, doc)
	return nil
}

// blocksFromPayload accepts null (reset to empty) or an array of block
// objects. Array entries that are not objects drop; missing block IDs are
// assigned fresh ones.
func blocksFromPayload(data map[string]any) ([]schema.Block, bool, error) {
	raw, ok := data["blocks"]
	if !ok {
		return nil, false, nil
	}
	if raw == nil {
		return []schema.Block{}, true, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, true, errors.New("blocks must be an array")
	}
	blocks := make([]schema.Block, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		b := schema.Block{
			ID:   blockID(m["id"]),
			Type: stringValue(m["type"]),
		}
		if props, ok := m["props"].(map[string]any); ok {
			b.Props = props
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		blocks = append(blocks, b.Clone())
	}
	return blocks, true, nil
}

func navItemsFromPayload(data map[string]any) ([]string, bool, error) {
	raw, ok := data["custom_nav_items"]
	if !ok {
		return nil, false, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, true, errors.New("custom_nav_items must be an array")
	}
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		norm := normalizeNavSlug(s)
		if norm != "" && !slices.Contains(cleaned, norm) {
			cleaned = append(cleaned, norm)
		}
	}
	return cleaned, true, nil
}

// normalizeNavSlug slugifies a nav entry, mapping the reserved login marker
// and falling back to the trimmed original when nothing slugifiable remains.
func normalizeNavSlug(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "__login" {
		return "login"
	}
	if n := slug.Make(s); n != "" {
		return n
	}
	return trimmed
}

func statusFromPayload(data map[string]any) (Status, bool, error) {
	raw, ok := data["status"]
	if !ok {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", true, errors.New("status must be a string")
	}
	status, err := ParseStatus(s)
	if err != nil {
		return "", true, err
	}
	return status, true, nil
}

// themeFromPayload decodes the two cascade roots; anything not object-shaped
// degrades to an empty theme. Value cleanup happens in normalization.
func themeFromPayload(v any) styles.Theme {
	m, ok := v.(map[string]any)
	if !ok {
		return styles.Theme{}
	}
	return styles.Theme{
		Body:     styleFromPayload(m["body"]),
		Sections: styleFromPayload(m["sections"]),
	}
}

func styleFromPayload(v any) styles.StyleValue {
	m, ok := v.(map[string]any)
	if !ok {
		return styles.StyleValue{}
	}
	return styles.StyleValue{
		FontFamily:      stringValue(m["font_family"]),
		FontSize:        stringValue(m["font_size"]),
		TextColor:       stringValue(m["text_color"]),
		BackgroundColor: stringValue(m["background_color"]),
		FontAsset:       stringValue(m["font_asset"]),
	}
}

func blockID(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

// truthy follows JSON value truthiness: false/0/""/null/empty collections
// are false, everything else is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// intValue coerces to int where the conversion is obvious, 0 otherwise.
// Floats truncate toward zero; only integral strings parse.
func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

// Serialize renders the document in the authoring API wire shape: nil block
// and nav lists become empty arrays, the publication timestamp is RFC 3339
// or null.
func (d *PageDocument) Serialize() map[string]any {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []schema.Block{}
	}
	nav := d.CustomNavItems
	if nav == nil {
		nav = []string{}
	}
	var publishedAt any
	if d.PublishedAt != nil {
		publishedAt = d.PublishedAt.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"title":               d.Title,
		"slug":                d.Slug,
		"summary":             d.Summary,
		"status":              d.Status.String(),
		"is_visible":          d.IsVisible,
		"show_navigation_bar": d.ShowNavigationBar,
		"render_body_only":    d.RenderBodyOnly,
		"navigation_order":    d.NavigationOrder,
		"custom_nav_items":    nav,
		"body":                d.Body,
		"custom_css":          d.CustomCSS,
		"custom_js":           d.CustomJS,
		"blocks":              blocks,
		"theme":               d.Theme,
		"published_at":        publishedAt,
	}
}

// BootURLs collects the editor's API endpoints. Empty strings mean the
// action is unavailable (uploads without permission, detail before the
// first save).
type BootURLs struct {
	Save        string `json:"save"`
	Preview     string `json:"preview"`
	Events      string `json:"events"`
	Menu        string `json:"menu"`
	Site        string `json:"site"`
	Assets      string `json:"assets"`
	FontUpload  string `json:"font_upload"`
	AssetUpload string `json:"asset_upload"`
	Detail      string `json:"detail"`
}

// BootPayload assembles the editor startup payload: the serialized document
// with blocks resolved for the requested language, the block blueprints, the
// style catalogues, and the endpoint map. Site context and navigation
// candidates are merged in by the caller.
func BootPayload(reg *schema.Registry, doc *PageDocument, lang string, urls BootURLs) (map[string]any, error) {
	blocks, err := doc.BlocksForLanguage(lang)
	if err != nil {
		return nil, err
	}
	page := doc.Serialize()
	page["blocks"] = blocks

	types := reg.Types()
	blueprints := make([]schema.Blueprint, 0, len(types))
	for _, typ := range types {
		if bp, ok := reg.Blueprint(typ); ok {
			blueprints = append(blueprints, bp)
		}
	}

	return map[string]any{
		"page":        page,
		"blueprints":  blueprints,
		"font_stacks": styles.Stacks(),
		"font_sizes":  styles.Sizes(),
		"urls":        urls,
		"language":    lang,
	}, nil
}
