package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pbc/schema"
	"pbc/styles"
)

// treeWriter accumulates depth-indented lines for Dump output.
type treeWriter struct {
	w strings.Builder
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw *treeWriter) text(depth int, label, value string) {
	const cutoff = 80
	if r := []rune(value); len(r) > cutoff {
		value = string(r[:cutoff]) + "…"
	}
	tw.line(depth, "%s: %s", label, strconv.Quote(value))
}

// Dump renders the document as an indented tree for troubleshooting: page
// header, theme, then every block with its props in blueprint field order.
// The output is stable for identical documents so dumps can be diffed.
func Dump(reg *schema.Registry, doc *PageDocument) string {
	tw := &treeWriter{}
	if doc == nil {
		tw.line(0, "page: <nil>")
		return tw.w.String()
	}

	tw.line(0, "page: %q slug=%s status=%s visible=%t", doc.Title, doc.Slug, doc.Status, doc.IsVisible)
	if doc.CustomNavItems == nil {
		tw.line(1, "navigation: derived")
	} else {
		tw.line(1, "navigation: explicit %v", doc.CustomNavItems)
	}

	tw.line(1, "theme:")
	dumpStyle(tw, 2, "body", doc.Theme.Body)
	dumpStyle(tw, 2, "sections", doc.Theme.Sections)

	tw.line(1, "blocks: %d", len(doc.Blocks))
	for i, b := range doc.Blocks {
		dumpBlock(tw, 2, reg, i, b)
	}

	for _, lang := range sortedKeys(doc.LayoutOverrides) {
		blocks := doc.LayoutOverrides[lang]
		tw.line(1, "layout override %s: %d blocks", lang, len(blocks))
		for i, b := range blocks {
			dumpBlock(tw, 2, reg, i, b)
		}
	}
	return tw.w.String()
}

func dumpBlock(tw *treeWriter, depth int, reg *schema.Registry, idx int, b schema.Block) {
	tw.line(depth, "[%d] %s id=%s", idx, b.Type, b.ID)

	bp, known := reg.Blueprint(b.Type)
	if !known {
		// foreign block, show whatever it carries
		for _, key := range sortedKeys(b.Props) {
			dumpProp(tw, depth+1, key, b.Props[key])
		}
		return
	}
	for _, f := range bp.Fields {
		v, ok := b.Props[f.Key]
		if !ok {
			continue
		}
		dumpProp(tw, depth+1, f.Key, v)
	}
	if raw, ok := b.Props["style"]; ok {
		dumpStyle(tw, depth+1, "style", styles.Normalize(styleMap(raw)))
	}
	if targets, ok := b.Props["style_targets"].(map[string]any); ok && len(targets) > 0 {
		tw.line(depth+1, "style_targets:")
		for _, key := range sortedKeys(targets) {
			dumpStyle(tw, depth+2, key, styles.Normalize(styleMap(targets[key])))
		}
	}
}

func dumpProp(tw *treeWriter, depth int, key string, v any) {
	switch tv := v.(type) {
	case string:
		tw.text(depth, key, tv)
	case []any:
		tw.line(depth, "%s: %d items", key, len(tv))
		for i, item := range tv {
			if m, ok := item.(map[string]any); ok {
				tw.line(depth+1, "[%d]", i)
				for _, k := range sortedKeys(m) {
					dumpProp(tw, depth+2, k, m[k])
				}
				continue
			}
			tw.line(depth+1, "[%d] %v", i, item)
		}
	case map[string]any:
		if key == "style" || key == "style_targets" {
			return // rendered separately with normalization
		}
		tw.line(depth, "%s:", key)
		for _, k := range sortedKeys(tv) {
			dumpProp(tw, depth+1, k, tv[k])
		}
	case nil:
		tw.line(depth, "%s: null", key)
	default:
		tw.line(depth, "%s: %v", key, tv)
	}
}

func dumpStyle(tw *treeWriter, depth int, label string, v styles.StyleValue) {
	if v.IsZero() {
		tw.line(depth, "%s: inherit", label)
		return
	}
	var parts []string
	if v.FontFamily != "" {
		parts = append(parts, "family="+v.FontFamily)
	}
	if v.FontAsset != "" {
		parts = append(parts, "asset="+v.FontAsset)
	}
	if v.FontSize != "" {
		parts = append(parts, "size="+v.FontSize)
	}
	if v.TextColor != "" {
		parts = append(parts, "color="+v.TextColor)
	}
	if v.BackgroundColor != "" {
		parts = append(parts, "background="+v.BackgroundColor)
	}
	tw.line(depth, "%s: %s", label, strings.Join(parts, " "))
}

func styleMap(raw any) styles.StyleValue {
	m, _ := raw.(map[string]any)
	return styles.FromMap(m)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
