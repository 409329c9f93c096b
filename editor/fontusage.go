package editor

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// UsageTracker records which registry font families each block's rich-text
// fields currently reference. The annotations never enter block props; they
// ride alongside the document so the renderer can emit the right
// font-loading declarations.
type UsageTracker struct {
	known func(family string) bool
	usage map[string]map[string][]string // block ID -> field key -> families
}

// NewUsageTracker builds a tracker. known reports whether a font-family
// name was minted by the font registry; nil counts every family.
func NewUsageTracker(known func(family string) bool) *UsageTracker {
	return &UsageTracker{known: known, usage: make(map[string]map[string][]string)}
}

// Record replaces the families recorded for one block field with those the
// given sanitized fragment references. A fragment without registry fonts
// clears the field's annotation.
func (t *UsageTracker) Record(blockID, key, fragment string) {
	fams := t.families(fragment)
	fields := t.usage[blockID]
	if len(fams) == 0 {
		delete(fields, key)
		if len(fields) == 0 {
			delete(t.usage, blockID)
		}
		return
	}
	if fields == nil {
		fields = make(map[string][]string)
		t.usage[blockID] = fields
	}
	fields[key] = fams
}

// Fonts returns the block's font dependency list: every family its fields
// reference, deduplicated and sorted.
func (t *UsageTracker) Fonts(blockID string) []string {
	fields := t.usage[blockID]
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, fams := range fields {
		for _, f := range fams {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Forget drops every annotation for a block, e.g. when it is removed.
func (t *UsageTracker) Forget(blockID string) {
	delete(t.usage, blockID)
}

// families extracts the registry families referenced by style attributes in
// the fragment, in document order.
func (t *UsageTracker) families(fragment string) []string {
	if !strings.Contains(fragment, "font-family") {
		return nil
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	seen := make(map[string]bool)
	var out []string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		for _, a := range z.Token().Attr {
			if a.Key != "style" {
				continue
			}
			for _, fam := range styleFamilies(a.Val) {
				if seen[fam] {
					continue
				}
				if t.known != nil && !t.known(fam) {
					continue
				}
				seen[fam] = true
				out = append(out, fam)
			}
		}
	}
}

// styleFamilies lists the family names of every font-family declaration in
// an inline style value.
func styleFamilies(style string) []string {
	var out []string
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(strings.ToLower(prop)) != "font-family" {
			continue
		}
		for _, fam := range strings.Split(value, ",") {
			fam = strings.Trim(strings.TrimSpace(fam), `'"`)
			if fam != "" {
				out = append(out, fam)
			}
		}
	}
	return out
}
