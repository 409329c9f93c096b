// Package styles models the three-level style cascade of the page builder:
// the page theme (body and section containers), a block's base style and
// named per-field style targets. Values are kept normalized and well formed;
// flattening the cascade into final CSS specificity is the renderer's job,
// this package only resolves on demand.
package styles

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// StyleValue is one cascade level's worth of styling. The zero value means
// "inherit everything". FontFamily holds a built-in stack key, FontAsset an
// uploaded font asset ID; at most one of the two survives normalization.
type StyleValue struct {
	FontFamily      string `json:"font_family"`
	FontSize        string `json:"font_size"`
	TextColor       string `json:"text_color"`
	BackgroundColor string `json:"background_color"`
	FontAsset       string `json:"font_asset"`
}

// IsZero reports whether every field is at its inherit state.
func (v StyleValue) IsZero() bool {
	return v == StyleValue{}
}

// EffectiveFont reports which font source the value ends up using. An
// uploaded asset wins over a stack key; at most one return is non-empty.
func (v StyleValue) EffectiveFont() (assetID, stackKey string) {
	if v.FontAsset != "" {
		return v.FontAsset, ""
	}
	if _, ok := StackCSS(v.FontFamily); ok {
		return "", v.FontFamily
	}
	return "", ""
}

// FromMap decodes the JSON-object form of a style value, as it appears
// inside block props. A nil or foreign-shaped map decodes to the zero value.
// font_asset accepts the plain asset ID and the legacy object reference
// carrying one.
func FromMap(m map[string]any) StyleValue {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	v := StyleValue{
		FontFamily:      str("font_family"),
		FontSize:        str("font_size"),
		TextColor:       str("text_color"),
		BackgroundColor: str("background_color"),
	}
	switch asset := m["font_asset"].(type) {
	case string:
		v.FontAsset = asset
	case map[string]any:
		switch id := asset["id"].(type) {
		case string:
			v.FontAsset = id
		case float64:
			v.FontAsset = strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	return v
}

// Map returns the JSON-object form of the value with every field present,
// so serialized styles always carry the full shape.
func (v StyleValue) Map() map[string]any {
	return map[string]any{
		"font_family":      v.FontFamily,
		"font_size":        v.FontSize,
		"text_color":       v.TextColor,
		"background_color": v.BackgroundColor,
		"font_asset":       v.FontAsset,
	}
}

// Theme holds the two cascade roots: the page body and the block containers.
type Theme struct {
	Body     StyleValue `json:"body"`
	Sections StyleValue `json:"sections"`
}

var fontStacks = map[string]string{
	"sans":            `"Inter", "Helvetica Neue", Arial, sans-serif`,
	"serif":           `Georgia, "Times New Roman", serif`,
	"mono":            `ui-monospace, "SFMono-Regular", Menlo, Consolas, "Liberation Mono", monospace`,
	"display":         `"Oswald", "Archivo Black", "Arial Narrow", sans-serif`,
	"press_start":     `"Press Start 2P", cursive, "Courier New", monospace`,
	"archivo_black":   `"Archivo Black", "Arial Black", sans-serif`,
	"glass_antiqua":   `"Glass Antiqua", "Comic Sans MS", cursive`,
	"im_fell":         `"IM Fell DW Pica", Georgia, serif`,
	"orbitron":        `"Orbitron", "Segoe UI", sans-serif`,
	"pathway_extreme": `"Pathway Extreme", "Raleway", sans-serif`,
	"raleway":         `"Raleway", "Helvetica Neue", sans-serif`,
	"special_elite":   `"Special Elite", "Courier New", monospace`,
	"staatliches":     `"Staatliches", "Archivo Black", sans-serif`,
}

// stackKeys is the catalogue order shown to authors: the generic stacks
// first, then the webfont stacks.
var stackKeys = []string{
	"sans", "serif", "mono", "display",
	"archivo_black", "glass_antiqua", "im_fell", "orbitron",
	"pathway_extreme", "press_start", "raleway", "special_elite", "staatliches",
}

var fontSizes = map[string]string{
	"xs":   "0.85rem",
	"sm":   "0.95rem",
	"base": "1rem",
	"lg":   "1.15rem",
	"xl":   "1.35rem",
	"xxl":  "1.6rem",
}

// sizeKeys is the scale order, smallest first.
var sizeKeys = []string{"xs", "sm", "base", "lg", "xl", "xxl"}

// Stacks returns the built-in font stack keys in catalogue order.
func Stacks() []string {
	return slices.Clone(stackKeys)
}

// Sizes returns the font size keys in scale order.
func Sizes() []string {
	return slices.Clone(sizeKeys)
}

// StackCSS returns the CSS font-family list for a stack key.
func StackCSS(key string) (string, bool) {
	css, ok := fontStacks[key]
	return css, ok
}

// SizeCSS returns the CSS font-size for a size key.
func SizeCSS(key string) (string, bool) {
	css, ok := fontSizes[key]
	return css, ok
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// cleanHexColor canonicalizes a color to 6-digit lowercase hex. Shorthand
// 3-digit colors expand per digit; anything else drops to empty.
func cleanHexColor(value string) string {
	candidate := strings.TrimSpace(value)
	if !hexColorPattern.MatchString(candidate) {
		return ""
	}
	if len(candidate) == 4 {
		var b strings.Builder
		b.Grow(7)
		b.WriteByte('#')
		for _, c := range candidate[1:] {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		candidate = b.String()
	}
	return strings.ToLower(candidate)
}

// Normalize returns the canonical form of a style value. It is total and
// idempotent: unknown stack or size keys drop to inherit, colors canonicalize
// to 6-digit lowercase hex, and a set font asset forces the stack key empty.
// The asset reference itself is only trimmed - resolving it does I/O and
// belongs to CSS building.
func Normalize(v StyleValue) StyleValue {
	out := StyleValue{
		FontAsset: strings.TrimSpace(v.FontAsset),
	}
	if _, ok := fontStacks[v.FontFamily]; ok {
		out.FontFamily = v.FontFamily
	}
	if _, ok := fontSizes[v.FontSize]; ok {
		out.FontSize = v.FontSize
	}
	out.TextColor = cleanHexColor(v.TextColor)
	out.BackgroundColor = cleanHexColor(v.BackgroundColor)
	if out.FontAsset != "" {
		out.FontFamily = ""
	}
	return out
}

// NormalizeTheme normalizes both cascade roots.
func NormalizeTheme(t Theme) Theme {
	return Theme{
		Body:     Normalize(t.Body),
		Sections: Normalize(t.Sections),
	}
}

// Merge overlays patch onto base field-wise: non-empty patch fields win. The
// font pair stays mutually exclusive - patching in an asset clears the stack
// key and patching in a stack key clears the asset. The result is normalized.
func Merge(base, patch StyleValue) StyleValue {
	out := base
	if patch.FontFamily != "" {
		out.FontFamily = patch.FontFamily
		out.FontAsset = ""
	}
	if patch.FontAsset != "" {
		out.FontAsset = patch.FontAsset
		out.FontFamily = ""
	}
	if patch.FontSize != "" {
		out.FontSize = patch.FontSize
	}
	if patch.TextColor != "" {
		out.TextColor = patch.TextColor
	}
	if patch.BackgroundColor != "" {
		out.BackgroundColor = patch.BackgroundColor
	}
	return Normalize(out)
}

// Resolve flattens the cascade for one target: target wins, then the block
// base, then the theme body. The font pair resolves as a unit - the
// narrowest level that sets either source decides both, so a broad stack key
// never leaks under a narrow font asset.
func Resolve(body, base, target StyleValue) StyleValue {
	var out StyleValue
	out.FontSize = firstNonEmpty(target.FontSize, base.FontSize, body.FontSize)
	out.TextColor = firstNonEmpty(target.TextColor, base.TextColor, body.TextColor)
	out.BackgroundColor = firstNonEmpty(target.BackgroundColor, base.BackgroundColor, body.BackgroundColor)
	for _, level := range [...]StyleValue{target, base, body} {
		if level.FontAsset == "" && level.FontFamily == "" {
			continue
		}
		out.FontAsset = level.FontAsset
		out.FontFamily = level.FontFamily
		if out.FontAsset != "" {
			out.FontFamily = ""
		}
		break
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
