// Package fonts handles uploaded font assets: format inference, @font-face
// family naming, upload validation and a read-through cache that resolves
// asset references for the style engine.
package fonts

import (
	"crypto/sha1"
	"encoding/hex"
	"path"
	"strconv"
	"strings"
)

// Font formats the builder accepts, as CSS format() strings.
// ENUM(woff2, woff, opentype, truetype)
type FontFormat string

// mimeFormats maps font MIME types to CSS format() strings.
var mimeFormats = map[string]FontFormat{
	"font/woff2":            FontFormatWoff2,
	"font/woff":             FontFormatWoff,
	"font/ttf":              FontFormatTruetype,
	"font/otf":              FontFormatOpentype,
	"application/font-woff": FontFormatWoff,
}

var extFormats = map[string]FontFormat{
	".woff2": FontFormatWoff2,
	".woff":  FontFormatWoff,
	".otf":   FontFormatOpentype,
	".ttf":   FontFormatTruetype,
}

// GuessFormat infers the CSS format() string for a font URL. The hint (a
// format name or a MIME type) wins over the file extension; anything
// unrecognized falls back to truetype.
func GuessFormat(url, hint string) FontFormat {
	if hint != "" {
		label := strings.ToLower(strings.TrimSpace(hint))
		if f, err := ParseFontFormat(label); err == nil {
			return f
		}
		if f, ok := mimeFormats[label]; ok {
			return f
		}
	}
	clean, _, _ := strings.Cut(url, "?")
	if f, ok := extFormats[strings.ToLower(path.Ext(clean))]; ok {
		return f
	}
	return FontFormatTruetype
}

// FontAsset is the normalized form of a font asset reference as it travels
// inside style values and block props.
type FontAsset struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	URL    string     `json:"url"`
	Family string     `json:"family,omitempty"` // author supplied family name
	Format FontFormat `json:"format"`
}

// FamilyName returns the CSS font-family for the asset: the author supplied
// name when present, otherwise a stable generated one derived from the URL
// and format.
func (a FontAsset) FamilyName() string {
	if a.Family != "" {
		return a.Family
	}
	sum := sha1.Sum([]byte(a.URL + "|" + a.Format.String()))
	return "CMSFont-" + hex.EncodeToString(sum[:])[:10]
}

// NormalizeAsset validates and normalizes a raw font asset value (typically a
// decoded JSON object). The URL must be site-absolute or http(s); anything
// else reports false.
func NormalizeAsset(value any) (FontAsset, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return FontAsset{}, false
	}
	url := strings.TrimSpace(stringField(m, "url"))
	if url == "" || !hasAllowedScheme(url) {
		return FontAsset{}, false
	}
	hint := strings.TrimSpace(stringField(m, "format"))
	if hint == "" {
		hint = strings.TrimSpace(stringField(m, "mime_type"))
	}
	return FontAsset{
		ID:     idField(m, "id"),
		Title:  strings.TrimSpace(stringField(m, "title")),
		URL:    url,
		Family: strings.TrimSpace(stringField(m, "family")),
		Format: GuessFormat(url, hint),
	}, true
}

func hasAllowedScheme(url string) bool {
	return strings.HasPrefix(url, "/") ||
		strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://")
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// idField coerces the ID forms JSON decoding produces into a string.
func idField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
