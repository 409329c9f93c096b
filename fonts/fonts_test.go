package fonts_test

import (
	"strings"
	"testing"

	"pbc/fonts"
)

// Minimal valid magic sequences per font container.
var (
	woff2Bytes = []byte{0x77, 0x4F, 0x46, 0x32, 0x00, 0x01, 0x00, 0x00}
	woffBytes  = []byte{0x77, 0x4F, 0x46, 0x46, 0x00, 0x01, 0x00, 0x00}
	ttfBytes   = []byte{0x00, 0x01, 0x00, 0x00, 0x00}
	otfBytes   = []byte{0x4F, 0x54, 0x54, 0x4F, 0x00}
)

func TestGuessFormat(t *testing.T) {
	tests := []struct {
		url  string
		hint string
		want fonts.FontFormat
	}{
		{"/media/fonts/brand.woff2", "", fonts.FontFormatWoff2},
		{"/media/fonts/brand.WOFF", "", fonts.FontFormatWoff},
		{"/media/fonts/brand.otf", "", fonts.FontFormatOpentype},
		{"/media/fonts/brand.ttf", "", fonts.FontFormatTruetype},
		{"/media/fonts/brand.woff2?v=3", "", fonts.FontFormatWoff2},
		{"/media/fonts/brand", "", fonts.FontFormatTruetype},
		{"/media/fonts/brand.css", "", fonts.FontFormatTruetype},
		{"/media/fonts/brand.ttf", "woff2", fonts.FontFormatWoff2},
		{"/media/fonts/brand.ttf", "WOFF", fonts.FontFormatWoff},
		{"/media/fonts/brand.bin", "font/otf", fonts.FontFormatOpentype},
		{"/media/fonts/brand.bin", "application/font-woff", fonts.FontFormatWoff},
		{"/media/fonts/brand.woff", "text/plain", fonts.FontFormatWoff},
	}
	for _, tc := range tests {
		if got := fonts.GuessFormat(tc.url, tc.hint); got != tc.want {
			t.Errorf("GuessFormat(%q, %q) = %s, want %s", tc.url, tc.hint, got, tc.want)
		}
	}
}

func TestNormalizeAsset(t *testing.T) {
	asset, ok := fonts.NormalizeAsset(map[string]any{
		"id":    17.0,
		"title": " Brand ",
		"url":   "/media/fonts/brand.woff2",
	})
	if !ok {
		t.Fatal("valid asset rejected")
	}
	want := fonts.FontAsset{ID: "17", Title: "Brand", URL: "/media/fonts/brand.woff2", Format: fonts.FontFormatWoff2}
	if asset != want {
		t.Errorf("asset = %+v, want %+v", asset, want)
	}

	rejected := []any{
		nil,
		"not a map",
		map[string]any{"title": "no url"},
		map[string]any{"url": ""},
		map[string]any{"url": "fonts/relative.woff"},
		map[string]any{"url": "ftp://example.com/f.woff"},
	}
	for _, raw := range rejected {
		if _, ok := fonts.NormalizeAsset(raw); ok {
			t.Errorf("NormalizeAsset(%#v) accepted", raw)
		}
	}

	if a, ok := fonts.NormalizeAsset(map[string]any{"url": "https://cdn.example.com/f.bin", "format": "woff"}); !ok || a.Format != fonts.FontFormatWoff {
		t.Errorf("format hint lost: %+v (ok %v)", a, ok)
	}
	if a, ok := fonts.NormalizeAsset(map[string]any{"url": "/f/x.bin", "mime_type": "font/otf"}); !ok || a.Format != fonts.FontFormatOpentype {
		t.Errorf("mime hint lost: %+v (ok %v)", a, ok)
	}
}

func TestFamilyName(t *testing.T) {
	a := fonts.FontAsset{URL: "/media/fonts/brand.woff2", Format: fonts.FontFormatWoff2}
	name := a.FamilyName()
	if !strings.HasPrefix(name, "CMSFont-") {
		t.Errorf("generated family = %q, want CMSFont- prefix", name)
	}
	if len(name) != len("CMSFont-")+10 {
		t.Errorf("generated family length = %d (%q)", len(name), name)
	}
	if again := a.FamilyName(); again != name {
		t.Errorf("family not stable: %q vs %q", name, again)
	}

	b := fonts.FontAsset{URL: "/media/fonts/other.woff2", Format: fonts.FontFormatWoff2}
	if b.FamilyName() == name {
		t.Error("different URLs produced the same family")
	}

	c := fonts.FontAsset{URL: "/media/fonts/brand.woff2", Family: "BrandFont"}
	if got := c.FamilyName(); got != "BrandFont" {
		t.Errorf("author family ignored: %q", got)
	}
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want fonts.FontFormat
		ok   bool
	}{
		{"woff2", woff2Bytes, fonts.FontFormatWoff2, true},
		{"woff", woffBytes, fonts.FontFormatWoff, true},
		{"ttf", ttfBytes, fonts.FontFormatTruetype, true},
		{"otf", otfBytes, fonts.FontFormatOpentype, true},
		{"junk", []byte("hello world"), "", false},
		{"empty", nil, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := fonts.SniffFormat(tc.data)
			if ok != tc.ok || got != tc.want {
				t.Errorf("SniffFormat = (%s, %v), want (%s, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestValidateUpload(t *testing.T) {
	if got, err := fonts.ValidateUpload("brand.woff2", woff2Bytes); err != nil || got != fonts.FontFormatWoff2 {
		t.Errorf("valid upload rejected: (%s, %v)", got, err)
	}
	if _, err := fonts.ValidateUpload("Brand.WOFF2", woff2Bytes); err != nil {
		t.Errorf("uppercase extension rejected: %v", err)
	}

	if _, err := fonts.ValidateUpload("brand.eot", woffBytes); err == nil {
		t.Error("unsupported extension accepted")
	}
	if _, err := fonts.ValidateUpload("brand.woff", woff2Bytes); err == nil {
		t.Error("extension/content mismatch accepted")
	}
	if _, err := fonts.ValidateUpload("brand.ttf", []byte("garbage")); err == nil {
		t.Error("unrecognizable content accepted")
	}
}
