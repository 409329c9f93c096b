package styles_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"pbc/styles"
)

type fakeResolver struct {
	faces map[string]styles.FontFace
	calls int
}

func (f *fakeResolver) Face(_ context.Context, id string) (styles.FontFace, error) {
	f.calls++
	face, ok := f.faces[id]
	if !ok {
		return styles.FontFace{}, fmt.Errorf("font asset %s not found", id)
	}
	return face, nil
}

func TestBuildThemeCSS_BodyOnly(t *testing.T) {
	b := styles.NewBuilder(nil, nil)
	got := b.BuildThemeCSS(context.Background(), styles.Theme{
		Body: styles.StyleValue{FontFamily: "serif", FontSize: "lg", TextColor: "#A1B"},
	})

	want := `body {
  color: #aa11bb;
  font-family: Georgia, "Times New Roman", serif;
  font-size: 1.15rem;
}

.site-shell {
  color: #aa11bb;
  font-family: Georgia, "Times New Roman", serif;
  font-size: 1.15rem;
}
`
	if got != want {
		t.Errorf("CSS mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildThemeCSS_Sections(t *testing.T) {
	b := styles.NewBuilder(nil, nil)
	got := b.BuildThemeCSS(context.Background(), styles.Theme{
		Sections: styles.StyleValue{BackgroundColor: "#fafafa"},
	})

	for _, sel := range []string{".page-block {", ".page-block__container {"} {
		if !strings.Contains(got, sel) {
			t.Errorf("missing selector %q in:\n%s", sel, got)
		}
	}
	if strings.Contains(got, "body") {
		t.Errorf("empty body root leaked a rule:\n%s", got)
	}
	if !strings.Contains(got, "background-color: #fafafa;") {
		t.Errorf("missing background property:\n%s", got)
	}
}

func TestBuildThemeCSS_EmptyTheme(t *testing.T) {
	b := styles.NewBuilder(nil, nil)
	if got := b.BuildThemeCSS(context.Background(), styles.Theme{}); got != "" {
		t.Errorf("empty theme produced CSS: %q", got)
	}
}

func TestBuildThemeCSS_FontAsset(t *testing.T) {
	resolver := &fakeResolver{faces: map[string]styles.FontFace{
		"42": {Family: "CMSFont-1234567890", URL: "/media/fonts/brand.woff2", Format: "woff2"},
	}}
	b := styles.NewBuilder(resolver, nil)

	got := b.BuildThemeCSS(context.Background(), styles.Theme{
		Body: styles.StyleValue{FontAsset: "42", TextColor: "#112233"},
	})

	face := `@font-face {
  font-family: "CMSFont-1234567890";
  src: url("/media/fonts/brand.woff2") format("woff2");
  font-display: swap;
}`
	if !strings.HasPrefix(got, face) {
		t.Errorf("@font-face should lead the output:\n%s", got)
	}
	if !strings.Contains(got, `font-family: "CMSFont-1234567890";`) {
		t.Errorf("body rule missing the face family:\n%s", got)
	}
	if !strings.Contains(got, "color: #112233;") {
		t.Errorf("color lost:\n%s", got)
	}
}

// Both roots referencing the same asset emit one @font-face.
func TestBuildThemeCSS_FontFaceDeduplicated(t *testing.T) {
	resolver := &fakeResolver{faces: map[string]styles.FontFace{
		"42": {Family: "CMSFont-1234567890", URL: "/media/fonts/brand.woff2", Format: "woff2"},
	}}
	b := styles.NewBuilder(resolver, nil)

	got := b.BuildThemeCSS(context.Background(), styles.Theme{
		Body:     styles.StyleValue{FontAsset: "42"},
		Sections: styles.StyleValue{FontAsset: "42"},
	})
	if n := strings.Count(got, "@font-face"); n != 1 {
		t.Errorf("expected 1 @font-face, got %d:\n%s", n, got)
	}
}

// A font asset that cannot be resolved degrades to the remaining properties.
func TestBuildThemeCSS_UnresolvedFontAsset(t *testing.T) {
	resolver := &fakeResolver{}
	b := styles.NewBuilder(resolver, nil)

	got := b.BuildThemeCSS(context.Background(), styles.Theme{
		Body: styles.StyleValue{FontAsset: "missing", TextColor: "#112233"},
	})
	if strings.Contains(got, "font-family") {
		t.Errorf("unresolved asset produced a font-family:\n%s", got)
	}
	if !strings.Contains(got, "color: #112233;") {
		t.Errorf("remaining properties lost:\n%s", got)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", resolver.calls)
	}
}

func TestBuildThemeCSS_Deterministic(t *testing.T) {
	resolver := &fakeResolver{faces: map[string]styles.FontFace{
		"42": {Family: "CMSFont-1234567890", URL: "/media/fonts/brand.woff2", Format: "woff2"},
	}}
	b := styles.NewBuilder(resolver, nil)
	theme := styles.Theme{
		Body:     styles.StyleValue{FontAsset: "42", TextColor: "#112233", BackgroundColor: "#ffffff", FontSize: "base"},
		Sections: styles.StyleValue{FontFamily: "mono", BackgroundColor: "#fafafa"},
	}

	first := b.BuildThemeCSS(context.Background(), theme)
	for range 10 {
		if got := b.BuildThemeCSS(context.Background(), theme); got != first {
			t.Fatalf("output varies:\n%s\n---\n%s", first, got)
		}
	}
}
