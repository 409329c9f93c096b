package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"pbc/css"
)

// allRules collects all top-level rules from a stylesheet's Items.
// It does NOT flatten @media blocks, use this only for tests that
// care about plain top-level rules.
func allRules(sheet *css.Stylesheet) []css.Rule {
	var rules []css.Rule
	for _, item := range sheet.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

func TestParser_ParseThemeCSS(t *testing.T) {
	themeCSS := []byte(`
@font-face {
  font-family: "CMSFont-0a1b2c3d4e";
  src: url("/media/fonts/heading.woff2") format("woff2");
  font-display: swap;
}

body {
  font-family: "CMSFont-0a1b2c3d4e";
  font-size: 1rem;
  color: #333333;
}

.site-shell {
  background-color: #ffffff;
}

.page-block {
  font-size: 1.125rem;
}

.page-block__container {
  color: #111111;
}
`)

	log := zap.NewNop()
	p := css.NewParser(log)

	sheet := p.Parse(themeCSS, "theme")

	rules := allRules(sheet)
	if len(rules) != 4 {
		t.Fatalf("expected 4 rules, got %d", len(rules))
	}
	if len(sheet.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", sheet.Warnings)
	}

	bodyRules := sheet.RulesBySelector("body")
	if len(bodyRules) != 1 {
		t.Fatal("expected 'body' selector rule")
	}
	if val, ok := bodyRules[0].GetProperty("color"); !ok || val.Keyword != "#333333" {
		t.Errorf("expected body color #333333, got %+v", val)
	}

	shellRules := sheet.RulesBySelector(".site-shell")
	if len(shellRules) != 1 {
		t.Fatal("expected '.site-shell' selector rule")
	}

	faces := sheet.FontFaces()
	if len(faces) != 1 {
		t.Fatalf("expected 1 font face, got %d", len(faces))
	}
	if faces[0].Family != "CMSFont-0a1b2c3d4e" {
		t.Errorf("unexpected family: %s", faces[0].Family)
	}
	if faces[0].Display != "swap" {
		t.Errorf("expected font-display swap, got %q", faces[0].Display)
	}
	if !strings.Contains(faces[0].Src, "format(\"woff2\")") {
		t.Errorf("expected src to carry format hint, got %q", faces[0].Src)
	}
}

func TestParser_ElementSelector(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`p { text-indent: 1em; }`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	rule := rules[0]
	if rule.Selector.Element != "p" {
		t.Errorf("expected element 'p', got '%s'", rule.Selector.Element)
	}
	if rule.Selector.Class != "" {
		t.Errorf("expected no class, got '%s'", rule.Selector.Class)
	}

	val, ok := rule.GetProperty("text-indent")
	if !ok {
		t.Fatal("expected text-indent property")
	}
	if val.Value != 1 || val.Unit != "em" {
		t.Errorf("expected 1em, got %v%s", val.Value, val.Unit)
	}
}

func TestParser_ClassSelector(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`.page-block { font-style: italic; }`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	rule := rules[0]
	if rule.Selector.Element != "" {
		t.Errorf("expected no element, got '%s'", rule.Selector.Element)
	}
	if rule.Selector.Class != "page-block" {
		t.Errorf("expected class 'page-block', got '%s'", rule.Selector.Class)
	}

	val, _ := rule.GetProperty("font-style")
	if val.Keyword != "italic" {
		t.Errorf("expected keyword 'italic', got '%s'", val.Keyword)
	}
}

func TestParser_CombinedSelector(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`div.site-shell { margin: 0; }`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	rule := rules[0]
	if rule.Selector.Element != "div" {
		t.Errorf("expected element 'div', got '%s'", rule.Selector.Element)
	}
	if rule.Selector.Class != "site-shell" {
		t.Errorf("expected class 'site-shell', got '%s'", rule.Selector.Class)
	}
}

func TestParser_GroupedSelectors(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`h2, h3, h4 { font-size: 120%; }`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules for grouped selector, got %d", len(rules))
	}

	expected := []string{"h2", "h3", "h4"}
	for i, rule := range rules {
		if rule.Selector.Element != expected[i] {
			t.Errorf("rule %d: expected element '%s', got '%s'", i, expected[i], rule.Selector.Element)
		}
		val, _ := rule.GetProperty("font-size")
		if val.Value != 120 || val.Unit != "%" {
			t.Errorf("rule %d: expected 120%%, got %v%s", i, val.Value, val.Unit)
		}
	}
}

func TestParser_DescendantSelector(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`.page-block h2 { font-weight: bold; }`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	rule := rules[0]
	if rule.Selector.Raw != ".page-block h2" {
		t.Errorf("expected raw selector preserved, got '%s'", rule.Selector.Raw)
	}
	if rule.Selector.Element != "h2" {
		t.Errorf("expected rightmost element 'h2', got '%s'", rule.Selector.Element)
	}
}

func TestParser_UnsupportedSelectors(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`
a:hover { color: red; }
p > span { color: blue; }
[data-x] { color: green; }
`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 0 {
		t.Errorf("expected unsupported selectors to be dropped, got %d rules", len(rules))
	}
	if len(sheet.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %d: %v", len(sheet.Warnings), sheet.Warnings)
	}
}

func TestParser_HexColorValue(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`p { color: #ff0000; }`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	val, ok := rules[0].GetProperty("color")
	if !ok {
		t.Fatal("expected color property")
	}
	if val.Keyword != "#ff0000" {
		t.Errorf("expected '#ff0000', got '%s'", val.Keyword)
	}
}

func TestParser_FunctionValue(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`p { color: rgb(12, 34, 56); }`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	val, ok := rules[0].GetProperty("color")
	if !ok {
		t.Fatal("expected color property")
	}
	if !strings.HasPrefix(val.Keyword, "rgb(") {
		t.Errorf("expected rgb() function preserved, got '%s'", val.Keyword)
	}
}

func TestParser_Import(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quoted string", `@import "reset.css";`, "reset.css"},
		{"url double quoted", `@import url("https://example.com/a.css");`, "https://example.com/a.css"},
		{"url bare", `@import url(fonts.css);`, "fonts.css"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sheet := p.Parse([]byte(tc.input))
			imports := sheet.Imports()
			if len(imports) != 1 {
				t.Fatalf("expected 1 import, got %d", len(imports))
			}
			if imports[0] != tc.want {
				t.Errorf("expected import '%s', got '%s'", tc.want, imports[0])
			}
		})
	}
}

func TestParser_MediaBlock(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`
@media screen and (max-width: 600px) {
  .page-block { font-size: 0.875rem; }
  body { color: #000000; }
}
`)
	sheet := p.Parse(input)

	var mb *css.MediaBlock
	for _, item := range sheet.Items {
		if item.MediaBlock != nil {
			mb = item.MediaBlock
			break
		}
	}
	if mb == nil {
		t.Fatal("expected a media block")
	}
	if !strings.HasPrefix(mb.Query, "screen and") {
		t.Errorf("unexpected raw query: %q", mb.Query)
	}
	if len(mb.Rules) != 2 {
		t.Fatalf("expected 2 rules inside media block, got %d", len(mb.Rules))
	}
	if mb.Rules[0].Selector.Class != "page-block" {
		t.Errorf("expected first rule class 'page-block', got '%s'", mb.Rules[0].Selector.Class)
	}
}

func TestParser_SkipsUnknownAtRules(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	input := []byte(`
@supports (display: grid) {
  .grid { display: grid; }
}
p { color: #123456; }
`)
	sheet := p.Parse(input)

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule after skipping @supports, got %d", len(rules))
	}
	if rules[0].Selector.Element != "p" {
		t.Errorf("expected 'p' rule, got '%s'", rules[0].Selector.Raw)
	}
}

func TestParser_ParseDeclarations(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	decls := p.ParseDeclarations([]byte(`color:red;position:fixed;font-size:14px`))

	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}

	if decls[0].Property != "color" || decls[0].Value.Keyword != "red" {
		t.Errorf("unexpected first declaration: %+v", decls[0])
	}
	if decls[1].Property != "position" || decls[1].Value.Keyword != "fixed" {
		t.Errorf("unexpected second declaration: %+v", decls[1])
	}
	if decls[2].Property != "font-size" || decls[2].Value.Value != 14 || decls[2].Value.Unit != "px" {
		t.Errorf("unexpected third declaration: %+v", decls[2])
	}
}

func TestParser_ParseDeclarationsOrderAndCase(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	decls := p.ParseDeclarations([]byte(`BACKGROUND-COLOR: #FF0000; Color: blue`))

	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if decls[0].Property != "background-color" {
		t.Errorf("expected lowercased property name, got '%s'", decls[0].Property)
	}
	if decls[1].Property != "color" {
		t.Errorf("expected lowercased property name, got '%s'", decls[1].Property)
	}
}

func TestParser_ParseDeclarationsMalformed(t *testing.T) {
	log := zap.NewNop()
	p := css.NewParser(log)

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "}{;:::"},
		{"property without value", "color:"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decls := p.ParseDeclarations([]byte(tc.input))
			for _, d := range decls {
				if d.Property == "" {
					t.Errorf("recovered declaration with empty property: %+v", d)
				}
			}
		})
	}
}

func TestStylesheet_WriteToRoundTrip(t *testing.T) {
	sheet := &css.Stylesheet{}
	sheet.AddFontFace(css.FontFace{
		Family:  "CMSFont-abcdef0123",
		Src:     `url("/media/fonts/body.woff2") format("woff2")`,
		Display: "swap",
	})
	sheet.AddRule(css.Rule{
		Selector: css.Selector{Raw: "body", Element: "body"},
		Properties: map[string]css.Value{
			"font-size": {Raw: "1rem", Value: 1, Unit: "rem"},
			"color":     {Raw: "#333333", Keyword: "#333333"},
		},
	})

	out := sheet.String()

	if !strings.Contains(out, "@font-face {") {
		t.Error("expected @font-face block in output")
	}
	if !strings.Contains(out, "font-display: swap;") {
		t.Error("expected font-display in output")
	}
	// Properties are sorted alphabetically
	colorIdx := strings.Index(out, "color: #333333;")
	sizeIdx := strings.Index(out, "font-size: 1rem;")
	if colorIdx == -1 || sizeIdx == -1 || colorIdx > sizeIdx {
		t.Errorf("expected sorted properties in output:\n%s", out)
	}

	// Re-parse the output and verify structure survives
	p := css.NewParser(zap.NewNop())
	reparsed := p.Parse([]byte(out))

	if len(reparsed.FontFaces()) != 1 {
		t.Fatalf("expected 1 font face after round trip, got %d", len(reparsed.FontFaces()))
	}
	bodyRules := reparsed.RulesBySelector("body")
	if len(bodyRules) != 1 {
		t.Fatalf("expected body rule after round trip, got %d", len(bodyRules))
	}
	if val, ok := bodyRules[0].GetProperty("color"); !ok || val.Keyword != "#333333" {
		t.Errorf("color lost in round trip: %+v", val)
	}
}

func TestStylesheet_WriteToDeterministic(t *testing.T) {
	sheet := &css.Stylesheet{}
	sheet.AddRule(css.Rule{
		Selector: css.Selector{Raw: ".page-block", Class: "page-block"},
		Properties: map[string]css.Value{
			"font-family":      {Raw: `"CMSFont-0123456789"`, Keyword: "CMSFont-0123456789"},
			"background-color": {Raw: "#ffffff", Keyword: "#ffffff"},
			"color":            {Raw: "#111111", Keyword: "#111111"},
		},
	})

	first := sheet.String()
	for range 10 {
		if next := sheet.String(); next != first {
			t.Fatal("stylesheet serialization is not deterministic")
		}
	}
}

func TestStylesheet_RewriteURLs(t *testing.T) {
	importURL := "https://cdn.example.com/reset.css"
	sheet := &css.Stylesheet{
		Items: []css.StylesheetItem{
			{Import: &importURL},
		},
	}
	sheet.AddFontFace(css.FontFace{
		Family: "CMSFont-aaaaaaaaaa",
		Src:    `url("https://cdn.example.com/fonts/a.woff2") format("woff2")`,
	})
	sheet.AddRule(css.Rule{
		Selector: css.Selector{Raw: ".hero", Class: "hero"},
		Properties: map[string]css.Value{
			"background-image": {
				Raw:     `url("https://cdn.example.com/img/bg.png")`,
				Keyword: `url("https://cdn.example.com/img/bg.png")`,
			},
		},
	})

	rewritten := make(map[string]string)
	sheet.RewriteURLs(func(originalURL string) string {
		local := "assets/" + originalURL[strings.LastIndex(originalURL, "/")+1:]
		rewritten[originalURL] = local
		return local
	})

	if len(rewritten) != 3 {
		t.Fatalf("expected 3 URLs rewritten, got %d: %v", len(rewritten), rewritten)
	}

	if got := sheet.Imports()[0]; got != "assets/reset.css" {
		t.Errorf("import not rewritten: %s", got)
	}
	if src := sheet.FontFaces()[0].Src; !strings.Contains(src, `url("assets/a.woff2")`) {
		t.Errorf("font src not rewritten: %s", src)
	}
	heroRules := sheet.RulesBySelector(".hero")
	if len(heroRules) != 1 {
		t.Fatal("expected .hero rule")
	}
	if val, _ := heroRules[0].GetProperty("background-image"); !strings.Contains(val.Raw, `url("assets/bg.png")`) {
		t.Errorf("rule url not rewritten: %s", val.Raw)
	}
}

func TestValue_IsNumeric(t *testing.T) {
	tests := []struct {
		name string
		val  css.Value
		want bool
	}{
		{"dimension", css.Value{Raw: "1.5em", Value: 1.5, Unit: "em"}, true},
		{"zero with unit", css.Value{Raw: "0px", Value: 0, Unit: "px"}, true},
		{"bare zero", css.Value{Raw: "0"}, true},
		{"negative", css.Value{Raw: "-2px", Value: -2, Unit: "px"}, true},
		{"keyword", css.Value{Raw: "bold", Keyword: "bold"}, false},
		{"empty", css.Value{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.val.IsNumeric(); got != tc.want {
				t.Errorf("IsNumeric(%+v) = %v, want %v", tc.val, got, tc.want)
			}
		})
	}
}

func TestValue_IsKeyword(t *testing.T) {
	if !(css.Value{Keyword: "underline"}).IsKeyword() {
		t.Error("expected keyword value to report IsKeyword")
	}
	if (css.Value{Value: 2, Unit: "px", Keyword: ""}).IsKeyword() {
		t.Error("dimension must not report IsKeyword")
	}
}
