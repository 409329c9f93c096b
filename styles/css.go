package styles

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"pbc/css"
)

// FontFace is the resolved, loadable form of a font asset reference.
type FontFace struct {
	Family string // generated or author supplied family name
	URL    string
	Format string // woff2, woff, opentype, truetype
}

// FontResolver turns a font asset ID into a loadable face. The fonts
// package's Registry implements it.
type FontResolver interface {
	Face(ctx context.Context, id string) (FontFace, error)
}

// Builder renders themes to CSS, resolving font asset references on the way.
type Builder struct {
	fonts FontResolver
	log   *zap.Logger
}

// NewBuilder returns a theme CSS builder. A nil resolver is allowed: font
// asset references then degrade to a logged warning.
func NewBuilder(fonts FontResolver, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{fonts: fonts, log: log.Named("styles")}
}

// BuildThemeCSS renders a theme to CSS text. @font-face blocks for referenced
// font assets come first (body root before sections, duplicates collapsed),
// followed by property rules: the body style on body and .site-shell, the
// sections style on .page-block and .page-block__container. Roots that
// normalize to empty emit nothing, so an untouched theme yields "".
//
// The build is total: an unresolvable font asset drops to a warning and the
// rule keeps its remaining properties.
func (b *Builder) BuildThemeCSS(ctx context.Context, t Theme) string {
	t = NormalizeTheme(t)

	var sheet css.Stylesheet
	seen := make(map[string]bool, 2)

	bodyProps := b.ruleProperties(ctx, t.Body, &sheet, seen)
	sectionProps := b.ruleProperties(ctx, t.Sections, &sheet, seen)

	addRules(&sheet, bodyProps, "body", ".site-shell")
	addRules(&sheet, sectionProps, ".page-block", ".page-block__container")

	return sheet.String()
}

// ruleProperties converts one style value into CSS properties, registering an
// @font-face on the sheet when the value references a font asset.
func (b *Builder) ruleProperties(ctx context.Context, v StyleValue, sheet *css.Stylesheet, seen map[string]bool) map[string]css.Value {
	props := make(map[string]css.Value, 4)

	switch assetID, stackKey := v.EffectiveFont(); {
	case assetID != "":
		if b.fonts == nil {
			b.log.Warn("font asset referenced without a resolver", zap.String("asset", assetID))
			break
		}
		face, err := b.fonts.Face(ctx, assetID)
		if err != nil {
			b.log.Warn("font asset unresolved", zap.String("asset", assetID), zap.Error(err))
			break
		}
		if !seen[face.Family] {
			seen[face.Family] = true
			sheet.AddFontFace(css.FontFace{
				Family:  face.Family,
				Src:     fmt.Sprintf("url(%q) format(%q)", face.URL, face.Format),
				Display: "swap",
			})
		}
		props["font-family"] = css.Value{Raw: fmt.Sprintf("%q", face.Family)}
	case stackKey != "":
		stack, _ := StackCSS(stackKey)
		props["font-family"] = css.Value{Raw: stack}
	}

	if size, ok := SizeCSS(v.FontSize); ok && v.FontSize != "" {
		props["font-size"] = css.Value{Raw: size}
	}
	if v.TextColor != "" {
		props["color"] = css.Value{Raw: v.TextColor}
	}
	if v.BackgroundColor != "" {
		props["background-color"] = css.Value{Raw: v.BackgroundColor}
	}
	return props
}

// addRules appends one rule per selector, all carrying the same properties.
func addRules(sheet *css.Stylesheet, props map[string]css.Value, selectors ...string) {
	if len(props) == 0 {
		return
	}
	for _, sel := range selectors {
		sheet.AddRule(css.Rule{
			Selector:   parseRuleSelector(sel),
			Properties: maps.Clone(props),
		})
	}
}

func parseRuleSelector(sel string) css.Selector {
	out := css.Selector{Raw: sel}
	if len(sel) > 0 && sel[0] == '.' {
		out.Class = sel[1:]
	} else {
		out.Element = sel
	}
	return out
}
