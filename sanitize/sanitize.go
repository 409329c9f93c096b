// Package sanitize normalizes rich text fragments produced by the inline
// editors before they are stored on a block. Only a small whitelist of
// formatting tags, attributes and style declarations survives. Disallowed
// tags are unwrapped rather than dropped, so no author text is ever lost;
// it just loses its markup. Fragment is idempotent, which lets the edit
// pipeline re-run it on already-clean content without churning the document.
package sanitize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"pbc/css"
)

// allowedTags survive sanitization. Every other tag is unwrapped: the tag
// itself disappears, its children stay.
var allowedTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true, "s": true,
	"del": true, "br": true, "a": true, "ul": true, "ol": true, "li": true,
	"span": true, "p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "img": true,
}

// voidTags never take an end tag.
var voidTags = map[string]bool{"br": true, "img": true}

// styleTags may carry a (filtered) style attribute. List containers and br
// stay bare.
var styleTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true, "s": true,
	"del": true, "a": true, "span": true, "p": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "img": true,
}

var (
	hrefPrefixes = []string{"http://", "https://", "mailto:", "/", "#"}
	srcPrefixes  = []string{"http://", "https://", "/", "data:image/"}
)

var fontSizeKeywords = map[string]bool{
	"xx-small": true, "x-small": true, "small": true, "medium": true,
	"large": true, "x-large": true, "xx-large": true,
	"smaller": true, "larger": true,
}

var textDecorations = map[string]bool{
	"none": true, "underline": true, "line-through": true, "overline": true,
}

// lengthUnits is ordered longest suffix first so rem is not shadowed by em.
var lengthUnits = []string{"vmin", "vmax", "rem", "px", "em", "pt", "vw", "vh", "%"}

var declParser = css.NewParser(nil)

// Fragment sanitizes an HTML fragment coming back from a rich text editor.
// Text is entity-escaped, unknown tags are unwrapped, attribute values are
// validated against per-attribute grammars, and style attributes are
// re-serialized with only whitelisted declarations. target="_blank" links
// always come back paired with rel="noopener noreferrer". Sanitizing
// already-sanitized output returns it unchanged.
func Fragment(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var out strings.Builder
	out.Grow(len(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out.String()
		case html.TextToken:
			out.WriteString(html.EscapeString(string(z.Text())))
		case html.StartTagToken:
			writeTag(&out, z.Token())
		case html.SelfClosingTagToken:
			t := z.Token()
			if writeTag(&out, t) && !voidTags[t.Data] {
				out.WriteString("</" + t.Data + ">")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); allowedTags[tag] && !voidTags[tag] {
				out.WriteString("</" + tag + ">")
			}
		}
		// comments and doctypes fall through and disappear
	}
}

// writeTag emits a start tag with its surviving attributes. It reports
// whether the tag was emitted at all.
func writeTag(out *strings.Builder, t html.Token) bool {
	if !allowedTags[t.Data] {
		return false
	}
	out.WriteByte('<')
	out.WriteString(t.Data)
	if len(t.Attr) > 0 {
		seen := make(map[string]bool, len(t.Attr))
		for _, a := range t.Attr {
			if seen[a.Key] || !attrAllowed(t.Data, a.Key) {
				continue
			}
			seen[a.Key] = true
			writeAttrValue(out, t.Data, a.Key, a.Val)
		}
	}
	out.WriteByte('>')
	return true
}

func attrAllowed(tag, name string) bool {
	switch name {
	case "style":
		return styleTags[tag]
	case "href", "target":
		return tag == "a"
	case "src", "alt", "title", "width", "height":
		return tag == "img"
	}
	return false
}

func writeAttrValue(out *strings.Builder, tag, name, value string) {
	switch name {
	case "href":
		if v := cleanURL(value, hrefPrefixes); v != "" {
			writeAttr(out, "href", v)
		}
	case "src":
		if v := cleanURL(value, srcPrefixes); v != "" {
			writeAttr(out, "src", v)
		}
	case "target":
		switch value {
		case "_blank":
			writeAttr(out, "target", "_blank")
			writeAttr(out, "rel", "noopener noreferrer")
		case "_self":
			writeAttr(out, "target", "_self")
		}
	case "style":
		if v := cleanStyle(value, tag); v != "" {
			writeAttr(out, "style", v)
		}
	case "width", "height":
		if v := strings.TrimSpace(value); isLength(v) {
			writeAttr(out, name, v)
		}
	default: // alt, title
		writeAttr(out, name, value)
	}
}

func writeAttr(out *strings.Builder, name, value string) {
	out.WriteByte(' ')
	out.WriteString(name)
	out.WriteString(`="`)
	out.WriteString(html.EscapeString(value))
	out.WriteByte('"')
}

// cleanURL returns the trimmed value when it starts with one of the given
// prefixes (matched case-insensitively), empty string otherwise.
func cleanURL(value string, prefixes []string) string {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return value
		}
	}
	return ""
}

// cleanStyle filters an inline style attribute declaration by declaration
// and re-serializes the survivors as "prop: value; prop: value".
func cleanStyle(value, tag string) string {
	var parts []string
	for _, d := range declParser.ParseDeclarations([]byte(value)) {
		v := strings.TrimSpace(d.Value.Raw)
		if v == "" || !declarationAllowed(tag, d.Property, v) {
			continue
		}
		parts = append(parts, d.Property+": "+v)
	}
	return strings.Join(parts, "; ")
}

func declarationAllowed(tag, prop, value string) bool {
	switch prop {
	case "color", "background-color":
		return isColor(value)
	case "font-size":
		return fontSizeKeywords[strings.ToLower(value)] || isLength(value)
	case "text-decoration":
		return textDecorations[strings.ToLower(value)]
	case "font-family":
		return isFontFamily(value)
	case "width", "height", "max-width", "max-height":
		return tag == "img" && isLength(value)
	}
	return false
}

func isColor(v string) bool {
	if strings.HasPrefix(v, "#") {
		return isHexColor(v[1:])
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		return isRGBColor(lower)
	}
	return namedColors[lower]
}

func isHexColor(digits string) bool {
	if len(digits) != 3 && len(digits) != 6 {
		return false
	}
	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// isRGBColor accepts rgb()/rgba() with a numeric-only component list. The
// value arrives lowercased with the rgb(/rgba( prefix already verified.
func isRGBColor(lower string) bool {
	if !strings.HasSuffix(lower, ")") {
		return false
	}
	open := strings.IndexByte(lower, '(')
	for _, r := range lower[open+1 : len(lower)-1] {
		switch {
		case r >= '0' && r <= '9':
		case r == ',' || r == '.' || r == '%' || r == '/' || r == ' ' || r == '-' || r == '+':
		default:
			return false
		}
	}
	return true
}

// isFontFamily validates a font stack without rewriting it: backslashes are
// ignored for the check, each comma-separated family may be quoted and must
// otherwise contain only letters, digits, spaces, hyphens or underscores.
func isFontFamily(v string) bool {
	v = strings.ReplaceAll(v, "\\", "")
	for seg := range strings.SplitSeq(v, ",") {
		seg = strings.Trim(strings.TrimSpace(seg), `'"`)
		if seg == "" {
			return false
		}
		for _, r := range seg {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
				r != ' ' && r != '-' && r != '_' {
				return false
			}
		}
	}
	return true
}

// isLength accepts auto, a bare number, or a number with a CSS length unit.
func isLength(v string) bool {
	v = strings.ToLower(v)
	if v == "auto" {
		return true
	}
	for _, unit := range lengthUnits {
		if n, ok := strings.CutSuffix(v, unit); ok {
			return isNumber(n)
		}
	}
	return isNumber(v)
}

func isNumber(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// namedColors are the CSS named color keywords, plus transparent.
var namedColors = map[string]bool{
	"aliceblue": true, "antiquewhite": true, "aqua": true, "aquamarine": true,
	"azure": true, "beige": true, "bisque": true, "black": true,
	"blanchedalmond": true, "blue": true, "blueviolet": true, "brown": true,
	"burlywood": true, "cadetblue": true, "chartreuse": true, "chocolate": true,
	"coral": true, "cornflowerblue": true, "cornsilk": true, "crimson": true,
	"cyan": true, "darkblue": true, "darkcyan": true, "darkgoldenrod": true,
	"darkgray": true, "darkgreen": true, "darkgrey": true, "darkkhaki": true,
	"darkmagenta": true, "darkolivegreen": true, "darkorange": true,
	"darkorchid": true, "darkred": true, "darksalmon": true,
	"darkseagreen": true, "darkslateblue": true, "darkslategray": true,
	"darkslategrey": true, "darkturquoise": true, "darkviolet": true,
	"deeppink": true, "deepskyblue": true, "dimgray": true, "dimgrey": true,
	"dodgerblue": true, "firebrick": true, "floralwhite": true,
	"forestgreen": true, "fuchsia": true, "gainsboro": true, "ghostwhite": true,
	"gold": true, "goldenrod": true, "gray": true, "green": true,
	"greenyellow": true, "grey": true, "honeydew": true, "hotpink": true,
	"indianred": true, "indigo": true, "ivory": true, "khaki": true,
	"lavender": true, "lavenderblush": true, "lawngreen": true,
	"lemonchiffon": true, "lightblue": true, "lightcoral": true,
	"lightcyan": true, "lightgoldenrodyellow": true, "lightgray": true,
	"lightgreen": true, "lightgrey": true, "lightpink": true,
	"lightsalmon": true, "lightseagreen": true, "lightskyblue": true,
	"lightslategray": true, "lightslategrey": true, "lightsteelblue": true,
	"lightyellow": true, "lime": true, "limegreen": true, "linen": true,
	"magenta": true, "maroon": true, "mediumaquamarine": true,
	"mediumblue": true, "mediumorchid": true, "mediumpurple": true,
	"mediumseagreen": true, "mediumslateblue": true,
	"mediumspringgreen": true, "mediumturquoise": true,
	"mediumvioletred": true, "midnightblue": true, "mintcream": true,
	"mistyrose": true, "moccasin": true, "navajowhite": true, "navy": true,
	"oldlace": true, "olive": true, "olivedrab": true, "orange": true,
	"orangered": true, "orchid": true, "palegoldenrod": true,
	"palegreen": true, "paleturquoise": true, "palevioletred": true,
	"papayawhip": true, "peachpuff": true, "peru": true, "pink": true,
	"plum": true, "powderblue": true, "purple": true, "rebeccapurple": true,
	"red": true, "rosybrown": true, "royalblue": true, "saddlebrown": true,
	"salmon": true, "sandybrown": true, "seagreen": true, "seashell": true,
	"sienna": true, "silver": true, "skyblue": true, "slateblue": true,
	"slategray": true, "slategrey": true, "snow": true, "springgreen": true,
	"steelblue": true, "tan": true, "teal": true, "thistle": true,
	"tomato": true, "transparent": true, "turquoise": true, "violet": true,
	"wheat": true, "white": true, "whitesmoke": true, "yellow": true,
	"yellowgreen": true,
}
