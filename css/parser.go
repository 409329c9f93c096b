package css

import (
	"bytes"
	"maps"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	// Log parsing start with source identifier if provided
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	var currentSelectors []string

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// End of input or error
			if parser.Err() != nil && parser.Err().Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(parser.Err()))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := string(data)
			switch atRule {
			case "@media":
				// Keep the query raw and preserve the block in the model
				query := rawTokenString(parser.Values())
				rules := p.parseMediaBlockRules(parser, sheet)
				p.log.Debug("Parsed @media block", zap.String("query", query), zap.Int("rules", len(rules)))
				sheet.Items = append(sheet.Items, StylesheetItem{
					MediaBlock: &MediaBlock{Query: query, Rules: rules},
				})
			case "@font-face":
				ff := p.parseFontFace(parser)
				sheet.Items = append(sheet.Items, StylesheetItem{FontFace: &ff})
			default:
				// Skip other @-rules with blocks
				p.skipAtRuleBlock(parser)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}
		case css.AtRuleGrammar:
			// Simple @-rule without block (e.g., @import)
			atRule := string(data)
			if atRule == "@import" {
				url := extractImportURL(parser.Values())
				if url != "" {
					sheet.Items = append(sheet.Items, StylesheetItem{Import: &url})
					p.log.Debug("Parsed @import", zap.String("url", url))
				}
			} else {
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}

		case css.BeginRulesetGrammar:
			currentSelectors = p.parseSelectors(data, parser.Values())

		case css.QualifiedRuleGrammar:
			// This shouldn't happen in our flow, but handle it
			currentSelectors = p.parseSelectors(data, parser.Values())
		}

		// Check for declarations after BeginRulesetGrammar
		if gt == css.BeginRulesetGrammar {
			props := p.parseRulesetProperties(parser)

			// Create rules for each selector
			for _, selStr := range currentSelectors {
				sel := p.parseSelector(selStr, sheet)
				if sel.IsSimple() {
					// Clone properties for each rule
					propsCopy := make(map[string]Value, len(props))
					maps.Copy(propsCopy, props)
					rule := Rule{
						Selector:   sel,
						Properties: propsCopy,
					}
					sheet.Items = append(sheet.Items, StylesheetItem{Rule: &rule})
				}
			}
			currentSelectors = nil
		}
	}
}

// ParseDeclarations parses the content of an inline style attribute into an
// ordered declaration list. Property names are lowercased; declarations
// without a value are skipped. Invalid input yields whatever declarations
// could be recovered, never an error.
func (p *Parser) ParseDeclarations(data []byte) []Declaration {
	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, true)

	var decls []Declaration
	for {
		gt, _, propData := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			return decls

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			decls = append(decls, Declaration{
				Property: strings.ToLower(string(propData)),
				Value:    p.parsePropertyValue(values),
			})

		case css.CustomPropertyGrammar:
			// CSS custom properties (--var) - skip for now
			continue
		}
	}
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			// url(something) - the token data is the full url(...) string
			s := string(t.Data)
			// Strip url( prefix and ) suffix
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// rawTokenString joins token data into a single string, collapsing whitespace
// runs into single spaces.
func rawTokenString(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	// Build full selector string from data and values
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	selectorStr := sb.String()

	// Split by comma for grouped selectors
	var selectors []string
	for s := range strings.SplitSeq(selectorStr, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseRulesetProperties parses property declarations until EndRulesetGrammar.
func (p *Parser) parseRulesetProperties(parser *css.Parser) map[string]Value {
	props := make(map[string]Value)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return props

		case css.DeclarationGrammar:
			propName := string(data)
			values := parser.Values()
			if len(values) > 0 {
				props[propName] = p.parsePropertyValue(values)
			}

		case css.CustomPropertyGrammar:
			// CSS custom properties (--var) - skip for now
			continue
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func (p *Parser) parsePropertyValue(tokens []css.Token) Value {
	if len(tokens) == 0 {
		return Value{}
	}

	raw := rawTokenString(tokens)
	val := Value{Raw: raw}

	// Handle single token cases
	if len(tokens) == 1 || (len(tokens) == 2 && tokens[1].TokenType == css.WhitespaceToken) {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			// Remove quotes
			s := string(t.Data)
			val.Keyword = unquote(s)
		case css.HashToken:
			// Color value
			val.Keyword = string(t.Data)
		}
		return val
	}

	// Handle function tokens (rgb(), url(), etc.)
	if tokens[0].TokenType == css.FunctionToken {
		val.Keyword = raw
		return val
	}

	// Multi-value properties - store as keyword with raw value
	val.Keyword = raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	// Find where number ends
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// parseSelector parses a single selector string into a Selector.
// Only element, class, and element.class shapes are decomposed; combinator,
// attribute, and pseudo selectors keep Raw only and produce a warning.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	if strings.ContainsAny(selStr, "+~>") {
		sheet.Warnings = append(sheet.Warnings, "unsupported combinator selector: "+selStr)
		p.log.Debug("Skipping combinator selector", zap.String("selector", selStr))
		return sel
	}
	if strings.Contains(selStr, "[") {
		sheet.Warnings = append(sheet.Warnings, "unsupported attribute selector: "+selStr)
		p.log.Debug("Skipping attribute selector", zap.String("selector", selStr))
		return sel
	}
	if strings.Contains(selStr, ":") {
		sheet.Warnings = append(sheet.Warnings, "unsupported pseudo selector: "+selStr)
		p.log.Debug("Skipping pseudo selector", zap.String("selector", selStr))
		return sel
	}

	// Descendant selector: decompose the rightmost part, keep Raw intact
	if strings.ContainsAny(selStr, " \t\n") {
		parts := strings.Fields(selStr)
		main := parseSimpleSelector(parts[len(parts)-1])
		sel.Element = main.Element
		sel.Class = main.Class
		return sel
	}

	simple := parseSimpleSelector(selStr)
	sel.Element = simple.Element
	sel.Class = simple.Class
	return sel
}

// parseSimpleSelector parses a simple selector (element, class, or element.class).
func parseSimpleSelector(selStr string) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	if selStr == "" {
		return sel
	}

	// Split by dot for class
	if element, class, found := strings.Cut(selStr, "."); found {
		if element != "" {
			sel.Element = element
		}
		sel.Class = class
	} else {
		sel.Element = selStr
	}

	return sel
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseFontFace parses an @font-face block.
func (p *Parser) parseFontFace(parser *css.Parser) FontFace {
	ff := FontFace{}

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return ff

		case css.DeclarationGrammar:
			propName := string(data)
			values := parser.Values()
			if len(values) == 0 {
				continue
			}

			// Build value string
			var parts []string
			for _, v := range values {
				if v.TokenType != css.WhitespaceToken {
					parts = append(parts, string(v.Data))
				}
			}
			valStr := strings.Join(parts, " ")

			switch propName {
			case "font-family":
				ff.Family = unquote(valStr)
			case "src":
				ff.Src = valStr
			case "font-style":
				ff.Style = valStr
			case "font-weight":
				ff.Weight = valStr
			case "font-display":
				ff.Display = valStr
			}
		}
	}
}

// parseMediaBlockRules parses rules inside an @media block and returns them.
func (p *Parser) parseMediaBlockRules(parser *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule
	var currentSelectors []string

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules

		case css.BeginRulesetGrammar:
			currentSelectors = p.parseSelectors(data, parser.Values())
			props := p.parseRulesetProperties(parser)

			// Create rules for each selector
			for _, selStr := range currentSelectors {
				sel := p.parseSelector(selStr, sheet)
				if sel.IsSimple() {
					propsCopy := make(map[string]Value, len(props))
					maps.Copy(propsCopy, props)
					rules = append(rules, Rule{
						Selector:   sel,
						Properties: propsCopy,
					})
				}
			}
			currentSelectors = nil
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
