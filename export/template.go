package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"pbc/config"
	"pbc/document"
	"pbc/preview"
	"pbc/state"
)

//go:embed index.html.tmpl
var indexTmpl string

const bundleExt = ".zip"

// fontFace is the shell template's view of one bundled font.
type fontFace struct {
	Family string
	File   string
	Format string
}

// pageData is what the bundle shell template sees.
type pageData struct {
	Title        string
	SiteName     string
	Language     string
	Content      string
	HasIcon      bool
	HasCustomCSS bool
	HasCustomJS  bool
	Fonts        []fontFace
}

// indexHTML renders the bundle's index page. The shell wraps the rendered
// fragment and declares a local @font-face for every bundled payload so the
// page keeps its fonts offline. A renderer that only produced the complete
// page keeps it verbatim - wrapping a full document again would nest html
// elements.
func indexHTML(doc *document.PageDocument, res preview.Result, site config.SiteConfig, bundleFonts []bundleFont, hasIcon bool) (string, error) {
	content := res.ContentHTML
	if content == "" {
		if looksLikeDocument(res.HTML) {
			return res.HTML, nil
		}
		content = res.HTML
	}

	data := pageData{
		Title:        doc.Title,
		SiteName:     site.Name,
		Language:     site.DefaultLanguage,
		Content:      content,
		HasIcon:      hasIcon,
		HasCustomCSS: customCSS(doc, res) != "",
		HasCustomJS:  customJS(doc, res) != "",
	}
	for _, bf := range bundleFonts {
		data.Fonts = append(data.Fonts, fontFace{Family: bf.Family, File: bf.File, Format: bf.Format.String()})
	}

	tmpl, err := template.New("index").Funcs(sprig.FuncMap()).Parse(indexTmpl)
	if err != nil {
		return "", fmt.Errorf("unable to parse bundle page template: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// looksLikeDocument reports whether the markup already is a complete page.
func looksLikeDocument(s string) bool {
	head := s
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(strings.ToLower(head), "<html")
}

// Values is a struct that holds variables we make available for output name
// template expansion.
type Values struct {
	Context string
	Title   string
	Slug    string
	Status  string
	Date    string
	Site    string
	Blocks  int
}

func buildValues(doc *document.PageDocument, cfg *config.Config, name config.TemplateFieldName) Values {
	v := Values{
		Context: string(name),
		Title:   doc.Title,
		Slug:    doc.Slug,
		Status:  doc.Status.String(),
		Site:    cfg.Site.Name,
		Blocks:  len(doc.Blocks),
	}
	if doc.PublishedAt != nil {
		v.Date = doc.PublishedAt.Format("2006-01-02")
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, v Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OutputPath returns the constructed bundle path for a document when the
// caller gave no explicit destination. It uses either the default naming
// scheme or the user-defined template, cleans the path up and if requested
// transliterates it. The bundle always lands below the source document's
// directory.
func OutputPath(doc *document.PageDocument, src string, env *state.LocalEnv) string {
	outDir := filepath.Dir(src)
	defaultFile := defaultFileName(doc, src, env)

	if env.Cfg.Export.OutputNameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	expandedName := expandOutputNameTemplate(doc, env)
	if strings.TrimSpace(expandedName) == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFile)
	}

	return assemblePathWithSubdirs(outDir, expandedName, env)
}

func defaultFileName(doc *document.PageDocument, src string, env *state.LocalEnv) string {
	baseName := doc.Slug
	if baseName == "" {
		baseName = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if env.Cfg.Export.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + bundleExt
}

func expandOutputNameTemplate(doc *document.PageDocument, env *state.LocalEnv) string {
	name := config.OutputNameTemplateFieldName
	expandedName, err := expandTemplate(name, env.Cfg.Export.OutputNameTemplate, buildValues(doc, env.Cfg, name))
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output
// path, cleaning and transliterating segments as needed.
func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	pathSegments := splitPathSegments(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + bundleExt
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitPathSegments(p string) []string {
	var segments []string
	p = strings.TrimSuffix(p, string(os.PathSeparator))
	for p != "" {
		head, tail := filepath.Split(p)
		if tail != "" {
			segments = slices.Insert(segments, 0, tail)
		}
		p = strings.TrimSuffix(head, string(os.PathSeparator))
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Export.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
