// Package export packages a rendered page into a self-contained zip bundle:
// a templated index page wrapping the rendered markup, the theme stylesheet,
// author CSS/JS, the payloads of every font the document references, an icon
// derived from the site logo and an XML manifest describing the contents.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"pbc/assets"
	"pbc/document"
	"pbc/fonts"
	"pbc/preview"
	"pbc/state"
	imgutil "pbc/utils/images"
)

const (
	indexName     = "index.html"
	themeCSSName  = "theme.css"
	customCSSName = "custom.css"
	customJSName  = "custom.js"
	iconName      = "icon.png"
	fontsDir      = "fonts"
	manifestName  = "manifest.xml"

	iconSize = 192
)

// Library is the slice of the asset client the packer needs: metadata
// lookups for theme fonts and the site logo, payload downloads for both.
type Library interface {
	Get(ctx context.Context, id assets.ID) (assets.AssetPayload, error)
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// bundleFont is one font payload traveling inside the bundle.
type bundleFont struct {
	Family string
	File   string // bundle path below fonts/
	Format fonts.FontFormat
	Data   []byte
}

// entry records a written bundle member for the manifest.
type entry struct {
	Name      string
	MediaType string
}

// Build writes the page bundle to outputPath. The entry order is fixed:
// index.html, theme.css, custom.css, custom.js, icon.png, the font payloads
// in discovery order, manifest.xml last. Fonts and the logo resolve through
// lib; failures there degrade to warnings so an unreachable asset never
// loses the page itself.
func Build(ctx context.Context, env *state.LocalEnv, lib Library, doc *document.PageDocument, res preview.Result, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("export")

	if _, err := os.Stat(outputPath); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputPath)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputPath))
		if err = os.Remove(outputPath); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	log.Info("Packaging page bundle", zap.String("page", doc.Slug), zap.String("output", outputPath))

	bundleFonts := collectFonts(ctx, lib, doc, log)
	icon := buildIcon(ctx, lib, env.Cfg.Site.LogoAsset, log)

	index, err := indexHTML(doc, res, env.Cfg.Site, bundleFonts, icon != nil)
	if err != nil {
		return fmt.Errorf("unable to build index page: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(outputPath), ".bundle-*.zip")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	var entries []entry
	write := func(name, mediaType string, data []byte) error {
		if err := writeDataToZip(zw, name, data); err != nil {
			return fmt.Errorf("unable to write %s: %w", name, err)
		}
		entries = append(entries, entry{Name: name, MediaType: mediaType})
		return nil
	}

	if err := write(indexName, "text/html", []byte(index)); err != nil {
		return err
	}
	if err := write(themeCSSName, "text/css", []byte(res.ThemeCSS)); err != nil {
		return err
	}
	if css := customCSS(doc, res); css != "" {
		if err := write(customCSSName, "text/css", []byte(css)); err != nil {
			return err
		}
	}
	if js := customJS(doc, res); js != "" {
		if err := write(customJSName, "text/javascript", []byte(js)); err != nil {
			return err
		}
	}
	if icon != nil {
		if err := write(iconName, "image/png", icon); err != nil {
			return err
		}
	}
	for _, bf := range bundleFonts {
		if err := write(bf.File, formatMIME(bf.Format), bf.Data); err != nil {
			return err
		}
	}

	if err := writeManifest(zw, doc, bundleFonts, entries); err != nil {
		return fmt.Errorf("unable to write manifest: %w", err)
	}

	// make sure buffers are flushed before continuing
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}

	if env.Cfg.Export.FixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	return copyFile(tmpName, outputPath)
}

// collectFonts resolves every font the document references into payloads the
// bundle can carry. Style values at every cascade level (theme roots, block
// base styles, style targets) carry font asset IDs, resolved through the
// library; inline fonts travel as full references recorded by the usage
// tracker and resolve directly. Order follows discovery, duplicates collapse
// on the asset ID and the family name.
func collectFonts(ctx context.Context, lib Library, doc *document.PageDocument, log *zap.Logger) []bundleFont {
	var out []bundleFont
	seenFamily := make(map[string]bool)
	seenFile := make(map[string]bool)
	seenID := make(map[string]bool)

	add := func(a fonts.FontAsset) {
		if a.URL == "" {
			return
		}
		family := a.FamilyName()
		if seenFamily[family] {
			return
		}
		seenFamily[family] = true
		if lib == nil {
			log.Warn("font payload skipped, no asset library", zap.String("family", family))
			return
		}
		data, err := lib.Fetch(ctx, a.URL)
		if err != nil {
			log.Warn("font payload not reachable", zap.String("family", family), zap.String("url", a.URL), zap.Error(err))
			return
		}
		out = append(out, bundleFont{
			Family: family,
			File:   fontFileName(family, a.Format, seenFile),
			Format: a.Format,
			Data:   data,
		})
	}

	byID := func(id string) {
		if id == "" || seenID[id] {
			return
		}
		seenID[id] = true
		if lib == nil {
			log.Warn("styled font skipped, no asset library", zap.String("asset", id))
			return
		}
		a, err := lib.Get(ctx, assets.ID(id))
		if err != nil {
			log.Warn("styled font unresolved", zap.String("asset", id), zap.Error(err))
			return
		}
		if a.Kind != assets.KindFont {
			log.Warn("styled asset is not a font", zap.String("asset", id), zap.String("kind", a.Kind.String()))
			return
		}
		add(a.Font())
	}

	byID(doc.Theme.Body.FontAsset)
	byID(doc.Theme.Sections.FontAsset)
	for _, b := range doc.Blocks {
		for _, id := range blockFontIDs(b.Props) {
			byID(id)
		}
		if inline, ok := b.Props["inline_fonts"].([]any); ok {
			for _, item := range inline {
				if a, ok := fonts.NormalizeAsset(item); ok {
					add(a)
				}
			}
		}
	}
	return out
}

// blockFontIDs lists the font asset IDs referenced by a block's base style
// and style targets, targets walked in sorted key order.
func blockFontIDs(props map[string]any) []string {
	var out []string
	if style, ok := props["style"].(map[string]any); ok {
		if id, ok := style["font_asset"].(string); ok && id != "" {
			out = append(out, id)
		}
	}
	if targets, ok := props["style_targets"].(map[string]any); ok {
		keys := make([]string, 0, len(targets))
		for k := range targets {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			style, ok := targets[k].(map[string]any)
			if !ok {
				continue
			}
			if id, ok := style["font_asset"].(string); ok && id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// fontFileName derives a unique bundle path for a family's payload.
func fontFileName(family string, format fonts.FontFormat, seen map[string]bool) string {
	base := slug.Make(family)
	if base == "" {
		base = "font"
	}
	name := base + fontExt(format)
	for i := 2; seen[name]; i++ {
		name = fmt.Sprintf("%s-%d%s", base, i, fontExt(format))
	}
	seen[name] = true
	return fontsDir + "/" + name
}

func fontExt(f fonts.FontFormat) string {
	switch f {
	case fonts.FontFormatWoff2:
		return ".woff2"
	case fonts.FontFormatWoff:
		return ".woff"
	case fonts.FontFormatOpentype:
		return ".otf"
	default:
		return ".ttf"
	}
}

// formatMIME maps a font format to the media type recorded in the manifest.
func formatMIME(f fonts.FontFormat) string {
	switch f {
	case fonts.FontFormatWoff2:
		return "font/woff2"
	case fonts.FontFormatWoff:
		return "font/woff"
	case fonts.FontFormatOpentype:
		return "font/otf"
	default:
		return "font/ttf"
	}
}

// buildIcon turns the configured site logo into the bundle icon. SVG logos
// rasterize to a square PNG, PNG payloads pass through, anything else is
// skipped.
func buildIcon(ctx context.Context, lib Library, logoID string, log *zap.Logger) []byte {
	if logoID == "" || lib == nil {
		return nil
	}
	a, err := lib.Get(ctx, assets.ID(logoID))
	if err != nil {
		log.Warn("logo asset unresolved", zap.String("asset", logoID), zap.Error(err))
		return nil
	}
	if a.URL == "" {
		return nil
	}
	data, err := lib.Fetch(ctx, a.URL)
	if err != nil {
		log.Warn("logo payload not reachable", zap.String("asset", logoID), zap.Error(err))
		return nil
	}
	info, err := imgutil.Probe(data)
	if err != nil {
		log.Warn("logo payload not recognized", zap.String("asset", logoID), zap.Error(err))
		return nil
	}
	switch info.Format {
	case "svg":
		icon, err := imgutil.RasterizeSVGToPNG(data, iconSize, iconSize)
		if err != nil {
			log.Warn("unable to rasterize logo", zap.String("asset", logoID), zap.Error(err))
			return nil
		}
		return icon
	case "png":
		return data
	default:
		log.Debug("logo format not suitable for bundle icon", zap.String("format", info.Format))
		return nil
	}
}

// customCSS prefers the renderer's echo of the author stylesheet, falling
// back to the document's own.
func customCSS(doc *document.PageDocument, res preview.Result) string {
	if res.CustomCSS != "" {
		return res.CustomCSS
	}
	return doc.CustomCSS
}

func customJS(doc *document.PageDocument, res preview.Result) string {
	if res.CustomJS != "" {
		return res.CustomJS
	}
	return doc.CustomJS
}

func writeManifest(zw *zip.Writer, doc *document.PageDocument, bundleFonts []bundleFont, entries []entry) error {
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	bundle := x.CreateElement("bundle")
	bundle.CreateAttr("version", "1")

	page := bundle.CreateElement("page")
	page.CreateAttr("title", doc.Title)
	page.CreateAttr("slug", doc.Slug)
	page.CreateAttr("status", doc.Status.String())
	if doc.PublishedAt != nil {
		page.CreateAttr("published", doc.PublishedAt.Format(time.RFC3339))
	}

	blocks := bundle.CreateElement("blocks")
	blocks.CreateAttr("count", strconv.Itoa(len(doc.Blocks)))
	for _, b := range doc.Blocks {
		el := blocks.CreateElement("block")
		el.CreateAttr("id", b.ID)
		el.CreateAttr("type", b.Type)
	}

	resources := bundle.CreateElement("resources")
	for _, e := range entries {
		el := resources.CreateElement("resource")
		el.CreateAttr("name", e.Name)
		el.CreateAttr("media-type", e.MediaType)
	}

	if len(bundleFonts) > 0 {
		fontsEl := bundle.CreateElement("fonts")
		for _, bf := range bundleFonts {
			el := fontsEl.CreateElement("font")
			el.CreateAttr("family", bf.Family)
			el.CreateAttr("file", bf.File)
			el.CreateAttr("format", bf.Format.String())
		}
	}

	return writeXMLToZip(zw, manifestName, x)
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// copyZipWithoutDataDescriptors repacks the archive so no entry carries a
// data descriptor record; some unzip implementations choke on them.
func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor

		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
