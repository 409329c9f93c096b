package fonts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// SniffFormat detects the font format from file content.
func SniffFormat(data []byte) (FontFormat, bool) {
	switch {
	case filetype.Is(data, "woff2"):
		return FontFormatWoff2, true
	case filetype.Is(data, "woff"):
		return FontFormatWoff, true
	case filetype.Is(data, "ttf"):
		return FontFormatTruetype, true
	case filetype.Is(data, "otf"):
		return FontFormatOpentype, true
	}
	return "", false
}

var uploadExtensions = map[string]FontFormat{
	".woff2": FontFormatWoff2,
	".woff":  FontFormatWoff,
	".ttf":   FontFormatTruetype,
	".otf":   FontFormatOpentype,
}

// ValidateUpload checks a font file before it goes to the asset service. The
// extension must be one of woff2/woff/ttf/otf and the file content has to
// agree with it.
func ValidateUpload(filename string, data []byte) (FontFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := uploadExtensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported font file %q: only WOFF2/WOFF/TTF/OTF files are supported", filename)
	}
	got, ok := SniffFormat(data)
	if !ok {
		return "", fmt.Errorf("font file %q is not a recognizable font", filename)
	}
	if got != want {
		return "", fmt.Errorf("font file %q contains %s data but the extension says %s", filename, got, want)
	}
	return want, nil
}
