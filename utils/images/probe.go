// Package images probes and lightly processes image payloads for asset
// uploads and bundle packaging.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pbc/jpegquality"
)

// Info describes a probed image payload.
type Info struct {
	Format      string // decoder name: jpeg, png, gif, bmp, tiff, webp or svg
	Width       int
	Height      int
	JPEGQuality int // estimated from quantization tables, 0 when unknown
}

// MIME returns the canonical content type for the probed format.
func (i Info) MIME() string {
	switch i.Format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "svg":
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Ext returns the conventional file extension for the probed format, without
// the dot.
func (i Info) Ext() string {
	if i.Format == "jpeg" {
		return "jpg"
	}
	return i.Format
}

// Probe determines format and pixel dimensions of an image payload without
// decoding pixel data. JPEG data additionally gets an estimated encoder
// quality, SVG dimensions are derived from the viewBox and may be zero when
// the document does not declare one.
func Probe(data []byte) (Info, error) {
	if looksLikeSVG(data) {
		return probeSVG(data)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("unable to decode image header: %w", err)
	}
	info := Info{Format: format, Width: cfg.Width, Height: cfg.Height}
	if format == "jpeg" {
		// Quality stays 0 when the tables do not follow the libjpeg scaling.
		if jr, err := jpegquality.NewWithBytes(data); err == nil {
			info.JPEGQuality = jr.Quality()
		}
	}
	return info, nil
}

// looksLikeSVG reports whether the payload is an SVG document. SVG is XML
// text without a magic number, so we look for the root element within the
// leading kilobyte, which is plenty for any declaration, doctype or comment
// preceding it.
func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("<svg"))
}

func probeSVG(data []byte) (Info, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("unable to parse SVG: %w", err)
	}
	return Info{
		Format: "svg",
		Width:  max(int(math.Ceil(icon.ViewBox.W)), 0),
		Height: max(int(math.Ceil(icon.ViewBox.H)), 0),
	}, nil
}
