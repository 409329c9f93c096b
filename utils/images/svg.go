package images

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSVGSize stands in for documents that declare no usable viewBox.
const defaultSVGSize = 1024

// maxRasterDim caps the pixel dimensions of a rasterized SVG. A hostile
// viewBox (say "0 0 100000 100000") would otherwise make us allocate tens of
// gigabytes for the RGBA buffer.
const maxRasterDim = 8192

// RasterizeSVG renders SVG data to an RGBA image over a transparent
// background.
//
//   - targetW == 0 && targetH == 0: render at viewBox size (defaultSVGSize
//     when the document declares none)
//   - one of targetW/targetH > 0: scale by that side keeping aspect ratio
//   - both > 0: fit into the box keeping aspect ratio
func RasterizeSVG(data []byte, targetW, targetH int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse SVG: %w", err)
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}

	w, h := intrW, intrH
	switch {
	case targetW <= 0 && targetH <= 0:
		// Keep intrinsic size.
	case targetW > 0 && targetH <= 0:
		w = targetW
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	case targetH > 0 && targetW <= 0:
		h = targetH
		w = int(math.Round(float64(h) * float64(intrW) / float64(intrH)))
	default:
		scale := math.Min(float64(targetW)/float64(intrW), float64(targetH)/float64(intrH))
		w = int(math.Round(float64(intrW) * scale))
		h = int(math.Round(float64(intrH) * scale))
	}
	w = max(w, 1)
	h = max(h, 1)

	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}

// RasterizeSVGToPNG is RasterizeSVG with the result PNG encoded, which is
// what bundle icons want.
func RasterizeSVGToPNG(data []byte, targetW, targetH int) ([]byte, error) {
	img, err := RasterizeSVG(data, targetW, targetH)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("unable to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
