package images

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
)

// Downscale resamples a raster payload so that neither side exceeds maxDim,
// keeping aspect ratio. The original data comes back untouched when it is
// already small enough, when maxDim is not positive, or when resampling
// would lose information we cannot reproduce (SVG is resolution independent,
// GIF may carry animation frames). JPEG stays JPEG encoded at jpegQuality;
// every other format becomes PNG since the remaining decoders (webp, tiff,
// bmp) are not formats we want to write back.
func Downscale(data []byte, info Info, maxDim, jpegQuality int) ([]byte, Info, error) {
	if maxDim <= 0 || info.Format == "svg" || info.Format == "gif" {
		return data, info, nil
	}
	if info.Width <= maxDim && info.Height <= maxDim {
		return data, info, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("unable to decode image: %w", err)
	}
	img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	out := Info{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	var buf bytes.Buffer
	switch info.Format {
	case "jpeg":
		out.Format = "jpeg"
		out.JPEGQuality = jpegQuality
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	default:
		out.Format = "png"
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	}
	if err != nil {
		return nil, Info{}, fmt.Errorf("unable to encode resized image: %w", err)
	}
	return buf.Bytes(), out, nil
}
