// Package thumbnail crops padded face previews out of source photos.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/identity"
)

// Extractor produces encoded face thumbnails. The zero value is not usable;
// construct with NewExtractor.
type Extractor struct {
	paddingRatio float64
	maxSize      int
	quality      int
}

// NewExtractor creates an extractor with the production padding and size.
func NewExtractor() *Extractor {
	return &Extractor{
		paddingRatio: constants.ThumbnailPaddingRatio,
		maxSize:      constants.ThumbnailMaxSize,
		quality:      constants.ThumbnailJPEGQuality,
	}
}

// Extract crops the padded region around a face box from the source image
// and returns it JPEG-encoded. Padding is paddingRatio of max(width, height)
// on all sides, clamped to image bounds.
func (e *Extractor) Extract(imageData []byte, box identity.BoundingBox) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	region := PaddedRect(box, img.Bounds(), e.paddingRatio)
	if region.Empty() {
		return nil, fmt.Errorf("face box %+v outside image bounds %v", box, img.Bounds())
	}

	crop := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(crop, crop.Bounds(), img, region.Min, draw.Src)

	scaled := scaleDown(crop, e.maxSize)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// PaddedRect expands a face box by ratio*max(w, h) on all sides and clamps
// the result to the image bounds.
func PaddedRect(box identity.BoundingBox, bounds image.Rectangle, ratio float64) image.Rectangle {
	side := box.Width
	if box.Height > side {
		side = box.Height
	}
	pad := int(float64(side) * ratio)

	r := image.Rect(box.X-pad, box.Y-pad, box.X+box.Width+pad, box.Y+box.Height+pad)
	return r.Intersect(bounds)
}

// scaleDown resizes an image to fit within maxSize, keeping aspect ratio.
// Images already within bounds are returned unchanged.
func scaleDown(img *image.RGBA, maxSize int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}

	var newW, newH int
	if w > h {
		newW = maxSize
		newH = h * maxSize / w
	} else {
		newH = maxSize
		newW = w * maxSize / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
