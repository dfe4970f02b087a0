package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Processor decodes, scales and encodes images.
type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// Decode reads any registered format: jpeg, png, gif, bmp, webp.
func (p *Processor) Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", fmt.Errorf("image has zero size")
	}
	return img, format, nil
}

// OutputFormat returns the format an image of the given source format is stored in.
// Formats without an encoder fall back to jpeg.
func OutputFormat(format string) string {
	switch format {
	case "jpeg", "png", "gif", "bmp":
		return format
	default:
		return "jpeg"
	}
}

// ResizeToWidth scales img down so its width is at most maxWidth, keeping the
// aspect ratio. Narrower images are returned unchanged.
func (p *Processor) ResizeToWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || width <= maxWidth {
		return img
	}

	newHeight := int(float64(height) * float64(maxWidth) / float64(width))
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Fit center-crops img to the width:height aspect and scales the crop to
// exactly width x height.
func (p *Processor) Fit(img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid fit size %dx%d", width, height)
	}

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("image has zero size")
	}

	crop := b
	if srcW*height > srcH*width {
		w := max(srcH*width/height, 1)
		x0 := b.Min.X + (srcW-w)/2
		crop = image.Rect(x0, b.Min.Y, x0+w, b.Max.Y)
	} else {
		h := max(srcW*height/width, 1)
		y0 := b.Min.Y + (srcH-h)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)
	return dst, nil
}

// Extension is the file extension for an artifact decoded from format.
// JPEG sources keep the short "jpg" form.
func Extension(format string) string {
	if out := OutputFormat(format); out != "jpeg" {
		return out
	}
	return "jpg"
}

// Encode writes img in format. Unknown formats are written as JPEG.
func (p *Processor) Encode(img image.Image, format string) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	var err error
	switch OutputFormat(format) {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return &buf, nil
}

// Dimensions reads only the image header, without decoding pixels.
func Dimensions(r io.Reader) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}
