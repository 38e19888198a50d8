package common

// Image processor for resizing and format conversion
//
// Responsibilities:
// 1. Decode any registered source format (JPEG, PNG, GIF, BMP, TIFF, WebP)
//    honouring EXIF orientation
// 2. Resize into a target box:
//    - cover:   scale to fill, crop overflow at the anchor
//    - contain: scale to fit, letterbox on a transparent canvas
//    - fill:    stretch to the exact box
//    - inside:  scale to fit, no canvas
// 3. Encode:
//    - WebP (lossy, quality 1-100)
//    - PNG (compression level 0-9; quality below 100 quantises to a palette)
//    - JPEG (quality 1-100)

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrUnknownFit      = errors.New("unknown fit mode")
	ErrUnknownPosition = errors.New("unknown position")
)

// FileDescriptor maps one source image to its optimized output
type FileDescriptor struct {
	Input  string
	Output string
	Name   string
}

// ConversionParams are the fixed parameters applied to one image class.
// A zero Width and Height means the image keeps its dimensions.
type ConversionParams struct {
	Width            int
	Height           int
	Fit              string
	Position         string
	Format           string
	Quality          int
	CompressionLevel int
}

var anchors = map[string]imaging.Anchor{
	"center":       imaging.Center,
	"top":          imaging.Top,
	"bottom":       imaging.Bottom,
	"left":         imaging.Left,
	"right":        imaging.Right,
	"top-left":     imaging.TopLeft,
	"top-right":    imaging.TopRight,
	"bottom-left":  imaging.BottomLeft,
	"bottom-right": imaging.BottomRight,
}

// Convert decodes srcPath, transforms it and writes the encoded result to
// dstPath, truncating any existing file
func Convert(srcPath, dstPath string, p ConversionParams) error {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}

	img, err = Transform(img, p)
	if err != nil {
		return err
	}

	f, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Encode(f, img, p); err != nil {
		f.Close()
		os.Remove(dstPath)
		return fmt.Errorf("failed to encode %s: %w", p.Format, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// Transform resizes img according to the fit mode and anchor in p
func Transform(img image.Image, p ConversionParams) (image.Image, error) {
	if p.Width == 0 && p.Height == 0 {
		return img, nil
	}

	anchor, ok := anchors[p.Position]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPosition, p.Position)
	}

	// One missing side keeps the aspect ratio whatever the fit mode
	if p.Width == 0 || p.Height == 0 {
		return imaging.Resize(img, p.Width, p.Height, imaging.Lanczos), nil
	}

	switch p.Fit {
	case "cover":
		return imaging.Fill(img, p.Width, p.Height, anchor, imaging.Lanczos), nil
	case "fill":
		return imaging.Resize(img, p.Width, p.Height, imaging.Lanczos), nil
	case "inside":
		w, h := scaleInside(img.Bounds(), p.Width, p.Height)
		return imaging.Resize(img, w, h, imaging.Lanczos), nil
	case "contain":
		w, h := scaleInside(img.Bounds(), p.Width, p.Height)
		fitted := imaging.Resize(img, w, h, imaging.Lanczos)
		canvas := imaging.New(p.Width, p.Height, color.NRGBA{})
		return imaging.Paste(canvas, fitted, anchorPoint(canvas.Bounds(), fitted.Bounds(), anchor)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFit, p.Fit)
	}
}

// Encode writes img to w in the output format named by p
func Encode(w io.Writer, img image.Image, p ConversionParams) error {
	switch p.Format {
	case "webp":
		options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(p.Quality))
		if err != nil {
			return err
		}
		return webp.Encode(w, img, options)
	case "png":
		if p.Quality > 0 && p.Quality < 100 {
			img = Quantize(img, paletteSize(p.Quality))
		}
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(pngCompression(p.CompressionLevel)))
	case "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(p.Quality))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, p.Format)
	}
}

// Quantize reduces img to at most colors colors with Floyd-Steinberg
// dithering
func Quantize(img image.Image, colors int) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	palette := q.Quantize(make(color.Palette, 0, colors), img)

	b := img.Bounds()
	paletted := image.NewPaletted(b, palette)
	draw.FloydSteinberg.Draw(paletted, b, img, b.Min)
	return paletted
}

// paletteSize maps PNG quality 1-99 onto 2-256 palette entries
func paletteSize(quality int) int {
	n := int(math.Round(256 * float64(quality) / 100))
	if n < 2 {
		return 2
	}
	if n > 256 {
		return 256
	}
	return n
}

// scaleInside returns the largest size with the source aspect ratio that
// fits in width x height
func scaleInside(b image.Rectangle, width, height int) (int, int) {
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return width, height
	}
	ratio := math.Min(float64(width)/float64(srcW), float64(height)/float64(srcH))
	w := int(math.Max(1, math.Round(float64(srcW)*ratio)))
	h := int(math.Max(1, math.Round(float64(srcH)*ratio)))
	return w, h
}

func anchorPoint(canvas, img image.Rectangle, anchor imaging.Anchor) image.Point {
	dx := canvas.Dx() - img.Dx()
	dy := canvas.Dy() - img.Dy()

	switch anchor {
	case imaging.TopLeft:
		return image.Pt(0, 0)
	case imaging.Top:
		return image.Pt(dx/2, 0)
	case imaging.TopRight:
		return image.Pt(dx, 0)
	case imaging.Left:
		return image.Pt(0, dy/2)
	case imaging.Right:
		return image.Pt(dx, dy/2)
	case imaging.BottomLeft:
		return image.Pt(0, dy)
	case imaging.Bottom:
		return image.Pt(dx/2, dy)
	case imaging.BottomRight:
		return image.Pt(dx, dy)
	default:
		return image.Pt(dx/2, dy/2)
	}
}

// pngCompression maps a zlib-style 0-9 level onto the encoder's levels
func pngCompression(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
