// Package spritesmith packs a list of images into a single sprite sheet.
//
// Run decodes every input, lays the images out with one of the named
// algorithms, composites them onto a transparent canvas and returns the
// encoded sheet together with each image's placement:
//
//	result, err := spritesmith.Run(ctx, []string{"icons/home.png", "icons/user.png"}, spritesmith.Options{
//		Padding:   5,
//		Algorithm: spritesmith.AlgorithmBinaryTree,
//		Format:    spritesmith.FormatPNG,
//	})
//
// Coordinates are keyed by the input path exactly as given.
package spritesmith

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Export formats
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// DefaultJPEGQuality is used when Options.Quality is zero
const DefaultJPEGQuality = 90

var (
	// ErrNoImages is returned when Run is called without input paths.
	ErrNoImages = errors.New("no images to pack")
	// ErrUnknownAlgorithm is returned for an unsupported layout name.
	ErrUnknownAlgorithm = errors.New("unknown packing algorithm")
	// ErrUnknownFormat is returned for an unsupported export format.
	ErrUnknownFormat = errors.New("unknown export format")
)

// Options control layout and encoding of a sheet
type Options struct {
	Padding   int    // Gap in pixels between neighbouring images
	Algorithm string // One of the Algorithm* constants (default: binary-tree)
	Format    string // "png" or "jpeg" (default: png)
	Quality   int    // JPEG quality 1-100 (default: 90)
}

// Coordinates is the rectangle an image occupies on the sheet
type Coordinates struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Properties describes the sheet as a whole
type Properties struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is the output of a packing run
type Result struct {
	Image       []byte
	Properties  Properties
	Coordinates map[string]Coordinates
}

// NormalizeFormat maps format aliases onto the canonical names.
// An empty format means png.
func NormalizeFormat(format string) (string, error) {
	switch format {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Extension returns the file extension (without dot) for a format
func Extension(format string) string {
	if f, err := NormalizeFormat(format); err == nil && f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// Run packs the images at paths into a single sheet.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}
	if opts.Padding < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %d", opts.Padding)
	}

	format, err := NormalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	layout, err := lookupLayout(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	// 1. Decode every input
	items := make([]*item, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := decodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		b := img.Bounds()
		items = append(items, &item{
			path:   path,
			img:    img,
			width:  b.Dx() + opts.Padding,
			height: b.Dy() + opts.Padding,
		})
	}

	// 2. Lay out padded rectangles
	layout(items)

	// 3. Measure the canvas, dropping the trailing padding
	var width, height int
	for _, it := range items {
		width = max(width, it.x+it.width)
		height = max(height, it.y+it.height)
	}
	width = max(width-opts.Padding, 0)
	height = max(height-opts.Padding, 0)

	// 4. Composite
	sheet := image.NewNRGBA(image.Rect(0, 0, width, height))
	coords := make(map[string]Coordinates, len(items))
	for _, it := range items {
		b := it.img.Bounds()
		dst := image.Rect(it.x, it.y, it.x+b.Dx(), it.y+b.Dy())
		draw.Draw(sheet, dst, it.img, b.Min, draw.Src)

		coords[it.path] = Coordinates{
			X:      it.x,
			Y:      it.y,
			Width:  b.Dx(),
			Height: b.Dy(),
		}
	}

	// 5. Encode
	data, err := encode(sheet, format, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("encode sheet: %w", err)
	}

	return &Result{
		Image:       data,
		Properties:  Properties{Width: width, Height: height},
		Coordinates: coords,
	}, nil
}

// encode serialises the sheet in the requested format
func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatJPEG:
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
