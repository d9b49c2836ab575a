package cssprite

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/yacobolo/cssprite/internal/spritesmith"
)

// PackRequest is one packing call
type PackRequest struct {
	Paths     []string // Absolute or SourceDir-relative image paths
	Padding   int      // Effective padding, already scaled
	Algorithm string
	Format    string
}

// Sheet is what a packer returns: the encoded image plus placements keyed
// by the request paths
type Sheet struct {
	Image       []byte
	Properties  Properties
	Coordinates map[string]Placement
}

// Packer is the rectangle-packing capability
type Packer interface {
	Pack(ctx context.Context, req PackRequest) (*Sheet, error)
}

// SpritesmithPacker packs with the bundled internal/spritesmith layouts
type SpritesmithPacker struct{}

// Pack implements Packer
func (SpritesmithPacker) Pack(ctx context.Context, req PackRequest) (*Sheet, error) {
	result, err := spritesmith.Run(ctx, req.Paths, spritesmith.Options{
		Padding:   req.Padding,
		Algorithm: req.Algorithm,
		Format:    req.Format,
	})
	if err != nil {
		return nil, err
	}

	coords := make(map[string]Placement, len(result.Coordinates))
	for path, c := range result.Coordinates {
		coords[path] = Placement{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
	}

	return &Sheet{
		Image:       result.Image,
		Properties:  Properties{Width: result.Properties.Width, Height: result.Properties.Height},
		Coordinates: coords,
	}, nil
}

// ScalePadding multiplies the base padding by the density scale so icon
// spacing is the same at every resolution
func ScalePadding(padding int, scale float64) int {
	if padding <= 0 || scale <= 0 {
		return 0
	}
	return int(math.Round(float64(padding) * scale))
}

// sheetRequest describes one sheet to build for a set
type sheetRequest struct {
	basePath string   // Directory of the set
	images   []string // Filenames within basePath
	scale    float64  // 1 for standard, ratio for retina
	output   string   // Sheet file to write
}

// generateSheet packs one image group and writes the sheet to disk
func (b *Builder) generateSheet(ctx context.Context, req sheetRequest) (*PackResult, error) {
	if len(req.images) == 0 {
		return nil, packingError("pack", req.basePath, ErrEmptyGroup)
	}

	fullPaths := make([]string, len(req.images))
	byPath := make(map[string]string, len(req.images))
	for i, img := range req.images {
		fullPaths[i] = filepath.Join(req.basePath, img)
		byPath[fullPaths[i]] = img
	}

	sheet, err := b.pack(ctx, PackRequest{
		Paths:     fullPaths,
		Padding:   ScalePadding(b.cfg.Sprite.Padding, req.scale),
		Algorithm: b.cfg.Sprite.Algorithm,
		Format:    b.cfg.Sprite.Format,
	})
	if err != nil {
		return nil, packingError("pack", req.basePath, err)
	}

	// #nosec G306 - sheets are public assets
	if err := os.WriteFile(req.output, sheet.Image, 0644); err != nil {
		return nil, ioError("write sheet", req.output, err)
	}

	coords := make(map[string]Placement, len(sheet.Coordinates))
	for path, p := range sheet.Coordinates {
		name, ok := byPath[path]
		if !ok {
			name = filepath.Base(path)
		}
		coords[name] = p
	}

	return &PackResult{
		SheetPath:   req.output,
		Properties:  sheet.Properties,
		Coordinates: coords,
	}, nil
}

// pack calls the packer, turning a panic into an error. Packing runs on
// its own goroutine where a panic would otherwise end the process.
func (b *Builder) pack(ctx context.Context, req PackRequest) (sheet *Sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("packer panic: %v", r)
		}
	}()
	return b.packer.Pack(ctx, req)
}
