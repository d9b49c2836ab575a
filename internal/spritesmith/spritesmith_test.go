package spritesmith

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePNG creates a solid w×h PNG under dir and returns its path
func writePNG(t *testing.T, dir, name string, w, h int, c color.NRGBA) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	icon := writePNG(t, dir, "a.png", 4, 4, red)

	tests := []struct {
		name    string
		paths   []string
		opts    Options
		wantErr error
	}{
		{
			name:    "no images",
			paths:   nil,
			wantErr: ErrNoImages,
		},
		{
			name:    "unknown algorithm",
			paths:   []string{icon},
			opts:    Options{Algorithm: "spiral"},
			wantErr: ErrUnknownAlgorithm,
		},
		{
			name:    "unknown format",
			paths:   []string{icon},
			opts:    Options{Format: "tiff"},
			wantErr: ErrUnknownFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.paths, tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRun_UnreadableImage(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.png")
	require.NoError(t, os.WriteFile(bogus, []byte("not an image"), 0644))

	_, err := Run(context.Background(), []string{bogus}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus.png")
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	icon := writePNG(t, dir, "a.png", 4, 4, red)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []string{icon}, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_Layouts(t *testing.T) {
	dir := t.TempDir()
	small := writePNG(t, dir, "a.png", 10, 10, red)
	tall := writePNG(t, dir, "b.png", 10, 20, blue)

	tests := []struct {
		name       string
		algorithm  string
		padding    int
		wantProps  Properties
		wantCoords map[string]Coordinates
	}{
		{
			name:      "top-down with padding",
			algorithm: AlgorithmTopDown,
			padding:   5,
			wantProps: Properties{Width: 10, Height: 35},
			wantCoords: map[string]Coordinates{
				small: {X: 0, Y: 0, Width: 10, Height: 10},
				tall:  {X: 0, Y: 15, Width: 10, Height: 20},
			},
		},
		{
			name:      "left-right without padding",
			algorithm: AlgorithmLeftRight,
			padding:   0,
			wantProps: Properties{Width: 20, Height: 20},
			wantCoords: map[string]Coordinates{
				small: {X: 0, Y: 0, Width: 10, Height: 10},
				tall:  {X: 10, Y: 0, Width: 10, Height: 20},
			},
		},
		{
			name:      "diagonal",
			algorithm: AlgorithmDiagonal,
			padding:   0,
			wantProps: Properties{Width: 20, Height: 30},
			wantCoords: map[string]Coordinates{
				small: {X: 0, Y: 0, Width: 10, Height: 10},
				tall:  {X: 10, Y: 10, Width: 10, Height: 20},
			},
		},
		{
			name:      "alt-diagonal",
			algorithm: AlgorithmAltDiagonal,
			padding:   0,
			wantProps: Properties{Width: 20, Height: 30},
			wantCoords: map[string]Coordinates{
				small: {X: 0, Y: 20, Width: 10, Height: 10},
				tall:  {X: 10, Y: 0, Width: 10, Height: 20},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(context.Background(), []string{tall, small}, Options{
				Padding:   tt.padding,
				Algorithm: tt.algorithm,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantProps, result.Properties)
			assert.Equal(t, tt.wantCoords, result.Coordinates)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(result.Image))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, tt.wantProps.Width, cfg.Width)
			assert.Equal(t, tt.wantProps.Height, cfg.Height)
		})
	}
}

func TestRun_BinaryTreeNoOverlap(t *testing.T) {
	dir := t.TempDir()
	sizes := [][2]int{{16, 16}, {32, 8}, {8, 32}, {24, 24}, {4, 4}, {12, 20}}

	paths := make([]string, 0, len(sizes))
	for i, s := range sizes {
		paths = append(paths, writePNG(t, dir, string(rune('a'+i))+".png", s[0], s[1], red))
	}

	const padding = 3
	result, err := Run(context.Background(), paths, Options{Padding: padding, Algorithm: AlgorithmBinaryTree})
	require.NoError(t, err)
	require.Len(t, result.Coordinates, len(paths))

	rects := make([]image.Rectangle, 0, len(paths))
	for _, c := range result.Coordinates {
		r := image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
		assert.LessOrEqual(t, r.Max.X, result.Properties.Width)
		assert.LessOrEqual(t, r.Max.Y, result.Properties.Height)
		rects = append(rects, r)
	}

	// Padded rectangles must not intersect
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			a := image.Rectangle{Min: rects[i].Min, Max: rects[i].Max.Add(image.Pt(padding, padding))}
			b := image.Rectangle{Min: rects[j].Min, Max: rects[j].Max.Add(image.Pt(padding, padding))}
			assert.False(t, a.Overlaps(b), "rectangles %v and %v overlap", rects[i], rects[j])
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 8, 8, red)
	b := writePNG(t, dir, "b.png", 8, 8, blue)

	first, err := Run(context.Background(), []string{a, b}, Options{Padding: 2})
	require.NoError(t, err)
	second, err := Run(context.Background(), []string{b, a}, Options{Padding: 2})
	require.NoError(t, err)

	assert.Equal(t, first.Coordinates, second.Coordinates)
	assert.Equal(t, first.Image, second.Image)
}

func TestRun_PixelsLandAtCoordinates(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 6, 6, red)
	b := writePNG(t, dir, "b.png", 6, 6, blue)

	result, err := Run(context.Background(), []string{a, b}, Options{Padding: 1, Algorithm: AlgorithmTopDown})
	require.NoError(t, err)

	sheet, err := png.Decode(bytes.NewReader(result.Image))
	require.NoError(t, err)

	for path, want := range map[string]color.NRGBA{a: red, b: blue} {
		c := result.Coordinates[path]
		got := color.NRGBAModel.Convert(sheet.At(c.X+1, c.Y+1)).(color.NRGBA)
		assert.Equal(t, want, got, path)
	}
}

func TestRun_JPEGExport(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 8, 8, red)

	result, err := Run(context.Background(), []string{a}, Options{Format: "jpg"})
	require.NoError(t, err)

	_, format, err := image.DecodeConfig(bytes.NewReader(result.Image))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestRun_SVG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dot.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="8" height="6" viewBox="0 0 8 6"><rect x="0" y="0" width="8" height="6" fill="#ff0000"/></svg>`
	require.NoError(t, os.WriteFile(path, []byte(svg), 0644))

	result, err := Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err)
	assert.Equal(t, Coordinates{X: 0, Y: 0, Width: 8, Height: 6}, result.Coordinates[path])
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", Extension(""))
	assert.Equal(t, "png", Extension("png"))
	assert.Equal(t, "jpg", Extension("jpeg"))
	assert.Equal(t, "jpg", Extension("jpg"))
	assert.Equal(t, "png", Extension("bogus"))
}
