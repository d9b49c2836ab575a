package cssprite

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeIcon creates a solid w×h PNG at dir/name, creating dir as needed
func writeIcon(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// touch creates an empty file
func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

// testConfig returns a config rooted in a fresh temp directory
func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.SourceDir = filepath.Join(root, "sprites")
	cfg.OutputDir = filepath.Join(root, "public", "sprites")
	cfg.BuildDir = filepath.Join(root, ".cssprite")
	return cfg
}

// memoryRegistry records stylesheets in memory
type memoryRegistry struct {
	mu       sync.Mutex
	contents map[string]string
	order    []string
	err      error
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{contents: make(map[string]string)}
}

func (r *memoryRegistry) Register(_ context.Context, name, content string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return "", r.err
	}
	if _, ok := r.contents[name]; !ok {
		r.order = append(r.order, name)
	}
	r.contents[name] = content
	return name, nil
}

func (r *memoryRegistry) Remove(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.contents, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryRegistry) Stylesheets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *memoryRegistry) get(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	content, ok := r.contents[name]
	return content, ok
}

func (r *memoryRegistry) names() []string {
	names := r.Stylesheets()
	sort.Strings(names)
	return names
}

// packerFunc adapts a function to the Packer interface
type packerFunc func(ctx context.Context, req PackRequest) (*Sheet, error)

func (f packerFunc) Pack(ctx context.Context, req PackRequest) (*Sheet, error) {
	return f(ctx, req)
}

// recordingPacker wraps a packer and records every request
type recordingPacker struct {
	mu       sync.Mutex
	next     Packer
	requests []PackRequest
}

func (p *recordingPacker) Pack(ctx context.Context, req PackRequest) (*Sheet, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	return p.next.Pack(ctx, req)
}

func (p *recordingPacker) byPadding() map[int]PackRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[int]PackRequest, len(p.requests))
	for _, r := range p.requests {
		out[r.Padding] = r
	}
	return out
}
