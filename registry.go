package cssprite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
)

// IndexFile is the stylesheet that imports every registered set
const IndexFile = "sprites.css"

// Registry is the host build integration: it stores named stylesheet
// assets and keeps the global, ordered list of stylesheet references.
type Registry interface {
	// Register stores content under name and appends its reference to
	// the stylesheet list. Registering an existing name replaces the
	// content and keeps its position.
	Register(ctx context.Context, name, content string) (string, error)
	// Remove drops a stylesheet. Unknown names are not an error.
	Remove(ctx context.Context, name string) error
	// Stylesheets returns the references in registration order.
	Stylesheets() []string
}

// Indexer is implemented by registries that persist an index of their
// stylesheets
type Indexer interface {
	WriteIndex() error
}

// FileRegistry writes every stylesheet into a build directory
type FileRegistry struct {
	dir string

	mu   sync.Mutex
	refs []string
}

// NewFileRegistry creates a registry rooted at dir
func NewFileRegistry(dir string) *FileRegistry {
	return &FileRegistry{dir: dir}
}

// Dir returns the build directory
func (r *FileRegistry) Dir() string {
	return r.dir
}

// Register implements Registry
func (r *FileRegistry) Register(ctx context.Context, name, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validAssetName(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create build dir: %w", err)
	}

	path := filepath.Join(r.dir, name)
	// #nosec G306 - generated stylesheets are public assets
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write stylesheet: %w", err)
	}

	ref := filepath.ToSlash(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.refs, ref) {
		r.refs = append(r.refs, ref)
	}
	return ref, nil
}

// Remove implements Registry
func (r *FileRegistry) Remove(_ context.Context, name string) error {
	if err := validAssetName(name); err != nil {
		return err
	}

	path := filepath.Join(r.dir, name)
	if err := os.Remove(path); err != nil && !isNotExist(err) {
		return fmt.Errorf("remove stylesheet: %w", err)
	}

	ref := filepath.ToSlash(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs = slices.DeleteFunc(r.refs, func(s string) bool { return s == ref })
	return nil
}

// Stylesheets implements Registry
func (r *FileRegistry) Stylesheets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.refs)
}

// WriteIndex writes sprites.css importing every registered stylesheet.
// Imports are sorted so the file does not depend on completion order.
func (r *FileRegistry) WriteIndex() error {
	refs := r.Stylesheets()

	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, filepath.Base(filepath.FromSlash(ref)))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(Header)
	for _, name := range names {
		fmt.Fprintf(&b, "@import url('%s');\n", name)
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}
	// #nosec G306 - generated stylesheets are public assets
	if err := os.WriteFile(filepath.Join(r.dir, IndexFile), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// validAssetName rejects names that would escape the build directory
func validAssetName(name string) error {
	if name == "" || name == IndexFile || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid stylesheet name %q", name)
	}
	return nil
}
