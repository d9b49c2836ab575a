package cssprite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/cssprite/internal/logging"
	"github.com/yacobolo/cssprite/internal/spritesmith"
)

// Builder runs the sprite pipeline: scan, classify, pack, render, register.
type Builder struct {
	cfg      Config
	packer   Packer
	registry Registry
	logger   *slog.Logger
	clock    clockwork.Clock
	ignore   Ignorer

	// Last successful result per set, for the manifest
	mu      sync.Mutex
	results map[string]SetResult

	// Serializes index and manifest writes
	indexMu sync.Mutex

	guard *setGuard

	// Called once Watch has installed its watches
	onWatchReady func()
}

// Option configures a Builder
type Option func(*Builder)

// WithPacker replaces the bundled packer
func WithPacker(p Packer) Option {
	return func(b *Builder) { b.packer = p }
}

// WithRegistry replaces the file registry rooted at Config.BuildDir
func WithRegistry(r Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithClock sets the clock used to time builds
func WithClock(c clockwork.Clock) Option {
	return func(b *Builder) { b.clock = c }
}

// NewBuilder validates cfg and returns a Builder for it
func NewBuilder(cfg Config, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.Extensions = slices.Clone(cfg.Extensions)
	if cfg.Sprite.Algorithm == "" {
		cfg.Sprite.Algorithm = spritesmith.AlgorithmBinaryTree
	}
	if cfg.Sprite.Format == "" {
		cfg.Sprite.Format = spritesmith.FormatPNG
	}

	b := &Builder{
		cfg:     cfg,
		packer:  SpritesmithPacker{},
		logger:  logging.Logger,
		clock:   clockwork.NewRealClock(),
		results: make(map[string]SetResult),
		guard:   newSetGuard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = NewFileRegistry(cfg.BuildDir)
	}
	if cfg.IgnoreFile != "" {
		b.ignore = LoadIgnoreFile(filepath.Join(cfg.SourceDir, cfg.IgnoreFile))
	}

	return b, nil
}

// Config returns a copy of the builder configuration
func (b *Builder) Config() Config {
	return b.cfg
}

// Registry returns the registry stylesheets are registered with
func (b *Builder) Registry() Registry {
	return b.registry
}

// Build is the full build: ensure directories, discover every sprite set and
// process all of them concurrently.
//
// By default the first failing set cancels the others; sets still in flight
// do not register their stylesheets. With ContinueOnError every set runs to
// completion and all failures are joined into the returned error. The
// BuildResult is returned in both cases.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	start := b.clock.Now()
	result := &BuildResult{ID: uuid.New()}
	log := logging.WithBuild(b.logger, result.ID.String())

	// 1. Ensure directories
	if err := b.ensureDirs(); err != nil {
		return result, err
	}

	// 2. Discover sprite sets
	dirs, err := ScanSpriteSets(b.cfg.SourceDir, b.ignore)
	if err != nil {
		return result, err
	}
	log.Info("Generating sprites", "directories", len(dirs))

	// 3. Process every set concurrently
	result.Sets = make([]SetResult, len(dirs))
	if b.cfg.ContinueOnError {
		err = b.buildAll(ctx, log, dirs, result.Sets)
	} else {
		err = b.buildFailFast(ctx, log, dirs, result.Sets)
	}
	result.Duration = b.clock.Since(start)

	if err != nil && !b.cfg.ContinueOnError {
		log.Error("Sprite generation failed", "error", err, "duration", result.Duration)
		return result, err
	}

	// 4. Index and manifest
	if indexErr := b.writeIndex(); indexErr != nil {
		return result, errors.Join(err, indexErr)
	}

	if err != nil {
		log.Error("Sprite generation finished with failures",
			"failed", result.Failed(), "generated", result.Generated(), "duration", result.Duration)
		return result, err
	}

	log.Info("Sprites generated", "sets", result.Generated(), "duration", result.Duration)
	return result, nil
}

// buildFailFast returns the first failure and cancels the remaining sets
func (b *Builder) buildFailFast(ctx context.Context, log *slog.Logger, dirs []string, out []SetResult) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			res, err := b.buildSet(gctx, log, dir)
			out[i] = res
			return err
		})
	}
	return g.Wait()
}

// buildAll runs every set to completion and joins the failures
func (b *Builder) buildAll(ctx context.Context, log *slog.Logger, dirs []string, out []SetResult) error {
	errs := make([]error, len(dirs))

	var wg sync.WaitGroup
	for i, dir := range dirs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i], errs[i] = b.buildSet(ctx, log, dir)
			if errs[i] != nil {
				log.Error("Sprite set failed", "dir", dir, "error", errs[i])
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// BuildSet regenerates a single sprite set (steps 2-4 of a full build) and
// refreshes the index and manifest. dir is relative to SourceDir.
func (b *Builder) BuildSet(ctx context.Context, dir string) (SetResult, error) {
	if err := b.ensureDirs(); err != nil {
		return SetResult{Name: SetName(dir), Dir: filepath.ToSlash(dir), Err: err}, err
	}

	res, err := b.buildSet(ctx, b.logger, dir)
	if err != nil {
		return res, err
	}
	if err := b.writeIndex(); err != nil {
		return res, err
	}
	return res, nil
}

// buildSet classifies, packs and registers one set
func (b *Builder) buildSet(ctx context.Context, log *slog.Logger, dir string) (SetResult, error) {
	set := SpriteSet{
		Dir:      filepath.ToSlash(dir),
		Name:     SetName(dir),
		BasePath: filepath.Join(b.cfg.SourceDir, dir),
	}
	log = logging.WithSet(log, set.Name)
	res := SetResult{Name: set.Name, Dir: set.Dir}

	// 1. Classify
	standard, retina, err := ClassifyImages(set.BasePath, ClassifyOptions{
		Suffix:     b.cfg.Retina.Suffix,
		Extensions: b.cfg.Extensions,
		Skip: func(name string) bool {
			return shouldSkipEntry(filepath.Join(dir, name), false, b.ignore)
		},
	})
	if err != nil && !isNotExist(err) {
		res.Err = err
		return res, err
	}
	set.Standard, set.Retina = standard, retina

	// 2. Pack each non-empty group
	standardPath, retinaPath := b.sheetPaths(set.Name)
	g, gctx := errgroup.WithContext(ctx)

	var standardResult, retinaResult *PackResult
	if len(set.Standard) > 0 {
		g.Go(func() error {
			r, err := b.generateSheet(gctx, sheetRequest{
				basePath: set.BasePath,
				images:   set.Standard,
				scale:    1,
				output:   standardPath,
			})
			standardResult = r
			return err
		})
	}
	if b.cfg.Retina.Enabled && len(set.Retina) > 0 {
		g.Go(func() error {
			r, err := b.generateSheet(gctx, sheetRequest{
				basePath: set.BasePath,
				images:   set.Retina,
				scale:    b.cfg.Retina.Ratio,
				output:   retinaPath,
			})
			retinaResult = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		res.Err = err
		return res, err
	}
	res.Standard, res.Retina = standardResult, retinaResult

	// 3. Nothing to register for an empty set
	if res.Standard == nil && res.Retina == nil {
		log.Debug("Skipping empty sprite set")
		res.Skipped = true
		if err := b.forget(ctx, set.Name); err != nil {
			res.Err = err
			return res, err
		}
		return res, nil
	}

	// Abandon when another set already failed the build
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res, err
	}

	// 4. Render and register
	ref, err := b.GenerateCSS(ctx, GenerateCSSOptions{
		SpriteModuleName:  set.Name,
		StandardSheetPath: filepath.ToSlash(standardPath),
		RetinaSheetPath:   filepath.ToSlash(retinaPath),
		StandardURL:       b.sheetURL(standardPath),
		RetinaURL:         b.sheetURL(retinaPath),
		Prefix:            b.cfg.Prefix,
		Suffix:            b.cfg.Retina.Suffix,
		Ratio:             b.cfg.Retina.Ratio,
		Results:           SheetResults{Standard: res.Standard, Retina: res.Retina},
	})
	if err != nil {
		res.Err = err
		return res, err
	}
	res.Stylesheet = ref
	b.remember(res)

	level := slog.LevelDebug
	if b.cfg.Verbose {
		level = slog.LevelInfo
	}
	log.Log(ctx, level, "Generated sprite set", "standard", len(set.Standard), "retina", len(set.Retina), "stylesheet", ref)

	return res, nil
}

// ensureDirs creates the source and output directories
func (b *Builder) ensureDirs() error {
	for _, dir := range []string{b.cfg.SourceDir, b.cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return ioError("create directory", dir, err)
		}
	}
	return nil
}

// sheetPaths returns the standard and retina sheet files of a set
func (b *Builder) sheetPaths(name string) (standard, retina string) {
	ext := "." + spritesmith.Extension(b.cfg.Sprite.Format)
	standard = filepath.Join(b.cfg.OutputDir, name+ext)
	retina = filepath.Join(b.cfg.OutputDir, name+b.cfg.Retina.Suffix+ext)
	return standard, retina
}

// sheetURL is the url() value for a sheet
func (b *Builder) sheetURL(path string) string {
	if b.cfg.PublicPath == "" {
		return filepath.ToSlash(path)
	}
	return strings.TrimSuffix(b.cfg.PublicPath, "/") + "/" + filepath.Base(path)
}

// remember stores the latest successful result of a set
func (b *Builder) remember(res SetResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[res.Name] = res
}

// forget drops a set that no longer has images, along with any stylesheet
// an earlier build registered for it
func (b *Builder) forget(ctx context.Context, name string) error {
	b.mu.Lock()
	delete(b.results, name)
	b.mu.Unlock()

	stylesheet := b.StylesheetName(name)
	if err := b.registry.Remove(ctx, stylesheet); err != nil {
		return registrationError("remove", stylesheet, err)
	}
	return nil
}

// writeIndex persists the registry index (when supported) and the manifest
func (b *Builder) writeIndex() error {
	b.indexMu.Lock()
	defer b.indexMu.Unlock()

	if indexer, ok := b.registry.(Indexer); ok {
		if err := indexer.WriteIndex(); err != nil {
			return ioError("write index", b.cfg.BuildDir, err)
		}
	}

	b.mu.Lock()
	sets := make([]SetResult, 0, len(b.results))
	for _, res := range b.results {
		sets = append(sets, res)
	}
	b.mu.Unlock()
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })

	var buf bytes.Buffer
	if err := WriteManifest(&buf, buildManifest(sets, b.cfg.Prefix, b.cfg.Retina.Suffix)); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	path := filepath.Join(b.cfg.BuildDir, ManifestFile)
	if err := os.MkdirAll(b.cfg.BuildDir, 0755); err != nil {
		return ioError("create directory", b.cfg.BuildDir, err)
	}
	// #nosec G306 - manifest is a build artifact
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return ioError("write manifest", path, err)
	}
	return nil
}
