// Package cssprite packs directories of icon images into sprite sheets and
// generates the stylesheets that address them.
//
// Every immediate child directory of the source root is a sprite set. Its
// images are split into a standard group and a high-density group (files
// whose name ends with the retina suffix, "@2x" by default), each group is
// packed into one sheet, and a stylesheet with one class per icon is
// registered with the host build.
//
// # Building
//
//	cfg := cssprite.DefaultConfig()
//	cfg.SourceDir = "assets/sprites"
//	cfg.OutputDir = "public/sprites"
//
//	builder, err := cssprite.NewBuilder(cfg)
//	if err != nil {
//		return err
//	}
//	result, err := builder.Build(ctx)
//
// # Watching
//
// With DevWatch enabled, Watch rebuilds only the set whose directory changed:
//
//	err := builder.Watch(ctx)
//
// # CLI Tool
//
// cssprite also provides a CLI tool. Install with:
//
//	go install github.com/yacobolo/cssprite/cmd/cssprite@latest
package cssprite

// Public API:
// - NewBuilder(cfg Config, opts ...Option) (*Builder, error)
// - (*Builder).Build(ctx) (*BuildResult, error)
// - (*Builder).BuildSet(ctx, dir) (SetResult, error)
// - (*Builder).Watch(ctx) error
// - ClassifyImages(basePath string, opts ClassifyOptions) (standard, retina []string, err error)
// - RenderStylesheet(tpl Template, opts GenerateCSSOptions) (string, error)
