package cssprite

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/yacobolo/cssprite/internal/spritesmith"
)

// PackOptions are handed to the packer for every sheet
type PackOptions struct {
	Padding   int    // Gap between icons in pixels (default: 5)
	Algorithm string // top-down | left-right | diagonal | alt-diagonal | binary-tree
	Format    string // Export format: png | jpeg (default: png)
}

// RetinaOptions control the high-density sheet
type RetinaOptions struct {
	Enabled bool    // Build a retina sheet when suffixed images exist (default: true)
	Suffix  string  // Filename token before the extension, e.g. "@2x"
	Ratio   float64 // Density ratio, e.g. 2
}

// Config holds pipeline configuration. It is copied by NewBuilder and
// never mutated afterwards.
type Config struct {
	SourceDir        string        // "assets/sprites" - every child directory is a sprite set
	OutputDir        string        // "public/sprites" - where sheets are written
	BuildDir         string        // ".cssprite" - where stylesheets, index and manifest are written
	Sprite           PackOptions   // Packing options
	Retina           RetinaOptions // High-density options
	Prefix           string        // CSS class prefix, "sprite-"
	PublicPath       string        // URL prefix for sheets; empty uses the sheet path
	Extensions       []string      // Image extensions without dot: ["png", "jpg", "jpeg"]
	StylesheetPrefix string        // Stylesheet asset name prefix, "nuxt-spritesmith-"
	IgnoreFile       string        // Gitignore-style file inside SourceDir, ".spriteignore"
	Template         Template      // Replaces the default rule generation when set
	DevWatch         bool          // Enable Watch
	ContinueOnError  bool          // Finish every set and report all failures instead of aborting
	Verbose          bool          // Log per-set details at info level
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		SourceDir: "assets/sprites",
		OutputDir: "public/sprites",
		BuildDir:  ".cssprite",
		Sprite: PackOptions{
			Padding:   5,
			Algorithm: spritesmith.AlgorithmBinaryTree,
			Format:    spritesmith.FormatPNG,
		},
		Retina: RetinaOptions{
			Enabled: true,
			Suffix:  "@2x",
			Ratio:   2,
		},
		Prefix:           "sprite-",
		Extensions:       []string{"png", "jpg", "jpeg"},
		StylesheetPrefix: "nuxt-spritesmith-",
		IgnoreFile:       ".spriteignore",
	}
}

// Validate reports configuration values the pipeline cannot work with
func (c Config) Validate() error {
	var errs []error

	if c.SourceDir == "" {
		errs = append(errs, errors.New("source directory is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.BuildDir == "" {
		errs = append(errs, errors.New("build directory is required"))
	}
	if c.Sprite.Padding < 0 {
		errs = append(errs, fmt.Errorf("padding must not be negative, got %d", c.Sprite.Padding))
	}
	if c.Sprite.Algorithm != "" && !slices.Contains(spritesmith.Algorithms, c.Sprite.Algorithm) {
		errs = append(errs, fmt.Errorf("unknown algorithm %q (want one of %v)", c.Sprite.Algorithm, spritesmith.Algorithms))
	}
	if _, err := spritesmith.NormalizeFormat(c.Sprite.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Retina.Enabled {
		if c.Retina.Suffix == "" {
			errs = append(errs, errors.New("retina suffix is required when retina is enabled"))
		}
		if c.Retina.Ratio <= 0 {
			errs = append(errs, fmt.Errorf("retina ratio must be positive, got %v", c.Retina.Ratio))
		}
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("at least one image extension is required"))
	}

	return errors.Join(errs...)
}

// SpriteSet is one directory of icons packed into one sheet pair
type SpriteSet struct {
	Dir      string   // "icons/nav" (relative to SourceDir)
	Name     string   // "icons-nav"
	BasePath string   // SourceDir joined with Dir
	Standard []string // Standard image filenames, sorted
	Retina   []string // High-density image filenames, sorted
}

// Placement is the rectangle an icon occupies within a sheet
type Placement struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Properties describes a whole sheet
type Properties struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PackResult is the outcome of packing one image group
type PackResult struct {
	SheetPath   string
	Properties  Properties
	Coordinates map[string]Placement // Keyed by source filename
}

// SheetResults carries the standard and retina results of a set.
// Either may be nil.
type SheetResults struct {
	Standard *PackResult
	Retina   *PackResult
}

// GenerateCSSOptions is everything a Template gets to render one set
type GenerateCSSOptions struct {
	SpriteModuleName  string // Flattened set name, "icons-nav"
	StandardSheetPath string
	RetinaSheetPath   string
	StandardURL       string // Value placed inside url() for the standard sheet
	RetinaURL         string // Value placed inside url() for the retina sheet
	Prefix            string // Class prefix, "sprite-"
	Suffix            string // Retina filename suffix, "@2x"
	Ratio             float64
	Results           SheetResults
}

// ClassName returns the base class of the set without the leading dot
func (o GenerateCSSOptions) ClassName() string {
	return o.Prefix + o.SpriteModuleName
}

// StandardIcons lists the icons of the standard sheet ordered by name
func (o GenerateCSSOptions) StandardIcons() []Icon {
	return icons(o.Results.Standard, o.Suffix)
}

// RetinaIcons lists the icons of the retina sheet ordered by name
func (o GenerateCSSOptions) RetinaIcons() []Icon {
	return icons(o.Results.Retina, o.Suffix)
}

// Icon is one placement with its derived icon name
type Icon struct {
	Name string // "home"
	File string // "home.png"
	Placement
}

// SetResult reports what happened to one sprite set
type SetResult struct {
	Name       string
	Dir        string
	Standard   *PackResult
	Retina     *PackResult
	Stylesheet string // Registry reference, empty when nothing was registered
	Skipped    bool   // True when the set had no images
	Err        error
}

// BuildResult contains full build stats
type BuildResult struct {
	ID       uuid.UUID
	Sets     []SetResult
	Duration time.Duration
}

// Generated counts the sets that registered a stylesheet
func (r *BuildResult) Generated() int {
	n := 0
	for _, s := range r.Sets {
		if s.Stylesheet != "" {
			n++
		}
	}
	return n
}

// Failed counts the sets that ended with an error
func (r *BuildResult) Failed() int {
	n := 0
	for _, s := range r.Sets {
		if s.Err != nil {
			n++
		}
	}
	return n
}
