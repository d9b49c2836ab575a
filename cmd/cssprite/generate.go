package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/cssprite"
	"github.com/yacobolo/cssprite/internal/logging"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate sprite sheets and stylesheets",
	Long: `Scan the source directory, pack every sprite set into a standard and
a high-density sheet, and write one stylesheet per set.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd.Flags())
	generateCmd.Flags().Bool("watch", false, "Keep running and regenerate sets on change")
}

// addGenerateFlags registers the pipeline flags shared by generate and watch
func addGenerateFlags(f *pflag.FlagSet) {
	defaults := cssprite.DefaultConfig()

	f.String("source", defaults.SourceDir, "Source directory, one sprite set per child directory")
	f.String("output-dir", defaults.OutputDir, "Output directory for sprite sheets")
	f.String("build-dir", defaults.BuildDir, "Output directory for stylesheets and manifest")
	f.String("public-path", defaults.PublicPath, "URL prefix for sheets in url()")
	f.String("prefix", defaults.Prefix, "CSS class prefix")
	f.String("stylesheet-prefix", defaults.StylesheetPrefix, "Stylesheet file name prefix")
	f.StringSlice("extensions", defaults.Extensions, "Image extensions to pack")
	f.String("ignore-file", defaults.IgnoreFile, "Gitignore-style file inside the source directory")
	f.String("template", "", "text/template file replacing the default rules")
	f.Int("padding", defaults.Sprite.Padding, "Gap between icons in pixels")
	f.String("algorithm", defaults.Sprite.Algorithm, "Layout: top-down|left-right|diagonal|alt-diagonal|binary-tree")
	f.String("format", defaults.Sprite.Format, "Sheet format: png|jpeg")
	f.Bool("retina", defaults.Retina.Enabled, "Build high-density sheets")
	f.String("retina-suffix", defaults.Retina.Suffix, "Filename suffix of high-density images")
	f.Float64("retina-ratio", defaults.Retina.Ratio, "Density ratio of high-density images")
	f.Bool("continue-on-error", false, "Build every set and report all failures")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	config, err := buildConfig()
	if err != nil {
		return err
	}

	logger := logging.InitLogger(logLevel(), getStringWithFallback("log-format", "log-format", "text"))

	builder, err := cssprite.NewBuilder(config, cssprite.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := builder.Build(ctx)

	quiet := getBoolWithFallback("quiet", "quiet", false)
	useColors := logging.ShouldUseColors(getBoolWithFallback("color", "color", false))
	if !quiet && result != nil {
		printSummary(cmd.OutOrStdout(), config, result, useColors)
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if !config.DevWatch {
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl+C to stop)\n",
			logging.RenderStyle(logging.StyleCyan, config.SourceDir, useColors))
	}
	return builder.Watch(ctx)
}

// printSummary reports the outcome of a full build
func printSummary(w io.Writer, config cssprite.Config, result *cssprite.BuildResult, useColors bool) {
	fmt.Fprintf(w, "%s Generated %s in %s\n",
		logging.RenderStyle(logging.StyleGreen, "✓", useColors),
		pluralize(result.Generated(), "sprite set", "sprite sets"),
		config.OutputDir)

	for _, set := range result.Sets {
		switch {
		case set.Err != nil:
			fmt.Fprintf(w, "  %s %s: %v\n", logging.RenderStyle(logging.StyleRed, "failed", useColors), set.Dir, set.Err)
		case set.Skipped:
			fmt.Fprintf(w, "  %s %s (no images)\n", logging.RenderStyle(logging.StyleYellow, "skipped", useColors), set.Dir)
		case set.Stylesheet != "" && config.Verbose:
			fmt.Fprintf(w, "  %s -> %s\n", set.Dir, set.Stylesheet)
		}
	}

	fmt.Fprintln(w, logging.RenderStyle(logging.StyleGray,
		fmt.Sprintf("  Build %s took %s", result.ID, result.Duration), useColors))
}

// pluralize returns a formatted string with count and singular/plural form
func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
