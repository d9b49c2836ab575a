package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/yacobolo/cssprite"
	"github.com/yacobolo/cssprite/internal/cssinspect"
	"github.com/yacobolo/cssprite/internal/logging"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [stylesheet...]",
	Short: "List the sprite sets and icons of generated stylesheets",
	Long: `Parse generated stylesheets and print each sprite set with its sheet
URLs. Without arguments every stylesheet in the build directory is read.
--verbose lists every icon with its size and offset.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.String("build-dir", cssprite.DefaultConfig().BuildDir, "Directory holding generated stylesheets")
	f.Bool("strict", false, "Exit 1 when icons of a set overlap")
}

func runInspect(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		buildDir := getStringWithFallback("build-dir", "generate.build-dir", cssprite.DefaultConfig().BuildDir)

		found, err := findStylesheets(buildDir)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no stylesheets found in %s (run cssprite generate first)", buildDir)
		}
		paths = found
	}

	sheets := make([]*cssinspect.Stylesheet, 0, len(paths))
	for _, path := range paths {
		sheet, err := cssinspect.ParseFile(path)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", path, err)
		}
		sheets = append(sheets, sheet)
	}

	quiet := getBoolWithFallback("quiet", "quiet", false)
	if !quiet {
		useColors := logging.ShouldUseColors(getBoolWithFallback("color", "color", false))
		reporter := cssinspect.NewReporter(cmd.OutOrStdout(), useColors, getBoolWithFallback("verbose", "verbose", false))
		for _, sheet := range sheets {
			reporter.PrintStylesheet(sheet)
		}
		reporter.PrintSummary(sheets)
	}

	if getBoolWithFallback("strict", "inspect.strict", false) {
		for _, sheet := range sheets {
			if n := len(cssinspect.Overlaps(sheet.Icons)); n > 0 {
				return fmt.Errorf("%s: %d overlapping icon pairs", sheet.Path, n)
			}
		}
	}

	return nil
}

// findStylesheets lists the set stylesheets of a build directory, skipping
// the index that only imports them
func findStylesheets(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*.css")
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if m == cssprite.IndexFile {
			continue
		}
		paths = append(paths, filepath.Join(dir, m))
	}
	sort.Strings(paths)
	return paths, nil
}
