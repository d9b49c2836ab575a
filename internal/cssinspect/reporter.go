package cssinspect

import (
	"fmt"
	"io"

	"github.com/yacobolo/cssprite/internal/logging"
)

// Reporter prints inspected stylesheets
type Reporter struct {
	w         io.Writer
	useColors bool
	verbose   bool
}

// NewReporter creates a reporter. verbose prints every icon.
func NewReporter(w io.Writer, useColors, verbose bool) *Reporter {
	return &Reporter{w: w, useColors: useColors, verbose: verbose}
}

// PrintStylesheet outputs the sheets and icons of one stylesheet
func (r *Reporter) PrintStylesheet(sheet *Stylesheet) {
	fmt.Fprintf(r.w, "%s\n", logging.RenderStyle(logging.StyleCyan, sheet.Path+":", r.useColors))

	for _, s := range sheet.Sheets {
		fmt.Fprintf(r.w, "  .%s %s\n", s.Class, s.URL)
		if s.RetinaURL != "" {
			fmt.Fprintf(r.w, "  %s %s (background-size: %s)\n",
				logging.RenderStyle(logging.StyleGray, "retina", r.useColors), s.RetinaURL, s.BackgroundSize)
		}
	}

	if r.verbose {
		for _, icon := range sheet.Icons {
			fmt.Fprintf(r.w, "    .%s %dx%d at %d,%d\n", icon.Class, icon.Width, icon.Height, icon.X, icon.Y)
		}
	}

	for _, pair := range Overlaps(sheet.Icons) {
		fmt.Fprintf(r.w, "  %s .%s overlaps .%s\n",
			logging.RenderStyle(logging.StyleYellow, "warning:", r.useColors), pair[0].Class, pair[1].Class)
	}
}

// PrintSummary outputs totals across every inspected stylesheet
func (r *Reporter) PrintSummary(sheets []*Stylesheet) {
	var sets, icons, overlaps int
	for _, s := range sheets {
		sets += len(s.Sheets)
		icons += len(s.Icons)
		overlaps += len(Overlaps(s.Icons))
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintf(r.w, "%s, %s, %s\n",
		pluralizeCount(len(sheets), "stylesheet", "stylesheets"),
		pluralizeCount(sets, "sprite set", "sprite sets"),
		pluralizeCount(icons, "icon", "icons"))

	if overlaps > 0 {
		fmt.Fprintln(r.w, logging.RenderStyle(logging.StyleYellow,
			pluralizeCount(overlaps, "overlapping icon pair", "overlapping icon pairs"), r.useColors))
	}
	if !r.verbose && icons > 0 {
		fmt.Fprintln(r.w, logging.RenderStyle(logging.StyleGray, "Hint: Run with --verbose to list every icon", r.useColors))
	}
}

// Overlaps returns icon pairs of the same set whose rectangles intersect
func Overlaps(icons []Icon) [][2]Icon {
	var out [][2]Icon
	for i := 0; i < len(icons); i++ {
		for j := i + 1; j < len(icons); j++ {
			a, b := icons[i], icons[j]
			if a.Base != b.Base {
				continue
			}
			if a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height {
				out = append(out, [2]Icon{a, b})
			}
		}
	}
	return out
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
