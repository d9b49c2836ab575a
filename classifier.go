package cssprite

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ClassifyOptions controls how a set directory is partitioned
type ClassifyOptions struct {
	Suffix     string            // Retina token before the extension, "@2x"
	Extensions []string          // Supported extensions without dot
	Skip       func(string) bool // Optional filter on the filename
}

// ClassifyImages partitions the image files of basePath into standard and
// high-density filenames. A file belongs to the high-density group when the
// suffix token sits immediately before its extension. Files with other
// extensions, directories and skipped files appear in neither list.
// Both lists are sorted by name.
func ClassifyImages(basePath string, opts ClassifyOptions) (standard, retina []string, err error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, nil, ioError("read sprite set", basePath, err)
	}

	imagePattern, retinaPattern := classifyPatterns(opts.Suffix, opts.Extensions)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if opts.Skip != nil && opts.Skip(name) {
			continue
		}

		// Match case-insensitively: "Home.PNG" is still a png
		lower := strings.ToLower(name)

		if retinaPattern != "" {
			if ok, _ := doublestar.Match(retinaPattern, lower); ok {
				retina = append(retina, name)
				continue
			}
		}
		if ok, _ := doublestar.Match(imagePattern, lower); ok {
			standard = append(standard, name)
		}
	}

	sort.Strings(standard)
	sort.Strings(retina)
	return standard, retina, nil
}

// classifyPatterns builds "*.{png,jpg}" and "*@2x.{png,jpg}" globs
func classifyPatterns(suffix string, exts []string) (imagePattern, retinaPattern string) {
	cleaned := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			cleaned = append(cleaned, escapeMeta(ext))
		}
	}

	group := "{" + strings.Join(cleaned, ",") + "}"
	imagePattern = "*." + group
	if suffix != "" {
		retinaPattern = "*" + escapeMeta(strings.ToLower(suffix)) + "." + group
	}
	return imagePattern, retinaPattern
}

// escapeMeta quotes glob meta characters so a token matches literally
func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', ',', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IconName derives the CSS icon name from a filename: the extension and one
// trailing suffix token are removed. "icon@2x.png" with "@2x" -> "icon".
func IconName(filename, suffix string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	// Case-insensitive like classification: "home@2X.png" -> "home"
	if suffix != "" && len(name) >= len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		name = name[:len(name)-len(suffix)]
	}
	return name
}

// icons converts a pack result into name-sorted icons
func icons(result *PackResult, suffix string) []Icon {
	if result == nil {
		return nil
	}

	out := make([]Icon, 0, len(result.Coordinates))
	for file, p := range result.Coordinates {
		out = append(out, Icon{
			Name:      IconName(file, suffix),
			File:      file,
			Placement: p,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].File < out[j].File
	})
	return out
}
