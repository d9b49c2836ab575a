package cssprite

import (
	"encoding/json"
	"io"
	"sort"
)

// ManifestFile is written next to the stylesheets after every build
const ManifestFile = "manifest.json"

// Manifest represents the structured JSON export schema
type Manifest struct {
	Version string        `json:"version"`
	Prefix  string        `json:"prefix"`
	Sets    []ManifestSet `json:"sets"`
}

// ManifestSet describes one generated sprite set
type ManifestSet struct {
	Name       string         `json:"name"`
	Dir        string         `json:"dir"`
	Class      string         `json:"class"`
	Stylesheet string         `json:"stylesheet"`
	Standard   *ManifestSheet `json:"standard,omitempty"`
	Retina     *ManifestSheet `json:"retina,omitempty"`
}

// ManifestSheet describes one sheet file
type ManifestSheet struct {
	Path   string         `json:"path"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Icons  []ManifestIcon `json:"icons"`
}

// ManifestIcon represents a single icon on a sheet
type ManifestIcon struct {
	Name   string `json:"name"`
	File   string `json:"file"`
	Class  string `json:"class"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WriteManifest writes the sets as indented JSON
func WriteManifest(w io.Writer, manifest Manifest) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(manifest)
}

// buildManifest converts set results into a Manifest sorted by set name
func buildManifest(sets []SetResult, prefix, suffix string) Manifest {
	out := Manifest{
		Version: "1.0",
		Prefix:  prefix,
		Sets:    make([]ManifestSet, 0, len(sets)),
	}

	for _, set := range sets {
		if set.Stylesheet == "" {
			continue
		}

		class := prefix + set.Name
		out.Sets = append(out.Sets, ManifestSet{
			Name:       set.Name,
			Dir:        set.Dir,
			Class:      class,
			Stylesheet: set.Stylesheet,
			Standard:   manifestSheet(set.Standard, class, suffix),
			Retina:     manifestSheet(set.Retina, class, suffix),
		})
	}

	sort.Slice(out.Sets, func(i, j int) bool {
		return out.Sets[i].Name < out.Sets[j].Name
	})
	return out
}

// manifestSheet converts a PackResult
func manifestSheet(result *PackResult, class, suffix string) *ManifestSheet {
	if result == nil {
		return nil
	}

	sheet := &ManifestSheet{
		Path:   result.SheetPath,
		Width:  result.Properties.Width,
		Height: result.Properties.Height,
	}
	for _, icon := range icons(result, suffix) {
		sheet.Icons = append(sheet.Icons, ManifestIcon{
			Name:   icon.Name,
			File:   icon.File,
			Class:  class + "--" + icon.Name,
			X:      icon.X,
			Y:      icon.Y,
			Width:  icon.Width,
			Height: icon.Height,
		})
	}
	return sheet
}
