// Package cssinspect reads generated sprite stylesheets back into rules and
// icon placements.
package cssinspect

// Rule is one class rule of a stylesheet
type Rule struct {
	Class      string            // "sprite-icons--home"
	Properties map[string]string // Declarations, whitespace trimmed
	Media      string            // Enclosing media query, empty at top level
	SourceFile string
}

// Icon is a rule that selects a rectangle of a sheet
type Icon struct {
	Class  string // "sprite-icons--home"
	Base   string // "sprite-icons"
	Name   string // "home"
	X      int
	Y      int
	Width  int
	Height int
}

// Sheet is the base rule of a sprite set
type Sheet struct {
	Class          string
	URL            string // Standard sheet
	RetinaURL      string // From the media query, empty without one
	BackgroundSize string // Retina background-size
}

// Stylesheet is everything found in one file
type Stylesheet struct {
	Path   string
	Rules  []*Rule
	Sheets []Sheet
	Icons  []Icon
}
