package cssinspect

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// parserState maintains context while parsing CSS
type parserState struct {
	media    string // Current @media prelude
	depth    int    // Open blocks of the current @media
	rules    []*Rule
	filename string
}

// ParseCSS parses stylesheet content into class rules in source order.
// Selector lists produce one rule per class.
func ParseCSS(content, filename string) []*Rule {
	state := &parserState{filename: filename}
	lexer := css.NewLexer(parse.NewInputString(content))

	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			// ErrorToken at EOF is normal
			break
		}

		switch {
		case tt == css.AtKeywordToken && string(text) == "@media":
			state.handleMedia(lexer)
		case tt == css.RightBraceToken && state.depth > 0:
			state.depth--
			if state.depth == 0 {
				state.media = ""
			}
		case tt == css.DelimToken && len(text) > 0 && text[0] == '.':
			state.handleClassRule(lexer)
		}
	}

	return state.rules
}

// ParseFile reads and inspects a single stylesheet
func ParseFile(path string) (*Stylesheet, error) {
	// #nosec G304 - path comes from the command line
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Inspect(string(content), path), nil
}

// Inspect parses content and derives its sheets and icons
func Inspect(content, filename string) *Stylesheet {
	rules := ParseCSS(content, filename)
	return &Stylesheet{
		Path:   filename,
		Rules:  rules,
		Sheets: Sheets(rules),
		Icons:  Icons(rules),
	}
}

// handleMedia reads the media prelude up to its opening brace
func (s *parserState) handleMedia(lexer *css.Lexer) {
	var prelude strings.Builder
	for {
		tt, text := lexer.Next()
		switch tt {
		case css.ErrorToken, css.SemicolonToken:
			return
		case css.LeftBraceToken:
			s.media = strings.Join(strings.Fields(prelude.String()), " ")
			s.depth = 1
			return
		default:
			prelude.Write(text)
		}
	}
}

// handleClassRule processes a selector list and its declarations
func (s *parserState) handleClassRule(lexer *css.Lexer) {
	// At this point we've seen a '.', read the class name
	tt, name := lexer.Next()
	if tt != css.IdentToken {
		return
	}
	classes := []string{string(name)}

	for {
		tt, text := lexer.Next()
		switch {
		case tt == css.ErrorToken:
			return

		case tt == css.DelimToken && len(text) > 0 && text[0] == '.':
			// Another class of a list or compound selector
			if tt2, name2 := lexer.Next(); tt2 == css.IdentToken {
				classes = append(classes, string(name2))
			}

		case tt == css.LeftBraceToken:
			props := extractDeclarations(lexer)
			for _, class := range classes {
				s.rules = append(s.rules, &Rule{
					Class:      class,
					Properties: props,
					Media:      s.media,
					SourceFile: s.filename,
				})
			}
			return
		}
	}
}

// extractDeclarations reads property: value pairs until }
func extractDeclarations(lexer *css.Lexer) map[string]string {
	props := make(map[string]string)

	var currentProp string
	var currentVal []string

	save := func() {
		if currentProp != "" && len(currentVal) > 0 {
			props[currentProp] = strings.TrimSpace(strings.Join(currentVal, ""))
		}
		currentProp = ""
		currentVal = nil
	}

	for {
		tt, text := lexer.Next()

		if tt == css.ErrorToken || tt == css.RightBraceToken {
			save()
			return props
		}

		switch {
		case tt == css.IdentToken && currentProp == "":
			currentProp = string(text)
		case tt == css.ColonToken && len(currentVal) == 0:
			continue
		case tt == css.SemicolonToken:
			save()
		case currentProp != "":
			currentVal = append(currentVal, string(text))
		}
	}
}

// Sheets returns the base rules of every set: those with a background image
// outside a media query, completed with their retina override
func Sheets(rules []*Rule) []Sheet {
	byClass := make(map[string]*Sheet)
	var order []string

	for _, r := range rules {
		url, ok := r.Properties["background-image"]
		if !ok {
			continue
		}

		sheet, exists := byClass[r.Class]
		if !exists {
			sheet = &Sheet{Class: r.Class}
			byClass[r.Class] = sheet
			order = append(order, r.Class)
		}

		if r.Media == "" {
			sheet.URL = unquoteURL(url)
		} else {
			sheet.RetinaURL = unquoteURL(url)
			sheet.BackgroundSize = r.Properties["background-size"]
		}
	}

	out := make([]Sheet, 0, len(order))
	for _, class := range order {
		out = append(out, *byClass[class])
	}
	return out
}

// Icons returns every top-level rule with a size and a background position,
// sorted by class
func Icons(rules []*Rule) []Icon {
	var icons []Icon
	for _, r := range rules {
		if r.Media != "" {
			continue
		}
		pos, ok := r.Properties["background-position"]
		if !ok {
			continue
		}

		x, y, err := parsePosition(pos)
		if err != nil {
			continue
		}
		base, name, _ := strings.Cut(r.Class, "--")

		icons = append(icons, Icon{
			Class:  r.Class,
			Base:   base,
			Name:   name,
			X:      x,
			Y:      y,
			Width:  pixels(r.Properties["width"]),
			Height: pixels(r.Properties["height"]),
		})
	}

	sort.Slice(icons, func(i, j int) bool {
		return icons[i].Class < icons[j].Class
	})
	return icons
}

// parsePosition turns "-10px -0px" into the placement offset (10, 0)
func parsePosition(value string) (x, y int, err error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected background-position %q", value)
	}

	x, err = strconv.Atoi(strings.TrimSuffix(fields[0], "px"))
	if err != nil {
		return 0, 0, err
	}
	y, err = strconv.Atoi(strings.TrimSuffix(fields[1], "px"))
	if err != nil {
		return 0, 0, err
	}
	return -x, -y, nil
}

// pixels parses "16px", returning 0 for anything else
func pixels(value string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(value), "px"))
	if err != nil {
		return 0
	}
	return n
}

// unquoteURL extracts the address of url('...')
func unquoteURL(value string) string {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "url(") || !strings.HasSuffix(value, ")") {
		return value
	}
	value = strings.TrimSpace(value[len("url(") : len(value)-1])
	return strings.Trim(value, `'"`)
}
