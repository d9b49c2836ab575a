package cssprite

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// Header opens every generated stylesheet
const Header = "/* Auto-generated by cssprite */\n"

// Template renders the rule text of one sprite set. The header is added by
// the caller, a Template only produces the body.
type Template interface {
	Render(opts GenerateCSSOptions) (string, error)
}

// TemplateFunc adapts an ordinary function to the Template interface
type TemplateFunc func(opts GenerateCSSOptions) (string, error)

// Render implements Template
func (f TemplateFunc) Render(opts GenerateCSSOptions) (string, error) {
	return f(opts)
}

// DefaultTemplate emits a base rule, one rule per icon and a high-density
// media query when a retina sheet exists
type DefaultTemplate struct{}

// Render implements Template
func (DefaultTemplate) Render(opts GenerateCSSOptions) (string, error) {
	var b strings.Builder
	class := opts.ClassName()

	// Standard rules
	if opts.Results.Standard != nil {
		fmt.Fprintf(&b, ".%s { display: inline-block; background-image: url('%s'); }\n", class, opts.StandardURL)

		for _, icon := range opts.StandardIcons() {
			fmt.Fprintf(&b, ".%s--%s { width: %dpx; height: %dpx; background-position: -%dpx -%dpx; }\n",
				class, icon.Name, icon.Width, icon.Height, icon.X, icon.Y)
		}
	}

	// Retina rules
	if opts.Results.Retina != nil {
		standardWidth := 0
		if opts.Results.Standard != nil {
			standardWidth = opts.Results.Standard.Properties.Width
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "@media (-webkit-min-device-pixel-ratio: %s), (min-resolution: %sdpi) {\n",
			FormatRatio(opts.Ratio), FormatRatio(opts.Ratio*96))
		fmt.Fprintf(&b, "  .%s { background-image: url('%s'); background-size: %dpx auto; }\n",
			class, opts.RetinaURL, standardWidth)
		b.WriteString("}\n")
	}

	return b.String(), nil
}

// FormatRatio prints a ratio without trailing zeros: 2 -> "2", 1.5 -> "1.5"
func FormatRatio(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// templateFuncs are available inside file templates
var templateFuncs = template.FuncMap{
	"iconName": IconName,
	"ratio":    FormatRatio,
	"neg": func(v int) int {
		return -v
	},
}

type fileTemplate struct {
	tpl *template.Template
}

// Render implements Template
func (f *fileTemplate) Render(opts GenerateCSSOptions) (string, error) {
	var buf bytes.Buffer
	if err := f.tpl.Execute(&buf, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseTemplate compiles text/template source into a Template. The template
// executes against GenerateCSSOptions, so {{.ClassName}}, {{.StandardURL}},
// {{range .StandardIcons}} and friends are available.
func ParseTemplate(name, text string) (Template, error) {
	tpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &fileTemplate{tpl: tpl}, nil
}

// LoadTemplateFile reads and compiles a text/template file
func LoadTemplateFile(path string) (Template, error) {
	// #nosec G304 - path comes from trusted configuration
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read template", path, err)
	}
	return ParseTemplate(filepath.Base(path), string(content))
}

// RenderStylesheet produces the full stylesheet text for one set: the
// generated header followed by the template output. A nil template uses
// DefaultTemplate.
func RenderStylesheet(tpl Template, opts GenerateCSSOptions) (string, error) {
	if tpl == nil {
		tpl = DefaultTemplate{}
	}

	body, err := tpl.Render(opts)
	if err != nil {
		return "", fmt.Errorf("render stylesheet for %s: %w", opts.SpriteModuleName, err)
	}
	return Header + body, nil
}

// StylesheetName is the registry name of a set's stylesheet
func (b *Builder) StylesheetName(setName string) string {
	return b.cfg.StylesheetPrefix + setName + ".css"
}

// GenerateCSS renders the stylesheet of one set and registers it with the
// host build. It returns the registry reference.
func (b *Builder) GenerateCSS(ctx context.Context, opts GenerateCSSOptions) (string, error) {
	text, err := RenderStylesheet(b.cfg.Template, opts)
	if err != nil {
		return "", err
	}

	name := b.StylesheetName(opts.SpriteModuleName)
	ref, err := b.registry.Register(ctx, name, text)
	if err != nil {
		return "", registrationError("register", name, err)
	}
	return ref, nil
}
