package wikitext

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// Template actions use << >> so wikitext braces and links pass through
// untouched.
const (
	LeftDelim  = "<<"
	RightDelim = ">>"
)

//go:embed templates/photograph.wiki
var defaultTemplate string

// DefaultTemplate returns the built-in {{Photograph}} description template.
func DefaultTemplate() string {
	return defaultTemplate
}

var funcs = template.FuncMap{
	"categories": Categories,
	"license":    License,
}

// Renderer renders file page text from a record's fields
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer loads the template at path, or the default template when path
// is empty.
func NewRenderer(path string) (*Renderer, error) {
	if path == "" {
		return Parse("photograph", defaultTemplate)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return Parse(path, string(data))
}

// Parse compiles template text
func Parse(name, text string) (*Renderer, error) {
	tmpl, err := template.New(name).
		Delims(LeftDelim, RightDelim).
		Funcs(funcs).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template against fields. Absent and empty fields both
// render as empty text.
func (r *Renderer) Render(fields map[string]string) (string, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, fields); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// Render is a one-shot parse and render
func Render(text string, fields map[string]string) (string, error) {
	r, err := Parse("inline", text)
	if err != nil {
		return "", err
	}
	return r.Render(fields)
}

// Categories turns a ";"-separated list into one [[Category:...]] link per
// line. Entries that are already links are kept as they are.
func Categories(list string) string {
	var links []string
	for _, c := range strings.Split(list, ";") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.HasPrefix(c, "[[") {
			links = append(links, c)
			continue
		}
		links = append(links, "[[Category:"+strings.TrimPrefix(c, "Category:")+"]]")
	}
	return strings.Join(links, "\n")
}

// License wraps a bare license template name in braces.
func License(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "{{") {
		return name
	}
	return "{{" + name + "}}"
}
