package source

import (
	"fmt"
	"strings"
	"text/template"
)

// Template renders the base URL of a target.
type Template struct {
	text string
	tmpl *template.Template
}

type templateData struct {
	Year, Month, Day, Name string
}

// ParseTemplate compiles a base URL template.
// Available fields are {{.Year}} {{.Month}} {{.Day}} and {{.Name}}.
func ParseTemplate(text string) (*Template, error) {
	tmpl, err := template.New("url").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse url template: %w", err)
	}

	return &Template{text: text, tmpl: tmpl}, nil
}

// Render returns the base URL for the target.
func (t *Template) Render(target Target) (string, error) {
	data := templateData{Name: target.Name}
	if !target.Date.IsZero() {
		data.Year = fmt.Sprintf("%04d", target.Date.Year)
		data.Month = fmt.Sprintf("%02d", target.Date.Month)
		data.Day = fmt.Sprintf("%02d", target.Date.Day)
	}

	var b strings.Builder
	if err := t.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render url template: %w", err)
	}

	return b.String(), nil
}

// NeedsDate reports whether the template references any date field.
func (t *Template) NeedsDate() bool {
	return strings.Contains(t.text, ".Year") ||
		strings.Contains(t.text, ".Month") ||
		strings.Contains(t.text, ".Day")
}

func (t *Template) String() string {
	return t.text
}
