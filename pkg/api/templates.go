package api

import (
	"embed"
	"html/template"

	"medwaste/pkg/validation"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// formField is what the "field" template renders.
type formField struct {
	Name  string
	Label string
	Value string
	Error string
}

// LoadTemplates parses the embedded screens.
func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"field": func(name, label, value string, errs validation.FieldErrors) formField {
			return formField{Name: name, Label: label, Value: value, Error: errs[name]}
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}
