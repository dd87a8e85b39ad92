package handler

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	confirmationTemplate = "confirmation.tmpl"
	redirectTemplate     = "redirect.tmpl"
)

// Templates возвращает HTML-шаблоны страниц ответа для engine.SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}
