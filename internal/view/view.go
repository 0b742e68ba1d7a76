// Package view renders the four HTML pages of the flow (welcome, form,
// preview, success) through Echo's Renderer interface.  Templates are
// embedded so the binary carries its own views.
package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer implements echo.Renderer over the embedded template set.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates.  A parse failure is a build defect,
// so callers treat the error as fatal at startup.
func New() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
