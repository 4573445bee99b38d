package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var files embed.FS

// Page names accepted by Renderer.Render.
const (
	PageLoginRegister = "login_register"
	PageHome          = "home"
	PageProfile       = "profile"
)

// Flash is a one-shot message shown above the page content.
type Flash struct {
	Category string
	Message  string
}

// Page is the data every template receives. Data holds the page-specific values.
type Page struct {
	Title       string
	CurrentUser string
	Flashes     []Flash
	Errors      map[string][]string
	CSRF        string
	Data        interface{}
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, page := range []string{PageLoginRegister, PageHome, PageProfile} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(files,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		return t.Local().Format("Mon, 02 Jan 2006 15:04")
	},
	"fieldErrors": func(errs map[string][]string, field string) []string {
		return errs[field]
	},
}
