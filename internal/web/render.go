// Package web holds the page templates and the gin renderer that serves them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "templates/layout.html"

// Nav is what the navbar shows. It comes from the session's display hint only.
type Nav struct {
	LoggedIn     bool
	DisplayName  string
	Role         string
	IsInstructor bool
	IsAdmin      bool
}

// NavFor builds the navbar for sess
func NavFor(sess session.Session) Nav {
	if sess.Anonymous() {
		return Nav{}
	}
	name := sess.DisplayName
	if name == "" {
		name = string(sess.Hint)
	}
	return Nav{
		LoggedIn:     true,
		DisplayName:  name,
		Role:         string(sess.Hint),
		IsInstructor: sess.Hint == session.HintInstructor,
		IsAdmin:      sess.Hint == session.HintAdmin,
	}
}

// Flash is a notification shown at the top of the page
type Flash struct {
	Kind    string
	Message string
}

// Page is the data every template receives
type Page struct {
	Title string
	Nav   Nav
	Flash *Flash
	Data  any
}

// Renderer implements gin's render.HTMLRender with one template set per page,
// each combined with the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every page template
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// MustNewRenderer panics when the embedded templates do not parse
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Instance returns the renderer for page name
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		tmpl = r.pages["error"]
		data = Page{Title: "Error", Data: ErrorData{Message: "Page not found: " + name}}
	}
	return render.HTML{Template: tmpl, Name: "layout", Data: data}
}

// Has reports whether a page template exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// ErrorData is the body of the error page
type ErrorData struct {
	Message string
}

// Static serves the embedded assets under /static
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
