package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Renderer renders the dashboard page
type Renderer struct {
	page *template.Template
}

// NewRenderer parses the embedded page template
func NewRenderer() (*Renderer, error) {
	page, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	return &Renderer{page: page}, nil
}

// Render writes the page for v. Output is buffered so a template failure
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, v View) error {
	if v.BasePath == "" {
		v.BasePath = "/"
	}
	var buf bytes.Buffer
	if err := r.page.Execute(&buf, v); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// StaticFS returns the embedded stylesheet and assets, rooted at static/
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
