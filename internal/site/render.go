package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aethra/haven/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// View is the data handed to every page template
type View struct {
	Site     config.SiteConfig
	Meta     Meta
	Path     string
	Year     int
	DarkMode bool
	Data     interface{}
}

// NewView fills the shared parts of a view
func NewView(cfg config.SiteConfig, meta Meta, path string, data interface{}) View {
	return View{Site: cfg, Meta: meta, Path: path, Year: time.Now().Year(), Data: data}
}

// AdminPage is the data of the admin shell page
type AdminPage struct {
	Email       string
	SidebarOpen bool
	Entities    []AdminEntity
}

// AdminEntity is one sidebar entry of the admin shell
type AdminEntity struct {
	Code   string
	Plural string
}

// Renderer executes the embedded page templates inside the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"spice": func(level int) string { return strings.Repeat("🌶", level) },
	"active": func(current, target string) bool {
		return current == target || (target != "/" && strings.HasPrefix(current, target+"/"))
	},
}

// NewRenderer parses every page template once
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range files {
		name := path.Base(file)
		if name == layoutFile {
			continue
		}
		t, err := template.New(layoutFile).Funcs(funcs).ParseFS(templateFS, "templates/"+layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(name, ".html")] = t
	}
	return r, nil
}

// Pages lists the page names known to the renderer
func (r *Renderer) Pages() []string {
	out := make([]string, 0, len(r.pages))
	for name := range r.pages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Render writes page wrapped in the layout
func (r *Renderer) Render(w io.Writer, page string, v View) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, layoutFile, v)
}
