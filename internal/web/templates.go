package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"dashboard.html",
	"transactions.html",
	"budgets.html",
	"reports.html",
	"docs.html",
	"doc.html",
}

// loadTemplates builds one template set per page: a clone of the
// layout with that page's blocks layered on top. Panics on a syntax
// error so a bad template fails startup, not the first request.
func loadTemplates() map[string]*template.Template {
	funcs := template.FuncMap{
		"money": func(amount float64) string { return fmt.Sprintf("$%.2f", amount) },
		"pct":   func(p float64) string { return fmt.Sprintf("%.1f%%", p) },
	}
	layout := template.Must(
		template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"),
	)

	sets := make(map[string]*template.Template, len(pageNames))
	for _, page := range pageNames {
		t := template.Must(layout.Clone())
		sets[page] = template.Must(t.ParseFS(templateFS, "templates/"+page))
	}
	return sets
}

// render writes a page. htmx requests (HX-Request header) get only the
// "content" block; everything else gets the full layout.
func (s *WebServer) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	t, ok := s.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	block := "layout.html"
	if r.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, block, data); err != nil {
		s.logger.Error("template render failed", "template", name, "block", block, "error", err)
	}
}
