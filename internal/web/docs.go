package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"
)

// DocsData is the template context for the document list page.
type DocsData struct {
	ActiveNav string
	Documents []string
}

// DocData is the template context for a rendered document page.
type DocData struct {
	ActiveNav string
	Name      string
	Body      template.HTML
}

// handleDocs renders the company document list.
func (s *WebServer) handleDocs(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		http.Error(w, "documents not configured", http.StatusServiceUnavailable)
		return
	}
	names, err := s.docs.List()
	if err != nil {
		s.serverError(w, "list documents", err)
		return
	}
	s.render(w, r, "docs.html", DocsData{ActiveNav: "docs", Documents: names})
}

// handleDoc renders a single markdown document as HTML.
func (s *WebServer) handleDoc(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		http.Error(w, "documents not configured", http.StatusServiceUnavailable)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/docs/")
	if name == "" {
		http.Redirect(w, r, "/docs", http.StatusSeeOther)
		return
	}

	content, err := s.docs.Read(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		s.serverError(w, "render document", err)
		return
	}

	s.render(w, r, "doc.html", DocData{
		ActiveNav: "docs",
		Name:      name,
		Body:      template.HTML(buf.String()),
	})
}
