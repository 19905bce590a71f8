package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages are parsed once; every page shares the definitions in layout.html
var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// renderPage executes the named template into a buffer so a template error
// can still become a 500 before anything is written
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.sugar.Errorw("failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.renderPage(w, status, "error.html", errorPage{Status: status, Message: message})
}
