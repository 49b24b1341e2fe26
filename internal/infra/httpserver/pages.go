package httpserver

import (
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// GET / — landing page
func (r *Router) handleIndexPage(w http.ResponseWriter, req *http.Request) {
	renderPage(w, "index.html")
}

// GET /app — application shell
func (r *Router) handleAppPage(w http.ResponseWriter, req *http.Request) {
	renderPage(w, "app.html")
}

func renderPage(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, nil); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}
