package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Keganchiaa/fyp-bank/internal/session"
)

var titleCaser = cases.Title(language.English)

// PurposeLabel turns a snake_case purpose into a heading, e.g.
// "account_cancel" into "Account Cancel".
func PurposeLabel(purpose string) string {
	return titleCaser.String(strings.ReplaceAll(purpose, "_", " "))
}

var funcMap = template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"date": func(t time.Time) string {
		return t.Format("2 Jan 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("2 Jan 2006 15:04")
	},
	"purposeLabel": PurposeLabel,
}

// Renderer lazily parses each page template against the shared layout and
// caches the result.
type Renderer struct {
	fs    fs.FS
	mu    sync.Mutex
	cache map[string]*template.Template
}

func NewRenderer(templates fs.FS) *Renderer {
	return &Renderer{fs: templates, cache: map[string]*template.Template{}}
}

// PageData is what every template receives.
type PageData struct {
	Session *session.Session
	Error   string
	Success string
	Data    any
}

func (r *Renderer) template(page string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.cache[page]; ok {
		return t, nil
	}
	t, err := template.New("layout.html").Funcs(funcMap).
		ParseFS(r.fs, "templates/layout.html", "templates/"+page)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", page, err)
	}
	r.cache[page] = t
	return t, nil
}

// Render writes the page. Error and success strings come from the request's
// query so redirects can carry flash messages.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, page string, data any) {
	t, err := r.template(page)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pd := PageData{
		Session: session.FromContext(req.Context()),
		Error:   req.URL.Query().Get("error"),
		Success: req.URL.Query().Get("success"),
		Data:    data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout.html", pd); err != nil {
		log.Printf("[ERROR] render %s: %v", page, err)
	}
}

// redirectErr sends the browser back with the error as a flash message.
func redirectErr(w http.ResponseWriter, req *http.Request, to string, err error) {
	http.Redirect(w, req, withQuery(to, "error", err.Error()), http.StatusSeeOther)
}

func redirectOK(w http.ResponseWriter, req *http.Request, to, msg string) {
	http.Redirect(w, req, withQuery(to, "success", msg), http.StatusSeeOther)
}

func withQuery(to, key, value string) string {
	sep := "?"
	if strings.Contains(to, "?") {
		sep = "&"
	}
	return to + sep + key + "=" + url.QueryEscape(value)
}
