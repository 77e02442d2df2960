// Package pages serves the marketing site's HTML documents under clean URLs.
package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/springlegal/website/backend/pkg/utils"
)

// Table maps a clean URL path to the document that answers it.
type Table map[string]string

// DefaultTable lists the site's pages.
func DefaultTable() Table {
	t := Table{"/": "index.html"}
	for _, name := range []string{
		"about",
		"contact",
		"attorney-details",
		"our-attorneys",
		"our-history",
		"our-pricing",
		"testimonial",
		"faq",
		"accordion",
		"achievements",
		"corporate-commercial-law",
		"dispute-resolution-litigation",
		"private-client-family",
		"property-real-estate",
		"specialist-advisory-compliance",
		"case-study-details",
		"404-page",
	} {
		t["/"+name] = name + ".html"
	}
	return t
}

// Paths returns the table's URL paths in sorted order.
func (t Table) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Validate reports every document in t that is missing from fsys or is not a
// regular file.
func (t Table) Validate(fsys fs.FS) error {
	var errs []error
	for _, p := range t.Paths() {
		doc := t[p]
		info, err := fs.Stat(fsys, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("page %s: %w", p, err))
			continue
		}
		if !info.Mode().IsRegular() {
			errs = append(errs, fmt.Errorf("page %s: %s is not a regular file", p, doc))
		}
	}
	return errors.Join(errs...)
}

// Server answers page requests from a content root.
type Server struct {
	fsys  fs.FS
	table Table
}

// New validates table against fsys before returning a Server.
func New(fsys fs.FS, table Table) (*Server, error) {
	if err := table.Validate(fsys); err != nil {
		return nil, err
	}
	return &Server{fsys: fsys, table: table}, nil
}

// RegisterRoutes mounts every table entry and makes static serving the
// fallback for everything else.
func (s *Server) RegisterRoutes(r chi.Router) {
	for p, doc := range s.table {
		h := s.document(doc)
		r.Get(p, h)
		r.Head(p, h)
	}
	r.NotFound(s.serveStatic)
	r.MethodNotAllowed(NotFound)
}

func (s *Server) document(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, s.fsys, name)
	}
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || hidden(name) {
		NotFound(w, r)
		return
	}

	info, err := fs.Stat(s.fsys, name)
	if err != nil {
		NotFound(w, r)
		return
	}
	if info.IsDir() {
		name = path.Join(name, "index.html")
		if info, err = fs.Stat(s.fsys, name); err != nil || info.IsDir() {
			NotFound(w, r)
			return
		}
	}

	http.ServeFileFS(w, r, s.fsys, name)
}

func hidden(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// NotFound is the JSON answer for unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	utils.RespondError(w, http.StatusNotFound, "Route not found")
}
