// Package ui serves the inspection engine over HTTP and in the terminal.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/codebase"
	"github.com/dhamidi/pqls/pq/parser"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("pqls.ui")

const sampleQuery = "let\n    source = [name = \"pqls\", size = 3],\n    size = source[size]\nin\n    size * 2"

type Server struct {
	codebase   *codebase.Codebase
	staticFS   fs.FS
	templates  *template.Template
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap
	// reload is set when ui/templates exists on disk; templates are then
	// parsed again on every render.
	reload bool
}

func NewServer(cb *codebase.Codebase) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		codebase:   cb,
		staticFS:   staticFS,
		templates:  tmpl,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
		reload:     dirExists("ui/templates"),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /scan", s.handleScan)
	s.mux.HandleFunc("POST /inspect", s.handleInspect)
	s.mux.HandleFunc("GET /f/{path...}", s.handleFile)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// render executes a page from the templates parsed at startup. When
// running from a checkout, it parses them again so that edits under
// ui/templates show up without a restart.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl := s.templates
	if s.reload {
		var err error
		tmpl, err = template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
		if err != nil {
			http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Content-Type") == "application/json" ||
		r.Header.Get("Accept") == "application/json"
}

// InspectRequest asks for an inspection of Text at a zero-based line and
// byte column.
type InspectRequest struct {
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func decodeInspectRequest(r *http.Request) (InspectRequest, error) {
	var req InspectRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON: %w", err)
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("invalid form data: %w", err)
	}
	req.Text = strings.ReplaceAll(r.FormValue("text"), "\r\n", "\n")
	var err error
	if req.Line, err = formInt(r, "line"); err != nil {
		return req, err
	}
	if req.Column, err = formInt(r, "column"); err != nil {
		return req, err
	}
	return req, nil
}

func formInt(r *http.Request, name string) (int, error) {
	v := r.FormValue(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := decodeInspectRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Line < 0 || req.Column < 0 {
		http.Error(w, "line and column must not be negative", http.StatusBadRequest)
		return
	}

	pos := parser.Position{Line: req.Line, Column: req.Column}
	lp, in, err := pq.TryLexParseInspect(r.Context(), s.codebase.Settings(), req.Text, pos)
	if errors.Is(err, parser.ErrCancelled) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	var enc format.Encoder = format.NewLineEncoder(&buf, false)
	if wantsJSON(r) {
		enc = format.NewJSONEncoder(&buf)
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
		err = enc.EncodeDiagnostics("input", format.DiagnosticsFor(lp, err))
	} else {
		err = enc.EncodeInspection(lp, in)
	}
	if err != nil {
		http.Error(w, "encode: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(buf.Bytes())
		return
	}
	w.WriteHeader(status)
	s.render(w, "inspect.html", struct {
		InspectRequest
		Output string
	}{req, buf.String()})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := s.codebase.ScanAll(r.Context()); err != nil {
		log.Warningf("scan: %s", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type fileSummary struct {
	Rel      string
	Problems int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var files []fileSummary
	for _, path := range s.codebase.Paths() {
		diags, err := s.codebase.Diagnostics(r.Context(), path)
		if err != nil {
			log.Warningf("diagnostics %s: %s", path, err)
		}
		files = append(files, fileSummary{Rel: s.rel(path), Problems: len(diags)})
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(files)
		return
	}
	s.render(w, "index.html", struct {
		Root   string
		Files  []fileSummary
		Sample string
	}{s.codebase.RootDir(), files, sampleQuery})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	path := filepath.Join(s.codebase.RootDir(), filepath.FromSlash(rel))
	doc := s.codebase.GetFile(path)
	if doc == nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	diags, err := s.codebase.Diagnostics(r.Context(), path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		if err := format.NewJSONEncoder(w).EncodeDiagnostics(rel, diags); err != nil {
			log.Errorf("encode %s: %s", rel, err)
		}
		return
	}

	var lines []string
	for _, line := range doc.State.Lines() {
		lines = append(lines, line.Text)
	}
	s.render(w, "file.html", struct {
		Rel         string
		Lines       []string
		Diagnostics []format.Diagnostic
	}{rel, lines, diags})
}

func (s *Server) rel(path string) string {
	rel, err := filepath.Rel(s.codebase.RootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFSType serves files from a directory on disk when present and
// from the embedded copy otherwise.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
