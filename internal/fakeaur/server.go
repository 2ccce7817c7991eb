// Package fakeaur serves a small, deterministic imitation of the AUR's HTTP
// surface: the RPC v5 endpoint, snapshot tarballs, and PKGBUILDs. It exists
// for end-to-end testing and local development against a server that never
// changes under you.
package fakeaur

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/auric-sh/auric/internal/model"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
)

// rpcReply mirrors the AUR RPC v5 response envelope.
type rpcReply struct {
	Type        string          `json:"type"`
	Version     int             `json:"version"`
	ResultCount int             `json:"resultcount"`
	Results     []model.Package `json:"results"`
	Error       string          `json:"error,omitempty"`
}

// Server wraps the chi router and the seeded package set.
type Server struct {
	router   *chi.Mux
	packages map[string]model.Package
	logger   *slog.Logger
	addr     string
}

// NewServer creates a fake AUR listening on addr, seeded with a handful of
// packages.
func NewServer(addr string, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		packages: seedPackages(),
		logger:   logger,
		addr:     addr,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metricsMiddleware)

	s.routes()

	return s
}

func (s *Server) routes() {
	s.router.Get("/rpc", s.handleRPC)
	s.router.Get("/cgit/aur.git/snapshot/{snapshot}", s.handleSnapshot)
	s.router.Get("/cgit/aur.git/plain/PKGBUILD", s.handlePkgbuild)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())
}

// Handler returns the underlying handler so tests can mount the fake AUR on
// an httptest server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it fails.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	s.logger.Info("fakeaur: listening", "addr", s.addr)
	return httpServer.ListenAndServe()
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("v") != "5" {
		s.writeRPCError(w, "Invalid version specified.")
		return
	}

	switch q.Get("type") {
	case "search":
		by := q.Get("by")
		if by == "" {
			by = "name-desc"
		}
		if !validSearchBy(by) {
			s.writeRPCError(w, "Incorrect by field specified.")
			return
		}
		arg := q.Get("arg")
		if len(arg) < 2 {
			s.writeRPCError(w, "Query arg too small.")
			return
		}
		s.writeRPC(w, "search", s.search(by, arg))
	case "info":
		var results []model.Package
		for _, name := range q["arg[]"] {
			if p, ok := s.packages[name]; ok {
				results = append(results, p)
			}
		}
		s.writeRPC(w, "multiinfo", results)
	default:
		s.writeRPCError(w, "Incorrect request type specified.")
	}
}

func (s *Server) search(by, arg string) []model.Package {
	var results []model.Package
	for _, p := range s.packages {
		var hay string
		switch by {
		case "maintainer":
			hay = p.Maintainer
		case "name":
			hay = p.Name
		default:
			hay = p.Name + " " + p.Description
		}
		if strings.Contains(hay, arg) {
			results = append(results, p)
		}
	}
	return results
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := chi.URLParam(r, "snapshot")
	name, ok := strings.CutSuffix(snapshot, ".tar.gz")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.packages[name]; !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/gzip")
	gz := gzip.NewWriter(w)
	fmt.Fprintf(gz, "snapshot of %s\n", name)
	gz.Close()
}

func (s *Server) handlePkgbuild(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("h")
	p, ok := s.packages[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	version, release, _ := strings.Cut(p.Version, "-")
	fmt.Fprintf(w, "pkgname=%s\npkgver=%s\npkgrel=%s\npkgdesc='%s'\n",
		p.Name, version, release, p.Description)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) writeRPC(w http.ResponseWriter, replyType string, results []model.Package) {
	if results == nil {
		results = []model.Package{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rpcReply{
		Type:        replyType,
		Version:     5,
		ResultCount: len(results),
		Results:     results,
	})
}

// writeRPCError mimics the AUR, which reports request errors inside a 200
// reply of type "error".
func (s *Server) writeRPCError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rpcReply{
		Type:    "error",
		Version: 5,
		Results: []model.Package{},
		Error:   msg,
	})
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func validSearchBy(by string) bool {
	switch by {
	case "name", "name-desc", "maintainer", "depends", "makedepends", "optdepends", "checkdepends":
		return true
	}
	return false
}

func seedPackages() map[string]model.Package {
	maintainer := "falconindy"
	pkgs := []model.Package{
		{
			ID:          1045094,
			Name:        "auracle-git",
			PackageBase: "auracle-git",
			Version:     "r414.43b4f2b-1",
			Description: "A flexible client for the AUR",
			URL:         "https://github.com/falconindy/auracle",
			Maintainer:  maintainer,
			NumVotes:    83,
			Popularity:  0.42,
			Depends:     []string{"libcurl.so", "libsystemd.so"},
			MakeDepends: []string{"meson"},
			License:     []string{"MIT"},
		},
		{
			ID:          516348,
			Name:        "pkgfile-git",
			PackageBase: "pkgfile-git",
			Version:     "r600.9cf9cb6-1",
			Description: "a pacman files metadata explorer",
			URL:         "https://github.com/falconindy/pkgfile",
			Maintainer:  maintainer,
			NumVotes:    30,
			Popularity:  0.12,
			License:     []string{"MIT"},
		},
		{
			ID:          661593,
			Name:        "aurutils",
			PackageBase: "aurutils",
			Version:     "20-2",
			Description: "helper tools for the arch user repository",
			URL:         "https://github.com/aurutils/aurutils",
			Maintainer:  "cgirard",
			NumVotes:    250,
			Popularity:  4.7,
			License:     []string{"custom:ISC"},
		},
	}

	m := make(map[string]model.Package, len(pkgs))
	for _, p := range pkgs {
		m[p.Name] = p
	}
	return m
}
