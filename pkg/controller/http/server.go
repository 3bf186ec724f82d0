package http

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/utils/errutil"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
	"github.com/secmon-lab/vitalmap/pkg/utils/safe"
)

// PresenceProvider serves /api/users and /api/users/{id}
type PresenceProvider interface {
	Snapshot(ctx context.Context) (model.Presence, error)
	Lookup(ctx context.Context, id model.UserID) (*model.PresenceEntry, error)
}

// TelemetryProvider serves the stored samples of a user
type TelemetryProvider interface {
	HealthHistory(ctx context.Context, id model.UserID) ([]*model.HealthSample, error)
	WatchHistory(ctx context.Context, id model.UserID) ([]*model.WatchSample, error)
}

type Server struct {
	router    *chi.Mux
	static    fs.FS
	socket    http.Handler
	presence  PresenceProvider
	telemetry TelemetryProvider
}

type Options func(*Server)

// WithStaticDir serves pages and assets from dir
func WithStaticDir(dir string) Options {
	return func(s *Server) {
		s.static = os.DirFS(dir)
	}
}

// WithStaticFS serves pages and assets from fsys
func WithStaticFS(fsys fs.FS) Options {
	return func(s *Server) {
		s.static = fsys
	}
}

func WithPresence(p PresenceProvider) Options {
	return func(s *Server) {
		s.presence = p
	}
}

func WithTelemetry(t TelemetryProvider) Options {
	return func(s *Server) {
		s.telemetry = t
	}
}

func New(socket http.Handler, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		socket: socket,
		static: os.DirFS("."),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/socket", s.socket.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler)
		if s.presence != nil {
			r.Get("/users", usersHandler(s.presence))
			r.Get("/users/{id}", userHandler(s.presence))
		}
		if s.telemetry != nil {
			r.Get("/users/{id}/health", historyHandler(s.telemetry.HealthHistory))
			r.Get("/users/{id}/watch", historyHandler(s.telemetry.WatchHistory))
		}
	})

	r.Get("/", pageHandler(s.static, "index.html"))
	r.Get("/user-panel", pageHandler(s.static, "user-panel.html"))

	// Static files (catch-all, must be last)
	r.Get("/*", hideDotfiles(http.FileServer(http.FS(s.static))).ServeHTTP)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// hideDotfiles answers 404 for any path segment starting with a dot, so files
// such as .env next to the pages are never served
func hideDotfiles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, segment := range strings.Split(r.URL.Path, "/") {
			if strings.HasPrefix(segment, ".") {
				http.NotFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// pageHandler serves a single HTML page from the static root
func pageHandler(static fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := static.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer safe.Close(r.Context(), file)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		safe.Copy(r.Context(), w, file)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// usersHandler serves the same snapshot peers receive as users-update
func usersHandler(p PresenceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := p.Snapshot(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to build presence snapshot"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, snapshot)
	}
}

func userHandler(p PresenceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.UserID(chi.URLParam(r, "id"))
		entry, err := p.Lookup(r.Context(), id)
		if errors.Is(err, interfaces.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to look up user", goerr.V("id", id)), http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, entry)
	}
}

// historyHandler serves the samples of one user, an empty list for an unknown user
func historyHandler[T any](list func(ctx context.Context, id model.UserID) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.UserID(chi.URLParam(r, "id"))
		samples, err := list(r.Context(), id)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to list samples", goerr.V("id", id)), http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, samples)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}
