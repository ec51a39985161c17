// Package server exposes course listing renderer over HTTP so host pages
// could embed category trees and course listings produced from host
// database.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"coursetheme/render"
	"coursetheme/state"
)

//go:embed templates
var templates embed.FS

const (
	shutdownTimeout = 5 * time.Second
	// upper limit of uploaded setting image
	maxImageSize = 16 << 20
)

type Server struct {
	env    *state.LocalEnv
	urls   *render.URLs
	tmpl   *template.Template
	router chi.Router
	log    *zap.Logger
}

// New prepares server for environment with opened host database.
func New(env *state.LocalEnv) (*Server, error) {
	if env.Store == nil || env.Theme == nil {
		return nil, errors.New("database is not opened")
	}
	urls, err := render.NewURLs(env.Cfg.Theme.WWWRoot, env.Cfg.Theme.SiteID)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("").Funcs(sprig.FuncMap()).ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("unable to parse page templates: %w", err)
	}
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{env: env, urls: urls, tmpl: tmpl, log: log.Named("server")}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleInfo)
	r.Route("/category/{id}", func(r chi.Router) {
		r.Get("/", s.handleCategory)
		r.Get("/courses", s.handleCourses)
	})
	r.Get("/theme/styles.scss", s.handleStyles)
	r.Post("/admin/setting/{name}/image", s.handleSettingImage)
	return r
}

// Handler returns server routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves requests on configured address until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.env.Cfg.Server.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("Request",
					zap.String("id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.log.Debug("Request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, http.StatusText(status), status)
}
