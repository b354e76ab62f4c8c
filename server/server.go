// Package server exposes the application shell over HTTP
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"gitlab.com/golang-commonmark/markdown"
	"go.uber.org/zap"

	"github.com/bububa/planthy/app"
)

// Diagnoser is satisfied by *app.Shell
type Diagnoser interface {
	Diagnose(ctx context.Context, image io.Reader, query string) (*app.Diagnosis, error)
}

// ErrorBody is the JSON body of a failed request
type ErrorBody struct {
	Category app.Category `json:"category"`
	Message  string       `json:"message"`
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMaxUploadBytes limits the image part, the whole body may carry 1MB more for the form
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		s.maxUploadBytes = n
	}
}

type Server struct {
	diagnoser      Diagnoser
	logger         *zap.Logger
	maxUploadBytes int64
	md             *markdown.Markdown
	mux            *http.ServeMux
}

func New(d Diagnoser, opts ...Option) *Server {
	ret := &Server{diagnoser: d}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	if ret.maxUploadBytes <= 0 {
		ret.maxUploadBytes = app.DefaultMaxUploadBytes
	}
	ret.md = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.XHTMLOutput(true))
	ret.mux = http.NewServeMux()
	ret.mux.HandleFunc("POST /api/diagnose", ret.handleDiagnose)
	ret.mux.HandleFunc("GET /healthz", ret.handleHealth)
	return ret
}

// Handler returns the routes wrapped with access logging
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(startTime)),
		)
	})
}

// ListenAndServe serves addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = errors.Join(app.ErrTooLarge, err)
		} else {
			err = errors.Join(app.ErrInvalidInput, err)
		}
		s.writeError(w, app.Classify(err))
		return
	}
	defer r.MultipartForm.RemoveAll()
	var image io.Reader
	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image = file
	case !errors.Is(err, http.ErrMissingFile):
		s.writeError(w, app.Classify(errors.Join(app.ErrInvalidInput, err)))
		return
	}
	diag, err := s.diagnoser.Diagnose(r.Context(), image, r.FormValue("query"))
	if err != nil {
		s.writeError(w, app.Classify(err))
		return
	}
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "text/html"):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, s.md.RenderToString([]byte(diag.Answer)))
	case strings.Contains(accept, "application/json"):
		writeJSON(w, http.StatusOK, diag)
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, diag.Answer)
	}
}

func (s *Server) writeError(w http.ResponseWriter, failure *app.Failure) {
	status := StatusFor(failure.Category)
	if errors.Is(failure, app.ErrTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, ErrorBody{Category: failure.Category, Message: failure.Message})
}

// StatusFor maps a failure category to an HTTP status
func StatusFor(c app.Category) int {
	switch c {
	case app.CategoryInvalidInput:
		return http.StatusBadRequest
	case app.CategoryExtraction, app.CategorySchemaParse, app.CategorySearch, app.CategoryOrchestrator:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
