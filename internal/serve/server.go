package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/jobdesk/internal/host"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// ServeConfig is how `jobdesk serve` binds and which browser origin it
// admits.
type ServeConfig struct {
	Port       int
	Addr       string
	CORSOrigin string
}

// Server exposes a host.Source over the admin REST API.
type Server struct {
	src        host.Source
	instanceID string
	config     ServeConfig
	mux        *http.ServeMux
	http       *http.Server
	logger     *slog.Logger

	listening chan int
}

// NewServer routes the admin API to src. A nil logger uses slog.Default.
func NewServer(src host.Source, instanceID string, config ServeConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		src:        src,
		instanceID: instanceID,
		config:     config,
		mux:        http.NewServeMux(),
		logger:     logger.With("instance", instanceID),
		listening:  make(chan int, 1),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := func(pattern string) string {
		method, path, _ := strings.Cut(pattern, " ")
		return method + " " + host.APIPrefix + path
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc(api("GET /stats"), s.handleStats)

	s.mux.HandleFunc(api("GET /{resource}"), s.handleList)
	s.mux.HandleFunc(api("GET /{resource}/{id}"), s.handleGet)
	s.mux.HandleFunc(api("PUT /{resource}/{id}"), s.handleUpdate)
	s.mux.HandleFunc(api("DELETE /{resource}/{id}"), s.handleDelete)
	s.mux.HandleFunc(api("PATCH /{resource}/{id}/status"), s.handleSetStatus)
	s.mux.HandleFunc(api("GET /{resource}/{id}/transitions"), s.handleTransitions)
}

// Handler is the routed API behind panic recovery, request logging and
// CORS, outermost first.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, s.recoverPanics, s.logRequests, s.allowOrigin)
}

// chain applies mw so that mw[0] sees the request first.
func chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Listening yields the bound port once the server accepts connections.
func (s *Server) Listening() <-chan int { return s.listening }

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Addr, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.http = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	served := make(chan error, 1)
	go func() { served <- s.http.Serve(ln) }()
	s.listening <- ln.Addr().(*net.TCPAddr).Port

	select {
	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(drainCtx)
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops a started server. Before ListenAndServe it does nothing.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rr *responseRecorder) WriteHeader(status int) {
	rr.status = status
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.bytes += n
	return n, err
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("handler panic",
				"panic", rec,
				"route", r.Method+" "+r.URL.Path,
				"stack", string(debug.Stack()),
			)
			WriteError(w, ErrInternal, "internal server error", http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rr, r)

		level := slog.LevelInfo
		if rr.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rr.status,
			"bytes", rr.bytes,
			"dur", time.Since(start).Round(time.Microsecond).String(),
		)
	})
}

// allowOrigin answers CORS for the configured origin ("*" admits any).
// Requests from other origins pass through without CORS headers.
func (s *Server) allowOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := s.config.CORSOrigin
		if origin == "" || allowed == "" || (allowed != "*" && allowed != origin) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Max-Age", "3600")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
