package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
	"github.com/jacobarthurs/a11yscan/internal/cache"
	"github.com/jacobarthurs/a11yscan/internal/store"
)

const (
	DefaultCacheTTL = 10 * time.Minute

	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 64 * 1024
	shutdownTimeout   = 10 * time.Second
	saveTimeout       = 10 * time.Second
)

type Options struct {
	Analyzer       *analyzer.Analyzer
	MaxUploadBytes int64
	Cache          cache.Backend
	CacheTTL       time.Duration
	// ConnStr enables report history when set.
	ConnStr string
	Logger  *zap.SugaredLogger
}

type Server struct {
	analyzer  *analyzer.Analyzer
	maxUpload int64
	cache     cache.Backend
	cacheTTL  time.Duration
	connStr   string
	log       *zap.SugaredLogger

	group      singleflight.Group
	saveReport func(ctx context.Context, connStr, source, digest string, report analyzer.Report) (int64, error)
}

func New(opts Options) (*Server, error) {
	if opts.Analyzer == nil {
		return nil, errors.New("server requires an analyzer")
	}
	if opts.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive, got %d", opts.MaxUploadBytes)
	}
	if opts.Cache == nil {
		return nil, errors.New("server requires a cache backend")
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	return &Server{
		analyzer:   opts.Analyzer,
		maxUpload:  opts.MaxUploadBytes,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		connStr:    opts.ConnStr,
		log:        opts.Logger,
		saveReport: store.Save,
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", limitBody(s.handleAnalyze, s.maxUpload+multipartOverhead))
	mux.HandleFunc("GET /health", healthHandler)
	return securityHeaders(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func limitBody(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSONValue(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, body)
}
