package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/n0roo/richness-kit/internal/analytics"
	"github.com/n0roo/richness-kit/internal/logger"
	"github.com/n0roo/richness-kit/internal/metrics"
	"github.com/n0roo/richness-kit/internal/persona"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Loader reads the records the viewer serves
type Loader func() ([]richness.Record, error)

// Config holds server configuration
type Config struct {
	Addr    string
	Source  string // 아티팩트 또는 DB 경로 (표시용)
	MaxRows int
}

// Server represents the read-only HTTP viewer
type Server struct {
	config   Config
	load     Loader
	personas *persona.Set
	metrics  *metrics.Recorder
	log      *logger.Logger
	srv      *http.Server

	// 레코드는 한 번만 읽고 캐시
	once    sync.Once
	records []richness.Record
	loadErr error
}

// NewServer creates a new server
func NewServer(config Config, load Loader, personas *persona.Set, rec *metrics.Recorder, log *logger.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.MaxRows <= 0 {
		config.MaxRows = 1000
	}
	if personas == nil {
		personas = persona.Default()
	}
	if rec == nil {
		rec = metrics.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		config:   config,
		load:     load,
		personas: personas,
		metrics:  rec,
		log:      log,
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))
	r.Use(s.countRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/devices", s.handleDevices)
		r.Get("/devices/{id}", s.handleDevice)
		r.Get("/summary", s.handleSummary)
	})

	return r
}

// Start starts the server
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.log.Info("HTTP 뷰어 시작", "addr", s.config.Addr, "source", s.config.Source)
	return s.srv.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// Records returns the cached records, loading them on first use
func (s *Server) Records() ([]richness.Record, error) {
	s.once.Do(func() {
		if s.load == nil {
			return
		}
		s.records, s.loadErr = s.load()
		if s.loadErr != nil {
			s.log.Error("레코드 로드 실패", "source", s.config.Source, "error", s.loadErr)
			return
		}
		s.metrics.ObserveOverall(analytics.DescribeRecords(s.records).Map())
		s.log.Info("레코드 로드 완료", "source", s.config.Source, "rows", len(s.records))
	})
	return s.records, s.loadErr
}

// countRequests records one counter sample per request under its route pattern
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(route, status)
	})
}

// JSON response helper
func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("응답 인코딩 실패", "error", err)
	}
}

// Error response helper
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("잘못된 %s 값: %q", key, raw)
	}
	return v, nil
}
