// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
	"github.com/okian/assessor/pkg/logger"
)

// maxBodyBytes bounds request bodies for the JSON endpoints.
const maxBodyBytes = 1 << 20

// Assessor is the engine surface the handlers depend on.
type Assessor interface {
	Assess(ctx context.Context, in model.AssessmentInput) (*model.AssessmentResult, error)
	DetectPatternViolations(code string) []patterns.Violation
	CalculatePatternPenalty(violations []patterns.Violation) float64
	Rules() []patterns.Rule
	Version() string
	PatternChecksEnabled() bool
	CouncilAvailable() bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAPIKey enables key auth on protected routes. An empty key disables it.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithCORSOrigins sets the allowed origins. "*" allows any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = append([]string(nil), origins...) }
}

// WithRateLimit caps requests per client per minute with the given burst.
// A non-positive perMinute disables limiting.
func WithRateLimit(perMinute, burst int) Option {
	return func(s *Server) {
		s.ratePerMinute = perMinute
		s.rateBurst = burst
	}
}

// WithValidator replaces the request validator.
func WithValidator(v *validator.Validate) Option {
	return func(s *Server) {
		if v != nil {
			s.validate = v
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	engine   Assessor
	log      logger.Logger
	validate *validator.Validate
	started  time.Time

	apiKey        string
	corsOrigins   []string
	ratePerMinute int
	rateBurst     int
	limiter       *clientLimiter
}

// NewServer creates a new API server around engine.
func NewServer(engine Assessor, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		log:      logger.Nop(),
		validate: newValidator(),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ratePerMinute > 0 {
		s.limiter = newClientLimiter(s.ratePerMinute, s.rateBurst)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/assess", MetricsMiddleware(s.protect(s.handleAssess, "assess"), "assess"))
	mux.HandleFunc("/patterns/detect", MetricsMiddleware(s.protect(s.handleDetect, "patterns_detect"), "patterns_detect"))
	mux.HandleFunc("/patterns", MetricsMiddleware(s.protect(s.handleRules, "patterns"), "patterns"))
	mux.HandleFunc("/health", MetricsMiddleware(s.handleHealth, "health"))
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/{$}", MetricsMiddleware(RateLimitMiddleware(s.limiter, "root", s.handleRoot), "root"))
}

// Handler wraps next with the request-scoped middleware shared by every route.
func (s *Server) Handler(next http.Handler) http.Handler {
	return RequestIDMiddleware(s.log, CORSMiddleware(s.corsOrigins, next))
}

// protect applies rate limiting and key auth to a business route.
func (s *Server) protect(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RateLimitMiddleware(s.limiter, endpoint, AuthMiddleware(s.apiKey, next))
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a bounded JSON body into dst and rejects trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
