// Package httpapi exposes the eligibility gate over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"token-gate/internal/domain"
	"token-gate/internal/observability"
)

// Checker runs an eligibility check.
type Checker interface {
	Check(ctx context.Context, rawAddress string) domain.Outcome
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server serves the /process API plus health, metrics and status.
type Server struct {
	checker Checker
	limiter *ipLimiter
	health  map[string]HealthCheck
	started time.Time
	logger  *log.Logger
	router  chi.Router
}

// Options contains configuration for creating a Server.
type Options struct {
	Checker      Checker
	RateLimit    rate.Limit             // per client IP; Default: 2/s
	RateBurst    int                    // Default: 5
	HealthChecks map[string]HealthCheck // reported by /status
	Logger       *log.Logger
}

// ProcessResponse is the JSON body of /process.
type ProcessResponse struct {
	Outcome   string  `json:"outcome"`
	Message   string  `json:"message"`
	Retryable bool    `json:"retryable"`
	Balance   *string `json:"balance,omitempty"`
}

// StatusResponse is the JSON body of /status.
type StatusResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Started      time.Time         `json:"started"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	limit := opts.RateLimit
	if limit == 0 {
		limit = 2
	}
	burst := opts.RateBurst
	if burst == 0 {
		burst = 5
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		checker: opts.Checker,
		limiter: newIPLimiter(limit, burst),
		health:  opts.HealthChecks,
		started: time.Now(),
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", observability.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Get("/process", s.handleProcess)
		r.Post("/process", s.handleProcess)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" && r.Method == http.MethodPost {
		var body struct {
			Address string `json:"address"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err == nil {
			address = body.Address
		}
	}

	out := s.checker.Check(r.Context(), address)

	resp := ProcessResponse{
		Outcome:   out.Code.String(),
		Message:   out.Message,
		Retryable: out.Code.Retryable(),
	}
	if out.Balance != nil {
		b := out.Balance.String()
		resp.Balance = &b
	}

	status := statusFor(out.Code)
	observability.RecordHTTPRequest("/process", strconv.Itoa(status))
	writeJSON(w, status, resp)
}

// statusFor maps an outcome to an HTTP status. Business outcomes are 200.
func statusFor(code domain.OutcomeCode) int {
	switch code {
	case domain.OutcomeInvalidInput:
		return http.StatusBadRequest
	case domain.OutcomeTransientError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := StatusResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Started: s.started,
	}

	code := http.StatusOK
	if len(s.health) > 0 {
		resp.Dependencies = make(map[string]string, len(s.health))
		for name, check := range s.health {
			if err := check(ctx); err != nil {
				s.logger.Printf("status: %s unhealthy: %v", name, err)
				resp.Dependencies[name] = err.Error()
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Dependencies[name] = "ok"
		}
	}

	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
