package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/internal/ratelimit"
	"github.com/aretw0/recipient/internal/sanitize"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/session"
	"github.com/aretw0/recipient/pkg/transport"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// RecordAPI is the backend served under /api.
type RecordAPI interface {
	FetchRecipient(ctx context.Context, id string) (*ports.Record, error)
	UpdateRecipient(ctx context.Context, rec *ports.Record) error
}

// Server serves the record API and the screen API.
type Server struct {
	Sessions *session.Manager
	Records  RecordAPI
	Streams  *StreamManager

	logger    *slog.Logger
	limiter   *ratelimit.Limiter
	registry  *prometheus.Registry
	validate  bool
	validator *requestValidator
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimiter limits requests per client address.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithMetrics serves reg on /metrics and records request counts in it.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithoutRequestValidation disables OpenAPI request validation.
func WithoutRequestValidation() Option {
	return func(s *Server) {
		s.validate = false
	}
}

// NewServer wires the screen server. Every session opened afterwards streams its diffs.
func NewServer(sessions *session.Manager, records RecordAPI, opts ...Option) (*Server, error) {
	s := &Server{
		Sessions: sessions,
		Records:  records,
		logger:   logging.NewNop(),
		validate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	if s.validate {
		v, err := newRequestValidator(rawSpec)
		if err != nil {
			return nil, err
		}
		s.validator = v
	}

	sessions.OnOpen(s.observe)
	return s, nil
}

// NewHandler creates the HTTP handler for a screen server.
func NewHandler(sessions *session.Manager, records RecordAPI, opts ...Option) (http.Handler, error) {
	s, err := NewServer(sessions, records, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(requestLogger(s.logger))
	if s.registry != nil {
		r.Use(requestMetrics(s.registry))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(s.limiter))
		if s.validator != nil {
			r.Use(s.validator.middleware(s.logger))
		}

		r.Route("/api/recipients/{id}", func(r chi.Router) {
			r.Get("/", s.GetRecipient)
			r.Put("/", s.PutRecipient)
		})

		r.Route("/screens", func(r chi.Router) {
			r.Get("/", s.ListScreens)
			r.Post("/", s.OpenScreen)
			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", s.GetScreen)
				r.Delete("/", s.CloseScreen)
				r.Post("/fetch", s.FetchScreen)
				r.Post("/submit", s.SubmitScreen)
				r.Post("/change", s.ChangeField)
				r.Post("/close-alert", s.CloseAlert)
				r.Get("/events", s.SubscribeEvents)
			})
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Recipient API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.validator != nil && s.validator.doc.Info != nil {
		apiVersion = s.validator.doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "recipient-http",
		"version":     strings.TrimSpace(recipient.Version),
		"api_version": apiVersion,
	}, s.logger)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()}, s.logger)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipientNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, sanitize.ErrTooLarge),
		errors.Is(err, sanitize.ErrInvalidUTF8),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotSubmittable):
		return http.StatusConflict
	case errors.Is(err, transport.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

// requestMetrics counts requests by route pattern, method and status.
func requestMetrics(reg prometheus.Registerer) func(http.Handler) http.Handler {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipient",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	if err := reg.Register(requests); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			requests = already.ExistingCollector.(*prometheus.CounterVec)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		})
	}
}
