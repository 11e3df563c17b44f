package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tripcal/internal/core"
	applog "tripcal/internal/log"
	"tripcal/internal/metrics"
	"tripcal/internal/middleware/ratelimit"
	"tripcal/internal/middleware/security"
	"tripcal/internal/middleware/trace"
)

// Itinerary is the service the API exposes.
type Itinerary interface {
	Document(ctx context.Context) (*core.Document, string, error)
	Calendar(ctx context.Context, today string) ([]core.DayEntry, error)
	Budget(ctx context.Context, total *float64) (core.BudgetSummary, error)
	AddActivity(ctx context.Context, dateKey string, item core.ActivityItem) (core.ActivityItem, error)
	DeleteActivity(ctx context.Context, dateKey, id string) error
	Ready(ctx context.Context) error
}

// Options configures optional parts of the server.
type Options struct {
	Logger *applog.Logger
	// Metrics enables GET /metrics when set.
	Metrics *metrics.Collector
	// Ping checks the overlay backend for /readyz.
	Ping func(ctx context.Context) error
	// RequestsPerMinute limits overlay edits per client IP.
	RequestsPerMinute int
}

type Server struct {
	http.Server
	svc     Itinerary
	opts    Options
	started time.Time
	now     func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Itinerary, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		svc:      svc,
		opts:     opts,
		started:  time.Now(),
		now:      time.Now,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(opts.Logger, detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/calendar.ics", s.handleCalendarICS)
	mux.HandleFunc("GET /api/budget", s.handleBudget)
	mux.HandleFunc("POST /api/days/{date}/activities", s.handleAddActivity)
	mux.HandleFunc("DELETE /api/days/{date}/activities/{id}", s.handleDeleteActivity)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, onRateLimit, http.MethodPost, http.MethodDelete)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = detector.Middleware(h)
	h = applog.Middleware(opts.Logger.WithComponent(applog.ComponentHTTP), requestID)(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

func requestID(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}

func onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
