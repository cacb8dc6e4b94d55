package adapthttp

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"stays/internal/app"
	"stays/internal/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the application services the adapter drives.
type Services struct {
	Auth    *app.AuthService
	Search  *app.SearchService
	Booking *app.BookingService
	Reviews *app.ReviewService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth       *app.AuthService
	search     *app.SearchService
	booking    *app.BookingService
	reviews    *app.ReviewService
	webDir     string
	logger     *slog.Logger
	reporter   *observability.ErrorReporter
	oidcConfig OIDCConfig
	sessionTTL time.Duration
	pages      *template.Template
	healthy    func(context.Context) error
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:       svc.Auth,
		search:     svc.Search,
		booking:    svc.Booking,
		reviews:    svc.Reviews,
		webDir:     webDir,
		logger:     logger,
		sessionTTL: app.DefaultSessionTTL,
		pages:      pages,
	}
}

// WithOIDC enables single sign-on through the given provider.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithErrorReporter forwards unexpected errors to r.
func (s *Server) WithErrorReporter(r *observability.ErrorReporter) *Server {
	s.reporter = r
	return s
}

// WithHealthCheck makes /health report check, typically a store ping.
func (s *Server) WithHealthCheck(check func(context.Context) error) *Server {
	s.healthy = check
	return s
}

// WithSessionTTL sets the session cookie lifetime.
func (s *Server) WithSessionTTL(ttl time.Duration) *Server {
	if ttl > 0 {
		s.sessionTTL = ttl
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.servePage("login.html"))
	mux.HandleFunc("GET /register", s.servePage("register.html"))
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.HandleFunc("GET /auth/sso/login", s.handleSSOLogin)
	mux.HandleFunc("GET /auth/sso/callback", s.handleSSOCallback)

	mux.Handle("GET /dashboard", s.requireAuth(s.handleDashboard))
	mux.Handle("GET /profile", s.requireAuth(s.handleProfile))
	mux.Handle("POST /update-profile", s.requireAuth(s.handleUpdateProfile))

	mux.HandleFunc("POST /search", s.handleSearch)
	mux.Handle("POST /book", s.requireAuthJSON(s.handleBook))
	mux.HandleFunc("GET /reviews/{airbnbId}", s.handleReviews)
	mux.HandleFunc("GET /add-review/{airbnbId}", s.handleAddReview)
	mux.Handle("POST /submit-review/{airbnbId}", s.requireAuth(s.handleSubmitReview))

	mux.Handle("/", http.FileServer(http.Dir(s.webDir)))

	return s.requestID(s.loggingMiddleware(s.recoverer(withNoCache(mux))))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthy != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.healthy(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
