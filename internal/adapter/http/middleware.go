package adapthttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"stays/internal/app"
	"stays/internal/domain"
	"stays/internal/observability"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// currentUser returns the user injected by the auth guard.
func currentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userContextKey).(*domain.User)
	return u
}

// authenticate resolves the session cookie to a fresh user record.
func (s *Server) authenticate(r *http.Request) (*domain.User, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, app.ErrSessionNotFound
	}
	return s.auth.ValidateSession(r.Context(), c.Value, r.UserAgent())
}

func unauthenticated(err error) bool {
	return errors.Is(err, app.ErrSessionNotFound) ||
		errors.Is(err, app.ErrSessionExpired) ||
		errors.Is(err, app.ErrUserNotFound)
}

// guard runs next with the authenticated user in the context, or deny when
// there is no valid session.
func (s *Server) guard(next, deny http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if unauthenticated(err) {
			if !errors.Is(err, app.ErrSessionNotFound) {
				clearSessionCookie(w)
			}
			deny(w, r)
			return
		}
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = observability.WithUserID(ctx, user.ID)
		next(w, r.WithContext(ctx))
	})
}

// requireAuth redirects unauthenticated requests to the login page.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return s.guard(next, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// requireAuthJSON answers unauthenticated requests with a 401 result.
func (s *Server) requireAuthJSON(next http.HandlerFunc) http.Handler {
	return s.guard(next, func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusUnauthorized, false, "Please log in first.")
	})
}

// requestID tags the request context with an id, reusing X-Request-ID when
// the client sends one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		observability.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(elapsed.Seconds())

		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

// recoverer turns a handler panic into a reported 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.serverError(w, r, fmt.Errorf("panic: %v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
