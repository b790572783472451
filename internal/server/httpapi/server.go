// Package httpapi exposes the services over REST with chi. Every response
// uses the same JSON envelope, and service errors are translated to HTTP
// status codes in exactly one place (writeError).
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/ratelimit"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// AuthService is the account API the handlers need. *services.UserService implements it.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, authPassword string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken, userID string) error
	GetSalt(ctx context.Context, email string) (string, error)
}

// Authenticator verifies access tokens. *services.SessionService implements it.
type Authenticator interface {
	Authenticate(accessToken string) (*auth.Claims, error)
}

// VaultService is the record API. *services.SecretService implements it.
type VaultService interface {
	List(ctx context.Context, userID string) ([]*models.Secret, error)
	Create(ctx context.Context, userID string, in services.SecretInput) (*models.Secret, error)
	Update(ctx context.Context, userID, id string, in services.SecretInput) (*models.Secret, error)
	Delete(ctx context.Context, userID, id string) error
}

// Options tune the router.
type Options struct {
	AllowedOrigins  []string
	MaxRequestBytes int64
	Limits          *ratelimit.Policy
	ShutdownTimeout time.Duration
	// TracerProvider receives the request spans. Nil means the global provider.
	TracerProvider trace.TracerProvider
}

// DefaultOptions returns production limits.
func DefaultOptions() Options {
	return Options{
		AllowedOrigins:  []string{"http://localhost:3000"},
		MaxRequestBytes: 10 << 20,
		Limits:          ratelimit.DefaultPolicy(),
		ShutdownTimeout: 10 * time.Second,
	}
}

type Server struct {
	address string
	opts    Options
	users   AuthService
	authn   Authenticator
	vault   VaultService
	logger  logging.Logger
	now     func() time.Time
}

func NewServer(address string, opts Options, l logging.Logger, users AuthService, authn Authenticator, vault VaultService) *Server {
	return &Server{
		address: address,
		opts:    opts,
		users:   users,
		authn:   authn,
		vault:   vault,
		logger:  l.With("module", "http_server"),
		now:     time.Now,
	}
}

// Handler builds the chi router with all middleware and routes, wrapped in
// an otelhttp handler so every request gets a server span.
func (s *Server) Handler() http.Handler {
	var traceOpts []otelhttp.Option
	if s.opts.TracerProvider != nil {
		traceOpts = append(traceOpts, otelhttp.WithTracerProvider(s.opts.TracerProvider))
	}
	return otelhttp.NewHandler(s.router(), "http.server", traceOpts...)
}

func (s *Server) router() http.Handler {
	limits := s.opts.Limits
	if limits == nil {
		limits = &ratelimit.Policy{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(spanRoute)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(rateLimit(limits.Global))
	r.Use(s.bodyLimit)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Message: "method not allowed"})
	})

	r.Get("/health", s.handleHealth)

	authLimit := rateLimit(limits.Auth)
	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit(limits.Salt)).Get("/salt", s.handleGetSalt)
		r.With(authLimit).Post("/register", s.handleRegister)
		r.With(authLimit).Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.With(s.authMiddleware).Post("/logout", s.handleLogout)
	})

	r.Route("/vault", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListSecrets)
		r.Post("/", s.handleCreateSecret)
		r.Put("/{id}", s.handleUpdateSecret)
		r.Delete("/{id}", s.handleDeleteSecret)
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
