// Package grpc exposes the services as the claveo.v1.Vault gRPC service.
// Messages are plain Go structs carried by a JSON codec, so no generated
// code is involved.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/ratelimit"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, authPassword string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken, userID string) error
	GetSalt(ctx context.Context, email string) (string, error)
}

type Authenticator interface {
	Authenticate(accessToken string) (*auth.Claims, error)
}

type VaultService interface {
	List(ctx context.Context, userID string) ([]*models.Secret, error)
	Create(ctx context.Context, userID string, in services.SecretInput) (*models.Secret, error)
	Update(ctx context.Context, userID, id string, in services.SecretInput) (*models.Secret, error)
	Delete(ctx context.Context, userID, id string) error
}

type GRPCServer struct {
	address string
	users   AuthService
	authn   Authenticator
	vault   VaultService
	limits  *ratelimit.Policy
	logger  logging.Logger
}

// NewGRPCServer builds the server. limits may be nil to disable rate limiting.
func NewGRPCServer(a string, l logging.Logger, limits *ratelimit.Policy, users AuthService, authn Authenticator, vault VaultService) *GRPCServer {
	return &GRPCServer{
		address: a,
		limits:  limits,
		logger:  l.With("module", "grpc_server"),
		users:   users,
		authn:   authn,
		vault:   vault,
	}
}

// newServer builds the grpc.Server with the vault and health services.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.rateLimitInterceptor, s.accessTokenInterceptor),
	)
	srv.RegisterService(&VaultServiceDesc, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}
	return nil
}
