package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/claveo/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	target error
	code   codes.Code
}{
	{common.ErrDuplicateIdentity, codes.AlreadyExists},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrInvalidRefreshToken, codes.Unauthenticated},
	{common.ErrRefreshTokenNotFound, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrIdentityNotFound, codes.NotFound},
	{common.ErrRecordNotFound, codes.NotFound},
}

// toStatus translates a service error into a gRPC status. Unclassified
// errors are logged and hidden behind codes.Internal.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		parts := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return status.Error(codes.InvalidArgument, "invalid input: "+strings.Join(parts, "; "))
	}

	for _, m := range errorCodes {
		if errors.Is(err, m.target) {
			return status.Error(m.code, m.target.Error())
		}
	}

	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
