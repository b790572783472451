package common

const (
	// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
	AccessTokenHeaderName = "access_token"

	// ServiceName identifies this server in health checks, logs and traces.
	ServiceName = "claveo-backend"
)
