package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/claveo/internal/server/ratelimit"
)

// rateLimit rejects requests once the caller's bucket in l is empty.
func rateLimit(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !l.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.RetryAfter().Seconds())))
				writeJSON(w, http.StatusTooManyRequests, envelope{Message: "too many requests, try again later", Code: codeRateLimited})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	return ratelimit.HostKey(r.RemoteAddr)
}
