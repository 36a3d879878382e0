package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/middleware/ratelimiter"
	"github.com/itchan-dev/anonboard/shared/utils"
)

// RateLimit rejects requests once the identity's bucket is empty.
func RateLimit(rl *ratelimiter.KeyedRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMethods applies RateLimit only to the listed http methods.
func RateLimitMethods(rl *ratelimiter.KeyedRateLimiter, getIdentity func(r *http.Request) (string, error), methods ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}
	return func(next http.Handler) http.Handler {
		withLimit := RateLimit(rl, getIdentity)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limited[r.Method] {
				withLimit.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIP extracts the client IP from RemoteAddr only. The address comes from the
// TCP connection, so it can't be spoofed with headers.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", &errors.ErrorWithStatusCode{Message: fmt.Sprintf("invalid IP address: %s", ip), StatusCode: http.StatusBadRequest}
	}
	return ip, nil
}

// IPIdentity picks the identity function for rate limiting. Behind a trusted
// reverse proxy the forwarding headers carry the real client address.
func IPIdentity(trustProxyHeaders bool) func(r *http.Request) (string, error) {
	if trustProxyHeaders {
		return utils.GetIP
	}
	return GetIP
}
