package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// LoginThrottle limits login attempts per IP: at most maxAttempts requests
// within the lockout window. Once exceeded, further attempts receive 429
// until the window rolls over.
func LoginThrottle(maxAttempts int, lockout time.Duration) func(http.Handler) http.Handler {
	return httprate.LimitByIP(maxAttempts, lockout)
}

// RateLimit limits requests per IP to the specified number per minute using
// a sliding window.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}
