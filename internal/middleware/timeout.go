package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds the handling time of a request. Routes that hijack the
// connection must not be wrapped.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.TimeoutHandler(next, d, "request timed out")
	}
}
