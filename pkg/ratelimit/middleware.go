package ratelimit

import (
	"net/http"
	"strconv"
)

// Middleware enforces the limiter on every request. Implements "fail open"
// policy - allows requests on store errors to prevent outages from storage
// failures.
func Middleware(limiter Limiter, keyFunc KeyFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		panic("ratelimit.Middleware: keyFunc is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := result.RetryAfter.Seconds()
				if retryAfter < 1 {
					retryAfter = 1
				}

				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter)))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PolicyMiddleware enforces a module-declared policy: only requests whose path
// the policy covers are counted, all covered routes share one bucket per
// client, and the rejection happens before the wrapped handler runs.
func PolicyMiddleware(policy Policy, store Store, keyFunc KeyFunc) func(http.Handler) http.Handler {
	limiter, err := NewFixedWindow(store, policy.Window, policy.Max)
	if err != nil {
		panic("ratelimit.PolicyMiddleware: " + err.Error())
	}

	groupKey := GroupKey(policy.Group, keyFunc)
	limit := Middleware(limiter, groupKey)

	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !policy.Covers(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
