package ratelimit

import "net/http"

// KeyFunc extracts the limiter key from a request.
type KeyFunc func(r *http.Request) string

// GroupKey prefixes the extracted key with the policy group so different
// policies never share counters.
func GroupKey(group string, fn KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		return group + ":" + fn(r)
	}
}
