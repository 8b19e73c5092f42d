package session

import "net/http"

// Middleware loads the request's session, when present and valid, into the
// request context. Requests without a session pass through unchanged;
// protecting routes is the caller's concern.
func Middleware(m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, err := m.Get(r.Context(), r); err == nil {
				r = r.WithContext(WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}
