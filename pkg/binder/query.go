package binder

import "net/http"

// Query creates a binder that populates struct fields from URL query
// parameters using `query` struct tags.
//
// Example:
//
//	type VerifyRequest struct {
//		Token       string `query:"token"`
//		CallbackURL string `query:"callbackURL"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
