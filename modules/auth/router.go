// Package auth composes authentication modules into one router and applies
// the rate limit policies the modules declare.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abg-ub/better-auth/pkg/clientip"
	"github.com/abg-ub/better-auth/pkg/ratelimit"
)

// Mountable is an auth module that exposes its routes.
type Mountable interface {
	Handle() http.Handler
}

// RateLimited is a module that declares a rate limit policy for its routes.
// The host enforces it; modules never install their own middleware.
type RateLimited interface {
	RateLimitPolicy() ratelimit.Policy
}

// RouterOptions configures which modules to mount. Each module is optional
// and will only be mounted if provided.
type RouterOptions struct {
	MagicLink Mountable

	// RateLimitStore backs the counters for declared policies. When nil,
	// policies are not enforced.
	RateLimitStore ratelimit.Store

	// ClientKey extracts the rate limit key from a request.
	// Defaults to the client IP.
	ClientKey ratelimit.KeyFunc
}

// Router creates the auth router with the configured modules mounted at its
// root.
//
// Example:
//
//	module := magiclink.NewModule(svc, cfg)
//	r.Mount("/", auth.Router(auth.RouterOptions{
//		MagicLink:      module,
//		RateLimitStore: ratelimit.NewRedisStore(redisClient),
//	}))
func Router(opts RouterOptions) chi.Router {
	keyFunc := opts.ClientKey
	if keyFunc == nil {
		keyFunc = clientip.GetIP
	}

	mount := func(r chi.Router, m Mountable) {
		h := m.Handle()
		if rl, ok := m.(RateLimited); ok && opts.RateLimitStore != nil {
			h = ratelimit.PolicyMiddleware(rl.RateLimitPolicy(), opts.RateLimitStore, keyFunc)(h)
		}
		r.Mount("/", h)
	}

	r := chi.NewRouter()
	if opts.MagicLink != nil {
		mount(r, opts.MagicLink)
	}

	return r
}
