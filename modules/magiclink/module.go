// Package magiclink exposes the magic link flow over HTTP: a JSON endpoint
// that requests a sign-in link and a browser endpoint that redeems it.
package magiclink

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abg-ub/better-auth/pkg/binder"
	"github.com/abg-ub/better-auth/pkg/handler"
	mlink "github.com/abg-ub/better-auth/pkg/magiclink"
	"github.com/abg-ub/better-auth/pkg/ratelimit"
)

// RequestLinkRequest is the JSON body of the sign-in endpoint.
type RequestLinkRequest struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

// VerifyRequest carries the redemption query parameters.
type VerifyRequest struct {
	Token       string `query:"token"`
	CallbackURL string `query:"callbackURL"`
}

type statusResponse struct {
	Status bool `json:"status"`
}

// Module wires the magic link service into HTTP routes. It satisfies the
// auth module's Mountable and RateLimited interfaces; the host decides where
// to mount it and how to enforce its rate limit policy.
type Module struct {
	svc *mlink.Service
	cfg mlink.Config
}

func NewModule(svc *mlink.Service, cfg mlink.Config) *Module {
	if svc == nil {
		panic("magiclink module: service is required")
	}
	return &Module{svc: svc, cfg: cfg}
}

// RateLimitPolicy declares one shared fixed-window bucket covering both
// endpoints, so a client cannot trade unused verify attempts for extra
// issuance requests.
func (m *Module) RateLimitPolicy() ratelimit.Policy {
	return ratelimit.Policy{
		Group:        "magic-link",
		PathPrefixes: []string{"/sign-in/magic-link", "/magic-link/verify"},
		Window:       m.cfg.RateLimitWindow,
		Max:          m.cfg.RateLimitMax,
	}
}

// Handle returns the module's router. Paths are absolute so the policy's
// prefixes match whether the router is mounted at the host root or composed
// through the auth router.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/sign-in/magic-link", handler.Wrap(
		handler.HandlerFunc[handler.Context, RequestLinkRequest](m.requestLink),
		handler.WithBinders[handler.Context, RequestLinkRequest](binder.JSON()),
	))

	r.Get("/magic-link/verify", handler.Wrap(
		handler.HandlerFunc[handler.Context, VerifyRequest](m.verify),
		handler.WithBinders[handler.Context, VerifyRequest](binder.Query()),
	))

	return r
}

// requestLink issues a link. Errors stay on the JSON channel: this endpoint
// is called programmatically, unlike verify which browsers reach by clicking
// a link.
func (m *Module) requestLink(ctx handler.Context, req RequestLinkRequest) handler.Response {
	err := m.svc.Issue(ctx, req.Email, req.CallbackURL)
	switch {
	case err == nil:
		return handler.JSONRaw(statusResponse{Status: true})
	case errors.Is(err, mlink.ErrInvalidEmail):
		return handler.JSONError(err, handler.WithJSONStatus(http.StatusBadRequest))
	case errors.Is(err, mlink.ErrSignUpDisabled):
		return handler.JSONError(handler.ErrBadRequest)
	default:
		// Delivery and storage failures surface as opaque 500s.
		return handler.JSONError(handler.ErrInternalServerError)
	}
}

// verify redeems the token. Success without a callback returns the session
// and user as JSON; with a callback it redirects verbatim. Every failure
// redirects to the resolved target with an error code, because the client
// here is a browser that cannot render a JSON error.
func (m *Module) verify(ctx handler.Context, req VerifyRequest) handler.Response {
	result, err := m.svc.Redeem(ctx, ctx.ResponseWriter(), ctx.Request(), req.Token)
	if err != nil {
		target := m.svc.ResolveCallback(req.CallbackURL)
		return handler.Redirect(target + "?error=" + string(mlink.CodeOf(err)))
	}

	if req.CallbackURL == "" {
		return handler.JSONRaw(result)
	}
	return handler.Redirect(req.CallbackURL)
}
