package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// CookieTransport implements Transport using signed and encrypted cookies.
type CookieTransport struct {
	codec      *securecookie.SecureCookie
	cookieName string
	secure     bool
}

// NewCookieTransport creates a cookie-based transport. hashKey signs cookie
// values (32 or 64 bytes); blockKey, when non-nil, additionally encrypts them
// (16, 24 or 32 bytes).
func NewCookieTransport(hashKey, blockKey []byte, cookieName string, secure bool) *CookieTransport {
	return &CookieTransport{
		codec:      securecookie.New(hashKey, blockKey),
		cookieName: cookieName,
		secure:     secure,
	}
}

// GetToken extracts the session token from the cookie.
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(t.cookieName)
	if err != nil {
		return "", ErrSessionNotFound
	}

	var token string
	if err := t.codec.Decode(t.cookieName, cookie.Value, &token); err != nil {
		return "", ErrSessionNotFound
	}
	return token, nil
}

// SetToken stores the session token in a cookie.
func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	encoded, err := t.codec.Encode(t.cookieName, token)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode, // CSRF protection
	})
	return nil
}

// ClearToken removes the session cookie.
func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
