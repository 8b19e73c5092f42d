package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abg-ub/better-auth/pkg/binder"
)

type jsonPayload struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

func TestJSON(t *testing.T) {
	t.Parallel()

	bind := binder.JSON()

	t.Run("decodes valid body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com","callbackURL":"/x"}`))
		req.Header.Set("Content-Type", "application/json")

		var v jsonPayload
		require.NoError(t, bind(req, &v))
		assert.Equal(t, "a@b.com", v.Email)
		assert.Equal(t, "/x", v.CallbackURL)
	})

	t.Run("requires content type", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))

		var v jsonPayload
		require.ErrorIs(t, bind(req, &v), binder.ErrMissingContentType)
	})

	t.Run("rejects wrong media type", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")

		var v jsonPayload
		require.ErrorIs(t, bind(req, &v), binder.ErrUnsupportedMediaType)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com","extra":1}`))
		req.Header.Set("Content-Type", "application/json")

		var v jsonPayload
		require.ErrorIs(t, bind(req, &v), binder.ErrFailedToParseJSON)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com"}{"email":"c@d.com"}`))
		req.Header.Set("Content-Type", "application/json")

		var v jsonPayload
		require.ErrorIs(t, bind(req, &v), binder.ErrFailedToParseJSON)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
		req.Header.Set("Content-Type", "application/json")

		var v jsonPayload
		require.ErrorIs(t, bind(req, &v), binder.ErrFailedToParseJSON)
	})
}

type queryPayload struct {
	Token       string `query:"token"`
	CallbackURL string `query:"callbackURL"`
	Page        int    `query:"page"`
	Active      bool   `query:"active"`
	Skipped     string `query:"-"`
}

func TestQuery(t *testing.T) {
	t.Parallel()

	bind := binder.Query()

	t.Run("binds tagged fields", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?token=abc&callbackURL=%2Fdash&page=3&active=true", nil)

		var v queryPayload
		require.NoError(t, bind(req, &v))
		assert.Equal(t, "abc", v.Token)
		assert.Equal(t, "/dash", v.CallbackURL)
		assert.Equal(t, 3, v.Page)
		assert.True(t, v.Active)
	})

	t.Run("missing params keep zero values", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?token=abc", nil)

		var v queryPayload
		require.NoError(t, bind(req, &v))
		assert.Equal(t, "abc", v.Token)
		assert.Empty(t, v.CallbackURL)
		assert.Zero(t, v.Page)
	})

	t.Run("invalid value errors", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?page=notanumber", nil)

		var v queryPayload
		require.ErrorIs(t, bind(req, &v), binder.ErrFailedToParseQuery)
	})
}
