package magiclink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abg-ub/better-auth/pkg/identity"
	"github.com/abg-ub/better-auth/pkg/session"
)

func testConfig() Config {
	return DefaultConfig("https://app.example.com")
}

func noopSender() LinkSender {
	return LinkSenderFunc(func(ctx context.Context, msg LinkMessage) error {
		return nil
	})
}

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()

	hashKey := []byte("0123456789abcdef0123456789abcdef")
	transport := session.NewCookieTransport(hashKey, nil, "better_auth.session_token", false)
	return session.New(session.WithTransport(transport))
}

func httpPair() (*httptest.ResponseRecorder, *http.Request) {
	return httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/magic-link/verify", nil)
}

func TestService_Issue(t *testing.T) {
	t.Parallel()

	t.Run("persists record and delivers link", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		var delivered LinkMessage
		sender := LinkSenderFunc(func(ctx context.Context, msg LinkMessage) error {
			delivered = msg
			return nil
		})

		svc := NewService(store, sender, newSessionManager(t), testConfig())
		require.NoError(t, svc.Issue(context.Background(), "User@Example.COM", "/dashboard"))

		assert.Equal(t, "user@example.com", delivered.Email)
		assert.Len(t, delivered.Token, 32)
		assert.Equal(t, 1, store.VerificationCount())

		parsed, err := url.Parse(delivered.URL)
		require.NoError(t, err)
		assert.Equal(t, "https://app.example.com", parsed.Scheme+"://"+parsed.Host)
		assert.Equal(t, "/magic-link/verify", parsed.Path)
		assert.Equal(t, delivered.Token, parsed.Query().Get("token"))
		assert.Equal(t, "/dashboard", parsed.Query().Get("callbackURL"))
	})

	t.Run("callback defaults to root in link", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		var delivered LinkMessage
		sender := LinkSenderFunc(func(ctx context.Context, msg LinkMessage) error {
			delivered = msg
			return nil
		})

		svc := NewService(store, sender, newSessionManager(t), testConfig())
		require.NoError(t, svc.Issue(context.Background(), "user@example.com", ""))

		parsed, err := url.Parse(delivered.URL)
		require.NoError(t, err)
		assert.Equal(t, "/", parsed.Query().Get("callbackURL"))
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())

		err := svc.Issue(context.Background(), "not-an-email", "")
		require.ErrorIs(t, err, ErrInvalidEmail)
		assert.Zero(t, store.VerificationCount())
	})

	t.Run("rejects unknown email when sign-up disabled", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		cfg := testConfig()
		cfg.DisableSignUp = true
		svc := NewService(store, noopSender(), newSessionManager(t), cfg)

		err := svc.Issue(context.Background(), "stranger@example.com", "")
		require.ErrorIs(t, err, ErrSignUpDisabled)
		assert.Zero(t, store.VerificationCount())
	})

	t.Run("allows known email when sign-up disabled", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		require.NoError(t, store.CreateUser(context.Background(), &identity.User{
			ID:    uuid.New(),
			Email: "member@example.com",
		}))

		cfg := testConfig()
		cfg.DisableSignUp = true
		svc := NewService(store, noopSender(), newSessionManager(t), cfg)

		require.NoError(t, svc.Issue(context.Background(), "member@example.com", ""))
		assert.Equal(t, 1, store.VerificationCount())
	})

	t.Run("delivery failure is terminal and keeps the record", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		sender := LinkSenderFunc(func(ctx context.Context, msg LinkMessage) error {
			return errors.New("smtp down")
		})

		svc := NewService(store, sender, newSessionManager(t), testConfig())

		err := svc.Issue(context.Background(), "user@example.com", "")
		require.ErrorIs(t, err, ErrDeliveryFailed)

		// Orphaned record stays until expiry; it is not rolled back.
		assert.Equal(t, 1, store.VerificationCount())
	})
}

func TestService_Redeem(t *testing.T) {
	t.Parallel()

	issue := func(t *testing.T, svc *Service, email string) string {
		t.Helper()

		var token string
		svc.sender = LinkSenderFunc(func(ctx context.Context, msg LinkMessage) error {
			token = msg.Token
			return nil
		})
		require.NoError(t, svc.Issue(context.Background(), email, ""))
		require.NotEmpty(t, token)
		return token
	}

	t.Run("creates user and session on first redeem", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())
		token := issue(t, svc, "new@example.com")

		w, r := httpPair()
		result, err := svc.Redeem(context.Background(), w, r, token)
		require.NoError(t, err)
		require.NotNil(t, result.User)
		require.NotNil(t, result.Session)

		assert.Equal(t, "new@example.com", result.User.Email)
		assert.Equal(t, "new@example.com", result.User.Name)
		assert.True(t, result.User.EmailVerified)
		assert.Equal(t, result.User.ID, result.Session.UserID)

		// Session cookie was set by the transport.
		require.NotEmpty(t, w.Result().Cookies())
	})

	t.Run("reuses existing user", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		existing := &identity.User{ID: uuid.New(), Email: "member@example.com", Name: "Member"}
		require.NoError(t, store.CreateUser(context.Background(), existing))

		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())
		token := issue(t, svc, "member@example.com")

		w, r := httpPair()
		result, err := svc.Redeem(context.Background(), w, r, token)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, result.User.ID)
		assert.Equal(t, "Member", result.User.Name)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())

		w, r := httpPair()
		_, err := svc.Redeem(context.Background(), w, r, "nosuchtoken")
		require.Error(t, err)
		assert.Equal(t, CodeInvalidToken, CodeOf(err))
	})

	t.Run("second redeem of same token fails", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())
		token := issue(t, svc, "once@example.com")

		w, r := httpPair()
		_, err := svc.Redeem(context.Background(), w, r, token)
		require.NoError(t, err)

		w, r = httpPair()
		_, err = svc.Redeem(context.Background(), w, r, token)
		require.Error(t, err)
		assert.Equal(t, CodeInvalidToken, CodeOf(err))
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		now := time.Now()
		svc := NewService(store, noopSender(), newSessionManager(t), testConfig(),
			withClock(func() time.Time { return now }),
		)
		token := issue(t, svc, "late@example.com")

		// Jump past the record's expiry.
		now = now.Add(6 * time.Minute)

		w, r := httpPair()
		_, err := svc.Redeem(context.Background(), w, r, token)
		require.Error(t, err)
		assert.Equal(t, CodeExpiredToken, CodeOf(err))

		// The expired redeem still consumed the token.
		assert.Zero(t, store.VerificationCount())
	})

	t.Run("unknown user with sign-up disabled", func(t *testing.T) {
		t.Parallel()

		// Record issued while the account existed, account deleted since.
		store := identity.NewMemoryStore()
		cfg := testConfig()
		cfg.DisableSignUp = true
		svc := NewService(store, noopSender(), newSessionManager(t), cfg)

		require.NoError(t, store.CreateVerification(context.Background(), &identity.VerificationRecord{
			Identifier: "orphantokenorphantokenorphantoke",
			Value:      "gone@example.com",
			ExpiresAt:  time.Now().Add(time.Minute),
		}))

		w, r := httpPair()
		_, err := svc.Redeem(context.Background(), w, r, "orphantokenorphantokenorphantoke")
		require.Error(t, err)
		assert.Equal(t, CodeUserNotFound, CodeOf(err))
	})

	t.Run("user creation failure", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("ConsumeVerification", mock.Anything, "tok").Return(&identity.VerificationRecord{
			Identifier: "tok",
			Value:      "new@example.com",
			ExpiresAt:  time.Now().Add(time.Minute),
		}, nil)
		store.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, identity.ErrUserNotFound)
		store.On("CreateUser", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())

		w, r := httpPair()
		_, err := svc.Redeem(context.Background(), w, r, "tok")
		require.Error(t, err)
		assert.Equal(t, CodeUserNotCreated, CodeOf(err))
		store.AssertExpectations(t)
	})

	t.Run("concurrent creation race falls back to lookup", func(t *testing.T) {
		t.Parallel()

		existing := &identity.User{ID: uuid.New(), Email: "raced@example.com"}

		store := &mockStore{}
		store.On("ConsumeVerification", mock.Anything, "tok").Return(&identity.VerificationRecord{
			Identifier: "tok",
			Value:      "raced@example.com",
			ExpiresAt:  time.Now().Add(time.Minute),
		}, nil)
		store.On("GetUserByEmail", mock.Anything, "raced@example.com").Return(nil, identity.ErrUserNotFound).Once()
		store.On("CreateUser", mock.Anything, mock.Anything).Return(identity.ErrEmailAlreadyExists)
		store.On("GetUserByEmail", mock.Anything, "raced@example.com").Return(existing, nil)

		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())

		w, r := httpPair()
		result, err := svc.Redeem(context.Background(), w, r, "tok")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, result.User.ID)
	})

	t.Run("session creation failure", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		sessions := &mockSessionStarter{}
		sessions.On("Authenticate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("store down"))

		svc := NewService(store, noopSender(), sessions, testConfig())
		token := issue(t, svc, "user@example.com")

		w, r := httpPair()
		_, err := svc.Redeem(context.Background(), w, r, token)
		require.Error(t, err)
		assert.Equal(t, CodeSessionNotCreated, CodeOf(err))
	})

	t.Run("concurrent redeems mint at most one session", func(t *testing.T) {
		t.Parallel()

		store := identity.NewMemoryStore()
		svc := NewService(store, noopSender(), newSessionManager(t), testConfig())
		token := issue(t, svc, "racer@example.com")

		const attempts = 16
		var wg sync.WaitGroup
		successes := make(chan *RedeemResult, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w, r := httpPair()
				if result, err := svc.Redeem(context.Background(), w, r, token); err == nil {
					successes <- result
				}
			}()
		}
		wg.Wait()
		close(successes)

		assert.Equal(t, 1, len(successes))
	})
}

func TestService_ResolveCallback(t *testing.T) {
	t.Parallel()

	svc := NewService(identity.NewMemoryStore(), noopSender(), newSessionManager(t), testConfig())

	tests := []struct {
		name     string
		callback string
		want     string
	}{
		{"absolute url passes verbatim", "https://other.example.com/done", "https://other.example.com/done"},
		{"relative path concatenates onto base", "/dashboard", "https://app.example.com/dashboard"},
		{"empty falls back to base", "", "https://app.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, svc.ResolveCallback(tt.callback))
		})
	}
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeExpiredToken, CodeOf(flowErr(CodeExpiredToken)))
	assert.Equal(t, CodeInvalidToken, CodeOf(errors.New("anything else")))
	assert.Equal(t, CodeSessionNotCreated, CodeOf(errors.Join(flowErr(CodeSessionNotCreated), errors.New("cause"))))
}
