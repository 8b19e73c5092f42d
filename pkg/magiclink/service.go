package magiclink

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abg-ub/better-auth/pkg/identity"
	"github.com/abg-ub/better-auth/pkg/logger"
	"github.com/abg-ub/better-auth/pkg/sanitizer"
	"github.com/abg-ub/better-auth/pkg/session"
	"github.com/abg-ub/better-auth/pkg/validator"
)

// LinkMessage is handed to the delivery channel when a link is issued. The
// token is included separately so senders can build their own URLs or OTP-like
// presentations.
type LinkMessage struct {
	Email string
	URL   string
	Token string
}

// LinkSender delivers an issued magic link to its recipient.
type LinkSender interface {
	SendMagicLink(ctx context.Context, msg LinkMessage) error
}

// LinkSenderFunc adapts a function to the LinkSender interface.
type LinkSenderFunc func(ctx context.Context, msg LinkMessage) error

func (f LinkSenderFunc) SendMagicLink(ctx context.Context, msg LinkMessage) error {
	return f(ctx, msg)
}

// SessionStarter mints an authenticated session for a user and attaches it to
// the response transport. Implemented by session.Manager.
type SessionStarter interface {
	Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*session.Session, error)
}

// Service implements the magic link token lifecycle: issue a single-use token
// bound to an email, deliver it, and later redeem it for a session.
type Service struct {
	store    identity.Store
	sender   LinkSender
	sessions SessionStarter
	config   Config
	log      *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger used for issue and redeem diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the magic link service. Store, sender and sessions are
// required; the service panics on nil collaborators to fail fast at wiring
// time.
func NewService(store identity.Store, sender LinkSender, sessions SessionStarter, cfg Config, opts ...Option) *Service {
	if store == nil {
		panic("magiclink: store is required")
	}
	if sender == nil {
		panic("magiclink: sender is required")
	}
	if sessions == nil {
		panic("magiclink: session starter is required")
	}
	if cfg.BaseURL == "" {
		panic("magiclink: base URL is required")
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 5 * time.Minute
	}

	s := &Service{
		store:    store,
		sender:   sender,
		sessions: sessions,
		config:   cfg,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue validates the email, persists a fresh single-use token and hands the
// redemption link to the delivery channel. The token never travels back to
// the caller.
//
// Delivery failure is terminal: the already persisted record is left to
// expire unused rather than rolled back.
func (s *Service) Issue(ctx context.Context, email, callbackURL string) error {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		return errors.Join(ErrInvalidEmail, err)
	}

	if s.config.DisableSignUp {
		if _, err := s.store.GetUserByEmail(ctx, email); err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				return ErrSignUpDisabled
			}
			return err
		}
	}

	token, err := generateToken()
	if err != nil {
		return err
	}

	record := &identity.VerificationRecord{
		Identifier: token,
		Value:      email,
		ExpiresAt:  s.now().Add(s.config.ExpiresIn),
	}
	if err := s.store.CreateVerification(ctx, record); err != nil {
		return err
	}

	msg := LinkMessage{
		Email: email,
		URL:   s.verifyURL(token, callbackURL),
		Token: token,
	}
	if err := s.sender.SendMagicLink(ctx, msg); err != nil {
		s.log.ErrorContext(ctx, "magic link delivery failed",
			logger.Component("magiclink"),
			logger.Email(sanitizer.MaskEmail(email)),
			logger.Error(err),
		)
		return errors.Join(ErrDeliveryFailed, err)
	}

	s.log.InfoContext(ctx, "magic link issued",
		logger.Component("magiclink"),
		logger.Email(sanitizer.MaskEmail(email)),
	)
	return nil
}

// RedeemResult is the success payload of a redeem: the minted session and the
// resolved (possibly just created) user.
type RedeemResult struct {
	Session *session.Session `json:"session"`
	User    *identity.User   `json:"user"`
}

// Redeem consumes the token and exchanges it for an authenticated session.
// The consume is atomic, so a token redeems at most once even under
// concurrent attempts; the record is burned before account and session logic
// so later failures still consume it. Every failure carries a Code
// retrievable via CodeOf.
func (s *Service) Redeem(ctx context.Context, w http.ResponseWriter, r *http.Request, token string) (*RedeemResult, error) {
	record, err := s.store.ConsumeVerification(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrVerificationNotFound) {
			return nil, flowErr(CodeInvalidToken)
		}
		s.log.ErrorContext(ctx, "verification lookup failed",
			logger.Component("magiclink"),
			logger.Error(err),
		)
		return nil, errors.Join(flowErr(CodeInvalidToken), err)
	}

	if s.now().After(record.ExpiresAt) {
		return nil, flowErr(CodeExpiredToken)
	}

	user, err := s.resolveUser(ctx, record.Value)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Authenticate(ctx, w, r, user.ID)
	if err != nil {
		s.log.ErrorContext(ctx, "session creation failed",
			logger.Component("magiclink"),
			logger.UserID(user.ID.String()),
			logger.Error(err),
		)
		return nil, errors.Join(flowErr(CodeSessionNotCreated), err)
	}

	s.log.InfoContext(ctx, "magic link redeemed",
		logger.Component("magiclink"),
		logger.UserID(user.ID.String()),
	)
	return &RedeemResult{Session: sess, User: user}, nil
}

// resolveUser finds the account for the email, creating it just in time when
// sign-up is enabled.
func (s *Service) resolveUser(ctx context.Context, email string) (*identity.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, identity.ErrUserNotFound) {
		return nil, errors.Join(flowErr(CodeUserNotFound), err)
	}

	if s.config.DisableSignUp {
		return nil, flowErr(CodeUserNotFound)
	}

	user = &identity.User{
		ID:            uuid.New(),
		Email:         email,
		Name:          email,
		EmailVerified: true,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// A concurrent redeem may have created the account first.
		if errors.Is(err, identity.ErrEmailAlreadyExists) {
			if existing, lookupErr := s.store.GetUserByEmail(ctx, email); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, errors.Join(flowErr(CodeUserNotCreated), err)
	}

	return user, nil
}

// ResolveCallback computes the redirect target for a redeem outcome:
// absolute URLs pass verbatim, relative values are concatenated onto the base
// URL, and an empty value falls back to the base URL alone.
func (s *Service) ResolveCallback(callbackURL string) string {
	switch {
	case strings.HasPrefix(callbackURL, "http"):
		return callbackURL
	case callbackURL != "":
		return s.config.BaseURL + callbackURL
	default:
		return s.config.BaseURL
	}
}

// verifyURL builds the redemption link embedded in the email. The callback
// defaults to "/" so the verify endpoint always redirects browsers somewhere.
func (s *Service) verifyURL(token, callbackURL string) string {
	if callbackURL == "" {
		callbackURL = "/"
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("callbackURL", callbackURL)
	return s.config.BaseURL + "/magic-link/verify?" + q.Encode()
}
