package magiclink

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/abg-ub/better-auth/pkg/identity"
	"github.com/abg-ub/better-auth/pkg/session"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CreateUser(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockStore) CreateVerification(ctx context.Context, record *identity.VerificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockStore) ConsumeVerification(ctx context.Context, token string) (*identity.VerificationRecord, error) {
	args := m.Called(ctx, token)
	if r := args.Get(0); r != nil {
		return r.(*identity.VerificationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendMagicLink(ctx context.Context, msg LinkMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockSessionStarter struct {
	mock.Mock
}

func (m *mockSessionStarter) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*session.Session, error) {
	args := m.Called(ctx, w, r, userID)
	if s := args.Get(0); s != nil {
		return s.(*session.Session), args.Error(1)
	}
	return nil, args.Error(1)
}
