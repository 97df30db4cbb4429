package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/model"
	"learnhub/internal/pkg/jwtutil"
)

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1}
}

func (s *fakeUserStore) Create(user *model.User) error {
	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(id uint) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, "test-secret", time.Hour)

	result, err := svc.Register(RegisterInput{
		Email:    "  Student@Example.COM ",
		Password: "password123",
		FullName: "Ada Lovelace",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "student@example.com", result.User.Email)
	assert.Equal(t, "Ada Lovelace", result.User.FullName)
	assert.True(t, result.User.IsActive)
	assert.NotEqual(t, "password123", result.User.PasswordHash)

	claims, err := jwtutil.ParseToken("test-secret", result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	login, err := svc.Login(LoginInput{Email: "student@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "s", time.Hour)

	_, err := svc.Register(RegisterInput{Email: "a@b.c", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Email: "A@B.C", Password: "password456"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "s", time.Hour)

	_, err := svc.Register(RegisterInput{Email: "", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(RegisterInput{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "s", time.Hour)
	_, err := svc.Register(RegisterInput{Email: "a@b.c", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Email: "a@b.c", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Email: "nobody@b.c", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoginInactiveUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, "s", time.Hour)
	result, err := svc.Register(RegisterInput{Email: "a@b.c", Password: "password123"})
	require.NoError(t, err)

	store.users[result.User.ID].IsActive = false

	_, err = svc.Login(LoginInput{Email: "a@b.c", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
