package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trimchat/auth"
	"trimchat/errors"
	"trimchat/repositories"
)

type fakeUserRepository struct {
	users map[string]repositories.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]repositories.User)}
}

func (f *fakeUserRepository) CreateUser(username, hashedPassword, avatar string) (string, error) {
	if _, ok := f.users[username]; ok {
		return "", errors.ErrUserAlreadyExists
	}
	id := "id-" + username
	f.users[username] = repositories.User{
		ID:           id,
		Username:     username,
		PasswordHash: hashedPassword,
		Avatar:       avatar,
		CreatedAt:    time.Now().UTC(),
	}
	return id, nil
}

func (f *fakeUserRepository) GetUserByUsername(username string) (repositories.User, error) {
	user, ok := f.users[username]
	if !ok {
		return repositories.User{}, errors.ErrInvalidCredentials
	}
	return user, nil
}

func (f *fakeUserRepository) UpdateAvatar(username, avatar string) error {
	user, ok := f.users[username]
	if !ok {
		return errors.ErrInvalidCredentials
	}
	user.Avatar = avatar
	f.users[username] = user
	return nil
}

func newAuthService() (IAuthService, *fakeUserRepository) {
	repo := newFakeUserRepository()
	issuer := auth.NewTokenIssuer("unit-test-secret", "trimchat", time.Hour)
	return NewAuthService(repo, issuer), repo
}

func TestAuthService_Register(t *testing.T) {
	req := require.New(t)
	service, repo := newAuthService()

	// When registering without an avatar
	session, err := service.Register("alice", "secret42", "")

	// Then a session comes back and the placeholder avatar was assigned
	req.NoError(err)
	req.NotEmpty(session.Token)
	req.Equal("alice", session.User.Username)
	req.Contains(session.User.Avatar, "robohash.org")

	// And the stored password is an Argon2 hash, never the plain text
	stored := repo.users["alice"]
	req.True(strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	req.NotContains(stored.PasswordHash, "secret42")
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()

	_, err := service.Register("alice", "secret42", "")
	req.NoError(err)

	_, err = service.Register("alice", "other-pass", "")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_Register_RejectsWeakInput(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()

	_, err := service.Register("al", "secret42", "")
	req.Error(err)

	_, err = service.Register("alice", "short", "")
	req.Error(err)
}

func TestAuthService_Login(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()
	_, err := service.Register("alice", "secret42", "")
	req.NoError(err)

	// When logging in with the right password
	session, err := service.Login("alice", "secret42")
	req.NoError(err)
	req.NotEmpty(session.Token)
	req.Equal("alice", session.User.Username)

	// Wrong password and unknown user both map to the same generic error
	_, err = service.Login("alice", "wrong")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
	_, err = service.Login("nobody", "secret42")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestAuthService_Me(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()
	session, err := service.Register("alice", "secret42", "")
	req.NoError(err)

	account, err := service.Me(session.Token)
	req.NoError(err)
	req.Equal("alice", account.Username)

	_, err = service.Me("garbage-token")
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestAuthService_UpdateAvatar(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()
	session, err := service.Register("alice", "secret42", "")
	req.NoError(err)

	account, err := service.UpdateAvatar(session.Token, "https://example.com/new.png")
	req.NoError(err)
	req.Equal("https://example.com/new.png", account.Avatar)

	// Invalid URL is rejected before touching storage
	_, err = service.UpdateAvatar(session.Token, "not a url")
	req.Error(err)
}
