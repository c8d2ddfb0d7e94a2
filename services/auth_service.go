package services

import (
	"fmt"
	"net/url"

	"trimchat/auth"
	"trimchat/errors"
	"trimchat/repositories"
)

type IAuthService interface {
	Register(username, password, avatar string) (Session, error)
	Login(username, password string) (Session, error)
	Me(token string) (Account, error)
	UpdateAvatar(token, avatar string) (Account, error)
}

// Session is what a successful register or login hands back: the signed
// token plus the public account fields the client renders.
type Session struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type AuthService struct {
	userRepository repositories.IUserRepository
	issuer         *auth.TokenIssuer
}

func NewAuthService(repo repositories.IUserRepository, issuer *auth.TokenIssuer) IAuthService {
	return &AuthService{userRepository: repo, issuer: issuer}
}

func (s *AuthService) Register(username, password, avatar string) (Session, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
		Avatar:   avatar,
	}

	// Business rules first, before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return Session{}, err
	}

	if avatar == "" {
		avatar = defaultAvatar(username)
	}

	// Hashing stays in the service layer so the repository never sees a
	// plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(username, hashedPassword, avatar)
	if err != nil {
		return Session{}, err // Propagates ErrUserAlreadyExists if the name is taken
	}

	token, err := s.issuer.Generate(userID, username)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}

	return Session{
		Token: token,
		User:  Account{ID: userID, Username: username, Avatar: avatar},
	}, nil
}

func (s *AuthService) Login(username, password string) (Session, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(user.ID, user.Username)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}

	return Session{
		Token: token,
		User:  Account{ID: user.ID, Username: user.Username, Avatar: user.Avatar},
	}, nil
}

func (s *AuthService) Me(token string) (Account, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return Account{}, err
	}

	user, err := s.userRepository.GetUserByUsername(claims.Username)
	if err != nil {
		return Account{}, err
	}
	return Account{ID: user.ID, Username: user.Username, Avatar: user.Avatar}, nil
}

func (s *AuthService) UpdateAvatar(token, avatar string) (Account, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return Account{}, err
	}

	if err := auth.ValidateAvatar(auth.AvatarRequest{Avatar: avatar}); err != nil {
		return Account{}, err
	}

	if err := s.userRepository.UpdateAvatar(claims.Username, avatar); err != nil {
		return Account{}, err
	}

	user, err := s.userRepository.GetUserByUsername(claims.Username)
	if err != nil {
		return Account{}, err
	}
	return Account{ID: user.ID, Username: user.Username, Avatar: user.Avatar}, nil
}

func defaultAvatar(username string) string {
	return fmt.Sprintf("https://robohash.org/%s.png", url.PathEscape(username))
}
