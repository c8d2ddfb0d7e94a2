package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	apperrors "trimchat/errors"
)

type IUserRepository interface {
	CreateUser(username, hashedPassword, avatar string) (string, error)
	GetUserByUsername(username string) (User, error)
	UpdateAvatar(username, avatar string) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// User is the repository-level representation of an account.
// Equivalent to StoredMessage for the account domain.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// CreateUser persists a new account and returns its generated id.
// The username is the unique key; a second registration fails.
func (u *UserRepository) CreateUser(username, hashedPassword, avatar string) (string, error) {
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hashedPassword,
		Avatar:       avatar,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(username)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		return txn.Set(userKey(username), data)
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u *UserRepository) GetUserByUsername(username string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return User{}, apperrors.ErrInvalidCredentials
		}
		return User{}, err
	}
	return user, nil
}

// UpdateAvatar rewrites the stored avatar reference for an account.
// The presence registry is not touched: live participants keep the
// avatar they joined with until they reconnect.
func (u *UserRepository) UpdateAvatar(username, avatar string) error {
	return u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		var user User
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		}); err != nil {
			return err
		}
		user.Avatar = avatar
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return txn.Set(userKey(username), data)
	})
}
