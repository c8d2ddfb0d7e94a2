package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trimchat/errors"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates session tokens. The secret comes from
// configuration; it is never compiled into the binary.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	duration time.Duration
}

func NewTokenIssuer(secret, issuer string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		duration: duration,
	}
}

// Generate creates a signed JWT for a specific user.
func (i *TokenIssuer) Generate(userID, username string) (string, error) {
	claims := &CustomClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    i.issuer,
		},
	}

	// HS256 (HMAC with SHA256) signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate parses a JWT string and checks its signature and expiration.
func (i *TokenIssuer) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, errors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.ErrInvalidToken
}
