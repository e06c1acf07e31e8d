package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a failed admin login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when an admin token fails validation.
var ErrInvalidToken = errors.New("invalid token")

const adminTokenDuration = 12 * time.Hour

// adminClaims are the custom claims carried by admin tokens.
type adminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AdminAuth verifies the fixed administrator credential pair and issues the
// bearer tokens that guard the room-creation endpoint.
type AdminAuth struct {
	username     string
	passwordHash []byte
	secret       []byte
}

// NewAdminAuth loads the admin credential and token secret from the
// environment, with development defaults. The password is kept only as a
// bcrypt hash.
func NewAdminAuth() (*AdminAuth, error) {
	username := os.Getenv("ADMIN_USER")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Development fallback; set JWT_SECRET in production.
		secret = "chat-espe-dev-secret"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return &AdminAuth{
		username:     username,
		passwordHash: hash,
		secret:       []byte(secret),
	}, nil
}

// Login verifies the credential pair and returns a signed token.
func (a *AdminAuth) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := adminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chat-espe",
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Validate checks a token and returns its claims.
func (a *AdminAuth) Validate(tokenString string) (*adminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
